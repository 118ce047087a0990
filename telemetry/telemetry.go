// Package telemetry publishes game events (shakes, solves) as JSON over
// MQTT so they can be watched with any broker tooling. Entirely
// optional: without a broker the Nop publisher is used.
package telemetry

import (
	"encoding/json"
	"log"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	EventShake  = "shake"
	EventSolved = "solved"
)

type Event struct {
	Type        string  `json:"type"`
	SessionID   string  `json:"sessionId"`
	TimestampMs int64   `json:"timestampMs"`
	Magnitude   float64 `json:"magnitude,omitempty"`
}

type Publisher interface {
	Publish(Event)
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(Event) {}

type MQTT struct {
	client mqtt.Client
	topic  string
}

func NewMQTT(broker, clientID, topic string) (*MQTT, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	log.Printf("telemetry: connected to MQTT broker %s, topic %s", broker, topic)

	return &MQTT{client: client, topic: topic}, nil
}

// Publish fires and forgets at QoS 0. A game event is not worth
// blocking the session loop over.
func (m *MQTT) Publish(ev Event) {
	b, err := json.Marshal(ev)
	if err != nil {
		log.Printf("telemetry: marshal event: %v", err)
		return
	}
	m.client.Publish(m.topic, 0, false, b)
}

func (m *MQTT) Close() {
	m.client.Disconnect(250)
}
