package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/shreyapandey07/game/config"
	"github.com/shreyapandey07/game/network"
	"github.com/shreyapandey07/game/session"
	"github.com/shreyapandey07/game/telemetry"
)

func main() {
	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	var pub telemetry.Publisher = telemetry.Nop{}
	if cfg.MQTTBroker != "" {
		m, err := telemetry.NewMQTT(cfg.MQTTBroker, "flag-game-server", cfg.MQTTTopic)
		if err != nil {
			log.Fatalf("telemetry: %v", err)
		}
		defer m.Close()
		pub = m
	}

	manager := session.NewManager(cfg.Detector, pub)
	mux := network.NewMux(manager, cfg.StaticDir)

	server := http.Server{
		Handler: mux,
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ctrlc
		server.Close()
	}()

	log.Printf("listening on :%d (ws endpoint: /ws)", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server: %v", err)
	}
}
