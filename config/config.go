// Package config resolves settings from CLI flags with environment
// fallbacks. A .env file is honored when present so dev setups don't
// need exported variables.
package config

import (
	"errors"
	"flag"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/shreyapandey07/game/motion"
)

type Config struct {
	Port      int
	StaticDir string

	// Telemetry is off unless a broker is set.
	MQTTBroker string
	MQTTTopic  string

	Detector motion.Config
}

// Parse validates flags and applies env fallbacks.
func Parse(args []string) (Config, error) {
	if err := godotenv.Load(); err == nil {
		log.Println("loaded environment variables from .env")
	}

	var cfg Config
	fs := flag.NewFlagSet("flag-game", flag.ContinueOnError)

	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.StaticDir, "static", "", "Directory with the client page")
	fs.StringVar(&cfg.MQTTBroker, "mqtt-broker", "", "MQTT broker URL for telemetry (optional)")
	fs.StringVar(&cfg.MQTTTopic, "mqtt-topic", "", "MQTT topic for telemetry events")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 8080 // default
		}
	}
	if cfg.StaticDir == "" {
		cfg.StaticDir = os.Getenv("STATIC_DIR")
	}
	if cfg.StaticDir == "" {
		cfg.StaticDir = "web"
	}
	if cfg.MQTTBroker == "" {
		cfg.MQTTBroker = os.Getenv("MQTT_BROKER")
	}
	if cfg.MQTTTopic == "" {
		cfg.MQTTTopic = os.Getenv("MQTT_TOPIC")
	}
	if cfg.MQTTTopic == "" {
		cfg.MQTTTopic = "flaggame/events"
	}

	det, err := detectorFromEnv()
	if err != nil {
		return Config{}, err
	}
	cfg.Detector = det

	return cfg, nil
}

// detectorFromEnv starts from the stock shake tuning and lets each knob
// be overridden individually.
func detectorFromEnv() (motion.Config, error) {
	cfg := motion.DefaultConfig()

	if v := os.Getenv("SHAKE_LOW_PASS_FACTOR"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 || f >= 1 {
			return motion.Config{}, errors.New("invalid SHAKE_LOW_PASS_FACTOR (want [0,1))")
		}
		cfg.LowPassFactor = f
	}
	if v := os.Getenv("SHAKE_MAGNITUDE_THRESHOLD"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			return motion.Config{}, errors.New("invalid SHAKE_MAGNITUDE_THRESHOLD")
		}
		cfg.MagnitudeThreshold = f
	}
	if v := os.Getenv("SHAKE_COUNT_THRESHOLD"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return motion.Config{}, errors.New("invalid SHAKE_COUNT_THRESHOLD")
		}
		cfg.CountThreshold = n
	}
	if v := os.Getenv("SHAKE_WINDOW_MS"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return motion.Config{}, errors.New("invalid SHAKE_WINDOW_MS")
		}
		cfg.WindowMs = n
	}
	if v := os.Getenv("SHAKE_DEBOUNCE_MS"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			return motion.Config{}, errors.New("invalid SHAKE_DEBOUNCE_MS")
		}
		cfg.DebounceMs = n
	}

	return cfg, nil
}
