package telemetry

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"home-climate/internal/domain"
)

// MQTTSink publishes each cycle record as JSON to a broker topic, for
// ingestion by Home Assistant style dashboards.
type MQTTSink struct {
	client paho.Client
	topic  string
	logger *slog.Logger
}

func NewMQTTSink(broker, topic, clientID string, logger *slog.Logger) (*MQTTSink, error) {
	if clientID == "" {
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "climated"
		}
		clientID = "climated-" + hostname
	}

	opts := paho.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		logger.Warn("mqtt connection lost", "error", err)
	}

	client := paho.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connecting to mqtt broker %s: %w", broker, token.Error())
	}

	return &MQTTSink{client: client, topic: topic, logger: logger}, nil
}

func (s *MQTTSink) Record(o domain.ControlOutcome) {
	payload, err := json.Marshal(o)
	if err != nil {
		s.logger.Error("encoding telemetry record", "error", err)
		return
	}

	token := s.client.Publish(s.topic, 0, false, payload)
	if token.WaitTimeout(5*time.Second) && token.Error() != nil {
		s.logger.Warn("publishing telemetry record", "error", token.Error())
	}
}

func (s *MQTTSink) Close() {
	s.client.Disconnect(250)
}
