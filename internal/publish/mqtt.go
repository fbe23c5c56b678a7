// Package publish pushes simulated tick batches to an MQTT broker so external
// dashboards can follow a session live.
package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/02loveslollipop/Shizuku-building-sim/internal/config"
	"github.com/02loveslollipop/Shizuku-building-sim/internal/sim"
)

// Publisher sends one JSON message per reading.
type Publisher struct {
	client mqtt.Client
	prefix string
	qos    byte
}

// Message is the payload published for each reading.
type Message struct {
	SessionID string `json:"session_id"`
	sim.Reading
}

// Connect dials the broker described by cfg.
func Connect(cfg config.MQTT) (*Publisher, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}
	return New(client, cfg.TopicPrefix, cfg.QoS), nil
}

// New wraps an already connected client.
func New(client mqtt.Client, prefix string, qos byte) *Publisher {
	return &Publisher{client: client, prefix: strings.TrimRight(prefix, "/"), qos: qos}
}

// Publish sends every reading of batch, stopping at the first failure or
// when ctx is done.
func (p *Publisher) Publish(ctx context.Context, sessionID string, batch []sim.Reading) error {
	for _, r := range batch {
		payload, err := json.Marshal(Message{SessionID: sessionID, Reading: r})
		if err != nil {
			return fmt.Errorf("marshal reading: %w", err)
		}
		topic := Topic(p.prefix, sessionID, r.Floor, r.Zone)
		token := p.client.Publish(topic, p.qos, false, payload)
		select {
		case <-token.Done():
		case <-ctx.Done():
			return ctx.Err()
		}
		if err := token.Error(); err != nil {
			return fmt.Errorf("failed to publish to topic %s: %w", topic, err)
		}
	}
	return nil
}

// Close disconnects from the broker.
func (p *Publisher) Close() {
	p.client.Disconnect(250)
}

// Topic builds <prefix>/<session>/<floor>/<zone> with each segment slugged so
// names never introduce MQTT wildcards or extra levels.
func Topic(prefix, sessionID, floor, zone string) string {
	parts := []string{slug(sessionID), slug(floor), slug(zone)}
	if prefix != "" {
		parts = append([]string{prefix}, parts...)
	}
	return strings.Join(parts, "/")
}

func slug(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch r {
		case ' ', '/', '\t':
			b.WriteByte('-')
		case '+', '#', 0:
		default:
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}
