// Package mqttconn carries the live-update channel over MQTT. Each event is
// published on its own topic and the message payload is the event data.
//
//	<prefix>/events/<event>    backend -> dashboard
//	<prefix>/commands/<event>  dashboard -> backend
package mqttconn

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"agvdash/channel"
	"agvdash/config"
	"agvdash/protocol"
)

const qos = 1

type Transport struct {
	cfg config.MQTTConfig

	mu     sync.Mutex
	client mqtt.Client
}

func New(cfg config.MQTTConfig) *Transport {
	return &Transport{cfg: cfg}
}

func (t *Transport) Name() string { return "mqtt" }

// EventTopic is the topic an inbound event arrives on.
func EventTopic(prefix, event string) string {
	return prefix + "/events/" + event
}

// CommandTopic is the topic an outbound command is published on.
func CommandTopic(prefix, event string) string {
	return prefix + "/commands/" + event
}

// EventFromTopic extracts the event name from an inbound topic.
func EventFromTopic(prefix, topic string) (string, bool) {
	event, ok := strings.CutPrefix(topic, prefix+"/events/")
	if !ok || event == "" || strings.Contains(event, "/") {
		return "", false
	}
	return event, true
}

func (t *Transport) Open(ctx context.Context, token string, onFrame channel.FrameFunc, onDrop channel.DropFunc) error {
	broker := fmt.Sprintf("tcp://%s:%d", t.cfg.Broker, t.cfg.Port)
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(t.cfg.ClientID).
		SetUsername(t.cfg.Username).
		SetPassword(token).
		SetAutoReconnect(false).
		SetConnectTimeout(10 * time.Second).
		SetOrderMatters(true).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			onDrop(err)
		})

	client := mqtt.NewClient(opts)
	if err := wait(ctx, client.Connect()); err != nil {
		// A cancelled wait leaves the connect attempt running.
		client.Disconnect(0)
		return fmt.Errorf("mqtt connect %s: %w", broker, err)
	}

	prefix := t.cfg.TopicPrefix
	handler := func(_ mqtt.Client, msg mqtt.Message) {
		event, ok := EventFromTopic(prefix, msg.Topic())
		if !ok {
			return
		}
		onFrame(protocol.Frame{Event: event, Data: msg.Payload(), Timestamp: time.Now().UTC()})
	}
	if err := wait(ctx, client.Subscribe(EventTopic(prefix, "+"), qos, handler)); err != nil {
		client.Disconnect(250)
		return fmt.Errorf("mqtt subscribe: %w", err)
	}

	t.mu.Lock()
	t.client = client
	t.mu.Unlock()
	return nil
}

func wait(ctx context.Context, tok mqtt.Token) error {
	select {
	case <-tok.Done():
		return tok.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *Transport) Write(f protocol.Frame) error {
	t.mu.Lock()
	client := t.client
	t.mu.Unlock()
	if client == nil || !client.IsConnected() {
		return channel.ErrNotConnected
	}
	tok := client.Publish(CommandTopic(t.cfg.TopicPrefix, f.Event), qos, false, []byte(f.Data))
	tok.Wait()
	return tok.Error()
}

func (t *Transport) Close() error {
	t.mu.Lock()
	client := t.client
	t.client = nil
	t.mu.Unlock()
	if client != nil {
		client.Disconnect(1000)
	}
	return nil
}
