package mqttconn

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"agvdash/channel"
	"agvdash/config"
	"agvdash/protocol"
)

func TestTopics(t *testing.T) {
	if got := EventTopic("fleet", protocol.EventRobotConnected); got != "fleet/events/robot_connected" {
		t.Errorf("EventTopic = %q", got)
	}
	if got := CommandTopic("fleet", protocol.CommandGetRobotState); got != "fleet/commands/get_robot_state" {
		t.Errorf("CommandTopic = %q", got)
	}
}

func TestEventFromTopic(t *testing.T) {
	cases := map[string]string{
		"fleet/events/order_update": "order_update",
		"fleet/events/":             "",
		"fleet/events/a/b":          "",
		"other/events/order_update": "",
		"fleet/commands/x":          "",
	}
	for topic, want := range cases {
		got, ok := EventFromTopic("fleet", topic)
		if got != want || ok != (want != "") {
			t.Errorf("EventFromTopic(%q) = %q, %v; want %q", topic, got, ok, want)
		}
	}
}

func TestWriteBeforeOpen(t *testing.T) {
	tr := New(config.Defaults().Channel.MQTT)
	if err := tr.Write(protocol.Frame{Event: "x"}); !errors.Is(err, channel.ErrNotConnected) {
		t.Fatalf("Write = %v, want ErrNotConnected", err)
	}
	if err := tr.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestOpenGivesUpWhenContextEnds(t *testing.T) {
	// A broker that accepts but never answers CONNECT.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			defer conn.Close()
		}
	}()

	cfg := config.Defaults().Channel.MQTT
	cfg.Broker = "127.0.0.1"
	cfg.Port = ln.Addr().(*net.TCPAddr).Port
	tr := New(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	err = tr.Open(ctx, "", func(protocol.Frame) {}, func(error) {})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Open = %v, want deadline exceeded", err)
	}
	if err := tr.Write(protocol.Frame{Event: "x"}); !errors.Is(err, channel.ErrNotConnected) {
		t.Fatalf("Write = %v, want ErrNotConnected", err)
	}
}
