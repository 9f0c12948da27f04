package redisconn

import (
	"context"
	"errors"
	"testing"
	"time"

	"agvdash/channel"
	"agvdash/config"
	"agvdash/protocol"
)

func TestChannelNames(t *testing.T) {
	if got := EventChannel("fleet", "*"); got != "fleet:events:*" {
		t.Errorf("EventChannel = %q", got)
	}
	if got := CommandChannel("fleet", protocol.CommandUnsubscribeRobot); got != "fleet:commands:unsubscribe_robot" {
		t.Errorf("CommandChannel = %q", got)
	}
	if got, ok := EventFromChannel("fleet", "fleet:events:robot_health_update"); !ok || got != protocol.EventRobotHealthUpdate {
		t.Errorf("EventFromChannel = %q, %v", got, ok)
	}
	if _, ok := EventFromChannel("fleet", "fleet:commands:x"); ok {
		t.Error("command channel accepted as event")
	}
	if _, ok := EventFromChannel("fleet", "fleet:events:"); ok {
		t.Error("empty event accepted")
	}
}

func TestOpenUnreachable(t *testing.T) {
	cfg := config.Defaults().Channel.Redis
	cfg.Address = "127.0.0.1:1"
	tr := New(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := tr.Open(ctx, "", func(protocol.Frame) {}, func(error) {}); err == nil {
		t.Fatal("expected connection error")
	}
	if err := tr.Write(protocol.Frame{Event: "x"}); !errors.Is(err, channel.ErrNotConnected) {
		t.Fatalf("Write = %v", err)
	}
}
