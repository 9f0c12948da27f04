package main

import (
	"testing"

	"agvdash/config"
)

func TestNewTransport(t *testing.T) {
	cfg := config.Defaults()
	for _, name := range []string{"websocket", "mqtt", "kafka", "redis"} {
		cfg.Channel.Transport = name
		tr, err := newTransport(cfg)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if tr.Name() != name {
			t.Errorf("Name() = %q, want %q", tr.Name(), name)
		}
	}

	cfg.Channel.Transport = "carrier-pigeon"
	if _, err := newTransport(cfg); err == nil {
		t.Error("expected error for unknown transport")
	}
}
