// Package redisconn carries the live-update channel over Redis pub/sub.
// The backend publishes each event on <prefix>:events:<event>; commands are
// published on <prefix>:commands:<event>. Message bodies are the event data.
package redisconn

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"agvdash/channel"
	"agvdash/config"
	"agvdash/protocol"
)

type Transport struct {
	cfg config.RedisConfig

	mu     sync.Mutex
	client *redis.Client
	pubsub *redis.PubSub
	cancel context.CancelFunc
}

func New(cfg config.RedisConfig) *Transport {
	return &Transport{cfg: cfg}
}

func (t *Transport) Name() string { return "redis" }

func EventChannel(prefix, event string) string {
	return fmt.Sprintf("%s:events:%s", prefix, event)
}

func CommandChannel(prefix, event string) string {
	return fmt.Sprintf("%s:commands:%s", prefix, event)
}

// EventFromChannel extracts the event name from an inbound channel name.
func EventFromChannel(prefix, ch string) (string, bool) {
	event, ok := strings.CutPrefix(ch, prefix+":events:")
	if !ok || event == "" {
		return "", false
	}
	return event, true
}

func (t *Transport) Open(ctx context.Context, token string, onFrame channel.FrameFunc, onDrop channel.DropFunc) error {
	client := redis.NewClient(&redis.Options{
		Addr:     t.cfg.Address,
		Password: token,
		DB:       t.cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return fmt.Errorf("redis connect %s: %w", t.cfg.Address, err)
	}

	pubsub := client.PSubscribe(ctx, EventChannel(t.cfg.ChannelPrefix, "*"))
	// wait for the subscription confirmation
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		client.Close()
		return fmt.Errorf("redis psubscribe: %w", err)
	}

	rctx, cancel := context.WithCancel(context.Background())
	t.mu.Lock()
	t.client, t.pubsub, t.cancel = client, pubsub, cancel
	t.mu.Unlock()

	go t.readLoop(rctx, pubsub, onFrame, onDrop)
	return nil
}

func (t *Transport) readLoop(ctx context.Context, ps *redis.PubSub, onFrame channel.FrameFunc, onDrop channel.DropFunc) {
	for {
		msg, err := ps.ReceiveMessage(ctx)
		if err != nil {
			if ctx.Err() == nil && !errors.Is(err, redis.ErrClosed) {
				onDrop(err)
			}
			return
		}
		event, ok := EventFromChannel(t.cfg.ChannelPrefix, msg.Channel)
		if !ok {
			continue
		}
		onFrame(protocol.Frame{Event: event, Data: []byte(msg.Payload), Timestamp: time.Now().UTC()})
	}
}

func (t *Transport) Write(f protocol.Frame) error {
	t.mu.Lock()
	client := t.client
	t.mu.Unlock()
	if client == nil {
		return channel.ErrNotConnected
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return client.Publish(ctx, CommandChannel(t.cfg.ChannelPrefix, f.Event), []byte(f.Data)).Err()
}

func (t *Transport) Close() error {
	t.mu.Lock()
	client, pubsub, cancel := t.client, t.pubsub, t.cancel
	t.client, t.pubsub, t.cancel = nil, nil, nil
	t.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	var errs []error
	if pubsub != nil {
		errs = append(errs, pubsub.Close())
	}
	if client != nil {
		errs = append(errs, client.Close())
	}
	return errors.Join(errs...)
}
