// Package kafkaconn carries the live-update channel over Kafka. Inbound
// events are read from the events topic with the event name as the message
// key; outbound commands are written to the commands topic the same way.
//
// The reader joins no consumer group and starts at the partition head on
// every Open, so nothing published while disconnected is delivered.
package kafkaconn

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl"
	"github.com/segmentio/kafka-go/sasl/plain"

	"agvdash/channel"
	"agvdash/config"
	"agvdash/protocol"
)

type Transport struct {
	cfg   config.KafkaConfig
	logFn channel.LogFunc

	mu     sync.Mutex
	reader *kafka.Reader
	writer *kafka.Writer
	cancel context.CancelFunc
}

func New(cfg config.KafkaConfig) *Transport {
	return &Transport{cfg: cfg, logFn: log.Printf}
}

func (t *Transport) SetLogFunc(fn channel.LogFunc) {
	if fn != nil {
		t.logFn = fn
	}
}

func (t *Transport) Name() string { return "kafka" }

// livenessInterval is how often Open's broker check runs. The reader retries
// broker failures internally, so this check is what reports a drop.
var livenessInterval = 10 * time.Second

// ReaderConfig builds the events reader settings.
func ReaderConfig(cfg config.KafkaConfig, dialer *kafka.Dialer) kafka.ReaderConfig {
	return kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       cfg.EventsTopic,
		Partition:   cfg.Partition,
		MaxAttempts: 1,
		Dialer:      dialer,
	}
}

func mechanism(username, token string) sasl.Mechanism {
	if username == "" {
		return nil
	}
	return plain.Mechanism{Username: username, Password: token}
}

// FrameFromMessage maps a consumed message to an inbound frame.
func FrameFromMessage(msg kafka.Message) (protocol.Frame, bool) {
	if len(msg.Key) == 0 {
		return protocol.Frame{}, false
	}
	ts := msg.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	return protocol.Frame{Event: string(msg.Key), Data: msg.Value, Timestamp: ts.UTC()}, true
}

// MessageFromFrame maps an outbound frame to a producer message.
func MessageFromFrame(f protocol.Frame) kafka.Message {
	return kafka.Message{Key: []byte(f.Event), Value: f.Data, Time: f.Timestamp}
}

func (t *Transport) Open(ctx context.Context, token string, onFrame channel.FrameFunc, onDrop channel.DropFunc) error {
	if len(t.cfg.Brokers) == 0 {
		return fmt.Errorf("no kafka brokers configured")
	}
	mech := mechanism(t.cfg.Username, token)
	dialer := &kafka.Dialer{
		Timeout:       10 * time.Second,
		DualStack:     true,
		SASLMechanism: mech,
	}

	if err := t.ping(ctx, dialer); err != nil {
		return fmt.Errorf("kafka connect: %w", err)
	}

	reader := kafka.NewReader(ReaderConfig(t.cfg, dialer))
	if err := reader.SetOffset(kafka.LastOffset); err != nil {
		reader.Close()
		return fmt.Errorf("kafka reader offset: %w", err)
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(t.cfg.Brokers...),
		Topic:        t.cfg.CommandsTopic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		Transport:    &kafka.Transport{SASL: mech},
	}

	rctx, cancel := context.WithCancel(context.Background())
	t.mu.Lock()
	t.reader, t.writer, t.cancel = reader, writer, cancel
	t.mu.Unlock()

	var once sync.Once
	drop := func(err error) {
		once.Do(func() {
			cancel()
			onDrop(err)
		})
	}
	go t.readLoop(rctx, reader, onFrame, drop)
	go t.watchBrokers(rctx, dialer, drop)
	return nil
}

// ping succeeds once any broker answers with the events topic's partitions.
func (t *Transport) ping(ctx context.Context, dialer *kafka.Dialer) error {
	var lastErr error
	for _, broker := range t.cfg.Brokers {
		dctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		conn, err := dialer.DialContext(dctx, "tcp", broker)
		if err == nil {
			_, err = conn.ReadPartitions(t.cfg.EventsTopic)
			conn.Close()
		}
		cancel()
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return lastErr
}

func (t *Transport) watchBrokers(ctx context.Context, dialer *kafka.Dialer, drop channel.DropFunc) {
	ticker := time.NewTicker(livenessInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := t.ping(ctx, dialer); err != nil {
				if ctx.Err() != nil {
					return
				}
				drop(err)
				return
			}
		}
	}
}

func (t *Transport) readLoop(ctx context.Context, r *kafka.Reader, onFrame channel.FrameFunc, drop channel.DropFunc) {
	for {
		msg, err := r.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() == nil && !errors.Is(err, context.Canceled) {
				drop(err)
			}
			return
		}
		f, ok := FrameFromMessage(msg)
		if !ok {
			t.logFn("kafkaconn: message without event key at offset %d", msg.Offset)
			continue
		}
		onFrame(f)
	}
}

func (t *Transport) Write(f protocol.Frame) error {
	t.mu.Lock()
	w := t.writer
	t.mu.Unlock()
	if w == nil {
		return channel.ErrNotConnected
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return w.WriteMessages(ctx, MessageFromFrame(f))
}

func (t *Transport) Close() error {
	t.mu.Lock()
	r, w, cancel := t.reader, t.writer, t.cancel
	t.reader, t.writer, t.cancel = nil, nil, nil
	t.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	var errs []error
	if r != nil {
		errs = append(errs, r.Close())
	}
	if w != nil {
		errs = append(errs, w.Close())
	}
	return errors.Join(errs...)
}
