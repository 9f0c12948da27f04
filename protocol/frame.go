package protocol

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Frame is one named message on the channel. Transports that carry the
// event name out of band (topic, key) fill Event themselves and leave the
// payload in Data; the WebSocket transport sends the whole frame as JSON.
type Frame struct {
	ID        string          `json:"id,omitempty"`
	Event     string          `json:"event"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"ts,omitempty"`
}

// NewFrame builds an outbound frame with a fresh ID.
func NewFrame(event string, payload any) (Frame, error) {
	var data json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return Frame{}, fmt.Errorf("encode %s payload: %w", event, err)
		}
		data = b
	}
	return Frame{
		ID:        uuid.New().String(),
		Event:     event,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}, nil
}

// Encode marshals the frame to JSON.
func (f Frame) Encode() ([]byte, error) {
	return json.Marshal(f)
}

// DecodeFrame parses a full JSON frame.
func DecodeFrame(data []byte) (Frame, error) {
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return Frame{}, fmt.Errorf("decode frame: %w", err)
	}
	if f.Event == "" {
		return Frame{}, fmt.Errorf("decode frame: missing event name")
	}
	return f, nil
}
