package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"agvdash/fleet"
)

// ErrUnknownEvent is returned by Decode for event names outside InboundEvents.
var ErrUnknownEvent = errors.New("unknown event")

// Event is the closed set of decoded inbound payloads. Each event name maps
// to exactly one concrete type below.
type Event interface {
	EventName() string
}

// --- Robot telemetry ---

type RobotStateUpdate struct {
	SerialNumber string           `json:"serialNumber"`
	State        fleet.RobotState `json:"state"`
}

type RobotHealthUpdate struct {
	SerialNumber string            `json:"serialNumber"`
	Health       fleet.RobotHealth `json:"health"`
}

type RobotConnected struct {
	SerialNumber string    `json:"serialNumber"`
	Timestamp    time.Time `json:"timestamp,omitempty"`
}

type RobotDisconnected struct {
	SerialNumber string    `json:"serialNumber"`
	Reason       string    `json:"reason,omitempty"`
	Timestamp    time.Time `json:"timestamp,omitempty"`
}

// --- Orders ---

// OrderUpdate carries the full order record, shaped like the REST resource.
type OrderUpdate struct {
	Order fleet.OrderExecution
}

// --- Alerts ---

type SystemAlert struct {
	Level     string    `json:"level"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

type BatteryAlert struct {
	SerialNumber  string    `json:"serialNumber"`
	BatteryCharge float64   `json:"batteryCharge"`
	Message       string    `json:"message,omitempty"`
	Timestamp     time.Time `json:"timestamp,omitempty"`
}

type ErrorAlert struct {
	SerialNumber string             `json:"serialNumber"`
	ErrorCount   int                `json:"errorCount"`
	Errors       []fleet.RobotError `json:"errors,omitempty"`
	Message      string             `json:"message,omitempty"`
	Timestamp    time.Time          `json:"timestamp,omitempty"`
}

func (*RobotStateUpdate) EventName() string  { return EventRobotStateUpdate }
func (*RobotHealthUpdate) EventName() string { return EventRobotHealthUpdate }
func (*RobotConnected) EventName() string    { return EventRobotConnected }
func (*RobotDisconnected) EventName() string { return EventRobotDisconnected }
func (*OrderUpdate) EventName() string       { return EventOrderUpdate }
func (*SystemAlert) EventName() string       { return EventSystemAlert }
func (*BatteryAlert) EventName() string      { return EventBatteryAlert }
func (*ErrorAlert) EventName() string        { return EventErrorAlert }

// --- Outbound ---

// RobotRef is the payload of every outbound robot command.
type RobotRef struct {
	SerialNumber string `json:"serialNumber"`
}

// Decode turns a named payload into its concrete Event type and checks the
// fields the reconciler keys on.
func Decode(event string, data []byte) (Event, error) {
	switch event {
	case EventRobotStateUpdate:
		p, err := decodeInto[RobotStateUpdate](event, data)
		if err != nil {
			return nil, err
		}
		if p.SerialNumber == "" {
			p.SerialNumber = p.State.SerialNumber
		}
		return checkSerial(p, event, p.SerialNumber)
	case EventRobotHealthUpdate:
		p, err := decodeInto[RobotHealthUpdate](event, data)
		if err != nil {
			return nil, err
		}
		return checkSerial(p, event, p.SerialNumber)
	case EventRobotConnected:
		p, err := decodeInto[RobotConnected](event, data)
		if err != nil {
			return nil, err
		}
		return checkSerial(p, event, p.SerialNumber)
	case EventRobotDisconnected:
		p, err := decodeInto[RobotDisconnected](event, data)
		if err != nil {
			return nil, err
		}
		return checkSerial(p, event, p.SerialNumber)
	case EventOrderUpdate:
		var o fleet.OrderExecution
		if err := json.Unmarshal(data, &o); err != nil {
			return nil, fmt.Errorf("decode %s: %w", event, err)
		}
		if o.ID == "" {
			return nil, fmt.Errorf("decode %s: missing orderId", event)
		}
		return &OrderUpdate{Order: o}, nil
	case EventSystemAlert:
		p, err := decodeInto[SystemAlert](event, data)
		if err != nil {
			return nil, err
		}
		return p, nil
	case EventBatteryAlert:
		p, err := decodeInto[BatteryAlert](event, data)
		if err != nil {
			return nil, err
		}
		return checkSerial(p, event, p.SerialNumber)
	case EventErrorAlert:
		p, err := decodeInto[ErrorAlert](event, data)
		if err != nil {
			return nil, err
		}
		return checkSerial(p, event, p.SerialNumber)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownEvent, event)
	}
}

func decodeInto[T any](event string, data []byte) (*T, error) {
	var p T
	if len(data) == 0 {
		return nil, fmt.Errorf("decode %s: empty payload", event)
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode %s: %w", event, err)
	}
	return &p, nil
}

func checkSerial(p Event, event, serial string) (Event, error) {
	if serial == "" {
		return nil, fmt.Errorf("decode %s: missing serialNumber", event)
	}
	return p, nil
}
