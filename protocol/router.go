package protocol

import (
	"errors"
	"log"
)

// Handler receives one callback per recognised inbound event.
// Embed NoOpHandler and override only the methods you need.
type Handler interface {
	HandleRobotState(f *Frame, p *RobotStateUpdate)
	HandleRobotHealth(f *Frame, p *RobotHealthUpdate)
	HandleRobotConnected(f *Frame, p *RobotConnected)
	HandleRobotDisconnected(f *Frame, p *RobotDisconnected)
	HandleOrderUpdate(f *Frame, p *OrderUpdate)
	HandleSystemAlert(f *Frame, p *SystemAlert)
	HandleBatteryAlert(f *Frame, p *BatteryAlert)
	HandleErrorAlert(f *Frame, p *ErrorAlert)
}

// Router decodes frames and dispatches them to a Handler, one at a time in
// the order HandleFrame is called.
type Router struct {
	handler Handler
	logFn   func(format string, args ...any)
}

func NewRouter(handler Handler) *Router {
	return &Router{handler: handler, logFn: log.Printf}
}

// SetLogFunc replaces the logger used for dropped frames.
func (r *Router) SetLogFunc(fn func(format string, args ...any)) {
	if fn != nil {
		r.logFn = fn
	}
}

// HandleFrame is the entry point for frames delivered by a transport.
// Unknown event names are ignored; malformed payloads are logged and dropped.
func (r *Router) HandleFrame(f Frame) {
	evt, err := Decode(f.Event, f.Data)
	if err != nil {
		if errors.Is(err, ErrUnknownEvent) {
			return
		}
		r.logFn("protocol: %v", err)
		return
	}

	switch p := evt.(type) {
	case *RobotStateUpdate:
		r.handler.HandleRobotState(&f, p)
	case *RobotHealthUpdate:
		r.handler.HandleRobotHealth(&f, p)
	case *RobotConnected:
		r.handler.HandleRobotConnected(&f, p)
	case *RobotDisconnected:
		r.handler.HandleRobotDisconnected(&f, p)
	case *OrderUpdate:
		r.handler.HandleOrderUpdate(&f, p)
	case *SystemAlert:
		r.handler.HandleSystemAlert(&f, p)
	case *BatteryAlert:
		r.handler.HandleBatteryAlert(&f, p)
	case *ErrorAlert:
		r.handler.HandleErrorAlert(&f, p)
	}
}
