package engine

import (
	"fmt"
	"time"

	"agvdash/fleet"
	"agvdash/livestate"
	"agvdash/protocol"
)

// frameHandler applies each inbound channel event: one store dispatch,
// then an optional notice.
type frameHandler struct {
	e *Engine
}

var _ protocol.Handler = (*frameHandler)(nil)

func (h *frameHandler) HandleRobotState(_ *protocol.Frame, p *protocol.RobotStateUpdate) {
	h.e.store.Dispatch(livestate.UpdateRobotState{Serial: p.SerialNumber, State: p.State})
}

func (h *frameHandler) HandleRobotHealth(_ *protocol.Frame, p *protocol.RobotHealthUpdate) {
	h.e.store.Dispatch(livestate.UpdateRobotHealth{Serial: p.SerialNumber, Health: p.Health})
}

func (h *frameHandler) HandleRobotConnected(_ *protocol.Frame, p *protocol.RobotConnected) {
	h.e.store.Dispatch(livestate.AddRobot{Serial: p.SerialNumber})
	h.e.notice(fleet.AlertInfo, fmt.Sprintf("Robot %s connected", p.SerialNumber))
}

func (h *frameHandler) HandleRobotDisconnected(_ *protocol.Frame, p *protocol.RobotDisconnected) {
	h.e.store.Dispatch(livestate.RemoveRobot{Serial: p.SerialNumber})
	h.e.notice(fleet.AlertWarning, fmt.Sprintf("Robot %s disconnected", p.SerialNumber))
}

func (h *frameHandler) HandleOrderUpdate(_ *protocol.Frame, p *protocol.OrderUpdate) {
	h.e.store.Dispatch(livestate.UpdateOrder{Order: p.Order})
	if p.Order.Status == fleet.OrderFailed {
		msg := fmt.Sprintf("Order %s failed", p.Order.ID)
		if p.Order.ErrorMessage != "" {
			msg += ": " + p.Order.ErrorMessage
		}
		h.e.notice(fleet.AlertError, msg)
	}
}

func (h *frameHandler) HandleSystemAlert(f *protocol.Frame, p *protocol.SystemAlert) {
	level := p.Level
	switch level {
	case fleet.AlertInfo, fleet.AlertWarning, fleet.AlertError, fleet.AlertSuccess:
	default:
		level = fleet.AlertInfo
	}
	title := p.Title
	if title == "" {
		title = "System alert"
	}
	h.raise(fleet.NewAlert(level, title, p.Message, ""), stamp(p.Timestamp, f))
}

func (h *frameHandler) HandleBatteryAlert(f *protocol.Frame, p *protocol.BatteryAlert) {
	msg := p.Message
	if msg == "" {
		msg = fmt.Sprintf("Robot %s battery at %.0f%%", p.SerialNumber, p.BatteryCharge)
	}
	h.raise(fleet.NewAlert(fleet.AlertWarning, "Low battery", msg, p.SerialNumber), stamp(p.Timestamp, f))
}

func (h *frameHandler) HandleErrorAlert(f *protocol.Frame, p *protocol.ErrorAlert) {
	msg := p.Message
	if msg == "" {
		msg = fmt.Sprintf("Robot %s reports %d error(s)", p.SerialNumber, p.ErrorCount)
	}
	h.raise(fleet.NewAlert(fleet.AlertError, "Robot error", msg, p.SerialNumber), stamp(p.Timestamp, f))
}

func (h *frameHandler) raise(a fleet.Alert, at time.Time) {
	if !at.IsZero() {
		a.Timestamp = at
	}
	h.e.store.Dispatch(livestate.AddAlert{Alert: a})
	h.e.notice(a.Type, a.Title)
}

// stamp prefers the payload's own timestamp over the frame's.
func stamp(payload time.Time, f *protocol.Frame) time.Time {
	if !payload.IsZero() {
		return payload.UTC()
	}
	return f.Timestamp.UTC()
}
