package www

import (
	"net/http"

	"agvdash/fleet"
	"agvdash/livestate"
)

// robotView joins everything the live state holds for one connected robot.
type robotView struct {
	SerialNumber string                   `json:"serialNumber"`
	Selected     bool                     `json:"selected"`
	State        *fleet.RobotState        `json:"state,omitempty"`
	Health       *fleet.RobotHealth       `json:"health,omitempty"`
	Capabilities *fleet.RobotCapabilities `json:"capabilities,omitempty"`
}

func newRobotView(s livestate.State, serial string) robotView {
	v := robotView{SerialNumber: serial, Selected: s.Robots.SelectedRobot == serial}
	if st, ok := s.Robots.RobotState(serial); ok {
		v.State = &st
	}
	if hl, ok := s.Robots.Health(serial); ok {
		v.Health = &hl
	}
	if c, ok := s.Robots.RobotCapabilities[serial]; ok {
		v.Capabilities = &c
	}
	return v
}

// robotViews lists connected robots in arrival order.
func robotViews(s livestate.State) []robotView {
	out := make([]robotView, 0, len(s.Robots.ConnectedRobots))
	for _, serial := range s.Robots.ConnectedRobots {
		out = append(out, newRobotView(s, serial))
	}
	return out
}

func (h *Handlers) handleDashboard(w http.ResponseWriter, r *http.Request) {
	s := h.engine.Snapshot()
	data := map[string]any{
		"Page":          "dashboard",
		"Metrics":       livestate.ComputeMetrics(s, h.engine.LowBatteryThreshold()),
		"Robots":        robotViews(s),
		"Alerts":        livestate.DisplayAlerts(s, h.engine.LowBatteryThreshold()),
		"Orders":        s.Orders.Executions,
		"Connection":    h.engine.ChannelStatus(),
		"Authenticated": h.isAuthenticated(r),
	}
	h.render(w, "dashboard.html", data)
}

func (h *Handlers) handleRobots(w http.ResponseWriter, r *http.Request) {
	s := h.engine.Snapshot()
	data := map[string]any{
		"Page":          "robots",
		"Robots":        robotViews(s),
		"Threshold":     h.engine.LowBatteryThreshold(),
		"Error":         s.Robots.Error,
		"Authenticated": h.isAuthenticated(r),
	}
	h.render(w, "robots.html", data)
}

func (h *Handlers) apiDashboard(w http.ResponseWriter, r *http.Request) {
	s := h.engine.Snapshot()
	h.jsonOK(w, map[string]any{
		"metrics":    livestate.ComputeMetrics(s, h.engine.LowBatteryThreshold()),
		"robots":     s.Robots.ConnectedRobots,
		"alerts":     livestate.DisplayAlerts(s, h.engine.LowBatteryThreshold()),
		"connection": h.engine.ChannelStatus(),
	})
}
