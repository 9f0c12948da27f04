package livestate

import (
	"fmt"
	"strings"

	"agvdash/fleet"
)

const syntheticPrefix = "synthetic:"

// SynthesizeAlerts derives alerts from the current health of every connected
// robot. The result is rebuilt on each call and never stored, so an alert
// stays listed for as long as its condition holds.
func SynthesizeAlerts(s State, threshold float64) []fleet.Alert {
	var out []fleet.Alert
	for _, serial := range s.Robots.ConnectedRobots {
		h, ok := s.Robots.RobotHealth[serial]
		if !ok {
			continue
		}
		if h.Faulted() {
			n := h.ErrorCount
			if n == 0 {
				n = 1
			}
			out = append(out, synthetic("error", serial, fleet.AlertError, "Robot error",
				fmt.Sprintf("Robot %s reports %d error(s)", serial, n), h))
		}
		if h.BatteryCharge < threshold {
			out = append(out, synthetic("battery", serial, fleet.AlertWarning, "Low battery",
				fmt.Sprintf("Robot %s battery at %.0f%%", serial, h.BatteryCharge), h))
		}
		if !h.IsOnline {
			out = append(out, synthetic("offline", serial, fleet.AlertWarning, "Robot offline",
				fmt.Sprintf("Robot %s is offline", serial), h))
		}
	}
	return out
}

func synthetic(kind, serial, typ, title, msg string, h fleet.RobotHealth) fleet.Alert {
	return fleet.Alert{
		ID:           syntheticPrefix + kind + ":" + serial,
		Type:         typ,
		Title:        title,
		Message:      msg,
		SerialNumber: serial,
		Timestamp:    h.LastUpdate,
		Synthetic:    true,
	}
}

// IsSyntheticAlertID reports whether id names a derived alert. Acknowledging
// or dismissing such an alert has no effect; it is rebuilt on the next read.
func IsSyntheticAlertID(id string) bool {
	return strings.HasPrefix(id, syntheticPrefix)
}

// DisplayAlerts is the list shown to operators: derived alerts first, then
// the stored ones.
func DisplayAlerts(s State, threshold float64) []fleet.Alert {
	derived := SynthesizeAlerts(s, threshold)
	out := make([]fleet.Alert, 0, len(derived)+len(s.Alerts.Items))
	out = append(out, derived...)
	return append(out, s.Alerts.Items...)
}
