package livestate

import "math"

// DefaultLowBatteryThreshold is the battery charge (percent) below which a
// robot counts as low on battery.
const DefaultLowBatteryThreshold = 20

// Selectors are recomputed from scratch on every call. Each walks
// ConnectedRobots once; health entries for robots no longer connected are
// ignored.

// OnlineCount counts connected robots whose health reports them online.
func OnlineCount(s State) int {
	n := 0
	for _, serial := range s.Robots.ConnectedRobots {
		if h, ok := s.Robots.RobotHealth[serial]; ok && h.IsOnline {
			n++
		}
	}
	return n
}

// OfflineCount counts connected robots that are not reported online,
// including robots with no health record yet.
func OfflineCount(s State) int {
	return len(s.Robots.ConnectedRobots) - OnlineCount(s)
}

// ErrorCount counts connected robots with hasErrors set or errorCount > 0.
func ErrorCount(s State) int {
	n := 0
	for _, serial := range s.Robots.ConnectedRobots {
		if h, ok := s.Robots.RobotHealth[serial]; ok && h.Faulted() {
			n++
		}
	}
	return n
}

// ChargingCount counts connected robots that report charging.
func ChargingCount(s State) int {
	n := 0
	for _, serial := range s.Robots.ConnectedRobots {
		if h, ok := s.Robots.RobotHealth[serial]; ok && h.IsCharging {
			n++
		}
	}
	return n
}

// AverageBattery is the mean battery charge over ConnectedRobots, counting a
// robot without a health record as 0, rounded to the nearest integer.
// With no connected robots it is 0.
func AverageBattery(s State) int {
	if len(s.Robots.ConnectedRobots) == 0 {
		return 0
	}
	var total float64
	for _, serial := range s.Robots.ConnectedRobots {
		total += s.Robots.RobotHealth[serial].BatteryCharge
	}
	return int(math.Round(total / float64(len(s.Robots.ConnectedRobots))))
}

// LowBattery returns the connected serials whose battery charge is below
// threshold, in ConnectedRobots order.
func LowBattery(s State, threshold float64) []string {
	var out []string
	for _, serial := range s.Robots.ConnectedRobots {
		if h, ok := s.Robots.RobotHealth[serial]; ok && h.BatteryCharge < threshold {
			out = append(out, serial)
		}
	}
	return out
}

// OrderStatusCounts tallies executions by status string.
func OrderStatusCounts(s State) map[string]int {
	counts := make(map[string]int)
	for _, o := range s.Orders.Executions {
		counts[o.Status]++
	}
	return counts
}

// Metrics bundles the dashboard aggregates.
type Metrics struct {
	TotalRobots    int            `json:"totalRobots"`
	OnlineRobots   int            `json:"onlineRobots"`
	OfflineRobots  int            `json:"offlineRobots"`
	ErrorRobots    int            `json:"robotsWithErrors"`
	ChargingRobots int            `json:"chargingRobots"`
	AverageBattery int            `json:"averageBatteryLevel"`
	LowBattery     []string       `json:"lowBatteryRobots"`
	OrderStatus    map[string]int `json:"orderStatusCounts"`
	ActiveAlerts   int            `json:"activeAlerts"`
}

// ComputeMetrics evaluates every selector against s.
func ComputeMetrics(s State, threshold float64) Metrics {
	low := LowBattery(s, threshold)
	if low == nil {
		low = []string{}
	}
	active := 0
	for _, a := range DisplayAlerts(s, threshold) {
		if !a.Acknowledged {
			active++
		}
	}
	return Metrics{
		TotalRobots:    len(s.Robots.ConnectedRobots),
		OnlineRobots:   OnlineCount(s),
		OfflineRobots:  OfflineCount(s),
		ErrorRobots:    ErrorCount(s),
		ChargingRobots: ChargingCount(s),
		AverageBattery: AverageBattery(s),
		LowBattery:     low,
		OrderStatus:    OrderStatusCounts(s),
		ActiveAlerts:   active,
	}
}
