// Package livestate holds the dashboard's in-memory view of the fleet and
// the reducers that apply channel events and REST results to it.
//
// A State is treated as immutable: Reduce never writes into the maps or
// slices of the State it is given, so any State returned by Store.Snapshot
// can be read without locks.
package livestate

import "agvdash/fleet"

// Slice names used by SliceLoading and SliceFailed.
const (
	SliceRobots    = "robots"
	SliceOrders    = "orders"
	SliceTemplates = "templates"
)

type State struct {
	Robots    RobotsState
	Orders    OrdersState
	Templates TemplatesState
	Alerts    AlertsState
}

type RobotsState struct {
	// ConnectedRobots is ordered by arrival and holds each serial once.
	ConnectedRobots   []string
	RobotStates       map[string]fleet.RobotState
	RobotHealth       map[string]fleet.RobotHealth
	RobotCapabilities map[string]fleet.RobotCapabilities
	SelectedRobot     string
	Loading           bool
	Error             string
}

type OrdersState struct {
	// Executions is newest first.
	Executions []fleet.OrderExecution
	Loading    bool
	Error      string
}

type TemplatesState struct {
	OrderTemplates []fleet.OrderTemplate
	Loading        bool
	Error          string
}

type AlertsState struct {
	Items []fleet.Alert
}

// NewState returns an empty State with its maps allocated.
func NewState() State {
	return State{
		Robots: RobotsState{
			RobotStates:       map[string]fleet.RobotState{},
			RobotHealth:       map[string]fleet.RobotHealth{},
			RobotCapabilities: map[string]fleet.RobotCapabilities{},
		},
	}
}

// IsConnected reports whether serial is in ConnectedRobots.
func (r RobotsState) IsConnected(serial string) bool {
	return indexOf(r.ConnectedRobots, serial) >= 0
}

// Health returns the health record for serial, if any.
func (r RobotsState) Health(serial string) (fleet.RobotHealth, bool) {
	h, ok := r.RobotHealth[serial]
	return h, ok
}

// RobotState returns the telemetry record for serial, if any.
func (r RobotsState) RobotState(serial string) (fleet.RobotState, bool) {
	s, ok := r.RobotStates[serial]
	return s, ok
}

// Order returns the execution with the given id, if present.
func (o OrdersState) Order(id string) (fleet.OrderExecution, bool) {
	for _, e := range o.Executions {
		if e.ID == id {
			return e, true
		}
	}
	return fleet.OrderExecution{}, false
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}

func cloneMap[V any](m map[string]V) map[string]V {
	out := make(map[string]V, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneSlice[T any](s []T) []T {
	out := make([]T, len(s), len(s)+1)
	copy(out, s)
	return out
}
