package engine

import "agvdash/fleet"

const (
	EventRobotStateUpdated EventType = iota + 1
	EventRobotHealthUpdated
	EventRobotsChanged
	EventOrdersChanged
	EventTemplatesChanged
	EventAlertRaised
	EventAlertsChanged
	EventSliceStatus
	EventNotice
	EventChannelConnected
	EventChannelDisconnected
)

var eventNames = map[EventType]string{
	EventRobotStateUpdated:   "robot-update",
	EventRobotHealthUpdated:  "health-update",
	EventRobotsChanged:       "robots-changed",
	EventOrdersChanged:       "order-update",
	EventTemplatesChanged:    "templates-changed",
	EventAlertRaised:         "alert",
	EventAlertsChanged:       "alerts-changed",
	EventSliceStatus:         "slice-status",
	EventNotice:              "notice",
	EventChannelConnected:    "channel-status",
	EventChannelDisconnected: "channel-status",
}

// String is the name browsers see for the event on the SSE stream.
func (t EventType) String() string {
	if n, ok := eventNames[t]; ok {
		return n
	}
	return "unknown"
}

// --- Event payloads ---

type RobotEvent struct {
	SerialNumber string `json:"serialNumber"`
}

type RobotsChangedEvent struct {
	SerialNumber string `json:"serialNumber,omitempty"`
	Action       string `json:"action"` // "added", "removed", "selected", "loaded"
}

type OrderEvent struct {
	OrderID string `json:"orderId,omitempty"`
	Status  string `json:"status,omitempty"`
}

type TemplateEvent struct {
	TemplateID int64  `json:"templateId,omitempty"`
	Action     string `json:"action"` // "loaded", "saved", "deleted"
}

type AlertEvent struct {
	Alert fleet.Alert `json:"alert"`
}

type AlertsChangedEvent struct {
	AlertID string `json:"alertId,omitempty"`
	Action  string `json:"action"` // "acknowledged", "dismissed", "cleared"
}

type SliceStatusEvent struct {
	Slice   string `json:"slice"`
	Loading bool   `json:"loading"`
	Error   string `json:"error,omitempty"`
}

// NoticeEvent is a transient operator notification. It is never stored.
type NoticeEvent struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

type ConnectionEvent struct {
	Connected bool   `json:"connected"`
	Detail    string `json:"detail"`
}
