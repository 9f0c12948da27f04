package protocol

// Inbound event names (backend -> dashboard).
const (
	EventRobotStateUpdate  = "robot_state_update"
	EventRobotHealthUpdate = "robot_health_update"
	EventRobotConnected    = "robot_connected"
	EventRobotDisconnected = "robot_disconnected"
	EventOrderUpdate       = "order_update"
	EventSystemAlert       = "system_alert"
	EventBatteryAlert      = "battery_alert"
	EventErrorAlert        = "error_alert"
)

// Outbound command names (dashboard -> backend).
const (
	CommandSubscribeRobot   = "subscribe_robot"
	CommandUnsubscribeRobot = "unsubscribe_robot"
	CommandGetRobotState    = "get_robot_state"
)

// InboundEvents lists every event name the router understands.
var InboundEvents = []string{
	EventRobotStateUpdate,
	EventRobotHealthUpdate,
	EventRobotConnected,
	EventRobotDisconnected,
	EventOrderUpdate,
	EventSystemAlert,
	EventBatteryAlert,
	EventErrorAlert,
}

// IsKnownEvent reports whether name is one of InboundEvents.
func IsKnownEvent(name string) bool {
	for _, e := range InboundEvents {
		if e == name {
			return true
		}
	}
	return false
}
