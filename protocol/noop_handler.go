package protocol

// NoOpHandler implements Handler with no-op methods.
type NoOpHandler struct{}

func (NoOpHandler) HandleRobotState(*Frame, *RobotStateUpdate)         {}
func (NoOpHandler) HandleRobotHealth(*Frame, *RobotHealthUpdate)       {}
func (NoOpHandler) HandleRobotConnected(*Frame, *RobotConnected)       {}
func (NoOpHandler) HandleRobotDisconnected(*Frame, *RobotDisconnected) {}
func (NoOpHandler) HandleOrderUpdate(*Frame, *OrderUpdate)             {}
func (NoOpHandler) HandleSystemAlert(*Frame, *SystemAlert)             {}
func (NoOpHandler) HandleBatteryAlert(*Frame, *BatteryAlert)           {}
func (NoOpHandler) HandleErrorAlert(*Frame, *ErrorAlert)               {}

// Compile-time check that NoOpHandler implements Handler.
var _ Handler = NoOpHandler{}
