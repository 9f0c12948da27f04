package fleet

import "time"

// RobotState is the latest telemetry snapshot reported by one robot.
// It is replaced wholesale on every update; fields are never merged.
type RobotState struct {
	SerialNumber  string        `json:"serialNumber"`
	Manufacturer  string        `json:"manufacturer,omitempty"`
	Version       string        `json:"version,omitempty"`
	HeaderID      int64         `json:"headerId,omitempty"`
	Timestamp     time.Time     `json:"timestamp"`
	OrderID       string        `json:"orderId,omitempty"`
	LastNodeID    string        `json:"lastNodeId,omitempty"`
	OperatingMode string        `json:"operatingMode,omitempty"`
	Driving       bool          `json:"driving"`
	Paused        bool          `json:"paused"`
	Position      Position      `json:"agvPosition"`
	Velocity      Velocity      `json:"velocity"`
	Battery       BatteryState  `json:"batteryState"`
	Errors        []RobotError  `json:"errors,omitempty"`
	ActionStates  []ActionState `json:"actionStates,omitempty"`
}

type Position struct {
	X                   float64 `json:"x"`
	Y                   float64 `json:"y"`
	Theta               float64 `json:"theta"`
	MapID               string  `json:"mapId,omitempty"`
	PositionInitialized bool    `json:"positionInitialized"`
	LocalizationScore   float64 `json:"localizationScore,omitempty"`
}

type Velocity struct {
	Vx    float64 `json:"vx"`
	Vy    float64 `json:"vy"`
	Omega float64 `json:"omega"`
}

type BatteryState struct {
	BatteryCharge  float64 `json:"batteryCharge"`
	BatteryVoltage float64 `json:"batteryVoltage,omitempty"`
	BatteryHealth  int     `json:"batteryHealth,omitempty"`
	Charging       bool    `json:"charging"`
}

type RobotError struct {
	ErrorType        string `json:"errorType"`
	ErrorLevel       string `json:"errorLevel"`
	ErrorDescription string `json:"errorDescription,omitempty"`
}

type ActionState struct {
	ActionID     string `json:"actionId"`
	ActionType   string `json:"actionType,omitempty"`
	ActionStatus string `json:"actionStatus"`
}

// RobotHealth is the condensed health view the backend pushes per robot.
type RobotHealth struct {
	IsOnline      bool      `json:"isOnline"`
	BatteryCharge float64   `json:"batteryCharge"`
	IsCharging    bool      `json:"isCharging"`
	HasErrors     bool      `json:"hasErrors"`
	ErrorCount    int       `json:"errorCount"`
	IsDriving     bool      `json:"isDriving"`
	IsPaused      bool      `json:"isPaused"`
	LastUpdate    time.Time `json:"lastUpdate"`
}

// Faulted reports whether the health record shows any error condition.
func (h RobotHealth) Faulted() bool {
	return h.HasErrors || h.ErrorCount > 0
}

// RobotCapabilities describes what a robot advertises it can do.
type RobotCapabilities struct {
	SerialNumber     string   `json:"serialNumber"`
	SeriesName       string   `json:"seriesName,omitempty"`
	AgvKinematics    string   `json:"agvKinematics,omitempty"`
	MaxLoadMass      float64  `json:"maxLoadMass,omitempty"`
	SpeedMax         float64  `json:"speedMax,omitempty"`
	SupportedActions []string `json:"supportedActions,omitempty"`
}

// RobotCommand is an instant action sent to one robot through the REST API.
type RobotCommand struct {
	ActionType string            `json:"actionType"`
	Parameters map[string]string `json:"parameters,omitempty"`
}

func (c *RobotCommand) Validate() error {
	if c.ActionType == "" {
		return &ValidationError{Field: "actionType", Message: "is required"}
	}
	return nil
}
