package livestate

import (
	"time"

	"agvdash/fleet"
)

// Action is anything Reduce knows how to apply.
type Action interface {
	ActionType() string
}

// --- Robots ---

type UpdateRobotState struct {
	Serial string
	State  fleet.RobotState
}

type UpdateRobotHealth struct {
	Serial string
	Health fleet.RobotHealth
}

type SetRobotCapabilities struct {
	Serial       string
	Capabilities fleet.RobotCapabilities
}

type AddRobot struct{ Serial string }

type RemoveRobot struct{ Serial string }

type SelectRobot struct{ Serial string }

// SetConnectedRobots replaces ConnectedRobots with a fetched snapshot.
type SetConnectedRobots struct{ Serials []string }

// --- Orders ---

type OrdersLoaded struct{ Orders []fleet.OrderExecution }

type OrderExecuted struct{ Order fleet.OrderExecution }

type OrderCancelled struct{ Order fleet.OrderExecution }

type UpdateOrder struct{ Order fleet.OrderExecution }

type UpdateOrderStatus struct {
	ID           string
	Status       string
	ErrorMessage string
	UpdatedAt    time.Time
}

// --- Templates ---

type TemplatesLoaded struct{ Templates []fleet.OrderTemplate }

type TemplateSaved struct{ Template fleet.OrderTemplate }

type TemplateDeleted struct{ ID int64 }

// --- Alerts ---

type AddAlert struct{ Alert fleet.Alert }

type AcknowledgeAlert struct{ ID string }

type DismissAlert struct{ ID string }

type ClearAlerts struct{}

// --- Slice status ---

type SliceLoading struct{ Slice string }

type SliceFailed struct {
	Slice   string
	Message string
}

func (UpdateRobotState) ActionType() string     { return "robots/updateRobotState" }
func (UpdateRobotHealth) ActionType() string    { return "robots/updateRobotHealth" }
func (SetRobotCapabilities) ActionType() string { return "robots/setRobotCapabilities" }
func (AddRobot) ActionType() string             { return "robots/addRobot" }
func (RemoveRobot) ActionType() string          { return "robots/removeRobot" }
func (SelectRobot) ActionType() string          { return "robots/selectRobot" }
func (SetConnectedRobots) ActionType() string   { return "robots/setConnectedRobots" }
func (OrdersLoaded) ActionType() string         { return "orders/loaded" }
func (OrderExecuted) ActionType() string        { return "orders/executed" }
func (OrderCancelled) ActionType() string       { return "orders/cancelled" }
func (UpdateOrder) ActionType() string          { return "orders/update" }
func (UpdateOrderStatus) ActionType() string    { return "orders/updateStatus" }
func (TemplatesLoaded) ActionType() string      { return "templates/loaded" }
func (TemplateSaved) ActionType() string        { return "templates/saved" }
func (TemplateDeleted) ActionType() string      { return "templates/deleted" }
func (AddAlert) ActionType() string             { return "alerts/add" }
func (AcknowledgeAlert) ActionType() string     { return "alerts/acknowledge" }
func (DismissAlert) ActionType() string         { return "alerts/dismiss" }
func (ClearAlerts) ActionType() string          { return "alerts/clear" }
func (SliceLoading) ActionType() string         { return "status/loading" }
func (SliceFailed) ActionType() string          { return "status/failed" }
