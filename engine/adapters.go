package engine

import "agvdash/livestate"

// storeEmitter bridges store dispatches to the EventBus.
type storeEmitter struct {
	bus *EventBus
}

func (se *storeEmitter) emit(a livestate.Action, _ livestate.State) {
	switch a := a.(type) {
	case livestate.UpdateRobotState:
		se.bus.Emit(Event{Type: EventRobotStateUpdated, Payload: RobotEvent{SerialNumber: a.Serial}})
	case livestate.SetRobotCapabilities:
		se.bus.Emit(Event{Type: EventRobotStateUpdated, Payload: RobotEvent{SerialNumber: a.Serial}})
	case livestate.UpdateRobotHealth:
		se.bus.Emit(Event{Type: EventRobotHealthUpdated, Payload: RobotEvent{SerialNumber: a.Serial}})
	case livestate.AddRobot:
		se.bus.Emit(Event{Type: EventRobotsChanged, Payload: RobotsChangedEvent{SerialNumber: a.Serial, Action: "added"}})
	case livestate.RemoveRobot:
		se.bus.Emit(Event{Type: EventRobotsChanged, Payload: RobotsChangedEvent{SerialNumber: a.Serial, Action: "removed"}})
	case livestate.SelectRobot:
		se.bus.Emit(Event{Type: EventRobotsChanged, Payload: RobotsChangedEvent{SerialNumber: a.Serial, Action: "selected"}})
	case livestate.SetConnectedRobots:
		se.bus.Emit(Event{Type: EventRobotsChanged, Payload: RobotsChangedEvent{Action: "loaded"}})

	case livestate.OrdersLoaded:
		se.bus.Emit(Event{Type: EventOrdersChanged, Payload: OrderEvent{}})
	case livestate.OrderExecuted:
		se.bus.Emit(Event{Type: EventOrdersChanged, Payload: OrderEvent{OrderID: a.Order.ID, Status: a.Order.Status}})
	case livestate.OrderCancelled:
		se.bus.Emit(Event{Type: EventOrdersChanged, Payload: OrderEvent{OrderID: a.Order.ID, Status: a.Order.Status}})
	case livestate.UpdateOrder:
		se.bus.Emit(Event{Type: EventOrdersChanged, Payload: OrderEvent{OrderID: a.Order.ID, Status: a.Order.Status}})
	case livestate.UpdateOrderStatus:
		se.bus.Emit(Event{Type: EventOrdersChanged, Payload: OrderEvent{OrderID: a.ID, Status: a.Status}})

	case livestate.TemplatesLoaded:
		se.bus.Emit(Event{Type: EventTemplatesChanged, Payload: TemplateEvent{Action: "loaded"}})
	case livestate.TemplateSaved:
		se.bus.Emit(Event{Type: EventTemplatesChanged, Payload: TemplateEvent{TemplateID: a.Template.ID, Action: "saved"}})
	case livestate.TemplateDeleted:
		se.bus.Emit(Event{Type: EventTemplatesChanged, Payload: TemplateEvent{TemplateID: a.ID, Action: "deleted"}})

	case livestate.AddAlert:
		se.bus.Emit(Event{Type: EventAlertRaised, Payload: AlertEvent{Alert: a.Alert}})
	case livestate.AcknowledgeAlert:
		se.bus.Emit(Event{Type: EventAlertsChanged, Payload: AlertsChangedEvent{AlertID: a.ID, Action: "acknowledged"}})
	case livestate.DismissAlert:
		se.bus.Emit(Event{Type: EventAlertsChanged, Payload: AlertsChangedEvent{AlertID: a.ID, Action: "dismissed"}})
	case livestate.ClearAlerts:
		se.bus.Emit(Event{Type: EventAlertsChanged, Payload: AlertsChangedEvent{Action: "cleared"}})

	case livestate.SliceLoading:
		se.bus.Emit(Event{Type: EventSliceStatus, Payload: SliceStatusEvent{Slice: a.Slice, Loading: true}})
	case livestate.SliceFailed:
		se.bus.Emit(Event{Type: EventSliceStatus, Payload: SliceStatusEvent{Slice: a.Slice, Error: a.Message}})
	}
}
