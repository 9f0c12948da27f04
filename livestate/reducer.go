package livestate

import "agvdash/fleet"

// Reduce returns the State that results from applying a to s. It never
// modifies s. Every per-entity write replaces the previous value outright;
// there is no sequence or timestamp check, so the last write wins.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case UpdateRobotState:
		s.Robots.RobotStates = cloneMap(s.Robots.RobotStates)
		s.Robots.RobotStates[a.Serial] = a.State
	case UpdateRobotHealth:
		s.Robots.RobotHealth = cloneMap(s.Robots.RobotHealth)
		s.Robots.RobotHealth[a.Serial] = a.Health
	case SetRobotCapabilities:
		s.Robots.RobotCapabilities = cloneMap(s.Robots.RobotCapabilities)
		s.Robots.RobotCapabilities[a.Serial] = a.Capabilities
	case AddRobot:
		if !s.Robots.IsConnected(a.Serial) {
			s.Robots.ConnectedRobots = append(cloneSlice(s.Robots.ConnectedRobots), a.Serial)
		}
	case RemoveRobot:
		s.Robots = removeRobot(s.Robots, a.Serial)
	case SelectRobot:
		s.Robots.SelectedRobot = a.Serial
	case SetConnectedRobots:
		serials := make([]string, 0, len(a.Serials))
		for _, serial := range a.Serials {
			if indexOf(serials, serial) < 0 {
				serials = append(serials, serial)
			}
		}
		s.Robots.ConnectedRobots = serials
		s.Robots.Loading = false
		s.Robots.Error = ""

	case OrdersLoaded:
		s.Orders.Executions = cloneSlice(a.Orders)
		s.Orders.Loading = false
		s.Orders.Error = ""
	case OrderExecuted:
		if i := orderIndex(s.Orders.Executions, a.Order.ID); i >= 0 {
			s.Orders.Executions = replaceAt(s.Orders.Executions, i, a.Order)
		} else {
			s.Orders.Executions = append([]fleet.OrderExecution{a.Order}, s.Orders.Executions...)
		}
		s.Orders.Error = ""
	case OrderCancelled:
		if i := orderIndex(s.Orders.Executions, a.Order.ID); i >= 0 {
			s.Orders.Executions = replaceAt(s.Orders.Executions, i, a.Order)
		}
	case UpdateOrder:
		if i := orderIndex(s.Orders.Executions, a.Order.ID); i >= 0 {
			s.Orders.Executions = replaceAt(s.Orders.Executions, i, a.Order)
		}
	case UpdateOrderStatus:
		if i := orderIndex(s.Orders.Executions, a.ID); i >= 0 {
			o := s.Orders.Executions[i]
			o.Status = a.Status
			o.ErrorMessage = a.ErrorMessage
			if !a.UpdatedAt.IsZero() {
				o.UpdatedAt = a.UpdatedAt
			}
			s.Orders.Executions = replaceAt(s.Orders.Executions, i, o)
		}

	case TemplatesLoaded:
		s.Templates.OrderTemplates = cloneSlice(a.Templates)
		s.Templates.Loading = false
		s.Templates.Error = ""
	case TemplateSaved:
		if i := templateIndex(s.Templates.OrderTemplates, a.Template.ID); i >= 0 {
			s.Templates.OrderTemplates = replaceAt(s.Templates.OrderTemplates, i, a.Template)
		} else {
			s.Templates.OrderTemplates = append([]fleet.OrderTemplate{a.Template}, s.Templates.OrderTemplates...)
		}
		s.Templates.Error = ""
	case TemplateDeleted:
		if i := templateIndex(s.Templates.OrderTemplates, a.ID); i >= 0 {
			s.Templates.OrderTemplates = deleteAt(s.Templates.OrderTemplates, i)
		}

	case AddAlert:
		s.Alerts.Items = append([]fleet.Alert{a.Alert}, s.Alerts.Items...)
	case AcknowledgeAlert:
		if i := alertIndex(s.Alerts.Items, a.ID); i >= 0 {
			al := s.Alerts.Items[i]
			al.Acknowledged = true
			s.Alerts.Items = replaceAt(s.Alerts.Items, i, al)
		}
	case DismissAlert:
		if i := alertIndex(s.Alerts.Items, a.ID); i >= 0 {
			s.Alerts.Items = deleteAt(s.Alerts.Items, i)
		}
	case ClearAlerts:
		s.Alerts.Items = nil

	case SliceLoading:
		s = setSliceStatus(s, a.Slice, true, "")
	case SliceFailed:
		s = setSliceStatus(s, a.Slice, false, a.Message)
	}
	return s
}

func removeRobot(r RobotsState, serial string) RobotsState {
	if i := indexOf(r.ConnectedRobots, serial); i >= 0 {
		r.ConnectedRobots = deleteAt(r.ConnectedRobots, i)
	}
	if _, ok := r.RobotStates[serial]; ok {
		r.RobotStates = cloneMap(r.RobotStates)
		delete(r.RobotStates, serial)
	}
	if _, ok := r.RobotHealth[serial]; ok {
		r.RobotHealth = cloneMap(r.RobotHealth)
		delete(r.RobotHealth, serial)
	}
	if _, ok := r.RobotCapabilities[serial]; ok {
		r.RobotCapabilities = cloneMap(r.RobotCapabilities)
		delete(r.RobotCapabilities, serial)
	}
	if r.SelectedRobot == serial {
		r.SelectedRobot = ""
	}
	return r
}

func setSliceStatus(s State, slice string, loading bool, msg string) State {
	switch slice {
	case SliceRobots:
		s.Robots.Loading, s.Robots.Error = loading, msg
	case SliceOrders:
		s.Orders.Loading, s.Orders.Error = loading, msg
	case SliceTemplates:
		s.Templates.Loading, s.Templates.Error = loading, msg
	}
	return s
}

func orderIndex(list []fleet.OrderExecution, id string) int {
	for i, o := range list {
		if o.ID == id {
			return i
		}
	}
	return -1
}

func templateIndex(list []fleet.OrderTemplate, id int64) int {
	for i, t := range list {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func alertIndex(list []fleet.Alert, id string) int {
	for i, a := range list {
		if a.ID == id {
			return i
		}
	}
	return -1
}

func replaceAt[T any](s []T, i int, v T) []T {
	out := cloneSlice(s)
	out[i] = v
	return out
}

func deleteAt[T any](s []T, i int) []T {
	out := make([]T, 0, len(s)-1)
	out = append(out, s[:i]...)
	return append(out, s[i+1:]...)
}
