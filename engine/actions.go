package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"agvdash/channel"
	"agvdash/fleet"
	"agvdash/livestate"
	"agvdash/protocol"
	"agvdash/restapi"
)

const (
	deleteBatchSize = 10
	deleteAttempts  = 3
	deleteBackoff   = 500 * time.Millisecond
)

var errEmptyResponse = errors.New("backend returned no data")

// User actions. REST failures are recorded on the affected slice and
// returned so the caller can show them inline. Local validation errors are
// returned without touching the store.

func (e *Engine) restFailed(slice, what string, err error) error {
	var ve *fleet.ValidationError
	if errors.As(err, &ve) {
		return err
	}
	return e.failSlice(slice, what, err)
}

// --- Orders ---

func (e *Engine) ExecuteOrder(ctx context.Context, req *fleet.ExecuteOrderRequest) (*fleet.OrderExecution, error) {
	o, err := e.backend.ExecuteOrder(ctx, req)
	if err == nil && o == nil {
		err = errEmptyResponse
	}
	if err != nil {
		return nil, e.restFailed(livestate.SliceOrders, "execute order", err)
	}
	e.store.Dispatch(livestate.OrderExecuted{Order: *o})
	e.logFn("engine: order %s executed on %s (template %d)", o.ID, o.SerialNumber, o.TemplateID)
	return o, nil
}

func (e *Engine) CancelOrder(ctx context.Context, id string) (*fleet.OrderExecution, error) {
	o, err := e.backend.CancelOrder(ctx, id)
	if err == nil && o == nil {
		err = errEmptyResponse
	}
	if err != nil {
		return nil, e.restFailed(livestate.SliceOrders, "cancel order "+id, err)
	}
	e.store.Dispatch(livestate.OrderCancelled{Order: *o})
	return o, nil
}

func (e *Engine) UpdateOrderStatus(ctx context.Context, id, status, errorMessage string) error {
	o, err := e.backend.UpdateOrderStatus(ctx, id, status, errorMessage)
	if err != nil {
		return e.restFailed(livestate.SliceOrders, "update order "+id, err)
	}
	if o != nil {
		e.store.Dispatch(livestate.UpdateOrder{Order: *o})
		return nil
	}
	e.store.Dispatch(livestate.UpdateOrderStatus{ID: id, Status: status, ErrorMessage: errorMessage, UpdatedAt: time.Now().UTC()})
	return nil
}

func (e *Engine) RefreshOrders(ctx context.Context, opts restapi.ListOptions) ([]fleet.OrderExecution, error) {
	e.store.Dispatch(livestate.SliceLoading{Slice: livestate.SliceOrders})
	list, err := e.backend.ListOrders(ctx, opts)
	if err != nil {
		return nil, e.failSlice(livestate.SliceOrders, "list orders", err)
	}
	e.store.Dispatch(livestate.OrdersLoaded{Orders: list.Items})
	return list.Items, nil
}

// --- Templates ---

func (e *Engine) RefreshTemplates(ctx context.Context) ([]fleet.OrderTemplate, error) {
	e.store.Dispatch(livestate.SliceLoading{Slice: livestate.SliceTemplates})
	list, err := e.backend.ListOrderTemplates(ctx, restapi.ListOptions{})
	if err != nil {
		return nil, e.failSlice(livestate.SliceTemplates, "list templates", err)
	}
	e.store.Dispatch(livestate.TemplatesLoaded{Templates: list.Items})
	return list.Items, nil
}

func (e *Engine) SaveTemplate(ctx context.Context, t *fleet.OrderTemplate) (*fleet.OrderTemplate, error) {
	saved, err := e.backend.SaveOrderTemplate(ctx, t)
	if err == nil && saved == nil {
		err = errEmptyResponse
	}
	if err != nil {
		return nil, e.restFailed(livestate.SliceTemplates, "save template", err)
	}
	e.store.Dispatch(livestate.TemplateSaved{Template: *saved})
	return saved, nil
}

// DeleteTemplates removes templates in batches, retrying transient
// failures. Each successful delete is applied as it completes; the returned
// error joins every failure.
func (e *Engine) DeleteTemplates(ctx context.Context, ids []int64) error {
	var (
		mu   sync.Mutex
		errs []error
	)
	for _, batch := range restapi.Chunk(ids, deleteBatchSize) {
		var wg sync.WaitGroup
		for _, id := range batch {
			wg.Add(1)
			go func(id int64) {
				defer wg.Done()
				err := restapi.Retry(ctx, deleteAttempts, deleteBackoff, func(ctx context.Context) error {
					return e.backend.DeleteOrderTemplate(ctx, id)
				})
				if err != nil {
					mu.Lock()
					errs = append(errs, err)
					mu.Unlock()
					return
				}
				e.store.Dispatch(livestate.TemplateDeleted{ID: id})
			}(id)
		}
		wg.Wait()
	}
	if len(errs) == 0 {
		return nil
	}
	return e.failSlice(livestate.SliceTemplates, "delete templates", errors.Join(errs...))
}

// --- Robots ---

func (e *Engine) SendRobotCommand(ctx context.Context, serial string, cmd *fleet.RobotCommand) error {
	if err := e.backend.SendRobotCommand(ctx, serial, cmd); err != nil {
		return e.restFailed(livestate.SliceRobots, "command "+serial, err)
	}
	e.logFn("engine: sent %s to %s", cmd.ActionType, serial)
	return nil
}

// RefreshRobot re-reads one robot's state, health and capabilities over REST.
func (e *Engine) RefreshRobot(ctx context.Context, serial string) error {
	if err := e.fetchRobot(ctx, serial); err != nil {
		return err
	}
	caps, err := e.backend.GetRobotCapabilities(ctx, serial)
	if err != nil {
		return e.failSlice(livestate.SliceRobots, "robot "+serial+" capabilities", err)
	}
	if caps != nil {
		e.store.Dispatch(livestate.SetRobotCapabilities{Serial: serial, Capabilities: *caps})
	}
	return nil
}

// SubscribeRobot, UnsubscribeRobot and RequestRobotState are fire and
// forget: nothing is sent while the channel is down and nothing acknowledges.

func (e *Engine) SubscribeRobot(serial string) {
	e.channel.SendMessage(protocol.CommandSubscribeRobot, protocol.RobotRef{SerialNumber: serial})
}

func (e *Engine) UnsubscribeRobot(serial string) {
	e.channel.SendMessage(protocol.CommandUnsubscribeRobot, protocol.RobotRef{SerialNumber: serial})
}

func (e *Engine) RequestRobotState(serial string) {
	e.channel.SendMessage(protocol.CommandGetRobotState, protocol.RobotRef{SerialNumber: serial})
}

func (e *Engine) RemoveRobot(serial string) {
	e.store.Dispatch(livestate.RemoveRobot{Serial: serial})
}

func (e *Engine) SelectRobot(serial string) {
	e.store.Dispatch(livestate.SelectRobot{Serial: serial})
}

// --- Alerts ---

// AcknowledgeAlert and DismissAlert only touch stored alerts. Synthetic
// alerts are rebuilt from health on every read and stay listed until the
// condition clears.
func (e *Engine) AcknowledgeAlert(id string) {
	e.store.Dispatch(livestate.AcknowledgeAlert{ID: id})
}

func (e *Engine) DismissAlert(id string) {
	e.store.Dispatch(livestate.DismissAlert{ID: id})
}

func (e *Engine) ClearAlerts() {
	e.store.Dispatch(livestate.ClearAlerts{})
}

// --- Views ---

func (e *Engine) Snapshot() livestate.State {
	return e.store.Snapshot()
}

func (e *Engine) Metrics() livestate.Metrics {
	return livestate.ComputeMetrics(e.store.Snapshot(), e.threshold)
}

func (e *Engine) Alerts() []fleet.Alert {
	return livestate.DisplayAlerts(e.store.Snapshot(), e.threshold)
}

// ChannelStatus describes the live channel for status displays.
type ChannelStatus struct {
	Transport   string               `json:"transport"`
	Connected   bool                 `json:"connected"`
	LastMessage *channel.LastMessage `json:"lastMessage,omitempty"`
}

func (e *Engine) ChannelStatus() ChannelStatus {
	st := ChannelStatus{
		Transport: e.channel.Transport(),
		Connected: e.channel.IsConnected(),
	}
	if last, ok := e.channel.LastMessage(); ok {
		st.LastMessage = &last
	}
	return st
}

// Reconnect opens the channel again after a drop. Nothing missed while
// disconnected is replayed.
func (e *Engine) Reconnect(ctx context.Context) error {
	return e.channel.Connect(ctx)
}
