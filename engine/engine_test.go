package engine

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"testing"

	"agvdash/channel"
	"agvdash/config"
	"agvdash/fleet"
	"agvdash/livestate"
	"agvdash/protocol"
	"agvdash/restapi"
)

// --- fakes ---

type mockBackend struct {
	mu        sync.Mutex
	serials   []string
	states    map[string]fleet.RobotState
	health    map[string]fleet.RobotHealth
	orders    []fleet.OrderExecution
	templates []fleet.OrderTemplate
	deleted   []int64
	commands  []string

	// failWith is returned by every call except deletes when set.
	failWith  error
	deleteErr map[int64]error
}

func newMockBackend() *mockBackend {
	return &mockBackend{
		states:    map[string]fleet.RobotState{},
		health:    map[string]fleet.RobotHealth{},
		deleteErr: map[int64]error{},
	}
}

func (m *mockBackend) ListConnectedRobots(context.Context) ([]string, error) {
	return m.serials, m.failWith
}

func (m *mockBackend) GetRobotState(_ context.Context, serial string) (*fleet.RobotState, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	s := m.states[serial]
	return &s, nil
}

func (m *mockBackend) GetRobotHealth(_ context.Context, serial string) (*fleet.RobotHealth, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	h := m.health[serial]
	return &h, nil
}

func (m *mockBackend) GetRobotCapabilities(_ context.Context, serial string) (*fleet.RobotCapabilities, error) {
	return &fleet.RobotCapabilities{SerialNumber: serial, SupportedActions: []string{"pick"}}, m.failWith
}

func (m *mockBackend) SendRobotCommand(_ context.Context, serial string, cmd *fleet.RobotCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	if m.failWith != nil {
		return m.failWith
	}
	m.mu.Lock()
	m.commands = append(m.commands, serial+":"+cmd.ActionType)
	m.mu.Unlock()
	return nil
}

func (m *mockBackend) ListOrders(context.Context, restapi.ListOptions) (*restapi.ListResponse[fleet.OrderExecution], error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	return &restapi.ListResponse[fleet.OrderExecution]{Items: m.orders, Count: len(m.orders)}, nil
}

func (m *mockBackend) ExecuteOrder(_ context.Context, req *fleet.ExecuteOrderRequest) (*fleet.OrderExecution, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if m.failWith != nil {
		return nil, m.failWith
	}
	return &fleet.OrderExecution{ID: "o-new", TemplateID: req.TemplateID, SerialNumber: req.SerialNumber, Status: fleet.OrderCreated}, nil
}

func (m *mockBackend) CancelOrder(_ context.Context, id string) (*fleet.OrderExecution, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	return &fleet.OrderExecution{ID: id, Status: fleet.OrderCancelled}, nil
}

func (m *mockBackend) UpdateOrderStatus(_ context.Context, id, status, msg string) (*fleet.OrderExecution, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	return nil, nil
}

func (m *mockBackend) ListOrderTemplates(context.Context, restapi.ListOptions) (*restapi.ListResponse[fleet.OrderTemplate], error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	return &restapi.ListResponse[fleet.OrderTemplate]{Items: m.templates, Count: len(m.templates)}, nil
}

func (m *mockBackend) SaveOrderTemplate(_ context.Context, t *fleet.OrderTemplate) (*fleet.OrderTemplate, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	out := *t
	if out.ID == 0 {
		out.ID = 100
	}
	return &out, m.failWith
}

func (m *mockBackend) DeleteOrderTemplate(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.deleteErr[id]; err != nil {
		return err
	}
	m.deleted = append(m.deleted, id)
	return nil
}

type mockTransport struct {
	mu      sync.Mutex
	openErr error
	onFrame channel.FrameFunc
	onDrop  channel.DropFunc
	written []protocol.Frame
}

func (t *mockTransport) Name() string { return "mock" }

func (t *mockTransport) Open(_ context.Context, _ string, onFrame channel.FrameFunc, onDrop channel.DropFunc) error {
	if t.openErr != nil {
		return t.openErr
	}
	t.onFrame, t.onDrop = onFrame, onDrop
	return nil
}

func (t *mockTransport) Write(f protocol.Frame) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.written = append(t.written, f)
	return nil
}

func (t *mockTransport) Close() error { return nil }

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) record(evt Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
}

func (r *recorder) notices() []NoticeEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []NoticeEvent
	for _, e := range r.events {
		if n, ok := e.Payload.(NoticeEvent); ok {
			out = append(out, n)
		}
	}
	return out
}

func (r *recorder) count(t EventType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Type == t {
			n++
		}
	}
	return n
}

func newTestEngine(t *testing.T, b *mockBackend, tr *mockTransport) (*Engine, *recorder) {
	t.Helper()
	e := New(Config{
		AppConfig: config.Defaults(),
		Backend:   b,
		Transport: tr,
		LogFunc:   func(string, ...any) {},
	})
	rec := &recorder{}
	e.Events.Subscribe(rec.record)
	t.Cleanup(e.Stop)
	return e, rec
}

func frame(event string, payload any) protocol.Frame {
	data, _ := json.Marshal(payload)
	return protocol.Frame{Event: event, Data: data}
}

// --- tests ---

func TestStartLoadsSnapshotThenConnects(t *testing.T) {
	b := newMockBackend()
	b.serials = []string{"R1", "R2"}
	b.states["R1"] = fleet.RobotState{SerialNumber: "R1", OrderID: "o1"}
	b.health["R1"] = fleet.RobotHealth{IsOnline: true, BatteryCharge: 70}
	b.orders = []fleet.OrderExecution{{ID: "o1", Status: fleet.OrderExecuting}}
	b.templates = []fleet.OrderTemplate{{ID: 1, Name: "loop", NodeIDs: []string{"n1"}}}
	tr := &mockTransport{}

	e, rec := newTestEngine(t, b, tr)
	e.Start(context.Background())

	s := e.Snapshot()
	if len(s.Robots.ConnectedRobots) != 2 {
		t.Fatalf("ConnectedRobots = %v", s.Robots.ConnectedRobots)
	}
	if s.Robots.RobotStates["R1"].OrderID != "o1" || s.Robots.RobotHealth["R1"].BatteryCharge != 70 {
		t.Fatalf("robot R1 not loaded: %+v", s.Robots)
	}
	if len(s.Orders.Executions) != 1 || len(s.Templates.OrderTemplates) != 1 {
		t.Fatalf("orders/templates not loaded")
	}
	if s.Robots.Loading || s.Orders.Loading || s.Templates.Loading {
		t.Fatal("slice still loading")
	}
	if !e.ChannelStatus().Connected {
		t.Fatal("channel not connected")
	}
	if rec.count(EventChannelConnected) != 1 {
		t.Fatalf("channel connected events = %d", rec.count(EventChannelConnected))
	}
}

func TestSnapshotFailureRecordedOnSlices(t *testing.T) {
	b := newMockBackend()
	b.failWith = &restapi.Error{Kind: restapi.KindHTTP, StatusCode: 503, Message: restapi.MsgUnavailable}
	e, _ := newTestEngine(t, b, &mockTransport{})
	e.Start(context.Background())

	s := e.Snapshot()
	for name, msg := range map[string]string{
		"robots":    s.Robots.Error,
		"orders":    s.Orders.Error,
		"templates": s.Templates.Error,
	} {
		if msg != restapi.MsgUnavailable {
			t.Errorf("%s error = %q", name, msg)
		}
	}
	// start-up still opens the channel
	if !e.ChannelStatus().Connected {
		t.Fatal("channel not connected after snapshot failure")
	}
}

func TestChannelConnectFailureRaisesNotice(t *testing.T) {
	tr := &mockTransport{openErr: errors.New("refused")}
	e, rec := newTestEngine(t, newMockBackend(), tr)
	e.Start(context.Background())

	n := rec.notices()
	if len(n) != 1 || n[0].Message != channel.NoticeConnectFailed {
		t.Fatalf("notices = %+v", n)
	}
}

func TestFramesReconcileIntoStore(t *testing.T) {
	tr := &mockTransport{}
	e, rec := newTestEngine(t, newMockBackend(), tr)
	e.Start(context.Background())

	tr.onFrame(frame(protocol.EventRobotConnected, protocol.RobotConnected{SerialNumber: "R1"}))
	tr.onFrame(frame(protocol.EventRobotHealthUpdate, protocol.RobotHealthUpdate{
		SerialNumber: "R1",
		Health:       fleet.RobotHealth{IsOnline: true, BatteryCharge: 15},
	}))

	s := e.Snapshot()
	if low := livestate.LowBattery(s, e.LowBatteryThreshold()); len(low) != 1 || low[0] != "R1" {
		t.Fatalf("LowBattery = %v", low)
	}
	if m := e.Metrics(); m.TotalRobots != 1 || m.AverageBattery != 15 {
		t.Fatalf("metrics = %+v", m)
	}

	tr.onFrame(frame(protocol.EventRobotDisconnected, protocol.RobotDisconnected{SerialNumber: "R1"}))
	s = e.Snapshot()
	if len(livestate.LowBattery(s, e.LowBatteryThreshold())) != 0 {
		t.Fatal("R1 still low after disconnect")
	}
	if _, ok := s.Robots.Health("R1"); ok {
		t.Fatal("R1 health survived disconnect")
	}

	n := rec.notices()
	if len(n) != 2 || n[0].Level != fleet.AlertInfo || n[1].Level != fleet.AlertWarning {
		t.Fatalf("notices = %+v", n)
	}
	if rec.count(EventRobotsChanged) < 2 || rec.count(EventRobotHealthUpdated) != 1 {
		t.Fatal("store changes not emitted on the bus")
	}

	last, ok := e.Channel().LastMessage()
	if !ok || last.Event != protocol.EventRobotDisconnected {
		t.Fatalf("last message = %+v", last)
	}
}

func TestOrderUpdateFailedRaisesErrorNotice(t *testing.T) {
	b := newMockBackend()
	b.orders = []fleet.OrderExecution{{ID: "o1", Status: fleet.OrderExecuting}}
	tr := &mockTransport{}
	e, rec := newTestEngine(t, b, tr)
	e.Start(context.Background())

	tr.onFrame(frame(protocol.EventOrderUpdate, fleet.OrderExecution{ID: "o1", Status: fleet.OrderFailed, ErrorMessage: "blocked"}))
	if o, _ := e.Snapshot().Orders.Order("o1"); o.Status != fleet.OrderFailed {
		t.Fatalf("o1 = %+v", o)
	}
	n := rec.notices()
	if len(n) != 1 || n[0].Level != fleet.AlertError || n[0].Message != "Order o1 failed: blocked" {
		t.Fatalf("notices = %+v", n)
	}

	// unknown order id: ignored
	tr.onFrame(frame(protocol.EventOrderUpdate, fleet.OrderExecution{ID: "ghost", Status: fleet.OrderCompleted}))
	if len(e.Snapshot().Orders.Executions) != 1 {
		t.Fatal("unknown order inserted")
	}
}

func TestAlertEventsStored(t *testing.T) {
	tr := &mockTransport{}
	e, rec := newTestEngine(t, newMockBackend(), tr)
	e.Start(context.Background())

	tr.onFrame(frame(protocol.EventSystemAlert, protocol.SystemAlert{Level: "error", Title: "E-stop", Message: "zone 3"}))
	tr.onFrame(frame(protocol.EventBatteryAlert, protocol.BatteryAlert{SerialNumber: "R2", BatteryCharge: 9}))
	tr.onFrame(frame(protocol.EventErrorAlert, protocol.ErrorAlert{SerialNumber: "R3", ErrorCount: 2}))
	tr.onFrame(frame("mystery_event", map[string]string{}))

	items := e.Snapshot().Alerts.Items
	if len(items) != 3 {
		t.Fatalf("alerts = %+v", items)
	}
	if items[2].Title != "E-stop" || items[2].Type != fleet.AlertError {
		t.Fatalf("system alert = %+v", items[2])
	}
	if items[1].SerialNumber != "R2" || items[1].Type != fleet.AlertWarning {
		t.Fatalf("battery alert = %+v", items[1])
	}
	if rec.count(EventAlertRaised) != 3 || len(rec.notices()) != 3 {
		t.Fatal("alerts not announced")
	}

	e.AcknowledgeAlert(items[0].ID)
	e.DismissAlert(items[1].ID)
	if got := e.Snapshot().Alerts.Items; len(got) != 2 || !got[0].Acknowledged {
		t.Fatalf("after ack/dismiss = %+v", got)
	}
	e.ClearAlerts()
	if len(e.Snapshot().Alerts.Items) != 0 {
		t.Fatal("alerts not cleared")
	}
}

func TestExecuteOrder(t *testing.T) {
	b := newMockBackend()
	e, _ := newTestEngine(t, b, &mockTransport{})

	o, err := e.ExecuteOrder(context.Background(), &fleet.ExecuteOrderRequest{TemplateID: 3, SerialNumber: "R1"})
	if err != nil {
		t.Fatalf("ExecuteOrder: %v", err)
	}
	if got := e.Snapshot().Orders.Executions; len(got) != 1 || got[0].ID != o.ID {
		t.Fatalf("executions = %+v", got)
	}

	// validation errors never reach the slice
	_, err = e.ExecuteOrder(context.Background(), &fleet.ExecuteOrderRequest{})
	var ve *fleet.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v", err)
	}
	if e.Snapshot().Orders.Error != "" {
		t.Fatal("validation error stored on slice")
	}

	b.failWith = &restapi.Error{StatusCode: 401, Message: restapi.MsgSessionExpired}
	_, err = e.ExecuteOrder(context.Background(), &fleet.ExecuteOrderRequest{TemplateID: 3, SerialNumber: "R1"})
	if !errors.Is(err, restapi.ErrUnauthorized) {
		t.Fatalf("err = %v", err)
	}
	if e.Snapshot().Orders.Error != restapi.MsgSessionExpired {
		t.Fatalf("slice error = %q", e.Snapshot().Orders.Error)
	}
}

func TestCancelAndUpdateStatus(t *testing.T) {
	b := newMockBackend()
	b.orders = []fleet.OrderExecution{{ID: "o1", Status: fleet.OrderExecuting}}
	e, _ := newTestEngine(t, b, &mockTransport{})
	e.RefreshOrders(context.Background(), restapi.ListOptions{})

	if _, err := e.CancelOrder(context.Background(), "o1"); err != nil {
		t.Fatalf("CancelOrder: %v", err)
	}
	if o, _ := e.Snapshot().Orders.Order("o1"); o.Status != fleet.OrderCancelled {
		t.Fatalf("o1 = %+v", o)
	}

	if err := e.UpdateOrderStatus(context.Background(), "o1", fleet.OrderCompleted, ""); err != nil {
		t.Fatalf("UpdateOrderStatus: %v", err)
	}
	if o, _ := e.Snapshot().Orders.Order("o1"); o.Status != fleet.OrderCompleted || o.UpdatedAt.IsZero() {
		t.Fatalf("o1 = %+v", o)
	}
}

func TestDeleteTemplatesBatches(t *testing.T) {
	b := newMockBackend()
	for i := int64(1); i <= 12; i++ {
		b.templates = append(b.templates, fleet.OrderTemplate{ID: i, Name: "t", NodeIDs: []string{"n"}})
	}
	b.deleteErr[5] = &restapi.Error{StatusCode: http.StatusNotFound, Message: restapi.MsgNotFound}
	e, _ := newTestEngine(t, b, &mockTransport{})
	e.RefreshTemplates(context.Background())

	ids := make([]int64, 0, 12)
	for i := int64(1); i <= 12; i++ {
		ids = append(ids, i)
	}
	err := e.DeleteTemplates(context.Background(), ids)
	if err == nil {
		t.Fatal("expected error for template 5")
	}
	left := e.Snapshot().Templates.OrderTemplates
	if len(left) != 1 || left[0].ID != 5 {
		t.Fatalf("remaining = %+v", left)
	}
	if e.Snapshot().Templates.Error != restapi.MsgNotFound {
		t.Fatalf("slice error = %q", e.Snapshot().Templates.Error)
	}
}

func TestSaveTemplate(t *testing.T) {
	e, _ := newTestEngine(t, newMockBackend(), &mockTransport{})
	saved, err := e.SaveTemplate(context.Background(), &fleet.OrderTemplate{Name: "a", NodeIDs: []string{"n1"}})
	if err != nil || saved.ID != 100 {
		t.Fatalf("saved = %+v, err = %v", saved, err)
	}
	if got := e.Snapshot().Templates.OrderTemplates; len(got) != 1 || got[0].ID != 100 {
		t.Fatalf("templates = %+v", got)
	}
}

func TestRobotCommandsAndChannelSends(t *testing.T) {
	b := newMockBackend()
	tr := &mockTransport{}
	e, _ := newTestEngine(t, b, tr)

	// not connected: dropped
	e.SubscribeRobot("R1")
	if len(tr.written) != 0 {
		t.Fatal("frame sent while disconnected")
	}

	e.Start(context.Background())
	e.SubscribeRobot("R1")
	e.RequestRobotState("R1")
	e.UnsubscribeRobot("R1")
	if len(tr.written) != 3 {
		t.Fatalf("written = %+v", tr.written)
	}
	if tr.written[1].Event != protocol.CommandGetRobotState || string(tr.written[1].Data) != `{"serialNumber":"R1"}` {
		t.Fatalf("frame = %+v", tr.written[1])
	}

	if err := e.SendRobotCommand(context.Background(), "R1", &fleet.RobotCommand{ActionType: "pause"}); err != nil {
		t.Fatalf("SendRobotCommand: %v", err)
	}
	if len(b.commands) != 1 || b.commands[0] != "R1:pause" {
		t.Fatalf("commands = %v", b.commands)
	}
}

func TestRefreshRobotOverwritesChannelState(t *testing.T) {
	b := newMockBackend()
	b.states["R1"] = fleet.RobotState{SerialNumber: "R1", HeaderID: 1}
	tr := &mockTransport{}
	e, _ := newTestEngine(t, b, tr)
	e.Start(context.Background())

	tr.onFrame(frame(protocol.EventRobotStateUpdate, protocol.RobotStateUpdate{
		SerialNumber: "R1",
		State:        fleet.RobotState{SerialNumber: "R1", HeaderID: 50},
	}))
	if err := e.RefreshRobot(context.Background(), "R1"); err != nil {
		t.Fatalf("RefreshRobot: %v", err)
	}
	s := e.Snapshot()
	if s.Robots.RobotStates["R1"].HeaderID != 1 {
		t.Fatalf("HeaderID = %d, want REST value 1 (last write wins)", s.Robots.RobotStates["R1"].HeaderID)
	}
	if caps := s.Robots.RobotCapabilities["R1"]; len(caps.SupportedActions) != 1 {
		t.Fatalf("capabilities = %+v", caps)
	}
}

func TestChannelDropEmitsDisconnected(t *testing.T) {
	tr := &mockTransport{}
	e, rec := newTestEngine(t, newMockBackend(), tr)
	e.Start(context.Background())

	tr.onDrop(errors.New("eof"))
	if e.ChannelStatus().Connected {
		t.Fatal("still connected")
	}
	if rec.count(EventChannelDisconnected) != 1 {
		t.Fatal("no disconnected event")
	}
	found := false
	for _, n := range rec.notices() {
		if n.Message == channel.NoticeDisconnected {
			found = true
		}
	}
	if !found {
		t.Fatal("no disconnect notice")
	}

	if err := e.Reconnect(context.Background()); err != nil {
		t.Fatalf("Reconnect: %v", err)
	}
	if rec.count(EventChannelConnected) != 2 {
		t.Fatalf("connected events = %d", rec.count(EventChannelConnected))
	}
}

func TestEventBusFilters(t *testing.T) {
	bus := NewEventBus()
	var got []EventType
	id := bus.SubscribeTypes(func(e Event) { got = append(got, e.Type) }, EventNotice)
	bus.Emit(Event{Type: EventAlertRaised})
	bus.Emit(Event{Type: EventNotice})
	bus.Unsubscribe(id)
	bus.Emit(Event{Type: EventNotice})
	if len(got) != 1 || got[0] != EventNotice {
		t.Fatalf("got = %v", got)
	}
	if EventNotice.String() != "notice" || EventChannelDisconnected.String() != "channel-status" {
		t.Fatal("event names")
	}
}

func TestEventBusSurvivesPanickingSubscriber(t *testing.T) {
	bus := NewEventBus()
	var logged int
	bus.SetLogFunc(func(string, ...any) { logged++ })

	var delivered int
	bus.Subscribe(func(Event) { panic("boom") })
	bus.Subscribe(func(Event) { delivered++ })

	bus.Emit(Event{Type: EventNotice})
	if delivered != 1 {
		t.Fatalf("delivered = %d, want 1", delivered)
	}
	if logged != 1 {
		t.Fatalf("logged = %d, want 1", logged)
	}
}
