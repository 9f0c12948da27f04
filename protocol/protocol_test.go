package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
)

func TestNewFrameRoundTrip(t *testing.T) {
	f, err := NewFrame(CommandSubscribeRobot, &RobotRef{SerialNumber: "R1"})
	if err != nil {
		t.Fatalf("NewFrame: %v", err)
	}
	if f.ID == "" {
		t.Error("ID should not be empty")
	}
	if f.Timestamp.IsZero() {
		t.Error("Timestamp should be set")
	}

	data, err := f.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := DecodeFrame(data)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if got.Event != CommandSubscribeRobot {
		t.Errorf("event = %q, want %q", got.Event, CommandSubscribeRobot)
	}
	var ref RobotRef
	if err := json.Unmarshal(got.Data, &ref); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if ref.SerialNumber != "R1" {
		t.Errorf("serialNumber = %q, want R1", ref.SerialNumber)
	}
}

func TestDecodeFrame_MissingEvent(t *testing.T) {
	if _, err := DecodeFrame([]byte(`{"data":{}}`)); err == nil {
		t.Fatal("expected error for frame without event name")
	}
	if _, err := DecodeFrame([]byte(`not json`)); err == nil {
		t.Fatal("expected error for invalid json")
	}
}

func TestDecode_HealthUpdate(t *testing.T) {
	data := `{"serialNumber":"R1","health":{"isOnline":true,"batteryCharge":15,"hasErrors":false,"errorCount":0}}`
	evt, err := Decode(EventRobotHealthUpdate, []byte(data))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	p, ok := evt.(*RobotHealthUpdate)
	if !ok {
		t.Fatalf("type = %T, want *RobotHealthUpdate", evt)
	}
	if p.SerialNumber != "R1" {
		t.Errorf("serial = %q, want R1", p.SerialNumber)
	}
	if !p.Health.IsOnline || p.Health.BatteryCharge != 15 {
		t.Errorf("health = %+v", p.Health)
	}
}

func TestDecode_StateFallsBackToEmbeddedSerial(t *testing.T) {
	data := `{"state":{"serialNumber":"R7","operatingMode":"AUTOMATIC","batteryState":{"batteryCharge":80}}}`
	evt, err := Decode(EventRobotStateUpdate, []byte(data))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	p := evt.(*RobotStateUpdate)
	if p.SerialNumber != "R7" {
		t.Errorf("serial = %q, want R7", p.SerialNumber)
	}
	if p.State.Battery.BatteryCharge != 80 {
		t.Errorf("battery = %v, want 80", p.State.Battery.BatteryCharge)
	}
}

func TestDecode_OrderUpdate(t *testing.T) {
	data := `{"orderId":"ord-1","serialNumber":"R1","status":"EXECUTING"}`
	evt, err := Decode(EventOrderUpdate, []byte(data))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	p := evt.(*OrderUpdate)
	if p.Order.ID != "ord-1" || p.Order.Status != "EXECUTING" {
		t.Errorf("order = %+v", p.Order)
	}
}

func TestDecode_Rejects(t *testing.T) {
	cases := []struct {
		event string
		data  string
	}{
		{EventRobotConnected, `{}`},
		{EventRobotHealthUpdate, `{"health":{"isOnline":true}}`},
		{EventOrderUpdate, `{"status":"FAILED"}`},
		{EventBatteryAlert, `{"batteryCharge":5}`},
		{EventRobotDisconnected, ``},
		{EventSystemAlert, `{broken`},
	}
	for _, tc := range cases {
		evt, err := Decode(tc.event, []byte(tc.data))
		if err == nil {
			t.Errorf("%s %s: expected error", tc.event, tc.data)
		}
		if evt != nil {
			t.Errorf("%s: event should be nil on error, got %T", tc.event, evt)
		}
	}
}

func TestDecode_Unknown(t *testing.T) {
	_, err := Decode("robot_dance", []byte(`{}`))
	if !errors.Is(err, ErrUnknownEvent) {
		t.Errorf("err = %v, want ErrUnknownEvent", err)
	}
}

// recordingHandler captures the events it receives, in order.
type recordingHandler struct {
	NoOpHandler
	calls []string
}

func (h *recordingHandler) HandleRobotConnected(_ *Frame, p *RobotConnected) {
	h.calls = append(h.calls, "connected:"+p.SerialNumber)
}

func (h *recordingHandler) HandleRobotHealth(_ *Frame, p *RobotHealthUpdate) {
	h.calls = append(h.calls, fmt.Sprintf("health:%s:%.0f", p.SerialNumber, p.Health.BatteryCharge))
}

func (h *recordingHandler) HandleRobotDisconnected(_ *Frame, p *RobotDisconnected) {
	h.calls = append(h.calls, "disconnected:"+p.SerialNumber)
}

func (h *recordingHandler) HandleErrorAlert(_ *Frame, p *ErrorAlert) {
	h.calls = append(h.calls, fmt.Sprintf("error_alert:%s:%d", p.SerialNumber, p.ErrorCount))
}

func TestRouter_DispatchesInOrder(t *testing.T) {
	h := &recordingHandler{}
	r := NewRouter(h)
	var logged []string
	r.SetLogFunc(func(format string, args ...any) {
		logged = append(logged, fmt.Sprintf(format, args...))
	})

	frames := []Frame{
		{Event: EventRobotConnected, Data: json.RawMessage(`{"serialNumber":"R1"}`)},
		{Event: "something_new", Data: json.RawMessage(`{"x":1}`)},
		{Event: EventRobotHealthUpdate, Data: json.RawMessage(`{"serialNumber":"R1","health":{"batteryCharge":15}}`)},
		{Event: EventRobotHealthUpdate, Data: json.RawMessage(`{"health":{"batteryCharge":15}}`)},
		{Event: EventErrorAlert, Data: json.RawMessage(`{"serialNumber":"R1","errorCount":2}`)},
		{Event: EventRobotDisconnected, Data: json.RawMessage(`{"serialNumber":"R1"}`)},
	}
	for _, f := range frames {
		r.HandleFrame(f)
	}

	want := []string{"connected:R1", "health:R1:15", "error_alert:R1:2", "disconnected:R1"}
	if len(h.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", h.calls, want)
	}
	for i := range want {
		if h.calls[i] != want[i] {
			t.Errorf("call %d = %q, want %q", i, h.calls[i], want[i])
		}
	}
	// Only the malformed health frame is logged; the unknown event is silent.
	if len(logged) != 1 {
		t.Errorf("logged = %v, want exactly one entry", logged)
	}
}

func TestIsKnownEvent(t *testing.T) {
	for _, e := range InboundEvents {
		if !IsKnownEvent(e) {
			t.Errorf("%s should be known", e)
		}
	}
	if IsKnownEvent(CommandSubscribeRobot) {
		t.Error("outbound commands are not inbound events")
	}
}
