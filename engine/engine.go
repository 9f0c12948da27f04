package engine

import (
	"context"
	"log"
	"sync"
	"time"

	"agvdash/channel"
	"agvdash/config"
	"agvdash/fleet"
	"agvdash/livestate"
	"agvdash/protocol"
	"agvdash/restapi"
)

type LogFunc func(format string, args ...any)

// Backend is the slice of the fleet REST API the engine drives.
type Backend interface {
	ListConnectedRobots(ctx context.Context) ([]string, error)
	GetRobotState(ctx context.Context, serial string) (*fleet.RobotState, error)
	GetRobotHealth(ctx context.Context, serial string) (*fleet.RobotHealth, error)
	GetRobotCapabilities(ctx context.Context, serial string) (*fleet.RobotCapabilities, error)
	SendRobotCommand(ctx context.Context, serial string, cmd *fleet.RobotCommand) error

	ListOrders(ctx context.Context, opts restapi.ListOptions) (*restapi.ListResponse[fleet.OrderExecution], error)
	ExecuteOrder(ctx context.Context, req *fleet.ExecuteOrderRequest) (*fleet.OrderExecution, error)
	CancelOrder(ctx context.Context, id string) (*fleet.OrderExecution, error)
	UpdateOrderStatus(ctx context.Context, id, status, errorMessage string) (*fleet.OrderExecution, error)

	ListOrderTemplates(ctx context.Context, opts restapi.ListOptions) (*restapi.ListResponse[fleet.OrderTemplate], error)
	SaveOrderTemplate(ctx context.Context, t *fleet.OrderTemplate) (*fleet.OrderTemplate, error)
	DeleteOrderTemplate(ctx context.Context, id int64) error
}

var _ Backend = (*restapi.Client)(nil)

type Config struct {
	AppConfig *config.Config
	Backend   Backend
	Transport channel.Transport
	LogFunc   LogFunc
}

type Engine struct {
	cfg     *config.Config
	backend Backend
	store   *livestate.Store
	channel *channel.Client
	router  *protocol.Router
	Events  *EventBus
	logFn   LogFunc

	threshold float64

	stopOnce sync.Once
	stopChan chan struct{}

	connMu      sync.Mutex
	chConnected bool
}

func New(c Config) *Engine {
	logFn := c.LogFunc
	if logFn == nil {
		logFn = log.Printf
	}
	threshold := c.AppConfig.Alerts.LowBatteryThreshold
	if threshold <= 0 {
		threshold = livestate.DefaultLowBatteryThreshold
	}
	e := &Engine{
		cfg:       c.AppConfig,
		backend:   c.Backend,
		store:     livestate.NewStore(),
		Events:    NewEventBus(),
		logFn:     logFn,
		threshold: threshold,
		stopChan:  make(chan struct{}),
	}

	e.Events.SetLogFunc(logFn)

	e.router = protocol.NewRouter(&frameHandler{e: e})
	e.router.SetLogFunc(logFn)

	e.channel = channel.NewClient(c.Transport, c.AppConfig.Backend.Token, e.router.HandleFrame)
	e.channel.SetLogFunc(channel.LogFunc(logFn))
	e.channel.SetNotifier(e.notice)
	e.channel.SetStatusFunc(func(bool) { e.checkConnectionStatus() })

	e.store.Subscribe((&storeEmitter{bus: e.Events}).emit)
	return e
}

// Start loads the REST snapshot, then opens the live channel. Neither a
// snapshot failure nor a channel failure stops start-up.
func (e *Engine) Start(ctx context.Context) {
	e.loadSnapshot(ctx)

	if err := e.channel.Connect(ctx); err != nil {
		e.logFn("engine: %v", err)
	}

	e.checkConnectionStatus()
	go e.connectionHealthLoop()

	e.logFn("engine: started")
}

func (e *Engine) Stop() {
	e.stopOnce.Do(func() { close(e.stopChan) })
	e.channel.Disconnect()
	e.logFn("engine: stopped")
}

// Accessors
func (e *Engine) AppConfig() *config.Config     { return e.cfg }
func (e *Engine) Store() *livestate.Store       { return e.store }
func (e *Engine) Channel() *channel.Client      { return e.channel }
func (e *Engine) LowBatteryThreshold() float64 { return e.threshold }

// HandleFrame feeds one inbound frame through the router, as if it had
// arrived on the channel.
func (e *Engine) HandleFrame(f protocol.Frame) {
	e.router.HandleFrame(f)
}

func (e *Engine) loadSnapshot(ctx context.Context) {
	for _, s := range []string{livestate.SliceRobots, livestate.SliceOrders, livestate.SliceTemplates} {
		e.store.Dispatch(livestate.SliceLoading{Slice: s})
	}

	if serials, err := e.backend.ListConnectedRobots(ctx); err != nil {
		e.failSlice(livestate.SliceRobots, "load robots", err)
	} else {
		e.store.Dispatch(livestate.SetConnectedRobots{Serials: serials})
		for _, serial := range serials {
			e.fetchRobot(ctx, serial)
		}
	}

	if _, err := e.RefreshTemplates(ctx); err != nil {
		e.logFn("engine: snapshot templates: %v", err)
	}
	if _, err := e.RefreshOrders(ctx, restapi.ListOptions{}); err != nil {
		e.logFn("engine: snapshot orders: %v", err)
	}

	s := e.store.Snapshot()
	e.logFn("engine: snapshot loaded: %d robots, %d orders, %d templates",
		len(s.Robots.ConnectedRobots), len(s.Orders.Executions), len(s.Templates.OrderTemplates))
}

// fetchRobot writes whatever REST returns for serial into the store. A
// result that lands after a newer channel event still overwrites it.
func (e *Engine) fetchRobot(ctx context.Context, serial string) error {
	state, err := e.backend.GetRobotState(ctx, serial)
	if err != nil {
		return e.failSlice(livestate.SliceRobots, "robot "+serial+" state", err)
	}
	if state != nil {
		e.store.Dispatch(livestate.UpdateRobotState{Serial: serial, State: *state})
	}

	health, err := e.backend.GetRobotHealth(ctx, serial)
	if err != nil {
		return e.failSlice(livestate.SliceRobots, "robot "+serial+" health", err)
	}
	if health != nil {
		e.store.Dispatch(livestate.UpdateRobotHealth{Serial: serial, Health: *health})
	}
	return nil
}

// failSlice records a REST failure on the slice and returns err unchanged.
func (e *Engine) failSlice(slice, what string, err error) error {
	e.logFn("engine: %s: %v", what, err)
	e.store.Dispatch(livestate.SliceFailed{Slice: slice, Message: restapi.Message(err)})
	return err
}

// notice raises a transient operator notification.
func (e *Engine) notice(level, message string) {
	e.Events.Emit(Event{Type: EventNotice, Payload: NoticeEvent{Level: level, Message: message}})
}

func (e *Engine) checkConnectionStatus() {
	up := e.channel.IsConnected()

	e.connMu.Lock()
	changed := up != e.chConnected
	e.chConnected = up
	e.connMu.Unlock()

	if !changed {
		return
	}
	name := e.channel.Transport()
	if up {
		e.Events.Emit(Event{Type: EventChannelConnected, Payload: ConnectionEvent{Connected: true, Detail: name + " connected"}})
	} else {
		e.Events.Emit(Event{Type: EventChannelDisconnected, Payload: ConnectionEvent{Connected: false, Detail: name + " disconnected"}})
	}
}

func (e *Engine) connectionHealthLoop() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-e.stopChan:
			return
		case <-ticker.C:
			e.checkConnectionStatus()
		}
	}
}
