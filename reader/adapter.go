package reader

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"marketfeed/config"
	"marketfeed/internal/channel"
	"marketfeed/logger"
	"marketfeed/models"
)

// ExchangeSpec captures the wire-format specifics of one venue: which
// sockets to open, how to subscribe, and how to turn raw frames into
// normalized events.
type ExchangeSpec interface {
	Exchange() models.Exchange

	// Endpoints builds one entry per upstream socket for the given pairs.
	Endpoints(pairs []string) ([]Endpoint, error)

	// Parse maps one raw frame from the named endpoint into zero or more
	// normalized events. Frames on unrecognized channels return (nil, nil);
	// malformed frames return an error.
	Parse(endpoint string, frame []byte) ([]models.MarketEvent, error)
}

// Endpoint describes one upstream socket.
type Endpoint struct {
	Name string
	URL  string

	// Subscriptions to send after the socket opens. Empty when the URL
	// already encodes the streams.
	Subscriptions []SubscribeRequest

	// Envelope combines a batch of requests into one subscribe frame.
	Envelope func(reqs []SubscribeRequest) ([]byte, error)

	// Combined sends every subscription in a single request instead of
	// draining the queue in paced batches.
	Combined bool

	// Keepalive, when set, is written every KeepaliveInterval so the
	// venue does not drop an idle socket.
	Keepalive         []byte
	KeepaliveInterval time.Duration
}

// wsConn serializes writes to a websocket connection. Subscription drains,
// keepalives and teardown all write from separate goroutines.
type wsConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsConn) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *wsConn) close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.Close()
}

// Adapter maintains the websocket sessions for one exchange and feeds
// normalized events into the shared event channel. Each endpoint runs its
// own read loop with its own reconnect supervisor.
type Adapter struct {
	spec   ExchangeSpec
	cfg    config.AdapterConfig
	events *channel.Events
	log    *logger.Entry

	mu          sync.Mutex
	running     bool
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	supervisors map[string]*Supervisor

	fatal atomic.Bool
}

// New validates the adapter configuration and builds an Adapter. An empty
// or blank pair list is a ConfigError.
func New(spec ExchangeSpec, cfg config.AdapterConfig, events *channel.Events) (*Adapter, error) {
	name := string(spec.Exchange())
	if len(cfg.Symbols) == 0 {
		return nil, &ConfigError{Exchange: name, Reason: "no symbols configured"}
	}
	for _, sym := range cfg.Symbols {
		if strings.TrimSpace(sym) == "" {
			return nil, &ConfigError{Exchange: name, Reason: "blank symbol in list"}
		}
	}
	return &Adapter{
		spec:   spec,
		cfg:    cfg,
		events: events,
		log:    logger.GetLogger().WithComponent("reader." + strings.ToLower(name)),
	}, nil
}

func (a *Adapter) Exchange() models.Exchange {
	return a.spec.Exchange()
}

// Connect opens every endpoint socket and starts their read loops. Calling
// Connect on a running adapter tears down the existing session first, so
// the call is safe to repeat.
func (a *Adapter) Connect(ctx context.Context) error {
	a.Disconnect()

	endpoints, err := a.spec.Endpoints(a.cfg.Symbols)
	if err != nil {
		return err
	}

	a.mu.Lock()
	runCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.running = true
	a.fatal.Store(false)
	a.supervisors = make(map[string]*Supervisor, len(endpoints))
	for _, ep := range endpoints {
		sup := NewSupervisor(a.cfg.Reconnect)
		a.supervisors[ep.Name] = sup
		a.wg.Add(1)
		go a.run(runCtx, ep, sup)
	}
	a.mu.Unlock()

	a.log.WithFields(logger.Fields{
		"endpoints": len(endpoints),
		"symbols":   len(a.cfg.Symbols),
	}).Info("Adapter connecting")
	return nil
}

// Disconnect closes every socket, waits for the read loops to exit and
// emits a final OFFLINE status. It is a no-op on a stopped adapter.
func (a *Adapter) Disconnect() {
	a.mu.Lock()
	if !a.running {
		a.mu.Unlock()
		return
	}
	a.running = false
	cancel := a.cancel
	a.mu.Unlock()

	cancel()
	a.wg.Wait()
	a.emitStatus(context.Background(), models.StatusOffline)
	a.log.Info("Adapter disconnected")
}

// Failed reports whether any endpoint exhausted its reconnect budget.
func (a *Adapter) Failed() bool {
	return a.fatal.Load()
}

// States returns the current connection state per endpoint.
func (a *Adapter) States() map[string]ConnState {
	a.mu.Lock()
	defer a.mu.Unlock()
	states := make(map[string]ConnState, len(a.supervisors))
	for name, sup := range a.supervisors {
		states[name] = sup.State()
	}
	return states
}

func (a *Adapter) run(ctx context.Context, ep Endpoint, sup *Supervisor) {
	defer a.wg.Done()
	log := a.log.WithFields(logger.Fields{
		"exchange": a.spec.Exchange(),
		"endpoint": ep.Name,
	})

	for {
		if ctx.Err() != nil {
			return
		}

		sup.Connecting()
		dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
		conn, _, err := dialer.DialContext(ctx, ep.URL, nil)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.WithError(err).Warn("Failed to connect websocket")
			a.emitStatus(ctx, models.StatusOffline)
			if !a.delayReconnect(ctx, sup, log) {
				return
			}
			continue
		}

		sup.Connected()
		log.Info("Websocket connected")
		a.emitStatus(ctx, models.StatusOnline)

		connCtx, cancelConn := context.WithCancel(ctx)
		ws := &wsConn{conn: conn}
		a.subscribe(connCtx, ep, ws, log)
		if ep.Keepalive != nil {
			a.wg.Add(1)
			go a.keepalive(connCtx, ep, ws, log)
		}

		a.readLoop(connCtx, ep, ws, log)
		cancelConn()
		ws.close()

		if ctx.Err() != nil {
			return
		}
		a.emitStatus(ctx, models.StatusOffline)
		if !a.delayReconnect(ctx, sup, log) {
			return
		}
	}
}

// subscribe sends the endpoint's channel subscriptions, either as one
// combined request or through the paced queue.
func (a *Adapter) subscribe(ctx context.Context, ep Endpoint, ws *wsConn, log *logger.Entry) {
	if len(ep.Subscriptions) == 0 {
		return
	}
	if ep.Combined {
		frame, err := ep.Envelope(ep.Subscriptions)
		if err != nil {
			log.WithError(err).Error("Failed to build subscription request")
			return
		}
		if err := ws.write(frame); err != nil {
			log.WithError(err).Warn("Failed to send subscription request")
			return
		}
		log.WithFields(logger.Fields{
			"channels": len(ep.Subscriptions),
		}).Info("Sent subscription request")
		return
	}

	queue := newSubscriptionQueue(a.cfg.Subscription)
	queue.enqueue(ep.Subscriptions...)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		queue.drain(ctx, ep, ws.write, log)
	}()
}

func (a *Adapter) keepalive(ctx context.Context, ep Endpoint, ws *wsConn, log *logger.Entry) {
	defer a.wg.Done()
	ticker := time.NewTicker(ep.KeepaliveInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := ws.write(ep.Keepalive); err != nil {
				log.WithError(err).Debug("Keepalive write failed")
				return
			}
		}
	}
}

// readLoop consumes frames until the socket errors or ctx is cancelled.
// Parse failures are transient: they are logged and reported as OFFLINE
// without dropping the connection.
func (a *Adapter) readLoop(ctx context.Context, ep Endpoint, ws *wsConn, log *logger.Entry) {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			ws.close()
		case <-done:
		}
	}()

	for {
		_, frame, err := ws.conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				log.WithError(err).Warn("Websocket read error")
			}
			return
		}

		events, err := a.spec.Parse(ep.Name, frame)
		if err != nil {
			log.WithError(err).Warn("Failed to process upstream message")
			a.emitStatus(ctx, models.StatusOffline)
			continue
		}
		for _, evt := range events {
			if !a.events.Send(ctx, evt) && ctx.Err() == nil {
				log.WithFields(logger.Fields{
					"symbol": evt.Symbol(),
				}).Warn("Event channel full, dropping message")
			}
		}
	}
}

func (a *Adapter) delayReconnect(ctx context.Context, sup *Supervisor, log *logger.Entry) bool {
	retry, delay := sup.Disconnected()
	if !retry {
		a.fatal.Store(true)
		log.WithFields(logger.Fields{
			"attempts": a.cfg.Reconnect.MaxAttempts,
		}).Error("Max reconnection attempts reached, giving up")
		return false
	}
	log.WithFields(logger.Fields{
		"attempt": sup.Attempts(),
		"delay":   delay.String(),
	}).Warn("Websocket disconnected, reconnecting")
	select {
	case <-time.After(delay):
		return true
	case <-ctx.Done():
		return false
	}
}

func (a *Adapter) emitStatus(ctx context.Context, status models.ConnStatus) {
	evt := models.MarketEvent{
		Status: &models.ConnectionStatusEvent{
			Exchange:  a.spec.Exchange(),
			Status:    status,
			Timestamp: time.Now().UnixMilli(),
		},
	}
	a.events.Send(ctx, evt)
}
