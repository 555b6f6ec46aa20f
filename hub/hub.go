// Package hub fans market events out to websocket subscribers. It owns the
// listening server, the client set and the per-client protocol policy:
// allowlisted source IPs, a payload size cap, a rolling rate limit and a
// ping liveness sweep.
package hub

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"marketfeed/config"
	"marketfeed/logger"
	"marketfeed/models"
)

const rateWindow = 10 * time.Second

// Hub accepts websocket clients and broadcasts envelopes to them. One Hub
// serves one listener; construct it, then drive it with Run.
type Hub struct {
	cfg      config.HubConfig
	log      *logger.Entry
	upgrader websocket.Upgrader
	allowed  map[string]struct{}

	mu    sync.RWMutex
	conns map[*connection]struct{}
	ids   map[string]*connection
}

func New(cfg config.HubConfig) *Hub {
	allowed := make(map[string]struct{}, len(cfg.AllowedIPs))
	for _, ip := range cfg.AllowedIPs {
		allowed[ip] = struct{}{}
	}
	return &Hub{
		cfg: cfg,
		log: logger.GetLogger().WithComponent("hub"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		allowed: allowed,
		conns:   make(map[*connection]struct{}),
		ids:     make(map[string]*connection),
	}
}

// Run serves websocket upgrades until ctx is cancelled, then shuts the
// listener down and terminates every client.
func (h *Hub) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", h.handleWS)
	server := &http.Server{Addr: h.cfg.Addr(), Handler: mux}

	go h.sweep(ctx)

	errCh := make(chan error, 1)
	go func() {
		h.log.WithFields(logger.Fields{"addr": server.Addr}).Info("Websocket server listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
		h.closeAll()
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (h *Hub) handleWS(w http.ResponseWriter, r *http.Request) {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("Websocket upgrade failed")
		return
	}
	conn := newConnection(ws, ip)

	if len(h.allowed) > 0 {
		if _, ok := h.allowed[ip]; !ok {
			h.log.WithFields(logger.Fields{"ip": ip}).Warn("Connection from disallowed IP terminated")
			conn.terminate()
			return
		}
	}
	h.mu.Lock()
	if len(h.conns) >= h.cfg.MaxClients {
		h.mu.Unlock()
		h.log.WithFields(logger.Fields{"ip": ip}).Warn("Max clients reached, rejecting connection")
		conn.closeWith(websocket.CloseTryAgainLater, "Server overloaded")
		return
	}
	h.conns[conn] = struct{}{}
	total := len(h.conns)
	h.mu.Unlock()
	h.log.WithFields(logger.Fields{"ip": ip, "clients": total}).Info("Client connected")

	go h.readPump(conn)
}

// readPump enforces the per-client protocol: payload size, JSON framing,
// registration and the rolling rate limit. It owns connection removal, so
// cleanup is complete before the goroutine exits.
func (h *Hub) readPump(c *connection) {
	defer func() {
		h.remove(c)
		c.terminate()
		h.log.WithFields(logger.Fields{"ip": c.remoteIP, "clients": h.ClientCount()}).Info("Client disconnected")
	}()

	c.ws.SetReadLimit(h.cfg.MaxPayloadBytes)
	c.ws.SetPongHandler(func(string) error {
		c.alive.Store(true)
		return nil
	})

	for {
		_, msg, err := c.ws.ReadMessage()
		if err != nil {
			// Oversized frames already got a 1009 close from the size guard.
			if errors.Is(err, websocket.ErrReadLimit) {
				h.log.WithFields(logger.Fields{"ip": c.remoteIP}).Warn("Client payload too large")
			}
			return
		}

		if !json.Valid(msg) {
			h.log.WithFields(logger.Fields{"ip": c.remoteIP}).Warn("Client sent invalid JSON")
			c.closeWith(websocket.CloseUnsupportedData, "Invalid JSON")
			return
		}
		var reg models.RegisterMessage
		if err := json.Unmarshal(msg, &reg); err == nil && reg.Type == "register" && reg.ID != "" {
			h.register(reg.ID, c)
		}

		if !c.withinRateLimit(h.cfg.RateLimit, rateWindow, time.Now()) {
			h.log.WithFields(logger.Fields{"ip": c.remoteIP}).Warn("Client exceeded rate limit")
			c.closeWith(websocket.CloseInternalServerErr, "Rate limit exceeded")
			return
		}
	}
}

// register binds a client id to a connection, replacing any previous
// binding for that id or for that connection.
func (h *Hub) register(id string, c *connection) {
	h.mu.Lock()
	if c.id != "" && c.id != id && h.ids[c.id] == c {
		delete(h.ids, c.id)
	}
	c.id = id
	h.ids[id] = c
	h.mu.Unlock()
	h.log.WithFields(logger.Fields{"client_id": id, "ip": c.remoteIP}).Info("Client registered")
}

func (h *Hub) remove(c *connection) {
	h.mu.Lock()
	delete(h.conns, c)
	if c.id != "" && h.ids[c.id] == c {
		delete(h.ids, c.id)
	}
	h.mu.Unlock()
}

// Broadcast serializes the envelope once and sends it to every client. A
// client whose send fails is removed so one dead socket cannot affect the
// rest.
func (h *Hub) Broadcast(env models.Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		h.log.WithError(err).Error("Failed to marshal broadcast envelope")
		return
	}
	for _, c := range h.snapshot() {
		if err := c.send(data); err != nil {
			h.log.WithError(err).WithFields(logger.Fields{"ip": c.remoteIP}).Warn("Broadcast failed, removing client")
			h.remove(c)
			c.terminate()
		}
	}
}

// SendToClient delivers an envelope to one registered client. An unknown id
// is logged and skipped.
func (h *Hub) SendToClient(id string, env models.Envelope) {
	h.mu.RLock()
	c := h.ids[id]
	h.mu.RUnlock()
	if c == nil {
		h.log.WithFields(logger.Fields{"client_id": id}).Info("Client not connected, skipping send")
		return
	}
	data, err := json.Marshal(env)
	if err != nil {
		h.log.WithError(err).Error("Failed to marshal envelope")
		return
	}
	if err := c.send(data); err != nil {
		h.log.WithError(err).WithFields(logger.Fields{"client_id": id}).Warn("Send failed, removing client")
		h.remove(c)
		c.terminate()
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

func (h *Hub) snapshot() []*connection {
	h.mu.RLock()
	defer h.mu.RUnlock()
	conns := make([]*connection, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	return conns
}

// sweep pings every client on each tick and terminates the ones that never
// answered the previous ping.
func (h *Hub) sweep(ctx context.Context) {
	ticker := time.NewTicker(h.cfg.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, c := range h.snapshot() {
				if !c.alive.Load() {
					h.log.WithFields(logger.Fields{"ip": c.remoteIP}).Warn("Client unresponsive, terminating")
					h.remove(c)
					c.terminate()
					continue
				}
				c.alive.Store(false)
				c.ping()
			}
		}
	}
}

func (h *Hub) closeAll() {
	for _, c := range h.snapshot() {
		h.remove(c)
		c.terminate()
	}
}
