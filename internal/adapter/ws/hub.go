// Package ws serves the live chat socket and fans applied message events out to the
// clients that have the event's conversation open.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/iho/propledger/internal/chat"
	"github.com/iho/propledger/internal/domain"
	"github.com/iho/propledger/internal/infrastructure/metrics"
	"github.com/iho/propledger/internal/usecase"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 << 10
	sendBuffer     = 64
)

// ChatService is the part of the chat use case a socket needs.
type ChatService interface {
	Open(ctx context.Context, inbox *chat.Inbox, phone string) (uint64, []domain.Message, error)
	Send(ctx context.Context, input usecase.SendInput) (domain.Message, error)
	Deliver(inbox *chat.Inbox, generation uint64, ev domain.MessageEvent) (domain.Message, bool, error)
}

// Relay forwards events to other server instances.
type Relay interface {
	Publish(ev domain.MessageEvent)
}

// Config holds hub options.
type Config struct {
	// AllowedOrigins lists origins allowed to open a socket; "*" or empty allows all.
	AllowedOrigins []string
	Relay          Relay
	Metrics        *metrics.Metrics
	Logger         zerolog.Logger
}

// Hub tracks connected chat clients. It implements usecase.EventPublisher.
type Hub struct {
	chat     ChatService
	relay    Relay
	metrics  *metrics.Metrics
	logger   zerolog.Logger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*client]struct{}
}

// NewHub creates a Hub.
func NewHub(svc ChatService, cfg Config) *Hub {
	h := &Hub{
		chat:    svc,
		relay:   cfg.Relay,
		metrics: cfg.Metrics,
		logger:  cfg.Logger,
		clients: make(map[*client]struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     originChecker(cfg.AllowedOrigins),
	}
	return h
}

func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 || slices.Contains(allowed, "*") {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(allowed, origin)
	}
}

// Publish delivers ev to local clients and relays it to other instances.
func (h *Hub) Publish(ev domain.MessageEvent) {
	h.Broadcast(ev)
	if h.relay != nil {
		h.relay.Publish(ev)
	}
}

// Broadcast delivers ev to the local clients that have its conversation open.
func (h *Hub) Broadcast(ev domain.MessageEvent) {
	type target struct {
		c          *client
		generation uint64
	}

	h.mu.RLock()
	targets := make([]target, 0, len(h.clients))
	for c := range h.clients {
		if phone, gen := c.inbox.Active(); phone != "" && chat.SamePhone(phone, ev.Message.Phone) {
			targets = append(targets, target{c: c, generation: gen})
		}
	}
	h.mu.RUnlock()

	// a conversation switched after selection rejects the event in deliver
	for _, t := range targets {
		t.c.deliver(t.generation, ev)
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeWS upgrades the request to a chat socket. An optional phone query parameter opens that
// conversation right away.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	c := &client{
		hub:    h,
		conn:   conn,
		inbox:  chat.NewInbox(),
		send:   make(chan []byte, sendBuffer),
		ctx:    ctx,
		cancel: cancel,
		logger: h.logger.With().Str("remote_addr", r.RemoteAddr).Logger(),
	}
	h.register(c)

	if phone := r.URL.Query().Get("phone"); phone != "" {
		c.open(phone)
	}

	go c.writePump()
	go c.readPump()
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.ChatConnections.Inc()
	}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()

	if ok && h.metrics != nil {
		h.metrics.ChatConnections.Dec()
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.RLock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.close()
	}
}

func encode(v any) []byte {
	data, _ := json.Marshal(v)
	return data
}
