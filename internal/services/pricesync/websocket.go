package pricesync

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/khtseng/folio/internal/common"
	"github.com/khtseng/folio/internal/models"
)

const (
	wsWriteWait      = 10 * time.Second
	wsPongWait       = 60 * time.Second
	wsPingInterval   = 30 * time.Second
	wsSendBufferSize = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// PriceEvent is pushed to dashboard clients whenever a refresh cycle changes
// an asset's price.
type PriceEvent struct {
	AssetID     string           `json:"asset_id"`
	Name        string           `json:"name"`
	Type        models.AssetType `json:"type"`
	Symbol      string           `json:"symbol,omitempty"`
	Price       float64          `json:"price"`
	MarketValue float64          `json:"market_value"`
	Profit      float64          `json:"profit"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// PriceWSHub fans price events out to connected dashboard clients. The hub
// remembers the last event per asset and replays that set to every client
// on connect, so a dashboard opened between refresh cycles starts from the
// current prices instead of waiting for the next change.
type PriceWSHub struct {
	clients    map[*priceWSClient]bool
	latest     map[string]PriceEvent // last event per asset ID, touched only by Run
	broadcast  chan PriceEvent
	register   chan *priceWSClient
	unregister chan *priceWSClient
	done       chan struct{}
	mu         sync.RWMutex
	logger     *common.Logger
}

type priceWSClient struct {
	hub  *PriceWSHub
	conn *websocket.Conn
	send chan []byte
}

// NewPriceWSHub creates a new WebSocket hub.
func NewPriceWSHub(logger *common.Logger) *PriceWSHub {
	return &PriceWSHub{
		clients:    make(map[*priceWSClient]bool),
		latest:     make(map[string]PriceEvent),
		broadcast:  make(chan PriceEvent, 256),
		register:   make(chan *priceWSClient),
		unregister: make(chan *priceWSClient),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run starts the hub's main event loop. Should be called as a goroutine.
func (h *PriceWSHub) Run() {
	for {
		select {
		case <-h.done:
			return
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case event := <-h.broadcast:
			h.fanOut(event)
		}
	}
}

func (h *PriceWSHub) addClient(client *priceWSClient) {
	h.mu.Lock()
	h.clients[client] = true
	count := len(h.clients)
	h.mu.Unlock()

	// Replay the last known price of every asset to the newcomer.
	for _, event := range h.latest {
		if data, err := json.Marshal(event); err == nil {
			h.trySend(client, data)
		}
	}

	h.logger.Debug().Int("clients", count).Int("replayed", len(h.latest)).Msg("WebSocket client connected")
}

func (h *PriceWSHub) removeClient(client *priceWSClient) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.Debug().Int("clients", count).Msg("WebSocket client disconnected")
}

// fanOut records the event as the asset's latest and delivers it to every
// client. Clients whose send buffer is full are dropped; a stuck dashboard
// must not block price delivery to the rest.
func (h *PriceWSHub) fanOut(event PriceEvent) {
	h.latest[event.AssetID] = event

	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Warn().Err(err).Msg("Failed to marshal price event")
		return
	}

	h.mu.RLock()
	var slow []*priceWSClient
	for client := range h.clients {
		if !h.trySend(client, data) {
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.removeClient(c)
	}
}

// trySend queues data without blocking. Reports false when the client's
// buffer is full.
func (h *PriceWSHub) trySend(client *priceWSClient, data []byte) bool {
	select {
	case client.send <- data:
		return true
	default:
		return false
	}
}

// Stop signals the hub's event loop to exit.
func (h *PriceWSHub) Stop() {
	select {
	case <-h.done:
		// Already stopped
	default:
		close(h.done)
	}
}

// Broadcast sends a price event to all connected clients.
func (h *PriceWSHub) Broadcast(event PriceEvent) {
	select {
	case h.broadcast <- event:
	default:
		h.logger.Warn().Msg("WebSocket broadcast channel full, dropping event")
	}
}

// ServeWS upgrades an HTTP connection to WebSocket and registers the client.
func (h *PriceWSHub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	client := &priceWSClient{
		hub:  h,
		conn: conn,
		send: make(chan []byte, wsSendBufferSize),
	}

	h.register <- client

	go client.writePump()
	go client.readPump()
}

// ClientCount returns the number of connected clients.
func (h *PriceWSHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (c *priceWSClient) writePump() {
	ticker := time.NewTicker(wsPingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump reads messages from the WebSocket connection (mainly to detect close).
func (c *priceWSClient) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}
