package pricesync

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/khtseng/folio/internal/common"
	"github.com/khtseng/folio/internal/models"
)

func newHubServer(t *testing.T) (*PriceWSHub, *httptest.Server) {
	t.Helper()

	hub := NewPriceWSHub(common.NewSilentLogger())
	go hub.Run()
	t.Cleanup(hub.Stop)

	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	t.Cleanup(srv.Close)
	return hub, srv
}

func dialHub(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("failed to dial hub: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) PriceEvent {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("failed to read price event: %v", err)
	}

	var event PriceEvent
	if err := json.Unmarshal(data, &event); err != nil {
		t.Fatalf("malformed price event %q: %v", data, err)
	}
	return event
}

func waitForClients(t *testing.T, hub *PriceWSHub, want int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != want {
		if time.Now().After(deadline) {
			t.Fatalf("ClientCount = %d, want %d", hub.ClientCount(), want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHub_BroadcastReachesClient(t *testing.T) {
	hub, srv := newHubServer(t)
	conn := dialHub(t, srv)
	waitForClients(t, hub, 1)

	hub.Broadcast(PriceEvent{
		AssetID: "a1", Name: "TSMC", Type: models.AssetStockTW,
		Symbol: "2330", Price: 612, MarketValue: 6120, Profit: 1120,
	})

	event := readEvent(t, conn)
	if event.AssetID != "a1" {
		t.Errorf("AssetID = %s, want a1", event.AssetID)
	}
	if event.Price != 612 {
		t.Errorf("Price = %v, want 612", event.Price)
	}
}

func TestHub_ReplaysLatestPricesOnConnect(t *testing.T) {
	hub, srv := newHubServer(t)

	// Prices published before anyone is connected are remembered.
	hub.Broadcast(PriceEvent{AssetID: "btc", Symbol: "bitcoin", Price: 43000})
	hub.Broadcast(PriceEvent{AssetID: "btc", Symbol: "bitcoin", Price: 43500})

	// Let the hub loop absorb both events before a client shows up.
	deadline := time.Now().Add(2 * time.Second)
	for len(hub.broadcast) > 0 {
		if time.Now().After(deadline) {
			t.Fatal("hub did not drain broadcast queue")
		}
		time.Sleep(5 * time.Millisecond)
	}

	conn := dialHub(t, srv)
	waitForClients(t, hub, 1)

	event := readEvent(t, conn)
	if event.AssetID != "btc" {
		t.Errorf("AssetID = %s, want btc", event.AssetID)
	}
	// Only the latest price per asset is replayed.
	if event.Price != 43500 {
		t.Errorf("Price = %v, want 43500", event.Price)
	}
}

func TestHub_ClientCountTracksDisconnect(t *testing.T) {
	hub, srv := newHubServer(t)

	conn := dialHub(t, srv)
	waitForClients(t, hub, 1)

	conn.Close()
	waitForClients(t, hub, 0)
}

func TestHub_BroadcastAfterStopDoesNotBlock(t *testing.T) {
	hub := NewPriceWSHub(common.NewSilentLogger())
	go hub.Run()
	hub.Stop()
	hub.Stop() // idempotent

	// The buffered channel absorbs events with no running loop.
	for i := 0; i < 300; i++ {
		hub.Broadcast(PriceEvent{AssetID: "a1", Price: float64(i)})
	}
}
