package reader

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"marketfeed/config"
	"marketfeed/internal/channel"
	"marketfeed/models"
)

type stubSpec struct {
	url string
}

func (stubSpec) Exchange() models.Exchange { return models.ExchangeBinance }

func (s stubSpec) Endpoints(pairs []string) ([]Endpoint, error) {
	return []Endpoint{{Name: "stream", URL: s.url}}, nil
}

func (stubSpec) Parse(endpoint string, frame []byte) ([]models.MarketEvent, error) {
	return nil, nil
}

func TestNewRejectsEmptySymbols(t *testing.T) {
	events := channel.NewEvents(1)
	defer events.Close()

	_, err := New(stubSpec{}, config.AdapterConfig{}, events)
	if err == nil {
		t.Fatal("expected config error")
	}
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError, got %T", err)
	}
}

func TestNewRejectsBlankSymbol(t *testing.T) {
	events := channel.NewEvents(1)
	defer events.Close()

	cfg := config.AdapterConfig{Symbols: []string{"BTC-USDT", "  "}}
	if _, err := New(stubSpec{}, cfg, events); err == nil {
		t.Fatal("expected config error for blank symbol")
	}
}

func TestAdapterDisconnectWithoutConnect(t *testing.T) {
	events := channel.NewEvents(1)
	defer events.Close()

	adapter, err := New(stubSpec{}, config.AdapterConfig{Symbols: []string{"BTC-USDT"}}, events)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	adapter.Disconnect()
	if adapter.Failed() {
		t.Error("idle adapter should not report failure")
	}
}

func TestAdapterExhaustsReconnectBudget(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen failed: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	events := channel.NewEvents(16)
	defer events.Close()

	cfg := config.AdapterConfig{
		Symbols: []string{"BTC-USDT"},
		Reconnect: config.ReconnectConfig{
			MaxAttempts: 2,
			Interval:    5 * time.Millisecond,
			Policy:      "fixed",
		},
	}
	adapter, err := New(stubSpec{url: "ws://" + addr}, cfg, events)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := adapter.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer adapter.Disconnect()

	// One OFFLINE per failed dial: the initial attempt plus MaxAttempts
	// retries.
	for i := 0; i < cfg.Reconnect.MaxAttempts+1; i++ {
		select {
		case evt := <-events.C:
			if evt.Status == nil || evt.Status.Status != models.StatusOffline {
				t.Fatalf("event %d: expected offline status, got %+v", i, evt)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for offline status %d", i)
		}
	}

	deadline := time.Now().Add(2 * time.Second)
	for !adapter.Failed() {
		if time.Now().After(deadline) {
			t.Fatal("adapter never reported a spent reconnect budget")
		}
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case evt := <-events.C:
		t.Fatalf("unexpected event after giving up: %+v", evt)
	case <-time.After(100 * time.Millisecond):
	}

	if state := adapter.States()["stream"]; state != StateDisconnected {
		t.Errorf("expected disconnected endpoint, got %s", state)
	}
}

func TestAdapterExchange(t *testing.T) {
	events := channel.NewEvents(1)
	defer events.Close()

	adapter, err := New(stubSpec{}, config.AdapterConfig{Symbols: []string{"BTC-USDT"}}, events)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if adapter.Exchange() != models.ExchangeBinance {
		t.Errorf("unexpected exchange: %s", adapter.Exchange())
	}
}
