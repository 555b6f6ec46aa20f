package channel

import (
	"context"
	"testing"

	"marketfeed/models"
)

func TestSendAndReceive(t *testing.T) {
	events := NewEvents(2)
	defer events.Close()

	evt := models.MarketEvent{Ticker: &models.TickerEvent{Symbol: "BTCUSDT"}}
	if !events.Send(context.Background(), evt) {
		t.Fatal("send should succeed with free buffer space")
	}

	got := <-events.C
	if got.Ticker == nil || got.Ticker.Symbol != "BTCUSDT" {
		t.Errorf("unexpected event: %+v", got)
	}

	stats := events.GetStats()
	if stats.Sent != 1 || stats.Dropped != 0 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestSendDropsWhenFull(t *testing.T) {
	events := NewEvents(1)
	defer events.Close()

	ctx := context.Background()
	evt := models.MarketEvent{Status: &models.ConnectionStatusEvent{}}
	if !events.Send(ctx, evt) {
		t.Fatal("first send should succeed")
	}
	if events.Send(ctx, evt) {
		t.Fatal("second send should drop, buffer is full")
	}

	stats := events.GetStats()
	if stats.Sent != 1 || stats.Dropped != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	events := NewEvents(1)
	events.Close()
	events.Close()
}
