package okx

import (
	"encoding/json"
	"testing"

	"marketfeed/config"
	"marketfeed/models"
)

func TestEndpointsSplitPublicAndBusiness(t *testing.T) {
	spec := NewSpec(config.AdapterConfig{MarketType: "spot"})
	eps, err := spec.Endpoints([]string{"BTC-USDT"})
	if err != nil {
		t.Fatalf("Endpoints failed: %v", err)
	}
	if len(eps) != 2 {
		t.Fatalf("expected 2 endpoints, got %d", len(eps))
	}

	public, business := eps[0], eps[1]
	if public.Name != "public" || business.Name != "business" {
		t.Fatalf("unexpected endpoint names: %s / %s", public.Name, business.Name)
	}
	if len(public.Subscriptions) != len(publicChannels) {
		t.Errorf("public subscriptions = %d, want %d", len(public.Subscriptions), len(publicChannels))
	}
	if len(business.Subscriptions) != len(candleChannels) {
		t.Errorf("business subscriptions = %d, want %d", len(business.Subscriptions), len(candleChannels))
	}
	if !public.Combined || !business.Combined {
		t.Error("both sockets take one combined subscribe request")
	}

	arg, ok := public.Subscriptions[0].Arg.(models.OkxArg)
	if !ok {
		t.Fatalf("unexpected arg type: %T", public.Subscriptions[0].Arg)
	}
	if arg.InstID != "BTC-USDT" || arg.InstType != "SPOT" {
		t.Errorf("unexpected arg: %+v", arg)
	}
}

func TestEndpointsHyphenateCanonicalPairs(t *testing.T) {
	spec := NewSpec(config.AdapterConfig{MarketType: "spot"})
	eps, err := spec.Endpoints([]string{"BTCUSDT"})
	if err != nil {
		t.Fatalf("Endpoints failed: %v", err)
	}
	arg := eps[0].Subscriptions[0].Arg.(models.OkxArg)
	if arg.InstID != "BTC-USDT" {
		t.Errorf("unexpected instrument id: %s", arg.InstID)
	}
}

func TestSubscribeEnvelope(t *testing.T) {
	spec := NewSpec(config.AdapterConfig{MarketType: "spot"})
	eps, err := spec.Endpoints([]string{"BTC-USDT"})
	if err != nil {
		t.Fatalf("Endpoints failed: %v", err)
	}
	frame, err := eps[0].Envelope(eps[0].Subscriptions)
	if err != nil {
		t.Fatalf("envelope failed: %v", err)
	}
	var decoded struct {
		Op   string          `json:"op"`
		Args []models.OkxArg `json:"args"`
	}
	if err := json.Unmarshal(frame, &decoded); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if decoded.Op != "subscribe" {
		t.Errorf("unexpected op: %s", decoded.Op)
	}
	if len(decoded.Args) != len(publicChannels) {
		t.Errorf("unexpected arg count: %d", len(decoded.Args))
	}
}

func TestParsePong(t *testing.T) {
	spec := NewSpec(config.AdapterConfig{MarketType: "spot"})
	events, err := spec.Parse("public", []byte("pong"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if events != nil {
		t.Errorf("pong should yield no events, got %+v", events)
	}
}

func TestParseSubscribeAck(t *testing.T) {
	spec := NewSpec(config.AdapterConfig{MarketType: "spot"})
	frame := []byte(`{"event": "subscribe", "arg": {"channel": "tickers", "instId": "BTC-USDT"}}`)
	events, err := spec.Parse("public", frame)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if events != nil {
		t.Errorf("acks should yield no events, got %+v", events)
	}
}

func TestParseTicker(t *testing.T) {
	spec := NewSpec(config.AdapterConfig{MarketType: "spot"})
	frame := []byte(`{
		"arg": {"channel": "tickers", "instId": "BTC-USDT"},
		"data": [{"instId": "BTC-USDT", "last": "35250", "open24h": "35000", "ts": "1700000000000"}]
	}`)
	events, err := spec.Parse("public", frame)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(events) != 1 || events[0].Ticker == nil {
		t.Fatalf("expected one ticker event, got %+v", events)
	}
	if events[0].Ticker.Symbol != "BTCUSDT" {
		t.Errorf("unexpected symbol: %s", events[0].Ticker.Symbol)
	}
}

func TestParseBook(t *testing.T) {
	spec := NewSpec(config.AdapterConfig{MarketType: "spot"})
	frame := []byte(`{
		"arg": {"channel": "books", "instId": "BTC-USDT"},
		"data": [{"bids": [["35000", "1", "0", "1"]], "asks": [["35001", "1", "0", "1"]], "ts": "1700000000000"}]
	}`)
	events, err := spec.Parse("public", frame)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(events) != 1 || events[0].Book == nil {
		t.Fatalf("expected one book event, got %+v", events)
	}
}

func TestParseCandle(t *testing.T) {
	spec := NewSpec(config.AdapterConfig{MarketType: "spot"})
	frame := []byte(`{
		"arg": {"channel": "candle4H", "instId": "BTC-USDT"},
		"data": [["1700000000000", "35000", "35150", "34990", "35100", "12.5", "437500", "437500", "0"]]
	}`)
	events, err := spec.Parse("business", frame)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(events) != 1 || events[0].Candle == nil {
		t.Fatalf("expected one candle event, got %+v", events)
	}
	if events[0].Candle.Interval != "4h" {
		t.Errorf("unexpected interval: %s", events[0].Candle.Interval)
	}
}

func TestParseMalformedFrame(t *testing.T) {
	spec := NewSpec(config.AdapterConfig{MarketType: "spot"})
	if _, err := spec.Parse("public", []byte("not json")); err == nil {
		t.Fatal("expected error for malformed frame")
	}
}
