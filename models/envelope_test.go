package models

import (
	"encoding/json"
	"testing"
)

func TestNewEnvelopeMarketData(t *testing.T) {
	evt := MarketEvent{Ticker: &TickerEvent{
		Exchange: ExchangeBinance,
		Symbol:   "BTCUSDT",
	}}
	env, err := NewEnvelope(evt)
	if err != nil {
		t.Fatalf("NewEnvelope failed: %v", err)
	}
	if env.DataType != DataTypeExchangeData {
		t.Errorf("unexpected data_type: %s", env.DataType)
	}
	if env.Exchange != ExchangeBinance {
		t.Errorf("unexpected exchange: %s", env.Exchange)
	}
	if env.Type != KindTicker {
		t.Errorf("unexpected type: %s", env.Type)
	}
	if env.Data != evt.Ticker {
		t.Error("envelope should carry the ticker payload")
	}
	if env.Timestamp == 0 {
		t.Error("envelope timestamp not set")
	}
}

func TestNewEnvelopeStatusIsFlat(t *testing.T) {
	evt := MarketEvent{Status: &ConnectionStatusEvent{
		Exchange:  ExchangeOkx,
		Status:    StatusOffline,
		Timestamp: 123,
	}}
	env, err := NewEnvelope(evt)
	if err != nil {
		t.Fatalf("NewEnvelope failed: %v", err)
	}
	if env.DataType != DataTypeExchangeStatus {
		t.Errorf("unexpected data_type: %s", env.DataType)
	}
	if env.Status != StatusOffline {
		t.Errorf("unexpected status: %s", env.Status)
	}

	data, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if _, ok := raw["data"]; ok {
		t.Error("status envelope should not carry a data payload")
	}
	if _, ok := raw["type"]; ok {
		t.Error("status envelope should not carry a type field")
	}
	if raw["status"] != "OFFLINE" {
		t.Errorf("unexpected status field: %v", raw["status"])
	}
}

func TestNewEnvelopeEmptyEvent(t *testing.T) {
	if _, err := NewEnvelope(MarketEvent{}); err == nil {
		t.Fatal("expected error for empty event")
	}
}
