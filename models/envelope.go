package models

import (
	"fmt"
	"time"
)

// Envelope is the downstream hub->client message frame. Market data uses
// data_type "exchange_data" with a "type" discriminator and nested payload;
// connection status uses data_type "exchange_status" with a flat status
// field, matching what downstream chart consumers expect.
type Envelope struct {
	DataType  string      `json:"data_type"`
	Exchange  Exchange    `json:"exchange"`
	Type      EventKind   `json:"type,omitempty"`
	Status    ConnStatus  `json:"status,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

const (
	DataTypeExchangeData   = "exchange_data"
	DataTypeExchangeStatus = "exchange_status"
)

// NewEnvelope wraps a MarketEvent for downstream delivery.
func NewEnvelope(evt MarketEvent) (Envelope, error) {
	now := time.Now().UnixMilli()
	switch {
	case evt.Ticker != nil:
		return Envelope{
			DataType:  DataTypeExchangeData,
			Exchange:  evt.Ticker.Exchange,
			Type:      KindTicker,
			Data:      evt.Ticker,
			Timestamp: now,
		}, nil
	case evt.Book != nil:
		return Envelope{
			DataType:  DataTypeExchangeData,
			Exchange:  evt.Book.Exchange,
			Type:      KindOrderBook,
			Data:      evt.Book,
			Timestamp: now,
		}, nil
	case evt.Candle != nil:
		return Envelope{
			DataType:  DataTypeExchangeData,
			Exchange:  evt.Candle.Exchange,
			Type:      KindCandle,
			Data:      evt.Candle,
			Timestamp: now,
		}, nil
	case evt.Status != nil:
		return Envelope{
			DataType:  DataTypeExchangeStatus,
			Exchange:  evt.Status.Exchange,
			Status:    evt.Status.Status,
			Timestamp: now,
		}, nil
	}
	return Envelope{}, fmt.Errorf("market event has no variant set")
}

// RegisterMessage is the only client->hub message the hub itself interprets.
type RegisterMessage struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}
