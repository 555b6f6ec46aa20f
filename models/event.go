package models

import (
	"encoding/json"
	"time"
)

// Exchange identifies one of the supported upstream venues.
type Exchange string

const (
	ExchangeBinance Exchange = "BINANCE"
	ExchangeBybit   Exchange = "BYBIT"
	ExchangeOkx     Exchange = "OKX"
)

// ConnStatus reports whether an adapter's upstream socket is usable.
type ConnStatus string

const (
	StatusOnline  ConnStatus = "ONLINE"
	StatusOffline ConnStatus = "OFFLINE"
)

// EventKind discriminates the MarketEvent union. The values double as the
// "type" field of the downstream envelope.
type EventKind string

const (
	KindTicker    EventKind = "market"
	KindOrderBook EventKind = "orderbook"
	KindCandle    EventKind = "candle"
	KindStatus    EventKind = "status"
)

// EventTime carries an epoch-millisecond timestamp together with its
// resolved local-time representation.
type EventTime struct {
	Millis int64
	Local  time.Time
}

// NewEventTime builds an EventTime from an epoch-millisecond value.
// Non-positive timestamps resolve to the current time.
func NewEventTime(ms int64) EventTime {
	if ms <= 0 {
		ms = time.Now().UnixMilli()
	}
	return EventTime{Millis: ms, Local: time.UnixMilli(ms).Local()}
}

type eventTimeJSON struct {
	Timestamp   int64  `json:"timestamp"`
	ISOString   string `json:"isoString"`
	LocalString string `json:"localString"`
	Timezone    string `json:"timezone"`
}

func (t EventTime) MarshalJSON() ([]byte, error) {
	zone, _ := t.Local.Zone()
	return json.Marshal(eventTimeJSON{
		Timestamp:   t.Millis,
		ISOString:   time.UnixMilli(t.Millis).UTC().Format(time.RFC3339Nano),
		LocalString: t.Local.Format("1/2/2006, 3:04:05 PM"),
		Timezone:    zone,
	})
}

func (t *EventTime) UnmarshalJSON(data []byte) error {
	var raw eventTimeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*t = NewEventTime(raw.Timestamp)
	return nil
}

// TickerEvent is the normalized 24h market summary for one instrument.
type TickerEvent struct {
	Exchange              Exchange  `json:"exchange"`
	Type                  string    `json:"type"`
	Symbol                string    `json:"symbol"`
	LastPrice             float64   `json:"lastPrice"`
	PriceChange24h        float64   `json:"priceChange24h"`
	PriceChangePercent24h float64   `json:"priceChangePercent24h"`
	High24h               float64   `json:"high24h"`
	Low24h                float64   `json:"low24h"`
	Volume24h             float64   `json:"volume24h"`
	QuoteVolume           float64   `json:"quoteVolume,omitempty"`
	Timestamp             EventTime `json:"timestamp"`
}

// PriceLevel is one side entry of an order book.
type PriceLevel struct {
	Price    float64 `json:"price"`
	Quantity float64 `json:"quantity"`
}

// OrderBookEvent holds a depth-truncated book snapshot. Bids are sorted
// best (highest) price first, asks best (lowest) price first.
type OrderBookEvent struct {
	Exchange  Exchange     `json:"exchange"`
	Type      string       `json:"type"`
	Symbol    string       `json:"symbol"`
	Bids      []PriceLevel `json:"bids"`
	Asks      []PriceLevel `json:"asks"`
	Timestamp EventTime    `json:"timestamp"`
}

// Candle is the current-bar snapshot of one kline interval.
type Candle struct {
	OpenTime    int64   `json:"openTime"`
	Open        float64 `json:"open"`
	High        float64 `json:"high"`
	Low         float64 `json:"low"`
	Close       float64 `json:"close"`
	Volume      float64 `json:"volume"`
	CloseTime   int64   `json:"closeTime,omitempty"`
	QuoteVolume float64 `json:"quoteVolume,omitempty"`
	Trades      int64   `json:"trades,omitempty"`
	IsClosed    bool    `json:"isClosed,omitempty"`
}

// CandleEvent is the normalized kline update for one (symbol, interval).
type CandleEvent struct {
	Exchange  Exchange  `json:"exchange"`
	Type      string    `json:"type"`
	Symbol    string    `json:"symbol"`
	Interval  string    `json:"interval"`
	Timestamp EventTime `json:"timestamp"`
	Current   Candle    `json:"current"`
}

// ConnectionStatusEvent is emitted on every open/close/error transition of
// an adapter's upstream socket.
type ConnectionStatusEvent struct {
	Exchange  Exchange   `json:"exchange"`
	Status    ConnStatus `json:"status"`
	Timestamp int64      `json:"timestamp"`
}

// MarketEvent is the canonical normalized unit flowing from adapters to the
// hub. Exactly one variant pointer is set.
type MarketEvent struct {
	Ticker *TickerEvent
	Book   *OrderBookEvent
	Candle *CandleEvent
	Status *ConnectionStatusEvent
}

// Kind reports which variant is populated.
func (e MarketEvent) Kind() EventKind {
	switch {
	case e.Ticker != nil:
		return KindTicker
	case e.Book != nil:
		return KindOrderBook
	case e.Candle != nil:
		return KindCandle
	default:
		return KindStatus
	}
}

// Exchange reports the venue the populated variant came from.
func (e MarketEvent) Exchange() Exchange {
	switch {
	case e.Ticker != nil:
		return e.Ticker.Exchange
	case e.Book != nil:
		return e.Book.Exchange
	case e.Candle != nil:
		return e.Candle.Exchange
	case e.Status != nil:
		return e.Status.Exchange
	}
	return ""
}

// Symbol reports the normalized instrument of the populated variant.
// Status events carry no instrument.
func (e MarketEvent) Symbol() string {
	switch {
	case e.Ticker != nil:
		return e.Ticker.Symbol
	case e.Book != nil:
		return e.Book.Symbol
	case e.Candle != nil:
		return e.Candle.Symbol
	}
	return ""
}

// Valid reports whether exactly one variant is set.
func (e MarketEvent) Valid() bool {
	n := 0
	if e.Ticker != nil {
		n++
	}
	if e.Book != nil {
		n++
	}
	if e.Candle != nil {
		n++
	}
	if e.Status != nil {
		n++
	}
	return n == 1
}
