package normalizer

import (
	"encoding/json"

	"marketfeed/internal/symbols"
	"marketfeed/models"
)

// bybitIntervals maps Bybit's minute-count interval names to the canonical
// set. Unmapped values pass through unchanged (known gap, kept for forward
// compatibility).
var bybitIntervals = map[string]string{
	"1":   "1m",
	"5":   "5m",
	"15":  "15m",
	"60":  "1h",
	"240": "4h",
	"D":   "1d",
}

// BybitInterval resolves a raw Bybit interval name.
func BybitInterval(raw string) string {
	if mapped, ok := bybitIntervals[raw]; ok {
		return mapped
	}
	return raw
}

// BybitTicker normalizes a tickers.<symbol> payload. The feed reports the
// 24h move only as a fraction, so both change fields derive from it.
func BybitTicker(symbol string, raw json.RawMessage, ts int64) *models.TickerEvent {
	var data models.BybitTickerData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil
	}
	changePercent := Num(data.Price24hPcnt) * 100
	return &models.TickerEvent{
		Exchange:              models.ExchangeBybit,
		Type:                  TypeMarket,
		Symbol:                symbols.Canonical(symbol),
		LastPrice:             Num(data.LastPrice),
		PriceChange24h:        changePercent,
		PriceChangePercent24h: changePercent,
		High24h:               Num(data.HighPrice24h),
		Low24h:                Num(data.LowPrice24h),
		Volume24h:             Num(data.Volume24h),
		QuoteVolume:           Num(data.Turnover24h),
		Timestamp:             models.NewEventTime(ts),
	}
}

// BybitOrderbook normalizes an orderbook.<depth>.<symbol> payload.
func BybitOrderbook(symbol string, raw json.RawMessage, ts int64) *models.OrderBookEvent {
	var data models.BybitOrderbookData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil
	}
	if data.Bids == nil || data.Asks == nil {
		return nil
	}
	return &models.OrderBookEvent{
		Exchange:  models.ExchangeBybit,
		Type:      TypeOrderBook,
		Symbol:    symbols.Canonical(symbol),
		Bids:      Levels(data.Bids, true, BybitBookDepth),
		Asks:      Levels(data.Asks, false, BybitBookDepth),
		Timestamp: models.NewEventTime(ts),
	}
}

// BybitKline normalizes the first entry of a kline.<interval>.<symbol>
// payload; the stream delivers one bar per frame.
func BybitKline(symbol, rawInterval string, raw json.RawMessage) *models.CandleEvent {
	var data []models.BybitKlineData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil
	}
	if len(data) == 0 {
		return nil
	}
	bar := data[0]
	return &models.CandleEvent{
		Exchange:  models.ExchangeBybit,
		Type:      TypeCandle,
		Symbol:    symbols.Canonical(symbol),
		Interval:  BybitInterval(rawInterval),
		Timestamp: models.NewEventTime(bar.Start),
		Current: models.Candle{
			OpenTime:  bar.Start,
			Open:      Num(bar.Open),
			High:      Num(bar.High),
			Low:       Num(bar.Low),
			Close:     Num(bar.Close),
			Volume:    Num(bar.Volume),
			CloseTime: bar.End,
			IsClosed:  bar.Confirm,
		},
	}
}
