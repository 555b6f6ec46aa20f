package normalizer

import (
	"encoding/json"
	"strings"

	"marketfeed/internal/symbols"
	"marketfeed/models"
)

// okxIntervals maps OKX candle channel suffixes to the canonical interval
// set. Only the hourly/daily suffixes shared with the other venues
// canonicalize; the rest (2H, 6H, 12H, 1W, multi-day bars, utc variants)
// keep OKX's upper-case notation, which is what downstream chart consumers
// key on (known gap, kept for forward compatibility).
var okxIntervals = map[string]string{
	"1s":  "1s",
	"1m":  "1m",
	"3m":  "3m",
	"5m":  "5m",
	"15m": "15m",
	"30m": "30m",
	"1H":  "1h",
	"4H":  "4h",
	"1D":  "1d",
}

// OkxInterval resolves the interval suffix of a candle channel name.
func OkxInterval(raw string) string {
	if mapped, ok := okxIntervals[raw]; ok {
		return mapped
	}
	return raw
}

// OkxTicker normalizes one tickers channel entry. The percent change is
// derived from the 24h open because the feed does not report it directly.
func OkxTicker(instID string, raw json.RawMessage) *models.TickerEvent {
	var data []models.OkxTickerData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil
	}
	if len(data) == 0 {
		return nil
	}
	tick := data[0]

	last := Num(tick.Last)
	open24h := Num(tick.Open24h)
	changePercent := 0.0
	if open24h != 0 {
		changePercent = (last - open24h) / open24h * 100
	}

	return &models.TickerEvent{
		Exchange:              models.ExchangeOkx,
		Type:                  TypeMarket,
		Symbol:                symbols.Canonical(instID),
		LastPrice:             last,
		PriceChange24h:        last - open24h,
		PriceChangePercent24h: changePercent,
		High24h:               Num(tick.High24h),
		Low24h:                Num(tick.Low24h),
		Volume24h:             Num(tick.VolCcy24h),
		Timestamp:             models.NewEventTime(int64(Num(tick.Ts))),
	}
}

// OkxBook normalizes one books channel entry.
func OkxBook(instID string, raw json.RawMessage) *models.OrderBookEvent {
	var data []models.OkxBookData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil
	}
	if len(data) == 0 {
		return nil
	}
	book := data[0]
	if book.Bids == nil || book.Asks == nil {
		return nil
	}
	return &models.OrderBookEvent{
		Exchange:  models.ExchangeOkx,
		Type:      TypeOrderBook,
		Symbol:    symbols.Canonical(instID),
		Bids:      Levels(book.Bids, true, OkxBookDepth),
		Asks:      Levels(book.Asks, false, OkxBookDepth),
		Timestamp: models.NewEventTime(int64(Num(book.Ts))),
	}
}

// OkxCandle normalizes one entry of a candle* channel payload. Bars arrive
// as [ts, open, high, low, close, volume, ...] string arrays.
func OkxCandle(instID, channel string, raw json.RawMessage) *models.CandleEvent {
	var data [][]string
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil
	}
	if len(data) == 0 || len(data[0]) < 6 {
		return nil
	}
	bar := data[0]
	openTime := int64(Num(bar[0]))

	return &models.CandleEvent{
		Exchange:  models.ExchangeOkx,
		Type:      TypeCandle,
		Symbol:    symbols.Canonical(instID),
		Interval:  OkxInterval(strings.TrimPrefix(channel, "candle")),
		Timestamp: models.NewEventTime(openTime),
		Current: models.Candle{
			OpenTime: openTime,
			Open:     Num(bar[1]),
			High:     Num(bar[2]),
			Low:      Num(bar[3]),
			Close:    Num(bar[4]),
			Volume:   Num(bar[5]),
		},
	}
}
