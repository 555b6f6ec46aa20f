package normalizer

import (
	"encoding/json"

	"marketfeed/internal/symbols"
	"marketfeed/models"
)

// binanceIntervals maps Binance kline interval names to the canonical set.
// Binance already uses the canonical names; unmapped values pass through
// unchanged (known gap, kept for forward compatibility).
var binanceIntervals = map[string]string{
	"1m":  "1m",
	"5m":  "5m",
	"15m": "15m",
	"1h":  "1h",
	"4h":  "4h",
	"1d":  "1d",
}

// BinanceInterval resolves a raw Binance interval name.
func BinanceInterval(raw string) string {
	if mapped, ok := binanceIntervals[raw]; ok {
		return mapped
	}
	return raw
}

// BinanceTicker normalizes a 24hr ticker payload.
func BinanceTicker(symbol string, raw json.RawMessage) *models.TickerEvent {
	var data models.BinanceTickerData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil
	}
	return &models.TickerEvent{
		Exchange:              models.ExchangeBinance,
		Type:                  TypeMarket,
		Symbol:                symbols.Canonical(symbol),
		LastPrice:             Num(data.LastPrice),
		PriceChange24h:        Num(data.PriceChange),
		PriceChangePercent24h: Num(data.PricePercent),
		High24h:               Num(data.HighPrice),
		Low24h:                Num(data.LowPrice),
		Volume24h:             Num(data.BaseVolume),
		QuoteVolume:           Num(data.QuoteVolume),
		Timestamp:             models.NewEventTime(data.EventTime),
	}
}

// BinanceDepth normalizes a partial book depth payload.
func BinanceDepth(symbol string, raw json.RawMessage) *models.OrderBookEvent {
	var data models.BinanceDepthData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil
	}
	if data.Bids == nil || data.Asks == nil {
		return nil
	}
	return &models.OrderBookEvent{
		Exchange:  models.ExchangeBinance,
		Type:      TypeOrderBook,
		Symbol:    symbols.Canonical(symbol),
		Bids:      Levels(data.Bids, true, BinanceBookDepth),
		Asks:      Levels(data.Asks, false, BinanceBookDepth),
		Timestamp: models.NewEventTime(data.EventTime),
	}
}

// BinanceKline normalizes a kline payload for the given raw interval.
func BinanceKline(symbol, rawInterval string, raw json.RawMessage) *models.CandleEvent {
	var data models.BinanceKlineData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil
	}
	k := data.Kline
	if k.OpenTime == 0 {
		return nil
	}
	return &models.CandleEvent{
		Exchange:  models.ExchangeBinance,
		Type:      TypeCandle,
		Symbol:    symbols.Canonical(symbol),
		Interval:  BinanceInterval(rawInterval),
		Timestamp: models.NewEventTime(k.OpenTime),
		Current: models.Candle{
			OpenTime:    k.OpenTime,
			Open:        Num(k.Open),
			High:        Num(k.High),
			Low:         Num(k.Low),
			Close:       Num(k.Close),
			Volume:      Num(k.Volume),
			CloseTime:   k.CloseTime,
			QuoteVolume: Num(k.QuoteVolume),
			Trades:      k.Trades,
			IsClosed:    k.IsClosed,
		},
	}
}
