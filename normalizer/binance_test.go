package normalizer

import (
	"encoding/json"
	"testing"

	"marketfeed/models"
)

func TestBinanceTicker(t *testing.T) {
	raw := json.RawMessage(`{
		"e": "24hrTicker", "E": 1700000000000, "s": "BTCUSDT",
		"p": "250.5", "P": "0.72", "c": "35250.5",
		"h": "35500", "l": "34800", "v": "12345.6", "q": "432100000"
	}`)
	evt := BinanceTicker("btcusdt", raw)
	if evt == nil {
		t.Fatal("expected event")
	}
	if evt.Exchange != models.ExchangeBinance {
		t.Errorf("unexpected exchange: %s", evt.Exchange)
	}
	if evt.Symbol != "BTCUSDT" {
		t.Errorf("unexpected symbol: %s", evt.Symbol)
	}
	if evt.LastPrice != 35250.5 {
		t.Errorf("unexpected last price: %v", evt.LastPrice)
	}
	if evt.PriceChange24h != 250.5 || evt.PriceChangePercent24h != 0.72 {
		t.Errorf("unexpected change: %v / %v", evt.PriceChange24h, evt.PriceChangePercent24h)
	}
	if evt.QuoteVolume != 432100000 {
		t.Errorf("unexpected quote volume: %v", evt.QuoteVolume)
	}
	if evt.Timestamp.Millis != 1700000000000 {
		t.Errorf("unexpected timestamp: %d", evt.Timestamp.Millis)
	}
}

func TestBinanceTickerBadNumbersBecomeZero(t *testing.T) {
	raw := json.RawMessage(`{"E": 1700000000000, "c": "not-a-number", "h": ""}`)
	evt := BinanceTicker("btcusdt", raw)
	if evt == nil {
		t.Fatal("expected event")
	}
	if evt.LastPrice != 0 || evt.High24h != 0 {
		t.Errorf("bad numerics should normalize to zero: %+v", evt)
	}
}

func TestBinanceDepth(t *testing.T) {
	raw := json.RawMessage(`{
		"lastUpdateId": 99, "E": 1700000000000,
		"bids": [["35000.1", "0.5"], ["35001.2", "1.0"]],
		"asks": [["35002.0", "0.3"], ["35001.9", "0.7"]]
	}`)
	evt := BinanceDepth("btcusdt", raw)
	if evt == nil {
		t.Fatal("expected event")
	}
	if evt.Bids[0].Price != 35001.2 {
		t.Errorf("best bid should sort first: %+v", evt.Bids)
	}
	if evt.Asks[0].Price != 35001.9 {
		t.Errorf("best ask should sort first: %+v", evt.Asks)
	}
}

func TestBinanceDepthMissingSides(t *testing.T) {
	raw := json.RawMessage(`{"lastUpdateId": 99}`)
	if evt := BinanceDepth("btcusdt", raw); evt != nil {
		t.Errorf("expected nil for missing sides, got %+v", evt)
	}
}

func TestBinanceKline(t *testing.T) {
	raw := json.RawMessage(`{
		"e": "kline", "E": 1700000000500, "s": "BTCUSDT",
		"k": {
			"t": 1700000000000, "T": 1700000059999, "s": "BTCUSDT", "i": "1m",
			"o": "35000", "c": "35100", "h": "35150", "l": "34990",
			"v": "12.5", "n": 240, "x": false, "q": "437500"
		}
	}`)
	evt := BinanceKline("btcusdt", "1m", raw)
	if evt == nil {
		t.Fatal("expected event")
	}
	if evt.Interval != "1m" {
		t.Errorf("unexpected interval: %s", evt.Interval)
	}
	if evt.Current.Open != 35000 || evt.Current.Close != 35100 {
		t.Errorf("unexpected bar: %+v", evt.Current)
	}
	if evt.Current.Trades != 240 || evt.Current.IsClosed {
		t.Errorf("unexpected bar meta: %+v", evt.Current)
	}
}

func TestBinanceKlineWithoutOpenTime(t *testing.T) {
	raw := json.RawMessage(`{"e": "kline", "k": {}}`)
	if evt := BinanceKline("btcusdt", "1m", raw); evt != nil {
		t.Errorf("expected nil for empty kline, got %+v", evt)
	}
}
