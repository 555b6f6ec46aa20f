// Package binance speaks the Binance combined-stream websocket protocol.
// All streams are encoded into the connection URL, so there is no
// subscription phase after the socket opens.
package binance

import (
	"encoding/json"
	"fmt"
	"strings"

	"marketfeed/config"
	"marketfeed/internal/symbols"
	"marketfeed/models"
	"marketfeed/normalizer"
	"marketfeed/reader"
)

var streamURLs = map[string]string{
	"spot":    "wss://stream.binance.com:9443/stream?streams=",
	"futures": "wss://fstream.binance.com/stream?streams=",
}

// candleIntervals are subscribed for every pair.
var candleIntervals = []string{"1m", "5m", "15m", "1h", "4h", "1d"}

type Spec struct {
	cfg config.AdapterConfig
}

func NewSpec(cfg config.AdapterConfig) *Spec {
	return &Spec{cfg: cfg}
}

func (s *Spec) Exchange() models.Exchange {
	return models.ExchangeBinance
}

// Endpoints builds the single combined-stream URL: per pair a 24hr ticker
// stream, a 20-level depth snapshot stream and one kline stream per
// interval.
func (s *Spec) Endpoints(pairs []string) ([]reader.Endpoint, error) {
	base := s.cfg.URL
	if base == "" {
		base = streamURLs[s.cfg.MarketType]
	}
	if base == "" {
		return nil, fmt.Errorf("binance: unknown market type %q", s.cfg.MarketType)
	}

	var streams []string
	for _, pair := range pairs {
		sym := strings.ToLower(symbols.ToBinance(pair))
		streams = append(streams, sym+"@ticker", sym+"@depth20@100ms")
		for _, interval := range candleIntervals {
			streams = append(streams, sym+"@kline_"+interval)
		}
	}
	return []reader.Endpoint{{
		Name: "stream",
		URL:  base + strings.Join(streams, "/"),
	}}, nil
}

func (s *Spec) Parse(endpoint string, frame []byte) ([]models.MarketEvent, error) {
	var f models.BinanceStreamFrame
	if err := json.Unmarshal(frame, &f); err != nil {
		return nil, fmt.Errorf("decode stream frame: %w", err)
	}
	if f.Stream == "" {
		return nil, nil
	}

	parts := strings.SplitN(f.Stream, "@", 2)
	if len(parts) != 2 {
		return nil, nil
	}
	symbol, channel := parts[0], parts[1]

	switch {
	case channel == "ticker":
		if evt := normalizer.BinanceTicker(symbol, f.Data); evt != nil {
			return []models.MarketEvent{{Ticker: evt}}, nil
		}
	case strings.HasPrefix(channel, "depth"):
		if evt := normalizer.BinanceDepth(symbol, f.Data); evt != nil {
			return []models.MarketEvent{{Book: evt}}, nil
		}
	case strings.HasPrefix(channel, "kline_"):
		interval := strings.TrimPrefix(channel, "kline_")
		if evt := normalizer.BinanceKline(symbol, interval, f.Data); evt != nil {
			return []models.MarketEvent{{Candle: evt}}, nil
		}
	}
	return nil, nil
}
