// Package bybit speaks the Bybit v5 public websocket protocol. Channels
// are subscribed after the socket opens, in paced batches, because the
// venue rejects oversized subscribe requests.
package bybit

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"marketfeed/config"
	"marketfeed/internal/symbols"
	"marketfeed/logger"
	"marketfeed/models"
	"marketfeed/normalizer"
	"marketfeed/reader"
)

var wsURLs = map[string]string{
	"spot":    "wss://stream.bybit.com/v5/public/spot",
	"linear":  "wss://stream.bybit.com/v5/public/linear",
	"inverse": "wss://stream.bybit.com/v5/public/inverse",
}

// candleIntervals are subscribed for every pair, in the venue's notation.
var candleIntervals = []string{"1", "5", "15", "60", "240", "D"}

type Spec struct {
	cfg config.AdapterConfig
	log *logger.Entry
}

func NewSpec(cfg config.AdapterConfig) *Spec {
	return &Spec{
		cfg: cfg,
		log: logger.GetLogger().WithComponent("reader.bybit"),
	}
}

func (s *Spec) Exchange() models.Exchange {
	return models.ExchangeBybit
}

// Endpoints builds one public socket. Per pair: the ticker channel, the
// 50-level orderbook channel and one kline channel per interval.
func (s *Spec) Endpoints(pairs []string) ([]reader.Endpoint, error) {
	url := s.cfg.URL
	if url == "" {
		url = wsURLs[s.cfg.MarketType]
	}
	if url == "" {
		return nil, fmt.Errorf("bybit: unknown market type %q", s.cfg.MarketType)
	}

	var subs []reader.SubscribeRequest
	for _, pair := range pairs {
		sym := symbols.ToBinance(pair)
		topics := []string{
			"tickers." + sym,
			"orderbook.50." + sym,
		}
		for _, interval := range candleIntervals {
			topics = append(topics, "kline."+interval+"."+sym)
		}
		for _, topic := range topics {
			subs = append(subs, reader.SubscribeRequest{
				ID:    uuid.NewString(),
				Topic: topic,
				Arg:   topic,
			})
		}
	}

	return []reader.Endpoint{{
		Name:              "public",
		URL:               url,
		Subscriptions:     subs,
		Envelope:          subscribeEnvelope,
		Keepalive:         []byte(`{"op":"ping"}`),
		KeepaliveInterval: 20 * time.Second,
	}}, nil
}

func subscribeEnvelope(reqs []reader.SubscribeRequest) ([]byte, error) {
	args := make([]interface{}, len(reqs))
	for i, req := range reqs {
		args[i] = req.Arg
	}
	return json.Marshal(map[string]interface{}{
		"req_id": reqs[0].ID,
		"op":     "subscribe",
		"args":   args,
	})
}

func (s *Spec) Parse(endpoint string, frame []byte) ([]models.MarketEvent, error) {
	var f models.BybitFrame
	if err := json.Unmarshal(frame, &f); err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}

	// Subscription and ping acks.
	if f.Success != nil {
		if !*f.Success {
			s.log.WithFields(logger.Fields{
				"op":      f.Op,
				"ret_msg": f.RetMsg,
			}).Warn("Subscription rejected")
		}
		return nil, nil
	}
	if f.Topic == "" {
		return nil, nil
	}

	parts := strings.Split(f.Topic, ".")
	switch parts[0] {
	case "tickers":
		if len(parts) < 2 {
			return nil, nil
		}
		if evt := normalizer.BybitTicker(parts[1], f.Data, f.Ts); evt != nil {
			return []models.MarketEvent{{Ticker: evt}}, nil
		}
	case "orderbook":
		if len(parts) < 3 {
			return nil, nil
		}
		if evt := normalizer.BybitOrderbook(parts[2], f.Data, f.Ts); evt != nil {
			return []models.MarketEvent{{Book: evt}}, nil
		}
	case "kline":
		if len(parts) < 3 {
			return nil, nil
		}
		if evt := normalizer.BybitKline(parts[2], parts[1], f.Data); evt != nil {
			return []models.MarketEvent{{Candle: evt}}, nil
		}
	}
	return nil, nil
}
