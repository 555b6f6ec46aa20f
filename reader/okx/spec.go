// Package okx speaks the OKX v5 websocket protocol. Tickers and books live
// on the public socket; candlesticks live on the business socket. Both take
// one combined subscribe request and answer text keepalives with "pong".
package okx

import (
	"bytes"
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

const (
	publicURL   = "wss://ws.okx.com:8443/ws/v5/public"
	businessURL = "wss://ws.okx.com:8443/ws/v5/business"
)

var publicChannels = []string{"tickers", "books"}

// candleChannels cover every granularity the business socket serves,
// including the UTC-aligned daily and longer buckets.
var candleChannels = []string{
	"candle1s", "candle1m", "candle3m", "candle5m", "candle15m", "candle30m",
	"candle1H", "candle2H", "candle4H", "candle6H", "candle12H",
	"candle1D", "candle2D", "candle3D", "candle5D",
	"candle1W", "candle1M", "candle3M",
	"candle1Dutc", "candle2Dutc", "candle3Dutc", "candle5Dutc",
	"candle12Hutc", "candle6Hutc",
	"candle1Wutc", "candle1Mutc", "candle3Mutc",
}

var pong = []byte("pong")

type Spec struct {
	cfg config.AdapterConfig
	log *logger.Entry
}

func NewSpec(cfg config.AdapterConfig) *Spec {
	return &Spec{
		cfg: cfg,
		log: logger.GetLogger().WithComponent("reader.okx"),
	}
}

func (s *Spec) Exchange() models.Exchange {
	return models.ExchangeOkx
}

func (s *Spec) Endpoints(pairs []string) ([]reader.Endpoint, error) {
	instType := strings.ToUpper(s.cfg.MarketType)
	if instType == "" {
		instType = "SPOT"
	}

	public := reader.Endpoint{
		Name:              "public",
		URL:               publicURL,
		Envelope:          subscribeEnvelope,
		Combined:          true,
		Keepalive:         []byte("ping"),
		KeepaliveInterval: 25 * time.Second,
	}
	if s.cfg.URL != "" {
		public.URL = s.cfg.URL
	}
	business := reader.Endpoint{
		Name:              "business",
		URL:               businessURL,
		Envelope:          subscribeEnvelope,
		Combined:          true,
		Keepalive:         []byte("ping"),
		KeepaliveInterval: 25 * time.Second,
	}
	if s.cfg.BusinessURL != "" {
		business.URL = s.cfg.BusinessURL
	}

	for _, pair := range pairs {
		instID := symbols.ToOkx(pair)
		if instID == "" {
			return nil, fmt.Errorf("okx: cannot derive instrument id from %q", pair)
		}
		for _, ch := range publicChannels {
			public.Subscriptions = append(public.Subscriptions, request(ch, instID, instType))
		}
		for _, ch := range candleChannels {
			business.Subscriptions = append(business.Subscriptions, request(ch, instID, instType))
		}
	}
	return []reader.Endpoint{public, business}, nil
}

func request(channel, instID, instType string) reader.SubscribeRequest {
	return reader.SubscribeRequest{
		ID:    uuid.NewString(),
		Topic: channel + ":" + instID,
		Arg: models.OkxArg{
			Channel:  channel,
			InstID:   instID,
			InstType: instType,
		},
	}
}

func subscribeEnvelope(reqs []reader.SubscribeRequest) ([]byte, error) {
	args := make([]interface{}, len(reqs))
	for i, req := range reqs {
		args[i] = req.Arg
	}
	return json.Marshal(map[string]interface{}{
		"op":   "subscribe",
		"args": args,
	})
}

func (s *Spec) Parse(endpoint string, frame []byte) ([]models.MarketEvent, error) {
	if bytes.Equal(frame, pong) {
		return nil, nil
	}

	var f models.OkxFrame
	if err := json.Unmarshal(frame, &f); err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}
	if f.Event != "" {
		if f.Event == "error" {
			s.log.WithFields(logger.Fields{
				"endpoint": endpoint,
				"code":     f.Code,
				"msg":      f.Msg,
			}).Warn("Subscription rejected")
		}
		return nil, nil
	}
	if len(f.Data) == 0 {
		return nil, nil
	}

	channel := f.Arg.Channel
	instID := f.Arg.InstID
	switch {
	case channel == "tickers":
		if evt := normalizer.OkxTicker(instID, f.Data); evt != nil {
			return []models.MarketEvent{{Ticker: evt}}, nil
		}
	case channel == "books":
		if evt := normalizer.OkxBook(instID, f.Data); evt != nil {
			return []models.MarketEvent{{Book: evt}}, nil
		}
	case strings.HasPrefix(channel, "candle"):
		if evt := normalizer.OkxCandle(instID, channel, f.Data); evt != nil {
			return []models.MarketEvent{{Candle: evt}}, nil
		}
	}
	return nil, nil
}
