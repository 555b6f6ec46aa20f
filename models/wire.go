package models

import "encoding/json"

/////////////////////////////////////////////////////////////////////////////
///////////////////////////////// BINANCE ///////////////////////////////////
/////////////////////////////////////////////////////////////////////////////

// BinanceStreamFrame is the combined-stream wrapper emitted when connecting
// through /stream?streams=...; Data holds the channel-specific payload.
type BinanceStreamFrame struct {
	Stream string          `json:"stream"`
	Data   json.RawMessage `json:"data"`
}

// BinanceTickerData mirrors the 24hr rolling window ticker payload.
type BinanceTickerData struct {
	EventType     string `json:"e"`
	EventTime     int64  `json:"E"`
	Symbol        string `json:"s"`
	PriceChange   string `json:"p"`
	PricePercent  string `json:"P"`
	LastPrice     string `json:"c"`
	HighPrice     string `json:"h"`
	LowPrice      string `json:"l"`
	BaseVolume    string `json:"v"`
	QuoteVolume   string `json:"q"`
}

// BinanceDepthData mirrors the partial book depth payload (depth20).
type BinanceDepthData struct {
	LastUpdateID int64      `json:"lastUpdateId"`
	EventTime    int64      `json:"E"`
	Bids         [][]string `json:"bids"`
	Asks         [][]string `json:"asks"`
}

// BinanceKlineData mirrors the kline/candlestick payload.
type BinanceKlineData struct {
	EventType string `json:"e"`
	EventTime int64  `json:"E"`
	Symbol    string `json:"s"`
	Kline     struct {
		OpenTime    int64  `json:"t"`
		CloseTime   int64  `json:"T"`
		Symbol      string `json:"s"`
		Interval    string `json:"i"`
		Open        string `json:"o"`
		Close       string `json:"c"`
		High        string `json:"h"`
		Low         string `json:"l"`
		Volume      string `json:"v"`
		Trades      int64  `json:"n"`
		IsClosed    bool   `json:"x"`
		QuoteVolume string `json:"q"`
	} `json:"k"`
}

/////////////////////////////////////////////////////////////////////////////
///////////////////////////////// BYBIT /////////////////////////////////////
/////////////////////////////////////////////////////////////////////////////

// BybitFrame is the v5 public stream wrapper. Subscription acks carry the
// Success/RetMsg pair and no topic; data frames carry a topic and a
// channel-specific Data payload.
type BybitFrame struct {
	Topic   string          `json:"topic"`
	Type    string          `json:"type"`
	Ts      int64           `json:"ts"`
	Success *bool           `json:"success,omitempty"`
	RetMsg  string          `json:"ret_msg,omitempty"`
	Op      string          `json:"op,omitempty"`
	Data    json.RawMessage `json:"data"`
}

// BybitTickerData mirrors the tickers.<symbol> payload.
type BybitTickerData struct {
	Symbol        string `json:"symbol"`
	LastPrice     string `json:"lastPrice"`
	Price24hPcnt  string `json:"price24hPcnt"`
	HighPrice24h  string `json:"highPrice24h"`
	LowPrice24h   string `json:"lowPrice24h"`
	Volume24h     string `json:"volume24h"`
	Turnover24h   string `json:"turnover24h"`
	Ts            int64  `json:"ts"`
}

// BybitOrderbookData mirrors the orderbook.<depth>.<symbol> payload.
type BybitOrderbookData struct {
	Symbol   string     `json:"s"`
	Bids     [][]string `json:"b"`
	Asks     [][]string `json:"a"`
	UpdateID int64      `json:"u"`
	Seq      int64      `json:"seq"`
}

// BybitKlineData mirrors one entry of the kline.<interval>.<symbol> payload.
type BybitKlineData struct {
	Start    int64  `json:"start"`
	End      int64  `json:"end"`
	Interval string `json:"interval"`
	Open     string `json:"open"`
	Close    string `json:"close"`
	High     string `json:"high"`
	Low      string `json:"low"`
	Volume   string `json:"volume"`
	Turnover string `json:"turnover"`
	Confirm  bool   `json:"confirm"`
}

/////////////////////////////////////////////////////////////////////////////
////////////////////////////////// OKX //////////////////////////////////////
/////////////////////////////////////////////////////////////////////////////

// OkxFrame is the v5 websocket wrapper shared by the public and business
// endpoints. Control frames (subscribe acks, errors) set Event; data frames
// set Arg and Data.
type OkxFrame struct {
	Event string          `json:"event,omitempty"`
	Code  string          `json:"code,omitempty"`
	Msg   string          `json:"msg,omitempty"`
	Arg   OkxArg          `json:"arg"`
	Data  json.RawMessage `json:"data"`
}

// OkxArg identifies the channel a frame belongs to.
type OkxArg struct {
	Channel  string `json:"channel"`
	InstID   string `json:"instId"`
	InstType string `json:"instType,omitempty"`
}

// OkxTickerData mirrors one entry of the tickers channel payload.
type OkxTickerData struct {
	InstType  string `json:"instType"`
	InstID    string `json:"instId"`
	Last      string `json:"last"`
	Open24h   string `json:"open24h"`
	High24h   string `json:"high24h"`
	Low24h    string `json:"low24h"`
	VolCcy24h string `json:"volCcy24h"`
	Vol24h    string `json:"vol24h"`
	Ts        string `json:"ts"`
}

// OkxBookData mirrors one entry of the books channel payload. Levels are
// [price, size, liquidatedOrders, orderCount] string arrays.
type OkxBookData struct {
	Bids [][]string `json:"bids"`
	Asks [][]string `json:"asks"`
	Ts   string     `json:"ts"`
}
