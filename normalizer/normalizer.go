// Package normalizer maps exchange-specific wire payloads onto the canonical
// event schema. All functions are pure: a structurally invalid payload yields
// nil, never an error, and numeric fields always come out finite.
package normalizer

import (
	"math"
	"sort"
	"strconv"

	"marketfeed/models"
)

// Payload type discriminators carried inside event payloads.
const (
	TypeMarket    = "MARKET"
	TypeOrderBook = "ORDERBOOK"
	TypeCandle    = "CANDLE"
)

// Book depths per exchange.
const (
	BinanceBookDepth = 20
	BybitBookDepth   = 50
	OkxBookDepth     = 10
)

// Num parses a decimal string with the parse-or-default-to-zero policy.
// NaN and infinities normalize to 0 so they can never reach consumers.
func Num(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Levels converts raw [price, quantity, ...] string tuples into price levels,
// sorts them best price first (descending for bids, ascending for asks) and
// truncates to depth. Tuples with fewer than two fields are skipped.
func Levels(raw [][]string, bids bool, depth int) []models.PriceLevel {
	levels := make([]models.PriceLevel, 0, len(raw))
	for _, entry := range raw {
		if len(entry) < 2 {
			continue
		}
		levels = append(levels, models.PriceLevel{
			Price:    Num(entry[0]),
			Quantity: Num(entry[1]),
		})
	}

	sort.SliceStable(levels, func(i, j int) bool {
		if bids {
			return levels[i].Price > levels[j].Price
		}
		return levels[i].Price < levels[j].Price
	})

	if depth > 0 && len(levels) > depth {
		levels = levels[:depth]
	}
	return levels
}
