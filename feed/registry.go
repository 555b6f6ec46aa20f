package feed

import (
	"context"
	"fmt"
)

// SymbolRegistry supplies the instrument universe at startup. Pairs are
// hyphenated base-quote identifiers such as "BTC-USDT"; adapters translate
// them into their venue's notation.
type SymbolRegistry interface {
	ActivePairs(ctx context.Context) ([]string, error)
}

// StaticRegistry serves a fixed pair list from configuration.
type StaticRegistry struct {
	pairs []string
}

func NewStaticRegistry(pairs []string) *StaticRegistry {
	return &StaticRegistry{pairs: pairs}
}

func (r *StaticRegistry) ActivePairs(ctx context.Context) ([]string, error) {
	if len(r.pairs) == 0 {
		return nil, fmt.Errorf("no trading pairs configured")
	}
	pairs := make([]string, len(r.pairs))
	copy(pairs, r.pairs)
	return pairs, nil
}
