package symbols

import "strings"

// Canonical converts an exchange-specific instrument identifier to the
// canonical form: upper-case with separator characters removed.
// OKX swap suffixes are stripped so spot and swap quotes share one symbol.
func Canonical(sym string) string {
	sym = strings.ToUpper(sym)
	sym = strings.TrimSuffix(sym, "-SWAP")
	sym = strings.ReplaceAll(sym, "-", "")
	sym = strings.ReplaceAll(sym, "_", "")
	sym = strings.ReplaceAll(sym, "/", "")
	return sym
}

// ToBinance converts a hyphenated pair ("BTC-USDT") into the Binance/Bybit
// stream form ("BTCUSDT").
func ToBinance(pair string) string {
	return Canonical(pair)
}

// ToOkx converts a canonical or hyphenless pair into OKX's hyphenated
// instrument form. Quote currency detection covers the stablecoin quotes the
// feed subscribes to; already-hyphenated pairs pass through unchanged.
func ToOkx(pair string) string {
	if strings.Contains(pair, "-") {
		return strings.ToUpper(pair)
	}
	sym := strings.ToUpper(pair)
	for _, quote := range []string{"USDT", "USDC", "USD", "BTC", "ETH"} {
		if strings.HasSuffix(sym, quote) && len(sym) > len(quote) {
			return sym[:len(sym)-len(quote)] + "-" + quote
		}
	}
	return sym
}
