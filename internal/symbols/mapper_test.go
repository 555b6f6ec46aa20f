package symbols

import "testing"

func TestCanonical(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"btcusdt", "BTCUSDT"},
		{"BTC-USDT", "BTCUSDT"},
		{"BTC_USDT", "BTCUSDT"},
		{"BTC/USDT", "BTCUSDT"},
		{"BTC-USDT-SWAP", "BTCUSDT"},
		{"ETHUSDT", "ETHUSDT"},
	}
	for _, c := range cases {
		if got := Canonical(c.in); got != c.want {
			t.Errorf("Canonical(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestToBinance(t *testing.T) {
	if got := ToBinance("BTC-USDT"); got != "BTCUSDT" {
		t.Errorf("ToBinance = %q", got)
	}
}

func TestToOkx(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"BTC-USDT", "BTC-USDT"},
		{"btc-usdt", "BTC-USDT"},
		{"BTCUSDT", "BTC-USDT"},
		{"SOLUSDC", "SOL-USDC"},
		{"ETHBTC", "ETH-BTC"},
		{"USDT", "USDT"},
	}
	for _, c := range cases {
		if got := ToOkx(c.in); got != c.want {
			t.Errorf("ToOkx(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
