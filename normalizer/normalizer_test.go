package normalizer

import "testing"

func TestNum(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"42.5", 42.5},
		{"-0.001", -0.001},
		{"", 0},
		{"abc", 0},
		{"NaN", 0},
		{"Inf", 0},
		{"-Inf", 0},
	}
	for _, c := range cases {
		if got := Num(c.in); got != c.want {
			t.Errorf("Num(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestLevelsSortsBidsDescending(t *testing.T) {
	raw := [][]string{
		{"100.5", "1"},
		{"101.0", "2"},
		{"99.9", "3"},
	}
	levels := Levels(raw, true, 10)
	if len(levels) != 3 {
		t.Fatalf("expected 3 levels, got %d", len(levels))
	}
	if levels[0].Price != 101.0 || levels[1].Price != 100.5 || levels[2].Price != 99.9 {
		t.Errorf("bids not sorted best first: %+v", levels)
	}
}

func TestLevelsSortsAsksAscending(t *testing.T) {
	raw := [][]string{
		{"101.0", "2"},
		{"100.5", "1"},
		{"102.0", "3"},
	}
	levels := Levels(raw, false, 10)
	if levels[0].Price != 100.5 || levels[1].Price != 101.0 || levels[2].Price != 102.0 {
		t.Errorf("asks not sorted best first: %+v", levels)
	}
}

func TestLevelsTruncatesToDepth(t *testing.T) {
	raw := make([][]string, 15)
	for i := range raw {
		raw[i] = []string{"100", "1"}
	}
	if got := len(Levels(raw, true, 10)); got != 10 {
		t.Errorf("expected 10 levels, got %d", got)
	}
}

func TestLevelsSkipsShortTuples(t *testing.T) {
	raw := [][]string{
		{"100.5"},
		{"101.0", "2", "0", "4"},
	}
	levels := Levels(raw, true, 10)
	if len(levels) != 1 {
		t.Fatalf("expected 1 level, got %d", len(levels))
	}
	if levels[0].Price != 101.0 || levels[0].Quantity != 2 {
		t.Errorf("unexpected level: %+v", levels[0])
	}
}
