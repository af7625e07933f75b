package types

import (
	"testing"
)

func TestMoneyConstructors(t *testing.T) {
	tests := []struct {
		name    string
		money   Money
		minor   int64
		display string
	}{
		{"One unit", Units(1), 10_000_000, "1.0000000"},
		{"Fifty units", Units(50), 500_000_000, "50.0000000"},
		{"Thousand units", Units(1000), 10_000_000_000, "1000.0000000"},
		{"One minor", Minor(1), 1, "0.0000001"},
		{"Half unit", Minor(5_000_000), 5_000_000, "0.5000000"},
		{"Zero", Minor(0), 0, "0.0000000"},
		{"Negative", Units(-3), -30_000_000, "-3.0000000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.money.Int64() != tt.minor {
				t.Errorf("Int64: got %d, want %d", tt.money.Int64(), tt.minor)
			}
			if tt.money.String() != tt.display {
				t.Errorf("Display: got %s, want %s", tt.money.String(), tt.display)
			}
		})
	}
}

func TestMoneyArithmetic(t *testing.T) {
	tests := []struct {
		name     string
		op       func() Money
		expected Money
	}{
		{"Add", func() Money { return Units(100).Add(Units(200)) }, Units(300)},
		{"Sub", func() Money { return Units(500).Sub(Units(200)) }, Units(300)},
		{"Neg", func() Money { return Units(100).Neg() }, Units(-100)},
		{"Abs positive", func() Money { return Units(100).Abs() }, Units(100)},
		{"Abs negative", func() Money { return Units(-100).Abs() }, Units(100)},
		{"Complex", func() Money {
			return Units(1000).Add(Units(500)).Sub(Units(700))
		}, Units(800)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.op()
			if result != tt.expected {
				t.Errorf("Got %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestMoneyMulBps(t *testing.T) {
	tests := []struct {
		name     string
		m        Money
		bps      uint32
		expected Money
	}{
		{"Full", Units(1000), 10_000, Units(1000)},
		{"Zero bps", Units(1000), 0, 0},
		{"Advance 85pct", Units(1000), 8_500, Units(850)},
		{"Fee 9pct of advance", Units(850), 900, Minor(765_000_000)},
		{"Protocol 0.5pct", Units(1000), 50, Units(5)},
		{"Floors down", Minor(3), 5_000, Minor(1)},
		{"Floors to zero", Minor(1), 9_999, 0},
		{"Zero amount", 0, 5_000, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.m.MulBps(tt.bps); got != tt.expected {
				t.Errorf("MulBps: got %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestMoneyPredicates(t *testing.T) {
	tests := []struct {
		name       string
		money      Money
		isZero     bool
		isPositive bool
		isNegative bool
	}{
		{"Zero", Minor(0), true, false, false},
		{"Positive", Units(100), false, true, false},
		{"Negative", Units(-100), false, false, true},
		{"One minor", Minor(1), false, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.money.IsZero(); got != tt.isZero {
				t.Errorf("IsZero: got %v, want %v", got, tt.isZero)
			}
			if got := tt.money.IsPositive(); got != tt.isPositive {
				t.Errorf("IsPositive: got %v, want %v", got, tt.isPositive)
			}
			if got := tt.money.IsNegative(); got != tt.isNegative {
				t.Errorf("IsNegative: got %v, want %v", got, tt.isNegative)
			}
		})
	}
}

func TestMoneyComparison(t *testing.T) {
	tests := []struct {
		name    string
		a, b    Money
		less    bool
		greater bool
	}{
		{"Equal", Units(100), Units(100), false, false},
		{"Less", Units(50), Units(100), true, false},
		{"Greater", Units(200), Units(100), false, true},
		{"Negative less", Units(-100), Units(100), true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.LessThan(tt.b); got != tt.less {
				t.Errorf("LessThan: got %v, want %v", got, tt.less)
			}
			if got := tt.a.GreaterThan(tt.b); got != tt.greater {
				t.Errorf("GreaterThan: got %v, want %v", got, tt.greater)
			}
		})
	}
}

func TestParseMoney(t *testing.T) {
	tests := []struct {
		input    string
		expected Money
	}{
		{"1000", Units(1000)},
		{"1000.05", Units(1000) + Minor(500_000)},
		{"0.0000001", Minor(1)},
		{"-0.0000001", Minor(-1)},
		{"-50", Units(-50)},
		{"0", 0},
		{".5", Minor(5_000_000)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseMoney(tt.input)
			if err != nil {
				t.Fatalf("ParseMoney(%q): %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("ParseMoney(%q): got %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseMoneyErrors(t *testing.T) {
	tests := []string{
		"1.00000001", // 8 fractional digits
		"abc",
		"1.2x",
	}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			if _, err := ParseMoney(input); err == nil {
				t.Errorf("ParseMoney(%q): expected error", input)
			}
		})
	}
}

func TestParseMoneyRoundTrip(t *testing.T) {
	values := []Money{0, Minor(1), Units(50), Units(1000) + Minor(765), Units(-12) - Minor(34)}

	for _, v := range values {
		parsed, err := ParseMoney(v.String())
		if err != nil {
			t.Fatalf("ParseMoney(%q): %v", v.String(), err)
		}
		if parsed != v {
			t.Errorf("round-trip mismatch: %v != %v", parsed, v)
		}
	}
}

func TestSum(t *testing.T) {
	tests := []struct {
		name     string
		values   []Money
		expected Money
	}{
		{"Empty", []Money{}, 0},
		{"Single", []Money{Units(100)}, Units(100)},
		{"Multiple", []Money{Units(100), Units(200), Units(300)}, Units(600)},
		{"With negatives", []Money{Units(100), Units(-50), Units(200)}, Units(250)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sum(tt.values...); got != tt.expected {
				t.Errorf("Sum: got %v, want %v", got, tt.expected)
			}
		})
	}
}

func BenchmarkMoneyMulBps(b *testing.B) {
	m := Units(1000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = m.MulBps(8_500)
	}
}

func BenchmarkMoneyFormat(b *testing.B) {
	m := Units(1000) + Minor(765)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = m.Format()
	}
}
