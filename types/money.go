// Package types provides common types used across the factoring engine.
package types

import (
	"fmt"
	"strconv"
	"strings"
)

// Money is a monetary amount of the settlement asset, in minor units.
// The asset carries 7 fractional decimal digits, so one whole unit equals
// 10^7 minor units. All arithmetic is integer-only — no floating point.
//
// Examples:
//   - Units(50)        = 50.0000000  (the minimum invoice amount)
//   - Minor(5_0000000) = 5.0000000   (a 0.5% protocol fee on 1000 units)
type Money int64

// Decimals is the number of fractional digits of the settlement asset.
const Decimals = 7

// MinorPerUnit is the number of minor units in one whole asset unit.
const MinorPerUnit Money = 10_000_000

// BpsDenominator is the divisor for basis-point fractions (10000 bps = 100%).
const BpsDenominator = 10_000

// Units creates a Money value from whole asset units.
func Units(n int64) Money { return Money(n) * MinorPerUnit }

// Minor creates a Money value from minor units.
func Minor(n int64) Money { return Money(n) }

// Arithmetic operations

// Add returns m + other.
func (m Money) Add(other Money) Money { return m + other }

// Sub returns m - other.
func (m Money) Sub(other Money) Money { return m - other }

// Neg returns the negative of the Money value.
func (m Money) Neg() Money { return -m }

// Abs returns the absolute value.
func (m Money) Abs() Money {
	if m < 0 {
		return -m
	}
	return m
}

// MulBps applies a basis-point fraction with floor division:
// floor(m * bps / 10000). This is the single rounding rule used by every
// fee and advance computation in the engine.
func (m Money) MulBps(bps uint32) Money {
	return m * Money(bps) / BpsDenominator
}

// Comparison methods

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool { return m == 0 }

// IsPositive reports whether the amount is greater than zero.
func (m Money) IsPositive() bool { return m > 0 }

// IsNegative reports whether the amount is less than zero.
func (m Money) IsNegative() bool { return m < 0 }

// LessThan reports whether m < other.
func (m Money) LessThan(other Money) bool { return m < other }

// GreaterThan reports whether m > other.
func (m Money) GreaterThan(other Money) bool { return m > other }

// Int64 returns the amount in minor units.
func (m Money) Int64() int64 { return int64(m) }

// Formatting methods

// Format returns the amount in whole units with the full 7-digit fraction,
// e.g. "1000.0000000" for Units(1000).
func (m Money) Format() string {
	isNegative := m < 0
	abs := m.Abs()

	major := abs / MinorPerUnit
	minor := abs % MinorPerUnit

	result := fmt.Sprintf("%d.%07d", major, minor)
	if isNegative {
		return "-" + result
	}
	return result
}

// String implements fmt.Stringer.
func (m Money) String() string { return m.Format() }

// ParseMoney parses a decimal string ("1000", "1000.05", "-0.0000001") into
// a Money value. At most 7 fractional digits are accepted.
func ParseMoney(s string) (Money, error) {
	whole, frac, _ := strings.Cut(s, ".")

	negative := strings.HasPrefix(whole, "-")
	whole = strings.TrimPrefix(whole, "-")

	var major int64
	if whole != "" {
		var err error
		major, err = strconv.ParseInt(whole, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("money: parse %q: %w", s, err)
		}
	}

	if len(frac) > Decimals {
		return 0, fmt.Errorf("money: parse %q: more than %d fractional digits", s, Decimals)
	}

	var minor int64
	if frac != "" {
		padded := frac + strings.Repeat("0", Decimals-len(frac))
		var err error
		minor, err = strconv.ParseInt(padded, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("money: parse %q: %w", s, err)
		}
	}

	result := Money(major)*MinorPerUnit + Money(minor)
	if negative {
		result = -result
	}
	return result, nil
}

// Sum calculates the sum of multiple Money values.
func Sum(values ...Money) Money {
	var result Money
	for _, v := range values {
		result += v
	}
	return result
}
