package money

import (
	"fmt"
	"strconv"
	"strings"
)

// Money represents a monetary value stored in minor units (cents).
type Money = int64

// Milli represents a measured weight stored in thousandths of the
// product's weight unit, e.g. 1.250 kg = 1250.
type Milli = int64

// ParseAmount converts a decimal string such as "7.38" into minor units.
// At most two fractional digits are accepted.
func ParseAmount(value string) (Money, error) {
	return parseFixed(value, 2)
}

// ParseWeight converts a decimal string such as "1.250" into milli units.
// At most three fractional digits are accepted.
func ParseWeight(value string) (Milli, error) {
	return parseFixed(value, 3)
}

// FormatAmount renders a minor-unit amount as a decimal string with two digits.
func FormatAmount(v Money) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// FormatWeight renders a milli-unit weight as a decimal string with three digits.
func FormatWeight(v Milli) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%03d", sign, v/1000, v%1000)
}

// WeightedPrice computes price-per-unit × weight rounded half up to the
// nearest cent.
func WeightedPrice(pricePerUnit Money, weight Milli) Money {
	if pricePerUnit <= 0 || weight <= 0 {
		return 0
	}
	return (pricePerUnit*weight + 500) / 1000
}

func parseFixed(value string, frac int) (int64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, fmt.Errorf("empty amount")
	}
	neg := false
	if strings.HasPrefix(trimmed, "-") {
		neg = true
		trimmed = trimmed[1:]
	}
	whole := trimmed
	fraction := ""
	if idx := strings.IndexByte(trimmed, '.'); idx >= 0 {
		whole = trimmed[:idx]
		fraction = trimmed[idx+1:]
	}
	if whole == "" {
		whole = "0"
	}
	if len(fraction) > frac {
		return 0, fmt.Errorf("too many decimal places in %q", value)
	}
	for len(fraction) < frac {
		fraction += "0"
	}
	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", value, err)
	}
	scale := int64(1)
	for i := 0; i < frac; i++ {
		scale *= 10
	}
	result := w * scale
	if fraction != "" {
		f, err := strconv.ParseInt(fraction, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parse amount %q: %w", value, err)
		}
		result += f
	}
	if neg {
		result = -result
	}
	return result, nil
}
