package ui

import (
	"math"
	"testing"
)

func TestFormatComma(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1500, "1,500"},
		{1234567, "1,234,567"},
		{1234.5, "1,234.5"},
		{-123, "-123"},
		{-120, "-120"},
		{-123.5, "-123.5"},
		{-1500, "-1,500"},
		{math.NaN(), "—"},
	}
	for _, tt := range tests {
		if got := formatComma(tt.in); got != tt.want {
			t.Errorf("formatComma(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{425000, "$425,000"},
		{-42500, "-$42,500"},
		{math.NaN(), "—"},
	}
	for _, tt := range tests {
		if got := formatMoney(tt.in); got != tt.want {
			t.Errorf("formatMoney(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatPct(t *testing.T) {
	if got := formatPct(0.123); got != "+12.3%" {
		t.Errorf("formatPct(0.123) = %q", got)
	}
	if got := formatPct(-0.05); got != "-5.0%" {
		t.Errorf("formatPct(-0.05) = %q", got)
	}
	if got := formatPct(math.NaN()); got != "—" {
		t.Errorf("formatPct(NaN) = %q", got)
	}
}
