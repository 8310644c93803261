package services

import (
	"testing"
	"time"
)

func TestFormatEUR(t *testing.T) {
	tests := []struct {
		name   string
		amount Money
		expect string
	}{
		{"zero", 0, "0,00"},
		{"cents only", 5, "0,05"},
		{"hundreds", Euros(199), "199,00"},
		{"thousands", MoneyFromFloat(1071.5), "1.071,50"},
		{"ten thousands", 1234567, "12.345,67"},
		{"millions", Euros(1234567), "1.234.567,00"},
		{"negative", Euros(-1500), "-1.500,00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatEUR(tt.amount)
			if got != tt.expect {
				t.Errorf("FormatEUR(%d) = %q, want %q", tt.amount, got, tt.expect)
			}
		})
	}
}

func TestFormatEURSign(t *testing.T) {
	if got := FormatEURSign(Euros(1071)); got != "1.071,00 €" {
		t.Errorf("FormatEURSign() = %q", got)
	}
}

func TestFormatGermanDate(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{"zero", time.Time{}, "XX.XX.XXXX"},
		{"regular", time.Date(2025, time.March, 7, 15, 0, 0, 0, time.UTC), "07.03.2025"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatGermanDate(tt.in); got != tt.want {
				t.Errorf("FormatGermanDate() = %q, want %q", got, tt.want)
			}
		})
	}
}
