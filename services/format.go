package services

import (
	"fmt"
	"time"
)

// FormatEUR formats an amount in German notation without currency sign,
// e.g. 1234567 cents → "12.345,67". There are always two decimals.
func FormatEUR(m Money) string {
	negative := m < 0
	if negative {
		m = -m
	}

	euros := int64(m) / 100
	cents := int64(m) % 100

	result := applyThousandsGrouping(fmt.Sprintf("%d", euros)) + "," + fmt.Sprintf("%02d", cents)
	if negative {
		result = "-" + result
	}
	return result
}

// FormatEURSign is FormatEUR followed by " €".
func FormatEURSign(m Money) string {
	return FormatEUR(m) + " €"
}

// applyThousandsGrouping inserts a dot between every group of three digits
// counted from the right.
func applyThousandsGrouping(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	result := s[n-3:]
	remaining := s[:n-3]
	for len(remaining) > 3 {
		result = remaining[len(remaining)-3:] + "." + result
		remaining = remaining[:len(remaining)-3]
	}
	return remaining + "." + result
}

// FormatGermanDate renders t as DD.MM.YYYY, or XX.XX.XXXX for the zero time.
func FormatGermanDate(t time.Time) string {
	if t.IsZero() {
		return "XX.XX.XXXX"
	}
	return t.Format("02.01.2006")
}
