package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase"
)

// firstOfferSequence is the suffix of the first offer number issued on a day.
const firstOfferSequence = 8

// OfferNumberPrefix returns the date part of an offer number, e.g. "2026-03-09-".
func OfferNumberPrefix(t time.Time) string {
	return t.Format("2006-01-02") + "-"
}

// PendingOfferNumber is shown on documents rendered before a number was assigned.
func PendingOfferNumber(t time.Time) string {
	if t.IsZero() {
		return "XXXX-XX-XX-" + strconv.Itoa(firstOfferSequence)
	}
	return OfferNumberPrefix(t) + strconv.Itoa(firstOfferSequence)
}

// NextOfferSequence returns the suffix following the highest numeric suffix
// among existing numbers that start with prefix. It never returns less than
// the first sequence number.
func NextOfferSequence(existing []string, prefix string) int {
	highest := firstOfferSequence - 1
	for _, n := range existing {
		if !strings.HasPrefix(n, prefix) {
			continue
		}
		suffix, err := strconv.Atoi(strings.TrimPrefix(n, prefix))
		if err != nil {
			continue
		}
		if suffix > highest {
			highest = suffix
		}
	}
	return highest + 1
}

// GenerateOfferNumber creates the next offer number for the given day.
// Format: YYYY-MM-DD-{sequence}, where sequence starts at 8 every day.
func GenerateOfferNumber(app *pocketbase.PocketBase, now time.Time) (string, error) {
	prefix := OfferNumberPrefix(now)

	existing, err := app.FindRecordsByFilter(
		"proposals",
		"offer_number ~ {:prefix}",
		"",
		0,
		0,
		map[string]any{"prefix": prefix + "%"},
	)
	if err != nil {
		return "", fmt.Errorf("list offer numbers: %w", err)
	}

	numbers := make([]string, 0, len(existing))
	for _, r := range existing {
		numbers = append(numbers, r.GetString("offer_number"))
	}

	return fmt.Sprintf("%s%d", prefix, NextOfferSequence(numbers, prefix)), nil
}
