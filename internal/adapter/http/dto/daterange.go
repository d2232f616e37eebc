package dto

import (
	"fmt"
	"time"

	"github.com/iho/salonledger/internal/domain"
)

const dateLayout = "2006-01-02"

// ParseDateRange parses inclusive range bounds given as RFC 3339 timestamps
// or plain dates. A plain to date covers the whole day. Empty bounds are
// open.
func ParseDateRange(from, to string) (domain.DateRange, error) {
	var rng domain.DateRange

	start, err := parseBound(from, false)
	if err != nil {
		return rng, fmt.Errorf("%w: from: %v", domain.ErrInvalidDateRange, err)
	}

	end, err := parseBound(to, true)
	if err != nil {
		return rng, fmt.Errorf("%w: to: %v", domain.ErrInvalidDateRange, err)
	}

	rng.From, rng.To = start, end

	return rng, rng.Validate()
}

func parseBound(val string, endOfDay bool) (time.Time, error) {
	if val == "" {
		return time.Time{}, nil
	}

	if t, err := time.Parse(time.RFC3339, val); err == nil {
		return t.UTC(), nil
	}

	t, err := time.Parse(dateLayout, val)
	if err != nil {
		return time.Time{}, err
	}

	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}

	return t, nil
}
