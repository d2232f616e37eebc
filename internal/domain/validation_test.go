package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestValidateActor(t *testing.T) {
	t.Parallel()

	if err := ValidateActor("Lucia"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := ValidateActor("   "); !errors.Is(err, ErrInvalidActor) {
		t.Fatalf("expected ErrInvalidActor, got %v", err)
	}

	if err := ValidateActor(strings.Repeat("a", MaxActorLength+1)); !errors.Is(err, ErrInvalidActor) {
		t.Fatalf("expected ErrInvalidActor for long name, got %v", err)
	}
}

func TestValidateAmount(t *testing.T) {
	t.Parallel()

	if err := ValidateAmount(decimal.NewFromFloat(100.25)); err != nil {
		t.Fatalf("expected valid amount, got %v", err)
	}

	if err := ValidateAmount(decimal.Zero); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for zero, got %v", err)
	}

	if err := ValidateAmount(decimal.NewFromFloat(0.001)); !errors.Is(err, ErrAmountTooSmall) {
		t.Fatalf("expected ErrAmountTooSmall, got %v", err)
	}

	huge := decimal.RequireFromString(MaxAmount).Add(decimal.NewFromInt(1))
	if err := ValidateAmount(huge); !errors.Is(err, ErrAmountTooLarge) {
		t.Fatalf("expected ErrAmountTooLarge, got %v", err)
	}
}

func TestValidateObservations(t *testing.T) {
	t.Parallel()

	if err := ValidateObservations("cierre de caja"); err != nil {
		t.Fatalf("expected valid observations, got %v", err)
	}

	if err := ValidateObservations(strings.Repeat("x", MaxObservationsLength+1)); !errors.Is(err, ErrObservationsTooBig) {
		t.Fatalf("expected ErrObservationsTooBig, got %v", err)
	}
}

func TestValidatePagination(t *testing.T) {
	t.Parallel()

	limit, offset, _ := ValidatePagination(0, -5)
	if limit != 50 || offset != 0 {
		t.Fatalf("expected defaults 50/0, got %d/%d", limit, offset)
	}

	limit, _, _ = ValidatePagination(5000, 0)
	if limit != 1000 {
		t.Fatalf("expected limit clamp to 1000, got %d", limit)
	}
}
