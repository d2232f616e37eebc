package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestTransferRecord_Validate(t *testing.T) {
	tests := []struct {
		name        string
		record      TransferRecord
		expectError error
	}{
		{
			name: "valid full transfer",
			record: TransferRecord{
				SourceCashBox:      CashBoxPetty,
				DestinationCashBox: CashBoxMain,
				ComandaIDs:         []string{"c-1"},
				TotalUSD:           decimal.NewFromInt(100),
				TotalARS:           decimal.Zero,
				ResidualUSD:        decimal.Zero,
				ResidualARS:        decimal.Zero,
			},
		},
		{
			name: "valid partial transfer",
			record: TransferRecord{
				SourceCashBox:      CashBoxPetty,
				DestinationCashBox: CashBoxMain,
				ComandaIDs:         []string{"c-1"},
				TotalUSD:           decimal.NewFromInt(100),
				TotalARS:           decimal.Zero,
				ResidualUSD:        decimal.NewFromInt(200),
				ResidualARS:        decimal.NewFromInt(45000),
				Partial:            true,
			},
		},
		{
			name: "wrong direction",
			record: TransferRecord{
				SourceCashBox:      CashBoxMain,
				DestinationCashBox: CashBoxPetty,
				ComandaIDs:         []string{"c-1"},
			},
			expectError: ErrInvalidTransferRoute,
		},
		{
			name: "no comandas",
			record: TransferRecord{
				SourceCashBox:      CashBoxPetty,
				DestinationCashBox: CashBoxMain,
			},
			expectError: ErrEmptyTransfer,
		},
		{
			name: "partial transfer with negative request",
			record: TransferRecord{
				SourceCashBox:      CashBoxPetty,
				DestinationCashBox: CashBoxMain,
				ComandaIDs:         []string{"c-1"},
				TotalUSD:           decimal.NewFromInt(-1),
				Partial:            true,
			},
			expectError: ErrInvalidAmount,
		},
		{
			name: "full transfer with negative net",
			record: TransferRecord{
				SourceCashBox:      CashBoxPetty,
				DestinationCashBox: CashBoxMain,
				ComandaIDs:         []string{"c-1"},
				TotalARS:           decimal.NewFromInt(-500),
			},
		},
		{
			name: "full transfer with residual",
			record: TransferRecord{
				SourceCashBox:      CashBoxPetty,
				DestinationCashBox: CashBoxMain,
				ComandaIDs:         []string{"c-1"},
				ResidualUSD:        decimal.NewFromInt(1),
			},
			expectError: ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.record.Validate()
			if tt.expectError == nil && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if tt.expectError != nil && err != tt.expectError {
				t.Errorf("expected error %v, got %v", tt.expectError, err)
			}
		})
	}
}

func TestDateRange(t *testing.T) {
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 31, 23, 59, 59, 0, time.UTC)
	r := DateRange{From: from, To: to}

	if err := r.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !r.Contains(from) || !r.Contains(to) {
		t.Errorf("expected bounds to be inclusive")
	}
	if r.Contains(from.Add(-time.Second)) || r.Contains(to.Add(time.Second)) {
		t.Errorf("expected values outside the range to be excluded")
	}
	if err := (DateRange{From: to, To: from}).Validate(); err != ErrInvalidDateRange {
		t.Errorf("expected ErrInvalidDateRange, got %v", err)
	}
	if !(DateRange{}).Contains(time.Now()) {
		t.Errorf("expected open range to contain everything")
	}
}
