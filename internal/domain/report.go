package domain

import "github.com/shopspring/decimal"

// Summary is the per-currency reconciliation view of a set of comandas.
type Summary struct {
	IncomeUSD        decimal.Decimal
	IncomeARS        decimal.Decimal
	ExpenseUSD       decimal.Decimal
	ExpenseARS       decimal.Decimal
	NetUSD           decimal.Decimal
	NetARS           decimal.Decimal
	TransfersInUSD   decimal.Decimal
	TransfersInARS   decimal.Decimal
	TransfersOutUSD  decimal.Decimal
	TransfersOutARS  decimal.Decimal
	TransactionCount int
}

// SummaryFromTotals builds a summary with no transfer movements.
func SummaryFromTotals(t Totals) Summary {
	return Summary{
		IncomeUSD:        t.IncomeUSD,
		IncomeARS:        t.IncomeARS,
		ExpenseUSD:       t.ExpenseUSD,
		ExpenseARS:       t.ExpenseARS,
		NetUSD:           t.NetUSD(),
		NetARS:           t.NetARS(),
		TransfersInUSD:   decimal.Zero,
		TransfersInARS:   decimal.Zero,
		TransfersOutUSD:  decimal.Zero,
		TransfersOutARS:  decimal.Zero,
		TransactionCount: t.Count,
	}
}

// ReportFilter narrows a summary.
type ReportFilter struct {
	Range        DateRange
	Kind         ComandaKind
	BusinessUnit string
}

// UnassignedKey groups comandas or lines with no business unit or staff.
const UnassignedKey = "unassigned"
