package usecase

import (
	"context"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/iho/salonledger/internal/domain"
)

// ReconciliationUseCase produces read-only, currency-correct summaries of
// a cash box.
type ReconciliationUseCase struct {
	comandaRepo  ComandaRepository
	transferRepo TransferRecordRepository
}

// NewReconciliationUseCase creates a new ReconciliationUseCase.
func NewReconciliationUseCase(
	comandaRepo ComandaRepository,
	transferRepo TransferRecordRepository,
) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		comandaRepo:  comandaRepo,
		transferRepo: transferRepo,
	}
}

// Summary aggregates the validated comandas of box matching filter, plus
// the transfers that left or reached box during filter.Range.
func (uc *ReconciliationUseCase) Summary(ctx context.Context, box domain.CashBox, filter domain.ReportFilter) (*domain.Summary, error) {
	comandas, err := uc.load(ctx, box, filter)
	if err != nil {
		return nil, err
	}

	summary := domain.SummaryFromTotals(TotalsByCurrency(comandas))

	records, err := uc.transferRepo.ListInRange(ctx, box, filter.Range)
	if err != nil {
		return nil, err
	}

	for _, r := range records {
		if r.SourceCashBox == box {
			summary.TransfersOutUSD = summary.TransfersOutUSD.Add(r.TotalUSD)
			summary.TransfersOutARS = summary.TransfersOutARS.Add(r.TotalARS)
		}

		if r.DestinationCashBox == box {
			summary.TransfersInUSD = summary.TransfersInUSD.Add(r.TotalUSD)
			summary.TransfersInARS = summary.TransfersInARS.Add(r.TotalARS)
		}
	}

	return &summary, nil
}

// ByBusinessUnit groups the summary of box by business unit.
func (uc *ReconciliationUseCase) ByBusinessUnit(ctx context.Context, box domain.CashBox, filter domain.ReportFilter) (map[string]domain.Summary, error) {
	comandas, err := uc.load(ctx, box, filter)
	if err != nil {
		return nil, err
	}

	return GroupByBusinessUnit(comandas), nil
}

// ByStaff groups the summary of box by the staff member on each line.
func (uc *ReconciliationUseCase) ByStaff(ctx context.Context, box domain.CashBox, filter domain.ReportFilter) (map[string]domain.Summary, error) {
	comandas, err := uc.load(ctx, box, filter)
	if err != nil {
		return nil, err
	}

	return GroupByStaff(comandas), nil
}

func (uc *ReconciliationUseCase) load(ctx context.Context, box domain.CashBox, filter domain.ReportFilter) ([]*domain.Comanda, error) {
	if !box.IsValid() {
		return nil, domain.ErrInvalidCashBox
	}

	if err := filter.Range.Validate(); err != nil {
		return nil, err
	}

	if filter.Kind != "" && !filter.Kind.IsValid() {
		return nil, domain.ErrInvalidKind
	}

	return uc.comandaRepo.List(ctx, domain.ComandaFilter{
		CashBox:         box,
		Range:           filter.Range,
		Kind:            filter.Kind,
		ValidationState: domain.ValidationValidated,
		BusinessUnit:    filter.BusinessUnit,
	})
}

// GroupByBusinessUnit summarizes comandas per business unit. Comandas with
// no unit are grouped under domain.UnassignedKey.
func GroupByBusinessUnit(comandas []*domain.Comanda) map[string]domain.Summary {
	groups := make(map[string][]*domain.Comanda)

	for _, c := range comandas {
		key := c.BusinessUnit
		if key == "" {
			key = domain.UnassignedKey
		}

		groups[key] = append(groups[key], c)
	}

	out := make(map[string]domain.Summary, len(groups))
	for key, group := range groups {
		out[key] = domain.SummaryFromTotals(TotalsByCurrency(group))
	}

	return out
}

// GroupByStaff summarizes comandas per staff member. The settled amounts
// of a comanda are split across its staff in proportion to the settled
// value of their lines; rounding leftovers go to the last staff key.
func GroupByStaff(comandas []*domain.Comanda) map[string]domain.Summary {
	totals := make(map[string]*domain.Totals)

	for _, c := range comandas {
		if c.ValidationState == domain.ValidationCancelled {
			continue
		}

		native := c.HasFrozenItems()
		keys := staffKeys(c)

		for _, key := range keys {
			if totals[key] == nil {
				t := domain.NewTotals()
				totals[key] = &t
			}

			totals[key].Count++
		}

		for _, cur := range []domain.Currency{domain.USD, domain.ARS} {
			amount := settledIn(c, cur)
			if amount.IsZero() {
				continue
			}

			for key, share := range apportion(amount, staffWeights(c, cur, native), keys) {
				totals[key].Add(c.Kind, domain.NewMoney(share, cur))
			}
		}
	}

	out := make(map[string]domain.Summary, len(totals))
	for key, t := range totals {
		out[key] = domain.SummaryFromTotals(*t)
	}

	return out
}

func staffKey(item domain.LineItem) string {
	if item.StaffID == "" {
		return domain.UnassignedKey
	}

	return item.StaffID
}

func staffKeys(c *domain.Comanda) []string {
	keys := make([]string, 0, len(c.Items))
	for _, item := range c.Items {
		keys = append(keys, staffKey(item))
	}

	slices.Sort(keys)

	return slices.Compact(keys)
}

func settledIn(c *domain.Comanda, cur domain.Currency) decimal.Decimal {
	sum := decimal.Zero
	for _, p := range c.Payments {
		if p.SettledAmount.Currency == cur {
			sum = sum.Add(p.SettledAmount.Amount)
		}
	}

	return sum
}

// staffWeights is the value each staff member's lines contribute to cur.
// Canonical comandas settle everything in USD, so ARS lines are scaled by
// the rate recorded at validation.
func staffWeights(c *domain.Comanda, cur domain.Currency, native bool) map[string]decimal.Decimal {
	weights := make(map[string]decimal.Decimal)

	for _, item := range c.Items {
		sub := item.Subtotal()
		value := sub.Amount

		switch {
		case native && sub.Currency != cur:
			continue
		case !native && sub.Currency == domain.ARS && c.SettlementRate.IsPositive():
			value = value.Div(c.SettlementRate)
		}

		key := staffKey(item)
		weights[key] = weights[key].Add(value)
	}

	return weights
}

// apportion splits amount over keys by weight, rounding each share to
// money places. Keys without weight get nothing unless every weight is
// zero, in which case the split is even.
func apportion(amount decimal.Decimal, weights map[string]decimal.Decimal, keys []string) map[string]decimal.Decimal {
	total := decimal.Zero
	for _, w := range weights {
		total = total.Add(w)
	}

	shares := make(map[string]decimal.Decimal, len(keys))
	if len(keys) == 0 {
		return shares
	}

	even := !total.IsPositive()
	evenShare := decimal.Zero
	if even {
		evenShare = domain.RoundMoney(amount.Div(decimal.NewFromInt(int64(len(keys)))))
	}

	allocated := decimal.Zero
	last := len(keys) - 1

	for i, key := range keys {
		if i == last {
			shares[key] = amount.Sub(allocated)
			break
		}

		share := evenShare
		if !even {
			share = domain.RoundMoney(amount.Mul(weights[key]).Div(total))
		}

		shares[key] = share
		allocated = allocated.Add(share)
	}

	return shares
}
