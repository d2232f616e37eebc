package dto

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/salonledger/internal/domain"
	"github.com/iho/salonledger/internal/usecase"
)

// MoneyResponse is an amount with its currency.
type MoneyResponse struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

// NewMoneyResponse formats m with two decimals.
func NewMoneyResponse(m domain.Money) MoneyResponse {
	return MoneyResponse{
		Amount:   m.Amount.StringFixed(domain.MoneyPlaces),
		Currency: string(m.Currency),
	}
}

// RateResponse is an exchange rate.
type RateResponse struct {
	ID         string    `json:"id"`
	Value      string    `json:"value"`
	Source     string    `json:"source"`
	CapturedBy string    `json:"captured_by"`
	CapturedAt time.Time `json:"captured_at"`
}

// NewRateResponse converts a domain rate.
func NewRateResponse(r *domain.ExchangeRate) RateResponse {
	return RateResponse{
		ID:         r.ID,
		Value:      r.Value.String(),
		Source:     string(r.Source),
		CapturedBy: r.CapturedBy,
		CapturedAt: r.CapturedAt,
	}
}

// NewRateListResponse converts a list of rates, keeping their order.
func NewRateListResponse(rates []*domain.ExchangeRate) []RateResponse {
	result := make([]RateResponse, len(rates))
	for i, r := range rates {
		result[i] = NewRateResponse(r)
	}

	return result
}

// ConversionResponse is the result of converting an amount.
type ConversionResponse struct {
	From MoneyResponse `json:"from"`
	To   MoneyResponse `json:"to"`
	Rate string        `json:"rate"`
}

// LineItemResponse is a priced line.
type LineItemResponse struct {
	ProductID string        `json:"product_id"`
	Name      string        `json:"name,omitempty"`
	StaffID   string        `json:"staff_id,omitempty"`
	UnitPrice MoneyResponse `json:"unit_price"`
	Quantity  int           `json:"quantity"`
	Discount  MoneyResponse `json:"discount"`
	Subtotal  MoneyResponse `json:"subtotal"`
	Frozen    bool          `json:"frozen"`
	// AdvisoryUSD is shown for frozen lines when a rate is set. It never
	// takes part in settlement.
	AdvisoryUSD *MoneyResponse `json:"advisory_usd,omitempty"`
}

// PaymentResponse is a payment with its derived amounts.
type PaymentResponse struct {
	Kind          string        `json:"kind"`
	NativeAmount  MoneyResponse `json:"native_amount"`
	SurchargePct  string        `json:"surcharge_pct"`
	Adjustment    MoneyResponse `json:"adjustment"`
	FinalAmount   MoneyResponse `json:"final_amount"`
	SettledAmount MoneyResponse `json:"settled_amount"`
}

// ComandaResponse is a comanda.
type ComandaResponse struct {
	ID              string             `json:"id"`
	SequenceNumber  int64              `json:"sequence_number"`
	Kind            string             `json:"kind"`
	CashBox         string             `json:"cash_box"`
	BusinessUnit    string             `json:"business_unit,omitempty"`
	CreatedBy       string             `json:"created_by"`
	CancelledBy     string             `json:"cancelled_by,omitempty"`
	Observations    string             `json:"observations,omitempty"`
	ValidationState string             `json:"validation_state"`
	TransferState   string             `json:"transfer_state"`
	TransferID      string             `json:"transfer_id,omitempty"`
	SettlementRate  string             `json:"settlement_rate,omitempty"`
	Items           []LineItemResponse `json:"items"`
	Payments        []PaymentResponse  `json:"payments"`
	Version         int64              `json:"version"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
	ValidatedAt     *time.Time         `json:"validated_at,omitempty"`
	CancelledAt     *time.Time         `json:"cancelled_at,omitempty"`
}

// AdvisoryFunc returns the display-only USD value of a frozen line.
type AdvisoryFunc func(domain.LineItem) (domain.Money, error)

// NewComandaResponse converts a domain comanda. advisory may be nil.
func NewComandaResponse(c *domain.Comanda, advisory AdvisoryFunc) ComandaResponse {
	items := make([]LineItemResponse, len(c.Items))
	for i, item := range c.Items {
		items[i] = LineItemResponse{
			ProductID: item.ProductID,
			Name:      item.NameSnapshot,
			StaffID:   item.StaffID,
			UnitPrice: NewMoneyResponse(item.UnitPrice),
			Quantity:  item.Quantity,
			Discount:  NewMoneyResponse(item.Discount),
			Subtotal:  NewMoneyResponse(item.Subtotal()),
			Frozen:    item.Frozen,
		}

		if item.Frozen && advisory != nil {
			// no rate means no advisory figure
			if usd, err := advisory(item); err == nil {
				m := NewMoneyResponse(usd)
				items[i].AdvisoryUSD = &m
			}
		}
	}

	payments := make([]PaymentResponse, len(c.Payments))
	for i, p := range c.Payments {
		payments[i] = PaymentResponse{
			Kind:          string(p.Kind),
			NativeAmount:  NewMoneyResponse(p.NativeAmount),
			SurchargePct:  p.SurchargePct.String(),
			Adjustment:    NewMoneyResponse(p.Adjustment),
			FinalAmount:   NewMoneyResponse(p.FinalAmount),
			SettledAmount: NewMoneyResponse(p.SettledAmount),
		}
	}

	resp := ComandaResponse{
		ID:              c.ID,
		SequenceNumber:  c.SequenceNumber,
		Kind:            string(c.Kind),
		CashBox:         string(c.CashBox),
		BusinessUnit:    c.BusinessUnit,
		CreatedBy:       c.CreatedBy,
		CancelledBy:     c.CancelledBy,
		Observations:    c.Observations,
		ValidationState: string(c.ValidationState),
		TransferState:   string(c.TransferState),
		TransferID:      c.TransferID,
		Items:           items,
		Payments:        payments,
		Version:         c.Version,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
		ValidatedAt:     c.ValidatedAt,
		CancelledAt:     c.CancelledAt,
	}

	if !c.SettlementRate.IsZero() {
		resp.SettlementRate = c.SettlementRate.String()
	}

	return resp
}

// ComandaListResponse is a list of comandas with their per-currency totals.
type ComandaListResponse struct {
	Comandas []ComandaResponse `json:"comandas"`
	Totals   TotalsResponse    `json:"totals"`
}

// TotalsResponse is the per-currency aggregate of validated comandas.
type TotalsResponse struct {
	IncomeUSD  string `json:"income_usd"`
	IncomeARS  string `json:"income_ars"`
	ExpenseUSD string `json:"expense_usd"`
	ExpenseARS string `json:"expense_ars"`
	NetUSD     string `json:"net_usd"`
	NetARS     string `json:"net_ars"`
	Count      int    `json:"count"`
}

// NewTotalsResponse converts domain totals.
func NewTotalsResponse(t domain.Totals) TotalsResponse {
	return TotalsResponse{
		IncomeUSD:  fixed(t.IncomeUSD),
		IncomeARS:  fixed(t.IncomeARS),
		ExpenseUSD: fixed(t.ExpenseUSD),
		ExpenseARS: fixed(t.ExpenseARS),
		NetUSD:     fixed(t.NetUSD()),
		NetARS:     fixed(t.NetARS()),
		Count:      t.Count,
	}
}

// TransferRecordResponse is a transfer record.
type TransferRecordResponse struct {
	ID                 string     `json:"id"`
	SourceCashBox      string     `json:"source_cash_box"`
	DestinationCashBox string     `json:"destination_cash_box"`
	PerformedBy        string     `json:"performed_by"`
	Observations       string     `json:"observations,omitempty"`
	ComandaIDs         []string   `json:"comanda_ids"`
	TotalUSD           string     `json:"total_usd"`
	TotalARS           string     `json:"total_ars"`
	ResidualUSD        string     `json:"residual_usd"`
	ResidualARS        string     `json:"residual_ars"`
	Partial            bool       `json:"partial"`
	From               *time.Time `json:"from,omitempty"`
	To                 *time.Time `json:"to,omitempty"`
	PerformedAt        time.Time  `json:"performed_at"`
}

// NewTransferRecordResponse converts a domain transfer record.
func NewTransferRecordResponse(r *domain.TransferRecord) TransferRecordResponse {
	resp := TransferRecordResponse{
		ID:                 r.ID,
		SourceCashBox:      string(r.SourceCashBox),
		DestinationCashBox: string(r.DestinationCashBox),
		PerformedBy:        r.PerformedBy,
		Observations:       r.Observations,
		ComandaIDs:         r.ComandaIDs,
		TotalUSD:           fixed(r.TotalUSD),
		TotalARS:           fixed(r.TotalARS),
		ResidualUSD:        fixed(r.ResidualUSD),
		ResidualARS:        fixed(r.ResidualARS),
		Partial:            r.Partial,
		PerformedAt:        r.PerformedAt,
	}

	if !r.Range.From.IsZero() {
		from := r.Range.From
		resp.From = &from
	}

	if !r.Range.To.IsZero() {
		to := r.Range.To
		resp.To = &to
	}

	return resp
}

// NewTransferRecordListResponse converts a list of transfer records.
func NewTransferRecordListResponse(records []*domain.TransferRecord) []TransferRecordResponse {
	result := make([]TransferRecordResponse, len(records))
	for i, r := range records {
		result[i] = NewTransferRecordResponse(r)
	}

	return result
}

// TransferResultResponse is the outcome of a transfer. Record is nil when
// there was nothing to move.
type TransferResultResponse struct {
	Moved  int                     `json:"moved"`
	Record *TransferRecordResponse `json:"record,omitempty"`
}

// NewTransferResultResponse converts a transfer result.
func NewTransferResultResponse(res *usecase.TransferResult) TransferResultResponse {
	resp := TransferResultResponse{Moved: res.Moved}
	if res.Record != nil {
		rec := NewTransferRecordResponse(res.Record)
		resp.Record = &rec
	}

	return resp
}

// SummaryResponse is a reconciliation summary.
type SummaryResponse struct {
	IncomeUSD        string `json:"income_usd"`
	IncomeARS        string `json:"income_ars"`
	ExpenseUSD       string `json:"expense_usd"`
	ExpenseARS       string `json:"expense_ars"`
	NetUSD           string `json:"net_usd"`
	NetARS           string `json:"net_ars"`
	TransfersInUSD   string `json:"transfers_in_usd"`
	TransfersInARS   string `json:"transfers_in_ars"`
	TransfersOutUSD  string `json:"transfers_out_usd"`
	TransfersOutARS  string `json:"transfers_out_ars"`
	TransactionCount int    `json:"transaction_count"`
}

// NewSummaryResponse converts a domain summary.
func NewSummaryResponse(s domain.Summary) SummaryResponse {
	return SummaryResponse{
		IncomeUSD:        fixed(s.IncomeUSD),
		IncomeARS:        fixed(s.IncomeARS),
		ExpenseUSD:       fixed(s.ExpenseUSD),
		ExpenseARS:       fixed(s.ExpenseARS),
		NetUSD:           fixed(s.NetUSD),
		NetARS:           fixed(s.NetARS),
		TransfersInUSD:   fixed(s.TransfersInUSD),
		TransfersInARS:   fixed(s.TransfersInARS),
		TransfersOutUSD:  fixed(s.TransfersOutUSD),
		TransfersOutARS:  fixed(s.TransfersOutARS),
		TransactionCount: s.TransactionCount,
	}
}

// GroupSummaryResponse is the summary of one business unit or staff member.
type GroupSummaryResponse struct {
	Key string `json:"key"`
	SummaryResponse
}

// NewGroupSummaryResponse converts grouped summaries, sorted by key.
func NewGroupSummaryResponse(groups map[string]domain.Summary) []GroupSummaryResponse {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	result := make([]GroupSummaryResponse, len(keys))
	for i, k := range keys {
		result[i] = GroupSummaryResponse{Key: k, SummaryResponse: NewSummaryResponse(groups[k])}
	}

	return result
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

func fixed(d decimal.Decimal) string {
	return d.StringFixed(domain.MoneyPlaces)
}
