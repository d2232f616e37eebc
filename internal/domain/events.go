package domain

import "time"

// Event types
const (
	EventTypeComandaValidated  = "comanda.validated"
	EventTypeComandaCancelled  = "comanda.cancelled"
	EventTypeTransferPerformed = "transfer.performed"
	EventTypeRateChanged       = "rate.changed"
)

// Aggregate types
const (
	AggregateTypeComanda  = "comanda"
	AggregateTypeTransfer = "transfer"
	AggregateTypeRate     = "rate"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// NewComandaEvent builds the outbox payload for a comanda lifecycle change.
func NewComandaEvent(id, eventType string, c *Comanda, at time.Time) *OutboxEvent {
	return &OutboxEvent{
		ID:            id,
		AggregateID:   c.ID,
		AggregateType: AggregateTypeComanda,
		EventType:     eventType,
		Payload: map[string]any{
			"comanda_id":       c.ID,
			"cash_box":         string(c.CashBox),
			"kind":             string(c.Kind),
			"sequence_number":  c.SequenceNumber,
			"validation_state": string(c.ValidationState),
		},
		CreatedAt: at,
	}
}

// NewTransferEvent builds the outbox payload for a performed transfer.
func NewTransferEvent(id string, r *TransferRecord) *OutboxEvent {
	return &OutboxEvent{
		ID:            id,
		AggregateID:   r.ID,
		AggregateType: AggregateTypeTransfer,
		EventType:     EventTypeTransferPerformed,
		Payload: map[string]any{
			"transfer_id":  r.ID,
			"source":       string(r.SourceCashBox),
			"destination":  string(r.DestinationCashBox),
			"total_usd":    r.TotalUSD.String(),
			"total_ars":    r.TotalARS.String(),
			"residual_usd": r.ResidualUSD.String(),
			"residual_ars": r.ResidualARS.String(),
			"partial":      r.Partial,
			"comandas":     len(r.ComandaIDs),
		},
		CreatedAt: r.PerformedAt,
	}
}

// NewRateEvent builds the outbox payload for a new operational rate.
func NewRateEvent(id string, r *ExchangeRate) *OutboxEvent {
	return &OutboxEvent{
		ID:            id,
		AggregateID:   r.ID,
		AggregateType: AggregateTypeRate,
		EventType:     EventTypeRateChanged,
		Payload: map[string]any{
			"rate_id": r.ID,
			"value":   r.Value.String(),
			"source":  string(r.Source),
		},
		CreatedAt: r.CapturedAt,
	}
}
