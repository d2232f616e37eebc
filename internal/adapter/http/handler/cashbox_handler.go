package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/salonledger/internal/adapter/http/dto"
	"github.com/iho/salonledger/internal/domain"
	"github.com/iho/salonledger/internal/usecase"
)

const defaultTransferLimit = 20

// CashBoxHandler handles listing, transfer and reconciliation requests
// scoped to one cash box.
type CashBoxHandler struct {
	ledger    ComandaService
	transfers TransferService
	reports   ReportService
}

// NewCashBoxHandler creates a new CashBoxHandler.
func NewCashBoxHandler(ledger ComandaService, transfers TransferService, reports ReportService) *CashBoxHandler {
	return &CashBoxHandler{ledger: ledger, transfers: transfers, reports: reports}
}

// ListComandas lists the comandas of a cash box with their totals.
// Accepts from, to, kind, state and business_unit.
func (h *CashBoxHandler) ListComandas(w http.ResponseWriter, r *http.Request) {
	box, ok := cashBoxParam(w, r)
	if !ok {
		return
	}

	rng, err := parseDateRange(r)
	if err != nil {
		writeDomainError(w, "invalid date range", err)
		return
	}

	q := r.URL.Query()
	filter := domain.ComandaFilter{
		CashBox:         box,
		Range:           rng,
		Kind:            domain.ComandaKind(q.Get("kind")),
		ValidationState: domain.ValidationState(q.Get("state")),
		BusinessUnit:    q.Get("business_unit"),
	}

	if filter.Kind != "" && !filter.Kind.IsValid() {
		writeDomainError(w, "invalid filter", domain.ErrInvalidKind)
		return
	}

	if filter.ValidationState != "" && !filter.ValidationState.IsValid() {
		writeError(w, http.StatusBadRequest, "invalid filter", "unknown state "+string(filter.ValidationState))
		return
	}

	comandas, err := h.ledger.ListComandas(r.Context(), filter)
	if err != nil {
		writeDomainError(w, "failed to list comandas", err)
		return
	}

	writeJSON(w, http.StatusOK, comandaList(comandas))
}

// Candidates lists the comandas a transfer of [from, to] would move.
func (h *CashBoxHandler) Candidates(w http.ResponseWriter, r *http.Request) {
	box, ok := cashBoxParam(w, r)
	if !ok {
		return
	}

	rng, err := parseDateRange(r)
	if err != nil {
		writeDomainError(w, "invalid date range", err)
		return
	}

	comandas, err := h.transfers.Candidates(r.Context(), box, rng)
	if err != nil {
		writeDomainError(w, "failed to list candidates", err)
		return
	}

	writeJSON(w, http.StatusOK, comandaList(comandas))
}

// Transfer moves validated comandas of the cash box into main cash.
func (h *CashBoxHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	box, ok := cashBoxParam(w, r)
	if !ok {
		return
	}

	var req dto.TransferRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	var (
		result *usecase.TransferResult
		err    error
	)

	if req.Partial {
		input, perr := req.ToPartialInput(box)
		if perr != nil {
			writeDomainError(w, "invalid transfer", perr)
			return
		}

		result, err = h.transfers.TransferPartial(r.Context(), input)
	} else {
		input, perr := req.ToUseCaseInput(box)
		if perr != nil {
			writeDomainError(w, "invalid transfer", perr)
			return
		}

		result, err = h.transfers.TransferFull(r.Context(), input)
	}

	if err != nil {
		writeDomainError(w, "transfer failed", err)
		return
	}

	status := http.StatusCreated
	if result.Record == nil {
		status = http.StatusOK
	}

	writeJSON(w, status, dto.NewTransferResultResponse(result))
}

// ListTransfers lists the transfer records touching the cash box.
func (h *CashBoxHandler) ListTransfers(w http.ResponseWriter, r *http.Request) {
	box, ok := cashBoxParam(w, r)
	if !ok {
		return
	}

	records, err := h.transfers.History(r.Context(), usecase.ListTransfersInput{
		CashBox: box,
		Limit:   parseIntQuery(r, "limit", defaultTransferLimit),
		Offset:  parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeDomainError(w, "failed to list transfers", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewTransferRecordListResponse(records))
}

// GetTransfer retrieves a transfer record by ID.
func (h *CashBoxHandler) GetTransfer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transfer ID", "")
		return
	}

	record, err := h.transfers.GetTransfer(r.Context(), id)
	if err != nil {
		writeDomainError(w, "failed to get transfer", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewTransferRecordResponse(record))
}

// Summary returns the reconciliation summary of the cash box.
func (h *CashBoxHandler) Summary(w http.ResponseWriter, r *http.Request) {
	box, ok := cashBoxParam(w, r)
	if !ok {
		return
	}

	filter, err := parseReportFilter(r)
	if err != nil {
		writeDomainError(w, "invalid filter", err)
		return
	}

	summary, err := h.reports.Summary(r.Context(), box, filter)
	if err != nil {
		writeDomainError(w, "failed to build summary", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewSummaryResponse(*summary))
}

// ByBusinessUnit returns one summary per business unit.
func (h *CashBoxHandler) ByBusinessUnit(w http.ResponseWriter, r *http.Request) {
	box, ok := cashBoxParam(w, r)
	if !ok {
		return
	}

	filter, err := parseReportFilter(r)
	if err != nil {
		writeDomainError(w, "invalid filter", err)
		return
	}

	groups, err := h.reports.ByBusinessUnit(r.Context(), box, filter)
	if err != nil {
		writeDomainError(w, "failed to build summary", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewGroupSummaryResponse(groups))
}

// ByStaff returns one summary per staff member.
func (h *CashBoxHandler) ByStaff(w http.ResponseWriter, r *http.Request) {
	box, ok := cashBoxParam(w, r)
	if !ok {
		return
	}

	filter, err := parseReportFilter(r)
	if err != nil {
		writeDomainError(w, "invalid filter", err)
		return
	}

	groups, err := h.reports.ByStaff(r.Context(), box, filter)
	if err != nil {
		writeDomainError(w, "failed to build summary", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewGroupSummaryResponse(groups))
}

func cashBoxParam(w http.ResponseWriter, r *http.Request) (domain.CashBox, bool) {
	box := domain.CashBox(chi.URLParam(r, "box"))
	if !box.IsValid() {
		writeDomainError(w, "unknown cash box", domain.ErrInvalidCashBox)
		return "", false
	}

	return box, true
}

func comandaList(comandas []*domain.Comanda) dto.ComandaListResponse {
	items := make([]dto.ComandaResponse, len(comandas))
	for i, c := range comandas {
		items[i] = dto.NewComandaResponse(c, nil)
	}

	return dto.ComandaListResponse{
		Comandas: items,
		Totals:   dto.NewTotalsResponse(usecase.TotalsByCurrency(comandas)),
	}
}
