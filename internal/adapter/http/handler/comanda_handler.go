package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/salonledger/internal/adapter/http/dto"
)

// ComandaHandler handles comanda requests.
type ComandaHandler struct {
	ledger    ComandaService
	converter Converter
}

// NewComandaHandler creates a new ComandaHandler. converter may be nil, in
// which case frozen lines carry no advisory USD figure.
func NewComandaHandler(ledger ComandaService, converter Converter) *ComandaHandler {
	return &ComandaHandler{ledger: ledger, converter: converter}
}

// Create creates a pending comanda.
func (h *ComandaHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateComandaRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeDomainError(w, "invalid comanda", err)
		return
	}

	c, err := h.ledger.CreateComanda(r.Context(), input)
	if err != nil {
		writeDomainError(w, "failed to create comanda", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.NewComandaResponse(c, h.advisory()))
}

// Get retrieves a comanda by ID.
func (h *ComandaHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing comanda ID", "")
		return
	}

	c, err := h.ledger.GetComanda(r.Context(), id)
	if err != nil {
		writeDomainError(w, "failed to get comanda", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewComandaResponse(c, h.advisory()))
}

// Amend replaces the lines of a pending comanda.
func (h *ComandaHandler) Amend(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing comanda ID", "")
		return
	}

	var req dto.AmendComandaRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	input, err := req.ToUseCaseInput(id)
	if err != nil {
		writeDomainError(w, "invalid comanda", err)
		return
	}

	c, err := h.ledger.AmendComanda(r.Context(), input)
	if err != nil {
		writeDomainError(w, "failed to amend comanda", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewComandaResponse(c, h.advisory()))
}

// Validate settles the payments of a pending comanda and validates it.
func (h *ComandaHandler) Validate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing comanda ID", "")
		return
	}

	c, err := h.ledger.ValidateComanda(r.Context(), id)
	if err != nil {
		writeDomainError(w, "failed to validate comanda", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewComandaResponse(c, h.advisory()))
}

// Cancel cancels a comanda that has not been transferred.
func (h *ComandaHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing comanda ID", "")
		return
	}

	var req dto.CancelComandaRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	c, err := h.ledger.CancelComanda(r.Context(), id, req.CancelledBy)
	if err != nil {
		writeDomainError(w, "failed to cancel comanda", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewComandaResponse(c, h.advisory()))
}

func (h *ComandaHandler) advisory() dto.AdvisoryFunc {
	if h.converter == nil {
		return nil
	}

	return h.converter.AdvisoryUSD
}
