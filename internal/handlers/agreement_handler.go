package handlers

import (
	"net/http"

	"rentflow/internal/models"
)

type AgreementHandler struct {
	Service AgreementService
	Logger  Logger
}

type createAgreementRequest struct {
	OfferID              string `json:"offer_id"`
	PaymentTransactionID string `json:"payment_transaction_id"`
	models.AgreementSnapshots
}

func (h *AgreementHandler) CreateAgreement(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	var req createAgreementRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	if trimmed(req.OfferID) == "" {
		writeError(w, http.StatusBadRequest, "offer_id is required")
		return
	}
	ctx, cancel := contextWithTimeout(r)
	defer cancel()

	a, err := h.Service.CreateAgreement(ctx, userID, trimmed(req.OfferID), req.AgreementSnapshots, req.PaymentTransactionID)
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (h *AgreementHandler) ListIncoming(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	ctx, cancel := contextWithTimeout(r)
	defer cancel()

	list, err := h.Service.ListIncoming(ctx, userID)
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *AgreementHandler) ListSent(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	ctx, cancel := contextWithTimeout(r)
	defer cancel()

	list, err := h.Service.ListSent(ctx, userID)
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *AgreementHandler) GetAgreement(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	ctx, cancel := contextWithTimeout(r)
	defer cancel()

	a, err := h.Service.GetAgreement(ctx, getParam(r, "id"), userID)
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *AgreementHandler) Respond(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	var req struct {
		Decision string `json:"decision"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	ctx, cancel := contextWithTimeout(r)
	defer cancel()

	a, err := h.Service.Respond(ctx, getParam(r, "id"), userID, trimmed(req.Decision))
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}
