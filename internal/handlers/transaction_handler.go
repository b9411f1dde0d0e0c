package handlers

import (
	"net/http"
)

type TransactionHandler struct {
	Service TransactionService
	Logger  Logger
}

func (h *TransactionHandler) ListIncoming(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	f, err := transactionFilter(r)
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	ctx, cancel := contextWithTimeout(r)
	defer cancel()

	txs, err := h.Service.ListIncoming(ctx, userID, f)
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, txs)
}

func (h *TransactionHandler) ListOutgoing(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	f, err := transactionFilter(r)
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	ctx, cancel := contextWithTimeout(r)
	defer cancel()

	txs, err := h.Service.ListOutgoing(ctx, userID, f)
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, txs)
}

func (h *TransactionHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	ctx, cancel := contextWithTimeout(r)
	defer cancel()

	tx, err := h.Service.GetTransaction(ctx, getParam(r, "id"), userID)
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (h *TransactionHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	ctx, cancel := contextWithTimeout(r)
	defer cancel()

	tx, err := h.Service.MarkPaid(ctx, getParam(r, "id"), userID)
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

// Verify returns the verified transaction together with the cascade steps.
func (h *TransactionHandler) Verify(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	ctx, cancel := contextWithTimeout(r)
	defer cancel()

	res, err := h.Service.Verify(ctx, getParam(r, "id"), userID)
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
