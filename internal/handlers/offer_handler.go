package handlers

import (
	"net/http"

	"rentflow/internal/models"
	"rentflow/internal/services"
)

type OfferHandler struct {
	Service    OfferService
	Ledger     TransactionService
	RentMonths RentMonthService
	Logger     Logger
}

type createOfferRequest struct {
	PropertyID string `json:"property_id"`
	models.OfferTerms
}

func (h *OfferHandler) CreateOffer(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	var req createOfferRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	ctx, cancel := contextWithTimeout(r)
	defer cancel()

	offer, err := h.Service.CreateOffer(ctx, userID, trimmed(req.PropertyID), req.OfferTerms)
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, offer)
}

func (h *OfferHandler) ListSent(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, services.RoleTenant)
}

func (h *OfferHandler) ListReceived(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, services.RoleOwner)
}

func (h *OfferHandler) list(w http.ResponseWriter, r *http.Request, role string) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	ctx, cancel := contextWithTimeout(r)
	defer cancel()

	offers, err := h.Service.ListOffers(ctx, userID, role, r.URL.Query().Get("status"))
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, offers)
}

func (h *OfferHandler) GetOffer(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	ctx, cancel := contextWithTimeout(r)
	defer cancel()

	offer, err := h.Service.GetOffer(ctx, getParam(r, "id"), userID)
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, offer)
}

func (h *OfferHandler) Decide(w http.ResponseWriter, r *http.Request) {
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

	offer, err := h.Service.Decide(ctx, getParam(r, "id"), userID, trimmed(req.Decision))
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, offer)
}

type transactionResponse struct {
	Transaction models.PaymentTransaction `json:"transaction"`
	Reused      bool                      `json:"reused"`
}

// CreateBookingTransaction answers 201 for a new transaction and 200 when
// an existing one is returned.
func (h *OfferHandler) CreateBookingTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	ctx, cancel := contextWithTimeout(r)
	defer cancel()

	tx, reused, err := h.Ledger.CreateBookingTransaction(ctx, userID, getParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	writeJSON(w, createdOrOK(reused), transactionResponse{Transaction: tx, Reused: reused})
}

func (h *OfferHandler) CreateRentTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	var req struct {
		RentMonth string `json:"rent_month"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	ctx, cancel := contextWithTimeout(r)
	defer cancel()

	tx, reused, err := h.Ledger.CreateRentTransaction(ctx, userID, getParam(r, "id"), trimmed(req.RentMonth))
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	writeJSON(w, createdOrOK(reused), transactionResponse{Transaction: tx, Reused: reused})
}

func (h *OfferHandler) ListRentMonths(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	ctx, cancel := contextWithTimeout(r)
	defer cancel()

	records, err := h.RentMonths.ListRentMonths(ctx, getParam(r, "id"), userID)
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func createdOrOK(reused bool) int {
	if reused {
		return http.StatusOK
	}
	return http.StatusCreated
}
