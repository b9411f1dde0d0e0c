package handlers

import (
	"net/http"
	"strconv"

	"rentflow/internal/models"
)

// getParam returns a path or query parameter value regardless of whether
// the router stores it with a leading colon or not.
func getParam(r *http.Request, name string) string {
	if r == nil {
		return ""
	}
	q := r.URL.Query()
	if val := q.Get(":" + name); val != "" {
		return val
	}
	if val := q.Get(name); val != "" {
		return val
	}
	return r.PathValue(name)
}

// transactionFilter reads payment_type, status, owner_verified and offer_id
// from the query string.
func transactionFilter(r *http.Request) (models.TransactionFilter, error) {
	q := r.URL.Query()
	f := models.TransactionFilter{
		PaymentType: q.Get("payment_type"),
		Status:      q.Get("status"),
		OfferID:     q.Get("offer_id"),
	}
	if v := q.Get("owner_verified"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return models.TransactionFilter{}, models.Validationf("owner_verified must be a boolean")
		}
		f.OwnerVerified = &b
	}
	return f, nil
}
