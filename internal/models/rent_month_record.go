package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	RentMonthStatusPending = "pending"
	RentMonthStatusPaid    = "paid"
)

// RentMonthRecord is the rent obligation of one calendar month under an
// accepted offer. Keyed by (OfferID, RentMonth).
type RentMonthRecord struct {
	ID                   string          `json:"id"`
	OfferID              string          `json:"offer_id"`
	PropertyID           string          `json:"property_id"`
	TenantID             string          `json:"tenant_id"`
	OwnerID              string          `json:"owner_id"`
	RentMonth            string          `json:"rent_month"`
	DueDate              time.Time       `json:"due_date"`
	Amount               decimal.Decimal `json:"amount"`
	Currency             string          `json:"currency"`
	Status               string          `json:"status"`
	PaidAt               *time.Time      `json:"paid_at,omitempty"`
	PaymentTransactionID string          `json:"payment_transaction_id,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            *time.Time      `json:"updated_at,omitempty"`
}
