package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	PaymentTypeBooking = "booking"
	PaymentTypeRent    = "rent"

	TransactionStatusCreated  = "created"
	TransactionStatusPaid     = "paid"
	TransactionStatusFailed   = "failed"
	TransactionStatusRefunded = "refunded"

	DefaultCurrency = "INR"
)

// PaymentTransaction records a single booking or rent money movement.
type PaymentTransaction struct {
	ID              string          `json:"id"`
	TransactionID   string          `json:"transaction_id"`
	OfferID         string          `json:"offer_id"`
	PropertyID      string          `json:"property_id"`
	TenantID        string          `json:"tenant_id"`
	OwnerID         string          `json:"owner_id"`
	PaymentType     string          `json:"payment_type"`
	RentMonth       string          `json:"rent_month,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	Status          string          `json:"status"`
	PaidAt          *time.Time      `json:"paid_at,omitempty"`
	OwnerVerified   bool            `json:"owner_verified"`
	OwnerVerifiedAt *time.Time      `json:"owner_verified_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       *time.Time      `json:"updated_at,omitempty"`
}

// TransactionFilter narrows incoming/outgoing transaction listings.
// Nil pointer fields are not applied.
type TransactionFilter struct {
	OwnerID       string
	TenantID      string
	OfferID       string
	PaymentType   string
	Status        string
	OwnerVerified *bool
}
