package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	AgreementStatusDraft    = "draft"
	AgreementStatusSent     = "sent"
	AgreementStatusAccepted = "accepted"
	AgreementStatusRejected = "rejected"

	// AgreementSnapshotVersion is bumped whenever a snapshot struct changes shape.
	AgreementSnapshotVersion = 1
)

// Agreement is a point-in-time contract snapshot of an offer. Snapshot
// fields never change after creation; only Status moves on tenant response.
type Agreement struct {
	ID              string           `json:"id"`
	OfferID         string           `json:"offer_id"`
	PropertyID      string           `json:"property_id"`
	TenantID        string           `json:"tenant_id"`
	OwnerID         string           `json:"owner_id"`
	SnapshotVersion int              `json:"snapshot_version"`
	Property        PropertySnapshot `json:"property"`
	Owner           PartySnapshot    `json:"owner"`
	Tenant          PartySnapshot    `json:"tenant"`
	Booking         *BookingSnapshot `json:"booking,omitempty"`
	Rent            RentTerms        `json:"rent"`
	Charges         Charges          `json:"charges"`
	Status          string           `json:"status"`
	RespondedAt     *time.Time       `json:"responded_at,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
}

type PropertySnapshot struct {
	Title        string `json:"title"`
	Address      string `json:"address,omitempty"`
	City         string `json:"city,omitempty"`
	PropertyType string `json:"property_type,omitempty"`
}

func (p PropertySnapshot) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return Validationf("property title is required")
	}
	return nil
}

type PartySnapshot struct {
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

func (p PartySnapshot) Validate(role string) error {
	if strings.TrimSpace(p.Name) == "" {
		return Validationf("%s name is required", role)
	}
	if p.Email != "" && !strings.Contains(p.Email, "@") {
		return Validationf("%s email is malformed", role)
	}
	return nil
}

// BookingSnapshot copies the booking payment referenced at creation time.
type BookingSnapshot struct {
	PaymentTransactionID string          `json:"payment_transaction_id"`
	TransactionID        string          `json:"transaction_id"`
	Amount               decimal.Decimal `json:"amount"`
	Currency             string          `json:"currency"`
	Status               string          `json:"status"`
	PaidAt               *time.Time      `json:"paid_at,omitempty"`
	OwnerVerified        bool            `json:"owner_verified"`
}

type RentTerms struct {
	MonthlyRent      decimal.Decimal `json:"monthly_rent"`
	Advance          decimal.Decimal `json:"advance"`
	BookingAmount    decimal.Decimal `json:"booking_amount"`
	JoiningDate      string          `json:"joining_date,omitempty"`
	DueDay           int             `json:"due_day,omitempty"`
	LockInMonths     int             `json:"lock_in_months,omitempty"`
	NoticePeriodDays int             `json:"notice_period_days,omitempty"`
}

func (r RentTerms) Validate() error {
	if !r.MonthlyRent.IsPositive() {
		return Validationf("monthly rent must be positive")
	}
	if r.Advance.IsNegative() || r.BookingAmount.IsNegative() {
		return Validationf("advance and booking amount must not be negative")
	}
	if r.DueDay < 0 || r.DueDay > 31 {
		return Validationf("due day must be between 1 and 31")
	}
	if r.LockInMonths < 0 || r.NoticePeriodDays < 0 {
		return Validationf("lock-in and notice period must not be negative")
	}
	return nil
}

type Charges struct {
	Maintenance decimal.Decimal `json:"maintenance"`
	Electricity decimal.Decimal `json:"electricity"`
	Water       decimal.Decimal `json:"water"`
	Other       decimal.Decimal `json:"other"`
	Notes       string          `json:"notes,omitempty"`
}

func (c Charges) Validate() error {
	for _, v := range []decimal.Decimal{c.Maintenance, c.Electricity, c.Water, c.Other} {
		if v.IsNegative() {
			return Validationf("charges must not be negative")
		}
	}
	return nil
}

// AgreementSnapshots is the caller supplied part of an agreement.
type AgreementSnapshots struct {
	Property PropertySnapshot `json:"property"`
	Owner    PartySnapshot    `json:"owner"`
	Tenant   PartySnapshot    `json:"tenant"`
	Rent     RentTerms        `json:"rent"`
	Charges  Charges          `json:"charges"`
}

// Validate checks every snapshot at the boundary.
func (s AgreementSnapshots) Validate() error {
	if err := s.Property.Validate(); err != nil {
		return err
	}
	if err := s.Owner.Validate("owner"); err != nil {
		return err
	}
	if err := s.Tenant.Validate("tenant"); err != nil {
		return err
	}
	if err := s.Rent.Validate(); err != nil {
		return err
	}
	return s.Charges.Validate()
}
