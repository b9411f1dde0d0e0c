package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	OfferStatusPending  = "pending"
	OfferStatusAccepted = "accepted"
	OfferStatusRejected = "rejected"
)

// Offer is a tenant's proposal for a property.
type Offer struct {
	ID         string `json:"id"`
	PropertyID string `json:"property_id"`
	OwnerID    string `json:"owner_id"`
	TenantID   string `json:"tenant_id"`

	OfferTerms

	Status            string     `json:"status"`
	BookingVerified   bool       `json:"booking_verified"`
	BookingVerifiedAt *time.Time `json:"booking_verified_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         *time.Time `json:"updated_at,omitempty"`
}

// OfferTerms holds the tenant supplied part of an offer.
type OfferTerms struct {
	OfferRent           decimal.Decimal `json:"offer_rent"`
	JoiningDateEstimate string          `json:"joining_date_estimate"`
	DesiredJoiningDate  string          `json:"desired_joining_date,omitempty"`
	OfferAdvance        decimal.Decimal `json:"offer_advance"`
	OfferBookingAmount  decimal.Decimal `json:"offer_booking_amount"`
	Furnished           bool            `json:"furnished"`
	PetsAllowed         bool            `json:"pets_allowed"`
	VegetarianOnly      bool            `json:"vegetarian_only"`
	ParkingRequired     bool            `json:"parking_required"`
	MatchPercent        int             `json:"match_percent"`
	Message             string          `json:"message,omitempty"`
}

// OfferFilter narrows offer listings.
type OfferFilter struct {
	TenantID string
	OwnerID  string
	Status   string
}
