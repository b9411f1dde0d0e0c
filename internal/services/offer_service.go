package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"rentflow/internal/fsm"
	"rentflow/internal/models"
	"rentflow/internal/timeutil"
)

const (
	RoleTenant = "tenant"
	RoleOwner  = "owner"
)

type OfferService struct {
	Offers     OfferStore
	Properties PropertyLookup
	Clock      timeutil.Clock
	Logger     Logger
}

// CreateOffer records a pending offer from tenantID on propertyID. The
// owner is resolved from the property.
func (s *OfferService) CreateOffer(ctx context.Context, tenantID, propertyID string, terms models.OfferTerms) (models.Offer, error) {
	if strings.TrimSpace(tenantID) == "" || strings.TrimSpace(propertyID) == "" {
		return models.Offer{}, models.Validationf("tenant and property are required")
	}
	if err := validateTerms(terms, s.Clock); err != nil {
		return models.Offer{}, err
	}

	property, err := s.Properties.GetByID(ctx, propertyID)
	if err != nil {
		return models.Offer{}, err
	}

	offer := models.Offer{
		ID:         newID(),
		PropertyID: property.ID,
		OwnerID:    property.OwnerID,
		TenantID:   tenantID,
		OfferTerms: terms,
		Status:     models.OfferStatusPending,
		CreatedAt:  s.Clock.Now(),
	}
	offer.JoiningDateEstimate = strings.TrimSpace(offer.JoiningDateEstimate)
	if err := s.Offers.Create(ctx, offer); err != nil {
		return models.Offer{}, fmt.Errorf("create offer: %w", err)
	}
	s.Logger.Infof("offer %s created by tenant %s on property %s", offer.ID, tenantID, propertyID)
	return offer, nil
}

func validateTerms(t models.OfferTerms, clock timeutil.Clock) error {
	if !t.OfferRent.IsPositive() {
		return models.Validationf("offer rent must be positive")
	}
	if strings.TrimSpace(t.JoiningDateEstimate) == "" {
		return models.Validationf("joining date estimate is required")
	}
	if t.OfferAdvance.IsNegative() || t.OfferBookingAmount.IsNegative() {
		return models.Validationf("advance and booking amount must not be negative")
	}
	if t.MatchPercent < 0 || t.MatchPercent > 100 {
		return models.Validationf("match percent must be between 0 and 100")
	}
	if strings.TrimSpace(t.DesiredJoiningDate) != "" {
		if _, err := timeutil.JoiningDueDay(t.DesiredJoiningDate, clock.Location()); err != nil {
			return models.Validationf("desired joining date: %v", err)
		}
	}
	return nil
}

// Decide applies the owner's decision. Repeating the current decision is a
// no-op; switching a decided offer is rejected.
func (s *OfferService) Decide(ctx context.Context, offerID, ownerID, decision string) (models.Offer, error) {
	if decision != models.OfferStatusAccepted && decision != models.OfferStatusRejected {
		return models.Offer{}, models.Validationf("decision must be %s or %s", models.OfferStatusAccepted, models.OfferStatusRejected)
	}
	offer, err := s.Offers.GetByID(ctx, offerID)
	if err != nil {
		return models.Offer{}, err
	}
	if offer.OwnerID != ownerID {
		return models.Offer{}, models.Forbiddenf("only the property owner can decide on offer %s", offerID)
	}
	if offer.Status == decision {
		return offer, nil
	}
	if !fsm.Offer.CanTransition(offer.Status, decision) {
		return models.Offer{}, models.Validationf("offer is already %s", offer.Status)
	}

	now := s.Clock.Now()
	ok, err := s.Offers.UpdateStatus(ctx, offerID, offer.Status, decision, now)
	if err != nil {
		return models.Offer{}, fmt.Errorf("update offer status: %w", err)
	}
	if !ok {
		current, err := s.Offers.GetByID(ctx, offerID)
		if err != nil {
			return models.Offer{}, err
		}
		if current.Status == decision {
			return current, nil
		}
		return models.Offer{}, fmt.Errorf("%w: offer %s was decided concurrently", models.ErrConflict, offerID)
	}
	offer.Status = decision
	offer.UpdatedAt = &now
	s.Logger.Infof("offer %s %s by owner %s", offerID, decision, ownerID)
	return offer, nil
}

// GetOffer returns the offer to its tenant or owner.
func (s *OfferService) GetOffer(ctx context.Context, offerID, callerID string) (models.Offer, error) {
	offer, err := s.Offers.GetByID(ctx, offerID)
	if err != nil {
		return models.Offer{}, err
	}
	if callerID != offer.TenantID && callerID != offer.OwnerID {
		return models.Offer{}, models.Forbiddenf("offer %s is not visible to caller", offerID)
	}
	return offer, nil
}

// ListOffers lists offers the caller sent (tenant) or received (owner).
func (s *OfferService) ListOffers(ctx context.Context, callerID, role, status string) ([]models.Offer, error) {
	if status != "" && !fsm.Offer.Known(status) {
		return nil, models.Validationf("unknown offer status %q", status)
	}
	f := models.OfferFilter{Status: status}
	switch role {
	case RoleTenant:
		f.TenantID = callerID
	case RoleOwner:
		f.OwnerID = callerID
	default:
		return nil, models.Validationf("unknown role %q", role)
	}
	offers, err := s.Offers.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list offers: %w", err)
	}
	if offers == nil {
		offers = []models.Offer{}
	}
	return offers, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, models.ErrNotFound)
}
