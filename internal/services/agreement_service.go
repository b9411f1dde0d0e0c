package services

import (
	"context"
	"fmt"
	"strings"

	"rentflow/internal/fsm"
	"rentflow/internal/models"
	"rentflow/internal/timeutil"
)

type AgreementService struct {
	Offers       OfferStore
	Transactions TransactionStore
	Agreements   AgreementStore
	Archive      Archiver // optional
	Clock        timeutil.Clock
	Logger       Logger
}

// CreateAgreement composes and sends an agreement for the owner's offer.
// When paymentTransactionID is set the booking snapshot is copied from it.
func (s *AgreementService) CreateAgreement(ctx context.Context, ownerID, offerID string, snaps models.AgreementSnapshots, paymentTransactionID string) (models.Agreement, error) {
	offer, err := s.Offers.GetByID(ctx, offerID)
	if err != nil {
		return models.Agreement{}, err
	}
	if offer.OwnerID != ownerID {
		return models.Agreement{}, models.Forbiddenf("only the owner can send an agreement for offer %s", offerID)
	}

	if snaps.Rent.MonthlyRent.IsZero() {
		snaps.Rent.MonthlyRent = offer.OfferRent
	}
	if snaps.Rent.JoiningDate == "" {
		snaps.Rent.JoiningDate = offer.DesiredJoiningDate
	}
	if err := snaps.Validate(); err != nil {
		return models.Agreement{}, err
	}

	a := models.Agreement{
		ID:              newID(),
		OfferID:         offer.ID,
		PropertyID:      offer.PropertyID,
		TenantID:        offer.TenantID,
		OwnerID:         offer.OwnerID,
		SnapshotVersion: models.AgreementSnapshotVersion,
		Property:        snaps.Property,
		Owner:           snaps.Owner,
		Tenant:          snaps.Tenant,
		Rent:            snaps.Rent,
		Charges:         snaps.Charges,
		Status:          models.AgreementStatusSent,
		CreatedAt:       s.Clock.Now(),
	}

	if id := strings.TrimSpace(paymentTransactionID); id != "" {
		tx, err := s.Transactions.GetByID(ctx, id)
		if err != nil {
			return models.Agreement{}, err
		}
		if tx.OwnerID != ownerID {
			return models.Agreement{}, models.Forbiddenf("transaction %s belongs to another owner", id)
		}
		if tx.OfferID != offer.ID {
			return models.Agreement{}, models.Validationf("transaction %s belongs to another offer", id)
		}
		a.Booking = &models.BookingSnapshot{
			PaymentTransactionID: tx.ID,
			TransactionID:        tx.TransactionID,
			Amount:               tx.Amount,
			Currency:             tx.Currency,
			Status:               tx.Status,
			PaidAt:               tx.PaidAt,
			OwnerVerified:        tx.OwnerVerified,
		}
	}

	if err := s.Agreements.Create(ctx, a); err != nil {
		return models.Agreement{}, fmt.Errorf("create agreement: %w", err)
	}
	s.Logger.Infof("agreement %s sent for offer %s", a.ID, offer.ID)

	if s.Archive != nil {
		if err := s.Archive.Archive(ctx, a); err != nil {
			s.Logger.Errorf("archive agreement %s: %v", a.ID, err)
		}
	}
	return a, nil
}

// ListIncoming lists agreements addressed to tenantID, newest first.
func (s *AgreementService) ListIncoming(ctx context.Context, tenantID string) ([]models.Agreement, error) {
	list, err := s.Agreements.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list incoming agreements: %w", err)
	}
	return nonNilAgreements(list), nil
}

// ListSent lists agreements sent by ownerID, newest first.
func (s *AgreementService) ListSent(ctx context.Context, ownerID string) ([]models.Agreement, error) {
	list, err := s.Agreements.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list sent agreements: %w", err)
	}
	return nonNilAgreements(list), nil
}

func (s *AgreementService) GetAgreement(ctx context.Context, id, callerID string) (models.Agreement, error) {
	a, err := s.Agreements.GetByID(ctx, id)
	if err != nil {
		return models.Agreement{}, err
	}
	if callerID != a.TenantID && callerID != a.OwnerID {
		return models.Agreement{}, models.Forbiddenf("agreement %s is not visible to caller", id)
	}
	return a, nil
}

// Respond records the tenant's answer to a sent agreement.
func (s *AgreementService) Respond(ctx context.Context, id, tenantID, decision string) (models.Agreement, error) {
	if decision != models.AgreementStatusAccepted && decision != models.AgreementStatusRejected {
		return models.Agreement{}, models.Validationf("decision must be %s or %s", models.AgreementStatusAccepted, models.AgreementStatusRejected)
	}
	a, err := s.Agreements.GetByID(ctx, id)
	if err != nil {
		return models.Agreement{}, err
	}
	if a.TenantID != tenantID {
		return models.Agreement{}, models.Forbiddenf("only the tenant can respond to agreement %s", id)
	}
	if a.Status == decision {
		return a, nil
	}
	if a.Status != models.AgreementStatusSent || !fsm.Agreement.CanTransition(a.Status, decision) {
		return models.Agreement{}, models.Validationf("agreement is already %s", a.Status)
	}

	now := s.Clock.Now()
	ok, err := s.Agreements.UpdateStatus(ctx, id, a.Status, decision, now)
	if err != nil {
		return models.Agreement{}, fmt.Errorf("respond agreement: %w", err)
	}
	if !ok {
		return models.Agreement{}, fmt.Errorf("%w: agreement %s was answered concurrently", models.ErrConflict, id)
	}
	a.Status = decision
	a.RespondedAt = &now
	s.Logger.Infof("agreement %s %s by tenant %s", id, decision, tenantID)
	return a, nil
}

func nonNilAgreements(list []models.Agreement) []models.Agreement {
	if list == nil {
		return []models.Agreement{}
	}
	return list
}
