package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"rentflow/internal/fsm"
	"rentflow/internal/models"
	"rentflow/internal/repositories"
	"rentflow/internal/timeutil"
)

// maxTransactionIDAttempts bounds payment reference generation per create.
const maxTransactionIDAttempts = 3

// PaymentTransactionService is the ledger of booking and rent payments.
type PaymentTransactionService struct {
	Offers       OfferStore
	Transactions TransactionStore
	Cascade      *VerificationCascade
	Locker       Locker
	IDs          IDGenerator
	Clock        timeutil.Clock
	Logger       Logger
}

// VerifyResult is the verified transaction plus what the cascade did.
type VerifyResult struct {
	Transaction models.PaymentTransaction `json:"transaction"`
	Cascade     CascadeOutcome            `json:"cascade"`
}

// CreateBookingTransaction returns the offer's latest transaction when one
// exists, otherwise it opens a booking transaction. reused reports which.
func (s *PaymentTransactionService) CreateBookingTransaction(ctx context.Context, tenantID, offerID string) (models.PaymentTransaction, bool, error) {
	offer, err := s.tenantOffer(ctx, tenantID, offerID)
	if err != nil {
		return models.PaymentTransaction{}, false, err
	}
	amount := offer.OfferBookingAmount
	if !amount.IsPositive() {
		amount = offer.OfferAdvance
	}
	if !amount.IsPositive() {
		return models.PaymentTransaction{}, false, models.Validationf("offer %s has no booking amount or advance", offerID)
	}

	unlock, err := s.Locker.Lock(ctx, periodKey(offerID, models.PaymentTypeBooking, ""))
	if err != nil {
		return models.PaymentTransaction{}, false, fmt.Errorf("lock booking transaction: %w", err)
	}
	defer unlock()

	existing, err := s.Transactions.FindLatestByOffer(ctx, offerID)
	switch {
	case err == nil:
		return existing, true, nil
	case !isNotFound(err):
		return models.PaymentTransaction{}, false, fmt.Errorf("find booking transaction: %w", err)
	}
	return s.create(ctx, offer, models.PaymentTypeBooking, "", amount)
}

// CreateRentTransaction finds or opens the rent transaction of rentMonth.
func (s *PaymentTransactionService) CreateRentTransaction(ctx context.Context, tenantID, offerID, rentMonth string) (models.PaymentTransaction, bool, error) {
	if !timeutil.ValidRentMonth(rentMonth) {
		return models.PaymentTransaction{}, false, models.Validationf("rent month must be YYYY-MM, got %q", rentMonth)
	}
	offer, err := s.tenantOffer(ctx, tenantID, offerID)
	if err != nil {
		return models.PaymentTransaction{}, false, err
	}
	if offer.Status != models.OfferStatusAccepted {
		return models.PaymentTransaction{}, false, models.Validationf("offer %s is %s, rent needs an accepted offer", offerID, offer.Status)
	}
	if !offer.OfferRent.IsPositive() {
		return models.PaymentTransaction{}, false, models.Validationf("offer %s has no rent amount", offerID)
	}

	unlock, err := s.Locker.Lock(ctx, periodKey(offerID, models.PaymentTypeRent, rentMonth))
	if err != nil {
		return models.PaymentTransaction{}, false, fmt.Errorf("lock rent transaction: %w", err)
	}
	defer unlock()

	existing, err := s.Transactions.FindByPeriod(ctx, offerID, models.PaymentTypeRent, rentMonth)
	switch {
	case err == nil:
		return existing, true, nil
	case !isNotFound(err):
		return models.PaymentTransaction{}, false, fmt.Errorf("find rent transaction: %w", err)
	}
	return s.create(ctx, offer, models.PaymentTypeRent, rentMonth, offer.OfferRent)
}

func (s *PaymentTransactionService) tenantOffer(ctx context.Context, tenantID, offerID string) (models.Offer, error) {
	offer, err := s.Offers.GetByID(ctx, offerID)
	if err != nil {
		return models.Offer{}, err
	}
	if offer.TenantID != tenantID {
		return models.Offer{}, models.Forbiddenf("only the offer's tenant can pay for offer %s", offerID)
	}
	return offer, nil
}

// create persists a new transaction. A clash on the payment reference
// retries with a fresh one; a clash on the period resolves to the row that
// won the race.
func (s *PaymentTransactionService) create(ctx context.Context, offer models.Offer, paymentType, rentMonth string, amount decimal.Decimal) (models.PaymentTransaction, bool, error) {
	tx := models.PaymentTransaction{
		ID:          newID(),
		OfferID:     offer.ID,
		PropertyID:  offer.PropertyID,
		TenantID:    offer.TenantID,
		OwnerID:     offer.OwnerID,
		PaymentType: paymentType,
		RentMonth:   rentMonth,
		Amount:      amount,
		Currency:    models.DefaultCurrency,
		Status:      models.TransactionStatusCreated,
		CreatedAt:   s.Clock.Now(),
	}

	for attempt := 1; attempt <= maxTransactionIDAttempts; attempt++ {
		ref, err := s.IDs.Next()
		if err != nil {
			return models.PaymentTransaction{}, false, fmt.Errorf("generate transaction id: %w", err)
		}
		taken, err := s.Transactions.ExistsTransactionID(ctx, ref)
		if err != nil {
			return models.PaymentTransaction{}, false, fmt.Errorf("check transaction id: %w", err)
		}
		if taken {
			s.Logger.Infof("transaction id %s already taken, attempt %d", ref, attempt)
			continue
		}

		tx.TransactionID = ref
		err = s.Transactions.Create(ctx, tx)
		if err == nil {
			s.Logger.Infof("%s transaction %s opened for offer %s", paymentType, ref, offer.ID)
			return tx, false, nil
		}

		var uv *models.UniqueViolation
		if !errors.As(err, &uv) {
			return models.PaymentTransaction{}, false, fmt.Errorf("create transaction: %w", err)
		}
		if uv.Constraint != repositories.ConstraintTransactionID {
			existing, ferr := s.Transactions.FindByPeriod(ctx, offer.ID, paymentType, rentMonth)
			if ferr == nil {
				return existing, true, nil
			}
			if uv.Constraint == repositories.ConstraintTransactionNaturalKey {
				return models.PaymentTransaction{}, false, fmt.Errorf("reload transaction after conflict: %w", ferr)
			}
		}
		s.Logger.Infof("transaction id %s collided on insert, attempt %d", ref, attempt)
	}
	return models.PaymentTransaction{}, false, fmt.Errorf("%w: no free transaction id after %d attempts", models.ErrConflict, maxTransactionIDAttempts)
}

// MarkPaid records the tenant's claim of payment. Paying twice keeps the
// first paidAt.
func (s *PaymentTransactionService) MarkPaid(ctx context.Context, id, callerID string) (models.PaymentTransaction, error) {
	tx, err := s.Transactions.GetByID(ctx, id)
	if err != nil {
		return models.PaymentTransaction{}, err
	}
	if tx.TenantID != callerID {
		return models.PaymentTransaction{}, models.Forbiddenf("only the tenant can mark transaction %s paid", id)
	}
	if tx.Status == models.TransactionStatusPaid {
		return tx, nil
	}
	if !fsm.Transaction.CanTransition(tx.Status, models.TransactionStatusPaid) {
		return models.PaymentTransaction{}, models.Validationf("transaction %s is %s and cannot be paid", id, tx.Status)
	}

	now := s.Clock.Now()
	changed, err := s.Transactions.MarkPaid(ctx, id, now)
	if err != nil {
		return models.PaymentTransaction{}, fmt.Errorf("mark transaction paid: %w", err)
	}
	if !changed {
		return s.Transactions.GetByID(ctx, id)
	}
	tx.Status = models.TransactionStatusPaid
	tx.PaidAt = &now
	tx.UpdatedAt = &now
	s.Logger.Infof("transaction %s marked paid", tx.TransactionID)
	return tx, nil
}

// Verify records the owner's confirmation and runs the cascade. Cascade
// problems are reported in the result, never as an error.
func (s *PaymentTransactionService) Verify(ctx context.Context, id, ownerID string) (VerifyResult, error) {
	tx, err := s.Transactions.GetByID(ctx, id)
	if err != nil {
		return VerifyResult{}, err
	}
	if tx.OwnerID != ownerID {
		return VerifyResult{}, models.Forbiddenf("only the owner can verify transaction %s", id)
	}

	unlock, err := s.Locker.Lock(ctx, offerKey(tx.OfferID))
	if err != nil {
		return VerifyResult{}, fmt.Errorf("lock offer: %w", err)
	}
	defer unlock()

	// Re-read under the lock so the cascade sees the latest status.
	tx, err = s.Transactions.GetByID(ctx, id)
	if err != nil {
		return VerifyResult{}, err
	}
	now := s.Clock.Now()
	if err := s.Transactions.SetOwnerVerified(ctx, id, now); err != nil {
		return VerifyResult{}, fmt.Errorf("verify transaction: %w", err)
	}
	tx.OwnerVerified = true
	tx.OwnerVerifiedAt = &now
	tx.UpdatedAt = &now
	s.Logger.Infof("transaction %s verified by owner %s", tx.TransactionID, ownerID)

	return VerifyResult{Transaction: tx, Cascade: s.Cascade.Run(ctx, tx)}, nil
}

func (s *PaymentTransactionService) GetTransaction(ctx context.Context, id, callerID string) (models.PaymentTransaction, error) {
	tx, err := s.Transactions.GetByID(ctx, id)
	if err != nil {
		return models.PaymentTransaction{}, err
	}
	if callerID != tx.TenantID && callerID != tx.OwnerID {
		return models.PaymentTransaction{}, models.Forbiddenf("transaction %s is not visible to caller", id)
	}
	return tx, nil
}

// ListIncoming lists transactions payable to ownerID.
func (s *PaymentTransactionService) ListIncoming(ctx context.Context, ownerID string, f models.TransactionFilter) ([]models.PaymentTransaction, error) {
	f.OwnerID, f.TenantID = ownerID, ""
	return s.list(ctx, f)
}

// ListOutgoing lists transactions paid by tenantID.
func (s *PaymentTransactionService) ListOutgoing(ctx context.Context, tenantID string, f models.TransactionFilter) ([]models.PaymentTransaction, error) {
	f.TenantID, f.OwnerID = tenantID, ""
	return s.list(ctx, f)
}

func (s *PaymentTransactionService) list(ctx context.Context, f models.TransactionFilter) ([]models.PaymentTransaction, error) {
	if f.PaymentType != "" && f.PaymentType != models.PaymentTypeBooking && f.PaymentType != models.PaymentTypeRent {
		return nil, models.Validationf("unknown payment type %q", f.PaymentType)
	}
	if f.Status != "" && !fsm.Transaction.Known(f.Status) {
		return nil, models.Validationf("unknown transaction status %q", f.Status)
	}
	txs, err := s.Transactions.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	if txs == nil {
		txs = []models.PaymentTransaction{}
	}
	return txs, nil
}

func periodKey(offerID, paymentType, rentMonth string) string {
	return "txn:" + offerID + ":" + paymentType + ":" + rentMonth
}

func offerKey(offerID string) string {
	return "offer:" + offerID
}
