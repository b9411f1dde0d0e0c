package services

import (
	"context"
	"fmt"
	"strings"

	"rentflow/internal/models"
	"rentflow/internal/timeutil"
)

// Cascade step states.
const (
	StepApplied = "applied"
	StepSkipped = "skipped"
	StepFailed  = "failed"
)

// Cascade step names.
const (
	StepTransactionPaid  = "transaction_paid"
	StepOfferAccepted    = "offer_accepted"
	StepDueDay           = "due_day"
	StepBookingVerified  = "booking_verified"
	StepRentMonthCreated = "rent_month_created"
	StepRentMonthPaid    = "rent_month_paid"
)

type CascadeStep struct {
	Name   string `json:"name"`
	State  string `json:"state"`
	Reason string `json:"reason,omitempty"`
}

// CascadeOutcome lists the steps in the order they ran.
type CascadeOutcome struct {
	Steps []CascadeStep `json:"steps"`
}

func (o *CascadeOutcome) add(name, state, reason string) {
	o.Steps = append(o.Steps, CascadeStep{Name: name, State: state, Reason: reason})
}

// Step returns the named step if it ran.
func (o CascadeOutcome) Step(name string) (CascadeStep, bool) {
	for _, st := range o.Steps {
		if st.Name == name {
			return st, true
		}
	}
	return CascadeStep{}, false
}

// Failed reports whether any step failed.
func (o CascadeOutcome) Failed() bool {
	for _, st := range o.Steps {
		if st.State == StepFailed {
			return true
		}
	}
	return false
}

// VerificationCascade derives offer and rent month state from a verified
// payment. Callers hold the offer lock.
type VerificationCascade struct {
	Offers     OfferStore
	RentMonths RentMonthStore
	Clock      timeutil.Clock
	Logger     Logger
}

// Run never fails; failures are logged and recorded as failed steps.
func (c *VerificationCascade) Run(ctx context.Context, tx models.PaymentTransaction) CascadeOutcome {
	var out CascadeOutcome
	if tx.Status != models.TransactionStatusPaid {
		out.add(StepTransactionPaid, StepSkipped, "transaction_not_paid")
		return out
	}
	out.add(StepTransactionPaid, StepApplied, "")

	offer, err := c.Offers.GetByID(ctx, tx.OfferID)
	if err != nil {
		c.Logger.Errorf("cascade %s: load offer %s: %v", tx.TransactionID, tx.OfferID, err)
		out.add(StepOfferAccepted, StepFailed, err.Error())
		return out
	}
	if offer.Status != models.OfferStatusAccepted {
		out.add(StepOfferAccepted, StepSkipped, "offer_not_accepted")
		return out
	}
	out.add(StepOfferAccepted, StepApplied, "")

	loc := c.Clock.Location()
	if strings.TrimSpace(offer.DesiredJoiningDate) == "" {
		out.add(StepDueDay, StepSkipped, "joining_date_missing")
		return out
	}
	dueDay, err := timeutil.JoiningDueDay(offer.DesiredJoiningDate, loc)
	if err != nil {
		c.Logger.Infof("cascade %s: %v", tx.TransactionID, err)
		out.add(StepDueDay, StepSkipped, "joining_date_invalid")
		return out
	}
	out.add(StepDueDay, StepApplied, "")

	now := c.Clock.Now()
	switch tx.PaymentType {
	case models.PaymentTypeBooking:
		c.booking(ctx, &out, tx, offer, dueDay)
	case models.PaymentTypeRent:
		paidAt := now
		if tx.PaidAt != nil {
			paidAt = *tx.PaidAt
		}
		ok, err := c.RentMonths.MarkPaid(ctx, offer.ID, tx.RentMonth, tx.ID, paidAt, now)
		switch {
		case err != nil:
			c.Logger.Errorf("cascade %s: settle rent month %s: %v", tx.TransactionID, tx.RentMonth, err)
			out.add(StepRentMonthPaid, StepFailed, err.Error())
		case !ok:
			out.add(StepRentMonthPaid, StepSkipped, "rent_record_missing")
		default:
			out.add(StepRentMonthPaid, StepApplied, "")
		}
	}
	return out
}

func (c *VerificationCascade) booking(ctx context.Context, out *CascadeOutcome, tx models.PaymentTransaction, offer models.Offer, dueDay int) {
	now := c.Clock.Now()
	if err := c.Offers.MarkBookingVerified(ctx, offer.ID, now); err != nil {
		c.Logger.Errorf("cascade %s: mark booking verified on offer %s: %v", tx.TransactionID, offer.ID, err)
		out.add(StepBookingVerified, StepFailed, err.Error())
	} else {
		out.add(StepBookingVerified, StepApplied, "")
	}

	loc := c.Clock.Location()
	month := timeutil.MonthKey(now.In(loc))
	due, err := timeutil.DueDate(month, dueDay, loc)
	if err != nil {
		c.Logger.Errorf("cascade %s: due date: %v", tx.TransactionID, err)
		out.add(StepRentMonthCreated, StepFailed, err.Error())
		return
	}
	created, err := c.RentMonths.InsertIfAbsent(ctx, models.RentMonthRecord{
		ID:         newID(),
		OfferID:    offer.ID,
		PropertyID: offer.PropertyID,
		TenantID:   offer.TenantID,
		OwnerID:    offer.OwnerID,
		RentMonth:  month,
		DueDate:    due,
		Amount:     offer.OfferRent,
		Currency:   models.DefaultCurrency,
		Status:     models.RentMonthStatusPending,
		CreatedAt:  now,
	})
	switch {
	case err != nil:
		c.Logger.Errorf("cascade %s: create rent month %s: %v", tx.TransactionID, month, err)
		out.add(StepRentMonthCreated, StepFailed, err.Error())
	case !created:
		out.add(StepRentMonthCreated, StepSkipped, "rent_month_exists")
	default:
		c.Logger.Infof("rent month %s opened for offer %s, due %s", month, offer.ID, due.Format("2006-01-02"))
		out.add(StepRentMonthCreated, StepApplied, "")
	}
}

// ListRentMonths returns the offer's rent months to its tenant or owner.
func (c *VerificationCascade) ListRentMonths(ctx context.Context, offerID, callerID string) ([]models.RentMonthRecord, error) {
	offer, err := c.Offers.GetByID(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if callerID != offer.TenantID && callerID != offer.OwnerID {
		return nil, models.Forbiddenf("offer %s is not visible to caller", offerID)
	}
	records, err := c.RentMonths.ListByOffer(ctx, offerID)
	if err != nil {
		return nil, fmt.Errorf("list rent months: %w", err)
	}
	if records == nil {
		records = []models.RentMonthRecord{}
	}
	return records, nil
}
