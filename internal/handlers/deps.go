package handlers

import (
	"context"

	"rentflow/internal/models"
	"rentflow/internal/services"
)

// Logger provides minimal logging required by the handlers.
type Logger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

type OfferService interface {
	CreateOffer(ctx context.Context, tenantID, propertyID string, terms models.OfferTerms) (models.Offer, error)
	Decide(ctx context.Context, offerID, ownerID, decision string) (models.Offer, error)
	GetOffer(ctx context.Context, offerID, callerID string) (models.Offer, error)
	ListOffers(ctx context.Context, callerID, role, status string) ([]models.Offer, error)
}

type TransactionService interface {
	CreateBookingTransaction(ctx context.Context, tenantID, offerID string) (models.PaymentTransaction, bool, error)
	CreateRentTransaction(ctx context.Context, tenantID, offerID, rentMonth string) (models.PaymentTransaction, bool, error)
	MarkPaid(ctx context.Context, id, callerID string) (models.PaymentTransaction, error)
	Verify(ctx context.Context, id, ownerID string) (services.VerifyResult, error)
	GetTransaction(ctx context.Context, id, callerID string) (models.PaymentTransaction, error)
	ListIncoming(ctx context.Context, ownerID string, f models.TransactionFilter) ([]models.PaymentTransaction, error)
	ListOutgoing(ctx context.Context, tenantID string, f models.TransactionFilter) ([]models.PaymentTransaction, error)
}

type RentMonthService interface {
	ListRentMonths(ctx context.Context, offerID, callerID string) ([]models.RentMonthRecord, error)
}

type AgreementService interface {
	CreateAgreement(ctx context.Context, ownerID, offerID string, snaps models.AgreementSnapshots, paymentTransactionID string) (models.Agreement, error)
	ListIncoming(ctx context.Context, tenantID string) ([]models.Agreement, error)
	ListSent(ctx context.Context, ownerID string) ([]models.Agreement, error)
	GetAgreement(ctx context.Context, id, callerID string) (models.Agreement, error)
	Respond(ctx context.Context, id, tenantID, decision string) (models.Agreement, error)
}
