package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"rentflow/internal/models"
)

// Logger provides minimal logging required by the workflow services.
type Logger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

type OfferStore interface {
	Create(ctx context.Context, o models.Offer) error
	GetByID(ctx context.Context, id string) (models.Offer, error)
	List(ctx context.Context, f models.OfferFilter) ([]models.Offer, error)
	UpdateStatus(ctx context.Context, id, from, to string, at time.Time) (bool, error)
	MarkBookingVerified(ctx context.Context, id string, at time.Time) error
}

type PropertyLookup interface {
	GetByID(ctx context.Context, id string) (models.Property, error)
}

type TransactionStore interface {
	Create(ctx context.Context, tx models.PaymentTransaction) error
	GetByID(ctx context.Context, id string) (models.PaymentTransaction, error)
	ExistsTransactionID(ctx context.Context, transactionID string) (bool, error)
	FindLatestByOffer(ctx context.Context, offerID string) (models.PaymentTransaction, error)
	FindByPeriod(ctx context.Context, offerID, paymentType, rentMonth string) (models.PaymentTransaction, error)
	MarkPaid(ctx context.Context, id string, at time.Time) (bool, error)
	SetOwnerVerified(ctx context.Context, id string, at time.Time) error
	List(ctx context.Context, f models.TransactionFilter) ([]models.PaymentTransaction, error)
}

type RentMonthStore interface {
	InsertIfAbsent(ctx context.Context, rec models.RentMonthRecord) (bool, error)
	MarkPaid(ctx context.Context, offerID, rentMonth, paymentTransactionID string, paidAt, at time.Time) (bool, error)
	ListByOffer(ctx context.Context, offerID string) ([]models.RentMonthRecord, error)
}

type AgreementStore interface {
	Create(ctx context.Context, a models.Agreement) error
	GetByID(ctx context.Context, id string) (models.Agreement, error)
	ListByTenant(ctx context.Context, tenantID string) ([]models.Agreement, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Agreement, error)
	UpdateStatus(ctx context.Context, id, from, to string, at time.Time) (bool, error)
}

// Archiver keeps an external copy of composed agreements.
type Archiver interface {
	Archive(ctx context.Context, a models.Agreement) error
}

// Locker serializes work sharing a key. The returned func releases it.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

// IDGenerator issues payment references.
type IDGenerator interface {
	Next() (string, error)
}

var newID = func() string { return uuid.NewString() }
