package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"rentflow/internal/lock"
	"rentflow/internal/models"
	"rentflow/internal/repositories"
	"rentflow/internal/timeutil"
	"rentflow/internal/txid"
)

type testLogger struct {
	mu     sync.Mutex
	infos  []string
	errors []string
}

func (l *testLogger) Infof(format string, args ...interface{}) {
	l.mu.Lock()
	l.infos = append(l.infos, fmt.Sprintf(format, args...))
	l.mu.Unlock()
}

func (l *testLogger) Errorf(format string, args ...interface{}) {
	l.mu.Lock()
	l.errors = append(l.errors, fmt.Sprintf(format, args...))
	l.mu.Unlock()
}

func (l *testLogger) errorCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.errors)
}

type memProperties map[string]models.Property

func (m memProperties) GetByID(_ context.Context, id string) (models.Property, error) {
	p, ok := m[id]
	if !ok {
		return models.Property{}, models.ErrPropertyNotFound
	}
	return p, nil
}

type memOffers struct {
	mu         sync.Mutex
	rows       map[string]models.Offer
	verifyErr  error
	getErrOnce error
}

func newMemOffers() *memOffers { return &memOffers{rows: map[string]models.Offer{}} }

func (m *memOffers) Create(_ context.Context, o models.Offer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[o.ID] = o
	return nil
}

func (m *memOffers) GetByID(_ context.Context, id string) (models.Offer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErrOnce != nil {
		err := m.getErrOnce
		m.getErrOnce = nil
		return models.Offer{}, err
	}
	o, ok := m.rows[id]
	if !ok {
		return models.Offer{}, models.ErrOfferNotFound
	}
	return o, nil
}

func (m *memOffers) List(_ context.Context, f models.OfferFilter) ([]models.Offer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Offer
	for _, o := range m.rows {
		if (f.TenantID == "" || o.TenantID == f.TenantID) && (f.OwnerID == "" || o.OwnerID == f.OwnerID) && (f.Status == "" || o.Status == f.Status) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memOffers) UpdateStatus(_ context.Context, id, from, to string, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.rows[id]
	if !ok || o.Status != from {
		return false, nil
	}
	o.Status = to
	o.UpdatedAt = &at
	m.rows[id] = o
	return true, nil
}

func (m *memOffers) MarkBookingVerified(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.verifyErr != nil {
		return m.verifyErr
	}
	o, ok := m.rows[id]
	if !ok {
		return models.ErrOfferNotFound
	}
	o.BookingVerified = true
	if o.BookingVerifiedAt == nil {
		o.BookingVerifiedAt = &at
	}
	m.rows[id] = o
	return nil
}

func (m *memOffers) get(id string) models.Offer {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rows[id]
}

// memTransactions enforces the same unique keys as the SQL schema.
type memTransactions struct {
	mu   sync.Mutex
	rows []models.PaymentTransaction

	// hideRefs makes ExistsTransactionID always miss so collisions surface
	// on insert.
	hideRefs bool
	// beforeCreate runs ahead of every insert, outside the store lock.
	beforeCreate func(tx models.PaymentTransaction)
	creates      int
}

func (m *memTransactions) Create(_ context.Context, tx models.PaymentTransaction) error {
	if m.beforeCreate != nil {
		m.beforeCreate(tx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates++
	for _, r := range m.rows {
		if r.TransactionID == tx.TransactionID {
			return &models.UniqueViolation{Constraint: repositories.ConstraintTransactionID, Err: fmt.Errorf("duplicate %s", tx.TransactionID)}
		}
		if r.OfferID == tx.OfferID && r.PaymentType == tx.PaymentType && r.RentMonth == tx.RentMonth {
			return &models.UniqueViolation{Constraint: repositories.ConstraintTransactionNaturalKey, Err: fmt.Errorf("duplicate period")}
		}
	}
	m.rows = append(m.rows, tx)
	return nil
}

func (m *memTransactions) insert(tx models.PaymentTransaction) {
	m.mu.Lock()
	m.rows = append(m.rows, tx)
	m.mu.Unlock()
}

func (m *memTransactions) GetByID(_ context.Context, id string) (models.PaymentTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.ID == id {
			return r, nil
		}
	}
	return models.PaymentTransaction{}, models.ErrTransactionNotFound
}

func (m *memTransactions) ExistsTransactionID(_ context.Context, ref string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.hideRefs {
		return false, nil
	}
	for _, r := range m.rows {
		if r.TransactionID == ref {
			return true, nil
		}
	}
	return false, nil
}

func (m *memTransactions) FindLatestByOffer(_ context.Context, offerID string) (models.PaymentTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var (
		best  models.PaymentTransaction
		found bool
	)
	for _, r := range m.rows {
		if r.OfferID == offerID && (!found || !r.CreatedAt.Before(best.CreatedAt)) {
			best, found = r, true
		}
	}
	if !found {
		return models.PaymentTransaction{}, models.ErrTransactionNotFound
	}
	return best, nil
}

func (m *memTransactions) FindByPeriod(_ context.Context, offerID, paymentType, rentMonth string) (models.PaymentTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.OfferID == offerID && r.PaymentType == paymentType && r.RentMonth == rentMonth {
			return r, nil
		}
	}
	return models.PaymentTransaction{}, models.ErrTransactionNotFound
}

func (m *memTransactions) MarkPaid(_ context.Context, id string, at time.Time) (bool, error) {
	return m.update(id, func(r *models.PaymentTransaction) bool {
		if r.Status == models.TransactionStatusPaid {
			return false
		}
		r.Status = models.TransactionStatusPaid
		r.PaidAt = &at
		return true
	})
}

func (m *memTransactions) SetOwnerVerified(_ context.Context, id string, at time.Time) error {
	ok, _ := m.update(id, func(r *models.PaymentTransaction) bool {
		r.OwnerVerified = true
		r.OwnerVerifiedAt = &at
		return true
	})
	if !ok {
		return models.ErrTransactionNotFound
	}
	return nil
}

func (m *memTransactions) update(id string, fn func(*models.PaymentTransaction) bool) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].ID == id {
			return fn(&m.rows[i]), nil
		}
	}
	return false, nil
}

func (m *memTransactions) List(_ context.Context, f models.TransactionFilter) ([]models.PaymentTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.PaymentTransaction
	for _, r := range m.rows {
		if f.OwnerID != "" && r.OwnerID != f.OwnerID ||
			f.TenantID != "" && r.TenantID != f.TenantID ||
			f.OfferID != "" && r.OfferID != f.OfferID ||
			f.PaymentType != "" && r.PaymentType != f.PaymentType ||
			f.Status != "" && r.Status != f.Status ||
			f.OwnerVerified != nil && r.OwnerVerified != *f.OwnerVerified {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memTransactions) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

type memRentMonths struct {
	mu        sync.Mutex
	rows      map[string]models.RentMonthRecord
	insertErr error
}

func newMemRentMonths() *memRentMonths {
	return &memRentMonths{rows: map[string]models.RentMonthRecord{}}
}

func (m *memRentMonths) InsertIfAbsent(_ context.Context, rec models.RentMonthRecord) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return false, m.insertErr
	}
	key := rec.OfferID + "/" + rec.RentMonth
	if _, ok := m.rows[key]; ok {
		return false, nil
	}
	m.rows[key] = rec
	return true, nil
}

func (m *memRentMonths) MarkPaid(_ context.Context, offerID, rentMonth, paymentTransactionID string, paidAt, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := offerID + "/" + rentMonth
	rec, ok := m.rows[key]
	if !ok {
		return false, nil
	}
	rec.Status = models.RentMonthStatusPaid
	rec.PaidAt = &paidAt
	rec.PaymentTransactionID = paymentTransactionID
	rec.UpdatedAt = &at
	m.rows[key] = rec
	return true, nil
}

func (m *memRentMonths) ListByOffer(_ context.Context, offerID string) ([]models.RentMonthRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.RentMonthRecord
	for _, r := range m.rows {
		if r.OfferID == offerID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RentMonth < out[j].RentMonth })
	return out, nil
}

func (m *memRentMonths) get(offerID, month string) (models.RentMonthRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[offerID+"/"+month]
	return r, ok
}

func (m *memRentMonths) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

type memAgreements struct {
	mu   sync.Mutex
	rows []models.Agreement
}

func (m *memAgreements) Create(_ context.Context, a models.Agreement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, a)
	return nil
}

func (m *memAgreements) GetByID(_ context.Context, id string) (models.Agreement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.rows {
		if a.ID == id {
			return a, nil
		}
	}
	return models.Agreement{}, models.ErrAgreementNotFound
}

func (m *memAgreements) ListByTenant(_ context.Context, tenantID string) ([]models.Agreement, error) {
	return m.filter(func(a models.Agreement) bool { return a.TenantID == tenantID }), nil
}

func (m *memAgreements) ListByOwner(_ context.Context, ownerID string) ([]models.Agreement, error) {
	return m.filter(func(a models.Agreement) bool { return a.OwnerID == ownerID }), nil
}

func (m *memAgreements) filter(keep func(models.Agreement) bool) []models.Agreement {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Agreement
	for i := len(m.rows) - 1; i >= 0; i-- {
		if keep(m.rows[i]) {
			out = append(out, m.rows[i])
		}
	}
	return out
}

func (m *memAgreements) UpdateStatus(_ context.Context, id, from, to string, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].ID == id && m.rows[i].Status == from {
			m.rows[i].Status = to
			m.rows[i].RespondedAt = &at
			return true, nil
		}
	}
	return false, nil
}

type stubArchive struct {
	archived []string
	err      error
}

func (s *stubArchive) Archive(_ context.Context, a models.Agreement) error {
	s.archived = append(s.archived, a.ID)
	return s.err
}

// fixture wires every service over the in-memory stores.
type fixture struct {
	clock      *timeutil.FixedClock
	log        *testLogger
	properties memProperties
	offers     *memOffers
	txs        *memTransactions
	months     *memRentMonths
	agreements *memAgreements
	archive    *stubArchive

	offerSvc     *OfferService
	ledger       *PaymentTransactionService
	cascade      *VerificationCascade
	agreementSvc *AgreementService
}

const (
	tenantID   = "tenant-1"
	ownerID    = "owner-1"
	propertyID = "prop-1"
)

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()
	f := &fixture{
		clock:      &timeutil.FixedClock{T: now},
		log:        &testLogger{},
		properties: memProperties{propertyID: {ID: propertyID, OwnerID: ownerID, Title: "2BHK Koramangala", City: "Bengaluru"}},
		offers:     newMemOffers(),
		txs:        &memTransactions{},
		months:     newMemRentMonths(),
		agreements: &memAgreements{},
		archive:    &stubArchive{},
	}
	f.offerSvc = &OfferService{Offers: f.offers, Properties: f.properties, Clock: f.clock, Logger: f.log}
	f.cascade = &VerificationCascade{Offers: f.offers, RentMonths: f.months, Clock: f.clock, Logger: f.log}
	f.ledger = &PaymentTransactionService{
		Offers:       f.offers,
		Transactions: f.txs,
		Cascade:      f.cascade,
		Locker:       lock.NewMutex(),
		IDs:          txid.NewSeeded(7, f.clock.Now),
		Clock:        f.clock,
		Logger:       f.log,
	}
	f.agreementSvc = &AgreementService{
		Offers:       f.offers,
		Transactions: f.txs,
		Agreements:   f.agreements,
		Archive:      f.archive,
		Clock:        f.clock,
		Logger:       f.log,
	}
	return f
}

func ist() *time.Location { return timeutil.LoadLocation(timeutil.DefaultLocationName) }

func defaultTerms() models.OfferTerms {
	return models.OfferTerms{
		OfferRent:           decimal.NewFromInt(15000),
		JoiningDateEstimate: "early March",
		DesiredJoiningDate:  "2024-03-10",
		OfferBookingAmount:  decimal.NewFromInt(5000),
		MatchPercent:        85,
	}
}

func (f *fixture) offer(t *testing.T, terms models.OfferTerms) models.Offer {
	t.Helper()
	o, err := f.offerSvc.CreateOffer(context.Background(), tenantID, propertyID, terms)
	if err != nil {
		t.Fatalf("CreateOffer: %v", err)
	}
	return o
}

func (f *fixture) acceptedOffer(t *testing.T, terms models.OfferTerms) models.Offer {
	t.Helper()
	o := f.offer(t, terms)
	o, err := f.offerSvc.Decide(context.Background(), o.ID, ownerID, models.OfferStatusAccepted)
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	return o
}
