package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"rentflow/internal/models"
)

// Unique constraints on payment_transactions, named identically in both
// schema flavours.
const (
	ConstraintTransactionID         = "uq_payment_transactions_txid"
	ConstraintTransactionNaturalKey = "uq_payment_transactions_period"
)

const transactionColumns = `id, transaction_id, offer_id, property_id, tenant_id, owner_id, payment_type, rent_month,
	amount, currency, status, paid_at, owner_verified, owner_verified_at, created_at, updated_at`

type PaymentTransactionRepository struct {
	DB      *sql.DB
	Dialect Dialect
}

func NewPaymentTransactionRepository(db *sql.DB, d Dialect) *PaymentTransactionRepository {
	return &PaymentTransactionRepository{DB: db, Dialect: d}
}

// Create inserts tx. Duplicate keys come back as *models.UniqueViolation.
func (r *PaymentTransactionRepository) Create(ctx context.Context, tx models.PaymentTransaction) error {
	query := `INSERT INTO payment_transactions (` + transactionColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.DB.ExecContext(ctx, r.Dialect.Rebind(query),
		tx.ID, tx.TransactionID, tx.OfferID, tx.PropertyID, tx.TenantID, tx.OwnerID, tx.PaymentType, tx.RentMonth,
		tx.Amount, tx.Currency, tx.Status, nullTime(tx.PaidAt), tx.OwnerVerified, nullTime(tx.OwnerVerifiedAt),
		tx.CreatedAt.UTC(), nullTime(tx.UpdatedAt))
	return wrapWriteErr(err)
}

func (r *PaymentTransactionRepository) GetByID(ctx context.Context, id string) (models.PaymentTransaction, error) {
	return r.one(ctx, `SELECT `+transactionColumns+` FROM payment_transactions WHERE id = ?`, id)
}

func (r *PaymentTransactionRepository) ExistsTransactionID(ctx context.Context, transactionID string) (bool, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, r.Dialect.Rebind(`SELECT COUNT(*) FROM payment_transactions WHERE transaction_id = ?`), transactionID).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// FindLatestByOffer returns the most recent transaction of any type for the offer.
func (r *PaymentTransactionRepository) FindLatestByOffer(ctx context.Context, offerID string) (models.PaymentTransaction, error) {
	return r.one(ctx, `SELECT `+transactionColumns+` FROM payment_transactions WHERE offer_id = ? ORDER BY created_at DESC LIMIT 1`, offerID)
}

// FindByPeriod looks a transaction up by its natural key. Booking
// transactions use an empty rent month.
func (r *PaymentTransactionRepository) FindByPeriod(ctx context.Context, offerID, paymentType, rentMonth string) (models.PaymentTransaction, error) {
	return r.one(ctx, `SELECT `+transactionColumns+` FROM payment_transactions WHERE offer_id = ? AND payment_type = ? AND rent_month = ?`,
		offerID, paymentType, rentMonth)
}

// MarkPaid flips a not yet paid transaction to paid. It reports false when
// the row was already paid.
func (r *PaymentTransactionRepository) MarkPaid(ctx context.Context, id string, at time.Time) (bool, error) {
	res, err := r.DB.ExecContext(ctx, r.Dialect.Rebind(`UPDATE payment_transactions SET status = ?, paid_at = ?, updated_at = ? WHERE id = ? AND status <> ?`),
		models.TransactionStatusPaid, at.UTC(), at.UTC(), id, models.TransactionStatusPaid)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *PaymentTransactionRepository) SetOwnerVerified(ctx context.Context, id string, at time.Time) error {
	res, err := r.DB.ExecContext(ctx, r.Dialect.Rebind(`UPDATE payment_transactions SET owner_verified = TRUE, owner_verified_at = ?, updated_at = ? WHERE id = ?`),
		at.UTC(), at.UTC(), id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrTransactionNotFound
	}
	return nil
}

// List returns transactions matching f, newest first.
func (r *PaymentTransactionRepository) List(ctx context.Context, f models.TransactionFilter) ([]models.PaymentTransaction, error) {
	var (
		conds []string
		args  []interface{}
	)
	add := func(cond string, v interface{}) {
		conds = append(conds, cond)
		args = append(args, v)
	}
	if f.OwnerID != "" {
		add("owner_id = ?", f.OwnerID)
	}
	if f.TenantID != "" {
		add("tenant_id = ?", f.TenantID)
	}
	if f.OfferID != "" {
		add("offer_id = ?", f.OfferID)
	}
	if f.PaymentType != "" {
		add("payment_type = ?", f.PaymentType)
	}
	if f.Status != "" {
		add("status = ?", f.Status)
	}
	if f.OwnerVerified != nil {
		add("owner_verified = ?", *f.OwnerVerified)
	}

	query := `SELECT ` + transactionColumns + ` FROM payment_transactions`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.DB.QueryContext(ctx, r.Dialect.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []models.PaymentTransaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

func (r *PaymentTransactionRepository) one(ctx context.Context, query string, args ...interface{}) (models.PaymentTransaction, error) {
	tx, err := scanTransaction(r.DB.QueryRowContext(ctx, r.Dialect.Rebind(query), args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.PaymentTransaction{}, models.ErrTransactionNotFound
	}
	return tx, err
}

func scanTransaction(s rowScanner) (models.PaymentTransaction, error) {
	var (
		tx                          models.PaymentTransaction
		paidAt, verifiedAt, updated sql.NullTime
	)
	err := s.Scan(&tx.ID, &tx.TransactionID, &tx.OfferID, &tx.PropertyID, &tx.TenantID, &tx.OwnerID, &tx.PaymentType, &tx.RentMonth,
		&tx.Amount, &tx.Currency, &tx.Status, &paidAt, &tx.OwnerVerified, &verifiedAt, &tx.CreatedAt, &updated)
	if err != nil {
		return models.PaymentTransaction{}, err
	}
	tx.PaidAt = timePtr(paidAt)
	tx.OwnerVerifiedAt = timePtr(verifiedAt)
	tx.UpdatedAt = timePtr(updated)
	return tx, nil
}
