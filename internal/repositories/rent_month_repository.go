package repositories

import (
	"context"
	"database/sql"
	"time"

	"rentflow/internal/models"
)

const ConstraintRentMonthOfferMonth = "uq_rent_month_records_offer_month"

const rentMonthColumns = `id, offer_id, property_id, tenant_id, owner_id, rent_month, due_date, amount, currency,
	status, paid_at, payment_transaction_id, created_at, updated_at`

type RentMonthRepository struct {
	DB      *sql.DB
	Dialect Dialect
}

func NewRentMonthRepository(db *sql.DB, d Dialect) *RentMonthRepository {
	return &RentMonthRepository{DB: db, Dialect: d}
}

// InsertIfAbsent creates the record unless one already exists for the
// same offer and month. Existing records are left untouched.
func (r *RentMonthRepository) InsertIfAbsent(ctx context.Context, rec models.RentMonthRecord) (bool, error) {
	query := `INSERT INTO rent_month_records (` + rentMonthColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.DB.ExecContext(ctx, r.Dialect.InsertOrKeep(query),
		rec.ID, rec.OfferID, rec.PropertyID, rec.TenantID, rec.OwnerID, rec.RentMonth, rec.DueDate.Format("2006-01-02"),
		rec.Amount, rec.Currency, rec.Status, nullTime(rec.PaidAt), rec.PaymentTransactionID, rec.CreatedAt.UTC(), nullTime(rec.UpdatedAt))
	if err != nil {
		return false, wrapWriteErr(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

// MarkPaid settles the record of the offer month. It reports false when
// no record exists.
func (r *RentMonthRepository) MarkPaid(ctx context.Context, offerID, rentMonth, paymentTransactionID string, paidAt, at time.Time) (bool, error) {
	res, err := r.DB.ExecContext(ctx, r.Dialect.Rebind(`UPDATE rent_month_records SET status = ?, paid_at = ?, payment_transaction_id = ?, updated_at = ? WHERE offer_id = ? AND rent_month = ?`),
		models.RentMonthStatusPaid, paidAt.UTC(), paymentTransactionID, at.UTC(), offerID, rentMonth)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// ListByOffer returns the offer's records in month order.
func (r *RentMonthRepository) ListByOffer(ctx context.Context, offerID string) ([]models.RentMonthRecord, error) {
	rows, err := r.DB.QueryContext(ctx, r.Dialect.Rebind(`SELECT `+rentMonthColumns+` FROM rent_month_records WHERE offer_id = ? ORDER BY rent_month ASC`), offerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.RentMonthRecord
	for rows.Next() {
		var (
			rec             models.RentMonthRecord
			paidAt, updated sql.NullTime
		)
		if err := rows.Scan(&rec.ID, &rec.OfferID, &rec.PropertyID, &rec.TenantID, &rec.OwnerID, &rec.RentMonth, &rec.DueDate,
			&rec.Amount, &rec.Currency, &rec.Status, &paidAt, &rec.PaymentTransactionID, &rec.CreatedAt, &updated); err != nil {
			return nil, err
		}
		rec.PaidAt = timePtr(paidAt)
		rec.UpdatedAt = timePtr(updated)
		records = append(records, rec)
	}
	return records, rows.Err()
}
