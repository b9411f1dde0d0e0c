package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"rentflow/internal/models"
)

const offerColumns = `id, property_id, owner_id, tenant_id, offer_rent, joining_date_estimate, desired_joining_date,
	offer_advance, offer_booking_amount, furnished, pets_allowed, vegetarian_only, parking_required,
	match_percent, message, status, booking_verified, booking_verified_at, created_at, updated_at`

type OfferRepository struct {
	DB      *sql.DB
	Dialect Dialect
}

func NewOfferRepository(db *sql.DB, d Dialect) *OfferRepository {
	return &OfferRepository{DB: db, Dialect: d}
}

func (r *OfferRepository) Create(ctx context.Context, o models.Offer) error {
	query := `INSERT INTO offers (` + offerColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.DB.ExecContext(ctx, r.Dialect.Rebind(query),
		o.ID, o.PropertyID, o.OwnerID, o.TenantID, o.OfferRent, o.JoiningDateEstimate, o.DesiredJoiningDate,
		o.OfferAdvance, o.OfferBookingAmount, o.Furnished, o.PetsAllowed, o.VegetarianOnly, o.ParkingRequired,
		o.MatchPercent, o.Message, o.Status, o.BookingVerified, nullTime(o.BookingVerifiedAt), o.CreatedAt.UTC(), nullTime(o.UpdatedAt))
	return wrapWriteErr(err)
}

func (r *OfferRepository) GetByID(ctx context.Context, id string) (models.Offer, error) {
	row := r.DB.QueryRowContext(ctx, r.Dialect.Rebind(`SELECT `+offerColumns+` FROM offers WHERE id = ?`), id)
	o, err := scanOffer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Offer{}, models.ErrOfferNotFound
	}
	return o, err
}

// List returns offers matching filter, newest first.
func (r *OfferRepository) List(ctx context.Context, f models.OfferFilter) ([]models.Offer, error) {
	var (
		conds []string
		args  []interface{}
	)
	if f.TenantID != "" {
		conds = append(conds, "tenant_id = ?")
		args = append(args, f.TenantID)
	}
	if f.OwnerID != "" {
		conds = append(conds, "owner_id = ?")
		args = append(args, f.OwnerID)
	}
	if f.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, f.Status)
	}
	query := `SELECT ` + offerColumns + ` FROM offers`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.DB.QueryContext(ctx, r.Dialect.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var offers []models.Offer
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, err
		}
		offers = append(offers, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return offers, nil
}

// UpdateStatus moves the offer from one status to another. It reports
// false when the offer was no longer in status from.
func (r *OfferRepository) UpdateStatus(ctx context.Context, id, from, to string, at time.Time) (bool, error) {
	res, err := r.DB.ExecContext(ctx, r.Dialect.Rebind(`UPDATE offers SET status = ?, updated_at = ? WHERE id = ? AND status = ?`), to, at.UTC(), id, from)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// MarkBookingVerified sets booking_verified once; the first verification
// time is kept on repeats.
func (r *OfferRepository) MarkBookingVerified(ctx context.Context, id string, at time.Time) error {
	res, err := r.DB.ExecContext(ctx, r.Dialect.Rebind(`UPDATE offers SET booking_verified = TRUE, booking_verified_at = COALESCE(booking_verified_at, ?), updated_at = ? WHERE id = ?`), at.UTC(), at.UTC(), id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrOfferNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOffer(s rowScanner) (models.Offer, error) {
	var (
		o          models.Offer
		verifiedAt sql.NullTime
		updatedAt  sql.NullTime
	)
	err := s.Scan(&o.ID, &o.PropertyID, &o.OwnerID, &o.TenantID, &o.OfferRent, &o.JoiningDateEstimate, &o.DesiredJoiningDate,
		&o.OfferAdvance, &o.OfferBookingAmount, &o.Furnished, &o.PetsAllowed, &o.VegetarianOnly, &o.ParkingRequired,
		&o.MatchPercent, &o.Message, &o.Status, &o.BookingVerified, &verifiedAt, &o.CreatedAt, &updatedAt)
	if err != nil {
		return models.Offer{}, err
	}
	o.BookingVerifiedAt = timePtr(verifiedAt)
	o.UpdatedAt = timePtr(updatedAt)
	return o, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil || t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func timePtr(nt sql.NullTime) *time.Time {
	if nt.Valid {
		val := nt.Time
		return &val
	}
	return nil
}
