package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"rentflow/internal/models"
)

const agreementColumns = `id, offer_id, property_id, tenant_id, owner_id, snapshot_version, property_json, owner_json,
	tenant_json, booking_json, rent_json, charges_json, status, responded_at, created_at`

type AgreementRepository struct {
	DB      *sql.DB
	Dialect Dialect
}

func NewAgreementRepository(db *sql.DB, d Dialect) *AgreementRepository {
	return &AgreementRepository{DB: db, Dialect: d}
}

func (r *AgreementRepository) Create(ctx context.Context, a models.Agreement) error {
	parts := make([][]byte, 0, 5)
	for _, v := range []interface{}{a.Property, a.Owner, a.Tenant, a.Rent, a.Charges} {
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode agreement snapshot: %w", err)
		}
		parts = append(parts, b)
	}
	var booking interface{}
	if a.Booking != nil {
		b, err := json.Marshal(a.Booking)
		if err != nil {
			return fmt.Errorf("encode booking snapshot: %w", err)
		}
		booking = string(b)
	}

	query := `INSERT INTO agreements (` + agreementColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.DB.ExecContext(ctx, r.Dialect.Rebind(query),
		a.ID, a.OfferID, a.PropertyID, a.TenantID, a.OwnerID, a.SnapshotVersion,
		string(parts[0]), string(parts[1]), string(parts[2]), booking, string(parts[3]), string(parts[4]),
		a.Status, nullTime(a.RespondedAt), a.CreatedAt.UTC())
	return wrapWriteErr(err)
}

func (r *AgreementRepository) GetByID(ctx context.Context, id string) (models.Agreement, error) {
	a, err := scanAgreement(r.DB.QueryRowContext(ctx, r.Dialect.Rebind(`SELECT `+agreementColumns+` FROM agreements WHERE id = ?`), id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Agreement{}, models.ErrAgreementNotFound
	}
	return a, err
}

// ListByTenant returns agreements addressed to the tenant, newest first.
func (r *AgreementRepository) ListByTenant(ctx context.Context, tenantID string) ([]models.Agreement, error) {
	return r.list(ctx, `SELECT `+agreementColumns+` FROM agreements WHERE tenant_id = ? ORDER BY created_at DESC`, tenantID)
}

// ListByOwner returns agreements sent by the owner, newest first.
func (r *AgreementRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Agreement, error) {
	return r.list(ctx, `SELECT `+agreementColumns+` FROM agreements WHERE owner_id = ? ORDER BY created_at DESC`, ownerID)
}

// UpdateStatus records a tenant response. It reports false when the
// agreement had already left status from.
func (r *AgreementRepository) UpdateStatus(ctx context.Context, id, from, to string, at time.Time) (bool, error) {
	res, err := r.DB.ExecContext(ctx, r.Dialect.Rebind(`UPDATE agreements SET status = ?, responded_at = ? WHERE id = ? AND status = ?`), to, at.UTC(), id, from)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *AgreementRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.Agreement, error) {
	rows, err := r.DB.QueryContext(ctx, r.Dialect.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Agreement
	for rows.Next() {
		a, err := scanAgreement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAgreement(s rowScanner) (models.Agreement, error) {
	var (
		a           models.Agreement
		respondedAt sql.NullTime

		property, owner, tenant, rent, charges, booking []byte
	)
	err := s.Scan(&a.ID, &a.OfferID, &a.PropertyID, &a.TenantID, &a.OwnerID, &a.SnapshotVersion,
		&property, &owner, &tenant, &booking, &rent, &charges, &a.Status, &respondedAt, &a.CreatedAt)
	if err != nil {
		return models.Agreement{}, err
	}
	targets := []struct {
		raw []byte
		dst interface{}
	}{
		{property, &a.Property},
		{owner, &a.Owner},
		{tenant, &a.Tenant},
		{rent, &a.Rent},
		{charges, &a.Charges},
	}
	for _, t := range targets {
		if err := json.Unmarshal(t.raw, t.dst); err != nil {
			return models.Agreement{}, fmt.Errorf("decode agreement %s: %w", a.ID, err)
		}
	}
	if len(booking) > 0 {
		a.Booking = &models.BookingSnapshot{}
		if err := json.Unmarshal(booking, a.Booking); err != nil {
			return models.Agreement{}, fmt.Errorf("decode agreement %s booking: %w", a.ID, err)
		}
	}
	a.RespondedAt = timePtr(respondedAt)
	return a, nil
}
