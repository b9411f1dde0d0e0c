package repositories

import (
	"context"
	"database/sql"
	"errors"

	"rentflow/internal/models"
)

// PropertyRepository reads listings maintained by the listing service.
type PropertyRepository struct {
	DB      *sql.DB
	Dialect Dialect
}

func NewPropertyRepository(db *sql.DB, d Dialect) *PropertyRepository {
	return &PropertyRepository{DB: db, Dialect: d}
}

func (r *PropertyRepository) GetByID(ctx context.Context, id string) (models.Property, error) {
	var p models.Property
	err := r.DB.QueryRowContext(ctx, r.Dialect.Rebind(`SELECT id, owner_id, title, address, city, property_type FROM properties WHERE id = ?`), id).
		Scan(&p.ID, &p.OwnerID, &p.Title, &p.Address, &p.City, &p.PropertyType)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Property{}, models.ErrPropertyNotFound
	}
	if err != nil {
		return models.Property{}, err
	}
	return p, nil
}
