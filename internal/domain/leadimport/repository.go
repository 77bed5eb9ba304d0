package leadimport

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Repository persists import audit records.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, rec *ImportRecord) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

// List returns the latest imports first.
func (r *Repository) List(ctx context.Context, limit int) ([]ImportRecord, error) {
	var out []ImportRecord
	err := r.db.WithContext(ctx).
		Preload("User").
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// DeleteBefore removes records created before cutoff and returns how many went.
func (r *Repository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&ImportRecord{})
	return res.RowsAffected, res.Error
}
