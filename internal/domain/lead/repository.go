package lead

import (
	"context"
	"errors"
	"fmt"

	"leadcrm/internal/pkg/dberr"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository handles lead data access
type Repository struct {
	db *gorm.DB
}

// NewRepository creates lead repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns every lead, newest first, with the agent preloaded.
func (r *Repository) List(ctx context.Context) ([]Lead, error) {
	var leads []Lead
	err := r.db.WithContext(ctx).
		Preload("Agent").
		Order("created_at DESC, id DESC").
		Find(&leads).Error
	return leads, err
}

// GetByID loads a lead with its agent and its comment thread (newest first).
func (r *Repository) GetByID(ctx context.Context, id int64) (*Lead, error) {
	var l Lead
	err := r.db.WithContext(ctx).
		Preload("Agent").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC, id DESC")
		}).
		Preload("Comments.Author").
		First(&l, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrLeadNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// EmailExists checks uniqueness, ignoring the lead with excludeID.
func (r *Repository) EmailExists(ctx context.Context, email string, excludeID int64) (bool, error) {
	var n int64
	q := r.db.WithContext(ctx).Model(&Lead{}).Where("email = ?", email)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// Create inserts the lead and its initial comments in one transaction.
func (r *Repository) Create(ctx context.Context, l *Lead, comments []Comment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(l).Error; err != nil {
			return translate(err)
		}
		return insertComments(tx, l.ID, comments)
	})
}

// Update saves every column of the lead and appends comments.
func (r *Repository) Update(ctx context.Context, l *Lead, comments []Comment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(l).Error; err != nil {
			return translate(err)
		}
		return insertComments(tx, l.ID, comments)
	})
}

// Delete removes the lead and its comments.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// explicit: sqlite does not enforce ON DELETE CASCADE unless foreign_keys is on
		if err := tx.Where("lead_id = ?", id).Delete(&Comment{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&Lead{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrLeadNotFound
		}
		return nil
	})
}

// BulkCreate inserts all leads atomically in batches. Any failure rolls back every row.
func (r *Repository) BulkCreate(ctx context.Context, leads []*Lead, batchSize int) error {
	if len(leads) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).CreateInBatches(leads, batchSize).Error; err != nil {
			return translate(err)
		}
		return nil
	})
}

// AddComment appends a comment to an existing lead.
func (r *Repository) AddComment(ctx context.Context, c *Comment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&Lead{}).Where("id = ?", c.LeadID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return ErrLeadNotFound
		}
		if err := tx.Omit(clause.Associations).Create(c).Error; err != nil {
			return err
		}
		return tx.Preload("Author").First(c, c.ID).Error
	})
}

// ListComments returns the thread newest first.
func (r *Repository) ListComments(ctx context.Context, leadID int64) ([]Comment, error) {
	var comments []Comment
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("lead_id = ?", leadID).
		Order("created_at DESC, id DESC").
		Find(&comments).Error
	return comments, err
}

func insertComments(tx *gorm.DB, leadID int64, comments []Comment) error {
	if len(comments) == 0 {
		return nil
	}
	for i := range comments {
		comments[i].LeadID = leadID
	}
	if err := tx.Omit(clause.Associations).Create(&comments).Error; err != nil {
		return fmt.Errorf("insert comments: %w", err)
	}
	return nil
}

func translate(err error) error {
	if dberr.IsUniqueViolation(err) {
		return fmt.Errorf("%w: %v", ErrEmailExists, err)
	}
	return err
}
