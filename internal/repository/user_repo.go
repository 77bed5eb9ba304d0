package repository

import (
	"context"
	"errors"
	"strings"

	"leadcrm/internal/domain"
	"leadcrm/internal/pkg/dberr"

	"gorm.io/gorm"
)

var ErrUsernameTaken = errors.New("username already taken")

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	u.Username = strings.TrimSpace(u.Username)
	u.Email = strings.TrimSpace(strings.ToLower(u.Email))

	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if dberr.IsUniqueViolation(err) {
			return ErrUsernameTaken
		}
		return err
	}
	return nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).
		Where("username = ?", strings.TrimSpace(username)).
		First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// List returns all users ordered by username; used for agent choices.
func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	err := r.db.WithContext(ctx).Order("username ASC").Find(&users).Error
	return users, err
}

// FindByUsernames resolves usernames in one query. Unknown names are absent from the result.
func (r *UserRepository) FindByUsernames(ctx context.Context, usernames []string) (map[string]int64, error) {
	out := make(map[string]int64, len(usernames))
	if len(usernames) == 0 {
		return out, nil
	}

	var users []domain.User
	err := r.db.WithContext(ctx).
		Select("id", "username").
		Where("username IN ?", usernames).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		out[u.Username] = u.ID
	}
	return out, nil
}

// Delete removes the user and clears every lead, comment and import reference to it.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Table("leads").Where("agent_id = ?", id).Update("agent_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Table("lead_comments").Where("author_id = ?", id).Update("author_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Table("lead_imports").Where("user_id = ?", id).Update("user_id", nil).Error; err != nil {
			return err
		}
		res := tx.Delete(&domain.User{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
