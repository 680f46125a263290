package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/hirevox/hirevox/internal/models"
	"github.com/hirevox/hirevox/internal/utils"
)

type RecruiterRepository interface {
	Create(ctx context.Context, rec *models.Recruiter) error
	GetByEmail(ctx context.Context, email string) (*models.Recruiter, error)
	TouchSignIn(ctx context.Context, id string, at time.Time) error
}

type recruiterRepo struct {
	db *gorm.DB
}

func NewRecruiterRepo(db *gorm.DB) RecruiterRepository {
	return &recruiterRepo{db: db}
}

func (r *recruiterRepo) Create(ctx context.Context, rec *models.Recruiter) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *recruiterRepo) GetByEmail(ctx context.Context, email string) (*models.Recruiter, error) {
	var rec models.Recruiter
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *recruiterRepo) TouchSignIn(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Recruiter{}).
		Where("id = ?", id).
		Update("last_sign_in_at", at).Error
}
