package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/hirevox/hirevox/internal/models"
	"github.com/hirevox/hirevox/internal/utils"
)

type InviteRepository interface {
	Create(ctx context.Context, inv *models.Invite) error
	GetByID(ctx context.Context, id string) (*models.Invite, error)
	ListByCampaign(ctx context.Context, campaignID string) ([]models.Invite, error)
	MarkRedeemed(ctx context.Context, id string, at time.Time) error
}

type inviteRepo struct {
	db *gorm.DB
}

func NewInviteRepo(db *gorm.DB) InviteRepository {
	return &inviteRepo{db: db}
}

func (r *inviteRepo) Create(ctx context.Context, inv *models.Invite) error {
	return r.db.WithContext(ctx).Create(inv).Error
}

func (r *inviteRepo) GetByID(ctx context.Context, id string) (*models.Invite, error) {
	var inv models.Invite
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *inviteRepo) ListByCampaign(ctx context.Context, campaignID string) ([]models.Invite, error) {
	var out []models.Invite
	err := r.db.WithContext(ctx).
		Where("campaign_id = ?", campaignID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

// MarkRedeemed flips a pending invite exactly once; a second redemption
// matches zero rows and reports conflict upstream.
func (r *inviteRepo) MarkRedeemed(ctx context.Context, id string, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&models.Invite{}).
		Where("id = ? AND status = ?", id, models.InvitePending).
		Updates(map[string]any{
			"status":      models.InviteRedeemed,
			"redeemed_at": at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.ErrNotFound
	}
	return nil
}
