package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/hirevox/hirevox/internal/models"
	pgrepo "github.com/hirevox/hirevox/internal/repositories/postgres"
	"github.com/hirevox/hirevox/internal/utils"
)

const defaultInviteTTL = 7 * 24 * time.Hour

type InviteService interface {
	// Create returns the invite and the raw token, which is never stored.
	Create(ctx context.Context, campaignID, candidateName, candidateEmail string, ttl time.Duration) (*models.Invite, string, error)
	// Redeem validates the token and burns the invite, exactly once.
	Redeem(ctx context.Context, inviteID, rawToken string) (*models.Invite, error)
	ListByCampaign(ctx context.Context, campaignID string) ([]models.Invite, error)
}

type inviteService struct {
	invites pgrepo.InviteRepository
}

func NewInviteService(invites pgrepo.InviteRepository) InviteService {
	return &inviteService{invites: invites}
}

func (s *inviteService) Create(ctx context.Context, campaignID, candidateName, candidateEmail string, ttl time.Duration) (*models.Invite, string, error) {
	const op = "InviteService.Create"

	if campaignID == "" || candidateEmail == "" {
		return nil, "", utils.E(utils.CodeInvalidArgument, op, "campaign_id and candidate_email are required", nil)
	}
	if ttl <= 0 {
		ttl = defaultInviteTTL
	}

	raw, hash, err := utils.NewInviteToken()
	if err != nil {
		return nil, "", utils.E(utils.CodeInternal, op, "failed to generate token", err)
	}

	now := time.Now().UTC()
	inv := &models.Invite{
		ID:             uuid.NewString(),
		CampaignID:     campaignID,
		CandidateName:  candidateName,
		CandidateEmail: candidateEmail,
		TokenHash:      hash,
		Status:         models.InvitePending,
		CreatedAt:      now,
		ExpiresAt:      now.Add(ttl),
	}
	if err := s.invites.Create(ctx, inv); err != nil {
		return nil, "", utils.E(utils.CodeInternal, op, "failed to create invite", err)
	}
	return inv, raw, nil
}

func (s *inviteService) Redeem(ctx context.Context, inviteID, rawToken string) (*models.Invite, error) {
	const op = "InviteService.Redeem"

	if inviteID == "" || rawToken == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "invite_id and token are required", nil)
	}

	inv, err := s.invites.GetByID(ctx, inviteID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "invite not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load invite", err)
	}

	if time.Now().UTC().After(inv.ExpiresAt) {
		return nil, utils.E(utils.CodeGone, op, "invite expired", nil)
	}
	if inv.Status != models.InvitePending {
		return nil, utils.E(utils.CodeConflict, op, "invite already redeemed", nil)
	}
	if err := utils.CheckInviteToken(inv.TokenHash, rawToken); err != nil {
		return nil, utils.E(utils.CodeUnauthorized, op, "invalid invite token", nil)
	}

	now := time.Now().UTC()
	if err := s.invites.MarkRedeemed(ctx, inv.ID, now); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			// lost the race to another redemption
			return nil, utils.E(utils.CodeConflict, op, "invite already redeemed", nil)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to redeem invite", err)
	}

	inv.Status = models.InviteRedeemed
	inv.RedeemedAt = &now
	return inv, nil
}

func (s *inviteService) ListByCampaign(ctx context.Context, campaignID string) ([]models.Invite, error) {
	const op = "InviteService.ListByCampaign"

	if campaignID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "campaign_id is required", nil)
	}
	out, err := s.invites.ListByCampaign(ctx, campaignID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list invites", err)
	}
	return out, nil
}
