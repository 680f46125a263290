package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/hirevox/hirevox/internal/cache"
	"github.com/hirevox/hirevox/internal/models"
	pgrepo "github.com/hirevox/hirevox/internal/repositories/postgres"
	"github.com/hirevox/hirevox/internal/utils"
)

const campaignCacheTTL = 10 * time.Minute

type CampaignService interface {
	Create(ctx context.Context, ownerID, name, role, language, voice string, mode models.InterviewMode, softCap int, questions []models.Question) (*models.Campaign, error)
	Get(ctx context.Context, campaignID string) (*models.Campaign, error)
	ListByOwner(ctx context.Context, ownerID string, limit int) ([]models.Campaign, error)
	Questions(c *models.Campaign) []models.Question
}

type campaignService struct {
	campaigns pgrepo.CampaignRepository
	cache     cache.Cache
}

func NewCampaignService(campaigns pgrepo.CampaignRepository, c cache.Cache) CampaignService {
	return &campaignService{campaigns: campaigns, cache: c}
}

func (s *campaignService) Create(ctx context.Context, ownerID, name, role, language, voice string, mode models.InterviewMode, softCap int, questions []models.Question) (*models.Campaign, error) {
	const op = "CampaignService.Create"

	if ownerID == "" || name == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "owner_id and name are required", nil)
	}
	if mode != models.ModeStructured && mode != models.ModeConversational {
		return nil, utils.E(utils.CodeInvalidArgument, op, "mode must be structured or conversational", nil)
	}
	if softCap < 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "token_soft_cap must be >= 0", nil)
	}
	seen := map[string]bool{}
	for _, q := range questions {
		if q.ID == "" || q.Text == "" {
			return nil, utils.E(utils.CodeInvalidArgument, op, "every question needs an id and text", nil)
		}
		if seen[q.ID] {
			return nil, utils.E(utils.CodeInvalidArgument, op, "duplicate question id "+q.ID, nil)
		}
		seen[q.ID] = true
		if q.Difficulty < 1 || q.Difficulty > 3 {
			return nil, utils.E(utils.CodeInvalidArgument, op, "difficulty must be 1..3", nil)
		}
	}

	raw, err := json.Marshal(questions)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to encode questions", err)
	}

	now := time.Now().UTC()
	c := &models.Campaign{
		ID:           uuid.NewString(),
		OwnerID:      ownerID,
		Name:         name,
		Role:         role,
		Language:     language,
		Voice:        voice,
		Mode:         mode,
		TokenSoftCap: softCap,
		Questions:    datatypes.JSON(raw),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.campaigns.Create(ctx, c); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create campaign", err)
	}
	return c, nil
}

func (s *campaignService) Get(ctx context.Context, campaignID string) (*models.Campaign, error) {
	const op = "CampaignService.Get"

	if campaignID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "campaign_id is required", nil)
	}

	if s.cache != nil {
		var cached models.Campaign
		if hit, _ := s.cache.GetJSON(ctx, cache.CampaignKey(campaignID), &cached); hit {
			return &cached, nil
		}
	}

	c, err := s.campaigns.GetByID(ctx, campaignID)
	if err != nil {
		if err == utils.ErrNotFound {
			return nil, utils.E(utils.CodeNotFound, op, "campaign not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get campaign", err)
	}

	if s.cache != nil {
		_ = s.cache.SetJSON(ctx, cache.CampaignKey(campaignID), c, campaignCacheTTL)
	}
	return c, nil
}

func (s *campaignService) ListByOwner(ctx context.Context, ownerID string, limit int) ([]models.Campaign, error) {
	const op = "CampaignService.ListByOwner"

	if ownerID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "owner_id is required", nil)
	}
	out, err := s.campaigns.ListByOwner(ctx, ownerID, limit)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list campaigns", err)
	}
	return out, nil
}

// Questions decodes the campaign's scripted list; a broken or empty blob
// yields nil and the question bank falls back to its default script.
func (s *campaignService) Questions(c *models.Campaign) []models.Question {
	if c == nil || len(c.Questions) == 0 {
		return nil
	}
	var out []models.Question
	if err := json.Unmarshal(c.Questions, &out); err != nil {
		return nil
	}
	return out
}
