package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"github.com/hirevox/hirevox/internal/models"
	"github.com/hirevox/hirevox/internal/providers/llm"
	pgrepo "github.com/hirevox/hirevox/internal/repositories/postgres"
	"github.com/hirevox/hirevox/internal/utils"
)

type ContextDocService interface {
	// Add stores one reference document for a campaign. The embedding is
	// computed when an embedder is configured; keyword search always works.
	Add(ctx context.Context, campaignID, title, content string, keywords []string) (*models.ContextDoc, error)
}

type contextDocService struct {
	docs     pgrepo.ContextDocRepository
	embedder llm.Embedder
}

func NewContextDocService(docs pgrepo.ContextDocRepository, embedder llm.Embedder) ContextDocService {
	return &contextDocService{docs: docs, embedder: embedder}
}

func (s *contextDocService) Add(ctx context.Context, campaignID, title, content string, keywords []string) (*models.ContextDoc, error) {
	const op = "ContextDocService.Add"

	if campaignID == "" || content == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "campaign_id and content are required", nil)
	}

	doc := &models.ContextDoc{
		ID:         uuid.NewString(),
		CampaignID: campaignID,
		Title:      title,
		Content:    content,
		Keywords:   pq.StringArray(keywords),
		CreatedAt:  time.Now().UTC(),
	}

	if s.embedder != nil {
		vec, err := s.embedder.Embed(ctx, content)
		if err != nil {
			return nil, utils.E(utils.CodeUnavailable, op, "failed to embed document", err)
		}
		doc.Embedding = pgvector.NewVector(vec)
	}

	if err := s.docs.Insert(ctx, doc); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to store document", err)
	}
	return doc, nil
}
