package postgres

import (
	"context"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hirevox/hirevox/internal/models"
)

type ContextDocRepository interface {
	Insert(ctx context.Context, doc *models.ContextDoc) error
	// NearestByEmbedding returns the closest docs by cosine distance.
	NearestByEmbedding(ctx context.Context, campaignID string, embedding []float32, limit int) ([]models.ContextDoc, error)
	// SearchByKeyword is the fallback when no embedding is available.
	SearchByKeyword(ctx context.Context, campaignID, keyword string, limit int) ([]models.ContextDoc, error)
}

type contextDocRepo struct {
	db *gorm.DB
}

func NewContextDocRepo(db *gorm.DB) ContextDocRepository {
	return &contextDocRepo{db: db}
}

func (r *contextDocRepo) Insert(ctx context.Context, doc *models.ContextDoc) error {
	return r.db.WithContext(ctx).Create(doc).Error
}

func (r *contextDocRepo) NearestByEmbedding(ctx context.Context, campaignID string, embedding []float32, limit int) ([]models.ContextDoc, error) {
	if limit <= 0 {
		limit = 3
	}
	var out []models.ContextDoc
	err := r.db.WithContext(ctx).
		Where("campaign_id = ?", campaignID).
		Clauses(clause.OrderBy{Expression: clause.Expr{
			SQL:  "embedding <=> ?",
			Vars: []interface{}{pgvector.NewVector(embedding)},
		}}).
		Limit(limit).
		Find(&out).Error
	return out, err
}

func (r *contextDocRepo) SearchByKeyword(ctx context.Context, campaignID, keyword string, limit int) ([]models.ContextDoc, error) {
	if limit <= 0 {
		limit = 3
	}
	var out []models.ContextDoc
	err := r.db.WithContext(ctx).
		Where("campaign_id = ? AND (content ILIKE ? OR ? = ANY(keywords))", campaignID, "%"+keyword+"%", keyword).
		Limit(limit).
		Find(&out).Error
	return out, err
}
