package models

import (
	"time"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
)

// ContextDoc is one retrieved-context document in a campaign's RAG corpus.
// The insight engine receives the nearest few of these as "facts".
type ContextDoc struct {
	ID         string `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	CampaignID string `gorm:"column:campaign_id;type:uuid;index" json:"campaign_id"`
	Title      string `gorm:"column:title;type:text" json:"title"`
	Content    string `gorm:"column:content;type:text" json:"content"`

	// Keyword fallback for campaigns without an embedding provider.
	Keywords pq.StringArray `gorm:"column:keywords;type:text[]" json:"keywords"`

	Embedding pgvector.Vector `gorm:"column:embedding;type:vector(1536)" json:"embedding"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
}

func (ContextDoc) TableName() string { return "context_docs" }
