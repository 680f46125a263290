package models

import (
	"time"

	"gorm.io/datatypes"
)

// InterviewMode selects how the controller picks the next question.
type InterviewMode string

const (
	ModeStructured     InterviewMode = "structured"
	ModeConversational InterviewMode = "conversational"
)

type Campaign struct {
	ID        string `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	OwnerID   string `gorm:"column:owner_id;type:uuid;index" json:"owner_id"`
	Name      string `gorm:"column:name;type:text" json:"name"`
	Role      string `gorm:"column:role;type:text" json:"role"`
	Language  string `gorm:"column:language;type:text" json:"language"` // "en-US", "id-ID"
	Voice     string `gorm:"column:voice;type:text" json:"voice"`

	Mode         InterviewMode `gorm:"column:mode;type:text" json:"mode"`
	TokenSoftCap int           `gorm:"column:token_soft_cap;type:integer" json:"token_soft_cap"`

	// Ordered scripted question list, stored as raw JSON ([]Question).
	Questions datatypes.JSON `gorm:"column:questions;type:jsonb" json:"questions"`

	Metadata datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`
}

func (Campaign) TableName() string { return "campaigns" }
