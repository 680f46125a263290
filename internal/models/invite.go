package models

import "time"

type InviteStatus string

const (
	InvitePending  InviteStatus = "pending"
	InviteRedeemed InviteStatus = "redeemed"
	InviteExpired  InviteStatus = "expired"
)

// Invite grants one candidate one interview session. The raw token is only
// ever returned at creation time; the row keeps a bcrypt hash.
type Invite struct {
	ID             string       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	CampaignID     string       `gorm:"column:campaign_id;type:uuid;index" json:"campaign_id"`
	CandidateName  string       `gorm:"column:candidate_name;type:text" json:"candidate_name"`
	CandidateEmail string       `gorm:"column:candidate_email;type:text;index" json:"candidate_email"`
	TokenHash      string       `gorm:"column:token_hash;type:text" json:"-"`
	Status         InviteStatus `gorm:"column:status;type:text" json:"status"`

	CreatedAt  time.Time  `gorm:"column:created_at;type:timestamptz" json:"created_at"`
	ExpiresAt  time.Time  `gorm:"column:expires_at;type:timestamptz" json:"expires_at"`
	RedeemedAt *time.Time `gorm:"column:redeemed_at;type:timestamptz" json:"redeemed_at,omitempty"`
}

func (Invite) TableName() string { return "invites" }
