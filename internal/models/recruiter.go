package models

import "time"

type RecruiterRole string

const (
	RoleRecruiter RecruiterRole = "recruiter"
	RoleAdmin     RecruiterRole = "admin"
)

type Recruiter struct {
	ID           string        `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Email        string        `gorm:"column:email;type:text;uniqueIndex" json:"email"`
	PasswordHash string        `gorm:"column:password_hash;type:text" json:"-"`
	Role         RecruiterRole `gorm:"column:role;type:text" json:"role"`

	CreatedAt    time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
	LastSignInAt time.Time `gorm:"column:last_sign_in_at;type:timestamptz" json:"last_sign_in_at"`
}

func (Recruiter) TableName() string { return "recruiters" }
