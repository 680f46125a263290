package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hirevox/hirevox/internal/models"
	pgrepo "github.com/hirevox/hirevox/internal/repositories/postgres"
	"github.com/hirevox/hirevox/internal/utils"
)

type AuthService interface {
	Register(ctx context.Context, email, password string) (*models.Recruiter, error)
	Login(ctx context.Context, email, password string) (*models.Recruiter, error)
}

type authService struct {
	recruiters pgrepo.RecruiterRepository
}

func NewAuthService(recruiters pgrepo.RecruiterRepository) AuthService {
	return &authService{recruiters: recruiters}
}

func (s *authService) Register(ctx context.Context, email, password string) (*models.Recruiter, error) {
	const op = "AuthService.Register"

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || len(password) < 8 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "email and a password of at least 8 chars are required", nil)
	}

	if _, err := s.recruiters.GetByEmail(ctx, email); err == nil {
		return nil, utils.E(utils.CodeConflict, op, "email already registered", nil)
	} else if !errors.Is(err, utils.ErrNotFound) {
		return nil, utils.E(utils.CodeInternal, op, "failed to check email", err)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to hash password", err)
	}

	rec := &models.Recruiter{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleRecruiter,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.recruiters.Create(ctx, rec); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create recruiter", err)
	}
	return rec, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*models.Recruiter, error) {
	const op = "AuthService.Login"

	email = strings.ToLower(strings.TrimSpace(email))
	rec, err := s.recruiters.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeUnauthorized, op, "invalid credentials", nil)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load recruiter", err)
	}
	if err := utils.CheckPassword(rec.PasswordHash, password); err != nil {
		return nil, utils.E(utils.CodeUnauthorized, op, "invalid credentials", nil)
	}

	now := time.Now().UTC()
	_ = s.recruiters.TouchSignIn(ctx, rec.ID, now)
	rec.LastSignInAt = now
	return rec, nil
}
