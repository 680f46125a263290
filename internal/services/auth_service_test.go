package services

import (
	"context"
	"testing"
	"time"

	"github.com/hirevox/hirevox/internal/models"
	"github.com/hirevox/hirevox/internal/utils"
)

type fakeRecruiterRepo struct {
	byEmail map[string]*models.Recruiter
}

func newFakeRecruiterRepo() *fakeRecruiterRepo {
	return &fakeRecruiterRepo{byEmail: map[string]*models.Recruiter{}}
}

func (f *fakeRecruiterRepo) Create(_ context.Context, rec *models.Recruiter) error {
	cp := *rec
	f.byEmail[rec.Email] = &cp
	return nil
}

func (f *fakeRecruiterRepo) GetByEmail(_ context.Context, email string) (*models.Recruiter, error) {
	rec, ok := f.byEmail[email]
	if !ok {
		return nil, utils.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (f *fakeRecruiterRepo) TouchSignIn(_ context.Context, id string, at time.Time) error {
	for _, rec := range f.byEmail {
		if rec.ID == id {
			rec.LastSignInAt = at
		}
	}
	return nil
}

func TestRegisterThenLogin(t *testing.T) {
	svc := NewAuthService(newFakeRecruiterRepo())
	ctx := context.Background()

	rec, err := svc.Register(ctx, "Recruiter@Example.com", "long-enough-pass")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if rec.Email != "recruiter@example.com" {
		t.Fatalf("email not normalized: %q", rec.Email)
	}
	if rec.PasswordHash == "long-enough-pass" {
		t.Fatal("password stored in the clear")
	}

	got, err := svc.Login(ctx, "recruiter@example.com", "long-enough-pass")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if got.ID != rec.ID {
		t.Fatalf("logged in as %q, want %q", got.ID, rec.ID)
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc := NewAuthService(newFakeRecruiterRepo())
	ctx := context.Background()

	if _, err := svc.Register(ctx, "a@example.com", "long-enough-pass"); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, err := svc.Register(ctx, "a@example.com", "another-password")
	if !utils.IsCode(err, utils.CodeConflict) {
		t.Fatalf("err = %v, want CONFLICT", err)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := NewAuthService(newFakeRecruiterRepo())
	ctx := context.Background()

	if _, err := svc.Register(ctx, "a@example.com", "long-enough-pass"); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.Login(ctx, "a@example.com", "wrong"); !utils.IsCode(err, utils.CodeUnauthorized) {
		t.Fatalf("wrong password err = %v, want UNAUTHORIZED", err)
	}
	if _, err := svc.Login(ctx, "nobody@example.com", "whatever"); !utils.IsCode(err, utils.CodeUnauthorized) {
		t.Fatalf("unknown email err = %v, want UNAUTHORIZED", err)
	}
}
