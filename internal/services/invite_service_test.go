package services

import (
	"context"
	"testing"
	"time"

	"github.com/hirevox/hirevox/internal/models"
	"github.com/hirevox/hirevox/internal/utils"
)

type fakeInviteRepo struct {
	invites map[string]*models.Invite
}

func newFakeInviteRepo() *fakeInviteRepo {
	return &fakeInviteRepo{invites: map[string]*models.Invite{}}
}

func (f *fakeInviteRepo) Create(_ context.Context, inv *models.Invite) error {
	cp := *inv
	f.invites[inv.ID] = &cp
	return nil
}

func (f *fakeInviteRepo) GetByID(_ context.Context, id string) (*models.Invite, error) {
	inv, ok := f.invites[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	cp := *inv
	return &cp, nil
}

func (f *fakeInviteRepo) ListByCampaign(_ context.Context, campaignID string) ([]models.Invite, error) {
	var out []models.Invite
	for _, inv := range f.invites {
		if inv.CampaignID == campaignID {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (f *fakeInviteRepo) MarkRedeemed(_ context.Context, id string, at time.Time) error {
	inv, ok := f.invites[id]
	if !ok || inv.Status != models.InvitePending {
		return utils.ErrNotFound
	}
	inv.Status = models.InviteRedeemed
	inv.RedeemedAt = &at
	return nil
}

func TestInviteRedeemHappyPath(t *testing.T) {
	repo := newFakeInviteRepo()
	svc := NewInviteService(repo)

	inv, raw, err := svc.Create(context.Background(), "camp-1", "Ada", "ada@example.com", time.Hour)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if raw == "" {
		t.Fatal("expected a raw token")
	}
	if inv.TokenHash == raw {
		t.Fatal("raw token must not be stored as-is")
	}

	got, err := svc.Redeem(context.Background(), inv.ID, raw)
	if err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if got.Status != models.InviteRedeemed {
		t.Fatalf("status = %q, want redeemed", got.Status)
	}
}

func TestInviteRedeemIsSingleUse(t *testing.T) {
	repo := newFakeInviteRepo()
	svc := NewInviteService(repo)

	inv, raw, err := svc.Create(context.Background(), "camp-1", "Ada", "ada@example.com", time.Hour)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Redeem(context.Background(), inv.ID, raw); err != nil {
		t.Fatalf("first redeem: %v", err)
	}

	_, err = svc.Redeem(context.Background(), inv.ID, raw)
	if !utils.IsCode(err, utils.CodeConflict) {
		t.Fatalf("second redeem err = %v, want CONFLICT", err)
	}
}

func TestInviteRedeemRejectsWrongToken(t *testing.T) {
	repo := newFakeInviteRepo()
	svc := NewInviteService(repo)

	inv, _, err := svc.Create(context.Background(), "camp-1", "Ada", "ada@example.com", time.Hour)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = svc.Redeem(context.Background(), inv.ID, "not-the-token")
	if !utils.IsCode(err, utils.CodeUnauthorized) {
		t.Fatalf("err = %v, want UNAUTHORIZED", err)
	}

	// a failed attempt must not burn the invite
	got, _ := repo.GetByID(context.Background(), inv.ID)
	if got.Status != models.InvitePending {
		t.Fatalf("status = %q, want pending", got.Status)
	}
}

func TestInviteRedeemExpired(t *testing.T) {
	repo := newFakeInviteRepo()
	svc := NewInviteService(repo)

	inv, raw, err := svc.Create(context.Background(), "camp-1", "Ada", "ada@example.com", time.Hour)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	repo.invites[inv.ID].ExpiresAt = time.Now().UTC().Add(-time.Minute)

	_, err = svc.Redeem(context.Background(), inv.ID, raw)
	if !utils.IsCode(err, utils.CodeGone) {
		t.Fatalf("err = %v, want GONE", err)
	}
}
