package services

import (
	"context"
	"testing"

	"gorm.io/datatypes"

	"github.com/hirevox/hirevox/internal/models"
	"github.com/hirevox/hirevox/internal/utils"
)

type fakeCampaignRepo struct {
	campaigns map[string]*models.Campaign
}

func newFakeCampaignRepo() *fakeCampaignRepo {
	return &fakeCampaignRepo{campaigns: map[string]*models.Campaign{}}
}

func (f *fakeCampaignRepo) Create(_ context.Context, c *models.Campaign) error {
	cp := *c
	f.campaigns[c.ID] = &cp
	return nil
}

func (f *fakeCampaignRepo) GetByID(_ context.Context, id string) (*models.Campaign, error) {
	c, ok := f.campaigns[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCampaignRepo) ListByOwner(_ context.Context, ownerID string, _ int) ([]models.Campaign, error) {
	var out []models.Campaign
	for _, c := range f.campaigns {
		if c.OwnerID == ownerID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func validQuestions() []models.Question {
	return []models.Question{
		{ID: "q1", Text: "Tell me about yourself.", Topic: models.TopicIntro, Difficulty: 1},
		{ID: "q2", Text: "Describe a hard bug you fixed.", Topic: models.TopicSystems, Difficulty: 2},
	}
}

func TestCampaignCreateValidation(t *testing.T) {
	svc := NewCampaignService(newFakeCampaignRepo(), nil)
	ctx := context.Background()

	cases := []struct {
		name      string
		mode      models.InterviewMode
		softCap   int
		questions []models.Question
	}{
		{"bad mode", "freeform", 0, validQuestions()},
		{"negative cap", models.ModeStructured, -1, validQuestions()},
		{"duplicate id", models.ModeStructured, 0, []models.Question{
			{ID: "q1", Text: "a", Difficulty: 1},
			{ID: "q1", Text: "b", Difficulty: 1},
		}},
		{"bad difficulty", models.ModeStructured, 0, []models.Question{
			{ID: "q1", Text: "a", Difficulty: 9},
		}},
		{"missing text", models.ModeStructured, 0, []models.Question{
			{ID: "q1", Difficulty: 1},
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, "owner-1", "SWE screen", "", "en", "", tc.mode, tc.softCap, tc.questions)
			if !utils.IsCode(err, utils.CodeInvalidArgument) {
				t.Fatalf("err = %v, want INVALID_ARGUMENT", err)
			}
		})
	}
}

func TestCampaignQuestionsRoundTrip(t *testing.T) {
	svc := NewCampaignService(newFakeCampaignRepo(), nil)

	c, err := svc.Create(context.Background(), "owner-1", "SWE screen", "backend", "en", "",
		models.ModeConversational, 2000, validQuestions())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	qs := svc.Questions(c)
	if len(qs) != 2 || qs[0].ID != "q1" || qs[1].Topic != models.TopicSystems {
		t.Fatalf("unexpected questions: %+v", qs)
	}
}

func TestCampaignQuestionsBrokenBlobYieldsNil(t *testing.T) {
	svc := NewCampaignService(newFakeCampaignRepo(), nil)

	c := &models.Campaign{Questions: datatypes.JSON("{not json")}
	if qs := svc.Questions(c); qs != nil {
		t.Fatalf("expected nil, got %+v", qs)
	}
}

func TestCampaignGetNotFound(t *testing.T) {
	svc := NewCampaignService(newFakeCampaignRepo(), nil)

	_, err := svc.Get(context.Background(), "nope")
	if !utils.IsCode(err, utils.CodeNotFound) {
		t.Fatalf("err = %v, want NOT_FOUND", err)
	}
}
