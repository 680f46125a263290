package services

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/hirevox/hirevox/internal/models"
)

type fakeDocRepo struct {
	byVector  []models.ContextDoc
	byKeyword map[string][]models.ContextDoc
	vectorErr error
}

func (f *fakeDocRepo) Insert(_ context.Context, _ *models.ContextDoc) error { return nil }

func (f *fakeDocRepo) NearestByEmbedding(_ context.Context, _ string, _ []float32, _ int) ([]models.ContextDoc, error) {
	if f.vectorErr != nil {
		return nil, f.vectorErr
	}
	return f.byVector, nil
}

func (f *fakeDocRepo) SearchByKeyword(_ context.Context, _, keyword string, _ int) ([]models.ContextDoc, error) {
	return f.byKeyword[keyword], nil
}

type fakeEmbedder struct {
	err error
}

func (f *fakeEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []float32{0.1, 0.2}, nil
}

func testEntry() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func TestFactFinderUsesVectorSearch(t *testing.T) {
	repo := &fakeDocRepo{byVector: []models.ContextDoc{
		{ID: "doc-1", Content: "On-call runbook for the payments service."},
	}}
	find := NewFactFinder(&fakeEmbedder{}, repo, "camp-1", testEntry())

	facts := find(context.Background(), "I was on call for payments")
	if len(facts) != 1 || facts[0].ID != "doc-1" {
		t.Fatalf("facts = %+v", facts)
	}
}

func TestFactFinderFallsBackToKeyword(t *testing.T) {
	repo := &fakeDocRepo{
		vectorErr: errors.New("index offline"),
		byKeyword: map[string][]models.ContextDoc{
			"payments": {{ID: "doc-2", Content: "Payments architecture overview."}},
		},
	}
	find := NewFactFinder(&fakeEmbedder{}, repo, "camp-1", testEntry())

	facts := find(context.Background(), "I ran the payments team")
	if len(facts) != 1 || facts[0].ID != "doc-2" {
		t.Fatalf("facts = %+v", facts)
	}
}

func TestFactFinderNeverErrors(t *testing.T) {
	repo := &fakeDocRepo{vectorErr: errors.New("down"), byKeyword: map[string][]models.ContextDoc{}}
	find := NewFactFinder(&fakeEmbedder{err: errors.New("quota")}, repo, "camp-1", testEntry())

	if facts := find(context.Background(), "anything at all"); facts != nil {
		t.Fatalf("expected nil facts, got %+v", facts)
	}
}

func TestLongestWordSkipsShortTokens(t *testing.T) {
	if got := longestWord("I do it"); got != "" {
		t.Fatalf("got %q, want empty", got)
	}
	if got := longestWord("We migrated the database."); got != "migrated" {
		t.Fatalf("got %q, want migrated", got)
	}
}
