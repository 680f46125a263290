package services

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/hirevox/hirevox/internal/insight"
	"github.com/hirevox/hirevox/internal/interview"
	"github.com/hirevox/hirevox/internal/models"
	"github.com/hirevox/hirevox/internal/providers/llm"
	pgrepo "github.com/hirevox/hirevox/internal/repositories/postgres"
)

const factLimit = 3

// NewFactFinder builds the retrieval function handed to the interview
// runner. Retrieval is strictly best-effort: any failure logs and returns
// nil, never an error, so a flaky vector index cannot stall a turn.
func NewFactFinder(embedder llm.Embedder, docs pgrepo.ContextDocRepository, campaignID string, log *logrus.Entry) interview.FactFinder {
	if docs == nil {
		return nil
	}
	return func(ctx context.Context, text string) []insight.Fact {
		found := findDocs(ctx, embedder, docs, campaignID, text, log)
		if len(found) == 0 {
			return nil
		}
		facts := make([]insight.Fact, 0, len(found))
		for _, d := range found {
			facts = append(facts, insight.Fact{ID: d.ID, Title: d.Title, Content: d.Content})
		}
		return facts
	}
}

func findDocs(ctx context.Context, embedder llm.Embedder, docs pgrepo.ContextDocRepository, campaignID, text string, log *logrus.Entry) []models.ContextDoc {
	if embedder != nil {
		vec, err := embedder.Embed(ctx, text)
		if err == nil {
			out, err := docs.NearestByEmbedding(ctx, campaignID, vec, factLimit)
			if err == nil {
				return out
			}
			log.WithError(err).Warn("vector search failed, falling back to keyword")
		} else {
			log.WithError(err).Warn("embedding failed, falling back to keyword")
		}
	}

	kw := longestWord(text)
	if kw == "" {
		return nil
	}
	out, err := docs.SearchByKeyword(ctx, campaignID, kw, factLimit)
	if err != nil {
		log.WithError(err).Warn("keyword search failed")
		return nil
	}
	return out
}

// longestWord picks the most distinctive token of an utterance as a crude
// keyword. Good enough for the fallback path.
func longestWord(text string) string {
	best := ""
	for _, w := range strings.Fields(text) {
		w = strings.Trim(w, ".,!?;:\"'()")
		if len(w) > len(best) {
			best = w
		}
	}
	if len(best) < 4 {
		return ""
	}
	return strings.ToLower(best)
}
