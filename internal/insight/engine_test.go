package insight

import (
	"context"
	"errors"
	"testing"

	"github.com/hirevox/hirevox/internal/providers/llm"
)

// fakeProvider replays scripted responses in order and counts calls.
type fakeProvider struct {
	responses []llm.Response
	errs      []error
	calls     int
	lastReq   llm.Request
}

func (f *fakeProvider) Complete(ctx context.Context, req llm.Request) (llm.Response, error) {
	i := f.calls
	f.calls++
	f.lastReq = req
	if i < len(f.errs) && f.errs[i] != nil {
		return llm.Response{}, f.errs[i]
	}
	if i < len(f.responses) {
		return f.responses[i], nil
	}
	return llm.Response{}, errors.New("fake: no scripted response")
}

func (f *fakeProvider) Close() error { return nil }

const goodJSON = `{"schema_version":1,"summary":"Strong systems depth.","tags":["systems"],"followup":"What broke first under load?"}`

func cloudInput() Input {
	return Input{
		Mode:            ModeCloud,
		TurnID:          "t1",
		Snippet:         "we sharded the primary store and added a write-ahead queue to absorb spikes from the mobile clients",
		TokenBudgetLeft: 5000,
	}
}

func TestGenerateInsight_CloudHappyPath(t *testing.T) {
	fake := &fakeProvider{responses: []llm.Response{
		{Text: goodJSON, Usage: llm.Usage{PromptTokens: 100, CompletionTokens: 40}},
	}}
	e := NewEngine(fake, nil)

	res := e.GenerateInsight(context.Background(), cloudInput())
	if fake.calls != 1 {
		t.Fatalf("expected 1 call, got %d", fake.calls)
	}
	if res.UsedTokens != 140 {
		t.Fatalf("got %d tokens, want 140", res.UsedTokens)
	}
	if res.Insight.Summary != "Strong systems depth." {
		t.Fatalf("got %q", res.Insight.Summary)
	}
	if !fake.lastReq.JSONMode {
		t.Fatal("cloud call must request JSON mode")
	}
}

func TestGenerateInsight_ZeroBudgetSkipsNetwork(t *testing.T) {
	fake := &fakeProvider{}
	e := NewEngine(fake, nil)

	res := e.GenerateInsight(context.Background(), Input{
		Mode:    ModeCloud,
		TurnID:  "t1",
		Snippet: "yes",
	})
	if fake.calls != 0 {
		t.Fatalf("no network call expected, got %d", fake.calls)
	}
	if res.UsedTokens != 0 {
		t.Fatalf("got %d tokens, want 0", res.UsedTokens)
	}
	if err := Validate(res.Insight); err != nil {
		t.Fatalf("rules output invalid: %v", err)
	}
}

func TestGenerateInsight_NetworkErrorDegrades(t *testing.T) {
	fake := &fakeProvider{errs: []error{errors.New("dial tcp: i/o timeout")}}
	e := NewEngine(fake, nil)

	res := e.GenerateInsight(context.Background(), cloudInput())
	if res.UsedTokens != 0 {
		t.Fatalf("fallback must cost zero, got %d", res.UsedTokens)
	}
	if !hasFlag(res.Insight, FlagModelUnavailable) {
		t.Fatalf("expected %s flag, got %v", FlagModelUnavailable, res.Insight.Flags)
	}
	if err := Validate(res.Insight); err != nil {
		t.Fatalf("fallback insight invalid: %v", err)
	}
}

func TestGenerateInsight_SchemaFailureRetriesOnce(t *testing.T) {
	fake := &fakeProvider{responses: []llm.Response{
		{Text: `{"schema_version":7,"summary":"wrong version"}`, Usage: llm.Usage{PromptTokens: 50}},
		{Text: goodJSON, Usage: llm.Usage{CompletionTokens: 30}},
	}}
	e := NewEngine(fake, nil)

	res := e.GenerateInsight(context.Background(), cloudInput())
	if fake.calls != 2 {
		t.Fatalf("expected retry, got %d calls", fake.calls)
	}
	if res.UsedTokens != 80 {
		t.Fatalf("both calls bill: got %d, want 80", res.UsedTokens)
	}
	if !hasFlag(res.Insight, FlagSchemaRejected) {
		t.Fatal("retried insight should carry the schema_rejected flag")
	}
}

func TestGenerateInsight_DoubleSchemaFailureDegrades(t *testing.T) {
	fake := &fakeProvider{responses: []llm.Response{
		{Text: "I'd rather answer in prose, thanks."},
		{Text: "Still prose."},
	}}
	e := NewEngine(fake, nil)

	res := e.GenerateInsight(context.Background(), cloudInput())
	if fake.calls != 2 {
		t.Fatalf("expected exactly 2 calls, got %d", fake.calls)
	}
	if res.UsedTokens != 0 {
		t.Fatalf("fallback must cost zero, got %d", res.UsedTokens)
	}
	if !hasFlag(res.Insight, FlagModelUnavailable) {
		t.Fatal("expected degraded flag")
	}
}

func TestGenerateInsight_NilProviderNeverPanics(t *testing.T) {
	e := NewEngine(nil, nil)
	res := e.GenerateInsight(context.Background(), cloudInput())
	if err := Validate(res.Insight); err != nil {
		t.Fatalf("invalid insight: %v", err)
	}
}

func TestGenerateFinalSummary_FallbackOnBadJSON(t *testing.T) {
	fake := &fakeProvider{responses: []llm.Response{
		{Text: "not json"},
		{Text: "also not json"},
	}}
	e := NewEngine(fake, nil)

	res := e.GenerateFinalSummary(context.Background(), FinalInput{
		Mode:            ModeCloud,
		Transcript:      []string{"we led the migration", "metrics improved by 20 percent"},
		TokenBudgetLeft: 1000,
	})
	if res.UsedTokens != 0 {
		t.Fatalf("fallback must cost zero, got %d", res.UsedTokens)
	}
	if !res.Summary.Degraded {
		t.Fatal("fallback summary should be marked degraded")
	}
}

func TestGenerateFinalSummary_CloudHappyPath(t *testing.T) {
	fake := &fakeProvider{responses: []llm.Response{
		{
			Text:  `{"overview":"Capable systems engineer.","strengths":["depth"],"risks":[],"topics":["systems"]}`,
			Usage: llm.Usage{PromptTokens: 200, CompletionTokens: 60},
		},
	}}
	e := NewEngine(fake, nil)

	res := e.GenerateFinalSummary(context.Background(), FinalInput{
		Mode:            ModeCloud,
		Transcript:      []string{"a long and winding answer"},
		TokenBudgetLeft: 1000,
	})
	if res.Summary.Overview != "Capable systems engineer." {
		t.Fatalf("got %q", res.Summary.Overview)
	}
	if res.UsedTokens != 260 {
		t.Fatalf("got %d, want 260", res.UsedTokens)
	}
}

func hasFlag(ins Insight, flag string) bool {
	for _, f := range ins.Flags {
		if f == flag {
			return true
		}
	}
	return false
}
