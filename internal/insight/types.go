package insight

import "time"

// Mode selects the generation path.
type Mode string

const (
	ModeCloud Mode = "cloud"
	ModeRules Mode = "rules"
)

// Fact is one retrieved context document handed to the engine.
type Fact struct {
	ID      string
	Title   string
	Content string
}

// Input for one insight generation. RollingSummary is the tail of recent
// final turns (~240 chars); Snippet is the tail of the current answer
// (~400 chars). At most 3 facts.
type Input struct {
	Mode            Mode
	TurnID          string
	RollingSummary  string
	Snippet         string
	Facts           []Fact
	TokenBudgetLeft int
}

// Insight is the schema-validated analysis of one candidate utterance.
type Insight struct {
	SchemaVersion int      `json:"schema_version"`
	TurnID        string   `json:"turn_id"`
	Summary       string   `json:"summary"`
	Tags          []string `json:"tags"`
	Citations     []string `json:"citations,omitempty"`
	Flags         []string `json:"flags,omitempty"`
	Followup      string   `json:"followup,omitempty"`
}

// Result wraps an insight with its cost. UsedTokens is zero whenever the
// rules path produced the insight, including after a cloud fallback.
type Result struct {
	Insight    Insight
	Latency    time.Duration
	UsedTokens int
}

// FinalInput for the end-of-session summary. Transcript carries the last
// turns of candidate text, newest last; TagTally is the accumulated tag
// counter from all recorded insights.
type FinalInput struct {
	Mode            Mode
	Transcript      []string
	TagTally        map[string]int
	TokenBudgetLeft int
}

// FinalSummary is the whole-interview rollup.
type FinalSummary struct {
	Overview  string   `json:"overview"`
	Strengths []string `json:"strengths"`
	Risks     []string `json:"risks"`
	Topics    []string `json:"topics"`
	Degraded  bool     `json:"degraded,omitempty"`
}

// FinalResult wraps a final summary with its cost.
type FinalResult struct {
	Summary    FinalSummary
	Latency    time.Duration
	UsedTokens int
}
