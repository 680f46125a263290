package interview

import (
	"time"

	"github.com/hirevox/hirevox/internal/insight"
	"github.com/hirevox/hirevox/internal/models"
)

// Turn is one candidate utterance. Only final turns enter the transcript;
// partial text lives in a single in-flight slot until finalized or cleared.
type Turn struct {
	ID    string    `json:"id"`
	Text  string    `json:"text"`
	Final bool      `json:"final"`
	TS    time.Time `json:"ts"`
}

// Snapshot is a read-only copy of the session aggregate. External callers
// (UI, handlers) read snapshots and issue commands; they never touch the
// live state.
type Snapshot struct {
	Started         bool                 `json:"started"`
	Finished        bool                 `json:"finished"`
	Mode            models.InterviewMode `json:"mode"`
	CurrentQuestion models.Question      `json:"current_question"`
	QuestionIndex   int                  `json:"question_index"`
	AskedIDs        []string             `json:"asked_ids"`
	Transcript      []Turn               `json:"transcript"`
	RollingSummary  string               `json:"rolling_summary"`
	TokensUsed      int                  `json:"tokens_used"`
	SoftCap         int                  `json:"soft_cap"`
	LLMMode         insight.Mode         `json:"llm_mode"`
	FollowupQueue   []string             `json:"followup_queue"`
	Generating      bool                 `json:"generating"`
	TagTally        map[string]int       `json:"tag_tally"`
}

// QuestionSource labels where an asked question came from.
const (
	SourceScripted   = "scripted"
	SourceDepthProbe = "depth-probe"
	SourceAIFollowup = "ai-followup"
)

// AdvanceResult reports what a single Advance call did.
type AdvanceResult struct {
	// Suppressed means the call was judged a duplicate of a just-accepted
	// advance and changed nothing.
	Suppressed bool
	// Stalled means conversational mode had nothing to ask yet. The current
	// question is unchanged; this is a wait, not a failure.
	Stalled bool
	// Finished means the session reached its terminal state.
	Finished bool
	// Changed means a new current question was installed.
	Changed  bool
	Question models.Question
	Index    int
	Source   string
}
