package interview

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hirevox/hirevox/internal/insight"
	"github.com/hirevox/hirevox/internal/models"
	"github.com/hirevox/hirevox/internal/questionbank"
)

const (
	// DefaultConversationalCap bounds how many questions a conversational
	// session asks before finishing.
	DefaultConversationalCap = 8

	// DefaultReentryWindow suppresses duplicate Advance calls arriving
	// within this window (UI double-clicks, duplicate STT finals). Tuned
	// against double-click timing; configurable, not a hard requirement.
	DefaultReentryWindow = 300 * time.Millisecond

	// rollingTurns is how many recent final turns feed the rolling summary.
	rollingTurns = 3

	snippetTail = 400
	summaryTail = 240
)

// Config for one controller instance.
type Config struct {
	Mode              models.InterviewMode
	SoftCap           int
	LLMMode           insight.Mode
	ConversationalCap int
	ReentryWindow     time.Duration
}

// Controller owns the session aggregate. All mutation goes through its
// methods; everyone else reads snapshots. Methods are safe for concurrent
// use, but the intended model is a single event-loop writer.
type Controller struct {
	mu   sync.Mutex
	bank *questionbank.Bank
	cfg  Config

	started  bool
	finished bool

	current       models.Question
	questionIndex int
	askedIDs      []string

	transcript     []Turn
	partial        string
	rollingSummary string
	lastAnswer     string

	lastInsight     *insight.Insight
	insightConsumed bool
	tagTally        map[string]int
	generating      bool

	tokensUsed int
	llmMode    insight.Mode

	followupQueue []string

	lastAdvanceAt time.Time
	advanceGen    uint64

	now func() time.Time // injectable clock
}

func NewController(bank *questionbank.Bank, cfg Config) *Controller {
	if cfg.ConversationalCap <= 0 {
		cfg.ConversationalCap = DefaultConversationalCap
	}
	if cfg.ReentryWindow <= 0 {
		cfg.ReentryWindow = DefaultReentryWindow
	}
	if cfg.Mode == "" {
		cfg.Mode = models.ModeStructured
	}
	if cfg.LLMMode == "" {
		cfg.LLMMode = insight.ModeRules
	}
	return &Controller{
		bank:     bank,
		cfg:      cfg,
		llmMode:  cfg.LLMMode,
		tagTally: map[string]int{},
		now:      time.Now,
	}
}

// Start (re)initializes all session-local fields and enters the active
// state. Token usage and the llm-mode lockout deliberately survive a
// restart: the budget window outlives individual session starts and only
// Reset opens a fresh one.
func (c *Controller) Start(initial models.Question) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.started = true
	c.finished = false
	c.current = initial
	c.questionIndex = 0
	c.askedIDs = []string{initial.ID}
	c.transcript = nil
	c.partial = ""
	c.rollingSummary = ""
	c.lastAnswer = ""
	c.lastInsight = nil
	c.insightConsumed = false
	c.tagTally = map[string]int{}
	c.generating = false
	c.followupQueue = nil
	c.lastAdvanceAt = time.Time{}
}

// Reset returns to idle and opens a fresh budget window.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.started = false
	c.finished = false
	c.tokensUsed = 0
	c.llmMode = c.cfg.LLMMode
	c.transcript = nil
	c.followupQueue = nil
	c.lastInsight = nil
	c.tagTally = map[string]int{}
}

// PushPartial stores in-flight partial text from the speech adapter.
func (c *Controller) PushPartial(text string) {
	c.mu.Lock()
	c.partial = text
	c.mu.Unlock()
}

// PushFinal appends a finalized turn and refreshes the rolling summary.
// Empty or whitespace-only utterances are ignored. Deduplication of
// repeated identical finals is the caller's job, not ours.
func (c *Controller) PushFinal(text string, ts time.Time) (Turn, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Turn{}, false
	}

	turn := Turn{ID: uuid.NewString(), Text: trimmed, Final: true, TS: ts}
	c.transcript = append(c.transcript, turn)
	c.partial = ""
	c.lastAnswer = trimmed

	// rolling summary: last 3 final turns in arrival order
	start := len(c.transcript) - rollingTurns
	if start < 0 {
		start = 0
	}
	parts := make([]string, 0, rollingTurns)
	for _, t := range c.transcript[start:] {
		parts = append(parts, t.Text)
	}
	c.rollingSummary = strings.Join(parts, " ")

	return turn, true
}

// RecordInsight stores the latest insight and folds its tags into the
// running tally.
func (c *Controller) RecordInsight(ins insight.Insight, latency time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	copied := ins
	c.lastInsight = &copied
	c.insightConsumed = false
	for _, tag := range ins.Tags {
		c.tagTally[tag]++
	}
	_ = latency // retained for callers that log it; not part of state
}

// SetGenerating marks the insight-pending sub-state. While set,
// conversational Advance stalls rather than racing ahead of the follow-up.
func (c *Controller) SetGenerating(v bool) {
	c.mu.Lock()
	c.generating = v
	c.mu.Unlock()
}

// AddTokens applies a token cost. Usage is monotonic; crossing the soft
// cap locks llm mode to rules for the rest of the budget window, and
// nothing short of Reset re-promotes it.
func (c *Controller) AddTokens(n int) {
	if n < 0 {
		panic("interview: negative token delta")
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.tokensUsed += n
	if c.cfg.SoftCap > 0 && c.tokensUsed >= c.cfg.SoftCap {
		c.llmMode = insight.ModeRules
	}
}

// LLMMode returns the currently effective generation mode.
func (c *Controller) LLMMode() insight.Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.llmMode
}

// BudgetLeft returns the remaining soft-cap headroom, never negative.
func (c *Controller) BudgetLeft() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cfg.SoftCap <= 0 {
		return 1 << 20
	}
	left := c.cfg.SoftCap - c.tokensUsed
	if left < 0 {
		left = 0
	}
	return left
}

// EnqueueFollowup appends an AI-generated question text to the FIFO queue.
func (c *Controller) EnqueueFollowup(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	c.mu.Lock()
	c.followupQueue = append(c.followupQueue, text)
	// the queued copy supersedes the lastInsight fallback path
	if c.lastInsight != nil && strings.TrimSpace(c.lastInsight.Followup) == text {
		c.insightConsumed = true
	}
	c.mu.Unlock()
}

// Finish marks the session terminal.
func (c *Controller) Finish() {
	c.mu.Lock()
	c.finished = true
	c.mu.Unlock()
}

// Advance runs the next-question decision. A call landing within the
// reentry window of the previous accepted advance is treated as a
// duplicate UI event and suppressed without touching state.
func (c *Controller) Advance() AdvanceResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.started {
		panic("interview: Advance before Start")
	}
	if c.finished {
		return AdvanceResult{Finished: true}
	}

	now := c.now()
	if !c.lastAdvanceAt.IsZero() && now.Sub(c.lastAdvanceAt) < c.cfg.ReentryWindow {
		return AdvanceResult{Suppressed: true}
	}

	var res AdvanceResult
	if c.cfg.Mode == models.ModeConversational {
		res = c.advanceConversational()
	} else {
		res = c.advanceStructured()
	}

	if res.Changed || res.Finished {
		c.lastAdvanceAt = now
		c.advanceGen++
		c.lastAnswer = ""
	}
	return res
}

// advanceConversational prefers the queue, then the unconsumed follow-up
// of the last insight, and otherwise stalls on purpose: conversational
// mode never falls back to the scripted bank.
func (c *Controller) advanceConversational() AdvanceResult {
	if c.generating {
		return AdvanceResult{Stalled: true}
	}
	if c.questionIndex+1 >= c.cfg.ConversationalCap {
		c.finished = true
		return AdvanceResult{Finished: true}
	}

	var text string
	switch {
	case len(c.followupQueue) > 0:
		text = c.followupQueue[0]
		c.followupQueue = c.followupQueue[1:]
	case c.lastInsight != nil && !c.insightConsumed && strings.TrimSpace(c.lastInsight.Followup) != "":
		text = strings.TrimSpace(c.lastInsight.Followup)
		c.insightConsumed = true
	default:
		return AdvanceResult{Stalled: true}
	}

	parent := strings.TrimSuffix(c.current.ID, models.AIFollowupSuffix)
	q := models.Question{
		ID:         parent + models.AIFollowupSuffix,
		Text:       text,
		Topic:      c.current.Topic,
		Difficulty: c.current.Difficulty,
	}
	// progress counter, not an array position
	c.questionIndex++
	c.current = q
	c.askedIDs = append(c.askedIDs, q.ID)

	return AdvanceResult{Changed: true, Question: q, Index: c.questionIndex, Source: SourceAIFollowup}
}

func (c *Controller) advanceStructured() AdvanceResult {
	q, advance := c.bank.FollowupOrNext(c.lastAnswer, c.current, c.questionIndex)

	if !advance {
		c.current = q
		c.askedIDs = append(c.askedIDs, q.ID)
		return AdvanceResult{Changed: true, Question: q, Index: c.questionIndex, Source: SourceDepthProbe}
	}

	if c.questionIndex >= c.bank.Len()-1 {
		c.finished = true
		return AdvanceResult{Finished: true}
	}

	c.questionIndex++
	c.current = q
	c.askedIDs = append(c.askedIDs, q.ID)
	return AdvanceResult{Changed: true, Question: q, Index: c.questionIndex, Source: SourceScripted}
}

// InsightInput assembles the engine input from current state plus the
// retrieved facts.
func (c *Controller) InsightInput(turnID string, facts []insight.Fact) insight.Input {
	c.mu.Lock()
	defer c.mu.Unlock()

	budget := 1 << 20
	if c.cfg.SoftCap > 0 {
		budget = c.cfg.SoftCap - c.tokensUsed
		if budget < 0 {
			budget = 0
		}
	}
	return insight.Input{
		Mode:            c.llmMode,
		TurnID:          turnID,
		RollingSummary:  tail(c.rollingSummary, summaryTail),
		Snippet:         tail(c.lastAnswer, snippetTail),
		Facts:           facts,
		TokenBudgetLeft: budget,
	}
}

// FinalInput assembles the end-of-session summary input.
func (c *Controller) FinalInput() insight.FinalInput {
	c.mu.Lock()
	defer c.mu.Unlock()

	texts := make([]string, 0, len(c.transcript))
	for _, t := range c.transcript {
		texts = append(texts, t.Text)
	}
	tally := make(map[string]int, len(c.tagTally))
	for k, v := range c.tagTally {
		tally[k] = v
	}
	budget := 1 << 20
	if c.cfg.SoftCap > 0 {
		budget = c.cfg.SoftCap - c.tokensUsed
		if budget < 0 {
			budget = 0
		}
	}
	return insight.FinalInput{
		Mode:            c.llmMode,
		Transcript:      texts,
		TagTally:        tally,
		TokenBudgetLeft: budget,
	}
}

// Snapshot copies the aggregate for external readers.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		Started:         c.started,
		Finished:        c.finished,
		Mode:            c.cfg.Mode,
		CurrentQuestion: c.current,
		QuestionIndex:   c.questionIndex,
		AskedIDs:        append([]string(nil), c.askedIDs...),
		Transcript:      append([]Turn(nil), c.transcript...),
		RollingSummary:  c.rollingSummary,
		TokensUsed:      c.tokensUsed,
		SoftCap:         c.cfg.SoftCap,
		LLMMode:         c.llmMode,
		FollowupQueue:   append([]string(nil), c.followupQueue...),
		Generating:      c.generating,
		TagTally:        make(map[string]int, len(c.tagTally)),
	}
	for k, v := range c.tagTally {
		snap.TagTally[k] = v
	}
	return snap
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
