package interview

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hirevox/hirevox/internal/insight"
	"github.com/hirevox/hirevox/internal/models"
)

// EventKind identifies an inbound session event.
type EventKind string

const (
	EventPartial EventKind = "partial"
	EventFinal   EventKind = "final"
	EventSilence EventKind = "silence"
	EventNext    EventKind = "next" // explicit user "next question"
	EventFinish  EventKind = "finish"
)

// Event is one discrete external stimulus: a speech callback or an
// explicit user command.
type Event struct {
	Kind EventKind
	Text string
	TS   time.Time
}

// Speaker is the command sink toward the speech adapter. Speak must cancel
// any in-flight utterance first so audio never overlaps.
type Speaker interface {
	Speak(ctx context.Context, text string)
	Cancel()
}

// FactFinder retrieves up to a few context documents relevant to an
// utterance. Failures return nil facts; retrieval is best-effort.
type FactFinder func(ctx context.Context, text string) []insight.Fact

// Hooks are the runner's outbound notifications. Nil hooks are skipped.
type Hooks struct {
	OnTurn     func(turn Turn)
	OnInsight  func(turn Turn, res insight.Result)
	OnQuestion func(q models.Question, index int, source string)
	OnStall    func()
	OnLockout  func(tokensUsed int)
	OnFinished func()
}

// Runner drives a Controller from a single event channel. All state
// mutation happens on this one goroutine, which is what makes the ordering
// guarantees (transcript order, FIFO follow-ups) trivial to reason about.
type Runner struct {
	ctrl    *Controller
	engine  *insight.Engine
	speaker Speaker
	facts   FactFinder
	hooks   Hooks
	log     *logrus.Entry

	events chan Event
}

func NewRunner(ctrl *Controller, engine *insight.Engine, speaker Speaker, facts FactFinder, hooks Hooks, log *logrus.Entry) *Runner {
	if log == nil {
		log = logrus.NewEntry(logrus.New())
	}
	return &Runner{
		ctrl:    ctrl,
		engine:  engine,
		speaker: speaker,
		facts:   facts,
		hooks:   hooks,
		log:     log,
		events:  make(chan Event, 64),
	}
}

// Submit queues an event. Drops the event if the queue is full rather than
// blocking the caller; the speech adapter retries finals on its own.
func (r *Runner) Submit(evt Event) bool {
	select {
	case r.events <- evt:
		return true
	default:
		r.log.WithField("kind", evt.Kind).Warn("event queue full, dropping")
		return false
	}
}

// Run starts the session and consumes events until the context ends or the
// session finishes.
func (r *Runner) Run(ctx context.Context, initial models.Question) {
	r.ctrl.Start(initial)
	r.speak(ctx, initial.Text)
	if r.hooks.OnQuestion != nil {
		r.hooks.OnQuestion(initial, 0, SourceScripted)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case evt := <-r.events:
			if r.handle(ctx, evt) {
				return
			}
		}
	}
}

// handle applies one event. Returns true when the session is over.
func (r *Runner) handle(ctx context.Context, evt Event) bool {
	switch evt.Kind {
	case EventPartial:
		r.ctrl.PushPartial(evt.Text)

	case EventFinal:
		turn, ok := r.ctrl.PushFinal(evt.Text, evt.TS)
		if !ok {
			return false // empty utterance, ignore
		}
		if r.hooks.OnTurn != nil {
			r.hooks.OnTurn(turn)
		}
		return r.afterFinal(ctx, turn)

	case EventSilence:
		// nudge: repeat the current question
		r.speak(ctx, r.ctrl.Snapshot().CurrentQuestion.Text)

	case EventNext:
		return r.applyAdvance(ctx, r.ctrl.Advance())

	case EventFinish:
		r.ctrl.Finish()
		if r.hooks.OnFinished != nil {
			r.hooks.OnFinished()
		}
		return true
	}
	return false
}

// afterFinal runs the insight cycle for a finalized turn and then advances.
func (r *Runner) afterFinal(ctx context.Context, turn Turn) bool {
	var facts []insight.Fact
	if r.facts != nil {
		facts = r.facts(ctx, turn.Text)
	}

	lockedBefore := r.ctrl.LLMMode() == insight.ModeRules

	r.ctrl.SetGenerating(true)
	res := r.engine.GenerateInsight(ctx, r.ctrl.InsightInput(turn.ID, facts))
	r.ctrl.RecordInsight(res.Insight, res.Latency)
	r.ctrl.AddTokens(res.UsedTokens)
	r.ctrl.SetGenerating(false)

	if r.hooks.OnInsight != nil {
		r.hooks.OnInsight(turn, res)
	}
	if !lockedBefore && r.ctrl.LLMMode() == insight.ModeRules {
		snap := r.ctrl.Snapshot()
		r.log.WithField("tokens_used", snap.TokensUsed).Info("soft cap reached, locked to rules path")
		if r.hooks.OnLockout != nil {
			r.hooks.OnLockout(snap.TokensUsed)
		}
	}

	// queue the follow-up so it is consumed strictly FIFO with any others
	if r.ctrl.Snapshot().Mode == models.ModeConversational && res.Insight.Followup != "" {
		r.ctrl.EnqueueFollowup(res.Insight.Followup)
	}

	return r.applyAdvance(ctx, r.ctrl.Advance())
}

func (r *Runner) applyAdvance(ctx context.Context, adv AdvanceResult) bool {
	switch {
	case adv.Finished:
		if r.hooks.OnFinished != nil {
			r.hooks.OnFinished()
		}
		return true
	case adv.Changed:
		r.speak(ctx, adv.Question.Text)
		if r.hooks.OnQuestion != nil {
			r.hooks.OnQuestion(adv.Question, adv.Index, adv.Source)
		}
	case adv.Stalled:
		if r.hooks.OnStall != nil {
			r.hooks.OnStall()
		}
	}
	return false
}

func (r *Runner) speak(ctx context.Context, text string) {
	if r.speaker == nil {
		return
	}
	r.speaker.Cancel()
	r.speaker.Speak(ctx, text)
}
