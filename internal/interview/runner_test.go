package interview

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/hirevox/hirevox/internal/insight"
	"github.com/hirevox/hirevox/internal/models"
	"github.com/hirevox/hirevox/internal/questionbank"
)

type recordingSpeaker struct {
	mu      sync.Mutex
	spoken  []string
	cancels int
}

func (s *recordingSpeaker) Speak(ctx context.Context, text string) {
	s.mu.Lock()
	s.spoken = append(s.spoken, text)
	s.mu.Unlock()
}

func (s *recordingSpeaker) Cancel() {
	s.mu.Lock()
	s.cancels++
	s.mu.Unlock()
}

func (s *recordingSpeaker) all() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.spoken...)
}

// runSession drives a runner synchronously: events are submitted first,
// then the loop runs until the session finishes or the timeout hits.
func runSession(t *testing.T, r *Runner, initial models.Question, events []Event) {
	t.Helper()
	for _, e := range events {
		if !r.Submit(e) {
			t.Fatal("event queue full")
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	r.Run(ctx, initial)
}

func TestRunner_StructuredFullPass(t *testing.T) {
	bank := questionbank.New(nil)
	ctrl := NewController(bank, Config{Mode: models.ModeStructured, ReentryWindow: time.Nanosecond})
	engine := insight.NewEngine(nil, nil) // rules path only
	speaker := &recordingSpeaker{}

	var turns, questions, insights int
	finished := false
	r := NewRunner(ctrl, engine, speaker, nil, Hooks{
		OnTurn:     func(Turn) { turns++ },
		OnQuestion: func(models.Question, int, string) { questions++ },
		OnInsight:  func(Turn, insight.Result) { insights++ },
		OnFinished: func() { finished = true },
	}, nil)

	events := make([]Event, 0, bank.Len())
	ts := time.Now()
	for i := 0; i < bank.Len(); i++ {
		ts = ts.Add(time.Second)
		events = append(events, Event{Kind: EventFinal, Text: detailedAnswer, TS: ts})
	}
	runSession(t, r, bank.Initial(), events)

	if !finished {
		t.Fatal("session should finish after answering every scripted question")
	}
	if turns != bank.Len() || insights != bank.Len() {
		t.Fatalf("got %d turns / %d insights, want %d each", turns, insights, bank.Len())
	}
	// initial question + 7 scripted advances; the last advance finishes
	if questions != bank.Len() {
		t.Fatalf("got %d questions asked, want %d", questions, bank.Len())
	}
	spoken := speaker.all()
	if len(spoken) == 0 || spoken[0] != bank.Initial().Text {
		t.Fatalf("first spoken text should be the initial question, got %v", spoken)
	}
}

func TestRunner_SpeakCancelsInflightAudio(t *testing.T) {
	bank := questionbank.New(nil)
	ctrl := NewController(bank, Config{Mode: models.ModeStructured, ReentryWindow: time.Nanosecond})
	speaker := &recordingSpeaker{}
	r := NewRunner(ctrl, insight.NewEngine(nil, nil), speaker, nil, Hooks{}, nil)

	runSession(t, r, bank.Initial(), []Event{
		{Kind: EventFinal, Text: detailedAnswer, TS: time.Now()},
		{Kind: EventFinish},
	})

	speaker.mu.Lock()
	defer speaker.mu.Unlock()
	if speaker.cancels != len(speaker.spoken) {
		t.Fatalf("every speak must cancel first: %d cancels, %d speaks", speaker.cancels, len(speaker.spoken))
	}
}

func TestRunner_ConversationalFollowupCycle(t *testing.T) {
	ctrl := NewController(questionbank.New(nil), Config{
		Mode:          models.ModeConversational,
		ReentryWindow: time.Nanosecond,
	})
	engine := insight.NewEngine(nil, nil) // rules path; short answers yield follow-ups
	speaker := &recordingSpeaker{}

	stalls := 0
	r := NewRunner(ctrl, engine, speaker, nil, Hooks{
		OnStall: func() { stalls++ },
	}, nil)

	initial := models.Question{ID: "q1", Text: "Tell me about yourself.", Topic: models.TopicIntro, Difficulty: 1}
	runSession(t, r, initial, []Event{
		// short answer: rules path produces a follow-up, session advances
		{Kind: EventFinal, Text: "yes", TS: time.Now()},
		// detailed, unhedged answer: no follow-up, deliberate stall
		{Kind: EventFinal, Text: detailedAnswer, TS: time.Now().Add(time.Second)},
		{Kind: EventFinish},
	})

	if stalls != 1 {
		t.Fatalf("expected exactly one stall, got %d", stalls)
	}
	snap := ctrl.Snapshot()
	if snap.QuestionIndex != 1 {
		t.Fatalf("one follow-up asked: index should be 1, got %d", snap.QuestionIndex)
	}
	if !snap.CurrentQuestion.IsFollowup() {
		t.Fatalf("current question should be the synthesized follow-up, got %+v", snap.CurrentQuestion)
	}
}

func TestRunner_EmptyFinalIsIgnored(t *testing.T) {
	bank := questionbank.New(nil)
	ctrl := NewController(bank, Config{Mode: models.ModeStructured, ReentryWindow: time.Nanosecond})
	r := NewRunner(ctrl, insight.NewEngine(nil, nil), nil, nil, Hooks{}, nil)

	runSession(t, r, bank.Initial(), []Event{
		{Kind: EventFinal, Text: "   ", TS: time.Now()},
		{Kind: EventFinish},
	})

	snap := ctrl.Snapshot()
	if len(snap.Transcript) != 0 {
		t.Fatalf("empty utterance recorded: %v", snap.Transcript)
	}
	if snap.QuestionIndex != 0 {
		t.Fatal("empty utterance must not advance")
	}
}

func TestRunner_FactsReachEngineInput(t *testing.T) {
	bank := questionbank.New(nil)
	ctrl := NewController(bank, Config{Mode: models.ModeStructured, ReentryWindow: time.Nanosecond})

	var gotFacts []insight.Fact
	finder := func(ctx context.Context, text string) []insight.Fact {
		return []insight.Fact{{ID: "doc-1", Title: "role", Content: "staff engineer"}}
	}
	r := NewRunner(ctrl, insight.NewEngine(nil, nil), nil, finder, Hooks{
		OnInsight: func(_ Turn, res insight.Result) {
			// rules path cites the first facts it was given
			for _, c := range res.Insight.Citations {
				gotFacts = append(gotFacts, insight.Fact{ID: c})
			}
		},
	}, nil)

	runSession(t, r, bank.Initial(), []Event{
		{Kind: EventFinal, Text: detailedAnswer, TS: time.Now()},
		{Kind: EventFinish},
	})

	if len(gotFacts) != 1 || gotFacts[0].ID != "doc-1" {
		t.Fatalf("retrieved facts should be cited, got %v", gotFacts)
	}
}
