package questionbank

import (
	"strings"
	"testing"

	"github.com/hirevox/hirevox/internal/models"
)

const longAnswer = "We rebuilt the ingestion pipeline around a partitioned queue and cut p99 latency from nine seconds to under one while doubling throughput."

func TestAtClampsOutOfRange(t *testing.T) {
	b := New(nil)

	if got := b.At(-5).ID; got != "q1" {
		t.Fatalf("negative index: got %s, want q1", got)
	}
	last := b.At(b.Len() - 1)
	if got := b.At(b.Len() + 100); got.ID != last.ID {
		t.Fatalf("past-end index: got %s, want %s", got.ID, last.ID)
	}
	// saturation makes repeated "next" past the end idempotent
	if b.At(b.Len()) != b.At(b.Len()+1) {
		t.Fatal("saturated reads should be identical")
	}
}

func TestInitialIsFirstQuestion(t *testing.T) {
	b := New([]models.Question{
		{ID: "c1", Text: "first", Topic: models.TopicIntro, Difficulty: 1},
		{ID: "c2", Text: "second", Topic: models.TopicSystems, Difficulty: 2},
	})
	if b.Initial().ID != "c1" {
		t.Fatalf("got %s, want c1", b.Initial().ID)
	}
}

func TestFollowupOrNext_ShortAnswerSynthesizesProbe(t *testing.T) {
	b := New(nil)
	current := b.Initial()

	q, advance := b.FollowupOrNext("yes", current, 0)
	if advance {
		t.Fatal("short answer should not advance")
	}
	if q.ID != current.ID+models.FollowupSuffix {
		t.Fatalf("probe id: got %s, want %s", q.ID, current.ID+models.FollowupSuffix)
	}
	if q.Topic != current.Topic || q.Difficulty != current.Difficulty {
		t.Fatal("probe should inherit topic and difficulty")
	}
}

func TestFollowupOrNext_FewWordsIsShortEvenIfLong(t *testing.T) {
	b := New(nil)
	// over 60 chars but only 4 words
	answer := strings.Repeat("x", 30) + " " + strings.Repeat("y", 30) + " aa bb"
	_, advance := b.FollowupOrNext(answer, b.Initial(), 0)
	if advance {
		t.Fatal("answer with fewer than 10 words should trigger a probe")
	}
}

func TestFollowupOrNext_ProbeIsNotProbedAgain(t *testing.T) {
	b := New(nil)
	probe, _ := b.FollowupOrNext("no", b.Initial(), 0)

	q, advance := b.FollowupOrNext("still no", probe, 0)
	if !advance {
		t.Fatal("a probe answered briefly must still advance")
	}
	if q.ID != b.At(1).ID {
		t.Fatalf("got %s, want %s", q.ID, b.At(1).ID)
	}
}

func TestFollowupOrNext_LongAnswerAdvances(t *testing.T) {
	b := New(nil)

	q, advance := b.FollowupOrNext(longAnswer, b.At(2), 2)
	if !advance {
		t.Fatal("long answer should advance")
	}
	if q.ID != b.At(3).ID {
		t.Fatalf("got %s, want %s", q.ID, b.At(3).ID)
	}
}

func TestFollowupOrNext_AtEndRepeatsLast(t *testing.T) {
	b := New(nil)
	last := b.At(b.Len() - 1)

	q, advance := b.FollowupOrNext(longAnswer, last, b.Len()-1)
	if !advance {
		t.Fatal("expected advance at end of script")
	}
	if q.ID != last.ID {
		t.Fatalf("past-end should repeat last question, got %s", q.ID)
	}
}
