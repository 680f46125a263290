package questionbank

import (
	"strings"

	"github.com/hirevox/hirevox/internal/models"
)

// Depth thresholds for the structured-mode follow-up heuristic. An answer
// below either threshold earns one clarifying probe before the interview
// moves on. These are product-tuned constants, not NLP.
const (
	ShortAnswerChars = 60
	ShortAnswerWords = 10
)

const probeText = "Could you go a bit deeper on that? A concrete example would help."

// Bank holds a campaign's ordered scripted questions, read-only.
type Bank struct {
	questions []models.Question
}

// New builds a Bank from the campaign's scripted list. An empty list falls
// back to the default script so a session can always start.
func New(questions []models.Question) *Bank {
	if len(questions) == 0 {
		questions = DefaultScript()
	}
	out := make([]models.Question, len(questions))
	copy(out, questions)
	return &Bank{questions: out}
}

// Len returns the number of scripted questions.
func (b *Bank) Len() int { return len(b.questions) }

// Initial returns the first scripted question.
func (b *Bank) Initial() models.Question { return b.questions[0] }

// At returns the question at index, clamped to the last valid index.
// Out-of-range reads saturate instead of failing so that "next" past the
// end is idempotent.
func (b *Bank) At(index int) models.Question {
	if index < 0 {
		index = 0
	}
	if index >= len(b.questions) {
		index = len(b.questions) - 1
	}
	return b.questions[index]
}

// FollowupOrNext decides what to ask after an answer in structured mode.
// A short answer (trimmed length < ShortAnswerChars or fewer than
// ShortAnswerWords words) to a question that is not itself a probe earns a
// synthesized clarifying follow-up and advance=false. Anything else returns
// the next scripted question (saturating at the end) and advance=true.
func (b *Bank) FollowupOrNext(lastAnswer string, current models.Question, index int) (models.Question, bool) {
	trimmed := strings.TrimSpace(lastAnswer)
	short := len(trimmed) < ShortAnswerChars || len(strings.Fields(trimmed)) < ShortAnswerWords

	if short && !current.IsFollowup() {
		probe := models.Question{
			ID:         current.ID + models.FollowupSuffix,
			Text:       probeText,
			Topic:      current.Topic,
			Difficulty: current.Difficulty,
		}
		return probe, false
	}

	return b.At(index + 1), true
}

// DefaultScript is the stock interview used when a campaign defines no
// questions of its own.
func DefaultScript() []models.Question {
	return []models.Question{
		{ID: "q1", Text: "Tell me about yourself and what drew you to this role.", Topic: models.TopicIntro, Difficulty: 1},
		{ID: "q2", Text: "Walk me through a system you designed end to end. What were the hard trade-offs?", Topic: models.TopicSystems, Difficulty: 2},
		{ID: "q3", Text: "How would you scale a service whose read traffic grows 10x in a quarter?", Topic: models.TopicSystems, Difficulty: 3},
		{ID: "q4", Text: "Describe a production incident you owned. What did you change afterwards?", Topic: models.TopicSystems, Difficulty: 2},
		{ID: "q5", Text: "Explain a machine learning project you shipped and how you measured its impact.", Topic: models.TopicML, Difficulty: 2},
		{ID: "q6", Text: "How do you decide between a simple heuristic and a learned model?", Topic: models.TopicML, Difficulty: 3},
		{ID: "q7", Text: "Tell me about a time you disagreed with a teammate on a technical decision.", Topic: models.TopicBehavioral, Difficulty: 2},
		{ID: "q8", Text: "What kind of team environment brings out your best work?", Topic: models.TopicBehavioral, Difficulty: 1},
	}
}
