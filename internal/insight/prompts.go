package insight

import (
	"fmt"
	"strings"
)

const insightSystemPrompt = `You analyze one interview answer at a time for a hiring report.
Respond with STRICT JSON matching exactly this shape, nothing else:
{"schema_version":1,"turn_id":"<id>","summary":"<=120 chars","tags":["<=3 from: performance, systems, ml, leadership, communication, metrics, ambiguity"],"citations":["<=3 fact ids"],"followup":"optional question, <=140 chars, <=15 words"}
Omit "citations" and "followup" when you have nothing useful. Never invent fact ids.`

// Appended on the single retry after a schema rejection.
const strictRetrySuffix = `
Your previous reply was rejected. Output ONLY the JSON object. No text outside JSON, no markdown fences, no commentary.`

const finalSystemPrompt = `You write the closing summary of an AI-led interview.
Respond with STRICT JSON matching exactly this shape, nothing else:
{"overview":"<=600 chars","strengths":["<=5 short phrases"],"risks":["<=5 short phrases"],"topics":["<=8 topic words"]}`

func buildInsightPrompt(in Input) string {
	var b strings.Builder
	fmt.Fprintf(&b, "turn_id: %s\n", in.TurnID)
	if in.RollingSummary != "" {
		fmt.Fprintf(&b, "recent answers (context): %s\n", tail(in.RollingSummary, 240))
	}
	fmt.Fprintf(&b, "current answer: %s\n", tail(in.Snippet, 400))
	for _, f := range in.Facts {
		fmt.Fprintf(&b, "fact %s (%s): %s\n", f.ID, f.Title, tail(f.Content, 200))
	}
	return b.String()
}

func buildFinalPrompt(in FinalInput) string {
	var b strings.Builder
	b.WriteString("interview transcript, candidate answers in order:\n")
	turns := in.Transcript
	if len(turns) > 16 {
		turns = turns[len(turns)-16:]
	}
	joined := strings.Join(turns, "\n- ")
	if len(joined) > 2000 {
		joined = joined[len(joined)-2000:]
	}
	b.WriteString("- " + joined + "\n")
	if len(in.TagTally) > 0 {
		b.WriteString("accumulated insight tags: " + strings.Join(sortedTopTags(in.TagTally, MaxTopics), ", ") + "\n")
	}
	return b.String()
}

// tail returns the last n bytes of s.
func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
