package insight

import (
	"regexp"
	"strconv"
	"strings"
)

// The rules path: a deterministic, zero-cost substitute for the cloud
// model. Pattern rules only; this is a heuristic, not NLP.

const (
	shortAnswerChars = 60
	shortAnswerWords = 10
	briefRiskChars   = 400
)

var (
	metricsRe     = regexp.MustCompile(`[0-9]|percent|%`)
	hedgeRe       = regexp.MustCompile(`(?i)\b(general|generic|unsure)\b`)
	performanceRe = regexp.MustCompile(`(?i)\b(performance|latency|throughput|optimi[sz]\w*|qps|rps|faster|speed|percent)\b|%`)
	systemsRe     = regexp.MustCompile(`(?i)\b(system|service|architecture|database|queue|cache|distributed|infra\w*|scal\w*)\b`)
	leadershipRe  = regexp.MustCompile(`(?i)\b(lead|led|leadership|mentor\w*|team|stakeholder\w*|owned|ownership)\b`)
	mlRe          = regexp.MustCompile(`(?i)\b(model|training|ml|machine learning|dataset|inference|feature\w*)\b`)
)

func isShortAnswer(text string) bool {
	t := strings.TrimSpace(text)
	return len(t) < shortAnswerChars || len(strings.Fields(t)) < shortAnswerWords
}

// Rules produces a schema-valid insight without any network call. It never
// fails and costs zero tokens.
func Rules(in Input) Insight {
	snippet := strings.TrimSpace(in.Snippet)
	short := isShortAnswer(snippet)

	// Metrics outrank brevity for the summary: a short answer that cites
	// numbers still reads as a metrics claim. Brevity keeps the follow-up.
	var summary string
	switch {
	case metricsRe.MatchString(snippet):
		summary = "Answer cites metrics; worth verifying the numbers."
	case short:
		summary = "Brief answer; ask for a concrete example."
	default:
		summary = "Answer noted; probe for specifics on approach and outcome."
	}

	var tags []string
	if performanceRe.MatchString(snippet) {
		tags = append(tags, "performance")
	}
	if systemsRe.MatchString(snippet) {
		tags = append(tags, "systems")
	}
	if leadershipRe.MatchString(snippet) {
		tags = append(tags, "leadership")
	}
	if len(tags) > MaxTags {
		tags = tags[:MaxTags]
	}

	var citations []string
	for i, f := range in.Facts {
		if i >= 2 {
			break
		}
		citations = append(citations, f.ID)
	}

	var followup string
	if short || hedgeRe.MatchString(snippet) {
		followup = "Can you walk me through a specific example of that?"
	}

	return Insight{
		SchemaVersion: SchemaVersion,
		TurnID:        in.TurnID,
		Summary:       summary,
		Tags:          tags,
		Citations:     citations,
		Followup:      followup,
	}
}

// RulesFinal is the deterministic whole-interview rollup.
func RulesFinal(in FinalInput) FinalSummary {
	all := strings.Join(in.Transcript, " ")

	var strengths, risks []string
	if leadershipRe.MatchString(all) {
		strengths = append(strengths, "Shows ownership and collaboration signals")
	}
	if performanceRe.MatchString(all) {
		strengths = append(strengths, "Backs claims with performance metrics")
	}
	if mlRe.MatchString(all) {
		strengths = append(strengths, "Hands-on machine learning experience")
	}
	if len(strings.TrimSpace(all)) < briefRiskChars {
		risks = append(risks, "brevity: answers were too short to assess depth")
	}
	if hedgeRe.MatchString(all) {
		risks = append(risks, "hedged or generic phrasing in places")
	}

	topics := sortedTopTags(in.TagTally, MaxTopics)

	var b strings.Builder
	b.WriteString("Heuristic summary over ")
	b.WriteString(strconv.Itoa(len(in.Transcript)))
	b.WriteString(" answers. ")
	if len(strengths) > 0 {
		b.WriteString("Signals: " + strings.Join(strengths, "; ") + ". ")
	}
	if len(risks) > 0 {
		b.WriteString("Risks: " + strings.Join(risks, "; ") + ".")
	}
	overview := strings.TrimSpace(b.String())
	if len(overview) > MaxOverviewLen {
		overview = overview[:MaxOverviewLen]
	}

	return FinalSummary{
		Overview:  overview,
		Strengths: strengths,
		Risks:     risks,
		Topics:    topics,
		Degraded:  true,
	}
}
