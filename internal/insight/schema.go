package insight

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// SchemaVersion is the only accepted schema_version value. Anything else is
// a validation failure, not a crash.
const SchemaVersion = 1

const (
	MaxSummaryLen    = 120
	MaxTags          = 3
	MaxCitations     = 3
	MaxFollowupLen   = 140
	MaxFollowupWords = 15

	MaxOverviewLen = 600
	MaxStrengths   = 5
	MaxRisks       = 5
	MaxTopics      = 8
)

// Degradation flags surfaced to the UI layer.
const (
	FlagModelUnavailable = "model_unavailable"
	FlagSchemaRejected   = "schema_rejected"
	FlagBudgetExhausted  = "budget_exhausted"
)

// AllowedTags is the closed tag vocabulary. Model output carrying anything
// else is rejected.
var AllowedTags = map[string]bool{
	"performance":   true,
	"systems":       true,
	"ml":            true,
	"leadership":    true,
	"communication": true,
	"metrics":       true,
	"ambiguity":     true,
}

// SchemaError reports why a candidate insight was rejected.
type SchemaError struct {
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("insight schema: %s: %s", e.Field, e.Reason)
}

func schemaErr(field, reason string) error {
	return &SchemaError{Field: field, Reason: reason}
}

// parseInsight unmarshals raw model text into an Insight, tolerating
// markdown code fences around the JSON, then validates it. The turn id is
// forced to the caller's value; models tend to echo it inconsistently.
func parseInsight(raw, turnID string) (Insight, error) {
	var ins Insight
	body := extractJSON(raw)
	if body == "" {
		return ins, schemaErr("body", "no JSON object found")
	}
	if err := json.Unmarshal([]byte(body), &ins); err != nil {
		return ins, schemaErr("body", err.Error())
	}
	ins.TurnID = turnID
	ins.Tags = dedupeLower(ins.Tags)
	if err := Validate(ins); err != nil {
		return ins, err
	}
	return ins, nil
}

// Validate checks an Insight against the schema contract.
func Validate(ins Insight) error {
	if ins.SchemaVersion != SchemaVersion {
		return schemaErr("schema_version", fmt.Sprintf("got %d, want %d", ins.SchemaVersion, SchemaVersion))
	}
	s := strings.TrimSpace(ins.Summary)
	if s == "" {
		return schemaErr("summary", "empty")
	}
	if len(s) > MaxSummaryLen {
		return schemaErr("summary", fmt.Sprintf("%d chars exceeds %d", len(s), MaxSummaryLen))
	}
	if len(ins.Tags) > MaxTags {
		return schemaErr("tags", fmt.Sprintf("%d tags exceeds %d", len(ins.Tags), MaxTags))
	}
	for _, tag := range ins.Tags {
		if !AllowedTags[tag] {
			return schemaErr("tags", "disallowed value "+tag)
		}
	}
	if len(ins.Citations) > MaxCitations {
		return schemaErr("citations", fmt.Sprintf("%d citations exceeds %d", len(ins.Citations), MaxCitations))
	}
	if f := strings.TrimSpace(ins.Followup); f != "" {
		if len(f) > MaxFollowupLen {
			return schemaErr("followup", fmt.Sprintf("%d chars exceeds %d", len(f), MaxFollowupLen))
		}
		if len(strings.Fields(f)) > MaxFollowupWords {
			return schemaErr("followup", fmt.Sprintf("more than %d words", MaxFollowupWords))
		}
	}
	return nil
}

func parseFinalSummary(raw string) (FinalSummary, error) {
	var fs FinalSummary
	body := extractJSON(raw)
	if body == "" {
		return fs, schemaErr("body", "no JSON object found")
	}
	if err := json.Unmarshal([]byte(body), &fs); err != nil {
		return fs, schemaErr("body", err.Error())
	}
	if err := validateFinal(fs); err != nil {
		return fs, err
	}
	return fs, nil
}

func validateFinal(fs FinalSummary) error {
	o := strings.TrimSpace(fs.Overview)
	if o == "" {
		return schemaErr("overview", "empty")
	}
	if len(o) > MaxOverviewLen {
		return schemaErr("overview", fmt.Sprintf("%d chars exceeds %d", len(o), MaxOverviewLen))
	}
	if len(fs.Strengths) > MaxStrengths {
		return schemaErr("strengths", "too many entries")
	}
	if len(fs.Risks) > MaxRisks {
		return schemaErr("risks", "too many entries")
	}
	if len(fs.Topics) > MaxTopics {
		return schemaErr("topics", "too many entries")
	}
	return nil
}

// extractJSON returns the outermost {...} span of raw, stripping any prose
// or markdown fences the model wrapped around it.
func extractJSON(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return ""
	}
	return raw[start : end+1]
}

// dedupeLower lowercases tags and drops duplicates, keeping first-seen
// order stable.
func dedupeLower(tags []string) []string {
	if len(tags) == 0 {
		return tags
	}
	seen := make(map[string]bool, len(tags))
	out := tags[:0]
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// sortedTopTags returns up to n tag names ordered by descending count,
// ties broken alphabetically, so rules output is deterministic.
func sortedTopTags(tally map[string]int, n int) []string {
	type kv struct {
		tag   string
		count int
	}
	pairs := make([]kv, 0, len(tally))
	for t, c := range tally {
		pairs = append(pairs, kv{t, c})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].count != pairs[j].count {
			return pairs[i].count > pairs[j].count
		}
		return pairs[i].tag < pairs[j].tag
	})
	if len(pairs) > n {
		pairs = pairs[:n]
	}
	out := make([]string, len(pairs))
	for i, p := range pairs {
		out[i] = p.tag
	}
	return out
}
