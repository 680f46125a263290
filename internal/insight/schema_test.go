package insight

import (
	"strings"
	"testing"
)

func validInsight() Insight {
	return Insight{
		SchemaVersion: SchemaVersion,
		TurnID:        "t1",
		Summary:       "Solid systems answer with concrete trade-offs.",
		Tags:          []string{"systems"},
	}
}

func TestValidate_AcceptsGoodInsight(t *testing.T) {
	if err := Validate(validInsight()); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
}

func TestValidate_Rejections(t *testing.T) {
	cases := map[string]func(*Insight){
		"wrong schema version": func(i *Insight) { i.SchemaVersion = 2 },
		"empty summary":        func(i *Insight) { i.Summary = "   " },
		"oversized summary":    func(i *Insight) { i.Summary = strings.Repeat("a", MaxSummaryLen+1) },
		"too many tags":        func(i *Insight) { i.Tags = []string{"systems", "ml", "performance", "leadership"} },
		"disallowed tag":       func(i *Insight) { i.Tags = []string{"vibes"} },
		"too many citations":   func(i *Insight) { i.Citations = []string{"a", "b", "c", "d"} },
		"oversized followup":   func(i *Insight) { i.Followup = strings.Repeat("x", MaxFollowupLen+1) },
		"wordy followup":       func(i *Insight) { i.Followup = strings.Repeat("word ", MaxFollowupWords+1) },
	}

	for name, mutate := range cases {
		ins := validInsight()
		mutate(&ins)
		if err := Validate(ins); err == nil {
			t.Errorf("%s: expected validation failure", name)
		}
	}
}

func TestParseInsight_StripsMarkdownFences(t *testing.T) {
	raw := "```json\n{\"schema_version\":1,\"summary\":\"Good answer.\",\"tags\":[\"ml\"]}\n```"
	ins, err := parseInsight(raw, "t9")
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if ins.TurnID != "t9" {
		t.Fatalf("turn id must be forced to caller's value, got %q", ins.TurnID)
	}
}

func TestParseInsight_DedupesAndLowercasesTags(t *testing.T) {
	raw := `{"schema_version":1,"summary":"ok answer","tags":["ML","ml","Systems"]}`
	ins, err := parseInsight(raw, "t1")
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if len(ins.Tags) != 2 || ins.Tags[0] != "ml" || ins.Tags[1] != "systems" {
		t.Fatalf("got tags %v", ins.Tags)
	}
}

func TestParseInsight_RejectsNonJSON(t *testing.T) {
	if _, err := parseInsight("Sure! Here's my analysis of the answer.", "t1"); err == nil {
		t.Fatal("prose without JSON must be rejected")
	}
}
