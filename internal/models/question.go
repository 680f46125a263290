package models

// Topic buckets a scripted question into one part of the interview arc.
type Topic string

const (
	TopicIntro      Topic = "intro"
	TopicSystems    Topic = "systems"
	TopicML         Topic = "ml"
	TopicBehavioral Topic = "behavioral"
)

// FollowupSuffix marks questions synthesized as depth probes off a scripted
// parent. A question whose id carries the suffix is never probed again.
const FollowupSuffix = "-f"

// AIFollowupSuffix marks questions synthesized from an insight follow-up.
const AIFollowupSuffix = "-ai-followup"

// Question is immutable once created. Scripted questions come from the
// campaign configuration; follow-ups are derived at runtime.
type Question struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	Topic      Topic  `json:"topic"`
	Difficulty int    `json:"difficulty"` // 1..3
}

// IsFollowup reports whether q was synthesized as a depth probe.
func (q Question) IsFollowup() bool {
	n := len(q.ID)
	if n >= len(FollowupSuffix) && q.ID[n-len(FollowupSuffix):] == FollowupSuffix {
		return true
	}
	if n >= len(AIFollowupSuffix) && q.ID[n-len(AIFollowupSuffix):] == AIFollowupSuffix {
		return true
	}
	return false
}
