package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// InterviewSession is the persisted, append-only record of one interview.
// Array fields only ever grow, via $push, so concurrent writers never race
// on read-modify-write.
type InterviewSession struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID  string             `bson:"session_id" json:"session_id"` // uuid v4
	CampaignID string             `bson:"campaign_id" json:"campaign_id"`
	InviteID   string             `bson:"invite_id" json:"invite_id"`

	CandidateName string `bson:"candidate_name" json:"candidate_name"`
	Language      string `bson:"language" json:"language"`
	Mode          string `bson:"mode" json:"mode"`     // structured|conversational
	Status        string `bson:"status" json:"status"` // active|finished|abandoned

	Transcript []TranscriptSegment `bson:"transcript" json:"transcript"`
	Questions  []AskedQuestion     `bson:"questions" json:"questions"`
	Timeline   []TimelineEvent     `bson:"timeline" json:"timeline"`
	Audit      []AuditEvent        `bson:"audit" json:"audit"`

	TokensUsed int `bson:"tokens_used" json:"tokens_used"`
	SoftCap    int `bson:"soft_cap" json:"soft_cap"`

	FinalSummary *FinalSummaryDoc `bson:"final_summary,omitempty" json:"final_summary,omitempty"`
	ReportURL    string           `bson:"report_url,omitempty" json:"report_url,omitempty"`

	CreatedAt       time.Time  `bson:"created_at" json:"created_at"`
	EndedAt         *time.Time `bson:"ended_at,omitempty" json:"ended_at,omitempty"`
	DurationSeconds int64      `bson:"duration_seconds" json:"duration_seconds"`
}

// TranscriptSegment is one finalized candidate utterance.
type TranscriptSegment struct {
	TurnID     string    `bson:"turn_id" json:"turn_id"`
	QuestionID string    `bson:"question_id" json:"question_id"`
	Text       string    `bson:"text" json:"text"`
	Source     string    `bson:"source" json:"source"` // live|recheck
	Timestamp  time.Time `bson:"timestamp" json:"timestamp"`
}

// AskedQuestion records a question at the moment it was presented.
type AskedQuestion struct {
	QuestionID string    `bson:"question_id" json:"question_id"`
	Text       string    `bson:"text" json:"text"`
	Topic      string    `bson:"topic" json:"topic"`
	Index      int       `bson:"index" json:"index"`
	Source     string    `bson:"source" json:"source"` // scripted|depth-probe|ai-followup
	AskedAt    time.Time `bson:"asked_at" json:"asked_at"`
}

type TimelineEvent struct {
	Kind      string    `bson:"kind" json:"kind"` // question|insight|stall|budget_lockout|finished
	Detail    string    `bson:"detail,omitempty" json:"detail,omitempty"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

type AuditEvent struct {
	Actor     string    `bson:"actor" json:"actor"` // candidate|system|recruiter
	Action    string    `bson:"action" json:"action"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

// FinalSummaryDoc mirrors insight.FinalSummary for storage.
type FinalSummaryDoc struct {
	Overview  string   `bson:"overview" json:"overview"`
	Strengths []string `bson:"strengths" json:"strengths"`
	Risks     []string `bson:"risks" json:"risks"`
	Topics    []string `bson:"topics" json:"topics"`
	Degraded  bool     `bson:"degraded" json:"degraded"`
}
