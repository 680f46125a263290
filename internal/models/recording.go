package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RecordingChunk tracks one uploaded answer recording awaiting server-side
// re-transcription. The browser's live transcript stays authoritative during
// the interview; the recheck text reconciles the report afterwards.
type RecordingChunk struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID  string             `bson:"session_id" json:"session_id"`
	TurnID     string             `bson:"turn_id" json:"turn_id"`
	ChunkIndex int64              `bson:"chunk_index" json:"chunk_index"`

	AudioURL    *string `bson:"audio_url,omitempty" json:"audio_url,omitempty"`
	AudioBase64 *string `bson:"audio_base64,omitempty" json:"audio_base64,omitempty"`

	RecheckText       string  `bson:"recheck_text,omitempty" json:"recheck_text,omitempty"`
	RecheckStatus     string  `bson:"recheck_status" json:"recheck_status"` // pending|processing|done|failed
	RecheckConfidence float64 `bson:"recheck_confidence,omitempty" json:"recheck_confidence,omitempty"`

	StorageURL string `bson:"storage_url,omitempty" json:"storage_url,omitempty"`

	ProcessingTimeMS int64     `bson:"processing_time_ms,omitempty" json:"processing_time_ms,omitempty"`
	Timestamp        time.Time `bson:"timestamp" json:"timestamp"`

	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"` // TTL index
}
