package services

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hirevox/hirevox/internal/models"
	mongorepo "github.com/hirevox/hirevox/internal/repositories/mongo"
	"github.com/hirevox/hirevox/internal/utils"
)

const (
	// RecordingStream is the redis stream drained by the recheck worker.
	RecordingStream = "recordings:stream"

	recordingTTL = 48 * time.Hour
)

type RecordingService interface {
	// SubmitChunk stores one answer recording and queues it for
	// re-transcription. Exactly one of audioURL / audioBase64 must be set.
	SubmitChunk(ctx context.Context, sessionID, turnID string, chunkIndex int64, audioURL, audioBase64 string) error
	ListBySession(ctx context.Context, sessionID string) ([]models.RecordingChunk, error)
}

type recordingService struct {
	recordings mongorepo.RecordingRepository
	rdb        *redis.Client
}

func NewRecordingService(recordings mongorepo.RecordingRepository, rdb *redis.Client) RecordingService {
	return &recordingService{recordings: recordings, rdb: rdb}
}

func (s *recordingService) SubmitChunk(ctx context.Context, sessionID, turnID string, chunkIndex int64, audioURL, audioBase64 string) error {
	const op = "RecordingService.SubmitChunk"

	if sessionID == "" || turnID == "" {
		return utils.E(utils.CodeInvalidArgument, op, "session_id and turn_id are required", nil)
	}
	if (audioURL == "") == (audioBase64 == "") {
		return utils.E(utils.CodeInvalidArgument, op, "exactly one of audio_url and audio_base64 must be set", nil)
	}

	now := time.Now().UTC()
	chunk := &models.RecordingChunk{
		SessionID:     sessionID,
		TurnID:        turnID,
		ChunkIndex:    chunkIndex,
		RecheckStatus: "pending",
		Timestamp:     now,
		ExpiresAt:     now.Add(recordingTTL),
	}
	if audioURL != "" {
		chunk.AudioURL = &audioURL
	}
	if audioBase64 != "" {
		chunk.AudioBase64 = &audioBase64
	}

	if err := s.recordings.InsertChunk(ctx, chunk); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to store recording chunk", err)
	}

	if s.rdb != nil {
		err := s.rdb.XAdd(ctx, &redis.XAddArgs{
			Stream: RecordingStream,
			Values: map[string]interface{}{
				"session_id":  sessionID,
				"turn_id":     turnID,
				"chunk_index": strconv.FormatInt(chunkIndex, 10),
			},
		}).Err()
		if err != nil {
			return utils.E(utils.CodeInternal, op, "failed to enqueue recording", err)
		}
	}
	return nil
}

func (s *recordingService) ListBySession(ctx context.Context, sessionID string) ([]models.RecordingChunk, error) {
	const op = "RecordingService.ListBySession"

	if sessionID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "session_id is required", nil)
	}
	out, err := s.recordings.ListBySession(ctx, sessionID, 0)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list recordings", err)
	}
	return out, nil
}
