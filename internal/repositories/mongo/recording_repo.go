package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/hirevox/hirevox/internal/models"
)

type RecordingRepository interface {
	InsertChunk(ctx context.Context, c *models.RecordingChunk) error
	UpdateRecheck(ctx context.Context, sessionID string, chunkIndex int64, text string, confidence float64, status string, processingMS int64) error
	SetStorageURL(ctx context.Context, sessionID string, chunkIndex int64, url string) error
	ListBySession(ctx context.Context, sessionID string, limit int64) ([]models.RecordingChunk, error)
}

type recordingRepo struct {
	col *mongo.Collection
}

func NewRecordingRepo(db *mongo.Database) RecordingRepository {
	return &recordingRepo{col: db.Collection("recording_chunks")}
}

func (r *recordingRepo) InsertChunk(ctx context.Context, c *models.RecordingChunk) error {
	if c.Timestamp.IsZero() {
		c.Timestamp = time.Now().UTC()
	}
	_, err := r.col.InsertOne(ctx, c)
	return err
}

func (r *recordingRepo) UpdateRecheck(ctx context.Context, sessionID string, chunkIndex int64, text string, confidence float64, status string, processingMS int64) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"session_id": sessionID, "chunk_index": chunkIndex},
		bson.M{"$set": bson.M{
			"recheck_text":       text,
			"recheck_confidence": confidence,
			"recheck_status":     status,
			"processing_time_ms": processingMS,
		}},
	)
	return err
}

func (r *recordingRepo) SetStorageURL(ctx context.Context, sessionID string, chunkIndex int64, url string) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"session_id": sessionID, "chunk_index": chunkIndex},
		bson.M{"$set": bson.M{"storage_url": url}},
	)
	return err
}

func (r *recordingRepo) ListBySession(ctx context.Context, sessionID string, limit int64) ([]models.RecordingChunk, error) {
	if limit <= 0 {
		limit = 200
	}

	cur, err := r.col.Find(ctx,
		bson.M{"session_id": sessionID},
		optionsFindSorted("chunk_index", limit),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.RecordingChunk
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
