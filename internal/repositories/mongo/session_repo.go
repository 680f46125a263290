package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/hirevox/hirevox/internal/models"
	"github.com/hirevox/hirevox/internal/utils"
)

// SessionRepository persists interview sessions. All array mutations go
// through $push so writers never race on read-modify-write.
type SessionRepository interface {
	Create(ctx context.Context, s *models.InterviewSession) error
	GetBySessionID(ctx context.Context, sessionID string) (*models.InterviewSession, error)

	AppendTranscript(ctx context.Context, sessionID string, seg models.TranscriptSegment) error
	AppendQuestion(ctx context.Context, sessionID string, q models.AskedQuestion) error
	AppendTimeline(ctx context.Context, sessionID string, evt models.TimelineEvent) error
	AppendAudit(ctx context.Context, sessionID string, evt models.AuditEvent) error

	SetTokensUsed(ctx context.Context, sessionID string, tokens int) error
	Finish(ctx context.Context, sessionID string, endedAt time.Time, durationSeconds int64, summary *models.FinalSummaryDoc) error
	SetReportURL(ctx context.Context, sessionID, url string) error
}

type sessionRepo struct {
	col *mongo.Collection
}

func NewSessionRepo(db *mongo.Database) SessionRepository {
	return &sessionRepo{col: db.Collection("interview_sessions")}
}

func (r *sessionRepo) Create(ctx context.Context, s *models.InterviewSession) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	if s.Transcript == nil {
		s.Transcript = []models.TranscriptSegment{}
	}
	if s.Questions == nil {
		s.Questions = []models.AskedQuestion{}
	}
	if s.Timeline == nil {
		s.Timeline = []models.TimelineEvent{}
	}
	if s.Audit == nil {
		s.Audit = []models.AuditEvent{}
	}
	_, err := r.col.InsertOne(ctx, s)
	return err
}

func (r *sessionRepo) GetBySessionID(ctx context.Context, sessionID string) (*models.InterviewSession, error) {
	var s models.InterviewSession
	err := r.col.FindOne(ctx, bson.M{"session_id": sessionID}).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	return &s, err
}

func (r *sessionRepo) push(ctx context.Context, sessionID, field string, value any) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"session_id": sessionID},
		bson.M{"$push": bson.M{field: value}},
	)
	return err
}

func (r *sessionRepo) AppendTranscript(ctx context.Context, sessionID string, seg models.TranscriptSegment) error {
	return r.push(ctx, sessionID, "transcript", seg)
}

func (r *sessionRepo) AppendQuestion(ctx context.Context, sessionID string, q models.AskedQuestion) error {
	return r.push(ctx, sessionID, "questions", q)
}

func (r *sessionRepo) AppendTimeline(ctx context.Context, sessionID string, evt models.TimelineEvent) error {
	return r.push(ctx, sessionID, "timeline", evt)
}

func (r *sessionRepo) AppendAudit(ctx context.Context, sessionID string, evt models.AuditEvent) error {
	return r.push(ctx, sessionID, "audit", evt)
}

func (r *sessionRepo) SetTokensUsed(ctx context.Context, sessionID string, tokens int) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"session_id": sessionID},
		bson.M{"$set": bson.M{"tokens_used": tokens}},
	)
	return err
}

func (r *sessionRepo) Finish(ctx context.Context, sessionID string, endedAt time.Time, durationSeconds int64, summary *models.FinalSummaryDoc) error {
	set := bson.M{
		"status":           "finished",
		"ended_at":         endedAt.UTC(),
		"duration_seconds": durationSeconds,
	}
	if summary != nil {
		set["final_summary"] = summary
	}
	_, err := r.col.UpdateOne(ctx,
		bson.M{"session_id": sessionID},
		bson.M{"$set": set},
	)
	return err
}

func (r *sessionRepo) SetReportURL(ctx context.Context, sessionID, url string) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"session_id": sessionID},
		bson.M{"$set": bson.M{"report_url": url}},
	)
	return err
}
