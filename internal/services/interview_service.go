package services

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/hirevox/hirevox/internal/insight"
	"github.com/hirevox/hirevox/internal/interview"
	"github.com/hirevox/hirevox/internal/logger"
	"github.com/hirevox/hirevox/internal/models"
	"github.com/hirevox/hirevox/internal/providers/llm"
	"github.com/hirevox/hirevox/internal/questionbank"
	mongorepo "github.com/hirevox/hirevox/internal/repositories/mongo"
	pgrepo "github.com/hirevox/hirevox/internal/repositories/postgres"
	"github.com/hirevox/hirevox/internal/storage"
	"github.com/hirevox/hirevox/internal/utils"
)

const (
	persistTimeout  = 5 * time.Second
	finalizeTimeout = 30 * time.Second
)

// envInt returns 0 for unset or unparseable values; the controller applies
// its own defaults then.
func envInt(key string) int {
	n, _ := strconv.Atoi(os.Getenv(key))
	return n
}

// SessionChannel is the pub/sub channel carrying outbound frames (speak
// commands, insights, status) for one session.
func SessionChannel(sessionID string) string {
	return "session:" + sessionID + ":events"
}

type InterviewService interface {
	// Start creates the session record and launches its event loop.
	Start(ctx context.Context, campaign *models.Campaign, invite *models.Invite) (*models.InterviewSession, error)
	// Submit forwards one candidate event to the session's runner.
	Submit(sessionID string, evt interview.Event) error
	Get(ctx context.Context, sessionID string) (*models.InterviewSession, error)
	Snapshot(sessionID string) (interview.Snapshot, bool)
	// ExportReport uploads the session report and returns its URL.
	ExportReport(ctx context.Context, sessionID string) (string, error)
	// Stop tears down a live runtime without finalizing, for shutdown.
	Stop(sessionID string)
}

type interviewService struct {
	sessions  mongorepo.SessionRepository
	campaigns CampaignService
	docs      pgrepo.ContextDocRepository
	engine    *insight.Engine
	embedder  llm.Embedder
	uploader  storage.Uploader
	rdb       *redis.Client
	llmMode   insight.Mode
	log       *logrus.Logger

	mu       sync.Mutex
	runtimes map[string]*runtime
}

type runtime struct {
	ctrl    *interview.Controller
	runner  *interview.Runner
	cancel  context.CancelFunc
	started time.Time
}

func NewInterviewService(
	sessions mongorepo.SessionRepository,
	campaigns CampaignService,
	docs pgrepo.ContextDocRepository,
	engine *insight.Engine,
	embedder llm.Embedder,
	uploader storage.Uploader,
	rdb *redis.Client,
	llmMode insight.Mode,
	log *logrus.Logger,
) InterviewService {
	if log == nil {
		log = logrus.New()
	}
	return &interviewService{
		sessions:  sessions,
		campaigns: campaigns,
		docs:      docs,
		engine:    engine,
		embedder:  embedder,
		uploader:  uploader,
		rdb:       rdb,
		llmMode:   llmMode,
		log:       log,
		runtimes:  map[string]*runtime{},
	}
}

func (s *interviewService) Start(ctx context.Context, campaign *models.Campaign, invite *models.Invite) (*models.InterviewSession, error) {
	const op = "InterviewService.Start"

	if campaign == nil || invite == nil {
		return nil, utils.E(utils.CodeInvalidArgument, op, "campaign and invite are required", nil)
	}

	sessionID := uuid.NewString()
	bank := questionbank.New(s.campaigns.Questions(campaign))

	doc := &models.InterviewSession{
		SessionID:     sessionID,
		CampaignID:    campaign.ID,
		InviteID:      invite.ID,
		CandidateName: invite.CandidateName,
		Language:      campaign.Language,
		Mode:          string(campaign.Mode),
		Status:        "active",
		SoftCap:       campaign.TokenSoftCap,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.sessions.Create(ctx, doc); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create session", err)
	}

	slog := logger.ForSession(s.log, sessionID)

	ctrl := interview.NewController(bank, interview.Config{
		Mode:              campaign.Mode,
		SoftCap:           campaign.TokenSoftCap,
		LLMMode:           s.llmMode,
		ConversationalCap: envInt("INTERVIEW_CONVERSATIONAL_CAP"),
		ReentryWindow:     time.Duration(envInt("INTERVIEW_REENTRY_WINDOW_MS")) * time.Millisecond,
	})

	speaker := &redisSpeaker{rdb: s.rdb, channel: SessionChannel(sessionID), log: slog}
	facts := NewFactFinder(s.embedder, s.docs, campaign.ID, slog)

	runner := interview.NewRunner(ctrl, s.engine, speaker, facts, s.hooks(sessionID, slog), slog)

	runCtx, cancel := context.WithCancel(context.Background())
	rt := &runtime{ctrl: ctrl, runner: runner, cancel: cancel, started: time.Now().UTC()}

	s.mu.Lock()
	s.runtimes[sessionID] = rt
	s.mu.Unlock()

	go func() {
		defer cancel()
		runner.Run(runCtx, bank.Initial())

		if ctrl.Snapshot().Finished {
			s.finalize(sessionID, rt)
		}

		s.mu.Lock()
		delete(s.runtimes, sessionID)
		s.mu.Unlock()
	}()

	slog.WithFields(logrus.Fields{
		"campaign_id": campaign.ID,
		"mode":        campaign.Mode,
	}).Info("interview session started")
	return doc, nil
}

func (s *interviewService) Submit(sessionID string, evt interview.Event) error {
	const op = "InterviewService.Submit"

	s.mu.Lock()
	rt, ok := s.runtimes[sessionID]
	s.mu.Unlock()
	if !ok {
		return utils.E(utils.CodeNotFound, op, "no live session", nil)
	}
	if !rt.runner.Submit(evt) {
		return utils.E(utils.CodeUnavailable, op, "event queue full", nil)
	}
	return nil
}

func (s *interviewService) Get(ctx context.Context, sessionID string) (*models.InterviewSession, error) {
	const op = "InterviewService.Get"

	doc, err := s.sessions.GetBySessionID(ctx, sessionID)
	if err != nil {
		if err == utils.ErrNotFound {
			return nil, utils.E(utils.CodeNotFound, op, "session not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load session", err)
	}
	return doc, nil
}

func (s *interviewService) Snapshot(sessionID string) (interview.Snapshot, bool) {
	s.mu.Lock()
	rt, ok := s.runtimes[sessionID]
	s.mu.Unlock()
	if !ok {
		return interview.Snapshot{}, false
	}
	return rt.ctrl.Snapshot(), true
}

func (s *interviewService) Stop(sessionID string) {
	s.mu.Lock()
	rt, ok := s.runtimes[sessionID]
	delete(s.runtimes, sessionID)
	s.mu.Unlock()
	if ok {
		rt.cancel()
	}
}

// hooks wires runner notifications into the append-only session record and
// the session's pub/sub channel. Persistence failures log and move on; the
// live interview never blocks on the database.
func (s *interviewService) hooks(sessionID string, slog *logrus.Entry) interview.Hooks {
	persist := func(fn func(ctx context.Context) error, what string) {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			slog.WithError(err).WithField("write", what).Error("session write failed")
		}
	}

	return interview.Hooks{
		OnTurn: func(turn interview.Turn) {
			persist(func(ctx context.Context) error {
				return s.sessions.AppendTranscript(ctx, sessionID, models.TranscriptSegment{
					TurnID:    turn.ID,
					Text:      turn.Text,
					Source:    "live",
					Timestamp: turn.TS,
				})
			}, "transcript")
		},
		OnInsight: func(turn interview.Turn, res insight.Result) {
			persist(func(ctx context.Context) error {
				return s.sessions.AppendTimeline(ctx, sessionID, models.TimelineEvent{
					Kind:      "insight",
					Detail:    res.Insight.Summary,
					Timestamp: time.Now().UTC(),
				})
			}, "timeline")
			s.publish(sessionID, frame{Type: "insight", Insight: &res.Insight})
		},
		OnQuestion: func(q models.Question, index int, source string) {
			persist(func(ctx context.Context) error {
				return s.sessions.AppendQuestion(ctx, sessionID, models.AskedQuestion{
					QuestionID: q.ID,
					Text:       q.Text,
					Topic:      string(q.Topic),
					Index:      index,
					Source:     source,
					AskedAt:    time.Now().UTC(),
				})
			}, "question")
			s.publish(sessionID, frame{Type: "question", Text: q.Text, QuestionID: q.ID, Index: index, Source: source})
		},
		OnStall: func() {
			s.publish(sessionID, frame{Type: "status", Text: "waiting"})
		},
		OnLockout: func(tokensUsed int) {
			persist(func(ctx context.Context) error {
				if err := s.sessions.SetTokensUsed(ctx, sessionID, tokensUsed); err != nil {
					return err
				}
				return s.sessions.AppendTimeline(ctx, sessionID, models.TimelineEvent{
					Kind:      "budget_lockout",
					Timestamp: time.Now().UTC(),
				})
			}, "lockout")
			s.publish(sessionID, frame{Type: "status", Text: "budget_lockout"})
		},
		OnFinished: func() {
			s.publish(sessionID, frame{Type: "status", Text: "finished"})
		},
	}
}

// finalize runs the end-of-session summary, closes the record and exports
// the report. Called once, from the runner goroutine, after Run returns.
func (s *interviewService) finalize(sessionID string, rt *runtime) {
	ctx, cancel := context.WithTimeout(context.Background(), finalizeTimeout)
	defer cancel()

	slog := logger.ForSession(s.log, sessionID)
	snap := rt.ctrl.Snapshot()

	fres := s.engine.GenerateFinalSummary(ctx, rt.ctrl.FinalInput())
	tokens := snap.TokensUsed + fres.UsedTokens

	summary := &models.FinalSummaryDoc{
		Overview:  fres.Summary.Overview,
		Strengths: fres.Summary.Strengths,
		Risks:     fres.Summary.Risks,
		Topics:    fres.Summary.Topics,
		Degraded:  fres.Summary.Degraded,
	}

	endedAt := time.Now().UTC()
	duration := int64(endedAt.Sub(rt.started).Seconds())

	if err := s.sessions.SetTokensUsed(ctx, sessionID, tokens); err != nil {
		slog.WithError(err).Error("failed to persist token total")
	}
	if err := s.sessions.Finish(ctx, sessionID, endedAt, duration, summary); err != nil {
		slog.WithError(err).Error("failed to close session record")
	}

	if _, err := s.ExportReport(ctx, sessionID); err != nil {
		slog.WithError(err).Warn("report export failed")
	}

	slog.WithFields(logrus.Fields{
		"tokens_used":      tokens,
		"duration_seconds": duration,
		"degraded":         fres.Summary.Degraded,
	}).Info("interview session finalized")
}

func (s *interviewService) ExportReport(ctx context.Context, sessionID string) (string, error) {
	const op = "InterviewService.ExportReport"

	if s.uploader == nil {
		return "", utils.E(utils.CodeUnavailable, op, "report storage not configured", nil)
	}

	doc, err := s.sessions.GetBySessionID(ctx, sessionID)
	if err != nil {
		if err == utils.ErrNotFound {
			return "", utils.E(utils.CodeNotFound, op, "session not found", err)
		}
		return "", utils.E(utils.CodeInternal, op, "failed to load session", err)
	}

	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", utils.E(utils.CodeInternal, op, "failed to encode report", err)
	}

	object := "reports/" + sessionID + ".json"
	url, err := s.uploader.Upload(ctx, object, "application/json", bytes.NewReader(raw))
	if err != nil {
		return "", utils.E(utils.CodeInternal, op, "failed to upload report", err)
	}
	if err := s.sessions.SetReportURL(ctx, sessionID, url); err != nil {
		return "", utils.E(utils.CodeInternal, op, "failed to record report url", err)
	}
	return url, nil
}

type frame struct {
	Type       string           `json:"type"`
	Text       string           `json:"text,omitempty"`
	QuestionID string           `json:"question_id,omitempty"`
	Index      int              `json:"index"`
	Source     string           `json:"source,omitempty"`
	Insight    *insight.Insight `json:"insight,omitempty"`
}

func (s *interviewService) publish(sessionID string, f frame) {
	if s.rdb == nil {
		return
	}
	raw, err := json.Marshal(f)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := s.rdb.Publish(ctx, SessionChannel(sessionID), raw).Err(); err != nil {
		s.log.WithError(err).WithField("session_id", sessionID).Warn("publish failed")
	}
}

// redisSpeaker turns Speak/Cancel commands into pub/sub frames for the
// browser's speech adapter. Cancel always precedes Speak so the client can
// interrupt an in-flight utterance.
type redisSpeaker struct {
	rdb     *redis.Client
	channel string
	log     *logrus.Entry
}

func (sp *redisSpeaker) Speak(ctx context.Context, text string) {
	sp.send(ctx, frame{Type: "speak", Text: text})
}

func (sp *redisSpeaker) Cancel() {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	sp.send(ctx, frame{Type: "speak_cancel"})
}

func (sp *redisSpeaker) send(ctx context.Context, f frame) {
	if sp.rdb == nil {
		return
	}
	raw, _ := json.Marshal(f)
	if err := sp.rdb.Publish(ctx, sp.channel, raw).Err(); err != nil {
		sp.log.WithError(err).Warn("speak publish failed")
	}
}
