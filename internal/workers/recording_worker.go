package workers

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/hirevox/hirevox/internal/models"
	"github.com/hirevox/hirevox/internal/providers/stt"
	mongorepo "github.com/hirevox/hirevox/internal/repositories/mongo"
	"github.com/hirevox/hirevox/internal/storage"
)

// RecordingWorkerPool drains the recording stream and re-transcribes
// uploaded answer audio server-side. The browser's live transcript stays
// authoritative during the interview; recheck text lands in the session
// record with source "recheck" so the report can reconcile the two.
type RecordingWorkerPool struct {
	Redis      *redis.Client
	Recordings mongorepo.RecordingRepository
	Sessions   mongorepo.SessionRepository
	NumWorkers int

	STT      stt.Provider
	Uploader storage.Uploader

	Logger *logrus.Logger

	Stream         string
	Group          string
	ConsumerPrefix string
}

func (p *RecordingWorkerPool) Start(ctx context.Context) error {
	if p.Redis == nil || p.Recordings == nil || p.Sessions == nil || p.STT == nil {
		return errors.New("RecordingWorkerPool missing dependency: Redis/Recordings/Sessions/STT must be set")
	}
	if p.Stream == "" {
		p.Stream = "recordings:stream"
	}
	if p.Group == "" {
		p.Group = "recording-workers"
	}
	if p.ConsumerPrefix == "" {
		p.ConsumerPrefix = "c"
	}
	if p.NumWorkers <= 0 {
		p.NumWorkers = 3
	}
	if p.Logger == nil {
		p.Logger = logrus.New()
	}

	_ = p.Redis.XGroupCreateMkStream(ctx, p.Stream, p.Group, "0").Err() // ignore BUSYGROUP

	for i := 0; i < p.NumWorkers; i++ {
		consumer := p.ConsumerPrefix + "-" + strconv.Itoa(i+1)
		go p.runConsumer(ctx, consumer)
	}
	return nil
}

func (p *RecordingWorkerPool) runConsumer(ctx context.Context, consumer string) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res, err := p.Redis.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    p.Group,
			Consumer: consumer,
			Streams:  []string{p.Stream, ">"},
			Count:    10,
			Block:    5 * time.Second,
		}).Result()

		if err != nil {
			if err == redis.Nil {
				continue
			}
			time.Sleep(500 * time.Millisecond)
			continue
		}

		for _, stream := range res {
			for _, msg := range stream.Messages {
				p.handleMsg(ctx, msg)
				_ = p.Redis.XAck(ctx, p.Stream, p.Group, msg.ID).Err()
			}
		}
	}
}

func normalizeLanguage(v string) string {
	v = strings.TrimSpace(v)
	switch v {
	case "fr", "fr-FR":
		return "fr-FR"
	case "en", "en-US", "":
		return "en-US"
	default:
		return v
	}
}

func (p *RecordingWorkerPool) handleMsg(ctx context.Context, msg redis.XMessage) {
	getStr := func(k string) string {
		v, ok := msg.Values[k]
		if !ok || v == nil {
			return ""
		}
		s, _ := v.(string)
		return s
	}

	sessionID := getStr("session_id")
	chunkIndexStr := getStr("chunk_index")
	if sessionID == "" || chunkIndexStr == "" {
		return
	}
	chunkIndex, _ := strconv.ParseInt(chunkIndexStr, 10, 64)

	log := p.Logger.WithFields(logrus.Fields{
		"redis_id":    msg.ID,
		"session_id":  sessionID,
		"chunk_index": chunkIndex,
	})

	statusCh := "session:" + sessionID + ":status"
	start := time.Now()

	chunk, language, ok := p.loadChunk(ctx, sessionID, chunkIndex, log)
	if !ok {
		return
	}

	audio, ok := p.fetchAudio(ctx, chunk, log)
	if !ok {
		_ = p.Recordings.UpdateRecheck(ctx, sessionID, chunkIndex, "", 0, "failed", time.Since(start).Milliseconds())
		p.publishStatus(ctx, statusCh, chunkIndex, "failed", "could not fetch audio")
		return
	}

	if p.Uploader != nil {
		object := "recordings/" + sessionID + "/" + strconv.FormatInt(chunkIndex, 10) + ".webm"
		url, err := p.Uploader.Upload(ctx, object, "audio/webm", bytes.NewReader(audio))
		if err != nil {
			log.WithError(err).Warn("recording upload failed")
		} else {
			_ = p.Recordings.SetStorageURL(ctx, sessionID, chunkIndex, url)
		}
	}

	_ = p.Recordings.UpdateRecheck(ctx, sessionID, chunkIndex, "", 0, "processing", 0)
	p.publishStatus(ctx, statusCh, chunkIndex, "processing", "recheck in progress")

	text, conf, err := p.STT.Transcribe(ctx, audio, language)
	if err != nil {
		log.WithError(err).Error("recheck transcription failed")
		_ = p.Recordings.UpdateRecheck(ctx, sessionID, chunkIndex, "", 0, "failed", time.Since(start).Milliseconds())
		p.publishStatus(ctx, statusCh, chunkIndex, "failed", "transcription failed")
		return
	}

	procMS := time.Since(start).Milliseconds()
	_ = p.Recordings.UpdateRecheck(ctx, sessionID, chunkIndex, text, conf, "done", procMS)

	if text != "" {
		err = p.Sessions.AppendTranscript(ctx, sessionID, models.TranscriptSegment{
			TurnID:    chunk.TurnID,
			Text:      text,
			Source:    "recheck",
			Timestamp: time.Now().UTC(),
		})
		if err != nil {
			log.WithError(err).Warn("failed to append recheck transcript")
		}
	}

	p.publishStatus(ctx, statusCh, chunkIndex, "done", "chunk processed")
	log.WithFields(logrus.Fields{
		"confidence":         conf,
		"processing_time_ms": procMS,
	}).Info("recording rechecked")
}

func (p *RecordingWorkerPool) loadChunk(ctx context.Context, sessionID string, chunkIndex int64, log *logrus.Entry) (*models.RecordingChunk, string, bool) {
	chunks, err := p.Recordings.ListBySession(ctx, sessionID, 0)
	if err != nil {
		log.WithError(err).Error("failed to load recording chunks")
		return nil, "", false
	}
	var chunk *models.RecordingChunk
	for i := range chunks {
		if chunks[i].ChunkIndex == chunkIndex {
			chunk = &chunks[i]
			break
		}
	}
	if chunk == nil {
		log.Warn("chunk not found")
		return nil, "", false
	}

	language := "en-US"
	if sess, err := p.Sessions.GetBySessionID(ctx, sessionID); err == nil {
		language = normalizeLanguage(sess.Language)
	}
	return chunk, language, true
}

func (p *RecordingWorkerPool) fetchAudio(ctx context.Context, chunk *models.RecordingChunk, log *logrus.Entry) ([]byte, bool) {
	if chunk.AudioBase64 != nil && *chunk.AudioBase64 != "" {
		raw := *chunk.AudioBase64
		if i := strings.Index(raw, ","); i >= 0 {
			raw = raw[i+1:] // strip data:...;base64,
		}
		decoded, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			log.WithError(err).Warn("base64 decode failed")
			return nil, false
		}
		return decoded, true
	}

	if chunk.AudioURL != nil && *chunk.AudioURL != "" {
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, *chunk.AudioURL, nil)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			log.WithError(err).Warn("audio_url fetch failed")
			return nil, false
		}
		defer resp.Body.Close()

		const maxBytes = 10 << 20
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxBytes))
		if len(body) == 0 {
			return nil, false
		}
		return body, true
	}

	return nil, false
}

func (p *RecordingWorkerPool) publishStatus(ctx context.Context, channel string, chunkIndex int64, status, message string) {
	payload := `{"type":"status","status":"` + status + `","message":"` + message + `","chunk_index":` + strconv.FormatInt(chunkIndex, 10) + `}`
	_ = p.Redis.Publish(ctx, channel, payload).Err()
}
