package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"github.com/hirevox/hirevox/internal/interview"
	"github.com/hirevox/hirevox/internal/services"
	"github.com/hirevox/hirevox/internal/utils"
)

// WSHandler is the candidate's live channel. Speech events flow in as JSON
// frames and are forwarded to the session's event loop; speak commands,
// insights and status updates flow back out via the session's pub/sub
// channel.
type WSHandler struct {
	interviews services.InterviewService
	recordings services.RecordingService
	redis      *redis.Client
	upgrader   websocket.Upgrader
}

func NewWSHandler(interviews services.InterviewService, recordings services.RecordingService, rdb *redis.Client) *WSHandler {
	return &WSHandler{
		interviews: interviews,
		recordings: recordings,
		redis:      rdb,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true }, // TODO: restrict origin in prod
		},
	}
}

type wsClientMsg struct {
	Type string `json:"type"` // partial|final|silence|next|finish|recording_chunk
	Text string `json:"text"`

	// recording_chunk fields
	TurnID      string `json:"turn_id"`
	ChunkIndex  int64  `json:"chunk_index"`
	AudioBase64 string `json:"audio_base64"`
	AudioURL    string `json:"audio_url"`
}

var wsEventKinds = map[string]interview.EventKind{
	"partial": interview.EventPartial,
	"final":   interview.EventFinal,
	"silence": interview.EventSilence,
	"next":    interview.EventNext,
	"finish":  interview.EventFinish,
}

type wsConn struct {
	c  *websocket.Conn
	mu sync.Mutex
}

func (w *wsConn) writeText(b []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.c.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return w.c.WriteMessage(websocket.TextMessage, b)
}

func (h *WSHandler) SessionWS(c *gin.Context) {
	if _, ok := requireUserID(c); !ok {
		return
	}

	sessionID := c.Param("session_id")
	if sessionID == "" {
		writeError(c, utils.E(utils.CodeInvalidArgument, "WSHandler.SessionWS", "missing session_id", nil))
		return
	}
	if !requireSessionAccess(c, sessionID) {
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// upgrade already wrote response in most cases
		return
	}
	defer conn.Close()

	wc := &wsConn{c: conn}
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	eventsCh := services.SessionChannel(sessionID)
	statusCh := "session:" + sessionID + ":status"

	pubsub := h.redis.Subscribe(ctx, eventsCh, statusCh)
	defer pubsub.Close()

	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		conn.SetPongHandler(func(string) error {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			return nil
		})

		for {
			_, data, rerr := conn.ReadMessage()
			if rerr != nil {
				return
			}

			var msg wsClientMsg
			if err := json.Unmarshal(data, &msg); err != nil {
				_ = wc.writeText([]byte(`{"type":"error","code":"INVALID_ARGUMENT","message":"invalid json"}`))
				continue
			}

			if kind, ok := wsEventKinds[msg.Type]; ok {
				err := h.interviews.Submit(sessionID, interview.Event{
					Kind: kind,
					Text: msg.Text,
					TS:   time.Now().UTC(),
				})
				if err != nil {
					writeWSError(wc, err)
				}
				if kind == interview.EventFinish {
					return
				}
				continue
			}

			switch msg.Type {
			case "recording_chunk":
				err := h.recordings.SubmitChunk(ctx, sessionID, msg.TurnID, msg.ChunkIndex, msg.AudioURL, msg.AudioBase64)
				if err != nil {
					writeWSError(wc, err)
					continue
				}
				_ = wc.writeText([]byte(`{"type":"status","status":"queued","message":"recording queued"}`))

			default:
				_ = wc.writeText([]byte(`{"type":"error","code":"INVALID_ARGUMENT","message":"unknown message type"}`))
			}
		}
	}()

	// writer: Redis Pub/Sub -> WS
	for {
		select {
		case <-readDone:
			return
		case <-ctx.Done():
			return
		default:
			m, err := pubsub.ReceiveMessage(ctx)
			if err != nil {
				return
			}
			// forward as-is (payload expected JSON string)
			if werr := wc.writeText([]byte(m.Payload)); werr != nil {
				return
			}
		}
	}
}

func writeWSError(wc *wsConn, err error) {
	code := utils.CodeInternal
	message := "internal error"
	var ae *utils.AppError
	if errors.As(err, &ae) {
		code = ae.Code
		message = ae.Message
	}
	payload, _ := json.Marshal(map[string]any{
		"type":    "error",
		"code":    code,
		"message": message,
	})
	_ = wc.writeText(payload)
}
