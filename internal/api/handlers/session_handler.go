package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hirevox/hirevox/internal/services"
	"github.com/hirevox/hirevox/internal/utils"
)

type SessionHandler struct {
	interviews services.InterviewService
	campaigns  services.CampaignService
	recordings services.RecordingService
}

func NewSessionHandler(interviews services.InterviewService, campaigns services.CampaignService, recordings services.RecordingService) *SessionHandler {
	return &SessionHandler{interviews: interviews, campaigns: campaigns, recordings: recordings}
}

func (h *SessionHandler) Get(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	sessionID := c.Param("session_id")
	if !requireSessionAccess(c, sessionID) {
		return
	}

	sess, err := h.interviews.Get(c.Request.Context(), sessionID)
	if err != nil {
		writeError(c, err)
		return
	}
	if !h.authorized(c, userID, sess.CampaignID) {
		return
	}

	c.JSON(http.StatusOK, sess)
}

// Snapshot exposes the live aggregate for an in-flight session.
func (h *SessionHandler) Snapshot(c *gin.Context) {
	if _, ok := requireUserID(c); !ok {
		return
	}

	sessionID := c.Param("session_id")
	if !requireSessionAccess(c, sessionID) {
		return
	}

	snap, ok := h.interviews.Snapshot(sessionID)
	if !ok {
		writeError(c, utils.E(utils.CodeNotFound, "SessionHandler.Snapshot", "no live session", nil))
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (h *SessionHandler) ExportReport(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	sessionID := c.Param("session_id")
	sess, err := h.interviews.Get(c.Request.Context(), sessionID)
	if err != nil {
		writeError(c, err)
		return
	}
	if !h.authorized(c, userID, sess.CampaignID) {
		return
	}

	url, err := h.interviews.ExportReport(c.Request.Context(), sessionID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"report_url": url})
}

type UploadRecordingRequest struct {
	TurnID      string `json:"turn_id" binding:"required"`
	ChunkIndex  int64  `json:"chunk_index"`
	AudioBase64 string `json:"audio_base64"`
	AudioURL    string `json:"audio_url"`
}

func (h *SessionHandler) UploadRecording(c *gin.Context) {
	if _, ok := requireUserID(c); !ok {
		return
	}

	sessionID := c.Param("session_id")
	if !requireSessionAccess(c, sessionID) {
		return
	}

	var req UploadRecordingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "SessionHandler.UploadRecording", "invalid request body", err))
		return
	}

	err := h.recordings.SubmitChunk(c.Request.Context(), sessionID, req.TurnID, req.ChunkIndex, req.AudioURL, req.AudioBase64)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}

func (h *SessionHandler) ListRecordings(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	sessionID := c.Param("session_id")
	sess, err := h.interviews.Get(c.Request.Context(), sessionID)
	if err != nil {
		writeError(c, err)
		return
	}
	if !h.authorized(c, userID, sess.CampaignID) {
		return
	}

	out, err := h.recordings.ListBySession(c.Request.Context(), sessionID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recordings": out})
}

// authorized passes candidates through (their token scope was already
// checked) and requires campaign ownership from recruiters.
func (h *SessionHandler) authorized(c *gin.Context, userID, campaignID string) bool {
	if _, isCandidate := c.Get("token_session_id"); isCandidate {
		return true
	}

	campaign, err := h.campaigns.Get(c.Request.Context(), campaignID)
	if err != nil {
		writeError(c, err)
		return false
	}
	if campaign.OwnerID != userID {
		writeError(c, utils.E(utils.CodeForbidden, "SessionHandler", "forbidden", nil))
		return false
	}
	return true
}
