package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hirevox/hirevox/internal/api/middleware"
	"github.com/hirevox/hirevox/internal/services"
	"github.com/hirevox/hirevox/internal/utils"
)

// InviteHandler is the candidate's entry point: redeeming an invite burns
// it, creates the interview session and hands back a session-scoped token.
type InviteHandler struct {
	invites    services.InviteService
	campaigns  services.CampaignService
	interviews services.InterviewService
}

func NewInviteHandler(invites services.InviteService, campaigns services.CampaignService, interviews services.InterviewService) *InviteHandler {
	return &InviteHandler{invites: invites, campaigns: campaigns, interviews: interviews}
}

type RedeemRequest struct {
	Token string `json:"token" binding:"required"`
}

type RedeemResponse struct {
	SessionID     string `json:"session_id"`
	Token         string `json:"token"`
	CampaignName  string `json:"campaign_name"`
	Mode          string `json:"mode"`
	Language      string `json:"language"`
	CandidateName string `json:"candidate_name"`
}

func (h *InviteHandler) Redeem(c *gin.Context) {
	const op = "InviteHandler.Redeem"

	var req RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "invalid request body", err))
		return
	}

	inv, err := h.invites.Redeem(c.Request.Context(), c.Param("invite_id"), req.Token)
	if err != nil {
		writeError(c, err)
		return
	}

	campaign, err := h.campaigns.Get(c.Request.Context(), inv.CampaignID)
	if err != nil {
		writeError(c, err)
		return
	}

	sess, err := h.interviews.Start(c.Request.Context(), campaign, inv)
	if err != nil {
		writeError(c, err)
		return
	}

	token, err := middleware.IssueCandidateToken(inv.ID, sess.SessionID, campaign.ID)
	if err != nil {
		writeError(c, utils.E(utils.CodeInternal, op, "failed to issue session token", err))
		return
	}

	c.JSON(http.StatusOK, RedeemResponse{
		SessionID:     sess.SessionID,
		Token:         token,
		CampaignName:  campaign.Name,
		Mode:          sess.Mode,
		Language:      sess.Language,
		CandidateName: sess.CandidateName,
	})
}
