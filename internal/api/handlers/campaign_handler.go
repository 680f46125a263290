package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hirevox/hirevox/internal/models"
	"github.com/hirevox/hirevox/internal/services"
	"github.com/hirevox/hirevox/internal/utils"
)

type CampaignHandler struct {
	campaigns services.CampaignService
	invites   services.InviteService
	docs      services.ContextDocService
}

func NewCampaignHandler(campaigns services.CampaignService, invites services.InviteService, docs services.ContextDocService) *CampaignHandler {
	return &CampaignHandler{campaigns: campaigns, invites: invites, docs: docs}
}

type CreateCampaignRequest struct {
	Name         string            `json:"name" binding:"required"`
	Role         string            `json:"role"`
	Language     string            `json:"language"`
	Voice        string            `json:"voice"`
	Mode         string            `json:"mode" binding:"required"` // structured|conversational
	TokenSoftCap int               `json:"token_soft_cap"`
	Questions    []models.Question `json:"questions"`
}

func (h *CampaignHandler) Create(c *gin.Context) {
	ownerID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "CampaignHandler.Create", "invalid request body", err))
		return
	}

	campaign, err := h.campaigns.Create(c.Request.Context(), ownerID, req.Name, req.Role, req.Language, req.Voice,
		models.InterviewMode(req.Mode), req.TokenSoftCap, req.Questions)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, campaign)
}

func (h *CampaignHandler) List(c *gin.Context) {
	ownerID, ok := requireUserID(c)
	if !ok {
		return
	}

	out, err := h.campaigns.ListByOwner(c.Request.Context(), ownerID, 100)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"campaigns": out})
}

func (h *CampaignHandler) Get(c *gin.Context) {
	ownerID, ok := requireUserID(c)
	if !ok {
		return
	}

	campaign, err := h.ownedCampaign(c, ownerID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, campaign)
}

type AddDocumentRequest struct {
	Title    string   `json:"title"`
	Content  string   `json:"content" binding:"required"`
	Keywords []string `json:"keywords"`
}

func (h *CampaignHandler) AddDocument(c *gin.Context) {
	ownerID, ok := requireUserID(c)
	if !ok {
		return
	}

	campaign, err := h.ownedCampaign(c, ownerID)
	if err != nil {
		writeError(c, err)
		return
	}

	var req AddDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "CampaignHandler.AddDocument", "invalid request body", err))
		return
	}

	doc, err := h.docs.Add(c.Request.Context(), campaign.ID, req.Title, req.Content, req.Keywords)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

type CreateInviteRequest struct {
	CandidateName  string `json:"candidate_name"`
	CandidateEmail string `json:"candidate_email" binding:"required"`
	TTLHours       int    `json:"ttl_hours"`
}

type CreateInviteResponse struct {
	InviteID  string `json:"invite_id"`
	Token     string `json:"token"` // shown once, never stored
	ExpiresAt string `json:"expires_at"`
}

func (h *CampaignHandler) CreateInvite(c *gin.Context) {
	ownerID, ok := requireUserID(c)
	if !ok {
		return
	}

	campaign, err := h.ownedCampaign(c, ownerID)
	if err != nil {
		writeError(c, err)
		return
	}

	var req CreateInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "CampaignHandler.CreateInvite", "invalid request body", err))
		return
	}

	inv, raw, err := h.invites.Create(c.Request.Context(), campaign.ID, req.CandidateName, req.CandidateEmail,
		time.Duration(req.TTLHours)*time.Hour)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, CreateInviteResponse{
		InviteID:  inv.ID,
		Token:     raw,
		ExpiresAt: inv.ExpiresAt.Format(time.RFC3339),
	})
}

func (h *CampaignHandler) ListInvites(c *gin.Context) {
	ownerID, ok := requireUserID(c)
	if !ok {
		return
	}

	campaign, err := h.ownedCampaign(c, ownerID)
	if err != nil {
		writeError(c, err)
		return
	}

	out, err := h.invites.ListByCampaign(c.Request.Context(), campaign.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invites": out})
}

func (h *CampaignHandler) ownedCampaign(c *gin.Context, ownerID string) (*models.Campaign, error) {
	campaign, err := h.campaigns.Get(c.Request.Context(), c.Param("campaign_id"))
	if err != nil {
		return nil, err
	}
	if campaign.OwnerID != ownerID {
		return nil, utils.E(utils.CodeForbidden, "CampaignHandler", "forbidden", nil)
	}
	return campaign, nil
}
