package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/hirevox/hirevox/internal/api/handlers"
	"github.com/hirevox/hirevox/internal/api/middleware"
)

type Deps struct {
	Auth     *handlers.AuthHandler
	Campaign *handlers.CampaignHandler
	Invite   *handlers.InviteHandler
	Session  *handlers.SessionHandler
	WS       *handlers.WSHandler
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	// Health-ish
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Public: recruiter auth and invite redemption
	r.POST("/auth/register", d.Auth.Register)
	r.POST("/auth/login", d.Auth.Login)
	r.POST("/invites/:invite_id/redeem", d.Invite.Redeem)

	// Recruiter console (JWT + role)
	console := r.Group("/")
	console.Use(middleware.JWTAuth(), middleware.RequireRecruiter())

	console.POST("/campaigns", d.Campaign.Create)
	console.GET("/campaigns", d.Campaign.List)
	console.GET("/campaigns/:campaign_id", d.Campaign.Get)
	console.POST("/campaigns/:campaign_id/documents", d.Campaign.AddDocument)
	console.POST("/campaigns/:campaign_id/invites", d.Campaign.CreateInvite)
	console.GET("/campaigns/:campaign_id/invites", d.Campaign.ListInvites)

	console.POST("/sessions/:session_id/report", d.Session.ExportReport)
	console.GET("/sessions/:session_id/recordings", d.Session.ListRecordings)

	// Shared: recruiters see their campaigns' sessions, candidates their own
	auth := r.Group("/")
	auth.Use(middleware.JWTAuth())

	auth.GET("/sessions/:session_id", d.Session.Get)
	auth.GET("/sessions/:session_id/snapshot", d.Session.Snapshot)
	auth.POST("/sessions/:session_id/recordings", d.Session.UploadRecording)

	// WebSocket (candidate live channel)
	auth.GET("/ws/sessions/:session_id", d.WS.SessionWS)
}
