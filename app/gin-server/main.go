package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/hirevox/hirevox/config"
	"github.com/hirevox/hirevox/internal/api/handlers"
	"github.com/hirevox/hirevox/internal/api/middleware"
	"github.com/hirevox/hirevox/internal/api/routes"
	"github.com/hirevox/hirevox/internal/cache"
	"github.com/hirevox/hirevox/internal/insight"
	"github.com/hirevox/hirevox/internal/logger"
	"github.com/hirevox/hirevox/internal/models"
	"github.com/hirevox/hirevox/internal/providers/llm"
	"github.com/hirevox/hirevox/internal/providers/stt"
	mongorepo "github.com/hirevox/hirevox/internal/repositories/mongo"
	pgrepo "github.com/hirevox/hirevox/internal/repositories/postgres"
	"github.com/hirevox/hirevox/internal/services"
	"github.com/hirevox/hirevox/internal/storage"
	"github.com/hirevox/hirevox/internal/workers"
)

func main() {
	_ = godotenv.Load()

	lg := logger.New()
	ctx := context.Background()

	if err := config.InitMongo(); err != nil {
		log.Fatalf("MongoDB init error: %v", err)
	}
	lg.Info("MongoDB connected")

	if err := config.InitPostgres(); err != nil {
		log.Fatalf("PostgreSQL init error: %v", err)
	}
	if err := config.MigratePostgres(&models.Recruiter{}, &models.Campaign{}, &models.Invite{}, &models.ContextDoc{}); err != nil {
		log.Fatalf("PostgreSQL migrate error: %v", err)
	}
	lg.Info("PostgreSQL connected")

	if err := config.InitRedis(); err != nil {
		log.Fatalf("Redis init error: %v", err)
	}
	lg.Info("Redis connected")

	if err := config.EnsureMongoIndexes(); err != nil {
		log.Fatalf("Mongo index error: %v", err)
	}

	mongoDB := config.MongoClient.Database(config.MongoDBName())

	// Providers. The insight engine degrades to its rules path when no
	// cloud model is configured, so every provider here is optional.
	var provider llm.Provider
	var embedder llm.Embedder
	llmMode := insight.ModeRules

	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		oai := llm.NewOpenAI(key, os.Getenv("OPENAI_MODEL"))
		provider = oai
		embedder = oai
		llmMode = insight.ModeCloud
	} else if project := os.Getenv("VERTEX_PROJECT_ID"); project != "" {
		vg, err := llm.NewVertexGemini(ctx, project, os.Getenv("VERTEX_LOCATION"), os.Getenv("VERTEX_MODEL"))
		if err != nil {
			log.Fatalf("Vertex init error: %v", err)
		}
		provider = vg
		llmMode = insight.ModeCloud
	} else {
		lg.Warn("no LLM provider configured, insights use the rules path only")
	}

	var uploader storage.Uploader
	if bucket := os.Getenv("GCS_BUCKET"); bucket != "" {
		up, err := storage.NewGCSUploader(ctx, bucket)
		if err != nil {
			log.Fatalf("GCS init error: %v", err)
		}
		uploader = up
	}

	var sttProvider stt.Provider
	if os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") != "" {
		sp, err := stt.NewGoogleSpeech(ctx)
		if err != nil {
			log.Fatalf("Speech init error: %v", err)
		}
		sttProvider = sp
	}

	// Repositories
	recruiterRepo := pgrepo.NewRecruiterRepo(config.PostgresDB)
	campaignRepo := pgrepo.NewCampaignRepo(config.PostgresDB)
	inviteRepo := pgrepo.NewInviteRepo(config.PostgresDB)
	contextDocRepo := pgrepo.NewContextDocRepo(config.PostgresDB)
	sessionRepo := mongorepo.NewSessionRepo(mongoDB)
	recordingRepo := mongorepo.NewRecordingRepo(mongoDB)

	// Services
	engine := insight.NewEngine(provider, lg)
	authSvc := services.NewAuthService(recruiterRepo)
	campaignSvc := services.NewCampaignService(campaignRepo, cache.NewRedisCache(config.RedisClient))
	inviteSvc := services.NewInviteService(inviteRepo)
	docSvc := services.NewContextDocService(contextDocRepo, embedder)
	recordingSvc := services.NewRecordingService(recordingRepo, config.RedisClient)
	interviewSvc := services.NewInterviewService(
		sessionRepo, campaignSvc, contextDocRepo,
		engine, embedder, uploader, config.RedisClient, llmMode, lg,
	)

	// Recheck workers only run when server-side transcription is available
	if sttProvider != nil {
		pool := &workers.RecordingWorkerPool{
			Redis:      config.RedisClient,
			Recordings: recordingRepo,
			Sessions:   sessionRepo,
			STT:        sttProvider,
			Uploader:   uploader,
			Logger:     lg,
			Stream:     services.RecordingStream,
		}
		if err := pool.Start(ctx); err != nil {
			log.Fatalf("worker pool error: %v", err)
		}
		lg.Info("recording workers started")
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(lg))

	routes.RegisterRoutes(r, routes.Deps{
		Auth:     handlers.NewAuthHandler(authSvc),
		Campaign: handlers.NewCampaignHandler(campaignSvc, inviteSvc, docSvc),
		Invite:   handlers.NewInviteHandler(inviteSvc, campaignSvc, interviewSvc),
		Session:  handlers.NewSessionHandler(interviewSvc, campaignSvc, recordingSvc),
		WS:       handlers.NewWSHandler(interviewSvc, recordingSvc, config.RedisClient),
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
