package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/attestly/attest-backend/internal/config"
	"github.com/attestly/attest-backend/internal/handler"
	"github.com/attestly/attest-backend/internal/middleware"
	"github.com/attestly/attest-backend/internal/response"
	"github.com/attestly/attest-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth   *handler.AuthHandler
	Portal *handler.PortalHandler
	Review *handler.ReviewHandler
	WS     *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for auth routes (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/participant/login", handlers.Auth.ParticipantLogin)
		auth.POST("/instructor/login", handlers.Auth.InstructorLogin)

		// Authenticated profile routes
		auth.POST("/participant/logout", middleware.RequireParticipantJWT(authService), handlers.Auth.ParticipantLogout)
		auth.GET("/participant/me", middleware.RequireParticipantJWT(authService), handlers.Auth.GetParticipantProfile)
		auth.GET("/instructor/me", middleware.RequireInstructorJWT(authService), handlers.Auth.GetInstructorProfile)
	}

	// ─── 2. Participant Group (JWT + Single Device) ────────────────────
	participantAPI := router.Group("/api/v1/participant")
	participantAPI.Use(
		middleware.RequireParticipantJWT(authService),
		middleware.CheckSingleDeviceLogin(authService),
	)
	{
		participantAPI.POST("/assessments/:assessment_id/access", handlers.Portal.ValidateAccess)
		participantAPI.POST("/assessments/:assessment_id/join", handlers.Portal.JoinAssessment)

		participantAPI.POST("/sessions/:session_id/start", handlers.Portal.StartSession)
		participantAPI.GET("/sessions/:session_id/timer", handlers.Portal.GetTimer)
		participantAPI.POST("/sessions/:session_id/complete", handlers.Portal.CompleteSession)

		participantAPI.GET("/sessions/:session_id/questions", handlers.Portal.ListQuestions)
		participantAPI.GET("/sessions/:session_id/questions/:question_id", handlers.Portal.GetQuestion)
		participantAPI.PUT("/sessions/:session_id/questions/:question_id/answer", handlers.Portal.SubmitAnswer)
		participantAPI.GET("/sessions/:session_id/answers", handlers.Portal.ListAnswers)

		participantAPI.PUT("/sessions/:session_id/questions/:question_id/flag", handlers.Portal.SetFlag)
		participantAPI.GET("/sessions/:session_id/flags", handlers.Portal.GetFlags)
	}

	// ─── 3. WebSocket Group (Participant WS Auth) ──────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireParticipantWSAuth(authService))
	{
		ws.GET("/sessions/:session_id/timer", handlers.WS.TimerStream)
	}

	// ─── 4. Instructor Group (JWT) ─────────────────────────────────────
	instructorAPI := router.Group("/api/v1/instructor")
	instructorAPI.Use(middleware.RequireInstructorJWT(authService))
	{
		instructorAPI.POST("/assessments/:assessment_id/sweep", handlers.Review.SweepAssessment)
		instructorAPI.GET("/assessments/:assessment_id/results", handlers.Review.ListResults)
		instructorAPI.PUT("/sessions/:session_id/questions/:question_id/review", handlers.Review.ReviewAnswer)
	}

	return router
}
