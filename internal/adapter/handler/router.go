package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dropofflens/dropofflens/internal/infrastructure/http/middleware"
	"github.com/dropofflens/dropofflens/internal/usecase/auth"
	"github.com/dropofflens/dropofflens/pkg/config"
)

// Router holds all handlers
type Router struct {
	cfg             *config.Config
	authService     *auth.Service
	authHandler     *Auth
	uploadHandler   *Upload
	analysisHandler *Analysis
	teamHandler     *Team
	commentHandler  *Comment
}

// NewRouter creates a new router with all handlers
func NewRouter(
	cfg *config.Config,
	authService *auth.Service,
	authHandler *Auth,
	uploadHandler *Upload,
	analysisHandler *Analysis,
	teamHandler *Team,
	commentHandler *Comment,
) *Router {
	return &Router{
		cfg:             cfg,
		authService:     authService,
		authHandler:     authHandler,
		uploadHandler:   uploadHandler,
		analysisHandler: analysisHandler,
		teamHandler:     teamHandler,
		commentHandler:  commentHandler,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", rt.healthCheck)

	api := e.Group("/api")
	requireAuth := middleware.EchoAuth(rt.authService)

	// Auth
	authGroup := api.Group("/auth")
	authGroup.POST("/register", rt.authHandler.Register)
	authGroup.POST("/login", rt.authHandler.Login)
	authGroup.POST("/refresh", rt.authHandler.Refresh)
	authGroup.GET("/user", rt.authHandler.Me, requireAuth)

	// CSV upload stays open: the frontend previews columns before login
	api.POST("/upload-csv", rt.uploadHandler.UploadCSV)

	// Analysis
	api.POST("/analyze-feedback", rt.analysisHandler.Analyze, requireAuth)
	api.GET("/analysis/:id", rt.analysisHandler.Get, requireAuth)
	api.PATCH("/analysis/:id", rt.analysisHandler.Update, requireAuth)
	api.GET("/analysis/:id/pdf", rt.analysisHandler.Export, requireAuth)
	api.GET("/user/analyses", rt.analysisHandler.UserAnalyses, requireAuth)
	api.GET("/user/shared-analyses", rt.analysisHandler.SharedAnalyses, requireAuth)
	api.GET("/teams/:id/analyses", rt.analysisHandler.TeamAnalyses, requireAuth)

	// Teams
	api.POST("/teams", rt.teamHandler.Create, requireAuth)
	api.GET("/teams/:id", rt.teamHandler.Get, requireAuth)
	api.GET("/user/teams", rt.teamHandler.List, requireAuth)
	api.POST("/teams/:id/members", rt.teamHandler.AddMember, requireAuth)
	api.DELETE("/teams/:id/members/:userId", rt.teamHandler.RemoveMember, requireAuth)
	api.PATCH("/teams/:id/members/:userId", rt.teamHandler.UpdateMemberRole, requireAuth)

	// Comments
	api.POST("/analysis/:id/comments", rt.commentHandler.Create, requireAuth)
	api.GET("/analysis/:id/comments", rt.commentHandler.List, requireAuth)
	api.PATCH("/comments/:id", rt.commentHandler.Update, requireAuth)
	api.DELETE("/comments/:id", rt.commentHandler.Delete, requireAuth)
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"time":        time.Now().Format(time.RFC3339),
		"environment": rt.cfg.Server.Environment,
	})
}
