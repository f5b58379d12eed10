package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/openquiz/quiz-service/internal/auth"
	"github.com/openquiz/quiz-service/internal/repositories"
	"github.com/openquiz/quiz-service/internal/services"
	"github.com/openquiz/quiz-service/internal/utils"
)

type HandlerManager struct {
	authHandler   *AuthHandler
	quizHandler   *QuizHandler
	resultHandler *ResultHandler
	verifier      auth.TokenVerifier
	repo          repositories.Repository
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	repo repositories.Repository,
	verifier auth.TokenVerifier,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		authHandler:   NewAuthHandler(serviceManager.Auth(), logger),
		quizHandler:   NewQuizHandler(serviceManager.Quiz(), logger),
		resultHandler: NewResultHandler(serviceManager.Result(), logger),
		verifier:      verifier,
		repo:          repo,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", hm.healthCheck)

	router.POST("/register", hm.authHandler.Register)
	router.POST("/login", hm.authHandler.Login)

	api := router.Group("/api")
	{
		// Browsing and the leaderboard are public.
		api.GET("/quizzes", hm.quizHandler.ListQuizzes)
		api.GET("/leaderboard", hm.resultHandler.Leaderboard)

		authed := api.Group("")
		authed.Use(AuthMiddleware(hm.verifier))
		{
			authed.GET("/quiz/:id", hm.quizHandler.GetQuiz)
			authed.POST("/quiz/:id/submit", hm.resultHandler.SubmitQuiz)
			authed.GET("/user/stats", hm.resultHandler.UserStats)

			// Catalog maintenance.
			authed.POST("/quizzes", hm.quizHandler.CreateQuiz)
			authed.DELETE("/quiz/:id", hm.quizHandler.DeleteQuiz)
		}
	}
}

// healthCheck reports healthy only when the store answers a ping.
func (hm *HandlerManager) healthCheck(c *gin.Context) {
	if err := hm.repo.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unhealthy",
			"service": "quiz-service",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "quiz-service",
	})
}
