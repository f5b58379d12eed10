package services

import (
	"log/slog"

	"github.com/openquiz/quiz-service/internal/auth"
	"github.com/openquiz/quiz-service/internal/cache"
	"github.com/openquiz/quiz-service/internal/events"
	"github.com/openquiz/quiz-service/internal/repositories"
	"github.com/openquiz/quiz-service/internal/validator"
)

type serviceManager struct {
	auth    AuthService
	quiz    QuizService
	result  ResultService
	catalog CatalogExchangeService
}

func NewServiceManager(
	repo repositories.Repository,
	logger *slog.Logger,
	validator *validator.Validator,
	tokens auth.TokenIssuer,
	leaderboard cache.LeaderboardCache,
	publisher events.Publisher,
) ServiceManager {
	quiz := NewQuizService(repo, logger, validator)
	return &serviceManager{
		auth:    NewAuthService(repo, logger, validator, tokens),
		quiz:    quiz,
		result:  NewResultService(repo, logger, validator, leaderboard, publisher),
		catalog: NewCatalogExchangeService(repo, quiz, logger),
	}
}

func (m *serviceManager) Auth() AuthService               { return m.auth }
func (m *serviceManager) Quiz() QuizService               { return m.quiz }
func (m *serviceManager) Result() ResultService           { return m.result }
func (m *serviceManager) Catalog() CatalogExchangeService { return m.catalog }
