package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/openquiz/quiz-service/internal/models"
	"github.com/openquiz/quiz-service/internal/repositories"
	"github.com/openquiz/quiz-service/internal/validator"
	"gorm.io/datatypes"
)

type quizService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewQuizService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) QuizService {
	return &quizService{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

func (s *quizService) List(ctx context.Context, req *ListQuizzesRequest) ([]*QuizSummary, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	filters := repositories.QuizFilters{Category: req.Category}
	if req.Difficulty != nil {
		difficulty := models.DifficultyLevel(*req.Difficulty)
		filters.Difficulty = &difficulty
	}

	quizzes, err := s.repo.Quiz().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list quizzes: %w", err)
	}

	summaries := make([]*QuizSummary, len(quizzes))
	for i, quiz := range quizzes {
		summaries[i] = &QuizSummary{
			ID:            quiz.ID,
			Title:         quiz.Title,
			Description:   quiz.Description,
			Category:      quiz.Category,
			Difficulty:    quiz.Difficulty,
			TimeLimit:     quiz.TimeLimit,
			QuestionCount: len(quiz.Questions),
		}
	}
	return summaries, nil
}

func (s *quizService) Get(ctx context.Context, id uint) (*QuizDetail, error) {
	quiz, err := s.repo.Quiz().GetByIDWithQuestions(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}
	return buildQuizDetail(quiz, s.logger), nil
}

func (s *quizService) Create(ctx context.Context, req *CreateQuizRequest) (*QuizDetail, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	quiz := &models.Quiz{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Difficulty:  models.DifficultyLevel(req.Difficulty),
		TimeLimit:   req.TimeLimit,
	}
	if quiz.TimeLimit == 0 {
		quiz.TimeLimit = 300
	}

	// When no question in the request carries an explicit order, positions
	// follow request order. Otherwise the given orders are kept verbatim,
	// including an explicit zero.
	orderProvided := false
	for _, q := range req.Questions {
		if q.Order != 0 {
			orderProvided = true
			break
		}
	}

	for i, q := range req.Questions {
		question := models.Question{
			Text:          q.Text,
			Type:          models.QuestionType(q.Type),
			CorrectAnswer: q.CorrectAnswer,
			Points:        q.Points,
			Position:      q.Order,
		}
		if !orderProvided {
			question.Position = i
		}
		if len(q.Options) > 0 {
			options, err := json.Marshal(q.Options)
			if err != nil {
				return nil, fmt.Errorf("failed to encode options: %w", err)
			}
			question.Options = datatypes.JSON(options)
		}
		quiz.Questions = append(quiz.Questions, question)
	}

	if err := s.repo.Quiz().Create(ctx, quiz); err != nil {
		return nil, fmt.Errorf("failed to create quiz: %w", err)
	}

	s.logger.Info("Quiz created",
		"quiz_id", quiz.ID,
		"title", quiz.Title,
		"questions", len(quiz.Questions))

	return buildQuizDetail(quiz, s.logger), nil
}

// Delete removes a quiz and, via the cascade, its questions. Historical
// results referencing the quiz stay in the ledger.
func (s *quizService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Quiz().Delete(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuizNotFound
		}
		return fmt.Errorf("failed to delete quiz: %w", err)
	}

	s.logger.Info("Quiz deleted", "quiz_id", id)
	return nil
}

func buildQuizDetail(quiz *models.Quiz, logger *slog.Logger) *QuizDetail {
	detail := &QuizDetail{
		ID:          quiz.ID,
		Title:       quiz.Title,
		Description: quiz.Description,
		Category:    quiz.Category,
		Difficulty:  quiz.Difficulty,
		TimeLimit:   quiz.TimeLimit,
		Questions:   make([]QuestionView, len(quiz.Questions)),
	}

	for i, q := range quiz.Questions {
		view := QuestionView{
			ID:     q.ID,
			Text:   q.Text,
			Type:   q.Type,
			Points: q.Points,
			Order:  q.Position,
		}
		if len(q.Options) > 0 {
			// Best effort: an unreadable options payload leaves the list
			// empty rather than failing the read.
			if err := json.Unmarshal(q.Options, &view.Options); err != nil {
				logger.Warn("Dropping unreadable question options",
					"question_id", q.ID,
					"error", err)
			}
		}
		detail.Questions[i] = view
	}
	return detail
}
