package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/openquiz/quiz-service/internal/repositories"
	"github.com/xuri/excelize/v2"
)

// The catalog travels as a single "Quizzes" sheet with one row per
// question; consecutive rows sharing a quiz title belong to one quiz.
// Option lists are pipe-separated.

const catalogSheet = "Quizzes"

var catalogHeader = []string{
	"quiz_title", "description", "category", "difficulty", "time_limit",
	"question_text", "question_type", "options", "correct_answer", "points", "order",
}

type catalogExchangeService struct {
	repo   repositories.Repository
	quiz   QuizService
	logger *slog.Logger
}

func NewCatalogExchangeService(repo repositories.Repository, quiz QuizService, logger *slog.Logger) CatalogExchangeService {
	return &catalogExchangeService{
		repo:   repo,
		quiz:   quiz,
		logger: logger,
	}
}

// ===== EXPORT =====

func (s *catalogExchangeService) ExportQuizzes(ctx context.Context) ([]byte, error) {
	quizzes, err := s.repo.Quiz().List(ctx, repositories.QuizFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(catalogSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	header := make([]interface{}, len(catalogHeader))
	for i, h := range catalogHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(catalogSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	row := 2
	for _, quiz := range quizzes {
		detail := buildQuizDetail(quiz, s.logger)
		description := ""
		if detail.Description != nil {
			description = *detail.Description
		}
		for _, q := range detail.Questions {
			cells := []interface{}{
				detail.Title,
				description,
				detail.Category,
				string(detail.Difficulty),
				detail.TimeLimit,
				q.Text,
				string(q.Type),
				strings.Join(q.Options, "|"),
				"", // answers are re-read from the store below
				q.Points,
				q.Order,
			}
			if err := f.SetSheetRow(catalogSheet, fmt.Sprintf("A%d", row), &cells); err != nil {
				return nil, fmt.Errorf("failed to write row %d: %w", row, err)
			}
			row++
		}
	}

	// QuestionView withholds correct answers by design, so fill that
	// column from the model rows directly.
	row = 2
	for _, quiz := range quizzes {
		for _, q := range quiz.Questions {
			cell := fmt.Sprintf("I%d", row)
			if err := f.SetCellValue(catalogSheet, cell, q.CorrectAnswer); err != nil {
				return nil, fmt.Errorf("failed to write answer cell %s: %w", cell, err)
			}
			row++
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}

	s.logger.Info("Catalog exported", "quizzes", len(quizzes), "rows", row-2)
	return buf.Bytes(), nil
}

// ===== IMPORT =====

func (s *catalogExchangeService) ImportQuizzes(ctx context.Context, reader io.Reader) (*ImportResult, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(catalogSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", catalogSheet, err)
	}
	if len(rows) < 2 {
		return nil, NewValidationError("file", "sheet must have a header row and at least one data row", len(rows))
	}

	headerMap := make(map[string]int)
	for i, h := range rows[0] {
		headerMap[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range []string{"quiz_title", "category", "difficulty", "question_text", "question_type", "correct_answer"} {
		if _, ok := headerMap[col]; !ok {
			return nil, NewValidationError("headers", fmt.Sprintf("missing required column: %s", col), col)
		}
	}

	result := &ImportResult{TotalRows: len(rows) - 1}

	var current *CreateQuizRequest
	flush := func() {
		if current == nil {
			return
		}
		if _, err := s.quiz.Create(ctx, current); err != nil {
			result.ErrorCount++
			result.Errors = append(result.Errors, *NewValidationError("quiz", err.Error(), current.Title))
		} else {
			result.QuizzesCreated++
		}
		current = nil
	}

	for rowIndex, row := range rows[1:] {
		cell := func(name string) string {
			idx, ok := headerMap[name]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		title := cell("quiz_title")
		if title == "" {
			result.ErrorCount++
			result.Errors = append(result.Errors, *NewValidationError("quiz_title", "is required", rowIndex+2))
			continue
		}

		if current == nil || current.Title != title {
			flush()
			current = &CreateQuizRequest{
				Title:      title,
				Category:   cell("category"),
				Difficulty: cell("difficulty"),
				TimeLimit:  parseIntCell(cell("time_limit")),
			}
			if description := cell("description"); description != "" {
				current.Description = &description
			}
		}

		question := CreateQuestionRequest{
			Text:          cell("question_text"),
			Type:          cell("question_type"),
			CorrectAnswer: cell("correct_answer"),
			Points:        parseIntCell(cell("points")),
			Order:         parseIntCell(cell("order")),
		}
		if question.Points == 0 {
			question.Points = 1
		}
		if options := cell("options"); options != "" {
			question.Options = strings.Split(options, "|")
		}
		current.Questions = append(current.Questions, question)
	}
	flush()

	s.logger.Info("Catalog import completed",
		"total_rows", result.TotalRows,
		"quizzes_created", result.QuizzesCreated,
		"error_count", result.ErrorCount)

	return result, nil
}

func parseIntCell(raw string) int {
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}
