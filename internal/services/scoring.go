package services

import (
	"math"
	"strconv"
	"strings"

	"github.com/openquiz/quiz-service/internal/models"
)

// The scoring engine is a pure function over a quiz's questions and a
// submitted answer set. It never errors: missing answers simply earn no
// points, and a quiz with no scorable points grades to zero percent.

// AnswerKey returns the key under which a question's answer is expected in
// a submitted answer set. Submissions arrive as JSON objects, so keys are
// the question ids in decimal string form.
func AnswerKey(questionID uint) string {
	return strconv.FormatUint(uint64(questionID), 10)
}

// ScoreQuiz grades answers against questions. A question earns its full
// point value on an exact match after normalization and zero otherwise;
// there is no partial credit. totalPossible is the sum of all questions'
// point values regardless of which were answered.
func ScoreQuiz(questions []models.Question, answers map[string]string) (score, totalPossible int) {
	for _, q := range questions {
		totalPossible += q.Points

		submitted, ok := answers[AnswerKey(q.ID)]
		if !ok {
			continue
		}
		if normalizeAnswer(submitted) == normalizeAnswer(q.CorrectAnswer) {
			score += q.Points
		}
	}
	return score, totalPossible
}

// normalizeAnswer makes matching case- and surrounding-whitespace-insensitive.
func normalizeAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Percentage returns score over totalPossible as a percentage rounded to
// two decimal places, or zero when there are no points to earn.
func Percentage(score, totalPossible int) float64 {
	if totalPossible <= 0 {
		return 0
	}
	return math.Round(float64(score)/float64(totalPossible)*10000) / 100
}
