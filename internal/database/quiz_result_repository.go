package database

import (
	"fmt"
	"time"

	"github.com/example/quizbot/pkg/models"
)

// QuizResultRepository handles database operations for finished quizzes
type QuizResultRepository struct{}

// NewQuizResultRepository creates a new repository instance
func NewQuizResultRepository() *QuizResultRepository {
	return &QuizResultRepository{}
}

// Create appends a quiz result to the log
func (r *QuizResultRepository) Create(result *models.QuizResult) error {
	if result.TakenAt.IsZero() {
		result.TakenAt = time.Now()
	}

	query := DB.Rebind(`
		INSERT INTO quiz_results (user_id, total_questions, correct_answers, subject, difficulty, taken_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	res, err := DB.Exec(query,
		result.UserID,
		result.TotalQuestions,
		result.CorrectAnswers,
		result.Subject,
		result.Difficulty,
		result.TakenAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create quiz result: %v", err)
	}

	if id, err := res.LastInsertId(); err == nil {
		result.ID = int(id)
	}
	return nil
}

// GetByUserID returns a user's quiz history, newest first
func (r *QuizResultRepository) GetByUserID(userID string, limit int) ([]models.QuizResult, error) {
	var results []models.QuizResult
	query := DB.Rebind("SELECT * FROM quiz_results WHERE user_id = ? ORDER BY taken_at DESC LIMIT ?")
	err := DB.Select(&results, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz results: %v", err)
	}
	return results, nil
}

// UserTotals returns the number of quizzes a user finished together with
// the total questions seen and total correct answers.
func (r *QuizResultRepository) UserTotals(userID string) (quizzes, questions, correct int, err error) {
	query := DB.Rebind(`
		SELECT COUNT(*), COALESCE(SUM(total_questions), 0), COALESCE(SUM(correct_answers), 0)
		FROM quiz_results WHERE user_id = ?
	`)
	err = DB.QueryRow(query, userID).Scan(&quizzes, &questions, &correct)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to get user totals: %v", err)
	}
	return quizzes, questions, correct, nil
}
