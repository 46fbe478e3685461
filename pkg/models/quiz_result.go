package models

import "time"

// QuizResult tracks the outcome of a completed quiz session. Results are
// append-only; active sessions live in memory and are never persisted.
type QuizResult struct {
	ID             int       `json:"id" db:"id"`
	UserID         string    `json:"user_id" db:"user_id"`
	TotalQuestions int       `json:"total_questions" db:"total_questions"`
	CorrectAnswers int       `json:"correct_answers" db:"correct_answers"`
	Subject        string    `json:"subject" db:"subject"`
	Difficulty     string    `json:"difficulty" db:"difficulty"`
	TakenAt        time.Time `json:"taken_at" db:"taken_at"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}
