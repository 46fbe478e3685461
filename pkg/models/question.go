package models

import "time"

// Question represents a stored quiz question. Records are immutable once
// loaded; id is the dataset's opaque unique identifier.
type Question struct {
	ID           string    `json:"id" db:"id"`
	QuestionText string    `json:"question_text" db:"question_text"`
	AnswerText   string    `json:"-" db:"answer_text"`
	Explanation  string    `json:"-" db:"explanation_text"`
	Subject      string    `json:"subject" db:"subject"`
	RawSubject   string    `json:"raw_subject,omitempty" db:"raw_subject"`
	Difficulty   string    `json:"difficulty" db:"difficulty"`
	QuestionType string    `json:"question_type" db:"question_type"`
	Image        string    `json:"image,omitempty" db:"image"` // opaque reference, empty means no image
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
