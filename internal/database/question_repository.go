package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/example/quizbot/pkg/models"
)

// ErrNoCandidates is returned when a selection query matches no rows.
// Callers decide whether to relax filters and retry or to surface the miss.
var ErrNoCandidates = errors.New("no matching questions")

// Filters holds optional equality constraints for question selection.
// An empty value or "All" leaves the field unconstrained.
type Filters struct {
	Subject      string
	Difficulty   string
	QuestionType string
}

// StoreStats summarizes the question corpus
type StoreStats struct {
	TotalQuestions     int
	SubjectCounts      map[string]int
	DifficultyCounts   map[string]int
	QuestionTypeCounts map[string]int
}

// QuestionRepository handles database operations for questions
type QuestionRepository struct{}

// NewQuestionRepository creates a new repository instance
func NewQuestionRepository() *QuestionRepository {
	return &QuestionRepository{}
}

const questionColumns = "id, question_text, answer_text, explanation_text, subject, raw_subject, difficulty, question_type, image, created_at"

// applyFilters appends equality clauses for every constrained field
func applyFilters(clauses []string, args []interface{}, f Filters) ([]string, []interface{}) {
	if f.Subject != "" && f.Subject != "All" {
		clauses = append(clauses, "AND subject = ?")
		args = append(args, f.Subject)
	}
	if f.Difficulty != "" && f.Difficulty != "All" {
		clauses = append(clauses, "AND difficulty = ?")
		args = append(args, f.Difficulty)
	}
	if f.QuestionType != "" && f.QuestionType != "All" {
		clauses = append(clauses, "AND question_type = ?")
		args = append(args, f.QuestionType)
	}
	return clauses, args
}

// Random returns up to limit uniformly random questions matching the filters.
func (r *QuestionRepository) Random(f Filters, limit int) ([]models.Question, error) {
	clauses := []string{"SELECT " + questionColumns + " FROM questions WHERE 1=1"}
	var args []interface{}

	clauses, args = applyFilters(clauses, args, f)
	clauses = append(clauses, "ORDER BY RANDOM() LIMIT ?")
	args = append(args, limit)

	query := DB.Rebind(strings.Join(clauses, " "))

	var questions []models.Question
	if err := DB.Select(&questions, query, args...); err != nil {
		return nil, fmt.Errorf("failed to select random questions: %v", err)
	}
	if len(questions) == 0 {
		return nil, ErrNoCandidates
	}
	return questions, nil
}

// RandomOne returns one uniformly random question matching the filters,
// omitting excludeIDs and, when minLen/maxLen are positive, restricting
// the character length of the question text (bounds are inclusive).
func (r *QuestionRepository) RandomOne(f Filters, excludeIDs []string, minLen, maxLen int) (*models.Question, error) {
	clauses := []string{"SELECT " + questionColumns + " FROM questions WHERE 1=1"}
	var args []interface{}

	clauses, args = applyFilters(clauses, args, f)

	if len(excludeIDs) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(excludeIDs)), ",")
		clauses = append(clauses, "AND id NOT IN ("+placeholders+")")
		for _, id := range excludeIDs {
			args = append(args, id)
		}
	}

	if minLen > 0 {
		clauses = append(clauses, "AND LENGTH(question_text) >= ?")
		args = append(args, minLen)
	}
	if maxLen > 0 {
		clauses = append(clauses, "AND LENGTH(question_text) <= ?")
		args = append(args, maxLen)
	}

	clauses = append(clauses, "ORDER BY RANDOM() LIMIT 1")
	query := DB.Rebind(strings.Join(clauses, " "))

	var question models.Question
	err := DB.Get(&question, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoCandidates
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select random question: %v", err)
	}
	return &question, nil
}

// GetByID returns a question by its identifier
func (r *QuestionRepository) GetByID(id string) (*models.Question, error) {
	var question models.Question
	query := DB.Rebind("SELECT " + questionColumns + " FROM questions WHERE id = ?")
	err := DB.Get(&question, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoCandidates
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get question by ID: %v", err)
	}
	return &question, nil
}

// Count returns the total number of stored questions
func (r *QuestionRepository) Count() (int, error) {
	var count int
	if err := DB.Get(&count, "SELECT COUNT(*) FROM questions"); err != nil {
		return 0, fmt.Errorf("failed to count questions: %v", err)
	}
	return count, nil
}

// BulkInsert stores the given questions, silently skipping ids that are
// already present. Returns the number of newly inserted rows.
func (r *QuestionRepository) BulkInsert(questions []models.Question) (int, error) {
	insert := `
		INSERT INTO questions (id, question_text, answer_text, explanation_text, subject, raw_subject, difficulty, question_type, image)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	if DB.DriverName() == "postgres" {
		insert = DB.Rebind(insert) + " ON CONFLICT (id) DO NOTHING"
	} else {
		insert = strings.Replace(insert, "INSERT", "INSERT OR IGNORE", 1)
	}

	tx, err := DB.Beginx()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %v", err)
	}

	inserted := 0
	for _, q := range questions {
		res, err := tx.Exec(insert,
			q.ID,
			q.QuestionText,
			q.AnswerText,
			q.Explanation,
			q.Subject,
			q.RawSubject,
			q.Difficulty,
			q.QuestionType,
			q.Image,
		)
		if err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("failed to insert question %s: %v", q.ID, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit insert: %v", err)
	}
	return inserted, nil
}

// Subjects returns the distinct canonical subjects present in the store
func (r *QuestionRepository) Subjects() ([]string, error) {
	var subjects []string
	err := DB.Select(&subjects, "SELECT DISTINCT subject FROM questions ORDER BY subject")
	if err != nil {
		return nil, fmt.Errorf("failed to get subjects: %v", err)
	}
	return subjects, nil
}

// QuestionTypes returns the distinct question types present in the store
func (r *QuestionRepository) QuestionTypes() ([]string, error) {
	var types []string
	err := DB.Select(&types, "SELECT DISTINCT question_type FROM questions ORDER BY question_type")
	if err != nil {
		return nil, fmt.Errorf("failed to get question types: %v", err)
	}
	return types, nil
}

// Difficulties returns the distinct difficulty labels present in the store
func (r *QuestionRepository) Difficulties() ([]string, error) {
	var difficulties []string
	err := DB.Select(&difficulties, "SELECT DISTINCT difficulty FROM questions ORDER BY difficulty")
	if err != nil {
		return nil, fmt.Errorf("failed to get difficulties: %v", err)
	}
	return difficulties, nil
}

// Stats returns aggregate counts over the question corpus
func (r *QuestionRepository) Stats() (*StoreStats, error) {
	stats := &StoreStats{
		SubjectCounts:      make(map[string]int),
		DifficultyCounts:   make(map[string]int),
		QuestionTypeCounts: make(map[string]int),
	}

	total, err := r.Count()
	if err != nil {
		return nil, err
	}
	stats.TotalQuestions = total

	groups := []struct {
		column string
		dest   map[string]int
	}{
		{"subject", stats.SubjectCounts},
		{"difficulty", stats.DifficultyCounts},
		{"question_type", stats.QuestionTypeCounts},
	}
	for _, g := range groups {
		rows, err := DB.Query("SELECT " + g.column + ", COUNT(*) FROM questions GROUP BY " + g.column + " ORDER BY COUNT(*) DESC")
		if err != nil {
			return nil, fmt.Errorf("failed to get %s counts: %v", g.column, err)
		}
		for rows.Next() {
			var label string
			var count int
			if err := rows.Scan(&label, &count); err != nil {
				rows.Close()
				return nil, fmt.Errorf("failed to scan %s count: %v", g.column, err)
			}
			g.dest[label] = count
		}
		rows.Close()
	}

	return stats, nil
}
