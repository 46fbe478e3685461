package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/quizbot/internal/database"
	"github.com/example/quizbot/pkg/models"
	"github.com/xuri/excelize/v2"
)

// Sentinel values applied when a column is missing or empty at load time
const (
	DefaultSubject      = "Other"
	DefaultDifficulty   = "Intermediate"
	DefaultQuestionType = "text"
)

// ImportConfig defines the import configuration
type ImportConfig struct {
	FilePath          string // Path to the Excel or CSV file
	IDColumn          string // Column with the question id
	QuestionColumn    string // Column with the question text
	AnswerColumn      string // Column with the answer
	SubjectColumn     string // Column with the canonical subject
	RawSubjectColumn  string // Column with the raw, uncanonicalized subject
	DifficultyColumn  string // Column with the difficulty label
	ExplanationColumn string // Column with the explanation
	TypeColumn        string // Column with the question type
	ImageColumn       string // Column with the image reference
	SheetName         string // Name of the sheet to import
	StartRow          int    // The row to start importing from (1-based index)
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		IDColumn:          "A",
		QuestionColumn:    "B",
		AnswerColumn:      "C",
		SubjectColumn:     "D",
		RawSubjectColumn:  "E",
		DifficultyColumn:  "F",
		ExplanationColumn: "G",
		TypeColumn:        "H",
		ImageColumn:       "I",
		SheetName:         "Sheet1",
		StartRow:          2, // By default, start from the second row (skip header)
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int
	Inserted       int
	Skipped        int
	Errors         []string
}

// ImportQuestions imports question records from an Excel or CSV file. The
// insert is idempotent: rows whose id is already stored are left untouched.
func ImportQuestions(config ImportConfig) (*ImportResult, error) {
	ext := strings.ToLower(filepath.Ext(config.FilePath))
	if ext == ".csv" {
		return importFromCSV(config)
	}
	return importFromExcel(config)
}

// importFromExcel imports questions from an Excel file
func importFromExcel(config ImportConfig) (*ImportResult, error) {
	f, err := excelize.OpenFile(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(config.SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %v", err)
	}

	result := &ImportResult{Errors: make([]string, 0)}
	questions := make([]models.Question, 0, len(rows))

	for i, row := range rows {
		// Skip header rows
		if i < config.StartRow-1 {
			continue
		}
		result.TotalProcessed++

		q, err := questionFromRow(row, config)
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
			continue
		}
		questions = append(questions, q)
	}

	return finishImport(result, questions)
}

// importFromCSV imports questions from a CSV file. Columns follow the same
// order as the Excel defaults: id, question, answer, subject, raw subject,
// difficulty, explanation, type, image.
func importFromCSV(config ImportConfig) (*ImportResult, error) {
	file, err := os.Open(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %v", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true

	result := &ImportResult{Errors: make([]string, 0)}
	var questions []models.Question

	rowNum := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %v", err)
		}
		rowNum++

		// Skip header rows
		if rowNum < config.StartRow {
			continue
		}
		result.TotalProcessed++

		q, err := questionFromRow(row, config)
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
			continue
		}
		questions = append(questions, q)
	}

	return finishImport(result, questions)
}

// finishImport stores the parsed records through the idempotent bulk insert
func finishImport(result *ImportResult, questions []models.Question) (*ImportResult, error) {
	if len(questions) == 0 {
		return result, nil
	}

	repo := database.NewQuestionRepository()
	inserted, err := repo.BulkInsert(questions)
	if err != nil {
		return nil, fmt.Errorf("failed to store questions: %v", err)
	}
	result.Inserted = inserted
	result.Skipped += len(questions) - inserted
	return result, nil
}

// questionFromRow builds a question record from a spreadsheet row,
// applying the sentinel defaults for absent metadata.
func questionFromRow(row []string, config ImportConfig) (models.Question, error) {
	cell := func(column string) string {
		if column == "" {
			return ""
		}
		if idx := columnToIndex(column); idx >= 0 && idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	q := models.Question{
		ID:           cell(config.IDColumn),
		QuestionText: cell(config.QuestionColumn),
		AnswerText:   cell(config.AnswerColumn),
		Subject:      cell(config.SubjectColumn),
		RawSubject:   cell(config.RawSubjectColumn),
		Difficulty:   cell(config.DifficultyColumn),
		Explanation:  cell(config.ExplanationColumn),
		QuestionType: cell(config.TypeColumn),
		Image:        cell(config.ImageColumn),
	}

	if q.ID == "" {
		return q, fmt.Errorf("missing question id")
	}
	if q.QuestionText == "" {
		return q, fmt.Errorf("missing question text")
	}
	if q.AnswerText == "" {
		return q, fmt.Errorf("missing answer")
	}

	if q.Subject == "" {
		q.Subject = DefaultSubject
	}
	if q.Difficulty == "" {
		q.Difficulty = DefaultDifficulty
	}
	if q.QuestionType == "" {
		q.QuestionType = DefaultQuestionType
	}

	return q, nil
}

// columnToIndex converts a spreadsheet column letter to a zero-based index
func columnToIndex(column string) int {
	column = strings.ToUpper(strings.TrimSpace(column))
	if column == "" {
		return -1
	}
	idx := 0
	for _, c := range column {
		if c < 'A' || c > 'Z' {
			return -1
		}
		idx = idx*26 + int(c-'A') + 1
	}
	return idx - 1
}
