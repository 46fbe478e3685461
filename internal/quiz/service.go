package quiz

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/example/quizbot/internal/database"
	"github.com/example/quizbot/pkg/models"
)

// Store is the read-only query surface the quiz engine needs. It is
// implemented by database.QuestionRepository.
type Store interface {
	RandomOne(f database.Filters, excludeIDs []string, minLen, maxLen int) (*models.Question, error)
	GetByID(id string) (*models.Question, error)
	Subjects() ([]string, error)
	QuestionTypes() ([]string, error)
}

// ResultLog records finished quizzes. Implemented by
// database.QuizResultRepository.
type ResultLog interface {
	Create(result *models.QuizResult) error
}

// DefaultQuizLength is the number of questions in a quiz when the caller
// does not ask for a specific count.
const DefaultQuizLength = 5

// QuestionView is the selection-facing record for single-question play.
// Answer and explanation are never part of it; they surface only through
// CheckAnswer.
type QuestionView struct {
	ID           string
	Text         string
	Subject      string
	Difficulty   string
	QuestionType string
	Image        string
}

// Prompt is the session-facing view of a question. It deliberately carries
// no id, so the ground truth cannot be looked up mid-quiz.
type Prompt struct {
	Text         string
	Subject      string
	Difficulty   string
	QuestionType string
	Image        string
}

// Verdict is the outcome of a single-question answer check
type Verdict struct {
	IsCorrect   bool
	GroundTruth string
	Explanation string
}

// SessionVerdict is the outcome of one quiz-session answer submission
type SessionVerdict struct {
	IsCorrect bool
	Correct   int // score so far
	Total     int
	Remaining int
	Done      bool
	Next      *Prompt // nil once the quiz is done
}

// SessionStatus describes the question a session is currently waiting on
type SessionStatus struct {
	Number  int // 1-based position in the quiz
	Total   int
	Correct int
	Prompt  Prompt
}

// StartOptions configure a new quiz session. Subject and QuestionType are
// free text and are normalized against the store; Level steers question
// length (1-5, 0 means any); Count defaults to DefaultQuizLength.
type StartOptions struct {
	Subject      string
	QuestionType string
	Level        int
	Count        int
}

// Service drives question selection and quiz sessions
type Service struct {
	store    Store
	results  ResultLog
	registry *Registry
}

// NewService creates a quiz service around a question store, a result log
// and a session registry.
func NewService(store Store, results ResultLog, registry *Registry) *Service {
	return &Service{store: store, results: results, registry: registry}
}

// normalizeFilters maps free-text subject/type input onto the canonical
// values currently present in the store. Unmatched input degrades to an
// unset filter rather than an error.
func (s *Service) normalizeFilters(subject, questionType string) (database.Filters, error) {
	var f database.Filters
	if strings.TrimSpace(subject) != "" {
		available, err := s.store.Subjects()
		if err != nil {
			return f, fmt.Errorf("failed to list subjects: %v", err)
		}
		f.Subject = NormalizeSubject(subject, available)
	}
	if strings.TrimSpace(questionType) != "" {
		available, err := s.store.QuestionTypes()
		if err != nil {
			return f, fmt.Errorf("failed to list question types: %v", err)
		}
		f.QuestionType = NormalizeQuestionType(questionType, available)
	}
	return f, nil
}

// pickOne selects one random question under the given constraints. When
// the constrained candidate set is empty the filters and length bounds are
// relaxed once and the pick is retried; the exclusion set is kept even on
// the relaxed retry, so a quiz can never re-serve a question it already
// asked. An empty store yields ErrNotFound.
func (s *Service) pickOne(f database.Filters, excludeIDs []string, minLen, maxLen int) (*models.Question, error) {
	q, err := s.store.RandomOne(f, excludeIDs, minLen, maxLen)
	if errors.Is(err, database.ErrNoCandidates) {
		q, err = s.store.RandomOne(database.Filters{}, excludeIDs, 0, 0)
		if errors.Is(err, database.ErrNoCandidates) {
			return nil, ErrNotFound
		}
	}
	if err != nil {
		return nil, err
	}
	return q, nil
}

// StartQuiz builds a fresh question sequence and registers a session for
// the user, silently replacing any quiz already in progress.
func (s *Service) StartQuiz(userID string, opts StartOptions) (*SessionStatus, error) {
	f, err := s.normalizeFilters(opts.Subject, opts.QuestionType)
	if err != nil {
		return nil, err
	}

	count := opts.Count
	if count <= 0 {
		count = DefaultQuizLength
	}
	minLen, maxLen := LevelRange(opts.Level)

	// Pick one question at a time so each pick excludes everything the
	// quiz already contains.
	questions := make([]models.Question, 0, count)
	excludeIDs := make([]string, 0, count)
	for len(questions) < count {
		q, err := s.pickOne(f, excludeIDs, minLen, maxLen)
		if errors.Is(err, ErrNotFound) {
			break // store exhausted, run with what we have
		}
		if err != nil {
			return nil, err
		}
		questions = append(questions, stripAnswer(*q))
		excludeIDs = append(excludeIDs, q.ID)
	}
	if len(questions) == 0 {
		return nil, ErrNotFound
	}

	sess := s.registry.Start(userID, questions)
	sess.mu.Lock()
	sess.subject = orAll(f.Subject)
	sess.difficulty = levelLabel(opts.Level)
	sess.mu.Unlock()

	return &SessionStatus{
		Number: 1,
		Total:  len(questions),
		Prompt: promptFor(questions[0]),
	}, nil
}

// CurrentQuestion returns the question the user's session is waiting on
func (s *Service) CurrentQuestion(userID string) (*SessionStatus, error) {
	sess := s.registry.Get(userID)
	if sess == nil {
		return nil, ErrNoActiveSession
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	// A completed session should already have been removed; defend anyway.
	if sess.completed() {
		s.registry.Remove(userID)
		return nil, ErrNoActiveSession
	}

	return &SessionStatus{
		Number:  sess.CurrentIdx + 1,
		Total:   len(sess.Questions),
		Correct: sess.CorrectCount,
		Prompt:  promptFor(sess.Questions[sess.CurrentIdx]),
	}, nil
}

// SubmitAnswer verifies the answer for the session's current question,
// advances the cursor, and completes the session after the last question.
func (s *Service) SubmitAnswer(userID, rawAnswer string) (*SessionVerdict, error) {
	submitted := strings.ToLower(strings.TrimSpace(rawAnswer))
	if submitted == "" {
		return nil, ErrInvalidInput
	}

	sess := s.registry.Get(userID)
	if sess == nil {
		return nil, ErrNoActiveSession
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.completed() {
		s.registry.Remove(userID)
		return nil, ErrNoActiveSession
	}

	// The session never caches answers; the store stays the single source
	// of truth for ground truth.
	current := sess.Questions[sess.CurrentIdx]
	full, err := s.store.GetByID(current.ID)
	if errors.Is(err, database.ErrNoCandidates) {
		return nil, ErrUnknownQuestion
	}
	if err != nil {
		return nil, err
	}

	correct := answerMatches(submitted, full.AnswerText)
	if correct {
		sess.CorrectCount++
	}
	sess.CurrentIdx++

	total := len(sess.Questions)
	verdict := &SessionVerdict{
		IsCorrect: correct,
		Correct:   sess.CorrectCount,
		Total:     total,
		Remaining: total - sess.CurrentIdx,
	}

	if sess.completed() {
		s.registry.Remove(userID)
		verdict.Done = true
		if s.results != nil {
			res := &models.QuizResult{
				UserID:         userID,
				TotalQuestions: total,
				CorrectAnswers: sess.CorrectCount,
				Subject:        sess.subject,
				Difficulty:     sess.difficulty,
			}
			if err := s.results.Create(res); err != nil {
				log.Printf("Failed to record quiz result for user %s: %v", userID, err)
			}
		}
		return verdict, nil
	}

	next := promptFor(sess.Questions[sess.CurrentIdx])
	verdict.Next = &next
	return verdict, nil
}

// PlayOne returns a single random question for stateless play. Filters are
// normalized first; an unmatched difficulty label is ignored.
func (s *Service) PlayOne(subject, questionType, difficulty string) (*QuestionView, error) {
	f, err := s.normalizeFilters(subject, questionType)
	if err != nil {
		return nil, err
	}

	var minLen, maxLen int
	if bin, ok := ParseBin(difficulty); ok {
		minLen, maxLen = bin.LengthRange()
	}

	q, err := s.pickOne(f, nil, minLen, maxLen)
	if err != nil {
		return nil, err
	}
	view := viewFor(*q)
	return &view, nil
}

// CheckAnswer judges an answer against a question id and reveals the
// ground truth and explanation.
func (s *Service) CheckAnswer(questionID, rawAnswer string) (*Verdict, error) {
	submitted := strings.ToLower(strings.TrimSpace(rawAnswer))
	if submitted == "" {
		return nil, ErrInvalidInput
	}

	q, err := s.store.GetByID(questionID)
	if errors.Is(err, database.ErrNoCandidates) {
		return nil, ErrUnknownQuestion
	}
	if err != nil {
		return nil, err
	}

	return &Verdict{
		IsCorrect:   answerMatches(submitted, q.AnswerText),
		GroundTruth: q.AnswerText,
		Explanation: q.Explanation,
	}, nil
}

// answerMatches reports whether a submitted answer counts as correct. The
// ground truth is trimmed and lowercased; equality or substring
// containment in either direction passes, so padded answers like
// "the answer is 42" are accepted.
func answerMatches(submitted, groundTruth string) bool {
	gt := strings.ToLower(strings.TrimSpace(groundTruth))
	return submitted == gt || strings.Contains(submitted, gt) || strings.Contains(gt, submitted)
}

// stripAnswer clears the fields a session must never hold
func stripAnswer(q models.Question) models.Question {
	q.AnswerText = ""
	q.Explanation = ""
	return q
}

func promptFor(q models.Question) Prompt {
	return Prompt{
		Text:         q.QuestionText,
		Subject:      q.Subject,
		Difficulty:   q.Difficulty,
		QuestionType: q.QuestionType,
		Image:        q.Image,
	}
}

func viewFor(q models.Question) QuestionView {
	return QuestionView{
		ID:           q.ID,
		Text:         q.QuestionText,
		Subject:      q.Subject,
		Difficulty:   q.Difficulty,
		QuestionType: q.QuestionType,
		Image:        q.Image,
	}
}

func orAll(s string) string {
	if s == "" {
		return "All"
	}
	return s
}

func levelLabel(level int) string {
	if level < 1 || level > 5 {
		return "All"
	}
	return fmt.Sprintf("level %d", level)
}
