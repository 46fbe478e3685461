package bot

import (
	"fmt"
	"strings"

	"github.com/example/quizbot/internal/database"
	"github.com/example/quizbot/internal/quiz"
	"github.com/example/quizbot/pkg/models"
)

// formatQuestion renders a single-play question with its id, so the user
// can answer it later via /answer.
func formatQuestion(q *quiz.QuestionView) string {
	lines := []string{
		"❓ " + strings.TrimSpace(q.Text),
		"",
	}
	if q.Subject != "" {
		lines = append(lines, "📚 Subject: "+q.Subject)
	}
	if q.Difficulty != "" {
		lines = append(lines, "🎯 Difficulty: "+q.Difficulty)
	}
	if q.QuestionType != "" {
		lines = append(lines, "🧩 Type: "+q.QuestionType)
	}
	lines = append(lines, "🆔 "+q.ID)
	return strings.Join(lines, "\n")
}

// formatPrompt renders a quiz-session question. Session prompts carry no
// id on purpose: the ground truth must stay out of reach mid-quiz.
func formatPrompt(s *quiz.SessionStatus) string {
	lines := []string{
		fmt.Sprintf("❓ Question %d of %d", s.Number, s.Total),
		"",
		strings.TrimSpace(s.Prompt.Text),
	}
	if s.Prompt.Subject != "" {
		lines = append(lines, "", "📚 "+s.Prompt.Subject)
	}
	return strings.Join(lines, "\n")
}

// formatVerdict renders a single-play answer check with the ground truth
func formatVerdict(v *quiz.Verdict) string {
	verdict := "❌ Incorrect"
	if v.IsCorrect {
		verdict = "✅ Correct"
	}
	lines := []string{
		verdict,
		"🔎 Ground truth: " + v.GroundTruth,
	}
	if v.Explanation != "" {
		lines = append(lines, "", "💡 "+v.Explanation)
	}
	return strings.Join(lines, "\n")
}

// formatSessionVerdict renders one quiz-session submission result and, on
// the last question, the final score.
func formatSessionVerdict(v *quiz.SessionVerdict) string {
	verdict := "❌ Incorrect"
	if v.IsCorrect {
		verdict = "✅ Correct"
	}

	if v.Done {
		return fmt.Sprintf("%s\n\n🏁 Quiz finished! Final score: %d/%d %s",
			verdict, v.Correct, v.Total, scoreEmoji(v.Correct, v.Total))
	}

	next := &quiz.SessionStatus{
		Number: v.Total - v.Remaining + 1,
		Total:  v.Total,
		Prompt: *v.Next,
	}
	return fmt.Sprintf("%s — %d to go\n\n%s", verdict, v.Remaining, formatPrompt(next))
}

// formatScore renders a user's quiz history
func formatScore(quizzes, questions, correct int, results []models.QuizResult) string {
	lines := []string{
		"🏆 Your results",
		fmt.Sprintf("Quizzes finished: %d", quizzes),
		fmt.Sprintf("Questions answered: %d", questions),
		fmt.Sprintf("Correct: %d (%.0f%%)", correct, percentage(correct, questions)),
		"",
		"Recent quizzes:",
	}
	for _, r := range results {
		lines = append(lines, fmt.Sprintf("• %s — %d/%d (%s, %s)",
			r.TakenAt.Format("Jan 2"), r.CorrectAnswers, r.TotalQuestions, r.Subject, r.Difficulty))
	}
	return strings.Join(lines, "\n")
}

// formatSummary renders the corpus overview
func formatSummary(stats *database.StoreStats) string {
	lines := []string{
		"🗂 Question corpus",
		fmt.Sprintf("Total questions: %d", stats.TotalQuestions),
		"",
		"📚 By subject:",
	}
	for subject, count := range stats.SubjectCounts {
		lines = append(lines, fmt.Sprintf("• %s: %d", subject, count))
	}
	lines = append(lines, "", "🎯 By difficulty:")
	for difficulty, count := range stats.DifficultyCounts {
		lines = append(lines, fmt.Sprintf("• %s: %d", difficulty, count))
	}
	lines = append(lines, "", "🧩 By type:")
	for questionType, count := range stats.QuestionTypeCounts {
		lines = append(lines, fmt.Sprintf("• %s: %d", questionType, count))
	}
	return strings.Join(lines, "\n")
}

func scoreEmoji(correct, total int) string {
	switch {
	case correct == total:
		return "🌟"
	case correct*2 >= total:
		return "👍"
	default:
		return "📖"
	}
}

func percentage(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}
