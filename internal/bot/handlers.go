package bot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/example/quizbot/internal/quiz"
	"github.com/example/quizbot/pkg/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// handleCommand handles bot commands
func (b *Bot) handleCommand(message *tgbotapi.Message) error {
	var err error
	switch message.Command() {
	case "start":
		err = b.handleStart(message)
	case "help":
		err = b.handleHelp(message)
	case "play":
		err = b.handlePlay(message)
	case "answer":
		err = b.handleAnswer(message, message.CommandArguments())
	case "quiz":
		err = b.handleQuiz(message)
	case "current":
		err = b.handleCurrent(message)
	case "subjects":
		err = b.handleSubjects(message)
	case "score":
		err = b.handleScore(message)
	case "summary":
		err = b.handleSummary(message)
	case "daily":
		err = b.handleDaily(message)
	default:
		err = b.sendText(message.Chat.ID, "Unknown command. Use /help to see what I can do.")
	}
	return err
}

// handleText routes a plain text message: an active quiz session treats it
// as an answer submission, otherwise it is checked against the last
// single-play question.
func (b *Bot) handleText(message *tgbotapi.Message) error {
	userID := strconv.FormatInt(message.From.ID, 10)

	verdict, err := b.quiz.SubmitAnswer(userID, message.Text)
	if err == nil {
		return b.sendText(message.Chat.ID, formatSessionVerdict(verdict))
	}
	if errors.Is(err, quiz.ErrInvalidInput) {
		return b.sendText(message.Chat.ID, "🤔 I need an answer with some text in it.")
	}
	if !errors.Is(err, quiz.ErrNoActiveSession) {
		return err
	}

	// No session running; fall back to the last question served via /play
	return b.handleAnswer(message, message.Text)
}

func (b *Bot) handleStart(message *tgbotapi.Message) error {
	// Create the user on first interaction
	user := &models.User{
		ID:        message.From.ID,
		Username:  message.From.UserName,
		FirstName: message.From.FirstName,
		IsAdmin:   b.isAdmin(message.From.ID),
	}
	if err := b.userRepo.Upsert(user); err != nil {
		return fmt.Errorf("failed to create user: %v", err)
	}

	text := "👋 Welcome to the quiz bot!\n\n" +
		"I serve questions from some of the hardest exam datasets around.\n\n" +
		"🔹 How it works:\n" +
		"1. /play for a single question, /quiz for a full round\n" +
		"2. Send your answer as a plain message\n" +
		"3. Track your results with /score\n\n" +
		"Use /help for the full command list."
	return b.sendText(message.Chat.ID, text)
}

func (b *Bot) handleHelp(message *tgbotapi.Message) error {
	text := "📖 Commands\n\n" +
		"🎲 Playing:\n" +
		"/play [subject] [easy|medium|hard] - One random question\n" +
		"/answer <text> - Answer the last question\n" +
		"/quiz [subject] [level 1-5] [count] - Start a quiz (" + strconv.Itoa(b.config.QuizLength) + " questions by default)\n" +
		"/current - Repeat the question you are on\n\n" +
		"📚 Browsing:\n" +
		"/subjects - Available subjects\n" +
		"/summary - Question corpus overview\n" +
		"/score - Your quiz history\n\n" +
		"⚙️ Settings:\n" +
		"/daily on|off - Daily question subscription\n" +
		"/daily <hour> - Delivery hour (0-23)\n" +
		"/daily now - Get a question right away\n\n" +
		"💡 While a quiz is running, any plain message counts as your answer. " +
		"Starting a new quiz abandons the current one."
	return b.sendText(message.Chat.ID, text)
}

// handlePlay serves a single random question with optional subject and
// difficulty filters, e.g. "/play physics hard".
func (b *Bot) handlePlay(message *tgbotapi.Message) error {
	subject, difficulty := splitPlayArgs(message.CommandArguments())

	view, err := b.quiz.PlayOne(subject, "", difficulty)
	if errors.Is(err, quiz.ErrNotFound) {
		return b.sendText(message.Chat.ID, "😕 No questions available yet. Ask an admin to import some.")
	}
	if err != nil {
		return err
	}

	b.rememberQuestion(message.Chat.ID, view.ID)
	return b.sendText(message.Chat.ID, formatQuestion(view)+"\n\nReply with your answer or use /answer <text>.")
}

// handleAnswer checks an answer against the last single-play question
func (b *Bot) handleAnswer(message *tgbotapi.Message, answer string) error {
	if strings.TrimSpace(answer) == "" {
		return b.sendText(message.Chat.ID, "🤔 I need an answer with some text in it.")
	}

	questionID, ok := b.recallQuestion(message.Chat.ID)
	if !ok {
		return b.sendText(message.Chat.ID, "There is nothing to answer. Get a question with /play or start a /quiz.")
	}

	verdict, err := b.quiz.CheckAnswer(questionID, answer)
	if errors.Is(err, quiz.ErrInvalidInput) {
		return b.sendText(message.Chat.ID, "🤔 I need an answer with some text in it.")
	}
	if errors.Is(err, quiz.ErrUnknownQuestion) {
		return b.sendText(message.Chat.ID, "😕 That question is gone from my database.")
	}
	if err != nil {
		return err
	}

	return b.sendText(message.Chat.ID, formatVerdict(verdict))
}

// handleQuiz starts a quiz session, e.g. "/quiz biology 3" or
// "/quiz biology 3 10". Any quiz the user already has in flight is
// silently replaced.
func (b *Bot) handleQuiz(message *tgbotapi.Message) error {
	subject, level, count := splitQuizArgs(message.CommandArguments())
	if count <= 0 {
		count = b.config.QuizLength
	}
	if count > b.config.MaxQuizLength {
		count = b.config.MaxQuizLength
	}

	userID := strconv.FormatInt(message.From.ID, 10)
	status, err := b.quiz.StartQuiz(userID, quiz.StartOptions{
		Subject: subject,
		Level:   level,
		Count:   count,
	})
	if errors.Is(err, quiz.ErrNotFound) {
		return b.sendText(message.Chat.ID, "😕 No questions available yet. Ask an admin to import some.")
	}
	if err != nil {
		return err
	}

	header := fmt.Sprintf("🏁 Quiz started — %d question%s. Send each answer as a plain message.\n\n",
		status.Total, plural(status.Total))
	return b.sendText(message.Chat.ID, header+formatPrompt(status))
}

// handleCurrent repeats the question the user's session is waiting on
func (b *Bot) handleCurrent(message *tgbotapi.Message) error {
	userID := strconv.FormatInt(message.From.ID, 10)
	status, err := b.quiz.CurrentQuestion(userID)
	if errors.Is(err, quiz.ErrNoActiveSession) {
		return b.sendText(message.Chat.ID, "You have no quiz running. Start one with /quiz.")
	}
	if err != nil {
		return err
	}
	return b.sendText(message.Chat.ID, formatPrompt(status))
}

func (b *Bot) handleSubjects(message *tgbotapi.Message) error {
	subjects, err := b.questionRepo.Subjects()
	if err != nil {
		return err
	}
	if len(subjects) == 0 {
		return b.sendText(message.Chat.ID, "😕 No questions available yet.")
	}

	lines := []string{"📚 Subjects:"}
	for _, s := range subjects {
		lines = append(lines, "• "+s)
	}
	return b.sendText(message.Chat.ID, strings.Join(lines, "\n"))
}

func (b *Bot) handleScore(message *tgbotapi.Message) error {
	userID := strconv.FormatInt(message.From.ID, 10)

	quizzes, questions, correct, err := b.resultRepo.UserTotals(userID)
	if err != nil {
		return err
	}
	if quizzes == 0 {
		return b.sendText(message.Chat.ID, "You have not finished a quiz yet. Start one with /quiz!")
	}

	results, err := b.resultRepo.GetByUserID(userID, b.config.ScoreHistory)
	if err != nil {
		return err
	}
	return b.sendText(message.Chat.ID, formatScore(quizzes, questions, correct, results))
}

func (b *Bot) handleSummary(message *tgbotapi.Message) error {
	stats, err := b.questionRepo.Stats()
	if err != nil {
		return err
	}
	return b.sendText(message.Chat.ID, formatSummary(stats))
}

// handleDaily manages the daily-question subscription: "/daily on",
// "/daily off", "/daily 8" for the delivery hour, "/daily now" to get
// the question immediately.
func (b *Bot) handleDaily(message *tgbotapi.Message) error {
	arg := strings.ToLower(strings.TrimSpace(message.CommandArguments()))
	switch {
	case arg == "now":
		if b.scheduler != nil {
			return b.scheduler.RunManualCheck(message.From.ID)
		}
		return b.SendDailyQuestion(message.From.ID)
	case arg == "on":
		if err := b.userRepo.SetNotification(message.From.ID, true); err != nil {
			return err
		}
		return b.sendText(message.Chat.ID, "🔔 Daily question enabled. Change the hour with /daily <0-23>.")
	case arg == "off":
		if err := b.userRepo.SetNotification(message.From.ID, false); err != nil {
			return err
		}
		return b.sendText(message.Chat.ID, "🔕 Daily question disabled.")
	case arg != "":
		hour, err := strconv.Atoi(arg)
		if err != nil || hour < 0 || hour > 23 {
			return b.sendText(message.Chat.ID, "Use /daily on, /daily off or /daily <hour 0-23>.")
		}
		if err := b.userRepo.SetNotificationHour(message.From.ID, hour); err != nil {
			return err
		}
		return b.sendText(message.Chat.ID, fmt.Sprintf("⏰ Daily question scheduled around %02d:00.", hour))
	}
	return b.sendText(message.Chat.ID, "Use /daily on, /daily off or /daily <hour 0-23>.")
}

// splitPlayArgs separates "/play physics hard" into subject and difficulty
func splitPlayArgs(args string) (subject, difficulty string) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return "", ""
	}
	if _, ok := quiz.ParseBin(fields[len(fields)-1]); ok {
		difficulty = fields[len(fields)-1]
		fields = fields[:len(fields)-1]
	}
	return strings.Join(fields, " "), difficulty
}

// splitQuizArgs separates "/quiz biology 3 10" into subject, level and
// question count. A trailing number between 1 and 5 is read as the level,
// a larger one as the count.
func splitQuizArgs(args string) (subject string, level, count int) {
	fields := strings.Fields(args)

	var nums []int
	for len(fields) > 0 && len(nums) < 2 {
		n, err := strconv.Atoi(fields[len(fields)-1])
		if err != nil || n < 1 {
			break
		}
		nums = append(nums, n)
		fields = fields[:len(fields)-1]
	}

	switch len(nums) {
	case 1:
		if nums[0] <= 5 {
			level = nums[0]
		} else {
			count = nums[0]
		}
	case 2:
		count = nums[0]
		if nums[1] <= 5 {
			level = nums[1]
		}
	}
	return strings.Join(fields, " "), level, count
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
