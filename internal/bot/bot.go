package bot

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/example/quizbot/internal/database"
	"github.com/example/quizbot/internal/quiz"
	"github.com/example/quizbot/internal/scheduler"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Bot represents the Telegram quiz bot application
type Bot struct {
	api  *tgbotapi.BotAPI
	quiz *quiz.Service

	questionRepo *database.QuestionRepository
	resultRepo   *database.QuizResultRepository
	userRepo     *database.UserRepository

	config           *BotConfig
	adminUserIDs     map[int64]bool
	schedulerEnabled bool
	scheduler        *scheduler.Scheduler

	// lastQuestions remembers, per chat, the id of the last question served
	// in single-question mode so a bare reply can be checked against it
	mu            sync.Mutex
	lastQuestions map[int64]string
}

// New creates a new bot instance
func New() (*Bot, error) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable is not set")
	}

	if database.DB == nil {
		return nil, fmt.Errorf("database connection is not established")
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("unable to create bot: %v", err)
	}

	questionRepo := database.NewQuestionRepository()
	resultRepo := database.NewQuizResultRepository()

	bot := &Bot{
		api:              api,
		quiz:             quiz.NewService(questionRepo, resultRepo, quiz.NewRegistry()),
		questionRepo:     questionRepo,
		resultRepo:       resultRepo,
		userRepo:         database.NewUserRepository(),
		config:           DefaultConfig(),
		adminUserIDs:     make(map[int64]bool),
		schedulerEnabled: os.Getenv("ENABLE_SCHEDULER") != "false",
		lastQuestions:    make(map[int64]string),
	}
	if bot.schedulerEnabled {
		bot.scheduler = scheduler.New(bot)
	}

	adminIDs := os.Getenv("ADMIN_USER_IDS")
	if adminIDs != "" {
		for _, idStr := range strings.Split(adminIDs, ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(idStr), 10, 64)
			if err != nil {
				log.Printf("Warning: Invalid admin user ID: %s", idStr)
				continue
			}
			bot.adminUserIDs[id] = true
		}
	}

	return bot, nil
}

// Start runs the update loop until the context is cancelled
func (b *Bot) Start(ctx context.Context) error {
	log.Printf("Authorized on account %s", b.api.Self.UserName)

	if b.schedulerEnabled {
		log.Println("Starting daily question scheduler...")
		b.scheduler.Start()
	}

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60

	updates := b.api.GetUpdatesChan(updateConfig)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			if b.schedulerEnabled && b.scheduler != nil {
				b.scheduler.Stop()
			}
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			go b.handleUpdate(update)
		}
	}
}

// handleUpdate handles a single incoming update from Telegram
func (b *Bot) handleUpdate(update tgbotapi.Update) {
	message := update.Message
	if message == nil || message.From == nil {
		return
	}

	var err error
	if message.IsCommand() {
		err = b.handleCommand(message)
	} else {
		err = b.handleText(message)
	}
	if err != nil {
		log.Printf("Error handling message from %d: %v", message.From.ID, err)
	}
}

// isAdmin checks if a user is an admin
func (b *Bot) isAdmin(userID int64) bool {
	return b.adminUserIDs[userID]
}

// rememberQuestion stores the last single-play question id for a chat
func (b *Bot) rememberQuestion(chatID int64, questionID string) {
	b.mu.Lock()
	b.lastQuestions[chatID] = questionID
	b.mu.Unlock()
}

// recallQuestion fetches and clears the last single-play question id
func (b *Bot) recallQuestion(chatID int64) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id, ok := b.lastQuestions[chatID]
	if ok {
		delete(b.lastQuestions, chatID)
	}
	return id, ok
}

// sendText sends a plain text message to a chat
func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send message: %v", err)
	}
	return nil
}

// SendDailyQuestion implements the scheduler.Notifier interface: it picks
// a random question and delivers it to the subscriber.
func (b *Bot) SendDailyQuestion(userID int64) error {
	view, err := b.quiz.PlayOne("", "", "")
	if err != nil {
		return fmt.Errorf("failed to pick daily question: %v", err)
	}

	// For private chats the chat id equals the user id
	chatID := userID
	b.rememberQuestion(chatID, view.ID)

	text := "🌅 Question of the day!\n\n" + formatQuestion(view) +
		"\n\nReply with your answer or use /answer <text>."
	if err := b.sendText(chatID, text); err != nil {
		return err
	}
	log.Printf("Sent daily question %s to user %d", view.ID, userID)
	return nil
}
