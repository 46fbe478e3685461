package scheduler

import (
	"log"
	"time"

	"github.com/example/quizbot/internal/database"
	"github.com/go-co-op/gocron"
)

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	notifier  Notifier
}

// Notifier interface for delivering the daily question
type Notifier interface {
	SendDailyQuestion(userID int64) error
}

// New creates a new scheduler instance
func New(notifier Notifier) *Scheduler {
	s := gocron.NewScheduler(time.Local)
	return &Scheduler{
		scheduler: s,
		notifier:  notifier,
	}
}

// Start begins running all scheduled tasks
func (s *Scheduler) Start() {
	// Check once an hour which subscribers are due their daily question
	s.scheduler.Every(1).Hour().Do(s.sendDailyQuestions)

	// Start the scheduler in a non-blocking manner
	s.scheduler.StartAsync()
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// sendDailyQuestions delivers the daily question to every subscriber whose
// preferred hour matches the current hour
func (s *Scheduler) sendDailyQuestions() {
	currentHour := time.Now().Hour()

	userRepo := database.NewUserRepository()
	users, err := userRepo.GetUsersForNotification(currentHour)
	if err != nil {
		log.Printf("Error getting users for notification: %v", err)
		return
	}

	for _, user := range users {
		if err := s.notifier.SendDailyQuestion(user.ID); err != nil {
			log.Printf("Error sending daily question to user %d: %v", user.ID, err)
		}
	}
}

// RunManualCheck forces a daily-question delivery for a specific user
func (s *Scheduler) RunManualCheck(userID int64) error {
	return s.notifier.SendDailyQuestion(userID)
}
