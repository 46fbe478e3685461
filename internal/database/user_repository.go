package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/quizbot/pkg/models"
)

// UserRepository handles database operations for users
type UserRepository struct{}

// NewUserRepository creates a new repository instance
func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

// GetByTelegramID returns a user by Telegram ID, or nil when unknown
func (r *UserRepository) GetByTelegramID(telegramID int64) (*models.User, error) {
	var user models.User
	query := DB.Rebind("SELECT * FROM users WHERE telegram_id = ?")
	err := DB.Get(&user, query, telegramID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %v", err)
	}
	return &user, nil
}

// Upsert inserts the user on first contact or refreshes the profile fields
func (r *UserRepository) Upsert(user *models.User) error {
	existing, err := r.GetByTelegramID(user.ID)
	if err != nil {
		return err
	}

	if existing == nil {
		if user.NotificationHour == 0 {
			user.NotificationHour = 9
		}
		query := DB.Rebind(`
			INSERT INTO users (telegram_id, username, first_name, is_admin, notification_enabled, notification_hour)
			VALUES (?, ?, ?, ?, ?, ?)
		`)
		_, err := DB.Exec(query, user.ID, user.Username, user.FirstName, user.IsAdmin, user.NotificationEnabled, user.NotificationHour)
		if err != nil {
			return fmt.Errorf("failed to create user: %v", err)
		}
		return nil
	}

	query := DB.Rebind(`
		UPDATE users SET username = ?, first_name = ?, updated_at = CURRENT_TIMESTAMP
		WHERE telegram_id = ?
	`)
	if _, err := DB.Exec(query, user.Username, user.FirstName, user.ID); err != nil {
		return fmt.Errorf("failed to update user: %v", err)
	}
	return nil
}

// SetNotification toggles the daily-question subscription
func (r *UserRepository) SetNotification(telegramID int64, enabled bool) error {
	query := DB.Rebind("UPDATE users SET notification_enabled = ?, updated_at = CURRENT_TIMESTAMP WHERE telegram_id = ?")
	if _, err := DB.Exec(query, enabled, telegramID); err != nil {
		return fmt.Errorf("failed to update notification flag: %v", err)
	}
	return nil
}

// SetNotificationHour sets the hour of day for the daily question
func (r *UserRepository) SetNotificationHour(telegramID int64, hour int) error {
	if hour < 0 || hour > 23 {
		return fmt.Errorf("invalid notification hour: %d", hour)
	}
	query := DB.Rebind("UPDATE users SET notification_hour = ?, updated_at = CURRENT_TIMESTAMP WHERE telegram_id = ?")
	if _, err := DB.Exec(query, hour, telegramID); err != nil {
		return fmt.Errorf("failed to update notification hour: %v", err)
	}
	return nil
}

// GetUsersForNotification returns subscribed users whose preferred hour matches
func (r *UserRepository) GetUsersForNotification(hour int) ([]models.User, error) {
	var users []models.User
	query := DB.Rebind("SELECT * FROM users WHERE notification_enabled = ? AND notification_hour = ?")
	err := DB.Select(&users, query, true, hour)
	if err != nil {
		return nil, fmt.Errorf("failed to get users for notification: %v", err)
	}
	return users, nil
}
