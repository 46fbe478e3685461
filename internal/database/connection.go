package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// DB is the global database connection
var DB *sqlx.DB

// Connect establishes a connection to the database. A DATABASE_URL
// environment variable selects PostgreSQL; otherwise a local SQLite file
// under data/ is used (override with DB_PATH).
func Connect() error {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		db, err := sqlx.Connect("postgres", dsn)
		if err != nil {
			return fmt.Errorf("failed to connect to postgres: %v", err)
		}
		DB = db
		return initializeSchema()
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		// Create data directory if it doesn't exist
		dataDir := "data"
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return fmt.Errorf("failed to create data directory: %v", err)
		}
		dbPath = filepath.Join(dataDir, "quizbot.db")
	}

	db, err := sqlx.Connect("sqlite3", dbPath)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %v", err)
	}

	// Enable foreign keys
	_, err = db.Exec("PRAGMA foreign_keys = ON")
	if err != nil {
		return fmt.Errorf("failed to enable foreign keys: %v", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite doesn't support multiple writers
	db.SetMaxIdleConns(1)

	DB = db

	// Initialize schema
	return initializeSchema()
}

// Close closes the database connection
func Close() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}

// initializeSchema creates necessary tables if they don't exist
func initializeSchema() error {
	// Create questions table
	_, err := DB.Exec(`
		CREATE TABLE IF NOT EXISTS questions (
			id TEXT PRIMARY KEY,
			question_text TEXT NOT NULL,
			answer_text TEXT NOT NULL,
			explanation_text TEXT DEFAULT '',
			subject TEXT NOT NULL,
			raw_subject TEXT DEFAULT '',
			difficulty TEXT DEFAULT '',
			question_type TEXT DEFAULT 'text',
			image TEXT DEFAULT '',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create questions table: %v", err)
	}

	// Create users table
	_, err = DB.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			telegram_id INTEGER PRIMARY KEY,
			username TEXT DEFAULT '',
			first_name TEXT DEFAULT '',
			is_admin BOOLEAN DEFAULT false,
			notification_enabled BOOLEAN DEFAULT false,
			notification_hour INTEGER DEFAULT 9,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create users table: %v", err)
	}

	// Create quiz_results table (append-only log of finished quizzes)
	_, err = DB.Exec(`
		CREATE TABLE IF NOT EXISTS quiz_results (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT NOT NULL,
			total_questions INTEGER NOT NULL,
			correct_answers INTEGER NOT NULL,
			subject TEXT DEFAULT 'All',
			difficulty TEXT DEFAULT 'All',
			taken_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create quiz_results table: %v", err)
	}

	// Indexes for the common filter columns
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_questions_subject ON questions(subject)",
		"CREATE INDEX IF NOT EXISTS idx_questions_difficulty ON questions(difficulty)",
		"CREATE INDEX IF NOT EXISTS idx_questions_question_type ON questions(question_type)",
		"CREATE INDEX IF NOT EXISTS idx_questions_raw_subject ON questions(raw_subject)",
		"CREATE INDEX IF NOT EXISTS idx_quiz_results_user_id ON quiz_results(user_id)",
		"CREATE INDEX IF NOT EXISTS idx_quiz_results_taken_at ON quiz_results(taken_at)",
	}
	for _, stmt := range indexes {
		if _, err := DB.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create index: %v", err)
		}
	}

	return nil
}
