package bot

// BotConfig represents the configuration for the bot
type BotConfig struct {
	// Number of questions in a quiz session
	QuizLength int
	// Upper bound a user may request via /quiz
	MaxQuizLength int
	// How many results to show in /score
	ScoreHistory int
}

// DefaultConfig returns the default bot configuration
func DefaultConfig() *BotConfig {
	return &BotConfig{
		QuizLength:    5,
		MaxQuizLength: 20,
		ScoreHistory:  10,
	}
}
