package bot

import (
	"time"
)

// BotConfig represents the configuration for the bot
type BotConfig struct {
	// Bot API token
	Token string
	// Users allowed to play; everyone when empty
	AllowedUserIDs []int64
	// Picture sent with the start screen, optional
	StartImage string
	// Time the score stays on screen before the next question
	NextDelay time.Duration
	// Shortest answer accepted for scoring
	MinAnswerLength int
}

// DefaultConfig returns the default bot configuration
func DefaultConfig() *BotConfig {
	return &BotConfig{
		NextDelay:       time.Second,
		MinAnswerLength: 10,
	}
}
