package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Mode string

const (
	ModeTerminal Mode = "terminal"
	ModeTelegram Mode = "telegram"
)

// Classifier backends
const (
	ClassifierLocal  = "local"
	ClassifierOpenAI = "openai"
)

type Config struct {
	Mode Mode

	DataFile      string
	DataSheet     string
	QuestionLimit int

	Classifier     string // local|openai
	ModelFile      string
	VectorizerFile string
	OpenAIKey      string
	OpenAIModel    string
	OpenAIURL      string

	MinAnswerLength int
	NextDelay       time.Duration

	StartImage string
	QuizImage  string

	ResultsDriver string // sqlite3|postgres
	ResultsDSN    string // empty disables the result history

	TelegramToken      string
	TelegramAllowedIDs []int64

	Player string // name recorded for terminal runs
	Color  bool
}

// Load reads an optional .env file and then the environment. Variables already set in the
// environment win over the file.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}
	cfg, err := FromEnv()
	if err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func FromEnv() (Config, error) {
	limit, err := envInt("QUIZ_QUESTION_LIMIT", 10)
	if err != nil {
		return Config{}, err
	}
	minLen, err := envInt("QUIZ_MIN_ANSWER_LENGTH", 10)
	if err != nil {
		return Config{}, err
	}
	delay, err := envDuration("QUIZ_NEXT_DELAY", time.Second)
	if err != nil {
		return Config{}, err
	}
	allowed, err := envIDs("QUIZ_TELEGRAM_ALLOWED_IDS")
	if err != nil {
		return Config{}, err
	}

	return Config{
		Mode:               Mode(strings.ToLower(envOr("QUIZ_MODE", string(ModeTerminal)))),
		DataFile:           envOr("QUIZ_DATA_FILE", "quiz_historico_7.csv"),
		DataSheet:          envOr("QUIZ_DATA_SHEET", "Sheet1"),
		QuestionLimit:      limit,
		Classifier:         strings.ToLower(envOr("QUIZ_CLASSIFIER", ClassifierLocal)),
		ModelFile:          envOr("QUIZ_MODEL_FILE", "modelo_final.json"),
		VectorizerFile:     envOr("QUIZ_VECTORIZER_FILE", "vetor_final.json"),
		OpenAIKey:          os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:        envOr("OPENAI_MODEL", "gpt-3.5-turbo"),
		OpenAIURL:          envOr("OPENAI_API_URL", "https://api.openai.com/v1/chat/completions"),
		MinAnswerLength:    minLen,
		NextDelay:          delay,
		StartImage:         envOr("QUIZ_START_IMAGE", "doutor_tempus1.png"),
		QuizImage:          envOr("QUIZ_QUIZ_IMAGE", "fundo_2.png"),
		ResultsDriver:      envOr("QUIZ_RESULTS_DRIVER", "sqlite3"),
		ResultsDSN:         os.Getenv("QUIZ_RESULTS_DSN"),
		TelegramToken:      os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramAllowedIDs: allowed,
		Player:             envOr("QUIZ_PLAYER", envOr("USER", "jogador")),
		Color:              envBool("QUIZ_COLOR", os.Getenv("NO_COLOR") == ""),
	}, nil
}

// Validate rejects settings the quiz cannot start with
func (c Config) Validate() error {
	switch c.Mode {
	case ModeTerminal:
	case ModeTelegram:
		if c.TelegramToken == "" {
			return errors.New("TELEGRAM_BOT_TOKEN environment variable is not set")
		}
	default:
		return fmt.Errorf("unknown QUIZ_MODE %q", c.Mode)
	}

	switch c.Classifier {
	case ClassifierLocal:
	case ClassifierOpenAI:
		if c.OpenAIKey == "" {
			return errors.New("OPENAI_API_KEY environment variable is not set")
		}
	default:
		return fmt.Errorf("unknown QUIZ_CLASSIFIER %q", c.Classifier)
	}

	if c.QuestionLimit < 0 {
		return fmt.Errorf("QUIZ_QUESTION_LIMIT must not be negative, got %d", c.QuestionLimit)
	}
	if c.MinAnswerLength < 1 {
		return fmt.Errorf("QUIZ_MIN_ANSWER_LENGTH must be positive, got %d", c.MinAnswerLength)
	}
	return nil
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}

func envInt(k string, def int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", k, err)
	}
	return n, nil
}

func envDuration(k string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", k, err)
	}
	return d, nil
}

// envIDs parses a comma separated list of Telegram user IDs
func envIDs(k string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(os.Getenv(k), ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid user ID %q in %s: %w", part, k, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
