package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/drtempus/internal/ai"
	"github.com/example/drtempus/internal/bot"
	"github.com/example/drtempus/internal/classifier"
	"github.com/example/drtempus/internal/config"
	"github.com/example/drtempus/internal/database"
	"github.com/example/drtempus/internal/excel"
	"github.com/example/drtempus/internal/media"
	"github.com/example/drtempus/internal/quiz"
	"github.com/example/drtempus/internal/scheduler"
	"github.com/example/drtempus/internal/terminal"
	"github.com/example/drtempus/internal/ui"
)

func main() {
	if err := run(); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Quiz stopped: %v", err)
	}
}

// run loads everything the quiz needs and then runs the selected presenter. Every startup
// failure is reported before the first question is shown.
func run() error {
	cfg, err := config.Load(".env")
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	deps, err := loadDependencies(cfg)
	if err != nil {
		return err
	}

	images, err := media.LoadOptional(map[string]string{
		"start": cfg.StartImage,
		"quiz":  cfg.QuizImage,
	})
	if err != nil {
		return fmt.Errorf("failed to load images: %w", err)
	}
	for screen, img := range images {
		log.Printf("Using %s image for %s screen (%dx%d)", img.Format, screen, img.Width, img.Height)
	}

	var (
		recorder ui.ResultRecorder
		history  bot.ResultHistory
	)
	if cfg.ResultsDSN != "" {
		db, err := database.Open(cfg.ResultsDriver, cfg.ResultsDSN)
		if err != nil {
			return fmt.Errorf("failed to open result history: %w", err)
		}
		defer db.Close()
		repo := database.NewQuizResultRepository(db)
		recorder, history = repo, repo
	}

	sched := scheduler.New()
	defer sched.Stop()

	// Zero disables the pause between an answer and the next question
	nextDelay := cfg.NextDelay
	if nextDelay == 0 {
		nextDelay = -1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Mode == config.ModeTelegram {
		botConfig := bot.DefaultConfig()
		botConfig.Token = cfg.TelegramToken
		botConfig.AllowedUserIDs = cfg.TelegramAllowedIDs
		botConfig.NextDelay = nextDelay
		botConfig.MinAnswerLength = cfg.MinAnswerLength
		if img, ok := images["start"]; ok {
			botConfig.StartImage = img.Path
		}
		return runBot(ctx, botConfig, deps, sched, recorder, history)
	}
	return runTerminal(ctx, cfg, deps, sched, recorder, nextDelay)
}

// loadDependencies reads the questions and builds the classifier shared by every session
func loadDependencies(cfg config.Config) (quiz.Dependencies, error) {
	importConfig := excel.DefaultImportConfig()
	importConfig.FilePath = cfg.DataFile
	importConfig.SheetName = cfg.DataSheet
	importConfig.Limit = cfg.QuestionLimit

	result, err := excel.LoadQuestions(importConfig)
	if err != nil {
		return quiz.Dependencies{}, err
	}
	log.Printf("Loaded %d questions from %s (%d duplicates, %d skipped)",
		len(result.Questions), cfg.DataFile, result.Duplicates, result.Skipped)

	scores := quiz.DefaultScoreTable()

	var c interface {
		quiz.Classifier
		Classes() []int
	}
	switch cfg.Classifier {
	case config.ClassifierOpenAI:
		c, err = ai.New(cfg.OpenAIKey, cfg.OpenAIURL, cfg.OpenAIModel)
	default:
		c, err = classifier.Load(cfg.ModelFile, cfg.VectorizerFile)
	}
	if err != nil {
		return quiz.Dependencies{}, fmt.Errorf("failed to load classifier: %w", err)
	}
	if err := scores.Validate(c.Classes()); err != nil {
		return quiz.Dependencies{}, fmt.Errorf("classifier does not match score table: %w", err)
	}

	return quiz.Dependencies{
		Questions:  result.Questions,
		Classifier: c,
		Scores:     scores,
	}, nil
}

func runTerminal(ctx context.Context, cfg config.Config, deps quiz.Dependencies, sched *scheduler.Scheduler, recorder ui.ResultRecorder, nextDelay time.Duration) error {
	session, err := quiz.NewSession(deps)
	if err != nil {
		return err
	}

	ctrl := ui.NewController(session, terminal.NewView(os.Stdout, cfg.Color), ui.Options{
		MinAnswerLength: cfg.MinAnswerLength,
		NextDelay:       nextDelay,
		Deferrer:        sched,
		Recorder:        recorder,
		Player:          cfg.Player,
	})
	return terminal.Run(ctx, ctrl, os.Stdin)
}

func runBot(ctx context.Context, botConfig *bot.BotConfig, deps quiz.Dependencies, sched *scheduler.Scheduler, recorder ui.ResultRecorder, history bot.ResultHistory) error {
	b, err := bot.New(botConfig, deps, sched, recorder, history)
	if err != nil {
		return err
	}
	defer b.Stop()

	log.Println("Bot started. Press Ctrl+C to stop.")
	return b.Start(ctx)
}
