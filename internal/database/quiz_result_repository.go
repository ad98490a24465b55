package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/drtempus/pkg/models"
)

// QuizResultRepository handles database operations for finished quiz runs
type QuizResultRepository struct {
	db *sqlx.DB
}

// NewQuizResultRepository creates a new repository instance
func NewQuizResultRepository(db *sqlx.DB) *QuizResultRepository {
	return &QuizResultRepository{db: db}
}

// Create inserts a new quiz result and fills in its ID
func (r *QuizResultRepository) Create(ctx context.Context, result *models.QuizResult) error {
	if result.FinishedAt.IsZero() {
		result.FinishedAt = time.Now()
	}
	if result.StartedAt.IsZero() {
		result.StartedAt = result.FinishedAt
	}

	query := r.db.Rebind(`
		INSERT INTO quiz_results (
			player, score, total, answered, skipped,
			nonsense, started_at, finished_at, duration
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`)

	err := r.db.QueryRowxContext(ctx, query,
		result.Player,
		result.Score,
		result.Total,
		result.Answered,
		result.Skipped,
		result.Nonsense,
		result.StartedAt.UTC(),
		result.FinishedAt.UTC(),
		result.Duration,
	).Scan(&result.ID)
	if err != nil {
		return fmt.Errorf("failed to create quiz result: %w", err)
	}
	return nil
}

// Record implements ui.ResultRecorder
func (r *QuizResultRepository) Record(ctx context.Context, result *models.QuizResult) error {
	return r.Create(ctx, result)
}

// GetRecent returns the latest results of a player, newest first
func (r *QuizResultRepository) GetRecent(ctx context.Context, player string, limit int) ([]models.QuizResult, error) {
	var results []models.QuizResult
	query := r.db.Rebind(`
		SELECT id, player, score, total, answered, skipped, nonsense, started_at, finished_at, duration
		FROM quiz_results
		WHERE player = ?
		ORDER BY finished_at DESC, id DESC
		LIMIT ?
	`)
	if err := r.db.SelectContext(ctx, &results, query, player, limit); err != nil {
		return nil, fmt.Errorf("failed to get quiz results: %w", err)
	}
	return results, nil
}

// BestScore returns the highest score of a player, 0 when there is none
func (r *QuizResultRepository) BestScore(ctx context.Context, player string) (int, error) {
	var best int
	query := r.db.Rebind(`SELECT COALESCE(MAX(score), 0) FROM quiz_results WHERE player = ?`)
	if err := r.db.GetContext(ctx, &best, query, player); err != nil {
		return 0, fmt.Errorf("failed to get best score: %w", err)
	}
	return best, nil
}
