package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/example/drtempus/pkg/models"
)

func openTestDB(t *testing.T) *QuizResultRepository {
	t.Helper()
	db, err := Open(DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewQuizResultRepository(db)
}

func TestCreateAndGetRecent(t *testing.T) {
	repo := openTestDB(t)
	ctx := context.Background()
	base := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	for i, score := range []int{4, 9, 6} {
		result := &models.QuizResult{
			Player:     "ana",
			Score:      score,
			Total:      10,
			Answered:   8,
			Skipped:    1,
			Nonsense:   1,
			StartedAt:  base.Add(time.Duration(i) * time.Hour),
			FinishedAt: base.Add(time.Duration(i)*time.Hour + 5*time.Minute),
			Duration:   300,
		}
		require.NoError(t, repo.Create(ctx, result))
		require.NotZero(t, result.ID)
	}
	require.NoError(t, repo.Record(ctx, &models.QuizResult{Player: "bia", Score: 10, Total: 10}))

	recent, err := repo.GetRecent(ctx, "ana", 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	require.Equal(t, 6, recent[0].Score)
	require.Equal(t, 9, recent[1].Score)
	require.Equal(t, 300, recent[0].Duration)
	require.True(t, recent[0].FinishedAt.Equal(base.Add(2*time.Hour+5*time.Minute)))

	best, err := repo.BestScore(ctx, "ana")
	require.NoError(t, err)
	require.Equal(t, 9, best)

	best, err = repo.BestScore(ctx, "ninguém")
	require.NoError(t, err)
	require.Zero(t, best)
}

func TestOpenCreatesDataDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "results.db")
	db, err := Open(DriverSQLite, path)
	require.NoError(t, err)
	defer db.Close()

	require.FileExists(t, path)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open("mysql", "root@/quiz")
	require.Error(t, err)
}
