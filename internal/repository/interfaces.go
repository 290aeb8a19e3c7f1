package repository

import (
	"context"

	"github.com/freeeve/conquest-table/internal/model"
)

// ResultRepository archives finished matches.
type ResultRepository interface {
	Save(ctx context.Context, result *model.MatchResult) error
	ListRecent(ctx context.Context, limit int) ([]model.MatchResult, error)
}

// Leaderboard tallies wins per display name.
type Leaderboard interface {
	RecordWin(ctx context.Context, name string) error
	Top(ctx context.Context, n int) ([]model.LeaderboardEntry, error)
}
