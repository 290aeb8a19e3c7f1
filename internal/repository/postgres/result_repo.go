package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/freeeve/conquest-table/internal/model"
)

// ResultRepo handles match_results database operations.
type ResultRepo struct {
	db *sql.DB
}

// NewResultRepo creates a ResultRepo.
func NewResultRepo(db *sql.DB) *ResultRepo {
	return &ResultRepo{db: db}
}

// Save inserts a finished match and fills in its generated ID.
func (r *ResultRepo) Save(ctx context.Context, res *model.MatchResult) error {
	players, err := json.Marshal(res.Players)
	if err != nil {
		return fmt.Errorf("marshal players: %w", err)
	}
	err = r.db.QueryRowContext(ctx,
		`INSERT INTO match_results (winner_id, winner_name, players, rounds, attacks, trades, started_at, finished_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`,
		res.WinnerID, res.WinnerName, players, res.Rounds, res.Attacks, res.Trades, res.StartedAt, res.FinishedAt,
	).Scan(&res.ID)
	if err != nil {
		return fmt.Errorf("save result: %w", err)
	}
	return nil
}

// ListRecent returns the most recently finished matches, newest first.
func (r *ResultRepo) ListRecent(ctx context.Context, limit int) ([]model.MatchResult, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, winner_id, winner_name, players, rounds, attacks, trades, started_at, finished_at
		 FROM match_results ORDER BY finished_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	results := []model.MatchResult{}
	for rows.Next() {
		var res model.MatchResult
		var players []byte
		if err := rows.Scan(&res.ID, &res.WinnerID, &res.WinnerName, &players, &res.Rounds, &res.Attacks,
			&res.Trades, &res.StartedAt, &res.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		if err := json.Unmarshal(players, &res.Players); err != nil {
			return nil, fmt.Errorf("unmarshal players: %w", err)
		}
		results = append(results, res)
	}
	return results, rows.Err()
}
