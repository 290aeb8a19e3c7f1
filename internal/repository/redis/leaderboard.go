package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/freeeve/conquest-table/internal/model"
)

const leaderboardKey = "leaderboard:wins"

// RecordWin adds one win to the display name's tally.
func (c *Client) RecordWin(ctx context.Context, name string) error {
	if name == "" {
		return nil
	}
	if err := c.rdb.ZIncrBy(ctx, c.key(leaderboardKey), 1, name).Err(); err != nil {
		return fmt.Errorf("record win: %w", err)
	}
	return nil
}

// Top returns the n names with the most wins, highest first.
func (c *Client) Top(ctx context.Context, n int) ([]model.LeaderboardEntry, error) {
	if n <= 0 {
		n = 10
	}
	zs, err := c.rdb.ZRevRangeWithScores(ctx, c.key(leaderboardKey), 0, int64(n-1)).Result()
	if err == redis.Nil {
		return []model.LeaderboardEntry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("top wins: %w", err)
	}
	entries := make([]model.LeaderboardEntry, 0, len(zs))
	for i, z := range zs {
		name, _ := z.Member.(string)
		entries = append(entries, model.LeaderboardEntry{
			Rank: i + 1,
			Name: name,
			Wins: int(z.Score),
		})
	}
	return entries, nil
}
