package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/conquest-table/internal/model"
)

const archiveTimeout = 10 * time.Second

// archive records a finished match in the result archive and leaderboard.
// It runs off the table goroutine; failures are logged and never touch the match.
func (t *Table) archive() {
	if t.results == nil && t.leaderboard == nil {
		return
	}
	res := t.buildResult()

	t.bg.Add(1)
	go func() {
		defer t.bg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
		defer cancel()

		if t.results != nil {
			if err := t.results.Save(ctx, res); err != nil {
				log.Error().Err(err).Str("winnerId", res.WinnerID).Msg("Failed to archive match result")
			} else {
				log.Info().Str("resultId", res.ID).Dur("duration", res.Duration()).Msg("Match result archived")
			}
		}
		if t.leaderboard != nil {
			if err := t.leaderboard.RecordWin(ctx, res.WinnerName); err != nil {
				log.Error().Err(err).Str("winner", res.WinnerName).Msg("Failed to record leaderboard win")
			}
		}
	}()
}

func (t *Table) buildResult() *model.MatchResult {
	g := t.match
	res := &model.MatchResult{
		WinnerID:   g.WinnerID,
		Rounds:     g.Round,
		Attacks:    g.AttackCount(),
		Trades:     g.TradeCount,
		StartedAt:  t.startedAt,
		FinishedAt: t.now(),
	}
	for _, p := range g.Players {
		if p.ID == g.WinnerID {
			res.WinnerName = p.Name
		}
		res.Players = append(res.Players, model.ResultPlayer{
			ID:          p.ID,
			Name:        p.Name,
			Color:       string(p.Color),
			Territories: g.OwnedCount(p.ID),
		})
	}
	return res
}
