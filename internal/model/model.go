package model

import "time"

// MatchResult is the archived outcome of a finished match.
type MatchResult struct {
	ID         string         `json:"id"`
	WinnerID   string         `json:"winner_id"`
	WinnerName string         `json:"winner_name"`
	Players    []ResultPlayer `json:"players"`
	Rounds     int            `json:"rounds"`
	Attacks    int            `json:"attacks"`
	Trades     int            `json:"trades"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
}

// Duration returns how long the match ran.
func (r *MatchResult) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// ResultPlayer is one seat's standing when the match ended.
type ResultPlayer struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Color       string `json:"color"`
	Territories int    `json:"territories"`
}

// LeaderboardEntry is a ranked win tally for a display name.
type LeaderboardEntry struct {
	Rank int    `json:"rank"`
	Name string `json:"name"`
	Wins int    `json:"wins"`
}
