package service

import "github.com/freeeve/conquest-table/pkg/conquest"

// Outbound event types.
const (
	EventState       = "state"
	EventHand        = "hand"
	EventRejected    = "rejected"
	EventArenaOpened = "arenaOpened"
	EventArenaUpdate = "arenaUpdate"
	EventResult      = "result"
	EventCancelled   = "cancelled"
	EventCardEarned  = "cardEarned"
	EventCardsTraded = "cardsTraded"
	EventTurnSkipped = "turnSkipped"
	EventGameOver    = "gameOver"
	EventForcedReset = "forcedReset"
)

// Rejection is sent only to the player whose intent was refused.
type Rejection struct {
	Intent IntentType `json:"intent"`
	Reason string     `json:"reason"`
}

// BattleResult is broadcast when a battle session resolves.
type BattleResult struct {
	BattleID string                 `json:"battleId"`
	Result   *conquest.AttackResult `json:"result"`
}

// BattleCancelled is broadcast when a battle session ends without a roll.
type BattleCancelled struct {
	BattleID string `json:"battleId"`
	Reason   string `json:"reason"`
}

// CardEarned announces a card grant. Card is only set on the copy sent to
// the receiving player.
type CardEarned struct {
	PlayerID string         `json:"playerId"`
	Card     *conquest.Card `json:"card,omitempty"`
}

// TurnSkipped announces a phase advanced by the turn countdown.
type TurnSkipped struct {
	PlayerID  string         `json:"playerId"`
	FromPhase conquest.Phase `json:"fromPhase"`
	ToPhase   conquest.Phase `json:"toPhase"`
}

// GameOver announces the winner.
type GameOver struct {
	WinnerID   string `json:"winnerId"`
	WinnerName string `json:"winnerName"`
}

// ForcedReset announces that the table was wiped and connections are closing.
type ForcedReset struct {
	Reason string `json:"reason"`
}
