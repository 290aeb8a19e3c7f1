package service

import (
	"time"

	"github.com/freeeve/conquest-table/pkg/conquest"
)

// StateSnapshot is the public table state broadcast after every change.
type StateSnapshot struct {
	Phase           conquest.Phase         `json:"phase"`
	Round           int                    `json:"round"`
	CurrentPlayerID string                 `json:"currentPlayerId,omitempty"`
	Players         []PlayerSummary        `json:"players"`
	Territories     []TerritoryView        `json:"territories"`
	Continents      []conquest.Continent   `json:"continents"`
	LastAttack      *conquest.AttackResult `json:"lastAttack,omitempty"`
	WinnerID        string                 `json:"winnerId,omitempty"`
	TradeCount      int                    `json:"tradeCount"`
	NextTradeReward int                    `json:"nextTradeReward"`
	DrawPile        int                    `json:"drawPile"`
	DiscardPile     int                    `json:"discardPile"`
	TurnDeadline    *time.Time             `json:"turnDeadline,omitempty"`
	Battle          *BattleView            `json:"battle,omitempty"`
}

// PlayerSummary is the public view of a seated player. Cards are counted, never shown.
type PlayerSummary struct {
	ID                string               `json:"id"`
	Name              string               `json:"name"`
	Color             conquest.PlayerColor `json:"color"`
	Pool              int                  `json:"pool"`
	Ready             bool                 `json:"ready"`
	Cards             int                  `json:"cards"`
	Territories       int                  `json:"territories"`
	Troops            int                  `json:"troops"`
	Reinforcement     int                  `json:"reinforcement"`
	ConqueredThisTurn bool                 `json:"conqueredThisTurn"`
	Connected         bool                 `json:"connected"`
}

// TerritoryView joins a territory's static catalog entry with its live state.
type TerritoryView struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Continent string   `json:"continent"`
	Neighbors []string `json:"neighbors"`
	Owner     string   `json:"owner,omitempty"`
	Troops    int      `json:"troops"`
}

// HandSnapshot is a player's private card state.
type HandSnapshot struct {
	PlayerID        string          `json:"playerId"`
	Cards           []conquest.Card `json:"cards"`
	Pool            int             `json:"pool"`
	CanTrade        bool            `json:"canTrade"`
	NextTradeReward int             `json:"nextTradeReward"`
}

func (t *Table) snapshot() StateSnapshot {
	g := t.match
	s := StateSnapshot{
		Phase:           g.Phase,
		Round:           g.Round,
		CurrentPlayerID: g.CurrentPlayerID(),
		Players:         make([]PlayerSummary, 0, len(g.Players)),
		Territories:     make([]TerritoryView, 0, g.Map.Size()),
		WinnerID:        g.WinnerID,
		TradeCount:      g.TradeCount,
		NextTradeReward: g.NextTradeReward(),
		DrawPile:        g.Deck.DrawCount(),
		DiscardPile:     g.Deck.DiscardCount(),
	}
	if g.LastAttack != nil {
		last := *g.LastAttack
		s.LastAttack = &last
	}

	troops := make(map[string]int, len(g.Players))
	for _, id := range g.Map.TerritoryIDs() {
		terr := g.Map.Territory(id)
		live := g.Board[id]
		troops[live.Owner] += live.Troops
		s.Territories = append(s.Territories, TerritoryView{
			ID:        id,
			Name:      terr.Name,
			Continent: terr.Continent,
			Neighbors: terr.Neighbors,
			Owner:     live.Owner,
			Troops:    live.Troops,
		})
	}
	for _, name := range g.Map.ContinentNames() {
		s.Continents = append(s.Continents, *g.Map.Continents[name])
	}

	for _, p := range g.Players {
		s.Players = append(s.Players, PlayerSummary{
			ID:                p.ID,
			Name:              p.Name,
			Color:             p.Color,
			Pool:              p.Pool,
			Ready:             p.Ready,
			Cards:             len(p.Hand),
			Territories:       g.OwnedCount(p.ID),
			Troops:            troops[p.ID],
			Reinforcement:     g.Reinforcement(p.ID),
			ConqueredThisTurn: p.ConqueredThisTurn,
			Connected:         t.connected[p.ID],
		})
	}

	if t.turn.timer != nil {
		deadline := t.turn.deadline
		s.TurnDeadline = &deadline
	}
	if t.battle != nil {
		s.Battle = t.battle.view()
	}
	return s
}

func (t *Table) hand(playerID string) HandSnapshot {
	g := t.match
	h := HandSnapshot{
		PlayerID:        playerID,
		Cards:           []conquest.Card{},
		NextTradeReward: g.NextTradeReward(),
	}
	p := g.Player(playerID)
	if p == nil {
		return h
	}
	h.Cards = append(h.Cards, p.Hand...)
	h.Pool = p.Pool
	h.CanTrade = len(p.Hand) >= 3 && g.CurrentPlayerID() == playerID && g.WinnerID == "" &&
		g.Phase.In(conquest.PhaseGlobalReinforce, conquest.PhaseTurnAttack, conquest.PhaseTurnFortify)
	return h
}
