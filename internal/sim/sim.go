// Package sim plays complete matches with a random legal-move policy. It
// drives the engine end to end without a table, transport or timers.
package sim

import (
	"context"
	"fmt"

	"golang.org/x/exp/rand"

	"github.com/freeeve/conquest-table/internal/model"
	"github.com/freeeve/conquest-table/pkg/conquest"
)

// DefaultMaxRounds ends a match as stalled when nobody has won by then.
const DefaultMaxRounds = 300

// maxSteps bounds the number of policy decisions in one match.
const maxSteps = 1_000_000

// Config describes one simulated match.
type Config struct {
	Map       *conquest.Map
	Players   int
	Seed      uint64
	MaxRounds int
	// AttackBias is the chance of attacking when an attack is available.
	AttackBias float64
}

// Result is the outcome of one simulated match.
type Result struct {
	Seed       uint64               `json:"seed"`
	WinnerID   string               `json:"winner_id,omitempty"`
	WinnerName string               `json:"winner_name,omitempty"`
	Stalled    bool                 `json:"stalled"`
	Rounds     int                  `json:"rounds"`
	Attacks    int                  `json:"attacks"`
	Trades     int                  `json:"trades"`
	Players    []model.ResultPlayer `json:"players"`
}

type bot struct {
	g    *conquest.Match
	rng  *rand.Rand
	bias float64
}

// RunMatch seats cfg.Players bots, starts the match and plays until someone
// wins, the round cap is hit or ctx is cancelled.
func RunMatch(ctx context.Context, cfg Config) (*Result, error) {
	if cfg.Map == nil {
		cfg.Map = conquest.StandardMap()
	}
	if cfg.Players < conquest.MinPlayers || cfg.Players > conquest.MaxPlayers {
		return nil, fmt.Errorf("players must be between %d and %d, got %d", conquest.MinPlayers, conquest.MaxPlayers, cfg.Players)
	}
	if cfg.MaxRounds <= 0 {
		cfg.MaxRounds = DefaultMaxRounds
	}
	if cfg.AttackBias <= 0 {
		cfg.AttackBias = 0.85
	}

	g := conquest.NewMatch(cfg.Map, conquest.WithSeed(cfg.Seed+1))
	for i := 0; i < cfg.Players; i++ {
		id := fmt.Sprintf("bot-%d", i+1)
		if _, err := g.AddPlayer(id, ""); err != nil {
			return nil, fmt.Errorf("seat %s: %w", id, err)
		}
		if err := g.SetReady(id, true); err != nil {
			return nil, fmt.Errorf("ready %s: %w", id, err)
		}
	}
	if err := g.StartGame(); err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}

	b := &bot{g: g, rng: rand.New(rand.NewSource(cfg.Seed)), bias: cfg.AttackBias}
	res := &Result{Seed: cfg.Seed}
	for steps := 0; g.WinnerID == ""; steps++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if g.Round > cfg.MaxRounds {
			res.Stalled = true
			break
		}
		if steps > maxSteps {
			return nil, fmt.Errorf("no progress after %d steps in %s round %d", maxSteps, g.Phase, g.Round)
		}
		if err := b.step(); err != nil {
			return nil, fmt.Errorf("round %d %s: %w", g.Round, g.Phase, err)
		}
	}

	res.Rounds = g.Round
	res.Attacks = g.AttackCount()
	res.Trades = g.TradeCount
	res.WinnerID = g.WinnerID
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
	return res, nil
}

// step makes one legal move for whoever may act.
func (b *bot) step() error {
	g := b.g
	switch g.Phase {
	case conquest.PhaseSetup, conquest.PhaseGlobalReinforce:
		p := b.actor()
		if p == nil {
			return fmt.Errorf("nobody can act")
		}
		if g.Phase == conquest.PhaseGlobalReinforce && p.ID == g.CurrentPlayerID() {
			b.tryTrade(p)
		}
		return b.deploy(p)
	case conquest.PhaseTurnAttack:
		p := g.CurrentPlayer()
		b.tryTrade(p)
		if p.Pool > 0 {
			return b.deploy(p)
		}
		if from, to, ok := b.pickAttack(p.ID); ok && b.rng.Float64() < b.bias {
			e, err := g.ValidateAttack(p.ID, from, to)
			if err != nil {
				return err
			}
			_, err = g.Attack(p.ID, from, to, e.AttackerMax)
			return err
		}
		return g.EndPhase(p.ID)
	case conquest.PhaseTurnFortify:
		p := g.CurrentPlayer()
		if p.Pool > 0 {
			return b.deploy(p)
		}
		if from, to, n, ok := b.pickFortify(p.ID); ok && b.rng.Float64() < 0.5 {
			return g.Fortify(p.ID, from, to, n)
		}
		return g.EndPhase(p.ID)
	}
	return fmt.Errorf("unexpected phase %s", g.Phase)
}

// actor returns the current player if they hold troops to place, otherwise
// the first player who does.
func (b *bot) actor() *conquest.Player {
	if p := b.g.CurrentPlayer(); p != nil && p.Pool > 0 {
		return p
	}
	for _, p := range b.g.Players {
		if p.Pool > 0 {
			return p
		}
	}
	return nil
}

func (b *bot) owned(playerID string) []string {
	var ids []string
	for _, id := range b.g.Map.TerritoryIDs() {
		if b.g.Board[id].Owner == playerID {
			ids = append(ids, id)
		}
	}
	return ids
}

func (b *bot) deploy(p *conquest.Player) error {
	ids := b.owned(p.ID)
	if len(ids) == 0 {
		return fmt.Errorf("%s has troops but no territory", p.ID)
	}
	target := ids[b.rng.Intn(len(ids))]
	return b.g.Deploy(p.ID, target, 1+b.rng.Intn(p.Pool))
}

func (b *bot) pickAttack(playerID string) (string, string, bool) {
	type pair struct{ from, to string }
	var options []pair
	for _, from := range b.owned(playerID) {
		if b.g.Board[from].Troops < 2 {
			continue
		}
		for _, to := range b.g.Map.Territory(from).Neighbors {
			if b.g.Board[to].Owner != playerID {
				options = append(options, pair{from, to})
			}
		}
	}
	if len(options) == 0 {
		return "", "", false
	}
	o := options[b.rng.Intn(len(options))]
	return o.from, o.to, true
}

func (b *bot) pickFortify(playerID string) (string, string, int, bool) {
	ids := b.owned(playerID)
	var sources []string
	for _, id := range ids {
		if b.g.Board[id].Troops > 1 {
			sources = append(sources, id)
		}
	}
	if len(sources) == 0 {
		return "", "", 0, false
	}
	from := sources[b.rng.Intn(len(sources))]
	var targets []string
	for _, id := range ids {
		if id != from && b.g.Connected(playerID, from, id) {
			targets = append(targets, id)
		}
	}
	if len(targets) == 0 {
		return "", "", 0, false
	}
	to := targets[b.rng.Intn(len(targets))]
	return from, to, 1 + b.rng.Intn(b.g.Board[from].Troops-1), true
}

// tryTrade trades the first valid set in hand order.
func (b *bot) tryTrade(p *conquest.Player) {
	hand := p.Hand
	for i := 0; i < len(hand); i++ {
		for j := i + 1; j < len(hand); j++ {
			for k := j + 1; k < len(hand); k++ {
				set := []conquest.Card{hand[i], hand[j], hand[k]}
				if !conquest.IsValidTradeSet(set) {
					continue
				}
				if _, err := b.g.TradeCards(p.ID, []string{set[0].UID, set[1].UID, set[2].UID}); err == nil {
					return
				}
			}
		}
	}
}
