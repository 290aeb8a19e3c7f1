package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/freeeve/conquest-table/pkg/conquest"
)

// Battle is the two-sided dice negotiation for one in-flight attack. Each
// side commits once; the attack resolves when both have committed or the
// window closes.
type Battle struct {
	ID string
	conquest.Engagement
	AttackerDice      int
	DefenderDice      int
	AttackerCommitted bool
	DefenderCommitted bool
	// DefenderAuto is set when the defender's roll was committed by the
	// server: neutral, absent, disconnected or timed out.
	DefenderAuto bool
	Deadline     time.Time

	timer *time.Timer
}

// BattleView is the public description of an open battle.
type BattleView struct {
	ID                string    `json:"id"`
	AttackerID        string    `json:"attackerId"`
	DefenderID        string    `json:"defenderId"`
	FromID            string    `json:"fromId"`
	ToID              string    `json:"toId"`
	AttackerMax       int       `json:"attackerMax"`
	DefenderMax       int       `json:"defenderMax"`
	AttackerCommitted bool      `json:"attackerCommitted"`
	DefenderCommitted bool      `json:"defenderCommitted"`
	DefenderAuto      bool      `json:"defenderAuto"`
	Deadline          time.Time `json:"deadline"`
}

func (b *Battle) view() *BattleView {
	return &BattleView{
		ID:                b.ID,
		AttackerID:        b.AttackerID,
		DefenderID:        b.DefenderID,
		FromID:            b.FromID,
		ToID:              b.ToID,
		AttackerMax:       b.AttackerMax,
		DefenderMax:       b.DefenderMax,
		AttackerCommitted: b.AttackerCommitted,
		DefenderCommitted: b.DefenderCommitted,
		DefenderAuto:      b.DefenderAuto,
		Deadline:          b.Deadline,
	}
}

func (b *Battle) ready() bool {
	return b.AttackerCommitted && b.DefenderCommitted
}

func (b *Battle) forceDefender() {
	if b.DefenderCommitted {
		return
	}
	b.DefenderDice = b.DefenderMax
	b.DefenderCommitted = true
	b.DefenderAuto = true
}

func (b *Battle) forceAttacker() {
	if b.AttackerCommitted {
		return
	}
	b.AttackerDice = b.AttackerMax
	b.AttackerCommitted = true
}

// clampDice forces n into [1, limit].
func clampDice(n, limit int) int {
	return min(max(n, 1), limit)
}

// openBattle validates an attack and opens a session for it. Defenders who
// are neutral, unseated or offline are committed at their maximum at once.
func (t *Table) openBattle(attackerID, fromID, toID string) error {
	e, err := t.match.ValidateAttack(attackerID, fromID, toID)
	if err != nil {
		return err
	}

	b := &Battle{
		ID:         uuid.NewString(),
		Engagement: e,
		Deadline:   t.now().Add(t.cfg.BattleTimeout),
	}
	if e.DefenderID == conquest.Neutral || !t.match.IsActivePlayer(e.DefenderID) || !t.connected[e.DefenderID] {
		b.forceDefender()
	}
	t.battle = b

	id := b.ID
	b.timer = time.AfterFunc(t.cfg.BattleTimeout, func() {
		t.post(func() { t.onBattleTimeout(id) })
	})

	log.Debug().Str("battleId", b.ID).Str("attackerId", e.AttackerID).Str("defenderId", e.DefenderID).
		Str("from", fromID).Str("to", toID).Bool("defenderAuto", b.DefenderAuto).Msg("Battle opened")
	t.bc.BroadcastTableEvent(EventArenaOpened, b.view())
	return nil
}

// commitRoll records one side's dice choice and resolves once both are in.
func (t *Table) commitRoll(playerID, battleID string, dice int) error {
	b := t.battle
	if b == nil || b.ID != battleID {
		return ErrNoBattle
	}

	switch {
	case playerID == b.AttackerID:
		if b.AttackerCommitted {
			return ErrAlreadyCommitted
		}
		b.AttackerDice = clampDice(dice, b.AttackerMax)
		b.AttackerCommitted = true
	case playerID == b.DefenderID:
		if b.DefenderCommitted {
			return ErrAlreadyCommitted
		}
		b.DefenderDice = clampDice(dice, b.DefenderMax)
		b.DefenderCommitted = true
	default:
		return ErrNotInBattle
	}

	t.bc.BroadcastTableEvent(EventArenaUpdate, b.view())
	if b.ready() {
		t.resolveBattle()
	}
	return nil
}

// resolveBattle closes the open session and rolls it. Callers publish state.
func (t *Table) resolveBattle() {
	b := t.battle
	if b == nil {
		return
	}
	t.closeBattle()

	res, err := t.match.ResolveAttack(b.AttackerID, b.FromID, b.ToID, b.AttackerDice, b.DefenderDice)
	if err != nil {
		log.Warn().Err(err).Str("battleId", b.ID).Msg("Battle no longer valid at resolution")
		t.bc.BroadcastTableEvent(EventCancelled, BattleCancelled{BattleID: b.ID, Reason: err.Error()})
		return
	}
	log.Debug().Str("battleId", b.ID).Ints("attack", res.AttackerDice).Ints("defend", res.DefenderDice).
		Bool("conquered", res.Conquered).Msg("Battle resolved")
	t.bc.BroadcastTableEvent(EventResult, BattleResult{BattleID: b.ID, Result: res})
}

// cancelBattle drops the open session without rolling.
func (t *Table) cancelBattle(reason string) {
	b := t.battle
	if b == nil {
		return
	}
	t.closeBattle()
	log.Info().Str("battleId", b.ID).Str("reason", reason).Msg("Battle cancelled")
	t.bc.BroadcastTableEvent(EventCancelled, BattleCancelled{BattleID: b.ID, Reason: reason})
}

func (t *Table) closeBattle() {
	if t.battle.timer != nil {
		t.battle.timer.Stop()
	}
	t.battle = nil
}

// onBattleTimeout commits any missing side at its maximum and resolves.
func (t *Table) onBattleTimeout(battleID string) {
	b := t.battle
	if b == nil || b.ID != battleID {
		return
	}
	log.Info().Str("battleId", b.ID).Bool("attackerCommitted", b.AttackerCommitted).
		Bool("defenderCommitted", b.DefenderCommitted).Msg("Battle window expired, auto-committing")
	b.forceAttacker()
	b.forceDefender()
	t.resolveBattle()
	t.publish()
}
