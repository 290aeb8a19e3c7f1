package service

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// turnTimer is the per-turn countdown. It is keyed by phase and cursor so it
// only restarts when the turn actually moves. gen invalidates callbacks from
// timers that were stopped after they had already fired. While a battle is
// open the countdown is paused: timer is nil, key is kept and remaining holds
// what was left.
type turnTimer struct {
	key       string
	gen       int
	deadline  time.Time
	remaining time.Duration
	timer     *time.Timer
}

// watchdogTimer resets the whole table after a stretch with no accepted action.
type watchdogTimer struct {
	gen   int
	timer *time.Timer
}

// turnClockRunning reports whether the turn countdown applies right now.
func (t *Table) turnClockRunning() bool {
	g := t.match
	return t.battle == nil && g.WinnerID == "" && len(g.Players) >= 2 && g.Phase.IsTurn()
}

// syncTurnTimer starts, keeps or stops the turn countdown to match the state.
func (t *Table) syncTurnTimer() {
	if !t.turnClockRunning() {
		if t.battle != nil {
			t.pauseTurnTimer()
			return
		}
		t.stopTurnTimer()
		return
	}
	key := fmt.Sprintf("%s:%d", t.match.Phase, t.match.Cursor)
	if t.turn.timer != nil && t.turn.key == key {
		return
	}
	d := t.cfg.TurnTimeout
	if t.turn.timer == nil && t.turn.key == key && t.turn.remaining > 0 {
		d = t.turn.remaining
	}
	t.stopTurnTimer()

	t.turn.key = key
	t.turn.gen++
	t.turn.deadline = t.now().Add(d)
	gen := t.turn.gen
	t.turn.timer = time.AfterFunc(d, func() {
		t.post(func() { t.onTurnTimeout(gen) })
	})
}

// pauseTurnTimer stops a running countdown and keeps its key and the time left.
func (t *Table) pauseTurnTimer() {
	if t.turn.timer == nil {
		return
	}
	t.turn.timer.Stop()
	t.turn.timer = nil
	t.turn.gen++
	t.turn.remaining = max(t.turn.deadline.Sub(t.now()), time.Millisecond)
	t.turn.deadline = time.Time{}
}

func (t *Table) stopTurnTimer() {
	if t.turn.timer != nil {
		t.turn.timer.Stop()
		t.turn.timer = nil
	}
	t.turn.key = ""
	t.turn.deadline = time.Time{}
	t.turn.remaining = 0
}

// onTurnTimeout advances the phase for a stalled player.
func (t *Table) onTurnTimeout(gen int) {
	if gen != t.turn.gen || t.turn.timer == nil {
		return
	}
	t.turn.timer = nil
	t.turn.key = ""
	if !t.turnClockRunning() {
		return
	}

	g := t.match
	playerID := g.CurrentPlayerID()
	from := g.Phase
	g.NextPhase()
	log.Info().Str("playerId", playerID).Str("from", string(from)).Str("to", string(g.Phase)).
		Int("cursor", g.Cursor).Msg("Turn timer expired, phase skipped")
	t.bc.BroadcastTableEvent(EventTurnSkipped, TurnSkipped{PlayerID: playerID, FromPhase: from, ToPhase: g.Phase})
	t.publish()
}

// touch re-arms the inactivity watchdog after an accepted action.
func (t *Table) touch() {
	if t.watchdog.timer != nil {
		t.watchdog.timer.Stop()
	}
	t.watchdog.gen++
	gen := t.watchdog.gen
	t.watchdog.timer = time.AfterFunc(t.cfg.InactivityTimeout, func() {
		t.post(func() { t.onInactivity(gen) })
	})
}

// onInactivity wipes the table back to an empty lobby and drops every connection.
func (t *Table) onInactivity(gen int) {
	if gen != t.watchdog.gen || t.watchdog.timer == nil {
		return
	}
	t.watchdog.timer = nil
	log.Info().Str("phase", string(t.match.Phase)).Int("players", len(t.match.Players)).
		Dur("idle", t.cfg.InactivityTimeout).Msg("Inactivity timeout, resetting table")

	t.cancelBattle("table reset")
	t.stopTurnTimer()
	t.match.Clear()
	t.connected = make(map[string]bool)
	t.gameOverSent = false

	t.bc.BroadcastTableEvent(EventForcedReset, ForcedReset{Reason: "inactivity"})
	t.bc.BroadcastTableEvent(EventState, t.snapshot())
	t.bc.CloseAll("inactivity")
}

func (t *Table) stopTimers() {
	t.stopTurnTimer()
	if t.watchdog.timer != nil {
		t.watchdog.timer.Stop()
		t.watchdog.timer = nil
	}
	if t.battle != nil && t.battle.timer != nil {
		t.battle.timer.Stop()
	}
}
