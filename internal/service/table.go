package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/conquest-table/internal/logger"
	"github.com/freeeve/conquest-table/internal/repository"
	"github.com/freeeve/conquest-table/pkg/conquest"
)

var (
	ErrBattleInProgress = errors.New("a battle is in progress")
	ErrNoBattle         = errors.New("no such battle")
	ErrNotInBattle      = errors.New("you are not part of this battle")
	ErrAlreadyCommitted = errors.New("roll already committed")
	ErrUnknownIntent    = errors.New("unknown intent")
	ErrTableClosed      = errors.New("table is closed")
)

// Default timer durations.
const (
	DefaultTurnTimeout       = 60 * time.Second
	DefaultInactivityTimeout = 5 * time.Minute
	DefaultBattleTimeout     = 15 * time.Second
)

// TableConfig configures a Table. Zero durations use the defaults.
type TableConfig struct {
	Map               *conquest.Map
	TurnTimeout       time.Duration
	InactivityTimeout time.Duration
	BattleTimeout     time.Duration
	Seed              uint64
	Dice              conquest.Roller
}

// TableDeps are the Table's collaborators. Results and Leaderboard may be nil.
type TableDeps struct {
	Broadcaster Broadcaster
	Results     repository.ResultRepository
	Leaderboard repository.Leaderboard
}

// Table owns the single Match and serializes every mutation through one
// command queue. Player intents, connection changes and timer expiries are
// all commands; no two run concurrently.
type Table struct {
	cfg         TableConfig
	match       *conquest.Match
	bc          Broadcaster
	results     repository.ResultRepository
	leaderboard repository.Leaderboard

	cmds      chan func()
	done      chan struct{}
	closeOnce sync.Once
	bg        sync.WaitGroup

	// Owned by the Run goroutine.
	connected    map[string]bool
	battle       *Battle
	turn         turnTimer
	watchdog     watchdogTimer
	noticeSeq    int
	gameOverSent bool
	startedAt    time.Time
	now          func() time.Time
}

// NewTable creates a Table in the lobby. Call Run to start processing.
func NewTable(cfg TableConfig, deps TableDeps) *Table {
	if cfg.Map == nil {
		cfg.Map = conquest.StandardMap()
	}
	if cfg.TurnTimeout <= 0 {
		cfg.TurnTimeout = DefaultTurnTimeout
	}
	if cfg.InactivityTimeout <= 0 {
		cfg.InactivityTimeout = DefaultInactivityTimeout
	}
	if cfg.BattleTimeout <= 0 {
		cfg.BattleTimeout = DefaultBattleTimeout
	}
	if deps.Broadcaster == nil {
		deps.Broadcaster = NoopBroadcaster{}
	}

	var opts []conquest.Option
	if cfg.Seed != 0 {
		opts = append(opts, conquest.WithSeed(cfg.Seed))
	}
	if cfg.Dice != nil {
		opts = append(opts, conquest.WithDice(cfg.Dice))
	}

	return &Table{
		cfg:         cfg,
		match:       conquest.NewMatch(cfg.Map, opts...),
		bc:          deps.Broadcaster,
		results:     deps.Results,
		leaderboard: deps.Leaderboard,
		cmds:        make(chan func(), 64),
		done:        make(chan struct{}),
		connected:   make(map[string]bool),
		now:         time.Now,
	}
}

// Run processes commands until ctx is cancelled or the table is disposed.
func (t *Table) Run(ctx context.Context) {
	log.Info().Int("territories", t.cfg.Map.Size()).Msg("Table started")
	defer func() {
		t.stopTimers()
		log.Info().Msg("Table stopped")
	}()
	for {
		select {
		case <-ctx.Done():
			t.closeOnce.Do(func() { close(t.done) })
			return
		case <-t.done:
			return
		case cmd := <-t.cmds:
			cmd()
		}
	}
}

// Dispose stops the table and waits for pending result archiving.
func (t *Table) Dispose() {
	t.closeOnce.Do(func() { close(t.done) })
	t.bg.Wait()
}

// do runs fn on the table goroutine and waits for it to finish.
func (t *Table) do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	cmd := func() {
		defer close(finished)
		fn()
	}
	select {
	case t.cmds <- cmd:
	case <-t.done:
		return ErrTableClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-finished:
		return nil
	case <-t.done:
		return ErrTableClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// post enqueues fn without waiting for it. Used by timer callbacks.
func (t *Table) post(fn func()) {
	select {
	case t.cmds <- fn:
	case <-t.done:
	}
}

// Dispatch applies a player intent. A non-nil error means the intent was
// rejected and the match is unchanged; the player also receives a
// "rejected" event.
func (t *Table) Dispatch(ctx context.Context, playerID string, in Intent) error {
	var err error
	if e := t.do(ctx, func() { err = t.handle(playerID, in) }); e != nil {
		return e
	}
	return err
}

// Connect registers a live connection for playerID and sends it a welcome snapshot.
func (t *Table) Connect(ctx context.Context, playerID string) error {
	return t.do(ctx, func() {
		t.connected[playerID] = true
		t.bc.SendPlayerEvent(playerID, EventState, t.snapshot())
		if t.match.Player(playerID) != nil {
			t.bc.SendPlayerEvent(playerID, EventHand, t.hand(playerID))
		}
		lg := logger.ForPlayer(playerID)
		lg.Debug().Msg("Player connected")
	})
}

// Disconnect handles a lost connection. Seated players are removed. Safe to
// call more than once.
func (t *Table) Disconnect(ctx context.Context, playerID string) error {
	return t.do(ctx, func() { t.handleDisconnect(playerID) })
}

// Snapshot returns the public table state.
func (t *Table) Snapshot(ctx context.Context) (StateSnapshot, error) {
	var s StateSnapshot
	err := t.do(ctx, func() { s = t.snapshot() })
	return s, err
}

// Hand returns a seated player's private hand.
func (t *Table) Hand(ctx context.Context, playerID string) (HandSnapshot, error) {
	var h HandSnapshot
	var err error
	if e := t.do(ctx, func() {
		if t.match.Player(playerID) == nil {
			err = conquest.ErrUnknownPlayer
			return
		}
		h = t.hand(playerID)
	}); e != nil {
		return h, e
	}
	return h, err
}

func (t *Table) handle(playerID string, in Intent) error {
	lg := logger.ForPlayer(playerID)
	err := t.apply(playerID, in)
	if err != nil {
		lg.Debug().Str("intent", string(in.Type)).Err(err).Msg("Intent rejected")
		t.bc.SendPlayerEvent(playerID, EventRejected, Rejection{Intent: in.Type, Reason: err.Error()})
		return err
	}
	lg.Debug().Str("intent", string(in.Type)).Msg("Intent accepted")
	t.touch()
	t.publish()
	return nil
}

func (t *Table) apply(playerID string, in Intent) error {
	if !in.Type.Known() {
		return ErrUnknownIntent
	}
	if t.battle != nil && in.Type.blockedByBattle() {
		return ErrBattleInProgress
	}

	g := t.match
	switch in.Type {
	case IntentJoin:
		_, err := g.AddPlayer(playerID, in.Name)
		return err
	case IntentLeaveLobby:
		if g.Phase != conquest.PhaseLobby {
			return conquest.ErrWrongPhase
		}
		return g.RemovePlayer(playerID)
	case IntentToggleReady:
		return g.ToggleReady(playerID)
	case IntentStartGame:
		if g.Player(playerID) == nil {
			return conquest.ErrUnknownPlayer
		}
		if err := g.StartGame(); err != nil {
			return err
		}
		t.startedAt = t.now()
		log.Info().Int("players", len(g.Players)).Msg("Match started")
		return nil
	case IntentDeploy:
		return g.Deploy(playerID, in.TerritoryID, in.Count)
	case IntentInitiateAttack:
		return t.openBattle(playerID, in.FromID, in.ToID)
	case IntentCommitRoll:
		return t.commitRoll(playerID, in.BattleID, in.Dice)
	case IntentFortify:
		return g.Fortify(playerID, in.FromID, in.ToID, in.Count)
	case IntentEndPhase:
		return g.EndPhase(playerID)
	case IntentTradeCards:
		out, err := g.TradeCards(playerID, in.CardUIDs)
		if err != nil {
			return err
		}
		t.bc.BroadcastTableEvent(EventCardsTraded, out)
		return nil
	case IntentReturnToLobby:
		if g.Player(playerID) == nil {
			return conquest.ErrUnknownPlayer
		}
		return g.ReturnToLobby()
	}
	return ErrUnknownIntent
}

func (t *Table) handleDisconnect(playerID string) {
	delete(t.connected, playerID)
	if t.match.Player(playerID) == nil {
		return
	}
	lg := logger.ForPlayer(playerID)

	if b := t.battle; b != nil {
		switch playerID {
		case b.AttackerID:
			t.cancelBattle("attacker disconnected")
		case b.DefenderID:
			lg.Info().Str("battleId", b.ID).Msg("Defender disconnected, forcing maximum roll")
			b.forceDefender()
			t.bc.BroadcastTableEvent(EventArenaUpdate, b.view())
			if b.ready() {
				t.resolveBattle()
			}
		}
	}

	if err := t.match.RemovePlayer(playerID); err != nil {
		lg.Warn().Err(err).Msg("Remove on disconnect failed")
		return
	}
	lg.Info().Str("phase", string(t.match.Phase)).Msg("Player removed after disconnect")
	t.publish()
}

// publish broadcasts everything that follows a state change: card notices,
// the public snapshot, private hands and game over. It also re-evaluates
// whether the turn countdown should be running.
func (t *Table) publish() {
	g := t.match

	if n := g.CardNotice; n != nil && n.Seq > t.noticeSeq {
		t.noticeSeq = n.Seq
		card := n.Card
		t.bc.BroadcastTableEvent(EventCardEarned, CardEarned{PlayerID: n.PlayerID})
		t.bc.SendPlayerEvent(n.PlayerID, EventCardEarned, CardEarned{PlayerID: n.PlayerID, Card: &card})
	}

	t.syncTurnTimer()
	t.bc.BroadcastTableEvent(EventState, t.snapshot())
	for _, p := range g.Players {
		t.bc.SendPlayerEvent(p.ID, EventHand, t.hand(p.ID))
	}

	switch {
	case g.WinnerID != "" && !t.gameOverSent:
		t.gameOverSent = true
		winner := g.Player(g.WinnerID)
		name := ""
		if winner != nil {
			name = winner.Name
		}
		log.Info().Str("winnerId", g.WinnerID).Str("winner", name).Int("round", g.Round).Msg("Match won")
		t.bc.BroadcastTableEvent(EventGameOver, GameOver{WinnerID: g.WinnerID, WinnerName: name})
		t.archive()
	case g.WinnerID == "":
		t.gameOverSent = false
	}
}
