package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/freeeve/conquest-table/internal/model"
	"github.com/freeeve/conquest-table/pkg/conquest"
)

type recordedEvent struct {
	playerID  string
	eventType string
	data      any
}

// recordingBroadcaster captures every outbound event.
type recordingBroadcaster struct {
	mu      sync.Mutex
	table   []recordedEvent
	private []recordedEvent
	closed  []string
}

func (b *recordingBroadcaster) BroadcastTableEvent(eventType string, data any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.table = append(b.table, recordedEvent{eventType: eventType, data: data})
}

func (b *recordingBroadcaster) SendPlayerEvent(playerID, eventType string, data any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.private = append(b.private, recordedEvent{playerID: playerID, eventType: eventType, data: data})
}

func (b *recordingBroadcaster) CloseAll(reason string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = append(b.closed, reason)
}

func (b *recordingBroadcaster) tableEvents(eventType string) []any {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []any
	for _, e := range b.table {
		if e.eventType == eventType {
			out = append(out, e.data)
		}
	}
	return out
}

func (b *recordingBroadcaster) lastTable(eventType string) any {
	events := b.tableEvents(eventType)
	if len(events) == 0 {
		return nil
	}
	return events[len(events)-1]
}

func (b *recordingBroadcaster) playerEvents(playerID, eventType string) []any {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []any
	for _, e := range b.private {
		if e.playerID == playerID && e.eventType == eventType {
			out = append(out, e.data)
		}
	}
	return out
}

func (b *recordingBroadcaster) closedCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.closed)
}

type fakeResults struct {
	mu    sync.Mutex
	saved []*model.MatchResult
	err   error
}

func (f *fakeResults) Save(_ context.Context, r *model.MatchResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	r.ID = "result-1"
	f.saved = append(f.saved, r)
	return nil
}

func (f *fakeResults) ListRecent(_ context.Context, _ int) ([]model.MatchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.MatchResult
	for _, r := range f.saved {
		out = append(out, *r)
	}
	return out, nil
}

type fakeLeaderboard struct {
	mu   sync.Mutex
	wins map[string]int
}

func (f *fakeLeaderboard) RecordWin(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.wins == nil {
		f.wins = make(map[string]int)
	}
	f.wins[name]++
	return nil
}

func (f *fakeLeaderboard) Top(_ context.Context, _ int) ([]model.LeaderboardEntry, error) {
	return nil, errors.New("not implemented")
}

// newTestTable starts a table whose timers never fire on their own; tests
// drive expiry by calling the handlers directly.
func newTestTable(t *testing.T, dice conquest.Roller, deps TableDeps) (*Table, *recordingBroadcaster) {
	t.Helper()
	bc := &recordingBroadcaster{}
	deps.Broadcaster = bc
	tbl := NewTable(TableConfig{
		Seed:              42,
		Dice:              dice,
		TurnTimeout:       time.Hour,
		InactivityTimeout: time.Hour,
		BattleTimeout:     time.Hour,
	}, deps)
	ctx, cancel := context.WithCancel(context.Background())
	go tbl.Run(ctx)
	t.Cleanup(func() {
		cancel()
		tbl.Dispose()
	})
	return tbl, bc
}

// inTable runs fn on the table goroutine.
func inTable(t *testing.T, tbl *Table, fn func()) {
	t.Helper()
	if err := tbl.do(context.Background(), fn); err != nil {
		t.Fatalf("table command: %v", err)
	}
}

func dispatch(t *testing.T, tbl *Table, playerID string, in Intent) {
	t.Helper()
	if err := tbl.Dispatch(context.Background(), playerID, in); err != nil {
		t.Fatalf("%s %s: %v", playerID, in.Type, err)
	}
}

// startTwoPlayer seats connected players p1 and p2, starts the match and
// deploys both setup pools, leaving p1 in TURN_ATTACK.
func startTwoPlayer(t *testing.T, tbl *Table) {
	t.Helper()
	ctx := context.Background()
	for _, id := range []string{"p1", "p2"} {
		if err := tbl.Connect(ctx, id); err != nil {
			t.Fatalf("connect %s: %v", id, err)
		}
	}
	dispatch(t, tbl, "p1", Intent{Type: IntentJoin, Name: "One"})
	dispatch(t, tbl, "p2", Intent{Type: IntentJoin, Name: "Two"})
	dispatch(t, tbl, "p1", Intent{Type: IntentToggleReady})
	dispatch(t, tbl, "p2", Intent{Type: IntentToggleReady})
	dispatch(t, tbl, "p1", Intent{Type: IntentStartGame})

	type deployment struct {
		player, territory string
		count             int
	}
	var plan []deployment
	inTable(t, tbl, func() {
		for _, p := range tbl.match.Players {
			for _, id := range tbl.match.Map.TerritoryIDs() {
				if tbl.match.Board[id].Owner == p.ID {
					plan = append(plan, deployment{p.ID, id, p.Pool})
					break
				}
			}
		}
	})
	for _, d := range plan {
		dispatch(t, tbl, d.player, Intent{Type: IntentDeploy, TerritoryID: d.territory, Count: d.count})
	}

	var phase conquest.Phase
	inTable(t, tbl, func() { phase = tbl.match.Phase })
	if phase != conquest.PhaseTurnAttack {
		t.Fatalf("expected TURN_ATTACK after setup, got %s", phase)
	}
}

// setFrontier gives p2 every territory with 3 troops and p1 alaska with 5.
func setFrontier(t *testing.T, tbl *Table) {
	t.Helper()
	inTable(t, tbl, func() {
		for _, terr := range tbl.match.Board {
			terr.Owner = "p2"
			terr.Troops = 3
		}
		tbl.match.Board["alaska"].Owner = "p1"
		tbl.match.Board["alaska"].Troops = 5
	})
}
