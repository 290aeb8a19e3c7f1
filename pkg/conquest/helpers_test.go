package conquest

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// newLobby returns a lobby match with n ready players p1..pn.
func newLobby(t *testing.T, n int, opts ...Option) *Match {
	t.Helper()
	g := NewMatch(StandardMap(), append([]Option{WithSeed(42)}, opts...)...)
	for i := 1; i <= n; i++ {
		id := fmt.Sprintf("p%d", i)
		_, err := g.AddPlayer(id, fmt.Sprintf("Player %d", i))
		require.NoError(t, err)
		require.NoError(t, g.SetReady(id, true))
	}
	return g
}

// newStarted returns a match that has completed SETUP and sits in the first
// player's TURN_ATTACK.
func newStarted(t *testing.T, n int, opts ...Option) *Match {
	t.Helper()
	g := newLobby(t, n, opts...)
	require.NoError(t, g.StartGame())
	for _, p := range g.Players {
		if p.Pool == 0 {
			continue
		}
		require.NoError(t, g.Deploy(p.ID, firstOwned(g, p.ID), p.Pool))
	}
	require.Equal(t, PhaseTurnAttack, g.Phase)
	return g
}

// assign sets owner and troops on each listed territory.
func assign(g *Match, owner string, troops int, ids ...string) {
	for _, id := range ids {
		g.Board[id].Owner = owner
		g.Board[id].Troops = troops
	}
}

// assignAll gives every territory to owner with the given troops.
func assignAll(g *Match, owner string, troops int) {
	assign(g, owner, troops, g.Map.TerritoryIDs()...)
}

func firstOwned(g *Match, playerID string) string {
	for _, id := range g.Map.TerritoryIDs() {
		if g.Board[id].Owner == playerID {
			return id
		}
	}
	return ""
}

func totalTroops(g *Match) int {
	n := 0
	for _, t := range g.Board {
		n += t.Troops
	}
	return n
}

func handCards(g *Match) int {
	n := 0
	for _, p := range g.Players {
		n += len(p.Hand)
	}
	return n
}
