package conquest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFortifyConnectivity(t *testing.T) {
	g := newStarted(t, 2)
	g.Phase = PhaseTurnFortify
	assignAll(g, "p2", 2)
	assign(g, "p1", 5, "alaska", "western_united_states")

	// alberta joins the two but belongs to p2.
	require.True(t, g.Map.Adjacent("alaska", "alberta"))
	require.True(t, g.Map.Adjacent("alberta", "western_united_states"))
	assert.False(t, g.Connected("p1", "alaska", "western_united_states"))
	assert.ErrorIs(t, g.Fortify("p1", "alaska", "western_united_states", 2), ErrNotConnected)
	assert.Equal(t, PhaseTurnFortify, g.Phase)

	assign(g, "p1", 1, "alberta")
	assert.True(t, g.Connected("p1", "alaska", "western_united_states"))
	require.NoError(t, g.Fortify("p1", "alaska", "western_united_states", 4))
	assert.Equal(t, 1, g.Board["alaska"].Troops)
	assert.Equal(t, 9, g.Board["western_united_states"].Troops)
	assert.Equal(t, "p2", g.CurrentPlayerID(), "fortify ends the turn")
	assert.Equal(t, PhaseTurnAttack, g.Phase)
}

func TestFortifyPreconditions(t *testing.T) {
	g := newStarted(t, 2)
	assignAll(g, "p2", 2)
	assign(g, "p1", 3, "alaska", "alberta")

	assert.ErrorIs(t, g.Fortify("p1", "alaska", "alberta", 1), ErrWrongPhase)
	g.Phase = PhaseTurnFortify

	assert.ErrorIs(t, g.Fortify("p2", "kamchatka", "japan", 1), ErrNotYourTurn)
	assert.ErrorIs(t, g.Fortify("p1", "alaska", "alaska", 1), ErrSameTerritory)
	assert.ErrorIs(t, g.Fortify("p1", "alaska", "atlantis", 1), ErrUnknownTerritory)
	assert.ErrorIs(t, g.Fortify("p1", "alaska", "kamchatka", 1), ErrNotOwner)
	assert.ErrorIs(t, g.Fortify("p1", "alaska", "alberta", 0), ErrInvalidCount)
	assert.ErrorIs(t, g.Fortify("p1", "alaska", "alberta", 3), ErrInvalidCount)
	assert.Equal(t, 3, g.Board["alaska"].Troops)
	assert.Equal(t, "p1", g.CurrentPlayerID())
}
