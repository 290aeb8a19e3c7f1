package conquest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func card(uid string, kind CardType) Card {
	return Card{UID: uid, Type: kind}
}

func TestTradeCards(t *testing.T) {
	g := newStarted(t, 2)
	p1 := g.Player("p1")
	p1.Hand = []Card{
		card("a", Infantry), card("b", Infantry), card("c", Cavalry),
		card("d", Infantry), card("e", Wild),
	}

	_, err := g.TradeCards("p2", []string{"a", "b", "d"})
	assert.ErrorIs(t, err, ErrNotYourTurn)
	_, err = g.TradeCards("p1", []string{"a", "b", "c"})
	assert.ErrorIs(t, err, ErrInvalidTradeSet)
	_, err = g.TradeCards("p1", []string{"a", "a", "b"})
	assert.ErrorIs(t, err, ErrInvalidTradeSet)
	_, err = g.TradeCards("p1", []string{"a", "b"})
	assert.ErrorIs(t, err, ErrInvalidTradeSet)
	_, err = g.TradeCards("p1", []string{"a", "b", "zz"})
	assert.ErrorIs(t, err, ErrUnknownCard)
	require.Len(t, p1.Hand, 5)
	require.Equal(t, 0, g.TradeCount)

	discard := g.Deck.DiscardCount()
	out, err := g.TradeCards("p1", []string{"d", "a", "b"})
	require.NoError(t, err)
	assert.Equal(t, 4, out.Reward)
	assert.Equal(t, 1, out.TradeCount)
	assert.Equal(t, 4, p1.Pool)
	assert.Equal(t, []Card{card("c", Cavalry), card("e", Wild)}, p1.Hand)
	assert.Equal(t, discard+3, g.Deck.DiscardCount())
	assert.Equal(t, 6, g.NextTradeReward())

	_, err = g.TradeCards("p1", []string{"c", "e", "x"})
	assert.ErrorIs(t, err, ErrNotEnoughCards)
}

func TestTradeCardsPhase(t *testing.T) {
	g := newLobby(t, 2)
	_, err := g.TradeCards("p1", []string{"a", "b", "c"})
	assert.ErrorIs(t, err, ErrWrongPhase)

	require.NoError(t, g.StartGame())
	_, err = g.TradeCards("p1", []string{"a", "b", "c"})
	assert.ErrorIs(t, err, ErrWrongPhase, "no trading during setup")
}
