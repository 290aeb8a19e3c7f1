package conquest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func TestBaseCards(t *testing.T) {
	cards := BaseCards(StandardMap())
	require.Len(t, cards, StandardTerritoryCount+WildCardCount)

	counts := map[CardType]int{}
	for _, c := range cards {
		require.Empty(t, c.UID, "catalog cards carry no identifier")
		counts[c.Type]++
		if c.Type == Wild {
			require.Empty(t, c.TerritoryID)
		} else {
			require.NotEmpty(t, c.TerritoryName)
		}
	}
	require.Equal(t, 14, counts[Infantry])
	require.Equal(t, 14, counts[Cavalry])
	require.Equal(t, 14, counts[Artillery])
	require.Equal(t, WildCardCount, counts[Wild])
}

func TestDeckRoundTrip(t *testing.T) {
	m := StandardMap()
	d := NewDeck(m, rand.New(rand.NewSource(7)))
	size := d.BaseSize()

	type key struct {
		territory string
		kind      CardType
	}
	want := map[key]int{}
	for _, c := range BaseCards(m) {
		want[key{c.TerritoryID, c.Type}]++
	}

	drawn := make([]Card, 0, size)
	uids := map[string]bool{}
	for i := 0; i < size; i++ {
		c, ok := d.Draw()
		require.True(t, ok)
		require.NotEmpty(t, c.UID)
		require.False(t, uids[c.UID], "uid reused")
		uids[c.UID] = true
		drawn = append(drawn, c)
	}
	require.Equal(t, 0, d.DrawCount())
	_, ok := d.Draw()
	require.False(t, ok, "both piles empty")

	d.Discard(drawn...)
	require.Equal(t, size, d.DiscardCount())

	got := map[key]int{}
	for i := 0; i < size; i++ {
		c, ok := d.Draw()
		require.True(t, ok)
		require.False(t, uids[c.UID], "uid reused after reshuffle")
		got[key{c.TerritoryID, c.Type}]++
	}
	require.Equal(t, want, got)
	require.Equal(t, 0, d.DiscardCount())
}

func TestIsValidTradeSet(t *testing.T) {
	inf, cav, art, wild := Card{Type: Infantry}, Card{Type: Cavalry}, Card{Type: Artillery}, Card{Type: Wild}

	cases := []struct {
		name  string
		cards []Card
		want  bool
	}{
		{"three of a kind", []Card{inf, inf, inf}, true},
		{"one of each", []Card{inf, cav, art}, true},
		{"pair plus wild", []Card{cav, cav, wild}, true},
		{"two types plus wild", []Card{inf, art, wild}, true},
		{"one card two wilds", []Card{art, wild, wild}, true},
		{"pair plus other", []Card{inf, inf, cav}, false},
		{"too few", []Card{inf, inf}, false},
		{"too many", []Card{inf, inf, inf, inf}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsValidTradeSet(tc.cards))
		})
	}

	t.Run("order does not matter", func(t *testing.T) {
		kinds := []Card{inf, cav, art, wild}
		perms := [][3]int{{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0}}
		for _, a := range kinds {
			for _, b := range kinds {
				for _, c := range kinds {
					set := []Card{a, b, c}
					want := IsValidTradeSet(set)
					for _, p := range perms {
						got := IsValidTradeSet([]Card{set[p[0]], set[p[1]], set[p[2]]})
						require.Equal(t, want, got, "%v %v %v", a.Type, b.Type, c.Type)
					}
				}
			}
		}
	})
}

func TestTradeReward(t *testing.T) {
	want := []int{4, 6, 8, 10, 12, 15, 20, 25, 30}
	for i, w := range want {
		assert.Equal(t, w, TradeReward(i+1), "trade #%d", i+1)
	}
	for n := 1; n < 100; n++ {
		require.LessOrEqual(t, TradeReward(n), TradeReward(n+1))
	}
}
