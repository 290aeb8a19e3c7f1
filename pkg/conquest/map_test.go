package conquest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardMap(t *testing.T) {
	m := StandardMap()

	require.Equal(t, StandardTerritoryCount, m.Size())
	require.Len(t, m.Continents, 6)

	bonuses := map[string]int{
		"North America": 5, "South America": 2, "Europe": 5,
		"Africa": 3, "Asia": 7, "Australia": 2,
	}
	sizes := map[string]int{
		"North America": 9, "South America": 4, "Europe": 7,
		"Africa": 6, "Asia": 12, "Australia": 4,
	}
	for name, bonus := range bonuses {
		require.Contains(t, m.Continents, name)
		assert.Equal(t, bonus, m.Continents[name].Bonus, name)
		assert.Len(t, m.ContinentMembers(name), sizes[name], name)
	}

	t.Run("adjacency is symmetric", func(t *testing.T) {
		for id, terr := range m.Territories {
			require.NotEmpty(t, terr.Neighbors, id)
			for _, n := range terr.Neighbors {
				assert.True(t, m.Adjacent(n, id), "%s -> %s has no reverse edge", id, n)
			}
		}
	})

	t.Run("cross-continent links", func(t *testing.T) {
		assert.True(t, m.Adjacent("alaska", "kamchatka"))
		assert.True(t, m.Adjacent("brazil", "north_africa"))
		assert.True(t, m.Adjacent("siam", "indonesia"))
		assert.False(t, m.Adjacent("alaska", "western_united_states"))
	})

	t.Run("same instance returned", func(t *testing.T) {
		require.Same(t, m, StandardMap())
	})
}

func TestLoadMap(t *testing.T) {
	t.Run("valid catalog", func(t *testing.T) {
		src := `{
			"continents": [{"name": "Isle", "bonus": 1}],
			"territories": [
				{"id": "a", "name": "A", "continent": "Isle", "neighbors": ["b"]},
				{"id": "b", "continent": "Isle", "neighbors": ["a", "c"]},
				{"id": "c", "name": "C", "continent": "Isle", "neighbors": ["b"]}
			]
		}`
		m, err := LoadMap(strings.NewReader(src))
		require.NoError(t, err)
		require.Equal(t, 3, m.Size())
		require.Equal(t, []string{"a", "b", "c"}, m.TerritoryIDs())
		require.Equal(t, "b", m.Territory("b").Name, "name falls back to id")
		require.True(t, m.Adjacent("c", "b"))
		require.False(t, m.Adjacent("a", "c"))
		require.Equal(t, []string{"Isle"}, m.ContinentNames())
	})

	cases := map[string]string{
		"malformed":         `{`,
		"empty":             `{"territories": []}`,
		"unknown continent": `{"continents":[{"name":"X","bonus":1}],"territories":[{"id":"a","continent":"Y"}]}`,
		"negative bonus":    `{"continents":[{"name":"X","bonus":-1}],"territories":[{"id":"a","continent":"X"}]}`,
		"duplicate id":      `{"continents":[{"name":"X","bonus":1}],"territories":[{"id":"a","continent":"X"},{"id":"a","continent":"X"}]}`,
		"self border":       `{"continents":[{"name":"X","bonus":1}],"territories":[{"id":"a","continent":"X","neighbors":["a"]}]}`,
		"unknown neighbor":  `{"continents":[{"name":"X","bonus":1}],"territories":[{"id":"a","continent":"X","neighbors":["z"]}]}`,
		"asymmetric border": `{"continents":[{"name":"X","bonus":1}],"territories":[{"id":"a","continent":"X","neighbors":["b"]},{"id":"b","continent":"X"}]}`,
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadMap(strings.NewReader(src))
			require.Error(t, err)
		})
	}
}
