package conquest

import (
	"encoding/json"
	"fmt"
	"io"
)

// Territory is the static description of a single territory on the board.
type Territory struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Continent string   `json:"continent"`
	Neighbors []string `json:"neighbors"`
}

// Continent groups territories and grants a bonus to a player holding all of them.
type Continent struct {
	Name  string `json:"name"`
	Bonus int    `json:"bonus"`
}

// Map holds the immutable territory graph and continent groupings.
// A Map is never mutated after it is built; live ownership lives on the Match.
type Map struct {
	Territories map[string]*Territory
	Continents  map[string]*Continent
	order       []string            // territory IDs in catalog order
	members     map[string][]string // continent name -> territory IDs
}

// TerritoryIDs returns all territory IDs in catalog order.
func (m *Map) TerritoryIDs() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Size returns the number of territories on the map.
func (m *Map) Size() int {
	return len(m.order)
}

// Territory returns the territory with the given ID, or nil.
func (m *Map) Territory(id string) *Territory {
	return m.Territories[id]
}

// Adjacent returns true if b is listed as a neighbor of a.
func (m *Map) Adjacent(a, b string) bool {
	t, ok := m.Territories[a]
	if !ok {
		return false
	}
	for _, n := range t.Neighbors {
		if n == b {
			return true
		}
	}
	return false
}

// ContinentMembers returns the territory IDs belonging to a continent.
func (m *Map) ContinentMembers(name string) []string {
	return m.members[name]
}

// ContinentNames returns continent names in a stable order.
func (m *Map) ContinentNames() []string {
	seen := make(map[string]bool, len(m.members))
	var names []string
	for _, id := range m.order {
		c := m.Territories[id].Continent
		if !seen[c] {
			seen[c] = true
			names = append(names, c)
		}
	}
	return names
}

// mapBuilder accumulates territories and borders before freezing them into a Map.
type mapBuilder struct {
	m *Map
}

func newMapBuilder() *mapBuilder {
	return &mapBuilder{m: &Map{
		Territories: make(map[string]*Territory),
		Continents:  make(map[string]*Continent),
		members:     make(map[string][]string),
	}}
}

func (b *mapBuilder) continent(name string, bonus int) {
	b.m.Continents[name] = &Continent{Name: name, Bonus: bonus}
}

func (b *mapBuilder) territory(id, name, continent string) {
	b.m.Territories[id] = &Territory{ID: id, Name: name, Continent: continent}
	b.m.order = append(b.m.order, id)
	b.m.members[continent] = append(b.m.members[continent], id)
}

// border adds a bidirectional adjacency, ignoring duplicates.
func (b *mapBuilder) border(a, c string) {
	ta, tc := b.m.Territories[a], b.m.Territories[c]
	if !contains(ta.Neighbors, c) {
		ta.Neighbors = append(ta.Neighbors, c)
	}
	if !contains(tc.Neighbors, a) {
		tc.Neighbors = append(tc.Neighbors, a)
	}
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// mapFile is the on-disk JSON shape accepted by LoadMap.
type mapFile struct {
	Territories []Territory `json:"territories"`
	Continents  []Continent `json:"continents"`
}

// LoadMap decodes a JSON map catalog and validates it. Adjacency must be
// symmetric, every continent referenced must be declared, and IDs must be unique.
func LoadMap(r io.Reader) (*Map, error) {
	var f mapFile
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode map: %w", err)
	}
	if len(f.Territories) == 0 {
		return nil, fmt.Errorf("map has no territories")
	}

	b := newMapBuilder()
	for _, c := range f.Continents {
		if c.Name == "" {
			return nil, fmt.Errorf("continent with empty name")
		}
		if c.Bonus < 0 {
			return nil, fmt.Errorf("continent %q has negative bonus", c.Name)
		}
		b.continent(c.Name, c.Bonus)
	}
	for _, t := range f.Territories {
		if t.ID == "" {
			return nil, fmt.Errorf("territory with empty id")
		}
		if _, dup := b.m.Territories[t.ID]; dup {
			return nil, fmt.Errorf("duplicate territory %q", t.ID)
		}
		if _, ok := b.m.Continents[t.Continent]; !ok {
			return nil, fmt.Errorf("territory %q references unknown continent %q", t.ID, t.Continent)
		}
		name := t.Name
		if name == "" {
			name = t.ID
		}
		b.territory(t.ID, name, t.Continent)
	}
	for _, t := range f.Territories {
		for _, n := range t.Neighbors {
			if n == t.ID {
				return nil, fmt.Errorf("territory %q borders itself", t.ID)
			}
			other, ok := f.lookup(n)
			if !ok {
				return nil, fmt.Errorf("territory %q borders unknown %q", t.ID, n)
			}
			if !contains(other.Neighbors, t.ID) {
				return nil, fmt.Errorf("border %q -> %q is not symmetric", t.ID, n)
			}
			b.border(t.ID, n)
		}
	}
	return b.m, nil
}

func (f *mapFile) lookup(id string) (Territory, bool) {
	for _, t := range f.Territories {
		if t.ID == id {
			return t, true
		}
	}
	return Territory{}, false
}
