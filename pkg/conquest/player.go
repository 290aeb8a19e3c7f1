package conquest

import (
	"fmt"
	"strings"
	"unicode"
)

// MinPlayers and MaxPlayers bound the table size for a started match.
const (
	MinPlayers = 2
	MaxPlayers = 4
)

// MaxNameLength caps display names, in runes.
const MaxNameLength = 20

// Neutral is the owner of territories that belong to no active player.
const Neutral = "neutral"

// PlayerColor is a display color assigned on join.
type PlayerColor string

const (
	ColorRed    PlayerColor = "red"
	ColorBlue   PlayerColor = "blue"
	ColorGreen  PlayerColor = "green"
	ColorYellow PlayerColor = "yellow"
)

// AllColors returns the assignable colors in assignment order.
func AllColors() []PlayerColor {
	return []PlayerColor{ColorRed, ColorBlue, ColorGreen, ColorYellow}
}

// callsigns is the fallback pool for players who supply no usable name.
var callsigns = []string{
	"Marshal", "Vanguard", "Sentinel", "Warden", "Falcon", "Legate",
	"Ranger", "Tribune", "Corsair", "Herald", "Outrider", "Centurion",
}

// Player is a seated participant. Hand order is the order cards were drawn.
type Player struct {
	ID                string      `json:"id"`
	Name              string      `json:"name"`
	Color             PlayerColor `json:"color"`
	Pool              int         `json:"pool"`
	Ready             bool        `json:"ready"`
	Hand              []Card      `json:"-"`
	ConqueredThisTurn bool        `json:"conqueredThisTurn"`
}

// CardIndex returns the hand index of the card with the given UID, or -1.
func (p *Player) CardIndex(uid string) int {
	for i, c := range p.Hand {
		if c.UID == uid {
			return i
		}
	}
	return -1
}

// SanitizeName collapses runs of whitespace, strips control characters and
// caps the length. It returns "" when nothing printable remains.
func SanitizeName(raw string) string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsControl(r)
	})
	name := strings.Join(fields, " ")
	runes := []rune(name)
	if len(runes) > MaxNameLength {
		name = strings.TrimSpace(string(runes[:MaxNameLength]))
	}
	return name
}

// nextCallsign returns the next callsign from the rotating pool.
func (g *Match) nextCallsign() string {
	name := callsigns[g.callsignCursor%len(callsigns)]
	g.callsignCursor++
	return name
}

// uniqueName makes name distinct from every seated player's name by
// appending a numeric suffix.
func (g *Match) uniqueName(name string) string {
	taken := func(n string) bool {
		for _, p := range g.Players {
			if strings.EqualFold(p.Name, n) {
				return true
			}
		}
		return false
	}
	if !taken(name) {
		return name
	}
	for i := 2; ; i++ {
		suffix := fmt.Sprintf(" %d", i)
		base := []rune(name)
		if len(base)+len(suffix) > MaxNameLength {
			base = base[:MaxNameLength-len(suffix)]
		}
		candidate := strings.TrimSpace(string(base)) + suffix
		if !taken(candidate) {
			return candidate
		}
	}
}

// nextColor returns the first color not used by a seated player.
func (g *Match) nextColor() PlayerColor {
	used := make(map[PlayerColor]bool, len(g.Players))
	for _, p := range g.Players {
		used[p.Color] = true
	}
	for _, c := range AllColors() {
		if !used[c] {
			return c
		}
	}
	return AllColors()[len(g.Players)%len(AllColors())]
}
