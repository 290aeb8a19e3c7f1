package conquest

import (
	"github.com/google/uuid"
	"golang.org/x/exp/rand"
)

// CardType is the troop symbol printed on a card.
type CardType string

const (
	Infantry  CardType = "infantry"
	Cavalry   CardType = "cavalry"
	Artillery CardType = "artillery"
	Wild      CardType = "wild"
)

// troopTypes are the three non-wild symbols, in deck-building order.
var troopTypes = [3]CardType{Infantry, Cavalry, Artillery}

// WildCardCount is the number of wild cards in the base deck.
const WildCardCount = 2

// Card is a single risk card. UID is empty while the card sits in the deck and
// is minted fresh each time the card is drawn into a hand.
type Card struct {
	UID           string   `json:"uid,omitempty"`
	TerritoryID   string   `json:"territoryId,omitempty"`
	TerritoryName string   `json:"territoryName,omitempty"`
	Type          CardType `json:"type"`
}

// Deck holds the draw and discard piles. Cards in player hands are tracked by
// the Match; draw + discard + hands always equals the base card set.
type Deck struct {
	draw    []Card
	discard []Card
	rng     *rand.Rand
	base    int
}

// BaseCards returns the unshuffled base card set for a map: one card per
// territory cycling through the troop types, plus the wild cards.
func BaseCards(m *Map) []Card {
	ids := m.order
	cards := make([]Card, 0, len(ids)+WildCardCount)
	for i, id := range ids {
		cards = append(cards, Card{
			TerritoryID:   id,
			TerritoryName: m.Territories[id].Name,
			Type:          troopTypes[i%len(troopTypes)],
		})
	}
	for i := 0; i < WildCardCount; i++ {
		cards = append(cards, Card{Type: Wild})
	}
	return cards
}

// NewDeck builds and shuffles the base deck for m.
func NewDeck(m *Map, rng *rand.Rand) *Deck {
	d := &Deck{rng: rng}
	d.Reset(m)
	return d
}

// Reset restores the full base set to the draw pile and shuffles it.
func (d *Deck) Reset(m *Map) {
	d.draw = BaseCards(m)
	d.discard = nil
	d.base = len(d.draw)
	d.shuffle()
}

func (d *Deck) shuffle() {
	d.rng.Shuffle(len(d.draw), func(i, j int) {
		d.draw[i], d.draw[j] = d.draw[j], d.draw[i]
	})
}

// Draw pops the top card, reshuffling the discard pile into the draw pile
// first when the draw pile is empty. Returns false if both piles are empty.
func (d *Deck) Draw() (Card, bool) {
	if len(d.draw) == 0 {
		if len(d.discard) == 0 {
			return Card{}, false
		}
		d.draw = append(d.draw, d.discard...)
		d.discard = nil
		d.shuffle()
	}
	last := len(d.draw) - 1
	card := d.draw[last]
	d.draw = d.draw[:last]
	card.UID = uuid.NewString()
	return card, true
}

// Discard returns cards to the discard pile. Their UIDs are dropped; a later
// draw mints new ones.
func (d *Deck) Discard(cards ...Card) {
	for _, c := range cards {
		c.UID = ""
		d.discard = append(d.discard, c)
	}
}

// DrawCount returns the number of cards in the draw pile.
func (d *Deck) DrawCount() int { return len(d.draw) }

// DiscardCount returns the number of cards in the discard pile.
func (d *Deck) DiscardCount() int { return len(d.discard) }

// BaseSize returns the size of the full base card set.
func (d *Deck) BaseSize() int { return d.base }

// IsValidTradeSet reports whether exactly three cards form a tradeable set:
// every non-wild card shares one type, or the wilds can stand in for every
// troop type missing from the set.
func IsValidTradeSet(cards []Card) bool {
	if len(cards) != 3 {
		return false
	}
	wilds := 0
	present := make(map[CardType]bool, 3)
	for _, c := range cards {
		if c.Type == Wild {
			wilds++
			continue
		}
		present[c.Type] = true
	}
	if len(present) <= 1 {
		return true
	}
	missing := 0
	for _, t := range troopTypes {
		if !present[t] {
			missing++
		}
	}
	return missing <= wilds
}

// TradeReward returns the troops awarded for the nth trade-in of the match
// (1-based): 4, 6, 8, 10, 12, 15, then +5 for each further trade.
func TradeReward(n int) int {
	if n < 1 {
		n = 1
	}
	if n <= 5 {
		return 2*n + 2
	}
	return 15 + 5*(n-6)
}
