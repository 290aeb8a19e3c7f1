package conquest

// TradeOutcome describes an accepted trade-in.
type TradeOutcome struct {
	PlayerID   string `json:"playerId"`
	Cards      []Card `json:"cards"`
	Reward     int    `json:"reward"`
	TradeCount int    `json:"tradeCount"`
}

// TradeCards exchanges three held cards for troops. The cards go to the
// discard pile and the reward for the next global trade is added to the pool.
func (g *Match) TradeCards(playerID string, uids []string) (*TradeOutcome, error) {
	if g.WinnerID != "" {
		return nil, ErrGameOver
	}
	if !g.Phase.In(PhaseGlobalReinforce, PhaseTurnAttack, PhaseTurnFortify) {
		return nil, ErrWrongPhase
	}
	p := g.Player(playerID)
	if p == nil {
		return nil, ErrUnknownPlayer
	}
	if g.CurrentPlayerID() != playerID {
		return nil, ErrNotYourTurn
	}
	if len(p.Hand) < 3 {
		return nil, ErrNotEnoughCards
	}
	if len(uids) != 3 {
		return nil, ErrInvalidTradeSet
	}

	seen := make(map[string]bool, 3)
	cards := make([]Card, 0, 3)
	for _, uid := range uids {
		if uid == "" || seen[uid] {
			return nil, ErrInvalidTradeSet
		}
		seen[uid] = true
		i := p.CardIndex(uid)
		if i < 0 {
			return nil, ErrUnknownCard
		}
		cards = append(cards, p.Hand[i])
	}
	if !IsValidTradeSet(cards) {
		return nil, ErrInvalidTradeSet
	}

	var kept []Card
	for _, c := range p.Hand {
		if !seen[c.UID] {
			kept = append(kept, c)
		}
	}
	p.Hand = kept
	g.Deck.Discard(cards...)

	g.TradeCount++
	reward := TradeReward(g.TradeCount)
	p.Pool += reward
	return &TradeOutcome{
		PlayerID:   playerID,
		Cards:      cards,
		Reward:     reward,
		TradeCount: g.TradeCount,
	}, nil
}

// NextTradeReward returns the reward the next trade-in will grant.
func (g *Match) NextTradeReward() int {
	return TradeReward(g.TradeCount + 1)
}
