package conquest

// MaxAttackDice and MaxDefendDice cap the dice each side may roll.
const (
	MaxAttackDice = 3
	MaxDefendDice = 2
)

// MaxAttackHistory is the number of resolved attacks kept on the match.
const MaxAttackHistory = 50

// Engagement describes a legal attack before any dice are rolled.
type Engagement struct {
	AttackerID  string
	DefenderID  string
	FromID      string
	ToID        string
	AttackerMax int
	DefenderMax int
}

// AttackResult summarizes one resolved attack.
type AttackResult struct {
	Seq            int    `json:"seq"`
	AttackerID     string `json:"attackerId"`
	DefenderID     string `json:"defenderId"`
	FromID         string `json:"fromId"`
	ToID           string `json:"toId"`
	AttackerDice   []int  `json:"attackerDice"`
	DefenderDice   []int  `json:"defenderDice"`
	AttackerLosses int    `json:"attackerLosses"`
	DefenderLosses int    `json:"defenderLosses"`
	Conquered      bool   `json:"conquered"`
	TroopsMoved    int    `json:"troopsMoved"`
	WinnerID       string `json:"winnerId,omitempty"`
}

// DefenderMaxDice returns the dice a territory with the given troops may defend with.
func DefenderMaxDice(troops int) int {
	if troops >= 2 {
		return MaxDefendDice
	}
	return 1
}

// ValidateAttack checks every attack precondition except the dice counts
// and returns the engagement with each side's dice limits.
func (g *Match) ValidateAttack(attackerID, fromID, toID string) (Engagement, error) {
	if g.WinnerID != "" {
		return Engagement{}, ErrGameOver
	}
	if g.Phase != PhaseTurnAttack {
		return Engagement{}, ErrWrongPhase
	}
	if g.CurrentPlayerID() != attackerID {
		return Engagement{}, ErrNotYourTurn
	}
	from, ok := g.Board[fromID]
	if !ok {
		return Engagement{}, ErrUnknownTerritory
	}
	to, ok := g.Board[toID]
	if !ok {
		return Engagement{}, ErrUnknownTerritory
	}
	if from.Owner != attackerID {
		return Engagement{}, ErrNotOwner
	}
	if to.Owner == attackerID {
		return Engagement{}, ErrOwnTerritory
	}
	if !g.Map.Adjacent(fromID, toID) {
		return Engagement{}, ErrNotAdjacent
	}
	if from.Troops < 2 {
		return Engagement{}, ErrInsufficient
	}
	defender := to.Owner
	if defender == "" {
		defender = Neutral
	}
	return Engagement{
		AttackerID:  attackerID,
		DefenderID:  defender,
		FromID:      fromID,
		ToID:        toID,
		AttackerMax: min(MaxAttackDice, from.Troops-1),
		DefenderMax: DefenderMaxDice(to.Troops),
	}, nil
}

// Attack resolves an attack with the defender rolling its maximum.
func (g *Match) Attack(attackerID, fromID, toID string, attackerDice int) (*AttackResult, error) {
	return g.ResolveAttack(attackerID, fromID, toID, attackerDice, 0)
}

// ResolveAttack rolls and applies one attack. A defenderDice of 0 means the
// defender's maximum; larger values are capped at it.
func (g *Match) ResolveAttack(attackerID, fromID, toID string, attackerDice, defenderDice int) (*AttackResult, error) {
	e, err := g.ValidateAttack(attackerID, fromID, toID)
	if err != nil {
		return nil, err
	}
	if attackerDice < 1 || attackerDice > e.AttackerMax {
		return nil, ErrInvalidCount
	}
	if defenderDice < 0 {
		return nil, ErrInvalidCount
	}
	if defenderDice == 0 || defenderDice > e.DefenderMax {
		defenderDice = e.DefenderMax
	}

	from, to := g.Board[fromID], g.Board[toID]
	aRoll := g.dice.Roll(attackerDice)
	dRoll := g.dice.Roll(defenderDice)
	sortDesc(aRoll)
	sortDesc(dRoll)

	var aLoss, dLoss int
	for i := 0; i < min(len(aRoll), len(dRoll)); i++ {
		if aRoll[i] > dRoll[i] {
			dLoss++
		} else {
			aLoss++
		}
	}
	from.Troops -= aLoss
	to.Troops -= dLoss

	g.attackSeq++
	res := AttackResult{
		Seq:            g.attackSeq,
		AttackerID:     attackerID,
		DefenderID:     e.DefenderID,
		FromID:         fromID,
		ToID:           toID,
		AttackerDice:   aRoll,
		DefenderDice:   dRoll,
		AttackerLosses: aLoss,
		DefenderLosses: dLoss,
	}

	if to.Troops <= 0 {
		survivors := max(1, attackerDice-aLoss)
		from.Troops -= survivors
		to.Owner = attackerID
		to.Troops = survivors
		res.Conquered = true
		res.TroopsMoved = survivors
		if p := g.Player(attackerID); p != nil {
			p.ConqueredThisTurn = true
		}
		g.checkWinner()
		res.WinnerID = g.WinnerID
	}

	g.record(res)
	return &res, nil
}

func (g *Match) record(res AttackResult) {
	g.LastAttack = &res
	g.History = append(g.History, res)
	if over := len(g.History) - MaxAttackHistory; over > 0 {
		g.History = append([]AttackResult(nil), g.History[over:]...)
	}
}

// AttackCount returns the number of attacks resolved since the match started.
func (g *Match) AttackCount() int {
	return g.attackSeq
}
