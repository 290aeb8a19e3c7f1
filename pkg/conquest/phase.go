package conquest

// Phase is the match lifecycle stage. The set of phases is closed; every
// operation checks the current phase against the phases it accepts.
type Phase string

const (
	PhaseLobby           Phase = "LOBBY"
	PhaseSetup           Phase = "SETUP"
	PhaseGlobalReinforce Phase = "GLOBAL_REINFORCE"
	PhaseTurnAttack      Phase = "TURN_ATTACK"
	PhaseTurnFortify     Phase = "TURN_FORTIFY"
)

// AllPhases lists every phase in lifecycle order.
func AllPhases() []Phase {
	return []Phase{PhaseLobby, PhaseSetup, PhaseGlobalReinforce, PhaseTurnAttack, PhaseTurnFortify}
}

// Valid reports whether p is one of the known phases.
func (p Phase) Valid() bool {
	for _, q := range AllPhases() {
		if p == q {
			return true
		}
	}
	return false
}

// In reports whether p is any of the given phases.
func (p Phase) In(phases ...Phase) bool {
	for _, q := range phases {
		if p == q {
			return true
		}
	}
	return false
}

// IsTurn reports whether p is one of the single-actor turn phases.
func (p Phase) IsTurn() bool {
	return p == PhaseTurnAttack || p == PhaseTurnFortify
}

// StartingPool returns the initial troop pool for a match with n players.
func StartingPool(n int) int {
	switch n {
	case 2:
		return 30
	case 3:
		return 25
	default:
		return 20
	}
}
