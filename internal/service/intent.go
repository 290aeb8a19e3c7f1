package service

// IntentType names an inbound player action.
type IntentType string

const (
	IntentJoin           IntentType = "join"
	IntentLeaveLobby     IntentType = "leaveLobby"
	IntentToggleReady    IntentType = "toggleReady"
	IntentStartGame      IntentType = "startGame"
	IntentDeploy         IntentType = "deploy"
	IntentInitiateAttack IntentType = "initiateAttack"
	IntentCommitRoll     IntentType = "commitRoll"
	IntentFortify        IntentType = "fortify"
	IntentEndPhase       IntentType = "endPhase"
	IntentTradeCards     IntentType = "tradeCards"
	IntentReturnToLobby  IntentType = "returnToLobby"

	// IntentDisconnect is a client-initiated hang-up. The transport closes
	// the connection and the table sees an ordinary Disconnect.
	IntentDisconnect IntentType = "disconnect"
)

// Intent is a decoded player action. Only the fields relevant to Type are read.
type Intent struct {
	Type        IntentType `json:"type"`
	Name        string     `json:"name,omitempty"`
	TerritoryID string     `json:"territoryId,omitempty"`
	FromID      string     `json:"fromId,omitempty"`
	ToID        string     `json:"toId,omitempty"`
	Count       int        `json:"count,omitempty"`
	BattleID    string     `json:"battleId,omitempty"`
	Dice        int        `json:"dice,omitempty"`
	CardUIDs    []string   `json:"cardUids,omitempty"`
}

// Known reports whether t is a recognized intent.
func (t IntentType) Known() bool {
	switch t {
	case IntentJoin, IntentLeaveLobby, IntentToggleReady, IntentStartGame, IntentDeploy,
		IntentInitiateAttack, IntentCommitRoll, IntentFortify, IntentEndPhase,
		IntentTradeCards, IntentReturnToLobby:
		return true
	}
	return false
}

// blockedByBattle reports whether the intent must wait for an open battle to end.
func (t IntentType) blockedByBattle() bool {
	return t != IntentCommitRoll
}
