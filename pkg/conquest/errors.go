package conquest

import "errors"

// Rejection reasons. A returned error always means the match was left unchanged.
var (
	ErrWrongPhase       = errors.New("action not allowed in the current phase")
	ErrNotYourTurn      = errors.New("not your turn")
	ErrGameOver         = errors.New("game is over")
	ErrUnknownPlayer    = errors.New("unknown player")
	ErrUnknownTerritory = errors.New("unknown territory")
	ErrNotOwner         = errors.New("territory is not yours")
	ErrOwnTerritory     = errors.New("cannot attack your own territory")
	ErrNotAdjacent      = errors.New("territories are not adjacent")
	ErrNotConnected     = errors.New("no path through your own territories")
	ErrSameTerritory    = errors.New("source and destination are the same")
	ErrInvalidCount     = errors.New("invalid troop or dice count")
	ErrInsufficient     = errors.New("not enough troops")
	ErrPoolNotEmpty     = errors.New("troops remain to be deployed")
	ErrLobbyFull        = errors.New("table is full")
	ErrEmptyID          = errors.New("player id is required")
	ErrAlreadyJoined    = errors.New("player already joined")
	ErrNotReady         = errors.New("need at least two players, all ready")
	ErrNotEnoughCards   = errors.New("need at least three cards to trade")
	ErrInvalidTradeSet  = errors.New("cards do not form a valid set")
	ErrUnknownCard      = errors.New("card not in hand")
	ErrGameNotOver      = errors.New("game is not over yet")
)
