// Package conquest implements the rules engine for a Risk-style territorial
// conquest game: map catalog, card deck, the match state machine, dice combat
// and fortification. It holds no locks and does no I/O; callers serialize access.
package conquest

import (
	"golang.org/x/exp/rand"
)

// TerritoryState is the live ownership and troop count of a territory.
// An owned territory always has at least one troop.
type TerritoryState struct {
	ID     string `json:"id"`
	Owner  string `json:"owner"`
	Troops int    `json:"troops"`
}

// CardNotice records that a player was granted a card at the end of their turn.
type CardNotice struct {
	Seq      int    `json:"seq"`
	PlayerID string `json:"playerId"`
	Card     Card   `json:"-"`
}

// Match is the single authoritative game aggregate: players, board, deck,
// phase cursor and win state.
type Match struct {
	Map        *Map
	Phase      Phase
	Players    []*Player
	Cursor     int
	Round      int
	Board      map[string]*TerritoryState
	Deck       *Deck
	WinnerID   string
	TradeCount int
	LastAttack *AttackResult
	History    []AttackResult
	CardNotice *CardNotice

	rng            *rand.Rand
	dice           Roller
	attackSeq      int
	noticeSeq      int
	callsignCursor int
}

// Option configures a Match.
type Option func(*Match)

// WithSeed seeds the match's random source for reproducible play.
func WithSeed(seed uint64) Option {
	return func(g *Match) { g.rng = rand.New(rand.NewSource(seed)) }
}

// WithDice replaces the dice roller.
func WithDice(r Roller) Option {
	return func(g *Match) { g.dice = r }
}

// NewMatch creates an empty match in the lobby.
func NewMatch(m *Map, opts ...Option) *Match {
	g := &Match{
		Map:   m,
		Phase: PhaseLobby,
		Board: make(map[string]*TerritoryState, m.Size()),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.rng == nil {
		g.rng = rand.New(rand.NewSource(rand.Uint64()))
	}
	if g.dice == nil {
		g.dice = RandRoller{Rand: g.rng}
	}
	g.Deck = NewDeck(m, g.rng)
	g.clearBoard()
	return g
}

func (g *Match) clearBoard() {
	for _, id := range g.Map.order {
		g.Board[id] = &TerritoryState{ID: id}
	}
}

// Player returns the seated player with the given ID, or nil.
func (g *Match) Player(id string) *Player {
	if i := g.playerIndex(id); i >= 0 {
		return g.Players[i]
	}
	return nil
}

func (g *Match) playerIndex(id string) int {
	for i, p := range g.Players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// CurrentPlayer returns the player at the turn cursor, or nil in the lobby.
func (g *Match) CurrentPlayer() *Player {
	if g.Phase == PhaseLobby || g.Cursor < 0 || g.Cursor >= len(g.Players) {
		return nil
	}
	return g.Players[g.Cursor]
}

// CurrentPlayerID returns the ID of the player at the cursor, or "".
func (g *Match) CurrentPlayerID() string {
	if p := g.CurrentPlayer(); p != nil {
		return p.ID
	}
	return ""
}

// IsActivePlayer reports whether id is seated at this table.
func (g *Match) IsActivePlayer(id string) bool {
	return id != "" && id != Neutral && g.playerIndex(id) >= 0
}

// AddPlayer seats a new player. Only allowed in the lobby while seats remain.
func (g *Match) AddPlayer(id, name string) (*Player, error) {
	if g.Phase != PhaseLobby {
		return nil, ErrWrongPhase
	}
	if id == "" || id == Neutral {
		return nil, ErrEmptyID
	}
	if g.playerIndex(id) >= 0 {
		return nil, ErrAlreadyJoined
	}
	if len(g.Players) >= MaxPlayers {
		return nil, ErrLobbyFull
	}
	clean := SanitizeName(name)
	if clean == "" {
		clean = g.nextCallsign()
	}
	p := &Player{
		ID:    id,
		Name:  g.uniqueName(clean),
		Color: g.nextColor(),
	}
	g.Players = append(g.Players, p)
	return p, nil
}

// RemovePlayer unseats a player. In the lobby this is a plain removal;
// mid-match the player's cards go to the discard pile, their territories
// become neutral and the turn cursor is repaired.
func (g *Match) RemovePlayer(id string) error {
	idx := g.playerIndex(id)
	if idx < 0 {
		return ErrUnknownPlayer
	}
	p := g.Players[idx]
	g.Players = append(g.Players[:idx], g.Players[idx+1:]...)

	if g.Phase == PhaseLobby {
		return nil
	}

	g.Deck.Discard(p.Hand...)
	p.Hand = nil
	for _, t := range g.Board {
		if t.Owner == id {
			t.Owner = Neutral
		}
	}
	if g.CardNotice != nil && g.CardNotice.PlayerID == id {
		g.CardNotice = nil
	}

	if len(g.Players) == 0 {
		g.Reset()
		return nil
	}

	wasCurrent := idx == g.Cursor
	if idx < g.Cursor {
		g.Cursor--
	}
	if g.Cursor >= len(g.Players) {
		g.Cursor = 0
	}

	switch g.Phase {
	case PhaseSetup:
		g.settleSetup()
	case PhaseGlobalReinforce:
		g.settleReinforce()
	case PhaseTurnAttack, PhaseTurnFortify:
		if wasCurrent && g.WinnerID == "" {
			g.Phase = PhaseTurnAttack
			g.skipEliminated()
		}
	}
	return nil
}

// SetReady sets a player's lobby ready flag.
func (g *Match) SetReady(id string, ready bool) error {
	if g.Phase != PhaseLobby {
		return ErrWrongPhase
	}
	p := g.Player(id)
	if p == nil {
		return ErrUnknownPlayer
	}
	p.Ready = ready
	return nil
}

// ToggleReady flips a player's lobby ready flag.
func (g *Match) ToggleReady(id string) error {
	p := g.Player(id)
	if p == nil {
		return ErrUnknownPlayer
	}
	return g.SetReady(id, !p.Ready)
}

// CanStartGame reports whether the lobby has at least two players, all ready.
func (g *Match) CanStartGame() bool {
	if g.Phase != PhaseLobby || len(g.Players) < MinPlayers {
		return false
	}
	for _, p := range g.Players {
		if !p.Ready {
			return false
		}
	}
	return true
}

// StartGame deals the territories round-robin in random order, one troop
// each, and moves to SETUP with each pool reduced by the territories owned.
func (g *Match) StartGame() error {
	if g.Phase != PhaseLobby {
		return ErrWrongPhase
	}
	if !g.CanStartGame() {
		return ErrNotReady
	}

	g.resetState()
	pool := StartingPool(len(g.Players))

	ids := g.Map.TerritoryIDs()
	g.rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	owned := make(map[string]int, len(g.Players))
	for i, id := range ids {
		p := g.Players[i%len(g.Players)]
		g.Board[id].Owner = p.ID
		g.Board[id].Troops = 1
		owned[p.ID]++
	}
	for _, p := range g.Players {
		p.Pool = max(0, pool-owned[p.ID])
	}

	g.Phase = PhaseSetup
	g.settleSetup()
	return nil
}

// Deploy places count troops from the player's pool onto a territory they own.
// In SETUP and GLOBAL_REINFORCE every player deploys independently; during a
// turn only the current player may deploy (troops from a trade-in).
func (g *Match) Deploy(playerID, territoryID string, count int) error {
	if g.WinnerID != "" {
		return ErrGameOver
	}
	if !g.Phase.In(PhaseSetup, PhaseGlobalReinforce, PhaseTurnAttack, PhaseTurnFortify) {
		return ErrWrongPhase
	}
	p := g.Player(playerID)
	if p == nil {
		return ErrUnknownPlayer
	}
	if g.Phase.IsTurn() && g.CurrentPlayerID() != playerID {
		return ErrNotYourTurn
	}
	t, ok := g.Board[territoryID]
	if !ok {
		return ErrUnknownTerritory
	}
	if t.Owner != playerID {
		return ErrNotOwner
	}
	if count < 1 || count > p.Pool {
		return ErrInvalidCount
	}

	p.Pool -= count
	t.Troops += count

	switch g.Phase {
	case PhaseSetup:
		g.settleSetup()
	case PhaseGlobalReinforce:
		g.settleReinforce()
	}
	return nil
}

// settleSetup leaves SETUP once every pool is empty.
func (g *Match) settleSetup() {
	if g.Phase != PhaseSetup || !g.allPoolsEmpty() {
		return
	}
	if g.Round == 0 {
		g.Round = 1
		g.Phase = PhaseTurnAttack
		g.Cursor = 0
		g.skipEliminated()
		return
	}
	g.StartNewRound()
}

// settleReinforce moves the cursor past players whose pools are empty and
// starts the attack turns once every pool is empty.
func (g *Match) settleReinforce() {
	if g.Phase != PhaseGlobalReinforce {
		return
	}
	if g.allPoolsEmpty() {
		g.Phase = PhaseTurnAttack
		g.Cursor = 0
		g.skipEliminated()
		return
	}
	if cur := g.CurrentPlayer(); cur != nil && cur.Pool > 0 {
		return
	}
	for step := 1; step <= len(g.Players); step++ {
		i := (g.Cursor + step) % len(g.Players)
		if g.Players[i].Pool > 0 {
			g.Cursor = i
			return
		}
	}
}

func (g *Match) allPoolsEmpty() bool {
	for _, p := range g.Players {
		if p.Pool > 0 {
			return false
		}
	}
	return true
}

// StartNewRound grants every player max(3, territories/3) plus the bonus of
// each continent they hold completely, and opens GLOBAL_REINFORCE.
// Players without territories receive nothing.
func (g *Match) StartNewRound() {
	g.Round++
	for _, p := range g.Players {
		p.Pool += g.Reinforcement(p.ID)
	}
	g.Phase = PhaseGlobalReinforce
	g.Cursor = 0
	g.settleReinforce()
}

// Reinforcement returns the troops a player receives at the start of a round.
func (g *Match) Reinforcement(playerID string) int {
	owned := g.OwnedCount(playerID)
	if owned == 0 {
		return 0
	}
	return max(3, owned/3) + g.ContinentBonus(playerID)
}

// ContinentBonus sums the bonus of every continent the player holds entirely.
func (g *Match) ContinentBonus(playerID string) int {
	bonus := 0
	for name, c := range g.Map.Continents {
		members := g.Map.ContinentMembers(name)
		if len(members) == 0 {
			continue
		}
		all := true
		for _, id := range members {
			if g.Board[id].Owner != playerID {
				all = false
				break
			}
		}
		if all {
			bonus += c.Bonus
		}
	}
	return bonus
}

// OwnedCount returns the number of territories owned by a player.
func (g *Match) OwnedCount(playerID string) int {
	n := 0
	for _, t := range g.Board {
		if t.Owner == playerID {
			n++
		}
	}
	return n
}

// EndPhase is the player-initiated phase advance. During a turn only the
// current player may end the phase; in GLOBAL_REINFORCE the acting player's
// pool must be empty.
func (g *Match) EndPhase(playerID string) error {
	if g.WinnerID != "" {
		return ErrGameOver
	}
	p := g.Player(playerID)
	if p == nil {
		return ErrUnknownPlayer
	}
	switch g.Phase {
	case PhaseTurnAttack, PhaseTurnFortify:
		if g.CurrentPlayerID() != playerID {
			return ErrNotYourTurn
		}
	case PhaseGlobalReinforce:
		if p.Pool > 0 {
			return ErrPoolNotEmpty
		}
	default:
		return ErrWrongPhase
	}
	g.NextPhase()
	return nil
}

// NextPhase advances TURN_ATTACK to TURN_FORTIFY and ends the turn from
// TURN_FORTIFY. In GLOBAL_REINFORCE it only advances when the current
// player's pool is empty.
func (g *Match) NextPhase() {
	if g.WinnerID != "" {
		return
	}
	switch g.Phase {
	case PhaseTurnAttack:
		g.Phase = PhaseTurnFortify
	case PhaseTurnFortify:
		g.NextTurn()
	case PhaseGlobalReinforce:
		if cur := g.CurrentPlayer(); cur != nil && cur.Pool > 0 {
			return
		}
		g.settleReinforce()
	}
}

// NextTurn grants the outgoing player a card if they conquered this turn,
// then passes the turn. Wrapping past the last player starts a new round.
func (g *Match) NextTurn() {
	if g.WinnerID != "" {
		return
	}
	g.CardNotice = nil
	if p := g.CurrentPlayer(); p != nil {
		if p.ConqueredThisTurn {
			if card, ok := g.Deck.Draw(); ok {
				p.Hand = append(p.Hand, card)
				g.noticeSeq++
				g.CardNotice = &CardNotice{Seq: g.noticeSeq, PlayerID: p.ID, Card: card}
			}
		}
		p.ConqueredThisTurn = false
	}
	for i := g.Cursor + 1; i < len(g.Players); i++ {
		if g.OwnedCount(g.Players[i].ID) > 0 {
			g.Cursor = i
			g.Phase = PhaseTurnAttack
			return
		}
	}
	g.StartNewRound()
}

// skipEliminated moves a turn-phase cursor forward to the first player who
// still owns territory, starting a new round if none remain in this pass.
func (g *Match) skipEliminated() {
	for i := g.Cursor; i < len(g.Players); i++ {
		if g.OwnedCount(g.Players[i].ID) > 0 {
			g.Cursor = i
			return
		}
	}
	if len(g.Players) > 0 && g.anyoneOwns() {
		g.StartNewRound()
	}
}

func (g *Match) anyoneOwns() bool {
	for _, p := range g.Players {
		if g.OwnedCount(p.ID) > 0 {
			return true
		}
	}
	return false
}

// checkWinner sets WinnerID when a single player owns every territory.
func (g *Match) checkWinner() {
	if g.WinnerID != "" {
		return
	}
	for _, p := range g.Players {
		if g.OwnedCount(p.ID) == g.Map.Size() {
			g.WinnerID = p.ID
			return
		}
	}
}

// Reset returns the match to the lobby, keeping seated players unready.
func (g *Match) Reset() {
	g.resetState()
	for _, p := range g.Players {
		p.Ready = false
	}
	g.Phase = PhaseLobby
}

// Clear resets the match and unseats every player.
func (g *Match) Clear() {
	g.Players = nil
	g.Reset()
}

func (g *Match) resetState() {
	g.clearBoard()
	g.Deck.Reset(g.Map)
	for _, p := range g.Players {
		p.Pool = 0
		p.Hand = nil
		p.ConqueredThisTurn = false
	}
	g.Cursor = 0
	g.Round = 0
	g.WinnerID = ""
	g.TradeCount = 0
	g.LastAttack = nil
	g.History = nil
	g.CardNotice = nil
	g.attackSeq = 0
}

// ReturnToLobby resets a finished match so the seated players can play again.
func (g *Match) ReturnToLobby() error {
	if g.WinnerID == "" {
		return ErrGameNotOver
	}
	g.Reset()
	return nil
}
