package conquest

// Connected reports whether from and to are joined by a path that passes only
// through territories owned by playerID.
func (g *Match) Connected(playerID, fromID, toID string) bool {
	start, ok := g.Board[fromID]
	if !ok || start.Owner != playerID {
		return false
	}
	if end, ok := g.Board[toID]; !ok || end.Owner != playerID {
		return false
	}

	visited := map[string]bool{fromID: true}
	queue := []string{fromID}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == toID {
			return true
		}
		for _, n := range g.Map.Territories[cur].Neighbors {
			if visited[n] || g.Board[n].Owner != playerID {
				continue
			}
			visited[n] = true
			queue = append(queue, n)
		}
	}
	return false
}

// Fortify moves troops between two connected territories of the current
// player and ends their turn.
func (g *Match) Fortify(playerID, fromID, toID string, count int) error {
	if g.WinnerID != "" {
		return ErrGameOver
	}
	if g.Phase != PhaseTurnFortify {
		return ErrWrongPhase
	}
	if g.CurrentPlayerID() != playerID {
		return ErrNotYourTurn
	}
	if fromID == toID {
		return ErrSameTerritory
	}
	from, ok := g.Board[fromID]
	if !ok {
		return ErrUnknownTerritory
	}
	to, ok := g.Board[toID]
	if !ok {
		return ErrUnknownTerritory
	}
	if from.Owner != playerID || to.Owner != playerID {
		return ErrNotOwner
	}
	if count < 1 || from.Troops-count < 1 {
		return ErrInvalidCount
	}
	if !g.Connected(playerID, fromID, toID) {
		return ErrNotConnected
	}

	from.Troops -= count
	to.Troops += count
	g.NextTurn()
	return nil
}
