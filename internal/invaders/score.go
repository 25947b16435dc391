package invaders

// updateScore changes the score by delta and raises the high score to match.
// A negative delta at score zero does nothing. The new record is built in
// full and assigned in one write before it is persisted.
func (g *Game) updateScore(delta int) error {
	cur := decodeState(g.root)
	if delta < 0 && cur.Score == 0 {
		return nil
	}

	score := uint16(int(cur.Score) + delta)
	next := GameState{
		SpawnTimer: cur.SpawnTimer,
		Score:      score,
		HighScore:  max(score, cur.HighScore),
	}
	next.encode(g.root)
	return g.persist(g.root)
}
