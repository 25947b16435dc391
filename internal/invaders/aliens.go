package invaders

import "fmt"

// processAliens runs the spawn timer and moves every live alien. An alien
// that falls past the bottom row is freed and costs one point.
func (g *Game) processAliens() error {
	expired, err := g.tickTimer(timerField(g.root, stateOffTimer))
	if err != nil {
		return err
	}
	if expired {
		putU32(g.root, stateOffTimer, g.spawnInterval())
		if err := g.persist(g.root); err != nil {
			return err
		}
		if err := g.spawnAlien(g.alienColumn(), 1); err != nil {
			return err
		}
	}

	step := g.cfg.Timers.AlienStep
	bottom := g.cfg.Board.Height - 1
	for oid := range g.pool.Each(TypeAlien) {
		a := g.pool.Bytes(oid)

		moved, err := g.tickTimer(timerField(a, offTimer))
		if err != nil {
			return err
		}
		if moved {
			putU32(a, offTimer, step)
			putU16(a, offY, u16(a, offY)+1)
		}
		if err := g.persist(a); err != nil {
			return err
		}

		if int(u16(a, offY)) > bottom {
			if err := g.free(oid); err != nil {
				return err
			}
			if err := g.updateScore(-1); err != nil {
				return err
			}
		}
	}
	return nil
}

// spawnAlien allocates an alien whose move timer expires on the next tick.
func (g *Game) spawnAlien(x, y uint16) error {
	if _, err := g.pool.Alloc(TypeAlien, recordSize, buildEntity(x, y, 1)); err != nil {
		return fmt.Errorf("%w: spawn alien: %w", ErrStore, err)
	}
	return nil
}

// spawnInterval draws the next spawn delay from [SpawnMin, SpawnMax].
func (g *Game) spawnInterval() uint32 {
	lo, hi := g.cfg.Timers.SpawnMin, g.cfg.Timers.SpawnMax
	return lo + uint32(g.rng.Int63n(int64(hi-lo)+1))
}

// alienColumn draws a spawn column from [2, width-2].
func (g *Game) alienColumn() uint16 {
	return uint16(2 + g.rng.Intn(g.cfg.Board.Width-3))
}
