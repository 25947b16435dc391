package invaders

import (
	"fmt"

	"github.com/vovakirdan/pminvaders/internal/pmem"
)

// processBullets moves every live bullet up and resolves hits. A bullet is
// freed when it reaches row 0 or takes down an alien.
func (g *Game) processBullets() error {
	step := g.cfg.Timers.BulletStep
	for oid := range g.pool.Each(TypeBullet) {
		b := g.pool.Bytes(oid)

		moved, err := g.tickTimer(timerField(b, offTimer))
		if err != nil {
			return err
		}
		if moved {
			putU32(b, offTimer, step)
			putU16(b, offY, u16(b, offY)-1)
		}
		if err := g.persist(b); err != nil {
			return err
		}

		spent := u16(b, offY) == 0
		if !spent {
			spent, err = g.processCollision(u16(b, offX), u16(b, offY))
			if err != nil {
				return err
			}
		}
		if spent {
			if err := g.free(oid); err != nil {
				return err
			}
		}
	}
	return nil
}

// processCollision destroys the first alien found at (x, y) and scores it.
// At most one alien is removed per call.
func (g *Game) processCollision(x, y uint16) (bool, error) {
	for oid := range g.pool.Each(TypeAlien) {
		a := g.pool.Bytes(oid)
		if u16(a, offX) != x || u16(a, offY) != y {
			continue
		}
		if err := g.updateScore(1); err != nil {
			return false, err
		}
		if err := g.free(oid); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

// spawnBullet allocates a bullet whose move timer expires on the next tick.
func (g *Game) spawnBullet(x, y uint16) error {
	if _, err := g.pool.Alloc(TypeBullet, recordSize, buildEntity(x, y, 1)); err != nil {
		return fmt.Errorf("%w: fire bullet: %w", ErrStore, err)
	}
	return nil
}

func (g *Game) free(oid pmem.OID) error {
	if err := g.pool.Free(oid); err != nil {
		return fmt.Errorf("%w: %w", ErrStore, err)
	}
	return nil
}
