package invaders

import (
	"fmt"

	"github.com/vovakirdan/pminvaders/internal/core"
)

// processPlayer applies one tick of input to the player. The weapon cooldown
// counts down every tick and idles at zero until the next shot.
func (g *Game) processPlayer(in core.Action) error {
	oid, ok := g.pool.First(TypePlayer)
	if !ok {
		return fmt.Errorf("%w: player record missing", ErrStore)
	}
	p := g.pool.Bytes(oid)

	if _, err := g.tickTimer(timerField(p, offTimer)); err != nil {
		return err
	}

	x := u16(p, offX)
	switch {
	case in == core.ActionLeft:
		if dst := int(x) - 1; g.playerColumnOK(dst) {
			putU16(p, offX, uint16(dst))
		}
	case in == core.ActionRight:
		if dst := int(x) + 1; g.playerColumnOK(dst) {
			putU16(p, offX, uint16(dst))
		}
	case in == core.ActionFire && u32(p, offTimer) == 0:
		putU32(p, offTimer, g.cfg.Timers.PlayerCooldown)
		if err := g.spawnBullet(x, g.playerRow()-1); err != nil {
			return err
		}
	}

	return g.persist(p)
}

// playerColumnOK reports whether x lies strictly inside the border and off
// the last interior column.
func (g *Game) playerColumnOK(x int) bool {
	return x >= 1 && x <= g.cfg.Board.Width-2
}

func (g *Game) playerRow() uint16 {
	return uint16(g.cfg.Board.Height - 1)
}
