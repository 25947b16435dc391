package invaders

import "encoding/binary"

// tickTimer counts a persistent timer down by one tick and persists it.
// It reports true when the timer was already zero; an expired timer stays at
// zero until the caller resets it.
func (g *Game) tickTimer(field []byte) (bool, error) {
	t := binary.LittleEndian.Uint32(field)
	if t > 0 {
		binary.LittleEndian.PutUint32(field, t-1)
	}
	if err := g.persist(field); err != nil {
		return false, err
	}
	return t == 0, nil
}
