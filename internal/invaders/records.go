package invaders

import (
	"encoding/binary"
	"fmt"

	"github.com/vovakirdan/pminvaders/internal/pmem"
)

// Object type numbers stored in the pool.
const (
	TypePlayer pmem.TypeNum = iota + 1
	TypeAlien
	TypeBullet
)

// recordSize is the on-media size of every record, the root included.
const recordSize = 8

// Entity record layout. The player keeps padding where aliens and bullets
// keep their row.
const (
	offX     = 0
	offY     = 2
	offTimer = 4
)

// GameState record layout (the pool root).
const (
	stateOffScore = 0
	stateOffHigh  = 2
	stateOffTimer = 4
)

// GameState is the root record: spawn timer, score and high score.
type GameState struct {
	SpawnTimer uint32
	Score      uint16
	HighScore  uint16
}

func decodeState(b []byte) GameState {
	return GameState{
		SpawnTimer: u32(b, stateOffTimer),
		Score:      u16(b, stateOffScore),
		HighScore:  u16(b, stateOffHigh),
	}
}

// encode writes the whole record in one go.
func (s GameState) encode(b []byte) {
	var buf [recordSize]byte
	putU16(buf[:], stateOffScore, s.Score)
	putU16(buf[:], stateOffHigh, s.HighScore)
	putU32(buf[:], stateOffTimer, s.SpawnTimer)
	copy(b[:recordSize], buf[:])
}

// Player is the single player record.
type Player struct {
	X        uint16
	Cooldown uint32
}

// Alien is one falling alien.
type Alien struct {
	X, Y      uint16
	MoveTimer uint32
}

// Bullet is one rising bullet.
type Bullet struct {
	X, Y      uint16
	MoveTimer uint32
}

func decodePlayer(b []byte) Player {
	return Player{X: u16(b, offX), Cooldown: u32(b, offTimer)}
}

func decodeAlien(b []byte) Alien {
	return Alien{X: u16(b, offX), Y: u16(b, offY), MoveTimer: u32(b, offTimer)}
}

func decodeBullet(b []byte) Bullet {
	return Bullet{X: u16(b, offX), Y: u16(b, offY), MoveTimer: u32(b, offTimer)}
}

// checkRecords fails with pmem.ErrCorrupt when a game record is not
// recordSize bytes long.
func checkRecords(pool *pmem.Pool) error {
	for _, typ := range []pmem.TypeNum{TypePlayer, TypeAlien, TypeBullet} {
		for oid := range pool.Each(typ) {
			if n := len(pool.Bytes(oid)); n != recordSize {
				return fmt.Errorf("record %d of type %d is %d bytes: %w", oid, typ, n, pmem.ErrCorrupt)
			}
		}
	}
	return nil
}

// buildEntity returns a constructor filling an entity record.
func buildEntity(x, y uint16, timer uint32) pmem.Constructor {
	return func(b []byte) error {
		putU16(b, offX, x)
		putU16(b, offY, y)
		putU32(b, offTimer, timer)
		return nil
	}
}

func timerField(b []byte, off int) []byte {
	return b[off : off+4]
}

func u16(b []byte, off int) uint16 {
	return binary.LittleEndian.Uint16(b[off:])
}

func u32(b []byte, off int) uint32 {
	return binary.LittleEndian.Uint32(b[off:])
}

func putU16(b []byte, off int, v uint16) {
	binary.LittleEndian.PutUint16(b[off:], v)
}

func putU32(b []byte, off int, v uint32) {
	binary.LittleEndian.PutUint32(b[off:], v)
}
