package invaders

import (
	"fmt"

	"github.com/vovakirdan/pminvaders/internal/core"
	"github.com/vovakirdan/pminvaders/internal/pmem"
)

// PoolInfo describes a pool file as it sits on disk.
type PoolInfo struct {
	Layout    string
	Size      int64
	Capacity  int
	State     core.GameState
	HasPlayer bool
}

// Inspect reads the game stored at path without changing it. Unlike Load it
// never creates the file, never sizes the root, and never adds or moves the
// player. Errors wrap ErrOpen.
func Inspect(path, layout string) (PoolInfo, error) {
	pool, err := pmem.Open(path, layout, pmem.WithoutSync())
	if err != nil {
		return PoolInfo{}, fmt.Errorf("%w: %w", ErrOpen, err)
	}
	defer pool.Close()

	if err := checkRecords(pool); err != nil {
		return PoolInfo{}, fmt.Errorf("%w: %w", ErrOpen, err)
	}

	_, hasPlayer := pool.First(TypePlayer)
	return PoolInfo{
		Layout:    pool.Layout(),
		Size:      pool.Size(),
		Capacity:  pool.Capacity(),
		State:     summarize(pool, pool.CurrentRoot()),
		HasPlayer: hasPlayer,
	}, nil
}
