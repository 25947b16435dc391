// Package invaders implements the pminvaders game over a persistent object
// pool. Every game record lives in the pool and each mutation is persisted
// before the tick moves on, so a restarted process resumes where the last
// one stopped.
package invaders

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/vovakirdan/pminvaders/internal/config"
	"github.com/vovakirdan/pminvaders/internal/core"
	"github.com/vovakirdan/pminvaders/internal/pmem"
)

var (
	// ErrCreate wraps failures creating a new pool file.
	ErrCreate = errors.New("failed to create pool")
	// ErrOpen wraps failures opening an existing pool file.
	ErrOpen = errors.New("failed to open pool")
	// ErrStore marks a fatal allocation or persist failure during play.
	ErrStore = errors.New("store failure")
)

// Display glyphs.
const (
	PlayerChar = '▲'
	AlienChar  = '◆'
	BulletChar = '•'
)

// Game is the process-lifetime game context.
type Game struct {
	pool    *pmem.Pool
	root    []byte
	cfg     config.InvadersConfig
	rng     *rand.Rand
	ticks   uint64
	created bool
}

// Load opens the pool at path, creating it from cfg.Pool when the file does
// not exist yet. A zero seed seeds the generator from the clock.
func Load(path string, cfg config.InvadersConfig, seed int64) (*Game, error) {
	var opts []pmem.Option
	if !cfg.Pool.Sync {
		opts = append(opts, pmem.WithoutSync())
	}

	pool, created, err := pmem.CreateOrOpen(path, cfg.Pool.Layout, cfg.Pool.SizeBytes(), opts...)
	if err != nil {
		if created {
			return nil, fmt.Errorf("%w: %w", ErrCreate, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}

	g, err := New(pool, cfg, seed)
	if err != nil {
		_ = pool.Close()
		if created {
			return nil, fmt.Errorf("%w: %w", ErrCreate, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}
	g.created = created
	return g, nil
}

// New builds a game over an open pool. The root record is sized on first use
// and a player is allocated at the centre column when none exists. The game
// takes ownership of the pool.
func New(pool *pmem.Pool, cfg config.InvadersConfig, seed int64) (*Game, error) {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	if err := checkRecords(pool); err != nil {
		return nil, err
	}

	root, err := pool.Root(recordSize)
	if err != nil {
		return nil, fmt.Errorf("%w: root: %w", ErrStore, err)
	}

	g := &Game{
		pool: pool,
		root: root,
		cfg:  cfg,
		rng:  rand.New(rand.NewSource(seed)),
	}
	if err := g.ensurePlayer(); err != nil {
		return nil, err
	}
	return g, nil
}

// ensurePlayer allocates the player if it is missing and pulls it back onto
// the board if the board has shrunk since the pool was written.
func (g *Game) ensurePlayer() error {
	oid, ok := g.pool.First(TypePlayer)
	if !ok {
		x := uint16(g.cfg.Board.Width / 2)
		if _, err := g.pool.Alloc(TypePlayer, recordSize, buildEntity(x, 0, 1)); err != nil {
			return fmt.Errorf("%w: player: %w", ErrStore, err)
		}
		return nil
	}

	p := g.pool.Bytes(oid)
	x := core.Clamp(int(u16(p, offX)), 1, g.cfg.Board.Width-2)
	if x != int(u16(p, offX)) {
		putU16(p, offX, uint16(x))
		return g.persist(p)
	}
	return nil
}

// Step advances the game by one tick: aliens, then bullets, then the player
// with in. Any returned error wraps ErrStore and is fatal to the session.
func (g *Game) Step(in core.Action) (core.StepResult, error) {
	if err := g.processAliens(); err != nil {
		return core.StepResult{}, err
	}
	if err := g.processBullets(); err != nil {
		return core.StepResult{}, err
	}
	if err := g.processPlayer(in); err != nil {
		return core.StepResult{}, err
	}
	g.ticks++
	return core.StepResult{State: g.State()}, nil
}

// Render draws the current pool state: score line, border, aliens, bullets
// and player, in that order.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()

	st := g.GameState()
	dst.DrawText(1, 1, fmt.Sprintf("Score: %d | %d", st.Score, st.HighScore))
	dst.DrawBox(core.NewRect(0, 0, g.cfg.Board.Width+1, g.cfg.Board.Height+1))

	for _, a := range g.Aliens() {
		dst.SetColor(int(a.X), int(a.Y), AlienChar, core.ColorRed)
	}
	for _, b := range g.Bullets() {
		dst.SetColor(int(b.X), int(b.Y), BulletChar, core.ColorYellow)
	}
	if p, ok := g.Player(); ok {
		dst.SetColor(int(p.X), int(g.playerRow()), PlayerChar, core.ColorGreen)
	}
}

// ScreenSize returns the screen size Render needs, border included.
func (g *Game) ScreenSize() (int, int) {
	return g.cfg.Board.Width + 1, g.cfg.Board.Height + 1
}

// GameState returns a copy of the root record.
func (g *Game) GameState() GameState {
	return decodeState(g.root)
}

// Player returns the player record.
func (g *Game) Player() (Player, bool) {
	return findPlayer(g.pool)
}

// Aliens returns every live alien in slot order.
func (g *Game) Aliens() []Alien {
	var out []Alien
	for oid := range g.pool.Each(TypeAlien) {
		out = append(out, decodeAlien(g.pool.Bytes(oid)))
	}
	return out
}

// Bullets returns every live bullet in slot order.
func (g *Game) Bullets() []Bullet {
	var out []Bullet
	for oid := range g.pool.Each(TypeBullet) {
		out = append(out, decodeBullet(g.pool.Bytes(oid)))
	}
	return out
}

// State summarizes the game for the platform layer.
func (g *Game) State() core.GameState {
	return summarize(g.pool, g.root)
}

func findPlayer(pool *pmem.Pool) (Player, bool) {
	oid, ok := pool.First(TypePlayer)
	if !ok {
		return Player{}, false
	}
	return decodePlayer(pool.Bytes(oid)), true
}

func summarize(pool *pmem.Pool, root []byte) core.GameState {
	var st GameState
	if len(root) >= recordSize {
		st = decodeState(root)
	}
	out := core.GameState{
		Score:     int(st.Score),
		HighScore: int(st.HighScore),
		Aliens:    pool.Count(TypeAlien),
		Bullets:   pool.Count(TypeBullet),
	}
	if p, ok := findPlayer(pool); ok {
		out.PlayerX = int(p.X)
	}
	return out
}

// Ticks returns the number of ticks run by this process.
func (g *Game) Ticks() uint64 { return g.ticks }

// Created reports whether Load created the pool file.
func (g *Game) Created() bool { return g.created }

// Size returns the pool size in bytes.
func (g *Game) Size() int64 { return g.pool.Size() }

// Close flushes and closes the pool.
func (g *Game) Close() error {
	return g.pool.Close()
}

func (g *Game) persist(b []byte) error {
	if err := g.pool.Persist(b); err != nil {
		return fmt.Errorf("%w: %w", ErrStore, err)
	}
	return nil
}
