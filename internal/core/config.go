package core

import "time"

// RuntimeConfig contains the platform settings a game runs under.
type RuntimeConfig struct {
	ScreenW          int           // Terminal width in characters
	ScreenH          int           // Terminal height in characters
	TickRate         int           // Frames per second drawn by the platform
	Step             time.Duration // Simulated time per game tick
	MaxStepsPerFrame int           // Most ticks the platform may owe the game
	Seed             int64         // RNG seed, 0 means seed from the clock
}

// FrameInterval returns the wall-clock length of one frame.
func (c RuntimeConfig) FrameInterval() time.Duration {
	if c.TickRate <= 0 {
		return time.Second / 60
	}
	return time.Second / time.Duration(c.TickRate)
}

// TickDuration returns the simulated time one game tick covers. Without a
// step the game runs one tick per frame.
func (c RuntimeConfig) TickDuration() time.Duration {
	if c.Step <= 0 {
		return c.FrameInterval()
	}
	return c.Step
}

// MaxBacklog bounds the simulated time the platform may owe the game after
// slow frames: MaxStepsPerFrame ticks, one second when unset, and never less
// than one frame.
func (c RuntimeConfig) MaxBacklog() time.Duration {
	limit := time.Second
	if c.MaxStepsPerFrame > 0 {
		limit = time.Duration(c.MaxStepsPerFrame) * c.TickDuration()
	}
	return max(limit, c.FrameInterval())
}

// GameState is a snapshot of the persistent game state.
type GameState struct {
	Score     int // Current score
	HighScore int // Best score ever reached in this pool
	PlayerX   int // Player column
	Aliens    int // Live aliens
	Bullets   int // Live bullets
}

// StepResult is returned by Game.Step() after each simulation tick.
type StepResult struct {
	State GameState
}
