// Package config provides YAML-based game configuration loading,
// environment overrides and difficulty presets for pminvaders.
package config

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
)

// InvadersConfig contains all configuration for the game.
type InvadersConfig struct {
	Board  BoardConfig `yaml:"board" envPrefix:"BOARD_"`
	Timers TimerConfig `yaml:"timers" envPrefix:"TIMERS_"`
	Loop   LoopConfig  `yaml:"loop" envPrefix:"LOOP_"`
	Pool   PoolConfig  `yaml:"pool" envPrefix:"POOL_"`
}

// BoardConfig defines the bordered play area. The border occupies columns 0
// and Width, and rows 0 and Height. The player moves along row Height-1.
type BoardConfig struct {
	Width  int `yaml:"width" env:"WIDTH"`
	Height int `yaml:"height" env:"HEIGHT"`
}

// TimerConfig holds the countdown intervals, in ticks.
type TimerConfig struct {
	SpawnMin       uint32 `yaml:"spawn_min" env:"SPAWN_MIN"`             // Shortest gap between alien spawns
	SpawnMax       uint32 `yaml:"spawn_max" env:"SPAWN_MAX"`             // Longest gap between alien spawns
	AlienStep      uint32 `yaml:"alien_step" env:"ALIEN_STEP"`           // Ticks per alien row
	BulletStep     uint32 `yaml:"bullet_step" env:"BULLET_STEP"`         // Ticks per bullet row
	PlayerCooldown uint32 `yaml:"player_cooldown" env:"PLAYER_COOLDOWN"` // Ticks between shots
}

// LoopConfig controls how game ticks map onto wall-clock time.
type LoopConfig struct {
	Step             time.Duration `yaml:"step" env:"STEP"`
	FrameRate        int           `yaml:"frame_rate" env:"FRAME_RATE"`
	MaxStepsPerFrame int           `yaml:"max_steps_per_frame" env:"MAX_STEPS_PER_FRAME"`
}

// PoolConfig describes the pool file created on first run.
type PoolConfig struct {
	SizeMB int    `yaml:"size_mb" env:"SIZE_MB"`
	Layout string `yaml:"layout" env:"LAYOUT"`
	Sync   bool   `yaml:"sync" env:"SYNC"` // msync on every persist
}

// SizeBytes returns the pool size in bytes.
func (p PoolConfig) SizeBytes() int64 {
	return int64(p.SizeMB) << 20
}

// maxLayoutLen matches the layout field of the pool header.
const maxLayoutLen = 31

// Validate reports every problem with the configuration at once.
func (c *InvadersConfig) Validate() error {
	el := errors.NewErrorList()

	if c.Board.Width < 5 || c.Board.Width > 0xFFFF {
		el.Add(fmt.Errorf("board.width must be between 5 and 65535, got %d", c.Board.Width))
	}
	if c.Board.Height < 5 || c.Board.Height > 0xFFFF {
		el.Add(fmt.Errorf("board.height must be between 5 and 65535, got %d", c.Board.Height))
	}

	if c.Timers.SpawnMin > c.Timers.SpawnMax {
		el.Add(fmt.Errorf("timers.spawn_min (%d) must not exceed timers.spawn_max (%d)", c.Timers.SpawnMin, c.Timers.SpawnMax))
	}
	if c.Timers.AlienStep == 0 {
		el.Add(fmt.Errorf("timers.alien_step must be positive"))
	}
	if c.Timers.BulletStep == 0 {
		el.Add(fmt.Errorf("timers.bullet_step must be positive"))
	}

	if c.Loop.Step <= 0 {
		el.Add(fmt.Errorf("loop.step must be positive, got %s", c.Loop.Step))
	}
	if c.Loop.FrameRate <= 0 {
		el.Add(fmt.Errorf("loop.frame_rate must be positive, got %d", c.Loop.FrameRate))
	}
	if c.Loop.MaxStepsPerFrame < 0 {
		el.Add(fmt.Errorf("loop.max_steps_per_frame must not be negative, got %d", c.Loop.MaxStepsPerFrame))
	}

	if c.Pool.SizeMB < 1 {
		el.Add(fmt.Errorf("pool.size_mb must be at least 1, got %d", c.Pool.SizeMB))
	}
	if c.Pool.Layout == "" || len(c.Pool.Layout) > maxLayoutLen {
		el.Add(fmt.Errorf("pool.layout must be 1 to %d bytes, got %q", maxLayoutLen, c.Pool.Layout))
	}

	return el.Err()
}
