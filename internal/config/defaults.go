package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/invaders.yaml
var defaultInvadersYAML []byte

// DefaultInvadersConfig returns the built-in configuration.
func DefaultInvadersConfig() InvadersConfig {
	return InvadersConfig{
		Board: BoardConfig{
			Width:  30,
			Height: 30,
		},
		Timers: TimerConfig{
			SpawnMin:       5000,
			SpawnMax:       10000,
			AlienStep:      1000,
			BulletStep:     500,
			PlayerCooldown: 1000,
		},
		Loop: LoopConfig{
			Step:             50 * time.Microsecond,
			FrameRate:        60,
			MaxStepsPerFrame: 2000,
		},
		Pool: PoolConfig{
			SizeMB: 100,
			Layout: "pminvaders",
			Sync:   true,
		},
	}
}
