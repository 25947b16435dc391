package config

import "fmt"

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
	DifficultyFixed  DifficultyPreset = "fixed"
)

// ParsePreset validates a preset name. The empty string means no preset.
func ParsePreset(name string) (DifficultyPreset, error) {
	switch p := DifficultyPreset(name); p {
	case "", DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyFixed:
		return p, nil
	default:
		return "", fmt.Errorf("unknown difficulty %q (want easy, normal, hard or fixed)", name)
	}
}

// timerScale returns the numerator and denominator applied to alien timers.
func timerScale(preset DifficultyPreset) (num, den uint32) {
	switch preset {
	case DifficultyEasy:
		return 3, 2
	case DifficultyHard:
		return 1, 2
	default:
		return 1, 1
	}
}

// ApplyInvadersPreset scales the alien spawn and movement timers for a preset.
// Normal and fixed keep the configured values. Player and bullet timers are
// never scaled.
func ApplyInvadersPreset(cfg *InvadersConfig, preset DifficultyPreset) {
	num, den := timerScale(preset)
	if num == den {
		return
	}
	scale := func(v uint32) uint32 {
		return max(uint32(uint64(v)*uint64(num)/uint64(den)), 1)
	}
	cfg.Timers.SpawnMin = scale(cfg.Timers.SpawnMin)
	cfg.Timers.SpawnMax = scale(cfg.Timers.SpawnMax)
	cfg.Timers.AlienStep = scale(cfg.Timers.AlienStep)
}
