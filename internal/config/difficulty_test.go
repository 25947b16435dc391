package config

import "testing"

func TestParsePreset(t *testing.T) {
	for _, name := range []string{"", "easy", "normal", "hard", "fixed"} {
		if _, err := ParsePreset(name); err != nil {
			t.Errorf("ParsePreset(%q) failed: %v", name, err)
		}
	}
	if _, err := ParsePreset("nightmare"); err == nil {
		t.Error("ParsePreset(nightmare) should fail")
	}
}

func TestApplyInvadersPreset(t *testing.T) {
	tests := []struct {
		preset             DifficultyPreset
		spawnMin, spawnMax uint32
		alienStep          uint32
	}{
		{DifficultyEasy, 7500, 15000, 1500},
		{DifficultyNormal, 5000, 10000, 1000},
		{DifficultyFixed, 5000, 10000, 1000},
		{DifficultyHard, 2500, 5000, 500},
	}

	for _, tc := range tests {
		t.Run(string(tc.preset), func(t *testing.T) {
			cfg := DefaultInvadersConfig()
			ApplyInvadersPreset(&cfg, tc.preset)

			if cfg.Timers.SpawnMin != tc.spawnMin || cfg.Timers.SpawnMax != tc.spawnMax {
				t.Errorf("spawn range = [%d, %d], expected [%d, %d]",
					cfg.Timers.SpawnMin, cfg.Timers.SpawnMax, tc.spawnMin, tc.spawnMax)
			}
			if cfg.Timers.AlienStep != tc.alienStep {
				t.Errorf("AlienStep = %d, expected %d", cfg.Timers.AlienStep, tc.alienStep)
			}
			if cfg.Timers.BulletStep != 500 || cfg.Timers.PlayerCooldown != 1000 {
				t.Error("presets must not touch bullet or player timers")
			}
		})
	}
}

func TestApplyPresetKeepsTimersPositive(t *testing.T) {
	cfg := DefaultInvadersConfig()
	cfg.Timers.AlienStep = 1
	ApplyInvadersPreset(&cfg, DifficultyHard)
	if cfg.Timers.AlienStep != 1 {
		t.Errorf("AlienStep = %d, expected 1", cfg.Timers.AlienStep)
	}
}
