// pminvaders is a small terminal shooter whose whole game state lives in a
// memory-mapped pool file. Quitting and starting again with the same file
// resumes the game where it stopped.
//
// Usage:
//
//	pminvaders <pool-file>          - Play, creating the pool on first run
//	pminvaders info <pool-file>     - Show the state stored in a pool
//	pminvaders scores [pool-file]   - Show recorded sessions
//	pminvaders scores <pool> --clear - Forget the sessions of one pool
//
// Global flags:
//
//	--config <path>      - Custom game config YAML
//	--difficulty <name>  - easy, normal, hard or fixed
//	--fps <rate>         - Frame rate (default: from config)
//	--seed <value>       - RNG seed for reproducible spawns
//	--db <path>          - Session history database (default: ~/.pminvaders/sessions.db)
//	--log-file <path>    - Write logs to a file while playing
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/pminvaders/internal/config"
	"github.com/vovakirdan/pminvaders/internal/storage"
)

var (
	// Global flags
	flagConfig     string
	flagDifficulty string
	flagFPS        int
	flagSeed       int64
	flagDBPath     string
	flagLogFile    string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "pminvaders <pool-file>",
	Short: "Persistent-memory invaders for your terminal",
	Long: `pminvaders is a terminal shooter that keeps every game object in a
memory-mapped pool file. Each change is flushed as it happens, so quitting
and running it again with the same file picks the game back up.

The pool is created on first run and opened on every run after that.

Controls:
  Left/Right  - Move
  Space       - Fire
  Q/Ctrl+C    - Quit

Examples:
  pminvaders game.pool
  pminvaders game.pool --difficulty hard
  pminvaders info game.pool
  pminvaders scores`,
	Args:          cobra.ExactArgs(1),
	SilenceErrors: true,
	Run:           runPlay,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to custom game config YAML")
	rootCmd.PersistentFlags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard, fixed")
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 0, "Frame rate (0 = loop.frame_rate from config)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", storage.DefaultPath, "Path to session history database")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "Append logs to this file")

	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(scoresCmd)
}

// newLogger builds the command logger. Logs go to --log-file when set and to
// fallback otherwise. The returned func closes the log file.
func newLogger(fallback io.Writer) (*log.Logger, func(), error) {
	w := fallback
	closeFn := func() {}
	if flagLogFile != "" {
		f, err := os.OpenFile(flagLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("cannot open log file: %w", err)
		}
		w = f
		closeFn = func() { f.Close() }
	}

	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "pminvaders",
	})
	return logger, closeFn, nil
}

// loadConfig loads the game config and applies the --difficulty preset.
func loadConfig() (config.InvadersConfig, string, error) {
	preset, err := config.ParsePreset(flagDifficulty)
	if err != nil {
		return config.InvadersConfig{}, "", err
	}
	cfg, source, err := config.LoadInvaders(flagConfig)
	if err != nil {
		return cfg, source, err
	}
	config.ApplyInvadersPreset(&cfg, preset)
	return cfg, source, nil
}
