package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/pminvaders/internal/core"
	"github.com/vovakirdan/pminvaders/internal/invaders"
	"github.com/vovakirdan/pminvaders/internal/platform/tui"
	"github.com/vovakirdan/pminvaders/internal/storage"
)

func runPlay(_ *cobra.Command, args []string) {
	if code := play(args[0]); code != 0 {
		os.Exit(code)
	}
}

// play runs one session against the pool at path and returns the exit code.
func play(path string) int {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "Error: pminvaders must run in a terminal")
		return 1
	}

	// The TUI owns the terminal, so logs are dropped unless --log-file is set.
	logger, closeLog, err := newLogger(io.Discard)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer closeLog()

	cfg, source, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	logger.Info("config loaded", "source", source, "difficulty", flagDifficulty)

	game, err := invaders.Load(path, cfg, flagSeed)
	if err != nil {
		logger.Error("pool unavailable", "path", path, "error", err)
		fmt.Println(err)
		return 1
	}

	st := game.State()
	event := "pool opened"
	if game.Created() {
		event = "pool created"
	}
	logger.Info(event, "path", path, "size", game.Size(),
		"score", st.Score, "high", st.HighScore, "aliens", st.Aliens, "bullets", st.Bullets)

	// Session history is best-effort
	store, err := storage.Open(flagDBPath)
	if err != nil {
		logger.Warn("could not open session history", "error", err)
	}
	session := storage.NewSession(path)

	width, height := 80, 24
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width, height = w, h
	}
	rt := core.RuntimeConfig{
		ScreenW:          width,
		ScreenH:          height,
		TickRate:         cfg.Loop.FrameRate,
		Step:             cfg.Loop.Step,
		MaxStepsPerFrame: cfg.Loop.MaxStepsPerFrame,
		Seed:             flagSeed,
	}
	if flagFPS > 0 {
		rt.TickRate = flagFPS
	}

	final, runErr := tui.Run(game, rt)

	session.Score = final.Score
	session.HighScore = final.HighScore
	session.Ticks = game.Ticks()
	if store != nil {
		if err := store.SaveSession(session); err != nil {
			logger.Warn("could not save session", "error", err)
		} else {
			logger.Info("session saved", "id", session.ID, "score", session.Score, "ticks", session.Ticks)
		}
		store.Close()
	}

	closeErr := game.Close()

	if runErr != nil {
		logger.Error("game stopped", "error", runErr)
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		return 1
	}
	if closeErr != nil {
		logger.Error("could not close pool", "error", closeErr)
		fmt.Fprintf(os.Stderr, "Error: %v\n", closeErr)
		return 1
	}
	return 0
}
