package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/pminvaders/internal/invaders"
	"github.com/vovakirdan/pminvaders/internal/storage"
)

var infoCmd = &cobra.Command{
	Use:   "info <pool-file>",
	Short: "Show the game state stored in a pool file",
	Long: `Open an existing pool file and print the score, high score, player
column and live alien and bullet counts, without starting the game.

The pool is opened read-only in effect: nothing is created, sized or
moved. It must not be in use by a running game.

Examples:
  pminvaders info game.pool`,
	Args: cobra.ExactArgs(1),
	Run:  runInfo,
}

var (
	labelStyle = lipgloss.NewStyle().Bold(true).Width(12)
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
)

func runInfo(_ *cobra.Command, args []string) {
	if code := info(args[0]); code != 0 {
		os.Exit(code)
	}
}

// info prints the pool at path and returns the process exit code.
func info(path string) int {
	logger, closeLog, err := newLogger(os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer closeLog()

	cfg, _, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	pi, err := invaders.Inspect(path, cfg.Pool.Layout)
	if err != nil {
		fmt.Println(err)
		return 1
	}
	st := pi.State

	row := func(label, value string) {
		fmt.Println(labelStyle.Render(label) + value)
	}

	fmt.Println(titleStyle.Render("pminvaders pool"))
	fmt.Println()
	row("Pool", fmt.Sprintf("%s (%d MiB)", path, pi.Size>>20))
	row("Layout", fmt.Sprintf("%s, %d slots", pi.Layout, pi.Capacity))
	row("Score", fmt.Sprintf("%d | %d", st.Score, st.HighScore))
	if pi.HasPlayer {
		row("Player", fmt.Sprintf("column %d", st.PlayerX))
	} else {
		row("Player", "none yet")
	}
	row("Aliens", fmt.Sprintf("%d", st.Aliens))
	row("Bullets", fmt.Sprintf("%d", st.Bullets))

	store, err := storage.Open(flagDBPath)
	if err != nil {
		logger.Warn("could not open session history", "error", err)
		return 0
	}
	defer store.Close()

	stats, err := store.PoolStats(path)
	if err != nil {
		logger.Warn("could not read session history", "error", err)
		return 0
	}
	if stats.Sessions == 0 {
		return 0
	}
	fmt.Println()
	row("Sessions", fmt.Sprintf("%d", stats.Sessions))
	row("Best run", fmt.Sprintf("%d", stats.BestScore))
	row("Ticks", fmt.Sprintf("%d", stats.TotalTicks))
	row("Last played", stats.LastPlayed.Local().Format("2006-01-02 15:04"))
	return 0
}
