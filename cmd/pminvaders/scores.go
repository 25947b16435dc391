package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/pminvaders/internal/platform/tui"
	"github.com/vovakirdan/pminvaders/internal/storage"
)

var scoresCmd = &cobra.Command{
	Use:   "scores [pool-file]",
	Short: "Show recorded sessions",
	Long: `Display the top 10 recorded sessions across all pools, or the 10 most
recent sessions of one pool file.

--clear deletes the recorded sessions of the given pool file. The pool
itself is left alone.

Examples:
  pminvaders scores
  pminvaders scores game.pool
  pminvaders scores game.pool --clear`,
	Args: cobra.MaximumNArgs(1),
	Run:  runScores,
}

var flagClear bool

func init() {
	scoresCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete the session history of the given pool file")
}

func runScores(_ *cobra.Command, args []string) {
	if code := scores(args); code != 0 {
		os.Exit(code)
	}
}

// scores prints or clears the session history and returns the exit code.
func scores(args []string) int {
	if flagClear && len(args) != 1 {
		fmt.Fprintln(os.Stderr, "Error: --clear needs a pool file")
		return 1
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening session history: %v\n", err)
		return 1
	}
	defer store.Close()

	if flagClear {
		if err := store.ClearSessions(args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "Error clearing sessions: %v\n", err)
			return 1
		}
		fmt.Printf("Cleared session history of %s\n", args[0])
		return 0
	}

	title := "Top Sessions"
	var sessions []storage.Session
	if len(args) == 1 {
		title = fmt.Sprintf("Recent Sessions - %s", args[0])
		sessions, err = store.PoolSessions(args[0], 10)
	} else {
		sessions, err = store.TopSessions(10)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving sessions: %v\n", err)
		return 1
	}

	fmt.Println(title)
	fmt.Println()

	if len(sessions) == 0 {
		fmt.Println("No sessions recorded yet.")
		fmt.Println()
		fmt.Println("Play 'pminvaders <pool-file>' to record the first one!")
		return 0
	}

	width := 80
	if w, _, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
	}
	fmt.Println(tui.RenderHistory(sessions, width))
	return 0
}
