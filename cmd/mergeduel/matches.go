package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/merge-duel/internal/config"
	"github.com/vovakirdan/merge-duel/internal/storage"
)

var flagMatchesLimit int

var matchesCmd = &cobra.Command{
	Use:   "matches [player]",
	Short: "Show recent match results",
	Long: `Display recent match results, newest first. With a player id only
that player's matches are shown.

Examples:
  mergeduel matches
  mergeduel matches alice
  mergeduel matches alice --limit 20`,
	Args: cobra.MaximumNArgs(1),
	Run:  runMatches,
}

func init() {
	matchesCmd.Flags().IntVar(&flagMatchesLimit, "limit", 10, "Maximum number of matches to show")
}

func runMatches(_ *cobra.Command, args []string) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	player := ""
	if len(args) == 1 {
		player = args[0]
	}

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening match database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	records, err := store.RecentMatches(player, flagMatchesLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving matches: %v\n", err)
		os.Exit(1)
	}

	if len(records) == 0 {
		fmt.Println("No matches recorded yet.")
		return
	}

	fmt.Printf("  %-19s  %-12s  %-12s  %-11s  %-10s  %-6s  %s\n",
		"Date", "Player 1", "Player 2", "Score", "Winner", "Turns", "Reason")
	for _, r := range records {
		winner := r.Winner
		if winner == "" {
			winner = "draw"
		}
		fmt.Printf("  %-19s  %-12s  %-12s  %5d:%-5d  %-10s  %-6d  %s\n",
			r.CreatedAt.Format("2006-01-02 15:04"),
			r.Player1, r.Player2,
			r.Score1, r.Score2,
			winner, r.Turns, r.EndReason)
	}
}
