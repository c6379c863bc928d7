// mergeduel is the authoritative server for a two-player tile-merging duel.
//
// Usage:
//
//	mergeduel serve              - Start the SSH and WebSocket servers
//	mergeduel matches [player]   - Show recent match results
//
// Global flags:
//
//	--config <path>  - Path to a server config YAML
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var flagConfig string

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "mergeduel",
	Short: "Authoritative server for head-to-head tile merging",
	Long: `mergeduel runs the authoritative game server for a real-time
two-player merging duel. Players slide and merge tiles on their own
board while big merges drop obstacles onto the opponent's board.

Available commands:
  serve    - Start the SSH and WebSocket servers
  matches  - Show recent match results

Examples:
  mergeduel serve
  mergeduel serve --config ./configs/server.yaml
  mergeduel matches alice`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to server config YAML")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(matchesCmd)
}
