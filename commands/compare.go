package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/valcheur/go-steam-monitor/internal/presentation/formatter"
)

var (
	comparePlayer1 string
	comparePlayer2 string
	compareAppID   int
	compareOutput  string
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare two players' achievements for one game",
	Long: `Runs a head-to-head comparison of two players for one game: who unlocked
what, who was first, and how plausible each unlock looks.`,
	RunE: runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)

	compareCmd.Flags().StringVar(&comparePlayer1, "player1", "",
		"64-bit Steam id of the first player")
	compareCmd.Flags().StringVar(&comparePlayer2, "player2", "",
		"64-bit Steam id of the second player")
	compareCmd.Flags().IntVar(&compareAppID, "appid", 0,
		"Steam application id of the game")
	compareCmd.Flags().StringVarP(&compareOutput, "output", "o", "table",
		"Output format (table, json)")
}

func runCompare(cmd *cobra.Command, args []string) error {
	initLogging()

	if comparePlayer1 == "" || comparePlayer2 == "" || compareAppID == 0 {
		return fmt.Errorf("--player1, --player2 and --appid are all required")
	}

	eng, _, err := newEngine()
	if err != nil {
		return err
	}

	result, err := eng.CompareAchievements(cmd.Context(), comparePlayer1, comparePlayer2, compareAppID)
	if err != nil {
		return err
	}

	if compareOutput == "json" {
		return formatter.NewJSONFormatter().FormatValue(result)
	}
	return formatter.NewComparisonFormatter().Format(result)
}
