package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/valcheur/go-steam-monitor/internal/presentation/formatter"
)

var (
	timelineSteamID string
	timelineAppID   int
	timelineOutput  string
)

var timelineCmd = &cobra.Command{
	Use:   "timeline",
	Short: "Show a player's achievement unlock timeline",
	Long: `Reconstructs one player's unlock timeline for a game: unlock times in
order, the second-of-minute histogram and any same-minute clusters.`,
	RunE: runTimeline,
}

func init() {
	rootCmd.AddCommand(timelineCmd)

	timelineCmd.Flags().StringVar(&timelineSteamID, "steamid", "",
		"64-bit Steam id of the player")
	timelineCmd.Flags().IntVar(&timelineAppID, "appid", 0,
		"Steam application id of the game")
	timelineCmd.Flags().StringVarP(&timelineOutput, "output", "o", "table",
		"Output format (table, json)")
}

func runTimeline(cmd *cobra.Command, args []string) error {
	initLogging()

	if timelineSteamID == "" || timelineAppID == 0 {
		return fmt.Errorf("both --steamid and --appid are required")
	}

	eng, _, err := newEngine()
	if err != nil {
		return err
	}

	tl, err := eng.GetPlayerTimeline(cmd.Context(), timelineSteamID, timelineAppID)
	if err != nil {
		return err
	}
	if tl == nil {
		fmt.Println("No achievement data available (private profile or no achievements)")
		return nil
	}

	if timelineOutput == "json" {
		return formatter.NewJSONFormatter().FormatValue(tl)
	}

	fmt.Printf("Unlocked %d of %d achievements", tl.UnlockedCount, tl.TotalAchievementCount)
	if tl.TotalPlaytimeMinutes > 0 {
		fmt.Printf(" over %d minutes of playtime", tl.TotalPlaytimeMinutes)
	}
	fmt.Println()
	fmt.Println()

	for _, ts := range tl.SortedUnlockTimes {
		fmt.Println(time.Unix(ts, 0).UTC().Format("2006-01-02 15:04:05"))
	}

	if len(tl.MinuteClusters) > 0 {
		fmt.Println()
		fmt.Println("Same-minute clusters:")
		for _, cluster := range tl.MinuteClusters {
			minute := time.Unix(cluster.Bucket*60, 0).UTC().Format("2006-01-02 15:04")
			fmt.Printf("  %s: %d unlocks\n", minute, len(cluster.Times))
		}
	}

	return nil
}
