package commands

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/valcheur/go-steam-monitor/internal/core/model"
	"github.com/valcheur/go-steam-monitor/internal/util"
)

var (
	watchSteamID string
	watchAppID   int
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll a player's achievements and report new unlocks",
	Long: `Polls one player's achievements for a game once a minute and prints every
newly unlocked achievement as it appears. Runs until interrupted.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVar(&watchSteamID, "steamid", "",
		"64-bit Steam id of the player")
	watchCmd.Flags().IntVar(&watchAppID, "appid", 0,
		"Steam application id of the game")
}

func runWatch(cmd *cobra.Command, args []string) error {
	initLogging()

	if watchSteamID == "" || watchAppID == 0 {
		return fmt.Errorf("both --steamid and --appid are required")
	}

	eng, _, err := newEngine()
	if err != nil {
		return err
	}

	// Diff consecutive snapshots so only fresh unlocks are printed. The
	// sink receives the full list every time.
	var mu sync.Mutex
	known := make(map[string]bool)
	first := true

	sink := func(records []model.AchievementRecord) {
		mu.Lock()
		defer mu.Unlock()

		for _, rec := range records {
			if !rec.Achieved {
				continue
			}
			if known[rec.APIName] {
				continue
			}
			known[rec.APIName] = true
			if first {
				continue
			}

			name := rec.Name
			if name == "" {
				name = rec.APIName
			}
			when := ""
			if rec.UnlockTime > 0 {
				when = " at " + time.Unix(rec.UnlockTime, 0).UTC().Format("15:04:05")
			}
			fmt.Printf("Unlocked: %s%s\n", name, when)
		}

		if first {
			first = false
			fmt.Printf("Watching %s / appid %d (%d already unlocked). Press Ctrl+C to stop.\n",
				watchSteamID, watchAppID, len(known))
		}
	}

	handle, err := eng.StartWatching(cmd.Context(), watchSteamID, watchAppID, sink)
	if err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	eng.StopWatching(handle)
	util.LogInfo("Watch stopped")
	return nil
}
