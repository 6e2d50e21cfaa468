package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/valcheur/go-steam-monitor/internal/core/legitimacy"
	"github.com/valcheur/go-steam-monitor/internal/data/steam"
	"github.com/valcheur/go-steam-monitor/internal/engine"
	"github.com/valcheur/go-steam-monitor/internal/presentation/formatter"
	"github.com/valcheur/go-steam-monitor/internal/util"
)

var (
	// Logging related
	debug bool

	// Steam API access
	apiKey   string
	language string

	// Target selection
	steamID string
	appID   int

	// Output related
	outputFormat string

	// Scoring configuration
	weightsFile string

	rootCmd = &cobra.Command{
		Use:   "go-steam-monitor [flags]",
		Short: "Steam achievement inspection tool",
		Long: `go-steam-monitor inspects Steam achievement data: unlock timelines,
legitimacy scoring and cross-player comparison.

It fetches achievement data from the Steam Web API, reconstructs each
player's unlock timeline and grades every unlock against a set of
plausibility rules.

Examples:
  go-steam-monitor --steamid 76561198000000001 --appid 440         # Inspect a player's game
  go-steam-monitor --steamid ... --appid 440 --output json          # JSON output
  go-steam-monitor --steamid ... --appid 440 --output summary       # Legitimacy digest
  go-steam-monitor timeline --steamid ... --appid 440               # Unlock timeline only
  go-steam-monitor compare --appid 440 --player1 ... --player2 ...  # Head-to-head diff
  go-steam-monitor watch --steamid ... --appid 440                  # Poll for new unlocks
  go-steam-monitor games --steamid ...                              # Owned and installed games
  go-steam-monitor serve --addr :8080                               # HTTP API`,
		RunE: runInspect,
	}
)

const (
	defaultLogFile = "~/.go-steam-monitor/logs/app.log"
	apiKeyEnvVar   = "STEAM_API_KEY"
)

func init() {
	rootCmd.PersistentFlags().StringVar(&apiKey, "key", "",
		"Steam Web API key (defaults to $STEAM_API_KEY)")
	rootCmd.PersistentFlags().StringVar(&language, "lang", "english",
		"Language for achievement names and descriptions")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"Enable debug mode")
	rootCmd.PersistentFlags().StringVar(&weightsFile, "weights", "",
		"Path to a JSON file overriding legitimacy rule weights")

	rootCmd.Flags().StringVar(&steamID, "steamid", "",
		"64-bit Steam id of the player to inspect")
	rootCmd.Flags().IntVar(&appID, "appid", 0,
		"Steam application id of the game")
	rootCmd.Flags().StringVarP(&outputFormat, "output", "o", "table",
		"Output format (table, json, summary)")
}

func runInspect(cmd *cobra.Command, args []string) error {
	initLogging()

	if steamID == "" || appID == 0 {
		return fmt.Errorf("both --steamid and --appid are required")
	}

	eng, client, err := newEngine()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	progress, err := eng.GetGameProgress(ctx, steamID, appID)
	if err != nil {
		return err
	}
	if progress == nil {
		fmt.Println("No achievement data available (private profile or no achievements)")
		return nil
	}

	rarity, err := client.FetchGlobalRarity(ctx, appID)
	if err != nil {
		rarity = nil
	}

	playerLabel := steamID
	if summary, err := eng.GetPlayerSummary(ctx, steamID); err == nil && summary != nil && summary.PersonaName != "" {
		playerLabel = fmt.Sprintf("%s (%s)", summary.PersonaName, steamID)
	}

	report := formatter.AchievementReport{
		SteamID:      playerLabel,
		AppID:        appID,
		Total:        progress.Total,
		Unlocked:     progress.Unlocked,
		Percentage:   progress.Percentage,
		Achievements: progress.Achievements,
		Rarity:       rarity,
	}

	switch outputFormat {
	case "json":
		return formatter.NewJSONFormatter().Format(report)
	case "summary":
		return formatter.NewSummaryFormatter().Format(report)
	default:
		return formatter.NewTableFormatter().Format(report)
	}
}

func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

// Helper functions

func initLogging() {
	logLevel := "info"
	if debug {
		logLevel = "debug"
	}
	logFile := expandPath(defaultLogFile)
	ensureDir(filepath.Dir(logFile))
	util.InitLogger(logLevel, logFile, debug)
}

// newEngine builds the engine and its Steam client from the shared flags.
func newEngine() (*engine.Engine, *steam.Client, error) {
	key := apiKey
	if key == "" {
		key = os.Getenv(apiKeyEnvVar)
	}

	weights := legitimacy.DefaultWeights()
	if weightsFile != "" {
		loaded, err := legitimacy.LoadWeights(expandPath(weightsFile))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load weights: %w", err)
		}
		weights = loaded
	}

	client := steam.NewClient(key, steam.WithLanguage(language))
	return engine.New(client, weights), client, nil
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return absPath
}

func ensureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}
