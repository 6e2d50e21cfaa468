package commands

import (
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/valcheur/go-steam-monitor/internal/library"
	"github.com/valcheur/go-steam-monitor/internal/presentation/formatter"
	"github.com/valcheur/go-steam-monitor/internal/util"
)

var (
	gamesSteamID   string
	gamesSteamRoot string
	gamesOutput    string
	gamesWatch     bool
)

// gameListing is one row of the games command: ownership from the Web API
// joined with local install state.
type gameListing struct {
	AppID           int    `json:"appid"`
	Name            string `json:"name"`
	PlaytimeMinutes int    `json:"playtimeMinutes"`
	Installed       bool   `json:"installed"`
}

var gamesCmd = &cobra.Command{
	Use:   "games",
	Short: "List a player's owned games and local installs",
	Long: `Lists the player's owned games from the Steam Web API and marks which of
them are installed locally, along with the accounts logged into the local
installation. Without --steamid only the local library scan runs. With
--watch the command keeps running and reports installs and removals as
they happen.`,
	RunE: runGames,
}

func init() {
	rootCmd.AddCommand(gamesCmd)

	gamesCmd.Flags().StringVar(&gamesSteamID, "steamid", "",
		"64-bit Steam id of the player (omit for local-only listing)")
	gamesCmd.Flags().StringVar(&gamesSteamRoot, "steam-root", "",
		"Steam install directory (autodetected when omitted)")
	gamesCmd.Flags().StringVarP(&gamesOutput, "output", "o", "table",
		"Output format (table, json)")
	gamesCmd.Flags().BoolVarP(&gamesWatch, "watch", "w", false,
		"Keep running and report library installs and removals")
}

func runGames(cmd *cobra.Command, args []string) error {
	initLogging()

	discovery := locateLibrary()
	installed := installedGames(discovery)

	var listings []gameListing
	if gamesSteamID != "" {
		eng, _, err := newEngine()
		if err != nil {
			return err
		}
		owned, err := eng.GetOwnedGames(cmd.Context(), gamesSteamID)
		if err != nil {
			return err
		}
		for _, game := range owned {
			listings = append(listings, gameListing{
				AppID:           game.AppID,
				Name:            game.Name,
				PlaytimeMinutes: game.PlaytimeMinutes,
				Installed:       installed[game.AppID] != "",
			})
		}
		// Installed but not owned by this account, e.g. family sharing.
		seen := make(map[int]bool, len(owned))
		for _, game := range owned {
			seen[game.AppID] = true
		}
		for appID, name := range installed {
			if !seen[appID] {
				listings = append(listings, gameListing{AppID: appID, Name: name, Installed: true})
			}
		}
	} else {
		for appID, name := range installed {
			listings = append(listings, gameListing{AppID: appID, Name: name, Installed: true})
		}
	}

	sort.Slice(listings, func(i, j int) bool { return listings[i].AppID < listings[j].AppID })

	if gamesOutput == "json" {
		if err := formatter.NewJSONFormatter().FormatValue(listings); err != nil {
			return err
		}
	} else {
		printListings(listings)
		printLocalUsers(discovery)
	}

	if gamesWatch {
		return watchLibrary(discovery)
	}
	return nil
}

func printListings(listings []gameListing) {
	if len(listings) == 0 {
		fmt.Println("No games found")
		return
	}

	for _, listing := range listings {
		marker := " "
		if listing.Installed {
			marker = "*"
		}
		if listing.PlaytimeMinutes > 0 {
			fmt.Printf("%s %7d  %s (%dh played)\n", marker, listing.AppID, listing.Name, listing.PlaytimeMinutes/60)
		} else {
			fmt.Printf("%s %7d  %s\n", marker, listing.AppID, listing.Name)
		}
	}
	fmt.Println()
	fmt.Println("* installed locally")
}

func printLocalUsers(discovery *library.Discovery) {
	if discovery == nil {
		return
	}
	users, err := discovery.LocalUsers()
	if err != nil || len(users) == 0 {
		return
	}
	fmt.Println()
	fmt.Println("Local accounts:")
	for _, steamID := range users {
		fmt.Printf("  %s\n", steamID)
	}
}

// watchLibrary blocks on the manifest event stream until interrupted.
func watchLibrary(discovery *library.Discovery) error {
	if discovery == nil {
		return fmt.Errorf("no local steam installation found")
	}

	mw, err := discovery.WatchManifests()
	if err != nil {
		return err
	}
	defer mw.Close()

	fmt.Println()
	fmt.Println("Watching library folders. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	for {
		select {
		case event, ok := <-mw.Events():
			if !ok {
				return nil
			}
			fmt.Println(manifestEventLine(event))
		case <-sigCh:
			return nil
		}
	}
}

// manifestEventLine renders one library change for the watch log.
func manifestEventLine(event library.ManifestEvent) string {
	game, ok := library.ParseManifest(event.Path)
	if ok {
		return fmt.Sprintf("library change: %s (appid %d) [%s]", game.Name, game.AppID, event.Operation)
	}
	return fmt.Sprintf("library change: %s [%s]", event.Path, event.Operation)
}

// locateLibrary resolves the local installation from --steam-root or the
// platform defaults. A missing installation is not an error here.
func locateLibrary() *library.Discovery {
	if gamesSteamRoot != "" {
		discovery := library.At(expandPath(gamesSteamRoot))
		if discovery == nil {
			util.LogWarnf("No Steam installation at %s", gamesSteamRoot)
		}
		return discovery
	}
	discovery, err := library.Find()
	if err != nil {
		return nil
	}
	return discovery
}

// installedGames scans the local Steam library. Missing installations are
// not an error; the map is just empty.
func installedGames(discovery *library.Discovery) map[int]string {
	if discovery == nil {
		return nil
	}

	games, err := discovery.InstalledGames()
	if err != nil {
		util.LogWarnf("Library scan failed: %v", err)
		return nil
	}

	byID := make(map[int]string, len(games))
	for _, game := range games {
		byID[game.AppID] = game.Name
	}
	return byID
}
