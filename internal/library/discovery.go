// Package library discovers local Steam installations: the install root,
// logged-in accounts, library folders and installed games. Everything here
// reads Valve's VDF/ACF text files directly and degrades to empty results
// when Steam is not installed.
package library

import (
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"github.com/valcheur/go-steam-monitor/internal/core/model"
	"github.com/valcheur/go-steam-monitor/internal/util"
)

var (
	steamIDPattern      = regexp.MustCompile(`"(\d{17})"`)
	libraryV2Pattern    = regexp.MustCompile(`"\d+"\s*\{\s*"path"\s*"([^"]+)"`)
	libraryV1Pattern    = regexp.MustCompile(`"\d+"\s+"([^"]+)"`)
	manifestIDPattern   = regexp.MustCompile(`"appid"\s+"(\d+)"`)
	manifestNamePattern = regexp.MustCompile(`"name"\s+"([^"]+)"`)
)

// Discovery reads one Steam installation. Root is the install directory that
// holds config/loginusers.vdf.
type Discovery struct {
	root string
}

// Find checks the platform's usual install locations and returns a Discovery
// over the first directory that carries a loginusers.vdf. A nil Discovery
// with a nil error means no local Steam installation was found.
func Find() (*Discovery, error) {
	for _, candidate := range defaultRoots() {
		if hasLoginUsers(candidate) {
			util.LogDebugf("Found Steam installation at %s", candidate)
			return &Discovery{root: candidate}, nil
		}
	}
	return nil, nil
}

// At opens a Discovery over an explicit install root. Returns nil when the
// directory does not look like a Steam installation.
func At(root string) *Discovery {
	if !hasLoginUsers(root) {
		return nil
	}
	return &Discovery{root: root}
}

// Root returns the install directory.
func (d *Discovery) Root() string { return d.root }

func defaultRoots() []string {
	home, _ := os.UserHomeDir()
	switch runtime.GOOS {
	case "windows":
		return []string{
			`C:\Program Files (x86)\Steam`,
			`C:\Steam`,
			`D:\Steam`,
			`E:\Steam`,
		}
	case "darwin":
		return []string{filepath.Join(home, "Library", "Application Support", "Steam")}
	default:
		return []string{
			filepath.Join(home, ".steam", "steam"),
			filepath.Join(home, ".local", "share", "Steam"),
			filepath.Join(home, ".var", "app", "com.valvesoftware.Steam", ".local", "share", "Steam"),
		}
	}
}

func hasLoginUsers(root string) bool {
	if root == "" {
		return false
	}
	info, err := os.Stat(filepath.Join(root, "config", "loginusers.vdf"))
	return err == nil && !info.IsDir()
}

// LocalUsers lists the steam ids found in config/loginusers.vdf, deduplicated
// and in file order.
func (d *Discovery) LocalUsers() ([]string, error) {
	content, err := os.ReadFile(filepath.Join(d.root, "config", "loginusers.vdf"))
	if err != nil {
		return nil, err
	}

	var ids []string
	seen := make(map[string]bool)
	for _, match := range steamIDPattern.FindAllStringSubmatch(string(content), -1) {
		if !seen[match[1]] {
			seen[match[1]] = true
			ids = append(ids, match[1])
		}
	}
	return ids, nil
}

// LibraryFolders lists every library path from steamapps/libraryfolders.vdf.
// The newer format nests a "path" key per folder; the older format maps bare
// indices to paths. The install root itself is always included.
func (d *Discovery) LibraryFolders() ([]string, error) {
	paths := []string{d.root}

	content, err := os.ReadFile(filepath.Join(d.root, "steamapps", "libraryfolders.vdf"))
	if os.IsNotExist(err) {
		return paths, nil
	}
	if err != nil {
		return nil, err
	}

	text := string(content)
	matches := libraryV2Pattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		matches = libraryV1Pattern.FindAllStringSubmatch(text, -1)
	}

	seen := map[string]bool{filepath.Clean(d.root): true}
	for _, match := range matches {
		p := filepath.Clean(strings.ReplaceAll(match[1], `\\`, `\`))
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}
	return paths, nil
}

// InstalledGames scans every library folder's steamapps directory for
// appmanifest_*.acf files. Manifests missing an appid or name are skipped.
// Results are sorted by appid.
func (d *Discovery) InstalledGames() ([]model.InstalledGame, error) {
	folders, err := d.LibraryFolders()
	if err != nil {
		return nil, err
	}

	var games []model.InstalledGame
	seen := make(map[int]bool)
	for _, folder := range folders {
		steamapps := filepath.Join(folder, "steamapps")
		entries, err := os.ReadDir(steamapps)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			name := entry.Name()
			if entry.IsDir() || !strings.HasPrefix(name, "appmanifest_") || !strings.HasSuffix(name, ".acf") {
				continue
			}
			game, ok := ParseManifest(filepath.Join(steamapps, name))
			if !ok || seen[game.AppID] {
				continue
			}
			seen[game.AppID] = true
			games = append(games, game)
		}
	}

	sort.Slice(games, func(i, j int) bool { return games[i].AppID < games[j].AppID })
	return games, nil
}

// ParseManifest extracts the appid and name from one appmanifest file.
func ParseManifest(path string) (model.InstalledGame, bool) {
	content, err := os.ReadFile(path)
	if err != nil {
		util.LogDebugf("Skipping unreadable manifest %s: %v", path, err)
		return model.InstalledGame{}, false
	}

	text := string(content)
	idMatch := manifestIDPattern.FindStringSubmatch(text)
	nameMatch := manifestNamePattern.FindStringSubmatch(text)
	if idMatch == nil || nameMatch == nil {
		return model.InstalledGame{}, false
	}

	appID, err := strconv.Atoi(idMatch[1])
	if err != nil {
		return model.InstalledGame{}, false
	}
	return model.InstalledGame{AppID: appID, Name: nameMatch[1]}, true
}
