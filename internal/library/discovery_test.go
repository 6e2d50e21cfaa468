package library

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valcheur/go-steam-monitor/internal/core/model"
)

const loginUsersFixture = `"users"
{
	"76561198000000001"
	{
		"AccountName"		"alice"
		"PersonaName"		"Alice"
		"MostRecent"		"1"
	}
	"76561198000000002"
	{
		"AccountName"		"bob"
		"PersonaName"		"Bob"
		"MostRecent"		"0"
	}
}
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// newInstall lays out a minimal Steam root in a temp dir.
func newInstall(t *testing.T) (string, *Discovery) {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "config", "loginusers.vdf"), loginUsersFixture)
	d := At(root)
	require.NotNil(t, d)
	return root, d
}

func manifest(appID int, name string) string {
	return `"AppState"
{
	"appid"		"` + strconv.Itoa(appID) + `"
	"name"		"` + name + `"
	"StateFlags"		"4"
}
`
}

func TestAtRejectsNonInstall(t *testing.T) {
	assert.Nil(t, At(t.TempDir()))
	assert.Nil(t, At(""))
}

func TestLocalUsers(t *testing.T) {
	_, d := newInstall(t)

	users, err := d.LocalUsers()
	require.NoError(t, err)
	assert.Equal(t, []string{"76561198000000001", "76561198000000002"}, users)
}

func TestLocalUsersDeduplicates(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "config", "loginusers.vdf"),
		`"users" { "76561198000000001" {} "76561198000000001" {} }`)
	d := At(root)
	require.NotNil(t, d)

	users, err := d.LocalUsers()
	require.NoError(t, err)
	assert.Equal(t, []string{"76561198000000001"}, users)
}

func TestLibraryFoldersMissingFile(t *testing.T) {
	root, d := newInstall(t)

	folders, err := d.LibraryFolders()
	require.NoError(t, err)
	assert.Equal(t, []string{root}, folders, "install root always counts as a library")
}

func TestLibraryFoldersNewFormat(t *testing.T) {
	root, d := newInstall(t)
	extra := t.TempDir()
	writeFile(t, filepath.Join(root, "steamapps", "libraryfolders.vdf"),
		`"libraryfolders"
{
	"0"
	{
		"path"		"`+root+`"
	}
	"1"
	{
		"path"		"`+extra+`"
	}
}
`)

	folders, err := d.LibraryFolders()
	require.NoError(t, err)
	assert.Equal(t, []string{root, extra}, folders)
}

func TestLibraryFoldersOldFormat(t *testing.T) {
	root, d := newInstall(t)
	extra := t.TempDir()
	writeFile(t, filepath.Join(root, "steamapps", "libraryfolders.vdf"),
		`"LibraryFolders"
{
	"1"		"`+extra+`"
}
`)

	folders, err := d.LibraryFolders()
	require.NoError(t, err)
	assert.Equal(t, []string{root, extra}, folders)
}

func TestInstalledGames(t *testing.T) {
	root, d := newInstall(t)
	extra := t.TempDir()
	writeFile(t, filepath.Join(root, "steamapps", "libraryfolders.vdf"),
		`"libraryfolders" { "0" { "path" "`+root+`" } "1" { "path" "`+extra+`" } }`)

	writeFile(t, filepath.Join(root, "steamapps", "appmanifest_440.acf"), manifest(440, "Team Fortress 2"))
	writeFile(t, filepath.Join(extra, "steamapps", "appmanifest_220.acf"), manifest(220, "Half-Life 2"))
	writeFile(t, filepath.Join(extra, "steamapps", "appmanifest_999.acf"), `"AppState" { "StateFlags" "4" }`)
	writeFile(t, filepath.Join(extra, "steamapps", "notes.txt"), "not a manifest")

	games, err := d.InstalledGames()
	require.NoError(t, err)
	assert.Equal(t, []model.InstalledGame{
		{AppID: 220, Name: "Half-Life 2"},
		{AppID: 440, Name: "Team Fortress 2"},
	}, games, "sorted by appid, incomplete manifests skipped")
}

func TestInstalledGamesNoLibraries(t *testing.T) {
	_, d := newInstall(t)

	games, err := d.InstalledGames()
	require.NoError(t, err)
	assert.Empty(t, games)
}

func TestWatchManifests(t *testing.T) {
	root, d := newInstall(t)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "steamapps"), 0o755))

	mw, err := d.WatchManifests()
	require.NoError(t, err)
	defer mw.Close()

	writeFile(t, filepath.Join(root, "steamapps", "appmanifest_440.acf"), manifest(440, "Team Fortress 2"))
	writeFile(t, filepath.Join(root, "steamapps", "other.txt"), "ignored")

	select {
	case event := <-mw.Events():
		assert.Equal(t, "appmanifest_440.acf", filepath.Base(event.Path))
	case <-time.After(2 * time.Second):
		t.Fatal("expected a manifest event")
	}
}

func TestWatchManifestsCloseEndsEventStream(t *testing.T) {
	root, d := newInstall(t)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "steamapps"), 0o755))

	mw, err := d.WatchManifests()
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-mw.Events():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("expected the event channel to close after Close")
		}
	}
}
