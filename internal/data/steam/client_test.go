package steam

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valcheur/go-steam-monitor/internal/core/model"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient("test-key", WithBaseURL(server.URL))
}

func TestNewClient(t *testing.T) {
	client := NewClient("key")

	assert.True(t, client.Configured())
	assert.Equal(t, defaultBaseURL, client.baseURL)
	assert.Equal(t, defaultLanguage, client.language)
	assert.Equal(t, requestTimeout, client.httpClient.Timeout)

	assert.False(t, NewClient("").Configured())
}

func TestFetchPlayerAchievements(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		status      int
		expectNil   bool
		expectError error
		expectCount int
	}{
		{
			name: "valid response",
			body: `{"playerstats":{"steamID":"765","gameName":"TF2","success":true,
				"achievements":[
					{"apiname":"A","achieved":1,"unlocktime":1700000000,"name":"First","description":"d"},
					{"apiname":"B","achieved":0,"unlocktime":0}
				]}}`,
			status:      http.StatusOK,
			expectCount: 2,
		},
		{
			name:      "provider error field means no data",
			body:      `{"playerstats":{"error":"Profile is not public","success":false}}`,
			status:    http.StatusOK,
			expectNil: true,
		},
		{
			name:      "missing achievements array means no data",
			body:      `{"playerstats":{"success":true}}`,
			status:    http.StatusOK,
			expectNil: true,
		},
		{
			name:        "http failure",
			body:        `{}`,
			status:      http.StatusInternalServerError,
			expectError: model.ErrProviderUnavailable,
		},
		{
			name:        "malformed payload",
			body:        `{"playerstats":`,
			status:      http.StatusOK,
			expectError: model.ErrMalformedResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/ISteamUserStats/GetPlayerAchievements/v1/", r.URL.Path)
				assert.Equal(t, "test-key", r.URL.Query().Get("key"))
				assert.Equal(t, "765", r.URL.Query().Get("steamid"))
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			records, err := client.FetchPlayerAchievements(context.Background(), "765", 440)

			if tt.expectError != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.expectError)
				return
			}
			require.NoError(t, err)
			if tt.expectNil {
				assert.Nil(t, records)
				return
			}
			require.Len(t, records, tt.expectCount)
			assert.Equal(t, "A", records[0].APIName)
			assert.True(t, records[0].Achieved)
			assert.Equal(t, int64(1700000000), records[0].UnlockTime)
			assert.False(t, records[1].Achieved)
			assert.Zero(t, records[1].UnlockTime)
		})
	}
}

func TestFetchPlayerAchievementsNotConfigured(t *testing.T) {
	client := NewClient("")

	_, err := client.FetchPlayerAchievements(context.Background(), "765", 440)
	assert.ErrorIs(t, err, model.ErrNotConfigured)
}

func TestFetchPlayerAchievementsMissingArgs(t *testing.T) {
	client := NewClient("key")

	records, err := client.FetchPlayerAchievements(context.Background(), "", 440)
	assert.NoError(t, err)
	assert.Nil(t, records)

	records, err = client.FetchPlayerAchievements(context.Background(), "765", 0)
	assert.NoError(t, err)
	assert.Nil(t, records)
}

func TestFetchGameSchema(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ISteamUserStats/GetSchemaForGame/v2/", r.URL.Path)
		assert.Equal(t, "english", r.URL.Query().Get("l"))
		w.Write([]byte(`{"game":{"gameName":"TF2","availableGameStats":{"achievements":[
			{"name":"A","displayName":"First Blood","description":"Get a kill"},
			{"name":"B","displayName":"Second","description":""}
		]}}}`))
	})

	schema, err := client.FetchGameSchema(context.Background(), 440)

	require.NoError(t, err)
	require.Len(t, schema, 2)
	assert.Equal(t, "First Blood", schema["A"].DisplayName)
	assert.Equal(t, "Get a kill", schema["A"].Description)
}

func TestFetchGameSchemaNoAchievements(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"game":{"gameName":"NoAchGame"}}`))
	})

	schema, err := client.FetchGameSchema(context.Background(), 10)
	assert.NoError(t, err)
	assert.Nil(t, schema)
}

func TestFetchGlobalRarity(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ISteamUserStats/GetGlobalAchievementPercentagesForApp/v2/", r.URL.Path)
		w.Write([]byte(`{"achievementpercentages":{"achievements":[
			{"name":"A","percent":64.9},
			{"name":"B","percent":0.3}
		]}}`))
	})

	rarity, err := client.FetchGlobalRarity(context.Background(), 440)

	require.NoError(t, err)
	assert.InDelta(t, 64.9, rarity["A"], 0.001)
	assert.InDelta(t, 0.3, rarity["B"], 0.001)
}

func TestFetchOwnedGames(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/IPlayerService/GetOwnedGames/v1/", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("include_appinfo"))
		w.Write([]byte(`{"response":{"game_count":2,"games":[
			{"appid":440,"name":"Team Fortress 2","playtime_forever":1200},
			{"appid":570,"name":"Dota 2","playtime_forever":0}
		]}}`))
	})

	games, err := client.FetchOwnedGames(context.Background(), "765")

	require.NoError(t, err)
	require.Len(t, games, 2)
	assert.Equal(t, 440, games[0].AppID)
	assert.Equal(t, 1200, games[0].PlaytimeMinutes)
}

func TestFetchOwnedGamesPrivate(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response":{}}`))
	})

	games, err := client.FetchOwnedGames(context.Background(), "765")
	assert.NoError(t, err)
	assert.Nil(t, games)
}

func TestFetchPlayerSummary(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ISteamUser/GetPlayerSummaries/v2/", r.URL.Path)
		w.Write([]byte(`{"response":{"players":[
			{"steamid":"765","personaname":"gabe","profileurl":"https://example.com/id/gabe","personastate":1}
		]}}`))
	})

	summary, err := client.FetchPlayerSummary(context.Background(), "765")

	require.NoError(t, err)
	require.NotNil(t, summary)
	assert.Equal(t, "gabe", summary.PersonaName)
	assert.Equal(t, 1, summary.PersonaState)
}

func TestFetchPlayerSummaryUnknown(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response":{"players":[]}}`))
	})

	summary, err := client.FetchPlayerSummary(context.Background(), "0")
	assert.NoError(t, err)
	assert.Nil(t, summary)
}

func TestRequestTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient("key",
		WithBaseURL(server.URL),
		WithHTTPClient(&http.Client{Timeout: 50 * time.Millisecond}))

	_, err := client.FetchGameSchema(context.Background(), 440)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrProviderUnavailable)
}

func TestContextCancellation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.FetchGlobalRarity(ctx, 440)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrProviderUnavailable))
}
