package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valcheur/go-steam-monitor/internal/core/legitimacy"
	"github.com/valcheur/go-steam-monitor/internal/core/model"
)

// fakeProvider implements Provider with per-method function hooks. Unset
// hooks return no data.
type fakeProvider struct {
	configured   bool
	achievements func(ctx context.Context, steamID string, appID int) ([]model.AchievementRecord, error)
	schema       func(ctx context.Context, appID int) (map[string]model.AchievementDefinition, error)
	rarity       func(ctx context.Context, appID int) (map[string]float64, error)
	ownedGames   func(ctx context.Context, steamID string) ([]model.OwnedGame, error)
	summary      func(ctx context.Context, steamID string) (*model.PlayerSummary, error)
}

func (f *fakeProvider) Configured() bool { return f.configured }

func (f *fakeProvider) FetchPlayerAchievements(ctx context.Context, steamID string, appID int) ([]model.AchievementRecord, error) {
	if f.achievements == nil {
		return nil, nil
	}
	return f.achievements(ctx, steamID, appID)
}

func (f *fakeProvider) FetchGameSchema(ctx context.Context, appID int) (map[string]model.AchievementDefinition, error) {
	if f.schema == nil {
		return nil, nil
	}
	return f.schema(ctx, appID)
}

func (f *fakeProvider) FetchGlobalRarity(ctx context.Context, appID int) (map[string]float64, error) {
	if f.rarity == nil {
		return nil, nil
	}
	return f.rarity(ctx, appID)
}

func (f *fakeProvider) FetchOwnedGames(ctx context.Context, steamID string) ([]model.OwnedGame, error) {
	if f.ownedGames == nil {
		return nil, nil
	}
	return f.ownedGames(ctx, steamID)
}

func (f *fakeProvider) FetchPlayerSummary(ctx context.Context, steamID string) (*model.PlayerSummary, error) {
	if f.summary == nil {
		return nil, nil
	}
	return f.summary(ctx, steamID)
}

func newTestEngine(provider Provider) *Engine {
	return New(provider, legitimacy.DefaultWeights())
}

func record(apiname string, achieved bool, unlockTime int64) model.AchievementRecord {
	return model.AchievementRecord{
		APIName:    apiname,
		Name:       apiname,
		Achieved:   achieved,
		UnlockTime: unlockTime,
	}
}

func TestGetPlayerTimelineNotConfigured(t *testing.T) {
	engine := newTestEngine(&fakeProvider{configured: false})

	tl, err := engine.GetPlayerTimeline(context.Background(), "76561198000000001", 440)
	assert.ErrorIs(t, err, model.ErrNotConfigured)
	assert.Nil(t, tl)
}

func TestGetPlayerTimelineNoData(t *testing.T) {
	engine := newTestEngine(&fakeProvider{configured: true})

	tl, err := engine.GetPlayerTimeline(context.Background(), "76561198000000001", 440)
	require.NoError(t, err)
	assert.Nil(t, tl, "no data should be nil timeline, not an error")
}

func TestGetPlayerTimeline(t *testing.T) {
	provider := &fakeProvider{
		configured: true,
		achievements: func(ctx context.Context, steamID string, appID int) ([]model.AchievementRecord, error) {
			return []model.AchievementRecord{
				record("ACH_A", true, 1700000300),
				record("ACH_B", true, 1700000100),
				record("ACH_C", false, 0),
			}, nil
		},
		ownedGames: func(ctx context.Context, steamID string) ([]model.OwnedGame, error) {
			return []model.OwnedGame{{AppID: 440, Name: "Team Fortress 2", PlaytimeMinutes: 1200}}, nil
		},
	}
	engine := newTestEngine(provider)

	tl, err := engine.GetPlayerTimeline(context.Background(), "76561198000000001", 440)
	require.NoError(t, err)
	require.NotNil(t, tl)
	assert.Equal(t, []int64{1700000100, 1700000300}, tl.SortedUnlockTimes)
	assert.Equal(t, 3, tl.TotalAchievementCount)
	assert.Equal(t, 2, tl.UnlockedCount)
	assert.Equal(t, 1200, tl.TotalPlaytimeMinutes)
}

func TestGetPlayerTimelinePlaytimeDegrades(t *testing.T) {
	provider := &fakeProvider{
		configured: true,
		achievements: func(ctx context.Context, steamID string, appID int) ([]model.AchievementRecord, error) {
			return []model.AchievementRecord{record("ACH_A", true, 1700000100)}, nil
		},
		ownedGames: func(ctx context.Context, steamID string) ([]model.OwnedGame, error) {
			return nil, model.ErrProviderUnavailable
		},
	}
	engine := newTestEngine(provider)

	tl, err := engine.GetPlayerTimeline(context.Background(), "76561198000000001", 440)
	require.NoError(t, err, "playtime lookup failure must not fail the timeline")
	require.NotNil(t, tl)
	assert.Equal(t, 0, tl.TotalPlaytimeMinutes)
}

func TestGetPlayerTimelineFetchError(t *testing.T) {
	provider := &fakeProvider{
		configured: true,
		achievements: func(ctx context.Context, steamID string, appID int) ([]model.AchievementRecord, error) {
			return nil, model.ErrProviderUnavailable
		},
	}
	engine := newTestEngine(provider)

	tl, err := engine.GetPlayerTimeline(context.Background(), "76561198000000001", 440)
	assert.ErrorIs(t, err, model.ErrProviderUnavailable)
	assert.Nil(t, tl)
}

func TestGetGameProgress(t *testing.T) {
	provider := &fakeProvider{
		configured: true,
		achievements: func(ctx context.Context, steamID string, appID int) ([]model.AchievementRecord, error) {
			return []model.AchievementRecord{
				record("ACH_A", true, 1700000100),
				record("ACH_B", true, 1700003700),
				record("ACH_C", false, 0),
				record("ACH_D", false, 0),
			}, nil
		},
		ownedGames: func(ctx context.Context, steamID string) ([]model.OwnedGame, error) {
			return []model.OwnedGame{{AppID: 440, PlaytimeMinutes: 3000}}, nil
		},
		rarity: func(ctx context.Context, appID int) (map[string]float64, error) {
			return map[string]float64{"ACH_A": 42.5, "ACH_B": 12.0}, nil
		},
	}
	engine := newTestEngine(provider)

	progress, err := engine.GetGameProgress(context.Background(), "76561198000000001", 440)
	require.NoError(t, err)
	require.NotNil(t, progress)
	assert.Equal(t, 4, progress.Total)
	assert.Equal(t, 2, progress.Unlocked)
	assert.Equal(t, 50, progress.Percentage)

	for _, rec := range progress.Achievements {
		if rec.Achieved && rec.UnlockTime > 0 {
			require.NotNil(t, rec.Legitimacy, "unlocked achievement %s must be scored", rec.APIName)
			assert.Equal(t, model.StatusLegitimate, rec.Legitimacy.Status)
		} else {
			assert.Nil(t, rec.Legitimacy)
		}
	}
}

func TestGetGameProgressRarityDegrades(t *testing.T) {
	provider := &fakeProvider{
		configured: true,
		achievements: func(ctx context.Context, steamID string, appID int) ([]model.AchievementRecord, error) {
			return []model.AchievementRecord{record("ACH_A", true, 1700000100)}, nil
		},
		rarity: func(ctx context.Context, appID int) (map[string]float64, error) {
			return nil, errors.New("boom")
		},
	}
	engine := newTestEngine(provider)

	progress, err := engine.GetGameProgress(context.Background(), "76561198000000001", 440)
	require.NoError(t, err, "rarity failure must not fail the progress fetch")
	require.NotNil(t, progress)
	require.NotNil(t, progress.Achievements[0].Legitimacy)
}

func TestGetGameProgressNoData(t *testing.T) {
	engine := newTestEngine(&fakeProvider{configured: true})

	progress, err := engine.GetGameProgress(context.Background(), "76561198000000001", 440)
	require.NoError(t, err)
	assert.Nil(t, progress)
}
