package engine

import (
	"context"

	"github.com/valcheur/go-steam-monitor/internal/core/model"
)

// Provider is the remote achievement source the engine works against. All
// fetches follow the same convention: a nil result with a nil error is the
// valid "no data" outcome, while model.ErrNotConfigured and
// model.ErrProviderUnavailable surface as errors.
type Provider interface {
	Configured() bool
	FetchPlayerAchievements(ctx context.Context, steamID string, appID int) ([]model.AchievementRecord, error)
	FetchGameSchema(ctx context.Context, appID int) (map[string]model.AchievementDefinition, error)
	FetchGlobalRarity(ctx context.Context, appID int) (map[string]float64, error)
	FetchOwnedGames(ctx context.Context, steamID string) ([]model.OwnedGame, error)
	FetchPlayerSummary(ctx context.Context, steamID string) (*model.PlayerSummary, error)
}

// AchievementSink receives the full current achievement list on every
// successful watcher tick. It is never called with an empty list.
type AchievementSink func(records []model.AchievementRecord)
