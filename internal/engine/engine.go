package engine

import (
	"context"
	"sync"
	"time"

	"github.com/valcheur/go-steam-monitor/internal/core/legitimacy"
	"github.com/valcheur/go-steam-monitor/internal/core/model"
	"github.com/valcheur/go-steam-monitor/internal/core/timeline"
	"github.com/valcheur/go-steam-monitor/internal/util"
)

const watchInterval = 60 * time.Second

// Engine is the achievement inspection facade: timeline building, legitimacy
// scoring, cross-player comparison and watch loops. Every result is built
// fresh from provider data on each call; the only state an Engine owns is
// its watcher registry.
type Engine struct {
	provider Provider
	scorer   *legitimacy.Scorer
	watchers *Registry
	interval time.Duration
}

// New creates an Engine over the given provider with the given rule weights.
func New(provider Provider, weights legitimacy.Weights) *Engine {
	return &Engine{
		provider: provider,
		scorer:   legitimacy.NewScorer(weights),
		watchers: NewRegistry(),
		interval: watchInterval,
	}
}

// GameProgress is one player's achievement state for one game, with every
// unlocked achievement scored.
type GameProgress struct {
	Total        int                       `json:"total"`
	Unlocked     int                       `json:"unlocked"`
	Percentage   int                       `json:"percentage"`
	Achievements []model.AchievementRecord `json:"achievements"`
	Timeline     model.PlayerTimeline      `json:"timeline"`
}

// GetPlayerTimeline fetches one player's achievements and playtime and
// derives the unlock timeline. A nil timeline with a nil error means the
// provider had no data for the pair.
func (e *Engine) GetPlayerTimeline(ctx context.Context, steamID string, appID int) (*model.PlayerTimeline, error) {
	records, playtime, err := e.fetchRecordsWithPlaytime(ctx, steamID, appID)
	if err != nil {
		return nil, err
	}
	if records == nil {
		return nil, nil
	}
	tl := timeline.Build(records, playtime)
	return &tl, nil
}

// ScoreAchievement grades one achievement against a timeline. The rarity
// pointer may be nil when the global unlock rate is unknown.
func (e *Engine) ScoreAchievement(record model.AchievementRecord, tl *model.PlayerTimeline, rarityPercent *float64) model.LegitimacyResult {
	return e.scorer.Score(record, tl, rarityPercent)
}

// GetGameProgress fetches, scores and summarizes one player's achievements
// for a game. A nil result with a nil error means no data.
func (e *Engine) GetGameProgress(ctx context.Context, steamID string, appID int) (*GameProgress, error) {
	records, playtime, err := e.fetchRecordsWithPlaytime(ctx, steamID, appID)
	if err != nil {
		return nil, err
	}
	if records == nil {
		return nil, nil
	}

	rarity, err := e.provider.FetchGlobalRarity(ctx, appID)
	if err != nil {
		// Rarity only refines scoring; a missing table is not fatal.
		util.LogWarnf("Global rarity unavailable for appid=%d: %v", appID, err)
		rarity = nil
	}

	tl := timeline.Build(records, playtime)
	scored := e.scorer.ScoreAll(records, &tl, rarity)

	progress := &GameProgress{
		Total:        len(scored),
		Unlocked:     tl.UnlockedCount,
		Percentage:   model.Percentage(tl.UnlockedCount, len(scored)),
		Achievements: scored,
		Timeline:     tl,
	}
	return progress, nil
}

// GetPlayerSummary proxies the provider's profile lookup.
func (e *Engine) GetPlayerSummary(ctx context.Context, steamID string) (*model.PlayerSummary, error) {
	return e.provider.FetchPlayerSummary(ctx, steamID)
}

// GetOwnedGames proxies the provider's owned-games lookup.
func (e *Engine) GetOwnedGames(ctx context.Context, steamID string) ([]model.OwnedGame, error) {
	return e.provider.FetchOwnedGames(ctx, steamID)
}

// fetchRecordsWithPlaytime pulls the achievement list and the owned-games
// playtime for one (player, game) pair concurrently. Playtime degrades to
// zero when the games list is private or unavailable.
func (e *Engine) fetchRecordsWithPlaytime(ctx context.Context, steamID string, appID int) ([]model.AchievementRecord, int, error) {
	if !e.provider.Configured() {
		return nil, 0, model.ErrNotConfigured
	}

	var (
		wg       sync.WaitGroup
		records  []model.AchievementRecord
		achErr   error
		playtime int
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		records, achErr = e.provider.FetchPlayerAchievements(ctx, steamID, appID)
	}()
	go func() {
		defer wg.Done()
		games, err := e.provider.FetchOwnedGames(ctx, steamID)
		if err != nil {
			util.LogDebugf("Owned games unavailable for %s: %v", steamID, err)
			return
		}
		for _, g := range games {
			if g.AppID == appID {
				playtime = g.PlaytimeMinutes
				return
			}
		}
	}()
	wg.Wait()

	if achErr != nil {
		return nil, 0, achErr
	}
	return records, playtime, nil
}
