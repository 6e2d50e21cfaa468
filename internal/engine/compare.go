package engine

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/valcheur/go-steam-monitor/internal/core/model"
	"github.com/valcheur/go-steam-monitor/internal/core/timeline"
	"github.com/valcheur/go-steam-monitor/internal/util"
)

// Side-specific comparison failures. The boundary layer reports these as a
// plain error message instead of partial data, so callers always learn which
// player's data was missing.
var (
	ErrPlayer1NoData = errors.New("could not fetch achievements for player 1 (private profile or no data)")
	ErrPlayer2NoData = errors.New("could not fetch achievements for player 2 (private profile or no data)")
)

// comparisonInputs is everything the diff needs, gathered in one fan-out.
type comparisonInputs struct {
	records1  []model.AchievementRecord
	records2  []model.AchievementRecord
	schema    map[string]model.AchievementDefinition
	rarity    map[string]float64
	playtime1 int
	playtime2 int
	err1      error
	err2      error
}

// CompareAchievements produces the head-to-head diff of two players for one
// game. Both achievement fetches, the schema, the rarity table and both
// playtimes are requested concurrently and joined before diffing. A missing
// side aborts the comparison with a side-specific error; schema and rarity
// degrade to nil.
func (e *Engine) CompareAchievements(ctx context.Context, steamID1, steamID2 string, appID int) (*model.ComparisonResult, error) {
	if !e.provider.Configured() {
		return nil, model.ErrNotConfigured
	}

	inputs := e.fetchComparisonInputs(ctx, steamID1, steamID2, appID)

	if inputs.err1 != nil || inputs.records1 == nil {
		util.LogWarnf("Comparison aborted, player 1 (%s) data unavailable: %v", steamID1, inputs.err1)
		return nil, ErrPlayer1NoData
	}
	if inputs.err2 != nil || inputs.records2 == nil {
		util.LogWarnf("Comparison aborted, player 2 (%s) data unavailable: %v", steamID2, inputs.err2)
		return nil, ErrPlayer2NoData
	}

	return e.diff(inputs), nil
}

func (e *Engine) fetchComparisonInputs(ctx context.Context, steamID1, steamID2 string, appID int) comparisonInputs {
	var inputs comparisonInputs
	var wg sync.WaitGroup

	wg.Add(4)
	go func() {
		defer wg.Done()
		inputs.records1, inputs.err1 = e.provider.FetchPlayerAchievements(ctx, steamID1, appID)
	}()
	go func() {
		defer wg.Done()
		inputs.records2, inputs.err2 = e.provider.FetchPlayerAchievements(ctx, steamID2, appID)
	}()
	go func() {
		defer wg.Done()
		schema, err := e.provider.FetchGameSchema(ctx, appID)
		if err != nil {
			util.LogWarnf("Game schema unavailable for appid=%d: %v", appID, err)
			return
		}
		inputs.schema = schema
	}()
	go func() {
		defer wg.Done()
		rarity, err := e.provider.FetchGlobalRarity(ctx, appID)
		if err != nil {
			util.LogDebugf("Global rarity unavailable for appid=%d: %v", appID, err)
			return
		}
		inputs.rarity = rarity
	}()
	wg.Wait()

	// Playtimes refine the low-engagement rule; fetched after the join so a
	// failed comparison never pays for them.
	if inputs.err1 == nil && inputs.records1 != nil && inputs.err2 == nil && inputs.records2 != nil {
		var pwg sync.WaitGroup
		pwg.Add(2)
		go func() {
			defer pwg.Done()
			inputs.playtime1 = e.playtimeFor(ctx, steamID1, appID)
		}()
		go func() {
			defer pwg.Done()
			inputs.playtime2 = e.playtimeFor(ctx, steamID2, appID)
		}()
		pwg.Wait()
	}

	return inputs
}

func (e *Engine) playtimeFor(ctx context.Context, steamID string, appID int) int {
	games, err := e.provider.FetchOwnedGames(ctx, steamID)
	if err != nil {
		util.LogDebugf("Owned games unavailable for %s: %v", steamID, err)
		return 0
	}
	for _, g := range games {
		if g.AppID == appID {
			return g.PlaytimeMinutes
		}
	}
	return 0
}

// diff merges both record sets over the union of their keys and classifies
// every achievement. Output ordering is deterministic (apiname ascending).
func (e *Engine) diff(inputs comparisonInputs) *model.ComparisonResult {
	tl1 := timeline.Build(inputs.records1, inputs.playtime1)
	tl2 := timeline.Build(inputs.records2, inputs.playtime2)

	map1 := recordsByAPIName(inputs.records1)
	map2 := recordsByAPIName(inputs.records2)

	keys := make([]string, 0, len(map1)+len(map2))
	seen := make(map[string]bool, len(map1)+len(map2))
	for _, r := range inputs.records1 {
		if !seen[r.APIName] {
			seen[r.APIName] = true
			keys = append(keys, r.APIName)
		}
	}
	for _, r := range inputs.records2 {
		if !seen[r.APIName] {
			seen[r.APIName] = true
			keys = append(keys, r.APIName)
		}
	}
	sort.Strings(keys)

	result := &model.ComparisonResult{
		Achievements: make([]model.AchievementDiff, 0, len(keys)),
	}

	for _, key := range keys {
		record1, ok1 := map1[key]
		record2, ok2 := map2[key]

		diff := model.AchievementDiff{APIName: key}
		diff.Name, diff.Description = e.metadataFor(key, inputs.schema, record1, record2, ok1, ok2)
		if inputs.rarity != nil {
			if pct, ok := inputs.rarity[key]; ok {
				diff.RarityPercent = &pct
			}
		}

		diff.Player1 = e.diffSide(record1, ok1, &tl1, diff.RarityPercent)
		diff.Player2 = e.diffSide(record2, ok2, &tl2, diff.RarityPercent)

		switch {
		case diff.Player1.Achieved && diff.Player2.Achieved:
			diff.Status = model.DiffBoth
			result.Stats.BothUnlocked++
			if diff.Player1.UnlockTime > 0 && diff.Player2.UnlockTime > 0 {
				// Exact tie goes to player 1.
				if diff.Player1.UnlockTime <= diff.Player2.UnlockTime {
					diff.FirstUnlock = "player1"
				} else {
					diff.FirstUnlock = "player2"
				}
			}
		case diff.Player1.Achieved:
			diff.Status = model.DiffPlayer1Only
			result.Stats.Player1Only++
		case diff.Player2.Achieved:
			diff.Status = model.DiffPlayer2Only
			result.Stats.Player2Only++
		default:
			diff.Status = model.DiffNeither
			result.Stats.NeitherUnlocked++
		}

		result.Achievements = append(result.Achievements, diff)
	}

	result.Player1 = model.ComparisonSummary{
		TotalAchievements: len(inputs.records1),
		UnlockedCount:     tl1.UnlockedCount,
		Percentage:        model.Percentage(tl1.UnlockedCount, len(inputs.records1)),
	}
	result.Player2 = model.ComparisonSummary{
		TotalAchievements: len(inputs.records2),
		UnlockedCount:     tl2.UnlockedCount,
		Percentage:        model.Percentage(tl2.UnlockedCount, len(inputs.records2)),
	}

	return result
}

func (e *Engine) diffSide(record model.AchievementRecord, present bool, tl *model.PlayerTimeline, rarityPercent *float64) model.DiffSide {
	if !present || !record.Achieved {
		return model.DiffSide{}
	}
	side := model.DiffSide{Achieved: true, UnlockTime: record.UnlockTime}
	if record.UnlockTime > 0 {
		legit := e.scorer.Score(record, tl, rarityPercent)
		side.Legitimacy = &legit
	}
	return side
}

// metadataFor prefers the schema's display name and description, then falls
// back to whichever side carried localized metadata in its payload.
func (e *Engine) metadataFor(key string, schema map[string]model.AchievementDefinition,
	record1, record2 model.AchievementRecord, ok1, ok2 bool) (string, string) {
	if def, ok := schema[key]; ok {
		return def.DisplayName, def.Description
	}
	if ok1 && record1.Name != "" {
		return record1.Name, record1.Description
	}
	if ok2 && record2.Name != "" {
		return record2.Name, record2.Description
	}
	return key, ""
}

func recordsByAPIName(records []model.AchievementRecord) map[string]model.AchievementRecord {
	m := make(map[string]model.AchievementRecord, len(records))
	for _, r := range records {
		m[r.APIName] = r
	}
	return m
}
