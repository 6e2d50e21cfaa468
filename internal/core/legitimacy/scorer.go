package legitimacy

import (
	"fmt"

	"github.com/valcheur/go-steam-monitor/internal/core/model"
	"github.com/valcheur/go-steam-monitor/internal/core/timeline"
)

// Scorer grades a single unlocked achievement against its owner's timeline.
// Rules run in a fixed order and subtract independently; within one rule only
// the highest matching tier applies. The result is clamped to [0,100].
type Scorer struct {
	weights Weights
}

// NewScorer creates a scorer with the given weights.
func NewScorer(weights Weights) *Scorer {
	return &Scorer{weights: weights}
}

// NewDefaultScorer creates a scorer with the stock weights.
func NewDefaultScorer() *Scorer {
	return &Scorer{weights: DefaultWeights()}
}

// Score grades one achievement. rarityPercent is the global unlock rate
// (0-100) and may be nil when unknown. A record without an unlock time, or a
// nil timeline, is returned unscored: a perfect result with no issues.
func (s *Scorer) Score(record model.AchievementRecord, tl *model.PlayerTimeline, rarityPercent *float64) model.LegitimacyResult {
	if tl == nil || !record.Achieved || record.UnlockTime <= 0 {
		return model.LegitimacyResult{Score: 100, Status: model.StatusLegitimate, Issues: []string{}}
	}

	w := s.weights
	score := 100
	issues := make([]string, 0, 4)
	ts := record.UnlockTime

	// Rule 1: many unlocks on a barely-played game.
	if tl.TotalPlaytimeMinutes < w.LowEngagementPlaytimeMin && tl.UnlockedCount > w.LowEngagementUnlocks {
		score -= w.LowEngagementPenalty
		issues = append(issues, fmt.Sprintf("%d achievements in %d minutes of playtime",
			tl.UnlockedCount, tl.TotalPlaytimeMinutes))
	}

	// Rule 2: size of the minute bucket this unlock belongs to.
	if cluster := timeline.ClusterFor(tl, ts); cluster != nil {
		size := len(cluster.Times)
		switch {
		case size > w.ClusterHugeSize:
			score -= w.ClusterHugePenalty
			issues = append(issues, fmt.Sprintf("%d achievements unlocked within the same minute", size))
		case size > w.ClusterLargeSize:
			score -= w.ClusterLargePenalty
			issues = append(issues, fmt.Sprintf("%d achievements unlocked within the same minute", size))
		case size > w.ClusterMediumSize:
			score -= w.ClusterMediumPenalty
			issues = append(issues, fmt.Sprintf("%d achievements unlocked within the same minute", size))
		}
	}

	// Rule 3: unlock density in a window around this timestamp.
	if nearby := timeline.CountWithin(tl, ts, int64(w.DensityWindowSeconds)); nearby > w.DensityCount {
		score -= w.DensityPenalty
		issues = append(issues, fmt.Sprintf("%d achievements within %d seconds of this unlock",
			nearby, w.DensityWindowSeconds))
	}

	// Rule 4: same second-of-minute repeated across the history. Injected
	// timestamps tend to share the low-order seconds.
	if count := tl.SecondHistogram[int(ts%60)]; count > w.SecondHighCount {
		score -= w.SecondHighPenalty
		issues = append(issues, fmt.Sprintf("%d achievements share unlock second :%02d", count, ts%60))
	} else if count > w.SecondLowCount {
		score -= w.SecondLowPenalty
		issues = append(issues, fmt.Sprintf("%d achievements share unlock second :%02d", count, ts%60))
	}

	// Rule 5: globally ultra-rare achievement among the first unlocks.
	if rarityPercent != nil && *rarityPercent < w.RarityThreshold &&
		timeline.IndexOf(tl, ts) < w.RarityEarlyIndex {
		score -= w.RarityPenalty
		issues = append(issues, fmt.Sprintf("ultra-rare achievement (%.2f%% of players) among the first %d unlocks",
			*rarityPercent, w.RarityEarlyIndex))
	}

	// Rule 6: whole unlock history compressed into a tiny span.
	if n := len(tl.SortedUnlockTimes); n > w.CompressionMinLength {
		span := tl.SortedUnlockTimes[n-1] - tl.SortedUnlockTimes[0]
		if span < w.CompressionSpanSeconds && n > w.CompressionStrictLength {
			score -= w.CompressionPenalty
			issues = append(issues, fmt.Sprintf("%d achievements spread over only %d seconds", n, span))
		}
	}

	// Rule 7: the single largest simultaneous cluster in the history.
	if len(tl.MinuteClusters) > 0 {
		largest := len(tl.MinuteClusters[0].Times)
		if largest > w.LargestHugeSize {
			score -= w.LargestHugePenalty
			issues = append(issues, fmt.Sprintf("largest simultaneous batch: %d achievements in one minute", largest))
		} else if largest > w.LargestLargeSize {
			score -= w.LargestLargePenalty
			issues = append(issues, fmt.Sprintf("largest simultaneous batch: %d achievements in one minute", largest))
		}
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	status := s.statusFor(score)
	if status == model.StatusCheated {
		score = 0
	}

	return model.LegitimacyResult{Score: score, Status: status, Issues: issues}
}

func (s *Scorer) statusFor(score int) model.LegitimacyStatus {
	switch {
	case score <= s.weights.CheatedMax:
		return model.StatusCheated
	case score <= s.weights.SuspiciousMax:
		return model.StatusSuspicious
	default:
		return model.StatusLegitimate
	}
}

// ScoreAll annotates every achieved record that has an unlock time, leaving
// the rest untouched. The input slice is not modified.
func (s *Scorer) ScoreAll(records []model.AchievementRecord, tl *model.PlayerTimeline, rarity map[string]float64) []model.AchievementRecord {
	if records == nil {
		return nil
	}

	scored := make([]model.AchievementRecord, len(records))
	copy(scored, records)

	for i := range scored {
		if !scored[i].Achieved || scored[i].UnlockTime <= 0 {
			continue
		}
		var rarityPercent *float64
		if rarity != nil {
			if pct, ok := rarity[scored[i].APIName]; ok {
				rarityPercent = &pct
			}
		}
		result := s.Score(scored[i], tl, rarityPercent)
		scored[i].Legitimacy = &result
	}
	return scored
}
