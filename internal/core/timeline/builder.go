package timeline

import (
	"sort"

	"github.com/valcheur/go-steam-monitor/internal/core/model"
)

// Build derives one player's unlock timeline from a normalized achievement
// list and the total playtime for the game (minutes). Only achieved entries
// with a known unlock time contribute timestamps. The result is fully
// deterministic: the sort is stable so equal timestamps keep input order,
// and clusters order by size descending with bucket ascending as tiebreak.
func Build(records []model.AchievementRecord, playtimeMinutes int) model.PlayerTimeline {
	tl := model.PlayerTimeline{
		SortedUnlockTimes:     make([]int64, 0, len(records)),
		SecondHistogram:       make(map[int]int),
		MinuteClusters:        make([]model.MinuteCluster, 0),
		TotalPlaytimeMinutes:  playtimeMinutes,
		TotalAchievementCount: len(records),
	}

	for _, record := range records {
		if record.Achieved {
			tl.UnlockedCount++
		}
		if !record.Achieved || record.UnlockTime <= 0 {
			continue
		}
		tl.SortedUnlockTimes = append(tl.SortedUnlockTimes, record.UnlockTime)
	}

	sort.SliceStable(tl.SortedUnlockTimes, func(i, j int) bool {
		return tl.SortedUnlockTimes[i] < tl.SortedUnlockTimes[j]
	})

	buckets := make(map[int64][]int64)
	for _, ts := range tl.SortedUnlockTimes {
		tl.SecondHistogram[int(ts%60)]++
		bucket := ts / 60
		buckets[bucket] = append(buckets[bucket], ts)
	}

	for bucket, times := range buckets {
		if len(times) < 2 {
			continue
		}
		tl.MinuteClusters = append(tl.MinuteClusters, model.MinuteCluster{
			Bucket: bucket,
			Times:  times,
		})
	}

	sort.Slice(tl.MinuteClusters, func(i, j int) bool {
		if len(tl.MinuteClusters[i].Times) != len(tl.MinuteClusters[j].Times) {
			return len(tl.MinuteClusters[i].Times) > len(tl.MinuteClusters[j].Times)
		}
		return tl.MinuteClusters[i].Bucket < tl.MinuteClusters[j].Bucket
	})

	return tl
}

// ClusterFor returns the minute cluster containing the given timestamp, or
// nil when the timestamp does not belong to any retained cluster.
func ClusterFor(tl *model.PlayerTimeline, ts int64) *model.MinuteCluster {
	bucket := ts / 60
	for i := range tl.MinuteClusters {
		if tl.MinuteClusters[i].Bucket == bucket {
			return &tl.MinuteClusters[i]
		}
	}
	return nil
}

// IndexOf returns the position of the first timeline entry >= ts, which for a
// timestamp taken from the timeline is its rank among all unlocks.
func IndexOf(tl *model.PlayerTimeline, ts int64) int {
	return sort.Search(len(tl.SortedUnlockTimes), func(i int) bool {
		return tl.SortedUnlockTimes[i] >= ts
	})
}

// CountWithin returns how many timeline entries fall inside [ts-window, ts+window].
func CountWithin(tl *model.PlayerTimeline, ts int64, window int64) int {
	lo := sort.Search(len(tl.SortedUnlockTimes), func(i int) bool {
		return tl.SortedUnlockTimes[i] >= ts-window
	})
	hi := sort.Search(len(tl.SortedUnlockTimes), func(i int) bool {
		return tl.SortedUnlockTimes[i] > ts+window
	})
	return hi - lo
}
