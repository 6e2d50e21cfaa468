package legitimacy

import (
	"fmt"
	"os"

	"github.com/bytedance/sonic"
)

// Weights holds the tunable thresholds and penalties of the rule set. The
// rule order and tier structure are fixed; the magnitudes here are empirical
// defaults and can be overridden from a JSON file.
type Weights struct {
	// Rule 1: heavy unlocking on a nearly-unplayed game.
	LowEngagementPlaytimeMin int `json:"lowEngagementPlaytimeMin"`
	LowEngagementUnlocks     int `json:"lowEngagementUnlocks"`
	LowEngagementPenalty     int `json:"lowEngagementPenalty"`

	// Rule 2: size of the minute bucket containing this unlock.
	ClusterHugeSize      int `json:"clusterHugeSize"`
	ClusterHugePenalty   int `json:"clusterHugePenalty"`
	ClusterLargeSize     int `json:"clusterLargeSize"`
	ClusterLargePenalty  int `json:"clusterLargePenalty"`
	ClusterMediumSize    int `json:"clusterMediumSize"`
	ClusterMediumPenalty int `json:"clusterMediumPenalty"`

	// Rule 3: unlock density around this timestamp.
	DensityWindowSeconds int `json:"densityWindowSeconds"`
	DensityCount         int `json:"densityCount"`
	DensityPenalty       int `json:"densityPenalty"`

	// Rule 4: repeated second-of-minute pattern.
	SecondHighCount    int `json:"secondHighCount"`
	SecondHighPenalty  int `json:"secondHighPenalty"`
	SecondLowCount     int `json:"secondLowCount"`
	SecondLowPenalty   int `json:"secondLowPenalty"`

	// Rule 5: ultra-rare achievement among the first unlocks.
	RarityThreshold  float64 `json:"rarityThreshold"`
	RarityEarlyIndex int     `json:"rarityEarlyIndex"`
	RarityPenalty    int     `json:"rarityPenalty"`

	// Rule 6: whole timeline compressed into a tiny span.
	CompressionMinLength    int   `json:"compressionMinLength"`
	CompressionSpanSeconds  int64 `json:"compressionSpanSeconds"`
	CompressionStrictLength int   `json:"compressionStrictLength"`
	CompressionPenalty      int   `json:"compressionPenalty"`

	// Rule 7: largest simultaneous cluster overall.
	LargestHugeSize      int `json:"largestHugeSize"`
	LargestHugePenalty   int `json:"largestHugePenalty"`
	LargestLargeSize     int `json:"largestLargeSize"`
	LargestLargePenalty  int `json:"largestLargePenalty"`

	// Status thresholds over the final clamped score.
	CheatedMax    int `json:"cheatedMax"`
	SuspiciousMax int `json:"suspiciousMax"`
}

// DefaultWeights returns the stock rule weights.
func DefaultWeights() Weights {
	return Weights{
		LowEngagementPlaytimeMin: 60,
		LowEngagementUnlocks:     20,
		LowEngagementPenalty:     40,

		ClusterHugeSize:      15,
		ClusterHugePenalty:   80,
		ClusterLargeSize:     10,
		ClusterLargePenalty:  60,
		ClusterMediumSize:    5,
		ClusterMediumPenalty: 30,

		DensityWindowSeconds: 300,
		DensityCount:         25,
		DensityPenalty:       50,

		SecondHighCount:   20,
		SecondHighPenalty: 70,
		SecondLowCount:    10,
		SecondLowPenalty:  40,

		RarityThreshold:  0.5,
		RarityEarlyIndex: 5,
		RarityPenalty:    35,

		CompressionMinLength:    10,
		CompressionSpanSeconds:  300,
		CompressionStrictLength: 15,
		CompressionPenalty:      60,

		LargestHugeSize:     20,
		LargestHugePenalty:  90,
		LargestLargeSize:    10,
		LargestLargePenalty: 50,

		CheatedMax:    10,
		SuspiciousMax: 40,
	}
}

// LoadWeights reads a weights file and overlays it on the defaults, so a
// partial file only overrides the fields it names.
func LoadWeights(path string) (Weights, error) {
	weights := DefaultWeights()

	data, err := os.ReadFile(path)
	if err != nil {
		return weights, fmt.Errorf("failed to read weights file: %w", err)
	}
	if err := sonic.Unmarshal(data, &weights); err != nil {
		return weights, fmt.Errorf("failed to parse weights file %s: %w", path, err)
	}
	return weights, nil
}
