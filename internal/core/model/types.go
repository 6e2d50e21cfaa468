package model

import (
	"fmt"
	"math"

	"github.com/bytedance/sonic"
)

// LegitimacyStatus classifies how plausible an unlock looks.
type LegitimacyStatus string

const (
	StatusLegitimate LegitimacyStatus = "legitimate"
	StatusSuspicious LegitimacyStatus = "suspicious"
	StatusCheated    LegitimacyStatus = "cheated"
)

// LegitimacyResult is the outcome of scoring a single unlocked achievement.
// Score is clamped to [0,100]; lower means more suspicious. Issues holds one
// human-readable line per triggered rule.
type LegitimacyResult struct {
	Score  int              `json:"score"`
	Status LegitimacyStatus `json:"status"`
	Issues []string         `json:"issues"`
}

// AchievementDefinition is one entry of a game's achievement schema.
type AchievementDefinition struct {
	APIName       string   `json:"apiname"`
	DisplayName   string   `json:"displayName"`
	Description   string   `json:"description"`
	RarityPercent *float64 `json:"rarityPercent,omitempty"`
}

// AchievementRecord is the canonical per-player achievement shape. UnlockTime
// is unix seconds and is zero unless Achieved is true and the provider
// reported a timestamp.
type AchievementRecord struct {
	APIName     string            `json:"apiname"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Achieved    bool              `json:"achieved"`
	UnlockTime  int64             `json:"unlockTime,omitempty"`
	Legitimacy  *LegitimacyResult `json:"legitimacy,omitempty"`
}

// RawAchievement mirrors the loosely-typed provider payload. Steam reports
// achieved as 0/1, but third-party proxies have been seen returning booleans
// or numeric strings, so the field decodes through FlexibleBool.
type RawAchievement struct {
	APIName     string       `json:"apiname"`
	Achieved    FlexibleBool `json:"achieved"`
	UnlockTime  int64        `json:"unlocktime"`
	Name        string       `json:"name,omitempty"`
	Description string       `json:"description,omitempty"`
}

// FlexibleBool accepts JSON booleans, numbers and numeric/boolean strings.
type FlexibleBool bool

func (fb *FlexibleBool) UnmarshalJSON(data []byte) error {
	var b bool
	if err := sonic.Unmarshal(data, &b); err == nil {
		*fb = FlexibleBool(b)
		return nil
	}

	var n float64
	if err := sonic.Unmarshal(data, &n); err == nil {
		*fb = n != 0
		return nil
	}

	var s string
	if err := sonic.Unmarshal(data, &s); err == nil {
		*fb = s == "1" || s == "true"
		return nil
	}

	return fmt.Errorf("value must be a bool, number or string: %s", data)
}

// Normalize converts a raw provider achievement into the canonical record.
// An unlock time is only carried over for achieved entries.
func Normalize(raw RawAchievement) AchievementRecord {
	record := AchievementRecord{
		APIName:     raw.APIName,
		Name:        raw.Name,
		Description: raw.Description,
		Achieved:    bool(raw.Achieved),
	}
	if record.Name == "" {
		record.Name = raw.APIName
	}
	if record.Achieved && raw.UnlockTime > 0 {
		record.UnlockTime = raw.UnlockTime
	}
	return record
}

// NormalizeAll maps a raw provider list into canonical records, preserving order.
func NormalizeAll(raw []RawAchievement) []AchievementRecord {
	if raw == nil {
		return nil
	}
	records := make([]AchievementRecord, 0, len(raw))
	for _, r := range raw {
		records = append(records, Normalize(r))
	}
	return records
}

// MinuteCluster holds all unlock timestamps falling into the same
// 60-second bucket.
type MinuteCluster struct {
	Bucket int64   `json:"bucket"` // unix seconds / 60
	Times  []int64 `json:"times"`
}

// PlayerTimeline is the derived unlock history for one player and game.
type PlayerTimeline struct {
	SortedUnlockTimes     []int64         `json:"sortedUnlockTimes"`
	SecondHistogram       map[int]int     `json:"secondHistogram"`
	MinuteClusters        []MinuteCluster `json:"minuteClusters"`
	TotalPlaytimeMinutes  int             `json:"totalPlaytimeMinutes"`
	TotalAchievementCount int             `json:"totalAchievementCount"`
	UnlockedCount         int             `json:"unlockedCount"`
}

// DiffStatus classifies one achievement across two players' records.
type DiffStatus string

const (
	DiffBoth        DiffStatus = "both"
	DiffPlayer1Only DiffStatus = "player1_only"
	DiffPlayer2Only DiffStatus = "player2_only"
	DiffNeither     DiffStatus = "neither"
)

// DiffSide is one player's half of an AchievementDiff.
type DiffSide struct {
	Achieved   bool              `json:"achieved"`
	UnlockTime int64             `json:"unlockTime,omitempty"`
	Legitimacy *LegitimacyResult `json:"legitimacy,omitempty"`
}

// AchievementDiff is the head-to-head view of a single achievement.
// FirstUnlock is "player1" or "player2" and is only set when both sides
// achieved with known timestamps; an exact tie goes to player1.
type AchievementDiff struct {
	APIName       string     `json:"apiname"`
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	RarityPercent *float64   `json:"rarityPercent,omitempty"`
	Player1       DiffSide   `json:"player1"`
	Player2       DiffSide   `json:"player2"`
	Status        DiffStatus `json:"status"`
	FirstUnlock   string     `json:"firstUnlock,omitempty"`
}

// ComparisonSummary is one player's totals within a comparison.
type ComparisonSummary struct {
	TotalAchievements int `json:"totalAchievements"`
	UnlockedCount     int `json:"unlockedCount"`
	Percentage        int `json:"percentage"`
}

// ComparisonStats aggregates diff statuses across the whole comparison.
type ComparisonStats struct {
	BothUnlocked    int `json:"bothUnlocked"`
	Player1Only     int `json:"player1Only"`
	Player2Only     int `json:"player2Only"`
	NeitherUnlocked int `json:"neitherUnlocked"`
}

// ComparisonResult is the full head-to-head diff for one game.
type ComparisonResult struct {
	Player1      ComparisonSummary `json:"player1"`
	Player2      ComparisonSummary `json:"player2"`
	Achievements []AchievementDiff `json:"achievements"`
	Stats        ComparisonStats   `json:"stats"`
}

// OwnedGame is one entry of a player's owned-games list.
type OwnedGame struct {
	AppID           int    `json:"appid"`
	Name            string `json:"name"`
	PlaytimeMinutes int    `json:"playtimeMinutes"`
}

// InstalledGame is one locally installed title found on disk.
type InstalledGame struct {
	AppID int    `json:"appid"`
	Name  string `json:"name"`
}

// PlayerSummary is the public profile data for one player.
type PlayerSummary struct {
	SteamID      string `json:"steamid"`
	PersonaName  string `json:"personaname"`
	ProfileURL   string `json:"profileurl"`
	Avatar       string `json:"avatar,omitempty"`
	PersonaState int    `json:"personastate"`
	LastLogoff   int64  `json:"lastlogoff,omitempty"`
	GameExtra    string `json:"gameextrainfo,omitempty"`
}

// Percentage returns round(unlocked/total*100) as an integer, with a zero
// total yielding zero rather than NaN.
func Percentage(unlocked, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(unlocked) / float64(total) * 100))
}
