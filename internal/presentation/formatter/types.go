package formatter

import "github.com/valcheur/go-steam-monitor/internal/core/model"

// AchievementReport is what the output formatters render for one player's
// game: the scored achievement list plus its totals.
type AchievementReport struct {
	SteamID      string                    `json:"steamid"`
	AppID        int                       `json:"appid"`
	GameName     string                    `json:"gameName,omitempty"`
	Total        int                       `json:"total"`
	Unlocked     int                       `json:"unlocked"`
	Percentage   int                       `json:"percentage"`
	Achievements []model.AchievementRecord `json:"achievements"`
	Rarity       map[string]float64        `json:"-"`
}
