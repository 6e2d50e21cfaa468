package formatter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/valcheur/go-steam-monitor/internal/core/model"
)

// SummaryFormatter renders a legitimacy-focused digest of one player's game:
// totals, a status breakdown and the flagged achievements with their issues.
type SummaryFormatter struct{}

func NewSummaryFormatter() *SummaryFormatter {
	return &SummaryFormatter{}
}

func (f *SummaryFormatter) Format(report AchievementReport) error {
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println("Achievement Legitimacy Summary")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println()

	fmt.Printf("Player: %s\n", report.SteamID)
	if report.GameName != "" {
		fmt.Printf("Game: %s (appid %d)\n", report.GameName, report.AppID)
	} else {
		fmt.Printf("Game: appid %d\n", report.AppID)
	}
	fmt.Println()

	if len(report.Achievements) == 0 {
		fmt.Println("No achievements to summarize")
		fmt.Println()
		fmt.Println(strings.Repeat("=", 60))
		return nil
	}

	fmt.Println("Progress:")
	fmt.Printf("  Unlocked: %d/%d (%d%%)\n", report.Unlocked, report.Total, report.Percentage)
	fmt.Println()

	counts := make(map[model.LegitimacyStatus]int)
	var flagged []model.AchievementRecord
	for _, rec := range report.Achievements {
		if rec.Legitimacy == nil {
			continue
		}
		counts[rec.Legitimacy.Status]++
		if rec.Legitimacy.Status != model.StatusLegitimate {
			flagged = append(flagged, rec)
		}
	}

	fmt.Println("Legitimacy Breakdown:")
	fmt.Printf("  Legitimate: %d\n", counts[model.StatusLegitimate])
	fmt.Printf("  Suspicious: %d\n", counts[model.StatusSuspicious])
	fmt.Printf("  Cheated:    %d\n", counts[model.StatusCheated])
	fmt.Println()

	if len(flagged) > 0 {
		sort.Slice(flagged, func(i, j int) bool {
			return flagged[i].Legitimacy.Score < flagged[j].Legitimacy.Score
		})

		fmt.Println("Flagged Achievements:")
		fmt.Println(strings.Repeat("-", 60))
		for _, rec := range flagged {
			name := rec.Name
			if name == "" {
				name = rec.APIName
			}
			fmt.Printf("\n%s (score %d, %s):\n", name, rec.Legitimacy.Score, rec.Legitimacy.Status)
			for _, issue := range rec.Legitimacy.Issues {
				fmt.Printf("  - %s\n", issue)
			}
		}
		fmt.Println()
	}

	fmt.Println(strings.Repeat("=", 60))

	return nil
}
