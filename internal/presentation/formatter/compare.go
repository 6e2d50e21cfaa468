package formatter

import (
	"fmt"
	"strings"

	"github.com/valcheur/go-steam-monitor/internal/core/model"
	"github.com/valcheur/go-steam-monitor/internal/presentation/layout"
)

// ComparisonFormatter renders a two-player diff as a table plus totals.
type ComparisonFormatter struct {
	headers []string
	sizer   layout.Sizer
}

func NewComparisonFormatter() *ComparisonFormatter {
	return &ComparisonFormatter{
		headers: []string{"Achievement", "Player 1", "Player 2", "Status", "First"},
	}
}

func (f *ComparisonFormatter) Format(result *model.ComparisonResult) error {
	widths := fitWidths(f.calculateColumnWidths(result), f.sizer, f.sizer.DisplayWidth(f.headers[0]))

	f.printBorder(widths, "top")
	f.printRow(f.headers, widths)
	f.printBorder(widths, "middle")

	for _, diff := range result.Achievements {
		f.printRow(f.rowValues(diff), widths)
	}

	f.printBorder(widths, "bottom")

	fmt.Println()
	fmt.Printf("Player 1: %d/%d (%d%%)    Player 2: %d/%d (%d%%)\n",
		result.Player1.UnlockedCount, result.Player1.TotalAchievements, result.Player1.Percentage,
		result.Player2.UnlockedCount, result.Player2.TotalAchievements, result.Player2.Percentage)
	fmt.Printf("Both: %d    Player 1 only: %d    Player 2 only: %d    Neither: %d\n",
		result.Stats.BothUnlocked, result.Stats.Player1Only,
		result.Stats.Player2Only, result.Stats.NeitherUnlocked)

	return nil
}

func (f *ComparisonFormatter) rowValues(diff model.AchievementDiff) []string {
	name := diff.Name
	if name == "" {
		name = diff.APIName
	}
	return []string{
		f.sizer.Truncate(name, maxNameWidth),
		sideCell(diff.Player1),
		sideCell(diff.Player2),
		string(diff.Status),
		diff.FirstUnlock,
	}
}

func sideCell(side model.DiffSide) string {
	if !side.Achieved {
		return "-"
	}
	if side.UnlockTime > 0 {
		return formatUnlockTime(side.UnlockTime)
	}
	return "yes"
}

func (f *ComparisonFormatter) calculateColumnWidths(result *model.ComparisonResult) []int {
	widths := make([]int, len(f.headers))
	for i, header := range f.headers {
		widths[i] = f.sizer.DisplayWidth(header)
	}
	for _, diff := range result.Achievements {
		for i, value := range f.rowValues(diff) {
			if w := f.sizer.DisplayWidth(value); w > widths[i] {
				widths[i] = w
			}
		}
	}
	return widths
}

func (f *ComparisonFormatter) printBorder(widths []int, borderType string) {
	var left, middle, right, separator string

	switch borderType {
	case "top":
		left, middle, right, separator = "┌", "┬", "┐", "─"
	case "middle":
		left, middle, right, separator = "├", "┼", "┤", "─"
	case "bottom":
		left, middle, right, separator = "└", "┴", "┘", "─"
	}

	fmt.Print(left)
	for i, width := range widths {
		fmt.Print(strings.Repeat(separator, width+2))
		if i < len(widths)-1 {
			fmt.Print(middle)
		}
	}
	fmt.Println(right)
}

func (f *ComparisonFormatter) printRow(values []string, widths []int) {
	fmt.Print("│")
	for i, value := range values {
		padded := f.sizer.PadString(f.sizer.Truncate(value, widths[i]), widths[i], i == 0)
		fmt.Printf(" %s │", padded)
	}
	fmt.Println()
}
