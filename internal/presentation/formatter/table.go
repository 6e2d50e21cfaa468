package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/valcheur/go-steam-monitor/internal/core/model"
	"github.com/valcheur/go-steam-monitor/internal/presentation/layout"
)

const maxNameWidth = 40

type TableFormatter struct {
	headers []string
	sizer   layout.Sizer
}

func NewTableFormatter() *TableFormatter {
	return &TableFormatter{
		headers: []string{
			"Achievement", "Unlocked", "Unlock Time", "Rarity", "Score", "Status",
		},
	}
}

func (f *TableFormatter) Format(report AchievementReport) error {
	widths := fitWidths(f.calculateColumnWidths(report), f.sizer, f.sizer.DisplayWidth(f.headers[0]))

	f.printBorder(widths, "top")
	f.printRow(f.headers, widths)
	f.printBorder(widths, "middle")

	for _, rec := range report.Achievements {
		f.printRow(f.rowValues(rec, report.Rarity), widths)
	}

	f.printBorder(widths, "middle")
	f.printRow([]string{
		fmt.Sprintf("Total: %d/%d", report.Unlocked, report.Total),
		"", "", "", "",
		fmt.Sprintf("%d%%", report.Percentage),
	}, widths)
	f.printBorder(widths, "bottom")

	return nil
}

func (f *TableFormatter) rowValues(rec model.AchievementRecord, rarity map[string]float64) []string {
	name := rec.Name
	if name == "" {
		name = rec.APIName
	}

	unlocked := "no"
	if rec.Achieved {
		unlocked = "yes"
	}

	values := []string{
		f.sizer.Truncate(name, maxNameWidth),
		unlocked,
		formatUnlockTime(rec.UnlockTime),
		formatRarity(rarity, rec.APIName),
		"",
		"",
	}
	if rec.Legitimacy != nil {
		values[4] = fmt.Sprintf("%d", rec.Legitimacy.Score)
		values[5] = string(rec.Legitimacy.Status)
	}
	return values
}

// calculateColumnWidths sizes each column to its widest cell, headers and
// total row included.
func (f *TableFormatter) calculateColumnWidths(report AchievementReport) []int {
	widths := make([]int, len(f.headers))
	for i, header := range f.headers {
		widths[i] = f.sizer.DisplayWidth(header)
	}

	grow := func(values []string) {
		for i, value := range values {
			if w := f.sizer.DisplayWidth(value); w > widths[i] {
				widths[i] = w
			}
		}
	}

	for _, rec := range report.Achievements {
		grow(f.rowValues(rec, report.Rarity))
	}
	grow([]string{
		fmt.Sprintf("Total: %d/%d", report.Unlocked, report.Total),
		"", "", "", "",
		fmt.Sprintf("%d%%", report.Percentage),
	})

	return widths
}

func (f *TableFormatter) printBorder(widths []int, borderType string) {
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

func (f *TableFormatter) printRow(values []string, widths []int) {
	fmt.Print("│")
	for i, value := range values {
		// First column left-aligned, the rest right-aligned.
		padded := f.sizer.PadString(f.sizer.Truncate(value, widths[i]), widths[i], i == 0)
		fmt.Printf(" %s │", padded)
	}
	fmt.Println()
}

// fitWidths shrinks the first column until the rendered table fits inside
// the terminal. The remaining columns hold fixed-format values and keep
// their measured width; minFirst is the floor for the name column.
func fitWidths(widths []int, sizer layout.Sizer, minFirst int) []int {
	rendered := 1
	for _, width := range widths {
		rendered += width + 3
	}
	excess := rendered - sizer.TerminalWidth()
	if excess <= 0 {
		return widths
	}
	widths[0] -= excess
	if widths[0] < minFirst {
		widths[0] = minFirst
	}
	return widths
}

func formatUnlockTime(ts int64) string {
	if ts <= 0 {
		return "-"
	}
	return time.Unix(ts, 0).UTC().Format("2006-01-02 15:04:05")
}

func formatRarity(rarity map[string]float64, apiname string) string {
	if rarity == nil {
		return "-"
	}
	pct, ok := rarity[apiname]
	if !ok {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", pct)
}
