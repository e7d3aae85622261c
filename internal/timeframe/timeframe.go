// Package timeframe holds the fixed timeframe/category tables shared by the
// aggregator, the API views, and the export tooling.
package timeframe

import "fmt"

// Category buckets prediction horizons by trading style.
type Category string

const (
	UltraShort Category = "ultra_short" // scalping
	Short      Category = "short"      // day
	Medium     Category = "medium"     // swing
	Long       Category = "long"       // position
)

// Categories lists all categories in ascending horizon order.
var Categories = []Category{UltraShort, Short, Medium, Long}

// Members is the canonical category → timeframe-minutes table.
var Members = map[Category][]int{
	UltraShort: {1, 2, 3, 5},
	Short:      {10, 15, 20, 30, 45, 60},
	Medium:     {120, 180, 240, 360, 480, 720},
	Long:       {1440, 2880, 4320, 5760, 7200, 10080},
}

// Active is the timeframe set for which per-timeframe statistics are kept.
var Active = []int{5, 10, 15, 30, 60, 120, 240, 480, 720, 1440}

// Categorize maps a timeframe-minutes value to exactly one category. The
// cutoffs are the upper bounds of the Members table, so every positive
// value lands in a bucket even if it is not an explicit member.
func Categorize(minutes int) Category {
	switch {
	case minutes <= 5:
		return UltraShort
	case minutes <= 60:
		return Short
	case minutes <= 720:
		return Medium
	default:
		return Long
	}
}

// Label renders a timeframe-minutes value as a compact horizon label.
func Label(minutes int) string {
	switch {
	case minutes < 60:
		return fmt.Sprintf("%dm", minutes)
	case minutes%1440 == 0:
		return fmt.Sprintf("%dd", minutes/1440)
	case minutes%60 == 0:
		return fmt.Sprintf("%dh", minutes/60)
	default:
		return fmt.Sprintf("%dm", minutes)
	}
}

// Label returns the display name of a category.
func (c Category) Label() string {
	switch c {
	case UltraShort:
		return "Ultra Short"
	case Short:
		return "Short"
	case Medium:
		return "Medium"
	case Long:
		return "Long"
	default:
		return string(c)
	}
}
