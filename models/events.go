package models

import "time"

// FocusEvent is one recorded interval of attention on a tab.
type FocusEvent struct {
	Category  Category  `json:"category" yaml:"category"`
	Duration  int64     `json:"duration" yaml:"duration"` // milliseconds
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// ActionHistoryEntry records an action surfaced to the user, e.g. a new best deal.
type ActionHistoryEntry struct {
	ID        string    `json:"id" yaml:"id"`
	Category  Category  `json:"category" yaml:"category"`
	Action    string    `json:"action" yaml:"action"`
	TabID     int       `json:"tabId" yaml:"tab_id"`
	URL       string    `json:"url,omitempty" yaml:"url,omitempty"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// CategoryAnalytics counts visits per category. Counts are never negative and
// zero entries are removed.
type CategoryAnalytics map[Category]int

// Total sums every count.
func (a CategoryAnalytics) Total() int {
	total := 0
	for _, v := range a {
		total += v
	}
	return total
}

// PeriodStats aggregates dwell time for a day or a week.
type PeriodStats struct {
	Productive  int64 `json:"productive" yaml:"productive"`
	Distraction int64 `json:"distraction" yaml:"distraction"`
	Total       int64 `json:"total" yaml:"total"`
}

// DayStats is a PeriodStats tagged with its calendar day (YYYY-MM-DD).
type DayStats struct {
	Day string `json:"day" yaml:"day"`
	PeriodStats
}

// Streak is the count of consecutive productive days ending today.
type Streak struct {
	Days     int    `json:"days" yaml:"days"`
	Category string `json:"category,omitempty" yaml:"category,omitempty"`
}

// FocusStats is derived from the focus event log and never persisted.
type FocusStats struct {
	CurrentWeekKey  string      `json:"currentWeekKey" yaml:"current_week_key"`
	CurrentWeek     PeriodStats `json:"currentWeek" yaml:"current_week"`
	PreviousWeekKey string      `json:"previousWeekKey" yaml:"previous_week_key"`
	PreviousWeek    PeriodStats `json:"previousWeek" yaml:"previous_week"`
	FocusPct        int         `json:"focusPct" yaml:"focus_pct"`
	PrevFocusPct    int         `json:"prevFocusPct" yaml:"prev_focus_pct"`
	TrendDelta      int         `json:"trendDelta" yaml:"trend_delta"`
	Streak          Streak      `json:"streak" yaml:"streak"`
	DailyBreakdown  []DayStats  `json:"dailyBreakdown" yaml:"daily_breakdown"`
}
