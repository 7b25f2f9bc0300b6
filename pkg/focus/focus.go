// Package focus turns the dwell-time event log into weekly focus statistics.
// Compute is a pure read over the log: the same log and clock always give
// the same stats.
package focus

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/dtnitsch/actionsense/models"
)

const breakdownDays = 7

var productive = map[models.Category]bool{
	models.CategoryLearning:     true,
	models.CategoryProductivity: true,
	models.CategoryResearch:     true,
	models.CategoryFinance:      true,
}

var distraction = map[models.Category]bool{
	models.CategoryShopping:      true,
	models.CategoryEntertainment: true,
	models.CategorySocial:        true,
}

// IsProductive reports whether time on c counts toward focus.
func IsProductive(c models.Category) bool { return productive[c] }

// IsDistraction reports whether time on c counts against focus.
func IsDistraction(c models.Category) bool { return distraction[c] }

// WeekKey renders the ISO 8601 week of t, e.g. "2026-W07".
func WeekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// DayKey renders the calendar day of t as YYYY-MM-DD.
func DayKey(t time.Time) string {
	return t.Format(time.DateOnly)
}

func add(s *models.PeriodStats, c models.Category, d int64) {
	switch {
	case productive[c]:
		s.Productive += d
	case distraction[c]:
		s.Distraction += d
	}
	s.Total += d
}

// Percentage is round(100*part/total), 0 when total is 0.
func Percentage(part, total int64) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}

// Compute aggregates events into day and ISO-week buckets in loc and derives
// focus percentage, week-over-week trend and the productive streak.
func Compute(events []models.FocusEvent, now time.Time, loc *time.Location) models.FocusStats {
	if loc == nil {
		loc = time.Local
	}
	now = now.In(loc)

	daily := map[string]*models.PeriodStats{}
	weekly := map[string]*models.PeriodStats{}
	for _, ev := range events {
		if ev.Category == "" || ev.Timestamp.IsZero() || ev.Duration <= 0 {
			continue
		}
		ts := ev.Timestamp.In(loc)

		dk := DayKey(ts)
		if daily[dk] == nil {
			daily[dk] = &models.PeriodStats{}
		}
		add(daily[dk], ev.Category, ev.Duration)

		wk := WeekKey(ts)
		if weekly[wk] == nil {
			weekly[wk] = &models.PeriodStats{}
		}
		add(weekly[wk], ev.Category, ev.Duration)
	}

	stats := models.FocusStats{
		CurrentWeekKey:  WeekKey(now),
		PreviousWeekKey: WeekKey(now.AddDate(0, 0, -7)),
	}
	if w := weekly[stats.CurrentWeekKey]; w != nil {
		stats.CurrentWeek = *w
	}
	if w := weekly[stats.PreviousWeekKey]; w != nil {
		stats.PreviousWeek = *w
	}
	stats.FocusPct = Percentage(stats.CurrentWeek.Productive, stats.CurrentWeek.Total)
	stats.PrevFocusPct = Percentage(stats.PreviousWeek.Productive, stats.PreviousWeek.Total)
	stats.TrendDelta = stats.FocusPct - stats.PrevFocusPct

	days := make([]models.DayStats, 0, len(daily))
	for day, s := range daily {
		days = append(days, models.DayStats{Day: day, PeriodStats: *s})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Day < days[j].Day })

	stats.Streak = Streak(days, now)
	if len(days) > breakdownDays {
		days = days[len(days)-breakdownDays:]
	}
	stats.DailyBreakdown = days
	return stats
}

// Streak counts consecutive qualifying days ending today (or yesterday, when
// today has no activity yet). A day qualifies when it has time recorded and
// productive time is at least distraction time. days must be sorted ascending.
func Streak(days []models.DayStats, now time.Time) models.Streak {
	streak := 0
	anchor := civilDay(now)
	prev := anchor
	for i := len(days) - 1; i >= 0; i-- {
		d, err := time.Parse(time.DateOnly, days[i].Day)
		if err != nil {
			break
		}
		if dayGap(prev, d) > 1 {
			break
		}
		prev = d
		if days[i].Total <= 0 || days[i].Productive < days[i].Distraction {
			break
		}
		streak++
	}
	s := models.Streak{Days: streak}
	if streak > 0 {
		s.Category = "productive"
	}
	return s
}

func civilDay(t time.Time) time.Time {
	d, _ := time.Parse(time.DateOnly, DayKey(t))
	return d
}

func dayGap(later, earlier time.Time) int {
	return int(later.Sub(earlier).Hours() / 24)
}
