package focus

import (
	"reflect"
	"testing"
	"time"

	"github.com/dtnitsch/actionsense/models"
)

func at(day string, hour int) time.Time {
	d, err := time.ParseInLocation(time.DateOnly, day, time.UTC)
	if err != nil {
		panic(err)
	}
	return d.Add(time.Duration(hour) * time.Hour)
}

func ev(c models.Category, minutes int, ts time.Time) models.FocusEvent {
	return models.FocusEvent{Category: c, Duration: int64(minutes) * 60_000, Timestamp: ts}
}

func TestWeekKey(t *testing.T) {
	tests := []struct {
		day  string
		want string
	}{
		{"2026-10-18", "2026-W42"}, // Sunday belongs to the week that started Monday the 12th
		{"2026-10-19", "2026-W43"},
		{"2021-01-01", "2020-W53"}, // Thursday-anchored: early January can belong to the previous year
		{"2024-12-30", "2025-W01"},
	}
	for _, tt := range tests {
		if got := WeekKey(at(tt.day, 12)); got != tt.want {
			t.Errorf("WeekKey(%s) = %s, want %s", tt.day, got, tt.want)
		}
	}
}

func TestComputeWeeklyFocus(t *testing.T) {
	now := at("2026-10-16", 18) // Friday, W42
	events := []models.FocusEvent{
		ev(models.CategoryLearning, 30, at("2026-10-15", 9)),
		ev(models.CategorySocial, 10, at("2026-10-15", 10)),
		ev(models.CategoryNews, 10, at("2026-10-16", 9)),
		// previous week
		ev(models.CategoryResearch, 10, at("2026-10-08", 9)),
		ev(models.CategoryShopping, 30, at("2026-10-08", 10)),
		// ignored
		ev(models.CategoryLearning, 0, at("2026-10-16", 10)),
		{Category: "", Duration: 1000, Timestamp: at("2026-10-16", 11)},
	}

	stats := Compute(events, now, time.UTC)

	if stats.CurrentWeekKey != "2026-W42" || stats.PreviousWeekKey != "2026-W41" {
		t.Fatalf("week keys = %s / %s", stats.CurrentWeekKey, stats.PreviousWeekKey)
	}
	wantCurrent := models.PeriodStats{Productive: 30 * 60_000, Distraction: 10 * 60_000, Total: 50 * 60_000}
	if stats.CurrentWeek != wantCurrent {
		t.Errorf("current week = %+v, want %+v", stats.CurrentWeek, wantCurrent)
	}
	if stats.FocusPct != 60 {
		t.Errorf("focusPct = %d, want 60", stats.FocusPct)
	}
	if stats.PrevFocusPct != 25 {
		t.Errorf("prevFocusPct = %d, want 25", stats.PrevFocusPct)
	}
	if stats.TrendDelta != 35 {
		t.Errorf("trendDelta = %d, want 35", stats.TrendDelta)
	}
}

func TestComputeEmptyLog(t *testing.T) {
	stats := Compute(nil, at("2026-10-16", 12), time.UTC)
	if stats.FocusPct != 0 || stats.TrendDelta != 0 || stats.Streak.Days != 0 {
		t.Errorf("empty log stats = %+v", stats)
	}
	if len(stats.DailyBreakdown) != 0 {
		t.Errorf("daily breakdown = %v", stats.DailyBreakdown)
	}
}

func TestComputeIsReplayable(t *testing.T) {
	now := at("2026-10-16", 18)
	events := []models.FocusEvent{
		ev(models.CategoryLearning, 30, at("2026-10-15", 9)),
		ev(models.CategorySocial, 10, at("2026-10-14", 10)),
	}
	snapshot := append([]models.FocusEvent(nil), events...)

	first := Compute(events, now, time.UTC)
	second := Compute(events, now, time.UTC)
	if !reflect.DeepEqual(first, second) {
		t.Error("Compute() should be idempotent")
	}
	if !reflect.DeepEqual(events, snapshot) {
		t.Error("Compute() must not mutate the log")
	}
}

func TestStreak(t *testing.T) {
	now := at("2026-10-16", 18)
	good := func(day string) models.DayStats {
		return models.DayStats{Day: day, PeriodStats: models.PeriodStats{Productive: 10, Distraction: 5, Total: 15}}
	}
	bad := func(day string) models.DayStats {
		return models.DayStats{Day: day, PeriodStats: models.PeriodStats{Productive: 1, Distraction: 5, Total: 6}}
	}

	tests := []struct {
		name string
		days []models.DayStats
		want int
	}{
		{"today, yesterday good then bad", []models.DayStats{bad("2026-10-14"), good("2026-10-15"), good("2026-10-16")}, 2},
		{"gap stops the walk", []models.DayStats{good("2026-10-12"), good("2026-10-15"), good("2026-10-16")}, 2},
		{"yesterday still counts when today is empty", []models.DayStats{good("2026-10-14"), good("2026-10-15")}, 2},
		{"stale streak is broken", []models.DayStats{good("2026-10-13"), good("2026-10-14")}, 0},
		{"today bad", []models.DayStats{good("2026-10-15"), bad("2026-10-16")}, 0},
		{"equal time counts", []models.DayStats{{Day: "2026-10-16", PeriodStats: models.PeriodStats{Productive: 5, Distraction: 5, Total: 10}}}, 1},
		{"no days", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Streak(tt.days, now)
			if got.Days != tt.want {
				t.Errorf("Streak() = %d, want %d", got.Days, tt.want)
			}
			if (got.Days > 0) != (got.Category == "productive") {
				t.Errorf("category = %q for %d days", got.Category, got.Days)
			}
		})
	}
}

func TestComputeStreakFromEvents(t *testing.T) {
	now := at("2026-10-16", 18)
	events := []models.FocusEvent{
		ev(models.CategoryLearning, 30, at("2026-10-16", 9)),
		ev(models.CategoryLearning, 30, at("2026-10-15", 9)),
		ev(models.CategoryEntertainment, 60, at("2026-10-14", 9)),
		ev(models.CategoryLearning, 10, at("2026-10-14", 10)),
	}
	if got := Compute(events, now, time.UTC).Streak.Days; got != 2 {
		t.Errorf("streak = %d, want 2", got)
	}
}

func TestDailyBreakdownKeepsLastSevenDays(t *testing.T) {
	now := at("2026-10-16", 18)
	var events []models.FocusEvent
	for i := 0; i < 10; i++ {
		events = append(events, ev(models.CategoryLearning, 5, now.AddDate(0, 0, -i)))
	}
	stats := Compute(events, now, time.UTC)
	if len(stats.DailyBreakdown) != 7 {
		t.Fatalf("len(daily) = %d, want 7", len(stats.DailyBreakdown))
	}
	if stats.DailyBreakdown[6].Day != "2026-10-16" || stats.DailyBreakdown[0].Day != "2026-10-10" {
		t.Errorf("daily range = %s..%s", stats.DailyBreakdown[0].Day, stats.DailyBreakdown[6].Day)
	}
	if stats.Streak.Days != 10 {
		t.Errorf("streak = %d, want 10", stats.Streak.Days)
	}
}

func TestSessionRuleFinalize(t *testing.T) {
	rule := SessionRule{Min: 5 * time.Second, Max: 30 * time.Minute}
	start := at("2026-10-16", 9)

	if _, ok := rule.Finalize(models.CategoryLearning, start, start.Add(5*time.Second)); ok {
		t.Error("exactly the minimum should not count")
	}
	got, ok := rule.Finalize(models.CategoryLearning, start, start.Add(6*time.Second))
	if !ok || got.Duration != 6000 {
		t.Errorf("Finalize() = %+v, %v", got, ok)
	}
	got, ok = rule.Finalize(models.CategoryLearning, start, start.Add(2*time.Hour))
	if !ok || got.Duration != (30*time.Minute).Milliseconds() {
		t.Errorf("long session should be capped, got %+v", got)
	}
	if _, ok := rule.Finalize("", start, start.Add(time.Minute)); ok {
		t.Error("session without category should not count")
	}
	if _, ok := rule.Finalize(models.CategoryLearning, time.Time{}, start); ok {
		t.Error("session without start should not count")
	}
}
