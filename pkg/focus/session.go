package focus

import (
	"time"

	"github.com/dtnitsch/actionsense/models"
)

// SessionRule decides which dwell sessions become focus events.
type SessionRule struct {
	Min time.Duration // sessions must be strictly longer than this
	Max time.Duration // longer sessions are capped
}

// Finalize closes a visible session that started at start. It returns the
// event to record and whether the session was long enough to count.
func (r SessionRule) Finalize(category models.Category, start, end time.Time) (models.FocusEvent, bool) {
	if category == "" || start.IsZero() || !end.After(start) {
		return models.FocusEvent{}, false
	}
	d := end.Sub(start)
	if r.Max > 0 && d > r.Max {
		d = r.Max
	}
	if d <= r.Min {
		return models.FocusEvent{}, false
	}
	return models.FocusEvent{
		Category:  category,
		Duration:  d.Milliseconds(),
		Timestamp: end,
	}, true
}
