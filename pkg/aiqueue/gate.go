package aiqueue

import (
	"context"
	"log/slog"

	"github.com/dtnitsch/actionsense/pkg/battery"
)

// Gate decides whether AI work may start given the power state.
type Gate struct {
	Probe     battery.Probe
	Threshold float64
	Logger    *slog.Logger
}

// Allow reports false only when a battery is present, not charging and below
// the threshold. Probe failures allow the work.
func (g *Gate) Allow(ctx context.Context) bool {
	if g == nil || g.Probe == nil {
		return true
	}
	st, err := g.Probe.Status(ctx)
	if err != nil {
		if g.Logger != nil {
			g.Logger.Warn("battery probe failed", "error", err)
		}
		return true
	}
	if !st.Present || st.Charging {
		return true
	}
	return st.Level >= g.Threshold
}
