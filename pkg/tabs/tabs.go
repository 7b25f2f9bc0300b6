// Package tabs keeps the transient per-tab state that is not persisted:
// open focus sessions and in-flight enrichment flags. State is created on
// first use and destroyed when the tab closes.
package tabs

import (
	"sync"
	"time"

	"github.com/dtnitsch/actionsense/models"
	"github.com/dtnitsch/actionsense/pkg/focus"
)

type state struct {
	category  models.Category
	visible   bool
	start     time.Time // zero when no session is open
	enriching bool
}

// Arena owns every tab's state.
type Arena struct {
	rule focus.SessionRule

	mu   sync.Mutex
	tabs map[int]*state
}

func NewArena(rule focus.SessionRule) *Arena {
	return &Arena{rule: rule, tabs: make(map[int]*state)}
}

// get returns the tab's state, creating it on first use. Callers hold mu.
func (a *Arena) get(tabID int) *state {
	s, ok := a.tabs[tabID]
	if !ok {
		s = &state{}
		a.tabs[tabID] = s
	}
	return s
}

// SetCategory records the tab's current category. A visible tab with no
// open session starts one.
func (a *Arena) SetCategory(tabID int, c models.Category, now time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := a.get(tabID)
	s.category = c
	if s.visible && s.start.IsZero() {
		s.start = now
	}
}

// Show marks the tab visible and opens a session if none is open.
func (a *Arena) Show(tabID int, now time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := a.get(tabID)
	s.visible = true
	if s.start.IsZero() {
		s.start = now
	}
}

// Hide closes the tab's session and returns the focus event it produced,
// if the session was long enough to count.
func (a *Arena) Hide(tabID int, now time.Time) (models.FocusEvent, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := a.get(tabID)
	s.visible = false
	return a.finalize(s, now)
}

// Close finalizes any open session and destroys the tab's state.
func (a *Arena) Close(tabID int, now time.Time) (models.FocusEvent, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	s, ok := a.tabs[tabID]
	if !ok {
		return models.FocusEvent{}, false
	}
	delete(a.tabs, tabID)
	return a.finalize(s, now)
}

func (a *Arena) finalize(s *state, now time.Time) (models.FocusEvent, bool) {
	if s.start.IsZero() {
		return models.FocusEvent{}, false
	}
	start := s.start
	s.start = time.Time{}
	return a.rule.Finalize(s.category, start, now)
}

// TryBeginEnrichment claims the tab's enrichment slot. It returns false if
// an enrichment is already running for the tab.
func (a *Arena) TryBeginEnrichment(tabID int) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := a.get(tabID)
	if s.enriching {
		return false
	}
	s.enriching = true
	return true
}

// EndEnrichment releases the slot claimed by TryBeginEnrichment.
func (a *Arena) EndEnrichment(tabID int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if s, ok := a.tabs[tabID]; ok {
		s.enriching = false
	}
}

// Len is the number of tabs with live state.
func (a *Arena) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.tabs)
}
