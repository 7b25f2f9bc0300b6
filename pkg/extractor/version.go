package extractor

import (
	"sync"

	"github.com/dtnitsch/actionsense/models"
)

// Versioner stamps signals with a per-tab content version that advances
// whenever the text hash changes.
type Versioner struct {
	mu   sync.Mutex
	tabs map[int]*tabVersion
}

type tabVersion struct {
	version int
	hash    string
}

func NewVersioner() *Versioner {
	return &Versioner{tabs: make(map[int]*tabVersion)}
}

// Stamp sets TextHash, ContentVersion and MajorChange on sig. A non-empty
// hash that differs from the tab's last one is a major change.
func (v *Versioner) Stamp(sig *models.PageSignal) {
	v.mu.Lock()
	defer v.mu.Unlock()

	st, ok := v.tabs[sig.TabID]
	if !ok {
		st = &tabVersion{}
		v.tabs[sig.TabID] = st
	}
	hash := models.HashText(sig.Text)
	major := hash != "" && hash != st.hash
	if major {
		st.version++
		st.hash = hash
	}

	version := st.version
	sig.TextHash = &hash
	sig.ContentVersion = &version
	sig.MajorChange = major
}

// Forget drops a closed tab's counter.
func (v *Versioner) Forget(tabID int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.tabs, tabID)
}
