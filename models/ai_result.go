package models

// AIResult is an enrichment payload. Every field is optional; an empty field
// leaves the snapshot's current value in place.
type AIResult struct {
	Category      string         `json:"category,omitempty" yaml:"category,omitempty"`
	Summary       string         `json:"summary,omitempty" yaml:"summary,omitempty"`
	Actions       []string       `json:"actions,omitempty" yaml:"actions,omitempty"`
	Confidence    *float64       `json:"confidence,omitempty" yaml:"confidence,omitempty"`
	Notes         string         `json:"notes,omitempty" yaml:"notes,omitempty"`
	Reason        string         `json:"reason,omitempty" yaml:"reason,omitempty"`
	OneLiner      string         `json:"oneLiner,omitempty" yaml:"one_liner,omitempty"`
	ProductAdvice *ProductAdvice `json:"productAdvice,omitempty" yaml:"product_advice,omitempty"`
	BestDealNote  string         `json:"bestDealNote,omitempty" yaml:"best_deal_note,omitempty"`
}
