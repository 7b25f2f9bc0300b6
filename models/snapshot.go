package models

import "time"

// ProductAdvice is the AI pick among compared listings.
type ProductAdvice struct {
	BestTitle   string    `json:"bestTitle,omitempty" yaml:"best_title,omitempty"`
	Reason      string    `json:"reason,omitempty" yaml:"reason,omitempty"`
	GeneratedAt time.Time `json:"generatedAt" yaml:"generated_at"`
}

// ScoreDetails breaks a listing's composite score into its terms.
type ScoreDetails struct {
	Score           float64 `json:"score" yaml:"score"`
	RatingScore     float64 `json:"ratingScore" yaml:"rating_score"`
	PriceScore      float64 `json:"priceScore" yaml:"price_score"`
	FeatureScore    float64 `json:"featureScore" yaml:"feature_score"`
	PriceNormalized float64 `json:"priceNormalized" yaml:"price_normalized"`
}

// ScoredItem is one ranked listing inside a ProductInsight.
type ScoredItem struct {
	Title        string       `json:"title" yaml:"title"`
	Site         string       `json:"site,omitempty" yaml:"site,omitempty"`
	PriceValue   float64      `json:"priceValue" yaml:"price_value"`
	PriceText    string       `json:"priceText,omitempty" yaml:"price_text,omitempty"`
	Currency     string       `json:"currency,omitempty" yaml:"currency,omitempty"`
	Rating       float64      `json:"rating" yaml:"rating"`
	Features     []string     `json:"features,omitempty" yaml:"features,omitempty"`
	Score        float64      `json:"score" yaml:"score"`
	ScoreDetails ScoreDetails `json:"scoreDetails" yaml:"score_details"`
	Link         string       `json:"link,omitempty" yaml:"link,omitempty"`
}

// ProductInsight is the comparison result for one canonical title.
type ProductInsight struct {
	Title       string       `json:"title" yaml:"title"`
	BestSite    string       `json:"bestSite,omitempty" yaml:"best_site,omitempty"`
	BestPrice   float64      `json:"bestPrice" yaml:"best_price"`
	Currency    string       `json:"currency" yaml:"currency"`
	Link        string       `json:"link,omitempty" yaml:"link,omitempty"`
	Comparison  string       `json:"comparison,omitempty" yaml:"comparison,omitempty"`
	Score       float64      `json:"score" yaml:"score"`
	ScoredItems []ScoredItem `json:"scoredItems" yaml:"scored_items"`
}

// PageSnapshot is the authoritative per-tab record. Only the snapshot engine
// mutates it.
type PageSnapshot struct {
	TabID       int       `json:"tabId" yaml:"tab_id"`
	WindowID    int       `json:"windowId,omitempty" yaml:"window_id,omitempty"`
	Title       string    `json:"title" yaml:"title"`
	URL         string    `json:"url" yaml:"url"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Text        string    `json:"text,omitempty" yaml:"text,omitempty"`
	Keywords    []string  `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	Products    []Product `json:"products,omitempty" yaml:"products,omitempty"`
	Language    string    `json:"language,omitempty" yaml:"language,omitempty"`

	HeuristicCategory Category       `json:"heuristicCategory" yaml:"heuristic_category"`
	Category          Category       `json:"category" yaml:"category"`
	CategoryLabel     string         `json:"categoryLabel" yaml:"category_label"`
	CategorySource    CategorySource `json:"categorySource" yaml:"category_source"`

	ContentVersion int    `json:"contentVersion" yaml:"content_version"`
	TextHash       string `json:"textHash,omitempty" yaml:"text_hash,omitempty"`
	NeedsAIRefresh bool   `json:"needsAiRefresh" yaml:"needs_ai_refresh"`
	MajorChange    bool   `json:"majorChange" yaml:"major_change"`

	Actions      []string `json:"actions,omitempty" yaml:"actions,omitempty"`
	AISummary    string   `json:"aiSummary,omitempty" yaml:"ai_summary,omitempty"`
	AIActions    []string `json:"aiActions,omitempty" yaml:"ai_actions,omitempty"`
	AIReason     string   `json:"aiReason,omitempty" yaml:"ai_reason,omitempty"`
	AINotes      string   `json:"aiNotes,omitempty" yaml:"ai_notes,omitempty"`
	AICategory   Category `json:"aiCategory,omitempty" yaml:"ai_category,omitempty"`
	AIConfidence *float64 `json:"aiConfidence,omitempty" yaml:"ai_confidence,omitempty"`
	OneLiner     string   `json:"oneLiner,omitempty" yaml:"one_liner,omitempty"`

	ProductInsights []ProductInsight `json:"productInsights,omitempty" yaml:"product_insights,omitempty"`
	BestDeal        string           `json:"bestDeal,omitempty" yaml:"best_deal,omitempty"`
	ProductAdvice   *ProductAdvice   `json:"productAdvice,omitempty" yaml:"product_advice,omitempty"`

	AIUpdatedAt time.Time `json:"aiUpdatedAt,omitempty" yaml:"ai_updated_at,omitempty"`
	LastAIAt    time.Time `json:"lastAiAt,omitempty" yaml:"last_ai_at,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt" yaml:"updated_at"`
}

// HasAIContent reports whether anything on the snapshot came from the AI
// provider, i.e. whether there is something that can go stale.
func (s *PageSnapshot) HasAIContent() bool {
	return s.CategorySource == SourceAI || s.AISummary != ""
}

// Clone returns a deep copy so callers can mutate without touching stored state.
func (s *PageSnapshot) Clone() *PageSnapshot {
	if s == nil {
		return nil
	}
	c := *s
	c.Keywords = append([]string(nil), s.Keywords...)
	c.Products = append([]Product(nil), s.Products...)
	c.Actions = append([]string(nil), s.Actions...)
	c.AIActions = append([]string(nil), s.AIActions...)
	c.ProductInsights = append([]ProductInsight(nil), s.ProductInsights...)
	if s.AIConfidence != nil {
		v := *s.AIConfidence
		c.AIConfidence = &v
	}
	if s.ProductAdvice != nil {
		a := *s.ProductAdvice
		c.ProductAdvice = &a
	}
	return &c
}
