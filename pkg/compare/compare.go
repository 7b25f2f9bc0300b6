// Package compare groups competing product listings by canonical title and
// ranks them. Everything here is pure: no I/O and inputs are never modified.
package compare

import (
	"fmt"
	"math"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/dtnitsch/actionsense/models"
)

const (
	maxScoredItems   = 3
	maxFeatureScore  = 1.5
	featureWeight    = 0.2
	ratingWeight     = 2.0
	priceWeight      = 0.5
	defaultCurrency  = "$"
	minGroupListings = 2
)

var (
	nonAlnum   = regexp.MustCompile(`[^a-z0-9\s]`)
	whitespace = regexp.MustCompile(`\s+`)
	priceRe    = regexp.MustCompile(`\d+(?:\.\d+)?`)
)

// CanonicalTitle lowercases, replaces punctuation with spaces and collapses
// whitespace. Two listings compare iff their canonical titles are equal.
func CanonicalTitle(title string) string {
	s := nonAlnum.ReplaceAllString(strings.ToLower(title), " ")
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

// ParsePrice extracts the first number from a price string, ignoring
// thousands separators. ok is false when no number is present.
func ParsePrice(raw string) (float64, bool) {
	m := priceRe.FindString(strings.ReplaceAll(raw, ",", ""))
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func siteFromLink(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	return u.Host
}

type entry struct {
	product models.Product
	site    string
	price   float64
	rating  float64
	feats   []string
	details models.ScoreDetails
}

// Compare returns one insight per canonical title that has at least two
// priced listings. Insights keep the first-seen order of their groups.
func Compare(products []models.Product) []models.ProductInsight {
	var order []string
	groups := map[string][]entry{}

	for _, p := range products {
		if p.Title == "" {
			continue
		}
		key := CanonicalTitle(p.Title)
		if key == "" {
			continue
		}
		price, ok := ParsePrice(string(p.Price))
		if !ok {
			continue
		}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		site := p.Site
		if site == "" {
			site = siteFromLink(p.Link)
		}
		feats := make([]string, 0, len(p.Features))
		for _, f := range p.Features {
			feats = append(feats, strings.ToLower(f))
		}
		groups[key] = append(groups[key], entry{
			product: p,
			site:    site,
			price:   price,
			rating:  p.Rating,
			feats:   feats,
		})
	}

	insights := make([]models.ProductInsight, 0, len(order))
	for _, key := range order {
		items := groups[key]
		if len(items) < minGroupListings {
			continue
		}
		insights = append(insights, rank(items))
	}
	return insights
}

func rank(items []entry) models.ProductInsight {
	minPrice, maxPrice := math.Inf(1), math.Inf(-1)
	for _, it := range items {
		minPrice = math.Min(minPrice, it.price)
		maxPrice = math.Max(maxPrice, it.price)
	}
	for i := range items {
		items[i].details = score(items[i], minPrice, maxPrice)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].details.Score > items[j].details.Score
	})

	best, runnerUp := items[0], items[1]
	comparison := ""
	if diff := runnerUp.price - best.price; diff > 0 {
		comparison = fmt.Sprintf("Save %s%.2f compared to %s", currencyOf(runnerUp.product), diff, runnerUp.site)
	}

	currency := best.product.Currency
	if currency == "" {
		currency = currencyOf(runnerUp.product)
	}

	insight := models.ProductInsight{
		Title:      best.product.Title,
		BestSite:   best.site,
		BestPrice:  best.price,
		Currency:   currency,
		Link:       best.product.Link,
		Comparison: comparison,
		Score:      best.details.Score,
	}
	for i, it := range items {
		if i == maxScoredItems {
			break
		}
		insight.ScoredItems = append(insight.ScoredItems, models.ScoredItem{
			Title:        it.product.Title,
			Site:         it.site,
			PriceValue:   it.price,
			PriceText:    string(it.product.Price),
			Currency:     it.product.Currency,
			Rating:       it.rating,
			Features:     it.feats,
			Score:        math.Round(it.details.Score*100) / 100,
			ScoreDetails: it.details,
			Link:         it.product.Link,
		})
	}
	return insight
}

// score is rating*2 + 0.5*(1-normalizedPrice) + min(1.5, 0.2*features).
// normalizedPrice is 0 when every listing in the group has the same price.
func score(it entry, minPrice, maxPrice float64) models.ScoreDetails {
	normalized := 0.0
	if span := maxPrice - minPrice; span > 0 {
		normalized = (it.price - minPrice) / span
	}
	d := models.ScoreDetails{
		RatingScore:     it.rating * ratingWeight,
		PriceScore:      (1 - normalized) * priceWeight,
		FeatureScore:    math.Min(maxFeatureScore, float64(len(it.feats))*featureWeight),
		PriceNormalized: normalized,
	}
	d.Score = d.RatingScore + d.PriceScore + d.FeatureScore
	return d
}

func currencyOf(p models.Product) string {
	if p.Currency != "" {
		return p.Currency
	}
	return defaultCurrency
}

// SummarizeBestDeal renders the first insight as a one-line statement, or ""
// when there is nothing to compare.
func SummarizeBestDeal(insights []models.ProductInsight) string {
	if len(insights) == 0 {
		return ""
	}
	top := insights[0]
	site := top.BestSite
	if site == "" {
		site = "this site"
	}
	summary := fmt.Sprintf("Best deal: %s on %s for %s%.2f", top.Title, site, top.Currency, top.BestPrice)
	if top.Comparison != "" {
		summary += " (" + top.Comparison + ")"
	}
	return summary
}
