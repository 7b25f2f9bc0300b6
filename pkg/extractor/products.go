package extractor

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/goccy/go-json"

	"github.com/dtnitsch/actionsense/models"
)

// Product sources, in the order they are tried.
const (
	SourceJSONLD    = "jsonld"
	SourceMicrodata = "microdata"
	SourceOpenGraph = "opengraph"
	SourceDOM       = "dom"
)

var cardSelectors = strings.Join([]string{
	".s-result-item",
	"[data-asin]",
	"[data-itemid]",
	`[data-component-type*="s-search-result"]`,
	"[data-sku-id]",
	".product-card",
	".product",
	".listing",
	".search-result",
}, ",")

const (
	cardTitle  = `h2 a span, h2, h3, a[aria-label], a[title], a[href]`
	cardPrice  = `.a-price .a-offscreen, .a-price-whole, [class*="price"], .money`
	cardRating = `.a-icon-alt, [class*="rating"], [aria-label*="out of 5"]`
	cardReview = `[class*="review"], [aria-label*="rating"], span[aria-label*="stars"]`
)

var (
	numberRe = regexp.MustCompile(`\d+(?:\.\d+)?`)
	reviewRe = regexp.MustCompile(`(?i)(\d+(?:,\d+)*)\s*(?:rating|review|star)`)
)

// Products collects listings from JSON-LD, microdata, OpenGraph and product
// cards, deduplicated on title, price and link and capped at limit.
func Products(doc *goquery.Document, base *url.URL, limit int) []models.Product {
	var all []models.Product
	all = append(all, jsonLDProducts(doc, base)...)
	all = append(all, microdataProducts(doc, base)...)
	all = append(all, openGraphProducts(doc, base)...)
	all = append(all, cardProducts(doc, base)...)

	seen := make(map[string]bool)
	var out []models.Product
	for _, p := range all {
		if p.Title == "" {
			continue
		}
		key := p.Title + "|" + string(p.Price) + "|" + p.Link
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, p)
		if len(out) == limit {
			break
		}
	}
	return out
}

func jsonLDProducts(doc *goquery.Document, base *url.URL) []models.Product {
	var out []models.Product
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		var payload any
		if err := json.Unmarshal([]byte(s.Text()), &payload); err != nil {
			return
		}
		for _, node := range asSlice(payload) {
			obj, ok := node.(map[string]any)
			if !ok {
				continue
			}
			graph := asSlice(obj["@graph"])
			if graph == nil {
				graph = []any{obj}
			}
			for _, g := range graph {
				item, ok := g.(map[string]any)
				if !ok {
					continue
				}
				out = append(out, jsonLDItem(item, base)...)
			}
		}
	})
	return out
}

func jsonLDItem(item map[string]any, base *url.URL) []models.Product {
	var out []models.Product
	if hasType(item["@type"], "Product") {
		offers := asSlice(item["offers"])
		if len(offers) == 0 {
			out = append(out, toProduct(item, nil, base))
		}
		for _, o := range offers {
			offer, _ := o.(map[string]any)
			out = append(out, toProduct(item, offer, base))
		}
	}
	if hasType(item["@type"], "ItemList") {
		for _, e := range asSlice(item["itemListElement"]) {
			entry, ok := e.(map[string]any)
			if !ok {
				continue
			}
			product := entry
			if inner, ok := entry["item"].(map[string]any); ok {
				product = inner
			}
			var offer map[string]any
			if offers := asSlice(product["offers"]); len(offers) > 0 {
				offer, _ = offers[0].(map[string]any)
			}
			out = append(out, toProduct(product, offer, base))
		}
	}
	return out
}

func toProduct(item, offer map[string]any, base *url.URL) models.Product {
	p := models.Product{
		Title:  str(item["name"]),
		Brand:  nameOf(item["brand"]),
		Source: SourceJSONLD,
	}
	if rating, ok := item["aggregateRating"].(map[string]any); ok {
		p.Rating = parseNumber(str(rating["ratingValue"]))
		p.ReviewCount = int(parseNumber(firstNonEmpty(str(rating["reviewCount"]), str(rating["ratingCount"]))))
	}
	link := str(item["url"])
	if offer != nil {
		spec, _ := offer["priceSpecification"].(map[string]any)
		p.Price = models.Price(firstNonEmpty(str(offer["price"]), str(offer["lowPrice"]), str(spec["price"])))
		p.Currency = firstNonEmpty(str(offer["priceCurrency"]), str(spec["priceCurrency"]))
		p.Availability = availability(str(offer["availability"]))
		link = firstNonEmpty(link, str(offer["url"]))
	}
	p.Link = absoluteURL(base, link)
	p.Site = base.Hostname()
	return p
}

func microdataProducts(doc *goquery.Document, base *url.URL) []models.Product {
	var out []models.Product
	doc.Find(`[itemscope][itemtype*="schema.org/Product"]`).Each(func(_ int, s *goquery.Selection) {
		p := models.Product{
			Title:        itemprop(s, "name"),
			Price:        models.Price(itemprop(s, "price")),
			Currency:     itemprop(s, "priceCurrency"),
			Rating:       parseNumber(itemprop(s, "ratingValue")),
			ReviewCount:  int(parseNumber(itemprop(s, "reviewCount"))),
			Brand:        itemprop(s, "brand"),
			Availability: availability(itemprop(s, "availability")),
			Link:         absoluteURL(base, itemprop(s, "url")),
			Site:         base.Hostname(),
			Source:       SourceMicrodata,
		}
		out = append(out, p)
	})
	return out
}

// itemprop reads a microdata property from its content, href or text.
func itemprop(s *goquery.Selection, name string) string {
	el := s.Find(`[itemprop="` + name + `"]`).First()
	if el.Length() == 0 {
		return ""
	}
	for _, attr := range []string{"content", "href", "src"} {
		if v, ok := el.Attr(attr); ok {
			return strings.TrimSpace(v)
		}
	}
	return normalizeSpace(el.Text())
}

func openGraphProducts(doc *goquery.Document, base *url.URL) []models.Product {
	price := firstNonEmpty(meta(doc, `meta[property="product:price:amount"]`), meta(doc, `meta[property="og:price:amount"]`))
	if price == "" && !strings.Contains(meta(doc, `meta[property="og:type"]`), "product") {
		return nil
	}
	p := models.Product{
		Title:    meta(doc, `meta[property="og:title"]`),
		Price:    models.Price(price),
		Currency: firstNonEmpty(meta(doc, `meta[property="product:price:currency"]`), meta(doc, `meta[property="og:price:currency"]`)),
		Brand:    meta(doc, `meta[property="product:brand"]`),
		Link:     absoluteURL(base, meta(doc, `meta[property="og:url"]`)),
		Site:     firstNonEmpty(meta(doc, `meta[property="og:site_name"]`), base.Hostname()),
		Source:   SourceOpenGraph,
	}
	return []models.Product{p}
}

func cardProducts(doc *goquery.Document, base *url.URL) []models.Product {
	var out []models.Product
	doc.Find(cardSelectors).Each(func(_ int, card *goquery.Selection) {
		titleEl := card.Find(cardTitle).First()
		title := normalizeSpace(firstNonEmpty(titleEl.AttrOr("aria-label", ""), titleEl.AttrOr("title", ""), titleEl.Text()))
		if title == "" {
			return
		}

		link := titleEl.Closest("a").AttrOr("href", "")
		if link == "" {
			link = card.Find("a[href]").First().AttrOr("href", "")
		}

		ratingEl := card.Find(cardRating).First()
		reviewEl := card.Find(cardReview).First()
		reviews := 0
		if m := reviewRe.FindStringSubmatch(firstNonEmpty(reviewEl.Text(), reviewEl.AttrOr("aria-label", ""))); m != nil {
			reviews, _ = strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
		}

		out = append(out, models.Product{
			Title:       title,
			Price:       models.Price(normalizeSpace(card.Find(cardPrice).First().Text())),
			Rating:      parseNumber(firstNonEmpty(normalizeSpace(ratingEl.Text()), ratingEl.AttrOr("aria-label", ""))),
			ReviewCount: reviews,
			Link:        absoluteURL(base, link),
			Site:        base.Hostname(),
			Source:      SourceDOM,
		})
	})
	return out
}

func hasType(t any, want string) bool {
	for _, v := range asSlice(t) {
		if s, ok := v.(string); ok && strings.EqualFold(s, want) {
			return true
		}
	}
	return false
}

func asSlice(v any) []any {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		return t
	default:
		return []any{t}
	}
}

// str renders a JSON scalar as text; objects and arrays become "".
func str(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	default:
		return ""
	}
}

func nameOf(v any) string {
	if m, ok := v.(map[string]any); ok {
		return str(m["name"])
	}
	return str(v)
}

// availability shortens schema.org URLs such as https://schema.org/InStock.
func availability(v string) string {
	if i := strings.LastIndex(v, "/"); i >= 0 {
		return v[i+1:]
	}
	return v
}

// parseNumber returns the first number in s, 0 when there is none.
func parseNumber(s string) float64 {
	m := numberRe.FindString(strings.ReplaceAll(s, ",", ""))
	if m == "" {
		return 0
	}
	f, _ := strconv.ParseFloat(m, 64)
	return f
}

func absoluteURL(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return base.String()
	}
	u, err := base.Parse(href)
	if err != nil {
		return href
	}
	return u.String()
}
