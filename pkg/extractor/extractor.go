// Package extractor turns a page's HTML into the signal bundle the snapshot
// engine ingests: title, description, readable text, keywords, products
// and language.
package extractor

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"

	"github.com/dtnitsch/actionsense/models"
	"github.com/dtnitsch/actionsense/pkg/analytics"
)

const (
	DefaultTextClamp    = 8_000
	DefaultKeywordLimit = 12
	DefaultProductLimit = 50

	keywordMinLen = 4
)

// hidden elements never contribute text.
const hidden = "script,style,noscript,template,svg,canvas,iframe"

type Options struct {
	TextClamp    int
	KeywordLimit int
	ProductLimit int
}

type Extractor struct {
	opts Options
}

func New(opts Options) *Extractor {
	if opts.TextClamp <= 0 {
		opts.TextClamp = DefaultTextClamp
	}
	if opts.KeywordLimit <= 0 {
		opts.KeywordLimit = DefaultKeywordLimit
	}
	if opts.ProductLimit <= 0 {
		opts.ProductLimit = DefaultProductLimit
	}
	return &Extractor{opts: opts}
}

// Extract builds a page signal from raw HTML. TabID, ContentVersion and
// TextHash are left for the caller; see Versioner.
func (e *Extractor) Extract(rawURL string, html []byte) (models.PageSignal, error) {
	base, err := url.Parse(rawURL)
	if err != nil {
		return models.PageSignal{}, fmt.Errorf("failed to parse page url: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return models.PageSignal{}, fmt.Errorf("failed to parse HTML: %w", err)
	}

	sig := models.PageSignal{
		URL:         rawURL,
		Title:       normalizeSpace(doc.Find("title").First().Text()),
		Description: firstNonEmpty(meta(doc, `meta[name="description"]`), meta(doc, `meta[property="og:description"]`)),
	}

	var text string
	parser := readability.NewParser()
	if article, err := parser.Parse(bytes.NewReader(html), base); err == nil {
		text = normalizeSpace(article.TextContent)
		if sig.Title == "" {
			sig.Title = normalizeSpace(article.Title)
		}
		if sig.Description == "" {
			sig.Description = normalizeSpace(article.Excerpt)
		}
	}
	if text == "" {
		text = mainText(doc)
	}
	sig.Text = clamp(text, e.opts.TextClamp)

	sig.Keywords = keywords(doc, sig.Text, e.opts.KeywordLimit)
	sig.Products = Products(doc, base, e.opts.ProductLimit)
	sig.Language = Language(doc, sig.Text)
	return sig, nil
}

// mainText is the visible text of the first article/main container, or of
// the body when the page has none.
func mainText(doc *goquery.Document) string {
	root := doc.Find(`article, main, [role="main"]`).First()
	if root.Length() == 0 {
		root = doc.Find("body")
	}
	root = root.Clone()
	root.Find(hidden).Remove()
	return normalizeSpace(root.Text())
}

// keywords lists declared meta keywords first, then the most frequent words
// of the text.
func keywords(doc *goquery.Document, text string, limit int) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(k string) {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" || seen[k] || len(out) >= limit {
			return
		}
		seen[k] = true
		out = append(out, k)
	}
	for _, k := range strings.Split(meta(doc, `meta[name="keywords"]`), ",") {
		add(k)
	}
	for _, k := range analytics.TopKeywords(text, limit, keywordMinLen) {
		add(k)
	}
	return out
}

func meta(doc *goquery.Document, selector string) string {
	return strings.TrimSpace(doc.Find(selector).First().AttrOr("content", ""))
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func clamp(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
