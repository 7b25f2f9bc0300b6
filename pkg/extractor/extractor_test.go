package extractor

import (
	"strings"
	"testing"

	"github.com/dtnitsch/actionsense/models"
)

const storePage = `<!DOCTYPE html>
<html lang="en-US">
<head>
<title>  Widget   Store </title>
<meta name="description" content="Widgets for every desk.">
<meta name="keywords" content="Widgets, Desk Gear">
<meta property="og:type" content="product">
<meta property="og:title" content="Deluxe Widget">
<meta property="product:price:amount" content="59.00">
<meta property="product:price:currency" content="USD">
<meta property="og:url" content="/p/deluxe">
<script type="application/ld+json">
{"@context": "https://schema.org", "@graph": [
  {"@type": "Product", "name": "Desk Widget",
   "brand": {"@type": "Brand", "name": "Acme"},
   "aggregateRating": {"ratingValue": "4.5", "reviewCount": 120},
   "offers": [
     {"price": 49.99, "priceCurrency": "USD", "availability": "https://schema.org/InStock", "url": "/p/desk-widget"},
     {"price": "47.50", "priceCurrency": "USD", "url": "https://other.example/desk-widget"}
   ]},
  {"@type": "ItemList", "itemListElement": [
    {"@type": "ListItem", "item": {"@type": "Product", "name": "Mini Widget", "url": "/p/mini",
      "offers": {"price": "19", "priceCurrency": "USD"}}}
  ]}
]}
</script>
<script type="application/ld+json">this is not json</script>
</head>
<body>
<nav><a href="/">Home</a></nav>
<article>
<h1>Choosing a desk widget</h1>
<p>Widgets keep a desk tidy and make long working sessions more pleasant. A good widget holds cables,
pens and the small things that otherwise spread across the desk during a busy week.</p>
<p>When comparing widgets, look at the materials first. Aluminium widgets last for years while plastic
widgets are lighter and cheaper. Reviews from other buyers tell you how a widget survives daily use.</p>
<p>Finally, check the price against similar widgets from other shops before you buy one for your desk.</p>
</article>
<div itemscope itemtype="https://schema.org/Product">
  <span itemprop="name">Micro Widget</span>
  <span itemprop="price" content="9.99">$9.99</span>
  <meta itemprop="priceCurrency" content="USD">
</div>
<ul>
  <li class="product-card"><h3><a href="/p/card-widget">Card Widget</a></h3>
    <span class="price">$29.99</span><span class="rating">4.2 out of 5 stars</span>
    <span class="reviews">1,234 ratings</span></li>
  <li class="product-card"><h3><a href="/p/card-widget">Card Widget</a></h3>
    <span class="price">$29.99</span></li>
</ul>
</body>
</html>`

func TestExtractPageFields(t *testing.T) {
	sig, err := New(Options{}).Extract("https://shop.example/widgets", []byte(storePage))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if sig.URL != "https://shop.example/widgets" {
		t.Errorf("URL = %q", sig.URL)
	}
	if sig.Title != "Widget Store" {
		t.Errorf("Title = %q, want %q", sig.Title, "Widget Store")
	}
	if sig.Description != "Widgets for every desk." {
		t.Errorf("Description = %q", sig.Description)
	}
	if !strings.Contains(sig.Text, "Widgets keep a desk tidy") {
		t.Errorf("Text misses the article body: %q", sig.Text)
	}
	if strings.Contains(sig.Text, "this is not json") {
		t.Error("Text includes script content")
	}
	if sig.Language != "en" {
		t.Errorf("Language = %q, want en", sig.Language)
	}
	if len(sig.Keywords) < 3 || sig.Keywords[0] != "widgets" || sig.Keywords[1] != "desk gear" {
		t.Errorf("Keywords = %q, want declared keywords first", sig.Keywords)
	}
	if len(sig.Keywords) > DefaultKeywordLimit {
		t.Errorf("got %d keywords, limit is %d", len(sig.Keywords), DefaultKeywordLimit)
	}
	if sig.TabID != 0 || sig.ContentVersion != nil || sig.TextHash != nil {
		t.Error("Extract must leave tab and version fields to the caller")
	}
}

func TestExtractProducts(t *testing.T) {
	sig, err := New(Options{}).Extract("https://shop.example/widgets", []byte(storePage))
	if err != nil {
		t.Fatal(err)
	}

	want := []struct {
		title, price, link, source string
	}{
		{"Desk Widget", "49.99", "https://shop.example/p/desk-widget", SourceJSONLD},
		{"Desk Widget", "47.50", "https://other.example/desk-widget", SourceJSONLD},
		{"Mini Widget", "19", "https://shop.example/p/mini", SourceJSONLD},
		{"Micro Widget", "9.99", "https://shop.example/widgets", SourceMicrodata},
		{"Deluxe Widget", "59.00", "https://shop.example/p/deluxe", SourceOpenGraph},
		{"Card Widget", "$29.99", "https://shop.example/p/card-widget", SourceDOM},
	}
	if len(sig.Products) != len(want) {
		t.Fatalf("got %d products, want %d: %+v", len(sig.Products), len(want), sig.Products)
	}
	for i, w := range want {
		p := sig.Products[i]
		if p.Title != w.title || string(p.Price) != w.price || p.Link != w.link || p.Source != w.source {
			t.Errorf("product %d = {%q %q %q %q}, want %+v", i, p.Title, p.Price, p.Link, p.Source, w)
		}
	}

	desk := sig.Products[0]
	if desk.Brand != "Acme" || desk.Rating != 4.5 || desk.ReviewCount != 120 ||
		desk.Currency != "USD" || desk.Availability != "InStock" || desk.Site != "shop.example" {
		t.Errorf("Desk Widget details = %+v", desk)
	}
	card := sig.Products[5]
	if card.Rating != 4.2 || card.ReviewCount != 1234 {
		t.Errorf("Card Widget rating = %v, reviews = %d", card.Rating, card.ReviewCount)
	}
}

func TestExtractLimits(t *testing.T) {
	sig, err := New(Options{TextClamp: 40, ProductLimit: 2, KeywordLimit: 3}).
		Extract("https://shop.example/widgets", []byte(storePage))
	if err != nil {
		t.Fatal(err)
	}
	if n := len([]rune(sig.Text)); n > 40 {
		t.Errorf("Text has %d runes, want <= 40", n)
	}
	if len(sig.Products) != 2 {
		t.Errorf("got %d products, want 2", len(sig.Products))
	}
	if len(sig.Keywords) != 3 {
		t.Errorf("got %d keywords, want 3", len(sig.Keywords))
	}
}

func TestExtractDetectsLanguageWithoutLangAttribute(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"english", "<p>The weather is lovely today and we are going to walk along the river with our friends.</p>", "en"},
		{"german", "<p>Das Wetter ist heute wunderschön und wir gehen mit unseren Freunden am Fluss spazieren.</p>", "de"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html := "<html><head><title>t</title></head><body>" + tt.body + "</body></html>"
			sig, err := New(Options{}).Extract("https://example.com/", []byte(html))
			if err != nil {
				t.Fatal(err)
			}
			if sig.Language != tt.want {
				t.Errorf("Language = %q, want %q", sig.Language, tt.want)
			}
		})
	}
}

func TestExtractBadURL(t *testing.T) {
	if _, err := New(Options{}).Extract("://nope", []byte("<html></html>")); err == nil {
		t.Error("Extract() with an invalid url should fail")
	}
}

func TestVersioner(t *testing.T) {
	v := NewVersioner()

	stamp := func(tab int, text string) models.PageSignal {
		t.Helper()
		sig := models.PageSignal{TabID: tab, Text: text}
		v.Stamp(&sig)
		if sig.ContentVersion == nil || sig.TextHash == nil {
			t.Fatal("Stamp left version fields nil")
		}
		return sig
	}

	steps := []struct {
		tab         int
		text        string
		wantVersion int
		wantMajor   bool
	}{
		{1, "first text", 1, true},
		{1, "first text", 1, false},
		{1, "second text", 2, true},
		{1, "", 2, false},
		{2, "first text", 1, true},
		{1, "second text", 2, false},
	}
	for i, s := range steps {
		sig := stamp(s.tab, s.text)
		if *sig.ContentVersion != s.wantVersion || sig.MajorChange != s.wantMajor {
			t.Errorf("step %d: version = %d, major = %v; want %d, %v",
				i, *sig.ContentVersion, sig.MajorChange, s.wantVersion, s.wantMajor)
		}
		if *sig.TextHash != models.HashText(s.text) {
			t.Errorf("step %d: TextHash = %q", i, *sig.TextHash)
		}
	}

	v.Forget(1)
	if sig := stamp(1, "second text"); *sig.ContentVersion != 1 || !sig.MajorChange {
		t.Errorf("after Forget: version = %d, major = %v", *sig.ContentVersion, sig.MajorChange)
	}
}
