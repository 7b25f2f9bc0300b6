package compare

import (
	"reflect"
	"testing"

	"github.com/dtnitsch/actionsense/models"
	"pgregory.net/rapid"
)

func TestCanonicalTitle(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Widget", "widget"},
		{"widget!!", "widget"},
		{"  Super   Widget, 2-Pack ", "super widget 2 pack"},
		{"!!!", ""},
	}
	for _, tt := range tests {
		if got := CanonicalTitle(tt.in); got != tt.want {
			t.Errorf("CanonicalTitle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"$50", 50, true},
		{"$1,299.99", 1299.99, true},
		{"USD 40.5", 40.5, true},
		{"free", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParsePrice(tt.in)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("ParsePrice(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestCompareGroupsCanonicalTitles(t *testing.T) {
	products := []models.Product{
		{Title: "Widget", Price: "$50", Rating: 4, Site: "a.example"},
		{Title: "widget!!", Price: "$40", Rating: 3, Site: "b.example"},
	}

	insights := Compare(products)
	if len(insights) != 1 {
		t.Fatalf("len(insights) = %d, want 1", len(insights))
	}
	got := insights[0]
	// Widget: 8 + 0 + 0 = 8; widget!!: 6 + 0.5 = 6.5
	if got.Title != "Widget" {
		t.Errorf("best title = %q, want Widget", got.Title)
	}
	if got.Score != 8 {
		t.Errorf("best score = %v, want 8", got.Score)
	}
	if len(got.ScoredItems) != 2 || got.ScoredItems[1].PriceValue != 40 {
		t.Fatalf("scored items = %+v", got.ScoredItems)
	}
	// Runner-up is cheaper, so no savings line.
	if got.Comparison != "" {
		t.Errorf("comparison = %q, want empty", got.Comparison)
	}
}

func TestCompareBestPriceWhenRatingsEqual(t *testing.T) {
	products := []models.Product{
		{Title: "Widget", Price: "$50", Rating: 4, Site: "a.example"},
		{Title: "widget!!", Price: "$40", Rating: 4, Site: "b.example"},
	}
	insights := Compare(products)
	if len(insights) != 1 {
		t.Fatalf("len(insights) = %d, want 1", len(insights))
	}
	if insights[0].BestPrice != 40 {
		t.Errorf("bestPrice = %v, want 40", insights[0].BestPrice)
	}
	if want := "Save $10.00 compared to a.example"; insights[0].Comparison != want {
		t.Errorf("comparison = %q, want %q", insights[0].Comparison, want)
	}
	if want := "Best deal: widget!! on b.example for $40.00 (Save $10.00 compared to a.example)"; SummarizeBestDeal(insights) != want {
		t.Errorf("SummarizeBestDeal() = %q, want %q", SummarizeBestDeal(insights), want)
	}
}

func TestCompareDropsSingletonsAndUnpriced(t *testing.T) {
	products := []models.Product{
		{Title: "Lamp", Price: "$20"},
		{Title: "Chair", Price: "$99"},
		{Title: "chair", Price: "call for price"},
		{Title: "", Price: "$1"},
	}
	if got := Compare(products); len(got) != 0 {
		t.Errorf("Compare() = %+v, want no insights", got)
	}
	if SummarizeBestDeal(nil) != "" {
		t.Error("SummarizeBestDeal(nil) should be empty")
	}
}

func TestCompareStableTies(t *testing.T) {
	products := []models.Product{
		{Title: "Mug", Price: "10", Site: "first.example"},
		{Title: "mug", Price: "10", Site: "second.example"},
	}
	insights := Compare(products)
	if len(insights) != 1 || insights[0].BestSite != "first.example" {
		t.Fatalf("tie should keep input order, got %+v", insights)
	}
}

func TestCompareSiteFromLinkAndFeatureCap(t *testing.T) {
	products := []models.Product{
		{Title: "Desk", Price: "$300", Link: "https://shop.example/desk", Features: []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J"}},
		{Title: "desk", Price: "$200", Site: "other.example"},
	}
	insights := Compare(products)
	if len(insights) != 1 {
		t.Fatalf("len(insights) = %d", len(insights))
	}
	best := insights[0].ScoredItems[0]
	if best.Site != "shop.example" {
		t.Errorf("site = %q, want shop.example", best.Site)
	}
	if best.ScoreDetails.FeatureScore != 1.5 {
		t.Errorf("feature score = %v, want capped 1.5", best.ScoreDetails.FeatureScore)
	}
	if best.Features[0] != "a" {
		t.Errorf("features should be lowercased, got %v", best.Features)
	}
}

func TestComparePurity(t *testing.T) {
	titles := []string{"Widget", "widget!", "Gadget", "GADGET", "Thing"}
	prices := []string{"$10", "$12.50", "15", "n/a", "$9,999"}

	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 8).Draw(t, "n")
		products := make([]models.Product, n)
		for i := range products {
			products[i] = models.Product{
				Title:    rapid.SampledFrom(titles).Draw(t, "title"),
				Price:    models.Price(rapid.SampledFrom(prices).Draw(t, "price")),
				Rating:   float64(rapid.IntRange(0, 5).Draw(t, "rating")),
				Features: rapid.SliceOfN(rapid.SampledFrom([]string{"Wifi", "USB"}), 0, 3).Draw(t, "features"),
			}
		}
		before := make([]models.Product, len(products))
		for i, p := range products {
			before[i] = p
			before[i].Features = append([]string(nil), p.Features...)
		}

		first := Compare(products)
		second := Compare(products)
		if !reflect.DeepEqual(first, second) {
			t.Fatalf("Compare() not idempotent")
		}
		if !reflect.DeepEqual(before, products) {
			t.Fatalf("Compare() mutated its input")
		}
		for _, in := range first {
			if len(in.ScoredItems) < 2 {
				t.Fatalf("insight with fewer than 2 priced members: %+v", in)
			}
		}
	})
}
