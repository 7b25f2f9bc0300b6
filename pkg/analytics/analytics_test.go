package analytics

import (
	"reflect"
	"testing"
)

func TestIsStopword(t *testing.T) {
	for _, w := range []string{"the", "The", "don't", "click", "https"} {
		if !IsStopword(w) {
			t.Errorf("IsStopword(%q) = false", w)
		}
	}
	for _, w := range []string{"golang", "checkout", "lesson"} {
		if IsStopword(w) {
			t.Errorf("IsStopword(%q) = true", w)
		}
	}
}

func TestTokens(t *testing.T) {
	got := Tokens("Don't panic! Go 1.25 ships 'generics', yes.")
	want := []string{"don't", "panic", "go", "1", "25", "ships", "generics", "yes"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokens() = %q, want %q", got, want)
	}
}

func TestWordFrequency(t *testing.T) {
	got := WordFrequency("The lesson, the LESSON and the quiz. 2026 lessons", 4)
	want := map[string]int{"lesson": 2, "quiz": 1, "lessons": 1}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("WordFrequency() = %v, want %v", got, want)
	}
}

func TestTopKeywords(t *testing.T) {
	text := "checkout cart checkout price price price deal deal cart zebra"

	tests := []struct {
		name   string
		n      int
		minLen int
		want   []string
	}{
		{"ranked with alphabetical ties", 3, 4, []string{"price", "cart", "checkout"}},
		{"min length drops short words", 2, 5, []string{"price", "checkout"}},
		{"n larger than vocabulary", 10, 4, []string{"price", "cart", "checkout", "deal", "zebra"}},
		{"zero", 0, 4, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TopKeywords(text, tt.n, tt.minLen); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("TopKeywords() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReduceAndRank(t *testing.T) {
	pages := []map[string]int{
		WordFrequency("lesson quiz lesson", 4),
		WordFrequency("quiz quiz course", 4),
		nil,
	}
	total := Reduce(pages)
	want := map[string]int{"lesson": 2, "quiz": 3, "course": 1}
	if !reflect.DeepEqual(total, want) {
		t.Fatalf("Reduce() = %v, want %v", total, want)
	}

	got := Rank(total, 2)
	if !reflect.DeepEqual(got, []WordCount{{"quiz", 3}, {"lesson", 2}}) {
		t.Errorf("Rank() = %v", got)
	}
	if all := Rank(total, -1); len(all) != 3 {
		t.Errorf("Rank(-1) kept %d entries, want all", len(all))
	}
}
