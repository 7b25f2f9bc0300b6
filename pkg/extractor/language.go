package extractor

import (
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/pemistahl/lingua-go"
)

// detectable is kept small: lingua loads one model per language.
var detectable = []lingua.Language{
	lingua.English,
	lingua.Spanish,
	lingua.French,
	lingua.German,
	lingua.Italian,
	lingua.Portuguese,
	lingua.Dutch,
	lingua.Russian,
	lingua.Hindi,
	lingua.Japanese,
	lingua.Chinese,
}

var (
	detectorOnce sync.Once
	detector     lingua.LanguageDetector
)

func languageDetector() lingua.LanguageDetector {
	detectorOnce.Do(func() {
		detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(detectable...).
			WithLowAccuracyMode().
			Build()
	})
	return detector
}

// Language is the page's ISO 639-1 code: the <html lang> primary subtag
// when declared, otherwise detected from text. "" when neither works.
func Language(doc *goquery.Document, text string) string {
	if lang := strings.TrimSpace(doc.Find("html").AttrOr("lang", "")); lang != "" {
		primary, _, _ := strings.Cut(lang, "-")
		return strings.ToLower(primary)
	}
	if strings.TrimSpace(text) == "" {
		return ""
	}
	if lang, ok := languageDetector().DetectLanguageOf(text); ok {
		return strings.ToLower(lang.IsoCode639_1().String())
	}
	return ""
}
