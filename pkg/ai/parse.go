package ai

import (
	"html"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/goccy/go-json"
	"github.com/microcosm-cc/bluemonday"

	"github.com/dtnitsch/actionsense/models"
)

const (
	maxActions       = 3
	maxSummaryRunes  = 260
	fallbackSentence = 3
	defaultReason    = "Worth checking this listing again for the best value."
)

var (
	strictPolicy = bluemonday.StrictPolicy()

	selfRefLine   = regexp.MustCompile(`(?im)^(?:as an ai|as (?:an )?assistant).*$`)
	selfRefPhrase = regexp.MustCompile(`(?i)\b(?:as an ai|as (?:an )?assistant)[^.]*\.?`)
	whitespace    = regexp.MustCompile(`\s+`)
	bulletPrefix  = regexp.MustCompile(`^[-•*\d.\s]+`)
	codeFence     = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*(.*?)\\s*```$")
)

// ParseClassification reads a classify response. JSON is tried first; if
// the output is not JSON the first category named anywhere in it wins. An
// unrecognized category yields nil.
func ParseClassification(raw string, categories []models.Category) *Classification {
	raw = unfence(strings.TrimSpace(raw))
	if raw == "" {
		return nil
	}

	var parsed struct {
		Category string `json:"category"`
		Reason   string `json:"reason"`
	}
	if err := decodeObject(raw, &parsed); err != nil {
		lower := strings.ToLower(raw)
		for _, c := range categories {
			if strings.Contains(lower, string(c)) {
				return &Classification{Category: c}
			}
		}
		return nil
	}

	name := strings.ToLower(strings.TrimSpace(parsed.Category))
	for _, c := range categories {
		if string(c) == name {
			return &Classification{Category: c, Reason: strings.TrimSpace(parsed.Reason)}
		}
	}
	return nil
}

// ParseActions accepts either {"actions":[...]} or one action per line with
// optional bullets or numbering. At most three actions are kept.
func ParseActions(raw string) []string {
	raw = unfence(strings.TrimSpace(raw))

	var parsed struct {
		Actions []string `json:"actions"`
	}
	var lines []string
	if err := decodeObject(raw, &parsed); err == nil && len(parsed.Actions) > 0 {
		lines = parsed.Actions
	} else {
		lines = strings.Split(raw, "\n")
	}

	var out []string
	for _, l := range lines {
		l = stripBullet(SanitizeText(l))
		if l == "" {
			continue
		}
		out = append(out, l)
		if len(out) == maxActions {
			break
		}
	}
	return out
}

// ParseProductAdvice reads {"bestTitle":..., "reason":...}. It returns nil
// when neither field is present or the output is not JSON.
func ParseProductAdvice(raw string) *models.ProductAdvice {
	var parsed struct {
		BestTitle string `json:"bestTitle"`
		Reason    string `json:"reason"`
	}
	if err := decodeObject(unfence(strings.TrimSpace(raw)), &parsed); err != nil {
		return nil
	}
	advice := &models.ProductAdvice{
		BestTitle: strings.TrimSpace(parsed.BestTitle),
		Reason:    strings.TrimSpace(parsed.Reason),
	}
	if advice.BestTitle == "" && advice.Reason == "" {
		return nil
	}
	return advice
}

// SanitizeText strips markup and self-referential "as an AI" phrasing and
// collapses whitespace.
func SanitizeText(s string) string {
	s = stripMarkup(s)
	s = selfRefLine.ReplaceAllString(s, "")
	s = selfRefPhrase.ReplaceAllString(s, "")
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

// FormatSummary turns model output into at most three capitalized sentences
// ending in punctuation, clipped to a display budget. Empty output falls
// back to an extractive summary of source.
func FormatSummary(summary, source string) string {
	var parts []string
	for _, line := range strings.Split(summary, "\n") {
		line = stripBullet(SanitizeText(line))
		if line != "" {
			parts = append(parts, capitalize(line))
		}
	}
	if len(parts) == 0 {
		fb := FallbackSummary(source)
		if fb == "" {
			return ""
		}
		parts = []string{capitalize(fb)}
	}
	if len(parts) > 3 {
		parts = parts[:3]
	}

	msg := strings.Join(parts, " ")
	if last, _ := utf8.DecodeLastRuneInString(msg); !strings.ContainsRune(".!?", last) {
		msg += "."
	}
	if utf8.RuneCountInString(msg) > maxSummaryRunes {
		msg = strings.TrimSpace(string([]rune(msg)[:maxSummaryRunes-3])) + "…"
	}
	return msg
}

// FallbackSummary is the first three sentences of text.
func FallbackSummary(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	var sentences []string
	start := 0
	runes := []rune(text)
	for i := 0; i < len(runes)-1 && len(sentences) < fallbackSentence; i++ {
		if strings.ContainsRune(".!?", runes[i]) && unicode.IsSpace(runes[i+1]) {
			sentences = append(sentences, strings.TrimSpace(string(runes[start:i+1])))
			start = i + 1
		}
	}
	if len(sentences) < fallbackSentence {
		if rest := strings.TrimSpace(string(runes[start:])); rest != "" {
			sentences = append(sentences, rest)
		}
	}
	return strings.Join(sentences, " ")
}

// CleanOneLiner sanitizes a one-liner and drops one pair of wrapping quotes.
func CleanOneLiner(s string) string {
	s = SanitizeText(s)
	s = strings.TrimPrefix(s, `"`)
	s = strings.TrimPrefix(s, "'")
	s = strings.TrimSuffix(s, `"`)
	s = strings.TrimSuffix(s, "'")
	return strings.TrimSpace(s)
}

// PolishProductAdvice fills a missing title and reason from the comparator
// result and mentions the savings when the reason does not already.
func PolishProductAdvice(advice *models.ProductAdvice, defaultTitle, fallbackReason, savings string) *models.ProductAdvice {
	if advice == nil {
		return nil
	}
	out := *advice
	if strings.TrimSpace(out.BestTitle) == "" {
		out.BestTitle = defaultTitle
	}
	reason := SanitizeText(out.Reason)
	if reason == "" {
		reason = fallbackReason
	}
	if reason != "" {
		reason = capitalize(reason)
		if savings != "" && !strings.Contains(strings.ToLower(reason), "save") {
			reason += " " + savings + "."
		}
	}
	if reason == "" {
		reason = defaultReason
	}
	out.Reason = reason
	return &out
}

// ChunkText splits text into pieces of at most max runes.
func ChunkText(text string, max int) []string {
	runes := []rune(text)
	if max <= 0 || len(runes) <= max {
		return []string{text}
	}
	var out []string
	for i := 0; i < len(runes); i += max {
		end := i + max
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[i:end]))
	}
	return out
}

// decodeObject decodes raw as JSON, retrying on the outermost {...} span
// when the model wrapped the object in prose.
func decodeObject(raw string, v any) error {
	err := json.Unmarshal([]byte(raw), v)
	if err == nil {
		return nil
	}
	start, end := strings.Index(raw, "{"), strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return err
	}
	return json.Unmarshal([]byte(raw[start:end+1]), v)
}

// stripMarkup removes all HTML tags and decodes the entities the policy
// escapes, leaving plain text.
func stripMarkup(s string) string {
	return html.UnescapeString(strictPolicy.Sanitize(s))
}

func unfence(s string) string {
	if m := codeFence.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return s
}

func stripBullet(s string) string {
	return strings.TrimSpace(bulletPrefix.ReplaceAllString(s, ""))
}

func capitalize(s string) string {
	s = strings.TrimSpace(s)
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
