// Package categorize is the heuristic page classifier. It is pure and total:
// every input maps to one of models.Categories and nothing here can fail.
package categorize

import (
	"regexp"
	"strings"

	"github.com/dtnitsch/actionsense/models"
)

// Page is the subset of a page signal the classifier looks at.
type Page struct {
	URL         string
	Title       string
	Description string
	Text        string
	Keywords    []string
}

type domainRule struct {
	pattern  *regexp.Regexp
	category models.Category
}

// domainRules is ordered; the first match wins.
var domainRules = []domainRule{
	{regexp.MustCompile(`(?i)(amazon|temu|ebay|walmart|bestbuy|flipkart|aliexpress|etsy|shopify|target|costco)\.`), models.CategoryShopping},
	{regexp.MustCompile(`(?i)(udemy|coursera|edx|khanacademy|medium\.com|notion|docs\.google|learn|tutorial)`), models.CategoryLearning},
	{regexp.MustCompile(`(?i)(bankofamerica|chase|wellsfargo|bloomberg|coinbase|robinhood|finance|moneycontrol|mint|stripe|quickbooks)`), models.CategoryFinance},
	{regexp.MustCompile(`(?i)(facebook|instagram|twitter|x\.com|linkedin|reddit|discord|slack|whatsapp|telegram|threads\.net)`), models.CategorySocial},
	{regexp.MustCompile(`(?i)(gmail|outlook|mail\.|calendar|notion|asana|trello|jira|slack|microsoft365|office|docs|drive\.google)`), models.CategoryProductivity},
	{regexp.MustCompile(`(?i)(arxiv|researchgate|ieee|acm|nature\.com|sciencedirect|doi\.org|springer|plos)`), models.CategoryResearch},
	{regexp.MustCompile(`(?i)(netflix|youtube|spotify|disney|hulu|hbo|max\.com|peacock|primevideo|twitch|imdb|rottentomatoes|espn|bleacherreport)`), models.CategoryEntertainment},
	{regexp.MustCompile(`(?i)(cnn|bbc|nytimes|reuters|apnews|theguardian|news)`), models.CategoryNews},
}

type keywordSet struct {
	category models.Category
	patterns []*regexp.Regexp
}

// keywordSets is in declaration order, which breaks score ties. The second
// productivity set covers focus/workflow vocabulary.
var keywordSets = []keywordSet{
	newKeywordSet(models.CategoryShopping, "cart", "checkout", "discount", "coupon", "price", "deal", "buy", "seller", "shipping", "review"),
	newKeywordSet(models.CategoryLearning, "course", "lesson", "tutorial", "syllabus", "exercise", "lecture", "notebook", "study", "learn", "quiz"),
	newKeywordSet(models.CategoryFinance, "portfolio", "stock", "market", "payment", "invoice", "bank", "interest", "crypto", "budget", "expense"),
	newKeywordSet(models.CategorySocial, "timeline", "followers", "comment", "like", "share", "thread", "community", "chat", "message"),
	newKeywordSet(models.CategoryProductivity, "task", "project", "deadline", "notes", "document", "spreadsheet", "collaborate", "kanban", "meeting", "agenda"),
	newKeywordSet(models.CategoryResearch, "abstract", "citation", "dataset", "methodology", "experiments", "paper", "journal", "conference"),
	newKeywordSet(models.CategoryEntertainment, "movie", "series", "episode", "album", "music", "stream", "match", "highlights", "trailer", "ticket"),
	newKeywordSet(models.CategoryNews, "breaking", "headline", "report", "analysis", "exclusive", "journalism", "press"),
	newKeywordSet(models.CategoryProductivity, "focus", "productivity", "workflow", "optimize", "efficiency"),
}

func newKeywordSet(category models.Category, words ...string) keywordSet {
	set := keywordSet{category: category}
	for _, w := range words {
		set.patterns = append(set.patterns, regexp.MustCompile(`\b`+regexp.QuoteMeta(w)+`\b`))
	}
	return set
}

// Categorize classifies a page: URL rules first, then keyword scoring over
// title, description, text and declared keywords, then "other".
func Categorize(p Page) models.Category {
	if c, ok := ClassifyURL(p.URL); ok {
		return c
	}

	parts := make([]string, 0, 3)
	for _, s := range []string{p.Title, p.Description, p.Text} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	if c, ok := ClassifyContent(strings.Join(parts, " "), p.Keywords); ok {
		return c
	}
	return models.CategoryOther
}

// ClassifyURL returns the category of the first matching domain rule.
func ClassifyURL(rawURL string) (models.Category, bool) {
	if rawURL == "" {
		return "", false
	}
	lower := strings.ToLower(rawURL)
	for _, rule := range domainRules {
		if rule.pattern.MatchString(lower) {
			return rule.category, true
		}
	}
	return "", false
}

// ClassifyContent scores text against every keyword set and returns the
// highest scoring category. Ties go to the set declared first.
func ClassifyContent(text string, keywords []string) (models.Category, bool) {
	lowered := make([]string, 0, len(keywords))
	for _, k := range keywords {
		lowered = append(lowered, strings.ToLower(k))
	}
	combined := strings.ToLower(text + " " + strings.Join(lowered, " "))
	if strings.TrimSpace(combined) == "" {
		return "", false
	}

	best := models.Category("")
	bestScore := 0
	for _, set := range keywordSets {
		score := 0
		for _, re := range set.patterns {
			score += len(re.FindAllStringIndex(combined, -1))
		}
		if score > bestScore {
			best = set.category
			bestScore = score
		}
	}
	if bestScore == 0 {
		return "", false
	}
	return best, true
}
