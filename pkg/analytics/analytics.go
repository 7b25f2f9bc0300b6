// Package analytics counts words in page text and picks the keywords the
// extractor reports.
package analytics

import (
	"sort"
	"strings"
	"unicode"
)

// stopwords are ignored in frequency analysis: English function words,
// contractions, and web/UI noise that says nothing about the page topic.
var stopwords = wordSet(`
	a about above across after afterwards again against all almost alone along
	already also although always am among amongst amount an and another any
	anyhow anyone anything anyway anywhere are aren't around as at
	back be became because become becomes becoming been before beforehand behind
	being below beside besides best between beyond both but by
	can can't cannot could couldn't
	did didn't do does doesn't doing don't done down during
	each either else elsewhere enough entirely especially etc even ever every
	everyone everything everywhere
	few for former formerly from further
	had hadn't has hasn't have haven't having he he'd he'll he's hence her here
	hereafter hereby herein here's hereupon hers herself him himself his how however
	i i'd i'll i'm i've if in indeed into is isn't it it's its itself
	just keep
	last latter latterly least less let let's like likely
	made make many may maybe me meanwhile might mine more moreover most mostly
	much must mustn't my myself
	neither never nevertheless next no nobody none noone nor not nothing now nowhere
	of off often on once one only onto or other others otherwise our ours
	ourselves out over own
	part per perhaps please put
	rather re same see seem seemed seeming seems several she she'd she'll she's
	should shouldn't since so some somehow someone something sometime sometimes
	somewhere still such
	take than that that's the their theirs them themselves then thence there
	thereafter thereby therefore therein there's thereupon these they they'd
	they'll they're they've this those through throughout thru thus to together
	too toward towards
	under until up upon us use using
	very via
	was wasn't we we'd we'll we're we've well were weren't what whatever what's
	when whence whenever where whereafter whereas whereby wherein where's
	whereupon wherever whether which while whither who who'd whoever who'll
	who's whose why will with within without won't would wouldn't
	yet you you'd you'll you're you've your yours yourself yourselves
	ain't it'll shan't that'll when's

	click clickable clicked clicking button link menu
	redirected redirect redirecting
	page pages website site home homepage
	search searching searched loading loaded load loads
	http https www
`)

func wordSet(words string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(words) {
		set[w] = struct{}{}
	}
	return set
}

// IsStopword reports whether word is ignored in frequency analysis.
func IsStopword(word string) bool {
	_, ok := stopwords[strings.ToLower(word)]
	return ok
}

// Tokens lower-cases text and splits it on anything that is not an ASCII
// letter or digit. Apostrophes survive so contractions match the stopword
// list; they are trimmed from token edges.
func Tokens(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '\'')
	})
	out := fields[:0]
	for _, f := range fields {
		if f = strings.Trim(f, "'"); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// WordFrequency counts every non-stopword token of at least minLen runes.
func WordFrequency(text string, minLen int) map[string]int {
	freq := make(map[string]int)
	for _, w := range Tokens(text) {
		if len(w) < minLen || IsStopword(w) || allDigits(w) {
			continue
		}
		freq[w]++
	}
	return freq
}

func allDigits(w string) bool {
	for _, r := range w {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// TopKeywords returns the n most frequent words of at least minLen runes.
// Ties go to the alphabetically first word so output is stable.
func TopKeywords(text string, n, minLen int) []string {
	if n <= 0 {
		return nil
	}
	ranked := Rank(WordFrequency(text, minLen), n)
	out := make([]string, len(ranked))
	for i, wc := range ranked {
		out[i] = wc.Word
	}
	return out
}

// WordCount is one entry of a ranked frequency table.
type WordCount struct {
	Word  string `json:"word" yaml:"word"`
	Count int    `json:"count" yaml:"count"`
}

// Reduce sums per-page frequency maps into one.
func Reduce(pages []map[string]int) map[string]int {
	total := make(map[string]int)
	for _, counts := range pages {
		for w, n := range counts {
			total[w] += n
		}
	}
	return total
}

// Rank orders counts by frequency, alphabetically on ties, and keeps n.
func Rank(counts map[string]int, n int) []WordCount {
	ranked := make([]WordCount, 0, len(counts))
	for w, c := range counts {
		ranked = append(ranked, WordCount{w, c})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Word < ranked[j].Word
	})
	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
