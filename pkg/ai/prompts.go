package ai

import (
	"fmt"
	"strings"

	"github.com/dtnitsch/actionsense/models"
)

const persona = "You are a friendly, concise, optimistic assistant."

func summarySystemPrompt(sc SummaryContext) string {
	lang := sc.Language
	if lang == "" {
		lang = "en"
	}
	lines := []string{
		persona,
		fmt.Sprintf("Summarize the page in English even if the original content is %s.", lang),
		"Highlight what is most useful for the user in at most 2 sentences.",
	}
	if sc.Title != "" {
		lines = append(lines, "Page Title: "+sc.Title)
	}
	if sc.Description != "" {
		lines = append(lines, "Meta Description: "+sc.Description)
	}
	if len(sc.Keywords) > 0 {
		kw := sc.Keywords
		if len(kw) > 8 {
			kw = kw[:8]
		}
		lines = append(lines, "Key Topics: "+strings.Join(kw, ", "))
	}
	var names []string
	for _, p := range sc.Products {
		if p.Title != "" && len(names) < 5 {
			names = append(names, p.Title)
		}
	}
	if len(names) > 0 {
		lines = append(lines, "Featured Products: "+strings.Join(names, ", "))
	}
	lines = append(lines, "Be specific, upbeat, and avoid filler or self-references.")
	return strings.Join(lines, "\n")
}

func classifySystemPrompt(categories []models.Category) string {
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = string(c)
	}
	return strings.Join([]string{
		persona,
		"You classify web pages into predefined categories.",
		"Possible categories: " + strings.Join(names, ", ") + ".",
		`Respond with JSON: {"category":"<category>","reason":"short explanation"}.`,
		"The reason must mention concrete page elements.",
	}, "\n")
}

func classifyPrompt(text, title, url string) string {
	return strings.Join([]string{
		"URL: " + url,
		"TITLE: " + title,
		"CONTENT SNIPPET:",
		clip(text, 2000),
		"",
		"Respond now.",
	}, "\n")
}

func actionsSystemPrompt() string {
	return strings.Join([]string{
		persona,
		"Create exactly 3 useful, imperative follow-up actions for the current page.",
		`Respond with JSON ONLY on one line: {"actions":["...","...","..."]}`,
		"Start each action with a strong verb. No emojis, no ending punctuation, at most 110 characters each.",
		"Make actions distinct: a quick win, a deeper dive and a next step.",
		"Use page signals when present (prices, deadlines, specs, ratings, availability).",
	}, "\n")
}

func actionsPrompt(category models.Category, summary, url string) string {
	lines := []string{"Category: " + category.Label()}
	if url != "" {
		lines = append(lines, "URL: "+url)
	}
	if summary != "" {
		lines = append(lines, "Summary: "+summary)
	}
	lines = append(lines, "", "Actions:")
	return strings.Join(lines, "\n")
}

func oneLinerSystemPrompt() string {
	return strings.Join([]string{
		persona,
		"Write one short activity line (at most 60 characters) in English.",
		"Describe what the user is doing, not the website.",
		"Plain text only. No quotes, no emojis, no trailing punctuation.",
		"Use present-progressive or a concise noun phrase, e.g. Shopping for headphones.",
		"If useful signals are missing, output: Browsing this page",
	}, "\n")
}

func oneLinerPrompt(oc OneLinerContext) string {
	var lines []string
	if oc.Title != "" {
		lines = append(lines, "Page: "+oc.Title)
	}
	lines = append(lines,
		"Category: "+oc.Category.Label(),
		"Content snippet:",
		clip(oc.Text, 500),
		"",
		"One-liner:",
	)
	return strings.Join(lines, "\n")
}

func productSystemPrompt() string {
	return strings.Join([]string{
		persona,
		"Select the single best listing from the PROVIDED CANDIDATES ONLY.",
		`Respond with JSON ONLY on one line: {"bestTitle":"<exact candidate title>","reason":"<=140 characters"}.`,
		"Use the title exactly as given. Do not invent titles, specs, prices or sellers.",
		"Prefer availability, then authorized sellers, then total cost, then rating with enough reviews.",
		"The reason must cite 2 or 3 concrete advantages.",
	}, "\n")
}

func coachSystemPrompt() string {
	return strings.Join([]string{
		"Output plain text only: one heading per category, then short bullets starting with \"• \".",
		"Use only the provided facts. No prefaces, no numbered lists, no code fences.",
		"Under each heading give 2-3 facts, then Pros and Cons bullets only when derivable.",
		"End with a single line naming the best next step for the user.",
	}, "\n")
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
