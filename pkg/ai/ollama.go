package ai

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/dtnitsch/actionsense/models"
)

const (
	defaultHTTPTimeout = 3 * time.Minute
	summaryChunkRunes  = 11_500
)

type options struct {
	Temperature float64 `json:"temperature"`
	TopK        int     `json:"top_k"`
	NumPredict  int     `json:"num_predict"`
}

// Ollama talks to an Ollama server's /api/generate endpoint.
type Ollama struct {
	host   string
	model  string
	client *http.Client
}

// NewOllama builds a provider for host and model. A nil client gets a long
// timeout; callers bound each call with their context.
func NewOllama(host, model string, client *http.Client) *Ollama {
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &Ollama{host: strings.TrimRight(host, "/"), model: model, client: client}
}

func (o *Ollama) Classify(ctx context.Context, text, title, url string) (*Classification, error) {
	raw, err := o.generate(ctx, classifySystemPrompt(models.Categories), classifyPrompt(text, title, url), "json",
		options{Temperature: 0, TopK: 1, NumPredict: 80})
	if err != nil {
		return nil, err
	}
	return ParseClassification(raw, models.Categories), nil
}

// Summarize summarizes text directly when it fits one chunk; longer text is
// summarized per chunk and the partial notes are summarized again.
func (o *Ollama) Summarize(ctx context.Context, text string, sc SummaryContext) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", nil
	}
	system := summarySystemPrompt(sc)
	opts := options{Temperature: 0.3, TopK: 3, NumPredict: 160}

	chunks := ChunkText(text, summaryChunkRunes)
	if len(chunks) == 1 {
		raw, err := o.generate(ctx, system, "CONTENT:\n"+chunks[0], "", opts)
		if err != nil {
			return "", err
		}
		return FormatSummary(raw, text), nil
	}

	var notes []string
	for _, chunk := range chunks {
		raw, err := o.generate(ctx, system, "CONTENT:\n"+chunk, "", opts)
		if err != nil {
			return "", err
		}
		if raw != "" {
			notes = append(notes, raw)
		}
	}
	raw, err := o.generate(ctx, system,
		"Summarize these notes in 2 upbeat sentences highlighting key benefits and a recommended next step:\n"+
			strings.Join(notes, "\n"), "", opts)
	if err != nil {
		return "", err
	}
	return FormatSummary(raw, text), nil
}

func (o *Ollama) GenerateActions(ctx context.Context, category models.Category, summary, url string) ([]string, error) {
	raw, err := o.generate(ctx, actionsSystemPrompt(), actionsPrompt(category, summary, url), "",
		options{Temperature: 0.2, TopK: 3, NumPredict: 80})
	if err != nil {
		return nil, err
	}
	return ParseActions(raw), nil
}

func (o *Ollama) OneLiner(ctx context.Context, oc OneLinerContext) (string, error) {
	if strings.TrimSpace(oc.Text) == "" {
		return "", nil
	}
	raw, err := o.generate(ctx, oneLinerSystemPrompt(), oneLinerPrompt(oc), "",
		options{Temperature: 0.3, TopK: 2, NumPredict: 20})
	if err != nil {
		return "", err
	}
	return CleanOneLiner(raw), nil
}

func (o *Ollama) AdviseProducts(ctx context.Context, candidates []models.ScoredItem, pc PriceContext) (*models.ProductAdvice, error) {
	if len(candidates) == 0 {
		return nil, nil
	}
	if len(candidates) > 3 {
		candidates = candidates[:3]
	}
	listings, err := json.MarshalIndent(candidates, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode candidates: %w", err)
	}
	priceCtx, err := json.MarshalIndent(pc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode price context: %w", err)
	}
	prompt := strings.Join([]string{
		"Product listings (top candidates with scores):",
		string(listings),
		"Price context:",
		string(priceCtx),
		"",
		"Respond now with JSON only.",
	}, "\n")

	raw, err := o.generate(ctx, productSystemPrompt(), prompt, "json",
		options{Temperature: 0.2, TopK: 3, NumPredict: 80})
	if err != nil {
		return nil, err
	}
	return ParseProductAdvice(raw), nil
}

func (o *Ollama) Coach(ctx context.Context, in CoachInput) (string, error) {
	body, err := json.MarshalIndent(in, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode coach input: %w", err)
	}
	raw, err := o.generate(ctx, coachSystemPrompt(),
		"Browsing analytics, recent history and weekly focus metrics:\n"+string(body)+"\n\nProvide coaching summary:", "",
		options{Temperature: 0.6, TopK: 5, NumPredict: 300})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(stripMarkup(raw)), nil
}

// ModelVersion identifies the installed model by name and digest so a model
// update can be detected across restarts.
func (o *Ollama) ModelVersion(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.host+"/api/tags", nil)
	if err != nil {
		return UnknownVersion, err
	}
	resp, err := o.client.Do(req)
	if err != nil {
		return UnknownVersion, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return UnknownVersion, fmt.Errorf("ollama API error: %s", resp.Status)
	}

	var tags struct {
		Models []struct {
			Name   string `json:"name"`
			Digest string `json:"digest"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return UnknownVersion, fmt.Errorf("failed to decode model list: %w", err)
	}
	for _, m := range tags.Models {
		if m.Name == o.model || strings.TrimSuffix(m.Name, ":latest") == o.model {
			digest := m.Digest
			if len(digest) > 12 {
				digest = digest[:12]
			}
			return m.Name + "@" + digest, nil
		}
	}
	return UnknownVersion, nil
}

func (o *Ollama) generate(ctx context.Context, system, prompt, format string, opts options) (string, error) {
	payload := map[string]any{
		"model":   o.model,
		"system":  system,
		"prompt":  prompt,
		"stream":  false,
		"options": opts,
	}
	if format != "" {
		payload["format"] = format
	}
	buf, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.host+"/api/generate", bytes.NewReader(buf))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("ollama API error: %s (%s)", resp.Status, string(body))
	}

	var parsed struct {
		Response string `json:"response"`
		Done     bool   `json:"done"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", err
	}
	return strings.TrimSpace(parsed.Response), nil
}
