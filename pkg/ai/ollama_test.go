package ai

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/dtnitsch/actionsense/models"
	"github.com/dtnitsch/actionsense/pkg/aiqueue"
	"github.com/dtnitsch/actionsense/pkg/battery"
)

type generatePayload struct {
	Model   string  `json:"model"`
	System  string  `json:"system"`
	Prompt  string  `json:"prompt"`
	Stream  bool    `json:"stream"`
	Format  string  `json:"format"`
	Options options `json:"options"`
}

// newOllamaServer answers /api/generate with respond(payload).
func newOllamaServer(t *testing.T, respond func(p generatePayload) string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/generate":
			var p generatePayload
			if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
				t.Errorf("failed to decode payload: %v", err)
			}
			if p.Stream {
				t.Error("expected streaming to be disabled")
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{"response": respond(p), "done": true})
		case "/api/tags":
			w.Write([]byte(`{"models":[{"name":"gemma3:1b","digest":"a2af6cc3eb7fa8be8504abaf9b04e88f17a119ec3f04a3addf55f92841195f5a"}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestOllamaClassify(t *testing.T) {
	server := newOllamaServer(t, func(p generatePayload) string {
		if p.Model != "gemma3:1b" {
			t.Errorf("model = %s", p.Model)
		}
		if p.Format != "json" {
			t.Errorf("format = %q, want json", p.Format)
		}
		if !strings.Contains(p.System, "Possible categories: shopping, learning") {
			t.Errorf("system prompt missing categories: %s", p.System)
		}
		if !strings.Contains(p.Prompt, "TITLE: Go Tour") {
			t.Errorf("prompt missing title: %s", p.Prompt)
		}
		return `{"category":"learning","reason":"interactive lessons"}`
	})

	o := NewOllama(server.URL, "gemma3:1b", server.Client())
	got, err := o.Classify(context.Background(), "Welcome to the tour", "Go Tour", "https://go.dev/tour")
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	want := &Classification{Category: models.CategoryLearning, Reason: "interactive lessons"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Classify() = %+v, want %+v", got, want)
	}
}

func TestOllamaSummarizeChunks(t *testing.T) {
	var calls int32
	server := newOllamaServer(t, func(p generatePayload) string {
		n := atomic.AddInt32(&calls, 1)
		if strings.HasPrefix(p.Prompt, "Summarize these notes") {
			return "overall the page teaches testing"
		}
		return "partial " + string(rune('a'+n))
	})

	o := NewOllama(server.URL, "gemma3:1b", server.Client())
	text := strings.Repeat("x", summaryChunkRunes+10)
	got, err := o.Summarize(context.Background(), text, SummaryContext{Title: "Testing"})
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if got != "Overall the page teaches testing." {
		t.Errorf("Summarize() = %q", got)
	}
	if calls != 3 {
		t.Errorf("generate calls = %d, want 3", calls)
	}
}

func TestOllamaActionsAndOneLiner(t *testing.T) {
	server := newOllamaServer(t, func(p generatePayload) string {
		if strings.Contains(p.Prompt, "One-liner:") {
			return `"Learning Go concurrency"`
		}
		return `{"actions":["Bookmark section","Copy code sample","Open related API"]}`
	})
	o := NewOllama(server.URL, "gemma3:1b", server.Client())

	actions, err := o.GenerateActions(context.Background(), models.CategoryLearning, "About goroutines", "")
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"Bookmark section", "Copy code sample", "Open related API"}; !reflect.DeepEqual(actions, want) {
		t.Errorf("GenerateActions() = %q", actions)
	}

	line, err := o.OneLiner(context.Background(), OneLinerContext{Title: "Go", Text: "goroutines", Category: models.CategoryLearning})
	if err != nil || line != "Learning Go concurrency" {
		t.Errorf("OneLiner() = %q, %v", line, err)
	}

	line, err = o.OneLiner(context.Background(), OneLinerContext{Title: "Go"})
	if err != nil || line != "" {
		t.Errorf("OneLiner() without text = %q, %v", line, err)
	}
}

func TestOllamaAdviseProducts(t *testing.T) {
	server := newOllamaServer(t, func(p generatePayload) string {
		if !strings.Contains(p.Prompt, `"title": "Widget"`) {
			t.Errorf("prompt missing candidates: %s", p.Prompt)
		}
		return `{"bestTitle":"Widget","reason":"lower price and free returns"}`
	})
	o := NewOllama(server.URL, "gemma3:1b", server.Client())

	got, err := o.AdviseProducts(context.Background(), []models.ScoredItem{{Title: "Widget", PriceValue: 40}}, PriceContext{Title: "widget"})
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.BestTitle != "Widget" || got.Reason != "lower price and free returns" {
		t.Errorf("AdviseProducts() = %+v", got)
	}

	got, err = o.AdviseProducts(context.Background(), nil, PriceContext{})
	if err != nil || got != nil {
		t.Errorf("AdviseProducts(nil) = %+v, %v", got, err)
	}
}

func TestOllamaModelVersion(t *testing.T) {
	server := newOllamaServer(t, func(generatePayload) string { return "" })

	got, err := NewOllama(server.URL, "gemma3:1b", server.Client()).ModelVersion(context.Background())
	if err != nil || got != "gemma3:1b@a2af6cc3eb7f" {
		t.Errorf("ModelVersion() = %q, %v", got, err)
	}

	got, err = NewOllama(server.URL, "llama3", server.Client()).ModelVersion(context.Background())
	if err != nil || got != UnknownVersion {
		t.Errorf("ModelVersion() missing model = %q, %v", got, err)
	}
}

func TestOllamaAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	_, err := NewOllama(server.URL, "gemma3:1b", server.Client()).Classify(context.Background(), "t", "t", "u")
	if err == nil || !strings.Contains(err.Error(), "ollama API error") {
		t.Errorf("Classify() error = %v", err)
	}
}

type lowBattery struct{}

func (lowBattery) Status(context.Context) (battery.Status, error) {
	return battery.Status{Present: true, Level: 0.05}, nil
}

type slowProvider struct {
	Unavailable
	delay time.Duration
}

func (p slowProvider) OneLiner(ctx context.Context, oc OneLinerContext) (string, error) {
	time.Sleep(p.delay)
	return "too late", nil
}

func TestClientRoutesThroughQueue(t *testing.T) {
	server := newOllamaServer(t, func(generatePayload) string {
		return `{"category":"shopping","reason":"cart"}`
	})
	q := aiqueue.New(aiqueue.Options{DefaultTimeout: time.Second})
	c := NewClient(NewOllama(server.URL, "gemma3:1b", server.Client()), q)

	got, err := c.Classify(context.Background(), "Buy now", "Shop", "https://shop.example")
	if err != nil || got == nil || got.Category != models.CategoryShopping {
		t.Errorf("Classify() = %+v, %v", got, err)
	}
}

func TestClientBatteryLow(t *testing.T) {
	q := aiqueue.New(aiqueue.Options{Gate: &aiqueue.Gate{Probe: lowBattery{}, Threshold: 0.25}})
	c := NewClient(Unavailable{}, q)

	if _, err := c.Summarize(context.Background(), "text", SummaryContext{}); !errors.Is(err, aiqueue.ErrBatteryLow) {
		t.Errorf("Summarize() error = %v, want ErrBatteryLow", err)
	}
}

func TestClientTimeoutLabel(t *testing.T) {
	q := aiqueue.New(aiqueue.Options{
		Timeouts:       map[string]time.Duration{LabelOneLiner: 10 * time.Millisecond},
		DefaultTimeout: time.Second,
	})
	c := NewClient(slowProvider{delay: 50 * time.Millisecond}, q)

	_, err := c.OneLiner(context.Background(), OneLinerContext{Text: "x"})
	if err == nil || err.Error() != "AI_TIMEOUT:generateOneLiner" {
		t.Errorf("OneLiner() error = %v", err)
	}
}

func TestUnavailableProvider(t *testing.T) {
	c := NewClient(Unavailable{}, aiqueue.New(aiqueue.Options{}))
	got, err := c.Classify(context.Background(), "x", "y", "z")
	if err != nil || got != nil {
		t.Errorf("Classify() = %+v, %v; want nil, nil", got, err)
	}
}
