package models

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/goccy/go-json"
)

// Price is a listing price as text. It decodes from a JSON string
// ("$1,299.00") or a JSON number (1299), keeping numbers in their
// literal form.
type Price string

func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = Price(s)
		return nil
	}
	if _, err := strconv.ParseFloat(string(data), 64); err != nil {
		return fmt.Errorf("price must be a string or number, got %s", data)
	}
	*p = Price(data)
	return nil
}

// Product is a raw listing as scraped from a page.
type Product struct {
	Title        string   `json:"title" yaml:"title"`
	Price        Price    `json:"price,omitempty" yaml:"price,omitempty"`
	Currency     string   `json:"currency,omitempty" yaml:"currency,omitempty"`
	Rating       float64  `json:"rating,omitempty" yaml:"rating,omitempty"`
	ReviewCount  int      `json:"reviewCount,omitempty" yaml:"review_count,omitempty"`
	Features     []string `json:"features,omitempty" yaml:"features,omitempty"`
	Site         string   `json:"site,omitempty" yaml:"site,omitempty"`
	Link         string   `json:"link,omitempty" yaml:"link,omitempty"`
	Brand        string   `json:"brand,omitempty" yaml:"brand,omitempty"`
	Availability string   `json:"availability,omitempty" yaml:"availability,omitempty"`
	Source       string   `json:"source,omitempty" yaml:"source,omitempty"` // jsonld, opengraph, microdata, dom
}

// PageSignal is the bundle the extractor sends for a tab. ContentVersion and
// TextHash are optional; nil means "not declared by the caller".
type PageSignal struct {
	TabID          int       `json:"tabId" yaml:"tab_id"`
	WindowID       int       `json:"windowId,omitempty" yaml:"window_id,omitempty"`
	Title          string    `json:"title" yaml:"title"`
	URL            string    `json:"url" yaml:"url"`
	Description    string    `json:"description,omitempty" yaml:"description,omitempty"`
	Text           string    `json:"text,omitempty" yaml:"text,omitempty"`
	Keywords       []string  `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	Products       []Product `json:"products,omitempty" yaml:"products,omitempty"`
	Language       string    `json:"language,omitempty" yaml:"language,omitempty"`
	ContentVersion *int      `json:"contentVersion,omitempty" yaml:"content_version,omitempty"`
	TextHash       *string   `json:"textHash,omitempty" yaml:"text_hash,omitempty"`
	MajorChange    bool      `json:"majorChange,omitempty" yaml:"major_change,omitempty"`
	Timestamp      time.Time `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
}

const hashWindow = 10_000

// HashText fingerprints extracted text: h = h*31 + b over the first 10k bytes,
// truncated to 32 bits and rendered as lower-case hex. Empty text hashes to "".
func HashText(text string) string {
	if len(text) > hashWindow {
		text = text[:hashWindow]
	}
	if text == "" {
		return ""
	}
	var h uint32
	for i := 0; i < len(text); i++ {
		h = h*31 + uint32(text[i])
	}
	return strconv.FormatUint(uint64(h), 16)
}
