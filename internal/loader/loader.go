// Package loader reads corpus files of {title, summary, date} records and
// prepares them for analysis.
package loader

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/cognicore/trendscope/pkg/trendscope"
)

// Record is one raw corpus entry. Absent fields decode to empty strings.
type Record struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Date    string `json:"date"`
}

// Load reads a JSON array of records from a file.
func Load(path string) ([]trendscope.SourceDoc, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open corpus: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes records and converts them to source documents. Feed
// summaries often carry HTML markup, which is stripped; dates must be ISO
// YYYY-MM-DD, anything else is treated as absent rather than failing the
// batch.
func Parse(r io.Reader) ([]trendscope.SourceDoc, error) {
	var records []Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode corpus: %w", err)
	}

	docs := make([]trendscope.SourceDoc, len(records))
	for i, rec := range records {
		docs[i] = trendscope.SourceDoc{
			Title:       stripMarkup(rec.Title),
			Summary:     stripMarkup(rec.Summary),
			PublishedAt: parseDate(rec.Date),
		}
	}
	return docs, nil
}

// parseDate parses an ISO YYYY-MM-DD date, returning nil for absent or
// malformed values.
func parseDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	ts, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil
	}
	ts = ts.UTC()
	return &ts
}

// stripMarkup collapses an HTML fragment to its text content.
func stripMarkup(s string) string {
	if !strings.Contains(s, "<") {
		return strings.TrimSpace(s)
	}

	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		// Fallback to string if parsing fails
		return strings.TrimSpace(s)
	}

	var buf strings.Builder
	var extractText func(*html.Node)
	extractText = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extractText(c)
		}
	}
	extractText(doc)

	return strings.TrimSpace(buf.String())
}
