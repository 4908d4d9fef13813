package sources

import (
	"bytes"
	"context"
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"github.com/spigell/web3-jobs/internal/transport"
)

// Document fetches rawURL with the source session and parses it as HTML.
func Document(ctx context.Context, client *transport.Client, rawURL string) (*goquery.Document, error) {
	body, err := client.Get(ctx, rawURL, nil)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html from %s: %w", rawURL, err)
	}

	return doc, nil
}

// Text returns the cleaned text of the first element matching any selector.
func Text(sel *goquery.Selection, selectors ...string) string {
	if node := First(sel, selectors...); node != nil {
		return CleanText(node.Text())
	}
	return ""
}

// First returns the first element matching the selectors in order, or nil.
func First(sel *goquery.Selection, selectors ...string) *goquery.Selection {
	for _, s := range selectors {
		if node := sel.Find(s).First(); node.Length() > 0 {
			return node
		}
	}
	return nil
}

// Texts collects the cleaned text of every element matching selector.
func Texts(sel *goquery.Selection, selector string) []string {
	var out []string
	sel.Find(selector).Each(func(_ int, s *goquery.Selection) {
		if t := CleanText(s.Text()); t != "" {
			out = append(out, t)
		}
	})
	return out
}
