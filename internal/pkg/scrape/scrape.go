// Package scrape fetches webpages and extracts their readable text for the
// outline flow.
package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Page is the readable content of a fetched webpage.
type Page struct {
	Title string
	Text  string
}

type Scraper struct {
	client *http.Client
}

func New() *Scraper {
	return &Scraper{
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// UseDefaultClient swaps in http.DefaultClient so the test transport can
// intercept requests.
func (s *Scraper) UseDefaultClient() {
	s.client = http.DefaultClient
}

// Fetch downloads a page and returns its raw HTML. Non-200 statuses are
// errors.
func (s *Scraper) Fetch(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request for %s: %w", rawURL, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: unexpected status %d", rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", rawURL, err)
	}
	return string(body), nil
}

// Extract pulls the title and block-level text out of a page, dropping
// script, style and chrome elements.
func Extract(rawHTML string) (Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return Page{}, fmt.Errorf("parse page: %w", err)
	}

	doc.Find("script, style, noscript, nav, header, footer").Remove()

	page := Page{Title: strings.TrimSpace(doc.Find("title").First().Text())}

	var blocks []string
	doc.Find("h1, h2, h3, h4, h5, h6, p, li").Each(func(_ int, sel *goquery.Selection) {
		if text := strings.TrimSpace(sel.Text()); text != "" {
			blocks = append(blocks, text)
		}
	})

	page.Text = strings.Join(blocks, "\n")
	return page, nil
}
