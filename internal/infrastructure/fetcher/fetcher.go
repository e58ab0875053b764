package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"BrochureGen/internal/domain"
	"BrochureGen/internal/ports"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/117.0.0.0 Safari/537.36"

// noiseSelector matches elements stripped from the body before extraction.
const noiseSelector = "script, style, img, input, nav, footer, header"

// Fetcher retrieves one page per call and extracts cleaned text plus
// absolute outbound links. Every fetch is a single best-effort attempt.
type Fetcher struct {
	client    *http.Client
	userAgent string
}

var _ ports.PageFetcher = (*Fetcher)(nil)

// New wires an HTTP client; a nil client gets a 10 second timeout.
func New(client *http.Client, userAgent string) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &Fetcher{client: client, userAgent: userAgent}
}

// Fetch performs a single GET and parses the response as HTML. On any
// failure the returned PageContent is still valid: default title, empty
// body, no links. The error tells the caller what went wrong.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (domain.PageContent, error) {
	page := domain.PageContent{URL: pageURL, Title: domain.DefaultTitle}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return page, fmt.Errorf("build request for %s: %w", pageURL, err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return page, fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return page, fmt.Errorf("fetch %s: unexpected status %s", pageURL, resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return page, fmt.Errorf("parse %s: %w", pageURL, err)
	}

	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		page.Title = title
	}

	// Removal happens before both text and link extraction, so anchors
	// inside navigation chrome never reach the classifier.
	body := doc.Find("body").First()
	if body.Length() > 0 {
		body.Find(noiseSelector).Remove()
		page.Body = bodyText(body)
	}
	page.Links = extractLinks(doc, pageURL)

	return page, nil
}

// bodyText walks the node tree depth-first and joins trimmed text segments
// with newlines.
func bodyText(body *goquery.Selection) string {
	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				parts = append(parts, text)
			}
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	for _, n := range body.Nodes {
		walk(n)
	}
	return strings.Join(parts, "\n")
}

// extractLinks resolves every anchor href against the page URL, skipping
// in-page anchors, mailto: and tel: links.
func extractLinks(doc *goquery.Document, pageURL string) []string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}

	var links []string
	doc.Find("a").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		href = strings.TrimSpace(href)
		if href == "" ||
			strings.HasPrefix(href, "#") ||
			strings.HasPrefix(href, "mailto:") ||
			strings.HasPrefix(href, "tel:") {
			return
		}

		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		links = append(links, base.ResolveReference(ref).String())
	})

	return links
}
