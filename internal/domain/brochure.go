package domain

import (
	"fmt"
	"net/url"
	"strings"
)

// DefaultTitle is used when a page has no title or could not be fetched.
const DefaultTitle = "No title found"

// Tone selects the writing style of the generated brochure.
type Tone string

const (
	ToneProfessional  Tone = "professional"
	ToneHumorous      Tone = "humorous"
	ToneInspirational Tone = "inspirational"
	ToneTechnical     Tone = "technical"
)

// ParseTone maps a user-supplied string onto a known tone.
func ParseTone(value string) (Tone, error) {
	switch Tone(strings.ToLower(strings.TrimSpace(value))) {
	case ToneProfessional:
		return ToneProfessional, nil
	case ToneHumorous:
		return ToneHumorous, nil
	case ToneInspirational:
		return ToneInspirational, nil
	case ToneTechnical:
		return ToneTechnical, nil
	}
	return "", fmt.Errorf("unknown tone %q (expected professional, humorous, inspirational or technical)", value)
}

// BrochureRequest carries the validated input for one generation run.
type BrochureRequest struct {
	CompanyName string
	URL         string
	Tone        Tone
}

// Validate rejects the request before any network activity happens.
func (r BrochureRequest) Validate() error {
	if strings.TrimSpace(r.CompanyName) == "" {
		return fmt.Errorf("company name is required")
	}
	if strings.TrimSpace(r.URL) == "" {
		return fmt.Errorf("website url is required")
	}
	parsed, err := url.Parse(r.URL)
	if err != nil {
		return fmt.Errorf("invalid website url %s: %w", r.URL, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("website url %s must be absolute (scheme and host)", r.URL)
	}
	if _, err := ParseTone(string(r.Tone)); err != nil {
		return err
	}
	return nil
}

// PageContent is the cleaned result of fetching a single page.
type PageContent struct {
	URL   string
	Title string
	Body  string
	Links []string
}

// Contents renders the page the way the brochure prompt expects it.
func (p PageContent) Contents() string {
	return fmt.Sprintf("Webpage Title: %s\nWebpage Contents:\n%s\n\n", p.Title, p.Body)
}

// LinkCandidate is a model-selected sub-page with its semantic category.
type LinkCandidate struct {
	Category string
	URL      string
}

// IsAbsolute reports whether the candidate URL carries scheme and host.
func (c LinkCandidate) IsAbsolute() bool {
	parsed, err := url.Parse(c.URL)
	return err == nil && parsed.Scheme != "" && parsed.Host != ""
}

// Section is one labeled block of the aggregated document.
type Section struct {
	Label     string
	SourceURL string
	Body      string
}

// Document is the ordered aggregate fed to the brochure writer. The landing
// page is always the first section.
type Document struct {
	Sections []Section
}

// Render serializes the document with explicit section markers so the model
// can tell the pages apart.
func (d Document) Render() string {
	var b strings.Builder
	for _, s := range d.Sections {
		fmt.Fprintf(&b, "== START: Content from %s Page (%s) ==\n%s== END: Content from %s Page ==\n\n",
			s.Label, s.SourceURL, s.Body, s.Label)
	}
	return b.String()
}
