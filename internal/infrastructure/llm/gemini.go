package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"BrochureGen/internal/config"
	"BrochureGen/internal/domain"
	"BrochureGen/internal/ports"
)

const (
	classifySystemPrompt = "You are an expert assistant analyzing website links to identify pages for a company brochure. " +
		"Focus on 'About Us', 'Company', 'Solutions', 'Products', or 'Careers'. " +
		"Ensure all URLs are absolute. Ignore 'Terms of Service', 'Privacy Policy', social media, or login pages. " +
		"Respond ONLY with a JSON object: {\"links\": [{\"type\": \"page type\", \"url\": \"full_url\"}, ...]}"

	brochureSystemPrompt = "You are an expert marketing assistant. Write a compelling, %s company brochure " +
		"in Markdown format. Use the provided text scraped from the company's website. " +
		"Structure the brochure logically with clear headings. Highlight company culture, " +
		"products/solutions, and career opportunities if available."
)

// GeminiClient implements link classification and brochure streaming against
// the Gemini REST API.
type GeminiClient struct {
	endpoint   string
	model      string
	apiKey     string
	httpClient *http.Client
}

var _ ports.LinkClassifier = (*GeminiClient)(nil)
var _ ports.BrochureWriter = (*GeminiClient)(nil)

// NewGeminiClient builds a client from configuration.
func NewGeminiClient(cfg config.GeminiConfig) *GeminiClient {
	return &GeminiClient{
		endpoint: strings.TrimSuffix(cfg.Endpoint, "/"),
		model:    cfg.Model,
		apiKey:   cfg.APIKey,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

type generateRequest struct {
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	Contents          []content         `json:"contents"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMIMEType string `json:"response_mime_type,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Classify sends the link list with the classification instruction and
// parses the structured JSON answer into candidates.
func (c *GeminiClient) Classify(ctx context.Context, siteURL string, links []string) ([]domain.LinkCandidate, error) {
	if c.apiKey == "" || c.endpoint == "" || c.model == "" {
		return nil, fmt.Errorf("gemini client misconfigured")
	}

	userPrompt := fmt.Sprintf(
		"Base URL: %s\nHere are the links from the website. Return the relevant ones in the specified JSON format.\n\nLinks:\n%s",
		siteURL, strings.Join(links, "\n"))

	raw, err := c.generate(ctx, generateRequest{
		SystemInstruction: &content{Parts: []part{{Text: classifySystemPrompt}}},
		Contents:          []content{{Role: "user", Parts: []part{{Text: userPrompt}}}},
		GenerationConfig:  &generationConfig{ResponseMIMEType: "application/json"},
	})
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Links []struct {
			Type string `json:"type"`
			URL  string `json:"url"`
		} `json:"links"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("decode link selection: %w", err)
	}

	candidates := make([]domain.LinkCandidate, 0, len(parsed.Links))
	for _, link := range parsed.Links {
		if link.URL == "" {
			continue
		}
		candidates = append(candidates, domain.LinkCandidate{Category: link.Type, URL: link.URL})
	}

	return candidates, nil
}

// Stream opens a streaming generation call and returns a single-pass
// iterator over the emitted brochure fragments.
func (c *GeminiClient) Stream(ctx context.Context, companyName string, doc domain.Document, tone domain.Tone) (ports.BrochureStream, error) {
	if c.apiKey == "" || c.endpoint == "" || c.model == "" {
		return nil, fmt.Errorf("gemini client misconfigured")
	}

	userPrompt := fmt.Sprintf(
		"Company Name: %s\n\nHere is the collected content from the company's website. Use this to create the brochure.\n\n--- WEBSITE CONTENT ---\n%s",
		companyName, doc.Render())

	endpoint := fmt.Sprintf("%s/models/%s:streamGenerateContent?alt=sse", c.endpoint, c.model)
	resp, err := c.post(ctx, endpoint, generateRequest{
		SystemInstruction: &content{Parts: []part{{Text: fmt.Sprintf(brochureSystemPrompt, tone)}}},
		Contents:          []content{{Role: "user", Parts: []part{{Text: userPrompt}}}},
	})
	if err != nil {
		return nil, err
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &sseStream{body: resp.Body, scanner: scanner}, nil
}

func (c *GeminiClient) generate(ctx context.Context, payload generateRequest) (string, error) {
	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.endpoint, c.model)
	resp, err := c.post(ctx, endpoint, payload)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var decoded generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode gemini response: %w", err)
	}
	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var b strings.Builder
	for _, p := range decoded.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return b.String(), nil
}

func (c *GeminiClient) post(ctx context.Context, endpoint string, payload generateRequest) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal gemini payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call gemini: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		_ = resp.Body.Close()
		return nil, fmt.Errorf("gemini error %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}

	return resp, nil
}

// sseStream reads server-sent events from a streaming generation response.
// On a mid-stream failure it emits one empty sentinel fragment, then reports
// exhaustion; Err holds the failure afterwards.
type sseStream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	err     error
	done    bool
}

// Next returns the next text fragment. The stream is single-pass: after it
// reports false once, it stays exhausted.
func (s *sseStream) Next() (string, bool) {
	if s.done {
		return "", false
	}

	for s.scanner.Scan() {
		line := strings.TrimSpace(s.scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" || data == "[DONE]" {
			continue
		}

		var chunk generateResponse
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			s.fail(fmt.Errorf("decode stream chunk: %w", err))
			return "", true
		}

		if text := chunkText(chunk); text != "" {
			return text, true
		}
	}

	if err := s.scanner.Err(); err != nil {
		s.fail(fmt.Errorf("read stream: %w", err))
		return "", true
	}

	s.finish()
	return "", false
}

// Err reports why the stream ended early; nil after a clean finish.
func (s *sseStream) Err() error {
	return s.err
}

func (s *sseStream) fail(err error) {
	s.err = err
	s.finish()
}

func (s *sseStream) finish() {
	if s.done {
		return
	}
	s.done = true
	_ = s.body.Close()
}

func chunkText(resp generateResponse) string {
	var b strings.Builder
	for _, cand := range resp.Candidates {
		for _, p := range cand.Content.Parts {
			b.WriteString(p.Text)
		}
	}
	return b.String()
}
