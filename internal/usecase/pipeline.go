package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"BrochureGen/internal/domain"
	"BrochureGen/internal/ports"
)

// PipelineDeps wires all driven adapters into the brochure pipeline.
type PipelineDeps struct {
	Fetcher    ports.PageFetcher
	Classifier ports.LinkClassifier
	Writer     ports.BrochureWriter
	Sink       ports.StatusSink
	Logger     *slog.Logger
}

// Pipeline implements the fetch-classify-aggregate-generate workflow. Each
// run is strictly sequential and shares no state with other runs.
type Pipeline struct {
	fetcher    ports.PageFetcher
	classifier ports.LinkClassifier
	writer     ports.BrochureWriter
	sink       ports.StatusSink
	logger     *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		fetcher:    deps.Fetcher,
		classifier: deps.Classifier,
		writer:     deps.Writer,
		sink:       deps.Sink,
		logger:     deps.Logger,
	}
}

// GenerateBrochure runs the full pipeline and returns the brochure stream.
// Only input validation surfaces as an error; every adapter failure on the
// way degrades into a sink notification and a poorer result. The returned
// stream is single-pass.
func (p *Pipeline) GenerateBrochure(ctx context.Context, req domain.BrochureRequest) (ports.BrochureStream, error) {
	if err := req.Validate(); err != nil {
		p.sinkError(fmt.Sprintf("Invalid request: %v", err))
		return nil, fmt.Errorf("validate request: %w", err)
	}

	requestID := uuid.NewString()
	p.debug("generate brochure",
		"request_id", requestID,
		"company", req.CompanyName,
		"url", req.URL,
		"tone", req.Tone)

	doc := p.Aggregate(ctx, req.URL)
	p.debug("document aggregated", "request_id", requestID, "sections", len(doc.Sections))

	stream, err := p.writer.Stream(ctx, req.CompanyName, doc, req.Tone)
	if err != nil {
		p.sinkError(fmt.Sprintf("An error occurred during brochure generation: %v", err))
		return &failedStream{err: err}, nil
	}

	return &notifyingStream{inner: stream, sink: p.sink}, nil
}

// Aggregate builds the labeled document: the landing page always first, then
// each classifier-selected sub-page in the order the model returned them.
// The result has at least one section no matter what failed.
func (p *Pipeline) Aggregate(ctx context.Context, siteURL string) domain.Document {
	p.sinkInfo("Step 1: Scraping landing page...")
	landing, err := p.fetcher.Fetch(ctx, siteURL)
	if err != nil {
		p.sinkWarn(fmt.Sprintf("Could not fetch website %s: %v", siteURL, err))
	}

	doc := domain.Document{Sections: []domain.Section{{
		Label:     "Landing",
		SourceURL: siteURL,
		Body:      landing.Contents(),
	}}}

	p.sinkInfo("Step 2: Finding and scraping relevant sub-pages...")
	p.sinkInfo(fmt.Sprintf("AI is analyzing links from %s...", siteURL))
	candidates, err := p.classifier.Classify(ctx, siteURL, landing.Links)
	if err != nil {
		p.sinkError(fmt.Sprintf("An error occurred during AI link analysis: %v", err))
		candidates = nil
	}

	if len(candidates) == 0 {
		p.sinkWarn("No relevant sub-pages found by AI. Proceeding with landing page content only.")
		return doc
	}

	for _, cand := range candidates {
		// Model output is untrusted; relative or broken URLs are dropped.
		if !cand.IsAbsolute() {
			continue
		}

		label := titleLabel(cand.Category)
		p.sinkInfo(fmt.Sprintf("Scraping '%s' page: %s", label, cand.URL))

		page, err := p.fetcher.Fetch(ctx, cand.URL)
		if err != nil {
			p.sinkWarn(fmt.Sprintf("Could not fetch website %s: %v", cand.URL, err))
		}

		doc.Sections = append(doc.Sections, domain.Section{
			Label:     label,
			SourceURL: cand.URL,
			Body:      page.Contents(),
		})
	}

	return doc
}

// titleLabel turns a model-supplied category into a section label.
func titleLabel(category string) string {
	words := strings.Fields(category)
	if len(words) == 0 {
		return "Page"
	}
	for i, word := range words {
		runes := []rune(word)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// notifyingStream forwards fragments and converts an early termination into
// a single sink notification.
type notifyingStream struct {
	inner    ports.BrochureStream
	sink     ports.StatusSink
	reported bool
}

func (s *notifyingStream) Next() (string, bool) {
	frag, ok := s.inner.Next()
	if err := s.inner.Err(); err != nil && !s.reported {
		s.reported = true
		if s.sink != nil {
			s.sink.Error(fmt.Sprintf("An error occurred during brochure generation: %v", err))
		}
	}
	return frag, ok
}

func (s *notifyingStream) Err() error {
	return s.inner.Err()
}

// failedStream renders a stream-setup failure as the same one-empty-fragment
// sequence a mid-stream failure produces.
type failedStream struct {
	err     error
	emitted bool
}

func (s *failedStream) Next() (string, bool) {
	if s.emitted {
		return "", false
	}
	s.emitted = true
	return "", true
}

func (s *failedStream) Err() error {
	return s.err
}

func (p *Pipeline) sinkInfo(msg string) {
	if p.sink != nil {
		p.sink.Info(msg)
	}
}

func (p *Pipeline) sinkWarn(msg string) {
	if p.sink != nil {
		p.sink.Warn(msg)
	}
}

func (p *Pipeline) sinkError(msg string) {
	if p.sink != nil {
		p.sink.Error(msg)
	}
}

func (p *Pipeline) debug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}
