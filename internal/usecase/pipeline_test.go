package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"BrochureGen/internal/domain"
	"BrochureGen/internal/ports"
)

type fakeFetcher struct {
	pages map[string]domain.PageContent
	errs  map[string]error
	calls []string
}

func (f *fakeFetcher) Fetch(_ context.Context, pageURL string) (domain.PageContent, error) {
	f.calls = append(f.calls, pageURL)
	if err, ok := f.errs[pageURL]; ok {
		return domain.PageContent{URL: pageURL, Title: domain.DefaultTitle}, err
	}
	if page, ok := f.pages[pageURL]; ok {
		return page, nil
	}
	return domain.PageContent{URL: pageURL, Title: domain.DefaultTitle}, nil
}

type fakeClassifier struct {
	candidates []domain.LinkCandidate
	err        error
	gotLinks   []string
}

func (c *fakeClassifier) Classify(_ context.Context, _ string, links []string) ([]domain.LinkCandidate, error) {
	c.gotLinks = links
	if c.err != nil {
		return nil, c.err
	}
	return c.candidates, nil
}

type fakeStream struct {
	fragments []string
	err       error
	pos       int
	failed    bool
}

func (s *fakeStream) Next() (string, bool) {
	if s.pos < len(s.fragments) {
		frag := s.fragments[s.pos]
		s.pos++
		return frag, true
	}
	if s.err != nil && !s.failed {
		s.failed = true
		return "", true
	}
	return "", false
}

func (s *fakeStream) Err() error {
	if s.failed {
		return s.err
	}
	return nil
}

type fakeWriter struct {
	fragments  []string
	setupErr   error
	streamErr  error
	gotCompany string
	gotDoc     domain.Document
	gotTone    domain.Tone
}

func (w *fakeWriter) Stream(_ context.Context, companyName string, doc domain.Document, tone domain.Tone) (ports.BrochureStream, error) {
	w.gotCompany = companyName
	w.gotDoc = doc
	w.gotTone = tone
	if w.setupErr != nil {
		return nil, w.setupErr
	}
	return &fakeStream{fragments: w.fragments, err: w.streamErr}, nil
}

type recordingSink struct {
	infos  []string
	warns  []string
	errors []string
}

func (s *recordingSink) Info(msg string)  { s.infos = append(s.infos, msg) }
func (s *recordingSink) Warn(msg string)  { s.warns = append(s.warns, msg) }
func (s *recordingSink) Error(msg string) { s.errors = append(s.errors, msg) }

func newTestPipeline(f *fakeFetcher, c *fakeClassifier, w *fakeWriter, s *recordingSink) *Pipeline {
	return NewPipeline(PipelineDeps{
		Fetcher:    f,
		Classifier: c,
		Writer:     w,
		Sink:       s,
	})
}

func drain(t *testing.T, stream ports.BrochureStream) []string {
	t.Helper()

	var got []string
	for {
		frag, ok := stream.Next()
		if !ok {
			return got
		}
		got = append(got, frag)
	}
}

func TestAggregateLandingOnlyWhenNoCandidates(t *testing.T) {
	t.Parallel()

	sink := &recordingSink{}
	p := newTestPipeline(&fakeFetcher{}, &fakeClassifier{}, &fakeWriter{}, sink)

	doc := p.Aggregate(context.Background(), "https://acme.test")

	if len(doc.Sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(doc.Sections))
	}
	if doc.Sections[0].Label != "Landing" {
		t.Fatalf("unexpected label: %s", doc.Sections[0].Label)
	}
	if len(sink.warns) == 0 {
		t.Fatal("expected a no-candidates warning")
	}
}

func TestAggregateSurvivesTotalFailure(t *testing.T) {
	t.Parallel()

	sink := &recordingSink{}
	fetch := &fakeFetcher{errs: map[string]error{
		"https://acme.test": errors.New("connection refused"),
	}}
	classify := &fakeClassifier{err: errors.New("api down")}
	p := newTestPipeline(fetch, classify, &fakeWriter{}, sink)

	doc := p.Aggregate(context.Background(), "https://acme.test")

	if len(doc.Sections) != 1 {
		t.Fatalf("expected 1 section under total failure, got %d", len(doc.Sections))
	}
	if !strings.Contains(doc.Sections[0].Body, domain.DefaultTitle) {
		t.Fatalf("expected the default title in the section body:\n%s", doc.Sections[0].Body)
	}
	if len(sink.warns) == 0 || len(sink.errors) == 0 {
		t.Fatalf("expected warn and error notifications, got warns=%v errors=%v", sink.warns, sink.errors)
	}
}

func TestAggregateAppendsCandidatesInOrder(t *testing.T) {
	t.Parallel()

	sink := &recordingSink{}
	fetch := &fakeFetcher{pages: map[string]domain.PageContent{
		"https://acme.test":         {URL: "https://acme.test", Title: "Acme Inc", Body: "landing"},
		"https://acme.test/about":   {URL: "https://acme.test/about", Title: "About", Body: "about"},
		"https://acme.test/careers": {URL: "https://acme.test/careers", Title: "Careers", Body: "jobs"},
	}}
	classify := &fakeClassifier{candidates: []domain.LinkCandidate{
		{Category: "About", URL: "https://acme.test/about"},
		{Category: "relative", URL: "/broken"},
		{Category: "Careers", URL: "https://acme.test/careers"},
	}}
	p := newTestPipeline(fetch, classify, &fakeWriter{}, sink)

	doc := p.Aggregate(context.Background(), "https://acme.test")

	wantLabels := []string{"Landing", "About", "Careers"}
	if len(doc.Sections) != len(wantLabels) {
		t.Fatalf("expected %d sections, got %d", len(wantLabels), len(doc.Sections))
	}
	for i, want := range wantLabels {
		if doc.Sections[i].Label != want {
			t.Fatalf("section %d: expected label %s, got %s", i, want, doc.Sections[i].Label)
		}
	}

	wantCalls := []string{"https://acme.test", "https://acme.test/about", "https://acme.test/careers"}
	if len(fetch.calls) != len(wantCalls) {
		t.Fatalf("expected fetches %v, got %v", wantCalls, fetch.calls)
	}
}

func TestAggregateSubPageFailureIsNonFatal(t *testing.T) {
	t.Parallel()

	sink := &recordingSink{}
	fetch := &fakeFetcher{
		pages: map[string]domain.PageContent{
			"https://acme.test": {URL: "https://acme.test", Title: "Acme Inc", Body: "landing"},
		},
		errs: map[string]error{
			"https://acme.test/about": errors.New("timeout"),
		},
	}
	classify := &fakeClassifier{candidates: []domain.LinkCandidate{
		{Category: "About", URL: "https://acme.test/about"},
	}}
	p := newTestPipeline(fetch, classify, &fakeWriter{}, sink)

	doc := p.Aggregate(context.Background(), "https://acme.test")

	if len(doc.Sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(doc.Sections))
	}
	if !strings.Contains(doc.Sections[1].Body, domain.DefaultTitle) {
		t.Fatalf("failed sub-page should degrade to empty content:\n%s", doc.Sections[1].Body)
	}
	if len(sink.warns) == 0 {
		t.Fatal("expected a fetch warning")
	}
}

func TestGenerateBrochureRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	sink := &recordingSink{}
	fetch := &fakeFetcher{}
	p := newTestPipeline(fetch, &fakeClassifier{}, &fakeWriter{}, sink)

	req := domain.BrochureRequest{CompanyName: "", URL: "https://acme.test", Tone: domain.ToneProfessional}
	if _, err := p.GenerateBrochure(context.Background(), req); err == nil {
		t.Fatal("expected a validation error")
	}

	if len(fetch.calls) != 0 {
		t.Fatalf("pipeline must not fetch on invalid input, fetched %v", fetch.calls)
	}
	if len(sink.errors) == 0 {
		t.Fatal("expected the validation failure on the sink")
	}
}

func TestGenerateBrochureSetupFailureDegrades(t *testing.T) {
	t.Parallel()

	sink := &recordingSink{}
	writer := &fakeWriter{setupErr: errors.New("model unavailable")}
	p := newTestPipeline(&fakeFetcher{}, &fakeClassifier{}, writer, sink)

	req := domain.BrochureRequest{CompanyName: "Acme", URL: "https://acme.test", Tone: domain.ToneProfessional}
	stream, err := p.GenerateBrochure(context.Background(), req)
	if err != nil {
		t.Fatalf("setup failures must not surface as errors, got %v", err)
	}

	got := drain(t, stream)
	if len(got) != 1 || got[0] != "" {
		t.Fatalf("expected a single empty sentinel fragment, got %q", got)
	}
	if stream.Err() == nil {
		t.Fatal("expected the setup failure on Err")
	}
	if len(sink.errors) == 0 {
		t.Fatal("expected the setup failure on the sink")
	}
}

func TestGenerateBrochureMidStreamFailureNotifiesOnce(t *testing.T) {
	t.Parallel()

	sink := &recordingSink{}
	writer := &fakeWriter{fragments: []string{"# Acme"}, streamErr: errors.New("stream cut")}
	p := newTestPipeline(&fakeFetcher{}, &fakeClassifier{}, writer, sink)

	req := domain.BrochureRequest{CompanyName: "Acme", URL: "https://acme.test", Tone: domain.ToneProfessional}
	stream, err := p.GenerateBrochure(context.Background(), req)
	if err != nil {
		t.Fatalf("GenerateBrochure error: %v", err)
	}

	got := drain(t, stream)
	if len(got) != 2 || got[0] != "# Acme" || got[1] != "" {
		t.Fatalf("expected the fragment plus one empty sentinel, got %q", got)
	}
	if stream.Err() == nil {
		t.Fatal("expected Err after early termination")
	}
	if len(sink.errors) != 1 {
		t.Fatalf("expected exactly one error notification, got %v", sink.errors)
	}
}

func TestGenerateBrochureEndToEnd(t *testing.T) {
	t.Parallel()

	sink := &recordingSink{}
	fetch := &fakeFetcher{pages: map[string]domain.PageContent{
		"https://acme.test": {
			URL:   "https://acme.test",
			Title: "Acme Inc",
			Body:  "landing text",
			Links: []string{"https://acme.test/about", "https://acme.test/careers"},
		},
		"https://acme.test/about":   {URL: "https://acme.test/about", Title: "About Acme", Body: "about text"},
		"https://acme.test/careers": {URL: "https://acme.test/careers", Title: "Work here", Body: "careers text"},
	}}
	classify := &fakeClassifier{candidates: []domain.LinkCandidate{
		{Category: "About", URL: "https://acme.test/about"},
		{Category: "Careers", URL: "https://acme.test/careers"},
	}}
	writer := &fakeWriter{fragments: []string{"# Acme Brochure\n", "We make anvils."}}
	p := newTestPipeline(fetch, classify, writer, sink)

	req := domain.BrochureRequest{CompanyName: "Acme", URL: "https://acme.test", Tone: domain.ToneProfessional}
	stream, err := p.GenerateBrochure(context.Background(), req)
	if err != nil {
		t.Fatalf("GenerateBrochure error: %v", err)
	}

	got := drain(t, stream)
	if len(got) != 2 || got[0] != "# Acme Brochure\n" {
		t.Fatalf("unexpected fragments: %q", got)
	}
	if stream.Err() != nil {
		t.Fatalf("expected clean finish, got %v", stream.Err())
	}

	if writer.gotCompany != "Acme" || writer.gotTone != domain.ToneProfessional {
		t.Fatalf("writer got company=%q tone=%q", writer.gotCompany, writer.gotTone)
	}

	wantLabels := []string{"Landing", "About", "Careers"}
	if len(writer.gotDoc.Sections) != len(wantLabels) {
		t.Fatalf("expected %d sections, got %d", len(wantLabels), len(writer.gotDoc.Sections))
	}
	for i, want := range wantLabels {
		if writer.gotDoc.Sections[i].Label != want {
			t.Fatalf("section %d: expected %s, got %s", i, want, writer.gotDoc.Sections[i].Label)
		}
	}

	if len(classify.gotLinks) != 2 {
		t.Fatalf("classifier should receive the filtered link list, got %v", classify.gotLinks)
	}

	rendered := writer.gotDoc.Render()
	if !strings.Contains(rendered, "== START: Content from Landing Page (https://acme.test) ==") {
		t.Fatalf("rendered document missing landing marker:\n%s", rendered)
	}
	if !strings.Contains(rendered, "Webpage Title: About Acme") {
		t.Fatalf("rendered document missing about section:\n%s", rendered)
	}
}

func TestTitleLabel(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"":            "Page",
		"about":       "About",
		"about us":    "About Us",
		"Careers":     "Careers",
		"  products ": "Products",
	}
	for in, want := range cases {
		if got := titleLabel(in); got != want {
			t.Fatalf("titleLabel(%q) = %q, want %q", in, got, want)
		}
	}
}
