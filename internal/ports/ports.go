package ports

import (
	"context"

	"BrochureGen/internal/domain"
)

// PageFetcher retrieves and cleans a single page. A failed fetch still
// returns a usable zero-content PageContent next to the error; callers
// decide whether the failure is worth more than a notification.
type PageFetcher interface {
	Fetch(ctx context.Context, pageURL string) (domain.PageContent, error)
}

// LinkClassifier asks the model which links belong in a company brochure.
// Returned URLs are untrusted model output.
type LinkClassifier interface {
	Classify(ctx context.Context, siteURL string, links []string) ([]domain.LinkCandidate, error)
}

// BrochureStream is a single-pass pull iterator over generated text
// fragments. After Next reports false, Err tells whether the stream ended
// early.
type BrochureStream interface {
	Next() (string, bool)
	Err() error
}

// BrochureWriter streams a brochure for the aggregated document.
type BrochureWriter interface {
	Stream(ctx context.Context, companyName string, doc domain.Document, tone domain.Tone) (BrochureStream, error)
}

// StatusSink receives human-readable progress notifications. Implementations
// must not block and must not fail.
type StatusSink interface {
	Info(msg string)
	Warn(msg string)
	Error(msg string)
}
