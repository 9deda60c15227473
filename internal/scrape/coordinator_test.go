package scrape

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"courtscraper/internal/domain"
	"courtscraper/internal/extract"
	"courtscraper/internal/fetch"
	"courtscraper/internal/monitoring"
)

const testOrigin = "https://www.pickleheads.com"

func testExtractor() *extract.Extractor {
	return extract.New(testOrigin, extract.Selectors{
		SearchLink:  "a.court-link",
		Container:   "div.detail",
		Heading:     "h1.heading",
		AnchorStack: "div.stack",
		AnchorLink:  "a.contact",
		ImageButton: "button.gallery",
		Image:       "img.photo",
	})
}

type pageFetcher struct {
	html     string
	failures int
	blocked  int
	calls    int
}

func (f *pageFetcher) Fetch(ctx context.Context, url string) (*fetch.Page, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("timeout")
	}
	if f.calls <= f.failures+f.blocked {
		return nil, nil
	}
	return &fetch.Page{FinalURL: url, HTML: f.html}, nil
}

type memStore struct {
	mu        sync.Mutex
	known     map[string]bool
	inserted  []*domain.CourtRecord
	insertErr error
	existsErr error
}

func newMemStore() *memStore {
	return &memStore{known: make(map[string]bool)}
}

func (s *memStore) AddressExists(ctx context.Context, address string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.existsErr != nil {
		return false, s.existsErr
	}
	return s.known[address], nil
}

func (s *memStore) Insert(ctx context.Context, record *domain.CourtRecord) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return 0, s.insertErr
	}
	s.inserted = append(s.inserted, record)
	if record.Address != "" {
		s.known[record.Address] = true
	}
	return int64(len(s.inserted)), nil
}

func newTestCoordinator(t *testing.T, fetcher fetch.Fetcher, store Store) *Coordinator {
	t.Helper()
	logger := zap.NewNop()
	return NewCoordinator(
		fetcher,
		testExtractor(),
		NewBuilder(t.TempDir(), logger),
		store,
		nil,
		fetch.RetryPolicy{MaxAttempts: 3, Backoff: fetch.LinearBackoff(time.Millisecond)},
		monitoring.NewMetrics(prometheus.NewRegistry()),
		logger,
	)
}

const detailPage = `<html><body><div class="detail">
	<h1 class="heading">Central Park Courts</h1>
	<div class="stack"><a class="contact" href="/loc/123">123 Main St, Springfield</a></div>
	<div class="stack"><a class="contact">555-1234</a></div>
	<div class="stack"><a class="contact" href="https://example.com">Visit site</a></div>
</div></body></html>`

func TestProcessURLRoundTrip(t *testing.T) {
	store := newMemStore()
	coord := newTestCoordinator(t, &pageFetcher{html: detailPage}, store)

	result := coord.ProcessURL(context.Background(), "https://www.pickleheads.com/courts/cp")

	require.Equal(t, OutcomeSaved, result.Outcome)
	require.NotNil(t, result.Record)
	rec := result.Record
	assert.Equal(t, "Central Park Courts", rec.Name)
	assert.Equal(t, "123 Main St, Springfield", rec.Address)
	assert.Equal(t, "https://www.pickleheads.com/loc/123", rec.AddressLink)
	assert.Equal(t, "555-1234", rec.Telephone)
	assert.Equal(t, "Visit site", rec.WebsiteText)
	assert.Equal(t, "https://example.com", rec.WebsiteLink)
	assert.Nil(t, rec.Image)
	assert.Len(t, store.inserted, 1)
}

func TestProcessURLDuplicateAddress(t *testing.T) {
	store := newMemStore()
	store.known["123 Main St, Springfield"] = true
	coord := newTestCoordinator(t, &pageFetcher{html: detailPage}, store)

	result := coord.ProcessURL(context.Background(), "https://www.pickleheads.com/courts/cp")

	assert.Equal(t, OutcomeSkipped, result.Outcome)
	assert.Nil(t, result.Record)
	assert.Empty(t, store.inserted)
}

func TestProcessURLInvalid(t *testing.T) {
	for _, url := range []string{"", "ftp://x.test/courts", "https://x"} {
		fetcher := &pageFetcher{html: detailPage}
		coord := newTestCoordinator(t, fetcher, newMemStore())

		result := coord.ProcessURL(context.Background(), url)

		assert.Equal(t, OutcomeFailed, result.Outcome)
		// Malformed input is not transient: no fetch, no retry.
		assert.Zero(t, fetcher.calls)
	}
}

func TestProcessURLFetchRetries(t *testing.T) {
	fetcher := &pageFetcher{html: detailPage, failures: 2}
	store := newMemStore()
	coord := newTestCoordinator(t, fetcher, store)

	result := coord.ProcessURL(context.Background(), "https://www.pickleheads.com/courts/cp")

	assert.Equal(t, OutcomeSaved, result.Outcome)
	assert.Equal(t, 3, fetcher.calls)
}

func TestProcessURLFetchExhausted(t *testing.T) {
	fetcher := &pageFetcher{html: detailPage, failures: 10}
	coord := newTestCoordinator(t, fetcher, newMemStore())

	result := coord.ProcessURL(context.Background(), "https://www.pickleheads.com/courts/cp")

	assert.Equal(t, OutcomeFailed, result.Outcome)
	assert.Equal(t, 3, fetcher.calls)
}

func TestProcessURLBlockedPageRetried(t *testing.T) {
	// A blocking interstitial on the first visit consumes retry budget
	// like any transient fetch failure and clears on the second.
	fetcher := &pageFetcher{html: detailPage, blocked: 1}
	store := newMemStore()
	coord := newTestCoordinator(t, fetcher, store)

	result := coord.ProcessURL(context.Background(), "https://www.pickleheads.com/courts/cp")

	assert.Equal(t, OutcomeSaved, result.Outcome)
	assert.Equal(t, 2, fetcher.calls)
}

func TestProcessURLBlockedPageExhausted(t *testing.T) {
	fetcher := &pageFetcher{html: detailPage, blocked: 10}
	coord := newTestCoordinator(t, fetcher, newMemStore())

	result := coord.ProcessURL(context.Background(), "https://www.pickleheads.com/courts/cp")

	assert.Equal(t, OutcomeFailed, result.Outcome)
	assert.Equal(t, 3, fetcher.calls)
}

func TestProcessURLMissingHeading(t *testing.T) {
	// No detail container at all: record still built, name unset.
	store := newMemStore()
	coord := newTestCoordinator(t, &pageFetcher{html: "<html><body></body></html>"}, store)

	result := coord.ProcessURL(context.Background(), "https://www.pickleheads.com/courts/cp")

	require.Equal(t, OutcomeSaved, result.Outcome)
	assert.Empty(t, result.Record.Name)
	assert.Empty(t, result.Record.Address)
}

func TestProcessURLInsertFailure(t *testing.T) {
	store := newMemStore()
	store.insertErr = errors.New("store unavailable")
	coord := newTestCoordinator(t, &pageFetcher{html: detailPage}, store)

	result := coord.ProcessURL(context.Background(), "https://www.pickleheads.com/courts/cp")

	// Built but unsaved: the record comes back for flat-file export.
	require.Equal(t, OutcomeUnsaved, result.Outcome)
	require.NotNil(t, result.Record)
	assert.Equal(t, "Central Park Courts", result.Record.Name)
}

func TestProcessURLExistsCheckFailure(t *testing.T) {
	store := newMemStore()
	store.known["123 Main St, Springfield"] = true
	store.existsErr = errors.New("store unreachable")
	coord := newTestCoordinator(t, &pageFetcher{html: detailPage}, store)

	result := coord.ProcessURL(context.Background(), "https://www.pickleheads.com/courts/cp")

	// An unreachable store must not silently drop the court.
	assert.Equal(t, OutcomeSaved, result.Outcome)
}

func TestDeriveAddress(t *testing.T) {
	cases := []struct {
		name    string
		anchors []domain.LabeledAnchor
		want    string
	}{
		{
			name: "address token wins over position",
			anchors: []domain.LabeledAnchor{
				{Text: "555-1234"},
				{Text: "Address: 9 Elm Rd"},
			},
			want: "Address: 9 Elm Rd",
		},
		{
			name: "long text fallback",
			anchors: []domain.LabeledAnchor{
				{Text: "short"},
				{Text: "742 Evergreen Terrace"},
			},
			want: "742 Evergreen Terrace",
		},
		{
			name:    "nothing usable",
			anchors: []domain.LabeledAnchor{{Text: "555-1234"}},
			want:    "",
		},
		{name: "empty", anchors: nil, want: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, deriveAddress(tc.anchors))
		})
	}
}
