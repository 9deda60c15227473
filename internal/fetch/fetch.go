package fetch

import "context"

// Page is one rendered page as returned by the browser session.
type Page struct {
	Title    string
	FinalURL string
	HTML     string
}

// Fetcher returns the rendered page for a URL. A (nil, nil) result means
// the site served a blocking page (403, access denied); that is a
// distinct signal from a fetch error, so callers can tell "nothing to
// scrape" apart from broken fetch mechanics.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Page, error)
}
