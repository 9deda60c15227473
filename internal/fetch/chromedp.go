package fetch

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// Markers that mean the page is still behind an interstitial challenge
// and needs more time before the content is real.
var challengeMarkers = []string{
	"checking your browser",
	"please wait",
	"ddos protection",
	"cf-browser-verification",
	"challenge-form",
}

// Markers that mean the site has refused to serve content at all.
var blockedMarkers = []string{
	"403 forbidden",
	"access denied",
	"blocked",
}

// dismissConsentJS clicks the first button whose text looks like a cookie
// consent accept. The site shows the dialog inconsistently, so a no-op
// result is normal.
const dismissConsentJS = `(() => {
	const words = ["accept", "i accept", "allow", "ok"];
	const buttons = document.querySelectorAll("button");
	for (const b of buttons) {
		const t = b.textContent.trim().toLowerCase();
		if (words.some(w => t.includes(w))) { b.click(); return true; }
	}
	return false;
})()`

// SessionOptions configures one browser session.
type SessionOptions struct {
	Headless    bool
	NavTimeout  time.Duration
	MinSpacing  time.Duration
	UserAgent   string
	MaxJitter   time.Duration
}

func (o *SessionOptions) defaults() {
	if o.NavTimeout == 0 {
		o.NavTimeout = 30 * time.Second
	}
	if o.MinSpacing == 0 {
		o.MinSpacing = 5 * time.Second
	}
	if o.MaxJitter == 0 {
		o.MaxJitter = 3 * time.Second
	}
	if o.UserAgent == "" {
		o.UserAgent = randomUserAgent()
	}
}

// Session is one chromedp browser instance. A session serves one worker
// at a time: it enforces a minimum spacing between its own navigations
// and is not safe for concurrent use.
type Session struct {
	opts          SessionOptions
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	lastNav       time.Time
	logger        *zap.Logger
}

// NewSession starts a browser. Failure here is the only error class that
// is allowed to abort a whole run.
func NewSession(opts SessionOptions, logger *zap.Logger) (*Session, error) {
	opts.defaults()

	execOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.UserAgent(opts.UserAgent),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), execOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Start the browser process eagerly so init failures surface now
	// instead of on the first navigation.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, err
	}

	return &Session{
		opts:          opts,
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		logger:        logger,
	}, nil
}

// Fetch navigates to url and returns the rendered page, or (nil, nil)
// when the site served a blocking page.
func (s *Session) Fetch(ctx context.Context, url string) (*Page, error) {
	if err := s.throttle(ctx); err != nil {
		return nil, err
	}
	s.lastNav = time.Now()

	navCtx, cancel := context.WithTimeout(s.browserCtx, s.opts.NavTimeout)
	defer cancel()
	// Honor caller cancellation as well as the per-navigation timeout.
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-navCtx.Done():
		}
	}()

	var html, title, finalURL string
	err := chromedp.Run(navCtx,
		chromedp.Navigate(url),
		chromedp.WaitVisible("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return nil, err
	}

	html, err = s.waitForChallenge(navCtx, html)
	if err != nil {
		return nil, err
	}

	var dismissed bool
	if err := chromedp.Run(navCtx, chromedp.Evaluate(dismissConsentJS, &dismissed)); err == nil && dismissed {
		s.logger.Debug("dismissed cookie consent", zap.String("url", url))
		// Re-read the page without the dialog.
		_ = chromedp.Run(navCtx, chromedp.OuterHTML("html", &html))
	}

	if err := chromedp.Run(navCtx,
		chromedp.Title(&title),
		chromedp.Location(&finalURL),
	); err != nil {
		return nil, err
	}

	if IsBlocked(html) {
		s.logger.Warn("access blocked", zap.String("url", url))
		return nil, nil
	}

	return &Page{Title: strings.TrimSpace(title), FinalURL: finalURL, HTML: html}, nil
}

// waitForChallenge polls the page while interstitial challenge markers are
// present, up to the navigation deadline.
func (s *Session) waitForChallenge(ctx context.Context, html string) (string, error) {
	for hasChallengeMarker(html) {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(2 * time.Second):
		}
		if err := chromedp.Run(ctx, chromedp.OuterHTML("html", &html)); err != nil {
			return "", err
		}
	}
	return html, nil
}

// throttle enforces the minimum spacing between navigations issued by
// this session, plus random jitter so the cadence is not mechanical.
func (s *Session) throttle(ctx context.Context) error {
	if s.lastNav.IsZero() {
		return nil
	}
	elapsed := time.Since(s.lastNav)
	if elapsed >= s.opts.MinSpacing {
		return nil
	}
	wait := s.opts.MinSpacing - elapsed + jitter(s.opts.MaxJitter)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return nil
	}
}

func jitter(max time.Duration) time.Duration {
	min := time.Second
	if max <= min {
		return min
	}
	return min + time.Duration(rand.Int63n(int64(max-min)))
}

// Close shuts the browser down. Always called, even on failure paths.
func (s *Session) Close() {
	s.browserCancel()
	s.allocCancel()
}

// IsBlocked reports whether markup carries an explicit refusal marker.
func IsBlocked(html string) bool {
	lower := strings.ToLower(html)
	for _, m := range blockedMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

func hasChallengeMarker(html string) bool {
	lower := strings.ToLower(html)
	for _, m := range challengeMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}
