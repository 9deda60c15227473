package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"courtscraper/internal/domain"
)

// Selectors describes the target site's page structure. The class
// signatures come from configuration because they change whenever the
// site redeploys its styling.
type Selectors struct {
	SearchLink  string
	Container   string
	Heading     string
	AnchorStack string
	AnchorLink  string
	ImageButton string
	Image       string
}

// Extractor parses rendered page markup into typed fragments. All
// operations tolerate absent structure and return empty results rather
// than errors; the site omits elements inconsistently.
type Extractor struct {
	origin    string
	selectors Selectors
}

func New(origin string, sel Selectors) *Extractor {
	return &Extractor{origin: strings.TrimRight(origin, "/"), selectors: sel}
}

// SearchResultLinks returns every detail-page link found on a search
// page, with site-relative hrefs resolved against the site origin.
func (e *Extractor) SearchResultLinks(html string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	var links []string
	doc.Find(e.selectors.SearchLink).Each(func(i int, s *goquery.Selection) {
		href, exists := s.Attr("href")
		if !exists || href == "" {
			return
		}
		links = append(links, e.absolute(href))
	})
	return links, nil
}

// HeadingText returns the trimmed text of the first heading inside the
// detail container, or "" when either is missing.
func (e *Extractor) HeadingText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}

	container := doc.Find(e.selectors.Container).First()
	if container.Length() == 0 {
		return "", nil
	}
	heading := container.Find(e.selectors.Heading).First()
	return strings.TrimSpace(heading.Text()), nil
}

// LabeledAnchors returns up to three anchors from the detail page's
// contact stack, in document order. The slots are positional: callers
// apply domain.AnchorSchema to give them meaning.
func (e *Extractor) LabeledAnchors(html string) ([]domain.LabeledAnchor, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	container := doc.Find(e.selectors.Container).First()
	if container.Length() == 0 {
		return nil, nil
	}

	var anchors []domain.LabeledAnchor
	container.Find(e.selectors.AnchorStack).EachWithBreak(func(i int, s *goquery.Selection) bool {
		if i >= len(domain.AnchorSchema) {
			return false
		}
		anchor := s.Find(e.selectors.AnchorLink).First()
		if anchor.Length() == 0 {
			return true
		}
		href, _ := anchor.Attr("href")
		if href != "" {
			href = e.absolute(href)
		}
		anchors = append(anchors, domain.LabeledAnchor{
			Href: href,
			Text: strings.TrimSpace(anchor.Text()),
		})
		return true
	})
	return anchors, nil
}

// ImageReference locates the court image inside the gallery button and
// returns its absolute URL, or "" when the page has no image. The
// download itself is a separate step so a failed download never costs
// the other fields.
func (e *Extractor) ImageReference(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}

	button := doc.Find(e.selectors.ImageButton).First()
	if button.Length() == 0 {
		return "", nil
	}
	img := button.Find(e.selectors.Image).First()
	src, exists := img.Attr("src")
	if !exists || src == "" {
		return "", nil
	}
	return e.absolute(src), nil
}

func (e *Extractor) absolute(href string) string {
	if strings.HasPrefix(href, "/") {
		return e.origin + href
	}
	return href
}
