package domain

import (
	"fmt"
	"time"
)

// PlaceCandidate is a raw nearby-search hit used to build one search-page
// URL. It is never persisted.
type PlaceCandidate struct {
	Name      string
	Address   string
	Latitude  float64
	Longitude float64
}

// Key identifies a physical location well enough to suppress redundant
// search-page fetches within a run. Coordinates are rounded to 6 decimals
// so minor provider jitter does not defeat the dedup.
func (p PlaceCandidate) Key() string {
	return fmt.Sprintf("%s|%.6f|%.6f", p.Name, p.Latitude, p.Longitude)
}

// LabeledAnchor is a hyperlink paired with its visible text, pulled
// positionally from a detail page.
type LabeledAnchor struct {
	Href string
	Text string
}

// FieldRole names the meaning of a positional anchor slot. The target site
// lists contact anchors in a fixed order; AnchorSchema makes that ordering
// explicit instead of burying it in index arithmetic.
type FieldRole int

const (
	RoleAddress FieldRole = iota
	RolePhone
	RoleWebsite
)

// AnchorSchema is the positional contract for detail-page anchors.
var AnchorSchema = [3]FieldRole{RoleAddress, RolePhone, RoleWebsite}

// ImageRef describes a court image. LocalPath is empty when the download
// failed or was never attempted.
type ImageRef struct {
	SourceURL   string
	ContentType string
	LocalPath   string
}

// CourtRecord is the durable output of scraping one detail page. Every
// field may be empty; the extractor finds what it finds.
type CourtRecord struct {
	Name        string
	Address     string
	AddressLink string
	Telephone   string
	WebsiteText string
	WebsiteLink string
	Image       *ImageRef
	CreatedAt   time.Time
}

// HasCompleteInfo reports whether name, address and telephone were all found.
func (c *CourtRecord) HasCompleteInfo() bool {
	return c.Name != "" && c.Address != "" && c.Telephone != ""
}

// HasImage reports whether an image was downloaded to local storage.
func (c *CourtRecord) HasImage() bool {
	return c.Image != nil && c.Image.LocalPath != ""
}

// MissingFields lists which of the core fields are empty, for the
// end-of-run review report.
func (c *CourtRecord) MissingFields() []string {
	var missing []string
	if c.Name == "" {
		missing = append(missing, "name")
	}
	if c.Address == "" {
		missing = append(missing, "address")
	}
	if c.Telephone == "" {
		missing = append(missing, "telephone")
	}
	return missing
}

// StoredCourt is a row read back from the durable store.
type StoredCourt struct {
	ID          int64
	Name        string
	Address     string
	AddressLink string
	Telephone   string
	WebsiteText string
	WebsiteLink string
	ImageURL    string
	ImageType   string
	ImagePath   string
	CreatedAt   time.Time
}
