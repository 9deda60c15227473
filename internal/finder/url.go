package finder

import (
	"net/url"
	"strconv"
	"strings"

	"courtscraper/internal/geo"
)

// SearchURL builds the site's search-page URL for one place candidate.
// The query string is the locality components joined with spaces; empty
// components are trimmed off the ends but the z=10.0 zoom is fixed.
func SearchURL(origin string, loc geo.Locality, lat, lng float64) string {
	q := strings.TrimSpace(loc.City + " " + loc.State + " " + loc.Country)

	params := url.Values{}
	params.Set("q", q)
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lng", strconv.FormatFloat(lng, 'f', -1, 64))
	params.Set("z", "10.0")

	return strings.TrimRight(origin, "/") + "/search?" + params.Encode()
}
