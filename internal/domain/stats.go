package domain

// ZipStats holds the counters for one zip code's pass through the
// pipeline. Workers fill one of these each and hand it to the reducer;
// nothing mutates it after that.
type ZipStats struct {
	ZipCode           string
	URLsFound         int
	UniqueURLs        int
	DuplicatesSkipped int
	CourtsScraped     int
	CompleteInfo      int
	WithImage         int
}

// SuccessRate is the share of found URLs that produced a scraped court,
// as a percentage rounded to one decimal by the caller's formatting.
func (z ZipStats) SuccessRate() float64 {
	if z.URLsFound == 0 {
		return 0
	}
	return float64(z.CourtsScraped) / float64(z.URLsFound) * 100
}

// MissingReport names one scraped court that came back with empty core
// fields, for post-run manual review.
type MissingReport struct {
	Name          string
	Address       string
	MissingFields []string
}

// RunStats is the aggregate over all zip codes, built by merging ZipStats
// one at a time as units complete.
type RunStats struct {
	PerZip         []ZipStats
	URLsFound      int
	UniqueURLs     int
	Duplicates     int
	CourtsScraped  int
	CompleteInfo   int
	WithImage      int
	MissingReports []MissingReport
}

// Merge folds one completed zip's counters into the aggregate.
func (r *RunStats) Merge(z ZipStats) {
	r.PerZip = append(r.PerZip, z)
	r.URLsFound += z.URLsFound
	r.UniqueURLs += z.UniqueURLs
	r.Duplicates += z.DuplicatesSkipped
	r.CourtsScraped += z.CourtsScraped
	r.CompleteInfo += z.CompleteInfo
	r.WithImage += z.WithImage
}

// Report records a court with missing core fields.
func (r *RunStats) Report(c *CourtRecord) {
	missing := c.MissingFields()
	if len(missing) == 0 {
		return
	}
	r.MissingReports = append(r.MissingReports, MissingReport{
		Name:          c.Name,
		Address:       c.Address,
		MissingFields: missing,
	})
}
