package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	PagesFetched      prometheus.Counter
	CourtsSaved       prometheus.Counter
	DuplicatesSkipped prometheus.Counter
	ErrorsTotal       *prometheus.CounterVec
}

// NewMetrics registers the scraper counters against reg. Tests hand in
// their own registry so repeated construction does not collide.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		PagesFetched: factory.NewCounter(prometheus.CounterOpts{
			Name: "scraper_pages_fetched_total",
			Help: "The total number of pages fetched by the browser sessions",
		}),
		CourtsSaved: factory.NewCounter(prometheus.CounterOpts{
			Name: "scraper_courts_saved_total",
			Help: "The total number of court records persisted",
		}),
		DuplicatesSkipped: factory.NewCounter(prometheus.CounterOpts{
			Name: "scraper_duplicates_skipped_total",
			Help: "The total number of detail pages skipped as duplicates",
		}),
		ErrorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "scraper_errors_total",
			Help: "The total number of errors encountered",
		}, []string{"type"}), // e.g. 'fetch_failed', 'db_save_failed'
	}
}

func (m *Metrics) IncErrorsTotal(errorType string) {
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}
