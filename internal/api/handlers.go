package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
)

type statsResponse struct {
	ZipCodesDone  int `json:"zip_codes_done"`
	URLsFound     int `json:"urls_found"`
	UniqueURLs    int `json:"unique_urls"`
	Duplicates    int `json:"duplicates_skipped"`
	CourtsScraped int `json:"courts_scraped"`
	CompleteInfo  int `json:"complete_info"`
	WithImage     int `json:"with_image"`
	MissingFields int `json:"missing_field_reports"`
}

func (s *Server) handleStatsRequest(w http.ResponseWriter, r *http.Request) {
	stats := s.stats.Snapshot()
	s.respondWithJSON(w, http.StatusOK, statsResponse{
		ZipCodesDone:  len(stats.PerZip),
		URLsFound:     stats.URLsFound,
		UniqueURLs:    stats.UniqueURLs,
		Duplicates:    stats.Duplicates,
		CourtsScraped: stats.CourtsScraped,
		CompleteInfo:  stats.CompleteInfo,
		WithImage:     stats.WithImage,
		MissingFields: len(stats.MissingReports),
	})
}

func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	healthStatus := make(map[string]string)

	if err := s.pgStore.Ping(ctx); err != nil {
		healthStatus["postgres"] = "unhealthy"
		s.logger.Error("health check failed for postgres", zap.Error(err))
	} else {
		healthStatus["postgres"] = "healthy"
	}

	if err := s.redisStore.Ping(ctx); err != nil {
		healthStatus["redis"] = "unhealthy"
		s.logger.Error("health check failed for redis", zap.Error(err))
	} else {
		healthStatus["redis"] = "healthy"
	}

	isHealthy := healthStatus["postgres"] == "healthy" && healthStatus["redis"] == "healthy"
	if !isHealthy {
		s.respondWithJSON(w, http.StatusServiceUnavailable, healthStatus)
		return
	}

	s.respondWithJSON(w, http.StatusOK, healthStatus)
}

func (s *Server) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
