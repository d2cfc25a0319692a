package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/Tomlord1122/portfolio-backend/internal/validation"
)

const maxVitalBytes = 16 << 10

// webVitalsHandler ingests one browser performance sample, logs it as a
// structured line and records it in the web vitals histogram.
func (s *Server) webVitalsHandler(w http.ResponseWriter, r *http.Request) {
	var sample validation.WebVital
	if err := json.NewDecoder(io.LimitReader(r.Body, maxVitalBytes)).Decode(&sample); err != nil {
		respondWithError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid payload.", nil)
		return
	}
	sample, err := validation.ValidateWebVital(sample)
	if err != nil {
		fields, _ := validation.AsErrors(err)
		respondWithError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid payload.", fields)
		return
	}

	s.metrics.webVital(sample.Name, sample.Rating, sample.Value)
	s.log.Info("web-vital",
		slog.String("name", sample.Name),
		slog.Float64("value", sample.Value),
		slog.String("rating", sample.Rating),
		slog.Float64("delta", sample.Delta),
		slog.String("id", sample.ID),
		slog.String("navigation_type", sample.NavigationType),
		slog.Time("timestamp", time.Now().UTC()),
	)
	respondWithJSON(w, http.StatusAccepted, map[string]bool{"ok": true})
}
