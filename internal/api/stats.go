package api

import (
	"net/http"

	"github.com/arjunc477/telemetry-hub/internal/stats"
)

type StatsHandler struct {
	engine *stats.Engine
}

func NewStatsHandler(engine *stats.Engine) *StatsHandler {
	return &StatsHandler{engine: engine}
}

// Get handles GET /stats: aggregated counts over the trailing 30-day window.
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	report, err := h.engine.Compute(r.Context(), stats.DefaultWindowDays)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to compute stats")
		return
	}

	respondJSON(w, http.StatusOK, report)
}
