package httpapi

import (
	"net/http"

	"stroke-warning-system/internal/service"

	"go.uber.org/zap"
)

// AnalyticsHandler serves the data-scientist dashboard.
type AnalyticsHandler struct {
	analyticsService service.AnalyticsService
	logger           *zap.Logger
}

func NewAnalyticsHandler(analyticsService service.AnalyticsService, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService, logger: logger}
}

type dataScientistDashboard struct {
	Username string
	Summary  *service.DashboardSummary
}

func (h *AnalyticsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	sum, err := h.analyticsService.Summary(r.Context())
	if err != nil {
		h.logger.Error("Failed to load data scientist dashboard", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	renderPage(w, h.logger, http.StatusOK, "data_scientist_dashboard.html", dataScientistDashboard{
		Username: usernameFrom(r.Context()),
		Summary:  sum,
	})
}

func (h *AnalyticsHandler) DashboardData(w http.ResponseWriter, r *http.Request) {
	data, err := h.analyticsService.DashboardData(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(data))
}
