package schedule

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/wolfman30/clinic-scheduler/pkg/logging"
)

// Handler exposes the simulation pipeline over HTTP.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a schedule handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if service == nil {
		panic("schedule: service required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// Routes returns the handler's route tree, mounted under /api/schedule.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/simulate", h.Simulate)
	return r
}

// Simulate handles POST /api/schedule/simulate. A malformed body is the
// only client error; missing or out-of-range rule fields are recovered by
// normalization, never rejected.
func (h *Handler) Simulate(w http.ResponseWriter, r *http.Request) {
	var req SimulationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode simulation request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	runID := uuid.NewString()
	result := h.service.SimulateWeek(r.Context(), req)
	h.logger.Info("simulation run served",
		"run_id", runID,
		"appointments", len(result.Appointments),
		"actions", len(result.Actions),
	)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		h.logger.Error("failed to encode simulation result", "error", err, "run_id", runID)
	}
}
