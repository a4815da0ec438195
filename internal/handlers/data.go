package handlers

import (
	"log/slog"
	"net/http"

	"garmin-fitness-assistant/internal/store"
)

// DataHandler handles the data availability endpoint.
type DataHandler struct {
	store  *store.Store
	logger *slog.Logger
}

// NewDataHandler creates a new data handler
func NewDataHandler(st *store.Store) *DataHandler {
	return &DataHandler{
		store:  st,
		logger: slog.Default(),
	}
}

// HandleDataList handles GET /data/list.
// Query parameters:
//   - user_id: Owner of the data (required)
//
// Reports per record kind whether any data exists plus the covered
// date range. A user with no data gets all-unavailable, not an error.
func (h *DataHandler) HandleDataList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		http.Error(w, "Missing user_id", http.StatusBadRequest)
		return
	}

	availability, err := h.store.ListAvailable(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to list available data", "user_id", userID, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, h.logger, availability)
}
