package handlers

import (
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/goccy/go-json"

	"garmin-fitness-assistant/internal/export"
	"garmin-fitness-assistant/internal/metrics"
	"garmin-fitness-assistant/internal/store"
)

// Export files are small JSON documents; anything beyond this is not a
// Garmin export.
const maxUploadBytes = 64 << 20

// UploadHandler handles export file ingestion
type UploadHandler struct {
	store  *store.Store
	logger *slog.Logger
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(st *store.Store) *UploadHandler {
	return &UploadHandler{
		store:  st,
		logger: slog.Default(),
	}
}

// fileResult is the per-file outcome reported back to the uploader.
type fileResult struct {
	Filename string `json:"filename"`
	Kind     string `json:"kind,omitempty"`
	BatchID  string `json:"batch_id,omitempty"`
	Records  int    `json:"records"`
	Inserted int    `json:"inserted"`
	Replaced int    `json:"replaced"`
	Skipped  int    `json:"skipped"`
	Error    string `json:"error,omitempty"`
}

type uploadResponse struct {
	Files []fileResult `json:"files"`
}

// HandleUpload handles POST /upload with a multipart form.
// Form fields:
//   - user_id: Owner of the uploaded exports (required)
//   - files:   One or more Garmin export JSON files
//
// Each file succeeds or fails independently; a malformed file never
// blocks the rest of the batch.
func (h *UploadHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	userID := r.FormValue("user_id")
	if userID == "" {
		http.Error(w, "Missing user_id", http.StatusBadRequest)
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		http.Error(w, "No files in upload", http.StatusBadRequest)
		return
	}

	resp := uploadResponse{Files: make([]fileResult, 0, len(files))}
	for _, fh := range files {
		resp.Files = append(resp.Files, h.ingestFile(r, userID, fh))
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("Failed to encode upload response", "error", err)
	}
}

// ingestFile normalizes and ingests one uploaded file, recording
// per-kind metrics.
func (h *UploadHandler) ingestFile(r *http.Request, userID string, fh *multipart.FileHeader) fileResult {
	result := fileResult{Filename: fh.Filename}

	kind, err := export.KindFromFilename(fh.Filename)
	if err != nil {
		h.logger.Warn("Unrecognized export file", "filename", fh.Filename)
		result.Error = err.Error()
		return result
	}
	result.Kind = string(kind)

	f, err := fh.Open()
	if err != nil {
		result.Error = "failed to read file"
		return result
	}
	defer f.Close()

	payload, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
	if err != nil {
		result.Error = "failed to read file"
		return result
	}

	normalized, err := export.Normalize(&export.Bundle{Kind: kind, UserID: userID, Payload: payload})
	if err != nil {
		var malformed *export.MalformedExportError
		if errors.As(err, &malformed) {
			metrics.IngestMalformedBundlesTotal.WithLabelValues(string(kind)).Inc()
		}
		h.logger.Warn("Failed to normalize export", "filename", fh.Filename, "kind", kind, "error", err)
		result.Error = err.Error()
		return result
	}

	ingested, err := h.store.Ingest(r.Context(), userID, normalized.Records)
	if err != nil {
		h.logger.Error("Failed to ingest export", "filename", fh.Filename, "user_id", userID, "error", err)
		result.Error = "failed to store records"
		return result
	}

	result.BatchID = ingested.BatchID
	result.Records = normalized.Records.Len()
	result.Inserted = ingested.Inserted
	result.Replaced = ingested.Replaced
	result.Skipped = normalized.Skipped

	metrics.IngestBundlesTotal.WithLabelValues(string(kind)).Inc()
	metrics.IngestRecordsTotal.WithLabelValues(string(kind), metrics.IngestInserted).Add(float64(ingested.Inserted))
	metrics.IngestRecordsTotal.WithLabelValues(string(kind), metrics.IngestReplaced).Add(float64(ingested.Replaced))
	metrics.IngestRecordsTotal.WithLabelValues(string(kind), metrics.IngestSkipped).Add(float64(normalized.Skipped))

	h.logger.Info("Ingested export file",
		"filename", fh.Filename,
		"kind", kind,
		"user_id", userID,
		"inserted", ingested.Inserted,
		"replaced", ingested.Replaced,
		"skipped", normalized.Skipped)
	return result
}
