package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rfduarte/feira/internal/sheets"
	"github.com/rfduarte/feira/internal/syncer"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeSyncError maps synchronization errors to HTTP statuses: invalid input
// is 400, a missing item 404, and a remote rejection (after rollback) 502.
// An unreachable remote store never reaches here; the syncer absorbs it by
// dropping to local-only mode.
func writeSyncError(w http.ResponseWriter, err error) {
	var ve *syncer.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": ve.Msg})
	case errors.Is(err, syncer.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "item not found"})
	case errors.Is(err, sheets.ErrRequestFailed):
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "remote store rejected the change"})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}
