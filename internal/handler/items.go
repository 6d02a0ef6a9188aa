package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/rfduarte/feira/internal/auth"
	"github.com/rfduarte/feira/internal/syncer"
)

type ItemsHandler struct {
	manager *syncer.Manager
	logger  *slog.Logger
}

func NewItemsHandler(manager *syncer.Manager, logger *slog.Logger) *ItemsHandler {
	return &ItemsHandler{
		manager: manager,
		logger:  logger.With("component", "items"),
	}
}

// coordinator resolves the caller's sync coordinator, writing the error
// response itself when that fails.
func (h *ItemsHandler) coordinator(w http.ResponseWriter, r *http.Request) *syncer.Coordinator {
	email := auth.Email(r.Context())
	co, err := h.manager.Coordinator(r.Context(), email)
	if err != nil {
		h.logger.Error("resume coordinator", "email", email, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return nil
	}
	return co
}

func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	co := h.coordinator(w, r)
	if co == nil {
		return
	}
	writeJSON(w, http.StatusOK, co.Items())
}

func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	co := h.coordinator(w, r)
	if co == nil {
		return
	}

	var input syncer.AddItemInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	item, err := co.AddItem(r.Context(), input)
	if err != nil {
		writeSyncError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	co := h.coordinator(w, r)
	if co == nil {
		return
	}

	var patch syncer.EditItemInput
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	item, err := co.EditItem(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		writeSyncError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	co := h.coordinator(w, r)
	if co == nil {
		return
	}

	if err := co.RemoveItem(r.Context(), r.PathValue("id")); err != nil {
		writeSyncError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ItemsHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	co := h.coordinator(w, r)
	if co == nil {
		return
	}

	item, err := co.ToggleStatus(r.Context(), r.PathValue("id"))
	if err != nil {
		writeSyncError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *ItemsHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	co := h.coordinator(w, r)
	if co == nil {
		return
	}

	count, err := co.FinalizePurchase(r.Context())
	if err != nil {
		writeSyncError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"finalized": count})
}

func (h *ItemsHandler) History(w http.ResponseWriter, r *http.Request) {
	co := h.coordinator(w, r)
	if co == nil {
		return
	}
	writeJSON(w, http.StatusOK, co.History())
}

func (h *ItemsHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	co := h.coordinator(w, r)
	if co == nil {
		return
	}
	writeJSON(w, http.StatusOK, co.Statistics())
}

func (h *ItemsHandler) SyncStatus(w http.ResponseWriter, r *http.Request) {
	co := h.coordinator(w, r)
	if co == nil {
		return
	}
	writeJSON(w, http.StatusOK, co.SyncStatus())
}
