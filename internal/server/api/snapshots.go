package api

import (
	"errors"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/ayusman/fingerboard/internal/store"
)

// DefaultListLimit caps GET /api/snapshots when no limit is given.
const DefaultListLimit = 50

// SnapshotHandler handles HTTP requests for saved snapshots.
type SnapshotHandler struct {
	store *store.Store
}

// NewSnapshotHandler creates a new SnapshotHandler with the given store.
func NewSnapshotHandler(s *store.Store) *SnapshotHandler {
	return &SnapshotHandler{store: s}
}

// ServeHTTP routes /api/snapshots, /api/snapshots/{id} and
// /api/snapshots/{id}/file.
func (h *SnapshotHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/snapshots")
	path = strings.Trim(path, "/")

	if path == "" {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.list(w, r)
		return
	}

	id, rest, _ := strings.Cut(path, "/")
	switch {
	case rest == "file" && r.Method == http.MethodGet:
		h.file(w, r, id)
	case rest != "":
		writeError(w, http.StatusNotFound, "not found")
	case r.Method == http.MethodGet:
		h.get(w, r, id)
	case r.Method == http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type listSnapshotsResponse struct {
	Snapshots []*store.Snapshot `json:"snapshots"`
}

// list handles GET /api/snapshots?limit=n, newest first.
func (h *SnapshotHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := DefaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	snaps, err := h.store.Snapshots().List(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list snapshots")
		return
	}
	if snaps == nil {
		snaps = []*store.Snapshot{}
	}
	writeJSON(w, http.StatusOK, listSnapshotsResponse{Snapshots: snaps})
}

// get handles GET /api/snapshots/{id}.
func (h *SnapshotHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	snap, ok := h.lookup(w, id)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// file handles GET /api/snapshots/{id}/file and serves the saved image or PDF.
func (h *SnapshotHandler) file(w http.ResponseWriter, r *http.Request, id string) {
	snap, ok := h.lookup(w, id)
	if !ok {
		return
	}
	if _, err := os.Stat(snap.Path); err != nil {
		writeError(w, http.StatusGone, "snapshot file no longer exists")
		return
	}

	switch snap.Format {
	case store.FormatPDF:
		w.Header().Set("Content-Type", "application/pdf")
	default:
		w.Header().Set("Content-Type", "image/png")
	}
	http.ServeFile(w, r, snap.Path)
}

// delete handles DELETE /api/snapshots/{id}. The file on disk is kept.
func (h *SnapshotHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Snapshots().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "snapshot not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete snapshot")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SnapshotHandler) lookup(w http.ResponseWriter, id string) (*store.Snapshot, bool) {
	snap, err := h.store.Snapshots().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "snapshot not found")
			return nil, false
		}
		writeError(w, http.StatusInternalServerError, "failed to get snapshot")
		return nil, false
	}
	return snap, true
}
