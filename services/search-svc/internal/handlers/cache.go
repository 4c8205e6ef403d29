package handlers

import "net/http"

// CacheStats GET /v1/cache
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.CacheStats(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// InvalidateCache DELETE /v1/cache?algorithm=
func (h *Handler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	algorithm := r.URL.Query().Get("algorithm")
	n, err := h.svc.InvalidateCache(r.Context(), algorithm)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": n, "algorithm": algorithm})
}
