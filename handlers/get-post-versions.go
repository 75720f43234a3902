package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

// HandleGetPostVersions lists the history of a post, which outlives the post.
func (h *HTTPHandler) HandleGetPostVersions(w http.ResponseWriter, r *http.Request) {
	req, err := parseRequest(r)
	if err != nil {
		httpError(w, err.Error(), http.StatusBadRequest)
		return
	}

	lookup := lookupFromQuery(r)
	lookup["_id_document"] = mux.Vars(r)["postId"]
	if raw := r.URL.Query().Get("version"); raw != "" {
		version, err := strconv.Atoi(raw)
		if err != nil || version < 1 {
			httpError(w, "Invalid version", http.StatusBadRequest)
			return
		}
		lookup["_current_version"] = version
	}

	versions, total, err := h.Versions.Get(r.Context(), req, lookup)
	if err != nil {
		storageError(w, err, "getting post versions")
		return
	}
	writeJSON(w, http.StatusOK, listResponse(req, versions, total))
}
