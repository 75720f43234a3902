package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

func (h *HTTPHandler) HandleGetBlogPosts(w http.ResponseWriter, r *http.Request) {
	req, err := parseRequest(r)
	if err != nil {
		httpError(w, err.Error(), http.StatusBadRequest)
		return
	}

	lookup := lookupFromQuery(r, "original_creator")
	lookup["blog_id"] = mux.Vars(r)["blogId"]
	posts, total, err := h.BlogPosts.Get(r.Context(), req, lookup)
	if err != nil {
		storageError(w, err, "getting blog posts")
		return
	}
	writeJSON(w, http.StatusOK, listResponse(req, posts, total))
}
