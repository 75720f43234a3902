package handlers

import (
	"liveblog/storage"
	"net/http"

	"github.com/gorilla/mux"
)

// lookupFromQuery copies the lookup fields a client may filter on.
func lookupFromQuery(r *http.Request, fields ...string) storage.Lookup {
	lookup := storage.Lookup{}
	query := r.URL.Query()
	for _, field := range fields {
		if value := query.Get(field); value != "" {
			lookup[field] = value
		}
	}
	return lookup
}

func (h *HTTPHandler) HandleGetPosts(w http.ResponseWriter, r *http.Request) {
	req, err := parseRequest(r)
	if err != nil {
		httpError(w, err.Error(), http.StatusBadRequest)
		return
	}

	lookup := lookupFromQuery(r, "blog", "original_creator")
	posts, total, err := h.Posts.Get(r.Context(), req, lookup)
	if err != nil {
		storageError(w, err, "getting posts")
		return
	}
	writeJSON(w, http.StatusOK, listResponse(req, posts, total))
}

func (h *HTTPHandler) HandleGetPost(w http.ResponseWriter, r *http.Request) {
	postId := mux.Vars(r)["postId"]

	post, err := h.Posts.FindOne(r.Context(), postId)
	if err != nil {
		storageError(w, err, "getting post")
		return
	}
	writeJSON(w, http.StatusOK, post)
}
