package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

func (h *HTTPHandler) HandleDeletePost(w http.ResponseWriter, r *http.Request) {
	postId := mux.Vars(r)["postId"]

	if err := h.Posts.Delete(r.Context(), requestContext(r), postId); err != nil {
		storageError(w, err, "deleting post")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
