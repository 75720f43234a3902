package handlers

import (
	"encoding/json"
	"fmt"
	"liveblog/storage"
	"liveblog/storage/models"
	"net/http"

	"github.com/RichardKnop/machinery/v1/log"
	"github.com/gorilla/mux"
)

type CreateBlogRequestData struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (h *HTTPHandler) HandleCreateBlog(w http.ResponseWriter, r *http.Request) {
	var data CreateBlogRequestData
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		log.INFO.Printf("Failed to decode blog data while creating blog: %s", err.Error())
		httpError(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if data.Title == "" {
		storageError(w, fmt.Errorf("title: required field: %w", storage.ValidationError), "creating blog")
		return
	}

	blog := &models.Blog{
		Title:           data.Title,
		Description:     data.Description,
		OriginalCreator: requestContext(r).UserID(),
	}
	if err := h.Storage.InsertBlog(r.Context(), blog); err != nil {
		storageError(w, err, "creating blog")
		return
	}
	writeJSON(w, http.StatusCreated, blog)
}

func (h *HTTPHandler) HandleGetBlog(w http.ResponseWriter, r *http.Request) {
	blog, err := h.Storage.FindBlog(r.Context(), mux.Vars(r)["blogId"])
	if err != nil {
		storageError(w, err, "getting blog")
		return
	}
	writeJSON(w, http.StatusOK, blog)
}
