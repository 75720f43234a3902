package handlers

import (
	"encoding/json"
	"fmt"
	"liveblog/storage"
	"liveblog/storage/models"
	"net/http"

	"github.com/RichardKnop/machinery/v1/log"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PatchPostRequestData struct {
	Headline       *string         `json:"headline"`
	Blog           *string         `json:"blog"`
	ParticularType *string         `json:"particular_type"`
	Groups         *[]models.Group `json:"groups"`
}

func (d *PatchPostRequestData) toUpdate() (*models.PostUpdate, error) {
	update := &models.PostUpdate{
		Headline:       d.Headline,
		ParticularType: d.ParticularType,
	}
	if d.Groups != nil {
		groups := storedGroups(*d.Groups)
		update.Groups = &groups
	}
	if d.Blog != nil {
		var blog primitive.ObjectID
		if *d.Blog != "" {
			var err error
			if blog, err = primitive.ObjectIDFromHex(*d.Blog); err != nil {
				return nil, fmt.Errorf("blog: invalid id %q: %w", *d.Blog, storage.ValidationError)
			}
		}
		update.Blog = &blog
	}
	return update, nil
}

func (h *HTTPHandler) HandlePatchPost(w http.ResponseWriter, r *http.Request) {
	postId := mux.Vars(r)["postId"]
	var data PatchPostRequestData
	err := json.NewDecoder(r.Body).Decode(&data)
	if err != nil {
		log.INFO.Printf("Failed to decode post data while updating post: %s", err.Error())
		httpError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	update, err := data.toUpdate()
	if err != nil {
		storageError(w, err, "updating post")
		return
	}

	post, err := h.Posts.Update(r.Context(), requestContext(r), postId, update)
	if err != nil {
		storageError(w, err, "updating post")
		return
	}
	writeJSON(w, http.StatusOK, post)
}
