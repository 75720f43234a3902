package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"liveblog/storage"
	"liveblog/storage/models"
	"net/http"

	"github.com/RichardKnop/machinery/v1/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CreatePostRequestData struct {
	GUID           string         `json:"guid"`
	Headline       string         `json:"headline"`
	Blog           string         `json:"blog"`
	ParticularType string         `json:"particular_type"`
	Groups         []models.Group `json:"groups"`
}

func (d *CreatePostRequestData) toPost() (*models.Post, error) {
	post := &models.Post{ParticularType: d.ParticularType}
	post.GUID = d.GUID
	post.Headline = d.Headline
	post.Groups = storedGroups(d.Groups)
	if d.Blog != "" {
		blog, err := primitive.ObjectIDFromHex(d.Blog)
		if err != nil {
			return nil, fmt.Errorf("blog: invalid id %q: %w", d.Blog, storage.ValidationError)
		}
		post.Blog = blog
	}
	return post, nil
}

// storedGroups drops any resolved item a client sent along with its refs.
func storedGroups(groups []models.Group) []models.Group {
	for i := range groups {
		for j := range groups[i].Refs {
			groups[i].Refs[j].Item = nil
		}
	}
	return groups
}

// HandleCreatePost accepts a single post or a list of posts.
func (h *HTTPHandler) HandleCreatePost(w http.ResponseWriter, r *http.Request) {
	body, err := ioutil.ReadAll(r.Body)
	if err != nil {
		log.WARNING.Printf("Failed to read post data while creating post: %s", err.Error())
		httpError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	var data []CreatePostRequestData
	single := !bytes.HasPrefix(bytes.TrimSpace(body), []byte("["))
	if single {
		var one CreatePostRequestData
		err = json.Unmarshal(body, &one)
		data = []CreatePostRequestData{one}
	} else {
		err = json.Unmarshal(body, &data)
	}
	if err != nil {
		log.INFO.Printf("Failed to decode post data while creating post: %s", err.Error())
		httpError(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if len(data) == 0 {
		httpError(w, "Empty bulk insert", http.StatusBadRequest)
		return
	}

	docs := make([]*models.Post, 0, len(data))
	for i := range data {
		post, err := data[i].toPost()
		if err != nil {
			storageError(w, err, "creating post")
			return
		}
		docs = append(docs, post)
	}

	if err = h.Posts.Create(r.Context(), requestContext(r), docs); err != nil {
		storageError(w, err, "creating post")
		return
	}

	if single {
		writeJSON(w, http.StatusCreated, docs[0])
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"_items": docs})
}
