package handlers

import (
	"encoding/json"
	"fmt"
	"liveblog/storage"
	"liveblog/storage/models"
	"net/http"
	"time"

	"github.com/RichardKnop/machinery/v1/log"
	"github.com/gorilla/mux"
)

type CreateItemRequestData struct {
	GUID     string                 `json:"guid"`
	Type     string                 `json:"type"`
	Headline string                 `json:"headline"`
	BodyHTML string                 `json:"body_html"`
	Meta     map[string]interface{} `json:"meta"`
}

func (h *HTTPHandler) HandleCreateItem(w http.ResponseWriter, r *http.Request) {
	var data CreateItemRequestData
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		log.INFO.Printf("Failed to decode item data while creating item: %s", err.Error())
		httpError(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if data.Type == "" {
		data.Type = "text"
	}
	if data.Type == models.TypeComposite {
		storageError(w, fmt.Errorf("type: composite items are created as posts: %w", storage.ValidationError), "creating item")
		return
	}

	item := &models.Item{
		GUID:            data.GUID,
		Type:            data.Type,
		Headline:        data.Headline,
		BodyHTML:        data.BodyHTML,
		Meta:            data.Meta,
		OriginalCreator: requestContext(r).UserID(),
	}
	now := time.Now().UTC()
	item.FirstCreated, item.VersionCreated = now, now
	if err := h.Storage.InsertItem(r.Context(), item); err != nil {
		storageError(w, err, "creating item")
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *HTTPHandler) HandleGetItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.Storage.FindItem(r.Context(), mux.Vars(r)["itemId"])
	if err != nil {
		storageError(w, err, "getting item")
		return
	}
	writeJSON(w, http.StatusOK, item)
}
