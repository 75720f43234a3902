package handlers

import (
	"encoding/json"
	"errors"
	"liveblog/services"
	"liveblog/storage"
	"net/http"
	"strconv"

	"github.com/RichardKnop/machinery/v1/log"
)

const INTERNAL_ERROR_MESSAGE = "Internal server error"

type HTTPHandler struct {
	Storage   storage.Storage
	Posts     *services.Posts
	BlogPosts *services.BlogPosts
	Versions  *services.PostVersions
}

type Meta struct {
	Page       int   `json:"page"`
	MaxResults int   `json:"max_results"`
	Total      int64 `json:"total"`
}

type ListResponse struct {
	Items interface{} `json:"_items"`
	Meta  Meta        `json:"_meta"`
}

type ErrorDetails struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Status string       `json:"_status"`
	Error  ErrorDetails `json:"_error"`
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, code int, value interface{}) {
	rawResponse, err := json.Marshal(value)
	if err != nil {
		log.ERROR.Printf("Failed to dump response to json: %s", err.Error())
		httpError(w, INTERNAL_ERROR_MESSAGE, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err = w.Write(rawResponse); err != nil {
		log.WARNING.Printf("Failed to write response: %s", err.Error())
	}
}

// httpError mirrors http.Error with a JSON body.
func httpError(w http.ResponseWriter, message string, code int) {
	rawResponse, _ := json.Marshal(ErrorResponse{
		Status: "ERR",
		Error:  ErrorDetails{Code: code, Message: message},
	})
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(code)
	w.Write(rawResponse)
}

// storageError answers with the status matching err and logs it.
func storageError(w http.ResponseWriter, err error, action string) {
	switch {
	case errors.Is(err, storage.NotFoundError):
		log.INFO.Printf("Not found while %s: %s", action, err.Error())
		httpError(w, "Resource not found.", http.StatusNotFound)
	case errors.Is(err, storage.ValidationError):
		log.INFO.Printf("Validation error while %s: %s", action, err.Error())
		httpError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, storage.CollisionError):
		log.INFO.Printf("Collision while %s: %s", action, err.Error())
		httpError(w, "Resource already exists.", http.StatusConflict)
	case errors.Is(err, storage.ClientError):
		log.INFO.Printf("Client error while %s: %s", action, err.Error())
		httpError(w, "Invalid request", http.StatusBadRequest)
	default:
		log.ERROR.Printf("Internal error while %s: %s", action, err.Error())
		httpError(w, INTERNAL_ERROR_MESSAGE, http.StatusInternalServerError)
	}
}

// parseRequest reads page, max_results and sort from the query string.
func parseRequest(r *http.Request) (*storage.Request, error) {
	req := storage.NewRequest()
	query := r.URL.Query()

	if raw := query.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 || page > storage.MaxPage {
			return nil, errors.New("Invalid page")
		}
		req.Page = page
	}
	if raw := query.Get("max_results"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 1 || size > storage.MaxResultsLimit {
			return nil, errors.New("Invalid max_results")
		}
		req.MaxResults = size
	}
	if raw := query.Get("sort"); raw != "" {
		sort, err := storage.ParseSort(raw)
		if err != nil {
			return nil, errors.New("Invalid sort")
		}
		req.Sort = sort
	}
	return req, nil
}

func listResponse(req *storage.Request, items interface{}, total int64) ListResponse {
	return ListResponse{
		Items: items,
		Meta:  Meta{Page: req.Page, MaxResults: req.Limit(), Total: total},
	}
}
