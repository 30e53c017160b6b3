package router

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/patric-chuzhbe/usrlinks/internal/logger"
	"github.com/patric-chuzhbe/usrlinks/internal/models"
	"github.com/patric-chuzhbe/usrlinks/internal/service"
)

const (
	msgContentTypeNotJSON = "Content-Type must be application/json"
	msgInvalidJSON        = "Invalid JSON"
	msgEmailTaken         = "Email already exists"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Log.Errorw("cannot encode response", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, models.ErrorResponse{Error: message})
}

func isJSONRequest(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

// decodeJSONRequest checks the content type and decodes the body into dst.
// It writes the 400 response itself and reports whether the handler may go on.
func decodeJSONRequest(w http.ResponseWriter, r *http.Request, dst any) bool {
	if !isJSONRequest(r) {
		writeError(w, http.StatusBadRequest, msgContentTypeNotJSON)
		return false
	}
	if err := decodeJSONBody(r, dst); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidJSON)
		return false
	}

	return true
}

// decodeJSONBody decodes one JSON value of the request body into dst.
// The literal null is rejected.
func decodeJSONBody(r *http.Request, dst any) error {
	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return err
	}
	if string(raw) == "null" {
		return errNullBody
	}

	return json.Unmarshal(raw, dst)
}

var errNullBody = errors.New("request body is null")

type errorMessages struct {
	notFound string
	conflict string
}

// writeServiceError maps an error of the service layer onto a status and a client message.
// Causes of 5xx responses are logged and never sent to the client.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, messages errorMessages) {
	var validationErr *models.ValidationError

	switch {
	case errors.As(err, &validationErr):
		writeError(w, http.StatusBadRequest, validationErr.Message)
	case errors.Is(err, models.ErrInvalidShortCode):
		writeError(w, http.StatusNotFound, service.MsgInvalidShortCode)
	case errors.Is(err, models.ErrNotFound):
		writeError(w, http.StatusNotFound, messages.notFound)
	case errors.Is(err, models.ErrEmailTaken):
		writeError(w, http.StatusConflict, msgEmailTaken)
	case errors.Is(err, models.ErrConflict):
		writeError(w, http.StatusConflict, messages.conflict)
	case errors.Is(err, models.ErrStorage):
		logger.Log.Errorw("database error", "err", err, "request_id", middleware.GetReqID(r.Context()))
		writeError(w, http.StatusInternalServerError, msgDatabaseError)
	default:
		logger.Log.Errorw("unexpected error", "err", err, "request_id", middleware.GetReqID(r.Context()))
		writeError(w, http.StatusInternalServerError, msgInternalError)
	}
}
