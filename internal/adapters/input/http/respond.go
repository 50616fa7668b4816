package http

import (
	"encoding/json"
	"net/http"

	"domotic/internal/domain/model"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func respond(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Cannot encode response")
	}
}

func respondDetail(w http.ResponseWriter, detail *model.DeviceDetail, err error) {
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, detail)
}

// respondError maps domain errors to statuses. Transport failures never expose their cause.
func respondError(w http.ResponseWriter, err error) {
	var (
		validationErr *model.ValidationError
		notFoundErr   *model.NotFoundError
		duplicateErr  *model.DuplicateKeyError
		cloudErr      *model.CloudError
		transportErr  *model.TransportError
	)

	switch {
	case errors.As(err, &validationErr):
		respond(w, http.StatusBadRequest, errorResponse{Error: validationErr.Error(), Field: validationErr.Field})
	case errors.As(err, &notFoundErr):
		respond(w, http.StatusNotFound, errorResponse{Error: notFoundErr.Error()})
	case errors.As(err, &duplicateErr):
		respond(w, http.StatusConflict, errorResponse{Error: duplicateErr.Error(), Field: duplicateErr.Field})
	case errors.As(err, &cloudErr):
		respond(w, http.StatusBadGateway, errorResponse{Error: cloudErr.Message})
	case errors.As(err, &transportErr):
		respond(w, http.StatusBadGateway, errorResponse{Error: transportErr.Error()})
	default:
		log.Error().Err(err).Msg("Unhandled error")
		respond(w, http.StatusInternalServerError, errorResponse{Error: "Internal error"})
	}
}

// decode reads a JSON body, rejecting unknown fields.
func decode(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return &model.ValidationError{Field: "body", Reason: err.Error()}
	}
	return nil
}
