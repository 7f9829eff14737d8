package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/Veraticus/climbr/internal/analysis"
	"github.com/Veraticus/climbr/internal/common"
	"github.com/Veraticus/climbr/internal/model"
	"github.com/Veraticus/climbr/internal/records"
	"github.com/Veraticus/climbr/internal/storage"
)

var (
	errNoStore    = errors.New("wall set storage is not configured")
	errBadRequest = errors.New("bad request")
)

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func errorResponse(err error) (int, errorBody) {
	body := errorBody{Error: err.Error()}
	if kind := analysis.KindOf(err); kind != analysis.KindUnknown {
		body.Kind = string(kind)
	}

	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, model.ErrEmptyImage),
		errors.Is(err, model.ErrNotImage),
		errors.Is(err, model.ErrInvalidEncoding),
		errors.Is(err, records.ErrInvalidGrade),
		errors.Is(err, storage.ErrEmptyWallSet),
		errors.Is(err, storage.ErrInvalidWallSet):
		return http.StatusBadRequest, body
	case errors.Is(err, model.ErrImageTooLarge), errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, body
	case errors.Is(err, common.ErrNotFound):
		body.Error = "not found"
		return http.StatusNotFound, body
	case errors.Is(err, errNoStore):
		return http.StatusNotImplemented, body
	case errors.Is(err, analysis.ErrMissingCredential):
		return http.StatusServiceUnavailable, body
	case errors.Is(err, analysis.ErrNoRoutes):
		return http.StatusUnprocessableEntity, body
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, body
	case errors.Is(err, analysis.ErrUnparseableResponse):
		return http.StatusBadGateway, body
	}

	var transportErr *analysis.TransportError
	if errors.As(err, &transportErr) {
		return http.StatusBadGateway, body
	}
	return http.StatusInternalServerError, body
}
