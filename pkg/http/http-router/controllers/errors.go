package controllers

import (
	"errors"
	"net/http"

	"github.com/lintang-b-s/nearest-cities/pkg"

	"go.uber.org/zap"
)

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// WriteError writes the error envelope every API error shares, middleware rejections included.
func WriteError(w http.ResponseWriter, status int, code, message string) error {
	var resp errorResponse
	resp.Error.Code = code
	resp.Error.Message = message
	return writeJSON(w, status, resp, nil)
}

func (api *cityAPI) errorResponse(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	if err := WriteError(w, status, code, message); err != nil {
		api.log.Error("failed to write error response", zap.String("path", r.URL.Path), zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func (api *cityAPI) ServerErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	api.log.Error("server error", zap.String("method", r.Method), zap.String("path", r.URL.Path), zap.Error(err))
	api.errorResponse(w, r, http.StatusInternalServerError, "internal_server_error", pkg.MessageInternalServerError)
}

func (api *cityAPI) BadRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	api.errorResponse(w, r, http.StatusBadRequest, "bad_request", message(err))
}

func (api *cityAPI) NotFoundResponse(w http.ResponseWriter, r *http.Request, err error) {
	api.errorResponse(w, r, http.StatusNotFound, "not_found", message(err))
}

func (api *cityAPI) ConflictResponse(w http.ResponseWriter, r *http.Request, err error) {
	api.errorResponse(w, r, http.StatusConflict, "conflict", message(err))
}

// ServiceErrorResponse maps the error code set by the store or the service to a status.
func (api *cityAPI) ServiceErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case pkg.HasCode(err, pkg.ErrNotFound):
		api.NotFoundResponse(w, r, err)
	case pkg.HasCode(err, pkg.ErrConflict):
		api.ConflictResponse(w, r, err)
	case pkg.HasCode(err, pkg.ErrBadParamInput):
		api.BadRequestResponse(w, r, err)
	default:
		api.ServerErrorResponse(w, r, err)
	}
}

func message(err error) string {
	var e *pkg.Error
	if errors.As(err, &e) {
		return e.Message()
	}
	return err.Error()
}
