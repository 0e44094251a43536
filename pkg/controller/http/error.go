package http

import (
	"encoding/json"
	"net/http"

	"github.com/m-mizutani/goerr/v2"

	"github.com/campus-lab/campusboard/pkg/domain/model/errs"
	"github.com/campus-lab/campusboard/pkg/utils/logging"
)

type errorResponse struct {
	Message string `json:"message"`
}

func invalidRequest(msg string, cause error) error {
	if cause != nil {
		return goerr.Wrap(cause, msg, goerr.T(errs.TagValidation))
	}
	return goerr.New(msg, goerr.T(errs.TagValidation))
}

func handleError(w http.ResponseWriter, r *http.Request, err error) {
	logger := logging.From(r.Context())

	writeError := func(status int) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if encErr := json.NewEncoder(w).Encode(errorResponse{Message: err.Error()}); encErr != nil {
			logger.Warn("failed to write error response", "error", encErr)
		}
	}

	switch {
	case goerr.HasTag(err, errs.TagNotFound):
		logger.Warn("Not Found", "error", err)
		writeError(http.StatusNotFound)

	case goerr.HasTag(err, errs.TagValidation):
		logger.Warn("Bad Request", "error", err)
		writeError(http.StatusBadRequest)

	case goerr.HasTag(err, errs.TagUnauthorized):
		logger.Warn("Unauthorized", "error", err)
		writeError(http.StatusUnauthorized)

	case goerr.HasTag(err, errs.TagForbidden):
		logger.Warn("Forbidden", "error", err)
		writeError(http.StatusForbidden)

	case goerr.HasTag(err, errs.TagConflict):
		logger.Warn("Conflict", "error", err)
		writeError(http.StatusConflict)

	case goerr.HasTag(err, errs.TagDatabase), goerr.HasTag(err, errs.TagInternal):
		errs.Handle(r.Context(), err)
		writeError(http.StatusInternalServerError)

	default:
		errs.Handle(r.Context(), err)
		writeError(http.StatusInternalServerError)
	}
}
