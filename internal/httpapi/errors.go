package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"llmgate/internal/manager"
	"llmgate/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

const notReadyDetail = "Model not loaded. Please try again later."

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Detail: msg, Code: status})
}

// errorStatus maps manager errors to an HTTP status and client-facing detail.
func errorStatus(err error) (int, string) {
	switch {
	case manager.IsInvalidParameter(err), manager.IsEmptyPrompt(err):
		return http.StatusUnprocessableEntity, err.Error()
	case manager.IsEngineNotReady(err):
		return http.StatusServiceUnavailable, notReadyDetail
	case manager.IsInvalidTransition(err):
		return http.StatusConflict, err.Error()
	case manager.IsGenerationFailed(err):
		return http.StatusInternalServerError, "Generation failed: " + manager.FailureDetail(err)
	case manager.IsModelLoadFailed(err):
		return http.StatusInternalServerError, "Failed to reload model: " + manager.FailureDetail(err)
	case manager.IsDependencyUnavailable(err):
		return http.StatusServiceUnavailable, err.Error()
	}
	var he HTTPError
	if errors.As(err, &he) {
		return he.StatusCode(), he.Error()
	}
	return http.StatusInternalServerError, err.Error()
}
