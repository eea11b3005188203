package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"assetvault/internal/domain"
	"assetvault/internal/httputil"
)

// handleError converts domain errors to HTTP responses
func handleError(w http.ResponseWriter, err error) {
	var conflictErr *domain.ConflictError
	var stepErr *domain.StepError

	switch {
	case errors.As(err, &stepErr):
		// the failed step decides the status; the client also needs what already happened
		status := statusFor(stepErr.Err)
		httputil.RespondErrorWithExtras(w, status, stepErr.Error(), map[string]any{
			"step":      stepErr.Step,
			"completed": stepErr.Completed,
		})
	case errors.As(err, &conflictErr):
		extras := map[string]any{}
		if conflictErr.ResourceID != "" {
			extras["resource_type"] = conflictErr.ResourceType
			extras["resource_id"] = conflictErr.ResourceID
		}
		httputil.RespondErrorWithExtras(w, http.StatusConflict, conflictErr.Error(), extras)
	default:
		status := statusFor(err)
		detail := err.Error()
		if status == http.StatusInternalServerError {
			slog.Error("request failed", "error", err)
			detail = "internal server error"
		}
		httputil.RespondError(w, status, detail)
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// HandleCreateConflict handles conflicts during creation by returning the existing resource with 409
// If the error is a ConflictError naming a resource, it calls fetchFn to retrieve it
func HandleCreateConflict[T any](w http.ResponseWriter, err error, fetchFn func(id string) (*T, error)) {
	var conflictErr *domain.ConflictError
	if errors.As(err, &conflictErr) && conflictErr.ResourceID != "" {
		existing, fetchErr := fetchFn(conflictErr.ResourceID)
		if fetchErr != nil {
			handleError(w, fetchErr)
			return
		}
		httputil.RespondJSON(w, http.StatusConflict, existing)
		return
	}

	handleError(w, err)
}

// pathID reads a required {id} path segment
func pathID(w http.ResponseWriter, r *http.Request, what string) (string, bool) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, what+" ID is required")
		return "", false
	}
	return id, true
}

// parseBody decodes the JSON body, answering 400 on failure
func parseBody(w http.ResponseWriter, r *http.Request, dest any) bool {
	if err := httputil.ParseJSON(w, r, dest); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// required answers 400 when a body field the authorization check needs is missing
func required(w http.ResponseWriter, field, value string) bool {
	if value == "" {
		httputil.RespondError(w, http.StatusBadRequest, field+" is required")
		return false
	}
	return true
}

// HealthCheck answers liveness probes
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
