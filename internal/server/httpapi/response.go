package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dmitrijs2005/dailyjournal/internal/common"
)

const maxBodyBytes = 1 << 20

type errorBody struct {
	Error string `json:"error"`
}

type validationBody struct {
	Errors common.ValidationErrors `json:"errors"`
}

type messageBody struct {
	Message string `json:"message"`
}

// statusFor is the single place where domain errors become HTTP codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrInvalidCredentials),
		errors.Is(err, common.ErrMissingToken),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrPrincipalNotFound),
		errors.Is(err, common.ErrFederatedAuthFailed):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, common.ErrDependencyUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage picks the text a client may see. Wrapped details from
// auth failures and store errors stay in the logs.
func publicMessage(err error, status int) string {
	for _, s := range []error{
		common.ErrInvalidCredentials,
		common.ErrMissingToken,
		common.ErrInvalidToken,
		common.ErrTokenExpired,
		common.ErrPrincipalNotFound,
		common.ErrFederatedAuthFailed,
		common.ErrForbidden,
	} {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	switch status {
	case http.StatusNotFound, http.StatusConflict:
		return err.Error()
	case http.StatusBadGateway:
		return "service temporarily unavailable"
	default:
		return "internal server error"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr common.ValidationErrors
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, validationBody{Errors: verr})
		return
	}

	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.log.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	writeJSON(w, status, errorBody{Error: publicMessage(err, status)})
}

// decodeJSON reads a JSON body into dst. A malformed body is reported as a
// validation error on the "body" field.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		msg := "Malformed JSON body"
		if errors.Is(err, io.EOF) {
			msg = "Request body is required"
		}
		return common.ValidationErrors{{Field: "body", Message: msg}}
	}
	return nil
}
