package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/dailyjournal/internal/common"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
)

// Error is a non-2xx answer from the server.
type Error struct {
	Status  int
	Message string
	Fields  common.ValidationErrors
}

func (e *Error) Error() string {
	if len(e.Fields) > 0 {
		parts := make([]string, 0, len(e.Fields))
		for _, f := range e.Fields {
			parts = append(parts, f.Field+": "+f.Message)
		}
		return fmt.Sprintf("server returned %d: %s", e.Status, strings.Join(parts, "; "))
	}
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// Is maps the HTTP status onto the client sentinels so callers can use
// errors.Is without inspecting codes.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrUnavailable:
		return e.Status == http.StatusBadGateway || e.Status == http.StatusServiceUnavailable
	case common.ErrValidation:
		return e.Status == http.StatusBadRequest
	case common.ErrConflict:
		return e.Status == http.StatusConflict
	case common.ErrForbidden:
		return e.Status == http.StatusForbidden
	case common.ErrTokenExpired:
		return e.Status == http.StatusUnauthorized && e.Message == common.ErrTokenExpired.Error()
	}
	return false
}
