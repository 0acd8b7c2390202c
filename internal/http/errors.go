package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/getsentry/sentry-go"

	"lifedash/internal/auth"
	"lifedash/internal/core"
	"lifedash/internal/log"
	"lifedash/internal/reconcile"
	"lifedash/internal/services"
	"lifedash/internal/sheets"
)

var validationErrors = []error{
	core.ErrInvalidAmount,
	core.ErrInvalidType,
	core.ErrInvalidVehicle,
	core.ErrEmptyCategory,
	core.ErrEmptyDate,
	core.ErrEmptyDreamName,
	core.ErrEmptyDreamID,
	core.ErrInvalidLiter,
	core.ErrInvalidMeter,
	core.ErrDescriptionLength,
}

// classify maps err to a status code and a message safe to show a user.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, reconcile.ErrBusy):
		return http.StatusConflict, "Another save is still in progress"
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, strings.TrimPrefix(err.Error(), errBadRequest.Error()+": ")
	case errors.Is(err, services.ErrDreamNotFound):
		return http.StatusNotFound, "Dream not found"
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid user ID or password"
	case errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized, "Please sign in again"
	}

	for _, v := range validationErrors {
		if errors.Is(err, v) {
			return http.StatusBadRequest, capitalize(v.Error())
		}
	}

	var se *sheets.StoreError
	if errors.As(err, &se) {
		if se.Kind == sheets.KindLogical && se.Message != "" {
			return http.StatusBadGateway, "The spreadsheet rejected the request: " + se.Message
		}
		return http.StatusBadGateway, "The spreadsheet could not be reached"
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout, "The request timed out"
	}
	return http.StatusInternalServerError, "Something went wrong"
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// fail writes the error response for err. Server-side failures are logged
// and captured to Sentry.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, msg := classify(err)
	logger := log.FromContext(r.Context())

	if status >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "Request failed", log.FieldOperation, op, log.FieldError, err, log.FieldStatusCode, status)
		if hub := sentry.GetHubFromContext(r.Context()); hub != nil {
			hub.WithScope(func(scope *sentry.Scope) {
				scope.SetTag("operation", op)
				scope.SetTag("status", http.StatusText(status))
				hub.CaptureException(err)
			})
		}
	} else {
		logger.WarnContext(r.Context(), "Request rejected", log.FieldOperation, op, log.FieldError, err, log.FieldStatusCode, status)
	}

	resp := ErrorResponse(status, msg)
	if status == http.StatusConflict {
		resp.Header("Retry-After", "1")
	}
	resp.Write(w)
}

// withSentry gives every request its own hub so scope changes stay local.
func withSentry(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sentry.CurrentHub().Client() == nil {
			next.ServeHTTP(w, r)
			return
		}
		hub := sentry.CurrentHub().Clone()
		hub.Scope().SetRequest(r)
		next.ServeHTTP(w, r.WithContext(sentry.SetHubOnContext(r.Context(), hub)))
	})
}
