// Package middleware provides the HTTP middleware stack: the JSON error
// envelope, panic recovery, token authentication, and rate limiting.
package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/loomworks/loomplan/internal/observability"
)

// ErrorResponse is the JSON error envelope every non-2xx response carries.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody is the code/message pair inside the envelope.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes.
const (
	CodeNotFound         = "NOT_FOUND"
	CodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeTokenUnset       = "TOKEN_UNSET"
	CodeRateLimited      = "RATE_LIMITED"
	CodeBadRequest       = "BAD_REQUEST"
	CodeInternal         = "INTERNAL_ERROR"
)

// WriteError writes the JSON error envelope with the given status.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error: ErrorBody{Code: code, Message: message},
	})
}

// NotFoundHandler returns the envelope for unknown routes.
func NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	WriteError(w, http.StatusNotFound, CodeNotFound, "resource not found: "+r.URL.Path)
}

// MethodNotAllowedHandler returns the envelope for wrong methods.
func MethodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	WriteError(w, http.StatusMethodNotAllowed, CodeMethodNotAllowed,
		"method "+r.Method+" not allowed")
}

// Recovery converts handler panics into a 500 envelope instead of a
// dropped connection.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				observability.ServerLogger.Error("handler panic",
					zap.String("path", r.URL.Path),
					zap.Any("panic", rec))
				WriteError(w, http.StatusInternalServerError, CodeInternal,
					fmt.Sprintf("panic: %v", rec))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
