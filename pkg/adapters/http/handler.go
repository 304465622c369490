// Package http integrates the txscope coordinator with net/http and chi.
//
// Handlers return errors instead of writing failure responses themselves;
// the wrapper runs the coordinator around the handler and maps the translated
// application error to a status code. Handlers should only write to the
// ResponseWriter on their success path.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/aretw0/txscope"
	"github.com/aretw0/txscope/pkg/domain"
)

// HandlerFunc is an error-returning HTTP handler executed inside a
// transaction scope.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// Handler wraps fn with the coordinator: sessions are opened before fn runs,
// committed and ended when it returns nil, aborted and ended when it fails.
// The translated failure is written as a JSON error response.
func Handler(coord *txscope.Coordinator, fn HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := coord.Run(r.Context(), func(ctx context.Context) error {
			return fn(w, r.WithContext(ctx))
		})
		if err != nil {
			WriteError(w, err)
		}
	}
}

// StatusFor maps a translated error to an HTTP status code.
func StatusFor(err error) int {
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		switch appErr.Kind {
		case domain.KindBadRequest:
			return http.StatusBadRequest
		case domain.KindMisuse, domain.KindInternal:
			return http.StatusInternalServerError
		}
	}
	if errors.Is(err, domain.ErrTxAcquire) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

type errorResponse struct {
	Error string `json:"error"`
}

// WriteError writes err as a JSON error response.
func WriteError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encErr := json.NewEncoder(w).Encode(errorResponse{Error: err.Error()}); encErr != nil {
		slog.Warn("failed to write error response", "err", encErr)
	}
}
