package shared

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/flashquiz/flashquiz-api/internal/redact"
)

// Envelope is the uniform response shape of every endpoint:
// {success, data?, message?, pagination?}.
type Envelope struct {
	Success    bool        `json:"success"`
	Data       interface{} `json:"data,omitempty"`
	Message    string      `json:"message,omitempty"`
	Pagination interface{} `json:"pagination,omitempty"`
	TraceID    string      `json:"traceId,omitempty"`
}

// developmentMode controls whether 5xx responses carry the (redacted)
// underlying error message. Production responses never do.
var developmentMode atomic.Bool

// SetDevelopmentMode toggles detailed error responses. Called once at
// startup from the server configuration.
func SetDevelopmentMode(enabled bool) {
	developmentMode.Store(enabled)
}

// RespondWithJSON writes a JSON response with the given status code and body.
func RespondWithJSON(w http.ResponseWriter, r *http.Request, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// RespondWithData writes a success envelope with the given data.
func RespondWithData(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	RespondWithJSON(w, r, status, Envelope{Success: true, Data: data})
}

// RespondWithPage writes a success envelope with data and pagination.
func RespondWithPage(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	data interface{},
	pagination interface{},
) {
	RespondWithJSON(w, r, status, Envelope{Success: true, Data: data, Pagination: pagination})
}

// RespondWithMessage writes a success envelope carrying a message and
// optional data (used by delete, which returns the removed record).
func RespondWithMessage(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	message string,
	data interface{},
) {
	RespondWithJSON(w, r, status, Envelope{Success: true, Message: message, Data: data})
}

// RespondWithError writes an error envelope with the given status code and
// message, tagged with the request's trace ID when available.
func RespondWithError(w http.ResponseWriter, r *http.Request, status int, message string) {
	traceID := GetTraceID(r.Context())

	slog.Debug("sending error response",
		"status_code", status,
		"message", message,
		"trace_id", traceID,
		"path", r.URL.Path,
		"method", r.Method)

	RespondWithJSON(w, r, status, Envelope{
		Success: false,
		Message: message,
		TraceID: traceID,
	})
}

// RespondWithErrorAndLog writes an error envelope and logs the detailed
// error. The full error is logged (redacted); the client sees only the
// sanitized message, except that 5xx responses in development mode also
// carry the redacted error detail.
//
// Log level strategy: 5xx at ERROR, 4xx at DEBUG.
func RespondWithErrorAndLog(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	userMessage string,
	err error,
) {
	traceID := GetTraceID(r.Context())

	message := userMessage
	if status >= http.StatusInternalServerError && developmentMode.Load() && err != nil {
		message = fmt.Sprintf("%s: %s", userMessage, redact.Error(err))
	}

	logAttrs := []slog.Attr{
		slog.String("trace_id", traceID),
		slog.String("path", r.URL.Path),
		slog.String("method", r.Method),
		slog.Int("status_code", status),
		slog.String("user_message", userMessage),
	}
	if err != nil {
		logAttrs = append(logAttrs,
			slog.String("error", redact.Error(err)),
			slog.String("error_type", fmt.Sprintf("%T", err)))
	}

	logLevel := slog.LevelDebug
	if status >= http.StatusInternalServerError {
		logLevel = slog.LevelError
	}
	slog.LogAttrs(r.Context(), logLevel, "API error response", logAttrs...)

	RespondWithJSON(w, r, status, Envelope{
		Success: false,
		Message: message,
		TraceID: traceID,
	})
}
