package web

// errors.go turns handler errors into responses. The technical error is
// logged with the request id; the client receives the coded user message
// from ops.MapError, as JSON for /api routes and JSON-accepting clients and as
// plain text otherwise.

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/JonMunkholm/basedata/internal/logging"
	"github.com/JonMunkholm/basedata/internal/ops"
)

// ErrorResponse is the JSON body of an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// errBadRequest marks request validation failures.
var errBadRequest = errors.New("bad request")

// respondError logs err and writes the user message with the status derived
// from it.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	userMsg := userMessage(err)

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
	)

	// The raw error goes to the JSON body for API callers; pages only show
	// the coded message.
	if wantsJSON(r) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(ErrorResponse{
			Error:   err.Error(),
			Message: userMsg.Message,
			Action:  userMsg.Action,
			Code:    userMsg.Code,
		})
		return
	}
	http.Error(w, userMsg.Message+" ("+userMsg.Code+")", status)
}

// userMessage is ops.MapError extended with request validation failures.
func userMessage(err error) ops.UserMessage {
	if errors.Is(err, errBadRequest) {
		return ops.UserMessage{
			Message: "The request is invalid",
			Action:  "Check the query parameters and try again",
			Code:    "REQ001",
		}
	}
	return ops.MapError(err)
}

// statusFor maps err to an HTTP status. Oversized bodies and request
// validation failures are checked first; everything else goes through the
// error code from ops.MapError.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	}

	switch ops.MapError(err).Code {
	// Caller mistakes
	case "FMT001", "SRC001", "ARG001", "COL001", "FILE002":
		return http.StatusBadRequest
	case "DUP001":
		return http.StatusConflict
	case "FILE001":
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// wantsJSON reports whether the client should get a JSON error. API routes
// always do; pages only when the client asks for JSON.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	return strings.HasPrefix(r.URL.Path, "/api/")
}
