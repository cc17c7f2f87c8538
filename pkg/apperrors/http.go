package apperrors

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteHTTP renders err as a structured JSON failure. Internal errors are
// logged and masked; typed errors surface their message.
func WriteHTTP(w http.ResponseWriter, err error) {
	status := StatusOf(err)
	body := errorBody{Error: string(CodeOf(err))}

	var e *Error
	if errors.As(err, &e) {
		body.Message = e.Message
	} else {
		slog.Error("unhandled error", "error", err)
		body.Error = "INTERNAL_ERROR"
		body.Message = "internal server error"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
