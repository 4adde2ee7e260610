package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"yt-seo-studio/assistant"
	"yt-seo-studio/types"
	"yt-seo-studio/youtube"
)

// response is the body of every JSON reply
type response struct {
	Status  string `json:"status"`
	Data    any    `json:"data,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

func respond(w http.ResponseWriter, status int, body response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeSuccess(w http.ResponseWriter, status int, data any) {
	respond(w, status, response{Status: "success", Data: data})
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	respond(w, status, response{Status: "success", Message: message})
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	respond(w, status, response{Status: "error", Code: code, Message: message})
}

// mapError turns a service error into status, code and user-facing message
func mapError(err error) (int, string, string) {
	switch {
	case errors.Is(err, youtube.ErrAPIKeyRequired), errors.Is(err, youtube.ErrAccessTokenRequired):
		return http.StatusUnauthorized, "CREDENTIALS_REQUIRED", err.Error()
	case errors.Is(err, assistant.ErrEmptyMessage):
		return http.StatusBadRequest, "INVALID_INPUT", err.Error()
	}

	msg := types.UserMessage(err)
	switch types.KindOf(err) {
	case types.KindInvalidInput:
		return http.StatusBadRequest, "INVALID_INPUT", msg
	case types.KindTimeout:
		return http.StatusGatewayTimeout, "TIMEOUT", msg
	case types.KindNetwork:
		return http.StatusBadGateway, "UPSTREAM_UNAVAILABLE", msg
	case types.KindGeneration, types.KindSchemaMismatch:
		return http.StatusBadGateway, "GENERATION_FAILED", msg
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR", msg
}
