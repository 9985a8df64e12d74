// Package result holds the response envelope shared by every JSON endpoint.
package result

import (
	"encoding/json"
	"net/http"
)

// R is the uniform success/code/message/data wrapper.
type R struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// OK builds a successful envelope carrying data.
func OK(code int, message string, data any) R {
	return R{Success: true, Code: code, Message: message, Data: data}
}

// Fail builds a failed envelope with no data.
func Fail(code int, message string) R {
	return R{Success: false, Code: code, Message: message}
}

// Write encodes r as JSON with the given HTTP status.
func Write(w http.ResponseWriter, status int, r R) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(r)
}
