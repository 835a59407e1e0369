// errors.go - Error taxonomy and JSON response helpers.
//
// Every failure is recovered at the handler boundary and converted to a
// JSON body with a short message field. Download-resolution failures are
// deliberately uninformative: decrypt errors and missing records produce
// the same message.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
)

var (
	// Authentication failures (401).
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")

	// Role / verification failures (403).
	ErrUnverifiedAccount = errors.New("account not verified")
	ErrForbidden         = errors.New("forbidden")

	// Registry lookups (404).
	ErrNotFound = errors.New("not found")

	// Signup conflicts (400).
	ErrEmailTaken = errors.New("email already registered")

	// Upload pipeline (400).
	ErrUnsupportedType = errors.New("file type not allowed")
	ErrTypeMismatch    = errors.New("invalid file type")
	ErrPayloadTooLarge = errors.New("file too large")

	// Download resolver (400/404). One error for malformed wrappers,
	// wrong-key decrypts and missing records alike.
	ErrInvalidLink = errors.New("invalid download link")
)

type messageResp struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageResp{Message: msg})
}
