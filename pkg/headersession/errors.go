package headersession

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrSessionNotFound indicates no session exists under the requested key.
	ErrSessionNotFound = errors.New("headersession.not_found")

	// ErrSessionExpired indicates the session under the requested key has expired.
	ErrSessionExpired = errors.New("headersession.expired")

	// ErrInvalidSession indicates a nil session or empty key was passed to a store.
	ErrInvalidSession = errors.New("headersession.invalid")
)

// RealmMismatchError reports that a session identifier is bound to a
// different realm than the one serving the request. It renders as an
// HTTP 406 with a JSON body at the middleware boundary.
type RealmMismatchError struct {
	Realm  string // realm carried by the session identifier
	Domain string // domain of the current request
}

func (e RealmMismatchError) Error() string {
	return fmt.Sprintf("can not accept session with realm %s on realm %s", e.Realm, e.Domain)
}

// writeReason renders the boundary error body: {"reason": "..."}.
func writeReason(w http.ResponseWriter, status int, reason string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(struct {
		Reason string `json:"reason"`
	}{Reason: reason})
}
