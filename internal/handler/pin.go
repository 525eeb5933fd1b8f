package handler

import (
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/marlowe/tally/internal/store"
)

// requireParentPIN verifies the supplied PIN against the stored parent PIN
// hash and writes the error response on failure. A household with no PIN
// configured passes the check. Returns true when the caller may proceed.
func requireParentPIN(w http.ResponseWriter, settings *store.SettingsStore, pin string) bool {
	hash, err := settings.ParentPINHash()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to check PIN"})
		return false
	}
	if hash == "" {
		return true
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)); err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "incorrect PIN"})
		return false
	}
	return true
}
