package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/marlowe/tally/internal/model"
	"github.com/marlowe/tally/internal/store"
	ws "github.com/marlowe/tally/internal/websocket"
)

type SettingsHandler struct {
	settings *store.SettingsStore
	hub      *ws.Hub
	logger   *slog.Logger
}

func NewSettingsHandler(settings *store.SettingsStore, hub *ws.Hub, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{settings: settings, hub: hub, logger: logger}
}

func (h *SettingsHandler) GetTime(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.settings.TimeConfig()
	if err != nil {
		h.logger.Error("get time config", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get time settings"})
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// PutTime saves the day-boundary settings. An invalid day start or timezone
// is rejected; the stored configuration is never left unusable.
func (h *SettingsHandler) PutTime(w http.ResponseWriter, r *http.Request) {
	var req model.TimeConfig
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if req.DayStartTime == "" {
		req.DayStartTime = model.DefaultDayStartTime
	}
	if req.Timezone == "" {
		req.Timezone = "UTC"
	}

	if err := h.settings.SetTimeConfig(req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	cfg, err := h.settings.TimeConfig()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to reload time settings"})
		return
	}

	h.hub.Broadcast(ws.NewMessage("settings", "updated", 0, 0, map[string]any{
		"day_start_time": cfg.DayStartTime,
	}))
	writeJSON(w, http.StatusOK, cfg)
}

// SetParentPIN sets or replaces the household's parent PIN. Changing an
// existing PIN requires the current one.
func (h *SettingsHandler) SetParentPIN(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PIN        string `json:"pin"`
		CurrentPIN string `json:"current_pin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	if len(req.PIN) != 4 || !isDigits(req.PIN) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "PIN must be exactly 4 digits"})
		return
	}
	if !requireParentPIN(w, h.settings, req.CurrentPIN) {
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.PIN), bcrypt.DefaultCost)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to hash PIN"})
		return
	}

	if err := h.settings.SetParentPINHash(string(hash)); err != nil {
		h.logger.Error("set parent pin", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to set PIN"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "pin set"})
}

func (h *SettingsHandler) ClearParentPIN(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PIN string `json:"pin"`
	}
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}
	if !requireParentPIN(w, h.settings, req.PIN) {
		return
	}

	if err := h.settings.ClearParentPIN(); err != nil {
		h.logger.Error("clear parent pin", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to clear PIN"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "pin cleared"})
}

func (h *SettingsHandler) VerifyParentPIN(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PIN string `json:"pin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	hash, err := h.settings.ParentPINHash()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to check PIN"})
		return
	}
	if hash == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "no PIN set"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.PIN)); err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "incorrect PIN"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "verified"})
}
