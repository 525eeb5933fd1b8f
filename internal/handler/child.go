package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/marlowe/tally/internal/model"
	"github.com/marlowe/tally/internal/store"
	ws "github.com/marlowe/tally/internal/websocket"
)

var hexColorRegexp = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

type ChildHandler struct {
	store  *store.ChildStore
	hub    *ws.Hub
	logger *slog.Logger
}

func NewChildHandler(s *store.ChildStore, hub *ws.Hub, logger *slog.Logger) *ChildHandler {
	return &ChildHandler{store: s, hub: hub, logger: logger}
}

func (h *ChildHandler) List(w http.ResponseWriter, r *http.Request) {
	children, err := h.store.List()
	if err != nil {
		h.logger.Error("list children", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list children"})
		return
	}
	if children == nil {
		children = []model.Child{}
	}
	writeJSON(w, http.StatusOK, children)
}

func (h *ChildHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Color       string `json:"color"`
		AvatarEmoji string `json:"avatar_emoji"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	if req.Color == "" {
		req.Color = "#4A90D9"
	}
	if !hexColorRegexp.MatchString(req.Color) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "color must be a hex color (e.g. #FF0000)"})
		return
	}

	child, err := h.store.Create(req.Name, req.Color, req.AvatarEmoji)
	if err != nil {
		h.logger.Error("create child", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create child"})
		return
	}

	h.hub.Broadcast(ws.NewMessage("child", "created", child.ID, child.ID, nil))
	writeJSON(w, http.StatusCreated, child)
}

func (h *ChildHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	existing, err := h.store.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get child"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "child not found"})
		return
	}

	var req struct {
		Name        string `json:"name"`
		Color       string `json:"color"`
		AvatarEmoji string `json:"avatar_emoji"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		req.Name = existing.Name
	}
	if req.Color == "" {
		req.Color = existing.Color
	}
	if !hexColorRegexp.MatchString(req.Color) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "color must be a hex color (e.g. #FF0000)"})
		return
	}
	if req.AvatarEmoji == "" {
		req.AvatarEmoji = existing.AvatarEmoji
	}

	child, err := h.store.Update(id, req.Name, req.Color, req.AvatarEmoji)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update child"})
		return
	}

	h.hub.Broadcast(ws.NewMessage("child", "updated", child.ID, child.ID, nil))
	writeJSON(w, http.StatusOK, child)
}

func (h *ChildHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	existing, err := h.store.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get child"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "child not found"})
		return
	}

	if err := h.store.Delete(id); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete child"})
		return
	}

	h.hub.Broadcast(ws.NewMessage("child", "deleted", id, id, nil))
	w.WriteHeader(http.StatusNoContent)
}

func (h *ChildHandler) UpdateSortOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs []int64 `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if len(req.IDs) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "ids are required"})
		return
	}

	if err := h.store.UpdateSortOrder(req.IDs); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update sort order"})
		return
	}

	h.hub.Broadcast(ws.NewMessage("child", "reordered", 0, 0, nil))
	w.WriteHeader(http.StatusNoContent)
}

func parseIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
