package handler

import (
	"log/slog"
	"net/http"

	"github.com/marlowe/tally/internal/engine"
	"github.com/marlowe/tally/internal/model"
	"github.com/marlowe/tally/internal/store"
	ws "github.com/marlowe/tally/internal/websocket"
)

type QuestHandler struct {
	quests *store.QuestStore
	engine *engine.Engine
	hub    *ws.Hub
	logger *slog.Logger
}

func NewQuestHandler(quests *store.QuestStore, eng *engine.Engine, hub *ws.Hub, logger *slog.Logger) *QuestHandler {
	return &QuestHandler{quests: quests, engine: eng, hub: hub, logger: logger}
}

// ListActive returns the child's quests whose period includes today.
func (h *QuestHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	childID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	quests, err := h.quests.ListActive(childID, h.engine.Today())
	if err != nil {
		h.logger.Error("list active quests", "child_id", childID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list quests"})
		return
	}
	if quests == nil {
		quests = []model.Quest{}
	}
	writeJSON(w, http.StatusOK, quests)
}

// RunDaily generates today's daily quests, counts the check-in, and expires
// stale quests. Idempotent; kiosks call it on every day rollover.
func (h *QuestHandler) RunDaily(w http.ResponseWriter, r *http.Request) {
	childID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	completed, err := h.engine.RunDailyMaintenance(childID)
	if err != nil {
		h.logger.Error("daily maintenance", "child_id", childID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to run daily maintenance"})
		return
	}

	for _, q := range completed {
		h.hub.Broadcast(ws.NewMessage("quest", "completed", q.ID, q.ChildID, map[string]any{
			"template_key": q.TemplateKey,
		}))
	}

	quests, err := h.quests.ListActive(childID, h.engine.Today())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list quests"})
		return
	}
	if quests == nil {
		quests = []model.Quest{}
	}
	writeJSON(w, http.StatusOK, quests)
}

// RunWeekly generates this week's weekly quests. Idempotent.
func (h *QuestHandler) RunWeekly(w http.ResponseWriter, r *http.Request) {
	childID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	if err := h.engine.RunWeeklyMaintenance(childID); err != nil {
		h.logger.Error("weekly maintenance", "child_id", childID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to run weekly maintenance"})
		return
	}

	quests, err := h.quests.ListActive(childID, h.engine.Today())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list quests"})
		return
	}
	if quests == nil {
		quests = []model.Quest{}
	}
	writeJSON(w, http.StatusOK, quests)
}
