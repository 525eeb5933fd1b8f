package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/marlowe/tally/internal/engine"
	"github.com/marlowe/tally/internal/model"
	"github.com/marlowe/tally/internal/store"
)

// ProgressHandler serves the read side of the progression systems: streaks,
// achievements, skill levels, and reward balances.
type ProgressHandler struct {
	achievements *store.AchievementStore
	rewards      *store.RewardStore
	engine       *engine.Engine
	logger       *slog.Logger
}

func NewProgressHandler(achievements *store.AchievementStore, rewards *store.RewardStore, eng *engine.Engine, logger *slog.Logger) *ProgressHandler {
	return &ProgressHandler{achievements: achievements, rewards: rewards, engine: eng, logger: logger}
}

func (h *ProgressHandler) Streak(w http.ResponseWriter, r *http.Request) {
	childID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	streak, err := h.engine.Streaks.Current(childID)
	if err != nil {
		h.logger.Error("get streak", "child_id", childID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get streak"})
		return
	}
	writeJSON(w, http.StatusOK, streak)
}

// Catalog returns every achievement the catalog defines.
func (h *ProgressHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	catalog, err := h.achievements.ListCatalog()
	if err != nil {
		h.logger.Error("list achievement catalog", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list achievements"})
		return
	}
	if catalog == nil {
		catalog = []model.Achievement{}
	}
	writeJSON(w, http.StatusOK, catalog)
}

// Unlocked returns the child's unlocked achievements.
func (h *ProgressHandler) Unlocked(w http.ResponseWriter, r *http.Request) {
	childID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	unlocked, err := h.achievements.ListUnlocked(childID)
	if err != nil {
		h.logger.Error("list unlocked achievements", "child_id", childID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list achievements"})
		return
	}
	if unlocked == nil {
		unlocked = []model.UnlockedAchievement{}
	}
	writeJSON(w, http.StatusOK, unlocked)
}

// Skills returns the child's per-category points with derived levels.
func (h *ProgressHandler) Skills(w http.ResponseWriter, r *http.Request) {
	childID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	progress, err := h.engine.Skills.Progress(childID)
	if err != nil {
		h.logger.Error("get skill progress", "child_id", childID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get skills"})
		return
	}
	if progress == nil {
		progress = []model.SkillProgress{}
	}
	writeJSON(w, http.StatusOK, progress)
}

// Balance returns the child's current star and gem balances plus recent
// ledger entries.
func (h *ProgressHandler) Balance(w http.ResponseWriter, r *http.Request) {
	childID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	balance, err := h.rewards.Balance(childID)
	if err != nil {
		h.logger.Error("get balance", "child_id", childID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get balance"})
		return
	}

	limit := 20
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	entries, err := h.rewards.ListEntries(childID, limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list reward entries"})
		return
	}
	if entries == nil {
		entries = []model.RewardEntry{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"balance": balance, "entries": entries})
}
