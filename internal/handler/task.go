package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/marlowe/tally/internal/engine"
	"github.com/marlowe/tally/internal/model"
	"github.com/marlowe/tally/internal/schedule"
	"github.com/marlowe/tally/internal/store"
	ws "github.com/marlowe/tally/internal/websocket"
)

type TaskHandler struct {
	tasks    *store.TaskStore
	settings *store.SettingsStore
	engine   *engine.Engine
	hub      *ws.Hub
	logger   *slog.Logger
}

func NewTaskHandler(tasks *store.TaskStore, settings *store.SettingsStore, eng *engine.Engine, hub *ws.Hub, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{tasks: tasks, settings: settings, engine: eng, hub: hub, logger: logger}
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ChildID       int64  `json:"child_id"`
		Title         string `json:"title"`
		Category      string `json:"category"`
		ScheduledTime string `json:"scheduled_time"`
		LogicalDate   string `json:"logical_date"`
		StarValue     int    `json:"star_value"`
		GemValue      int    `json:"gem_value"`
		IsBonus       bool   `json:"is_bonus"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "title is required"})
		return
	}
	if req.ChildID == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "child_id is required"})
		return
	}
	if req.Category == "" {
		req.Category = "general"
	}
	if req.ScheduledTime != "" {
		if _, err := schedule.ParseClock(req.ScheduledTime); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "scheduled_time must be HH:MM"})
			return
		}
	}
	if req.LogicalDate == "" {
		req.LogicalDate = h.engine.Today()
	}
	if req.StarValue < 0 || req.GemValue < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "reward values must not be negative"})
		return
	}

	task, err := h.tasks.Create(req.ChildID, req.Title, req.Category, req.ScheduledTime, req.LogicalDate, req.StarValue, req.GemValue, req.IsBonus)
	if err != nil {
		h.logger.Error("create task", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create task"})
		return
	}

	h.hub.Broadcast(ws.NewMessage("task", "created", task.ID, task.ChildID, nil))
	writeJSON(w, http.StatusCreated, task)
}

// List returns a child's tasks for one logical date in chronological display
// order. Defaults to today's logical date under the configured day boundary.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	childID, err := strconv.ParseInt(r.URL.Query().Get("child_id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "child_id is required"})
		return
	}

	date := r.URL.Query().Get("date")
	if date == "" {
		date = h.engine.Today()
	}

	tasks, err := h.tasks.ListForDate(childID, date)
	if err != nil {
		h.logger.Error("list tasks", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list tasks"})
		return
	}

	sorted := h.engine.SortForDisplay(tasks)
	if sorted == nil {
		sorted = []model.Task{}
	}
	writeJSON(w, http.StatusOK, sorted)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	existing, err := h.tasks.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get task"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "task not found"})
		return
	}

	var req struct {
		Title         string `json:"title"`
		Category      string `json:"category"`
		ScheduledTime string `json:"scheduled_time"`
		StarValue     int    `json:"star_value"`
		GemValue      int    `json:"gem_value"`
		IsBonus       bool   `json:"is_bonus"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		req.Title = existing.Title
	}
	if req.Category == "" {
		req.Category = existing.Category
	}
	if req.ScheduledTime != "" {
		if _, err := schedule.ParseClock(req.ScheduledTime); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "scheduled_time must be HH:MM"})
			return
		}
	}

	task, err := h.tasks.Update(id, req.Title, req.Category, req.ScheduledTime, req.StarValue, req.GemValue, req.IsBonus)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update task"})
		return
	}

	h.hub.Broadcast(ws.NewMessage("task", "updated", task.ID, task.ChildID, nil))
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	existing, err := h.tasks.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get task"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "task not found"})
		return
	}

	if err := h.tasks.Delete(id); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete task"})
		return
	}

	h.hub.Broadcast(ws.NewMessage("task", "deleted", id, existing.ChildID, nil))
	w.WriteHeader(http.StatusNoContent)
}

// Complete marks a task done by the child and records the streak. Completing
// an already-completed task is reported as a conflict, not an error.
func (h *TaskHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	streak, won, err := h.engine.CompleteTask(id)
	if errors.Is(err, engine.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "task not found"})
		return
	}
	if err != nil {
		h.logger.Error("complete task", "task_id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to complete task"})
		return
	}
	if !won {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "task is not pending"})
		return
	}

	task, _ := h.tasks.GetByID(id)
	if task != nil {
		h.hub.Broadcast(ws.NewMessage("task", "completed", task.ID, task.ChildID, nil))
		if streak != nil {
			h.hub.Broadcast(ws.NewMessage("streak", "extended", 0, task.ChildID, map[string]any{
				"current_streak": streak.CurrentStreak,
			}))
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"task": task, "streak": streak})
}

// Approve runs the parent approval and the reward fan-out. Requires the
// parent PIN when one is configured.
func (h *TaskHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req struct {
		PIN string `json:"pin"`
	}
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}
	if !requireParentPIN(w, h.settings, req.PIN) {
		return
	}

	res, won, err := h.engine.ApproveTask(id)
	if errors.Is(err, engine.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "task not found"})
		return
	}
	if err != nil {
		h.logger.Error("approve task", "task_id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to approve task"})
		return
	}
	if !won {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "task already resolved"})
		return
	}

	h.broadcastApproval(id, res)
	writeJSON(w, http.StatusOK, res)
}

func (h *TaskHandler) broadcastApproval(taskID int64, res *engine.ApprovalResult) {
	var childID int64
	if res.Task != nil {
		childID = res.Task.ChildID
	}
	h.hub.Broadcast(ws.NewMessage("task", "approved", taskID, childID, nil))
	for _, q := range res.CompletedQuests {
		h.hub.Broadcast(ws.NewMessage("quest", "completed", q.ID, q.ChildID, map[string]any{
			"template_key": q.TemplateKey,
			"reward_stars": q.RewardStars,
			"reward_gems":  q.RewardGems,
		}))
	}
	for _, a := range res.UnlockedAchievements {
		h.hub.Broadcast(ws.NewMessage("achievement", "unlocked", 0, childID, map[string]any{
			"achievement_id": a.ID,
			"title":          a.Title,
		}))
	}
}

// Reject sends a task back with no reward. Requires the parent PIN when one
// is configured.
func (h *TaskHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req struct {
		PIN string `json:"pin"`
	}
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}
	if !requireParentPIN(w, h.settings, req.PIN) {
		return
	}

	existing, err := h.tasks.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get task"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "task not found"})
		return
	}

	won, err := h.tasks.MarkRejected(id)
	if err != nil {
		h.logger.Error("reject task", "task_id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to reject task"})
		return
	}
	if !won {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "task already resolved"})
		return
	}

	task, _ := h.tasks.GetByID(id)
	h.hub.Broadcast(ws.NewMessage("task", "rejected", id, existing.ChildID, nil))
	writeJSON(w, http.StatusOK, task)
}

// Reset reopens a rejected task so the child can try again.
func (h *TaskHandler) Reset(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	existing, err := h.tasks.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get task"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "task not found"})
		return
	}

	won, err := h.tasks.ResetToPending(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to reset task"})
		return
	}
	if !won {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "only rejected tasks can be reset"})
		return
	}

	task, _ := h.tasks.GetByID(id)
	h.hub.Broadcast(ws.NewMessage("task", "reset", id, existing.ChildID, nil))
	writeJSON(w, http.StatusOK, task)
}
