package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/marlowe/tally/internal/engine"
	"github.com/marlowe/tally/internal/model"
	"github.com/marlowe/tally/internal/schedule"
	"github.com/marlowe/tally/internal/store"
	ws "github.com/marlowe/tally/internal/websocket"
)

type SalaryHandler struct {
	salaries *store.SalaryStore
	settings *store.SettingsStore
	engine   *engine.Engine
	hub      *ws.Hub
	logger   *slog.Logger
}

func NewSalaryHandler(salaries *store.SalaryStore, settings *store.SettingsStore, eng *engine.Engine, hub *ws.Hub, logger *slog.Logger) *SalaryHandler {
	return &SalaryHandler{salaries: salaries, settings: settings, engine: eng, hub: hub, logger: logger}
}

func (h *SalaryHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	childID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	cfg, err := h.salaries.GetConfig(childID)
	if err != nil {
		h.logger.Error("get salary config", "child_id", childID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get salary config"})
		return
	}
	if cfg == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no salary config for child"})
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (h *SalaryHandler) PutConfig(w http.ResponseWriter, r *http.Request) {
	childID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req struct {
		BaseAmount        float64 `json:"base_amount"`
		MinCompletionRate int     `json:"min_completion_rate"`
		BonusPerPercent   float64 `json:"bonus_per_percent"`
		MaxBonus          float64 `json:"max_bonus"`
		PayDay            int     `json:"pay_day"`
		PIN               string  `json:"pin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if !requireParentPIN(w, h.settings, req.PIN) {
		return
	}

	if req.BaseAmount < 0 || req.BonusPerPercent < 0 || req.MaxBonus < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "amounts must not be negative"})
		return
	}
	if req.MinCompletionRate < 0 || req.MinCompletionRate > 100 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "min_completion_rate must be 0-100"})
		return
	}
	if req.PayDay < 0 || req.PayDay > 6 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "pay_day must be 0-6"})
		return
	}

	cfg := model.SalaryConfig{
		ChildID:           childID,
		BaseAmount:        req.BaseAmount,
		MinCompletionRate: req.MinCompletionRate,
		BonusPerPercent:   req.BonusPerPercent,
		MaxBonus:          req.MaxBonus,
		PayDay:            req.PayDay,
	}
	if err := h.salaries.SetConfig(cfg); err != nil {
		h.logger.Error("set salary config", "child_id", childID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to save salary config"})
		return
	}

	saved, err := h.salaries.GetConfig(childID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to reload salary config"})
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// weekStartParam resolves the week_start query parameter, defaulting to the
// week containing today's logical date.
func (h *SalaryHandler) weekStartParam(r *http.Request) (time.Time, error) {
	if s := r.URL.Query().Get("week_start"); s != "" {
		return time.Parse("2006-01-02", s)
	}
	today, err := time.Parse("2006-01-02", h.engine.Today())
	if err != nil {
		return time.Time{}, err
	}
	return schedule.WeekStart(today), nil
}

// Preview reports the week's completion rate and the amount Pay would credit,
// without recording anything.
func (h *SalaryHandler) Preview(w http.ResponseWriter, r *http.Request) {
	childID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	weekStart, err := h.weekStartParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "week_start must be YYYY-MM-DD"})
		return
	}

	rate, amount, err := h.engine.Payroll.Preview(childID, weekStart)
	if errors.Is(err, engine.ErrNoSalaryConfig) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no salary config for child"})
		return
	}
	if err != nil {
		h.logger.Error("preview salary", "child_id", childID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to preview salary"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"week_start":      schedule.DateString(weekStart),
		"completion_rate": rate,
		"amount":          amount,
	})
}

// Pay records the week's payment and credits the amount as gems. Requires the
// parent PIN when one is configured; paying the same week twice is a conflict.
func (h *SalaryHandler) Pay(w http.ResponseWriter, r *http.Request) {
	childID, err := parseIDParam(r)
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

	weekStart, err := h.weekStartParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "week_start must be YYYY-MM-DD"})
		return
	}

	payment, err := h.engine.PayWeeklySalary(childID, weekStart)
	switch {
	case errors.Is(err, engine.ErrNoSalaryConfig):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no salary config for child"})
		return
	case errors.Is(err, engine.ErrAlreadyPaid):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "salary already paid for this week"})
		return
	case err != nil:
		h.logger.Error("pay salary", "child_id", childID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to pay salary"})
		return
	}

	h.hub.Broadcast(ws.NewMessage("salary", "paid", payment.ID, childID, map[string]any{
		"week_start": payment.WeekStart,
		"amount":     payment.Amount,
	}))
	writeJSON(w, http.StatusCreated, payment)
}

// ListPayments returns the child's payment history, newest first.
func (h *SalaryHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	childID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	payments, err := h.salaries.ListPayments(childID)
	if err != nil {
		h.logger.Error("list salary payments", "child_id", childID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list payments"})
		return
	}
	if payments == nil {
		payments = []model.SalaryPayment{}
	}
	writeJSON(w, http.StatusOK, payments)
}
