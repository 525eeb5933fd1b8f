package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/marlowe/tally/internal/engine"
	"github.com/marlowe/tally/internal/handler"
	"github.com/marlowe/tally/internal/middleware"
	"github.com/marlowe/tally/internal/store"
	ws "github.com/marlowe/tally/internal/websocket"
)

type Server struct {
	db          *sql.DB
	hub         *ws.Hub
	engine      *engine.Engine
	childH      *handler.ChildHandler
	taskH       *handler.TaskHandler
	questH      *handler.QuestHandler
	progressH   *handler.ProgressHandler
	salaryH     *handler.SalaryHandler
	settingsH   *handler.SettingsHandler
	rateLimiter *middleware.RateLimiter
	logger      *slog.Logger
}

func New(db *sql.DB, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	childStore := store.NewChildStore(db)
	taskStore := store.NewTaskStore(db)
	questStore := store.NewQuestStore(db)
	streakStore := store.NewStreakStore(db)
	achievementStore := store.NewAchievementStore(db)
	skillStore := store.NewSkillStore(db)
	rewardStore := store.NewRewardStore(db)
	salaryStore := store.NewSalaryStore(db)
	settingsStore := store.NewSettingsStore(db)

	engineLogger := logger.With("component", "engine")
	eng := engine.New(
		settingsStore,
		taskStore,
		engine.NewQuestEngine(questStore, rewardStore, engineLogger),
		engine.NewStreakTracker(streakStore),
		engine.NewAchievementEvaluator(achievementStore, rewardStore, engineLogger),
		engine.NewSkillLeveler(skillStore),
		engine.NewPayrollCalculator(salaryStore, taskStore, rewardStore),
		rewardStore,
		engine.SystemClock{},
		engineLogger,
	)

	return &Server{
		db:          db,
		hub:         hub,
		engine:      eng,
		childH:      handler.NewChildHandler(childStore, hub, logger.With("component", "child")),
		taskH:       handler.NewTaskHandler(taskStore, settingsStore, eng, hub, logger.With("component", "task")),
		questH:      handler.NewQuestHandler(questStore, eng, hub, logger.With("component", "quest")),
		progressH:   handler.NewProgressHandler(achievementStore, rewardStore, eng, logger.With("component", "progress")),
		salaryH:     handler.NewSalaryHandler(salaryStore, settingsStore, eng, hub, logger.With("component", "salary")),
		settingsH:   handler.NewSettingsHandler(settingsStore, hub, logger.With("component", "settings")),
		rateLimiter: middleware.NewRateLimiter(),
		logger:      logger,
	}
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)

	// Children
	mux.HandleFunc("GET /api/children", s.childH.List)
	mux.HandleFunc("POST /api/children", s.childH.Create)
	mux.HandleFunc("PUT /api/children/{id}", s.childH.Update)
	mux.HandleFunc("DELETE /api/children/{id}", s.childH.Delete)
	mux.HandleFunc("PUT /api/children/sort", s.childH.UpdateSortOrder)

	// Tasks
	mux.HandleFunc("POST /api/tasks", s.taskH.Create)
	mux.HandleFunc("GET /api/tasks", s.taskH.List)
	mux.HandleFunc("PUT /api/tasks/{id}", s.taskH.Update)
	mux.HandleFunc("DELETE /api/tasks/{id}", s.taskH.Delete)
	mux.HandleFunc("POST /api/tasks/{id}/complete", s.taskH.Complete)
	mux.HandleFunc("POST /api/tasks/{id}/approve", s.rateLimited(s.taskH.Approve))
	mux.HandleFunc("POST /api/tasks/{id}/reject", s.rateLimited(s.taskH.Reject))
	mux.HandleFunc("POST /api/tasks/{id}/reset", s.taskH.Reset)

	// Quests
	mux.HandleFunc("GET /api/children/{id}/quests", s.questH.ListActive)
	mux.HandleFunc("POST /api/children/{id}/quests/daily", s.questH.RunDaily)
	mux.HandleFunc("POST /api/children/{id}/quests/weekly", s.questH.RunWeekly)

	// Progression
	mux.HandleFunc("GET /api/children/{id}/streak", s.progressH.Streak)
	mux.HandleFunc("GET /api/achievements", s.progressH.Catalog)
	mux.HandleFunc("GET /api/children/{id}/achievements", s.progressH.Unlocked)
	mux.HandleFunc("GET /api/children/{id}/skills", s.progressH.Skills)
	mux.HandleFunc("GET /api/children/{id}/balance", s.progressH.Balance)

	// Salary
	mux.HandleFunc("GET /api/children/{id}/salary", s.salaryH.GetConfig)
	mux.HandleFunc("PUT /api/children/{id}/salary", s.salaryH.PutConfig)
	mux.HandleFunc("GET /api/children/{id}/salary/preview", s.salaryH.Preview)
	mux.HandleFunc("POST /api/children/{id}/salary/pay", s.rateLimited(s.salaryH.Pay))
	mux.HandleFunc("GET /api/children/{id}/salary/payments", s.salaryH.ListPayments)

	// Settings
	mux.HandleFunc("GET /api/settings/time", s.settingsH.GetTime)
	mux.HandleFunc("PUT /api/settings/time", s.settingsH.PutTime)
	mux.HandleFunc("POST /api/settings/pin", s.settingsH.SetParentPIN)
	mux.HandleFunc("DELETE /api/settings/pin", s.settingsH.ClearParentPIN)
	mux.HandleFunc("POST /api/settings/pin/verify", s.rateLimited(s.settingsH.VerifyParentPIN))

	// WebSocket
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.logger.With("component", "websocket")))

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// rateLimited guards PIN-checked routes against brute-force attempts.
func (s *Server) rateLimited(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 30, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}
