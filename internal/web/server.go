// Package web — служебный HTTP-сервер бота (порт 3000 в контейнере):
// health-check, сводка по чату, журнал активности и живая трансляция
// журнала по websocket.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"example.com/capbot/internal/store"
)

type Server struct {
	repo *store.Repository
	hub  *hub
	srv  *http.Server
	log  *slog.Logger
}

func New(addr string, repo *store.Repository, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		repo: repo,
		hub:  newHub(log),
		log:  log,
	}

	r := chi.NewRouter()
	r.Get("/healthz", s.handleHealth)
	r.Get("/api/stats", s.handleStats)
	r.Get("/api/activity", s.handleActivity)
	r.Get("/ws/activity", s.hub.handleWS)

	s.srv = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler — маршрутизатор сервера (для тестов).
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Publish рассылает событие журнала всем подписчикам /ws/activity.
func (s *Server) Publish(a store.Activity) {
	s.hub.broadcast(a)
}

func (s *Server) Start() {
	go func() {
		s.log.Info("ops server listening", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("ops server", "err", err)
		}
	}()
}

func (s *Server) Stop(ctx context.Context) error {
	s.hub.closeAll()
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	chatID, err := strconv.ParseInt(r.URL.Query().Get("chat_id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "chat_id обязателен"})
		return
	}
	stats, err := s.repo.ChatStats(chatID)
	if err != nil {
		s.log.Error("stats", "chat", chatID, "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal"})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	rows, err := s.repo.RecentActivity(limit)
	if err != nil {
		s.log.Error("activity", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal"})
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
