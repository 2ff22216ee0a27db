// Package web serves the board as HTML. Each task list's buttons are
// plain form posts that run the view action and redirect back to the
// board.
package web

import (
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/s1natex/taskboard/internal/board"
	"github.com/s1natex/taskboard/internal/tasklist"
	"github.com/s1natex/taskboard/internal/tasks"
)

var viewActionsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "taskboard_view_actions_total",
		Help: "Task list view actions by category, action and outcome",
	},
	[]string{"category", "action", "outcome"},
)

func init() {
	prometheus.MustRegister(viewActionsTotal)
}

type Server struct {
	board  *board.Board
	logger *slog.Logger
	page   *template.Template
}

func NewServer(b *board.Board, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		board:  b,
		logger: logger,
		page: template.Must(template.New("page").Funcs(template.FuncMap{
			"renderList": tasklist.HTML,
		}).Parse(pageHTML)),
	}
}

// RegisterRoutes mounts the board pages on r.
func (s *Server) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(withSecurityHeaders)
		r.Get("/", s.handleIndex)
		r.Get("/static/app.css", s.handleCSS)
		r.Route("/board/{category}", func(r chi.Router) {
			r.Post("/tasks/{id}/delete", s.action("delete", func(ctx context.Context, v *tasklist.View, id string) error {
				return v.Delete(ctx, id)
			}))
			r.Post("/tasks/{id}/move", s.action("move", func(ctx context.Context, v *tasklist.View, id string) error {
				return v.Move(ctx, id)
			}))
			r.Post("/alert/dismiss", s.dismiss("dismiss_alert", (*tasklist.View).DismissAlert))
			r.Post("/error/dismiss", s.dismiss("dismiss_error", (*tasklist.View).DismissError))
		})
	})
}

type pageModel struct {
	Lists     []tasklist.Model
	LoadError string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	var pm pageModel
	if err := s.board.Refresh(r.Context()); err != nil {
		s.logger.ErrorContext(r.Context(), "board_load_failed", slog.String("error", err.Error()))
		pm.LoadError = "Could not load tasks. Showing the last known lists."
	}
	pm.Lists = s.board.Models()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.page.Execute(w, pm); err != nil {
		s.logger.ErrorContext(r.Context(), "board_render_failed", slog.String("error", err.Error()))
	}
}

func (s *Server) handleCSS(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write([]byte(appCSS))
}

func (s *Server) view(w http.ResponseWriter, r *http.Request) (*tasklist.View, bool) {
	c, ok := tasks.ParseCategory(chi.URLParam(r, "category"))
	if !ok {
		http.NotFound(w, r)
		return nil, false
	}
	return s.board.View(c), true
}

func (s *Server) action(name string, run func(context.Context, *tasklist.View, string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, ok := s.view(w, r)
		if !ok {
			return
		}
		id := chi.URLParam(r, "id")

		outcome := "success"
		if err := run(r.Context(), v, id); err != nil {
			outcome = "failure"
			if errors.Is(err, tasklist.ErrInFlight) {
				outcome = "in_flight"
			}
			s.logger.WarnContext(r.Context(), "view_action_failed",
				slog.String("action", name),
				slog.String("category", string(v.Category())),
				slog.String("task_id", id),
				slog.String("error", err.Error()),
			)
		}
		viewActionsTotal.WithLabelValues(string(v.Category()), name, outcome).Inc()
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

func (s *Server) dismiss(name string, run func(*tasklist.View)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, ok := s.view(w, r)
		if !ok {
			return
		}
		run(v)
		viewActionsTotal.WithLabelValues(string(v.Category()), name, "success").Inc()
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

func withSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self'; form-action 'self'; base-uri 'none'; frame-ancestors 'none'")
		next.ServeHTTP(w, r)
	})
}
