// Package devapi serves a local copy of the game and polls API backed by
// sqlite, for development and integration tests.
package devapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-logr/logr"

	"github.com/jask/oelview/internal/database"
	"github.com/jask/oelview/internal/database/repository"
)

// Server answers the read and vote endpoints the TUI consumes.
type Server struct {
	questions *repository.QuestionRepo
	games     *repository.GameRepo
	log       logr.Logger
	csrfToken string
	now       func() time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithCSRFToken makes POST requests require a matching X-CSRFToken header.
func WithCSRFToken(token string) Option {
	return func(s *Server) { s.csrfToken = token }
}

// WithClock overrides the clock used to hide unpublished questions.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

func New(db *sql.DB, log logr.Logger, opts ...Option) *Server {
	s := &Server{
		questions: repository.NewQuestionRepo(db),
		games:     repository.NewGameRepo(db),
		log:       log,
		now:       database.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Router returns the HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Route("/game/games", func(r chi.Router) {
		r.Get("/", s.listGames)
		r.Get("/latest/", s.latestGames)
		r.Get("/{id}/", s.getGame)
	})
	r.Route("/polls", func(r chi.Router) {
		r.Get("/questions/latest/", s.latestQuestions)
		r.Get("/questions/{id}/", s.getQuestion)
		r.Get("/choices/{id}/", s.listChoices)
		r.With(s.requireCSRF).Post("/choices/{qid}/{cid}/vote_for/", s.voteFor)
	})
	return r
}

// ListenAndServe serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.log.Info("devserver listening", "addr", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.V(1).Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"requestID", r.Header.Get("X-Request-ID"),
			"elapsed", time.Since(start),
		)
	})
}

func (s *Server) requireCSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.csrfToken != "" && r.Header.Get("X-CSRFToken") != s.csrfToken {
			errorJSON(w, http.StatusForbidden, "CSRF token missing or incorrect")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) listGames(w http.ResponseWriter, r *http.Request) {
	games, err := s.games.List(r.Context())
	s.respond(w, games, err)
}

func (s *Server) latestGames(w http.ResponseWriter, r *http.Request) {
	games, err := s.games.Latest(r.Context())
	s.respond(w, games, err)
}

func (s *Server) getGame(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(w, r, "id")
	if !ok {
		return
	}
	game, err := s.games.Get(r.Context(), id)
	s.respond(w, game, err)
}

func (s *Server) latestQuestions(w http.ResponseWriter, r *http.Request) {
	qs, err := s.questions.LatestPublished(r.Context(), s.now())
	s.respond(w, qs, err)
}

func (s *Server) getQuestion(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(w, r, "id")
	if !ok {
		return
	}
	q, err := s.questions.Get(r.Context(), id)
	s.respond(w, q, err)
}

func (s *Server) listChoices(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(w, r, "id")
	if !ok {
		return
	}
	cs, err := s.questions.Choices(r.Context(), id)
	s.respond(w, cs, err)
}

func (s *Server) voteFor(w http.ResponseWriter, r *http.Request) {
	qid, ok := intParam(w, r, "qid")
	if !ok {
		return
	}
	cid, ok := intParam(w, r, "cid")
	if !ok {
		return
	}
	if err := s.questions.Vote(r.Context(), qid, cid); err != nil {
		s.respond(w, nil, err)
		return
	}
	s.log.Info("vote recorded", "question", qid, "choice", cid, "requestID", r.Header.Get("X-Request-ID"))
	writeJSON(w, http.StatusOK, map[string]string{"status": "voted"})
}

func (s *Server) respond(w http.ResponseWriter, data any, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		errorJSON(w, http.StatusNotFound, "Not found.")
	case err != nil:
		s.log.Error(err, "request failed")
		errorJSON(w, http.StatusInternalServerError, "internal error")
	default:
		writeJSON(w, http.StatusOK, data)
	}
}

func intParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	n, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || n < 0 {
		errorJSON(w, http.StatusNotFound, "Not found.")
		return 0, false
	}
	return n, true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, `{"detail":"failed to encode response"}`, http.StatusInternalServerError)
	}
}

func errorJSON(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"detail": message})
}
