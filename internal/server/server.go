// Package server exposes the inspection engine over HTTP.
package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/valcheur/go-steam-monitor/internal/core/model"
	"github.com/valcheur/go-steam-monitor/internal/engine"
	"github.com/valcheur/go-steam-monitor/internal/library"
	"github.com/valcheur/go-steam-monitor/internal/util"
)

type Server struct {
	engine *engine.Engine
	locate func() (*library.Discovery, error)
}

func New(eng *engine.Engine) *Server {
	return &Server{engine: eng, locate: library.Find}
}

// Routes mounts every endpoint on a fresh router.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealthz)
	r.Route("/api", func(r chi.Router) {
		r.Get("/timeline/{steamid}/{appid}", s.handleTimeline)
		r.Get("/achievements/{steamid}/{appid}", s.handleProgress)
		r.Get("/compare/{player1}/{player2}/{appid}", s.handleCompare)
		r.Get("/games/{steamid}", s.handleGames)
		r.Get("/games/local", s.handleLocalGames)
		r.Get("/users/local", s.handleLocalUsers)
		r.Get("/player/{steamid}", s.handlePlayer)
	})
	return r
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	steamID, appID, ok := pathTarget(w, r)
	if !ok {
		return
	}

	tl, err := s.engine.GetPlayerTimeline(r.Context(), steamID, appID)
	if err != nil {
		writeError(w, err)
		return
	}
	if tl == nil {
		writeJSON(w, http.StatusNotFound, errorBody("no achievement data for this player and game"))
		return
	}
	writeJSON(w, http.StatusOK, tl)
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	steamID, appID, ok := pathTarget(w, r)
	if !ok {
		return
	}

	progress, err := s.engine.GetGameProgress(r.Context(), steamID, appID)
	if err != nil {
		writeError(w, err)
		return
	}
	if progress == nil {
		writeJSON(w, http.StatusNotFound, errorBody("no achievement data for this player and game"))
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	appID, err := strconv.Atoi(chi.URLParam(r, "appid"))
	if err != nil || appID <= 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid appid"))
		return
	}
	player1 := chi.URLParam(r, "player1")
	player2 := chi.URLParam(r, "player2")

	result, err := s.engine.CompareAchievements(r.Context(), player1, player2, appID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleGames(w http.ResponseWriter, r *http.Request) {
	steamID := chi.URLParam(r, "steamid")
	games, err := s.engine.GetOwnedGames(r.Context(), steamID)
	if err != nil {
		writeError(w, err)
		return
	}
	if games == nil {
		games = []model.OwnedGame{}
	}
	writeJSON(w, http.StatusOK, games)
}

func (s *Server) handleLocalGames(w http.ResponseWriter, r *http.Request) {
	discovery, err := s.locate()
	if err != nil || discovery == nil {
		writeJSON(w, http.StatusNotFound, errorBody("no local steam installation found"))
		return
	}
	games, err := discovery.InstalledGames()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody(err.Error()))
		return
	}
	if games == nil {
		games = []model.InstalledGame{}
	}
	writeJSON(w, http.StatusOK, games)
}

// handleLocalUsers lists the steam ids logged into the local installation.
func (s *Server) handleLocalUsers(w http.ResponseWriter, r *http.Request) {
	discovery, err := s.locate()
	if err != nil || discovery == nil {
		writeJSON(w, http.StatusNotFound, errorBody("no local steam installation found"))
		return
	}
	users, err := discovery.LocalUsers()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody(err.Error()))
		return
	}
	if users == nil {
		users = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"steamids": users})
}

func (s *Server) handlePlayer(w http.ResponseWriter, r *http.Request) {
	steamID := chi.URLParam(r, "steamid")
	summary, err := s.engine.GetPlayerSummary(r.Context(), steamID)
	if err != nil {
		writeError(w, err)
		return
	}
	if summary == nil {
		writeJSON(w, http.StatusNotFound, errorBody("player not found"))
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func pathTarget(w http.ResponseWriter, r *http.Request) (string, int, bool) {
	steamID := chi.URLParam(r, "steamid")
	appID, err := strconv.Atoi(chi.URLParam(r, "appid"))
	if err != nil || appID <= 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid appid"))
		return "", 0, false
	}
	return steamID, appID, true
}

// writeError maps engine errors onto status codes.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrNotConfigured):
		writeJSON(w, http.StatusServiceUnavailable, errorBody(err.Error()))
	case errors.Is(err, engine.ErrPlayer1NoData), errors.Is(err, engine.ErrPlayer2NoData):
		writeJSON(w, http.StatusNotFound, errorBody(err.Error()))
	case errors.Is(err, model.ErrProviderUnavailable):
		writeJSON(w, http.StatusBadGateway, errorBody(err.Error()))
	case errors.Is(err, model.ErrMalformedResponse):
		writeJSON(w, http.StatusBadGateway, errorBody(err.Error()))
	default:
		util.LogErrorf("Request failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorBody(err.Error()))
	}
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}
