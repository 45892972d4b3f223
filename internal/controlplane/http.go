// Package controlplane implements the REST surface for lobby lifecycle:
// create, join, get, and list, plus health and metrics endpoints. This is
// the only part of the server that speaks HTTP; gameplay itself is UDP.
package controlplane

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/text/width"

	"crossfire/server/internal/lobby"
	"crossfire/server/internal/metrics"
	"crossfire/server/internal/supervisor"
)

// Supervisor is the subset of *supervisor.Supervisor the HTTP handlers
// depend on, narrowed for testability.
type Supervisor interface {
	CreateLobby(code string, maxPlayers int, sceneID string) error
	JoinLobby(code, name string) (string, lobby.Snapshot, error)
	GetLobby(code string) ([]lobby.Snapshot, bool)
	ListLobbies() []string
}

// NewRouter builds the chi router for the control plane.
func NewRouter(sup Supervisor, m *metrics.Metrics) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	h := &handlers{sup: sup}

	r.Get("/health", h.handleHealth)
	if m != nil {
		r.Handle("/metrics", promhttp.HandlerFor(m.Registry(), promhttp.HandlerOpts{}))
	}

	r.Route("/lobbies", func(r chi.Router) {
		r.Post("/", h.handleCreateLobby)
		r.Get("/", h.handleListLobbies)
		r.Get("/{code}", h.handleGetLobby)
		r.Post("/{code}/join", h.handleJoinLobby)
	})

	return r
}

type handlers struct {
	sup Supervisor
}

func (h *handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

type createLobbyRequest struct {
	Code       string `json:"code"`
	MaxPlayers int    `json:"max_players"`
	Scene      string `json:"scene"`
}

func (h *handlers) handleCreateLobby(w http.ResponseWriter, r *http.Request) {
	var req createLobbyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.Wrap(err, "decode create-lobby request"))
		return
	}
	if req.Code == "" {
		writeError(w, http.StatusBadRequest, errors.New("code is required"))
		return
	}

	err := h.sup.CreateLobby(req.Code, req.MaxPlayers, req.Scene)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"code": req.Code})
	case stderrors.Is(err, supervisor.ErrLobbyExists):
		writeError(w, http.StatusConflict, err)
	case stderrors.Is(err, supervisor.ErrUnknownScene):
		writeError(w, http.StatusBadRequest, err)
	default:
		writeError(w, http.StatusInternalServerError, errors.Wrap(err, "create lobby"))
	}
}

type joinLobbyRequest struct {
	PlayerName string `json:"player_name"`
}

type joinLobbyResponse struct {
	PlayerID string        `json:"player_id"`
	Lobby    lobby.Snapshot `json:"lobby"`
}

func (h *handlers) handleJoinLobby(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	var req joinLobbyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.Wrap(err, "decode join request"))
		return
	}

	name := sanitizeName(req.PlayerName)
	playerID, snap, err := h.sup.JoinLobby(code, name)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(joinLobbyResponse{PlayerID: playerID, Lobby: snap})
}

func (h *handlers) handleGetLobby(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	players, ok := h.sup.GetLobby(code)
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("lobby not found"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"code": code, "players": players})
}

func (h *handlers) handleListLobbies(w http.ResponseWriter, r *http.Request) {
	codes := h.sup.ListLobbies()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"lobbies": codes})
}

// sanitizeName folds fullwidth/halfwidth variants in a client-supplied
// display name before it's stored, since the data model treats name as an
// opaque client string with no other validation.
func sanitizeName(name string) string {
	folded := width.Narrow.String(name)
	if folded == "" {
		return "player"
	}
	return folded
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
