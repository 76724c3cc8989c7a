package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/matzebond/CoP-Bot/internal/auth"
	"github.com/matzebond/CoP-Bot/internal/game"
	"github.com/matzebond/CoP-Bot/internal/store"
)

// Handler serves the read-only dashboard API. The only principal is the
// dashboard itself: one password from config, one JWT subject.
type Handler struct {
	Game     *game.State
	Solves   *store.SolveStore // nil when the archive is disabled
	Auth     *auth.Service
	PassHash []byte // bcrypt hash of the dashboard password, empty => login disabled
	TokenTTL time.Duration
}

type LoginRequest struct {
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"accessToken"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use POST")
		return
	}
	if len(h.PassHash) == 0 {
		writeError(w, http.StatusServiceUnavailable, "login_disabled", "no dashboard password configured")
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid json")
		return
	}
	if req.Password == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "password is required")
		return
	}

	if err := bcrypt.CompareHashAndPassword(h.PassHash, []byte(req.Password)); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid password")
		return
	}

	token, err := h.Auth.Sign("dashboard", h.TokenTTL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", "failed to sign token")
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{AccessToken: token})
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Game.Summary())
}

func (h *Handler) Highscore(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Game.Scores())
}

func (h *Handler) RecentSolves(w http.ResponseWriter, r *http.Request) {
	if h.Solves == nil {
		writeJSON(w, http.StatusOK, []store.Solve{})
		return
	}

	solves, err := h.Solves.Recent(r.Context(), 50)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", "failed to load solves")
		return
	}
	writeJSON(w, http.StatusOK, solves)
}
