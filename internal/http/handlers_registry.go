package http

import (
	"errors"
	"log/slog"
	"net/http"

	"mitcash/internal/auth"
	"mitcash/internal/categories"
)

type categoriesResponse struct {
	Categories []categories.Category `json:"categories"`
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, categoriesResponse{Categories: s.registry.Merge()})
}

type addCategoryRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

func (s *Server) handleAddCategory(w http.ResponseWriter, r *http.Request) {
	var req addCategoryRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	name := sanitizeInput(req.Name)
	color := sanitizeInput(req.Color)

	if err := s.registry.Add(name, color); err != nil {
		switch {
		case errors.Is(err, categories.ErrDuplicateCategory):
			writeError(w, http.StatusConflict, "category already exists")
		case errors.Is(err, categories.ErrInvalidCategory):
			writeError(w, http.StatusUnprocessableEntity, "invalid category")
		default:
			writeError(w, http.StatusInternalServerError, "failed to add category")
		}
		return
	}

	s.persistCustomCategories(r)
	writeJSON(w, http.StatusCreated, okResponse{Success: true})
}

func (s *Server) handleRemoveCategory(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	if err := s.registry.Remove(name); err != nil {
		if errors.Is(err, categories.ErrProtectedCategory) {
			writeError(w, http.StatusForbidden, "built-in categories cannot be removed")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to remove category")
		return
	}

	s.persistCustomCategories(r)
	writeJSON(w, http.StatusOK, okResponse{Success: true})
}

func (s *Server) persistCustomCategories(r *http.Request) {
	if s.prefsStore == nil {
		return
	}
	if err := s.prefsStore.SetCustomCategories(s.registry.Customs()); err != nil {
		slog.ErrorContext(r.Context(), "Failed to persist custom categories", "error", err)
	}
}

type sessionResponse struct {
	SignedIn bool   `json:"signed_in"`
	Email    string `json:"email,omitempty"`
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	if s.gate == nil {
		writeJSON(w, http.StatusOK, sessionResponse{SignedIn: true})
		return
	}
	if id := s.gate.CurrentIdentity(); id != nil {
		writeJSON(w, http.StatusOK, sessionResponse{SignedIn: true, Email: id.Email})
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{SignedIn: false})
}

type signInRequest struct {
	IDToken string `json:"id_token"`
}

type signInResponse struct {
	Status string `json:"status"`
	Email  string `json:"email,omitempty"`
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	if s.gate == nil {
		writeError(w, http.StatusNotImplemented, "sign-in is not configured")
		return
	}

	var req signInRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	result := s.gate.SignIn(r.Context(), req.IDToken)
	status := http.StatusOK
	if result.Status == auth.Denied {
		status = http.StatusForbidden
	}
	writeJSON(w, status, signInResponse{Status: string(result.Status), Email: result.Email})
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	if s.gate != nil {
		s.gate.SignOut()
	}
	writeJSON(w, http.StatusOK, okResponse{Success: true})
}

type prefsResponse struct {
	DarkMode         bool                  `json:"dark_mode"`
	CustomCategories []categories.Category `json:"custom_categories"`
}

func (s *Server) handleGetPrefs(w http.ResponseWriter, r *http.Request) {
	if s.prefsStore == nil {
		writeJSON(w, http.StatusOK, prefsResponse{CustomCategories: []categories.Category{}})
		return
	}
	state := s.prefsStore.State()
	if state.CustomCategories == nil {
		state.CustomCategories = []categories.Category{}
	}
	writeJSON(w, http.StatusOK, prefsResponse{
		DarkMode:         state.DarkMode,
		CustomCategories: state.CustomCategories,
	})
}

type darkModeRequest struct {
	Enabled bool `json:"enabled"`
}

func (s *Server) handleSetDarkMode(w http.ResponseWriter, r *http.Request) {
	if s.prefsStore == nil {
		writeError(w, http.StatusNotImplemented, "preferences are not configured")
		return
	}

	var req darkModeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	if err := s.prefsStore.SetDarkMode(req.Enabled); err != nil {
		slog.ErrorContext(r.Context(), "Failed to persist dark mode", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save preference")
		return
	}
	writeJSON(w, http.StatusOK, okResponse{Success: true})
}
