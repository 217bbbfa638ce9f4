package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"mydienst/internal/auth"
	"mydienst/internal/database"
	"mydienst/internal/models"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.db.ListUsers(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("list users failed")
		writeError(w, http.StatusInternalServerError, "users_list_failed")
		return
	}
	if users == nil {
		users = []*models.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Role     string `json:"role"`
		Email    string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing_fields")
		return
	}
	if req.Role == "" {
		req.Role = models.RoleUser
	}
	if !models.ValidRole(req.Role) {
		writeError(w, http.StatusBadRequest, "invalid_role")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error().Err(err).Msg("password hash failed")
		writeError(w, http.StatusInternalServerError, "user_create_failed")
		return
	}

	user := &models.User{
		Username:     req.Username,
		PasswordHash: hash,
		Role:         req.Role,
		Email:        req.Email,
	}
	if err := s.db.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, database.ErrUserExists) {
			writeError(w, http.StatusConflict, "user_exists")
			return
		}
		s.logger.Error().Err(err).Msg("create user failed")
		writeError(w, http.StatusInternalServerError, "user_create_failed")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id")
		return
	}

	var req struct {
		Password *string `json:"password"`
		Role     *string `json:"role"`
		Email    *string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	var update database.UserUpdate
	if req.Password != nil {
		if *req.Password == "" {
			writeError(w, http.StatusBadRequest, "missing_fields")
			return
		}
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			s.logger.Error().Err(err).Msg("password hash failed")
			writeError(w, http.StatusInternalServerError, "user_update_failed")
			return
		}
		update.PasswordHash = &hash
	}
	if req.Role != nil {
		if !models.ValidRole(*req.Role) {
			writeError(w, http.StatusBadRequest, "invalid_role")
			return
		}
		update.Role = req.Role
	}
	update.Email = req.Email

	if err := s.db.UpdateUser(r.Context(), id, update); err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "not_found")
			return
		}
		s.logger.Error().Err(err).Msg("update user failed")
		writeError(w, http.StatusInternalServerError, "user_update_failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id")
		return
	}

	user, err := s.db.GetUserByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "not_found")
			return
		}
		s.logger.Error().Err(err).Msg("delete user lookup failed")
		writeError(w, http.StatusInternalServerError, "user_delete_failed")
		return
	}

	// Keep the system reachable: the last admin account stays.
	if user.IsAdmin() {
		admins, err := s.db.CountAdmins(r.Context())
		if err != nil {
			s.logger.Error().Err(err).Msg("count admins failed")
			writeError(w, http.StatusInternalServerError, "user_delete_failed")
			return
		}
		if admins <= 1 {
			writeError(w, http.StatusConflict, "last_admin")
			return
		}
	}

	if err := s.db.DeleteUser(r.Context(), id); err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "not_found")
			return
		}
		s.logger.Error().Err(err).Msg("delete user failed")
		writeError(w, http.StatusInternalServerError, "user_delete_failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
