package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"mydienst/internal/auth"
	"mydienst/internal/database"
)

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing_fields")
		return
	}

	user, err := s.db.GetUserByUsername(r.Context(), req.Username)
	if err != nil {
		if !errors.Is(err, database.ErrUserNotFound) {
			s.logger.Error().Err(err).Msg("login lookup failed")
		}
		// Same answer for unknown user and wrong password.
		writeError(w, http.StatusUnauthorized, "bad_credentials")
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		writeError(w, http.StatusUnauthorized, "bad_credentials")
		return
	}

	token, err := s.tokens.Issue(user.ID, user.Username, user.Role)
	if err != nil {
		s.logger.Error().Err(err).Msg("token issue failed")
		writeError(w, http.StatusInternalServerError, "login_failed")
		return
	}

	http.SetCookie(w, s.sessionCookie(token, int(s.tokens.TTL().Seconds())))
	s.logger.Info().Str("username", user.Username).Str("role", user.Role).Msg("login")
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, s.sessionCookie("", -1))
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"username":      claims.Username,
		"role":          claims.Role,
	})
}

func (s *Server) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     s.cfg.Auth.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   s.cfg.Auth.CookieSecure,
	}
}
