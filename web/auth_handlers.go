package web

import (
	"encoding/json"
	"net/http"
)

type userResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Status    string `json:"status"`
}

func newUserResponse(u *User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Status:    u.Status,
	}
}

// handleRegister creates a new user account
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		renderJSON(w, http.StatusMethodNotAllowed, apiError{Code: http.StatusMethodNotAllowed, Message: "Method not allowed"})
		return
	}

	if s.authSvc == nil {
		renderJSON(w, http.StatusServiceUnavailable, apiError{Code: http.StatusServiceUnavailable, Message: "Authentication service not configured"})
		return
	}

	var req struct {
		Email     string `json:"email"`
		Password  string `json:"password"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderJSON(w, http.StatusBadRequest, apiError{Code: http.StatusBadRequest, Message: "Invalid request body"})
		return
	}

	user, err := s.authSvc.Register(r.Context(), req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		renderJSON(w, http.StatusBadRequest, apiError{Code: http.StatusBadRequest, Message: err.Error()})
		return
	}

	// Auto-login after registration
	_, session, token, err := s.authSvc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		renderJSON(w, http.StatusCreated, map[string]any{"user": newUserResponse(user)})
		return
	}

	setSessionCookie(w, r, token, session)

	renderJSON(w, http.StatusCreated, map[string]any{
		"user":          newUserResponse(user),
		"session_token": token,
		"expires_at":    session.ExpiresAt,
	})
}

// handleLogin authenticates a user
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		renderJSON(w, http.StatusMethodNotAllowed, apiError{Code: http.StatusMethodNotAllowed, Message: "Method not allowed"})
		return
	}

	if s.authSvc == nil {
		renderJSON(w, http.StatusServiceUnavailable, apiError{Code: http.StatusServiceUnavailable, Message: "Authentication service not configured"})
		return
	}

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderJSON(w, http.StatusBadRequest, apiError{Code: http.StatusBadRequest, Message: "Invalid request body"})
		return
	}

	user, session, token, err := s.authSvc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		renderJSON(w, http.StatusUnauthorized, apiError{Code: http.StatusUnauthorized, Message: "Invalid email or password"})
		return
	}

	setSessionCookie(w, r, token, session)

	renderJSON(w, http.StatusOK, map[string]any{
		"user":          newUserResponse(user),
		"session_token": token,
		"expires_at":    session.ExpiresAt,
	})
}

// handleLogout invalidates all sessions of the current user
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		renderJSON(w, http.StatusMethodNotAllowed, apiError{Code: http.StatusMethodNotAllowed, Message: "Method not allowed"})
		return
	}

	user := getUserFromContext(r.Context())
	if user == nil {
		renderJSON(w, http.StatusUnauthorized, apiError{Code: http.StatusUnauthorized, Message: "Unauthorized"})
		return
	}

	if err := s.authSvc.LogoutAll(r.Context(), user.ID); err != nil {
		renderJSON(w, http.StatusInternalServerError, apiError{Code: http.StatusInternalServerError, Message: err.Error()})
		return
	}

	clearSessionCookie(w)

	w.WriteHeader(http.StatusNoContent)
}

// handleGetMe returns the current user
func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		renderJSON(w, http.StatusMethodNotAllowed, apiError{Code: http.StatusMethodNotAllowed, Message: "Method not allowed"})
		return
	}

	user := getUserFromContext(r.Context())
	if user == nil {
		renderJSON(w, http.StatusUnauthorized, apiError{Code: http.StatusUnauthorized, Message: "Unauthorized"})
		return
	}

	renderJSON(w, http.StatusOK, map[string]any{"user": newUserResponse(user)})
}

// handleChangePassword changes user's password
func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		renderJSON(w, http.StatusMethodNotAllowed, apiError{Code: http.StatusMethodNotAllowed, Message: "Method not allowed"})
		return
	}

	user := getUserFromContext(r.Context())
	if user == nil {
		renderJSON(w, http.StatusUnauthorized, apiError{Code: http.StatusUnauthorized, Message: "Unauthorized"})
		return
	}

	var req struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderJSON(w, http.StatusBadRequest, apiError{Code: http.StatusBadRequest, Message: "Invalid request body"})
		return
	}

	if err := s.authSvc.ChangePassword(r.Context(), user.ID, req.OldPassword, req.NewPassword); err != nil {
		renderJSON(w, http.StatusBadRequest, apiError{Code: http.StatusBadRequest, Message: err.Error()})
		return
	}

	clearSessionCookie(w)

	renderJSON(w, http.StatusOK, map[string]any{
		"message": "Password changed successfully. Please login again.",
	})
}

func setSessionCookie(w http.ResponseWriter, r *http.Request, token string, session *UserSession) {
	http.SetCookie(w, &http.Cookie{
		Name:     "session_token",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
		Expires:  session.ExpiresAt,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     "session_token",
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}
