package web

import (
	"encoding/json"
	"net/http"
	"time"
)

type createAPIKeyRequest struct {
	Name      string     `json:"name"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

type createAPIKeyResponse struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Key       string     `json:"key"` // Only returned on creation
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Message   string     `json:"message"`
}

type apiKeyResponse struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}

type listAPIKeysResponse struct {
	APIKeys []apiKeyResponse `json:"api_keys"`
	Count   int              `json:"count"`
}

// apiCreateAPIKey handles POST /api/v1/apikeys
func (s *Server) apiCreateAPIKey(w http.ResponseWriter, r *http.Request) {
	var req createAPIKeyRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderJSON(w, http.StatusBadRequest, apiError{
			Code:    http.StatusBadRequest,
			Message: "Invalid request body",
		})
		return
	}

	if req.Name == "" {
		renderJSON(w, http.StatusUnprocessableEntity, apiError{
			Code:    http.StatusUnprocessableEntity,
			Message: "Name is required",
		})
		return
	}

	createdBy := ""
	if user := getUserFromContext(r.Context()); user != nil {
		createdBy = user.ID
	}

	key, apiKey, err := s.apiKeySvc.Create(r.Context(), req.Name, createdBy, req.ExpiresAt)
	if err != nil {
		renderJSON(w, http.StatusInternalServerError, apiError{
			Code:    http.StatusInternalServerError,
			Message: "Failed to create API key: " + err.Error(),
		})
		return
	}

	response := createAPIKeyResponse{
		ID:        apiKey.ID,
		Name:      apiKey.Name,
		Key:       key, // Full API key - only shown once!
		Status:    apiKey.Status,
		CreatedAt: apiKey.CreatedAt,
		ExpiresAt: apiKey.ExpiresAt,
		Message:   "API key created successfully. Please save this key as it will not be shown again.",
	}

	renderJSON(w, http.StatusCreated, response)
}

// apiListAPIKeys handles GET /api/v1/apikeys
func (s *Server) apiListAPIKeys(w http.ResponseWriter, r *http.Request) {
	apiKeys, err := s.apiKeySvc.List(r.Context())
	if err != nil {
		renderJSON(w, http.StatusInternalServerError, apiError{
			Code:    http.StatusInternalServerError,
			Message: "Failed to list API keys: " + err.Error(),
		})
		return
	}

	response := listAPIKeysResponse{
		APIKeys: make([]apiKeyResponse, len(apiKeys)),
		Count:   len(apiKeys),
	}

	for i, key := range apiKeys {
		response.APIKeys[i] = apiKeyResponse{
			ID:         key.ID,
			Name:       key.Name,
			Status:     key.Status,
			CreatedAt:  key.CreatedAt,
			UpdatedAt:  key.UpdatedAt,
			LastUsedAt: key.LastUsedAt,
			ExpiresAt:  key.ExpiresAt,
		}
	}

	renderJSON(w, http.StatusOK, response)
}

// apiGetAPIKey handles GET /api/v1/apikeys/{id}
func (s *Server) apiGetAPIKey(w http.ResponseWriter, r *http.Request) {
	id, ok := getIDFromRequest(r)
	if !ok {
		renderJSON(w, http.StatusBadRequest, apiError{
			Code:    http.StatusBadRequest,
			Message: "Invalid or missing API key ID",
		})
		return
	}

	apiKey, err := s.apiKeySvc.Get(r.Context(), id.String())
	if err != nil {
		renderJSON(w, http.StatusNotFound, apiError{
			Code:    http.StatusNotFound,
			Message: "API key not found",
		})
		return
	}

	response := apiKeyResponse{
		ID:         apiKey.ID,
		Name:       apiKey.Name,
		Status:     apiKey.Status,
		CreatedAt:  apiKey.CreatedAt,
		UpdatedAt:  apiKey.UpdatedAt,
		LastUsedAt: apiKey.LastUsedAt,
		ExpiresAt:  apiKey.ExpiresAt,
	}

	renderJSON(w, http.StatusOK, response)
}

// apiRevokeAPIKey handles POST /api/v1/apikeys/{id}/revoke
func (s *Server) apiRevokeAPIKey(w http.ResponseWriter, r *http.Request) {
	id, ok := getIDFromRequest(r)
	if !ok {
		renderJSON(w, http.StatusBadRequest, apiError{
			Code:    http.StatusBadRequest,
			Message: "Invalid or missing API key ID",
		})
		return
	}

	if err := s.apiKeySvc.Revoke(r.Context(), id.String()); err != nil {
		renderJSON(w, http.StatusInternalServerError, apiError{
			Code:    http.StatusInternalServerError,
			Message: "Failed to revoke API key: " + err.Error(),
		})
		return
	}

	renderJSON(w, http.StatusOK, map[string]string{
		"message": "API key revoked successfully",
	})
}

// apiDeleteAPIKey handles DELETE /api/v1/apikeys/{id}
func (s *Server) apiDeleteAPIKey(w http.ResponseWriter, r *http.Request) {
	id, ok := getIDFromRequest(r)
	if !ok {
		renderJSON(w, http.StatusBadRequest, apiError{
			Code:    http.StatusBadRequest,
			Message: "Invalid or missing API key ID",
		})
		return
	}

	if err := s.apiKeySvc.Delete(r.Context(), id.String()); err != nil {
		renderJSON(w, http.StatusInternalServerError, apiError{
			Code:    http.StatusInternalServerError,
			Message: "Failed to delete API key: " + err.Error(),
		})
		return
	}

	renderJSON(w, http.StatusOK, map[string]string{
		"message": "API key deleted successfully",
	})
}
