package handlers

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/NBS282/themepark-api/internal/auth"
	"github.com/NBS282/themepark-api/internal/models"
	"github.com/danielgtaylor/huma/v2"
	"gorm.io/gorm"
)

// APIKeyHandler manages the credentials handed to unattended gate readers.
// These routes sit behind AuthMiddleware, so the acting user comes from the
// request context rather than from a cookie header.
type APIKeyHandler struct {
	db          *gorm.DB
	authHandler *auth.AuthHandler
}

func NewAPIKeyHandler(db *gorm.DB, authHandler *auth.AuthHandler) *APIKeyHandler {
	return &APIKeyHandler{db: db, authHandler: authHandler}
}

type CreateAPIKeyInput struct {
	Body struct {
		Label     string     `json:"label" doc:"Which reader this key is for" required:"true"`
		ExpiresAt *time.Time `json:"expires_at,omitempty"`
	}
}

type APIKeyBody struct {
	ID         uint       `json:"id"`
	Label      string     `json:"label"`
	Key        string     `json:"key"`
	CreatedAt  time.Time  `json:"created_at"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
}

type CreateAPIKeyOutput struct {
	Body APIKeyBody
}

func (h *APIKeyHandler) authorize(ctx context.Context) (uint, error) {
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return 0, huma.Error401Unauthorized("No token found")
	}
	if err := h.authHandler.RequireRole(userID, models.RoleAdmin); err != nil {
		return 0, err
	}
	return userID, nil
}

func (h *APIKeyHandler) HandleCreate(ctx context.Context, input *CreateAPIKeyInput) (*CreateAPIKeyOutput, error) {
	userID, err := h.authorize(ctx)
	if err != nil {
		return nil, err
	}

	keyBytes := make([]byte, 32)
	if _, err := rand.Read(keyBytes); err != nil {
		return nil, huma.Error500InternalServerError("Failed to generate key")
	}

	apiKey := models.APIKey{
		UserID:    userID,
		Key:       hex.EncodeToString(keyBytes),
		Label:     input.Body.Label,
		ExpiresAt: input.Body.ExpiresAt,
	}
	if err := h.db.Create(&apiKey).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to create API key")
	}

	return &CreateAPIKeyOutput{
		Body: APIKeyBody{
			ID:        apiKey.ID,
			Label:     apiKey.Label,
			Key:       apiKey.Key,
			CreatedAt: apiKey.CreatedAt,
			ExpiresAt: apiKey.ExpiresAt,
		},
	}, nil
}

type ListAPIKeysOutput struct {
	Body []APIKeyBody
}

// HandleList shows every reader key. The secret is masked; it is only handed
// out once, on creation.
func (h *APIKeyHandler) HandleList(ctx context.Context, input *struct{}) (*ListAPIKeysOutput, error) {
	if _, err := h.authorize(ctx); err != nil {
		return nil, err
	}

	var apiKeys []models.APIKey
	if err := h.db.Order("id").Find(&apiKeys).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to list API keys")
	}

	var response []APIKeyBody
	for _, k := range apiKeys {
		masked := k.Key
		if len(k.Key) > 4 {
			masked = "..." + k.Key[len(k.Key)-4:]
		}
		response = append(response, APIKeyBody{
			ID:         k.ID,
			Label:      k.Label,
			Key:        masked,
			CreatedAt:  k.CreatedAt,
			ExpiresAt:  k.ExpiresAt,
			LastUsedAt: k.LastUsedAt,
		})
	}

	return &ListAPIKeysOutput{Body: response}, nil
}

type DeleteAPIKeyInput struct {
	ID uint `path:"id"`
}

func (h *APIKeyHandler) HandleDelete(ctx context.Context, input *DeleteAPIKeyInput) (*struct{}, error) {
	if _, err := h.authorize(ctx); err != nil {
		return nil, err
	}

	res := h.db.Delete(&models.APIKey{}, input.ID)
	if res.Error != nil {
		return nil, huma.Error500InternalServerError("Failed to delete API key")
	}
	if res.RowsAffected == 0 {
		return nil, huma.Error404NotFound("API key not found")
	}

	return nil, nil
}
