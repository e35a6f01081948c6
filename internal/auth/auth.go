package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/NBS282/themepark-api/internal/config"
	"github.com/NBS282/themepark-api/internal/models"
	"github.com/NBS282/themepark-api/internal/store"
	"github.com/danielgtaylor/huma/v2"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const TokenDuration = 24 * time.Hour

type AuthHandler struct {
	db    *gorm.DB
	cfg   *config.Config
	users store.UserStore
}

func NewAuthHandler(cfg *config.Config, db *gorm.DB) *AuthHandler {
	return &AuthHandler{db: db, cfg: cfg, users: store.NewUserStore(db)}
}

// AuthInput is embedded by requests that need a session cookie.
type AuthInput struct {
	Cookie string `header:"Cookie" doc:"Session cookie issued by /auth/login"`
}

type LoginRequest struct {
	Body struct {
		Email    string `json:"email" doc:"Staff email" required:"true"`
		Password string `json:"password" doc:"Staff password" required:"true"`
	}
}

type LoginResponse struct {
	SetCookie string `header:"Set-Cookie"`
	Body      struct {
		Message string `json:"message"`
	}
}

func (h *AuthHandler) HandleLogin(ctx context.Context, input *LoginRequest) (*LoginResponse, error) {
	user, err := h.users.GetByEmail(input.Body.Email)
	if err != nil {
		return nil, huma.Error401Unauthorized("Invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Body.Password)); err != nil {
		return nil, huma.Error401Unauthorized("Invalid credentials")
	}

	token, err := h.GenerateToken(user.ID)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to generate token")
	}

	cookie := http.Cookie{
		Name:     "auth_token",
		Value:    token,
		Expires:  time.Now().Add(TokenDuration),
		HttpOnly: true,
		Path:     "/",
	}

	res := &LoginResponse{SetCookie: cookie.String()}
	res.Body.Message = fmt.Sprintf("Welcome %s!", user.Name)
	return res, nil
}

type MeResponse struct {
	Body struct {
		ID    uint   `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
		Role  string `json:"role"`
	}
}

func (h *AuthHandler) HandleMe(ctx context.Context, input *AuthInput) (*MeResponse, error) {
	userID, err := h.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}

	user, err := h.users.GetByID(userID)
	if err != nil {
		return nil, huma.Error404NotFound("User not found")
	}

	res := &MeResponse{}
	res.Body.ID = user.ID
	res.Body.Name = user.Name
	res.Body.Email = user.Email
	res.Body.Role = user.Role
	return res, nil
}

// Authorize extracts and verifies the session token from a raw Cookie header,
// returning the user id it names.
func (h *AuthHandler) Authorize(ctx context.Context, cookieHeader string) (uint, error) {
	if cookieHeader == "" {
		return 0, huma.Error401Unauthorized("No token found")
	}

	request := http.Request{Header: http.Header{"Cookie": {cookieHeader}}}
	cookie, err := request.Cookie("auth_token")
	if err != nil {
		return 0, huma.Error401Unauthorized("No token found")
	}

	return h.VerifyToken(cookie.Value)
}

// RequireRole checks the user's role; admins pass every check.
func (h *AuthHandler) RequireRole(userID uint, role string) error {
	user, err := h.users.GetByID(userID)
	if err != nil {
		return huma.Error404NotFound("User not found")
	}
	if user.Role == models.RoleAdmin || user.Role == role {
		return nil
	}
	return huma.Error403Forbidden(fmt.Sprintf("Access denied: missing %s role", role))
}

func (h *AuthHandler) GenerateToken(userID uint) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(TokenDuration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.cfg.JWTSecret))
}

// VerifyToken validates a signed token and returns the user id claim.
func (h *AuthHandler) VerifyToken(tokenString string) (uint, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(h.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, huma.Error401Unauthorized("Invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, huma.Error401Unauthorized("Invalid token claims")
	}
	userIDFloat, ok := claims["user_id"].(float64)
	if !ok {
		return 0, huma.Error401Unauthorized("Invalid token claims")
	}
	return uint(userIDFloat), nil
}

// HashPassword is used when seeding staff accounts.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
