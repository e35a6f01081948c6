package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/NBS282/themepark-api/internal/config"
	"github.com/NBS282/themepark-api/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupAuth(t *testing.T) (*gorm.DB, *AuthHandler) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	db.AutoMigrate(&models.User{})

	cfg := &config.Config{JWTSecret: "test-secret"}
	return db, NewAuthHandler(cfg, db)
}

func createStaff(t *testing.T, db *gorm.DB, name, role, password string) models.User {
	t.Helper()
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user := models.User{
		Name:               name,
		Email:              name + "@park.example",
		PasswordHash:       hash,
		IdentificationCode: "staff-" + name,
		BirthDate:          time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
		Role:               role,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func TestHandleLogin(t *testing.T) {
	db, handler := setupAuth(t)
	createStaff(t, db, "olga", models.RoleOperator, "s3cret")

	t.Run("ValidCredentials", func(t *testing.T) {
		req := &LoginRequest{}
		req.Body.Email = "olga@park.example"
		req.Body.Password = "s3cret"

		resp, err := handler.HandleLogin(context.Background(), req)
		if err != nil {
			t.Fatalf("login failed: %v", err)
		}
		if !strings.Contains(resp.SetCookie, "auth_token=") {
			t.Errorf("expected session cookie, got %q", resp.SetCookie)
		}
	})

	t.Run("WrongPassword", func(t *testing.T) {
		req := &LoginRequest{}
		req.Body.Email = "olga@park.example"
		req.Body.Password = "nope"
		if _, err := handler.HandleLogin(context.Background(), req); err == nil {
			t.Fatal("expected wrong password to be rejected")
		}
	})

	t.Run("UnknownEmail", func(t *testing.T) {
		req := &LoginRequest{}
		req.Body.Email = "ghost@park.example"
		req.Body.Password = "s3cret"
		if _, err := handler.HandleLogin(context.Background(), req); err == nil {
			t.Fatal("expected unknown email to be rejected")
		}
	})
}

func TestHandleMe(t *testing.T) {
	db, handler := setupAuth(t)
	user := createStaff(t, db, "ana", models.RoleAdmin, "s3cret")

	t.Run("Authenticated", func(t *testing.T) {
		token, err := handler.GenerateToken(user.ID)
		if err != nil {
			t.Fatalf("failed to generate token: %v", err)
		}
		input := &AuthInput{Cookie: "auth_token=" + token}

		resp, err := handler.HandleMe(context.Background(), input)
		if err != nil {
			t.Fatalf("HandleMe returned error: %v", err)
		}
		if resp.Body.Email != user.Email {
			t.Errorf("expected email %s, got %s", user.Email, resp.Body.Email)
		}
		if resp.Body.Role != models.RoleAdmin {
			t.Errorf("expected admin role, got %s", resp.Body.Role)
		}
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		if _, err := handler.HandleMe(context.Background(), &AuthInput{}); err == nil {
			t.Fatal("expected error for unauthenticated request, got nil")
		}
	})

	t.Run("TamperedToken", func(t *testing.T) {
		other := NewAuthHandler(&config.Config{JWTSecret: "other-secret"}, db)
		token, _ := other.GenerateToken(user.ID)
		input := &AuthInput{Cookie: "auth_token=" + token}
		if _, err := handler.HandleMe(context.Background(), input); err == nil {
			t.Fatal("expected token signed with another secret to be rejected")
		}
	})
}

func TestRequireRole(t *testing.T) {
	db, handler := setupAuth(t)
	operator := createStaff(t, db, "omar", models.RoleOperator, "s3cret")
	admin := createStaff(t, db, "ada", models.RoleAdmin, "s3cret")
	visitor := createStaff(t, db, "vic", models.RoleVisitor, "s3cret")

	if err := handler.RequireRole(operator.ID, models.RoleOperator); err != nil {
		t.Errorf("operator should pass the operator check: %v", err)
	}
	if err := handler.RequireRole(operator.ID, models.RoleAdmin); err == nil {
		t.Error("operator should not pass the admin check")
	}
	if err := handler.RequireRole(admin.ID, models.RoleOperator); err != nil {
		t.Errorf("admin should pass every check: %v", err)
	}
	if err := handler.RequireRole(visitor.ID, models.RoleOperator); err == nil {
		t.Error("visitor should not pass the operator check")
	}
}
