package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/rationsetu/rationsetu-backend/api/middleware"
	"github.com/rationsetu/rationsetu-backend/internal/auth"
	"github.com/rationsetu/rationsetu-backend/internal/users"
	"github.com/rationsetu/rationsetu-backend/pkg/logger"
)

type testAuthService struct {
	registerFn func(ctx context.Context, req auth.RegisterRequest) (*users.UserDTO, error)
	loginFn    func(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error)
	logoutFn   func(ctx context.Context, accessID string) error
	refreshFn  func(ctx context.Context, req auth.RefreshRequest) (*auth.RefreshResponse, error)
}

func (s *testAuthService) Register(ctx context.Context, req auth.RegisterRequest) (*users.UserDTO, error) {
	if s.registerFn != nil {
		return s.registerFn(ctx, req)
	}
	return nil, nil
}

func (s *testAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	if s.loginFn != nil {
		return s.loginFn(ctx, req)
	}
	return nil, nil
}

func (s *testAuthService) Logout(ctx context.Context, accessID string) error {
	if s.logoutFn != nil {
		return s.logoutFn(ctx, accessID)
	}
	return nil
}

func (s *testAuthService) Refresh(ctx context.Context, req auth.RefreshRequest) (*auth.RefreshResponse, error) {
	if s.refreshFn != nil {
		return s.refreshFn(ctx, req)
	}
	return nil, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func TestAuthRegisterSuccess(t *testing.T) {
	called := false
	svc := &testAuthService{
		registerFn: func(ctx context.Context, req auth.RegisterRequest) (*users.UserDTO, error) {
			called = true
			if req.Email != "asha@example.com" {
				t.Fatalf("unexpected email %s", req.Email)
			}
			return &users.UserDTO{ID: uuid.New(), Name: req.Name, Email: req.Email, Village: req.Village}, nil
		},
	}

	body := `{"name":"Asha","email":"asha@example.com","password":"longenough","village":"Rampur"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
	resp := httptest.NewRecorder()
	AuthRegister(svc, testLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if !called {
		t.Fatal("expected service called")
	}
	var envelope struct {
		Data users.UserDTO `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.Village != "Rampur" {
		t.Fatalf("expected village Rampur got %q", envelope.Data.Village)
	}
}

func TestAuthRegisterShortPassword(t *testing.T) {
	body := `{"name":"Asha","email":"asha@example.com","password":"short","village":"Rampur"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
	resp := httptest.NewRecorder()
	AuthRegister(&testAuthService{}, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAuthLoginSuccess(t *testing.T) {
	svc := &testAuthService{
		loginFn: func(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
			return &auth.LoginResponse{AccessToken: "access", RefreshToken: "refresh"}, nil
		},
	}

	body := `{"email":"asha@example.com","password":"longenough"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	resp := httptest.NewRecorder()
	AuthLogin(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	var envelope struct {
		Data auth.LoginResponse `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.AccessToken != "access" || envelope.Data.RefreshToken != "refresh" {
		t.Fatalf("unexpected token pair %+v", envelope.Data)
	}
}

func TestAuthLogoutUsesSessionFromContext(t *testing.T) {
	accessID := uuid.NewString()
	var got string
	svc := &testAuthService{
		logoutFn: func(ctx context.Context, id string) error {
			got = id
			return nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req = req.WithContext(middleware.WithAccessID(req.Context(), accessID))
	resp := httptest.NewRecorder()
	AuthLogout(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if got != accessID {
		t.Fatalf("expected access id %s got %s", accessID, got)
	}
}

func TestAuthRefreshRejectsMissingTokens(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", strings.NewReader(`{}`))
	resp := httptest.NewRecorder()
	AuthRefresh(&testAuthService{}, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
