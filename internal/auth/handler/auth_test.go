package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Lala-Rental/lala-rental-backend/internal/auth/service"
	"github.com/Lala-Rental/lala-rental-backend/pkg/auth"
	apperrors "github.com/Lala-Rental/lala-rental-backend/pkg/errors"
	"github.com/Lala-Rental/lala-rental-backend/pkg/logger"
	"github.com/Lala-Rental/lala-rental-backend/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type mockAuthService struct {
	signInFunc func(ctx context.Context, accessToken string) (*service.SignInResponse, error)
	meFunc     func(ctx context.Context, actor *auth.Actor) (*model.User, error)
}

func (m *mockAuthService) SignInWithGoogle(ctx context.Context, accessToken string) (*service.SignInResponse, error) {
	return m.signInFunc(ctx, accessToken)
}

func (m *mockAuthService) Me(ctx context.Context, actor *auth.Actor) (*model.User, error) {
	return m.meFunc(ctx, actor)
}

func serve(svc *mockAuthService, method, target, body string, actor *auth.Actor) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if actor != nil {
		req = req.WithContext(auth.WithActor(req.Context(), actor))
	}

	router := httprouter.New()
	NewAuthHandler(svc, logger.Nop()).RegisterRoutes(router)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestGoogle_ReturnsUserAndToken(t *testing.T) {
	svc := &mockAuthService{
		signInFunc: func(_ context.Context, token string) (*service.SignInResponse, error) {
			if token != "ya29.token" {
				t.Errorf("unexpected token %q", token)
			}
			return &service.SignInResponse{User: &model.User{ID: "u1", Email: "jane@example.com"}, AuthToken: "jwt"}, nil
		},
	}

	rec := serve(svc, http.MethodPost, "/api/v1/auth/google", `{"token":"ya29.token"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data struct {
			User      model.User `json:"user"`
			AuthToken string     `json:"auth_token"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.AuthToken != "jwt" || resp.Data.User.ID != "u1" {
		t.Errorf("unexpected response %+v", resp.Data)
	}
}

func TestGoogle_InvalidToken(t *testing.T) {
	svc := &mockAuthService{
		signInFunc: func(context.Context, string) (*service.SignInResponse, error) {
			return nil, apperrors.Unauthorized("Invalid Google token")
		},
	}

	if rec := serve(svc, http.MethodPost, "/api/v1/auth/google", `{"token":"bad"}`, nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	if rec := serve(svc, http.MethodPost, "/api/v1/auth/google", `not json`, nil); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestLogoutAndMe_RequireAuth(t *testing.T) {
	svc := &mockAuthService{
		meFunc: func(_ context.Context, actor *auth.Actor) (*model.User, error) {
			return &model.User{ID: actor.ID}, nil
		},
	}
	actor := &auth.Actor{ID: "u1", Role: model.RoleRenter}

	if rec := serve(svc, http.MethodPost, "/api/v1/auth/logout", "", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("logout anonymous: expected 401, got %d", rec.Code)
	}
	if rec := serve(svc, http.MethodPost, "/api/v1/auth/logout", "", actor); rec.Code != http.StatusOK {
		t.Errorf("logout: expected 200, got %d", rec.Code)
	}
	if rec := serve(svc, http.MethodGet, "/api/v1/auth/me", "", actor); rec.Code != http.StatusOK {
		t.Errorf("me: expected 200, got %d", rec.Code)
	}
}
