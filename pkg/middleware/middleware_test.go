package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Lala-Rental/lala-rental-backend/pkg/auth"
	"github.com/Lala-Rental/lala-rental-backend/pkg/logger"
	"github.com/Lala-Rental/lala-rental-backend/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type stubTokens struct {
	actor *auth.Actor
}

func (s stubTokens) Parse(token string) (*auth.Actor, error) {
	if token != "good" {
		return nil, auth.ErrInvalidToken
	}
	return s.actor, nil
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticate(t *testing.T) {
	actor := &auth.Actor{ID: "u1", Role: model.RoleRenter}
	var seen *auth.Actor
	h := Authenticate(stubTokens{actor: actor}, logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = auth.ActorFromContext(r.Context())
	}))

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantActor  bool
	}{
		{"anonymous", "", http.StatusOK, false},
		{"valid token", "Bearer good", http.StatusOK, true},
		{"invalid token", "Bearer bad", http.StatusUnauthorized, false},
		{"wrong scheme", "Basic good", http.StatusUnauthorized, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if (seen != nil) != tt.wantActor {
				t.Errorf("actor present = %v, want %v", seen != nil, tt.wantActor)
			}
		})
	}
}

func TestRequireRoles(t *testing.T) {
	handle := RequireRoles(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.WriteHeader(http.StatusNoContent)
	}, model.RoleHost, model.RoleAdmin)

	tests := []struct {
		name  string
		actor *auth.Actor
		want  int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"renter", &auth.Actor{ID: "r", Role: model.RoleRenter}, http.StatusForbidden},
		{"host", &auth.Actor{ID: "h", Role: model.RoleHost}, http.StatusNoContent},
		{"admin", &auth.Actor{ID: "a", Role: model.RoleAdmin}, http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			if tt.actor != nil {
				req = req.WithContext(auth.WithActor(req.Context(), tt.actor))
			}
			rec := httptest.NewRecorder()
			handle(rec, req, nil)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestIdempotency_ReplaysSuccessfulResponse(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Hour)
	defer store.Stop()

	var calls int32
	h := Idempotency(store, "")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"1"}}`))
	}))

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(`{"a":1}`))
		req.Header.Set(DefaultIdempotencyHeader, "key-1")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("attempt %d: status = %d", i, rec.Code)
		}
		if rec.Body.String() != `{"data":{"id":"1"}}` {
			t.Fatalf("attempt %d: body = %s", i, rec.Body.String())
		}
	}

	if calls != 1 {
		t.Errorf("handler called %d times, want 1", calls)
	}
}

func TestIdempotency_DifferentBodyRejected(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Hour)
	defer store.Stop()

	h := Idempotency(store, "")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write(body)
	}))

	first := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{"a":1}`))
	first.Header.Set(DefaultIdempotencyHeader, "k")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, first)
	if rec.Body.String() != `{"a":1}` {
		t.Fatalf("handler should see the restored body, got %s", rec.Body.String())
	}

	second := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{"a":2}`))
	second.Header.Set(DefaultIdempotencyHeader, "k")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, second)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}

func TestIdempotency_ErrorsNotCached(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Hour)
	defer store.Stop()

	var calls int32
	h := Idempotency(store, "")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusConflict)
	}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{}`))
		req.Header.Set(DefaultIdempotencyHeader, "k")
		h.ServeHTTP(httptest.NewRecorder(), req)
	}
	if calls != 2 {
		t.Errorf("handler called %d times, want 2", calls)
	}
}

func TestIdempotency_ScopedPerActor(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Hour)
	defer store.Stop()

	var calls int32
	h := Idempotency(store, "")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusCreated)
	}))

	for _, id := range []string{"u1", "u2"} {
		req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{}`))
		req.Header.Set(DefaultIdempotencyHeader, "same")
		req = req.WithContext(auth.WithActor(req.Context(), &auth.Actor{ID: id, Role: model.RoleRenter}))
		h.ServeHTTP(httptest.NewRecorder(), req)
	}
	if calls != 2 {
		t.Errorf("handler called %d times, want 2", calls)
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute, nil, logger.Nop())
	defer rl.Stop()

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	if !rl.Allow("a") || !rl.Allow("a") {
		t.Fatal("first two requests should pass")
	}
	if rl.Allow("a") {
		t.Error("third request inside window should be limited")
	}
	if !rl.Allow("b") {
		t.Error("other keys are independent")
	}
	if !rl.Allow("") {
		t.Error("empty key is never limited")
	}

	now = now.Add(time.Minute + time.Second)
	if !rl.Allow("a") {
		t.Error("window should have slid")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute, nil, logger.Nop())
	defer rl.Stop()
	h := RateLimit(rl)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "60" {
		t.Errorf("Retry-After = %q", rec.Header().Get("Retry-After"))
	}
}

func TestContentTypeValidation(t *testing.T) {
	h := ContentTypeValidation(logger.Nop(), ContentTypeJSON, ContentTypeMultipart)(okHandler())

	tests := []struct {
		name        string
		method      string
		contentType string
		body        string
		want        int
	}{
		{"json", http.MethodPost, "application/json; charset=utf-8", "{}", http.StatusOK},
		{"multipart", http.MethodPost, "multipart/form-data; boundary=x", "--x--", http.StatusOK},
		{"text", http.MethodPost, "text/plain", "hi", http.StatusUnsupportedMediaType},
		{"get ignored", http.MethodGet, "", "", http.StatusOK},
		{"empty post body", http.MethodPost, "", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body io.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			}
			req := httptest.NewRequest(tt.method, "/", body)
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestMaxRequestSize(t *testing.T) {
	h := MaxRequestSize(4)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				w.WriteHeader(http.StatusRequestEntityTooLarge)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("123456")))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("123")))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestRecovery(t *testing.T) {
	h := Recovery(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "boom") {
		t.Error("panic value must not leak to the client")
	}
}

func TestRequestTimeout(t *testing.T) {
	budget := TimeoutBudget{Default: 20 * time.Millisecond, Upload: 500 * time.Millisecond}
	h := RequestTimeout(budget)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(100 * time.Millisecond):
			w.WriteHeader(http.StatusCreated)
		case <-r.Context().Done():
		}
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusGatewayTimeout {
		t.Errorf("status = %d, want 504", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/properties/id/abc/images", strings.NewReader("--x--"))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Errorf("upload status = %d, want 201", rec.Code)
	}
}

func TestTimeoutBudget_For(t *testing.T) {
	budget := TimeoutBudget{Default: time.Second, Upload: time.Minute}

	upload := httptest.NewRequest(http.MethodPost, "/", nil)
	upload.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	if got := budget.For(upload); got != time.Minute {
		t.Errorf("upload budget = %s, want 1m", got)
	}

	jsonReq := httptest.NewRequest(http.MethodPost, "/", nil)
	jsonReq.Header.Set("Content-Type", "application/json")
	if got := budget.For(jsonReq); got != time.Second {
		t.Errorf("json budget = %s, want 1s", got)
	}

	if got := (TimeoutBudget{Default: time.Second}).For(upload); got != time.Second {
		t.Errorf("unset upload budget = %s, want default", got)
	}
}

func TestRequestLogging_PropagatesRequestID(t *testing.T) {
	var seen string
	h := RequestLogging(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "client-supplied-id")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if seen != "client-supplied-id" || rec.Header().Get(RequestIDHeader) != "client-supplied-id" {
		t.Errorf("request id = %q / %q", seen, rec.Header().Get(RequestIDHeader))
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if len(seen) != 36 {
		t.Errorf("generated id should be a uuid, got %q", seen)
	}
	if RequestIDFromContext(context.Background()) != "" {
		t.Error("empty context should have no request id")
	}
}
