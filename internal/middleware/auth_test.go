package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
)

const testProfileID = "0190b3a4-7c1e-7d2a-9f00-1234567890ab"

func TestProfileMiddleware_WithValidCookie(t *testing.T) {
	m := NewProfileMiddleware("test-secret")

	nextCalled := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
		id, ok := GetProfileIDFromContext(r.Context())
		if !ok {
			t.Fatalf("profile id not in context")
		}
		if id != testProfileID {
			t.Fatalf("profile id from context = %s, want %s", id, testProfileID)
		}
	})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/cart", nil)

	m.SetProfileCookie(w, testProfileID)
	resCookies := w.Result().Cookies()
	if len(resCookies) == 0 {
		t.Fatalf("no cookies set by SetProfileCookie")
	}
	r.AddCookie(resCookies[0])

	out := httptest.NewRecorder()
	m.Middleware(next).ServeHTTP(out, r)

	if !nextCalled {
		t.Fatalf("next handler was not called")
	}
	if len(out.Result().Cookies()) != 0 {
		t.Fatalf("cookie re-issued for a valid profile")
	}
}

func TestProfileMiddleware_CreatesProfile(t *testing.T) {
	m := NewProfileMiddleware("test-secret")

	var got string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = GetProfileIDFromContext(r.Context())
	})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	m.Middleware(next).ServeHTTP(w, r)

	if got == "" {
		t.Fatalf("profile id not in context")
	}
	cookies := w.Result().Cookies()
	if len(cookies) != 1 || !strings.HasPrefix(cookies[0].Value, got+".") {
		t.Fatalf("profile cookie not issued for %s: %v", got, cookies)
	}
}

func TestProfileMiddleware_TamperedCookie(t *testing.T) {
	m := NewProfileMiddleware("test-secret")
	other := NewProfileMiddleware("other-secret")

	var got string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = GetProfileIDFromContext(r.Context())
	})

	r := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	r.AddCookie(&http.Cookie{Name: profileCookieName, Value: other.sign(testProfileID)})

	m.Middleware(next).ServeHTTP(httptest.NewRecorder(), r)

	if got == testProfileID || got == "" {
		t.Fatalf("tampered cookie accepted: profile = %q", got)
	}
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name       string
		admin      bool
		err        error
		wantStatus int
	}{
		{name: "admin", admin: true, wantStatus: http.StatusOK},
		{name: "customer", admin: false, wantStatus: http.StatusForbidden},
		{name: "store failure", err: errors.New("boom"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check := func(ctx context.Context, profileID string) (bool, error) {
				if profileID != testProfileID {
					t.Fatalf("checked profile %s, want %s", profileID, testProfileID)
				}
				return tt.admin, tt.err
			}
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			r := httptest.NewRequest(http.MethodGet, "/api/admin/dashboard", nil)
			r = r.WithContext(context.WithValue(r.Context(), profileIDKey, testProfileID))
			w := httptest.NewRecorder()

			RequireAdmin(check, zap.NewNop())(next).ServeHTTP(w, r)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestLogger_PassesResponseThrough(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("ok"))
	})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/cart", nil)
	Logger(zap.NewNop())(next).ServeHTTP(w, r)

	if w.Code != http.StatusCreated || w.Body.String() != "ok" {
		t.Fatalf("response = %d %q, want 201 \"ok\"", w.Code, w.Body.String())
	}
}
