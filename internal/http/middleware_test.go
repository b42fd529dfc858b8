package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jaee/storefront/internal/domain"
)

func captureSession(sess *domain.Session) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*sess = sessionFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestSessionMiddleware_AuthenticatedCaller(t *testing.T) {
	var sess domain.Session
	handler := SessionMiddleware(captureSession(&sess))

	request := httptest.NewRequest("GET", "/api/v1/cart", nil)
	request.Header.Set("Authorization", "Bearer token-7")
	request.Header.Set("X-User-ID", "7")
	request.Header.Set(guestSessionHeader, "guest-1")

	handler.ServeHTTP(httptest.NewRecorder(), request)

	if sess.UserID != 7 || sess.Token != "token-7" {
		t.Errorf("expected authenticated session, got %+v", sess)
	}
	if !sess.Authenticated() {
		t.Error("expected Authenticated() to be true")
	}
	if sess.GuestID != "guest-1" {
		t.Errorf("guest id should carry through login, got %q", sess.GuestID)
	}
}

func TestSessionMiddleware_MintsGuestID(t *testing.T) {
	var sess domain.Session
	handler := SessionMiddleware(captureSession(&sess))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest("GET", "/api/v1/cart", nil))

	if sess.GuestID == "" {
		t.Fatal("expected a minted guest id")
	}
	if sess.Authenticated() {
		t.Error("expected anonymous session")
	}
	if got := recorder.Header().Get(guestSessionHeader); got != sess.GuestID {
		t.Errorf("minted guest id must be echoed to the client, got %q", got)
	}
}

func TestSessionMiddleware_KeepsExistingGuestID(t *testing.T) {
	var sess domain.Session
	handler := SessionMiddleware(captureSession(&sess))

	request := httptest.NewRequest("GET", "/api/v1/cart", nil)
	request.Header.Set(guestSessionHeader, "guest-42")

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	if sess.GuestID != "guest-42" {
		t.Errorf("expected guest-42, got %q", sess.GuestID)
	}
	if got := recorder.Header().Get(guestSessionHeader); got != "guest-42" {
		t.Errorf("expected header echo of guest-42, got %q", got)
	}
}

func TestSessionMiddleware_IgnoresMalformedAuth(t *testing.T) {
	var sess domain.Session
	handler := SessionMiddleware(captureSession(&sess))

	request := httptest.NewRequest("GET", "/api/v1/cart", nil)
	request.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	request.Header.Set("X-User-ID", "7")

	handler.ServeHTTP(httptest.NewRecorder(), request)

	if sess.Authenticated() {
		t.Errorf("non-bearer auth must not authenticate, got %+v", sess)
	}
}
