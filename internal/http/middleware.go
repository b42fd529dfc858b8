package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/jaee/storefront/internal/domain"
)

type contextKey string

const (
	sessionContextKey contextKey = "session"

	guestSessionHeader = "X-Guest-Session"
)

// SessionMiddleware resolves the caller's identity for downstream handlers.
// Authenticated callers present a bearer token plus X-User-ID (both issued by
// the auth layer in front of this service). Anonymous callers are tracked by a
// guest session id; when a browser shows up without one, a fresh id is minted
// and echoed back so the client can persist it.
func SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var sess domain.Session

		if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			sess.Token = strings.TrimPrefix(auth, "Bearer ")
			if id, err := strconv.ParseInt(r.Header.Get("X-User-ID"), 10, 64); err == nil {
				sess.UserID = id
			}
		}

		sess.GuestID = r.Header.Get(guestSessionHeader)
		if sess.GuestID == "" {
			sess.GuestID = uuid.NewString()
		}
		w.Header().Set(guestSessionHeader, sess.GuestID)

		ctx := context.WithValue(r.Context(), sessionContextKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionFromContext(ctx context.Context) domain.Session {
	if sess, ok := ctx.Value(sessionContextKey).(domain.Session); ok {
		return sess
	}
	return domain.Session{}
}
