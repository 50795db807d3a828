package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/fjod/growthshop/storefront/internal/session"
)

// SessionHeader carries the browser session id in both directions.
const SessionHeader = "X-Session-ID"

type ctxKey int

const sessionKey ctxKey = iota

// SessionMiddleware attaches the caller's session to the request context,
// issuing a new session id when the request carries none.
func (h *Handler) SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(SessionHeader)
		if id == "" {
			id = h.sessions.NewID()
		}

		sess, err := h.sessions.Get(r.Context(), id)
		if errors.Is(err, session.ErrInvalidID) {
			h.respondError(w, http.StatusBadRequest, "invalid_session", "malformed session id")
			return
		}
		if err != nil {
			h.handleError(w, r, err)
			return
		}

		w.Header().Set(SessionHeader, sess.ID)
		ctx := context.WithValue(r.Context(), sessionKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionFromContext(ctx context.Context) *session.Session {
	if s, ok := ctx.Value(sessionKey).(*session.Session); ok {
		return s
	}
	return nil
}
