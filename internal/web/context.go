package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/csvclassify/internal/core"
	"github.com/JonMunkholm/csvclassify/internal/logging"
)

// WithRequestMetadata adds IP and User-Agent to context for logging.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	ip := r.RemoteAddr // Already processed by TrustedRealIP
	ua := r.Header.Get("User-Agent")
	ctx = core.ContextWithIPAddress(ctx, ip)
	ctx = core.ContextWithUserAgent(ctx, ua)
	return ctx
}

// sessionMiddleware resolves the browser session from its cookie, starting
// a new one when the cookie is missing or the session has expired.
func (s *Server) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id string
		if c, err := r.Cookie(s.cfg.Session.CookieName); err == nil {
			id = c.Value
		}

		st := s.service.Session(id)
		if st.ID != id {
			http.SetCookie(w, &http.Cookie{
				Name:     s.cfg.Session.CookieName,
				Value:    st.ID,
				Path:     "/",
				HttpOnly: true,
				Secure:   s.cfg.Session.CookieSecure,
				SameSite: http.SameSiteLaxMode,
			})
		}

		ctx := logging.ContextWithSessionID(r.Context(), st.ID)
		ctx = WithRequestMetadata(ctx, r)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// sessionID returns the session resolved by sessionMiddleware.
func sessionID(r *http.Request) string {
	return logging.SessionIDFromContext(r.Context())
}
