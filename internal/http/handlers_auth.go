package http

import (
	"net/http"
	"strings"
	"time"

	"lifedash/internal/auth"
	"lifedash/internal/log"
)

const sessionCookie = "lifedash_session"

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	p, err := ParseBody(w, r)
	if err != nil {
		s.fail(w, r, log.OpLogin, err)
		return
	}
	id := p.First("userId", "id", "username")
	secret := p.First("password", "secret")

	principal, err := s.opts.Verifier.Verify(r.Context(), id, secret)
	if err != nil {
		s.fail(w, r, log.OpLogin, err)
		return
	}

	session := auth.NewSession(principal)
	token, exp, err := s.opts.Tokens.Issue(session)
	if err != nil {
		s.fail(w, r, log.OpLogin, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  exp,
		MaxAge:   int(time.Until(exp).Seconds()),
		HttpOnly: true,
		Secure:   s.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	log.FromContext(r.Context()).InfoContext(r.Context(), "User signed in",
		log.FieldOperation, log.OpLogin, log.FieldUserID, session.UserID, "role", session.Role)
	NewResponse().
		TriggerSuccessNotification("Welcome, " + session.UserName).
		JSON(session).
		Write(w)
}

// handleLogout clears the session cookie. It succeeds without a session.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	if session, ok := s.sessionFrom(r); ok {
		log.FromContext(r.Context()).InfoContext(r.Context(), "User signed out",
			log.FieldOperation, log.OpLogout, log.FieldUserID, session.UserID)
	}
	NewResponse().
		TriggerSuccessNotification("Signed out").
		JSON(map[string]bool{"signedOut": true}).
		Write(w)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.FromContext(r.Context())
	NewResponse().JSON(session).Write(w)
}

// sessionFrom reads the session token from the cookie or a bearer header.
func (s *Server) sessionFrom(r *http.Request) (auth.Session, bool) {
	raw := ""
	if c, err := r.Cookie(sessionCookie); err == nil {
		raw = c.Value
	}
	if raw == "" {
		if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
			raw = strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
		}
	}
	if raw == "" {
		return auth.Session{}, false
	}
	session, err := s.opts.Tokens.Parse(raw)
	if err != nil {
		return auth.Session{}, false
	}
	return session, true
}

// requireSession answers 401 unless the request carries a valid session.
func (s *Server) requireSession(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, ok := s.sessionFrom(r)
		if !ok {
			UnauthorizedError("Please sign in").Write(w)
			return
		}
		ctx := auth.WithSession(r.Context(), session)
		ctx = log.NewContext(ctx, log.FromContext(ctx).With(log.FieldUserID, session.UserID))
		next(w, r.WithContext(ctx))
	})
}
