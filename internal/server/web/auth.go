package web

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/featureimage/internal/common"
)

// handleLogin checks the "log"/"pwd" form fields and issues the session
// cookie. Failures redirect back with ?login=failed.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	target := safeRedirect(r.FormValue("redirect_to"))

	token, user, err := s.site.Users().Login(ctx, r.FormValue("log"), r.FormValue("pwd"))
	if err != nil {
		if errors.Is(err, common.ErrorInternal) {
			s.logger.Error(ctx, "login failed", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		s.logger.Info(ctx, "login rejected", "username", r.FormValue("log"))
		http.Redirect(w, r, target+"?login=failed", http.StatusSeeOther)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     common.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.cfg.SessionValidityDuration / time.Second),
		HttpOnly: true,
		Secure:   s.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	s.logger.Info(ctx, "user logged in", "user_id", user.ID)
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     common.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// safeRedirect keeps redirects on this site.
func safeRedirect(target string) string {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.Contains(target, "\\") {
		return "/"
	}
	if i := strings.IndexAny(target, "?#"); i >= 0 {
		target = target[:i]
	}
	return target
}
