package auth

import "net/http"

// RequireLogin guards a handler: requests whose session carries no
// username are redirected to the configured login URL, or denied with
// 403 when no login URL is set. Composed explicitly at route
// registration time:
//
//	mux.Handle("/admin", mgr.RequireLogin(adminHandler))
func (m *Manager) RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.CurrentUsername(r.Context(), r) == "" {
			if m.loginURL == "" {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			http.Redirect(w, r, m.loginURL, http.StatusFound)
			return
		}

		next.ServeHTTP(w, r)
	})
}
