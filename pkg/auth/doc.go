// Package auth composes the session and user stores into a sessioned
// user manager: password login that caches the user's public fields in a
// dedicated auth session, logout, current-user lookups and an explicit
// RequireLogin middleware.
//
//	cookies, _ := cookie.New([]string{secret})
//	db, _ := docstore.Open("./data")
//
//	sessions := session.New(cookies, db.Collection("auth_sessions"),
//	    session.WithCookieName("usid"))
//	users := user.New(db.Collection("users"))
//
//	mgr := auth.New(sessions, users)
//
//	// after verifying credentials with users.Authenticate:
//	ok, err := mgr.LoginUser(ctx, w, r, "alice", "")
//
// LoginUser copies the user record into the session with the password
// hash and the storage identifier stripped; the session never carries
// secrets or raw record ids. Because the session cookie is only readable
// on the next request/response cycle, a login only becomes visible to
// CurrentUsername from the following request on.
package auth
