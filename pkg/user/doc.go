// Package user provides a minimal password-authenticated user record
// store over a document collection. Records require only a username and
// a password; arbitrary extra fields ride along at creation and update
// time.
//
// Passwords are hashed with bcrypt and stored under "password_hash";
// the plaintext never reaches the collection. Authenticate compares a
// candidate password against the stored hash.
//
// Updates use tagged Field values so that removal is explicit:
//
//	ok, err := store.Update(ctx, "alice", map[string]user.Field{
//	    "display_name": user.Set("Alice"),
//	    "nickname":     user.Remove(),
//	})
//
// Username uniqueness is checked only at creation time and the
// check-then-insert is not atomic; see Create for the documented race.
package user
