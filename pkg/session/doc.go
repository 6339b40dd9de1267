// Package session provides cookie-addressed server-side sessions over a
// document collection. A Store resolves the request's signed cookie to a
// record identifier and exposes get/set/clear operations on the record's
// string-keyed payload, with write-triggered expiry sweeping.
//
// # Lifecycle
//
// A record is created on the first write of a request that carries no
// valid session cookie: SetMany inserts a record stamped with its
// creation time and sets the signed cookie to the new identifier. Later
// writes scoped to the same identifier merge into the existing record
// without touching the cookie. Records die three ways: an explicit
// Clear, an identifier-targeted PurgeByID, or the expiry sweep that runs
// after every write and removes records older than the configured
// maximum age.
//
// # The read-after-write quirk
//
// Cookies are delivered on the response, so a cookie set while handling
// a request cannot be read back from that same request. A fresh
// session's values become visible to Get only on the next
// request/response cycle. This is a property of cookie delivery, not of
// the store, and it is preserved deliberately; see SetMany for the
// zombie-record consequence of ignoring it.
//
// # Usage
//
//	cookies, _ := cookie.New([]string{secret})
//	db, _ := docstore.Open("./data")
//	store := session.New(cookies, db.Collection("sessions"))
//
//	func handler(w http.ResponseWriter, r *http.Request) {
//	    _ = store.Set(r.Context(), w, r, "theme", "dark")
//	    v, _ := store.Get(r.Context(), r, "theme", "light", false)
//	}
//
// # Concurrency
//
// The store takes no locks across requests sharing an identifier: two
// tabs racing to write the same session are last-write-wins on whichever
// update lands last in the collection.
package session
