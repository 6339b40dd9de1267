// Package cookie provides a small manager for reading and writing named
// HTTP cookies with tamper-evident HMAC-SHA256 signatures.
//
// A Manager is constructed with one or more secrets. The first secret is
// used to sign new cookies while all secrets are tried during
// verification, which allows zero-downtime key rotation: add the new
// secret at position zero and keep the old one until outstanding cookies
// have expired.
//
//	mgr, err := cookie.New([]string{"at-least-32-characters-long-secret"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Signed value, integrity protected but readable by the client.
//	_ = mgr.SetSigned(w, "sid", sessionID)
//	sid, err := mgr.GetSigned(r, "sid")
//
// Default attributes are Path=/, HttpOnly and SameSite=Lax; they can be
// overridden per manager (options passed to New) or per call.
//
// Secrets shorter than 32 characters are rejected at construction time.
package cookie
