// Package auth signs and verifies the console's session cookie.
//
// The cookie value is an HS256 JWT whose subject is the id of an in-memory
// session; the user's API credentials never leave the server.
//
//	signer := auth.NewSigner(secret)
//	token, err := signer.Issue(sessionID, 12*time.Hour)
//	sessionID, err := signer.Verify(token)
//
// Verify reports ErrExpiredToken for an expired token and ErrInvalidToken
// for anything else it rejects. When no secret is configured the server uses
// RandomSecret, so cookies stop verifying after a restart; the sessions they
// pointed at are gone by then anyway.
package auth
