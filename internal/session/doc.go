// Package session supervises console logins.
//
// A Session exists only after the API accepted the user's credentials on a
// probe request. It holds those credentials, the sidebar badge counts, one
// View (render generation counter) per open shell, and a poller that
// refreshes the badges.
//
// Logout and expiry share one teardown path that runs once per session: it
// clears the credentials, stops the poller (waiting for in-flight fetches to
// finish), removes the session from the registry and closes subscriber
// channels so open websockets can send the browser back to the login page.
package session
