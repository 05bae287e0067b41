// Package console provides the browser-facing HurricaneSoft dashboard.
//
// # Overview
//
// The console is a server-rendered htmx application. The browser holds a
// signed session cookie; the upstream credentials stay in the process and
// are attached to every API call made on the user's behalf.
//
// # Routes
//
//   - GET/POST /login: credential form, probed against the API before a
//     session is created
//   - POST /logout: ends the session and stops its badge poller
//   - GET /: app shell with the sidebar, badges and the content area
//   - GET /view/{page}: page fragment swapped into the content area
//   - GET /view/{page}/{id}: memo, message or mail detail card
//   - POST /action/{page}/{op}: one mutation followed by a page reload
//   - GET /ws: websocket stream of badge counts and logout notices
//   - GET /static/: stylesheet and shell script
//
// # Rendering
//
// Every shell load gets its own view id, sent back by htmx in the X-View-ID
// header. Each view request draws a new render generation for that view. When
// a slower, older render finishes after a newer one in the same tab started,
// it is answered with 204 No Content so htmx leaves the content area alone.
// The generation is reported in the X-View-Generation header, and the shell
// script refuses to swap a response older than the last one it displayed.
//
// # Authentication failures
//
// Any 401 from the API expires the session exactly once, however many
// requests observe it. htmx requests are redirected with HX-Redirect; plain
// navigation gets a 303 to /login. Open websockets receive a logout event.
//
// # CSRF Protection
//
// All form submissions require CSRF tokens:
//
//	<input type="hidden" name="csrf_token" value="{{.CSRFToken}}">
//
// htmx requests may send the token in the X-CSRF-Token header instead.
package console
