// Package dedupe suppresses repeated form submissions. Console forms embed a
// random submission id; the handler claims Key(session, id) before calling the
// API, so a double click or a browser resend performs the mutation once.
package dedupe
