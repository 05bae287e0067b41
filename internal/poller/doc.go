// Package poller keeps the message and mail unread badges of a console session
// fresh. Each fetch yields a typed Result: Updated with a count, Ignored when the
// request failed (the badge keeps its value), or Unauthenticated, which ends the
// loop and hands control back to the session for teardown.
package poller
