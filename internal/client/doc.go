// Package client is the HTTP client for the HurricaneSoft REST API.
//
// # Overview
//
// Every request carries the caller's credentials in the X-User and
// X-Password headers; the API keeps no session of its own. The console
// threads a Credentials value through each call rather than holding
// credentials globally.
//
// # Errors
//
// Two kinds of failure are distinguished:
//
//   - ErrUnauthenticated: the API answered 401. Callers tear down the
//     session that owns the credentials.
//   - *RequestError (errors.Is(err, ErrRequestFailed)): transport error,
//     any other non-2xx status, or a body that is not JSON. Callers show
//     an inline error; nothing is retried.
//
// # Records
//
// Upstream records are loosely shaped: the same concept appears under
// different field names depending on the endpoint ("title", "text" or
// "content" for a todo). Record resolves a list of aliases to the first
// non-empty value, and List accepts both {"items": [...]} and a bare array.
// Typed helpers (ListTodos, FetchInbox, HealthStatus, ...) are built on it.
package client
