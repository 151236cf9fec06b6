// Package client talks to the photo API over HTTP and bootstraps the local
// SQLite database used by the CLI.
//
// # Error Handling
//
// Non-2xx answers become *APIError values carrying the status and the
// server's message. They match ErrUnauthorized (401), ErrUnavailable (502,
// 503, 504) and common.ErrorNotFound (404) with errors.Is. Transport
// failures are wrapped with ErrUnavailable.
package client
