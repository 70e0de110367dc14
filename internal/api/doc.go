// Package api implements the HTTP surface of the note service: request
// decoding and validation, authentication middleware, and the mapping of
// service errors to status codes and sanitized messages.
package api
