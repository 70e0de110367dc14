// Package service provides application-level services for managing notes
// and users. Services orchestrate stores, the job queue, and domain logic,
// and translate store-level failures into the sentinel errors the API
// layer maps to HTTP status codes.
package service
