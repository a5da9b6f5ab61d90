// Package transport defines the contracts between the HTTP layer and the
// rest of the service: the Pipeline interface implemented by the engine,
// the DraftStore interface implemented by the storage backends, HTTP
// middleware, and error-to-status mapping.
package transport
