// Package auth provides pluggable authentication for the listing service.
//
// Authentication uses a chain-of-responsibility pattern with three-outcome
// voting: each authenticator returns Yes (identity found), No (credentials
// invalid), or Abstain (cannot handle the credential type). A configurable
// default decides when every authenticator abstains.
//
// Auth is HTTP middleware, decoupled from the pipeline. The middleware also
// injects the tenant identity into the request context for storage scoping.
package auth
