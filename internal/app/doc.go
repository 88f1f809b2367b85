// Package app wires configuration, telemetry and the HTTP router into the
// gainers service.
package app
