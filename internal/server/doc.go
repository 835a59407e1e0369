// Package server implements the HTTP server and HTTP handlers for
// docshare. It wires together the HTTP routes, dependencies (database,
// blob storage, mailer), and provides lifecycle helpers used by tests
// and the production binary.
package server
