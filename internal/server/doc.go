// Package server implements the HTTP server and handlers for File
// Portal, a session-gated upload application. It wires together the
// routes, the in-memory credential and session stores, the CSRF guard,
// and the filesystem-backed upload pipeline, and provides lifecycle
// helpers used by tests and the production binary.
package server
