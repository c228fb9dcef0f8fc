// File: reactor/doc.go
// License: Apache-2.0

// Package reactor provides the poll-mode readiness backend consumed by the
// rotor event loop: an epoll implementation on Linux and a stub elsewhere.
package reactor
