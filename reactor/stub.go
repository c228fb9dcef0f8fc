//go:build !linux

// File: reactor/stub.go
// License: Apache-2.0
//
// Stub for unsupported platforms.

package reactor

// New returns ErrUnsupported on platforms without a poller backend.
func New() (Poller, error) {
	return nil, ErrUnsupported
}
