// File: errors.go
// License: Apache-2.0

package rotor

import "errors"

var (
	// ErrAlreadyRunning is returned by Run when the loop is running.
	ErrAlreadyRunning = errors.New("rotor: loop already running")
)

// SpawnError reports a Creator that failed to materialize its machine. It
// is distinct from an ordinary machine failure because it occurs before a
// machine exists to attribute the error to: the reserved slot is released
// and no Spawned trigger is delivered.
type SpawnError struct {
	Err error
}

func (e *SpawnError) Error() string {
	return "rotor: spawn failed: " + e.Err.Error()
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}
