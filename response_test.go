// File: response_test.go
// License: Apache-2.0

package rotor_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allchain/rotor"
)

type testMachine struct {
	id int
}

type testPayload struct {
	id int
}

type testResponse = rotor.Response[testMachine, testPayload]

func TestIsStoppedPerVariant(t *testing.T) {
	cases := []struct {
		name    string
		build   func() testResponse
		stopped bool
	}{
		{"ok", func() testResponse { return rotor.Ok[testMachine, testPayload](testMachine{1}) }, false},
		{"deadline", func() testResponse {
			return rotor.Ok[testMachine, testPayload](testMachine{1}).WithDeadline(time.Now())
		}, false},
		{"spawn", func() testResponse {
			return rotor.Spawn[testMachine, testPayload](testMachine{1}, testPayload{2})
		}, false},
		{"done", func() testResponse { return rotor.Done[testMachine, testPayload]() }, true},
		{"error", func() testResponse { return rotor.Error[testMachine, testPayload](errors.New("boom")) }, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := tc.build()
			assert.Equal(t, tc.stopped, r.IsStopped())
		})
	}
}

func TestCause(t *testing.T) {
	boom := errors.New("boom")

	r := rotor.Error[testMachine, testPayload](boom)
	assert.Same(t, boom, r.Cause())

	for name, build := range map[string]func() testResponse{
		"ok":    func() testResponse { return rotor.Ok[testMachine, testPayload](testMachine{1}) },
		"spawn": func() testResponse { return rotor.Spawn[testMachine, testPayload](testMachine{1}, testPayload{2}) },
		"done":  func() testResponse { return rotor.Done[testMachine, testPayload]() },
	} {
		t.Run(name, func(t *testing.T) {
			r := build()
			assert.NoError(t, r.Cause())
		})
	}
}

func TestWithDeadlineAttachesToOk(t *testing.T) {
	when := time.Now().Add(time.Second)

	r := rotor.Ok[testMachine, testPayload](testMachine{1}).WithDeadline(when)
	_, _, deadline := rotor.Decompose(rotor.Token(0), &r)
	require.NotNil(t, deadline)
	assert.True(t, deadline.Equal(when))
}

func TestWithDeadlineReplacesNotAccumulates(t *testing.T) {
	first := time.Now().Add(time.Second)
	second := time.Now().Add(2 * time.Second)

	r := rotor.Ok[testMachine, testPayload](testMachine{1}).
		WithDeadline(first).
		WithDeadline(second)
	next, spawn, deadline := rotor.Decompose(rotor.Token(0), &r)
	require.NotNil(t, deadline)
	assert.True(t, deadline.Equal(second))
	assert.Nil(t, spawn)
	m, alive := next.Machine()
	require.True(t, alive)
	assert.Equal(t, testMachine{1}, m)
}

func TestWithDeadlineOnTerminalVariantsPanics(t *testing.T) {
	when := time.Now()

	assert.PanicsWithValue(t,
		"rotor: cannot attach a deadline to Spawn: the spawn action is synchronous, set the deadline in the Spawned handler",
		func() { rotor.Spawn[testMachine, testPayload](testMachine{1}, testPayload{2}).WithDeadline(when) })

	assert.PanicsWithValue(t,
		"rotor: cannot attach a deadline to Done: the machine is finished, the timeout would never fire",
		func() { rotor.Done[testMachine, testPayload]().WithDeadline(when) })

	assert.PanicsWithValue(t,
		"rotor: cannot attach a deadline to Error: the machine is finished, the timeout would never fire",
		func() { rotor.Error[testMachine, testPayload](errors.New("boom")).WithDeadline(when) })
}

func TestExpectHelpers(t *testing.T) {
	t.Run("machine from ok", func(t *testing.T) {
		r := rotor.Ok[testMachine, testPayload](testMachine{7})
		assert.Equal(t, testMachine{7}, r.ExpectMachine())
	})
	t.Run("machine from deadline", func(t *testing.T) {
		r := rotor.Ok[testMachine, testPayload](testMachine{7}).WithDeadline(time.Now())
		assert.Equal(t, testMachine{7}, r.ExpectMachine())
	})
	t.Run("spawn", func(t *testing.T) {
		r := rotor.Spawn[testMachine, testPayload](testMachine{7}, testPayload{8})
		m, n := r.ExpectSpawn()
		assert.Equal(t, testMachine{7}, m)
		assert.Equal(t, testPayload{8}, n)
	})
	t.Run("done", func(t *testing.T) {
		r := rotor.Done[testMachine, testPayload]()
		assert.NotPanics(t, func() { r.ExpectDone() })
	})
	t.Run("error", func(t *testing.T) {
		boom := errors.New("boom")
		r := rotor.Error[testMachine, testPayload](boom)
		assert.Same(t, boom, r.ExpectError())
	})
}

func TestExpectHelpersNameActualVariant(t *testing.T) {
	t.Run("machine", func(t *testing.T) {
		r := rotor.Done[testMachine, testPayload]()
		assert.PanicsWithValue(t, "rotor: expected a machine (Ok or Deadline), got Done",
			func() { r.ExpectMachine() })
	})
	t.Run("spawn", func(t *testing.T) {
		r := rotor.Ok[testMachine, testPayload](testMachine{1})
		assert.PanicsWithValue(t, "rotor: expected Spawn, got Ok",
			func() { r.ExpectSpawn() })
	})
	t.Run("done", func(t *testing.T) {
		r := rotor.Error[testMachine, testPayload](errors.New("boom"))
		assert.PanicsWithValue(t, "rotor: expected Done, got Error",
			func() { r.ExpectDone() })
	})
	t.Run("error", func(t *testing.T) {
		r := rotor.Spawn[testMachine, testPayload](testMachine{1}, testPayload{2})
		assert.PanicsWithValue(t, "rotor: expected Error, got Spawn",
			func() { r.ExpectError() })
	})
}

func TestResponseIsSingleUse(t *testing.T) {
	t.Run("double extract", func(t *testing.T) {
		r := rotor.Ok[testMachine, testPayload](testMachine{1})
		_ = r.ExpectMachine()
		assert.PanicsWithValue(t, "rotor: ExpectMachine on an already consumed response",
			func() { r.ExpectMachine() })
	})
	t.Run("decompose then inspect", func(t *testing.T) {
		r := rotor.Done[testMachine, testPayload]()
		rotor.Decompose(rotor.Token(0), &r)
		assert.PanicsWithValue(t, "rotor: IsStopped on an already consumed response",
			func() { r.IsStopped() })
	})
	t.Run("double decompose", func(t *testing.T) {
		r := rotor.Ok[testMachine, testPayload](testMachine{1})
		rotor.Decompose(rotor.Token(0), &r)
		assert.PanicsWithValue(t, "rotor: Decompose on an already consumed response",
			func() { rotor.Decompose(rotor.Token(0), &r) })
	})
}

func TestZeroResponseIsRejected(t *testing.T) {
	var r testResponse
	assert.PanicsWithValue(t, "rotor: IsStopped on a zero-valued response; use one of the constructors",
		func() { r.IsStopped() })
}
