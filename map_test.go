// File: map_test.go
// License: Apache-2.0

package rotor_test

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allchain/rotor"
)

// parentMachine wraps a testMachine the way a composing machine re-tags a
// child's outcome as its own type.
type parentMachine struct {
	child testMachine
}

func wrapMachine(m testMachine) parentMachine { return parentMachine{child: m} }

func wrapPayload(n testPayload) string { return "payload-" + strconv.Itoa(n.id) }

func TestMapSpawnAppliesBothMappers(t *testing.T) {
	r := rotor.Spawn[testMachine, testPayload](testMachine{1}, testPayload{2})
	mapped := rotor.Map(r, wrapMachine, wrapPayload)

	m, n := mapped.ExpectSpawn()
	assert.Equal(t, parentMachine{child: testMachine{1}}, m)
	assert.Equal(t, "payload-2", n)
}

func TestMapPreservesVariantShape(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		r := rotor.Ok[testMachine, testPayload](testMachine{1})
		mapped := rotor.Map(r, wrapMachine, wrapPayload)
		assert.Equal(t, parentMachine{child: testMachine{1}}, mapped.ExpectMachine())
	})
	t.Run("deadline carried through", func(t *testing.T) {
		when := time.Now().Add(time.Second)
		r := rotor.Ok[testMachine, testPayload](testMachine{1}).WithDeadline(when)
		mapped := rotor.Map(r, wrapMachine, wrapPayload)
		_, _, deadline := rotor.Decompose(rotor.Token(0), &mapped)
		require.NotNil(t, deadline)
		assert.True(t, deadline.Equal(when))
	})
	t.Run("done", func(t *testing.T) {
		r := rotor.Done[testMachine, testPayload]()
		mapped := rotor.Map(r, wrapMachine, wrapPayload)
		assert.True(t, mapped.IsStopped())
	})
}

func TestMapErrorPassesThroughUntouched(t *testing.T) {
	boom := errors.New("boom")
	r := rotor.Error[testMachine, testPayload](boom)

	machineCalled, payloadCalled := false, false
	mapped := rotor.Map(r,
		func(m testMachine) parentMachine { machineCalled = true; return wrapMachine(m) },
		func(n testPayload) string { payloadCalled = true; return wrapPayload(n) })

	assert.Same(t, boom, mapped.ExpectError())
	assert.False(t, machineCalled, "machine mapper must not run for Error")
	assert.False(t, payloadCalled, "payload mapper must not run for Error")
}

func TestWrapKeepsPayloadType(t *testing.T) {
	r := rotor.Spawn[testMachine, testPayload](testMachine{1}, testPayload{2})
	wrapped := rotor.Wrap(r, wrapMachine)

	m, n := wrapped.ExpectSpawn()
	assert.Equal(t, parentMachine{child: testMachine{1}}, m)
	assert.Equal(t, testPayload{2}, n)
}

func TestWrapPreservesDeadlineAndError(t *testing.T) {
	when := time.Now().Add(time.Second)
	withDeadline := rotor.Ok[testMachine, testPayload](testMachine{3}).WithDeadline(when)
	wrapped := rotor.Wrap(withDeadline, wrapMachine)
	_, _, deadline := rotor.Decompose(rotor.Token(0), &wrapped)
	require.NotNil(t, deadline)
	assert.True(t, deadline.Equal(when))

	boom := errors.New("boom")
	failed := rotor.Error[testMachine, testPayload](boom)
	wrappedErr := rotor.Wrap(failed, wrapMachine)
	assert.Same(t, boom, wrappedErr.ExpectError())
}
