// File: map.go
// License: Apache-2.0

package rotor

// Map re-tags a child response as a parent response: machineFn is applied to
// any carried machine and spawnFn to any carried spawn payload, while the
// variant shape, deadline and error pass through untouched. The usual
// mappers are the constructors of the wrapping machine type.
//
// Go methods cannot introduce type parameters, so Map and Wrap are free
// functions. The caller must treat the input as moved and only use the
// returned response.
func Map[M, N, T, U any](r Response[M, N], machineFn func(M) T, spawnFn func(N) U) Response[T, U] {
	r.ensureLive("Map")
	out := Response[T, U]{kind: r.kind, deadline: r.deadline, cause: r.cause}
	switch r.kind {
	case kindOk, kindDeadline:
		out.machine = machineFn(r.machine)
	case kindSpawn:
		out.machine = machineFn(r.machine)
		out.spawn = spawnFn(r.spawn)
	}
	return out
}

// Wrap is Map for the common case where only the machine needs re-tagging,
// typically because the child's spawn payload type is shared with the parent
// or uninhabited for machines that never spawn.
func Wrap[M, N, T any](r Response[M, N], machineFn func(M) T) Response[T, N] {
	return Map(r, machineFn, func(n N) N { return n })
}
