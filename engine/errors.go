package engine

import (
	"fmt"

	"github.com/BoonLang/boon-sub004/internal/addr"
	"github.com/BoonLang/boon-sub004/internal/arena"
)

// FatalError is raised (as a panic value, then recovered and surfaced by
// Loop.Tick) for a non-terminating propagation loop, via
// CycleWithoutProgress. The other fatal conditions use their own types: a
// failed arena validity check panics with *arena.ValidityError (also
// recovered and returned by Loop.Tick), and a snapshot version mismatch is
// returned by package snapshot as *snapshot.ErrVersionMismatch. These
// indicate bugs; user programs cannot catch them (spec.md §7).
//
// Grounded on the teacher's errors.go pattern of concrete typed error
// structs (TypeError, AggregateError, PanicError) rather than bare
// errors.New sentinels, so callers can errors.As into the specific cause.
type FatalError struct {
	Reason  string
	Slot    arena.SlotId
	Address addr.NodeAddress
	HasAddr bool
}

func (e *FatalError) Error() string {
	if e.HasAddr {
		return fmt.Sprintf("engine: fatal: %s (slot %s, address %s)", e.Reason, e.Slot, e.Address)
	}
	return fmt.Sprintf("engine: fatal: %s (slot %s)", e.Reason, e.Slot)
}

// CycleWithoutProgress is the specific FatalError raised when the
// propagation loop's iteration cap is exceeded (spec.md §4.5 step 4c):
// "nodes must not emit a payload whose routed delivery would re-dirty the
// same (slot, port) in the same tick unless the emitted payload is
// semantically different... a cycle without progress is a programming
// error".
type CycleWithoutProgress struct {
	*FatalError
	Iterations int
	Cap        int
}

func (e *CycleWithoutProgress) Error() string {
	return fmt.Sprintf("engine: cycle without progress after %d iterations (cap %d): %s",
		e.Iterations, e.Cap, e.FatalError.Reason)
}

func newCycleWithoutProgress(iterations, cap int) *CycleWithoutProgress {
	return &CycleWithoutProgress{
		FatalError: &FatalError{Reason: "propagation did not reach quiescence within the iteration cap"},
		Iterations: iterations,
		Cap:        cap,
	}
}

// HostEffectError wraps a host-reported effect failure (spec.md §7 "Host
// errors"): host-side effect failures are reported back as Flushed
// payloads to the originating effect node on the next tick.
type HostEffectError struct {
	Effect arena.SlotId
	Cause  error
}

func (e *HostEffectError) Error() string {
	return fmt.Sprintf("engine: host effect on slot %s failed: %v", e.Effect, e.Cause)
}

func (e *HostEffectError) Unwrap() error { return e.Cause }
