// Package snapshot implements spec.md §4.8's capture/restore contract: a
// versioned, portable encoding of an engine.Loop's restorable state, and
// the orchestration that restores it onto a freshly recompiled Loop and
// drives it back to quiescence.
//
// Restore never reconstructs the routing table or any graph node's
// derived-only state from the encoded bytes; it instead assumes the
// caller recompiles the identical program into a fresh Loop first (the
// engine's compiler is deterministic, so the recompiled graph has
// identical SlotIds, addresses, and compile-time routes — spec.md §3),
// then overlays the captured leaf state (Register contents, Bus
// contents, ElementState fields, Effect history, the intern tables, the
// tick counter, and pending timers) and runs a passive tick so every
// downstream node re-derives its cached output exactly as it converged
// the first time (spec.md §4.8).
package snapshot

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/BoonLang/boon-sub004/engine"
)

// Version is the current snapshot format version. Restore only ever
// accepts an exact match (spec.md §9 Open Question 3: no migration path,
// a version mismatch is a fatal, operator-visible error rather than a
// silent best-effort load).
const Version = 1

// ErrVersionMismatch is returned by Decode when the encoded snapshot's
// Version does not exactly equal Version.
type ErrVersionMismatch struct {
	Got, Want int
}

func (e *ErrVersionMismatch) Error() string {
	return fmt.Sprintf("snapshot: version mismatch: got %d, want %d", e.Got, e.Want)
}

// Encode gob-encodes loop's current restorable state. encoding/gob is
// used rather than a third-party codec because none of the reference
// stack carries a binary serialization library suited to a Go-native
// struct graph with unexported-field handle types (see DESIGN.md); gob's
// GobEncode/GobDecode hooks on message.Text are exactly what the teacher
// pack's own wire-codec packages reach for in the same situation.
func Encode(loop *engine.Loop) ([]byte, error) {
	snap := loop.ExportSnapshot()
	snap.Version = Version
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(snap); err != nil {
		return nil, fmt.Errorf("snapshot: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode decodes data into an *engine.EngineSnapshot, rejecting anything
// whose Version does not exactly match Version.
func Decode(data []byte) (*engine.EngineSnapshot, error) {
	var snap engine.EngineSnapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&snap); err != nil {
		return nil, fmt.Errorf("snapshot: decode: %w", err)
	}
	if snap.Version != Version {
		return nil, &ErrVersionMismatch{Got: snap.Version, Want: Version}
	}
	return &snap, nil
}

// Restore decodes data and overlays it onto loop (which must already hold
// a freshly recompiled instance of the same program), then drives loop
// back to quiescence with effects suppressed through the restored tick
// (spec.md §4.8: "replayed side effects during restore are suppressed,
// since the host already observed them before the snapshot was taken").
func Restore(loop *engine.Loop, data []byte) error {
	snap, err := Decode(data)
	if err != nil {
		return err
	}
	loop.RestoreSnapshot(snap)
	loop.SetSuppressEffectsUntilTick(snap.Tick)
	if _, err := loop.RunUntilIdle(maxQuiescenceTicks); err != nil {
		return fmt.Errorf("snapshot: restore: %w", err)
	}
	return nil
}

// maxQuiescenceTicks bounds the passive replay tick loop the same way
// engine.Loop bounds its own in-tick propagation cap: a program whose
// restore never quiesces is a bug, not a case to spin on forever.
const maxQuiescenceTicks = 10_000
