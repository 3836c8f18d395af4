// Package engine implements the reactive graph runtime: the arena-backed
// node set, the routing-driven propagation loop, and the deterministic
// tick procedure described in spec.md §4.5–§4.6.
package engine

import (
	"container/heap"
	"fmt"
	"sort"
	"time"

	"github.com/BoonLang/boon-sub004/host"
	"github.com/BoonLang/boon-sub004/internal/addr"
	"github.com/BoonLang/boon-sub004/internal/arena"
	"github.com/BoonLang/boon-sub004/internal/message"
	"github.com/BoonLang/boon-sub004/internal/routing"
	"github.com/joeycumines/logiface"
)

// effectJob is one queued effect execution awaiting host delivery
// (spec.md §4.5 step 6).
type effectJob struct {
	slot    arena.SlotId
	payload message.Payload
	seq     uint64
}

// Metrics exposes ambient counters mirroring the teacher's Loop.Metrics()
// (not part of the spec's contract, but the kind of observability hook a
// production event loop carries).
type Metrics struct {
	Ticks          uint64
	NodesProcessed uint64
	Finalizations  uint64
	EffectsRun     uint64
}

// Loop is the single-threaded deterministic tick driver (spec.md §4.5): it
// owns the arena, routing table, inboxes, timer heap, dirty queue, pending
// effect queue, and pending-scope-finalization set exclusively for the
// duration of a tick.
type Loop struct {
	arena  *arena.Arena
	routes *routing.Table
	inbox  *message.Inbox

	timers   timerHeap
	timerSeq uint64

	dirty map[message.Target]struct{}

	pendingFinalize map[addr.ScopeId]struct{}

	effects   []effectJob
	effectSeq uint64

	bridge host.Adapter
	links  *host.LinkRegistry

	tick uint64

	log         *logiface.Logger[*Event]
	iterCapMult int
	now         func() time.Time
	metricsOn   bool
	metrics     Metrics

	// suppressEffectsUntilTick is set by package snapshot's Restore to the
	// restored tick; drainEffects skips any effect whose node recorded a
	// last_execution_tick at or before this value, so the passive
	// quiescence tick Restore runs doesn't replay already-applied host
	// side effects (spec.md §4.8: "Effects whose last_execution_tick
	// equals or precedes the restored tick are suppressed on the first
	// real post-restore tick").
	suppressEffectsUntilTick uint64
}

// SetSuppressEffectsUntilTick is called by package snapshot after a
// restore. Exported (rather than snapshot-package-only) because snapshot
// cannot otherwise reach into Loop's unexported field from another
// package.
func (l *Loop) SetSuppressEffectsUntilTick(tick uint64) { l.suppressEffectsUntilTick = tick }

// New constructs a Loop bound to bridge (the host adapter events are
// delivered to; pass &host.RecordingAdapter{} or an AdapterFunc for
// non-interactive CLI use).
func New(bridge host.Adapter, opts ...Option) *Loop {
	cfg := resolveOptions(opts)
	l := &Loop{
		arena:           arena.New(),
		routes:          routing.New(),
		inbox:           message.NewInbox(),
		dirty:           make(map[message.Target]struct{}),
		pendingFinalize: make(map[addr.ScopeId]struct{}),
		bridge:          bridge,
		links:           host.NewLinkRegistry(),
		log:             cfg.logger,
		iterCapMult:     cfg.iterationCapMultiplier,
		now:             cfg.now,
		metricsOn:       cfg.metricsEnabled,
	}
	return l
}

// Arena exposes the underlying arena, for the compiler's node construction
// and for snapshot/test introspection.
func (l *Loop) Arena() *arena.Arena { return l.arena }

// Routes exposes the underlying routing table.
func (l *Loop) Routes() *routing.Table { return l.routes }

// Inbox exposes the underlying inbox, for tests that want to deliver
// payloads directly without going through Enqueue.
func (l *Loop) Inbox() *message.Inbox { return l.inbox }

// Links exposes the IOPad-to-host-element binding registry.
func (l *Loop) Links() *host.LinkRegistry { return l.links }

// CurrentTick returns the current (most recently completed, or in-progress if
// called from within a node transition) logical tick counter.
func (l *Loop) CurrentTick() uint64 { return l.tick }

// Metrics returns a snapshot of the loop's ambient counters.
func (l *Loop) Metrics() Metrics { return l.metrics }

// Value returns slot's current cached output (the same value its last
// transition returned/re-forwarded), for callers outside this package —
// the CLI's eval/run output and the compiler's own tests — that need a
// root slot's materialized value without reaching into the unexported
// *node type.
func (l *Loop) Value(slot arena.SlotId) (message.Payload, bool) {
	return currentValue(l.Node(slot))
}

// Node returns the *node stored at slot, or nil if the slot holds no
// extension or is invalid. Node kind files use this to read sibling nodes'
// cached state (e.g. LATEST reading its own input array).
func (l *Loop) Node(slot arena.SlotId) *node {
	ext, ok := l.arena.Get(slot)
	if !ok || ext == nil {
		return nil
	}
	n, _ := ext.(*node)
	return n
}

// newNode allocates a slot with the given address and stores a fresh *node
// of kind, owned by scope. Used by the compiler.
func newNode(l *Loop, address addr.NodeAddress, owner addr.ScopeId, kind Kind, state any) arena.SlotId {
	slot := l.arena.AllocWithAddress(address)
	l.arena.Set(slot, &node{kind: kind, address: address, owner: owner, state: state})
	return slot
}

// Enqueue delivers payload to (slot, port) and marks it dirty. This is the
// single entry point for both host-originated external events (spec.md
// §4.5 step 3) and in-tick node-to-node delivery (step 4c): the host calls
// it before Tick to queue external input; node transitions' output is
// routed through the same path via deliver.
func (l *Loop) Enqueue(slot arena.SlotId, port addr.Port, payload message.Payload) {
	target := message.Target{Slot: slot, Port: port}
	l.inbox.Deliver(target, payload)
	l.markDirty(target)
}

func (l *Loop) markDirty(t message.Target) {
	if l.dirty == nil {
		l.dirty = make(map[message.Target]struct{})
	}
	l.dirty[t] = struct{}{}
}

// wake marks (slot, port) dirty for the next propagation pass without
// delivering anything to its inbox entry. Used for a node's own
// self-seeding wakeup, where Enqueue's literal payload would otherwise be
// indistinguishable from a real incoming update once the transition calls
// Take (e.g. Register: see NewRegister).
func (l *Loop) wake(slot arena.SlotId, port addr.Port) {
	l.markDirty(message.Target{Slot: slot, Port: port})
}

// ScheduleTimer arranges for slot to be woken (Unit payload, default
// output port) once current_tick reaches deadline.
func (l *Loop) ScheduleTimer(deadline uint64, slot arena.SlotId) {
	l.timerSeq++
	heap.Push(&l.timers, timerItem{deadline: deadline, slot: slot, seq: l.timerSeq})
}

// EnqueueFinalize marks scope for finalization at the end of the current
// tick's propagation loop (spec.md §4.5 step 5).
func (l *Loop) EnqueueFinalize(scope addr.ScopeId) {
	l.pendingFinalize[scope] = struct{}{}
}

// EnqueueEffect queues an effect execution for step 6. Called from
// effectTransition.
func (l *Loop) EnqueueEffect(slot arena.SlotId, payload message.Payload) {
	l.effectSeq++
	l.effects = append(l.effects, effectJob{slot: slot, payload: payload, seq: l.effectSeq})
}

// Bridge exposes the host adapter, for node kinds (IOPad bind/unbind,
// Effect execution) that emit bridge events directly.
func (l *Loop) Bridge() host.Adapter { return l.bridge }

// Tick runs one full tick procedure (spec.md §4.5 steps 1–7): increment the
// counter, drain due timers, run the propagation loop to quiescence,
// finalize pending scopes, drain the effect queue, and clear the
// finalization set. Fatal engine errors (CycleWithoutProgress, arena
// validity panics) are recovered here and returned as error rather than
// left to unwind into the host.
func (l *Loop) Tick() (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
				l.logFatal(err)
				return
			}
			panic(r)
		}
	}()

	l.tick++
	l.logTick(l.tick)
	if l.metricsOn {
		l.metrics.Ticks++
	}

	l.drainTimers()
	l.runPropagation()
	l.finalizeScopes()
	l.drainEffects()
	l.pendingFinalize = make(map[addr.ScopeId]struct{})

	return nil
}

// RunUntilIdle repeats Tick until a tick ends with nothing dirty and
// nothing scheduled (spec.md §5: "a 'run until quiescent' helper... used by
// the CLI for finite computations"). maxTicks bounds runaway programs; it
// returns the number of ticks actually run.
func (l *Loop) RunUntilIdle(maxTicks int) (int, error) {
	ran := 0
	for i := 0; i < maxTicks; i++ {
		if err := l.Tick(); err != nil {
			return ran, err
		}
		ran++
		if len(l.dirty) == 0 && len(l.timers) == 0 {
			return ran, nil
		}
	}
	return ran, fmt.Errorf("engine: RunUntilIdle did not reach quiescence within %d ticks", maxTicks)
}

func (l *Loop) drainTimers() {
	for {
		top, ok := l.timers.Peek()
		if !ok || top.deadline > l.tick {
			return
		}
		heap.Pop(&l.timers)
		l.Enqueue(top.slot, addr.Port{Kind: addr.PortDefault}, message.Unit())
	}
}

// runPropagation implements spec.md §4.5 step 4: repeat until the dirty
// queue is empty, sorting each pass by (NodeAddress, port) before
// processing, with an iteration cap (default 32x the nodes dirtied at tick
// start) guarding against a cycle without progress.
func (l *Loop) runPropagation() {
	capBase := len(l.dirty)
	if capBase == 0 {
		return
	}
	cap := capBase * l.iterCapMult
	if cap <= 0 {
		cap = capBase
	}
	iterations := 0
	for len(l.dirty) > 0 {
		iterations++
		if iterations > cap {
			panic(newCycleWithoutProgress(iterations, cap))
		}
		batch := l.snapshotAndSortDirty()
		for _, t := range batch {
			l.processTarget(t)
			if l.metricsOn {
				l.metrics.NodesProcessed++
			}
		}
	}
}

// snapshotAndSortDirty implements step 4a/4b: snapshot and clear the dirty
// queue, then sort by (NodeAddress, port).
func (l *Loop) snapshotAndSortDirty() []message.Target {
	batch := make([]message.Target, 0, len(l.dirty))
	for t := range l.dirty {
		batch = append(batch, t)
	}
	l.dirty = make(map[message.Target]struct{})

	sort.Slice(batch, func(i, j int) bool {
		ai, _ := l.arena.Address(batch[i].Slot)
		aj, _ := l.arena.Address(batch[j].Slot)
		if ai != aj {
			return ai.Less(aj)
		}
		return batch[i].Port.Less(batch[j].Port)
	})
	return batch
}

// processTarget implements step 4c for one (slot, port) pair: run the
// node-specific transition and, if it produced output, route it to
// subscribers.
func (l *Loop) processTarget(t message.Target) {
	n := l.Node(t.Slot)
	if n == nil {
		// Freed mid-tick (e.g. by an earlier scope finalization request that
		// already ran once this tick via a prior propagation pass); stale
		// dirty entries for a gone slot are simply dropped.
		return
	}
	fn, ok := transitions[n.kind]
	if !ok {
		return
	}
	out, ok := fn(l, t.Slot, n, t.Port)
	if !ok {
		return
	}
	changed := !n.hasValue || !n.lastValue.Equal(out)
	if changed {
		n.version++
	}
	n.lastValue = out
	n.hasValue = true
	// Version-based dedup (spec.md §4.5 step 4c, §9): an unchanged payload
	// is cached for Value()/currentValue() reads but not redelivered, so a
	// node feeding back into its own inputs reaches a fixpoint instead of
	// re-dirtying the same (slot, port) forever.
	if changed {
		l.deliver(t.Slot, out)
	}
}

// deliver routes payload from source to every current subscriber,
// depositing it in each subscriber's inbox and marking it dirty
// (spec.md §4.4, §4.5 step 4c).
func (l *Loop) deliver(source arena.SlotId, payload message.Payload) {
	for _, sub := range l.routes.Subscribers(source) {
		l.Enqueue(sub.Target, sub.Port, payload)
	}
}

// finalizeScopes implements spec.md §4.5 step 5: for each pending scope,
// free its owned slots, remove all routes touching them, purge their
// inbox entries, and (for IOPad nodes) enqueue an unbind bridge event.
func (l *Loop) finalizeScopes() {
	if len(l.pendingFinalize) == 0 {
		l.scavengeLinks()
		return
	}

	scopes := make([]addr.ScopeId, 0, len(l.pendingFinalize))
	for s := range l.pendingFinalize {
		scopes = append(scopes, s)
	}
	sort.Slice(scopes, func(i, j int) bool { return scopes[i] < scopes[j] })

	for _, scope := range scopes {
		freed := l.finalizeScope(scope)
		if l.metricsOn {
			l.metrics.Finalizations++
		}
		l.logScopeFinalized(uint64(scope), freed)
	}
	l.scavengeLinks()
}

func (l *Loop) finalizeScope(scope addr.ScopeId) int {
	var owned []arena.SlotId
	l.arena.Each(func(s arena.SlotId, ext any) {
		n, ok := ext.(*node)
		if ok && n.owner == scope {
			owned = append(owned, s)
		}
	})
	// Ascending slot index is arbitrary but deterministic given a fixed
	// arena allocation history, which is all the invariant requires.
	sort.Slice(owned, func(i, j int) bool { return owned[i].Index < owned[j].Index })

	for _, s := range owned {
		n := l.Node(s)
		if n != nil && n.kind == KindIOPad {
			if pad, ok := l.links.Unbind(s); ok {
				l.bridgeApply(host.LinkUnbind(pad, s))
			}
		}
		l.routes.RemoveSlot(s)
		l.inbox.PurgeSlot(s)
		l.arena.Free(s)
	}
	return len(owned)
}

// scavengeLinks runs the LinkRegistry's batch scavenge pass once per tick,
// after scope finalization (spec.md §4.6 IOPad row; ambient bookkeeping,
// see SPEC_FULL.md "registry.go... adapted").
func (l *Loop) scavengeLinks() {
	const batch = 32
	l.links.Scavenge(batch, l.arena.Valid)
}

func (l *Loop) bridgeApply(ev host.BridgeEvent) {
	if l.bridge != nil {
		l.bridge.Apply(ev)
	}
}

// drainEffects implements spec.md §4.5 step 6: drain the effect queue in
// insertion order, invoking the host adapter, and record
// last_execution_tick on each effect's node so a replayed post-restore tick
// can suppress duplicates.
func (l *Loop) drainEffects() {
	if len(l.effects) == 0 {
		return
	}
	jobs := l.effects
	l.effects = nil
	for _, job := range jobs {
		n := l.Node(job.slot)
		if n == nil {
			continue
		}
		st, ok := n.state.(*effectState)
		if !ok {
			continue
		}
		if st.hasRun && st.lastExecutionTick <= l.suppressEffectsUntilTick {
			st.lastExecutionTick = l.tick
			continue // replayed post-restore tick; already applied before the snapshot was taken
		}
		st.lastExecutionTick = l.tick
		st.hasRun = true
		l.bridgeApply(host.EffectExecute(st.kind, payloadToHost(job.payload)))
		if l.metricsOn {
			l.metrics.EffectsRun++
		}
	}
}
