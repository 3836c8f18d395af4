package engine

import (
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// Event is the concrete logiface event type this package's default logger
// uses. Hosts embedding the engine in their own structured-logging setup
// may instead build their own *logiface.Logger[*Event] and pass it via
// WithLogger; WithLogger accepts only loggers of this event type.
type Event = stumpy.Event

// defaultLogger builds a zero-allocation stumpy-backed logger, mirroring
// the teacher's own default logging setup in eventloop/logging.go (which
// defaults to Go's standard log package when no structured sink is
// configured); this engine instead defaults straight to the structured
// sink, since every log line it emits (tick diagnostics, scope
// finalization, fatal errors) is naturally field-shaped.
func defaultLogger() *logiface.Logger[*Event] {
	return logiface.New(stumpy.L.WithStumpy())
}

// logTick logs the start of tick n at Trace level (high-volume, off by
// default unless the logger's level is configured down).
func (l *Loop) logTick(n uint64) {
	if l.log == nil {
		return
	}
	l.log.Trace().Uint64("tick", n).Log("tick start")
}

// logScopeFinalized logs one scope's finalization at Debug level.
func (l *Loop) logScopeFinalized(scope uint64, freedSlots int) {
	if l.log == nil {
		return
	}
	l.log.Debug().Uint64("scope", scope).Int("freed_slots", freedSlots).Log("scope finalized")
}

// logFatal logs a fatal engine diagnostic at Error level before the panic
// unwinds to the caller of Tick.
func (l *Loop) logFatal(err error) {
	if l.log == nil {
		return
	}
	l.log.Err(err).Log("fatal engine error")
}

// logRestore logs a snapshot restore at Info level.
func (l *Loop) logRestore(tick uint64) {
	if l.log == nil {
		return
	}
	l.log.Info().Uint64("restored_tick", tick).Log("snapshot restored")
}
