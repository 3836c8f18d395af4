package main

import (
	"github.com/joeycumines/ilogrus"
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
	"github.com/sirupsen/logrus"
)

// cliLogger is this package's own operational logger for compile/run/test
// diagnostics, distinct from the engine's internal tick logger (engine's
// Event type is a fixed alias to *stumpy.Event — see engine/logging.go —
// so only the CLI's own logger can honor --log-format). stumpy and logrus
// are alternative logiface backends (see _examples' logiface-stumpy and
// logiface-logrus): exactly one of the two logger fields is non-nil.
type cliLogger struct {
	stumpy *logiface.Logger[*stumpy.Event]
	logrus *logiface.Logger[*ilogrus.Event]
}

// newCLILogger builds a cliLogger for format ("stumpy" or "logrus";
// anything else falls back to stumpy, the default).
func newCLILogger(format string) *cliLogger {
	if format == "logrus" {
		return &cliLogger{logrus: logiface.New(ilogrus.L.WithLogrus(logrus.New()))}
	}
	return &cliLogger{stumpy: logiface.New(stumpy.L.WithStumpy())}
}

// kv is one structured field attached to a cliLogger call.
type kv struct{ key, val string }

func field(key, val string) kv { return kv{key: key, val: val} }

func (c *cliLogger) Info(msg string, fields ...kv) { c.log(logiface.LevelInformational, msg, fields) }

func (c *cliLogger) Error(msg string, fields ...kv) { c.log(logiface.LevelError, msg, fields) }

func (c *cliLogger) log(level logiface.Level, msg string, fields []kv) {
	if c.logrus != nil {
		b := c.logrus.Build(level)
		for _, f := range fields {
			b = b.Str(f.key, f.val)
		}
		b.Log(msg)
		return
	}
	b := c.stumpy.Build(level)
	for _, f := range fields {
		b = b.Str(f.key, f.val)
	}
	b.Log(msg)
}
