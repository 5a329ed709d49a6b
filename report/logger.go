package report

import (
	"github.com/go-logr/logr"
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/tracesim/event"
	"github.com/sarchlab/tracesim/timing/cache"
)

// AccessLogger is a hook that logs cache and predictor activity at
// verbosity 2.
type AccessLogger struct {
	log logr.Logger
}

// NewAccessLogger creates an AccessLogger writing to log.
func NewAccessLogger(log logr.Logger) *AccessLogger {
	return &AccessLogger{log: log.WithName("access")}
}

// Func logs one hook invocation.
func (l *AccessLogger) Func(ctx sim.HookCtx) {
	v := l.log.V(2)
	if !v.Enabled() {
		return
	}

	where := ""
	if named, ok := ctx.Domain.(interface{ Name() string }); ok {
		where = named.Name()
	}

	switch item := ctx.Item.(type) {
	case *cache.Request:
		kv := []interface{}{
			"where", where,
			"tick", item.Tick,
			"kind", item.Kind.String(),
			"addr", item.Addr,
		}
		if ctx.Pos == cache.HookPosEvict {
			kv = append(kv, "victim", ctx.Detail)
		}
		v.Info(ctx.Pos.Name, kv...)
	case event.BranchEvent:
		v.Info(ctx.Pos.Name,
			"where", where,
			"pc", item.PC,
			"taken", item.Taken,
			"target", item.Target)
	default:
		v.Info(ctx.Pos.Name, "where", where)
	}
}
