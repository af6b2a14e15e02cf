package command

import (
	"context"
	"time"

	"github.com/goliatone/go-rbac/pkg/types"
	"github.com/goliatone/go-rbac/scope"
)

func safeClock(clock types.Clock) types.Clock {
	if clock != nil {
		return clock
	}
	return types.SystemClock{}
}

func safeLogger(logger types.Logger) types.Logger {
	if logger != nil {
		return logger
	}
	return types.NopLogger{}
}

func safeHooks(hooks types.Hooks) types.Hooks {
	return hooks
}

func safeAuditSink(sink types.AuditSink) types.AuditSink {
	return sink
}

func safeScopeGuard(g scope.Guard) scope.Guard {
	return scope.Ensure(g)
}

func now(clock types.Clock) time.Time {
	if clock == nil {
		return time.Now().UTC()
	}
	return clock.Now()
}

func logAudit(ctx context.Context, sink types.AuditSink, record types.AuditRecord) {
	if sink == nil {
		return
	}
	_ = sink.Log(ctx, record)
}

func emitAuditHook(ctx context.Context, hooks types.Hooks, record types.AuditRecord) {
	if hooks.AfterAudit == nil {
		return
	}
	hooks.AfterAudit(ctx, record)
}
