package xlog

import (
	"strings"

	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

var _ fxevent.Logger = (*FxXLogger)(nil)

// FxXLogger logs the fx lifecycle events. Successful wiring
// is logged at debug level.
type FxXLogger struct {
	logger XLogger
}

func (l *FxXLogger) hook(name string, fn, caller string, err error, fields ...zap.Field) {
	fields = append(fields,
		zap.String("function", fn),
		zap.String("caller", caller),
	)
	if err != nil {
		l.logger.Error(err, "HOOK "+name+" failed", fields...)
		return
	}
	l.logger.Debug("HOOK "+name, fields...)
}

func (l *FxXLogger) wired(action, module string, types []string, err error, trace []string, fields ...zap.Field) {
	if module != "" {
		fields = append(fields, zap.String("module", module))
	}
	if err != nil {
		l.logger.Error(err, action+" failed",
			append(fields, zap.Strings("stacktrace", trace))...,
		)
		return
	}
	l.logger.Debug(action,
		append(fields, zap.String("types", strings.Join(types, ",")))...,
	)
}

func (l *FxXLogger) LogEvent(event fxevent.Event) {
	if l == nil || l.logger == nil {
		return
	}

	switch e := event.(type) {
	case *fxevent.OnStartExecuting:
		l.hook("OnStart executing", e.FunctionName, e.CallerName, nil)
	case *fxevent.OnStartExecuted:
		l.hook("OnStart executed", e.FunctionName, e.CallerName, e.Err, zap.Duration("runtime", e.Runtime))
	case *fxevent.OnStopExecuting:
		l.hook("OnStop executing", e.FunctionName, e.CallerName, nil)
	case *fxevent.OnStopExecuted:
		l.hook("OnStop executed", e.FunctionName, e.CallerName, e.Err, zap.Duration("runtime", e.Runtime))
	case *fxevent.Supplied:
		l.wired("SUPPLY", e.ModuleName, []string{e.TypeName}, e.Err, e.StackTrace)
	case *fxevent.Provided:
		l.wired("PROVIDE", e.ModuleName, e.OutputTypeNames, e.Err, e.StackTrace,
			zap.String("constructor", e.ConstructorName),
			zap.Bool("private", e.Private),
		)
	case *fxevent.Replaced:
		l.wired("REPLACE", e.ModuleName, e.OutputTypeNames, e.Err, e.StackTrace)
	case *fxevent.Decorated:
		l.wired("DECORATE", e.ModuleName, e.OutputTypeNames, e.Err, e.StackTrace,
			zap.String("decorator", e.DecoratorName),
		)
	case *fxevent.Invoking:
		l.logger.Debug("INVOKING", zap.String("function", e.FunctionName), zap.String("module", e.ModuleName))
	case *fxevent.Invoked:
		if e.Err != nil {
			l.logger.Error(e.Err, "INVOKE failed",
				zap.String("function", e.FunctionName),
				zap.String("trace", e.Trace),
			)
		}
	case *fxevent.Stopping:
		l.logger.Info("STOPPING", zap.String("signal", strings.ToUpper(e.Signal.String())))
	case *fxevent.Stopped:
		if e.Err != nil {
			l.logger.Error(e.Err, "STOP failed")
		}
	case *fxevent.RollingBack:
		l.logger.Warn("START failed, rolling back", zap.Error(e.StartErr))
	case *fxevent.RolledBack:
		if e.Err != nil {
			l.logger.Error(e.Err, "ROLLBACK failed")
		}
	case *fxevent.Started:
		if e.Err != nil {
			l.logger.Error(e.Err, "START failed")
		} else {
			l.logger.Debug("RUNNING")
		}
	case *fxevent.LoggerInitialized:
		if e.Err != nil {
			l.logger.Error(e.Err, "LOGGER initialize failed")
		} else {
			l.logger.Debug("LOGGER initialized", zap.String("constructor", e.ConstructorName))
		}
	default:
	}
}

func NewFxXLogger(logger XLogger) *FxXLogger {
	if logger == nil {
		return &FxXLogger{}
	}
	return &FxXLogger{logger: componentLogger(logger, "Fx")}
}
