package sinks

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"crossfire/server/logging"
)

// ConsoleSink renders events as leveled, structured log lines via zap.
type ConsoleSink struct {
	logger *zap.Logger
}

// NewConsoleSink builds a zap-backed console sink. Development toggles
// zap's human-readable console encoder instead of JSON, matching the
// zap.NewDevelopment preset.
func NewConsoleSink(cfg logging.ConsoleConfig) (*ConsoleSink, error) {
	var zcfg zap.Config
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg = zap.NewProductionConfig()
		zcfg.EncoderConfig.TimeKey = "ts"
		zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	logger, err := zcfg.Build()
	if err != nil {
		return nil, err
	}
	return &ConsoleSink{logger: logger}, nil
}

// Write satisfies logging.Sink.
func (s *ConsoleSink) Write(event logging.Event) error {
	if s.logger == nil {
		return nil
	}
	fields := []zap.Field{
		zap.Uint64("tick", event.Tick),
		zap.String("category", string(event.Category)),
		zap.String("actor", formatEntity(event.Actor)),
	}
	if len(event.Targets) > 0 {
		fields = append(fields, zap.Strings("targets", targetStrings(event.Targets)))
	}
	if event.TraceID != "" {
		fields = append(fields, zap.String("trace_id", event.TraceID))
	}
	if event.CommandID != "" {
		fields = append(fields, zap.String("command_id", event.CommandID))
	}
	if event.Payload != nil {
		fields = append(fields, zap.Any("payload", event.Payload))
	}
	for k, v := range event.Extra {
		fields = append(fields, zap.Any(k, v))
	}

	logFn := severityLogFunc(s.logger, event.Severity)
	logFn(string(event.Type), fields...)
	return nil
}

// Close satisfies logging.Sink.
func (s *ConsoleSink) Close(context.Context) error {
	if s.logger == nil {
		return nil
	}
	// Sync can legitimately fail on stdout/stderr for non-file descriptors;
	// that's not an actionable shutdown error.
	_ = s.logger.Sync()
	return nil
}

func severityLogFunc(logger *zap.Logger, sev logging.Severity) func(string, ...zap.Field) {
	switch sev {
	case logging.SeverityDebug:
		return logger.Debug
	case logging.SeverityInfo:
		return logger.Info
	case logging.SeverityWarn:
		return logger.Warn
	case logging.SeverityError:
		return logger.Error
	default:
		return logger.Info
	}
}

func formatEntity(ref logging.EntityRef) string {
	if ref.ID == "" {
		return string(ref.Kind)
	}
	if ref.Kind == "" {
		return ref.ID
	}
	return string(ref.Kind) + ":" + ref.ID
}

func targetStrings(targets []logging.EntityRef) []string {
	out := make([]string, 0, len(targets))
	for _, target := range targets {
		out = append(out, formatEntity(target))
	}
	return out
}
