// Package logging implements the core logging contract (spec §1's "logging
// sinks beyond the core logging contract" boundary, SPEC_FULL.md A.1): a
// small LogService interface models published through a component the way
// the original exposes ILogger as a service, wrapping zap so Models never
// import zap directly.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Kind mirrors the SMP LogMessageKind family.
type Kind uint8

const (
	KindDebug Kind = iota
	KindInfo
	KindWarning
	KindError
	KindEvent
)

func (k Kind) String() string {
	switch k {
	case KindDebug:
		return "Debug"
	case KindInfo:
		return "Info"
	case KindWarning:
		return "Warning"
	case KindError:
		return "Error"
	case KindEvent:
		return "Event"
	default:
		return "Unknown"
	}
}

func (k Kind) zapLevel() zapcore.Level {
	switch k {
	case KindDebug:
		return zapcore.DebugLevel
	case KindInfo, KindEvent:
		return zapcore.InfoLevel
	case KindWarning:
		return zapcore.WarnLevel
	case KindError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Service is the published logging capability (spec §1's "core logging
// contract"): components and internal services log through it rather
// than a global. It also satisfies the narrow Logger interfaces used by
// component.Configurer and scheduler.Scheduler ("Log(level, message
// string)"), so a *Service can be passed directly wherever those packages
// expect a Logger.
type Service struct {
	z *zap.Logger

	sender string
}

// New builds a Service wrapping a production zap.Logger.
func New(sender string) (*Service, error) {
	z, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}

	return &Service{z: z, sender: sender}, nil
}

// NewNop builds a Service that discards everything, used by tests and by
// hosts that have no sink configured.
func NewNop(sender string) *Service {
	return &Service{z: zap.NewNop(), sender: sender}
}

func (s *Service) String() string { return "Logger(" + s.sender + ")" }

// Log records message at the named kind ("Debug"/"Info"/"Warning"/
// "Error"/"Event", each accepted capitalized or all lower-case, plus
// "Warn"/"warn"; any other string logs at Info). This signature is the
// narrow Logger contract the component and scheduler packages depend on
// without importing logging directly.
func (s *Service) Log(level, message string) {
	s.LogKind(parseKind(level), message)
}

// LogKind records message at kind, tagged with this service's sender.
func (s *Service) LogKind(kind Kind, message string) {
	ce := s.z.Check(kind.zapLevel(), message)
	if ce == nil {
		return
	}

	ce.Write(zap.String("sender", s.sender), zap.String("kind", kind.String()))
}

// Sync flushes any buffered log entries, matching zap's shutdown contract.
func (s *Service) Sync() error { return s.z.Sync() }

func parseKind(level string) Kind {
	switch level {
	case "Debug", "debug":
		return KindDebug
	case "Warning", "warning", "Warn", "warn":
		return KindWarning
	case "Error", "error":
		return KindError
	case "Event", "event":
		return KindEvent
	default:
		return KindInfo
	}
}
