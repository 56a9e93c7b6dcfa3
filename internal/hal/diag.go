package hal

// diag.go is the diagnostic sink external interface: a pluggable
// "print" the core uses for noisy-but-non-fatal conditions (unregistered
// vector, possible storm). A Dispatcher's default sink formats through an
// internal/log logger that writes to io.Discard, so diagnostics are dropped
// unless a caller installs a sink with WithDiagnostic.

import "github.com/smoynes/runlevel/internal/log"

// Diagnostic prints a diagnostic message. The default implementation logs
// at Warn level through internal/log; callers may substitute their own via
// WithDiagnostic.
type Diagnostic func(msg string, args ...any)

func defaultDiagnostic(logger *log.Logger) Diagnostic {
	return func(msg string, args ...any) {
		logger.Warn(msg, args...)
	}
}
