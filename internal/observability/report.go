package observability

import (
	"time"

	"github.com/rs/zerolog"
)

const (
	OutcomeOK      = "ok"
	OutcomeWarning = "warning"
	OutcomeError   = "error"
)

// DecodeReport summarises one finished decode.
type DecodeReport struct {
	Path       string
	Version    uint32
	Duration   time.Duration
	Nodes      int
	Attributes int
	Warnings   int
	Errors     int
	Err        error
}

func (r DecodeReport) Outcome() string {
	switch {
	case r.Err != nil:
		return OutcomeError
	case r.Warnings > 0:
		return OutcomeWarning
	default:
		return OutcomeOK
	}
}

// LogDecode emits one line per decode; the level follows the outcome.
func LogDecode(logger zerolog.Logger, r DecodeReport) {
	event := logger.Info()
	switch r.Outcome() {
	case OutcomeError:
		event = logger.Error().Err(r.Err)
	case OutcomeWarning:
		event = logger.Warn()
	}
	event.
		Str("path", r.Path).
		Uint32("version", r.Version).
		Int("nodes", r.Nodes).
		Int("attributes", r.Attributes).
		Int("warnings", r.Warnings).
		Int("errors", r.Errors).
		Dur("duration", r.Duration).
		Msg("decode")
}
