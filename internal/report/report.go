// Package report writes one-line diagnostics for files that were not processed.
package report

import (
	"io"

	"github.com/rs/zerolog"

	"github.com/idelchi/datashift/internal/shifter"
)

// Reporter emits diagnostics through a zerolog console writer.
type Reporter struct {
	log zerolog.Logger
}

// New returns a Reporter writing plain, timestamp-free lines to w.
func New(w io.Writer) *Reporter {
	out := zerolog.ConsoleWriter{
		Out:          w,
		NoColor:      true,
		PartsExclude: []string{zerolog.TimestampFieldName},
	}

	return &Reporter{log: zerolog.New(out)}
}

// Result logs res if it was skipped or failed. Successful results are ignored.
func (r *Reporter) Result(res shifter.Result) {
	var event *zerolog.Event

	switch res.Status {
	case shifter.StatusOK:
		return
	case shifter.StatusSkipped:
		event = r.log.Warn()
	default:
		event = r.log.Error()
	}

	event = event.Str("input", res.Input)
	if res.Output != "" {
		event = event.Str("output", res.Output)
	}

	event.Err(res.Err).Msgf("%s %q", res.Status, res.Input)
}

// Error logs a problem that is not tied to a Result, such as a failed source deletion.
func (r *Reporter) Error(err error, msg string) {
	r.log.Error().Err(err).Msg(msg)
}
