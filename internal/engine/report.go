package engine

import (
	"fmt"

	"golang.org/x/exp/slog"
)

// Report is the outcome of one reconciliation run: every slot the run got to,
// partitioned by what happened to it. A slot present in Planned but in none
// of the other lists was never reached, which happens when the run stops
// early on a creation limit.
type Report struct {
	Planned  []string
	Created  []string
	Existing []string
	Failed   []Failure
}

// Failure pairs a slot title with the error that kept it from being created.
type Failure struct {
	Title string
	Err   error
}

// log emits the end-of-run summary. Every run emits it exactly once, whether
// it completed, stopped early or aborted.
func (r *Report) log(logger *slog.Logger) {
	logger.Info("DONE",
		"planned", r.Planned,
		"created", r.Created,
		"existing", r.Existing,
		"failed", r.failureLines(),
	)
}

func (r *Report) failureLines() []string {
	lines := make([]string, len(r.Failed))
	for i, f := range r.Failed {
		lines[i] = fmt.Sprintf("%s: %v", f.Title, f.Err)
	}
	return lines
}
