package orchestrator

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Error pairs a file (empty for run-level failures) and the phase it
// happened in with the underlying error, per spec.md §7's "collect, don't
// abort" error taxonomy for per-file failures.
type Error struct {
	File  string
	Phase Phase
	Err   error
}

func (e Error) Error() string {
	if e.File == "" {
		return fmt.Sprintf("%s: %v", e.Phase, e.Err)
	}
	return fmt.Sprintf("%s[%s]: %v", e.Phase, e.File, e.Err)
}

func (e Error) Unwrap() error { return e.Err }

// MarshalJSON renders Err as a plain string: cmd/indexer reports the
// result as JSON on stdout, and json.Marshal can't see into an arbitrary
// error value's unexported fields.
func (e Error) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		File  string `json:"file,omitempty"`
		Phase Phase  `json:"phase"`
		Error string `json:"error"`
	}{File: e.File, Phase: e.Phase, Error: e.Err.Error()})
}

// Result is the run's final outcome, shaped per spec.md §4.7. FilesIndexed
// counts files this run actually parsed (after the incremental gate);
// SymbolsFound, RelationshipsFound, and Confidence are project-wide totals
// from phase 7's statistics pass.
type Result struct {
	Success            bool
	ProjectID          uuid.UUID
	FilesIndexed       int
	SymbolsFound       int
	RelationshipsFound int
	PatternsFound      int
	Errors             []Error
	Duration           time.Duration
	Confidence         float64
}
