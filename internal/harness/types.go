package harness

import (
	"github.com/roach88/arpp/internal/classify"
	"github.com/roach88/arpp/internal/group"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if the outcome matches the expect block.
	Pass bool `json:"pass"`

	// Groups are the classified groups, nil when classification failed.
	Groups []group.Group `json:"-"`

	// ErrorCode is the classification error code, if any.
	ErrorCode classify.ErrorCode `json:"error_code,omitempty"`

	// Report holds filter and discard counts of a successful pass.
	Report *classify.Report `json:"-"`

	// Errors contains mismatch messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
	}
}

// AddError adds a mismatch message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
