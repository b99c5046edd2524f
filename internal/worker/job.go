package worker

import (
	"context"

	"github.com/pkravets/claimpilot/internal/model"
)

// Processor runs one claim workflow request end to end.
type Processor interface {
	Process(ctx context.Context, text string) (*model.Decision, error)
}

// ProcessJob evaluates one free-text request through a Processor.
type ProcessJob struct {
	Text      string
	Processor Processor
}

// Execute implements Job.
func (j *ProcessJob) Execute(ctx context.Context) Result {
	decision, err := j.Processor.Process(ctx, j.Text)
	return &ProcessResult{
		Text:     j.Text,
		Decision: decision,
		Err:      err,
	}
}

// ProcessResult is the outcome of one batch request.
type ProcessResult struct {
	Text     string
	Decision *model.Decision
	Err      error
}

// GetError implements Result.
func (r *ProcessResult) GetError() error { return r.Err }
