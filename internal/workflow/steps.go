// Package workflow orchestrates claim evaluation and records each step of
// the parse, fetch, dispatch, rules, decision sequence for the dashboard.
package workflow

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkravets/claimpilot/internal/model"
)

// StepLog records workflow steps and active sessions. It is safe for
// concurrent use: the dashboard reads while the orchestrator writes. When
// backed by a file, every append persists the full log so a restarted
// dashboard still sees history.
type StepLog struct {
	mu     sync.Mutex
	path   string // empty = memory only
	steps  []model.WorkflowStep
	active map[string]bool
}

// NewStepLog creates a step log backed by path, loading any existing
// records. An empty path keeps the log in memory.
func NewStepLog(path string) (*StepLog, error) {
	l := &StepLog{path: path, active: make(map[string]bool)}

	if path == "" {
		return l, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return l, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read step log: %w", err)
	}
	if err := json.Unmarshal(data, &l.steps); err != nil {
		return nil, fmt.Errorf("parse step log: %w", err)
	}
	return l, nil
}

// Append records a step.
func (l *StepLog) Append(step model.WorkflowStep) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.steps = append(l.steps, step)
	return l.persistLocked()
}

// Record is the one-shot helper for a step that is already finished.
func (l *StepLog) Record(claimID string, stepType model.StepType, agent string, status model.StepStatus, detail string) error {
	now := time.Now().UTC()
	return l.Append(model.WorkflowStep{
		ClaimID:   claimID,
		Type:      stepType,
		Agent:     agent,
		Status:    status,
		Detail:    detail,
		StartedAt: now,
		EndedAt:   &now,
	})
}

// Steps returns a copy of all recorded steps.
func (l *StepLog) Steps() []model.WorkflowStep {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]model.WorkflowStep, len(l.steps))
	copy(out, l.steps)
	return out
}

// ByClaim returns the steps recorded for one claim, in order.
func (l *StepLog) ByClaim(claimID string) []model.WorkflowStep {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []model.WorkflowStep
	for _, s := range l.steps {
		if s.ClaimID == claimID {
			out = append(out, s)
		}
	}
	return out
}

// StartSession marks a claim as actively processing.
func (l *StepLog) StartSession(claimID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.active[claimID] = true
}

// StopSession clears a claim's active marker.
func (l *StepLog) StopSession(claimID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.active, claimID)
}

// ActiveSessions returns the number of claims currently processing.
func (l *StepLog) ActiveSessions() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.active)
}

func (l *StepLog) persistLocked() error {
	if l.path == "" {
		return nil
	}

	data, err := json.MarshalIndent(l.steps, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal step log: %w", err)
	}

	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create step log dir: %w", err)
		}
	}
	if err := os.WriteFile(l.path, data, 0o644); err != nil {
		return fmt.Errorf("write step log: %w", err)
	}
	return nil
}
