package model

import "time"

// StepType identifies a stage of the claim workflow.
type StepType string

const (
	StepParse    StepType = "parse"    // claim ID extraction + intent classification
	StepFetch    StepType = "fetch"    // claim record retrieval
	StepDispatch StepType = "dispatch" // specialist agent call
	StepRules    StepType = "rules"    // local coverage rules evaluation
	StepDecision StepType = "decision" // final aggregation
)

// StepStatus is the outcome of a single workflow step.
type StepStatus string

const (
	StepRunning   StepStatus = "running"
	StepCompleted StepStatus = "completed"
	StepFailed    StepStatus = "failed"
	StepSkipped   StepStatus = "skipped"
)

// WorkflowStep is one recorded step of a claim workflow, served to the
// monitoring dashboard.
type WorkflowStep struct {
	ClaimID   string     `json:"claim_id"`
	Type      StepType   `json:"step_type"`
	Agent     string     `json:"agent,omitempty"`
	Status    StepStatus `json:"status"`
	Detail    string     `json:"detail,omitempty"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}

// Outcome is the aggregated verdict for a claim workflow.
type Outcome string

const (
	OutcomeApproved     Outcome = "approved"
	OutcomeDenied       Outcome = "denied"
	OutcomeManualReview Outcome = "manual_review"
)

// Decision is the aggregated result of a full claim evaluation.
type Decision struct {
	ClaimID   string    `json:"claim_id"`
	Outcome   Outcome   `json:"outcome"`
	Reasons   []string  `json:"reasons,omitempty"`
	DecidedAt time.Time `json:"decided_at"`
}
