// Package rules evaluates coverage rules against claim records. Rules are
// CEL expressions sourced from the rules_catalog container or a local YAML
// file; the engine is the local pre-check and the fallback when the coverage
// rules agent is unreachable.
package rules

import (
	"fmt"
	"os"

	"github.com/google/cel-go/cel"
	"gopkg.in/yaml.v3"

	"github.com/pkravets/claimpilot/internal/model"
)

// Engine holds the compiled rule programs. Compile once, evaluate many;
// evaluation is read-only and safe for concurrent use.
type Engine struct {
	env      *cel.Env
	compiled []compiledRule
}

type compiledRule struct {
	rule    model.CoverageRule
	program cel.Program
}

// NewEngine compiles all rules up front so a bad expression fails at startup
// rather than mid-workflow.
func NewEngine(coverageRules []model.CoverageRule) (*Engine, error) {
	env, err := cel.NewEnv(
		cel.Variable("claim", cel.DynType),
	)
	if err != nil {
		return nil, fmt.Errorf("create CEL environment: %w", err)
	}

	engine := &Engine{env: env}
	for _, rule := range coverageRules {
		ast, issues := env.Compile(rule.Expression)
		if issues != nil && issues.Err() != nil {
			return nil, fmt.Errorf("rule %s: compile: %w", rule.ID, issues.Err())
		}

		program, err := env.Program(ast, cel.CostLimit(1_000_000))
		if err != nil {
			return nil, fmt.Errorf("rule %s: program: %w", rule.ID, err)
		}

		engine.compiled = append(engine.compiled, compiledRule{rule: rule, program: program})
	}
	return engine, nil
}

// Evaluate runs every rule against the record and returns one trace entry
// per rule. A rule that errors at runtime is reported in its trace entry and
// does not stop the remaining rules.
func (e *Engine) Evaluate(record *model.ClaimRecord) []model.RuleResult {
	facts := map[string]any{"claim": claimFacts(record)}

	results := make([]model.RuleResult, 0, len(e.compiled))
	for _, cr := range e.compiled {
		result := model.RuleResult{RuleID: cr.rule.ID, Name: cr.rule.Name}

		out, _, err := cr.program.Eval(facts)
		if err != nil {
			result.Err = err.Error()
			results = append(results, result)
			continue
		}

		matched, ok := out.Value().(bool)
		if !ok {
			result.Err = fmt.Sprintf("expression returned %T, want bool", out.Value())
			results = append(results, result)
			continue
		}

		result.Matched = matched
		if matched {
			result.Outcome = cr.rule.Outcome
			result.Reason = cr.rule.Reason
		}
		results = append(results, result)
	}
	return results
}

// Verdict reduces rule traces to a single outcome: any deny wins, then any
// flag, then approved. Rules that errored count as flags so a broken rule
// never silently approves a claim.
func Verdict(results []model.RuleResult) (model.Outcome, []string) {
	outcome := model.OutcomeApproved
	var reasons []string

	for _, r := range results {
		if r.Err != "" {
			if outcome == model.OutcomeApproved {
				outcome = model.OutcomeManualReview
			}
			reasons = append(reasons, fmt.Sprintf("rule %s failed: %s", r.RuleID, r.Err))
			continue
		}
		if !r.Matched {
			continue
		}
		switch r.Outcome {
		case model.RuleOutcomeDeny:
			outcome = model.OutcomeDenied
		case model.RuleOutcomeFlag:
			if outcome == model.OutcomeApproved {
				outcome = model.OutcomeManualReview
			}
		}
		reasons = append(reasons, r.Reason)
	}
	return outcome, reasons
}

// LoadFile reads coverage rules from a local YAML file.
func LoadFile(path string) ([]model.CoverageRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}

	var doc struct {
		Rules []model.CoverageRule `yaml:"rules"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse rules file: %w", err)
	}
	return doc.Rules, nil
}

func claimFacts(record *model.ClaimRecord) map[string]any {
	return map[string]any{
		"claimId":     record.ClaimID,
		"patientName": record.PatientName,
		"billAmount":  record.BillAmount,
		"diagnosis":   record.Diagnosis,
		"category":    record.Category,
		"status":      record.Status,
		"billDate":    record.BillDate,
		"region":      record.Region,
	}
}
