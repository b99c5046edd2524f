package model

// CoverageRule is one entry of the rules_catalog container: a CEL expression
// evaluated against a claim record. A rule that evaluates true applies its
// outcome to the claim.
type CoverageRule struct {
	ID         string `json:"id" yaml:"id"`
	Name       string `json:"name" yaml:"name"`
	Expression string `json:"expression" yaml:"expression"`
	Outcome    string `json:"outcome" yaml:"outcome"` // "deny" or "flag"
	Reason     string `json:"reason" yaml:"reason"`
}

// Rule outcomes.
const (
	RuleOutcomeDeny = "deny"
	RuleOutcomeFlag = "flag"
)

// RuleResult is the evaluation trace for one rule against one claim.
type RuleResult struct {
	RuleID  string `json:"rule_id"`
	Name    string `json:"name"`
	Matched bool   `json:"matched"`
	Outcome string `json:"outcome,omitempty"`
	Reason  string `json:"reason,omitempty"`
	Err     string `json:"error,omitempty"`
}
