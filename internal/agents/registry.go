// Package agents knows the specialist agent fleet and dispatches evaluation
// tasks to it over the A2A protocol.
package agents

import (
	"fmt"
	"sort"
)

// Well-known agent names.
const (
	Orchestrator         = "orchestrator"
	IntakeClarifier      = "intake_clarifier"
	DocumentIntelligence = "document_intelligence"
	CoverageRulesEngine  = "coverage_rules_engine"
	VoiceAgent           = "voice_agent"
)

// Agent is one entry of the fleet registry.
type Agent struct {
	Name        string `yaml:"name"`
	DisplayName string `yaml:"display_name"`
	Port        int    `yaml:"port"`
}

// Registry maps agent names to endpoints.
type Registry struct {
	host   string
	agents map[string]Agent
}

// NewRegistry creates a registry for agents running on the given host.
func NewRegistry(host string, agents []Agent) *Registry {
	m := make(map[string]Agent, len(agents))
	for _, a := range agents {
		m[a.Name] = a
	}
	return &Registry{host: host, agents: m}
}

// DefaultRegistry returns the fixed port assignments used across the
// deployment.
func DefaultRegistry(host string) *Registry {
	return NewRegistry(host, []Agent{
		{Name: Orchestrator, DisplayName: "Claim Orchestrator", Port: 8001},
		{Name: IntakeClarifier, DisplayName: "Intake Clarifier", Port: 8002},
		{Name: DocumentIntelligence, DisplayName: "Document Intelligence", Port: 8003},
		{Name: CoverageRulesEngine, DisplayName: "Coverage Rules Engine", Port: 8004},
		{Name: VoiceAgent, DisplayName: "Voice Agent", Port: 8007},
	})
}

// Lookup returns the agent entry for name.
func (r *Registry) Lookup(name string) (Agent, bool) {
	a, ok := r.agents[name]
	return a, ok
}

// URL returns the agent's HTTP endpoint.
func (r *Registry) URL(name string) (string, error) {
	a, ok := r.agents[name]
	if !ok {
		return "", fmt.Errorf("unknown agent: %s", name)
	}
	return fmt.Sprintf("http://%s:%d/", r.host, a.Port), nil
}

// Names returns all registered agent names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.agents))
	for name := range r.agents {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Specialists returns the agents a claim evaluation is dispatched to, in
// workflow order.
func Specialists() []string {
	return []string{IntakeClarifier, DocumentIntelligence, CoverageRulesEngine}
}
