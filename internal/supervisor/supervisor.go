// Package supervisor manages the local agent fleet as subprocesses from a
// declarative service table, replacing ad-hoc kill-by-port scripts.
package supervisor

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ServiceSpec declares one supervised service.
type ServiceSpec struct {
	Name       string   `yaml:"name"`
	Command    string   `yaml:"command"`
	Args       []string `yaml:"args"`
	Port       int      `yaml:"port"`
	HealthPath string   `yaml:"health_path"`
}

// DefaultSpecs returns the service table for the standard local deployment.
// Commands assume the agent entrypoints are on PATH.
func DefaultSpecs() []ServiceSpec {
	return []ServiceSpec{
		{Name: "orchestrator", Command: "claim-orchestrator", Port: 8001, HealthPath: "/.well-known/agent.json"},
		{Name: "intake_clarifier", Command: "intake-clarifier", Port: 8002, HealthPath: "/.well-known/agent.json"},
		{Name: "document_intelligence", Command: "document-intelligence", Port: 8003, HealthPath: "/.well-known/agent.json"},
		{Name: "coverage_rules_engine", Command: "coverage-rules-engine", Port: 8004, HealthPath: "/.well-known/agent.json"},
		{Name: "voice_agent", Command: "voice-agent", Port: 8007, HealthPath: "/.well-known/agent.json"},
		{Name: "mcp_server", Command: "claims-mcp-server", Port: 8080, HealthPath: "/health"},
	}
}

// LoadSpecs reads a service table from a YAML file.
func LoadSpecs(path string) ([]ServiceSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read service table: %w", err)
	}

	var doc struct {
		Services []ServiceSpec `yaml:"services"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse service table: %w", err)
	}
	return doc.Services, nil
}

// ValidateSpecs rejects tables with missing commands or duplicate
// names/ports before anything is spawned.
func ValidateSpecs(specs []ServiceSpec) error {
	names := make(map[string]bool)
	ports := make(map[int]string)

	for _, spec := range specs {
		if strings.TrimSpace(spec.Name) == "" {
			return fmt.Errorf("service with empty name")
		}
		if strings.TrimSpace(spec.Command) == "" {
			return fmt.Errorf("service %s: empty command", spec.Name)
		}
		if spec.Port <= 0 || spec.Port > 65535 {
			return fmt.Errorf("service %s: invalid port %d", spec.Name, spec.Port)
		}
		if names[spec.Name] {
			return fmt.Errorf("duplicate service name: %s", spec.Name)
		}
		names[spec.Name] = true
		if other, taken := ports[spec.Port]; taken {
			return fmt.Errorf("port %d claimed by both %s and %s", spec.Port, other, spec.Name)
		}
		ports[spec.Port] = spec.Name
	}
	return nil
}

// ServiceStatus is one row of the fleet status report.
type ServiceStatus struct {
	Name    string
	Port    int
	Running bool
	Healthy bool
}

// process is one running service and its exit signal.
type process struct {
	cmd  *exec.Cmd
	done chan struct{} // closed when the process exits
}

func (p *process) running() bool {
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}

// Supervisor spawns, health-checks, and stops the services of one table.
type Supervisor struct {
	mu         sync.Mutex
	specs      map[string]ServiceSpec
	order      []string
	procs      map[string]*process
	logger     *zap.Logger
	httpClient *http.Client
}

// New validates the table and creates a supervisor.
func New(specs []ServiceSpec, logger *zap.Logger) (*Supervisor, error) {
	if err := ValidateSpecs(specs); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Supervisor{
		specs:      make(map[string]ServiceSpec, len(specs)),
		procs:      make(map[string]*process),
		logger:     logger,
		httpClient: &http.Client{Timeout: 2 * time.Second},
	}
	for _, spec := range specs {
		s.specs[spec.Name] = spec
		s.order = append(s.order, spec.Name)
	}
	return s, nil
}

// Start spawns the named service. Starting an already-running service is an
// error; stop it first.
func (s *Supervisor) Start(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	spec, ok := s.specs[name]
	if !ok {
		return fmt.Errorf("unknown service: %s", name)
	}
	if p, exists := s.procs[name]; exists && p.running() {
		return fmt.Errorf("service %s already running (pid %d)", name, p.cmd.Process.Pid)
	}

	cmd := exec.CommandContext(ctx, spec.Command, spec.Args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", name, err)
	}

	p := &process{cmd: cmd, done: make(chan struct{})}
	s.procs[name] = p
	s.logger.Info("service started",
		zap.String("service", name),
		zap.Int("pid", cmd.Process.Pid),
		zap.Int("port", spec.Port))

	// Reap the process and signal its exit.
	go func() {
		err := cmd.Wait()
		close(p.done)
		s.logger.Info("service exited", zap.String("service", name), zap.Error(err))
	}()

	return nil
}

// StartAll starts the whole table in declaration order, waiting for each
// service to pass its health check before starting the next.
func (s *Supervisor) StartAll(ctx context.Context) error {
	for _, name := range s.order {
		if err := s.Start(ctx, name); err != nil {
			return err
		}
		if err := s.WaitHealthy(ctx, name, 30*time.Second); err != nil {
			return fmt.Errorf("service %s never became healthy: %w", name, err)
		}
	}
	return nil
}

// Stop terminates the named service: SIGTERM, then SIGKILL after a grace
// period.
func (s *Supervisor) Stop(name string) error {
	s.mu.Lock()
	p, ok := s.procs[name]
	delete(s.procs, name)
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("service %s not running", name)
	}
	if !p.running() {
		return nil // already exited
	}

	if err := p.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("signal %s: %w", name, err)
	}

	select {
	case <-p.done:
	case <-time.After(5 * time.Second):
		_ = p.cmd.Process.Kill()
		<-p.done
	}

	s.logger.Info("service stopped", zap.String("service", name))
	return nil
}

// StopAll stops every running service, in reverse start order.
func (s *Supervisor) StopAll() {
	for i := len(s.order) - 1; i >= 0; i-- {
		_ = s.Stop(s.order[i])
	}
}

// Healthy probes the service's health endpoint.
func (s *Supervisor) Healthy(ctx context.Context, name string) bool {
	s.mu.Lock()
	spec, ok := s.specs[name]
	s.mu.Unlock()
	if !ok {
		return false
	}

	url := fmt.Sprintf("http://localhost:%d%s", spec.Port, spec.HealthPath)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// WaitHealthy polls the health endpoint until it answers or the timeout
// elapses.
func (s *Supervisor) WaitHealthy(ctx context.Context, name string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if s.Healthy(ctx, name) {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(500 * time.Millisecond):
		}
	}
	return fmt.Errorf("health check timed out after %v", timeout)
}

// Status reports every service in the table.
func (s *Supervisor) Status(ctx context.Context) []ServiceStatus {
	s.mu.Lock()
	var statuses []ServiceStatus
	for _, name := range s.order {
		spec := s.specs[name]
		p, exists := s.procs[name]
		statuses = append(statuses, ServiceStatus{
			Name:    name,
			Port:    spec.Port,
			Running: exists && p.running(),
		})
	}
	s.mu.Unlock()

	for i := range statuses {
		statuses[i].Healthy = s.Healthy(ctx, statuses[i].Name)
	}
	return statuses
}
