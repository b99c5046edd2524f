package agents

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pkravets/claimpilot/internal/a2a"
	"github.com/pkravets/claimpilot/internal/worker"
)

// Dispatcher sends evaluation tasks to specialist agents with per-agent
// rate limiting and bounded retries on transport failure.
type Dispatcher struct {
	client   *a2a.Client
	registry *Registry
	limiter  *worker.Limiter
	retries  int
}

// NewDispatcher wires a dispatcher. retries counts additional attempts
// after the first; values below zero are treated as zero.
func NewDispatcher(client *a2a.Client, registry *Registry, limiter *worker.Limiter, retries int) *Dispatcher {
	if retries < 0 {
		retries = 0
	}
	return &Dispatcher{
		client:   client,
		registry: registry,
		limiter:  limiter,
		retries:  retries,
	}
}

// SendTask posts a task to the named agent and returns the normalized reply.
// Parameters are folded into the task text as structured "key: value" lines,
// sorted for determinism. Transport failures are retried; protocol-level
// oddities are not (they come back as unclear replies).
func (d *Dispatcher) SendTask(ctx context.Context, agentName, taskText string, parameters map[string]string) (a2a.Reply, error) {
	url, err := d.registry.URL(agentName)
	if err != nil {
		return a2a.Reply{}, err
	}

	text := buildTaskText(taskText, parameters)

	var lastErr error
	for attempt := 0; attempt <= d.retries; attempt++ {
		if err := d.limiter.Wait(ctx, agentName); err != nil {
			return a2a.Reply{}, err
		}

		reply, err := d.client.Send(ctx, url, a2a.NewMessageSend(text))
		if err == nil {
			return reply, nil
		}

		var te *a2a.TransportError
		if !errors.As(err, &te) {
			return a2a.Reply{}, err
		}
		lastErr = err

		// Brief pause before retrying a flaky endpoint.
		select {
		case <-ctx.Done():
			return a2a.Reply{}, ctx.Err()
		case <-time.After(time.Duration(attempt+1) * 200 * time.Millisecond):
		}
	}

	return a2a.Reply{}, fmt.Errorf("agent %s: %w", agentName, lastErr)
}

// Card fetches the agent's well-known descriptor.
func (d *Dispatcher) Card(ctx context.Context, agentName string) (*a2a.AgentCard, error) {
	url, err := d.registry.URL(agentName)
	if err != nil {
		return nil, err
	}
	return d.client.FetchCard(ctx, url)
}

func buildTaskText(taskText string, parameters map[string]string) string {
	if len(parameters) == 0 {
		return taskText
	}

	keys := make([]string, 0, len(parameters))
	for k := range parameters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(taskText)
	for _, k := range keys {
		b.WriteString("\n")
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(parameters[k])
	}
	return b.String()
}
