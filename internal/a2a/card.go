package a2a

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// AgentCard is the well-known agent descriptor served at
// /.well-known/agent.json.
type AgentCard struct {
	Name         string       `json:"name"`
	Description  string       `json:"description"`
	URL          string       `json:"url,omitempty"`
	Version      string       `json:"version,omitempty"`
	Capabilities Capabilities `json:"capabilities,omitempty"`
	Skills       []AgentSkill `json:"skills,omitempty"`
}

// Capabilities advertises optional protocol features.
type Capabilities struct {
	Streaming         bool `json:"streaming,omitempty"`
	PushNotifications bool `json:"pushNotifications,omitempty"`
}

// AgentSkill describes one advertised skill.
type AgentSkill struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// FetchCard retrieves and decodes the agent descriptor for the agent rooted
// at baseURL.
func (c *Client) FetchCard(ctx context.Context, baseURL string) (*AgentCard, error) {
	cardURL := strings.TrimSuffix(baseURL, "/") + "/.well-known/agent.json"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cardURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{URL: cardURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &TransportError{
			URL: cardURL,
			Err: fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status),
		}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &TransportError{URL: cardURL, Err: fmt.Errorf("read body: %w", err)}
	}

	var card AgentCard
	if err := json.Unmarshal(data, &card); err != nil {
		return nil, fmt.Errorf("decode agent card: %w", err)
	}
	return &card, nil
}
