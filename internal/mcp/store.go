package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pkravets/claimpilot/internal/cache"
	"github.com/pkravets/claimpilot/internal/model"
)

// Container names in the claims database.
const (
	ContainerClaims        = "claims"
	ContainerArtifacts     = "artifacts"
	ContainerRulesCatalog  = "rules_catalog"
	ContainerExtractedData = "extracted_patient_data"
	ContainerPolicies      = "policies"
	ContainerClaimsStatus  = "claims_status"
)

// ErrNotFound is returned when a claim ID parses but no record exists.
var ErrNotFound = errors.New("record not found")

// Store reads and writes claim data through MCP tool calls. All operations
// are idempotent and safe to retry.
type Store struct {
	client *Client
	cache  cache.Cache
	ttl    time.Duration
}

// NewStore creates a store. cache may be nil to disable caching.
func NewStore(client *Client, c cache.Cache, ttl time.Duration) *Store {
	return &Store{client: client, cache: c, ttl: ttl}
}

// GetClaim fetches a claim record by ID. Returns ErrNotFound when no record
// matches.
func (s *Store) GetClaim(ctx context.Context, claimID string) (*model.ClaimRecord, error) {
	key := cache.Key(ContainerClaims, claimID)
	if s.cache != nil {
		if data, found := s.cache.Get(key); found {
			var record model.ClaimRecord
			if err := json.Unmarshal(data, &record); err == nil {
				return &record, nil
			}
		}
	}

	payload, err := s.client.CallTool(ctx, "get_claim", map[string]any{"claim_id": claimID})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("claim %s: %w", claimID, ErrNotFound)
		}
		return nil, fmt.Errorf("get claim %s: %w", claimID, err)
	}
	if emptyPayload(payload) {
		return nil, fmt.Errorf("claim %s: %w", claimID, ErrNotFound)
	}

	var record model.ClaimRecord
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return nil, fmt.Errorf("decode claim %s: %w", claimID, err)
	}

	if s.cache != nil {
		_ = s.cache.Set(key, []byte(payload), s.ttl)
	}
	return &record, nil
}

// GetDocument fetches an attachment from the artifacts container by claim ID
// and document role (bill, memo, discharge_summary).
func (s *Store) GetDocument(ctx context.Context, claimID, role string) (string, error) {
	payload, err := s.client.CallTool(ctx, "get_document", map[string]any{
		"claim_id": claimID,
		"role":     role,
	})
	if err != nil {
		if isNotFound(err) {
			return "", fmt.Errorf("document %s/%s: %w", claimID, role, ErrNotFound)
		}
		return "", fmt.Errorf("get document %s/%s: %w", claimID, role, err)
	}
	return payload, nil
}

// ListRules loads the coverage rules from the rules_catalog container.
func (s *Store) ListRules(ctx context.Context) ([]model.CoverageRule, error) {
	payload, err := s.client.CallTool(ctx, "list_rules", nil)
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}

	var rules []model.CoverageRule
	if err := json.Unmarshal([]byte(payload), &rules); err != nil {
		return nil, fmt.Errorf("decode rules: %w", err)
	}
	return rules, nil
}

// UpdateStatus upserts the workflow status for a claim into claims_status.
func (s *Store) UpdateStatus(ctx context.Context, claimID, status string) error {
	_, err := s.client.CallTool(ctx, "update_claim_status", map[string]any{
		"claim_id": claimID,
		"status":   status,
	})
	if err != nil {
		return fmt.Errorf("update status %s: %w", claimID, err)
	}
	return nil
}

func isNotFound(err error) bool {
	var te *ToolError
	if !errors.As(err, &te) {
		return false
	}
	return strings.Contains(strings.ToLower(te.Msg), "not found")
}

func emptyPayload(payload string) bool {
	switch strings.TrimSpace(payload) {
	case "", "null", "{}", "[]":
		return true
	}
	return false
}
