package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pkravets/claimpilot/internal/a2a"
	"github.com/pkravets/claimpilot/internal/agents"
	"github.com/pkravets/claimpilot/internal/extract"
	"github.com/pkravets/claimpilot/internal/mcp"
	"github.com/pkravets/claimpilot/internal/model"
	"github.com/pkravets/claimpilot/internal/rules"
)

// ClaimStore is the data-access surface the orchestrator consumes.
type ClaimStore interface {
	GetClaim(ctx context.Context, claimID string) (*model.ClaimRecord, error)
	UpdateStatus(ctx context.Context, claimID, status string) error
}

// TaskDispatcher sends evaluation tasks to specialist agents.
type TaskDispatcher interface {
	SendTask(ctx context.Context, agentName, taskText string, parameters map[string]string) (a2a.Reply, error)
}

// Clarifier optionally rewrites an ambiguous request into structured text.
type Clarifier interface {
	Clarify(ctx context.Context, text string) (string, error)
}

// DocumentStore optionally serves claim attachments by role. Stores that
// implement it let the orchestrator pre-digest the bill for the document
// intelligence agent.
type DocumentStore interface {
	GetDocument(ctx context.Context, claimID, role string) (string, error)
}

// Orchestrator runs the claim workflow end to end.
type Orchestrator struct {
	store      ClaimStore
	dispatcher TaskDispatcher
	engine     *rules.Engine // nil disables local rule evaluation
	clarifier  Clarifier     // nil disables clarification
	log        *StepLog
}

// New wires an orchestrator. engine may be nil when no local rules are
// configured.
func New(store ClaimStore, dispatcher TaskDispatcher, engine *rules.Engine, log *StepLog) *Orchestrator {
	return &Orchestrator{
		store:      store,
		dispatcher: dispatcher,
		engine:     engine,
		log:        log,
	}
}

// SetClarifier enables the optional request clarifier.
func (o *Orchestrator) SetClarifier(c Clarifier) { o.clarifier = c }

// ErrNoClaimReference is returned when no claim ID can be recovered from the
// request, even after clarification.
var ErrNoClaimReference = errors.New("no claim reference in request")

// Process evaluates one free-text employee request and returns the decision.
//
// The full original text is classified, never a truncated preview: a display
// copy that ends in "..." drops indicators and silently misclassifies.
func (o *Orchestrator) Process(ctx context.Context, text string) (*model.Decision, error) {
	claimID, ok := extract.ExtractClaimID(text)
	if !ok && o.clarifier != nil {
		clarified, err := o.clarifier.Clarify(ctx, text)
		if err == nil {
			claimID, ok = extract.ExtractClaimID(clarified)
		}
	}
	if !ok {
		_ = o.log.Record("", model.StepParse, "", model.StepFailed, "no claim reference found")
		return nil, ErrNoClaimReference
	}

	o.log.StartSession(claimID)
	defer o.log.StopSession(claimID)

	signal := extract.ClassifyIntent(text)
	_ = o.log.Record(claimID, model.StepParse, "", model.StepCompleted, parseDetail(signal))

	record, err := o.store.GetClaim(ctx, claimID)
	if err != nil {
		if errors.Is(err, mcp.ErrNotFound) {
			_ = o.log.Record(claimID, model.StepFetch, "", model.StepFailed, "no matching claim record")
			return o.decide(ctx, claimID, model.OutcomeDenied, []string{
				fmt.Sprintf("claim %s not found", claimID),
			}), nil
		}
		_ = o.log.Record(claimID, model.StepFetch, "", model.StepFailed, err.Error())
		return nil, fmt.Errorf("fetch claim %s: %w", claimID, err)
	}
	_ = o.log.Record(claimID, model.StepFetch, "", model.StepCompleted, "claim record retrieved")

	taskText := record.StructuredText()

	outcome := model.OutcomeApproved
	var reasons []string

	for _, agent := range agents.Specialists() {
		var params map[string]string
		if agent == agents.DocumentIntelligence {
			params = o.documentParams(ctx, claimID)
		}

		reply, err := o.dispatcher.SendTask(ctx, agent, taskText, params)
		if err != nil {
			// A down specialist degrades the workflow to manual review; it
			// never aborts the run.
			_ = o.log.Record(claimID, model.StepDispatch, agent, model.StepFailed, err.Error())
			outcome = worse(outcome, model.OutcomeManualReview)
			reasons = append(reasons, fmt.Sprintf("%s unreachable", agent))
			continue
		}

		switch replyVerdict(reply) {
		case model.OutcomeDenied:
			_ = o.log.Record(claimID, model.StepDispatch, agent, model.StepCompleted, reply.Text)
			outcome = model.OutcomeDenied
			reasons = append(reasons, fmt.Sprintf("%s: %s", agent, reply.Text))
		case model.OutcomeManualReview:
			_ = o.log.Record(claimID, model.StepDispatch, agent, model.StepCompleted, "response unclear")
			outcome = worse(outcome, model.OutcomeManualReview)
			reasons = append(reasons, fmt.Sprintf("%s: response needs manual inspection", agent))
		default:
			_ = o.log.Record(claimID, model.StepDispatch, agent, model.StepCompleted, reply.Text)
		}
	}

	if o.engine != nil {
		results := o.engine.Evaluate(record)
		ruleOutcome, ruleReasons := rules.Verdict(results)
		_ = o.log.Record(claimID, model.StepRules, "", model.StepCompleted,
			fmt.Sprintf("%d rules evaluated: %s", len(results), ruleOutcome))
		outcome = worse(outcome, ruleOutcome)
		reasons = append(reasons, ruleReasons...)
	} else {
		_ = o.log.Record(claimID, model.StepRules, "", model.StepSkipped, "no local rules configured")
	}

	return o.decide(ctx, claimID, outcome, reasons), nil
}

// billExcerptLimit bounds the pre-digested bill text folded into the task.
const billExcerptLimit = 2000

// documentParams fetches the bill attachment and reduces it to visible text.
// Missing attachments and extraction failures are not errors; the agent just
// receives the structured record alone.
func (o *Orchestrator) documentParams(ctx context.Context, claimID string) map[string]string {
	docs, ok := o.store.(DocumentStore)
	if !ok {
		return nil
	}

	raw, err := docs.GetDocument(ctx, claimID, model.DocRoleBill)
	if err != nil || raw == "" {
		return nil
	}

	text, err := extract.DocumentText(raw)
	if err != nil || text == "" {
		return nil
	}
	if len(text) > billExcerptLimit {
		text = text[:billExcerptLimit]
	}
	return map[string]string{"bill_text": text}
}

func (o *Orchestrator) decide(ctx context.Context, claimID string, outcome model.Outcome, reasons []string) *model.Decision {
	decision := &model.Decision{
		ClaimID:   claimID,
		Outcome:   outcome,
		Reasons:   reasons,
		DecidedAt: time.Now().UTC(),
	}

	_ = o.log.Record(claimID, model.StepDecision, "", model.StepCompleted, string(outcome))

	// Status writeback is best-effort; the decision stands even when the
	// status container is unreachable.
	if err := o.store.UpdateStatus(ctx, claimID, string(outcome)); err != nil {
		_ = o.log.Record(claimID, model.StepDecision, "", model.StepFailed,
			fmt.Sprintf("status writeback: %v", err))
	}

	return decision
}

// replyVerdict maps a normalized agent reply onto a workflow outcome.
// Unclear envelopes and RPC errors need manual inspection; an OK reply whose
// text denies the claim counts as a denial.
func replyVerdict(reply a2a.Reply) model.Outcome {
	switch reply.Status {
	case a2a.StatusOK:
		lower := strings.ToLower(reply.Text)
		for _, kw := range []string{"denied", "deny", "rejected", "not covered"} {
			if strings.Contains(lower, kw) {
				return model.OutcomeDenied
			}
		}
		return model.OutcomeApproved
	default:
		return model.OutcomeManualReview
	}
}

// worse keeps the stronger of two outcomes: denied > manual_review > approved.
func worse(a, b model.Outcome) model.Outcome {
	rank := map[model.Outcome]int{
		model.OutcomeApproved:     0,
		model.OutcomeManualReview: 1,
		model.OutcomeDenied:       2,
	}
	if rank[b] > rank[a] {
		return b
	}
	return a
}

func parseDetail(signal model.IntentSignal) string {
	if signal.IsStructuredRequest {
		return fmt.Sprintf("structured request (%d/5 indicators)", signal.Count())
	}
	return fmt.Sprintf("legacy free-text request (%d/5 indicators)", signal.Count())
}
