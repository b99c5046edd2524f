package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/pkravets/claimpilot/internal/a2a"
	"github.com/pkravets/claimpilot/internal/agents"
	"github.com/pkravets/claimpilot/internal/mcp"
	"github.com/pkravets/claimpilot/internal/model"
	"github.com/pkravets/claimpilot/internal/rules"
)

type fakeStore struct {
	records  map[string]*model.ClaimRecord
	statuses map[string]string
}

func newFakeStore(records ...*model.ClaimRecord) *fakeStore {
	s := &fakeStore{
		records:  make(map[string]*model.ClaimRecord),
		statuses: make(map[string]string),
	}
	for _, r := range records {
		s.records[r.ClaimID] = r
	}
	return s
}

func (s *fakeStore) GetClaim(ctx context.Context, claimID string) (*model.ClaimRecord, error) {
	if r, ok := s.records[claimID]; ok {
		return r, nil
	}
	return nil, fmt.Errorf("claim %s: %w", claimID, mcp.ErrNotFound)
}

func (s *fakeStore) UpdateStatus(ctx context.Context, claimID, status string) error {
	s.statuses[claimID] = status
	return nil
}

type fakeDispatcher struct {
	replies map[string]a2a.Reply // agent -> reply
	errs    map[string]error
	sent    map[string]string            // agent -> task text
	params  map[string]map[string]string // agent -> parameters
}

func newFakeDispatcher() *fakeDispatcher {
	return &fakeDispatcher{
		replies: make(map[string]a2a.Reply),
		errs:    make(map[string]error),
		sent:    make(map[string]string),
		params:  make(map[string]map[string]string),
	}
}

func (d *fakeDispatcher) SendTask(ctx context.Context, agent, taskText string, parameters map[string]string) (a2a.Reply, error) {
	d.sent[agent] = taskText
	d.params[agent] = parameters
	if err, ok := d.errs[agent]; ok {
		return a2a.Reply{}, err
	}
	if reply, ok := d.replies[agent]; ok {
		return reply, nil
	}
	return a2a.Reply{Status: a2a.StatusOK, Text: "looks good"}, nil
}

func testRecord() *model.ClaimRecord {
	return &model.ClaimRecord{
		ClaimID:     "OP-05",
		PatientName: "John Doe",
		BillAmount:  1250.00,
		Diagnosis:   "Influenza",
		Category:    "Outpatient",
		Status:      "submitted",
	}
}

func TestOrchestrator_ApprovesCleanClaim(t *testing.T) {
	store := newFakeStore(testRecord())
	dispatcher := newFakeDispatcher()
	log, _ := NewStepLog("")

	o := New(store, dispatcher, nil, log)
	decision, err := o.Process(context.Background(), "Process claim with OP-05")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if decision.Outcome != model.OutcomeApproved {
		t.Errorf("expected approved, got %s (%v)", decision.Outcome, decision.Reasons)
	}
	if decision.ClaimID != "OP-05" {
		t.Errorf("expected OP-05, got %s", decision.ClaimID)
	}

	// Every specialist received the structured message, which must carry
	// enough indicators to classify as structured.
	for _, agent := range agents.Specialists() {
		text, ok := dispatcher.sent[agent]
		if !ok {
			t.Fatalf("agent %s never dispatched", agent)
		}
		if sig := classifyForTest(text); !sig {
			t.Errorf("task text for %s not structured: %q", agent, text)
		}
	}

	if store.statuses["OP-05"] != "approved" {
		t.Errorf("status writeback missing, got %q", store.statuses["OP-05"])
	}
}

type fakeDocStore struct {
	*fakeStore
	docs map[string]string // role -> raw document
}

func (s *fakeDocStore) GetDocument(ctx context.Context, claimID, role string) (string, error) {
	if doc, ok := s.docs[role]; ok {
		return doc, nil
	}
	return "", fmt.Errorf("document %s/%s: %w", claimID, role, mcp.ErrNotFound)
}

func TestOrchestrator_PredigestsBillForDocumentAgent(t *testing.T) {
	store := &fakeDocStore{
		fakeStore: newFakeStore(testRecord()),
		docs: map[string]string{
			model.DocRoleBill: "<html><body><h1>Invoice</h1><script>track()</script><p>Consultation fee 1250.00</p></body></html>",
		},
	}
	dispatcher := newFakeDispatcher()
	log, _ := NewStepLog("")

	o := New(store, dispatcher, nil, log)
	if _, err := o.Process(context.Background(), "Process claim with OP-05"); err != nil {
		t.Fatalf("Process: %v", err)
	}

	params := dispatcher.params[agents.DocumentIntelligence]
	billText, ok := params["bill_text"]
	if !ok {
		t.Fatal("document agent did not receive bill_text")
	}
	if !strings.Contains(billText, "Consultation fee 1250.00") {
		t.Errorf("visible text missing from bill excerpt: %q", billText)
	}
	if strings.Contains(billText, "track()") {
		t.Errorf("script content leaked into bill excerpt: %q", billText)
	}

	if _, ok := dispatcher.params[agents.IntakeClarifier]["bill_text"]; ok {
		t.Error("bill excerpt should only go to the document agent")
	}
}

func TestOrchestrator_MissingBillIsNotFatal(t *testing.T) {
	store := &fakeDocStore{fakeStore: newFakeStore(testRecord()), docs: map[string]string{}}
	dispatcher := newFakeDispatcher()
	log, _ := NewStepLog("")

	o := New(store, dispatcher, nil, log)
	decision, err := o.Process(context.Background(), "Process claim with OP-05")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if decision.Outcome != model.OutcomeApproved {
		t.Errorf("missing attachment must not change the outcome, got %s", decision.Outcome)
	}
	if params := dispatcher.params[agents.DocumentIntelligence]; params != nil {
		t.Errorf("expected no parameters without a bill, got %v", params)
	}
}

func TestOrchestrator_NoClaimReference(t *testing.T) {
	log, _ := NewStepLog("")
	o := New(newFakeStore(), newFakeDispatcher(), nil, log)

	_, err := o.Process(context.Background(), "hello, how do I submit a claim?")
	if !errors.Is(err, ErrNoClaimReference) {
		t.Errorf("expected ErrNoClaimReference, got %v", err)
	}
}

func TestOrchestrator_NotFoundIsDeniedNotError(t *testing.T) {
	log, _ := NewStepLog("")
	o := New(newFakeStore(), newFakeDispatcher(), nil, log)

	decision, err := o.Process(context.Background(), "Process claim with ZZ-99")
	if err != nil {
		t.Fatalf("not-found must not be an error: %v", err)
	}
	if decision.Outcome != model.OutcomeDenied {
		t.Errorf("expected denied, got %s", decision.Outcome)
	}
	if len(decision.Reasons) == 0 {
		t.Error("expected a not-found reason")
	}
}

func TestOrchestrator_AgentDenialWins(t *testing.T) {
	store := newFakeStore(testRecord())
	dispatcher := newFakeDispatcher()
	dispatcher.replies[agents.CoverageRulesEngine] = a2a.Reply{
		Status: a2a.StatusOK,
		Text:   "claim denied: policy lapsed",
	}
	log, _ := NewStepLog("")

	o := New(store, dispatcher, nil, log)
	decision, err := o.Process(context.Background(), "Process claim with OP-05")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if decision.Outcome != model.OutcomeDenied {
		t.Errorf("expected denied, got %s", decision.Outcome)
	}
}

func TestOrchestrator_DownSpecialistDegradesToManualReview(t *testing.T) {
	store := newFakeStore(testRecord())
	dispatcher := newFakeDispatcher()
	dispatcher.errs[agents.DocumentIntelligence] = &a2a.TransportError{
		URL: "http://localhost:8003/", Err: errors.New("connection refused"),
	}
	log, _ := NewStepLog("")

	o := New(store, dispatcher, nil, log)
	decision, err := o.Process(context.Background(), "Process claim with OP-05")
	if err != nil {
		t.Fatalf("down specialist must not abort the run: %v", err)
	}
	if decision.Outcome != model.OutcomeManualReview {
		t.Errorf("expected manual_review, got %s", decision.Outcome)
	}

	// The remaining specialists must still have been dispatched.
	if _, ok := dispatcher.sent[agents.CoverageRulesEngine]; !ok {
		t.Error("coverage rules engine skipped after document intelligence failure")
	}
}

func TestOrchestrator_UnclearReplyNeedsManualInspection(t *testing.T) {
	store := newFakeStore(testRecord())
	dispatcher := newFakeDispatcher()
	dispatcher.replies[agents.IntakeClarifier] = a2a.Reply{Status: a2a.StatusUnclear}
	log, _ := NewStepLog("")

	o := New(store, dispatcher, nil, log)
	decision, err := o.Process(context.Background(), "Process claim with OP-05")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if decision.Outcome != model.OutcomeManualReview {
		t.Errorf("expected manual_review for unclear reply, got %s", decision.Outcome)
	}
}

func TestOrchestrator_LocalRulesApply(t *testing.T) {
	record := testRecord()
	record.BillAmount = 50000
	store := newFakeStore(record)
	log, _ := NewStepLog("")

	engine, err := rules.NewEngine([]model.CoverageRule{{
		ID:         "high-amount",
		Name:       "High bill amount",
		Expression: `claim.billAmount > 10000.0`,
		Outcome:    model.RuleOutcomeFlag,
		Reason:     "bill amount above auto-approve limit",
	}})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	o := New(store, newFakeDispatcher(), engine, log)
	decision, err := o.Process(context.Background(), "Process claim with OP-05")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if decision.Outcome != model.OutcomeManualReview {
		t.Errorf("expected manual_review from flagged rule, got %s", decision.Outcome)
	}
}

func TestOrchestrator_RecordsStepsForDashboard(t *testing.T) {
	store := newFakeStore(testRecord())
	log, _ := NewStepLog("")

	o := New(store, newFakeDispatcher(), nil, log)
	if _, err := o.Process(context.Background(), "Process claim with OP-05"); err != nil {
		t.Fatalf("Process: %v", err)
	}

	steps := log.ByClaim("OP-05")
	types := make(map[model.StepType]bool)
	for _, s := range steps {
		types[s.Type] = true
	}
	for _, want := range []model.StepType{model.StepParse, model.StepFetch, model.StepDispatch, model.StepRules, model.StepDecision} {
		if !types[want] {
			t.Errorf("missing %s step in dashboard log", want)
		}
	}

	if log.ActiveSessions() != 0 {
		t.Error("session left active after workflow finished")
	}
}

type fakeClarifier struct{ out string }

func (c *fakeClarifier) Clarify(ctx context.Context, text string) (string, error) {
	return c.out, nil
}

func TestOrchestrator_ClarifierRecoversClaimID(t *testing.T) {
	store := newFakeStore(testRecord())
	log, _ := NewStepLog("")

	o := New(store, newFakeDispatcher(), nil, log)
	o.SetClarifier(&fakeClarifier{out: "claim_id: OP-05 for the outpatient visit"})

	decision, err := o.Process(context.Background(), "please handle the outpatient flu claim for John")
	if err != nil {
		t.Fatalf("Process with clarifier: %v", err)
	}
	if decision.ClaimID != "OP-05" {
		t.Errorf("clarifier output not used, got claim %q", decision.ClaimID)
	}
}

// classifyForTest mirrors the dispatch contract: at least two structured
// field names must appear in the task text.
func classifyForTest(text string) bool {
	lower := strings.ToLower(text)
	count := 0
	for _, ind := range []string{"claim_id", "patient_name", "bill_amount", "diagnosis", "category"} {
		if strings.Contains(lower, ind) {
			count++
		}
	}
	return count >= 2
}
