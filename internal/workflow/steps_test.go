package workflow

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/pkravets/claimpilot/internal/model"
)

func TestStepLog_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "steps.json")

	log, err := NewStepLog(path)
	if err != nil {
		t.Fatalf("NewStepLog: %v", err)
	}
	if err := log.Record("OP-05", model.StepParse, "", model.StepCompleted, "structured request"); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := log.Record("OP-05", model.StepFetch, "", model.StepCompleted, "claim record retrieved"); err != nil {
		t.Fatalf("Record: %v", err)
	}

	reopened, err := NewStepLog(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	steps := reopened.Steps()
	if len(steps) != 2 {
		t.Fatalf("expected 2 persisted steps, got %d", len(steps))
	}
	if steps[0].Type != model.StepParse || steps[1].Type != model.StepFetch {
		t.Errorf("step order lost: %+v", steps)
	}
}

func TestStepLog_ByClaim(t *testing.T) {
	log, err := NewStepLog("")
	if err != nil {
		t.Fatalf("NewStepLog: %v", err)
	}
	_ = log.Record("OP-05", model.StepParse, "", model.StepCompleted, "")
	_ = log.Record("IP-02", model.StepParse, "", model.StepCompleted, "")
	_ = log.Record("OP-05", model.StepDecision, "", model.StepCompleted, "approved")

	steps := log.ByClaim("OP-05")
	if len(steps) != 2 {
		t.Fatalf("expected 2 steps for OP-05, got %d", len(steps))
	}
	if log.ByClaim("ZZ-99") != nil {
		t.Error("expected no steps for unknown claim")
	}
}

func TestStepLog_ActiveSessions(t *testing.T) {
	log, _ := NewStepLog("")

	log.StartSession("OP-05")
	log.StartSession("IP-02")
	log.StartSession("OP-05") // idempotent
	if n := log.ActiveSessions(); n != 2 {
		t.Errorf("expected 2 active sessions, got %d", n)
	}

	log.StopSession("OP-05")
	if n := log.ActiveSessions(); n != 1 {
		t.Errorf("expected 1 active session, got %d", n)
	}
}

func TestStepLog_ConcurrentAppends(t *testing.T) {
	log, _ := NewStepLog("")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = log.Record("OP-05", model.StepDispatch, "intake_clarifier", model.StepCompleted, "")
		}()
	}
	wg.Wait()

	if got := len(log.Steps()); got != 20 {
		t.Errorf("expected 20 steps, got %d", got)
	}
}
