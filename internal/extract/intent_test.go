package extract

import (
	"testing"

	"github.com/pkravets/claimpilot/internal/model"
)

func TestClassifyIntent_StructuredRequest(t *testing.T) {
	msg := "New claim. claim_id: OP-05, patient_name: John Doe, bill_amount: 1250.00"

	signal := ClassifyIntent(msg)

	if !signal.ClaimID || !signal.PatientName || !signal.BillAmount {
		t.Errorf("expected claim_id, patient_name, bill_amount indicators, got %+v", signal)
	}
	if !signal.IsStructuredRequest {
		t.Error("expected structured request verdict with 3 indicators present")
	}
}

func TestClassifyIntent_BelowThreshold(t *testing.T) {
	cases := []string{
		"",
		"please check the status of my claim",
		"claim_id: OP-05", // exactly one indicator
	}

	for _, msg := range cases {
		signal := ClassifyIntent(msg)
		if signal.IsStructuredRequest {
			t.Errorf("ClassifyIntent(%q): expected non-structured verdict, got %+v", msg, signal)
		}
	}
}

func TestClassifyIntent_ExactlyTwoIndicators(t *testing.T) {
	signal := ClassifyIntent("diagnosis and category fields only")
	if !signal.Diagnosis || !signal.Category {
		t.Fatalf("expected diagnosis and category indicators, got %+v", signal)
	}
	if !signal.IsStructuredRequest {
		t.Error("two indicators must meet the threshold")
	}
}

func TestClassifyIntent_CaseInsensitive(t *testing.T) {
	upper := ClassifyIntent("CLAIM_ID: OP-05 PATIENT_NAME: X")
	lower := ClassifyIntent("claim_id: OP-05 patient_name: X")

	if upper != lower {
		t.Errorf("case must not affect classification: %+v vs %+v", upper, lower)
	}
	if !upper.IsStructuredRequest {
		t.Error("expected structured verdict for uppercase indicators")
	}
}

func TestClassifyIntent_TruncatedPreviewRegression(t *testing.T) {
	// A display-truncated preview must not silently classify the same as
	// the full text. Guards the bug where a "..." preview was classified
	// instead of the original message.
	full := "claim_id: OP-05, patient_name: John Doe, bill_amount: 1250.00, diagnosis: flu, category: Outpatient"
	preview := full[:20] + "..."

	fullSignal := ClassifyIntent(full)
	previewSignal := ClassifyIntent(preview)

	if fullSignal == previewSignal {
		t.Fatal("truncated preview classified identically to full text; truncation defect guard is ineffective")
	}
	if !fullSignal.IsStructuredRequest {
		t.Error("full text must classify as structured")
	}
	if previewSignal.IsStructuredRequest {
		t.Error("truncated preview must lose the structured verdict")
	}
}

func TestClassifyIntent_EndToEnd(t *testing.T) {
	// "Process claim with OP-05" -> extract -> fetch -> structured message
	// built from the record classifies as structured.
	id, ok := ExtractClaimID("Process claim with OP-05")
	if !ok || id != "OP-05" {
		t.Fatalf("ExtractClaimID = %q (ok=%v), want OP-05", id, ok)
	}

	record := model.ClaimRecord{
		ClaimID:     id,
		PatientName: "John Doe",
		BillAmount:  1250.00,
		Diagnosis:   "Influenza",
		Category:    "Outpatient",
		Status:      "submitted",
	}

	signal := ClassifyIntent(record.StructuredText())
	if !signal.IsStructuredRequest {
		t.Errorf("structured message built from a record must classify as structured, got %+v", signal)
	}
	if signal.Count() != 5 {
		t.Errorf("expected all 5 indicators, got %d", signal.Count())
	}
}
