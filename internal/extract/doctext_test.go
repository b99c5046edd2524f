package extract

import (
	"strings"
	"testing"
)

func TestDocumentText_SkipsInvisibleElements(t *testing.T) {
	doc := `
	<html>
	<head>
		<script>var amount = "9999.99";</script>
		<style>body { color: red; }</style>
	</head>
	<body>
		<h1>Hospital Bill</h1>
		<p>patient_name: John Doe</p>
		<p>bill_amount: 1250.00</p>
		<noscript>fallback</noscript>
	</body>
	</html>
	`

	text, err := DocumentText(doc)
	if err != nil {
		t.Fatalf("DocumentText: %v", err)
	}

	for _, want := range []string{"Hospital Bill", "patient_name: John Doe", "bill_amount: 1250.00"} {
		if !strings.Contains(text, want) {
			t.Errorf("expected %q in extracted text", want)
		}
	}
	for _, banned := range []string{"9999.99", "color: red", "fallback"} {
		if strings.Contains(text, banned) {
			t.Errorf("invisible content %q leaked into extracted text", banned)
		}
	}
}

func TestDocumentText_FeedsClassifier(t *testing.T) {
	doc := `<html><body>
		<p>claim_id: IP-02</p>
		<p>diagnosis: appendicitis</p>
		<p>category: Inpatient</p>
	</body></html>`

	text, err := DocumentText(doc)
	if err != nil {
		t.Fatalf("DocumentText: %v", err)
	}

	if signal := ClassifyIntent(text); !signal.IsStructuredRequest {
		t.Errorf("structured HTML attachment must classify as structured, got %+v", signal)
	}
}

func TestDocumentText_PlainText(t *testing.T) {
	text, err := DocumentText("memo for claim OP-05, nothing else")
	if err != nil {
		t.Fatalf("DocumentText: %v", err)
	}
	if !strings.Contains(text, "OP-05") {
		t.Errorf("plain text should pass through, got %q", text)
	}
}
