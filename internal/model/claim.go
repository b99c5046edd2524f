package model

import "fmt"

// ClaimRecord is the claim document fetched from the data layer.
// Field names follow the claims container schema.
type ClaimRecord struct {
	ClaimID     string            `json:"claimId"`
	PatientName string            `json:"patientName"`
	BillAmount  float64           `json:"billAmount"`
	Diagnosis   string            `json:"diagnosis"`
	Category    string            `json:"category"`
	Status      string            `json:"status"`
	BillDate    string            `json:"billDate,omitempty"`
	Region      string            `json:"region,omitempty"`
	Attachments map[string]string `json:"attachments,omitempty"` // document role -> URI
}

// Attachment document roles present in the artifacts container.
const (
	DocRoleBill             = "bill"
	DocRoleMemo             = "memo"
	DocRoleDischargeSummary = "discharge_summary"
)

// StructuredText renders the record as the structured field message sent to
// specialist agents. Every field name doubles as a workflow-intent indicator,
// so a message built here always classifies as a structured request.
func (r *ClaimRecord) StructuredText() string {
	return fmt.Sprintf(
		"claim_id: %s\npatient_name: %s\nbill_amount: %.2f\ndiagnosis: %s\ncategory: %s\nstatus: %s",
		r.ClaimID, r.PatientName, r.BillAmount, r.Diagnosis, r.Category, r.Status,
	)
}

// IntentSignal is the classification result for one message: the five
// structured-field indicators plus the derived verdict. Created fresh per
// input, never persisted.
type IntentSignal struct {
	ClaimID     bool `json:"claim_id"`
	PatientName bool `json:"patient_name"`
	BillAmount  bool `json:"bill_amount"`
	Diagnosis   bool `json:"diagnosis"`
	Category    bool `json:"category"`

	// IsStructuredRequest is true when at least two indicators matched.
	IsStructuredRequest bool `json:"is_structured_request"`
}

// Count returns how many of the five indicators matched.
func (s IntentSignal) Count() int {
	n := 0
	for _, b := range []bool{s.ClaimID, s.PatientName, s.BillAmount, s.Diagnosis, s.Category} {
		if b {
			n++
		}
	}
	return n
}
