package extract

import (
	"strings"

	"github.com/pkravets/claimpilot/internal/model"
)

// The five structured-field indicators. A message carrying at least two of
// them is treated as a structured new-workflow claim evaluation request;
// the threshold tolerates partial-field messages rather than demanding a
// full schema match.
const structuredIndicatorThreshold = 2

// ClassifyIntent scores a message against the structured-field vocabulary
// and returns one indicator per field plus the derived verdict.
//
// The input must be the full original message text. Classifying a
// display-truncated preview silently misses indicators past the cut, so
// callers must never pass a shortened copy.
func ClassifyIntent(text string) model.IntentSignal {
	lower := strings.ToLower(text)

	signal := model.IntentSignal{
		ClaimID:     strings.Contains(lower, "claim_id"),
		PatientName: strings.Contains(lower, "patient_name"),
		BillAmount:  strings.Contains(lower, "bill_amount"),
		Diagnosis:   strings.Contains(lower, "diagnosis"),
		Category:    strings.Contains(lower, "category"),
	}
	signal.IsStructuredRequest = signal.Count() >= structuredIndicatorThreshold

	return signal
}
