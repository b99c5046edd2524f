package extract

import (
	"regexp"
	"strings"
)

// Claim IDs look like OP-05, IP-02, IN-123: a 2-3 letter prefix, a hyphen,
// and 1-4 digits. Word boundaries keep tokens embedded in longer
// alphanumeric runs (XOP-05Y) from matching.
var claimIDPattern = regexp.MustCompile(`(?i)\b[A-Za-z]{2,3}-\d{1,4}\b`)

// ExtractClaimID scans free-text input for a claim reference and returns the
// first match by position, canonicalized to uppercase. The second return is
// false when no reference is present; absence is never an error.
func ExtractClaimID(text string) (string, bool) {
	match := claimIDPattern.FindString(text)
	if match == "" {
		return "", false
	}
	return strings.ToUpper(match), true
}

// ExtractAllClaimIDs returns every claim reference in the input, uppercased,
// in order of appearance, with duplicates removed.
func ExtractAllClaimIDs(text string) []string {
	matches := claimIDPattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool)
	var ids []string
	for _, m := range matches {
		id := strings.ToUpper(m)
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}
