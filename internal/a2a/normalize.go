package a2a

import (
	"encoding/json"
	"strings"
)

// ReplyStatus tags how cleanly an agent response parsed.
type ReplyStatus string

const (
	// StatusOK: a text payload was recovered from the envelope.
	StatusOK ReplyStatus = "ok"
	// StatusError: the agent returned a JSON-RPC error object.
	StatusError ReplyStatus = "error"
	// StatusUnclear: the envelope parsed but carried no recognizable
	// payload. Soft-fail: callers log and fall back to a default rather
	// than treating this as a hard error.
	StatusUnclear ReplyStatus = "unclear"
)

// Reply is the normalized agent response. The raw payload is preserved for
// diagnostics alongside the extracted text.
type Reply struct {
	Status ReplyStatus
	Text   string
	Error  *RPCError
	Raw    json.RawMessage
}

// Normalize resolves the result-vs-message envelope inconsistency into a
// single Reply. The payload is searched under "result" first, then
// "message"; within the payload, text is recovered from message parts,
// nested status messages, or bare string fields.
func Normalize(resp *Response) Reply {
	if resp.Error != nil {
		return Reply{Status: StatusError, Error: resp.Error}
	}

	payload := resp.Result
	if len(payload) == 0 {
		payload = resp.Message
	}
	if len(payload) == 0 {
		return Reply{Status: StatusUnclear}
	}

	if text, ok := extractText(payload); ok {
		return Reply{Status: StatusOK, Text: text, Raw: payload}
	}
	return Reply{Status: StatusUnclear, Raw: payload}
}

// extractText digs a text payload out of the payload shapes observed across
// agents: a bare JSON string, a message with parts, a task whose status
// carries a message, or an object with a top-level "text" field.
func extractText(raw json.RawMessage) (string, bool) {
	// Bare string payload.
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.TrimSpace(s)
		return s, s != ""
	}

	var obj struct {
		Text   string `json:"text"`
		Parts  []Part `json:"parts"`
		Status struct {
			Message *struct {
				Parts []Part `json:"parts"`
			} `json:"message"`
		} `json:"status"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", false
	}

	if text, ok := firstTextPart(obj.Parts); ok {
		return text, true
	}
	if obj.Status.Message != nil {
		if text, ok := firstTextPart(obj.Status.Message.Parts); ok {
			return text, true
		}
	}
	if t := strings.TrimSpace(obj.Text); t != "" {
		return t, true
	}
	return "", false
}

func firstTextPart(parts []Part) (string, bool) {
	for _, p := range parts {
		if p.Kind == "text" || p.Kind == "" {
			if t := strings.TrimSpace(p.Text); t != "" {
				return t, true
			}
		}
	}
	return "", false
}
