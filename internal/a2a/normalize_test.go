package a2a

import (
	"encoding/json"
	"testing"
)

func respFrom(t *testing.T, raw string) *Response {
	t.Helper()
	var resp Response
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	return &resp
}

func TestNormalize_ResultWithParts(t *testing.T) {
	resp := respFrom(t, `{
		"jsonrpc": "2.0",
		"id": "1",
		"result": {"messageId": "m1", "role": "agent", "parts": [{"kind": "text", "text": "claim verified"}]}
	}`)

	reply := Normalize(resp)
	if reply.Status != StatusOK {
		t.Fatalf("expected ok, got %s", reply.Status)
	}
	if reply.Text != "claim verified" {
		t.Errorf("expected text payload, got %q", reply.Text)
	}
}

func TestNormalize_MessageKeyVariant(t *testing.T) {
	// Some agents nest the payload under "message" instead of "result".
	resp := respFrom(t, `{
		"jsonrpc": "2.0",
		"id": "2",
		"message": {"parts": [{"kind": "text", "text": "coverage confirmed"}]}
	}`)

	reply := Normalize(resp)
	if reply.Status != StatusOK || reply.Text != "coverage confirmed" {
		t.Errorf("message-key variant not normalized: %+v", reply)
	}
}

func TestNormalize_TaskStatusMessage(t *testing.T) {
	resp := respFrom(t, `{
		"jsonrpc": "2.0",
		"id": "3",
		"result": {
			"id": "task-1",
			"status": {"state": "completed", "message": {"parts": [{"kind": "text", "text": "documents consistent"}]}}
		}
	}`)

	reply := Normalize(resp)
	if reply.Status != StatusOK || reply.Text != "documents consistent" {
		t.Errorf("task status payload not normalized: %+v", reply)
	}
}

func TestNormalize_BareStringResult(t *testing.T) {
	resp := respFrom(t, `{"jsonrpc": "2.0", "id": "4", "result": "approved"}`)

	reply := Normalize(resp)
	if reply.Status != StatusOK || reply.Text != "approved" {
		t.Errorf("bare string result not normalized: %+v", reply)
	}
}

func TestNormalize_RPCError(t *testing.T) {
	resp := respFrom(t, `{
		"jsonrpc": "2.0",
		"id": "5",
		"error": {"code": -32600, "message": "invalid request"}
	}`)

	reply := Normalize(resp)
	if reply.Status != StatusError {
		t.Fatalf("expected error status, got %s", reply.Status)
	}
	if reply.Error == nil || reply.Error.Code != -32600 {
		t.Errorf("expected error object preserved, got %+v", reply.Error)
	}
}

func TestNormalize_MalformedIsUnclearNotFatal(t *testing.T) {
	cases := []string{
		`{"jsonrpc": "2.0", "id": "6"}`,
		`{"jsonrpc": "2.0", "id": "7", "result": {"unexpected": true}}`,
		`{"jsonrpc": "2.0", "id": "8", "result": {"parts": [{"kind": "data"}]}}`,
	}

	for _, raw := range cases {
		reply := Normalize(respFrom(t, raw))
		if reply.Status != StatusUnclear {
			t.Errorf("envelope %s: expected unclear, got %s", raw, reply.Status)
		}
	}
}
