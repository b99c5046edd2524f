// Package a2a implements the client side of the agent-to-agent JSON-RPC
// messaging protocol used by the specialist claim agents.
package a2a

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Part is one content part of an A2A message. Only text parts are used by
// the claim workflow.
type Part struct {
	Kind string `json:"kind"`
	Text string `json:"text,omitempty"`
}

// Message is the user/agent message carried inside message/send params.
type Message struct {
	MessageID string `json:"messageId"`
	Role      string `json:"role"`
	Parts     []Part `json:"parts"`
}

// SendParams wraps the message for the message/send method.
type SendParams struct {
	Message Message `json:"message"`
}

// Request is the outgoing JSON-RPC envelope.
type Request struct {
	JSONRPC string     `json:"jsonrpc"`
	ID      string     `json:"id"`
	Method  string     `json:"method"`
	Params  SendParams `json:"params"`
}

// Response is the raw incoming JSON-RPC envelope. Agents are inconsistent
// about where the payload lives (result vs message), so both are captured
// raw and resolved by Normalize.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      string          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Message json.RawMessage `json:"message,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError is a JSON-RPC error object.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// NewMessageSend builds a message/send request around a single text part.
// Envelope and message IDs are fresh UUIDs.
func NewMessageSend(text string) Request {
	return Request{
		JSONRPC: "2.0",
		ID:      uuid.NewString(),
		Method:  "message/send",
		Params: SendParams{
			Message: Message{
				MessageID: uuid.NewString(),
				Role:      "user",
				Parts:     []Part{{Kind: "text", Text: text}},
			},
		},
	}
}
