package a2a

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClient_Send(t *testing.T) {
	var got Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":"` + got.ID + `","result":{"parts":[{"kind":"text","text":"ack"}]}}`))
	}))
	defer srv.Close()

	client := NewClient(5*time.Second, "", "", "")
	reply, err := client.Send(context.Background(), srv.URL, NewMessageSend("evaluate claim OP-05"))
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	if got.JSONRPC != "2.0" || got.Method != "message/send" {
		t.Errorf("unexpected envelope: %+v", got)
	}
	if got.Params.Message.Role != "user" || got.Params.Message.MessageID == "" {
		t.Errorf("unexpected message: %+v", got.Params.Message)
	}
	if len(got.Params.Message.Parts) != 1 || got.Params.Message.Parts[0].Text != "evaluate claim OP-05" {
		t.Errorf("unexpected parts: %+v", got.Params.Message.Parts)
	}

	if reply.Status != StatusOK || reply.Text != "ack" {
		t.Errorf("unexpected reply: %+v", reply)
	}
}

func TestClient_Send_TransportError(t *testing.T) {
	client := NewClient(500*time.Millisecond, "", "", "")

	// Nothing listens here.
	_, err := client.Send(context.Background(), "http://127.0.0.1:1", NewMessageSend("hello"))
	if err == nil {
		t.Fatal("expected transport error")
	}

	var te *TransportError
	if !errors.As(err, &te) {
		t.Errorf("expected *TransportError, got %T: %v", err, err)
	}
}

func TestClient_Send_NonJSONBodyIsUnclear(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>gateway error</html>"))
	}))
	defer srv.Close()

	client := NewClient(5*time.Second, "", "", "")
	reply, err := client.Send(context.Background(), srv.URL, NewMessageSend("hello"))
	if err != nil {
		t.Fatalf("non-JSON body must soft-fail, got error: %v", err)
	}
	if reply.Status != StatusUnclear {
		t.Errorf("expected unclear, got %s", reply.Status)
	}
}

func TestClient_FetchCard(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/.well-known/agent.json" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{
			"name": "Coverage Rules Engine",
			"description": "Evaluates coverage rules for claims",
			"skills": [{"id": "evaluate", "name": "Evaluate Claim"}]
		}`))
	}))
	defer srv.Close()

	client := NewClient(5*time.Second, "", "", "")
	card, err := client.FetchCard(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("FetchCard: %v", err)
	}
	if card.Name != "Coverage Rules Engine" || len(card.Skills) != 1 {
		t.Errorf("unexpected card: %+v", card)
	}
}
