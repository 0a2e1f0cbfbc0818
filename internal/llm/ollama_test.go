package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/HandsomeHarry/companion-cube/internal/classify"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv, NewClient(srv.URL, "test-model", 5*time.Second)
}

func TestGenerate(t *testing.T) {
	var gotReq generateRequest
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		json.NewEncoder(w).Encode(generateResponse{Response: "  hello there  ", Done: true})
	})

	got, err := client.Generate(context.Background(), "system", "prompt", 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "hello there" {
		t.Fatalf("expected trimmed response, got %q", got)
	}
	if gotReq.Model != "test-model" || gotReq.Stream {
		t.Fatalf("unexpected request: %+v", gotReq)
	}
	if gotReq.Options.NumPredict != 50 {
		t.Fatalf("expected num_predict 50, got %d", gotReq.Options.NumPredict)
	}
}

func TestGenerateAPIError(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(generateResponse{Error: "model not found"})
	})

	if _, err := client.Generate(context.Background(), "", "prompt", 50); err == nil {
		t.Fatalf("expected error from API error field")
	}
}

func TestModelsAndEnsureModel(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"models":[{"name":"llama3"},{"name":"mistral"}]}`))
	})

	models, err := client.Models(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(models) != 2 || models[0] != "llama3" {
		t.Fatalf("unexpected models: %v", models)
	}

	// Configured model is missing, so the first installed model takes over.
	model, err := client.EnsureModel(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if model != "llama3" || client.Model != "llama3" {
		t.Fatalf("expected switch to llama3, got %s", model)
	}
}

func TestEnsureModelKeepsInstalled(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"models":[{"name":"test-model"}]}`))
	})

	model, err := client.EnsureModel(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if model != "test-model" {
		t.Fatalf("expected configured model kept, got %s", model)
	}
}

func TestAvailable(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"models":[]}`))
	})
	if !client.Available(context.Background()) {
		t.Fatalf("expected available")
	}

	down := NewClient("http://127.0.0.1:1", "m", time.Second)
	if down.Available(context.Background()) {
		t.Fatalf("expected unavailable for unreachable server")
	}
}

func TestRespondFallsBack(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}},
		{"empty reply", func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(generateResponse{Response: "   ", Done: true})
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, client := newTestServer(t, tc.handler)
			got := client.Respond(context.Background(), classify.StateNeedsNudge, "context")
			if got != FallbackResponse(classify.StateNeedsNudge) {
				t.Fatalf("expected canned fallback, got %q", got)
			}
		})
	}
}

func TestRespondUsesModelReply(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(generateResponse{Response: "Great focus, keep at it!", Done: true})
	})

	got := client.Respond(context.Background(), classify.StateFlow, "deep in the editor")
	if got != "Great focus, keep at it!" {
		t.Fatalf("expected model reply, got %q", got)
	}
}

func TestFallbackResponseTotal(t *testing.T) {
	states := []classify.State{
		classify.StateFlow, classify.StateWorking, classify.StateNeedsNudge,
		classify.StateAFK, classify.State("unheard-of"),
	}
	for _, state := range states {
		if FallbackResponse(state) == "" {
			t.Fatalf("empty fallback for state %s", state)
		}
	}
}
