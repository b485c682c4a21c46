package imagegen

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGenerate_ReturnsBase64Payload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/generate_image/" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("bad request body: %v", err)
		}
		if req["prompt"] != "a plate of pasta" {
			t.Errorf("prompt not forwarded: %q", req["prompt"])
		}

		w.Write([]byte(`{"image_base64": "aW1hZ2U="}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 0)

	got, err := client.Generate(context.Background(), "a plate of pasta")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "aW1hZ2U=" {
		t.Fatalf("unexpected payload: %q", got)
	}
}

func TestGenerate_NonOKStatusFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInsufficientStorage) // GPU out of memory
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 0)

	_, err := client.Generate(context.Background(), "x")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "507") {
		t.Fatalf("expected status in message, got %q", err.Error())
	}
}

func TestHealthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "ok", "model_loaded": true}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 0)
	if !client.Healthy(context.Background()) {
		t.Fatal("expected healthy")
	}

	srv.Close()
	if client.Healthy(context.Background()) {
		t.Fatal("expected unhealthy after shutdown")
	}
}

func TestPlaceholderURL_EscapesDishName(t *testing.T) {
	got := PlaceholderURL("Dal Makhani")
	if got != "https://placehold.co/512x512?text=Dal+Makhani" {
		t.Fatalf("unexpected placeholder: %q", got)
	}
}

func TestStub_ProducesNoPayload(t *testing.T) {
	got, err := Stub{}.Generate(context.Background(), "anything")
	if err != nil {
		t.Fatalf("stub must not fail: %v", err)
	}
	if got != "" {
		t.Fatalf("stub must return empty payload, got %q", got)
	}
}
