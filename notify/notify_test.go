package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/use-agent/fpdswatch/config"
	"github.com/use-agent/fpdswatch/models"
)

func testConfig(url string) config.NotifyConfig {
	return config.NotifyConfig{
		WebhookURL:        url,
		RequestsPerMinute: 600, // effectively unthrottled for tests
		Burst:             10,
	}
}

func TestSend_PostsContentPayload(t *testing.T) {
	var got payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("request body is not JSON: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n := New(testConfig(srv.URL))
	if err := n.Send(context.Background(), "hello"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got.Content != "hello" {
		t.Errorf("delivered content = %q, want %q", got.Content, "hello")
	}
}

func TestSend_NoURLIsNoop(t *testing.T) {
	n := New(testConfig(""))
	if err := n.Send(context.Background(), "anything"); err != nil {
		t.Errorf("Send without URL should degrade to logging, got error: %v", err)
	}
}

func TestSend_RetriesThenGivesUp(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := New(testConfig(srv.URL))
	n.retryDelays = []time.Duration{0, 0, 0} // no sleeping in tests

	if err := n.Send(context.Background(), "x"); err == nil {
		t.Error("Send should report the final delivery error")
	}
	if calls != 3 {
		t.Errorf("got %d delivery attempts, want 3", calls)
	}
}

func TestSend_RecoversMidLadder(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n := New(testConfig(srv.URL))
	n.retryDelays = []time.Duration{0, 0, 0}

	if err := n.Send(context.Background(), "x"); err != nil {
		t.Errorf("Send should succeed once the endpoint recovers: %v", err)
	}
	if calls != 2 {
		t.Errorf("got %d delivery attempts, want 2", calls)
	}
}

func TestRecordMessage_AllFields(t *testing.T) {
	msg := RecordMessage(models.Record{
		ID:     "ACME Corp Contract",
		Title:  "ACME Corp Contract",
		Vendor: "ACME Corp",
		Date:   "01/15/2024",
		Amount: "$50,000",
		Link:   "https://www.fpds.gov/awards/9987",
	})

	lines := strings.Split(msg, "\n")
	want := []string{
		"🆕 **ACME Corp Contract**",
		"Vendor: ACME Corp",
		"Date: 01/15/2024",
		"Amount: $50,000",
		"https://www.fpds.gov/awards/9987",
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d: %q", len(lines), len(want), msg)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestRecordMessage_OptionalLinesDropped(t *testing.T) {
	msg := RecordMessage(models.Record{
		ID:    "bare",
		Title: "bare",
		Link:  "https://www.fpds.gov",
	})

	if strings.Contains(msg, "Vendor:") || strings.Contains(msg, "Date:") || strings.Contains(msg, "Amount:") {
		t.Errorf("empty fields must not produce lines: %q", msg)
	}
	if lines := strings.Split(msg, "\n"); len(lines) != 2 {
		t.Errorf("got %d lines, want title + link only: %q", len(lines), msg)
	}
}
