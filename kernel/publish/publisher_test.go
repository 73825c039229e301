package publish

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/friendo-bot/friendo/kernel/model"
	"github.com/pkg/errors"
)

type recordingSink struct {
	mu     sync.Mutex
	target string
	topics []string
	fail   bool
}

func (s *recordingSink) Target() string {
	return s.target
}

func (s *recordingSink) SetTopic(_ context.Context, topic string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("display surface unavailable")
	}
	s.topics = append(s.topics, topic)
	return nil
}

func (s *recordingSink) writes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.topics...)
}

func TestRender(t *testing.T) {
	cases := []struct {
		name     string
		status   model.ServiceStatus
		expected string
	}{
		{"unknown", model.Unknown(), "The Minecraft server is not currently running."},
		{"unreachable", model.Unreachable(), "The Minecraft server is not currently running."},
		{"online empty", model.Online(nil), "No players currently online."},
		{"online players", model.Online([]string{"zed", "alice", "bob"}), "Players online: alice, bob, zed"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Render(tc.status); got != tc.expected {
				t.Errorf("expected '%s', got '%s'", tc.expected, got)
			}
		})
	}
}

func TestRender_DoesNotReorderInput(t *testing.T) {
	players := []string{"zed", "alice"}
	Render(model.Online(players))

	if players[0] != "zed" {
		t.Error("Render must not mutate the caller's player slice")
	}
}

func TestPublish_Idempotent(t *testing.T) {
	sink := &recordingSink{target: "chan-1"}
	p := NewPublisher(sink)

	status := model.Online([]string{"alice"})
	if err := p.Publish(context.Background(), status); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if err := p.Publish(context.Background(), status); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	if writes := sink.writes(); len(writes) != 1 {
		t.Errorf("expected exactly 1 external write, got %d: %v", len(writes), writes)
	}
}

func TestPublish_EquivalentStatusesShareOneWrite(t *testing.T) {
	sink := &recordingSink{target: "chan-1"}
	p := NewPublisher(sink)

	// Unknown and Unreachable render to the same topic; the second publish
	// must not produce a second write.
	_ = p.Publish(context.Background(), model.Unknown())
	_ = p.Publish(context.Background(), model.Unreachable())

	if writes := sink.writes(); len(writes) != 1 {
		t.Errorf("expected 1 write, got %d", len(writes))
	}
}

func TestPublish_WritesOnChange(t *testing.T) {
	sink := &recordingSink{target: "chan-1"}
	p := NewPublisher(sink)

	_ = p.Publish(context.Background(), model.Online([]string{"alice"}))
	_ = p.Publish(context.Background(), model.Online([]string{"alice", "bob"}))
	_ = p.Publish(context.Background(), model.Unreachable())

	expected := []string{
		"Players online: alice",
		"Players online: alice, bob",
		"The Minecraft server is not currently running.",
	}
	writes := sink.writes()
	if len(writes) != len(expected) {
		t.Fatalf("expected %d writes, got %d: %v", len(expected), len(writes), writes)
	}
	for i := range expected {
		if writes[i] != expected[i] {
			t.Errorf("write %d: expected '%s', got '%s'", i, expected[i], writes[i])
		}
	}
}

func TestPublish_FailedWriteRetriesNextPublish(t *testing.T) {
	sink := &recordingSink{target: "chan-1", fail: true}
	p := NewPublisher(sink)

	status := model.Online([]string{"alice"})
	if err := p.Publish(context.Background(), status); err == nil {
		t.Fatal("expected error from failing sink")
	}

	// The failed write must not have been recorded as published.
	sink.mu.Lock()
	sink.fail = false
	sink.mu.Unlock()

	if err := p.Publish(context.Background(), status); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if writes := sink.writes(); len(writes) != 1 {
		t.Errorf("expected the retried write to land, got %v", writes)
	}
}

func TestPublish_MultipleSinks(t *testing.T) {
	a := &recordingSink{target: "chan-a"}
	b := &recordingSink{target: "chan-b"}
	p := NewPublisher(a, b)

	_ = p.Publish(context.Background(), model.Online(nil))

	if len(a.writes()) != 1 || len(b.writes()) != 1 {
		t.Errorf("expected one write per sink, got %d and %d", len(a.writes()), len(b.writes()))
	}
}

func TestDiscordSink_SetTopic(t *testing.T) {
	var gotAuth, gotBody, gotMethod, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sink := NewDiscordSink("424242", "secret-token")
	sink.baseURL = server.URL

	if err := sink.SetTopic(context.Background(), "Players online: alice"); err != nil {
		t.Fatalf("SetTopic failed: %v", err)
	}

	if gotMethod != http.MethodPatch {
		t.Errorf("expected PATCH, got %s", gotMethod)
	}
	if gotPath != "/channels/424242" {
		t.Errorf("unexpected path %s", gotPath)
	}
	if gotAuth != "Bot secret-token" {
		t.Errorf("unexpected auth header '%s'", gotAuth)
	}
	if gotBody != `{"topic":"Players online: alice"}` {
		t.Errorf("unexpected body '%s'", gotBody)
	}
}

func TestDiscordSink_RejectsNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "missing permissions", http.StatusForbidden)
	}))
	defer server.Close()

	sink := NewDiscordSink("424242", "secret-token")
	sink.baseURL = server.URL

	if err := sink.SetTopic(context.Background(), "topic"); err == nil {
		t.Fatal("expected error for 403 response")
	}
}
