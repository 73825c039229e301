package mcp

import (
	"context"
	"testing"

	"github.com/friendo-bot/friendo/kernel/command"
	"github.com/friendo-bot/friendo/kernel/model"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/pkg/errors"
)

type fakeClient struct {
	state      model.InstanceState
	stateErr   error
	addr       string
	addrOk     bool
	powerCalls int
}

func (f *fakeClient) State(ctx context.Context, id string) (model.InstanceState, error) {
	if f.stateErr != nil {
		return model.StateUnknown, f.stateErr
	}
	return f.state, nil
}

func (f *fakeClient) Address(ctx context.Context, id string) (string, bool, error) {
	return f.addr, f.addrOk, nil
}

func (f *fakeClient) SetPower(ctx context.Context, id string, on bool) error {
	f.powerCalls++
	return nil
}

func (f *fakeClient) Resolve(ctx context.Context, configured string) (string, error) {
	return configured, nil
}

func newTestServer(client *fakeClient) (*FriendoMCPServer, *model.Manager) {
	mgr := model.NewManager("i-test")
	handlers := command.NewHandlers(mgr, client)
	return NewFriendoMCPServer(handlers, mgr), mgr
}

func textContent(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("expected tool result content")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", result.Content[0])
	}
	return text.Text
}

func TestNewFriendoMCPServer(t *testing.T) {
	srv, _ := newTestServer(&fakeClient{})

	if srv == nil {
		t.Fatal("expected server to be created")
	}
	if srv.handlers == nil {
		t.Error("expected handlers to be set")
	}
	if srv.mgr == nil {
		t.Error("expected manager to be set")
	}
}

func TestStatusHandler(t *testing.T) {
	srv, _ := newTestServer(&fakeClient{state: model.StateRunning})

	result, err := srv.statusHandler(context.Background(), mcp.CallToolRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := textContent(t, result); got != "The server is currently running." {
		t.Errorf("unexpected reply '%s'", got)
	}
}

func TestStatusHandler_ProviderFailureStillReplies(t *testing.T) {
	srv, _ := newTestServer(&fakeClient{stateErr: errors.New("api down")})

	result, err := srv.statusHandler(context.Background(), mcp.CallToolRequest{})
	if err != nil {
		t.Fatalf("tool handlers must not propagate errors: %v", err)
	}

	if got := textContent(t, result); got != "Something went wrong with the command." {
		t.Errorf("unexpected reply '%s'", got)
	}
}

func TestIpHandler(t *testing.T) {
	srv, _ := newTestServer(&fakeClient{state: model.StateRunning, addr: "203.0.113.7", addrOk: true})

	result, err := srv.ipHandler(context.Background(), mcp.CallToolRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := textContent(t, result); got != "The current server IP is 203.0.113.7" {
		t.Errorf("unexpected reply '%s'", got)
	}
}

func TestSpinupHandler_AlreadyPending(t *testing.T) {
	client := &fakeClient{state: model.StatePending}
	srv, _ := newTestServer(client)

	result, err := srv.spinupHandler(context.Background(), mcp.CallToolRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := textContent(t, result); got != "The server is already starting up." {
		t.Errorf("unexpected reply '%s'", got)
	}
	if client.powerCalls != 0 {
		t.Errorf("expected zero power calls, got %d", client.powerCalls)
	}
}

func TestSpindownHandler_Running(t *testing.T) {
	client := &fakeClient{state: model.StateRunning}
	srv, _ := newTestServer(client)

	result, err := srv.spindownHandler(context.Background(), mcp.CallToolRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := textContent(t, result); got != "The server has been stopped." {
		t.Errorf("unexpected reply '%s'", got)
	}
	if client.powerCalls != 1 {
		t.Errorf("expected one power call, got %d", client.powerCalls)
	}
}

func TestTopicResource(t *testing.T) {
	srv, mgr := newTestServer(&fakeClient{})
	mgr.SetStatus(model.Online([]string{"bob", "alice"}))

	contents, err := srv.topicHandler(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(contents) != 1 {
		t.Fatalf("expected one resource content, got %d", len(contents))
	}
	text, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("expected text resource contents, got %T", contents[0])
	}
	if text.Text != "Players online: alice, bob" {
		t.Errorf("unexpected topic '%s'", text.Text)
	}
}
