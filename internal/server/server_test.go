package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/jsonrpc"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barnabasJ/ash-ai/internal/bridge"
	"github.com/barnabasJ/ash-ai/internal/dispatch"
	"github.com/barnabasJ/ash-ai/internal/host"
	"github.com/barnabasJ/ash-ai/internal/registry"
)

type noteResource struct{}

func (noteResource) Name() string { return "note" }
func (noteResource) Attributes() []host.Attribute {
	return []host.Attribute{{Name: "body", Type: host.Type{Kind: host.KindString}, Writable: true}}
}
func (noteResource) Action(string) (host.Action, bool) { return host.Action{}, false }

type notesDomain struct{}

func (notesDomain) Name() string { return "notes" }
func (notesDomain) Tools() []host.ToolDefinition {
	return []host.ToolDefinition{
		{Name: "list_notes", Resource: noteResource{}, Action: host.Action{Name: "read", Type: host.ActionRead}},
		{Name: "add_note", Resource: noteResource{}, Action: host.Action{Name: "create", Type: host.ActionCreate, Accept: []string{"body"}}},
	}
}

type attachmentResource struct{}

func (attachmentResource) Name() string { return "attachment" }
func (attachmentResource) Attributes() []host.Attribute {
	return []host.Attribute{{Name: "payload", Type: host.Type{Kind: "blob"}, Writable: true}}
}
func (attachmentResource) Action(string) (host.Action, bool) { return host.Action{}, false }

// attachmentsDomain declares a tool whose schema cannot be compiled.
type attachmentsDomain struct{}

func (attachmentsDomain) Name() string { return "attachments" }
func (attachmentsDomain) Tools() []host.ToolDefinition {
	return []host.ToolDefinition{
		{Name: "upload", Resource: attachmentResource{}, Action: host.Action{Name: "create", Type: host.ActionCreate, Accept: []string{"payload"}}},
	}
}

func testConfig(allow []string) registry.Config {
	return registry.Config{
		Application: "notes",
		Domains:     []host.Domain{notesDomain{}},
		Tools:       allow,
		Invoker: host.InvokerFunc(func(_ context.Context, call host.Call) host.Result {
			return host.Value(map[string]any{
				"tool":   call.Tool.Name,
				"tenant": call.Context.Tenant,
				"actor":  call.Context.Actor,
			})
		}),
		ValidateArguments: true,
		Quiet:             true,
	}
}

// headerTransport adds fixed headers to every request.
type headerTransport struct {
	headers map[string]string
}

func (h headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for k, v := range h.headers {
		req.Header.Set(k, v)
	}
	return http.DefaultTransport.RoundTrip(req)
}

func connectHTTP(t *testing.T, endpoint string, headers map[string]string) *mcp.ClientSession {
	t.Helper()
	transport := &mcp.StreamableClientTransport{
		Endpoint:   endpoint,
		HTTPClient: &http.Client{Transport: headerTransport{headers: headers}},
		MaxRetries: -1,
	}
	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	cs, err := client.Connect(context.Background(), transport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { cs.Close() })
	return cs
}

func TestHTTPHandler(t *testing.T) {
	reg := registry.New(registry.WithQuietMode())
	defer reg.Stop()

	handler := NewHandler(reg, []Route{
		{Path: "/mcp", Config: testConfig(nil)},
		{Path: "/mcp/readonly", Config: testConfig([]string{"list_notes"})},
	})
	ts := httptest.NewServer(handler)
	defer ts.Close()

	t.Run("full endpoint lists every tool", func(t *testing.T) {
		cs := connectHTTP(t, ts.URL+"/mcp", nil)
		res, err := cs.ListTools(context.Background(), nil)
		require.NoError(t, err)
		assert.Len(t, res.Tools, 2)
	})

	t.Run("restricted endpoint lists the allow-list", func(t *testing.T) {
		cs := connectHTTP(t, ts.URL+"/mcp/readonly", nil)
		res, err := cs.ListTools(context.Background(), nil)
		require.NoError(t, err)
		require.Len(t, res.Tools, 1)
		assert.Equal(t, "list_notes", res.Tools[0].Name)

		_, err = cs.CallTool(context.Background(), &mcp.CallToolParams{
			Name:      "add_note",
			Arguments: map[string]any{"input": map[string]any{"body": "x"}},
		})
		assert.Error(t, err)
	})

	t.Run("session identity comes from headers", func(t *testing.T) {
		cs := connectHTTP(t, ts.URL+"/mcp", map[string]string{
			bridge.HeaderActor:  "u42",
			bridge.HeaderTenant: "acme",
		})
		res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{Name: "list_notes"})
		require.NoError(t, err)
		text, ok := res.Content[0].(*mcp.TextContent)
		require.True(t, ok)
		assert.Equal(t, `{"actor":{"id":"u42"},"tenant":"acme","tool":"list_notes"}`, text.Text)
	})

	t.Run("unknown tool is reported by name", func(t *testing.T) {
		cs := connectHTTP(t, ts.URL+"/mcp", nil)
		_, err := cs.CallTool(context.Background(), &mcp.CallToolParams{Name: "nope"})
		var wire *jsonrpc.Error
		require.True(t, errors.As(err, &wire), "expected a JSON-RPC error, got %v", err)
		assert.Equal(t, dispatch.CodeInvalidParams, wire.Code)
		assert.Equal(t, "Tool 'nope' not found", wire.Message)
	})

	// Two routes with distinct allow-lists run as two instances.
	assert.Equal(t, 2, reg.Len())
}

func TestHTTPHandler_ToolSetLoadFailure(t *testing.T) {
	reg := registry.New(registry.WithQuietMode())
	defer reg.Stop()

	cfg := testConfig(nil)
	cfg.Domains = []host.Domain{attachmentsDomain{}}
	ts := httptest.NewServer(NewHandler(reg, []Route{{Path: "/mcp", Config: cfg}}))
	t.Cleanup(ts.Close)

	cs := connectHTTP(t, ts.URL+"/mcp", nil)

	listed, err := cs.ListTools(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, listed.Tools)

	_, err = cs.CallTool(context.Background(), &mcp.CallToolParams{Name: "upload"})
	var wire *jsonrpc.Error
	require.True(t, errors.As(err, &wire), "expected a JSON-RPC error, got %v", err)
	assert.Equal(t, dispatch.CodeInvalidParams, wire.Code)
	assert.True(t, strings.HasPrefix(wire.Message, "Failed to load tools: "), wire.Message)
	assert.Contains(t, wire.Message, "unsupported attribute type")
}

func TestNewSessionServer(t *testing.T) {
	reg := registry.New(registry.WithQuietMode())
	defer reg.Stop()

	cfg := testConfig(nil)
	w, err := reg.EnsureRunning(context.Background(), cfg.Key(), cfg)
	require.NoError(t, err)

	server := NewSessionServer(w, cfg.Application, bridge.ToSession(&bridge.Private{Tenant: "t1"}, nil))

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	ss, err := server.Connect(context.Background(), serverTransport, nil)
	require.NoError(t, err)
	defer ss.Close()

	cs, err := mcp.NewClient(&mcp.Implementation{Name: "c", Version: "1"}, nil).Connect(context.Background(), clientTransport, nil)
	require.NoError(t, err)
	defer cs.Close()

	info := cs.InitializeResult()
	require.NotNil(t, info)
	assert.Equal(t, "ash-ai-notes", info.ServerInfo.Name)

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{Name: "list_notes"})
	require.NoError(t, err)
	assert.Equal(t, `{"actor":null,"tenant":"t1","tool":"list_notes"}`, res.Content[0].(*mcp.TextContent).Text)
}
