package script

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barnabasJ/ash-ai/internal/discovery"
	"github.com/barnabasJ/ash-ai/internal/dispatch"
	"github.com/barnabasJ/ash-ai/internal/host"
	"github.com/barnabasJ/ash-ai/internal/types"
	"github.com/barnabasJ/ash-ai/internal/validation"
)

func newBlog(t *testing.T) (*dispatch.Dispatcher, *MemoryStore) {
	t.Helper()
	d, err := Load(blogDefinition())
	require.NoError(t, err)

	store := NewMemoryStore()
	source := discovery.Catalog{Domains: []host.Domain{d}}
	return dispatch.New(source, NewInvoker(store, WithQuietMode()), dispatch.WithValidation(validation.New()), dispatch.WithQuietMode()), store
}

func TestInvoker_CreateAndList(t *testing.T) {
	dispatcher, _ := newBlog(t)
	ctx := context.Background()
	ec := types.ExecutionContext{Tenant: "acme"}

	for _, title := range []string{"b", "a", "c"} {
		outcome := dispatcher.Call(ctx, "create_post", map[string]any{"input": map[string]any{"title": title, "views": 1}}, ec)
		require.True(t, outcome.Succeeded(), "create %s: %v", title, outcome.Reason())
		assert.Contains(t, outcome.Payload(), `"title":"`+title+`"`)
	}

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"count", map[string]any{"result_type": "count"}, "3"},
		{"exists with filter", map[string]any{"result_type": "exists", "filter": map[string]any{"title": "z"}}, "false"},
		{"filtered count", map[string]any{"result_type": "count", "filter": map[string]any{"title": map[string]any{"in": []any{"a", "b"}}}}, "2"},
		{"sorted page", map[string]any{"sort": []any{map[string]any{"field": "title", "direction": "desc"}}, "limit": 1, "result_type": "count"}, "1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := dispatcher.Call(ctx, "list_posts", tt.args, ec)
			require.True(t, outcome.Succeeded(), "%v", outcome.Reason())
			assert.Equal(t, tt.want, outcome.Payload())
		})
	}
}

func TestInvoker_TenantIsolation(t *testing.T) {
	dispatcher, _ := newBlog(t)
	ctx := context.Background()

	outcome := dispatcher.Call(ctx, "create_post", map[string]any{"input": map[string]any{"title": "secret"}}, types.ExecutionContext{Tenant: "acme"})
	require.True(t, outcome.Succeeded())

	other := dispatcher.Call(ctx, "list_posts", map[string]any{"result_type": "count"}, types.ExecutionContext{Tenant: "globex"})
	require.True(t, other.Succeeded())
	assert.Equal(t, "0", other.Payload())
}

func TestInvoker_UpdateScript(t *testing.T) {
	dispatcher, store := newBlog(t)
	ctx := context.Background()

	created := store.Scope("post", "").Insert(map[string]any{"id": "p1", "title": "draft post", "status": "draft"})
	require.Equal(t, "p1", created["id"])

	outcome := dispatcher.Call(ctx, "publish_post", map[string]any{"input": map[string]any{"id": "p1"}}, types.ExecutionContext{})
	require.True(t, outcome.Succeeded(), "%v", outcome.Reason())
	assert.Equal(t, `{"id":"p1","status":"published","title":"draft post"}`, outcome.Payload())

	missing := dispatcher.Call(ctx, "publish_post", map[string]any{"input": map[string]any{"id": "nope"}}, types.ExecutionContext{})
	require.False(t, missing.Succeeded())
	env := missing.Envelope()
	assert.Equal(t, dispatch.CodeExecutionError, env.Code)
	assert.Contains(t, env.Message, "post nope not found")
}

func TestInvoker_Bindings(t *testing.T) {
	dispatcher, _ := newBlog(t)

	outcome := dispatcher.Call(context.Background(), "whoami",
		map[string]any{"action_parameters": map[string]any{"priority": "high"}},
		types.ExecutionContext{Actor: map[string]any{"id": "u1"}, Tenant: "acme"})

	require.True(t, outcome.Succeeded(), "%v", outcome.Reason())
	assert.Equal(t, `{"actor":{"id":"u1"},"priority":"high","tenant":"acme"}`, outcome.Payload())
}

func TestInvoker_StringResultIsPayload(t *testing.T) {
	dispatcher, _ := newBlog(t)

	outcome := dispatcher.Call(context.Background(), "greeting", nil, types.ExecutionContext{Tenant: "acme"})
	require.True(t, outcome.Succeeded())
	assert.Equal(t, "hello acme", outcome.Payload())
}

func TestInvoker_Failures(t *testing.T) {
	dispatcher, _ := newBlog(t)
	ctx := context.Background()

	invalid := dispatcher.Call(ctx, "validate_post", nil, types.ExecutionContext{})
	require.False(t, invalid.Succeeded())
	env := invalid.Envelope()
	assert.Equal(t, dispatch.CodeInvalidParams, env.Code)
	var invalidErr *host.InvalidError
	require.True(t, errors.As(invalid.Reason(), &invalidErr))
	assert.Equal(t, []host.FieldError{{Field: "title", Code: "required", Message: "is required"}}, invalidErr.Errors)

	runtime := dispatcher.Call(ctx, "explode", nil, types.ExecutionContext{})
	require.False(t, runtime.Succeeded())
	assert.Equal(t, dispatch.CodeExecutionError, runtime.Envelope().Code)
	assert.Contains(t, runtime.Envelope().Message, "division by zero")
}

func TestInvoker_RejectsForeignResource(t *testing.T) {
	inv := NewInvoker(NewMemoryStore(), WithQuietMode())

	result := inv.Invoke(context.Background(), host.Call{Tool: host.ToolDefinition{Name: "x"}})

	assert.Equal(t, host.ResultFailure, result.Kind)
	assert.Contains(t, result.Reason.Error(), "not a scripted resource")
}
