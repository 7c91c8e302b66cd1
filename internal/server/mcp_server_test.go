package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/brizzai/realtor-cli/internal/admin"
	"github.com/brizzai/realtor-cli/internal/config"
	"github.com/brizzai/realtor-cli/internal/requester"
	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAdmin implements admin.API in memory
type fakeAdmin struct {
	questions []admin.Question
	added     []*string
	updates   []admin.UpdateQuestionPayload
	deleted   []string
	err       error
}

func (f *fakeAdmin) ListQuestions(_ context.Context, unansweredOnly bool) ([]admin.Question, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []admin.Question
	for _, q := range f.questions {
		if !unansweredOnly || !q.Answered() {
			out = append(out, q)
		}
	}
	return out, nil
}

func (f *fakeAdmin) AddQuestion(_ context.Context, question string, answer *string) (*admin.Question, error) {
	f.added = append(f.added, answer)
	return &admin.Question{QuestionID: "q-new", Question: question, Answer: answer}, f.err
}

func (f *fakeAdmin) UpdateQuestion(_ context.Context, id string, payload admin.UpdateQuestionPayload) (*admin.Question, error) {
	f.updates = append(f.updates, payload)
	return &admin.Question{QuestionID: id}, f.err
}

func (f *fakeAdmin) AnswerQuestion(_ context.Context, id, answer string) (*admin.Question, error) {
	return &admin.Question{QuestionID: id, Answer: &answer}, f.err
}

func (f *fakeAdmin) DeleteQuestion(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return f.err
}

func (f *fakeAdmin) SyncKnowledgeBase(context.Context) (*admin.SyncResponse, error) {
	return &admin.SyncResponse{Status: "started"}, f.err
}

func (f *fakeAdmin) ListVisitors(context.Context) ([]admin.Visitor, error) {
	return []admin.Visitor{}, f.err
}

func mcpConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:    "127.0.0.1",
			Port:    0,
			Mode:    config.ServerModeSSE,
			Name:    "Realtor Admin",
			Version: "test",
		},
	}
}

// startSSE serves srv over SSE on a test server and returns an initialized client
func startSSE(t *testing.T, srv *MCPServer) (*client.Client, context.Context) {
	t.Helper()

	var handler http.Handler
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler.ServeHTTP(w, r)
	}))
	handler = srv.createHTTPHandler(mcpserver.NewSSEServer(srv.mcp, mcpserver.WithBaseURL(ts.URL)))
	t.Cleanup(func() {
		ts.CloseClientConnections()
		ts.Close()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)

	sseClient, err := client.NewSSEMCPClient(ts.URL + "/sse")
	require.NoError(t, err, "Failed to create SSE client")
	require.NoError(t, sseClient.Start(ctx), "Failed to start client")
	t.Cleanup(func() { _ = sseClient.Close() })

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.Capabilities = mcp.ClientCapabilities{}
	initReq.Params.ClientInfo = mcp.Implementation{
		Name:    "test-client",
		Version: "1.0.0",
	}
	initResult, err := sseClient.Initialize(ctx, initReq)
	require.NoError(t, err, "Failed to initialize client")
	require.NotNil(t, initResult)
	assert.Equal(t, "Realtor Admin", initResult.ServerInfo.Name)

	return sseClient, ctx
}

func callTool(t *testing.T, ctx context.Context, c *client.Client, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	request := mcp.CallToolRequest{}
	request.Params.Name = name
	request.Params.Arguments = args
	res, err := c.CallTool(ctx, request)
	require.NoError(t, err)
	return res
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, res.Content, 1)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return tc.Text
}

func TestMCPServer_ListTools(t *testing.T) {
	srv := newMCPServer(mcpConfig(), &fakeAdmin{}, checker(true))
	c, ctx := startSSE(t, srv)

	tools, err := c.ListTools(ctx, mcp.ListToolsRequest{})
	require.NoError(t, err, "Failed to get tools from server")

	expectedTools := map[string]bool{
		"list_questions":      true,
		"add_question":        true,
		"answer_question":     true,
		"update_question":     true,
		"delete_question":     true,
		"sync_knowledge_base": true,
		"list_visitors":       true,
	}
	for _, tool := range tools.Tools {
		assert.True(t, expectedTools[tool.Name], "Unexpected tool: %s", tool.Name)
		delete(expectedTools, tool.Name)
	}
	assert.Empty(t, expectedTools, "Missing expected tools: %v", expectedTools)
}

func TestMCPServer_CallTools(t *testing.T) {
	answer := "Yes, it has a garage."
	api := &fakeAdmin{questions: []admin.Question{
		{QuestionID: "q1", Question: "Does it have a garage?", Answer: &answer, Processed: true},
		{QuestionID: "q2", Question: "Is there a pool?"},
	}}
	srv := newMCPServer(mcpConfig(), api, checker(true))
	c, ctx := startSSE(t, srv)

	res := callTool(t, ctx, c, "list_questions", map[string]interface{}{"unanswered_only": true})
	assert.False(t, res.IsError)
	assert.Contains(t, text(t, res), `"question_id": "q2"`)
	assert.NotContains(t, text(t, res), `"question_id": "q1"`)

	res = callTool(t, ctx, c, "add_question", map[string]interface{}{"question": "Pets allowed?"})
	assert.False(t, res.IsError)
	require.Len(t, api.added, 1)
	assert.Nil(t, api.added[0], "a missing answer is sent as null")
	assert.Contains(t, text(t, res), `"answer": null`)

	res = callTool(t, ctx, c, "update_question", map[string]interface{}{"question_id": "q2"})
	assert.True(t, res.IsError)
	assert.Empty(t, api.updates)

	res = callTool(t, ctx, c, "update_question", map[string]interface{}{"question_id": "q2", "answer": "No pool."})
	assert.False(t, res.IsError)
	require.Len(t, api.updates, 1)
	assert.Nil(t, api.updates[0].Question)
	assert.Equal(t, "No pool.", *api.updates[0].Answer)

	res = callTool(t, ctx, c, "delete_question", map[string]interface{}{"question_id": "q2"})
	assert.False(t, res.IsError)
	assert.Equal(t, []string{"q2"}, api.deleted)

	res = callTool(t, ctx, c, "answer_question", map[string]interface{}{"question_id": "q2"})
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), `"answer"`)
}

func TestMCPServer_APIErrorIsToolError(t *testing.T) {
	api := &fakeAdmin{err: &requester.APIError{StatusCode: http.StatusForbidden, Message: "Admin access required"}}
	srv := newMCPServer(mcpConfig(), api, checker(true))
	c, ctx := startSSE(t, srv)

	res := callTool(t, ctx, c, "sync_knowledge_base", nil)
	assert.True(t, res.IsError)
	assert.Equal(t, "HTTP Error 403: Admin access required", text(t, res))
}

func TestMCPServer_Unauthorized(t *testing.T) {
	srv := newMCPServer(mcpConfig(), &fakeAdmin{}, checker(false))
	c, ctx := startSSE(t, srv)

	res := callTool(t, ctx, c, "list_visitors", nil)
	assert.True(t, res.IsError)
	assert.Equal(t, "Unauthorized: run realtor login", text(t, res))
}

// TestMCPServer_ContextCancellation tests that the server shuts down properly when context is cancelled
func TestMCPServer_ContextCancellation(t *testing.T) {
	for _, mode := range []config.ServerMode{config.ServerModeSSE, config.ServerModeHTTP} {
		t.Run(string(mode), func(t *testing.T) {
			cfg := mcpConfig()
			cfg.Server.Mode = mode
			srv := newMCPServer(cfg, &fakeAdmin{}, checker(true))

			ctx, cancel := context.WithCancel(context.Background())
			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Start(ctx)
			}()

			// Give server time to start
			time.Sleep(100 * time.Millisecond)
			cancel()

			select {
			case err := <-errCh:
				assert.NoError(t, err, "Server should shut down gracefully")
			case <-time.After(5 * time.Second):
				t.Fatal("Server did not shut down within timeout")
			}
		})
	}
}

func TestMCPServer_UnsupportedMode(t *testing.T) {
	cfg := mcpConfig()
	cfg.Server.Mode = "carrier-pigeon"
	err := newMCPServer(cfg, &fakeAdmin{}, checker(true)).Start(context.Background())
	assert.ErrorContains(t, err, "unsupported server mode")
}

type checker bool

func (c checker) IsAuthenticated(context.Context) bool { return bool(c) }
