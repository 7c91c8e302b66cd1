package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"

	"github.com/brizzai/realtor-cli/internal/admin"
	"github.com/brizzai/realtor-cli/internal/auth"
	"github.com/brizzai/realtor-cli/internal/auth/guard"
	"github.com/brizzai/realtor-cli/internal/auth/middleware"
	"github.com/brizzai/realtor-cli/internal/config"
	"github.com/brizzai/realtor-cli/internal/logger"
	"github.com/brizzai/realtor-cli/internal/server/tool"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// MCPServer exposes the admin API as MCP tools
type MCPServer struct {
	config *config.Config
	mcp    *mcpserver.MCPServer
	admin  admin.API
	tool   *tool.Handler
}

// MCPServerParams holds the dependencies of the MCP bridge
type MCPServerParams struct {
	fx.In

	Config *config.Config
	Admin  admin.API
	Gate   *auth.Gate
}

// NewMCPServer creates a new MCP server instance
func NewMCPServer(params MCPServerParams) *MCPServer {
	return newMCPServer(params.Config, params.Admin, params.Gate)
}

func newMCPServer(cfg *config.Config, api admin.API, checker guard.Checker) *MCPServer {
	srv := &MCPServer{
		config: cfg,
		mcp:    mcpserver.NewMCPServer(cfg.Server.Name, cfg.Server.Version),
		admin:  api,
		tool:   tool.NewHandler(checker),
	}
	srv.setupTools()
	return srv
}

type toolDef struct {
	tool     mcp.Tool
	executor tool.Executor
}

func (s *MCPServer) setupTools() {
	for _, def := range s.adminTools() {
		logger.Info("Adding tool", zap.String("name", def.tool.Name))
		s.mcp.AddTool(def.tool, s.tool.CreateHandler(&def.tool, def.executor))
	}
}

func (s *MCPServer) adminTools() []toolDef {
	return []toolDef{
		{
			tool: mcp.NewTool("list_questions",
				mcp.WithDescription("List the visitor questions of the knowledge base"),
				mcp.WithBoolean("unanswered_only", mcp.Description("Only return questions without an answer")),
			),
			executor: func(ctx context.Context, args map[string]any) (any, error) {
				unanswered, err := tool.Bool(args, "unanswered_only")
				if err != nil {
					return nil, err
				}
				return s.admin.ListQuestions(ctx, unanswered)
			},
		},
		{
			tool: mcp.NewTool("add_question",
				mcp.WithDescription("Add a question, optionally with its answer"),
				mcp.WithString("question", mcp.Required(), mcp.Description("The question text")),
				mcp.WithString("answer", mcp.Description("The answer; leave out to add an unanswered question")),
			),
			executor: func(ctx context.Context, args map[string]any) (any, error) {
				question, err := tool.String(args, "question")
				if err != nil {
					return nil, err
				}
				answer, err := tool.OptionalString(args, "answer")
				if err != nil {
					return nil, err
				}
				return s.admin.AddQuestion(ctx, question, answer)
			},
		},
		{
			tool: mcp.NewTool("answer_question",
				mcp.WithDescription("Answer a question"),
				mcp.WithString("question_id", mcp.Required(), mcp.Description("The question id")),
				mcp.WithString("answer", mcp.Required(), mcp.Description("The answer text")),
			),
			executor: func(ctx context.Context, args map[string]any) (any, error) {
				id, err := tool.String(args, "question_id")
				if err != nil {
					return nil, err
				}
				answer, err := tool.String(args, "answer")
				if err != nil {
					return nil, err
				}
				return s.admin.AnswerQuestion(ctx, id, answer)
			},
		},
		{
			tool: mcp.NewTool("update_question",
				mcp.WithDescription("Edit the text and/or the answer of a question"),
				mcp.WithString("question_id", mcp.Required(), mcp.Description("The question id")),
				mcp.WithString("question", mcp.Description("The new question text")),
				mcp.WithString("answer", mcp.Description("The new answer")),
			),
			executor: func(ctx context.Context, args map[string]any) (any, error) {
				id, err := tool.String(args, "question_id")
				if err != nil {
					return nil, err
				}
				var payload admin.UpdateQuestionPayload
				if payload.Question, err = tool.OptionalString(args, "question"); err != nil {
					return nil, err
				}
				if payload.Answer, err = tool.OptionalString(args, "answer"); err != nil {
					return nil, err
				}
				if payload.Question == nil && payload.Answer == nil {
					return nil, &tool.ArgumentError{Name: "question", Reason: "question or answer is required"}
				}
				return s.admin.UpdateQuestion(ctx, id, payload)
			},
		},
		{
			tool: mcp.NewTool("delete_question",
				mcp.WithDescription("Delete a question"),
				mcp.WithString("question_id", mcp.Required(), mcp.Description("The question id")),
			),
			executor: func(ctx context.Context, args map[string]any) (any, error) {
				id, err := tool.String(args, "question_id")
				if err != nil {
					return nil, err
				}
				if err := s.admin.DeleteQuestion(ctx, id); err != nil {
					return nil, err
				}
				return map[string]string{"deleted": id}, nil
			},
		},
		{
			tool: mcp.NewTool("sync_knowledge_base",
				mcp.WithDescription("Start a knowledge base ingestion job with the answered questions"),
			),
			executor: func(ctx context.Context, _ map[string]any) (any, error) {
				return s.admin.SyncKnowledgeBase(ctx)
			},
		},
		{
			tool: mcp.NewTool("list_visitors",
				mcp.WithDescription("List the visitors who left contact details"),
			),
			executor: func(ctx context.Context, _ map[string]any) (any, error) {
				return s.admin.ListVisitors(ctx)
			},
		},
	}
}

// createHTTPHandler wraps the SSE or streamable HTTP transport with logging and CORS
func (s *MCPServer) createHTTPHandler(mcpHandler http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", LoggingMiddleware(mcpHandler))
	return middleware.CORS(mux)
}

func (s *MCPServer) addr() string {
	return fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
}

// ServeSSE serves the tools over server-sent events
func (s *MCPServer) ServeSSE(ctx context.Context) error {
	logger.Info("Starting MCP server via SSE", zap.String("mode", "sse"))
	sseServer := mcpserver.NewSSEServer(
		s.mcp,
		mcpserver.WithBaseURL(fmt.Sprintf("http://%s", s.addr())),
	)
	return serveHTTP(ctx, s.addr(), s.createHTTPHandler(sseServer), "SSE", nil)
}

// ServeHTTP serves the tools over streamable HTTP
func (s *MCPServer) ServeHTTP(ctx context.Context) error {
	logger.Info("Starting MCP server via HTTP", zap.String("mode", "http"))
	httpServer := mcpserver.NewStreamableHTTPServer(s.mcp)
	return serveHTTP(ctx, s.addr(), s.createHTTPHandler(httpServer), "HTTP", func(addr net.Addr) {
		logger.Info("Server listening", zap.String("address", addr.String()))
	})
}

// ServeSTDIO starts the MCP server using standard I/O (default)
func (s *MCPServer) ServeSTDIO(ctx context.Context) error {
	logger.Info("Starting MCP server via STDIO")
	stdioServer := mcpserver.NewStdioServer(s.mcp)
	return stdioServer.Listen(ctx, os.Stdin, os.Stdout)
}

// Start starts the MCP server based on the configured server mode
func (s *MCPServer) Start(ctx context.Context) error {
	logger.Info("Starting server",
		zap.String("mode", string(s.config.Server.Mode)),
		zap.String("version", s.config.Server.Version),
	)

	switch s.config.Server.Mode {
	case config.ServerModeSSE:
		return s.ServeSSE(ctx)
	case config.ServerModeHTTP:
		return s.ServeHTTP(ctx)
	case config.ServerModeSTDIO:
		return s.ServeSTDIO(ctx)
	default:
		return fmt.Errorf("unsupported server mode: %s", s.config.Server.Mode)
	}
}
