package mcp

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/dshills/mcpizza/internal/audit"
	"github.com/dshills/mcpizza/internal/config"
	"github.com/dshills/mcpizza/internal/gateway"
	"github.com/dshills/mcpizza/internal/logger"
	"github.com/dshills/mcpizza/internal/placement"
	"github.com/dshills/mcpizza/internal/session"
	"github.com/dshills/mcpizza/internal/storefront"
)

const (
	// ServerName is the MCP server name
	ServerName = "mcpizza"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Options carries the collaborators a Server is built from
type Options struct {
	Gateway  gateway.Gateway
	Recorder *audit.Recorder // nil records nothing
	Logger   logger.Logger   // nil discards
	Profile  config.Profile  // defaults for create_order
}

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp         *server.MCPServer
	registry    *session.Registry
	coordinator *placement.Coordinator
	storefront  *storefront.Service
	recorder    *audit.Recorder
	profile     config.Profile
	log         logger.Logger
}

// toolHandler is a tool body run with the caller's session resolved and
// that session's lock held
type toolHandler func(ctx context.Context, sessionID string, args map[string]interface{}) (*mcp.CallToolResult, error)

// NewServer creates a new MCP server instance
func NewServer(opts Options) (*Server, error) {
	if opts.Gateway == nil {
		return nil, errors.New("gateway is required")
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewNoop()
	}
	rec := opts.Recorder
	if rec == nil {
		rec = audit.NewRecorder(nil, log)
	}

	s := &Server{
		mcp:         server.NewMCPServer(ServerName, ServerVersion, server.WithToolCapabilities(false)),
		registry:    session.NewRegistry(),
		coordinator: placement.New(opts.Gateway, rec, log),
		storefront:  storefront.New(opts.Gateway, log),
		recorder:    rec,
		profile:     opts.Profile,
		log:         log.With(logger.String("component", "mcp")),
	}

	s.registerTools()
	return s, nil
}

// Serve runs the MCP protocol on stdio until ctx is cancelled or stdin closes
func (s *Server) Serve(ctx context.Context) error {
	s.log.Info("serving MCP on stdio", logger.Int("tools", len(s.tools())))
	stdio := server.NewStdioServer(s.mcp)
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}

type toolEntry struct {
	tool    mcp.Tool
	handler toolHandler
}

func (s *Server) tools() []toolEntry {
	return []toolEntry{
		{findStoresTool(), s.handleFindStores},
		{getStoreInfoTool(), s.handleGetStoreInfo},
		{getMenuTool(), s.handleGetMenu},
		{searchMenuTool(), s.handleSearchMenu},
		{getCouponsTool(), s.handleGetCoupons},
		{getOrderingGuidanceTool(), s.handleGetOrderingGuidance},
		{createOrderTool(), s.handleCreateOrder},
		{addCouponTool(), s.handleAddCoupon},
		{addItemToOrderTool(), s.handleAddItemToOrder},
		{addPizzaWithToppingsTool(), s.handleAddPizzaWithToppings},
		{viewOrderTool(), s.handleViewOrder},
		{clearOrderTool(), s.handleClearOrder},
		{priceOrderTool(), s.handlePriceOrder},
		{reopenOrderTool(), s.handleReopenOrder},
		{placeOrderTool(), s.handlePlaceOrder},
	}
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	for _, t := range s.tools() {
		s.mcp.AddTool(t.tool, s.wrap(t.tool.Name, t.handler))
	}
}

// wrap resolves the session, serializes calls per session and writes the
// tool_call / tool_response pair to the interaction log
func (s *Server) wrap(name string, h toolHandler) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, ok := request.Params.Arguments.(map[string]interface{})
		if !ok {
			if request.Params.Arguments != nil {
				return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
			}
			args = map[string]interface{}{}
		}

		sessionID := sessionFromContext(ctx)
		ctx = audit.WithSession(ctx, sessionID)
		s.recorder.ToolCall(ctx, sessionID, name, args)

		start := time.Now()
		unlock := s.registry.Lock(sessionID)
		result, err := h(ctx, sessionID, args)
		unlock()

		log := s.log.With(
			logger.String("tool", name),
			logger.String("session_id", sessionID),
			logger.Any("duration_ms", time.Since(start).Milliseconds()),
		)
		if err != nil {
			err = toMCPError(err)
			log.Warn("tool call failed", logger.Err(err))
			s.recorder.ToolResponse(ctx, sessionID, name, false, "", err)
			return nil, err
		}
		log.Debug("tool call complete", logger.Bool("is_error", result.IsError))
		s.recorder.ToolResponse(ctx, sessionID, name, !result.IsError, resultText(result), nil)
		return result, nil
	}
}

// sessionFromContext returns the MCP client session id, or the default
// session for transports that carry none
func sessionFromContext(ctx context.Context) string {
	if cs := server.ClientSessionFromContext(ctx); cs != nil {
		if id := cs.SessionID(); id != "" {
			return id
		}
	}
	return session.DefaultSessionID
}

func resultText(result *mcp.CallToolResult) string {
	for _, c := range result.Content {
		switch tc := c.(type) {
		case mcp.TextContent:
			return tc.Text
		case *mcp.TextContent:
			return tc.Text
		}
	}
	return ""
}
