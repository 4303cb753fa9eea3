// Package mcp implements the Model Context Protocol server for
// surface. It exposes the session index to AI clients as tools:
// keyword search, continuation chains, and per-session context.
package mcp

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/SurfaceLayerAI/surface-plugin/internal/discovery"
	"github.com/SurfaceLayerAI/surface-plugin/internal/metadata"
	"github.com/SurfaceLayerAI/surface-plugin/internal/search"
	"github.com/SurfaceLayerAI/surface-plugin/internal/store"
	"github.com/SurfaceLayerAI/surface-plugin/pkg/version"
)

// contextCacheSize bounds the per-session metadata cache. Extraction
// re-reads the whole transcript, so repeated session_context calls
// for the same id should not pay that twice.
const contextCacheSize = 128

// Server is the MCP server bridging AI clients with the session index.
type Server struct {
	mcp        *mcp.Server
	ledger     *store.Ledger
	projectDir string
	contexts   *lru.Cache[string, *metadata.SessionMetadata]
	logger     *slog.Logger
}

// NewServer creates an MCP server over the given ledger. projectDir
// locates transcripts for context extraction.
func NewServer(ledger *store.Ledger, projectDir string) (*Server, error) {
	if ledger == nil {
		return nil, errors.New("session ledger is required")
	}
	if projectDir == "" {
		return nil, errors.New("project directory is required")
	}

	contexts, _ := lru.New[string, *metadata.SessionMetadata](contextCacheSize)
	s := &Server{
		ledger:     ledger,
		projectDir: projectDir,
		contexts:   contexts,
		logger:     slog.Default(),
	}

	s.mcp = mcp.NewServer(
		&mcp.Implementation{
			Name:    "surface",
			Version: version.Version,
		},
		nil, // ServerOptions - capabilities are inferred from registered tools
	)
	s.registerTools()

	return s, nil
}

// registerTools registers the session tools on the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "search_sessions",
		Description: "Search previously indexed coding sessions by keyword. Matches session summaries, plan file paths, and session id prefixes. Use this to find how past sessions approached a topic before redoing the work.",
	}, s.mcpSearchSessionsHandler)
	s.logger.Debug("Registered tool", slog.String("name", "search_sessions"))

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "linked_sessions",
		Description: "List every session connected to the given one through plan continuation. Use this to follow work that was planned in one session and implemented across later ones.",
	}, s.mcpLinkedSessionsHandler)
	s.logger.Debug("Registered tool", slog.String("name", "linked_sessions"))

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "session_context",
		Description: "Load the indexed summary plus extracted context (initial request, user message history, plan files) for one session id. Repeated lookups are served from cache.",
	}, s.mcpSessionContextHandler)
	s.logger.Debug("Registered tool", slog.String("name", "session_context"))

	s.logger.Info("MCP tools registered", slog.Int("count", 3))
}

// mcpSearchSessionsHandler is the MCP SDK handler for search_sessions.
func (s *Server) mcpSearchSessionsHandler(ctx context.Context, _ *mcp.CallToolRequest, input SearchSessionsInput) (
	*mcp.CallToolResult,
	SearchSessionsOutput,
	error,
) {
	if strings.TrimSpace(input.Query) == "" {
		return nil, SearchSessionsOutput{}, NewInvalidParamsError("query parameter is required")
	}

	start := time.Now()
	requestID := generateRequestID()
	s.logger.Info("search_sessions started",
		slog.String("request_id", requestID),
		slog.String("query", input.Query),
		slog.Int("limit", input.Limit))

	entries, err := s.ledger.Sessions()
	if err != nil {
		return nil, SearchSessionsOutput{}, MapError(err)
	}

	results, err := search.Search(ctx, entries, input.Query, search.Options{
		Limit:     input.Limit,
		PlansOnly: input.PlansOnly,
	})
	if err != nil {
		s.logger.Error("search_sessions failed",
			slog.String("request_id", requestID),
			slog.String("error", err.Error()))
		return nil, SearchSessionsOutput{}, MapError(err)
	}

	s.logger.Info("search_sessions completed",
		slog.String("request_id", requestID),
		slog.Duration("duration", time.Since(start)),
		slog.Int("result_count", len(results)))

	output := SearchSessionsOutput{Results: make([]SessionResult, 0, len(results))}
	for _, r := range results {
		output.Results = append(output.Results, toSessionResult(r.Entry, r.Score))
	}
	return nil, output, nil
}

// mcpLinkedSessionsHandler is the MCP SDK handler for linked_sessions.
func (s *Server) mcpLinkedSessionsHandler(_ context.Context, _ *mcp.CallToolRequest, input LinkedSessionsInput) (
	*mcp.CallToolResult,
	LinkedSessionsOutput,
	error,
) {
	if input.SessionID == "" {
		return nil, LinkedSessionsOutput{}, NewInvalidParamsError("session_id parameter is required")
	}

	_, found, err := s.ledger.Get(input.SessionID)
	if err != nil {
		return nil, LinkedSessionsOutput{}, MapError(err)
	}
	if !found {
		return nil, LinkedSessionsOutput{}, NewSessionNotFoundError(input.SessionID)
	}

	ids, err := s.ledger.LinkedSessions(input.SessionID)
	if err != nil {
		return nil, LinkedSessionsOutput{}, MapError(err)
	}

	output := LinkedSessionsOutput{
		SessionIDs: ids,
		Sessions:   make([]SessionResult, 0, len(ids)),
	}
	for _, id := range ids {
		entry, found, err := s.ledger.Get(id)
		if err != nil {
			return nil, LinkedSessionsOutput{}, MapError(err)
		}
		if found {
			output.Sessions = append(output.Sessions, toSessionResult(entry, 0))
		}
	}
	return nil, output, nil
}

// mcpSessionContextHandler is the MCP SDK handler for session_context.
func (s *Server) mcpSessionContextHandler(_ context.Context, _ *mcp.CallToolRequest, input SessionContextInput) (
	*mcp.CallToolResult,
	SessionContextOutput,
	error,
) {
	if input.SessionID == "" {
		return nil, SessionContextOutput{}, NewInvalidParamsError("session_id parameter is required")
	}

	entry, found, err := s.ledger.Get(input.SessionID)
	if err != nil {
		return nil, SessionContextOutput{}, MapError(err)
	}
	meta := s.sessionMetadata(input.SessionID)
	if !found && meta == nil {
		return nil, SessionContextOutput{}, NewSessionNotFoundError(input.SessionID)
	}

	output := SessionContextOutput{SessionID: input.SessionID}
	if found {
		output.Summary = entry.Summary
		output.ContinuesSession = entry.ContinuesSession
		output.PlanMode = entry.PlanMode
		output.PlanPaths = entry.PlanPaths
		output.MadeEdits = entry.MadeEdits
	}
	if meta != nil {
		// The transcript is fresher than the index for everything it
		// carries; the summary and linkage exist only in the index.
		output.InitialRequest = meta.InitialRequest
		output.UserMessages = meta.UserMessages
		output.PlanMode = meta.PlanMode
		output.PlanPaths = meta.PlanPaths
		output.ReferencedPlanPaths = meta.ReferencedPlanPaths
		output.MadeEdits = meta.MadeEdits
		output.Slug = meta.Slug
		output.TimestampStart = meta.TimestampStart
		output.TimestampEnd = meta.TimestampEnd
	}
	return nil, output, nil
}

// sessionMetadata returns extracted transcript context for a session,
// from cache when possible. A missing or unreadable transcript yields
// nil; index-only sessions still get summary-level context.
func (s *Server) sessionMetadata(sessionID string) *metadata.SessionMetadata {
	if m, ok := s.contexts.Get(sessionID); ok {
		return m
	}

	path, err := discovery.TranscriptPath(sessionID, s.projectDir)
	if err != nil {
		return nil
	}
	m, err := metadata.Extract(path, sessionID)
	if err != nil {
		s.logger.Debug("transcript context unavailable",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()))
		return nil
	}

	s.contexts.Add(sessionID, m)
	return m
}

// toSessionResult converts a ledger entry to tool output.
func toSessionResult(e store.IndexEntry, score float64) SessionResult {
	return SessionResult{
		SessionID:        e.SessionID,
		Timestamp:        e.Timestamp,
		Summary:          e.Summary,
		PlanMode:         e.PlanMode,
		PlanPaths:        e.PlanPaths,
		MadeEdits:        e.MadeEdits,
		ContinuesSession: e.ContinuesSession,
		Score:            score,
	}
}

// Serve starts the server with the specified transport.
func (s *Server) Serve(ctx context.Context, transport string) error {
	s.logger.Info("Starting MCP server", slog.String("transport", transport))

	switch transport {
	case "stdio":
		err := s.mcp.Run(ctx, &mcp.StdioTransport{})
		if err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error("MCP server stopped with error",
				slog.String("error", err.Error()))
			return err
		}
		s.logger.Info("MCP server stopped gracefully")
		return nil
	default:
		return fmt.Errorf("unknown transport: %s (supported: stdio)", transport)
	}
}

// generateRequestID creates a short unique request ID for log correlation.
func generateRequestID() string {
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
