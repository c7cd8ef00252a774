// Package mcp exposes stored sweeps to MCP clients.
// Every tool is read-only; running sweeps are controlled over HTTP.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/fieldsweep/internal/config"
	"github.com/aretw0/fieldsweep/internal/logging"
	"github.com/aretw0/fieldsweep/pkg/checkpoint"
	"github.com/aretw0/fieldsweep/pkg/domain"
	"github.com/aretw0/fieldsweep/pkg/sweep"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// CheckpointsURI is the resource listing every stored checkpoint.
const CheckpointsURI = "fieldsweep://checkpoints"

// PreviewLimit caps the points returned by preview_sweep.
const PreviewLimit = 10

// CheckpointSummary is one entry of list_checkpoints.
type CheckpointSummary struct {
	ID            string    `json:"id" jsonschema_description:"Sweep ID the checkpoint is stored under"`
	LastCompleted int       `json:"last_completed_index" jsonschema_description:"Index of the last completed point, -1 for none"`
	Total         int       `json:"total" jsonschema_description:"Number of points in the sweep"`
	UpdatedAt     time.Time `json:"updated_at"`
	Autostart     bool      `json:"autostart" jsonschema_description:"Whether the sweep resumes without confirmation"`
}

// ListResponse is the result of list_checkpoints.
type ListResponse struct {
	Checkpoints []CheckpointSummary `json:"checkpoints"`
}

// InspectResponse is the result of inspect_checkpoint.
type InspectResponse struct {
	Summary    CheckpointSummary  `json:"summary"`
	Checkpoint *domain.Checkpoint `json:"checkpoint"`
	Next       *domain.SweepPoint `json:"next,omitempty" jsonschema_description:"The point a resume starts at"`
}

// PreviewResponse is the result of preview_sweep.
type PreviewResponse struct {
	Count     int                 `json:"count"`
	Points    []domain.SweepPoint `json:"points"`
	Remaining int                 `json:"remaining"`
}

// Server exposes a checkpoint manager as an MCP server.
type Server struct {
	checkpoints *checkpoint.Manager
	mcpServer   *server.MCPServer
	logger      *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures a logger for the Server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(mgr *checkpoint.Manager, version string, opts ...Option) *Server {
	s := &Server{
		checkpoints: mgr,
		mcpServer:   server.NewMCPServer("fieldsweep-mcp", version),
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves over SSE on port until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(fmt.Sprintf("http://localhost:%d", port)))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())
	httpServer := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("mcp server listening (sse)", "addr", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_checkpoints",
		mcp.WithDescription("List stored sweep checkpoints with their progress."),
		mcp.WithOutputSchema[ListResponse](),
	), mcp.NewStructuredToolHandler(s.handleList))

	s.mcpServer.AddTool(mcp.NewTool("inspect_checkpoint",
		mcp.WithDescription("Show a stored checkpoint and the point a resume would start at."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Sweep ID")),
		mcp.WithOutputSchema[InspectResponse](),
	), mcp.NewStructuredToolHandler(s.handleInspect))

	s.mcpServer.AddTool(mcp.NewTool("preview_sweep",
		mcp.WithDescription("Expand axis ranges into sweep points without running anything."),
		mcp.WithString("x", mcp.Description("X axis as start:end:step, or a single value")),
		mcp.WithString("y", mcp.Description("Y axis as start:end:step, or a single value")),
		mcp.WithString("z", mcp.Description("Z axis as start:end:step, or a single value")),
		mcp.WithString("points", mcp.Description("JSON array of explicit [x, y, z] vectors")),
		mcp.WithOutputSchema[PreviewResponse](),
	), mcp.NewStructuredToolHandler(s.handlePreview))
}

func (s *Server) summary(ctx context.Context, id string) (CheckpointSummary, *domain.Checkpoint, error) {
	cp, err := s.checkpoints.Load(ctx, id)
	if err != nil {
		return CheckpointSummary{}, nil, err
	}
	auto, err := s.checkpoints.Autostart(ctx, id)
	if err != nil {
		return CheckpointSummary{}, nil, err
	}
	return CheckpointSummary{
		ID:            id,
		LastCompleted: cp.LastCompleted,
		Total:         len(cp.Fields),
		UpdatedAt:     cp.UpdatedAt,
		Autostart:     auto,
	}, cp, nil
}

func (s *Server) handleList(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ListResponse, error) {
	ids, err := s.checkpoints.List(ctx)
	if err != nil {
		return ListResponse{}, fmt.Errorf("list failed: %w", err)
	}
	resp := ListResponse{Checkpoints: []CheckpointSummary{}}
	for _, id := range ids {
		sum, _, err := s.summary(ctx, id)
		if err != nil {
			s.logger.Warn("skipping unreadable checkpoint", "sweep_id", id, "err", err)
			continue
		}
		resp.Checkpoints = append(resp.Checkpoints, sum)
	}
	return resp, nil
}

func (s *Server) handleInspect(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (InspectResponse, error) {
	id, _ := args["id"].(string)
	if id == "" {
		return InspectResponse{}, fmt.Errorf("id is required")
	}
	sum, cp, err := s.summary(ctx, id)
	if err != nil {
		return InspectResponse{}, fmt.Errorf("inspect %s: %w", id, err)
	}
	resp := InspectResponse{Summary: sum, Checkpoint: cp}
	if next := cp.NextIndex(); next < len(cp.Fields) {
		p := sweep.Points(cp.Fields)[next]
		resp.Next = &p
	}
	return resp, nil
}

func (s *Server) handlePreview(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (PreviewResponse, error) {
	var def config.Sweep
	for _, axis := range []string{"x", "y", "z"} {
		if v, ok := args[axis].(string); ok && v != "" {
			if err := def.SetAxisFlag(axis, v); err != nil {
				return PreviewResponse{}, err
			}
		}
	}
	if raw, ok := args["points"].(string); ok && raw != "" {
		var pts [][3]float64
		if err := json.Unmarshal([]byte(raw), &pts); err != nil {
			return PreviewResponse{}, fmt.Errorf("points: %w", err)
		}
		for _, p := range pts {
			def.Points = append(def.Points, domain.FieldVector(p))
		}
	}

	points := sweep.Points(def.Fields())
	resp := PreviewResponse{Count: len(points), Points: points}
	if len(points) > PreviewLimit {
		resp.Points = points[:PreviewLimit]
		resp.Remaining = len(points) - PreviewLimit
	}
	return resp, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(CheckpointsURI, "Stored sweep checkpoints",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		list, err := s.handleList(ctx, mcp.CallToolRequest{}, nil)
		if err != nil {
			return nil, err
		}
		jsonBytes, _ := json.Marshal(list)
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      CheckpointsURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
