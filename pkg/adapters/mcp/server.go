package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/datamodel"
	"github.com/aretw0/datamodel/pkg/codec"
	"github.com/aretw0/datamodel/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	schemasURI     = "datamodel://schemas"
	recordTemplate = "datamodel://records/{model}/{name}"
	recordPrefix   = "datamodel://records/"
)

// Workspace is the part of datamodel.Workspace exposed to agents.
type Workspace interface {
	Schemas() []*domain.Schema
	Records() []*domain.Record
	Record(ref domain.Ref) (*domain.Record, error)
	Set(ctx context.Context, ref domain.Ref, field string, input any) (bool, error)
	Propagate(ctx context.Context, ref domain.Ref) (bool, error)
	Save(ctx context.Context, ref domain.Ref) error
}

var _ Workspace = (*datamodel.Workspace)(nil)

// RecordArgs address one record.
type RecordArgs struct {
	Model string `json:"model"`
	Name  string `json:"name"`
}

func (a RecordArgs) ref() domain.Ref { return domain.Ref{Name: a.Name, Model: a.Model} }

// SetFieldArgs are the arguments of set_field.
type SetFieldArgs struct {
	RecordArgs
	Field string `json:"field"`
	Value string `json:"value"`
	Save  bool   `json:"save"`
}

// ListArgs are the arguments of list_records.
type ListArgs struct {
	Model string `json:"model"`
}

// RecordResponse carries a record and the outcome of the call that produced it.
type RecordResponse struct {
	Record   codec.RecordDocument `json:"record" jsonschema_description:"The record after the call"`
	Accepted *bool                `json:"accepted,omitempty" jsonschema_description:"Whether set_field accepted the value"`
	Changed  *bool                `json:"changed,omitempty" jsonschema_description:"Whether propagate changed derived fields"`
}

// ListResponse lists record identifiers.
type ListResponse struct {
	Records []string `json:"records" jsonschema_description:"Record codes in name:model form"`
}

// Server exposes a workspace as an MCP server.
type Server struct {
	ws        Workspace
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// NewServer creates a new MCP server for ws.
func NewServer(ws Workspace, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		ws:        ws,
		logger:    logger,
		mcpServer: server.NewMCPServer("datamodel-mcp", strings.TrimSpace(datamodel.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer { return s.mcpServer }

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves MCP over SSE on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr string) error {
	baseURL := "http://localhost" + addr
	if !strings.HasPrefix(addr, ":") {
		baseURL = "http://" + addr
	}
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())
	httpServer := &http.Server{Addr: addr, Handler: mux}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
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
	s.mcpServer.AddTool(mcp.NewTool("list_records",
		mcp.WithDescription("List the records of the workspace, optionally for one model."),
		mcp.WithString("model", mcp.Description("Schema name to filter by")),
		mcp.WithOutputSchema[ListResponse](),
	), mcp.NewStructuredToolHandler(s.handleList))

	s.mcpServer.AddTool(mcp.NewTool("get_record",
		mcp.WithDescription("Get a record with all its field values."),
		mcp.WithString("model", mcp.Required(), mcp.Description("Schema name")),
		mcp.WithString("name", mcp.Required(), mcp.Description("Record name")),
		mcp.WithOutputSchema[RecordResponse](),
	), mcp.NewStructuredToolHandler(s.handleGet))

	s.mcpServer.AddTool(mcp.NewTool("set_field",
		mcp.WithDescription("Offer a value to a field. The field kind decides whether it is accepted; a rejected value leaves the record unchanged."),
		mcp.WithString("model", mcp.Required(), mcp.Description("Schema name")),
		mcp.WithString("name", mcp.Required(), mcp.Description("Record name")),
		mcp.WithString("field", mcp.Required(), mcp.Description("Field name")),
		mcp.WithString("value", mcp.Required(), mcp.Description("JSON value, or plain text")),
		mcp.WithBoolean("save", mcp.Description("Save the record when the value is accepted")),
		mcp.WithOutputSchema[RecordResponse](),
	), mcp.NewStructuredToolHandler(s.handleSet))

	s.mcpServer.AddTool(mcp.NewTool("propagate",
		mcp.WithDescription("Recompute the derived fields of a record, such as palettes from images."),
		mcp.WithString("model", mcp.Required(), mcp.Description("Schema name")),
		mcp.WithString("name", mcp.Required(), mcp.Description("Record name")),
		mcp.WithOutputSchema[RecordResponse](),
	), mcp.NewStructuredToolHandler(s.handlePropagate))
}

func (s *Server) handleList(_ context.Context, _ mcp.CallToolRequest, args ListArgs) (ListResponse, error) {
	resp := ListResponse{Records: []string{}}
	for _, rc := range s.ws.Records() {
		if args.Model == "" || rc.Model() == args.Model {
			resp.Records = append(resp.Records, rc.Ref().Code())
		}
	}
	return resp, nil
}

func (s *Server) handleGet(_ context.Context, _ mcp.CallToolRequest, args RecordArgs) (RecordResponse, error) {
	rc, err := s.ws.Record(args.ref())
	if err != nil {
		return RecordResponse{}, err
	}
	return RecordResponse{Record: codec.EncodeRecord(rc)}, nil
}

func (s *Server) handleSet(ctx context.Context, _ mcp.CallToolRequest, args SetFieldArgs) (RecordResponse, error) {
	ref := args.ref()
	accepted, err := s.ws.Set(ctx, ref, args.Field, parseValue(args.Value))
	if err != nil {
		return RecordResponse{}, fmt.Errorf("set field: %w", err)
	}
	if accepted && args.Save {
		if err := s.ws.Save(ctx, ref); err != nil {
			return RecordResponse{}, fmt.Errorf("save record: %w", err)
		}
	}
	if !accepted {
		s.logger.Info("MCP set_field: value rejected", "record", ref.Code(), "field", args.Field)
	}
	resp, err := s.handleGet(ctx, mcp.CallToolRequest{}, args.RecordArgs)
	resp.Accepted = &accepted
	return resp, err
}

func (s *Server) handlePropagate(ctx context.Context, _ mcp.CallToolRequest, args RecordArgs) (RecordResponse, error) {
	changed, err := s.ws.Propagate(ctx, args.ref())
	if err != nil {
		return RecordResponse{}, fmt.Errorf("propagate: %w", err)
	}
	resp, err := s.handleGet(ctx, mcp.CallToolRequest{}, args)
	resp.Changed = &changed
	return resp, err
}

// parseValue reads JSON when it can, keeping numbers literal, and plain text otherwise.
func parseValue(text string) any {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil || dec.More() {
		return text
	}
	return v
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(schemasURI, "Workspace schemas",
		mcp.WithMIMEType("application/json"),
	), s.readSchemas)

	s.mcpServer.AddResourceTemplate(mcp.NewResourceTemplate(recordTemplate, "Record",
		mcp.WithTemplateMIMEType("application/json"),
	), s.readRecord)
}

func (s *Server) readSchemas(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	schemas := s.ws.Schemas()
	docs := make([]codec.SchemaDocument, 0, len(schemas))
	for _, sc := range schemas {
		docs = append(docs, codec.EncodeSchema(sc))
	}
	return jsonContents(schemasURI, docs)
}

func (s *Server) readRecord(_ context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := request.Params.URI
	model, name, ok := strings.Cut(strings.TrimPrefix(uri, recordPrefix), "/")
	if !ok || !strings.HasPrefix(uri, recordPrefix) {
		return nil, fmt.Errorf("invalid record uri %q", uri)
	}
	rc, err := s.ws.Record(domain.Ref{Name: name, Model: model})
	if err != nil {
		return nil, err
	}
	return jsonContents(uri, codec.EncodeRecord(rc))
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("encode %s", uri), err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{URI: uri, MIMEType: "application/json", Text: string(data)},
	}, nil
}
