// Package dispatcher routes decoded requests to the registered tools and
// wraps every outcome in a response envelope. No tool failure escapes past
// it; only the transport decides what is fatal.
package dispatcher

import (
	"context"
	"fmt"

	"github.com/aqaranewbiz/mysql-aqara/internal/config"
	"github.com/aqaranewbiz/mysql-aqara/internal/logger"
	"github.com/aqaranewbiz/mysql-aqara/pkg/dbtools"
	"github.com/aqaranewbiz/mysql-aqara/pkg/protocol"
	"github.com/aqaranewbiz/mysql-aqara/pkg/tools"
)

// Dispatcher resolves a request to a tool, ensures a connection exists for
// database operations, invokes the handler, and envelopes the result.
type Dispatcher struct {
	name     string
	version  string
	registry *tools.Registry
	toolSet  *dbtools.ToolSet
	fallback config.DatabaseConfig
}

// New creates a dispatcher. fallback supplies the environment-sourced
// credentials used for silent auto-connect.
func New(name, version string, registry *tools.Registry, toolSet *dbtools.ToolSet, fallback config.DatabaseConfig) *Dispatcher {
	return &Dispatcher{
		name:     name,
		version:  version,
		registry: registry,
		toolSet:  toolSet,
		fallback: fallback,
	}
}

// Handle processes one request and always returns exactly one response.
func (d *Dispatcher) Handle(ctx context.Context, req *protocol.Request) *protocol.Response {
	switch req.Type {
	case protocol.TypeGetServerInfo:
		return protocol.NewResponse(req.ID, d.serverInfo())
	case protocol.TypeExecuteTool:
		return d.executeTool(ctx, req)
	default:
		return protocol.NewError(req.ID, fmt.Sprintf("Unknown request type: %s", req.Type))
	}
}

// executeTool runs the dispatch state machine: ensure-connected, route,
// invoke, envelope.
func (d *Dispatcher) executeTool(ctx context.Context, req *protocol.Request) (resp *protocol.Response) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Panic while executing tool %s: %v", req.Tool, r)
			resp = protocol.NewError(req.ID, fmt.Sprintf("internal error: %v", r))
		}
	}()

	params, err := req.ParamsMap()
	if err != nil {
		return protocol.NewError(req.ID, err.Error())
	}

	tool, ok := d.registry.GetTool(req.Tool)
	if !ok {
		return protocol.NewError(req.ID, fmt.Sprintf("Unknown tool: %s", req.Tool))
	}

	if req.Tool != "connect_db" {
		d.ensureConnected()
	}

	result, err := tool.Handler(ctx, params)
	if err != nil {
		logger.Debug("Tool %s failed: %v", req.Tool, err)
		return protocol.NewError(req.ID, err.Error())
	}

	return protocol.NewResponse(req.ID, result)
}

// ensureConnected attempts a single silent auto-connect from the fallback
// credentials when no pool exists. Failures are logged and swallowed; the
// operation itself then reports the distinct not-connected error.
func (d *Dispatcher) ensureConnected() {
	if d.toolSet.Manager().Connected() {
		return
	}
	if !d.fallback.Complete() {
		logger.Debug("No connection and no complete fallback credentials; skipping auto-connect")
		return
	}

	logger.Info("No active connection; attempting auto-connect to %s", d.fallback.Host)
	err := d.toolSet.ConnectFromConfig(
		d.fallback.Host,
		d.fallback.User,
		d.fallback.Password,
		d.fallback.Database,
		d.fallback.Port,
	)
	if err != nil {
		logger.Warn("%v", err)
	}
}

// serverInfo builds the tool catalog reported to clients.
func (d *Dispatcher) serverInfo() map[string]interface{} {
	catalog := make(map[string]interface{})
	for _, tool := range d.registry.GetAllTools() {
		catalog[tool.Name] = map[string]interface{}{
			"description": tool.Description,
			"parameters":  tool.InputSchema,
		}
	}

	return map[string]interface{}{
		"name":    d.name,
		"version": d.version,
		"tools":   catalog,
	}
}
