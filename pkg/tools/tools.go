// Package tools provides the tool descriptor and registry the dispatcher
// routes requests through.
package tools

import (
	"context"
	"sort"
	"sync"
)

// ToolInputSchema describes the expected arguments of a tool.
type ToolInputSchema struct {
	Type       string                 `json:"type"`
	Properties map[string]interface{} `json:"properties"`
	Required   []string               `json:"required,omitempty"`
}

// Tool represents a named operation that can be executed by the server.
type Tool struct {
	Name        string
	Description string
	InputSchema ToolInputSchema
	Handler     func(ctx context.Context, params map[string]interface{}) (interface{}, error)
}

// Registry manages the available tools.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]*Tool
}

// NewRegistry creates a new tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]*Tool),
	}
}

// RegisterTool registers a tool with the registry.
func (r *Registry) RegisterTool(tool *Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[tool.Name] = tool
}

// GetTool gets a tool by name.
func (r *Registry) GetTool(name string) (*Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[name]
	return tool, ok
}

// GetAllTools returns all registered tools sorted by name.
func (r *Registry) GetAllTools() []*Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]*Tool, 0, len(r.tools))
	for _, tool := range r.tools {
		tools = append(tools, tool)
	}
	sort.Slice(tools, func(i, j int) bool {
		return tools[i].Name < tools[j].Name
	})
	return tools
}
