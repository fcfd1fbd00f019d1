package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTool(name string) *Tool {
	return &Tool{
		Name:        name,
		Description: "test tool " + name,
		Handler: func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
			return name, nil
		},
	}
}

func TestRegistryRegisterAndGet(t *testing.T) {
	registry := NewRegistry()
	registry.RegisterTool(newTool("query"))

	tool, ok := registry.GetTool("query")
	assert.True(t, ok)
	assert.Equal(t, "query", tool.Name)

	_, ok = registry.GetTool("missing")
	assert.False(t, ok)
}

func TestRegistryRegisterOverwrites(t *testing.T) {
	registry := NewRegistry()
	registry.RegisterTool(newTool("query"))
	registry.RegisterTool(&Tool{Name: "query", Description: "replacement"})

	tool, ok := registry.GetTool("query")
	assert.True(t, ok)
	assert.Equal(t, "replacement", tool.Description)
}

func TestRegistryGetAllToolsSorted(t *testing.T) {
	registry := NewRegistry()
	registry.RegisterTool(newTool("query"))
	registry.RegisterTool(newTool("connect_db"))
	registry.RegisterTool(newTool("execute"))

	all := registry.GetAllTools()
	assert.Len(t, all, 3)

	names := make([]string, 0, len(all))
	for _, tool := range all {
		names = append(names, tool.Name)
	}
	assert.Equal(t, []string{"connect_db", "execute", "query"}, names)
}
