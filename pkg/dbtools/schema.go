package dbtools

import (
	"context"
	"fmt"

	"github.com/aqaranewbiz/mysql-aqara/internal/logger"
	"github.com/aqaranewbiz/mysql-aqara/pkg/tools"
)

func (s *ToolSet) listTablesTool() *tools.Tool {
	return &tools.Tool{
		Name:        "list_tables",
		Description: "List all tables in the active database",
		InputSchema: tools.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
		Handler: s.handleListTables,
	}
}

// handleListTables lists table names in the active database, in the order
// the engine reports them.
func (s *ToolSet) handleListTables(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	database, err := s.manager.Current()
	if err != nil {
		return nil, err
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout(params))
	defer cancel()

	rows, err := database.Query(timeoutCtx, "SHOW TABLES")
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			logger.Warn("Error closing rows: %v", closeErr)
		}
	}()

	tables := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"status": "success",
		"tables": tables,
	}, nil
}

func (s *ToolSet) describeTableTool() *tools.Tool {
	return &tools.Tool{
		Name:        "describe_table",
		Description: "Get table structure",
		InputSchema: tools.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"table": map[string]interface{}{
					"type":        "string",
					"description": "Name of the table to describe",
				},
			},
			Required: []string{"table"},
		},
		Handler: s.handleDescribeTable,
	}
}

// handleDescribeTable retrieves column metadata for a table. DESCRIBE does
// not accept placeholders, so the table name is validated before it is
// interpolated.
func (s *ToolSet) handleDescribeTable(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	database, err := s.manager.Current()
	if err != nil {
		return nil, err
	}

	table, ok := getStringParam(params, "table")
	if !ok || table == "" {
		return nil, fmt.Errorf("table parameter is required")
	}
	if err := validateIdentifier(table); err != nil {
		return nil, err
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout(params))
	defer cancel()

	rows, err := database.Query(timeoutCtx, fmt.Sprintf("DESCRIBE `%s`", table))
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			logger.Warn("Error closing rows: %v", closeErr)
		}
	}()

	columns, err := rowsToMaps(rows)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"status":  "success",
		"columns": columns,
	}, nil
}
