package dbtools

import (
	"context"
	"fmt"

	"github.com/aqaranewbiz/mysql-aqara/internal/logger"
	"github.com/aqaranewbiz/mysql-aqara/pkg/tools"
)

func (s *ToolSet) queryTool() *tools.Tool {
	return &tools.Tool{
		Name:        "query",
		Description: "Execute SELECT queries",
		InputSchema: tools.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"sql": map[string]interface{}{
					"type":        "string",
					"description": "SQL query to execute",
				},
				"params": map[string]interface{}{
					"type":        "array",
					"description": "Parameters for the query (bound positionally, for prepared statements)",
					"items": map[string]interface{}{
						"type": "string",
					},
				},
				"timeout": map[string]interface{}{
					"type":        "integer",
					"description": "Query timeout in milliseconds (default: 5000)",
				},
			},
			Required: []string{"sql"},
		},
		Handler: s.handleQuery,
	}
}

// handleQuery executes a read statement. Parameters are always bound as
// placeholder values, never interpolated into the SQL text.
func (s *ToolSet) handleQuery(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	database, err := s.manager.Current()
	if err != nil {
		return nil, err
	}

	query, ok := getStringParam(params, "sql")
	if !ok || query == "" {
		return nil, fmt.Errorf("sql parameter is required")
	}

	var queryParams []interface{}
	if paramsArray, ok := getArrayParam(params, "params"); ok {
		queryParams = paramsArray
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout(params))
	defer cancel()

	rows, err := database.Query(timeoutCtx, query, queryParams...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			logger.Warn("Error closing rows: %v", closeErr)
		}
	}()

	results, err := rowsToMaps(rows)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"status":   "success",
		"results":  results,
		"rowCount": len(results),
	}, nil
}
