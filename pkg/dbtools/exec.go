package dbtools

import (
	"context"
	"fmt"

	"github.com/aqaranewbiz/mysql-aqara/pkg/tools"
)

func (s *ToolSet) executeTool() *tools.Tool {
	return &tools.Tool{
		Name:        "execute",
		Description: "Execute INSERT, UPDATE, or DELETE queries",
		InputSchema: tools.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"sql": map[string]interface{}{
					"type":        "string",
					"description": "SQL statement to execute",
				},
				"params": map[string]interface{}{
					"type":        "array",
					"description": "Parameters for the statement (bound positionally, for prepared statements)",
					"items": map[string]interface{}{
						"type": "string",
					},
				},
				"timeout": map[string]interface{}{
					"type":        "integer",
					"description": "Execution timeout in milliseconds (default: 5000)",
				},
			},
			Required: []string{"sql"},
		},
		Handler: s.handleExecute,
	}
}

// handleExecute executes a write statement and reports the affected row
// count. Each call is a single round trip; no transaction coordination.
func (s *ToolSet) handleExecute(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	database, err := s.manager.Current()
	if err != nil {
		return nil, err
	}

	statement, ok := getStringParam(params, "sql")
	if !ok || statement == "" {
		return nil, fmt.Errorf("sql parameter is required")
	}

	var statementParams []interface{}
	if paramsArray, ok := getArrayParam(params, "params"); ok {
		statementParams = paramsArray
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout(params))
	defer cancel()

	result, err := database.Exec(timeoutCtx, statement, statementParams...)
	if err != nil {
		return nil, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		affected = -1
	}
	lastInsertID, err := result.LastInsertId()
	if err != nil {
		lastInsertID = -1
	}

	return map[string]interface{}{
		"status":         "success",
		"affected_rows":  affected,
		"last_insert_id": lastInsertID,
	}, nil
}
