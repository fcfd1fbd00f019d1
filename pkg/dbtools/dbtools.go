// Package dbtools implements the database operations exposed as tools:
// connect_db, query, execute, list_tables, describe_table, create_table,
// and alter_table. Each handler resolves the current connection pool from
// the manager, translates its arguments into SQL, and returns a plain
// payload map; all failures surface the engine error text verbatim.
package dbtools

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/aqaranewbiz/mysql-aqara/pkg/db"
	"github.com/aqaranewbiz/mysql-aqara/pkg/tools"
)

// ConnectionManager is the slice of the connection manager the tool
// handlers need: pool replacement and non-blocking access to the current
// pool.
type ConnectionManager interface {
	Connect(config db.Config) (db.Database, error)
	Current() (db.Database, error)
	Connected() bool
}

// ToolSet binds the tool handlers to a connection manager. The manager is
// the only shared state; handlers never reach for ambient globals.
type ToolSet struct {
	manager        ConnectionManager
	defaultTimeout time.Duration
}

// New creates a tool set backed by the given connection manager.
// defaultTimeout bounds each statement unless a call overrides it.
func New(manager ConnectionManager, defaultTimeout time.Duration) *ToolSet {
	if defaultTimeout <= 0 {
		defaultTimeout = 5 * time.Second
	}
	return &ToolSet{
		manager:        manager,
		defaultTimeout: defaultTimeout,
	}
}

// Manager returns the connection manager backing this tool set.
func (s *ToolSet) Manager() ConnectionManager {
	return s.manager
}

// RegisterAll registers every database tool with the provided registry.
func (s *ToolSet) RegisterAll(registry *tools.Registry) {
	registry.RegisterTool(s.connectTool())
	registry.RegisterTool(s.queryTool())
	registry.RegisterTool(s.executeTool())
	registry.RegisterTool(s.listTablesTool())
	registry.RegisterTool(s.describeTableTool())
	registry.RegisterTool(s.createTableTool())
	registry.RegisterTool(s.alterTableTool())
}

// timeout returns the statement deadline for a call, honoring a per-call
// "timeout" argument in milliseconds.
func (s *ToolSet) timeout(params map[string]interface{}) time.Duration {
	if ms, ok := getIntParam(params, "timeout"); ok && ms > 0 {
		return time.Duration(ms) * time.Millisecond
	}
	return s.defaultTimeout
}

// rowsToMaps converts result rows into ordered row mappings suitable for
// JSON encoding. NULLs map to nil, byte slices to strings, timestamps to
// RFC3339.
func rowsToMaps(rows *sql.Rows) ([]map[string]interface{}, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	values := make([]interface{}, len(columns))
	scanArgs := make([]interface{}, len(columns))
	for i := range values {
		scanArgs[i] = &values[i]
	}

	results := make([]map[string]interface{}, 0)
	for rows.Next() {
		if err := rows.Scan(scanArgs...); err != nil {
			return nil, err
		}

		row := make(map[string]interface{})
		for i, col := range columns {
			val := values[i]
			if val == nil {
				row[col] = nil
				continue
			}
			switch v := val.(type) {
			case []byte:
				row[col] = string(v)
			case time.Time:
				row[col] = v.Format(time.RFC3339)
			default:
				row[col] = v
			}
		}

		results = append(results, row)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// getStringParam extracts a string parameter.
func getStringParam(params map[string]interface{}, key string) (string, bool) {
	value, ok := params[key].(string)
	return value, ok
}

// getIntParam extracts a numeric parameter and converts it to int.
func getIntParam(params map[string]interface{}, key string) (int, bool) {
	value, ok := params[key].(float64)
	if !ok {
		if num, ok := params[key].(json.Number); ok {
			if v, err := num.Int64(); err == nil {
				return int(v), true
			}
		}
		return 0, false
	}
	return int(value), true
}

// getBoolParam extracts a boolean parameter.
func getBoolParam(params map[string]interface{}, key string) bool {
	value, ok := params[key].(bool)
	return ok && value
}

// getArrayParam extracts an array parameter.
func getArrayParam(params map[string]interface{}, key string) ([]interface{}, bool) {
	value, ok := params[key].([]interface{})
	return value, ok
}
