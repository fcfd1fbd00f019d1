package dbtools

import (
	"context"
	"fmt"

	"github.com/aqaranewbiz/mysql-aqara/pkg/db"
	"github.com/aqaranewbiz/mysql-aqara/pkg/tools"
)

func (s *ToolSet) connectTool() *tools.Tool {
	return &tools.Tool{
		Name:        "connect_db",
		Description: "Establish connection to MySQL database",
		InputSchema: tools.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"host": map[string]interface{}{
					"type":        "string",
					"description": "Database host",
				},
				"user": map[string]interface{}{
					"type":        "string",
					"description": "Database user",
				},
				"password": map[string]interface{}{
					"type":        "string",
					"description": "Database password",
				},
				"database": map[string]interface{}{
					"type":        "string",
					"description": "Database name (optional)",
				},
				"port": map[string]interface{}{
					"type":        "integer",
					"description": "Database port (default: 3306)",
				},
			},
			Required: []string{"host", "user", "password"},
		},
		Handler: s.handleConnect,
	}
}

// handleConnect builds a connection config from the call arguments and
// delegates to the manager. A successful call replaces any prior pool.
func (s *ToolSet) handleConnect(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	config := db.Config{}
	config.Host, _ = getStringParam(params, "host")
	config.User, _ = getStringParam(params, "user")
	config.Password, _ = getStringParam(params, "password")
	config.Name, _ = getStringParam(params, "database")
	if port, ok := getIntParam(params, "port"); ok {
		config.Port = port
	}

	if _, err := s.manager.Connect(config); err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"status":  "success",
		"message": "Database connection established",
	}, nil
}

// ConnectFromConfig attempts a connection from pre-resolved credentials.
// Used by the dispatcher's auto-connect step.
func (s *ToolSet) ConnectFromConfig(host, user, password, database string, port int) error {
	_, err := s.manager.Connect(db.Config{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		Name:     database,
	})
	if err != nil {
		return fmt.Errorf("auto-connect failed: %w", err)
	}
	return nil
}
