package dbtools

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/aqaranewbiz/mysql-aqara/pkg/tools"
)

// identifierPattern matches safe SQL identifiers. DDL statements cannot be
// parameterized, so every caller-supplied identifier must match before it
// is interpolated into statement text.
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

const maxIdentifierLength = 64 // MySQL limit

// columnTypePattern accepts type expressions such as VARCHAR(255),
// DECIMAL(10,2), INT UNSIGNED, or ENUM-free plain names.
var columnTypePattern = regexp.MustCompile(`^[A-Za-z]+(\([0-9]+(,[0-9]+)?\))?( [A-Za-z]+)*$`)

func validateIdentifier(name string) error {
	if len(name) == 0 || len(name) > maxIdentifierLength {
		return fmt.Errorf("invalid identifier: %q", name)
	}
	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("invalid identifier: %q", name)
	}
	return nil
}

func validateColumnType(typ string) error {
	if typ == "" || len(typ) > 128 || !columnTypePattern.MatchString(typ) {
		return fmt.Errorf("invalid column type: %q", typ)
	}
	return nil
}

// quoteDefault renders a DEFAULT clause value. Bare numerics and a few
// engine keywords pass through; everything else is single-quoted.
func quoteDefault(value string) string {
	upper := strings.ToUpper(value)
	if upper == "NULL" || upper == "CURRENT_TIMESTAMP" {
		return upper
	}
	if regexp.MustCompile(`^-?[0-9]+(\.[0-9]+)?$`).MatchString(value) {
		return value
	}
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

// columnDef builds one column definition clause from a column spec map.
func columnDef(spec map[string]interface{}) (string, error) {
	name, ok := getStringParam(spec, "name")
	if !ok {
		return "", fmt.Errorf("column name is required")
	}
	if err := validateIdentifier(name); err != nil {
		return "", err
	}

	typ, ok := getStringParam(spec, "type")
	if !ok {
		return "", fmt.Errorf("column type is required for column %s", name)
	}
	if err := validateColumnType(typ); err != nil {
		return "", err
	}

	def := fmt.Sprintf("`%s` %s", name, typ)
	if getBoolParam(spec, "not_null") {
		def += " NOT NULL"
	}
	if dflt, ok := getStringParam(spec, "default"); ok && dflt != "" {
		def += " DEFAULT " + quoteDefault(dflt)
	}
	if getBoolParam(spec, "auto_increment") {
		def += " AUTO_INCREMENT"
	}
	if getBoolParam(spec, "primary_key") {
		def += " PRIMARY KEY"
	}
	return def, nil
}

// uniqueKeyDef builds a UNIQUE KEY clause. The key's columns may arrive as
// an array of names or a comma-separated string.
func uniqueKeyDef(spec map[string]interface{}) (string, error) {
	name, ok := getStringParam(spec, "name")
	if !ok {
		return "", fmt.Errorf("unique key name is required")
	}
	if err := validateIdentifier(name); err != nil {
		return "", err
	}

	var names []string
	if arr, ok := getArrayParam(spec, "columns"); ok {
		for _, item := range arr {
			col, ok := item.(string)
			if !ok {
				return "", fmt.Errorf("unique key %s: column names must be strings", name)
			}
			names = append(names, col)
		}
	} else if str, ok := getStringParam(spec, "columns"); ok {
		for _, col := range strings.Split(str, ",") {
			names = append(names, strings.TrimSpace(col))
		}
	}
	if len(names) == 0 {
		return "", fmt.Errorf("unique key %s: columns are required", name)
	}

	quoted := make([]string, 0, len(names))
	for _, col := range names {
		if err := validateIdentifier(col); err != nil {
			return "", err
		}
		quoted = append(quoted, "`"+col+"`")
	}

	return fmt.Sprintf("UNIQUE KEY `%s` (%s)", name, strings.Join(quoted, ", ")), nil
}

func (s *ToolSet) createTableTool() *tools.Tool {
	return &tools.Tool{
		Name:        "create_table",
		Description: "Create a table from scratch. Drops the table first if it already exists: any existing rows are lost",
		InputSchema: tools.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"table_name": map[string]interface{}{
					"type":        "string",
					"description": "Name of the table to create",
				},
				"columns": map[string]interface{}{
					"type":        "array",
					"description": "Column specifications",
					"items": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"name":           map[string]interface{}{"type": "string"},
							"type":           map[string]interface{}{"type": "string"},
							"not_null":       map[string]interface{}{"type": "boolean"},
							"default":        map[string]interface{}{"type": "string"},
							"auto_increment": map[string]interface{}{"type": "boolean"},
							"primary_key":    map[string]interface{}{"type": "boolean"},
						},
					},
				},
				"unique_keys": map[string]interface{}{
					"type":        "array",
					"description": "Unique key specifications",
					"items": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"name":    map[string]interface{}{"type": "string"},
							"columns": map[string]interface{}{"type": "array"},
						},
					},
				},
			},
			Required: []string{"table_name", "columns"},
		},
		Handler: s.handleCreateTable,
	}
}

// handleCreateTable drops the table if it exists and creates it fresh from
// the column and unique-key specification. This is deliberately exposed as
// create_table rather than "create or modify": the additive counterpart is
// alter_table.
func (s *ToolSet) handleCreateTable(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	database, err := s.manager.Current()
	if err != nil {
		return nil, err
	}

	tableName, ok := getStringParam(params, "table_name")
	if !ok || tableName == "" {
		return nil, fmt.Errorf("table_name parameter is required")
	}
	if err := validateIdentifier(tableName); err != nil {
		return nil, err
	}

	columns, ok := getArrayParam(params, "columns")
	if !ok || len(columns) == 0 {
		return nil, fmt.Errorf("columns parameter is required")
	}

	var defs []string
	for _, item := range columns {
		spec, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("column specifications must be objects")
		}
		def, err := columnDef(spec)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}

	if keys, ok := getArrayParam(params, "unique_keys"); ok {
		for _, item := range keys {
			spec, ok := item.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("unique key specifications must be objects")
			}
			def, err := uniqueKeyDef(spec)
			if err != nil {
				return nil, err
			}
			defs = append(defs, def)
		}
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout(params))
	defer cancel()

	if _, err := database.Exec(timeoutCtx, fmt.Sprintf("DROP TABLE IF EXISTS `%s`", tableName)); err != nil {
		return nil, err
	}

	createSQL := fmt.Sprintf("CREATE TABLE `%s` (%s)", tableName, strings.Join(defs, ", "))
	if _, err := database.Exec(timeoutCtx, createSQL); err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"status":  "success",
		"message": fmt.Sprintf("Table %s created successfully", tableName),
	}, nil
}

func (s *ToolSet) alterTableTool() *tools.Tool {
	return &tools.Tool{
		Name:        "alter_table",
		Description: "Add or modify columns on an existing table without dropping it",
		InputSchema: tools.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"table_name": map[string]interface{}{
					"type":        "string",
					"description": "Name of the table to alter",
				},
				"columns": map[string]interface{}{
					"type":        "array",
					"description": "Column specifications, each with an action of add or modify",
					"items": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"action":   map[string]interface{}{"type": "string", "enum": []string{"add", "modify"}},
							"name":     map[string]interface{}{"type": "string"},
							"type":     map[string]interface{}{"type": "string"},
							"not_null": map[string]interface{}{"type": "boolean"},
							"default":  map[string]interface{}{"type": "string"},
						},
					},
				},
			},
			Required: []string{"table_name", "columns"},
		},
		Handler: s.handleAlterTable,
	}
}

// handleAlterTable applies ADD COLUMN / MODIFY COLUMN clauses to an
// existing table. Existing data is preserved.
func (s *ToolSet) handleAlterTable(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	database, err := s.manager.Current()
	if err != nil {
		return nil, err
	}

	tableName, ok := getStringParam(params, "table_name")
	if !ok || tableName == "" {
		return nil, fmt.Errorf("table_name parameter is required")
	}
	if err := validateIdentifier(tableName); err != nil {
		return nil, err
	}

	columns, ok := getArrayParam(params, "columns")
	if !ok || len(columns) == 0 {
		return nil, fmt.Errorf("columns parameter is required")
	}

	var clauses []string
	for _, item := range columns {
		spec, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("column specifications must be objects")
		}

		action, _ := getStringParam(spec, "action")
		var keyword string
		switch action {
		case "add", "":
			keyword = "ADD COLUMN"
		case "modify":
			keyword = "MODIFY COLUMN"
		default:
			return nil, fmt.Errorf("unknown column action: %q", action)
		}

		def, err := columnDef(spec)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, keyword+" "+def)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout(params))
	defer cancel()

	alterSQL := fmt.Sprintf("ALTER TABLE `%s` %s", tableName, strings.Join(clauses, ", "))
	if _, err := database.Exec(timeoutCtx, alterSQL); err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"status":  "success",
		"message": fmt.Sprintf("Table %s altered successfully", tableName),
	}, nil
}
