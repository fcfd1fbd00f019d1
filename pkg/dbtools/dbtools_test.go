package dbtools

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/aqaranewbiz/mysql-aqara/pkg/db"
)

// MockDB is a mock implementation of the db.Database interface.
type MockDB struct {
	mock.Mock
}

func (m *MockDB) Query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	callArgs := []interface{}{ctx, query}
	callArgs = append(callArgs, args...)
	results := m.Called(callArgs...)
	rows, _ := results.Get(0).(*sql.Rows)
	return rows, results.Error(1)
}

func (m *MockDB) QueryRow(ctx context.Context, query string, args ...interface{}) *sql.Row {
	callArgs := []interface{}{ctx, query}
	callArgs = append(callArgs, args...)
	results := m.Called(callArgs...)
	row, _ := results.Get(0).(*sql.Row)
	return row
}

func (m *MockDB) Exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	callArgs := []interface{}{ctx, query}
	callArgs = append(callArgs, args...)
	results := m.Called(callArgs...)
	result, _ := results.Get(0).(sql.Result)
	return result, results.Error(1)
}

func (m *MockDB) Connect() error {
	return m.Called().Error(0)
}

func (m *MockDB) Close() error {
	return m.Called().Error(0)
}

func (m *MockDB) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockDB) DriverName() string {
	return m.Called().String(0)
}

func (m *MockDB) ConnectionString() string {
	return m.Called().String(0)
}

// MockResult is a mock implementation of sql.Result.
type MockResult struct {
	mock.Mock
}

func (m *MockResult) LastInsertId() (int64, error) {
	results := m.Called()
	return results.Get(0).(int64), results.Error(1)
}

func (m *MockResult) RowsAffected() (int64, error) {
	results := m.Called()
	return results.Get(0).(int64), results.Error(1)
}

// fakeManager implements ConnectionManager over a fixed database handle.
type fakeManager struct {
	database     db.Database
	connectErr   error
	connectCalls int
	lastConfig   db.Config
}

func (m *fakeManager) Connect(config db.Config) (db.Database, error) {
	m.connectCalls++
	m.lastConfig = config
	if m.connectErr != nil {
		return nil, m.connectErr
	}
	return m.database, nil
}

func (m *fakeManager) Current() (db.Database, error) {
	if m.database == nil {
		return nil, db.ErrNotConnected
	}
	return m.database, nil
}

func (m *fakeManager) Connected() bool {
	return m.database != nil
}

func newTestToolSet(database db.Database) (*ToolSet, *fakeManager) {
	manager := &fakeManager{database: database}
	return New(manager, 5*time.Second), manager
}

func TestHandleConnect(t *testing.T) {
	toolSet, manager := newTestToolSet(new(MockDB))

	result, err := toolSet.handleConnect(context.Background(), map[string]interface{}{
		"host":     "localhost",
		"user":     "root",
		"password": "secret",
		"database": "appdb",
		"port":     float64(3307),
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, manager.connectCalls)
	assert.Equal(t, db.Config{
		Host:     "localhost",
		Port:     3307,
		User:     "root",
		Password: "secret",
		Name:     "appdb",
	}, manager.lastConfig)

	payload := result.(map[string]interface{})
	assert.Equal(t, "success", payload["status"])
}

func TestHandleConnectPropagatesManagerError(t *testing.T) {
	manager := &fakeManager{connectErr: errors.New("access denied")}
	toolSet := New(manager, 5*time.Second)

	result, err := toolSet.handleConnect(context.Background(), map[string]interface{}{
		"host":     "localhost",
		"user":     "root",
		"password": "wrong",
	})

	assert.Nil(t, result)
	assert.EqualError(t, err, "access denied")
}

func TestConnectFromConfig(t *testing.T) {
	toolSet, manager := newTestToolSet(new(MockDB))

	err := toolSet.ConnectFromConfig("localhost", "root", "secret", "appdb", 3306)
	assert.NoError(t, err)
	assert.Equal(t, 1, manager.connectCalls)
	assert.Equal(t, "appdb", manager.lastConfig.Name)
}

func TestConnectFromConfigWrapsError(t *testing.T) {
	manager := &fakeManager{connectErr: errors.New("connection refused")}
	toolSet := New(manager, 5*time.Second)

	err := toolSet.ConnectFromConfig("localhost", "root", "secret", "", 3306)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "auto-connect failed")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestHandleQueryRequiresConnection(t *testing.T) {
	toolSet := New(&fakeManager{}, 5*time.Second)

	result, err := toolSet.handleQuery(context.Background(), map[string]interface{}{
		"sql": "SELECT 1",
	})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, db.ErrNotConnected)
}

func TestHandleQueryRequiresSQL(t *testing.T) {
	toolSet, _ := newTestToolSet(new(MockDB))

	_, err := toolSet.handleQuery(context.Background(), map[string]interface{}{})
	assert.EqualError(t, err, "sql parameter is required")
}

func TestHandleQueryBindsParamsPositionally(t *testing.T) {
	mockDB := new(MockDB)
	toolSet, _ := newTestToolSet(mockDB)

	// The SQL text must reach the driver verbatim, with the values bound
	// as placeholder arguments rather than spliced into the statement.
	query := "SELECT * FROM users WHERE name = ? AND age > ?"
	engineErr := errors.New("table users does not exist")
	mockDB.On("Query", mock.Anything, query, "'; DROP TABLE users; --", float64(30)).
		Return((*sql.Rows)(nil), engineErr)

	result, err := toolSet.handleQuery(context.Background(), map[string]interface{}{
		"sql":    query,
		"params": []interface{}{"'; DROP TABLE users; --", float64(30)},
	})

	assert.Nil(t, result)
	assert.Equal(t, engineErr, err)
	mockDB.AssertExpectations(t)
}

func TestHandleExecute(t *testing.T) {
	mockDB := new(MockDB)
	mockResult := new(MockResult)
	toolSet, _ := newTestToolSet(mockDB)

	statement := "INSERT INTO users (name) VALUES (?)"
	mockResult.On("RowsAffected").Return(int64(1), nil)
	mockResult.On("LastInsertId").Return(int64(42), nil)
	mockDB.On("Exec", mock.Anything, statement, "alice").Return(mockResult, nil)

	result, err := toolSet.handleExecute(context.Background(), map[string]interface{}{
		"sql":    statement,
		"params": []interface{}{"alice"},
	})

	assert.NoError(t, err)
	payload := result.(map[string]interface{})
	assert.Equal(t, "success", payload["status"])
	assert.Equal(t, int64(1), payload["affected_rows"])
	assert.Equal(t, int64(42), payload["last_insert_id"])
	mockDB.AssertExpectations(t)
	mockResult.AssertExpectations(t)
}

func TestHandleExecuteIndeterminateCounts(t *testing.T) {
	mockDB := new(MockDB)
	mockResult := new(MockResult)
	toolSet, _ := newTestToolSet(mockDB)

	mockResult.On("RowsAffected").Return(int64(0), errors.New("not supported"))
	mockResult.On("LastInsertId").Return(int64(0), errors.New("not supported"))
	mockDB.On("Exec", mock.Anything, "TRUNCATE t").Return(mockResult, nil)

	result, err := toolSet.handleExecute(context.Background(), map[string]interface{}{
		"sql": "TRUNCATE t",
	})

	assert.NoError(t, err)
	payload := result.(map[string]interface{})
	assert.Equal(t, int64(-1), payload["affected_rows"])
	assert.Equal(t, int64(-1), payload["last_insert_id"])
}

func TestHandleExecuteRequiresConnection(t *testing.T) {
	toolSet := New(&fakeManager{}, 5*time.Second)

	_, err := toolSet.handleExecute(context.Background(), map[string]interface{}{
		"sql": "DELETE FROM t",
	})
	assert.ErrorIs(t, err, db.ErrNotConnected)
}

func TestTimeoutHonorsPerCallOverride(t *testing.T) {
	toolSet := New(&fakeManager{}, 5*time.Second)

	assert.Equal(t, 5*time.Second, toolSet.timeout(map[string]interface{}{}))
	assert.Equal(t, 250*time.Millisecond, toolSet.timeout(map[string]interface{}{
		"timeout": float64(250),
	}))
	// Non-positive overrides fall back to the default.
	assert.Equal(t, 5*time.Second, toolSet.timeout(map[string]interface{}{
		"timeout": float64(0),
	}))
}

func TestParamHelpers(t *testing.T) {
	params := map[string]interface{}{
		"name":  "users",
		"count": float64(3),
		"flag":  true,
		"list":  []interface{}{"a", "b"},
	}

	name, ok := getStringParam(params, "name")
	assert.True(t, ok)
	assert.Equal(t, "users", name)

	_, ok = getStringParam(params, "count")
	assert.False(t, ok)

	count, ok := getIntParam(params, "count")
	assert.True(t, ok)
	assert.Equal(t, 3, count)

	_, ok = getIntParam(params, "name")
	assert.False(t, ok)

	assert.True(t, getBoolParam(params, "flag"))
	assert.False(t, getBoolParam(params, "missing"))

	list, ok := getArrayParam(params, "list")
	assert.True(t, ok)
	assert.Len(t, list, 2)
}
