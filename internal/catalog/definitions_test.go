package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDefinitions = `
functions:
  - name: nightly_export
    trigger:
      type: timer
      schedule: "0 0 * * *"
  - name: hello
    trigger:
      type: http
      method: GET
      endpoint: /api/v1/hello
  - name: orders_listener
    trigger:
      type: unity_table
      table_config:
        catalog: main
        schema: sales
        name: orders
  - name: ghost
    trigger:
      type: timer
      schedule: "*/5 * * * *"
  - name: broken_timer
    trigger:
      type: timer
      schedule: "every tuesday"
  - name: half_http
    trigger:
      type: http
      endpoint: /nope
  - name: queue_worker
    trigger:
      type: queue
`

func writeFixture(t *testing.T) (path, codeDir string) {
	t.Helper()
	dir := t.TempDir()
	codeDir = filepath.Join(dir, "functions")
	require.NoError(t, os.MkdirAll(codeDir, 0o755))

	for _, name := range []string{"nightly_export", "hello", "orders_listener", "broken_timer", "half_http", "queue_worker"} {
		src := "def run():\n    print(\"" + name + "\")\n"
		require.NoError(t, os.WriteFile(CodePath(codeDir, name), []byte(src), 0o644))
	}

	path = filepath.Join(dir, "app.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testDefinitions), 0o644))
	return path, codeDir
}

func TestLoadDefinitions(t *testing.T) {
	path, codeDir := writeFixture(t)

	defs, err := LoadDefinitions(path, codeDir)
	require.NoError(t, err)

	require.Len(t, defs.Functions, 3)
	assert.Equal(t, "nightly_export", defs.Functions[0].Name)
	assert.Equal(t, "0 0 * * *", defs.Functions[0].Trigger.Schedule)
	assert.Contains(t, defs.Functions[0].Code, `print("nightly_export")`)

	assert.Equal(t, "GET", defs.Functions[1].Trigger.Method)
	assert.Equal(t, "/api/v1/hello", defs.Functions[1].Trigger.Endpoint)

	orders := defs.Functions[2]
	assert.Equal(t, DefaultCheckInterval, orders.Trigger.CheckInterval)
	assert.Equal(t, "main.sales.orders", TableName(orders.Trigger))

	skipped := map[string]error{}
	for _, s := range defs.Skipped {
		skipped[s.Name] = s.Err
	}
	require.Len(t, skipped, 4)
	assert.ErrorIs(t, skipped["ghost"], ErrFunctionNotFound)
	assert.Error(t, skipped["broken_timer"])
	assert.ErrorIs(t, skipped["half_http"], ErrMissingEndpoint)
	assert.ErrorIs(t, skipped["queue_worker"], ErrUnknownTrigger)
}

func TestLoadDefinitions_Errors(t *testing.T) {
	_, err := LoadDefinitions(filepath.Join(t.TempDir(), "missing.yaml"), "")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("functions: [\n"), 0o644))
	_, err = LoadDefinitions(path, "")
	assert.Error(t, err)
}

func TestTrigger_Validate(t *testing.T) {
	tests := []struct {
		name    string
		trigger Trigger
		wantErr error
	}{
		{"timer ok", Trigger{Type: TriggerTimer, Schedule: "30 14 * * *"}, nil},
		{"timer missing schedule", Trigger{Type: TriggerTimer}, ErrMissingSchedule},
		{"http ok", Trigger{Type: TriggerHTTP, Method: "POST", Endpoint: "/run"}, nil},
		{"http missing method", Trigger{Type: TriggerHTTP, Endpoint: "/run"}, ErrMissingEndpoint},
		{"table ok", Trigger{Type: TriggerUnityTable, TableConfig: &TableConfig{"a", "b", "c"}}, nil},
		{"table missing config", Trigger{Type: TriggerUnityTable}, ErrMissingTable},
		{"table partial config", Trigger{Type: TriggerUnityTable, TableConfig: &TableConfig{Catalog: "a"}}, ErrMissingTable},
		{"table negative interval", Trigger{Type: TriggerUnityTable, CheckInterval: -1, TableConfig: &TableConfig{"a", "b", "c"}}, ErrBadCheckInterval},
		{"unknown", Trigger{Type: "queue"}, ErrUnknownTrigger},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.trigger.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	assert.ErrorIs(t, Function{Trigger: Trigger{Type: TriggerTimer, Schedule: "* * * * *"}}.Validate(), ErrMissingName)
}
