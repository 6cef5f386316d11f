package catalog

// -----------------------------------------------------------------------------
// Wire Types
// -----------------------------------------------------------------------------

// Trigger type tags.
const (
	TriggerTimer      = "timer"
	TriggerHTTP       = "http"
	TriggerUnityTable = "unity_table"
)

// DefaultCheckInterval is the unity_table polling interval in seconds when none is configured.
const DefaultCheckInterval = 60

// Function is one configured function as served by the catalog endpoint.
type Function struct {
	Name    string  `json:"name" yaml:"name"`
	Code    string  `json:"code,omitempty" yaml:"code,omitempty"` // Source text, shown on demand
	Trigger Trigger `json:"trigger" yaml:"trigger"`
}

// Trigger describes when a function runs. Only the fields of the active Type are meaningful.
type Trigger struct {
	Type string `json:"type" yaml:"type"`

	// timer
	Schedule string `json:"schedule,omitempty" yaml:"schedule,omitempty"`

	// http
	Method   string `json:"method,omitempty" yaml:"method,omitempty"`
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`

	// unity_table
	CheckInterval int          `json:"check_interval,omitempty" yaml:"check_interval,omitempty"` // Seconds
	TableConfig   *TableConfig `json:"table_config,omitempty" yaml:"table_config,omitempty"`
}

// TableConfig identifies a three-part table name.
type TableConfig struct {
	Catalog string `json:"catalog" yaml:"catalog"`
	Schema  string `json:"schema" yaml:"schema"`
	Name    string `json:"name" yaml:"name"`
}

// FunctionList is the catalog endpoint's response body.
type FunctionList struct {
	Functions []Function `json:"functions" yaml:"functions"`
}
