package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

var (
	ErrFunctionNotFound = errors.New("function source does not exist")
	ErrMissingName      = errors.New("function name is required")
	ErrMissingSchedule  = errors.New("timer trigger requires 'schedule'")
	ErrMissingEndpoint  = errors.New("http trigger requires 'endpoint' and 'method'")
	ErrMissingTable     = errors.New("unity_table trigger requires 'table_config' with 'catalog', 'schema' and 'name'")
	ErrUnknownTrigger   = errors.New("unknown trigger type")
	ErrBadCheckInterval = errors.New("check_interval must be positive")
)

// Skipped is a definition that was left out of the catalog and why.
type Skipped struct {
	Name string
	Err  error
}

// Definitions is the result of loading a definitions file.
type Definitions struct {
	Functions []Function
	Skipped   []Skipped
}

// CodePath returns where the source of the named function lives under dir.
func CodePath(dir, name string) string {
	return filepath.Join(dir, name+"_function.py")
}

// LoadDefinitions reads a definitions file (a YAML document with a top-level
// functions list), validates every trigger and attaches each function's source
// from codeDir. Invalid or sourceless functions are reported in Skipped rather
// than failing the whole load.
func LoadDefinitions(path, codeDir string) (*Definitions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read definitions: %w", err)
	}

	var list FunctionList
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parse definitions: %w", err)
	}

	defs := &Definitions{}
	for _, fn := range list.Functions {
		if err := fn.Validate(); err != nil {
			defs.Skipped = append(defs.Skipped, Skipped{Name: fn.Name, Err: err})
			continue
		}

		code, err := os.ReadFile(CodePath(codeDir, fn.Name))
		if errors.Is(err, fs.ErrNotExist) {
			defs.Skipped = append(defs.Skipped, Skipped{Name: fn.Name, Err: ErrFunctionNotFound})
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read source for %s: %w", fn.Name, err)
		}
		fn.Code = string(code)

		if fn.Trigger.Type == TriggerUnityTable && fn.Trigger.CheckInterval == 0 {
			fn.Trigger.CheckInterval = DefaultCheckInterval
		}

		defs.Functions = append(defs.Functions, fn)
	}

	return defs, nil
}

// Validate checks the function has a name and a complete trigger.
func (f Function) Validate() error {
	if f.Name == "" {
		return ErrMissingName
	}
	return f.Trigger.Validate()
}

// Validate checks the fields the trigger's type requires.
func (t Trigger) Validate() error {
	switch t.Type {
	case TriggerTimer:
		if t.Schedule == "" {
			return ErrMissingSchedule
		}
		return ValidateSchedule(t.Schedule)
	case TriggerHTTP:
		if t.Endpoint == "" || t.Method == "" {
			return ErrMissingEndpoint
		}
	case TriggerUnityTable:
		tc := t.TableConfig
		if tc == nil || tc.Catalog == "" || tc.Schema == "" || tc.Name == "" {
			return ErrMissingTable
		}
		if t.CheckInterval < 0 {
			return ErrBadCheckInterval
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownTrigger, t.Type)
	}
	return nil
}
