package main

import (
	"fmt"
	"os"

	json "github.com/goccy/go-json"
	jschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/ryanwaits/openpkg/drift"
)

// execResultsSchema validates the --exec-results file shape: export name to
// an array of run records, index-parallel with that export's examples.
const execResultsSchema = `{
  "type": "object",
  "additionalProperties": {
    "type": "array",
    "items": {
      "type": "object",
      "properties": {
        "success": {"type": "boolean"},
        "stdout": {"type": "string"},
        "stderr": {"type": "string"},
        "durationMs": {"type": "integer", "minimum": 0}
      },
      "required": ["success"],
      "additionalProperties": false
    }
  }
}`

var compiledExecSchema = jschema.MustCompileString("openpkg://exec-results", execResultsSchema)

// loadExecResults reads, validates, and decodes an execution-results file.
// An empty path returns nil results.
func loadExecResults(path string) (map[string][]drift.ExecResult, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading exec results: %w", err)
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing exec results: %w", err)
	}
	if err := compiledExecSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("invalid exec results: %w", err)
	}

	var results map[string][]drift.ExecResult
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("decoding exec results: %w", err)
	}
	return results, nil
}
