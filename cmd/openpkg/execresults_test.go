package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempJSON(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "exec.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadExecResults(t *testing.T) {
	path := writeTempJSON(t, `{
		"Add": [
			{"success": true, "stdout": "3\n", "durationMs": 12},
			{"success": false, "stderr": "TypeError: boom"}
		]
	}`)

	results, err := loadExecResults(path)
	if err != nil {
		t.Fatalf("loadExecResults: %v", err)
	}
	runs := results["Add"]
	if len(runs) != 2 {
		t.Fatalf("runs = %d, want 2", len(runs))
	}
	if !runs[0].Success || runs[0].Stdout != "3\n" || runs[0].DurationMs != 12 {
		t.Errorf("first run = %+v", runs[0])
	}
	if runs[1].Success || runs[1].Stderr != "TypeError: boom" {
		t.Errorf("second run = %+v", runs[1])
	}
}

func TestLoadExecResults_EmptyPath(t *testing.T) {
	results, err := loadExecResults("")
	if err != nil {
		t.Fatalf("loadExecResults: %v", err)
	}
	if results != nil {
		t.Errorf("results = %+v, want nil", results)
	}
}

func TestLoadExecResults_Invalid(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"not json", `nope`},
		{"wrong value type", `{"Add": {"success": true}}`},
		{"missing success", `{"Add": [{"stdout": "3"}]}`},
		{"unknown field", `{"Add": [{"success": true, "extra": 1}]}`},
		{"negative duration", `{"Add": [{"success": true, "durationMs": -1}]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := loadExecResults(writeTempJSON(t, tc.body)); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}
