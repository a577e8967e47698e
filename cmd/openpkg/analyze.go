package main

import (
	"context"
	"fmt"
	"io"
	"os"

	json "github.com/goccy/go-json"

	"github.com/ryanwaits/openpkg"
	"github.com/ryanwaits/openpkg/provider"
	"github.com/ryanwaits/openpkg/resolve"
	"github.com/ryanwaits/openpkg/spec"
)

type AnalyzeCmd struct {
	Patterns    []string `arg:"" help:"Package patterns to analyze (go list syntax)."`
	Dir         string   `help:"Directory to load packages from." short:"C"`
	Config      string   `help:"Path to the config file." default:"openpkg.yaml"`
	Out         string   `help:"Write output to a file instead of stdout." short:"o"`
	ExecResults string   `help:"JSON file of example execution results." name:"exec-results"`
	Pretty      bool     `help:"Indent JSON output."`
}

func (c *AnalyzeCmd) Run() error {
	cfg, err := openpkg.LoadConfig(c.Config)
	if err != nil {
		return err
	}
	specs, err := analyzePatterns(context.Background(), cfg, c.ExecResults, c.Dir, c.Patterns)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if c.Out != "" {
		f, err := os.Create(c.Out)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	enc := json.NewEncoder(w)
	if c.Pretty {
		enc.SetIndent("", "  ")
	}
	// A single pattern emits its spec directly; several emit a map keyed
	// by pattern.
	if len(c.Patterns) == 1 {
		return enc.Encode(specs[c.Patterns[0]])
	}
	return enc.Encode(specs)
}

// analyzePatterns wires config, exec results, and package loading into one
// AnalyzePackages call. Shared by analyze and check.
func analyzePatterns(ctx context.Context, cfg openpkg.Config, execPath, dir string, patterns []string) (map[string]*spec.PackageSpec, error) {
	exec, err := loadExecResults(execPath)
	if err != nil {
		return nil, err
	}

	resolvers := make(map[string]resolve.Resolver, len(patterns))
	for _, pattern := range patterns {
		res, err := provider.Load(ctx, provider.Options{Patterns: []string{pattern}, Dir: dir})
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", pattern, err)
		}
		resolvers[pattern] = res
	}

	analyzer := openpkg.New(cfg, openpkg.WithExecResults(exec))
	return analyzer.AnalyzePackages(ctx, resolvers)
}
