package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/ryanwaits/openpkg"
)

type CheckCmd struct {
	Patterns    []string `arg:"" help:"Package patterns to check (go list syntax)."`
	Dir         string   `help:"Directory to load packages from." short:"C"`
	Config      string   `help:"Path to the config file." default:"openpkg.yaml"`
	ExecResults string   `help:"JSON file of example execution results." name:"exec-results"`
	Threshold   int      `help:"Minimum package coverage score. -1 uses the config value." default:"-1"`
}

func (c *CheckCmd) Run() error {
	cfg, err := openpkg.LoadConfig(c.Config)
	if err != nil {
		return err
	}
	threshold := c.Threshold
	if threshold < 0 {
		threshold = cfg.CoverageThreshold
	}

	specs, err := analyzePatterns(context.Background(), cfg, c.ExecResults, c.Dir, c.Patterns)
	if err != nil {
		return err
	}

	patterns := make([]string, 0, len(specs))
	for pattern := range specs {
		patterns = append(patterns, pattern)
	}
	sort.Strings(patterns)

	driftCount := 0
	belowThreshold := 0
	for _, pattern := range patterns {
		ps := specs[pattern]
		for _, ex := range ps.Exports {
			if ex.Docs == nil {
				continue
			}
			for _, f := range ex.Docs.Drift {
				driftCount++
				fmt.Fprintf(os.Stderr, "%s: %s: %s: %s\n", pattern, ex.Name, f.Kind, f.Issue)
				if f.Suggestion != "" {
					fmt.Fprintf(os.Stderr, "\tsuggestion: %s\n", f.Suggestion)
				}
			}
		}
		if ps.Docs != nil && ps.Docs.CoverageScore < threshold {
			belowThreshold++
			fmt.Fprintf(os.Stderr, "%s: coverage %d%% is below threshold %d%%\n",
				pattern, ps.Docs.CoverageScore, threshold)
		}
	}

	if driftCount > 0 || belowThreshold > 0 {
		return fmt.Errorf("check failed: %d drift finding(s), %d package(s) below coverage threshold",
			driftCount, belowThreshold)
	}
	fmt.Fprintln(os.Stderr, "check passed")
	return nil
}
