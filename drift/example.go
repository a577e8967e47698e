package drift

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/ryanwaits/openpkg/spec"
)

// grammar picks the tree-sitter grammar for an example's language tag.
// Unrecognized tags fall back to javascript, the dominant convention in
// doc-comment fences.
func grammar(language string) *sitter.Language {
	switch strings.ToLower(language) {
	case "go", "golang":
		return golang.GetLanguage()
	case "ts", "tsx", "typescript":
		return typescript.GetLanguage()
	default:
		return javascript.GetLanguage()
	}
}

var (
	// declRe matches identifiers an example declares locally, across the
	// supported grammars.
	declRe = regexp.MustCompile(`\b(?:const|let|var|function|class|func|type|interface)\s+([A-Za-z_][A-Za-z0-9_]*)|(?m:^\s*([A-Za-z_][A-Za-z0-9_]*)\s*:=)`)

	// identRe matches capitalized identifiers, the shape exported symbol
	// references take in example code.
	identRe = regexp.MustCompile(`\b[A-Z][A-Za-z0-9_]*\b`)

	// assertRe matches inline expected-output assertions.
	assertRe = regexp.MustCompile(`//\s*=>\s*(.*)`)
)

func exampleTarget(ex spec.Example, i int) string {
	if ex.Title != "" {
		return ex.Title
	}
	return fmt.Sprintf("example %d", i+1)
}

func exampleFindings(ex *spec.Export, env Env) []spec.DriftFinding {
	var out []spec.DriftFinding
	for i, example := range ex.Examples {
		out = append(out, syntaxFindings(example, i, env.Cfg)...)
		if env.Known != nil {
			out = append(out, identifierFindings(example, i, env)...)
		}
	}
	return out
}

func syntaxFindings(example spec.Example, i int, cfg Config) []spec.DriftFinding {
	code := strings.TrimSpace(example.Code)
	if code == "" {
		return nil
	}
	language := example.Language
	if language == "" {
		language = cfg.DefaultLanguage
	}
	if language == "" {
		// Untagged example in a package with no default language: there
		// is no grammar the code can honestly be checked against.
		return nil
	}
	parser := sitter.NewParser()
	parser.SetLanguage(grammar(language))
	tree, err := parser.ParseCtx(context.Background(), nil, []byte(code))
	if err != nil {
		return []spec.DriftFinding{{
			Kind:   KindExampleSyntaxError,
			Target: exampleTarget(example, i),
			Issue:  fmt.Sprintf("example could not be parsed: %v", err),
		}}
	}
	defer tree.Close()
	if tree.RootNode().HasError() {
		return []spec.DriftFinding{{
			Kind:   KindExampleSyntaxError,
			Target: exampleTarget(example, i),
			Issue:  "example code does not parse",
		}}
	}
	return nil
}

// identifierFindings flags capitalized identifiers that look like exported
// symbol references but match nothing in the registry. Identifiers the
// example declares itself, known built-ins, and member accesses after a dot
// are excluded. Without a near match the identifier is assumed to be an
// external library reference and no finding is produced.
func identifierFindings(example spec.Example, i int, env Env) []spec.DriftFinding {
	code := example.Code
	local := map[string]bool{}
	for _, m := range declRe.FindAllStringSubmatch(code, -1) {
		if m[1] != "" {
			local[m[1]] = true
		}
		if m[2] != "" {
			local[m[2]] = true
		}
	}

	var out []spec.DriftFinding
	seen := map[string]bool{}
	for _, loc := range identRe.FindAllStringIndex(code, -1) {
		if loc[0] > 0 && code[loc[0]-1] == '.' {
			continue
		}
		name := code[loc[0]:loc[1]]
		if seen[name] || local[name] || env.Cfg.Builtins[name] || env.Known[name] {
			continue
		}
		seen[name] = true
		near := Nearest(name, knownNames(env.Known), env.Cfg.EditDistanceMax)
		if near == "" {
			continue
		}
		out = append(out, spec.DriftFinding{
			Kind:       KindExampleDrift,
			Target:     exampleTarget(example, i),
			Issue:      fmt.Sprintf("example references %q, which is not an exported symbol", name),
			Suggestion: fmt.Sprintf("did you mean %q?", near),
		})
	}
	return out
}

// execFindings diffs externally captured execution results against the
// example's inline "// =>" assertions. Missing execution data produces no
// findings.
func execFindings(ex *spec.Export, env Env) []spec.DriftFinding {
	results, ok := env.Exec[ex.Name]
	if !ok {
		return nil
	}
	var out []spec.DriftFinding
	for i, example := range ex.Examples {
		if i >= len(results) {
			break
		}
		res := results[i]
		if !res.Success {
			issue := "example failed at runtime"
			if msg := firstLine(res.Stderr); msg != "" {
				issue = fmt.Sprintf("example failed at runtime: %s", msg)
			}
			out = append(out, spec.DriftFinding{
				Kind:   KindExampleRuntimeError,
				Target: exampleTarget(example, i),
				Issue:  issue,
			})
			continue
		}
		out = append(out, assertionFindings(example, i, res)...)
	}
	return out
}

func assertionFindings(example spec.Example, i int, res ExecResult) []spec.DriftFinding {
	expected := assertRe.FindAllStringSubmatch(example.Code, -1)
	if len(expected) == 0 {
		return nil
	}
	lines := strings.Split(strings.TrimRight(res.Stdout, "\n"), "\n")

	var out []spec.DriftFinding
	for j, m := range expected {
		want := strings.TrimSpace(m[1])
		got := ""
		if j < len(lines) {
			got = strings.TrimSpace(lines[j])
		}
		if want == got {
			continue
		}
		out = append(out, spec.DriftFinding{
			Kind:       KindExampleAssertionFailed,
			Target:     exampleTarget(example, i),
			Issue:      fmt.Sprintf("asserted output %q but the example printed %q", want, got),
			Suggestion: fmt.Sprintf("update the assertion to // => %s", got),
		})
	}
	return out
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return line
}
