package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SuiteOptions controls RunDir.
type SuiteOptions struct {
	// Filter is a glob matched against scenario file names without the
	// extension. Empty runs everything.
	Filter string

	// GoldenDir holds <scenario name>.golden snapshots. Scenarios without a
	// golden file are judged on their assertions alone. Empty skips golden
	// comparison.
	GoldenDir string

	// Update rewrites golden files from the current run instead of
	// comparing against them.
	Update bool
}

// SuiteResult summarises a directory of scenarios.
type SuiteResult struct {
	TotalScenarios int              `json:"total_scenarios"`
	Passed         int              `json:"passed"`
	Failed         int              `json:"failed"`
	Scenarios      []ScenarioResult `json:"scenarios"`
}

// ScenarioResult is the outcome of one scenario file.
type ScenarioResult struct {
	Scenario string   `json:"scenario"`
	Path     string   `json:"path"`
	Pass     bool     `json:"pass"`
	Errors   []string `json:"errors,omitempty"`
}

// Failures returns the scenarios that did not pass, in run order.
func (s *SuiteResult) Failures() []ScenarioResult {
	var failed []ScenarioResult
	for _, r := range s.Scenarios {
		if !r.Pass {
			failed = append(failed, r)
		}
	}
	return failed
}

// FindScenarios lists the *.yaml files in dir, sorted by name.
// A non-empty filter is a glob over the file name without ".yaml".
func FindScenarios(dir, filter string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("scenarios directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scenarios directory: %s is not a directory", dir)
	}

	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list scenarios: %w", err)
	}

	if filter != "" {
		kept := paths[:0]
		for _, path := range paths {
			matched, err := filepath.Match(filter, strings.TrimSuffix(filepath.Base(path), ".yaml"))
			if err != nil {
				return nil, fmt.Errorf("invalid filter pattern: %w", err)
			}
			if matched {
				kept = append(kept, path)
			}
		}
		paths = kept
	}

	sort.Strings(paths)
	return paths, nil
}

// RunDir loads and runs every matching scenario in dir.
// A file that cannot be loaded or run counts as a failure; RunDir itself
// only fails when the directory cannot be listed.
func RunDir(dir string, opts SuiteOptions) (*SuiteResult, error) {
	paths, err := FindScenarios(dir, opts.Filter)
	if err != nil {
		return nil, err
	}

	suite := &SuiteResult{Scenarios: []ScenarioResult{}}
	for _, path := range paths {
		suite.add(runFile(path, opts))
	}
	return suite, nil
}

func runFile(path string, opts SuiteOptions) ScenarioResult {
	scenario, err := LoadScenario(path)
	if err != nil {
		return ScenarioResult{Scenario: filepath.Base(path), Path: path, Errors: []string{err.Error()}}
	}
	out := ScenarioResult{Scenario: scenario.Name, Path: path}

	result, err := Run(scenario)
	if err != nil {
		out.Errors = []string{fmt.Sprintf("execution failed: %v", err)}
		return out
	}
	out.Errors = append(out.Errors, result.Errors...)

	if opts.GoldenDir != "" {
		goldenPath := filepath.Join(opts.GoldenDir, scenario.Name+".golden")
		snapshot := Snapshot(scenario.Name, result)
		if opts.Update {
			if err := writeGolden(goldenPath, snapshot); err != nil {
				out.Errors = append(out.Errors, err.Error())
			}
		} else if msg := compareGolden(goldenPath, snapshot); msg != "" {
			out.Errors = append(out.Errors, msg)
		}
	}

	out.Pass = len(out.Errors) == 0
	return out
}

// compareGolden returns "" when the snapshot matches or no golden file exists.
func compareGolden(path string, snapshot []byte) string {
	want, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return ""
	}
	if err != nil {
		return fmt.Sprintf("failed to read golden file: %v", err)
	}
	if !bytes.Equal(want, snapshot) {
		return fmt.Sprintf("snapshot does not match %s (run with --update to regenerate)", path)
	}
	return ""
}

func writeGolden(path string, snapshot []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}
	if err := os.WriteFile(path, snapshot, 0644); err != nil {
		return fmt.Errorf("failed to write golden file: %w", err)
	}
	return nil
}

func (s *SuiteResult) add(r ScenarioResult) {
	s.TotalScenarios++
	if r.Pass {
		s.Passed++
	} else {
		s.Failed++
	}
	s.Scenarios = append(s.Scenarios, r)
}
