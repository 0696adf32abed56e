package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/stationcache/internal/harness"
)

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name      string            `json:"name"`
	Pass      bool              `json:"pass"`
	Decisions map[string]string `json:"decisions,omitempty"`
	Errors    []string          `json:"errors,omitempty"`
}

// ScenarioReport holds the overall result.
type ScenarioReport struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewScenarioCommand creates the scenario command.
func NewScenarioCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "scenario <file.yaml>...",
		Short: "Run hydration scenarios",
		Long: `Run hydration scenarios, each against a fresh temporary store.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error

Examples:
  stationcache scenario testdata/scenarios/*.yaml
  stationcache scenario network_wins.yaml --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarios(cmd, rootOpts, args)
		},
	}
}

func runScenarios(cmd *cobra.Command, opts *RootOptions, files []string) error {
	report := ScenarioReport{
		Scenarios: make([]ScenarioResult, 0, len(files)),
		Total:     len(files),
	}

	for _, file := range files {
		res := runScenarioFile(cmd, opts, file)
		report.Scenarios = append(report.Scenarios, res)
		if res.Pass {
			report.Passed++
		} else {
			report.Failed++
		}
	}

	w := cmd.OutOrStdout()
	if opts.Format == "json" {
		if err := json.NewEncoder(w).Encode(CLIResponse{Status: "ok", Data: report}); err != nil {
			return err
		}
	} else {
		for _, res := range report.Scenarios {
			if res.Pass {
				fmt.Fprintf(w, "✓ %s\n", res.Name)
				continue
			}
			fmt.Fprintf(w, "✗ %s\n", res.Name)
			for _, e := range res.Errors {
				fmt.Fprintf(w, "  %s\n", e)
			}
		}
		fmt.Fprintf(w, "\n%d passed, %d failed, %d total\n", report.Passed, report.Failed, report.Total)
	}

	if report.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d scenarios failed", report.Failed, report.Total))
	}
	return nil
}

func runScenarioFile(cmd *cobra.Command, opts *RootOptions, file string) ScenarioResult {
	scenario, err := harness.LoadScenario(file)
	if err != nil {
		return ScenarioResult{
			Name:   filepath.Base(file),
			Errors: []string{fmt.Sprintf("failed to load scenario: %v", err)},
		}
	}

	result, err := harness.RunContext(cmd.Context(), scenario, opts.Logger)
	if err != nil {
		return ScenarioResult{
			Name:   scenario.Name,
			Errors: []string{fmt.Sprintf("execution failed: %v", err)},
		}
	}

	decisions := make(map[string]string, len(result.Decisions))
	for _, d := range result.Decisions {
		src := string(d.Source)
		if d.Repaired {
			src += " (repaired)"
		}
		decisions[string(d.Slice)] = src
	}
	if opts.Verbose && opts.Format != "json" {
		for _, d := range result.Decisions {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s %s\n", scenario.Name, d.Slice, decisions[string(d.Slice)])
		}
	}

	return ScenarioResult{
		Name:      scenario.Name,
		Pass:      result.Pass,
		Decisions: decisions,
		Errors:    result.Errors,
	}
}
