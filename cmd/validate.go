package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/eykd/rorv/internal/report"
	"github.com/eykd/rorv/internal/validate"
)

// ValidateOptions holds the inputs of one validation run as given on the
// command line. Empty strings mean "not given".
type ValidateOptions struct {
	Validators   []string
	CSVPath      string
	JSONPath     string
	DataDump     string
	GeoNamesUser string
	OutputDir    string
	ConfigPath   string
}

// ReportSummary describes the outcome of one validator.
type ReportSummary struct {
	Validator string `json:"validator"`
	Status    string `json:"status"`
	Findings  int    `json:"findings"`
	Path      string `json:"path,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// Report statuses.
const (
	StatusClean    = "clean"
	StatusFindings = "findings"
	StatusSkipped  = "skipped"
)

// ValidateResult holds the outcome of a validation run.
type ValidateResult struct {
	RunID     string          `json:"run_id"`
	OutputDir string          `json:"output_dir"`
	Reports   []ReportSummary `json:"reports"`
}

// TotalFindings sums findings across reports.
func (r *ValidateResult) TotalFindings() (findings, reports int) {
	for _, rep := range r.Reports {
		if rep.Findings > 0 {
			findings += rep.Findings
			reports++
		}
	}
	return findings, reports
}

// ValidateRunner defines the interface for running validators.
type ValidateRunner interface {
	Validate(ctx context.Context, opts ValidateOptions) (*ValidateResult, error)
}

// summarize converts orchestrator reports for display.
func summarize(reports []validate.Report) []ReportSummary {
	out := make([]ReportSummary, 0, len(reports))
	for _, rep := range reports {
		s := ReportSummary{
			Validator: rep.Validator,
			Findings:  rep.Findings,
			Path:      rep.Path,
			Reason:    rep.Reason,
		}
		switch {
		case rep.Skipped:
			s.Status = StatusSkipped
		case rep.Findings > 0:
			s.Status = StatusFindings
		default:
			s.Status = StatusClean
		}
		out = append(out, s)
	}
	return out
}

// formatValidateHuman writes the run summary as an aligned table.
func formatValidateHuman(w io.Writer, result *ValidateResult) {
	rows := [][]string{{"VALIDATOR", "STATUS", "FINDINGS", "REPORT"}}
	for _, rep := range result.Reports {
		detail := rep.Path
		if rep.Status == StatusSkipped {
			detail = rep.Reason
		}
		rows = append(rows, []string{rep.Validator, rep.Status, strconv.Itoa(rep.Findings), detail})
	}
	if err := report.Table(w, rows); err != nil {
		fmt.Fprintf(w, "writing summary: %v\n", err)
	}
}

// resolveExit turns a run outcome into the command error. Validator
// prerequisite failures win over findings; any other error wins over both.
func resolveExit(result *ValidateResult, err error) error {
	if err != nil {
		var cfgErr *validate.ConfigError
		if errors.As(err, &cfgErr) {
			return &ConfigurationError{Err: err}
		}
		return err
	}
	if result == nil {
		return nil
	}
	if findings, reports := result.TotalFindings(); findings > 0 {
		return &FindingsDetectedError{Findings: findings, Reports: reports}
	}
	return nil
}

// NewValidateCmd creates the validate command with the given runner.
func NewValidateCmd(runner ValidateRunner) *cobra.Command {
	var (
		opts       ValidateOptions
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "validate [validators...]",
		Short: "Run validators against a CSV batch and/or JSON records",
		Long: "Run the named validators (or all of them) and write one CSV report per " +
			"validator with findings. Exit status is 0 when clean, 2 when findings were " +
			"written and 3 when a requested validator is missing a prerequisite.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Validators = args
			result, err := runner.Validate(cmd.Context(), opts)
			if result != nil {
				if jsonOutput {
					writeJSON(cmd.OutOrStdout(), result)
				} else {
					formatValidateHuman(cmd.OutOrStdout(), result)
				}
			}
			return resolveExit(result, err)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.CSVPath, "csv", "", "CSV batch file")
	f.StringVar(&opts.JSONPath, "json", "", "JSON record file or directory of *.json files")
	f.StringVar(&opts.DataDump, "data-dump", "", "Registry data dump (.zip or .json)")
	f.StringVar(&opts.GeoNamesUser, "geonames-user", "", "GeoNames account name")
	f.StringVarP(&opts.OutputDir, "output", "o", "", "Report directory")
	f.StringVar(&opts.ConfigPath, "config", "", "YAML configuration file")
	f.BoolVar(&jsonOutput, "json-output", false, "Print the run summary as JSON")

	return cmd
}
