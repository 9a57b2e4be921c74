package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eykd/rorv/internal/domain"
	"github.com/eykd/rorv/internal/report"
	"github.com/eykd/rorv/internal/validate"
)

// validatorInfo is the listing of one registered validator.
type validatorInfo struct {
	Name     string   `json:"name"`
	Formats  string   `json:"formats"`
	Requires []string `json:"requires"`
	Report   string   `json:"report"`
}

// requirements names the prerequisites a descriptor declares.
func requirements(d validate.Descriptor) []string {
	reqs := []string{}
	if d.NeedsBothInputs {
		reqs = append(reqs, "csv+json")
	}
	if d.NeedsDataSource {
		reqs = append(reqs, "data-dump")
	}
	if d.NeedsGeoNames {
		reqs = append(reqs, "geonames")
	}
	if d.NeedsCorpus {
		reqs = append(reqs, "data-dump|search")
	}
	return reqs
}

func describe(reg *validate.Registry) []validatorInfo {
	var out []validatorInfo
	for _, v := range reg.All() {
		d := v.Descriptor()
		formats := d.Formats.String()
		if d.Formats == domain.FormatBoth {
			formats = "csv,json"
		}
		out = append(out, validatorInfo{
			Name:     d.Name,
			Formats:  formats,
			Requires: requirements(d),
			Report:   d.OutputFilename(),
		})
	}
	return out
}

func renderValidatorTable(w io.Writer, infos []validatorInfo) error {
	rows := [][]string{{"NAME", "INPUT", "REQUIRES", "REPORT"}}
	for _, info := range infos {
		reqs := strings.Join(info.Requires, ",")
		if reqs == "" {
			reqs = "-"
		}
		rows = append(rows, []string{info.Name, info.Formats, reqs, info.Report})
	}
	return report.Table(w, rows)
}

// NewListCmd creates the list command, which prints the registered
// validators and their prerequisites.
func NewListCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:          "list",
		Short:        "List the registered validators",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			infos := describe(validate.Default())
			if jsonOutput {
				writeJSON(cmd.OutOrStdout(), infos)
				return nil
			}
			if err := renderValidatorTable(cmd.OutOrStdout(), infos); err != nil {
				return fmt.Errorf("writing validator list: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output results as JSON")

	return cmd
}
