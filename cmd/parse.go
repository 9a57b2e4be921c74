package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/eykd/rorv/internal/directive"
	"github.com/eykd/rorv/internal/domain"
)

// ErrInvalidEdit is returned when an edit string has structural problems.
var ErrInvalidEdit = errors.New("edit string has problems")

// parsedDirective is the display form of one directive.
type parsedDirective struct {
	Action string `json:"action"`
	Value  string `json:"value,omitempty"`
	Whole  bool   `json:"whole,omitempty"`
}

// parseOutput is the JSON structure of the parse command.
type parseOutput struct {
	Field      string            `json:"field,omitempty"`
	Normalized string            `json:"normalized"`
	Directives []parsedDirective `json:"directives"`
	Problems   []string          `json:"problems"`
}

func buildParseOutput(field, input string) parseOutput {
	edit, parseErr := directive.Parse(input)

	out := parseOutput{
		Field:      field,
		Normalized: edit.String(),
		Directives: []parsedDirective{},
		Problems:   []string{},
	}
	for _, d := range edit.Directives(field) {
		out.Directives = append(out.Directives, parsedDirective{Action: string(d.Action), Value: d.Value, Whole: d.Whole})
	}
	if parseErr != nil {
		out.Problems = append(out.Problems, unjoin(parseErr)...)
	}
	if field != "" {
		for _, err := range directive.Validate(field, edit) {
			out.Problems = append(out.Problems, err.Error())
		}
	}
	return out
}

// unjoin flattens an errors.Join result into messages.
func unjoin(err error) []string {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []string
		for _, e := range joined.Unwrap() {
			out = append(out, e.Error())
		}
		return out
	}
	return []string{err.Error()}
}

func formatParseHuman(w io.Writer, out parseOutput) {
	if out.Field != "" {
		fmt.Fprintf(w, "field: %s\n", out.Field)
	}
	fmt.Fprintf(w, "normalized: %s\n", out.Normalized)
	for _, d := range out.Directives {
		switch {
		case d.Whole:
			fmt.Fprintf(w, "  %s (entire field)\n", d.Action)
		default:
			fmt.Fprintf(w, "  %s %q\n", d.Action, d.Value)
		}
	}
	for _, p := range out.Problems {
		fmt.Fprintf(w, "problem: %s\n", p)
	}
}

// NewParseCmd creates the parse command, which shows how an update cell is
// understood.
func NewParseCmd() *cobra.Command {
	var (
		field      string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:          "parse <edit>",
		Short:        "Show the directives parsed from an update cell",
		Example:      `  rorv parse 'add==Univ Example*en;delete==Old Name' --field ` + domain.FieldNameAlias,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := buildParseOutput(field, args[0])
			if jsonOutput {
				writeJSON(cmd.OutOrStdout(), out)
			} else {
				formatParseHuman(cmd.OutOrStdout(), out)
			}
			if len(out.Problems) > 0 {
				return fmt.Errorf("%w: %d found", ErrInvalidEdit, len(out.Problems))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&field, "field", "", "Field path the edit applies to")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output results as JSON")

	return cmd
}
