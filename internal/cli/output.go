package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/okian/retention/internal/adapters/render"
	service "github.com/okian/retention/internal/app"
	"github.com/okian/retention/internal/domain/model"
)

// encode writes v as JSON or YAML.
func encode(w io.Writer, format string, v any) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

type reportOutput struct {
	Report     *model.Report       `json:"report" yaml:"report"`
	Suggestion *service.Suggestion `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
}

type comparisonOutput struct {
	Comparison model.Comparison    `json:"comparison" yaml:"comparison"`
	Suggestion *service.Suggestion `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
}

func writeReport(w io.Writer, format string, r *model.Report, sg *service.Suggestion) error {
	if format != FormatText {
		return encode(w, format, reportOutput{Report: r, Suggestion: sg})
	}
	if err := render.Text(w, r); err != nil {
		return err
	}
	return writeSuggestionText(w, sg)
}

func writeComparison(w io.Writer, format string, cmp model.Comparison, sg *service.Suggestion) error {
	if format != FormatText {
		return encode(w, format, comparisonOutput{Comparison: cmp, Suggestion: sg})
	}
	for i, side := range []model.Outcome{cmp.A, cmp.B} {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if side.OK() {
			if err := render.Text(w, side.Report); err != nil {
				return err
			}
			continue
		}
		d := model.DescribeError(side.Err)
		if _, err := fmt.Fprintf(w, "%s: no report (%s): %s\n", side.Label, d.Kind, d.Message); err != nil {
			return err
		}
	}
	return writeSuggestionText(w, sg)
}

func writeSuggestionText(w io.Writer, sg *service.Suggestion) error {
	if sg == nil {
		return nil
	}
	_, err := fmt.Fprintf(w, "\nSuggestions:\n%s\n", sg.Suggestion)
	return err
}
