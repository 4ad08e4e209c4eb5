package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/okian/retention/internal/adapters/ingest"
	"github.com/okian/retention/internal/adapters/render"
	service "github.com/okian/retention/internal/app"
	"github.com/okian/retention/internal/domain/engine"
	"github.com/okian/retention/internal/domain/model"
)

const stdinName = "-"

type chartFlags struct {
	kind   string
	width  int
	height int
}

func (f *chartFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.kind, "kind", string(service.ChartSeries), "chart kind: series or chapters")
	cmd.Flags().IntVar(&f.width, "width", 0, "chart width in pixels (default 1024)")
	cmd.Flags().IntVar(&f.height, "height", 0, "chart height in pixels (default 480)")
}

func (f *chartFlags) size() render.Size { return render.Size{Width: f.width, Height: f.height} }

func (c *cli) analyzeCommand() *cobra.Command {
	var (
		label     string
		suggest   bool
		chartPath string
		chart     chartFlags
	)
	cmd := &cobra.Command{
		Use:   "analyze FILE.csv",
		Short: "Analyze one retention export (use - for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: c.withService(func(ctx context.Context, cmd *cobra.Command, svc *service.Service, args []string) error {
			records, err := readCSV(ctx, cmd, args[0])
			if err != nil {
				return err
			}
			if label == "" {
				label = labelFor(args[0])
			}
			report, err := svc.Analyze(ctx, label, records)
			if err != nil {
				return err
			}
			if chartPath != "" {
				err := writeFile(chartPath, func(f *os.File) error {
					return svc.Chart(ctx, f, service.ChartKind(chart.kind), label, records, chart.size())
				})
				if err != nil {
					return err
				}
			}
			var sg *service.Suggestion
			if suggest {
				s, err := svc.SuggestReport(ctx, report)
				if err != nil {
					return err
				}
				sg = &s
			}
			return writeReport(cmd.OutOrStdout(), c.flags.format, report, sg)
		}),
	}
	cmd.Flags().StringVarP(&label, "label", "l", "", "video label (default: file name)")
	cmd.Flags().BoolVar(&suggest, "suggest", false, "ask the suggestion model for advice")
	cmd.Flags().StringVar(&chartPath, "chart", "", "also write a PNG chart to this path")
	chart.register(cmd)
	return cmd
}

func (c *cli) compareCommand() *cobra.Command {
	var (
		labelA, labelB string
		suggest        bool
		chartPath      string
		size           chartFlags
	)
	cmd := &cobra.Command{
		Use:   "compare YOURS.csv THEIRS.csv",
		Short: "Analyze two exports side by side",
		Long:  "Analyze two exports side by side. A side that fails is reported and the other is still shown; the command fails only when both do.",
		Args:  cobra.ExactArgs(2),
		RunE: c.withService(func(ctx context.Context, cmd *cobra.Command, svc *service.Service, args []string) error {
			a := readInput(ctx, cmd, args[0], labelA)
			b := readInput(ctx, cmd, args[1], labelB)
			cmp, err := svc.Compare(ctx, a, b)
			if err != nil {
				return err
			}
			if chartPath != "" && (cmp.A.OK() || cmp.B.OK()) {
				err := writeFile(chartPath, func(f *os.File) error {
					return svc.CompareChart(ctx, f, a, b, size.size())
				})
				if err != nil {
					return err
				}
			}
			var sg *service.Suggestion
			if suggest {
				s, err := svc.SuggestComparison(ctx, cmp)
				if err != nil {
					return err
				}
				sg = &s
			}
			if err := writeComparison(cmd.OutOrStdout(), c.flags.format, cmp, sg); err != nil {
				return err
			}
			if !cmp.A.OK() && !cmp.B.OK() {
				return ErrBothFailed
			}
			return nil
		}),
	}
	cmd.Flags().StringVar(&labelA, "label-a", "", "label for the first video (default: file name)")
	cmd.Flags().StringVar(&labelB, "label-b", "", "label for the second video (default: file name)")
	cmd.Flags().BoolVar(&suggest, "suggest", false, "ask the suggestion model for advice")
	cmd.Flags().StringVar(&chartPath, "chart", "", "also write an overlay PNG chart to this path")
	cmd.Flags().IntVar(&size.width, "width", 0, "chart width in pixels (default 1024)")
	cmd.Flags().IntVar(&size.height, "height", 0, "chart height in pixels (default 480)")
	return cmd
}

func (c *cli) scrapeCommand() *cobra.Command {
	var (
		label   string
		suggest bool
	)
	cmd := &cobra.Command{
		Use:   "scrape URL",
		Short: "Scrape retention values from a page and analyze them",
		Args:  cobra.ExactArgs(1),
		RunE: c.withService(func(ctx context.Context, cmd *cobra.Command, svc *service.Service, args []string) error {
			report, err := svc.AnalyzeURL(ctx, label, args[0])
			if err != nil {
				return err
			}
			var sg *service.Suggestion
			if suggest {
				s, err := svc.SuggestReport(ctx, report)
				if err != nil {
					return err
				}
				sg = &s
			}
			return writeReport(cmd.OutOrStdout(), c.flags.format, report, sg)
		}),
	}
	cmd.Flags().StringVarP(&label, "label", "l", "", "video label (default: the URL)")
	cmd.Flags().BoolVar(&suggest, "suggest", false, "ask the suggestion model for advice")
	return cmd
}

func (c *cli) chartCommand() *cobra.Command {
	var (
		label string
		out   string
		chart chartFlags
	)
	cmd := &cobra.Command{
		Use:   "chart FILE.csv --out chart.png",
		Short: "Draw a PNG chart of one export",
		Args:  cobra.ExactArgs(1),
		RunE: c.withService(func(ctx context.Context, cmd *cobra.Command, svc *service.Service, args []string) error {
			if out == "" {
				return ErrNoOutput
			}
			records, err := readCSV(ctx, cmd, args[0])
			if err != nil {
				return err
			}
			if label == "" {
				label = labelFor(args[0])
			}
			if err := writeFile(out, func(f *os.File) error {
				return svc.Chart(ctx, f, service.ChartKind(chart.kind), label, records, chart.size())
			}); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
			return err
		}),
	}
	cmd.Flags().StringVarP(&label, "label", "l", "", "chart title (default: file name)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output PNG path")
	chart.register(cmd)
	return cmd
}

func readCSV(ctx context.Context, cmd *cobra.Command, path string) ([]model.RawRecord, error) {
	if path == stdinName {
		return ingest.NewCSVReader(cmd.InOrStdin()).Records(ctx)
	}
	return ingest.NewCSVFile(path).Records(ctx)
}

// readInput never fails: a file that cannot be read becomes a failed side.
func readInput(ctx context.Context, cmd *cobra.Command, path, label string) engine.Input {
	if label == "" {
		label = labelFor(path)
	}
	records, err := readCSV(ctx, cmd, path)
	return engine.Input{Label: label, Records: records, Err: err}
}

// labelFor names a video after its file, without the extension.
func labelFor(path string) string {
	if path == stdinName {
		return "stdin"
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// writeFile creates path, runs fill and removes the file again if fill fails.
func writeFile(path string, fill func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fill(f); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return errors.Join(err, os.Remove(path))
	}
	return nil
}
