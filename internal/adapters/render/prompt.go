package render

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/okian/retention/internal/domain/model"
)

var funcs = template.FuncMap{
	"pct": func(m model.Metric) string {
		if !m.Defined {
			return "n/a"
		}
		return fmt.Sprintf("%.2f%%", m.Value)
	},
	"num": func(v float64) string { return fmt.Sprintf("%.2f", v) },
	"describe": func(err error) model.ErrorDetail {
		if err == nil {
			return model.ErrorDetail{Kind: "internal", Message: "no report"}
		}
		return model.DescribeError(err)
	},
	"join": strings.Join,
}

const reportBlock = `{{define "report"}}- Average Retention Score: {{pct .Metrics.AverageRetention}}
- Early Drop-Off: {{pct .Metrics.EarlyDropoff}} ({{.Bands.EarlyDropoff}})
- Final Retention: {{pct .Metrics.FinalRetention}} ({{.Bands.FinalRetention}})
- High Drop-Off Points:{{range .Dropoffs}} [t={{num .Sample.Timestamp}}s retention={{num .Sample.Retention}}% change={{num .Delta}}]{{else}} none{{end}}
- High Retention Moments:{{range .Highlights}} [t={{num .Timestamp}}s retention={{num .Retention}}%]{{else}} none{{end}}
- Chapter-based retention:{{range .Chapters}} {{.Chapter}}={{pct .Average}}{{end}}
{{- if .InsufficientData}}
- Insufficient data: {{join .InsufficientData ", "}}{{end}}
{{end}}`

var singleTmpl = template.Must(template.New("single").Funcs(funcs).Parse(reportBlock + `Analyze the retention data for {{.Label}}:
{{template "report" .}}
Provide improvement strategies such as better hooks, pacing adjustments, pattern interrupters, and content tweaks.
`))

var compareTmpl = template.Must(template.New("compare").Funcs(funcs).Parse(reportBlock + `{{define "side"}}{{if .Report}}{{template "report" .Report}}{{else}}{{with describe .Err}}- No report: {{.Kind}}: {{.Message}}
{{end}}{{end}}{{end}}Compare the retention data of these two videos:
* {{.A.Label}}:
{{template "side" .A}}
* {{.B.Label}}:
{{template "side" .B}}
Provide an in-depth analysis of what the competitor is doing better and what improvements should be made to increase retention in your video.
`))

var textTmpl = template.Must(template.New("text").Funcs(funcs).Parse(reportBlock + `{{.Label}} ({{.SampleCount}} samples, id {{.ID}})
{{template "report" .}}`))

// Prompt builds the suggestion prompt for one report.
func Prompt(r *model.Report) (string, error) {
	if r == nil {
		return "", ErrNoData
	}
	var b strings.Builder
	if err := singleTmpl.Execute(&b, r); err != nil {
		return "", fmt.Errorf("prompt: %w", err)
	}
	return b.String(), nil
}

// ComparisonPrompt builds the suggestion prompt for a comparison. A failed
// side is described by its error so the model still sees the other side.
func ComparisonPrompt(c model.Comparison) (string, error) {
	if !c.A.OK() && !c.B.OK() {
		return "", ErrNoData
	}
	c.A.Label = sideLabel(c.A, "Your Video")
	c.B.Label = sideLabel(c.B, "Competitor's Video")
	var b strings.Builder
	if err := compareTmpl.Execute(&b, c); err != nil {
		return "", fmt.Errorf("comparison prompt: %w", err)
	}
	return b.String(), nil
}

// Text writes a human-readable summary of one report.
func Text(w io.Writer, r *model.Report) error {
	if r == nil {
		return ErrNoData
	}
	return textTmpl.Execute(w, r)
}

func sideLabel(o model.Outcome, fallback string) string {
	switch {
	case o.Label != "":
		return o.Label
	case o.Report != nil && o.Report.Label != "":
		return o.Report.Label
	default:
		return fallback
	}
}
