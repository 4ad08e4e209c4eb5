// Package engine runs the per-video retention pipeline and pairs two runs
// into a comparison.
package engine

import (
	"strconv"
	"sync"

	"github.com/google/uuid"

	"github.com/okian/retention/internal/domain/analysis"
	"github.com/okian/retention/internal/domain/classify"
	"github.com/okian/retention/internal/domain/model"
	"github.com/okian/retention/internal/domain/validate"
)

// reportNamespace scopes the deterministic report IDs.
var reportNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/okian/retention/report"))

// Input is one video's raw series and display label. Err marks an input
// that could not be read; its side of a comparison fails with Err.
type Input struct {
	Label   string
	Records []model.RawRecord
	Err     error
}

// Engine is immutable after New and safe for concurrent use.
type Engine struct {
	validator  *validate.Validator
	policy     analysis.Policy
	classifier *classify.Classifier
}

// New builds an engine with default validator, policy and classifier.
func New(opts ...Option) *Engine {
	e := &Engine{
		validator:  validate.New(),
		policy:     analysis.DefaultPolicy(),
		classifier: classify.New(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Policy returns the analysis policy in use.
func (e *Engine) Policy() analysis.Policy { return e.policy }

// Validate runs only the validation stage.
func (e *Engine) Validate(records []model.RawRecord) (model.Series, error) {
	return e.validator.Validate(records)
}

// Analyze validates records and builds the report. Validation errors are
// returned as-is (SchemaError, ErrEmptySeries, ValueError).
func (e *Engine) Analyze(label string, records []model.RawRecord) (*model.Report, error) {
	s, err := e.validator.Validate(records)
	if err != nil {
		return nil, err
	}
	return e.AnalyzeSeries(label, s), nil
}

// AnalyzeSeries builds the report for an already validated series.
// Metrics without data are reported, never defaulted.
func (e *Engine) AnalyzeSeries(label string, s model.Series) *model.Report {
	summary := analysis.Summarize(s, e.policy)
	chapters := analysis.Chapters(s)

	r := &model.Report{
		ID:          SeriesID(s),
		Label:       label,
		SampleCount: s.Len(),
		Metrics:     summary,
		Dropoffs:    analysis.Dropoffs(s, e.policy),
		Highlights:  analysis.Highlights(s, e.policy),
		Chapters:    chapters,
		Bands: model.Bands{
			EarlyDropoff:   bandOrMarker(e.classifier.EarlyDropoff(summary.EarlyDropoff)),
			FinalRetention: bandOrMarker(e.classifier.FinalRetention(summary.FinalRetention)),
		},
	}

	r.InsufficientData = summary.Undefined()
	for _, c := range chapters.Empty() {
		r.InsufficientData = append(r.InsufficientData, "chapter:"+c.String())
	}
	return r
}

// Compare runs both pipelines concurrently. Each side only reads its own
// input and writes its own outcome; a failure or panic on one side is
// recorded there and the other side still completes.
func (e *Engine) Compare(a, b Input) model.Comparison {
	var (
		cmp model.Comparison
		wg  sync.WaitGroup
	)
	wg.Add(2) //nolint:mnd // two sides
	go func() {
		defer wg.Done()
		cmp.A = e.outcome(a)
	}()
	go func() {
		defer wg.Done()
		cmp.B = e.outcome(b)
	}()
	wg.Wait()
	return cmp
}

// Outcome runs one pipeline and captures its error or panic.
func (e *Engine) Outcome(in Input) model.Outcome { return e.outcome(in) }

func (e *Engine) outcome(in Input) (out model.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = model.Outcome{Label: in.Label, Err: &panicError{label: in.Label, value: r}}
		}
	}()
	if in.Err != nil {
		return model.Outcome{Label: in.Label, Err: in.Err}
	}
	report, err := e.Analyze(in.Label, in.Records)
	return model.Outcome{Label: in.Label, Report: report, Err: err}
}

func bandOrMarker(b model.Band, err error) model.Band {
	if err != nil {
		return model.BandInsufficientData
	}
	return b
}

// SeriesID derives a stable UUIDv5 from the ordered samples.
func SeriesID(s model.Series) string {
	buf := make([]byte, 0, s.Len()*16) //nolint:mnd // rough bytes per sample
	for i := 0; i < s.Len(); i++ {
		x := s.At(i)
		buf = strconv.AppendFloat(buf, x.Timestamp, 'g', -1, 64)
		buf = append(buf, ',')
		buf = strconv.AppendFloat(buf, x.Retention, 'g', -1, 64)
		buf = append(buf, ';')
	}
	return uuid.NewSHA1(reportNamespace, buf).String()
}
