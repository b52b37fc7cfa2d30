package application

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/kmorishita/jamble/internal/domain"
	"github.com/kmorishita/jamble/internal/evaluation"
	"github.com/kmorishita/jamble/internal/ports"
)

// EvalConfig holds the evaluation-run settings.
type EvalConfig struct {
	// Field is the original question field; perturbed variants are
	// detected per file as Field + "_perturbed_<SUFFIX>".
	Field string `yaml:"field" validate:"required"`

	// BatchSize is forwarded to the evaluator.
	BatchSize int `yaml:"batch_size" validate:"min=0"`

	// SummaryPath receives the JSON array of per-file summaries.
	SummaryPath string `yaml:"summary_path" validate:"required"`

	// DetailPath, when set, receives the per-sample prediction records
	// of every file.
	DetailPath string `yaml:"detail_path"`
}

// EvalRunner evaluates a set of dataset files (original or perturbed)
// against the QA model and writes the aggregate report.
type EvalRunner struct {
	model  ports.QAModel
	tagger ports.Tagger
	logger *zap.Logger
	cfg    EvalConfig
}

// NewEvalRunner wires the evaluation runner.
func NewEvalRunner(model ports.QAModel, tagger ports.Tagger, logger *zap.Logger, cfg EvalConfig) (*EvalRunner, error) {
	if model == nil {
		return nil, fmt.Errorf("qa model cannot be nil")
	}
	if tagger == nil {
		return nil, fmt.Errorf("tagger cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Field == "" {
		return nil, fmt.Errorf("field cannot be empty")
	}
	if cfg.SummaryPath == "" {
		return nil, fmt.Errorf("summary path cannot be empty")
	}
	return &EvalRunner{model: model, tagger: tagger, logger: logger, cfg: cfg}, nil
}

// Run evaluates every file and writes the summary report, plus the
// detailed per-sample log when configured. A failing file is logged and
// skipped; the report covers the files that evaluated cleanly.
func (r *EvalRunner) Run(ctx context.Context, paths []string) ([]domain.EvalSummary, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no dataset files to evaluate")
	}

	summaries := make([]domain.EvalSummary, 0, len(paths))
	var details []domain.PredictionRecord
	for _, path := range paths {
		records, summary, err := r.evaluateFile(ctx, path)
		if err != nil {
			r.logger.Error("evaluation failed for file, continuing",
				zap.String("path", path), zap.Error(err))
			continue
		}
		summaries = append(summaries, summary)
		if r.cfg.DetailPath != "" {
			details = append(details, records...)
		}
	}

	if err := writeJSON(r.cfg.SummaryPath, summaries); err != nil {
		return nil, err
	}
	if r.cfg.DetailPath != "" {
		if err := writeJSON(r.cfg.DetailPath, details); err != nil {
			return nil, err
		}
	}
	return summaries, nil
}

func (r *EvalRunner) evaluateFile(ctx context.Context, path string) ([]domain.PredictionRecord, domain.EvalSummary, error) {
	samples, err := LoadDataset(path)
	if err != nil {
		return nil, domain.EvalSummary{}, err
	}

	field, attackType := r.questionField(samples[0])
	evaluator, err := evaluation.NewEvaluator(r.model, r.tagger, r.logger, evaluation.Config{
		QuestionField: field,
		BatchSize:     r.cfg.BatchSize,
	})
	if err != nil {
		return nil, domain.EvalSummary{}, err
	}
	return evaluator.Evaluate(ctx, filepath.Base(path), attackType, samples)
}

// questionField picks the perturbed variant of the question field when
// the file carries one, falling back to the original. The suffix after
// the perturbed-field marker names the attack in the report.
func (r *EvalRunner) questionField(sample domain.Sample) (field, attackType string) {
	prefix := r.cfg.Field + "_perturbed_"
	for key := range sample {
		if strings.HasPrefix(key, prefix) {
			return key, strings.TrimPrefix(key, prefix)
		}
	}
	return r.cfg.Field, "original"
}
