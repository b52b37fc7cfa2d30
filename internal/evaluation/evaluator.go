package evaluation

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/kmorishita/jamble/internal/domain"
	"github.com/kmorishita/jamble/internal/ports"
)

var tracer = otel.Tracer("evaluation")

// Config holds the evaluator settings.
type Config struct {
	// QuestionField names the sample field used as the model question.
	// Evaluating a perturbed dataset points this at the perturbed field,
	// e.g. "question_perturbed_DCR".
	QuestionField string `yaml:"question_field" validate:"required"`

	// BatchSize bounds one QA inference request. Zero selects
	// DefaultBatchSize.
	BatchSize int `yaml:"batch_size" validate:"min=0"`
}

// DefaultBatchSize is the inference batch bound when none is configured.
const DefaultBatchSize = 16

// Evaluator runs extractive QA over a dataset and scores the decoded
// spans against the gold answers.
type Evaluator struct {
	model  ports.QAModel
	tagger ports.Tagger
	logger *zap.Logger
	cfg    Config
}

// NewEvaluator wires the QA span model and the tagger used for metric
// tokenization.
func NewEvaluator(model ports.QAModel, tagger ports.Tagger, logger *zap.Logger, cfg Config) (*Evaluator, error) {
	if model == nil {
		return nil, fmt.Errorf("qa model cannot be nil")
	}
	if tagger == nil {
		return nil, fmt.Errorf("tagger cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.QuestionField == "" {
		return nil, fmt.Errorf("question field cannot be empty")
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	return &Evaluator{model: model, tagger: tagger, logger: logger, cfg: cfg}, nil
}

// Evaluate scores every sample and returns the per-sample records plus
// the file aggregate. Samples missing the question or context field are
// a configuration error: the caller pointed the evaluator at a field the
// dataset does not carry.
func (e *Evaluator) Evaluate(ctx context.Context, filename, attackType string, samples []domain.Sample) ([]domain.PredictionRecord, domain.EvalSummary, error) {
	ctx, span := tracer.Start(ctx, "Evaluator.Evaluate")
	defer span.End()
	span.SetAttributes(
		attribute.String("eval.filename", filename),
		attribute.String("eval.field", e.cfg.QuestionField),
		attribute.Int("eval.samples", len(samples)),
	)

	if len(samples) == 0 {
		return nil, domain.EvalSummary{}, domain.ErrEmptyDataset
	}

	pairs := make([]ports.QAPair, len(samples))
	for i, sample := range samples {
		question, ok := sample.Text(e.cfg.QuestionField)
		if !ok {
			return nil, domain.EvalSummary{}, fmt.Errorf("sample %q: %w: %s",
				sample.ID(), domain.ErrMissingField, e.cfg.QuestionField)
		}
		passage, ok := sample.Text(domain.FieldContext)
		if !ok {
			return nil, domain.EvalSummary{}, fmt.Errorf("sample %q: %w: %s",
				sample.ID(), domain.ErrMissingField, domain.FieldContext)
		}
		pairs[i] = ports.QAPair{Question: question, Context: passage}
	}

	predictions, err := e.predictBatched(ctx, pairs)
	if err != nil {
		span.RecordError(err)
		return nil, domain.EvalSummary{}, err
	}

	records := make([]domain.PredictionRecord, 0, len(samples))
	var emSum, f1Sum float64
	for i, sample := range samples {
		prediction := DecodeSpan(predictions[i])
		golds := sample.GoldAnswers()

		record, err := e.score(ctx, sample, pairs[i].Question, prediction, golds)
		if err != nil {
			return nil, domain.EvalSummary{}, err
		}
		records = append(records, record)
		emSum += record.EM
		f1Sum += record.F1
	}

	n := float64(len(records))
	summary := domain.EvalSummary{
		Filename:   filename,
		AttackType: attackType,
		EM:         100 * emSum / n,
		F1:         100 * f1Sum / n,
		NumSamples: len(records),
	}
	e.logger.Info("evaluation complete",
		zap.String("filename", filename),
		zap.String("attack_type", attackType),
		zap.Float64("em", summary.EM),
		zap.Float64("f1", summary.F1),
		zap.Int("num_samples", summary.NumSamples),
	)
	return records, summary, nil
}

// predictBatched splits the pairs into inference-sized batches.
func (e *Evaluator) predictBatched(ctx context.Context, pairs []ports.QAPair) ([]ports.SpanPrediction, error) {
	out := make([]ports.SpanPrediction, 0, len(pairs))
	for start := 0; start < len(pairs); start += e.cfg.BatchSize {
		end := start + e.cfg.BatchSize
		if end > len(pairs) {
			end = len(pairs)
		}
		batch, err := e.model.PredictSpans(ctx, pairs[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, batch...)
	}
	return out, nil
}

// score builds one prediction record with both headline metrics and the
// auxiliary fuzzy similarity.
func (e *Evaluator) score(ctx context.Context, sample domain.Sample, question, prediction string, golds []string) (domain.PredictionRecord, error) {
	predTokens, err := TokenizeForScoring(ctx, e.tagger, prediction)
	if err != nil {
		return domain.PredictionRecord{}, err
	}
	goldTokens := make([][]string, len(golds))
	for i, gold := range golds {
		goldTokens[i], err = TokenizeForScoring(ctx, e.tagger, gold)
		if err != nil {
			return domain.PredictionRecord{}, err
		}
	}

	return domain.PredictionRecord{
		ID:           sample.ID(),
		Question:     question,
		Prediction:   prediction,
		GroundTruths: golds,
		EM:           BestEM(prediction, golds),
		F1:           BestF1(predTokens, goldTokens),
		Fuzzy:        BestFuzzy(prediction, golds),
	}, nil
}

// DecodeSpan extracts the answer text from raw span logits: the span
// runs from argmax(start) to argmax(end) inclusive, special tokens are
// skipped, and subword continuation markers are joined back together.
// An inverted span (start past end) decodes to the empty string; the
// model is answering incoherently and the score reflects that.
func DecodeSpan(p ports.SpanPrediction) string {
	start := argmax(p.StartLogits)
	end := argmax(p.EndLogits)
	if start < 0 || end < 0 || start >= len(p.Tokens) {
		return ""
	}
	if end >= len(p.Tokens) {
		end = len(p.Tokens) - 1
	}

	var b strings.Builder
	for i := start; i <= end; i++ {
		if i < len(p.Special) && p.Special[i] {
			continue
		}
		b.WriteString(strings.TrimPrefix(p.Tokens[i], "##"))
	}
	return b.String()
}

func argmax(vals []float64) int {
	if len(vals) == 0 {
		return -1
	}
	best := 0
	for i, v := range vals {
		if v > vals[best] {
			best = i
		}
	}
	return best
}
