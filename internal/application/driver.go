package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kmorishita/jamble/internal/domain"
)

// DriverConfig holds the batch-generation settings.
type DriverConfig struct {
	// Field is the sample field every attack perturbs.
	Field string `yaml:"field" validate:"required"`

	// OutputDir receives one <attack>.json artifact per attack.
	OutputDir string `yaml:"output_dir" validate:"required"`

	// Seed is the master seed; each sample's rng derives from it and
	// the sample ordinal, so runs replay deterministically regardless
	// of scheduling.
	Seed int64 `yaml:"seed"`

	// Concurrency bounds the in-flight samples per attack. Zero selects
	// DefaultConcurrency.
	Concurrency int `yaml:"concurrency" validate:"min=0"`
}

// DefaultConcurrency is the per-attack sample parallelism bound.
const DefaultConcurrency = 8

// Metrics holds the driver's Prometheus instruments.
type Metrics struct {
	samplesPerturbed *prometheus.CounterVec
	attacksCompleted prometheus.Counter
	attacksFailed    *prometheus.CounterVec
}

// NewMetrics registers the driver metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		samplesPerturbed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "perturbation_samples_total",
			Help: "Samples perturbed, by attack.",
		}, []string{"attack"}),
		attacksCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "perturbation_attacks_completed_total",
			Help: "Attacks that produced an output artifact.",
		}),
		attacksFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "perturbation_attacks_failed_total",
			Help: "Attacks aborted by an error, by attack.",
		}, []string{"attack"}),
	}
	if reg != nil {
		reg.MustRegister(m.samplesPerturbed, m.attacksCompleted, m.attacksFailed)
	}
	return m
}

// Driver runs a set of attacks over one dataset, producing one output
// artifact per attack. Attacks are independent: one failing is logged
// and counted, and the remaining attacks still run. Artifacts already
// written are never touched by later failures.
type Driver struct {
	registry *Registry
	logger   *zap.Logger
	metrics  *Metrics
	cfg      DriverConfig
}

// NewDriver wires the driver.
func NewDriver(registry *Registry, logger *zap.Logger, metrics *Metrics, cfg DriverConfig) (*Driver, error) {
	if registry == nil {
		return nil, fmt.Errorf("registry cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	if cfg.Field == "" {
		return nil, fmt.Errorf("field cannot be empty")
	}
	if cfg.OutputDir == "" {
		return nil, fmt.Errorf("output directory cannot be empty")
	}
	if cfg.Concurrency == 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	return &Driver{registry: registry, logger: logger, metrics: metrics, cfg: cfg}, nil
}

// LoadDataset reads a JSON array of samples.
func LoadDataset(path string) ([]domain.Sample, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	var samples []domain.Sample
	if err := json.Unmarshal(data, &samples); err != nil {
		return nil, fmt.Errorf("decode dataset %s: %w", path, err)
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("%s: %w", path, domain.ErrEmptyDataset)
	}
	return samples, nil
}

// AttackRequest names one attack to run, with optional parameter
// overrides.
type AttackRequest struct {
	Name      string    `yaml:"name" validate:"required"`
	Overrides Overrides `yaml:"overrides"`
}

// Run executes every requested attack over the dataset. A failing
// attack never stops the others and never touches artifacts already
// written, but it does surface in the returned error so the process
// exits non-zero; conditions that invalidate the whole run (bad
// configuration, unwritable output) fail before any attack starts.
func (d *Driver) Run(ctx context.Context, samples []domain.Sample, requests []AttackRequest) error {
	runID := uuid.NewString()
	logger := d.logger.With(zap.String("run_id", runID))

	// Field presence is a configuration error; fail before any attack
	// rather than midway through the artifact set.
	for _, sample := range samples {
		if _, ok := sample.Text(d.cfg.Field); !ok {
			return fmt.Errorf("sample %q: %w: %s", sample.ID(), domain.ErrMissingField, d.cfg.Field)
		}
	}
	if err := os.MkdirAll(d.cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	logger.Info("perturbation run starting",
		zap.Int("samples", len(samples)),
		zap.Int("attacks", len(requests)),
		zap.Int64("seed", d.cfg.Seed),
	)

	var failures []error
	for _, req := range requests {
		if err := d.runAttack(ctx, logger, samples, req); err != nil {
			logger.Error("attack failed, continuing with remaining attacks",
				zap.String("attack", req.Name), zap.Error(err))
			d.metrics.attacksFailed.WithLabelValues(req.Name).Inc()
			failures = append(failures, fmt.Errorf("attack %q: %w", req.Name, err))
			continue
		}
		d.metrics.attacksCompleted.Inc()
	}
	return errors.Join(failures...)
}

func (d *Driver) runAttack(ctx context.Context, logger *zap.Logger, samples []domain.Sample, req AttackRequest) error {
	attack, err := d.registry.Build(req.Name, req.Overrides)
	if err != nil {
		return err
	}

	out := make([]domain.Sample, len(samples))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.cfg.Concurrency)
	for i, sample := range samples {
		g.Go(func() error {
			text, _ := sample.Text(d.cfg.Field)

			// One rng per sample, derived from the master seed and the
			// sample's position. Replays are deterministic even though
			// goroutine scheduling is not.
			rng := rand.New(rand.NewSource(d.cfg.Seed + int64(i)))
			perturbed, err := attack.Perturb(ctx, rng, text)
			if err != nil {
				return fmt.Errorf("sample %q: %w", sample.ID(), err)
			}

			clone := sample.Clone()
			clone.SetPerturbed(d.cfg.Field, attack.Suffix(), perturbed)
			out[i] = clone
			d.metrics.samplesPerturbed.WithLabelValues(req.Name).Inc()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	path := filepath.Join(d.cfg.OutputDir, req.Name+".json")
	if err := writeJSON(path, out); err != nil {
		return err
	}
	logger.Info("attack complete",
		zap.String("attack", req.Name),
		zap.String("suffix", attack.Suffix()),
		zap.String("output", path),
		zap.Int("samples", len(out)),
	)
	return nil
}

// writeJSON writes v through a temp file so a failed run never leaves a
// truncated artifact.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".artifact-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
