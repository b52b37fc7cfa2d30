package application

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/kmorishita/jamble/infrastructure/oracles"
	"github.com/kmorishita/jamble/infrastructure/tagger"
)

// Package-level validator instance for configuration validation.
var validate = validator.New()

// TranslationConfig configures the back-translation legs. Exactly one
// mode must be selected: a chat provider shared by both directions
// (prompted translation), or one fixed-direction inference endpoint per
// leg.
type TranslationConfig struct {
	Chat *oracles.ChatConfig `yaml:"chat"`

	// Forward translates source→pivot, Back pivot→source. Both must be
	// set together.
	Forward *oracles.HTTPTranslatorConfig `yaml:"forward"`
	Back    *oracles.HTTPTranslatorConfig `yaml:"back"`

	// Source is the dataset language; Pivot is the round-trip language.
	// Only the chat mode uses them (endpoint models are fixed-pair).
	Source string `yaml:"source"`
	Pivot  string `yaml:"pivot"`

	// RequestsPerSecond throttles both legs. Zero disables throttling.
	RequestsPerSecond float64 `yaml:"requests_per_second" validate:"gte=0"`
}

func (c *TranslationConfig) validateMode() error {
	switch {
	case c.Chat != nil && (c.Forward != nil || c.Back != nil):
		return fmt.Errorf("translation: chat and forward/back endpoints are mutually exclusive")
	case c.Chat == nil && (c.Forward == nil || c.Back == nil):
		return fmt.Errorf("translation: requires either a chat section or both forward and back endpoints")
	}
	return nil
}

// Config is the top-level configuration file. Oracle sections are
// optional: a missing section disables the attacks that need it.
type Config struct {
	// Dataset is the input JSON file of QA samples.
	Dataset string `yaml:"dataset" validate:"required"`

	Driver  DriverConfig    `yaml:"driver"`
	Attacks []AttackRequest `yaml:"attacks" validate:"min=1,dive"`
	Eval    *EvalConfig     `yaml:"eval"`

	Tagger      tagger.Config           `yaml:"tagger" validate:"required"`
	FillMask    *oracles.FillMaskConfig `yaml:"fillmask"`
	QAModel     *oracles.QAModelConfig  `yaml:"qa_model"`
	Lexicon     *oracles.SKKConfig      `yaml:"lexicon"`
	Translation *TranslationConfig      `yaml:"translation"`
}

// Configuration defaults.
const (
	DefaultField      = "question"
	DefaultOutputDir  = "out"
	DefaultSourceLang = "Japanese"
	DefaultPivotLang  = "English"
)

// LoadConfig reads and validates the configuration file. Unknown keys
// are rejected: a typoed attack parameter silently using the preset is
// worse than a hard error.
func LoadConfig(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	var cfg Config
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config %s: %w", path, err)
	}
	cfg.applyDefaults()

	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("config validation failed: %w", err)
	}
	if cfg.Translation != nil {
		if err := cfg.Translation.validateMode(); err != nil {
			return Config{}, err
		}
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Driver.Field == "" {
		c.Driver.Field = DefaultField
	}
	if c.Driver.OutputDir == "" {
		c.Driver.OutputDir = DefaultOutputDir
	}
	if c.Eval != nil && c.Eval.Field == "" {
		c.Eval.Field = c.Driver.Field
	}
	if c.Translation != nil {
		if c.Translation.Source == "" {
			c.Translation.Source = DefaultSourceLang
		}
		if c.Translation.Pivot == "" {
			c.Translation.Pivot = DefaultPivotLang
		}
	}
}
