// Command jamble perturbs Japanese QA datasets with controlled noise
// and evaluates model robustness on the result.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kmorishita/jamble/infrastructure/oracles"
	"github.com/kmorishita/jamble/infrastructure/tagger"
	"github.com/kmorishita/jamble/internal/application"
	"github.com/kmorishita/jamble/internal/ports"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	var verbose bool

	root := &cobra.Command{
		Use:           "jamble",
		Short:         "Japanese QA dataset perturbation and robustness evaluation",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "jamble.yaml", "configuration file")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(newGenerateCmd(&configPath, &verbose))
	root.AddCommand(newEvaluateCmd(&configPath, &verbose))
	return root
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func newGenerateCmd(configPath *string, verbose *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Apply the configured attacks and write one perturbed dataset per attack",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger, err := newLogger(*verbose)
			if err != nil {
				return err
			}
			defer logger.Sync()

			cfg, err := application.LoadConfig(*configPath)
			if err != nil {
				return err
			}
			deps, err := buildDependencies(ctx, cfg, logger)
			if err != nil {
				return err
			}
			registry, err := application.NewRegistry(deps)
			if err != nil {
				return err
			}
			driver, err := application.NewDriver(registry, logger,
				application.NewMetrics(prometheus.DefaultRegisterer), cfg.Driver)
			if err != nil {
				return err
			}

			samples, err := application.LoadDataset(cfg.Dataset)
			if err != nil {
				return err
			}
			return driver.Run(ctx, samples, cfg.Attacks)
		},
	}
}

func newEvaluateCmd(configPath *string, verbose *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "evaluate [files...]",
		Short: "Score the QA model on dataset files; defaults to the generated artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger, err := newLogger(*verbose)
			if err != nil {
				return err
			}
			defer logger.Sync()

			cfg, err := application.LoadConfig(*configPath)
			if err != nil {
				return err
			}
			if cfg.QAModel == nil {
				return fmt.Errorf("evaluate requires a qa_model section in the configuration")
			}
			if cfg.Eval == nil {
				return fmt.Errorf("evaluate requires an eval section in the configuration")
			}

			model, err := oracles.NewQAModelClient(*cfg.QAModel)
			if err != nil {
				return err
			}
			tg, err := tagger.NewClient(cfg.Tagger)
			if err != nil {
				return err
			}
			runner, err := application.NewEvalRunner(model, tg, logger, *cfg.Eval)
			if err != nil {
				return err
			}

			paths := args
			if len(paths) == 0 {
				paths, err = filepath.Glob(filepath.Join(cfg.Driver.OutputDir, "*.json"))
				if err != nil {
					return err
				}
			}
			summaries, err := runner.Run(ctx, paths)
			if err != nil {
				return err
			}
			for _, s := range summaries {
				fmt.Printf("%-30s %-16s EM %6.2f  F1 %6.2f  (n=%d)\n",
					s.Filename, s.AttackType, s.EM, s.F1, s.NumSamples)
			}
			return nil
		},
	}
}

// buildDependencies wires the external oracles the configuration
// enables. Only the tagger is mandatory; every other dependency is
// optional and its absence just removes the attacks that need it.
func buildDependencies(ctx context.Context, cfg application.Config, logger *zap.Logger) (application.Dependencies, error) {
	deps := application.Dependencies{}

	tg, err := tagger.NewClient(cfg.Tagger)
	if err != nil {
		return deps, err
	}
	deps.Tagger = tg

	if cfg.FillMask != nil {
		masker, err := oracles.NewFillMaskClient(*cfg.FillMask)
		if err != nil {
			return deps, err
		}
		deps.FillMasker = masker
	}

	if cfg.Lexicon != nil {
		lexicon, err := oracles.NewSKKLexicon(ctx, *cfg.Lexicon)
		if err != nil {
			// Degraded, not fatal: homophone targets will all skip.
			logger.Warn("homophone lexicon unavailable, homophone attack will not perturb",
				zap.Error(err))
		} else {
			logger.Info("homophone lexicon loaded", zap.Int("entries", lexicon.Len()))
		}
		deps.Lexicon = lexicon
	}

	if cfg.Translation != nil {
		forward, back, err := buildTranslators(*cfg.Translation)
		if err != nil {
			return deps, err
		}
		deps.Forward, deps.Back = forward, back
	}

	return deps, nil
}

func buildTranslators(cfg application.TranslationConfig) (forward, back ports.Translator, err error) {
	if cfg.Chat == nil {
		if forward, err = oracles.NewHTTPTranslator(*cfg.Forward); err != nil {
			return nil, nil, err
		}
		if back, err = oracles.NewHTTPTranslator(*cfg.Back); err != nil {
			return nil, nil, err
		}
		return forward, back, nil
	}

	model, err := oracles.NewChatModel(*cfg.Chat)
	if err != nil {
		return nil, nil, err
	}
	if forward, err = oracles.NewChatTranslator(model, oracles.TranslatorConfig{
		Source:            cfg.Source,
		Target:            cfg.Pivot,
		RequestsPerSecond: cfg.RequestsPerSecond,
	}); err != nil {
		return nil, nil, err
	}
	if back, err = oracles.NewChatTranslator(model, oracles.TranslatorConfig{
		Source:            cfg.Pivot,
		Target:            cfg.Source,
		RequestsPerSecond: cfg.RequestsPerSecond,
	}); err != nil {
		return nil, nil, err
	}
	return forward, back, nil
}
