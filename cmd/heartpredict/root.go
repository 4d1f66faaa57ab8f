package main

import (
	"errors"
	"io/fs"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"heartpredict/config"
	"heartpredict/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

const defaultConfigPath = "config.yaml"

type rootOptions struct {
	configPath string
	modelsDir  string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "heartpredict",
		Short:         "Heart disease prediction with four pre-trained classifiers",
		Long:          "heartpredict runs Decision Tree, Logistic Regression, Random Forest and\nSupport Vector Machine classifiers over clinical records, from a web form,\nan uploaded CSV or the command line.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", defaultConfigPath, "Path to YAML config file")
	root.PersistentFlags().StringVar(&opts.modelsDir, "models-dir", "", "Directory holding the model artifacts (overrides config)")

	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newPredictCmd(opts))
	root.AddCommand(newModelsCmd(opts))
	return root
}

// load reads the config file. A missing default config file falls back to
// built-in defaults; an explicitly named one must exist.
func (o *rootOptions) load(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("config") {
		cfg, err = config.Default(), nil
	}
	if err != nil {
		return nil, err
	}
	if o.modelsDir != "" {
		cfg.Models.Dir = o.modelsDir
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	return logging.New(logging.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		JSON:       cfg.Log.JSON,
	})
}
