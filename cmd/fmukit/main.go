package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/fmukit/internal/config"
	"github.com/san-kum/fmukit/internal/logging"
	"github.com/san-kum/fmukit/internal/models"
)

var (
	configFile string
	dataDir    string
	logLevel   string
	logFormat  string
	standard   string

	cfg     *config.Config
	catalog = models.NewRegistry()
)

// defaultConfigFiles are looked up in the working directory when --config
// is not given.
var defaultConfigFiles = []string{"fmukit.yaml", "fmukit.yml", "fmukit.toml"}

func main() {
	rootCmd := &cobra.Command{
		Use:               "fmukit",
		Short:             "describe, inspect and drive FMI components",
		SilenceUsage:      true,
		PersistentPreRunE: setup,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "project file (yaml or toml)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "run storage directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "log format (console or json)")
	rootCmd.PersistentFlags().StringVar(&standard, "standard", config.DefaultStandard, "FMI standard revision (2.0 or 3.0)")

	rootCmd.AddCommand(
		describeCommand(),
		inspectCommand(),
		simulateCommand(),
		sweepCommand(),
		runsCommand(),
		plotCommand(),
		exportCommand(),
		modelsCommand(),
		presetsCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads the project file, lets explicit flags override it and
// installs the process logger.
func setup(cmd *cobra.Command, _ []string) error {
	var err error
	cfg, err = loadConfig()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("data") {
		cfg.DataDir = dataDir
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = logFormat
	}
	if flags.Changed("standard") {
		cfg.Standard = standard
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	logging.SetLogger(logger)
	logger.Debug("configuration loaded",
		zap.String("model", cfg.Model),
		zap.String("standard", cfg.Standard),
		zap.String("data", cfg.DataDir))
	return nil
}

func loadConfig() (*config.Config, error) {
	if configFile != "" {
		c, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		return c, nil
	}
	for _, name := range defaultConfigFiles {
		c, err := config.Load(name)
		if err == nil {
			return c, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}
	return config.DefaultConfig(), nil
}

// modelName returns the model named on the command line, or the configured
// one.
func modelName(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return cfg.Model
}
