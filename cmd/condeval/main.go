// Package main implements the condeval CLI: eval, run, check and
// explain over the conditional-expression evaluator and block-control
// state machine.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/outpost-build/condeval/internal/config"
	"github.com/outpost-build/condeval/internal/logging"
	"github.com/outpost-build/condeval/internal/policystore"
)

var (
	verbose  bool
	cfgPath  string
	varsPath string
	cfg      *config.Config
	logger   *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "condeval",
	Short: "Evaluator and block-control driver for if()/elseif()/else()/endif() conditionals",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}

		path := cfgPath
		if path == "" {
			wd, _ := os.Getwd()
			path = config.Discover(wd)
		}
		if path == "" {
			cfg = config.DefaultConfig()
		} else {
			cfg, err = config.Load(path)
			if err != nil {
				return err
			}
		}
		if verbose {
			cfg.Logging.DebugMode = true
		}

		if err := logging.Initialize(cfg.Logging.Dir, logging.Config{
			DebugMode:  cfg.Logging.DebugMode,
			Categories: cfg.Logging.Categories,
			Level:      cfg.Logging.Level,
		}); err != nil {
			fmt.Fprintf(os.Stderr, "warning: file logging not initialized: %v\n", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func policyDefaults() policystore.Defaults {
	return policystore.Defaults{
		AutoDeref:    parseStatus(cfg.Policy.AutoDeref),
		QuotedDemote: parseStatus(cfg.Policy.QuotedDemote),
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to .condeval.yaml (default: discovered)")
	rootCmd.PersistentFlags().StringVar(&varsPath, "vars", "", "path to a YAML variable fixture")

	rootCmd.AddCommand(evalCmd, runCmd, checkCmd, explainCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
