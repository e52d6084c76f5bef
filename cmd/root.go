// =============================================================================
// BKHD to UpSSE Converter - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands are attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (upsse)
//   ├── processCmd   (upsse process)
//   ├── locationsCmd (upsse locations)
//   └── versionCmd   (upsse version)
//
// CONFIGURATION:
//   The root command owns the global flags (--config, --verbose) and the
//   shared setup every subcommand needs: main config, policy, logger and the
//   reference data provider.
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/bkhd-upsse-converter/internal/config"
	"github.com/ginjaninja78/bkhd-upsse-converter/internal/refdata"
	"github.com/ginjaninja78/bkhd-upsse-converter/pkg/utils"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
var cfgFile string

// verbose switches the logger to debug level.
var verbose bool

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

var rootCmd = &cobra.Command{
	Use:   "upsse",
	Short: "BKHD to UpSSE Converter - turn invoice listings into ledger import files",
	Long: `BKHD to UpSSE Converter reads the daily sales-invoice listing (BKHD) of a
fuel station and produces the UpSSE accounting import workbook.

Key Features:
  - Day/month swap detection for the transaction date
  - Listing checks against the station's invoice symbol and address limits
  - Environmental protection tax rows for petroleum products
  - Per-product summary invoices for buyers who declined an invoice
  - Two-period output when prices changed during the day

Example Usage:
  upsse process --listing BKHD.xlsx --location "Nguyễn Huệ"
  upsse process --listing BKHD.xlsx --location "Nguyễn Huệ" --periods 2 --boundary 0001234
  upsse locations`,

	SilenceUsage:  true,
	SilenceErrors: true,

	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		printError(os.Stderr, err.Error())
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"upsse.yaml",
		"Path to the main configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}

// =============================================================================
// SHARED SETUP
// =============================================================================

// environment is what every command needs before doing real work.
type environment struct {
	config   *config.MainConfig
	policy   config.Policy
	logger   *zap.Logger
	provider *refdata.Provider
}

// loadEnvironment reads configuration and builds the logger and provider.
func loadEnvironment() (*environment, error) {
	mainConfig, err := config.LoadMainConfig(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load main config: %w", err)
	}

	logCfg := utils.LoggerConfig{
		Level:      mainConfig.Log.Level,
		Format:     mainConfig.Log.Format,
		OutputPath: mainConfig.Log.OutputPath,
	}
	if verbose {
		logCfg.Level = "debug"
	}
	logger, err := utils.NewLogger(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	policy, err := config.LoadPolicy(mainConfig.PolicyFile)
	if err != nil {
		return nil, err
	}

	return &environment{
		config:   mainConfig,
		policy:   policy,
		logger:   logger,
		provider: refdata.NewProvider(mainConfig.CacheTTL, logger),
	}, nil
}

// bundle loads the reference data named in the main config.
func (e *environment) bundle() (*refdata.Bundle, error) {
	return e.provider.Bundle(refdata.Sources{
		DataFile:     e.config.Reference.DataFile,
		ProductFile:  e.config.Reference.ProductFile,
		CustomerFile: e.config.Reference.CustomerFile,
	})
}
