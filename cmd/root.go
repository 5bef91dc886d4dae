package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pybridge-dev/pybridge/cmd/lint"
	"github.com/pybridge-dev/pybridge/cmd/refactor"
	"github.com/pybridge-dev/pybridge/cmd/version"
	"github.com/pybridge-dev/pybridge/pkg/shared/config"
)

var (
	cfgFile   string
	AppConfig *config.Config
	rootCmd   = &cobra.Command{
		Use:                   "pybridge [command]",
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		Short:                 "Pybridge connects text editors to Python linting and refactoring tools.",
		Long: `Pybridge runs command-line Python linters and turns their output into
	structured diagnostics, and drives a Python refactoring helper to apply
	automated code changes such as adding imports and extracting variables or methods.
	`,
	}
)

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is config.yml)")
	rootCmd.AddCommand(lint.LintCmd)
	rootCmd.AddCommand(refactor.RefactorCmd)
	rootCmd.AddCommand(version.NewVersionCmd())
}

func Execute() error {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		return err
	}
	return nil
}

func initConfig() {
	var err error

	if cfgFile == "" {
		cfgFile = "config.yml"
	}
	AppConfig, err = config.LoadConfig(cfgFile)
	if err != nil {
		fmt.Printf("failed to initialize the config file - %v \n", err)
		os.Exit(1)
	}
	if err := config.ValidateConfig(AppConfig); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	lint.Init(AppConfig)
	refactor.Init(AppConfig)
}
