// Package commands implements the CLI commands for csedork.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/csedork/internal/config"
	"github.com/jmylchreest/csedork/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "csedork",
	Short: "Batch dork runner for Google Custom Search Engine result pages",
	Long: `csedork runs a list of search dorks through a hosted Custom Search
Engine page in a real Chrome browser, scoped to one target site, and
appends every result it finds to a plain text report.

Examples:
  # Scope every dork to example.com
  csedork run -w dorks.txt -s example.com

  # Remote word list, headless, fresh report
  csedork run -w https://example.com/dorks.txt -s example.com \
      --headless --overwrite -o example.txt

  # Slower pacing and a longer page timeout
  csedork run -w dorks.txt -s example.com --delay 30 --timeout 60`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Version:       version.String(),
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config file (default $HOME/.csedork.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "only log errors and hide the progress bar")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
}

func initConfig() {
	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".csedork")
		viper.SetConfigType("yaml")
	}

	config.SetDefaults(viper.GetViper())

	// Environment variables
	viper.SetEnvPrefix("CSEDORK")
	viper.AutomaticEnv()

	// Read config file (ignore error if not found)
	_ = viper.ReadInConfig()
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		logError("%v", err)
	}
	return err
}

// logError prints an error message to stderr.
func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}

// logInfo prints an info message to stderr (unless quiet mode).
func logInfo(format string, args ...any) {
	if !viper.GetBool("quiet") {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}
