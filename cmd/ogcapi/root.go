package ogcapi

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/edgeflare/ogcapi/pkg/config"
	"github.com/edgeflare/ogcapi/pkg/util"
)

var cfgFile string
var logLevel string
var cfg *config.Config
var rootCmd = &cobra.Command{
	Use:   "ogcapi",
	Short: "ogcapi serves PostGIS tables as OGC API - Features",
	Long:  `ogcapi exposes configured PostGIS tables as feature collections over OGC API - Features - Part 1: Core`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig()
	},
	Run: func(cmd *cobra.Command, args []string) {
		versionFlag, _ := cmd.Flags().GetBool("version")
		if versionFlag {
			fmt.Fprintln(cmd.OutOrStdout(), config.Version)
			return
		}

		// If no subcommand is provided, print help
		cmd.Help()
	},
}

func Main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.toml or $HOME/.config/ogcapi/config.toml)")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "L", util.EnvOr("info", "OGCAPI_LOG_LEVEL", "LOG_LEVEL"), "log at this level (debug, info, warn, error, none disables the access log)")
	rootCmd.PersistentFlags().BoolP("version", "v", false, "Print the version number")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), config.Version)
	},
}

func loadConfig() error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	return nil
}
