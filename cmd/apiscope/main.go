package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/loykin/apiscope/cmd/apiscope/commands"
	"github.com/loykin/apiscope/internal/common"
	"github.com/loykin/apiscope/internal/constants"
)

var rootCmd = &cobra.Command{
	Use:           "apiscope",
	Short:         "Inspect API test execution contexts and their HTTP client configuration",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if viper.GetBool("no_color") {
			color.NoColor = true
		}
	},
}

func init() {
	// Defaults
	v := viper.GetViper()
	v.SetDefault("config", "")
	v.SetDefault("settings", "")
	v.SetDefault("base_dir", "")
	v.SetDefault("class", "")
	v.SetDefault("no_color", false)

	// Environment variables support: APISCOPE_CONFIG, APISCOPE_SETTINGS, ...
	v.SetEnvPrefix(constants.EnvPrefix)
	v.AutomaticEnv()
	// Bind flags via Cobra and then bind to Viper
	rootCmd.PersistentFlags().String("config", v.GetString("config"), "bootstrap configuration file (default: apiscope-config.yaml under --base-dir)")
	rootCmd.PersistentFlags().String("settings", v.GetString("settings"), "path to a CLI settings yaml (logging, base_dir, client_class, vars)")
	rootCmd.PersistentFlags().Bool("no-color", v.GetBool("no_color"), "disable colored output")
	commands.InspectCmd.Flags().String("base-dir", v.GetString("base_dir"), "directory classpath: reads resolve against (default: working directory)")
	commands.InspectCmd.Flags().String("class", v.GetString("class"), "http client class for the root context")
	commands.InspectCmd.Flags().StringArray("set", nil, "configure statement key=expr, applied in order (repeatable)")

	_ = v.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = v.BindPFlag("settings", rootCmd.PersistentFlags().Lookup("settings"))
	_ = v.BindPFlag("no_color", rootCmd.PersistentFlags().Lookup("no-color"))
	_ = v.BindPFlag("base_dir", commands.InspectCmd.Flags().Lookup("base-dir"))
	_ = v.BindPFlag("class", commands.InspectCmd.Flags().Lookup("class"))

	rootCmd.AddCommand(commands.InspectCmd)
	rootCmd.AddCommand(commands.KeysCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		common.LogError("command execution failed", err)
		os.Exit(1)
	}
}
