package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/picogrid/algorithm-simulations/pkg/algorithms"
	"github.com/picogrid/algorithm-simulations/pkg/config"
	"github.com/picogrid/algorithm-simulations/pkg/logger"
	"github.com/picogrid/algorithm-simulations/pkg/simulation"
)

var (
	cfgFile  string
	settings = config.Defaults()
)

var rootCmd = &cobra.Command{
	Use:   "algosim",
	Short: "Step-by-step algorithm simulator",
	Long: `algosim runs algorithm simulators in the terminal: pick a simulator,
set its controls, then step through the algorithm one move at a time while
its stats, visualizations and log update.`,
	SilenceUsage:      true,
	PersistentPreRunE: initConfig,
}

func init() {
	algorithms.Register(simulation.DefaultRegistry)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.algosim/config.yaml)")
	flags.String("catalog", "", "directory searched for simulator.yaml descriptors")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.Bool("no-color", false, "disable colored output")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(configCmd)
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func configPath() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	return config.DefaultPath()
}

// initConfig merges flags, ALGOSIM_* variables and the config file
func initConfig(cmd *cobra.Command, _ []string) error {
	path, err := configPath()
	if err != nil {
		return err
	}

	v, err := config.NewViper(path)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	for key, flag := range map[string]string{
		config.KeyCatalogDir: "catalog",
		config.KeyLogLevel:   "log-level",
		config.KeyNoColor:    "no-color",
	} {
		if f := flags.Lookup(flag); f != nil && f.Changed {
			if err := v.BindPFlag(key, f); err != nil {
				return fmt.Errorf("failed to bind --%s: %w", flag, err)
			}
		}
	}

	settings = config.FromViper(v)
	logger.SetLevel(logger.ParseLevel(settings.LogLevel))
	logger.SetNoColor(settings.NoColor)
	return nil
}
