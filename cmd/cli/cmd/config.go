package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/picogrid/algorithm-simulations/pkg/catalog"
	"github.com/picogrid/algorithm-simulations/pkg/config"
	"github.com/picogrid/algorithm-simulations/pkg/logger"
	"github.com/picogrid/algorithm-simulations/pkg/utils"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage CLI settings",
	Long:  `Show or write the algosim configuration file`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective settings",
	RunE:  showConfig,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create or update the config file",
	RunE:  initConfigFile,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}

func showConfig(_ *cobra.Command, _ []string) error {
	path, err := configPath()
	if err != nil {
		return err
	}

	logger.LogSection("Settings")
	logger.LogKeyValue("Config file", path)
	logger.LogKeyValue("Catalog directory", settings.CatalogDir)
	logger.LogKeyValue("Log level", settings.LogLevel)
	logger.LogKeyValue("No color", settings.NoColor)
	logger.LogKeyValue("Auto-play delay", settings.AutoPlayDelay)
	logger.LogKeyValue("Trace directory", valueOrNone(settings.TraceDir))
	logger.LogKeyValue("Default simulator", valueOrNone(settings.DefaultSimulator))
	logger.LogKeyValue("Archive runs", settings.Archive)
	if archivePath, err := settings.ResolveArchivePath(); err == nil {
		logger.LogKeyValue("Archive path", archivePath)
	}
	return nil
}

func valueOrNone(v string) string {
	if v == "" {
		return "(none)"
	}
	return v
}

func initConfigFile(_ *cobra.Command, _ []string) error {
	path, err := configPath()
	if err != nil {
		return err
	}

	s := settings

	if s.CatalogDir, err = utils.Ask("Catalog directory:", s.CatalogDir); err != nil {
		return err
	}

	if s.LogLevel, err = utils.Choose("Log level:", []string{"debug", "info", "warn", "error"}, s.LogLevel); err != nil {
		return err
	}

	delay, err := utils.Ask("Auto-play delay:", s.AutoPlayDelay.String())
	if err != nil {
		return err
	}
	if s.AutoPlayDelay, err = time.ParseDuration(delay); err != nil {
		return fmt.Errorf("invalid delay %q: %w", delay, err)
	}

	if s.TraceDir, err = utils.Ask("Trace directory (empty to disable):", s.TraceDir); err != nil {
		return err
	}

	if entries, err := catalog.All(s.CatalogDir); err == nil && len(entries) > 0 {
		options := append([]string{"(none)"}, catalog.Names(entries)...)
		def := valueOrNone(s.DefaultSimulator)
		choice, err := utils.Choose("Default simulator:", options, def)
		if err != nil {
			return err
		}
		s.DefaultSimulator = ""
		if choice != "(none)" {
			s.DefaultSimulator = choice
		}
	}

	if s.Archive, err = utils.Confirm("Record sessions in the run archive?", s.Archive); err != nil {
		return err
	}

	if s.NoColor, err = utils.Confirm("Disable colored output?", s.NoColor); err != nil {
		return err
	}

	ok, err := utils.Confirm(fmt.Sprintf("Write settings to %s?", path), true)
	if err != nil {
		return err
	}
	if !ok {
		logger.Info("Nothing written")
		return nil
	}

	if err := config.Save(path, s); err != nil {
		return err
	}
	logger.Successf("Settings saved to %s", path)
	return nil
}
