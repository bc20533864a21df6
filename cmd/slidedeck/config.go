package main

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/fredcamaral/slidedeck/internal/adapters/secondary/config"
	"github.com/fredcamaral/slidedeck/internal/domain/services"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and initialize configuration",
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the global configuration file with defaults",
		Args:  cobra.NoArgs,
		RunE:  runConfigInit,
	}
	initCmd.Flags().Bool("force", false, "Overwrite an existing global config")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration as TOML",
			Args:  cobra.NoArgs,
			RunE:  runConfigShow,
		},
		initCmd,
	)

	return cmd
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if err := toml.NewEncoder(cmd.OutOrStdout()).Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return nil
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	loader := config.NewTOMLLoader()
	service := services.NewConfigService(loader, config.NewConfigMerger())

	force, _ := cmd.Flags().GetBool("force")
	if _, err := os.Stat(loader.GetGlobalPath()); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", loader.GetGlobalPath())
	}

	if err := service.CreateGlobalConfig(cmd.Context()); err != nil {
		return fmt.Errorf("creating global config: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), loader.GetGlobalPath())
	return nil
}
