package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"techfest/internal/config"
)

var configInitFlags struct {
	project bool
	force   bool
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or create configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a techfest.yml configuration file",
	Long: `Create a configuration file holding the defaults.

By default, creates a global config at ~/.config/techfest/techfest.yml.
Use --project to create techfest.yml in the current directory.`,
	RunE: runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration paths and backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		printf(cmd, "global:  %s (exists: %t)\n", config.GlobalPath(), fileExists(config.GlobalPath()))
		printf(cmd, "project: %s (exists: %t)\n", config.ProjectPath(), fileExists(config.ProjectPath()))
		printf(cmd, "backend: %s\naddr:    %s\nenv:     %s\n", cfg.Backend, cfg.Addr, cfg.Env)
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVarP(&configInitFlags.project, "project", "p", false, "Create config in current directory instead of global location")
	configInitCmd.Flags().BoolVarP(&configInitFlags.force, "force", "f", false, "Overwrite existing config file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	targetPath := config.GlobalPath()
	if configInitFlags.project {
		targetPath = config.ProjectPath()
	}
	if !configInitFlags.force && fileExists(targetPath) {
		return fmt.Errorf("config file already exists at %s\n\nUse --force to overwrite", targetPath)
	}

	defaults := config.Default()
	var err error
	if configInitFlags.project {
		err = config.WriteProject(defaults)
	} else {
		err = config.WriteGlobal(defaults)
	}
	if err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	printf(cmd, "Config written to: %s\n\n", targetPath)
	printf(cmd, "Run 'server serve' to start the API.\n")
	return nil
}
