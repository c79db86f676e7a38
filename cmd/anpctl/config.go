package main

import (
	"fmt"

	"github.com/danmuck/anp/internal/config"
	"github.com/spf13/cobra"
)

var configOpts struct {
	format string
	force  bool
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage daemon config files",
}

var configInitCmd = &cobra.Command{
	Use:   "init <path>",
	Short: "Write a config template with default values",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.WriteTemplate(args[0], configOpts.format, configOpts.force); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", args[0])
		return nil
	},
}

var configCheckCmd = &cobra.Command{
	Use:   "check <path>",
	Short: "Load and validate a config file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "ok: listen=%s admin=%v max_peers=%d\n",
			cfg.Listen, cfg.Admin.Enabled, cfg.Reactor.MaxPeers)
		return nil
	},
}

func init() {
	configInitCmd.Flags().StringVar(&configOpts.format, "format", "toml", "toml or yaml")
	configInitCmd.Flags().BoolVar(&configOpts.force, "force", false, "overwrite an existing file")
	configCmd.AddCommand(configInitCmd, configCheckCmd)
}
