package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd(a *app) *cobra.Command {
	var showSource bool
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		Long:  `Show the effective configuration after merging defaults, config file, environment variables and flags.`,
		Example: `  # Show effective configuration
  todos config show

  # Show configuration with source file path
  todos config show --source`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			if showSource {
				if a.configPath != "" {
					fmt.Fprintf(w, "Config file: %s\n\n", a.configPath)
				} else {
					fmt.Fprint(w, "Config file: (none, using defaults)\n\n")
				}
			}
			out, err := yaml.Marshal(a.cfg)
			if err != nil {
				return err
			}
			_, err = w.Write(out)
			return err
		},
	}
	showCmd.Flags().BoolVar(&showSource, "source", false, "show config file source")
	configCmd.AddCommand(showCmd)
	return configCmd
}
