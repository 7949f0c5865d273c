package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vango-dev/labeled-input/internal/config"
	lierrors "github.com/vango-dev/labeled-input/internal/errors"
)

func (c *cli) initCmd() *cobra.Command {
	var (
		useJSON bool
		force   bool
	)

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a default config file",
		Args:  cobra.MaximumNArgs(1),
		// init must not require an existing config.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			name := config.YAMLConfigFileName
			if useJSON {
				name = config.ConfigFileName
			}
			if config.Exists(dir) && !force {
				return lierrors.Newf(lierrors.CategoryConfig, "a config file already exists in %s", dir).
					WithSuggestion("Pass --force to overwrite it")
			}
			if err := os.MkdirAll(dir, 0755); err != nil {
				return err
			}
			path := filepath.Join(dir, name)
			if err := config.New().SaveTo(path); err != nil {
				return err
			}
			c.success("Wrote %s", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&useJSON, "json", false, "Write labeled-input.json instead of YAML")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing config")

	return cmd
}
