package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vango-dev/labeled-input/internal/publish"
)

func (c *cli) renderCmd() *cobra.Command {
	var (
		output string
		title  string
		attrs  []string
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the element into a static bundle",
		Long: `Render the element server-side and write index.html and
labeled-input.css to the output directory.

Examples:
  labeled-input render
  labeled-input render --output=site --attr label=Email --attr name=email`,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := c.bundle(title, attrs)
			if err != nil {
				return err
			}
			if output == "" {
				output = c.cfg.OutputPath()
			}
			if err := b.WriteDir(output); err != nil {
				return err
			}
			c.success("Rendered %d files (%d bytes)", len(b.Files), b.Size())
			for _, f := range b.Files {
				c.info("%s", filepath.Join(output, f.Name))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output directory (default from config)")
	cmd.Flags().StringVar(&title, "title", "", "Page title")
	cmd.Flags().StringArrayVarP(&attrs, "attr", "a", nil, "Element attribute as name=value (repeatable)")

	return cmd
}

// bundle renders the configured element with attribute overrides.
func (c *cli) bundle(title string, flags []string) (*publish.Bundle, error) {
	def, err := c.definition()
	if err != nil {
		return nil, err
	}
	attrs, err := parseAttrs(c.cfg.Attributes, flags)
	if err != nil {
		return nil, err
	}
	return publish.Build(def, publish.Options{
		Attributes: attrs,
		Title:      title,
		Logger:     c.logger,
	})
}
