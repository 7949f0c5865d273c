package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/labeled-input/internal/config"
	lierrors "github.com/vango-dev/labeled-input/internal/errors"
	"github.com/vango-dev/labeled-input/pkg/host"
	"github.com/vango-dev/labeled-input/pkg/labeledinput"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// cli is the state shared by every command.
type cli struct {
	configPath string
	logLevel   string
	logFormat  string

	out    io.Writer
	errOut io.Writer
	cfg    *config.Config
	logger *slog.Logger
}

func main() {
	c := &cli{out: os.Stdout, errOut: os.Stderr}
	if err := c.rootCmd().Execute(); err != nil {
		lierrors.Fprint(os.Stderr, err)
		os.Exit(1)
	}
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "labeled-input",
		Short: "Render, preview and publish the <labeled-input> element",
		Long: `labeled-input packages a labeled form field as a custom element.

Configuration is read from labeled-input.json or labeled-input.yaml in the
working directory or its nearest parent. Without one, defaults are used.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.load()
		},
	}
	root.SetOut(c.out)
	root.SetErr(c.errOut)

	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "Config file (default: search from the working directory)")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&c.logFormat, "log-format", "", "Log format: text or json")

	root.AddCommand(
		c.renderCmd(),
		c.serveCmd(),
		c.publishCmd(),
		c.initCmd(),
		c.versionCmd(),
	)
	return root
}

// load reads the config and builds the logger. A missing config file is
// not an error when no path was given.
func (c *cli) load() error {
	var (
		cfg *config.Config
		err error
	)
	if c.configPath != "" {
		cfg, err = config.LoadFile(c.configPath)
	} else {
		cfg, err = config.LoadFromWorkingDir()
		if lierrors.HasCode(err, "E020") {
			cfg, err = config.New(), nil
		}
	}
	if err != nil {
		return err
	}

	if c.logLevel != "" {
		cfg.Log.Level = c.logLevel
	}
	if c.logFormat != "" {
		cfg.Log.Format = c.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	c.cfg = cfg
	c.logger = cfg.Log.NewLogger(c.errOut)
	if path := cfg.Path(); path != "" {
		c.logger.Debug("config loaded", "path", path)
	}
	return nil
}

// definition builds the element definition from the config.
func (c *cli) definition() (*host.Definition, error) {
	opts := []labeledinput.Option{
		labeledinput.WithTag(c.cfg.Tag),
		labeledinput.WithShadow(c.cfg.ShadowEnabled()),
		labeledinput.WithDispatch(c.cfg.DispatchMode()),
	}
	if c.cfg.StylePath() != "" {
		css, err := c.cfg.LoadStyle()
		if err != nil {
			return nil, err
		}
		opts = append(opts, labeledinput.WithStyle(css))
	}
	return labeledinput.Definition(opts...), nil
}

// success prints a success message.
func (c *cli) success(format string, args ...any) {
	fmt.Fprintf(c.out, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func (c *cli) info(format string, args ...any) {
	fmt.Fprintf(c.out, "  %s\n", fmt.Sprintf(format, args...))
}
