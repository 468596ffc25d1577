// Command univerconv converts spreadsheet and document files to and from
// the editor snapshot model.
package main

import (
	"fmt"
	"os"

	"github.com/javajack/univerconv"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

var logger = zap.NewNop()

func main() {
	app := &cli.App{
		Name:  "univerconv",
		Usage: "Convert spreadsheets and documents to and from the editor snapshot model",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Log debug output",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "YAML file with conversion options",
			},
		},
		Before: setupLogger,
		After: func(*cli.Context) error {
			_ = logger.Sync()
			return nil
		},
		Commands: []*cli.Command{
			cmdImport,
			cmdExport,
			cmdDescribe,
			cmdValidate,
			cmdDocImport,
			cmdDocExport,
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func setupLogger(c *cli.Context) error {
	var err error
	if c.Bool("verbose") {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	return nil
}

// loadConfig reads --config, or returns the zero config.
func loadConfig(c *cli.Context) (*univerconv.Config, error) {
	path := c.String("config")
	if path == "" {
		return &univerconv.Config{}, nil
	}
	return univerconv.LoadConfig(path)
}

// conversionOptions merges the config file with command flags.
func conversionOptions(c *cli.Context) (*univerconv.Config, []univerconv.Option, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, nil, err
	}
	if c.IsSet("readonly") {
		cfg.Readonly = c.Bool("readonly")
	}
	if c.IsSet("lock-rule") {
		cfg.LockRule = c.String("lock-rule")
	}
	return cfg, cfg.Options(logger), nil
}
