package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/javajack/univerconv"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var cmdImport = &cli.Command{
	Name:      "import",
	Usage:     "Convert spreadsheet files (xlsx, xls, csv, txt) to workbook JSON",
	ArgsUsage: "FILE...",
	Action:    runImport,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "out",
			Aliases: []string{"o"},
			Usage:   "Output directory",
			Value:   ".",
		},
		&cli.BoolFlag{
			Name:  "readonly",
			Usage: "Lock every cell and protect every sheet",
		},
		&cli.StringFlag{
			Name:  "lock-rule",
			Usage: "Expression selecting cells to lock, e.g. 'row == 0 || formula != \"\"'",
		},
		&cli.IntFlag{
			Name:  "jobs",
			Usage: "Files converted concurrently, each on its own worker",
			Value: runtime.NumCPU(),
		},
	},
}

var cmdExport = &cli.Command{
	Name:      "export",
	Usage:     "Write workbook JSON as an xlsx file",
	ArgsUsage: "MODEL.json",
	Action:    runExport,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "out",
			Aliases: []string{"o"},
			Usage:   "Output file (default: MODEL.xlsx)",
		},
	},
}

var cmdDescribe = &cli.Command{
	Name:      "describe",
	Usage:     "Print a summary of a spreadsheet file or workbook JSON",
	ArgsUsage: "FILE",
	Action:    runDescribe,
}

var cmdValidate = &cli.Command{
	Name:      "validate",
	Usage:     "Check a spreadsheet file or workbook JSON for model errors",
	ArgsUsage: "FILE",
	Action:    runValidate,
}

// newRouter returns the converter used by the workbook commands.
func newRouter(opts []univerconv.Option) (*univerconv.Router, func()) {
	worker := univerconv.NewWorkerConverter(nil, opts...)
	return &univerconv.Router{
		Direct: univerconv.NewPassThroughConverter(opts...),
		Files:  worker,
	}, worker.Dispose
}

// newRouterPool returns n routers, each with its own worker goroutine. A
// worker converter imports one file at a time, so parallel jobs need one each.
func newRouterPool(opts []univerconv.Option, n int) (chan *univerconv.Router, func()) {
	pool := make(chan *univerconv.Router, n)
	disposers := make([]func(), 0, n)
	for range n {
		conv, dispose := newRouter(opts)
		disposers = append(disposers, dispose)
		pool <- conv
	}
	return pool, func() {
		for _, dispose := range disposers {
			dispose()
		}
	}
}

// loadWorkbook converts any supported input into a workbook.
func loadWorkbook(ctx context.Context, conv univerconv.Converter, path string, readonly bool) (*univerconv.Workbook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", path, err)
	}
	return conv.Convert(ctx, univerconv.Input{Data: data, FileName: filepath.Base(path), Readonly: readonly})
}

func runImport(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New("no input files")
	}
	cfg, opts, err := conversionOptions(c)
	if err != nil {
		return err
	}
	outDir := c.String("out")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create %q: %w", outDir, err)
	}

	jobs := c.Int("jobs")
	if cfg.Workers > 0 && !c.IsSet("jobs") {
		jobs = cfg.Workers
	}
	jobs = max(1, min(jobs, c.NArg()))

	pool, dispose := newRouterPool(opts, jobs)
	defer dispose()

	g, ctx := errgroup.WithContext(c.Context)
	g.SetLimit(jobs)
	for _, path := range c.Args().Slice() {
		g.Go(func() error {
			conv := <-pool
			defer func() { pool <- conv }()
			wb, err := loadWorkbook(ctx, conv, path, cfg.Readonly)
			if err != nil {
				return err
			}
			data, err := univerconv.MarshalWorkbook(wb)
			if err != nil {
				return err
			}
			name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + ".json"
			out := filepath.Join(outDir, name)
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write %q: %w", out, err)
			}
			logger.Info("imported", zap.String("file", path), zap.String("out", out))
			return nil
		})
	}
	return g.Wait()
}

func runExport(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("expected one model file")
	}
	path := c.Args().First()
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %q: %w", path, err)
	}
	defer f.Close()
	wb, err := univerconv.ReadWorkbookJSON(f)
	if err != nil {
		return err
	}

	out := c.String("out")
	if out == "" {
		out = strings.TrimSuffix(path, filepath.Ext(path)) + ".xlsx"
	}
	data, err := univerconv.ExportXLSX(wb, univerconv.WithLogger(logger))
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write %q: %w", out, err)
	}
	fmt.Fprintf(c.App.Writer, "Wrote %s\n", out)
	return nil
}

func runDescribe(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("expected one file")
	}
	cfg, opts, err := conversionOptions(c)
	if err != nil {
		return err
	}
	conv, dispose := newRouter(opts)
	defer dispose()

	wb, err := loadWorkbook(c.Context, conv, c.Args().First(), cfg.Readonly)
	if err != nil {
		return err
	}
	text, err := univerconv.DescribeWorkbook(wb)
	if err != nil {
		return err
	}
	fmt.Fprint(c.App.Writer, text)
	return nil
}

func runValidate(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("expected one file")
	}
	cfg, opts, err := conversionOptions(c)
	if err != nil {
		return err
	}
	conv, dispose := newRouter(opts)
	defer dispose()

	wb, err := loadWorkbook(c.Context, conv, c.Args().First(), cfg.Readonly)
	if err != nil {
		return err
	}
	issues, err := univerconv.ValidateWorkbook(wb)
	if err != nil {
		return err
	}
	return reportIssues(c, issues)
}

func reportIssues(c *cli.Context, issues []univerconv.ValidationIssue) error {
	for _, issue := range issues {
		fmt.Fprintln(c.App.Writer, issue)
	}
	if univerconv.HasErrors(issues) {
		return cli.Exit(fmt.Sprintf("%d issues found", len(issues)), 2)
	}
	fmt.Fprintln(c.App.Writer, "OK")
	return nil
}
