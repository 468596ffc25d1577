package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/javajack/univerconv"
	"github.com/urfave/cli/v2"
)

var cmdDocImport = &cli.Command{
	Name:      "doc-import",
	Usage:     "Convert a document (docx, txt, html) to document JSON",
	ArgsUsage: "FILE",
	Action:    runDocImport,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "out",
			Aliases: []string{"o"},
			Usage:   "Output file (default: FILE.json)",
		},
		&cli.BoolFlag{
			Name:  "describe",
			Usage: "Print the paragraphs instead of writing JSON",
		},
	},
}

var cmdDocExport = &cli.Command{
	Name:      "doc-export",
	Usage:     "Write document JSON as a docx file",
	ArgsUsage: "MODEL.json",
	Action:    runDocExport,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "out",
			Aliases: []string{"o"},
			Usage:   "Output file (default: MODEL.docx)",
		},
		&cli.BoolFlag{
			Name:  "validate",
			Usage: "Check the model before writing",
		},
	},
}

func runDocImport(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("expected one document")
	}
	_, opts, err := conversionOptions(c)
	if err != nil {
		return err
	}
	path := c.Args().First()
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %q: %w", path, err)
	}
	doc, err := univerconv.ImportDocument(data, filepath.Base(path), opts...)
	if err != nil {
		return err
	}

	if c.Bool("describe") {
		text, err := univerconv.DescribeDocument(doc)
		if err != nil {
			return err
		}
		fmt.Fprint(c.App.Writer, text)
		return nil
	}

	out := c.String("out")
	if out == "" {
		out = strings.TrimSuffix(path, filepath.Ext(path)) + ".json"
	}
	encoded, err := univerconv.MarshalDocument(doc)
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, encoded, 0o644); err != nil {
		return fmt.Errorf("write %q: %w", out, err)
	}
	fmt.Fprintf(c.App.Writer, "Wrote %s\n", out)
	return nil
}

func runDocExport(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("expected one model file")
	}
	path := c.Args().First()
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %q: %w", path, err)
	}
	doc, err := univerconv.UnmarshalDocument(data)
	if err != nil {
		return err
	}

	if c.Bool("validate") {
		issues, err := univerconv.ValidateDocument(doc)
		if err != nil {
			return err
		}
		if univerconv.HasErrors(issues) {
			return reportIssues(c, issues)
		}
	}

	out := c.String("out")
	if out == "" {
		out = strings.TrimSuffix(path, filepath.Ext(path)) + ".docx"
	}
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create %q: %w", out, err)
	}
	defer f.Close()
	if err := univerconv.WriteDOCX(doc, f, univerconv.WithLogger(logger)); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Wrote %s\n", out)
	return nil
}
