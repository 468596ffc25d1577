package univerconv

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Config is the file form of the conversion options.
//
//	readonly: false
//	locale: en-US
//	markup: html          # or xml
//	ids: uuid             # or sequential
//	lockRule: 'row == 0'
//	rowHeight:
//	  base: 23
//	  max: 300
type Config struct {
	Readonly  bool            `yaml:"readonly"`
	Locale    string          `yaml:"locale"`
	Markup    string          `yaml:"markup"`
	IDs       string          `yaml:"ids"`
	LockRule  string          `yaml:"lockRule"`
	RowHeight RowHeightConfig `yaml:"rowHeight"`
	Workers   int             `yaml:"workers"`
}

// LoadConfig reads a YAML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %q: %w", path, err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML config text. Unknown keys are rejected.
func ParseConfig(data []byte) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	switch cfg.Markup {
	case "", "html", "xml":
	default:
		return nil, fmt.Errorf("config markup %q: want html or xml", cfg.Markup)
	}
	switch cfg.IDs {
	case "", "uuid", "sequential":
	default:
		return nil, fmt.Errorf("config ids %q: want uuid or sequential", cfg.IDs)
	}
	if cfg.LockRule != "" {
		if _, err := CompileLockRule(cfg.LockRule); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// Options converts the config into conversion options.
func (c *Config) Options(logger *zap.Logger) []Option {
	opts := []Option{
		WithReadonly(c.Readonly),
		WithLocale(c.Locale),
		WithLockRule(c.LockRule),
		WithRowHeightConfig(c.RowHeight),
		WithLogger(logger),
	}
	if c.Markup == "xml" {
		opts = append(opts, WithMarkupParser(NewXMLParser()))
	}
	if c.IDs == "sequential" {
		opts = append(opts, WithIDGenerator(SequentialIDs()))
	}
	return opts
}
