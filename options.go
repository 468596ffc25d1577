package univerconv

import "go.uber.org/zap"

// Workbook-level constants stamped on every imported workbook.
const (
	DefaultAppVersion = "0.5.0"
	DefaultLocale     = "zh-CN"
)

// Options holds configuration for imports and exports.
type Options struct {
	readonly   bool
	ids        IDGenerator
	logger     *zap.Logger
	parser     MarkupParser
	rowHeight  RowHeightConfig
	lockRule   string
	fileName   string
	locale     string
	appVersion string
}

func defaultOptions() *Options {
	return &Options{
		logger:     zap.NewNop(),
		parser:     NewHTMLParser(),
		rowHeight:  DefaultRowHeightConfig(),
		locale:     DefaultLocale,
		appVersion: DefaultAppVersion,
	}
}

func applyOptions(opts []Option) *Options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.ids == nil {
		o.ids = UUIDs()
	}
	return o
}

// Option configures a conversion.
type Option func(*Options)

// withOptions returns opts followed by more in a new slice; the caller's
// backing array is never written.
func withOptions(opts []Option, more ...Option) []Option {
	out := make([]Option, 0, len(opts)+len(more))
	out = append(out, opts...)
	return append(out, more...)
}

// WithReadonly locks every cell and protects every sheet of the imported workbook.
func WithReadonly(readonly bool) Option {
	return func(o *Options) { o.readonly = readonly }
}

// WithIDGenerator sets the generator used for workbook, sheet, style and document ids.
func WithIDGenerator(ids IDGenerator) Option {
	return func(o *Options) { o.ids = ids }
}

// WithLogger sets the logger (default: no-op).
func WithLogger(logger *zap.Logger) Option {
	return func(o *Options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMarkupParser selects the backend used to parse HTML fragments.
func WithMarkupParser(p MarkupParser) Option {
	return func(o *Options) {
		if p != nil {
			o.parser = p
		}
	}
}

// WithRowHeightConfig overrides the row-height estimator settings.
func WithRowHeightConfig(cfg RowHeightConfig) Option {
	return func(o *Options) { o.rowHeight = cfg }
}

// WithLockRule sets a boolean expression; cells it matches are locked on import.
// The expression sees sheet, row, col, ref, value, type and formula.
func WithLockRule(rule string) Option {
	return func(o *Options) { o.lockRule = rule }
}

// WithFileName sets the source file name used for format detection and the workbook name.
func WithFileName(name string) Option {
	return func(o *Options) { o.fileName = name }
}

// WithLocale sets the workbook locale (default: "zh-CN").
func WithLocale(locale string) Option {
	return func(o *Options) {
		if locale != "" {
			o.locale = locale
		}
	}
}
