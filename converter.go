package univerconv

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Format is an input file format.
type Format string

const (
	FormatUnknown Format = ""
	FormatXLSX    Format = "xlsx"
	FormatXLS     Format = "xls"
	FormatCSV     Format = "csv"
	FormatText    Format = "txt"
	FormatJSON    Format = "json"
	FormatDOCX    Format = "docx"
	FormatHTML    Format = "html"
)

var (
	zipMagic = []byte("PK\x03\x04")
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// DetectFormat picks the format from the file extension, then from the content.
func DetectFormat(fileName string, data []byte) Format {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), ".")) {
	case "xlsx", "xlsm":
		return FormatXLSX
	case "xls":
		return FormatXLS
	case "csv":
		return FormatCSV
	case "txt", "text":
		return FormatText
	case "json":
		return FormatJSON
	case "docx":
		return FormatDOCX
	case "html", "htm":
		return FormatHTML
	}
	switch {
	case bytes.HasPrefix(data, zipMagic):
		return FormatXLSX
	case bytes.HasPrefix(data, oleMagic):
		return FormatXLS
	case looksLikeJSON(data):
		return FormatJSON
	}
	return FormatText
}

// Input is one workbook conversion request. Model, when set, is an
// already materialized workbook and Data is ignored.
type Input struct {
	Data     []byte
	FileName string
	Readonly bool
	Model    *Workbook
}

// IsModel reports whether the input is JSON-shaped rather than a file to parse.
func (in Input) IsModel() bool {
	return in.Model != nil || (in.Data != nil && DetectFormat(in.FileName, in.Data) == FormatJSON)
}

// Converter turns an Input into a workbook.
type Converter interface {
	Convert(ctx context.Context, in Input) (*Workbook, error)
}

// PassThroughConverter resolves JSON-shaped input on the calling goroutine.
// The workbook is decoded (or copied), completed with defaults and merge-cleaned.
type PassThroughConverter struct {
	opts []Option
}

// NewPassThroughConverter creates a PassThroughConverter.
func NewPassThroughConverter(opts ...Option) *PassThroughConverter {
	return &PassThroughConverter{opts: opts}
}

// Convert implements Converter.
func (c *PassThroughConverter) Convert(ctx context.Context, in Input) (*Workbook, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	o := applyOptions(c.opts)

	var wb *Workbook
	if in.Model != nil {
		clone, _, err := cloneJSON(in.Model)
		if err != nil {
			return nil, err
		}
		wb = clone
	} else {
		decoded, err := UnmarshalWorkbook(in.Data)
		if err != nil {
			return nil, err
		}
		wb = decoded
	}

	applyWorkbookDefaults(wb, o)
	for _, id := range wb.SheetOrder {
		if err := CleanMergedCells(wb.Sheets[id]); err != nil {
			return nil, fmt.Errorf("clean merges on sheet %q: %w", id, err)
		}
	}
	return wb, nil
}

// applyWorkbookDefaults fills the parts of a workbook a JSON source may omit.
func applyWorkbookDefaults(wb *Workbook, o *Options) {
	if wb.ID == "" {
		wb.ID = o.ids("workbook")
	}
	if wb.Name == "" {
		wb.Name = DefaultWorkbookName
	}
	if wb.AppVersion == "" {
		wb.AppVersion = o.appVersion
	}
	if wb.Locale == "" {
		wb.Locale = o.locale
	}
	if wb.Styles == nil {
		wb.Styles = make(map[string]*Style)
	}
	if _, ok := wb.Styles[DefaultStyleID]; !ok {
		wb.Styles[DefaultStyleID] = DefaultStyle()
	}
	if wb.Sheets == nil {
		wb.Sheets = make(map[string]*Sheet)
	}

	// Drop dangling ids; append sheets missing from the order.
	seen := make(map[string]bool, len(wb.SheetOrder))
	order := wb.SheetOrder[:0]
	for _, id := range wb.SheetOrder {
		if _, ok := wb.Sheets[id]; ok && !seen[id] {
			order = append(order, id)
			seen[id] = true
		}
	}
	for _, id := range sortedStrings(wb.Sheets) {
		if !seen[id] {
			order = append(order, id)
		}
	}
	wb.SheetOrder = order

	for i, id := range wb.SheetOrder {
		s := wb.Sheets[id]
		if s == nil {
			s = &Sheet{}
			wb.Sheets[id] = s
		}
		if s.ID == "" {
			s.ID = id
		}
		if s.Name == "" {
			s.Name = fmt.Sprintf("%s%d", sheetNamePrefix, i+1)
		}
		if s.CellData == nil {
			s.CellData = make(CellMatrix)
		}
		if s.RowData == nil {
			s.RowData = make(map[int]*RowInfo)
		}
		if s.ColumnData == nil {
			s.ColumnData = make(map[int]*ColumnInfo)
		}
		if s.DefaultColumnWidth <= 0 {
			s.DefaultColumnWidth = defaultColumnWidth
		}
		if s.DefaultRowHeight <= 0 {
			s.DefaultRowHeight = defaultRowHeight
		}
		s.RowCount = max(s.RowCount, minRowCount)
		s.ColumnCount = max(s.ColumnCount, minColumnCount)
	}
}

// Router sends JSON-shaped input to Direct and files to Files.
type Router struct {
	Direct Converter
	Files  Converter
}

// Convert implements Converter.
func (r *Router) Convert(ctx context.Context, in Input) (*Workbook, error) {
	if in.IsModel() {
		return r.Direct.Convert(ctx, in)
	}
	return r.Files.Convert(ctx, in)
}

// ReadRawWorkbook parses spreadsheet file bytes into a RawWorkbook.
func ReadRawWorkbook(data []byte, fileName string, opts ...Option) (*RawWorkbook, error) {
	opts = withOptions(opts, WithFileName(fileName))
	switch format := DetectFormat(fileName, data); format {
	case FormatXLSX:
		return ReadXLSX(bytes.NewReader(data), opts...)
	case FormatXLS:
		return ReadXLS(data, opts...)
	case FormatCSV:
		return ReadCSV(data, opts...)
	case FormatText, FormatHTML:
		return ReadText(data, opts...)
	case FormatJSON:
		return UnmarshalRawWorkbook(data)
	default:
		return nil, fmt.Errorf("import %q: %w", format, ErrUnsupportedFormat)
	}
}

// ImportWorkbook parses a spreadsheet file and builds the workbook model.
// When parsing fails it returns a single-cell workbook describing the
// failure together with the error, so callers always have something to show.
func ImportWorkbook(in Input, opts ...Option) (*Workbook, error) {
	if in.Readonly {
		opts = withOptions(opts, WithReadonly(true))
	}
	wb, err := importWorkbook(in, opts)
	if err == nil {
		return wb, nil
	}
	o := applyOptions(opts)
	o.logger.Warn("import failed", zap.String("file", in.FileName), zap.Error(err))

	placeholder, perr := failureWorkbook(in.FileName, err, opts)
	if perr != nil {
		return nil, errors.Join(err, perr)
	}
	return placeholder, err
}

func importWorkbook(in Input, opts []Option) (*Workbook, error) {
	b, err := NewBuilder(opts...)
	if err != nil {
		return nil, err
	}
	raw, err := ReadRawWorkbook(in.Data, in.FileName, opts...)
	if err != nil {
		return nil, err
	}
	if in.FileName != "" {
		raw.FileName = in.FileName
	}
	return b.Build(raw)
}

// failureWorkbook builds the placeholder workbook for a failed import.
func failureWorkbook(fileName string, cause error, opts []Option) (*Workbook, error) {
	b, err := NewBuilder(withOptions(opts, WithLockRule(""))...)
	if err != nil {
		return nil, err
	}
	raw := &RawWorkbook{
		FileName: fileName,
		Sheets: []RawSheet{{
			Cells: [][]RawCell{{{Value: "文件解析失败: " + cause.Error()}}},
		}},
	}
	return b.Build(raw)
}

// ImportDocument parses a document file (docx, txt, html or JSON model) into
// the document model. On failure it returns a document describing the error
// together with the error.
func ImportDocument(data []byte, fileName string, opts ...Option) (*DocumentData, error) {
	o := applyOptions(opts)
	doc, err := importDocument(data, fileName, o, opts)
	if err == nil {
		return doc, nil
	}
	o.logger.Warn("document import failed", zap.String("file", fileName), zap.Error(err))
	return FailureDocument(err, o.ids("doc")), err
}

func importDocument(data []byte, fileName string, o *Options, opts []Option) (*DocumentData, error) {
	format := DetectFormat(fileName, data)
	if format == FormatXLSX && !strings.EqualFold(filepath.Ext(fileName), ".xlsx") {
		// Zip containers without a spreadsheet extension are documents here.
		format = FormatDOCX
	}
	switch format {
	case FormatDOCX:
		return ReadDOCX(bytes.NewReader(data), int64(len(data)), opts...)
	case FormatText, FormatCSV:
		return TextToDocument(DecodeText(data), o.ids("doc")), nil
	case FormatHTML:
		return HTMLToDocument(o.parser, DecodeText(data), o.ids("doc"))
	case FormatJSON:
		return NormalizeDocument(data, o.ids)
	default:
		return nil, fmt.Errorf("import document %q: %w", fileName, ErrUnsupportedFormat)
	}
}

func sortedStrings[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
