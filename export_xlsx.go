package univerconv

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// Unit conversions between model pixels and spreadsheet units.
const (
	pixelsPerChar  = 7.5
	pointsPerPixel = 0.75
)

// WriteXLSX encodes a workbook as an .xlsx file. Sheets are written in
// sheetOrder with their sizes, hidden state, cells, styles, merges and
// freeze panes; defined names come from the defined-name resource.
func WriteXLSX(wb *Workbook, w io.Writer, opts ...Option) error {
	o := applyOptions(opts)
	if wb == nil || len(wb.SheetOrder) == 0 {
		return fmt.Errorf("export xlsx: %w", ErrMissingSnapshot)
	}

	f := excelize.NewFile()
	defer f.Close()
	x := &xlsxWriter{file: f, wb: wb, styles: make(map[string]int), log: o.logger}

	var hidden []string
	written := 0
	for _, id := range wb.SheetOrder {
		sheet, ok := wb.Sheets[id]
		if !ok {
			o.logger.Warn("sheet missing from snapshot", zap.String("sheet", id))
			continue
		}
		name, err := x.addSheet(written, sheet)
		if err != nil {
			return err
		}
		if err := x.writeSheet(name, sheet); err != nil {
			return err
		}
		if sheet.Hidden == True {
			hidden = append(hidden, name)
		}
		written++
	}
	if written == 0 {
		return fmt.Errorf("export xlsx: %w", ErrMissingSnapshot)
	}

	// A workbook needs one visible sheet; keep the first if all are hidden.
	if len(hidden) == written {
		hidden = hidden[1:]
	}
	for _, name := range hidden {
		if err := f.SetSheetVisible(name, false); err != nil {
			return fmt.Errorf("hide sheet %q: %w", name, err)
		}
	}
	for i, name := range f.GetSheetList() {
		if visible, _ := f.GetSheetVisible(name); visible {
			f.SetActiveSheet(i)
			break
		}
	}

	if err := x.writeDefinedNames(); err != nil {
		return err
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	o.logger.Info("exported workbook",
		zap.String("name", wb.Name),
		zap.Int("sheets", written),
		zap.Int("styles", len(x.styles)))
	return nil
}

// ExportXLSX encodes a workbook as .xlsx bytes.
func ExportXLSX(wb *Workbook, opts ...Option) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteXLSX(wb, &buf, opts...); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type xlsxWriter struct {
	file   *excelize.File
	wb     *Workbook
	styles map[string]int // model style id (+ "@" when forced to text) → excelize style id
	log    *zap.Logger
}

// addSheet creates the index-th sheet, reusing the default first sheet.
func (x *xlsxWriter) addSheet(index int, sheet *Sheet) (string, error) {
	f := x.file
	name := sheet.Name
	if name == "" {
		name = fmt.Sprintf("Sheet%d", index+1)
	}
	if index == 0 {
		if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
			return "", fmt.Errorf("rename sheet %q: %w", name, err)
		}
		return name, nil
	}
	if _, err := f.NewSheet(name); err != nil {
		return "", fmt.Errorf("create sheet %q: %w", name, err)
	}
	return name, nil
}

func (x *xlsxWriter) writeSheet(name string, sheet *Sheet) error {
	f := x.file

	props := &excelize.SheetPropsOptions{}
	if sheet.DefaultRowHeight > 0 {
		h := sheet.DefaultRowHeight * pointsPerPixel
		props.DefaultRowHeight = &h
	}
	if sheet.DefaultColumnWidth > 0 {
		w := sheet.DefaultColumnWidth / pixelsPerChar
		props.DefaultColWidth = &w
	}
	if sheet.TabColor != "" {
		if c := NormalizeCSSColor(sheet.TabColor); c != "" {
			argb := toARGB(c)
			props.TabColorRGB = &argb
		}
	}
	if err := f.SetSheetProps(name, props); err != nil {
		return fmt.Errorf("set properties of sheet %q: %w", name, err)
	}

	for _, col := range sortedKeys(sheet.ColumnData) {
		info := sheet.ColumnData[col]
		letter := ColToName(col)
		width := info.W
		if width <= 0 {
			width = sheet.DefaultColumnWidth
		}
		if width > 0 {
			if err := f.SetColWidth(name, letter, letter, width/pixelsPerChar); err != nil {
				return fmt.Errorf("set width of column %s on sheet %q: %w", letter, name, err)
			}
		}
		if info.HD == True {
			if err := f.SetColVisible(name, letter, false); err != nil {
				return fmt.Errorf("hide column %s on sheet %q: %w", letter, name, err)
			}
		}
	}

	for _, row := range sortedKeys(sheet.RowData) {
		info := sheet.RowData[row]
		if info.H > 0 {
			if err := f.SetRowHeight(name, row+1, info.H*pointsPerPixel); err != nil {
				return fmt.Errorf("set height of row %d on sheet %q: %w", row+1, name, err)
			}
		}
		if info.HD == True {
			if err := f.SetRowVisible(name, row+1, false); err != nil {
				return fmt.Errorf("hide row %d on sheet %q: %w", row+1, name, err)
			}
		}
	}

	for _, row := range sortedKeys(sheet.CellData) {
		cols := sheet.CellData[row]
		for _, col := range sortedKeys(cols) {
			if cell := cols[col]; cell != nil {
				if err := x.writeCell(name, row, col, cell); err != nil {
					return err
				}
			}
		}
	}

	for _, m := range sheet.MergeData {
		m = normalizeRange(m)
		from := NewCellRef("", m.StartRow, m.StartColumn).CellName()
		to := NewCellRef("", m.EndRow, m.EndColumn).CellName()
		if err := f.MergeCell(name, from, to); err != nil {
			return fmt.Errorf("merge cells %s:%s on sheet %q: %w", from, to, name, err)
		}
	}

	if fz := sheet.Freeze; fz.XSplit > 0 || fz.YSplit > 0 {
		if err := f.SetPanes(name, freezePanes(fz)); err != nil {
			return fmt.Errorf("freeze panes on sheet %q: %w", name, err)
		}
	}
	return nil
}

func freezePanes(fz Freeze) *excelize.Panes {
	pane := "bottomRight"
	switch {
	case fz.XSplit == 0:
		pane = "bottomLeft"
	case fz.YSplit == 0:
		pane = "topRight"
	}
	topLeft := NewCellRef("", fz.YSplit, fz.XSplit).CellName()
	return &excelize.Panes{
		Freeze:      true,
		XSplit:      fz.XSplit,
		YSplit:      fz.YSplit,
		TopLeftCell: topLeft,
		ActivePane:  pane,
		Selection:   []excelize.Selection{{SQRef: topLeft, ActiveCell: topLeft, Pane: pane}},
	}
}

func (x *xlsxWriter) writeCell(sheet string, row, col int, cell *Cell) error {
	f := x.file
	ref := NewCellRef("", row, col).CellName()

	var err error
	switch {
	case cell.P != nil && cell.P.Body != nil:
		if runs := RunsToRichText(cell.P); len(runs) > 0 {
			err = f.SetCellRichText(sheet, ref, runs)
		}
	case cell.T == CellNumber:
		if n, ok := numberValue(cell.V); ok {
			err = f.SetCellFloat(sheet, ref, n, -1, 64)
		} else {
			err = f.SetCellStr(sheet, ref, formatValue(cell.V))
		}
	case cell.T == CellBoolean:
		err = f.SetCellBool(sheet, ref, boolValue(cell.V))
	case cell.IsEmpty():
	default:
		err = f.SetCellStr(sheet, ref, formatValue(cell.V))
	}
	if err != nil {
		return fmt.Errorf("set value %s!%s: %w", sheet, ref, err)
	}

	if body := formulaBody(cell.F); body != "" {
		if err := f.SetCellFormula(sheet, ref, body); err != nil {
			return fmt.Errorf("set formula %s!%s: %w", sheet, ref, err)
		}
	}

	styleID, err := x.style(cell.S, cell.T == CellForceString)
	if err != nil {
		return err
	}
	if styleID > 0 {
		if err := f.SetCellStyle(sheet, ref, ref, styleID); err != nil {
			return fmt.Errorf("set style %s!%s: %w", sheet, ref, err)
		}
	}
	return nil
}

// style returns the excelize style for a model style id, registering it once.
func (x *xlsxWriter) style(id string, forceText bool) (int, error) {
	key := id
	if forceText {
		key += "@"
	}
	if sid, ok := x.styles[key]; ok {
		return sid, nil
	}
	s := x.wb.Styles[id]
	if s == nil && !forceText {
		x.styles[key] = 0
		return 0, nil
	}
	sid, err := x.file.NewStyle(excelStyle(s, forceText))
	if err != nil {
		return 0, fmt.Errorf("register style %q: %w", id, err)
	}
	x.styles[key] = sid
	return sid, nil
}

func (x *xlsxWriter) writeDefinedNames() error {
	names, err := DecodeDefinedNames(x.wb)
	if err != nil {
		x.log.Warn("skipping defined names", zap.Error(err))
		return nil
	}
	for _, n := range names {
		dn := &excelize.DefinedName{
			Name:     n.Name,
			RefersTo: formulaBody(n.RefersTo),
			Scope:    n.Scope,
		}
		if err := x.file.SetDefinedName(dn); err != nil {
			return fmt.Errorf("set defined name %q: %w", n.Name, err)
		}
	}
	return nil
}

// excelStyle converts a model style to an excelize style.
func excelStyle(s *Style, forceText bool) *excelize.Style {
	out := &excelize.Style{}
	if forceText {
		out.NumFmt = 49
	}
	if s == nil {
		return out
	}

	if font := excelizeFont(s); font != nil {
		out.Font = font
	}
	if s.Background != nil && s.Background.RGB != "" {
		out.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{s.Background.RGB}}
	}
	if bd := s.Border; bd != nil {
		for _, side := range []struct {
			name string
			b    *BorderSide
		}{{"top", bd.T}, {"bottom", bd.B}, {"left", bd.L}, {"right", bd.R}} {
			if side.b == nil || side.b.S == BorderNone {
				continue
			}
			eb := excelize.Border{Type: side.name, Style: excelBorderIndex(side.b.S)}
			if side.b.CL != nil {
				eb.Color = side.b.CL.RGB
			}
			out.Border = append(out.Border, eb)
		}
	}

	align := &excelize.Alignment{
		Horizontal: horizontalName(s.HorizontalAlign),
		Vertical:   verticalName(s.VerticalAlign),
		WrapText:   s.WrapStrategy == WrapText,
	}
	if s.TextRotation != nil {
		align.TextRotation = s.TextRotation.A
	}
	if s.Padding != nil && s.Padding.L >= 8 {
		align.Indent = int(s.Padding.L / 8)
	}
	if *align != (excelize.Alignment{}) {
		out.Alignment = align
	}

	if s.NumberFormat != nil && s.NumberFormat.Pattern != "" && !forceText {
		if id, ok := builtInNumFmtID(s.NumberFormat.Pattern); ok {
			out.NumFmt = id
		} else {
			pattern := s.NumberFormat.Pattern
			out.CustomNumFmt = &pattern
		}
	}
	if p := s.Protection; p != nil {
		out.Protection = &excelize.Protection{Locked: p.Locked, Hidden: p.Hidden}
	}
	return out
}

// excelizeFont converts the character attributes of a style, or returns nil when there are none.
func excelizeFont(s *Style) *excelize.Font {
	font := &excelize.Font{
		Bold:   s.Bold == True,
		Italic: s.Italic == True,
		Strike: s.Strike != nil && s.Strike.S == True,
		Family: excelFontFamily(s.FontFamily),
		Size:   s.FontSize,
	}
	if s.Underline != nil && s.Underline.S == True {
		font.Underline = "single"
	}
	if s.Color != nil && s.Color.RGB != "" {
		font.Color = strings.ToUpper(s.Color.RGB)
	}
	switch s.BaselineOffset {
	case BaselineSuperscript:
		font.VertAlign = "superscript"
	case BaselineSubscript:
		font.VertAlign = "subscript"
	}
	if *font == (excelize.Font{}) {
		return nil
	}
	return font
}

// maxFontFamilyLen is the longest font name a spreadsheet file accepts.
const maxFontFamilyLen = 31

// excelFontFamily reduces a CSS font stack such as `"Microsoft YaHei", Arial`
// to its first family, cut to maxFontFamilyLen runes.
func excelFontFamily(stack string) string {
	first, _, _ := strings.Cut(stack, ",")
	name := []rune(strings.Trim(strings.TrimSpace(first), `"'`))
	if len(name) > maxFontFamilyLen {
		name = name[:maxFontFamilyLen]
	}
	return strings.TrimSpace(string(name))
}

// excelBorderIndex maps a border ordinal to the excelize border style index.
func excelBorderIndex(kind int) int {
	name := borderName(kind)
	for i, n := range excelBorderStyles {
		if n == name {
			return i
		}
	}
	return 1
}

func numberValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		return parseNumber(n)
	}
	return 0, false
}

func boolValue(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case float64:
		return b != 0
	case string:
		return strings.EqualFold(b, "true") || b == "1"
	}
	return false
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
