package univerconv

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// Spreadsheet defaults used to tell explicit sizes from inherited ones.
const (
	excelDefaultColWidth  = 9.140625
	excelDefaultRowHeight = 15
)

// excelBorderStyles maps excelize border style indexes to border keywords.
var excelBorderStyles = []string{
	"none", "thin", "medium", "dashed", "dotted", "thick", "double", "hair",
	"mediumDashed", "dashDot", "mediumDashDot", "dashDotDot", "mediumDashDotDot", "slantDashDot",
}

// excelFillPatterns maps excelize fill pattern indexes to pattern keywords.
var excelFillPatterns = []string{
	"none", "solid", "mediumGray", "darkGray", "lightGray", "darkHorizontal",
	"darkVertical", "darkDown", "darkUp", "darkGrid", "darkTrellis", "lightHorizontal",
	"lightVertical", "lightDown", "lightUp", "lightGrid", "lightTrellis", "gray125", "gray0625",
}

// ReadXLSX reads an .xlsx file into a RawWorkbook: typed cell values,
// formulas, rich text, styles, merges, row/column sizes, freeze panes,
// hidden state and defined names.
func ReadXLSX(r io.Reader, opts ...Option) (*RawWorkbook, error) {
	o := applyOptions(opts)
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	xr := &xlsxReader{file: f, styles: make(map[int]*RawStyle), log: o.logger}
	raw := &RawWorkbook{FileName: o.fileName}
	for _, name := range f.GetSheetList() {
		sheet, err := xr.readSheet(name)
		if err != nil {
			return nil, err
		}
		raw.Sheets = append(raw.Sheets, *sheet)
	}
	for _, dn := range f.GetDefinedName() {
		scope := dn.Scope
		if scope == "Workbook" {
			scope = ""
		}
		raw.DefinedNames = append(raw.DefinedNames, DefinedName{Name: dn.Name, RefersTo: dn.RefersTo, Scope: scope})
	}
	return raw, nil
}

type xlsxReader struct {
	file   *excelize.File
	styles map[int]*RawStyle // excelize style id → converted style
	log    *zap.Logger
}

func (xr *xlsxReader) readSheet(name string) (*RawSheet, error) {
	f := xr.file
	rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read rows from sheet %q: %w", name, err)
	}

	sheet := &RawSheet{Name: name, Cells: make([][]RawCell, len(rows))}
	if visible, err := f.GetSheetVisible(name); err == nil {
		sheet.Hidden = !visible
	}
	if props, err := f.GetSheetProps(name); err == nil && props.TabColorRGB != nil && *props.TabColorRGB != "" {
		sheet.TabColor = ResolveColor(RGBColor(*props.TabColorRGB), "")
	}

	width := 0
	for r, row := range rows {
		width = max(width, len(row))
		sheet.Cells[r] = make([]RawCell, len(row))
		for c, value := range row {
			cell, err := xr.readCell(name, r, c, value)
			if err != nil {
				return nil, err
			}
			sheet.Cells[r][c] = cell
		}
	}

	merges, err := f.GetMergeCells(name)
	if err != nil {
		return nil, fmt.Errorf("read merges from sheet %q: %w", name, err)
	}
	for _, mc := range merges {
		_, rng, err := ParseRange(mc.GetStartAxis() + ":" + mc.GetEndAxis())
		if err != nil {
			return nil, fmt.Errorf("parse merge on sheet %q: %w", name, err)
		}
		sheet.Merges = append(sheet.Merges, rng)
		width = max(width, rng.EndColumn+1)
	}

	sheet.RowProps = xr.readRowProps(name, len(rows))
	sheet.ColProps = xr.readColProps(name, width)

	if panes, err := f.GetPanes(name); err == nil && panes.Freeze && (panes.XSplit > 0 || panes.YSplit > 0) {
		sheet.Freeze = &Freeze{
			StartRow:    panes.YSplit,
			StartColumn: panes.XSplit,
			YSplit:      panes.YSplit,
			XSplit:      panes.XSplit,
		}
	}

	xr.log.Debug("read xlsx sheet",
		zap.String("sheet", name),
		zap.Int("rows", len(rows)),
		zap.Int("merges", len(sheet.Merges)))
	return sheet, nil
}

func (xr *xlsxReader) readCell(sheet string, row, col int, value string) (RawCell, error) {
	f := xr.file
	name := NewCellRef("", row, col).CellName()
	cell := RawCell{Value: value}

	kind, err := f.GetCellType(sheet, name)
	if err != nil {
		return cell, fmt.Errorf("read cell type %s!%s: %w", sheet, name, err)
	}
	switch kind {
	case excelize.CellTypeBool:
		cell.Value = value == "1" || strings.EqualFold(value, "true")
	case excelize.CellTypeNumber, excelize.CellTypeUnset, excelize.CellTypeDate:
		if n, err := strconv.ParseFloat(value, 64); err == nil {
			cell.Value = n
		}
		if kind == excelize.CellTypeDate {
			if text, err := f.GetCellValue(sheet, name); err == nil && text != value {
				cell.Text = text
			}
		}
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString:
		runs, err := f.GetCellRichText(sheet, name)
		if err == nil && hasRunFormatting(runs) {
			cell.RichTextXML = richTextXML(runs)
		}
	}

	if formula, err := f.GetCellFormula(sheet, name); err == nil && formula != "" {
		cell.Formula = formula
	}

	styleID, err := f.GetCellStyle(sheet, name)
	if err != nil {
		return cell, fmt.Errorf("read cell style %s!%s: %w", sheet, name, err)
	}
	if styleID > 0 {
		style, err := xr.style(styleID)
		if err != nil {
			return cell, err
		}
		cell.Style = style
	}
	return cell, nil
}

func hasRunFormatting(runs []excelize.RichTextRun) bool {
	for _, r := range runs {
		if r.Font != nil {
			return true
		}
	}
	return false
}

// style converts an excelize style once per id.
func (xr *xlsxReader) style(id int) (*RawStyle, error) {
	if s, ok := xr.styles[id]; ok {
		return s, nil
	}
	es, err := xr.file.GetStyle(id)
	if err != nil {
		return nil, fmt.Errorf("read style %d: %w", id, err)
	}
	s := rawStyleFromExcel(es)
	xr.styles[id] = s
	return s, nil
}

func (xr *xlsxReader) readRowProps(sheet string, rows int) []*RowProps {
	f := xr.file
	def := float64(excelDefaultRowHeight)
	if props, err := f.GetSheetProps(sheet); err == nil && props.DefaultRowHeight != nil && *props.DefaultRowHeight > 0 {
		def = *props.DefaultRowHeight
	}
	var out []*RowProps
	for r := 0; r < rows; r++ {
		h, err := f.GetRowHeight(sheet, r+1)
		if err != nil {
			continue
		}
		visible, err := f.GetRowVisible(sheet, r+1)
		hidden := err == nil && !visible
		if math.Abs(h-def) < 1e-9 && !hidden {
			continue
		}
		for len(out) < r {
			out = append(out, nil)
		}
		p := &RowProps{Hidden: hidden}
		if math.Abs(h-def) >= 1e-9 {
			p.Hpt = h
		}
		out = append(out, p)
	}
	return out
}

func (xr *xlsxReader) readColProps(sheet string, cols int) []*ColProps {
	f := xr.file
	var out []*ColProps
	for c := 0; c < cols; c++ {
		col := ColToName(c)
		w, err := f.GetColWidth(sheet, col)
		if err != nil {
			continue
		}
		visible, err := f.GetColVisible(sheet, col)
		hidden := err == nil && !visible
		custom := math.Abs(w-excelDefaultColWidth) >= 1e-9
		if !custom && !hidden {
			continue
		}
		for len(out) < c {
			out = append(out, nil)
		}
		p := &ColProps{Hidden: hidden}
		if custom {
			p.Wch = w
		}
		out = append(out, p)
	}
	return out
}

// rawStyleFromExcel converts an excelize style to the reader-neutral style record.
func rawStyleFromExcel(es *excelize.Style) *RawStyle {
	if es == nil {
		return nil
	}
	s := &RawStyle{}
	if ft := es.Font; ft != nil {
		s.Font = &RawFont{
			Size:      ft.Size,
			Name:      ft.Family,
			Bold:      ft.Bold,
			Italic:    ft.Italic,
			Underline: ft.Underline != "" && ft.Underline != "none",
			Strike:    ft.Strike,
			VertAlign: ft.VertAlign,
		}
		switch {
		case ft.Color != "":
			s.Font.Color = RGBColor(ft.Color)
		case ft.ColorTheme != nil:
			s.Font.Color = &ColorSpec{Theme: ft.ColorTheme, Tint: ft.ColorTint}
		case ft.ColorIndexed > 0:
			idx := ft.ColorIndexed
			s.Font.Color = &ColorSpec{Indexed: &idx}
		}
	}

	if fill := es.Fill; len(fill.Color) > 0 || fill.Pattern > 0 {
		rf := &RawFill{}
		switch {
		case fill.Type == "gradient":
			rf.PatternType = "solid"
		case fill.Pattern >= 0 && fill.Pattern < len(excelFillPatterns):
			rf.PatternType = excelFillPatterns[fill.Pattern]
		}
		if len(fill.Color) > 0 && fill.Color[0] != "" {
			rf.FgColor = RGBColor(fill.Color[0])
		}
		if rf.PatternType != "none" {
			s.Fill = rf
		}
	}

	if len(es.Border) > 0 {
		b := &RawBorder{}
		for _, eb := range es.Border {
			if eb.Style <= 0 || eb.Style >= len(excelBorderStyles) {
				continue
			}
			side := &RawBorderSide{Style: excelBorderStyles[eb.Style]}
			if eb.Color != "" {
				side.Color = RGBColor(eb.Color)
			}
			switch eb.Type {
			case "top":
				b.Top = side
			case "bottom":
				b.Bottom = side
			case "left":
				b.Left = side
			case "right":
				b.Right = side
			}
		}
		if b.Top != nil || b.Bottom != nil || b.Left != nil || b.Right != nil {
			s.Border = b
		}
	}

	if a := es.Alignment; a != nil {
		s.Alignment = &RawAlignment{
			Horizontal:   a.Horizontal,
			Vertical:     a.Vertical,
			WrapText:     a.WrapText,
			TextRotation: a.TextRotation,
			Indent:       a.Indent,
		}
	}

	if p := es.Protection; p != nil {
		locked, hidden := p.Locked, p.Hidden
		s.Protection = &RawProtection{Locked: &locked, Hidden: &hidden}
	}

	switch {
	case es.CustomNumFmt != nil && *es.CustomNumFmt != "":
		s.NumFmt = *es.CustomNumFmt
	case es.NumFmt > 0:
		s.NumFmt = builtInNumFmts[es.NumFmt]
	}
	return s
}
