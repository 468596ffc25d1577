package univerconv

import (
	"fmt"
	"math"
	"strconv"

	"go.uber.org/zap"
)

// Names used when the source does not provide one.
const (
	DefaultWorkbookName = "工作簿"
	sheetNamePrefix     = "工作表"
)

// Sheet sizing defaults, pixels.
const (
	minRowCount        = 30
	minColumnCount     = 26
	defaultColumnWidth = 73
	minColumnWidth     = 20
	defaultRowHeight   = 23
	minRowHeight       = 20
	cjkRowHeight       = 25
	rowHeaderWidth     = 46
	columnHeaderHeight = 20
)

// Builder turns a RawWorkbook into the workbook model.
// A Builder is safe for concurrent use; every Build call gets its own style table.
type Builder struct {
	opts *Options
	lock *LockRule
}

// NewBuilder creates a Builder with the given options.
// It fails only when the lock rule does not compile.
func NewBuilder(opts ...Option) (*Builder, error) {
	o := applyOptions(opts)
	b := &Builder{opts: o}
	if o.lockRule != "" {
		rule, err := CompileLockRule(o.lockRule)
		if err != nil {
			return nil, err
		}
		b.lock = rule
	}
	return b, nil
}

// Build converts raw into a workbook: cells are classified and styled,
// merges are cleaned, and row/column metadata is derived.
func (b *Builder) Build(raw *RawWorkbook) (*Workbook, error) {
	if raw == nil {
		raw = &RawWorkbook{}
	}
	ids := b.opts.ids
	styles := newStyleTable(ids)

	name := b.opts.fileName
	if name == "" {
		name = raw.FileName
	}
	if name == "" {
		name = DefaultWorkbookName
	}

	wb := &Workbook{
		ID:         ids("workbook"),
		Name:       name,
		AppVersion: b.opts.appVersion,
		Locale:     b.opts.locale,
		Sheets:     make(map[string]*Sheet, len(raw.Sheets)),
		SheetOrder: make([]string, 0, len(raw.Sheets)),
	}

	for i := range raw.Sheets {
		sheet, err := b.buildSheet(i, &raw.Sheets[i], styles)
		if err != nil {
			return nil, err
		}
		wb.Sheets[sheet.ID] = sheet
		wb.SheetOrder = append(wb.SheetOrder, sheet.ID)
	}
	wb.Styles = styles.styles

	names, err := EncodeDefinedNames(raw.DefinedNames, wb, ids)
	if err != nil {
		return nil, err
	}
	wb.Resources = []Resource{{Name: DefinedNameResource, Data: names}}

	b.opts.logger.Info("built workbook",
		zap.String("name", wb.Name),
		zap.Int("sheets", len(wb.SheetOrder)),
		zap.Int("styles", len(wb.Styles)),
		zap.Bool("readonly", b.opts.readonly))
	return wb, nil
}

func (b *Builder) buildSheet(index int, raw *RawSheet, styles *styleTable) (*Sheet, error) {
	name := raw.Name
	if name == "" {
		name = sheetNamePrefix + strconv.Itoa(index+1)
	}
	sheet := &Sheet{
		ID:                 b.opts.ids("sheet"),
		Name:               name,
		TabColor:           raw.TabColor,
		Hidden:             Bool(raw.Hidden),
		RowCount:           max(minRowCount, len(raw.Cells)),
		ColumnCount:        minColumnCount,
		DefaultColumnWidth: defaultColumnWidth,
		DefaultRowHeight:   defaultRowHeight,
		Freeze:             NoFreeze,
		MergeData:          append([]Range(nil), raw.Merges...),
		CellData:           make(CellMatrix),
		RowData:            make(map[int]*RowInfo),
		ColumnData:         make(map[int]*ColumnInfo),
		ShowGridlines:      True,
		RowHeader:          HeaderInfo{Width: rowHeaderWidth},
		ColumnHeader:       HeaderInfo{Height: columnHeaderHeight},
		RightToLeft:        False,
	}
	if raw.Freeze != nil {
		sheet.Freeze = *raw.Freeze
	}
	if b.opts.readonly {
		sheet.Protection = &SheetProtection{Sheet: true, Objects: true, Scenarios: true}
	}

	cjk := false
	texts := make([][]string, len(raw.Cells))
	for r, row := range raw.Cells {
		sheet.ColumnCount = max(sheet.ColumnCount, len(row))
		texts[r] = make([]string, len(row))
		for c := range row {
			cell, err := b.buildCell(sheet, r, c, &row[c], styles)
			if err != nil {
				return nil, err
			}
			sheet.CellData.Set(r, c, cell)
			if s, ok := row[c].Value.(string); ok && HasCJK(s) {
				cjk = true
			}
			texts[r][c] = cell.DisplayText()
		}
	}

	// Cells a merge creates are styled like a source cell without a style.
	blank := ""
	if len(sheet.MergeData) > 0 {
		var err error
		if blank, err = b.resolveStyle(&RawCell{}, styles); err != nil {
			return nil, err
		}
	}
	if err := cleanMergedCells(sheet, blank); err != nil {
		return nil, err
	}

	widths := b.sizeColumns(sheet, raw.ColProps)
	b.sizeRows(sheet, raw.RowProps, texts, widths)
	if cjk {
		sheet.DefaultRowHeight = math.Max(sheet.DefaultRowHeight, cjkRowHeight)
	}

	b.opts.logger.Debug("built sheet",
		zap.String("sheet", sheet.Name),
		zap.Int("rows", sheet.RowCount),
		zap.Int("columns", sheet.ColumnCount),
		zap.Int("merges", len(sheet.MergeData)))
	return sheet, nil
}

// buildCell resolves the value, rich text, formula and style of one source cell.
func (b *Builder) buildCell(sheet *Sheet, row, col int, raw *RawCell, styles *styleTable) (*Cell, error) {
	cell := &Cell{}
	value := b.resolveRichText(cell, raw, sheet.Name, row, col)
	cell.V, cell.T = ClassifyValue(value)
	cell.F = NormalizeFormula(raw.Formula)

	styleID, err := b.resolveStyle(raw, styles)
	if err != nil {
		return nil, err
	}
	cell.S = styleID

	if b.lock != nil && !b.opts.readonly {
		env := LockEnv{
			Sheet:   sheet.Name,
			Row:     row,
			Col:     col,
			Ref:     NewCellRef("", row, col).CellName(),
			Value:   cell.V,
			Type:    cell.T.String(),
			Formula: cell.F,
		}
		locked, err := b.lock.Match(env)
		if err != nil {
			return nil, fmt.Errorf("lock cell %s!%s: %w", sheet.Name, env.Ref, err)
		}
		if locked {
			base := styles.styles[cell.S]
			if base == nil {
				base = DefaultStyle()
			}
			if cell.S, err = styles.intern(lockedStyle(base)); err != nil {
				return nil, err
			}
		}
	}
	return cell, nil
}

// resolveRichText attaches the rich-text payload of raw to cell, if any, and
// returns the value to classify. Undecodable payloads degrade to their text.
func (b *Builder) resolveRichText(cell *Cell, raw *RawCell, sheet string, row, col int) any {
	log := b.opts.logger
	switch {
	case raw.RichTextXML != "":
		doc, err := ParseRichTextXML(raw.RichTextXML)
		if err == nil && doc != nil {
			cell.P = doc
			return doc.Body.PlainText()
		}
		if err != nil {
			log.Debug("rich text fell back to plain text",
				zap.String("sheet", sheet), zap.Int("row", row), zap.Int("col", col), zap.Error(err))
		}
		return fallbackText(raw.RichTextXML, raw.Value)

	case raw.HTML != "":
		res, err := HTMLToRuns(b.opts.parser, raw.HTML)
		if err == nil && res != nil && res.Text != "" {
			if len(res.TextRuns) > 0 {
				doc := PlainDocument(res.Text)
				doc.Body.TextRuns = res.TextRuns
				cell.P = doc
			}
			return res.Text
		}
		if err != nil {
			log.Debug("html fell back to plain text",
				zap.String("sheet", sheet), zap.Int("row", row), zap.Int("col", col), zap.Error(err))
		}
		return fallbackText(raw.HTML, raw.Value)

	case raw.Text != "":
		return raw.Text
	}
	return raw.Value
}

func fallbackText(markup string, value any) any {
	if text := StripTags(markup); text != "" {
		return text
	}
	return value
}

// resolveStyle returns the style id of a cell; "" leaves it unstyled.
func (b *Builder) resolveStyle(raw *RawCell, styles *styleTable) (string, error) {
	if b.opts.readonly {
		return styles.intern(MergeWithDefault(NormalizeStyle(raw.Style, true)))
	}
	if raw.StyleNull {
		return "", nil
	}
	if raw.Style == nil {
		return DefaultStyleID, nil
	}
	s := NormalizeStyle(raw.Style, false)
	if s == nil {
		return DefaultStyleID, nil
	}
	return styles.intern(MergeWithDefault(s))
}

// sizeColumns fills columnData and defaultColumnWidth and returns the
// per-column pixel widths used by the row-height estimate.
func (b *Builder) sizeColumns(sheet *Sheet, props []*ColProps) []float64 {
	widths := make([]float64, len(props))
	first := true
	for i, p := range props {
		widths[i] = defaultColumnWidth
		if p == nil {
			continue
		}
		w, ok := p.pixelWidth()
		if ok {
			widths[i] = w
			if first {
				sheet.DefaultColumnWidth = w
				first = false
			}
		}
		if ok || p.Hidden {
			if !ok {
				w = defaultColumnWidth
			}
			sheet.ColumnData[i] = &ColumnInfo{W: math.Max(w, minColumnWidth), HD: Bool(p.Hidden)}
		}
	}
	return widths
}

// pixelWidth applies the width priority wpx > wch > excelWidth > width.
func (p *ColProps) pixelWidth() (float64, bool) {
	switch {
	case p.Wpx > 0:
		return p.Wpx, true
	case p.Wch > 0:
		return math.Round(p.Wch * 7.5), true
	case p.ExcelWidth > 0:
		return math.Round(p.ExcelWidth * 7), true
	case p.Width > 0:
		return p.Width, true
	}
	return 0, false
}

// pixelHeight applies the height priority hpx > hpt > height.
func (p *RowProps) pixelHeight() (float64, bool) {
	switch {
	case p.Hpx > 0:
		return p.Hpx, true
	case p.Hpt > 0:
		return math.Round(p.Hpt * 1.33), true
	case p.Height > 0:
		return p.Height, true
	}
	return 0, false
}

// sizeRows fills rowData from the content estimate reconciled with the
// explicit row props, and derives defaultRowHeight.
func (b *Builder) sizeRows(sheet *Sheet, props []*RowProps, texts [][]string, widths []float64) {
	cfg := b.opts.rowHeight
	estimates := make([]float64, len(texts))
	for r, row := range texts {
		h := cfg.RowHeight(row, widths)
		estimates[r] = h
		sheet.RowData[r] = &RowInfo{H: h, HD: False, AH: h}
	}

	first := true
	for i, p := range props {
		if p == nil {
			continue
		}
		if h, ok := p.pixelHeight(); ok && first {
			sheet.DefaultRowHeight = math.Max(minRowHeight, h)
			first = false
		}
		estimate := 0.0
		if i < len(estimates) {
			estimate = estimates[i]
		}
		if info := cfg.MergeRowHeight(p, estimate); info != nil {
			sheet.RowData[i] = info
		}
	}
}

// styleTable interns styles by content for one conversion.
type styleTable struct {
	ids    IDGenerator
	styles map[string]*Style
	byKey  map[string]string
}

func newStyleTable(ids IDGenerator) *styleTable {
	t := &styleTable{
		ids:    ids,
		styles: map[string]*Style{DefaultStyleID: DefaultStyle()},
		byKey:  make(map[string]string),
	}
	if key, err := json.Marshal(t.styles[DefaultStyleID]); err == nil {
		t.byKey[string(key)] = DefaultStyleID
	}
	return t
}

// intern returns the id of a style equal to s, registering s when it is new.
func (t *styleTable) intern(s *Style) (string, error) {
	key, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("encode style: %w", err)
	}
	if id, ok := t.byKey[string(key)]; ok {
		return id, nil
	}
	id := t.ids("style")
	t.styles[id] = s
	t.byKey[string(key)] = id
	return id, nil
}
