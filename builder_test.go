package univerconv

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTest(t *testing.T, raw *RawWorkbook, opts ...Option) *Workbook {
	t.Helper()
	b, err := NewBuilder(append([]Option{WithIDGenerator(SequentialIDs())}, opts...)...)
	require.NoError(t, err)
	wb, err := b.Build(raw)
	require.NoError(t, err)
	return wb
}

func singleSheet(rows ...[]RawCell) *RawWorkbook {
	return &RawWorkbook{Sheets: []RawSheet{{Name: "Data", Cells: rows}}}
}

func firstSheet(t *testing.T, wb *Workbook) *Sheet {
	t.Helper()
	require.NotEmpty(t, wb.SheetOrder)
	sheet := wb.Sheets[wb.SheetOrder[0]]
	require.NotNil(t, sheet)
	return sheet
}

func TestBuild_WorkbookDefaults(t *testing.T) {
	wb := buildTest(t, &RawWorkbook{Sheets: []RawSheet{{}, {Name: "Second"}}})

	assert.Equal(t, "workbook_1", wb.ID)
	assert.Equal(t, DefaultWorkbookName, wb.Name)
	assert.Equal(t, DefaultLocale, wb.Locale)
	assert.Equal(t, DefaultAppVersion, wb.AppVersion)
	assert.Equal(t, []string{"sheet_1", "sheet_2"}, wb.SheetOrder)
	assert.Equal(t, "工作表1", wb.Sheets["sheet_1"].Name)
	assert.Equal(t, "Second", wb.Sheets["sheet_2"].Name)
	assert.Equal(t, DefaultStyle(), wb.Styles[DefaultStyleID])

	sheet := wb.Sheets["sheet_1"]
	assert.Equal(t, minRowCount, sheet.RowCount)
	assert.Equal(t, minColumnCount, sheet.ColumnCount)
	assert.Equal(t, NoFreeze, sheet.Freeze)
	assert.Nil(t, sheet.Protection)

	res, ok := wb.Resource(DefinedNameResource)
	require.True(t, ok)
	assert.Empty(t, res.Data)
}

func TestBuild_FileNameOption(t *testing.T) {
	wb := buildTest(t, &RawWorkbook{FileName: "raw.xlsx"}, WithFileName("report.xlsx"))
	assert.Equal(t, "report.xlsx", wb.Name)
	assert.Empty(t, wb.SheetOrder)
}

func TestBuild_ClassifiesValues(t *testing.T) {
	wb := buildTest(t, singleSheet([]RawCell{
		{Value: "0012"},
		{Value: "42"},
		{Value: "TRUE"},
		{Value: "text"},
		{Value: 3.5, Formula: "A1*2"},
	}))
	sheet := firstSheet(t, wb)

	assert.Equal(t, &Cell{V: "0012", T: CellForceString, S: DefaultStyleID}, sheet.CellData.Get(0, 0))
	assert.Equal(t, 42.0, sheet.CellData.Get(0, 1).V)
	assert.Equal(t, CellNumber, sheet.CellData.Get(0, 1).T)
	assert.Equal(t, true, sheet.CellData.Get(0, 2).V)
	assert.Equal(t, CellString, sheet.CellData.Get(0, 3).T)
	assert.Equal(t, "=A1*2", sheet.CellData.Get(0, 4).F)
	assert.Equal(t, 3.5, sheet.CellData.Get(0, 4).V)
}

func TestBuild_StyleNullVersusAbsent(t *testing.T) {
	raw, err := UnmarshalRawWorkbook([]byte(`{"sheets":[{"name":"S","cells":[[
		{"value":"a","style":null},
		{"value":"b"},
		{"value":"c","style":{"font":{"bold":true}}}
	]]}]}`))
	require.NoError(t, err)
	assert.True(t, raw.Sheets[0].Cells[0][0].StyleNull)
	assert.False(t, raw.Sheets[0].Cells[0][1].StyleNull)

	wb := buildTest(t, raw)
	sheet := firstSheet(t, wb)

	assert.Equal(t, "", sheet.CellData.Get(0, 0).S)
	assert.Equal(t, DefaultStyleID, sheet.CellData.Get(0, 1).S)

	boldID := sheet.CellData.Get(0, 2).S
	require.NotEmpty(t, boldID)
	bold := wb.Styles[boldID]
	require.NotNil(t, bold)
	assert.Equal(t, True, bold.Bold)
	assert.Equal(t, AlignCenter, bold.HorizontalAlign, "merged over the default style")
}

func TestBuild_ReadonlyLocksEveryCell(t *testing.T) {
	raw := singleSheet([]RawCell{
		{Value: "plain"},
		{Value: "null", StyleNull: true},
		{Value: "unlocked", Style: &RawStyle{Protection: &RawProtection{Locked: new(bool)}}},
		{Value: "bold", Style: &RawStyle{Font: &RawFont{Bold: true}}},
	})
	wb := buildTest(t, raw, WithReadonly(true))
	sheet := firstSheet(t, wb)

	require.NotNil(t, sheet.Protection)
	assert.True(t, sheet.Protection.Sheet)
	for c := 0; c < 4; c++ {
		cell := sheet.CellData.Get(0, c)
		require.NotNil(t, cell)
		style := wb.Styles[cell.S]
		require.NotNil(t, style, "cell %d has style %q", c, cell.S)
		require.NotNil(t, style.Protection, "cell %d", c)
		assert.True(t, style.Protection.Locked, "cell %d", c)
	}
}

func TestBuild_StylesAreInterned(t *testing.T) {
	bold := func() *RawStyle { return &RawStyle{Font: &RawFont{Bold: true}} }
	wb := buildTest(t, singleSheet(
		[]RawCell{{Value: "a", Style: bold()}, {Value: "b", Style: bold()}},
		[]RawCell{{Value: "c", Style: &RawStyle{Font: &RawFont{Italic: true}}}},
	))
	sheet := firstSheet(t, wb)

	assert.Equal(t, sheet.CellData.Get(0, 0).S, sheet.CellData.Get(0, 1).S)
	assert.NotEqual(t, sheet.CellData.Get(0, 0).S, sheet.CellData.Get(1, 0).S)
	assert.Len(t, wb.Styles, 3)
}

func TestBuild_RichTextPrecedence(t *testing.T) {
	xml := `<r><rPr><b/></rPr><t>Bold</t></r><r><t xml:space="preserve"> tail</t></r>`
	wb := buildTest(t, singleSheet([]RawCell{
		{Value: "ignored", RichTextXML: xml, HTML: "<b>also ignored</b>"},
		{Value: "ignored", HTML: "<b>Hi</b> there"},
		{Value: 12.0, Text: "12.00"},
	}))
	sheet := firstSheet(t, wb)

	rich := sheet.CellData.Get(0, 0)
	require.NotNil(t, rich.P)
	assert.Equal(t, "Bold tail", rich.V)
	require.NotEmpty(t, rich.P.Body.TextRuns)
	run := rich.P.Body.TextRuns[0]
	assert.Equal(t, 0, run.St)
	assert.Equal(t, 4, run.Ed)
	require.NotNil(t, run.TS)
	assert.Equal(t, True, run.TS.Bold)

	html := sheet.CellData.Get(0, 1)
	assert.Equal(t, "Hi there", html.V)
	require.NotNil(t, html.P)

	formatted := sheet.CellData.Get(0, 2)
	assert.Equal(t, 12.0, formatted.V)
	assert.Nil(t, formatted.P)
}

func TestBuild_BrokenRichTextFallsBack(t *testing.T) {
	wb := buildTest(t, singleSheet([]RawCell{{Value: "v", RichTextXML: "<r><t>unclosed"}}))
	cell := firstSheet(t, wb).CellData.Get(0, 0)
	assert.Nil(t, cell.P)
	assert.Equal(t, "unclosed", cell.V)
}

func TestBuild_LockRule(t *testing.T) {
	wb := buildTest(t, singleSheet(
		[]RawCell{{Value: "header"}, {Value: "header2"}},
		[]RawCell{{Value: "1"}, {Value: "2", Formula: "=A2+1"}},
	), WithLockRule(`row == 0 || formula != ""`))
	sheet := firstSheet(t, wb)

	locked := func(r, c int) bool {
		s := wb.Styles[sheet.CellData.Get(r, c).S]
		return s != nil && s.Protection != nil && s.Protection.Locked
	}
	assert.True(t, locked(0, 0))
	assert.True(t, locked(0, 1))
	assert.False(t, locked(1, 0))
	assert.True(t, locked(1, 1))
}

func TestBuild_BadLockRule(t *testing.T) {
	_, err := NewBuilder(WithLockRule("row +"))
	assert.Error(t, err)
}

func TestBuild_MergesKeepOnlyAnchor(t *testing.T) {
	raw := singleSheet(
		[]RawCell{{Value: "title"}, {Value: "stray"}, {Value: "x"}},
		[]RawCell{{Value: "y", Formula: "=1"}},
	)
	raw.Sheets[0].Merges = []Range{{StartRow: 1, EndRow: 0, StartColumn: 0, EndColumn: 1}}
	sheet := firstSheet(t, buildTest(t, raw))

	require.Len(t, sheet.MergeData, 1)
	assert.Equal(t, Range{StartRow: 0, EndRow: 1, StartColumn: 0, EndColumn: 1}, sheet.MergeData[0])
	assert.Equal(t, "title", sheet.CellData.Get(0, 0).V)
	assert.True(t, sheet.CellData.Get(0, 1).IsEmpty())
	assert.True(t, sheet.CellData.Get(1, 0).IsEmpty())
	assert.True(t, sheet.CellData.Get(1, 1).IsEmpty())
	assert.Equal(t, DefaultStyleID, sheet.CellData.Get(1, 1).S)
	assert.Equal(t, "x", sheet.CellData.Get(0, 2).V)
}

func TestBuild_MergeBelowDataIsStyled(t *testing.T) {
	raw := singleSheet([]RawCell{{Value: "a"}})
	raw.Sheets[0].Merges = []Range{{StartRow: 2, EndRow: 3, StartColumn: 0, EndColumn: 1}}

	t.Run("readonly", func(t *testing.T) {
		wb := buildTest(t, raw, WithReadonly(true))
		sheet := firstSheet(t, wb)
		for _, pos := range [][2]int{{2, 0}, {2, 1}, {3, 0}, {3, 1}} {
			cell := sheet.CellData.Get(pos[0], pos[1])
			require.NotNil(t, cell, "%v", pos)
			assert.True(t, cell.IsEmpty(), "%v", pos)
			style := wb.Styles[cell.S]
			require.NotNil(t, style, "%v has style %q", pos, cell.S)
			require.NotNil(t, style.Protection, "%v", pos)
			assert.True(t, style.Protection.Locked, "%v", pos)
		}
	})

	t.Run("edit", func(t *testing.T) {
		sheet := firstSheet(t, buildTest(t, raw))
		for _, pos := range [][2]int{{2, 0}, {2, 1}, {3, 0}, {3, 1}} {
			cell := sheet.CellData.Get(pos[0], pos[1])
			require.NotNil(t, cell, "%v", pos)
			assert.Equal(t, DefaultStyleID, cell.S, "%v", pos)
		}
	})
}

func TestBuild_OverlappingMergesFail(t *testing.T) {
	raw := singleSheet([]RawCell{{Value: "a"}})
	raw.Sheets[0].Merges = []Range{
		{StartRow: 0, EndRow: 1, StartColumn: 0, EndColumn: 1},
		{StartRow: 1, EndRow: 2, StartColumn: 1, EndColumn: 2},
	}
	b, err := NewBuilder()
	require.NoError(t, err)
	_, err = b.Build(raw)
	assert.ErrorIs(t, err, ErrInvalidMerge)
}

func TestBuild_RowHeights(t *testing.T) {
	long := strings.Repeat("汉", 25)
	wb := buildTest(t, singleSheet(
		[]RawCell{{Value: "short"}},
		[]RawCell{{Value: long}},
	))
	sheet := firstSheet(t, wb)

	require.Contains(t, sheet.RowData, 0)
	require.Contains(t, sheet.RowData, 1)
	assert.Equal(t, 23.0, sheet.RowData[0].H)
	assert.Equal(t, 76.0, sheet.RowData[1].H)
	assert.Equal(t, sheet.RowData[1].H, sheet.RowData[1].AH)
	assert.GreaterOrEqual(t, sheet.DefaultRowHeight, 25.0)
}

func TestBuild_RowAndColumnProps(t *testing.T) {
	raw := singleSheet([]RawCell{{Value: "a"}, {Value: "b"}})
	raw.Sheets[0].RowProps = []*RowProps{{Hpt: 30}, nil, {Hidden: true}}
	raw.Sheets[0].ColProps = []*ColProps{{Wch: 20}, {Hidden: true}, {Wpx: 10}}
	sheet := firstSheet(t, buildTest(t, raw))

	assert.Equal(t, 40.0, sheet.RowData[0].H)
	assert.Equal(t, 40.0, sheet.DefaultRowHeight)
	assert.Equal(t, True, sheet.RowData[2].HD)

	assert.Equal(t, 150.0, sheet.ColumnData[0].W)
	assert.Equal(t, 150.0, sheet.DefaultColumnWidth)
	assert.Equal(t, True, sheet.ColumnData[1].HD)
	assert.Equal(t, float64(defaultColumnWidth), sheet.ColumnData[1].W)
	assert.Equal(t, float64(minColumnWidth), sheet.ColumnData[2].W)
}

func TestBuild_DefinedNames(t *testing.T) {
	raw := singleSheet([]RawCell{{Value: 1.0}})
	raw.DefinedNames = []DefinedName{
		{Name: "Total", RefersTo: "Data!$A$1"},
		{Name: "Local", RefersTo: "=Data!$A$1", Scope: "Data"},
	}
	wb := buildTest(t, raw)

	names, err := DecodeDefinedNames(wb)
	require.NoError(t, err)
	assert.Equal(t, []DefinedName{
		{Name: "Local", RefersTo: "=Data!$A$1", Scope: "Data"},
		{Name: "Total", RefersTo: "=Data!$A$1"},
	}, names)
}

func TestBuild_DefinedNameUnknownScope(t *testing.T) {
	raw := singleSheet([]RawCell{{Value: 1.0}})
	raw.DefinedNames = []DefinedName{{Name: "X", RefersTo: "A1", Scope: "Missing"}}
	b, err := NewBuilder()
	require.NoError(t, err)
	_, err = b.Build(raw)
	assert.ErrorIs(t, err, ErrUnknownSheet)
}

func TestBuild_FreezeAndTabColor(t *testing.T) {
	raw := singleSheet([]RawCell{{Value: "a"}})
	raw.Sheets[0].Freeze = &Freeze{StartRow: 1, StartColumn: 0, YSplit: 1}
	raw.Sheets[0].TabColor = "#FF0000"
	raw.Sheets[0].Hidden = true
	sheet := firstSheet(t, buildTest(t, raw))

	assert.Equal(t, Freeze{StartRow: 1, StartColumn: 0, YSplit: 1}, sheet.Freeze)
	assert.Equal(t, "#FF0000", sheet.TabColor)
	assert.Equal(t, True, sheet.Hidden)
}
