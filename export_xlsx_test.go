package univerconv

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func roundTripRaw() *RawWorkbook {
	bold := `<r><rPr><b/></rPr><t>Bold</t></r><r><t xml:space="preserve"> rest</t></r>`
	return &RawWorkbook{
		Sheets: []RawSheet{
			{
				Name: "Data",
				Cells: [][]RawCell{
					{{Value: "Title"}, {}, {Value: "0012"}},
					{{Value: 42.5}, {Value: true}, {Value: 2.0, Formula: "A2*2"}},
					{{Value: "x", RichTextXML: bold}},
				},
				Merges: []Range{{StartRow: 0, EndRow: 0, StartColumn: 0, EndColumn: 1}},
				Freeze: &Freeze{StartRow: 1, StartColumn: 0, YSplit: 1},
			},
			{
				Name:   "Hidden",
				Hidden: true,
				Cells:  [][]RawCell{{{Value: "secret"}}},
			},
		},
		DefinedNames: []DefinedName{{Name: "Answer", RefersTo: "Data!$A$2"}},
	}
}

func TestExportXLSX_RoundTrip(t *testing.T) {
	wb := buildTest(t, roundTripRaw())

	data, err := ExportXLSX(wb)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	raw, err := ReadXLSX(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, raw.Sheets, 2)

	data0 := raw.Sheets[0]
	assert.Equal(t, "Data", data0.Name)
	assert.False(t, data0.Hidden)
	assert.Equal(t, "Title", data0.Cells[0][0].Value)
	assert.Equal(t, "0012", data0.Cells[0][2].Value)
	assert.Equal(t, 42.5, data0.Cells[1][0].Value)
	assert.Equal(t, true, data0.Cells[1][1].Value)
	assert.Equal(t, "A2*2", data0.Cells[1][2].Formula)
	assert.Equal(t, []Range{{StartRow: 0, EndRow: 0, StartColumn: 0, EndColumn: 1}}, data0.Merges)
	require.NotNil(t, data0.Freeze)
	assert.Equal(t, 1, data0.Freeze.YSplit)
	assert.Equal(t, 0, data0.Freeze.XSplit)
	assert.NotEmpty(t, data0.Cells[2][0].RichTextXML)

	assert.Equal(t, "Hidden", raw.Sheets[1].Name)
	assert.True(t, raw.Sheets[1].Hidden)
	assert.Equal(t, []DefinedName{{Name: "Answer", RefersTo: "Data!$A$2"}}, raw.DefinedNames)

	// Rebuilding restores the model values.
	back := buildTest(t, raw)
	sheet := back.SheetByName("Data")
	require.NotNil(t, sheet)
	assert.Equal(t, &Cell{V: "0012", T: CellForceString, S: sheet.CellData.Get(0, 2).S}, sheet.CellData.Get(0, 2))
	assert.Equal(t, 42.5, sheet.CellData.Get(1, 0).V)
	assert.Equal(t, CellNumber, sheet.CellData.Get(1, 0).T)
	assert.Equal(t, CellBoolean, sheet.CellData.Get(1, 1).T)
	assert.Equal(t, "=A2*2", sheet.CellData.Get(1, 2).F)
	assert.Equal(t, Freeze{StartRow: 1, StartColumn: 0, YSplit: 1}, sheet.Freeze)

	rich := sheet.CellData.Get(2, 0)
	require.NotNil(t, rich.P)
	assert.Equal(t, "Bold rest", rich.V)
	require.NotEmpty(t, rich.P.Body.TextRuns)
	assert.Equal(t, True, rich.P.Body.TextRuns[0].TS.Bold)

	assert.Equal(t, True, back.SheetByName("Hidden").Hidden)
}

func TestExportXLSX_Styles(t *testing.T) {
	wb := buildTest(t, singleSheet([]RawCell{
		{Value: "styled", Style: &RawStyle{
			Font:   &RawFont{Bold: true, Size: 14, Color: RGBColor("FFFF0000")},
			Fill:   &RawFill{PatternType: "solid", FgColor: RGBColor("FFFFFF00")},
			Border: &RawBorder{Top: &RawBorderSide{Style: "thick"}},
			NumFmt: "0.00%",
		}},
	}))

	data, err := ExportXLSX(wb)
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	id, err := f.GetCellStyle("Data", "A1")
	require.NoError(t, err)
	style, err := f.GetStyle(id)
	require.NoError(t, err)

	require.NotNil(t, style.Font)
	assert.True(t, style.Font.Bold)
	assert.Equal(t, 14.0, style.Font.Size)
	assert.Equal(t, 10, style.NumFmt)
	require.NotEmpty(t, style.Fill.Color)
	assert.Contains(t, style.Fill.Color[0], "FFFF00")
	require.Len(t, style.Border, 1)
	assert.Equal(t, "top", style.Border[0].Type)
	assert.Equal(t, 5, style.Border[0].Style)
	require.NotNil(t, style.Alignment)
	assert.Equal(t, "center", style.Alignment.Horizontal)
}

func TestExportXLSX_SizesAndHiddenRows(t *testing.T) {
	raw := singleSheet([]RawCell{{Value: "a"}}, []RawCell{{Value: "b"}})
	raw.Sheets[0].RowProps = []*RowProps{nil, {Hpx: 40, Hidden: true}}
	raw.Sheets[0].ColProps = []*ColProps{{Wpx: 150}}
	wb := buildTest(t, raw)

	data, err := ExportXLSX(wb)
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	h, err := f.GetRowHeight("Data", 2)
	require.NoError(t, err)
	assert.InDelta(t, 30.0, h, 0.01)
	visible, err := f.GetRowVisible("Data", 2)
	require.NoError(t, err)
	assert.False(t, visible)

	w, err := f.GetColWidth("Data", "A")
	require.NoError(t, err)
	assert.InDelta(t, 20.0, w, 0.01)
}

func TestExportXLSX_AllHiddenKeepsFirstVisible(t *testing.T) {
	wb := buildTest(t, &RawWorkbook{Sheets: []RawSheet{
		{Name: "One", Hidden: true, Cells: [][]RawCell{{{Value: 1.0}}}},
		{Name: "Two", Hidden: true, Cells: [][]RawCell{{{Value: 2.0}}}},
	}})

	data, err := ExportXLSX(wb)
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	one, err := f.GetSheetVisible("One")
	require.NoError(t, err)
	two, err := f.GetSheetVisible("Two")
	require.NoError(t, err)
	assert.True(t, one)
	assert.False(t, two)
}

func TestExportXLSX_MissingSnapshot(t *testing.T) {
	_, err := ExportXLSX(nil)
	assert.ErrorIs(t, err, ErrMissingSnapshot)

	_, err = ExportXLSX(&Workbook{})
	assert.ErrorIs(t, err, ErrMissingSnapshot)

	_, err = ExportXLSX(&Workbook{SheetOrder: []string{"ghost"}, Sheets: map[string]*Sheet{}})
	assert.ErrorIs(t, err, ErrMissingSnapshot)
}

func TestExportXLSX_SkipsDanglingSheetIDs(t *testing.T) {
	wb := buildTest(t, singleSheet([]RawCell{{Value: "kept"}}))
	wb.SheetOrder = append([]string{"ghost"}, wb.SheetOrder...)

	data, err := ExportXLSX(wb)
	require.NoError(t, err)
	raw, err := ReadXLSX(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, raw.Sheets, 1)
	assert.Equal(t, "kept", raw.Sheets[0].Cells[0][0].Value)
}

func TestFreezePanes(t *testing.T) {
	p := freezePanes(Freeze{XSplit: 2, YSplit: 1})
	assert.Equal(t, "C2", p.TopLeftCell)
	assert.Equal(t, "bottomRight", p.ActivePane)
	assert.Equal(t, "bottomLeft", freezePanes(Freeze{YSplit: 3}).ActivePane)
	assert.Equal(t, "topRight", freezePanes(Freeze{XSplit: 1}).ActivePane)
}

func TestExportXLSX_DefaultStyleFont(t *testing.T) {
	raw := singleSheet([]RawCell{
		{Value: "plain"},
		{Value: "x", RichTextXML: `<r><rPr><b/><rFont val="Microsoft YaHei, Arial, sans-serif"/></rPr><t>rich</t></r>`},
	})
	wb := buildTest(t, raw)
	require.Equal(t, DefaultFontFamily, wb.Styles[DefaultStyleID].FontFamily)

	data, err := ExportXLSX(wb)
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	id, err := f.GetCellStyle("Data", "A1")
	require.NoError(t, err)
	style, err := f.GetStyle(id)
	require.NoError(t, err)
	require.NotNil(t, style.Font)
	assert.Equal(t, "Microsoft YaHei", style.Font.Family)

	runs, err := f.GetCellRichText("Data", "B1")
	require.NoError(t, err)
	require.NotEmpty(t, runs)
	require.NotNil(t, runs[0].Font)
	assert.Equal(t, "Microsoft YaHei", runs[0].Font.Family)
}

func TestExcelFontFamily(t *testing.T) {
	tests := map[string]string{
		DefaultFontFamily: "Microsoft YaHei",
		`"Times New Roman", serif`:              "Times New Roman",
		" 'Courier New' ": "Courier New",
		"Arial":           "Arial",
		"":                "",
		strings.Repeat("字", 40) + ", sans-serif": strings.Repeat("字", 31),
	}
	for in, want := range tests {
		assert.Equal(t, want, excelFontFamily(in), in)
	}
}
