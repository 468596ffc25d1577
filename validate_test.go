package univerconv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateWorkbook_Valid(t *testing.T) {
	raw := singleSheet([]RawCell{{Value: "Name"}, {Value: 1.0, Formula: "1"}})
	raw.Sheets[0].Merges = []Range{{StartRow: 1, EndRow: 2, StartColumn: 0, EndColumn: 0}}
	raw.DefinedNames = []DefinedName{{Name: "N", RefersTo: "Data!A1"}}

	issues, err := ValidateWorkbook(buildTest(t, raw))
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestValidateWorkbook_SheetOrder(t *testing.T) {
	wb := buildTest(t, singleSheet([]RawCell{{Value: "a"}}))
	id := wb.SheetOrder[0]
	wb.Sheets["orphan"] = &Sheet{ID: "orphan", Name: "Orphan", RowCount: minRowCount, ColumnCount: minColumnCount}
	wb.SheetOrder = []string{id, id, "ghost"}

	issues, err := ValidateWorkbook(wb)
	require.NoError(t, err)
	assert.True(t, HasErrors(issues))

	var msgs []string
	for _, i := range issues {
		msgs = append(msgs, i.Message)
	}
	assert.Contains(t, msgs, `sheet "`+id+`" listed twice in sheetOrder`)
	assert.Contains(t, msgs, `sheetOrder references unknown sheet "ghost"`)
	assert.Contains(t, msgs, `sheet "orphan" missing from sheetOrder`)
}

func TestValidateWorkbook_CellProblems(t *testing.T) {
	wb := buildTest(t, singleSheet([]RawCell{{Value: "a"}, {Value: "b"}}))
	sheet := firstSheet(t, wb)
	sheet.CellData.Set(0, 2, &Cell{V: "x", S: "nope"})
	sheet.CellData.Set(0, 3, &Cell{V: "text", T: CellNumber})
	sheet.CellData.Set(0, 4, &Cell{V: 1.0, T: CellBoolean, F: "SUM(A1)"})
	sheet.MergeData = []Range{{StartRow: 0, EndRow: 0, StartColumn: 0, EndColumn: 1}}

	issues, err := ValidateWorkbook(wb)
	require.NoError(t, err)

	byRef := map[string][]ValidationIssue{}
	for _, i := range issues {
		byRef[i.Ref] = append(byRef[i.Ref], i)
	}
	require.Len(t, byRef["Data!C1"], 1)
	assert.Equal(t, SeverityError, byRef["Data!C1"][0].Severity)
	require.Len(t, byRef["Data!D1"], 1)
	assert.Equal(t, SeverityWarning, byRef["Data!D1"][0].Severity)
	assert.Len(t, byRef["Data!E1"], 2)
	require.Len(t, byRef["Data!B1"], 1)
	assert.Contains(t, byRef["Data!B1"][0].Message, "member of merge A1:B1")
}

func TestValidateWorkbook_Counts(t *testing.T) {
	wb := buildTest(t, singleSheet([]RawCell{{Value: "a"}}))
	sheet := firstSheet(t, wb)
	sheet.RowCount = 1
	sheet.ColumnCount = 1

	issues, err := ValidateWorkbook(wb)
	require.NoError(t, err)
	assert.False(t, HasErrors(issues))
	require.Len(t, issues, 2)
	assert.Equal(t, "[WARN] Data: rowCount 1 is below 30", issues[0].String())
	assert.Equal(t, "[WARN] Data: columnCount 1 is below 26", issues[1].String())
}

func TestValidateWorkbook_BadMerge(t *testing.T) {
	wb := buildTest(t, singleSheet([]RawCell{{Value: "a"}}))
	firstSheet(t, wb).MergeData = []Range{
		{StartRow: 0, EndRow: 1, StartColumn: 0, EndColumn: 1},
		{StartRow: 1, EndRow: 2, StartColumn: 1, EndColumn: 2},
	}
	issues, err := ValidateWorkbook(wb)
	require.NoError(t, err)
	require.True(t, HasErrors(issues))
	assert.Equal(t, "Data", issues[0].Ref)
}

func TestValidateWorkbook_Nil(t *testing.T) {
	_, err := ValidateWorkbook(nil)
	assert.ErrorIs(t, err, ErrMissingSnapshot)
}

func TestValidateDocument(t *testing.T) {
	issues, err := ValidateDocument(TextToDocument("one\ntwo", "d"))
	require.NoError(t, err)
	assert.Empty(t, issues)

	doc := &DocumentData{Body: &DocumentBody{
		DataStream: "ab\rc",
		Paragraphs: []Paragraph{{StartIndex: 2}, {StartIndex: 1}, {StartIndex: 9}},
		TextRuns:   []TextRun{{St: 3, Ed: 3}},
	}}
	issues, err = ValidateDocument(doc)
	require.NoError(t, err)
	var got []string
	for _, i := range issues {
		got = append(got, i.String())
	}
	assert.Equal(t, []string{
		`[WARN] dataStream does not end with \r\n`,
		"[ERROR] paragraphs are not sorted by startIndex",
		"[ERROR] paragraph 2: startIndex 1 does not point at a paragraph delimiter",
		"[ERROR] paragraph 3: startIndex 9 outside dataStream",
		"[ERROR] run 1: range [3,3) invalid for a 4-character stream",
	}, got)
}

func TestValidateDocument_MissingBody(t *testing.T) {
	issues, err := ValidateDocument(&DocumentData{})
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, "[ERROR] "+ErrMissingBody.Error(), issues[0].String())

	_, err = ValidateDocument(nil)
	assert.ErrorIs(t, err, ErrMissingSnapshot)
}

func TestValidateWorkbook_FormulaUnknownSheet(t *testing.T) {
	wb := buildTest(t, singleSheet([]RawCell{{Value: 1.0, Formula: "Data!A2+'Old Sheet'!B1"}}))
	issues, err := ValidateWorkbook(wb)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, `[WARN] Data!A1: formula refers to unknown sheet "Old Sheet"`, issues[0].String())
}
