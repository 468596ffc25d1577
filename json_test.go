package univerconv

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkbookJSON_RoundTrip(t *testing.T) {
	wb := buildTest(t, roundTripRaw())
	data, err := MarshalWorkbook(wb)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"sheetOrder"`)

	back, err := ReadWorkbookJSON(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, wb.SheetOrder, back.SheetOrder)
	sheet := back.SheetByName("Data")
	require.NotNil(t, sheet)
	assert.Equal(t, "Title", sheet.CellData.Get(0, 0).V)
	assert.Equal(t, 42.5, sheet.CellData.Get(1, 0).V)

	_, err = UnmarshalWorkbook([]byte("{"))
	assert.ErrorContains(t, err, "decode workbook")
	_, err = MarshalWorkbook(nil)
	assert.ErrorIs(t, err, ErrMissingSnapshot)
}

func TestDocumentJSON_RoundTrip(t *testing.T) {
	doc := TextToDocument("a\nb", "doc_1")
	data, err := MarshalDocument(doc)
	require.NoError(t, err)

	back, err := UnmarshalDocument(data)
	require.NoError(t, err)
	assert.Equal(t, doc.Body.DataStream, back.Body.DataStream)
	assert.Equal(t, doc.Body.Paragraphs, back.Body.Paragraphs)

	_, err = MarshalDocument(nil)
	assert.ErrorIs(t, err, ErrMissingSnapshot)
}

func TestCloneJSON_DeepCopy(t *testing.T) {
	src := &Workbook{Sheets: map[string]*Sheet{"s": {Name: "S"}}}
	dst, data, err := cloneJSON(src)
	require.NoError(t, err)
	dst.Sheets["s"].Name = "changed"
	assert.Equal(t, "S", src.Sheets["s"].Name)
	assert.NotEmpty(t, data)
}

func TestLooksLikeJSON(t *testing.T) {
	assert.True(t, looksLikeJSON([]byte("\n {}")))
	assert.False(t, looksLikeJSON([]byte("[1]")))
	assert.False(t, looksLikeJSON(nil))
}
