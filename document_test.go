package univerconv

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextToDocument(t *testing.T) {
	doc := TextToDocument("first\r\nsecond\rthird", "doc_1")

	assert.Equal(t, "doc_1", doc.ID)
	assert.Equal(t, "first\rsecond\rthird\r\n", doc.Body.DataStream)
	assert.Equal(t, []Paragraph{{StartIndex: 5}, {StartIndex: 12}, {StartIndex: 18}}, doc.Body.Paragraphs)
	assert.Equal(t, []SectionBreak{{StartIndex: 20}}, doc.Body.SectionBreaks)
	assert.Empty(t, doc.Body.TextRuns)
	assert.NotNil(t, doc.Body.TextRuns)
	assert.Equal(t, DefaultDocumentStyle(), doc.DocumentStyle)
}

func TestTextToDocument_Blank(t *testing.T) {
	doc := TextToDocument(" \n ", "doc_1")
	assert.Equal(t, DefaultDocument("doc_1"), doc)
	assert.Equal(t, TerminalBreak, doc.Body.DataStream)
}

func TestTextToDocument_MultiByte(t *testing.T) {
	doc := TextToDocument("你好\n世界", "d")
	assert.Equal(t, []Paragraph{{StartIndex: 2}, {StartIndex: 5}}, doc.Body.Paragraphs)
	assert.Equal(t, 7, doc.Body.SectionBreaks[0].StartIndex)
}

func TestFailureDocument(t *testing.T) {
	doc := FailureDocument(errors.New("bad zip"), "d")
	require.Len(t, doc.Body.Paragraphs, 2)
	assert.Equal(t, "导入文件失败\n错误信息: bad zip", doc.Body.PlainText())
}

func TestHTMLToDocument(t *testing.T) {
	doc, err := HTMLToDocument(nil, `<h1>Title</h1><p><b>Bold</b> text</p>`, "d")
	require.NoError(t, err)

	body := doc.Body
	assert.Equal(t, "Title\rBold text\r\n", body.DataStream)
	require.Len(t, body.Paragraphs, 2)
	assert.Equal(t, 5, body.Paragraphs[0].StartIndex)
	require.NotNil(t, body.Paragraphs[0].ParagraphStyle)
	assert.Equal(t, NamedStyleHeading1, body.Paragraphs[0].ParagraphStyle.NamedStyleType)
	assert.Equal(t, 15, body.Paragraphs[1].StartIndex)
	assert.Nil(t, body.Paragraphs[1].ParagraphStyle)

	require.Len(t, body.TextRuns, 1)
	assert.Equal(t, TextRun{St: 6, Ed: 10, TS: &Style{Bold: True}}, body.TextRuns[0])
	assert.Equal(t, []SectionBreak{{StartIndex: 17}}, body.SectionBreaks)
}

func TestHTMLToDocument_BreaksAndStyles(t *testing.T) {
	src := `<html><head><title>skip</title></head><body>
<p style="text-align: center">one<br>two</p>
<p><span style="font-size: 12pt; color: rgb(0,0,255)">blue</span></p>
</body></html>`
	doc, err := HTMLToDocument(NewHTMLParser(), src, "d")
	require.NoError(t, err)

	body := doc.Body
	assert.Equal(t, "one\rtwo\rblue\r\n", body.DataStream)
	require.Len(t, body.Paragraphs, 3)
	assert.Nil(t, body.Paragraphs[0].ParagraphStyle)
	assert.Equal(t, &ParagraphStyle{HorizontalAlign: AlignCenter}, body.Paragraphs[1].ParagraphStyle)

	require.Len(t, body.TextRuns, 1)
	run := body.TextRuns[0]
	assert.Equal(t, 8, run.St)
	assert.Equal(t, 12, run.Ed)
	assert.Equal(t, 16.0, run.TS.FontSize)
	assert.Equal(t, "#0000FF", run.TS.Color.RGB)
}

func TestHTMLToDocument_PlainFragment(t *testing.T) {
	doc, err := HTMLToDocument(nil, "just text", "d")
	require.NoError(t, err)
	assert.Equal(t, "just text\r\n", doc.Body.DataStream)
	assert.Equal(t, []Paragraph{{StartIndex: 9}}, doc.Body.Paragraphs)
}

func TestNormalizeDocument(t *testing.T) {
	doc, err := NormalizeDocument([]byte(`{"body":{"dataStream":"hi\r\n"}}`), SequentialIDs())
	require.NoError(t, err)
	assert.Equal(t, "doc_1", doc.ID)
	assert.Equal(t, []Paragraph{{StartIndex: 0}}, doc.Body.Paragraphs)
	assert.Equal(t, []SectionBreak{{StartIndex: 4}}, doc.Body.SectionBreaks)
	assert.NotNil(t, doc.Body.TextRuns)
	assert.Equal(t, DefaultDocumentStyle(), doc.DocumentStyle)

	doc, err = NormalizeDocument([]byte(`{"id":"keep"}`), nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultDocument("keep"), doc)

	_, err = NormalizeDocument([]byte(`{`), nil)
	assert.Error(t, err)
}

func TestPlainText(t *testing.T) {
	var nilBody *DocumentBody
	assert.Equal(t, "", nilBody.PlainText())
	assert.Equal(t, "a\nb", (&DocumentBody{DataStream: "a\rb\r\n"}).PlainText())
}
