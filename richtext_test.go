package univerconv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParseRichTextXML(t *testing.T) {
	doc, err := ParseRichTextXML(`<r><rPr><b/><sz val="14"/><color rgb="FFFF0000"/><rFont val="Arial"/></rPr><t>Red</t></r>` +
		`<r><t xml:space="preserve"> plain</t></r>` +
		`<r><rPr><i/><vertAlign val="subscript"/></rPr><t>2</t></r>`)
	require.NoError(t, err)
	require.NotNil(t, doc)

	assert.Equal(t, "Red plain2\r\n", doc.Body.DataStream)
	assert.Equal(t, "Red plain2", doc.Body.PlainText())
	require.Len(t, doc.Body.TextRuns, 2)

	first := doc.Body.TextRuns[0]
	assert.Equal(t, 0, first.St)
	assert.Equal(t, 3, first.Ed)
	assert.Equal(t, &Style{
		Bold:       True,
		FontSize:   14,
		Color:      &ColorStyle{RGB: "#FF0000"},
		FontFamily: "Arial",
	}, first.TS)

	second := doc.Body.TextRuns[1]
	assert.Equal(t, 9, second.St)
	assert.Equal(t, 10, second.Ed)
	assert.Equal(t, True, second.TS.Italic)
	assert.Equal(t, BaselineSubscript, second.TS.BaselineOffset)
}

func TestParseRichTextXML_Empty(t *testing.T) {
	doc, err := ParseRichTextXML("  ")
	assert.NoError(t, err)
	assert.Nil(t, doc)

	doc, err = ParseRichTextXML("<r><t></t></r>")
	assert.NoError(t, err)
	assert.Nil(t, doc)
}

func TestParseRichTextXML_Invalid(t *testing.T) {
	_, err := ParseRichTextXML("<r><t>open")
	assert.Error(t, err)
}

func TestParseRichTextXML_Newlines(t *testing.T) {
	doc, err := ParseRichTextXML(`<r><rPr><b/></rPr><t>a` + "\n" + `b</t></r>`)
	require.NoError(t, err)
	assert.Equal(t, "a\rb\r\n", doc.Body.DataStream)
	assert.Equal(t, "a\nb", doc.Body.PlainText())
}

func TestRunsToRichText(t *testing.T) {
	doc := PlainDocument("Hello world")
	doc.Body.TextRuns = []TextRun{{St: 6, Ed: 11, TS: &Style{Bold: True}}}

	runs := RunsToRichText(doc)
	require.Len(t, runs, 2)
	assert.Equal(t, excelize.RichTextRun{Text: "Hello "}, runs[0])
	assert.Equal(t, "world", runs[1].Text)
	require.NotNil(t, runs[1].Font)
	assert.True(t, runs[1].Font.Bold)

	assert.Nil(t, RunsToRichText(nil))
	assert.Nil(t, RunsToRichText(PlainDocument("")))
}

func TestRichTextXML_RoundTrip(t *testing.T) {
	doc := PlainDocument("Big & bold")
	doc.Body.TextRuns = []TextRun{{St: 0, Ed: 3, TS: &Style{Bold: True, FontSize: 16, Color: &ColorStyle{RGB: "#00FF00"}}}}

	xml := richTextXML(RunsToRichText(doc))
	assert.Contains(t, xml, "&amp;")

	back, err := ParseRichTextXML(xml)
	require.NoError(t, err)
	assert.Equal(t, "Big & bold", back.Body.PlainText())
	require.Len(t, back.Body.TextRuns, 1)
	run := back.Body.TextRuns[0]
	assert.Equal(t, 0, run.St)
	assert.Equal(t, 3, run.Ed)
	assert.Equal(t, True, run.TS.Bold)
	assert.Equal(t, 16.0, run.TS.FontSize)
	assert.Equal(t, "#00FF00", run.TS.Color.RGB)
}

func TestHTMLToRuns(t *testing.T) {
	res, err := HTMLToRuns(nil, `<b>Bold</b>&nbsp;<span style="color: #f00; font-size: 12pt">red</span>`)
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, "Bold red", res.Text)
	require.Len(t, res.TextRuns, 2)
	assert.Equal(t, TextRun{St: 0, Ed: 4, TS: &Style{Bold: True}}, res.TextRuns[0])
	assert.Equal(t, 5, res.TextRuns[1].St)
	assert.Equal(t, 8, res.TextRuns[1].Ed)
	assert.Equal(t, &Style{Color: &ColorStyle{RGB: "#FF0000"}, FontSize: 12}, res.TextRuns[1].TS)
}

func TestHTMLToRuns_XMLBackend(t *testing.T) {
	res, err := HTMLToRuns(NewXMLParser(), `<i>it</i> and <u>under</u>`)
	require.NoError(t, err)
	assert.Equal(t, "it and under", res.Text)
	require.Len(t, res.TextRuns, 2)
	assert.Equal(t, True, res.TextRuns[0].TS.Italic)
	assert.Equal(t, &Decoration{S: True}, res.TextRuns[1].TS.Underline)
}

func TestHTMLToRuns_Empty(t *testing.T) {
	res, err := HTMLToRuns(nil, "")
	assert.NoError(t, err)
	assert.Nil(t, res)
}

func TestStripTags(t *testing.T) {
	assert.Equal(t, "a & b", StripTags("<p>a &amp; <b>b</b></p>"))
	assert.Equal(t, "", StripTags("<br/>"))
}

func TestSplitSpans(t *testing.T) {
	bold := &Style{Bold: True}
	spans := splitSpans([]TextRun{{St: 2, Ed: 8, TS: bold}}, 4, 10)
	assert.Equal(t, []span{{St: 4, Ed: 8, TS: bold}, {St: 8, Ed: 10}}, spans)

	spans = splitSpans(nil, 0, 3)
	assert.Equal(t, []span{{St: 0, Ed: 3}}, spans)
}
