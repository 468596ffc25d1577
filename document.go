package univerconv

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

// Delimiters of the document data stream.
const (
	ParagraphBreak = "\r"
	TerminalBreak  = "\r\n"
)

var headingTags = map[string]int{
	"h1": NamedStyleHeading1,
	"h2": NamedStyleHeading1 + 1,
	"h3": NamedStyleHeading1 + 2,
	"h4": NamedStyleHeading1 + 3,
	"h5": NamedStyleHeading1 + 4,
	"h6": NamedStyleHeading1 + 5,
}

var textAligns = map[string]int{
	"left":    AlignLeft,
	"start":   AlignLeft,
	"center":  AlignCenter,
	"right":   AlignRight,
	"end":     AlignRight,
	"justify": AlignJustify,
}

// PlainText returns the text of the body with paragraph delimiters turned
// into newlines and the terminal delimiter dropped.
func (b *DocumentBody) PlainText() string {
	if b == nil {
		return ""
	}
	text := strings.TrimSuffix(b.DataStream, TerminalBreak)
	return strings.ReplaceAll(text, ParagraphBreak, "\n")
}

// DefaultDocument returns an empty single-paragraph document.
func DefaultDocument(id string) *DocumentData {
	return &DocumentData{
		ID: id,
		Body: &DocumentBody{
			DataStream:    TerminalBreak,
			TextRuns:      []TextRun{},
			Paragraphs:    []Paragraph{{StartIndex: 0}},
			SectionBreaks: []SectionBreak{{StartIndex: 2}},
		},
		DocumentStyle: DefaultDocumentStyle(),
	}
}

// TextToDocument splits text on newlines (any convention) into paragraphs.
// Blank input yields the default document.
func TextToDocument(text, id string) *DocumentData {
	if strings.TrimSpace(text) == "" {
		return DefaultDocument(id)
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	lines := strings.Split(text, "\n")

	var (
		stream strings.Builder
		paras  = make([]Paragraph, 0, len(lines))
		pos    int
	)
	for i, line := range lines {
		stream.WriteString(line)
		pos += utf8.RuneCountInString(line)
		paras = append(paras, Paragraph{StartIndex: pos})
		if i < len(lines)-1 {
			stream.WriteString(ParagraphBreak)
			pos++
		} else {
			stream.WriteString(TerminalBreak)
			pos += 2
		}
	}
	return &DocumentData{
		ID: id,
		Body: &DocumentBody{
			DataStream:    stream.String(),
			TextRuns:      []TextRun{},
			Paragraphs:    paras,
			SectionBreaks: []SectionBreak{{StartIndex: pos}},
		},
		DocumentStyle: DefaultDocumentStyle(),
	}
}

// FailureDocument is the document shown in place of a file that could not be read.
func FailureDocument(err error, id string) *DocumentData {
	return TextToDocument(fmt.Sprintf("导入文件失败\n错误信息: %v", err), id)
}

// docBuilder accumulates a data stream with runs and paragraph markers.
type docBuilder struct {
	stream strings.Builder
	runs   []TextRun
	paras  []Paragraph
	pos    int
}

func (d *docBuilder) text(s string, ts *Style) {
	if s == "" {
		return
	}
	n := utf8.RuneCountInString(s)
	if !ts.IsZero() {
		style := *ts
		d.runs = append(d.runs, TextRun{St: d.pos, Ed: d.pos + n, TS: &style})
	}
	d.stream.WriteString(s)
	d.pos += n
}

func (d *docBuilder) paragraph(ps *ParagraphStyle) {
	d.paras = append(d.paras, Paragraph{StartIndex: d.pos, ParagraphStyle: ps})
	d.stream.WriteString(ParagraphBreak)
	d.pos++
}

// finish guarantees at least one paragraph and a terminal delimiter.
func (d *docBuilder) finish(id string) *DocumentData {
	if len(d.paras) == 0 {
		d.paragraph(nil)
	}
	stream := d.stream.String()
	switch {
	case strings.HasSuffix(stream, TerminalBreak):
	case strings.HasSuffix(stream, ParagraphBreak):
		stream += "\n"
		d.pos++
	default:
		stream += TerminalBreak
		d.pos += 2
	}
	runs := d.runs
	if runs == nil {
		runs = []TextRun{}
	}
	return &DocumentData{
		ID: id,
		Body: &DocumentBody{
			DataStream:    stream,
			TextRuns:      runs,
			Paragraphs:    d.paras,
			SectionBreaks: []SectionBreak{{StartIndex: d.pos}},
		},
		DocumentStyle: DefaultDocumentStyle(),
	}
}

var htmlWhitespace = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ")

// HTMLToDocument converts an HTML document or fragment into the document model.
// p, h1..h6 and li close a paragraph; inline tags and style attributes
// accumulate a character style; br breaks the paragraph; other elements are
// transparent.
func HTMLToDocument(p MarkupParser, src, id string) (*DocumentData, error) {
	if p == nil {
		p = NewHTMLParser()
	}
	root, err := p.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("convert html document: %w", err)
	}

	d := &docBuilder{}
	var walk func(n *Node, style *Style)
	walk = func(n *Node, style *Style) {
		if n.Type == TextNode {
			if strings.TrimSpace(n.Text) == "" && strings.ContainsAny(n.Text, "\r\n\t") {
				return
			}
			d.text(htmlWhitespace.Replace(n.Text), style)
			return
		}
		switch n.Tag {
		case "head", "script", "style", "title":
			return
		case "br":
			d.paragraph(nil)
			return
		}

		child := *style
		applyTagStyle(&child, n.Tag)
		if decl := n.Attr("style"); decl != "" {
			applyInlineStyle(&child, decl, 1.33)
			child.FontSize = math.Round(child.FontSize)
		}
		for _, c := range n.Children {
			walk(c, &child)
		}

		switch n.Tag {
		case "p", "h1", "h2", "h3", "h4", "h5", "h6", "li":
			d.paragraph(blockParagraphStyle(n))
		}
	}
	walk(root, &Style{})
	return d.finish(id), nil
}

// blockParagraphStyle derives the paragraph style of a block element, or nil.
func blockParagraphStyle(n *Node) *ParagraphStyle {
	ps := &ParagraphStyle{NamedStyleType: headingTags[n.Tag]}
	for _, item := range strings.Split(n.Attr("style"), ";") {
		prop, value, ok := strings.Cut(item, ":")
		if ok && strings.TrimSpace(strings.ToLower(prop)) == "text-align" {
			ps.HorizontalAlign = textAligns[strings.TrimSpace(strings.ToLower(value))]
		}
	}
	if *ps == (ParagraphStyle{}) {
		return nil
	}
	return ps
}

// NormalizeDocument decodes a JSON document and fills in whatever is missing.
// A document without body.dataStream becomes the default document.
// ids supplies the id when the input has none.
func NormalizeDocument(data []byte, ids IDGenerator) (*DocumentData, error) {
	doc, err := UnmarshalDocument(data)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = UUIDs()
	}
	id := doc.ID
	if id == "" {
		id = ids("doc")
	}
	if doc.Body == nil || doc.Body.DataStream == "" {
		return DefaultDocument(id), nil
	}

	out := &DocumentData{ID: id, Body: doc.Body, DocumentStyle: doc.DocumentStyle}
	body := out.Body
	if body.TextRuns == nil {
		body.TextRuns = []TextRun{}
	}
	if len(body.Paragraphs) == 0 {
		body.Paragraphs = []Paragraph{{StartIndex: 0}}
	}
	if len(body.SectionBreaks) == 0 {
		body.SectionBreaks = []SectionBreak{{StartIndex: utf8.RuneCountInString(body.DataStream)}}
	}
	if out.DocumentStyle == nil {
		out.DocumentStyle = DefaultDocumentStyle()
	}
	return out, nil
}
