package univerconv

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"html"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/xuri/excelize/v2"
)

// HTMLRuns is the flat text of an HTML fragment plus the styled ranges over it.
type HTMLRuns struct {
	Text     string
	TextRuns []TextRun
}

var richTextParser = &XMLParser{Strict: true}

// ParseRichTextXML decodes spreadsheet run markup
// (<r><rPr><b/><sz val="12"/>...</rPr><t>text</t></r>...) into a cell document.
// It returns nil without error when the markup carries no text.
func ParseRichTextXML(src string) (*DocumentData, error) {
	if strings.TrimSpace(src) == "" {
		return nil, nil
	}
	root, err := richTextParser.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("decode rich text: %w", err)
	}

	var (
		text strings.Builder
		runs []TextRun
		pos  int
	)
	for _, r := range root.FindAll("r") {
		t := r.Find("t")
		if t == nil {
			continue
		}
		content := t.TextContent()
		if content == "" {
			continue
		}
		n := utf8.RuneCountInString(content)
		text.WriteString(strings.ReplaceAll(content, "\n", "\r"))
		if ts := runPropertiesStyle(r.Find("rPr")); ts != nil {
			runs = append(runs, TextRun{St: pos, Ed: pos + n, TS: ts})
		}
		pos += n
	}

	full := text.String()
	if len(runs) == 0 {
		if all := strings.TrimSpace(root.TextContent()); all != "" {
			full = strings.ReplaceAll(all, "\n", "\r")
		}
	}
	if full == "" {
		return nil, nil
	}
	doc := PlainDocument(full)
	doc.Body.TextRuns = runs
	return doc, nil
}

func runPropertiesStyle(rPr *Node) *Style {
	if rPr == nil {
		return nil
	}
	s := &Style{}
	if rPr.Find("b") != nil {
		s.Bold = True
	}
	if rPr.Find("i") != nil {
		s.Italic = True
	}
	if rPr.Find("u") != nil {
		s.Underline = &Decoration{S: True}
	}
	if rPr.Find("strike") != nil {
		s.Strike = &Decoration{S: True}
	}
	if sz := rPr.Find("sz"); sz != nil {
		if v, err := strconv.ParseFloat(sz.Attr("val"), 64); err == nil && v > 0 {
			s.FontSize = v
		}
	}
	if c := rPr.Find("color"); c != nil {
		if rgb := c.Attr("rgb"); len(rgb) > 2 {
			s.Color = &ColorStyle{RGB: "#" + strings.ToUpper(rgb[2:])}
		}
	}
	if f := rPr.Find("rFont"); f != nil && f.Attr("val") != "" {
		s.FontFamily = f.Attr("val")
	}
	if va := rPr.Find("vertAlign"); va != nil {
		switch va.Attr("val") {
		case "superscript":
			s.BaselineOffset = BaselineSuperscript
		case "subscript":
			s.BaselineOffset = BaselineSubscript
		}
	}
	if s.IsZero() {
		return nil
	}
	return s
}

// PlainDocument wraps text as a single-paragraph cell document.
func PlainDocument(text string) *DocumentData {
	stream := text + "\r\n"
	return &DocumentData{
		Body: &DocumentBody{
			DataStream:    stream,
			TextRuns:      []TextRun{},
			Paragraphs:    []Paragraph{{StartIndex: 0}},
			SectionBreaks: []SectionBreak{{StartIndex: utf8.RuneCountInString(stream)}},
		},
	}
}

// HTMLToRuns flattens an HTML fragment into text plus styled runs.
// Tag styles (b, strong, i, em, u, s, strike, del) and inline style
// declarations each contribute; only non-empty styled ranges become runs.
func HTMLToRuns(p MarkupParser, src string) (*HTMLRuns, error) {
	if src == "" {
		return nil, nil
	}
	if p == nil {
		p = NewHTMLParser()
	}
	root, err := p.Parse("<div>" + strings.ReplaceAll(src, "&nbsp;", " ") + "</div>")
	if err != nil {
		return nil, err
	}

	out := &HTMLRuns{}
	var (
		text strings.Builder
		pos  int
	)
	var walk func(n *Node)
	walk = func(n *Node) {
		if n.Type == TextNode {
			text.WriteString(n.Text)
			pos += utf8.RuneCountInString(n.Text)
			return
		}
		start := pos
		for _, c := range n.Children {
			walk(c)
		}
		s := &Style{}
		applyTagStyle(s, n.Tag)
		applyInlineStyle(s, n.Attr("style"), 1)
		if !s.IsZero() && start < pos {
			out.TextRuns = append(out.TextRuns, TextRun{St: start, Ed: pos, TS: s})
		}
	}
	walk(root)
	out.Text = text.String()
	return out, nil
}

// applyTagStyle sets the character style implied by an inline tag.
func applyTagStyle(s *Style, tag string) {
	switch tag {
	case "b", "strong":
		s.Bold = True
	case "i", "em":
		s.Italic = True
	case "u":
		s.Underline = &Decoration{S: True}
	case "s", "strike", "del":
		s.Strike = &Decoration{S: True}
	case "sup":
		s.BaselineOffset = BaselineSuperscript
	case "sub":
		s.BaselineOffset = BaselineSubscript
	}
}

// applyInlineStyle applies a CSS declaration list. Point font sizes are
// multiplied by ptScale; other units are taken as-is.
func applyInlineStyle(s *Style, decl string, ptScale float64) {
	for _, item := range strings.Split(decl, ";") {
		prop, value, ok := strings.Cut(item, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		value = strings.TrimSpace(value)
		if prop == "" || value == "" {
			continue
		}
		switch prop {
		case "font-weight":
			if w, err := strconv.Atoi(value); value == "bold" || (err == nil && w >= 600) {
				s.Bold = True
			}
		case "font-style":
			if value == "italic" {
				s.Italic = True
			}
		case "text-decoration", "text-decoration-line":
			if strings.Contains(value, "underline") {
				s.Underline = &Decoration{S: True}
			}
			if strings.Contains(value, "line-through") {
				s.Strike = &Decoration{S: True}
			}
		case "color":
			if c := NormalizeCSSColor(value); c != "" {
				s.Color = &ColorStyle{RGB: c}
			}
		case "background-color", "background":
			if c := NormalizeCSSColor(value); c != "" {
				s.Background = &ColorStyle{RGB: c}
			}
		case "font-size":
			if size := parseFontSize(value, ptScale); size > 0 {
				s.FontSize = size
			}
		case "font-family":
			s.FontFamily = strings.NewReplacer(`"`, "", "'", "").Replace(value)
		case "vertical-align":
			switch value {
			case "super":
				s.BaselineOffset = BaselineSuperscript
			case "sub":
				s.BaselineOffset = BaselineSubscript
			}
		}
	}
}

// parseFontSize reads the leading number of a CSS length.
func parseFontSize(value string, ptScale float64) float64 {
	end := 0
	for end < len(value) && (value[end] >= '0' && value[end] <= '9' || value[end] == '.') {
		end++
	}
	size, err := strconv.ParseFloat(value[:end], 64)
	if err != nil || size <= 0 {
		return 0
	}
	if strings.HasSuffix(value, "pt") {
		size = float64(int(size*ptScale*100+0.5)) / 100
	}
	return size
}

var stripPolicy = bluemonday.StrictPolicy()

// StripTags removes all markup from src and returns the plain text.
func StripTags(src string) string {
	return html.UnescapeString(stripPolicy.Sanitize(src))
}

// span is a slice [St, Ed) of a rune buffer with the style that covers it (nil for plain).
type span struct {
	St, Ed int
	TS     *Style
}

// splitSpans cuts [start, end) into consecutive spans: each run overlapping the
// range is clipped to it, and the gaps between runs become plain spans.
func splitSpans(runs []TextRun, start, end int) []span {
	var picked []TextRun
	for _, r := range runs {
		if r.Ed > start && r.St < end {
			picked = append(picked, r)
		}
	}
	sort.SliceStable(picked, func(i, j int) bool { return picked[i].St < picked[j].St })

	var out []span
	cursor := start
	for _, r := range picked {
		st, ed := max(r.St, cursor), min(r.Ed, end)
		if st >= ed {
			continue
		}
		if st > cursor {
			out = append(out, span{St: cursor, Ed: st})
		}
		out = append(out, span{St: st, Ed: ed, TS: r.TS})
		cursor = ed
	}
	if cursor < end {
		out = append(out, span{St: cursor, Ed: end})
	}
	return out
}

// cellText returns the runes of a cell document without its terminal delimiter.
func cellText(doc *DocumentData) []rune {
	if doc == nil || doc.Body == nil {
		return nil
	}
	stream := strings.TrimSuffix(doc.Body.DataStream, "\r\n")
	return []rune(stream)
}

// RunsToRichText converts a cell document to spreadsheet rich-text runs.
// Paragraph delimiters become newlines.
func RunsToRichText(doc *DocumentData) []excelize.RichTextRun {
	text := cellText(doc)
	if len(text) == 0 {
		return nil
	}
	var out []excelize.RichTextRun
	for _, sp := range splitSpans(doc.Body.TextRuns, 0, len(text)) {
		run := excelize.RichTextRun{
			Text: strings.ReplaceAll(string(text[sp.St:sp.Ed]), "\r", "\n"),
		}
		if sp.TS != nil {
			run.Font = excelizeFont(sp.TS)
		}
		out = append(out, run)
	}
	return out
}

// richTextXML encodes spreadsheet rich-text runs as run markup, the inverse of ParseRichTextXML.
func richTextXML(runs []excelize.RichTextRun) string {
	var buf bytes.Buffer
	for _, r := range runs {
		buf.WriteString("<r>")
		if f := r.Font; f != nil {
			buf.WriteString("<rPr>")
			if f.Bold {
				buf.WriteString("<b/>")
			}
			if f.Italic {
				buf.WriteString("<i/>")
			}
			if f.Underline != "" && f.Underline != "none" {
				buf.WriteString("<u/>")
			}
			if f.Strike {
				buf.WriteString("<strike/>")
			}
			if f.VertAlign == "superscript" || f.VertAlign == "subscript" {
				fmt.Fprintf(&buf, `<vertAlign val="%s"/>`, f.VertAlign)
			}
			if f.Size > 0 {
				fmt.Fprintf(&buf, `<sz val="%s"/>`, strconv.FormatFloat(f.Size, 'f', -1, 64))
			}
			if f.Color != "" {
				fmt.Fprintf(&buf, `<color rgb="%s"/>`, toARGB(f.Color))
			}
			if f.Family != "" {
				buf.WriteString(`<rFont val="`)
				_ = xml.EscapeText(&buf, []byte(f.Family))
				buf.WriteString(`"/>`)
			}
			buf.WriteString("</rPr>")
		}
		buf.WriteString(`<t xml:space="preserve">`)
		_ = xml.EscapeText(&buf, []byte(r.Text))
		buf.WriteString("</t></r>")
	}
	return buf.String()
}
