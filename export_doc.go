package univerconv

import (
	"fmt"
	"sort"
	"strings"
)

// ExportRun is a span of paragraph text with its character style (nil for plain text).
type ExportRun struct {
	Text  string
	Style *Style
}

// ExportParagraph is one paragraph reconstructed from a document body.
type ExportParagraph struct {
	Text  string
	Runs  []ExportRun
	Style *ParagraphStyle
}

// Heading returns the heading level (1..6), 0 for body text and -1 for a title.
func (p ExportParagraph) Heading() int {
	if p.Style == nil {
		return 0
	}
	switch n := p.Style.NamedStyleType; {
	case n == NamedStyleTitle:
		return -1
	case n >= NamedStyleHeading1 && n < NamedStyleHeading1+6:
		return n - NamedStyleHeading1 + 1
	}
	return 0
}

// SplitParagraphs reconstructs the paragraphs of a document. Paragraph markers
// are the exclusive ends of consecutive segments; each run overlapping a
// segment is clipped to it, and unstyled gaps become plain runs. Blank
// paragraphs are kept except a blank last one.
func SplitParagraphs(doc *DocumentData) ([]ExportParagraph, error) {
	if doc == nil || doc.Body == nil || doc.Body.DataStream == "" {
		return nil, fmt.Errorf("split paragraphs: %w", ErrMissingBody)
	}
	body := doc.Body
	stream := []rune(body.DataStream)

	if len(body.Paragraphs) == 0 {
		text := strings.TrimSpace(strings.ReplaceAll(body.DataStream, "\r\n", "\n"))
		if text == "" {
			return nil, nil
		}
		return []ExportParagraph{{Text: text, Runs: []ExportRun{{Text: text}}}}, nil
	}

	markers := append([]Paragraph(nil), body.Paragraphs...)
	sort.SliceStable(markers, func(i, j int) bool { return markers[i].StartIndex < markers[j].StartIndex })

	out := make([]ExportParagraph, 0, len(markers))
	start := 0
	for i, m := range markers {
		end := min(max(m.StartIndex, start), len(stream))
		text := strings.TrimSuffix(strings.TrimSuffix(string(stream[start:end]), "\r\n"), "\n")
		last := i == len(markers)-1
		next := m.StartIndex + 1

		if text == "" {
			if !last {
				out = append(out, ExportParagraph{Style: m.ParagraphStyle})
			}
			start = min(max(next, start), len(stream))
			continue
		}

		local := []rune(text)
		p := ExportParagraph{Text: text, Style: m.ParagraphStyle}
		for _, sp := range splitSpans(body.TextRuns, start, start+len(local)) {
			p.Runs = append(p.Runs, ExportRun{
				Text:  string(local[sp.St-start : sp.Ed-start]),
				Style: sp.TS,
			})
		}
		out = append(out, p)
		start = min(max(next, start), len(stream))
	}
	return out, nil
}
