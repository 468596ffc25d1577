package univerconv

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/unidoc/unioffice/document"
	"github.com/unidoc/unioffice/schema/soo/ofc/sharedTypes"
	"github.com/unidoc/unioffice/schema/soo/wml"
)

var docxAligns = map[wml.ST_Jc]int{
	wml.ST_JcLeft:   AlignLeft,
	wml.ST_JcStart:  AlignLeft,
	wml.ST_JcCenter: AlignCenter,
	wml.ST_JcRight:  AlignRight,
	wml.ST_JcEnd:    AlignRight,
	wml.ST_JcBoth:   AlignJustify,
}

// ReadDOCX reads a .docx file into the document model. Body paragraphs are
// read in order, including those inside table cells, with their character
// formatting, heading style and justification.
func ReadDOCX(r io.ReaderAt, size int64, opts ...Option) (*DocumentData, error) {
	o := applyOptions(opts)
	src, err := document.Read(r, size)
	if err != nil {
		return nil, fmt.Errorf("read docx: %w", err)
	}

	d := &docBuilder{}
	for _, p := range docxParagraphs(src) {
		for _, run := range p.Runs() {
			d.text(runText(run), docxRunStyle(run))
		}
		d.paragraph(docxParagraphStyle(p))
	}
	doc := d.finish(o.ids("doc"))
	doc.DocumentStyle = docxPageLayout(src)
	return doc, nil
}

// docxParagraphs returns the body paragraphs in document order, descending into tables.
func docxParagraphs(src *document.Document) []document.Paragraph {
	body := src.X().Body
	if body == nil {
		return nil
	}
	pMap := make(map[*wml.CT_P]document.Paragraph)
	for _, p := range src.Paragraphs() {
		pMap[p.X()] = p
	}
	tMap := make(map[*wml.CT_Tbl]document.Table)
	for _, t := range src.Tables() {
		tMap[t.X()] = t
	}

	var out []document.Paragraph
	for _, bl := range body.EG_BlockLevelElts {
		for _, c := range bl.EG_ContentBlockContent {
			for _, cp := range c.P {
				if p, ok := pMap[cp]; ok {
					out = append(out, p)
				}
			}
			for _, ct := range c.Tbl {
				t, ok := tMap[ct]
				if !ok {
					continue
				}
				for _, row := range t.Rows() {
					for _, cell := range row.Cells() {
						out = append(out, cell.Paragraphs()...)
					}
				}
			}
		}
	}
	return out
}

// runText returns the text of a run with tabs and breaks flattened.
func runText(run document.Run) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(run.Text())
}

func docxRunStyle(run document.Run) *Style {
	props := run.Properties()
	s := &Style{}
	if props.IsBold() {
		s.Bold = True
	}
	if props.IsItalic() {
		s.Italic = True
	}
	rpr := props.X()
	if rpr == nil {
		return s
	}
	if rpr.U != nil && rpr.U.ValAttr != wml.ST_UnderlineUnset && rpr.U.ValAttr != wml.ST_UnderlineNone {
		s.Underline = &Decoration{S: True}
	}
	if rpr.Strike != nil {
		s.Strike = &Decoration{S: True}
	}
	if rpr.Sz != nil && rpr.Sz.ValAttr.ST_UnsignedDecimalNumber != nil {
		// Half-points.
		s.FontSize = float64(*rpr.Sz.ValAttr.ST_UnsignedDecimalNumber) / 2
	}
	if rpr.Color != nil && rpr.Color.ValAttr.ST_HexColorRGB != nil {
		if c := NormalizeCSSColor("#" + *rpr.Color.ValAttr.ST_HexColorRGB); c != "" {
			s.Color = &ColorStyle{RGB: c}
		}
	}
	if rpr.RFonts != nil && rpr.RFonts.AsciiAttr != nil {
		s.FontFamily = *rpr.RFonts.AsciiAttr
	}
	if rpr.VertAlign != nil {
		switch rpr.VertAlign.ValAttr {
		case sharedTypes.ST_VerticalAlignRunSuperscript:
			s.BaselineOffset = BaselineSuperscript
		case sharedTypes.ST_VerticalAlignRunSubscript:
			s.BaselineOffset = BaselineSubscript
		}
	}
	if rpr.Highlight != nil && rpr.Highlight.ValAttr != wml.ST_HighlightColorNone {
		if c := NormalizeCSSColor(rpr.Highlight.ValAttr.String()); c != "" {
			s.Background = &ColorStyle{RGB: c}
		}
	}
	if rpr.Shd != nil && rpr.Shd.FillAttr != nil && rpr.Shd.FillAttr.ST_HexColorRGB != nil {
		if c := NormalizeCSSColor("#" + *rpr.Shd.FillAttr.ST_HexColorRGB); c != "" && !isWhite(c) {
			s.Background = &ColorStyle{RGB: c}
		}
	}
	return s
}

func docxParagraphStyle(p document.Paragraph) *ParagraphStyle {
	ps := &ParagraphStyle{NamedStyleType: docxNamedStyle(p.Style())}
	if ppr := p.X().PPr; ppr != nil && ppr.Jc != nil {
		ps.HorizontalAlign = docxAligns[ppr.Jc.ValAttr]
	}
	if *ps == (ParagraphStyle{}) {
		return nil
	}
	return ps
}

// docxNamedStyle maps a paragraph style id such as "Heading2" or "Title".
func docxNamedStyle(style string) int {
	switch {
	case style == "Title":
		return NamedStyleTitle
	case strings.HasPrefix(style, "Heading"):
		level, err := strconv.Atoi(strings.TrimPrefix(style, "Heading"))
		if err == nil && level >= 1 && level <= 6 {
			return NamedStyleHeading1 + level - 1
		}
	}
	return NamedStyleNormal
}

// docxPageLayout reads the body section page size and margins (twips) in points.
func docxPageLayout(src *document.Document) *DocumentStyle {
	ds := DefaultDocumentStyle()
	body := src.X().Body
	if body == nil || body.SectPr == nil {
		return ds
	}
	sect := body.SectPr
	if sz := sect.PgSz; sz != nil {
		if w := twips(sz.WAttr); w > 0 {
			ds.PageSize.Width = w
		}
		if h := twips(sz.HAttr); h > 0 {
			ds.PageSize.Height = h
		}
	}
	if m := sect.PgMar; m != nil {
		ds.MarginTop = signedTwips(m.TopAttr, ds.MarginTop)
		ds.MarginBottom = signedTwips(m.BottomAttr, ds.MarginBottom)
		ds.MarginLeft = twipsOr(m.LeftAttr, ds.MarginLeft)
		ds.MarginRight = twipsOr(m.RightAttr, ds.MarginRight)
	}
	return ds
}

func twips(m *sharedTypes.ST_TwipsMeasure) float64 {
	if m == nil || m.ST_UnsignedDecimalNumber == nil {
		return 0
	}
	return float64(*m.ST_UnsignedDecimalNumber) / 20
}

func twipsOr(m sharedTypes.ST_TwipsMeasure, fallback float64) float64 {
	if v := twips(&m); v > 0 {
		return v
	}
	return fallback
}

func signedTwips(m wml.ST_SignedTwipsMeasure, fallback float64) float64 {
	if m.Int64 == nil {
		return fallback
	}
	return float64(*m.Int64) / 20
}
