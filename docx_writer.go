package univerconv

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/unidoc/unioffice/color"
	"github.com/unidoc/unioffice/document"
	"github.com/unidoc/unioffice/measurement"
	"github.com/unidoc/unioffice/schema/soo/ofc/sharedTypes"
	"github.com/unidoc/unioffice/schema/soo/wml"
	"go.uber.org/zap"
)

var paragraphAligns = map[int]wml.ST_Jc{
	AlignUnspecified: wml.ST_JcLeft,
	AlignLeft:        wml.ST_JcLeft,
	AlignCenter:      wml.ST_JcCenter,
	AlignRight:       wml.ST_JcRight,
	AlignJustify:     wml.ST_JcBoth,
}

// WriteDOCX renders a document as a .docx file.
func WriteDOCX(doc *DocumentData, w io.Writer, opts ...Option) error {
	o := applyOptions(opts)
	paras, err := SplitParagraphs(doc)
	if err != nil {
		return err
	}

	out := document.New()
	applyPageLayout(out, doc.DocumentStyle)

	if len(paras) == 0 {
		out.AddParagraph().AddRun().AddText("")
	}
	for _, p := range paras {
		writeParagraph(out.AddParagraph(), p)
	}

	if err := out.Save(w); err != nil {
		return fmt.Errorf("save docx: %w", err)
	}
	o.logger.Info("exported document",
		zap.String("id", doc.ID),
		zap.Int("paragraphs", len(paras)))
	return nil
}

// applyPageLayout sets the page size and margins; points become twentieths of a point.
func applyPageLayout(out *document.Document, ds *DocumentStyle) {
	if ds == nil {
		ds = DefaultDocumentStyle()
	}
	width, height := ds.PageSize.Width, ds.PageSize.Height
	if width <= 0 || height <= 0 {
		def := DefaultDocumentStyle().PageSize
		width, height = def.Width, def.Height
	}
	orientation := wml.ST_PageOrientationPortrait
	if width > height {
		orientation = wml.ST_PageOrientationLandscape
	}
	section := out.BodySection()
	section.SetPageSizeAndOrientation(
		measurement.Distance(width)*measurement.Point,
		measurement.Distance(height)*measurement.Point,
		orientation)
	section.SetPageMargins(
		measurement.Distance(ds.MarginTop)*measurement.Point,
		measurement.Distance(ds.MarginRight)*measurement.Point,
		measurement.Distance(ds.MarginBottom)*measurement.Point,
		measurement.Distance(ds.MarginLeft)*measurement.Point,
		0, 0, 0)
}

func writeParagraph(para document.Paragraph, p ExportParagraph) {
	switch level := p.Heading(); {
	case level < 0:
		para.SetStyle("Title")
	case level > 0:
		para.SetStyle("Heading" + strconv.Itoa(level))
	}

	if ps := p.Style; ps != nil {
		props := para.Properties()
		if jc, ok := paragraphAligns[ps.HorizontalAlign]; ok && ps.HorizontalAlign != AlignUnspecified {
			props.SetAlignment(jc)
		}
		if ps.SpaceAbove > 0 || ps.SpaceBelow > 0 {
			props.Spacing().SetBefore(measurement.Distance(ps.SpaceAbove) * measurement.Point)
			props.Spacing().SetAfter(measurement.Distance(ps.SpaceBelow) * measurement.Point)
		}
		if ps.LineSpacing > 0 {
			// Line spacing is a multiple of single spacing (240 twips).
			props.Spacing().SetLineSpacing(measurement.Distance(ps.LineSpacing*12)*measurement.Point, wml.ST_LineSpacingRuleAuto)
		}
		if ps.IndentStart > 0 {
			props.SetStartIndent(measurement.Distance(ps.IndentStart) * measurement.Point)
		}
		if ps.IndentEnd > 0 {
			props.SetEndIndent(measurement.Distance(ps.IndentEnd) * measurement.Point)
		}
		if ps.IndentFirstLine > 0 {
			props.SetFirstLineIndent(measurement.Distance(ps.IndentFirstLine) * measurement.Point)
		}
	}

	if len(p.Runs) == 0 {
		para.AddRun().AddText("")
		return
	}
	for _, r := range p.Runs {
		run := para.AddRun()
		run.AddText(r.Text)
		if r.Style != nil {
			applyRunStyle(run, r.Style)
		}
	}
}

func applyRunStyle(run document.Run, ts *Style) {
	props := run.Properties()
	if ts.FontFamily != "" {
		props.SetFontFamily(ts.FontFamily)
	}
	if ts.FontSize > 0 {
		props.SetSize(measurement.Distance(ts.FontSize) * measurement.Point)
	}
	if ts.Color != nil && ts.Color.RGB != "" {
		props.SetColor(color.FromHex(ts.Color.RGB))
	}
	if ts.Bold == True {
		props.SetBold(true)
	}
	if ts.Italic == True {
		props.SetItalic(true)
	}
	if ts.Underline != nil && ts.Underline.S == True {
		props.SetUnderline(wml.ST_UnderlineSingle, color.Auto)
	}
	if ts.Strike != nil && ts.Strike.S == True {
		props.SetStrikeThrough(true)
	}
	switch ts.BaselineOffset {
	case BaselineSuperscript:
		props.SetVerticalAlignment(sharedTypes.ST_VerticalAlignRunSuperscript)
	case BaselineSubscript:
		props.SetVerticalAlignment(sharedTypes.ST_VerticalAlignRunSubscript)
	}
	if ts.Background != nil && ts.Background.RGB != "" {
		fill := strings.ToUpper(strings.TrimPrefix(ts.Background.RGB, "#"))
		shd := wml.NewCT_Shd()
		shd.ValAttr = wml.ST_ShdClear
		shd.ColorAttr = &wml.ST_HexColor{ST_HexColorAuto: wml.ST_HexColorAutoAuto}
		shd.FillAttr = &wml.ST_HexColor{ST_HexColorRGB: &fill}
		props.X().Shd = shd
	}
}
