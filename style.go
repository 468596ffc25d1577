package univerconv

// DefaultFontFamily is the font stack of the default style.
const DefaultFontFamily = "Microsoft YaHei, Arial, sans-serif"

// Grey fills substituted for the lightGray and darkGray pattern types.
const (
	lightGrayFill = "#F0F0F0"
	darkGrayFill  = "#D0D0D0"
)

var horizontalAlignments = map[string]int{
	"left":        AlignLeft,
	"center":      AlignCenter,
	"right":       AlignRight,
	"justify":     AlignJustify,
	"distributed": AlignDistributed,
}

var verticalAlignments = map[string]int{
	"top":         VAlignTop,
	"middle":      VAlignMiddle,
	"center":      VAlignMiddle,
	"bottom":      VAlignBottom,
	"justify":     VAlignJustify,
	"distributed": VAlignDistributed,
}

var borderStyles = map[string]int{
	"thin":             BorderThin,
	"hair":             BorderHair,
	"dotted":           BorderDotted,
	"dashed":           BorderDashed,
	"dashDot":          BorderDashDot,
	"dashDotDot":       BorderDashDotDot,
	"double":           BorderDouble,
	"medium":           BorderMedium,
	"mediumDashed":     BorderMediumDashed,
	"mediumDashDot":    BorderMediumDashDot,
	"mediumDashDotDot": BorderMediumDashDotDot,
	"slantDashDot":     BorderSlantDashDot,
	"thick":            BorderThick,
}

// DefaultStyle returns a fresh copy of the baseline cell style:
// centred both ways, wrapped, black text with a small padding.
func DefaultStyle() *Style {
	return &Style{
		HorizontalAlign: AlignCenter,
		VerticalAlign:   VAlignMiddle,
		WrapStrategy:    WrapText,
		FontFamily:      DefaultFontFamily,
		Color:           &ColorStyle{RGB: "#000000"},
		Padding:         &Padding{T: 2, B: 2, L: 4, R: 4},
	}
}

// NormalizeStyle converts a source style into the compact model style.
// It returns nil when no attribute applies. In readonly mode the result always
// carries a locked protection, whatever the source said.
func NormalizeStyle(raw *RawStyle, readonly bool) *Style {
	s := &Style{}
	if raw != nil {
		normalizeFont(s, raw.Font)
		normalizeFill(s, raw)
		normalizeAlignment(s, raw.Alignment)
		normalizeBorder(s, raw.Border)
		if raw.NumFmt != "" {
			s.NumberFormat = &NumberFormat{Pattern: raw.NumFmt}
		}
	}

	switch {
	case readonly:
		s.Protection = &Protection{Locked: true, Hidden: false}
	case raw != nil && raw.Protection != nil:
		p := raw.Protection
		s.Protection = &Protection{
			Locked: p.Locked != nil && *p.Locked,
			Hidden: p.Hidden != nil && *p.Hidden,
		}
	}

	if s.IsZero() {
		return nil
	}
	return s
}

func normalizeFont(s *Style, font *RawFont) {
	if font == nil {
		return
	}
	if font.Size > 0 {
		s.FontSize = font.Size
	}
	if font.Name != "" {
		s.FontFamily = font.Name
	}
	if font.Bold {
		s.Bold = True
	}
	if font.Italic {
		s.Italic = True
	}
	if font.Underline {
		s.Underline = &Decoration{S: True}
	}
	if font.Strike {
		s.Strike = &Decoration{S: True}
	}
	if font.Color != nil {
		s.Color = &ColorStyle{RGB: ResolveColor(font.Color, "#000000")}
	}
	switch font.VertAlign {
	case "superscript":
		s.BaselineOffset = BaselineSuperscript
	case "subscript":
		s.BaselineOffset = BaselineSubscript
	}
}

func normalizeFill(s *Style, raw *RawStyle) {
	if fill := raw.Fill; fill != nil {
		switch fill.PatternType {
		case "", "solid":
			if fill.FgColor != nil {
				if bg := ResolveColor(fill.FgColor, "#FFFFFF"); !isWhite(bg) {
					s.Background = &ColorStyle{RGB: bg}
				}
			}
		case "lightGray":
			s.Background = &ColorStyle{RGB: lightGrayFill}
		case "darkGray":
			s.Background = &ColorStyle{RGB: darkGrayFill}
		}
	}
	if s.Background != nil {
		return
	}

	// Older readers put the fill colours on the style itself.
	legacy := raw.FgColor
	if legacy == nil {
		legacy = raw.BgColor
	}
	if legacy != nil {
		if bg := ResolveColor(legacy, "#FFFFFF"); !isWhite(bg) {
			s.Background = &ColorStyle{RGB: bg}
		}
	}
}

func normalizeAlignment(s *Style, align *RawAlignment) {
	if align == nil {
		return
	}
	if ht, ok := horizontalAlignments[align.Horizontal]; ok {
		s.HorizontalAlign = ht
	}
	if vt, ok := verticalAlignments[align.Vertical]; ok {
		s.VerticalAlign = vt
	}
	if align.WrapText {
		s.WrapStrategy = WrapText
	}
	if align.TextRotation != 0 {
		s.TextRotation = &TextRotation{A: align.TextRotation, V: False}
	}
	if align.Indent > 0 {
		s.Padding = &Padding{L: float64(align.Indent * 8)}
	}
}

func normalizeBorder(s *Style, border *RawBorder) {
	if border == nil {
		return
	}
	bd := &BorderData{
		T: normalizeBorderSide(border.Top),
		B: normalizeBorderSide(border.Bottom),
		L: normalizeBorderSide(border.Left),
		R: normalizeBorderSide(border.Right),
	}
	if bd.T != nil || bd.B != nil || bd.L != nil || bd.R != nil {
		s.Border = bd
	}
}

func normalizeBorderSide(side *RawBorderSide) *BorderSide {
	if side == nil || side.Style == "" || side.Style == "none" {
		return nil
	}
	kind, ok := borderStyles[side.Style]
	if !ok {
		kind = BorderThin
	}
	return &BorderSide{S: kind, CL: &ColorStyle{RGB: ResolveColor(side.Color, "#000000")}}
}

// IsZero reports whether no attribute of the style is set.
func (s *Style) IsZero() bool {
	return s == nil || *s == Style{}
}

// MergeWithDefault overlays s on the default style. Fields set on s win;
// nested records (padding, borders) replace the default ones whole.
func MergeWithDefault(s *Style) *Style {
	merged := DefaultStyle()
	if s == nil {
		return merged
	}
	if s.FontFamily != "" {
		merged.FontFamily = s.FontFamily
	}
	if s.FontSize != 0 {
		merged.FontSize = s.FontSize
	}
	if s.Italic != False {
		merged.Italic = s.Italic
	}
	if s.Bold != False {
		merged.Bold = s.Bold
	}
	if s.Underline != nil {
		merged.Underline = s.Underline
	}
	if s.Strike != nil {
		merged.Strike = s.Strike
	}
	if s.Color != nil {
		merged.Color = s.Color
	}
	if s.Background != nil {
		merged.Background = s.Background
	}
	if s.BaselineOffset != 0 {
		merged.BaselineOffset = s.BaselineOffset
	}
	if s.HorizontalAlign != AlignUnspecified {
		merged.HorizontalAlign = s.HorizontalAlign
	}
	if s.VerticalAlign != 0 {
		merged.VerticalAlign = s.VerticalAlign
	}
	if s.WrapStrategy != 0 {
		merged.WrapStrategy = s.WrapStrategy
	}
	if s.TextRotation != nil {
		merged.TextRotation = s.TextRotation
	}
	if s.Padding != nil {
		merged.Padding = s.Padding
	}
	if s.Border != nil {
		merged.Border = s.Border
	}
	if s.NumberFormat != nil {
		merged.NumberFormat = s.NumberFormat
	}
	if s.Protection != nil {
		merged.Protection = s.Protection
	}
	return merged
}

// lockedStyle returns s (or a fresh style) with a locked protection.
func lockedStyle(s *Style) *Style {
	out := Style{}
	if s != nil {
		out = *s
	}
	out.Protection = &Protection{Locked: true, Hidden: false}
	return &out
}

// horizontalName maps an ht ordinal back to its keyword.
func horizontalName(ht int) string {
	for name, v := range horizontalAlignments {
		if v == ht {
			return name
		}
	}
	return ""
}

// verticalName maps a vt ordinal back to its keyword ("middle" maps to "center").
func verticalName(vt int) string {
	switch vt {
	case VAlignTop:
		return "top"
	case VAlignMiddle:
		return "center"
	case VAlignBottom:
		return "bottom"
	case VAlignJustify:
		return "justify"
	case VAlignDistributed:
		return "distributed"
	}
	return ""
}

// borderName maps a bd.s ordinal back to its keyword.
func borderName(kind int) string {
	for name, v := range borderStyles {
		if v == kind {
			return name
		}
	}
	return ""
}
