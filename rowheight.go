package univerconv

import (
	"math"
	"strings"
	"unicode/utf8"
)

// RowHeightConfig tunes the content-driven row-height estimate. Heights are pixels.
type RowHeightConfig struct {
	Base               float64 `yaml:"base"`
	Min                float64 `yaml:"min"`
	Max                float64 `yaml:"max"`
	CJKMultiplier      float64 `yaml:"cjkMultiplier"`
	FontSize           float64 `yaml:"fontSize"`
	DefaultColumnWidth float64 `yaml:"defaultColumnWidth"`
}

// DefaultRowHeightConfig returns the estimator defaults: base 23px within [20, 300].
func DefaultRowHeightConfig() RowHeightConfig {
	return RowHeightConfig{
		Base:               23,
		Min:                20,
		Max:                300,
		CJKMultiplier:      1.2,
		FontSize:           12,
		DefaultColumnWidth: 150,
	}
}

// withDefaults fills zero fields from the defaults.
func (c RowHeightConfig) withDefaults() RowHeightConfig {
	d := DefaultRowHeightConfig()
	if c.Base <= 0 {
		c.Base = d.Base
	}
	if c.Min <= 0 {
		c.Min = d.Min
	}
	if c.Max <= 0 {
		c.Max = d.Max
	}
	if c.CJKMultiplier <= 0 {
		c.CJKMultiplier = d.CJKMultiplier
	}
	if c.FontSize <= 0 {
		c.FontSize = d.FontSize
	}
	if c.DefaultColumnWidth <= 0 {
		c.DefaultColumnWidth = d.DefaultColumnWidth
	}
	return c
}

// isCJK reports whether r is a CJK unified ideograph.
func isCJK(r rune) bool {
	return r >= 0x4E00 && r <= 0x9FFF
}

// HasCJK reports whether text contains a CJK unified ideograph.
func HasCJK(text string) bool {
	return strings.IndexFunc(text, isCJK) >= 0
}

// EstimateLines estimates how many lines text wraps to in a column of
// columnWidth pixels. Explicit line breaks count too; the result is at least 1.
func EstimateLines(text string, columnWidth, fontSize float64) int {
	if text == "" {
		return 1
	}
	cjk := 0
	for _, r := range text {
		if isCJK(r) {
			cjk++
		}
	}
	other := utf8.RuneCountInString(text) - cjk
	width := float64(cjk)*fontSize*1.1 + float64(other)*fontSize*0.6
	usable := math.Max(50, columnWidth-10)

	estimated := int(math.Ceil(width / usable))
	explicit := len(strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n"))
	return max(1, estimated, explicit)
}

// RowHeight returns the recommended pixel height for a row holding texts.
// widths[i] is the pixel width of column i; missing or zero widths use the default.
func (c RowHeightConfig) RowHeight(texts []string, widths []float64) float64 {
	c = c.withDefaults()
	if len(texts) == 0 {
		return c.Base
	}

	height := c.Base
	lines := 1
	cjk := false
	for i, text := range texts {
		if text == "" {
			continue
		}
		width := c.DefaultColumnWidth
		if i < len(widths) && widths[i] > 0 {
			width = widths[i]
		}
		lines = max(lines, EstimateLines(text, width, c.FontSize))
		if HasCJK(text) {
			cjk = true
		}
	}

	if lines > 1 {
		height = math.Max(height, c.Base*float64(lines)*1.1)
	}
	if cjk {
		height = math.Max(height, c.Base*c.CJKMultiplier)
	}
	return math.Max(c.Min, math.Min(c.Max, math.Round(height)))
}

// MergeRowHeight reconciles explicit source row metadata with the content
// estimate. The larger of the two wins; the hidden flag is kept.
// It returns nil when prop carries nothing.
func (c RowHeightConfig) MergeRowHeight(prop *RowProps, estimate float64) *RowInfo {
	if prop == nil || (prop.Height == 0 && prop.Hpt == 0 && prop.Hpx == 0 && !prop.Hidden) {
		return nil
	}
	c = c.withDefaults()

	height := c.Base
	switch {
	case prop.Hpt > 0 && prop.Hpx == 0:
		height = math.Round(prop.Hpt * 1.33)
	case prop.Hpx > 0:
		height = prop.Hpx
	case prop.Height > 0:
		height = prop.Height
	}
	height = math.Max(height, estimate)
	return &RowInfo{H: height, HD: Bool(prop.Hidden), AH: height}
}
