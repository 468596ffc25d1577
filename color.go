package univerconv

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// indexedColors is the legacy 56-colour palette extended to 128 entries.
var indexedColors = [128]string{
	// 0-15: standard and dark variants
	"#000000", "#FFFFFF", "#FF0000", "#00FF00", "#0000FF", "#FFFF00", "#FF00FF", "#00FFFF",
	"#800000", "#008000", "#000080", "#808000", "#800080", "#008080", "#C0C0C0", "#808080",
	// 16-31: chart fills and lines
	"#9999FF", "#993366", "#FFFFCC", "#CCFFFF", "#660066", "#FF8080", "#0066CC", "#CCCCFF",
	"#000080", "#FF00FF", "#FFFF00", "#00FFFF", "#800080", "#800000", "#008080", "#0000FF",
	// 32-55
	"#00CCFF", "#CCFFFF", "#CCFFCC", "#FFFF99", "#99CCFF", "#FF99CC", "#CC99FF", "#FFCC99",
	"#3366FF", "#33CCCC", "#99CC00", "#FFCC00", "#FF9900", "#FF6600", "#666699", "#969696",
	"#003366", "#339966", "#003300", "#333300", "#993300", "#993366", "#333399", "#333333",
	// 56-63: greys
	"#333333", "#F2F2F2", "#E6E6E6", "#D9D9D9", "#CCCCCC", "#BFBFBF", "#B3B3B3", "#A6A6A6",
	// 64-79: blues
	"#E6E6FA", "#DDA0DD", "#DA70D6", "#FF69B4", "#FFB6C1", "#FFC0CB", "#FFE4E1", "#F0F8FF",
	"#E0E6FF", "#B0C4DE", "#87CEEB", "#87CEFA", "#00BFFF", "#1E90FF", "#4169E1", "#0000CD",
	// 80-95: greens
	"#F0FFF0", "#98FB98", "#90EE90", "#00FF7F", "#00FA9A", "#00FF00", "#32CD32", "#228B22",
	"#006400", "#8FBC8F", "#9ACD32", "#ADFF2F", "#7CFC00", "#7FFF00", "#00FF32", "#00FA54",
	// 96-111: reds
	"#FFF0F0", "#FFE4E1", "#FFA07A", "#FA8072", "#FF6347", "#FF4500", "#DC143C", "#B22222",
	"#8B0000", "#CD5C5C", "#F08080", "#E9967A", "#FF7F50", "#FF69B4", "#FF1493", "#C71585",
	// 112-127: yellows and oranges
	"#FFFACD", "#FFEFD5", "#FFE4B5", "#FFDAB9", "#F4A460", "#DAA520", "#FF8C00", "#FF7F00",
	"#FFA500", "#FFD700", "#FFFF00", "#FFFFE0", "#FFFFF0", "#F0E68C", "#BDB76B", "#EEE8AA",
}

var themeColors = [12]string{
	"#FFFFFF", "#000000", "#EEECE1", "#1F497D", "#4F81BD", "#C0504D",
	"#9BBB59", "#8064A2", "#4BACC6", "#F79646", "#0000FF", "#800080",
}

var namedColors = map[string]string{
	"black":   "#000000",
	"white":   "#FFFFFF",
	"red":     "#FF0000",
	"green":   "#008000",
	"blue":    "#0000FF",
	"yellow":  "#FFFF00",
	"cyan":    "#00FFFF",
	"magenta": "#FF00FF",
	"gray":    "#808080",
	"grey":    "#808080",
	"silver":  "#C0C0C0",
	"maroon":  "#800000",
	"olive":   "#808000",
	"lime":    "#00FF00",
	"aqua":    "#00FFFF",
	"teal":    "#008080",
	"navy":    "#000080",
	"fuchsia": "#FF00FF",
	"purple":  "#800080",
	"orange":  "#FFA500",
}

// IndexedColor returns the palette colour for index; out-of-range indexes are clamped to [0,127].
func IndexedColor(index int) string {
	index = max(0, min(127, index))
	return indexedColors[index]
}

// ThemeColor returns the theme colour for index, or "" when the index is unknown.
func ThemeColor(index int) string {
	if index < 0 || index >= len(themeColors) {
		return ""
	}
	return themeColors[index]
}

// ResolveColor turns a source colour into "#RRGGBB".
// Priority is rgb, then indexed, then theme (with tint); anything else yields fallback.
func ResolveColor(c *ColorSpec, fallback string) string {
	if c == nil {
		return fallback
	}
	if c.RGB != "" {
		rgb := strings.TrimPrefix(c.RGB, "#")
		if len(rgb) == 8 {
			rgb = rgb[2:] // drop alpha of ARGB
		}
		return "#" + strings.ToUpper(rgb)
	}
	if c.Indexed != nil {
		return IndexedColor(*c.Indexed)
	}
	if c.Theme != nil {
		color := ThemeColor(*c.Theme)
		if color == "" {
			return fallback
		}
		if c.Tint != 0 {
			color = AdjustBrightness(color, 1+c.Tint*0.5)
		}
		return color
	}
	return fallback
}

// AdjustBrightness scales each channel of a "#RRGGBB" colour by factor, clamped to [0,255].
func AdjustBrightness(color string, factor float64) string {
	r, g, b, ok := parseHexColor(color)
	if !ok {
		return color
	}
	scale := func(v uint8) uint8 {
		return uint8(math.Min(255, math.Max(0, math.Round(float64(v)*factor))))
	}
	return fmt.Sprintf("#%02X%02X%02X", scale(r), scale(g), scale(b))
}

func parseHexColor(color string) (r, g, b uint8, ok bool) {
	hex := strings.TrimPrefix(color, "#")
	if len(hex) != 6 {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return uint8(v >> 16), uint8(v >> 8), uint8(v), true
}

var rgbFuncPattern = regexp.MustCompile(`^rgba?\(\s*(\d+)\s*,\s*(\d+)\s*,\s*(\d+)\s*(?:,\s*[\d.]+\s*)?\)$`)

// NormalizeCSSColor converts #rgb, #rrggbb, rgb(), rgba() and basic named colours
// to "#RRGGBB". It returns "" for anything it does not understand.
func NormalizeCSSColor(color string) string {
	color = strings.ToLower(strings.TrimSpace(color))
	if color == "" {
		return ""
	}
	if strings.HasPrefix(color, "#") {
		switch len(color) {
		case 4:
			return strings.ToUpper("#" + color[1:2] + color[1:2] + color[2:3] + color[2:3] + color[3:4] + color[3:4])
		case 7:
			if _, _, _, ok := parseHexColor(color); ok {
				return strings.ToUpper(color)
			}
		}
		return ""
	}
	if m := rgbFuncPattern.FindStringSubmatch(color); m != nil {
		var ch [3]int
		for i := range ch {
			n, _ := strconv.Atoi(m[i+1])
			ch[i] = min(255, n)
		}
		return fmt.Sprintf("#%02X%02X%02X", ch[0], ch[1], ch[2])
	}
	return namedColors[color]
}

// isWhite reports whether a resolved colour is plain white.
func isWhite(color string) bool {
	return strings.EqualFold(color, "#FFFFFF") || strings.EqualFold(color, "#FFF")
}

// toARGB converts "#RRGGBB" to the "FFRRGGBB" form spreadsheet writers expect.
func toARGB(color string) string {
	hex := strings.ToUpper(strings.TrimPrefix(color, "#"))
	if len(hex) == 6 {
		return "FF" + hex
	}
	return hex
}
