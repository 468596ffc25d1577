package univerconv

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

// RawWorkbook is the reader-neutral form of a parsed spreadsheet file.
// Every reader (xlsx, xls, csv, txt) produces one; the Builder consumes it.
type RawWorkbook struct {
	FileName     string        `json:"fileName,omitempty"`
	Sheets       []RawSheet    `json:"sheets"`
	DefinedNames []DefinedName `json:"definedNames,omitempty"`
}

// RawSheet is one sheet of a RawWorkbook. Cells is row-major.
type RawSheet struct {
	Name     string      `json:"name"`
	Hidden   bool        `json:"hidden,omitempty"`
	Cells    [][]RawCell `json:"cells"`
	RowProps []*RowProps `json:"rowProps,omitempty"`
	ColProps []*ColProps `json:"colProps,omitempty"`
	Merges   []Range     `json:"merges,omitempty"`
	Freeze   *Freeze     `json:"freeze,omitempty"`
	TabColor string      `json:"tabColor,omitempty"`
}

// RawCell is a single tagged cell: value, style and the optional payloads
// that travel with it.
type RawCell struct {
	Value       any       `json:"value"`
	Text        string    `json:"text,omitempty"`
	Style       *RawStyle `json:"style"`
	StyleNull   bool      `json:"-"`
	Formula     string    `json:"formula,omitempty"`
	HTML        string    `json:"html,omitempty"`
	RichTextXML string    `json:"richTextXml,omitempty"`
}

// UnmarshalJSON records a literal "style": null in StyleNull so that an
// explicitly unstyled cell can be told apart from one without style info.
func (c *RawCell) UnmarshalJSON(data []byte) error {
	type plain RawCell
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("decode raw cell: %w", err)
	}
	*c = RawCell(p)
	c.StyleNull = jsoniter.Get(data, "style").ValueType() == jsoniter.NilValue
	return nil
}

// RowProps is source row metadata. Hpt is points, Hpx and Height are pixels.
type RowProps struct {
	Height float64 `json:"height,omitempty"`
	Hpt    float64 `json:"hpt,omitempty"`
	Hpx    float64 `json:"hpx,omitempty"`
	Hidden bool    `json:"hidden,omitempty"`
	Level  int     `json:"level,omitempty"`
}

// ColProps is source column metadata.
type ColProps struct {
	Width      float64 `json:"width,omitempty"`      // raw width, pixels
	Wpx        float64 `json:"wpx,omitempty"`        // pixels
	Wch        float64 `json:"wch,omitempty"`        // characters
	ExcelWidth float64 `json:"excelWidth,omitempty"` // max-digit-width units
	Hidden     bool    `json:"hidden,omitempty"`
}

// DefinedName is a workbook-level named range or formula.
type DefinedName struct {
	Name     string `json:"name"`
	RefersTo string `json:"refersTo"`
	Scope    string `json:"scope,omitempty"`
}

// RawStyle is the source style record of a cell.
type RawStyle struct {
	Font       *RawFont       `json:"font,omitempty"`
	Fill       *RawFill       `json:"fill,omitempty"`
	FgColor    *ColorSpec     `json:"fgColor,omitempty"`
	BgColor    *ColorSpec     `json:"bgColor,omitempty"`
	Border     *RawBorder     `json:"border,omitempty"`
	Alignment  *RawAlignment  `json:"alignment,omitempty"`
	Protection *RawProtection `json:"protection,omitempty"`
	NumFmt     string         `json:"numFmt,omitempty"`
}

// RawFont is the font part of a RawStyle. Size is points.
type RawFont struct {
	Size      float64    `json:"sz,omitempty"`
	Name      string     `json:"name,omitempty"`
	Bold      bool       `json:"bold,omitempty"`
	Italic    bool       `json:"italic,omitempty"`
	Underline bool       `json:"underline,omitempty"`
	Strike    bool       `json:"strike,omitempty"`
	Color     *ColorSpec `json:"color,omitempty"`
	VertAlign string     `json:"vertAlign,omitempty"` // "superscript" or "subscript"
}

// RawFill is the fill part of a RawStyle.
type RawFill struct {
	PatternType string     `json:"patternType,omitempty"`
	FgColor     *ColorSpec `json:"fgColor,omitempty"`
	BgColor     *ColorSpec `json:"bgColor,omitempty"`
}

// RawBorder holds the four source borders.
type RawBorder struct {
	Top    *RawBorderSide `json:"top,omitempty"`
	Bottom *RawBorderSide `json:"bottom,omitempty"`
	Left   *RawBorderSide `json:"left,omitempty"`
	Right  *RawBorderSide `json:"right,omitempty"`
}

// RawBorderSide is one source border: a style keyword such as "thin" and a colour.
type RawBorderSide struct {
	Style string     `json:"style,omitempty"`
	Color *ColorSpec `json:"color,omitempty"`
}

// RawAlignment is the alignment part of a RawStyle.
type RawAlignment struct {
	Horizontal   string `json:"horizontal,omitempty"`
	Vertical     string `json:"vertical,omitempty"`
	WrapText     bool   `json:"wrapText,omitempty"`
	TextRotation int    `json:"textRotation,omitempty"`
	Indent       int    `json:"indent,omitempty"`
}

// RawProtection is the source cell protection. Nil fields were not specified.
type RawProtection struct {
	Locked *bool `json:"locked,omitempty"`
	Hidden *bool `json:"hidden,omitempty"`
}

// ColorSpec is a source colour in any of the spreadsheet encodings.
type ColorSpec struct {
	RGB     string  `json:"rgb,omitempty"`
	Indexed *int    `json:"indexed,omitempty"`
	Theme   *int    `json:"theme,omitempty"`
	Tint    float64 `json:"tint,omitempty"`
	Auto    bool    `json:"auto,omitempty"`
}

// RGBColor is a ColorSpec for a hex colour.
func RGBColor(rgb string) *ColorSpec {
	return &ColorSpec{RGB: rgb}
}

// UnmarshalRawWorkbook decodes a RawWorkbook from JSON.
func UnmarshalRawWorkbook(data []byte) (*RawWorkbook, error) {
	var raw RawWorkbook
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode raw workbook: %w", err)
	}
	return &raw, nil
}
