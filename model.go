package univerconv

// CellValueType is the value kind of a cell in the workbook model.
type CellValueType int

const (
	CellString      CellValueType = 1
	CellNumber      CellValueType = 2
	CellBoolean     CellValueType = 3
	CellForceString CellValueType = 4 // numeric-looking text kept verbatim, e.g. "0012"
)

// String returns a human-readable name for the CellValueType.
func (t CellValueType) String() string {
	switch t {
	case CellString:
		return "String"
	case CellNumber:
		return "Number"
	case CellBoolean:
		return "Boolean"
	case CellForceString:
		return "ForceString"
	default:
		return "Unknown"
	}
}

// BooleanNumber is the 0/1 flag encoding used throughout the model.
type BooleanNumber int

const (
	False BooleanNumber = 0
	True  BooleanNumber = 1
)

// Bool converts a Go bool to a BooleanNumber.
func Bool(b bool) BooleanNumber {
	if b {
		return True
	}
	return False
}

// DefinedNameResource is the resource name under which defined names travel.
const DefinedNameResource = "SHEET_DEFINED_NAME_PLUGIN"

// DefaultStyleID is the id of the shared baseline style.
const DefaultStyleID = "default"

// Workbook is the in-memory spreadsheet model handed to the editing engine.
type Workbook struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	AppVersion string            `json:"appVersion"`
	Locale     string            `json:"locale"`
	Styles     map[string]*Style `json:"styles"`
	SheetOrder []string          `json:"sheetOrder"`
	Sheets     map[string]*Sheet `json:"sheets"`
	Resources  []Resource        `json:"resources"`
}

// Resource is an opaque named blob carried alongside the workbook.
type Resource struct {
	Name string `json:"name"`
	Data string `json:"data"`
}

// Resource returns the resource with the given name.
func (wb *Workbook) Resource(name string) (Resource, bool) {
	for _, r := range wb.Resources {
		if r.Name == name {
			return r, true
		}
	}
	return Resource{}, false
}

// SheetByName returns the sheet whose name is name.
func (wb *Workbook) SheetByName(name string) *Sheet {
	for _, id := range wb.SheetOrder {
		if s := wb.Sheets[id]; s != nil && s.Name == name {
			return s
		}
	}
	return nil
}

// Sheet is one grid of cells plus row, column, merge and freeze metadata.
type Sheet struct {
	ID                 string              `json:"id"`
	Name               string              `json:"name"`
	TabColor           string              `json:"tabColor"`
	Hidden             BooleanNumber       `json:"hidden"`
	RowCount           int                 `json:"rowCount"`
	ColumnCount        int                 `json:"columnCount"`
	DefaultColumnWidth float64             `json:"defaultColumnWidth"`
	DefaultRowHeight   float64             `json:"defaultRowHeight"`
	Freeze             Freeze              `json:"freeze"`
	MergeData          []Range             `json:"mergeData"`
	CellData           CellMatrix          `json:"cellData"`
	RowData            map[int]*RowInfo    `json:"rowData"`
	ColumnData         map[int]*ColumnInfo `json:"columnData"`
	ShowGridlines      BooleanNumber       `json:"showGridlines"`
	RowHeader          HeaderInfo          `json:"rowHeader"`
	ColumnHeader       HeaderInfo          `json:"columnHeader"`
	RightToLeft        BooleanNumber       `json:"rightToLeft"`
	Protection         *SheetProtection    `json:"protection,omitempty"`
}

// Freeze describes frozen panes. A startRow/startColumn of -1 means no freeze.
type Freeze struct {
	StartRow    int `json:"startRow"`
	StartColumn int `json:"startColumn"`
	YSplit      int `json:"ySplit"`
	XSplit      int `json:"xSplit"`
}

// NoFreeze is the freeze value of a sheet without frozen panes.
var NoFreeze = Freeze{StartRow: -1, StartColumn: -1}

// Range is an inclusive rectangle of cells, 0-based.
type Range struct {
	StartRow    int `json:"startRow"`
	EndRow      int `json:"endRow"`
	StartColumn int `json:"startColumn"`
	EndColumn   int `json:"endColumn"`
}

// Contains reports whether the cell at row, col lies inside the range.
func (r Range) Contains(row, col int) bool {
	return row >= r.StartRow && row <= r.EndRow && col >= r.StartColumn && col <= r.EndColumn
}

// Overlaps reports whether two ranges share at least one cell.
func (r Range) Overlaps(o Range) bool {
	return r.StartRow <= o.EndRow && o.StartRow <= r.EndRow &&
		r.StartColumn <= o.EndColumn && o.StartColumn <= r.EndColumn
}

// String formats the range as "A1:C3".
func (r Range) String() string {
	return NewCellRef("", r.StartRow, r.StartColumn).CellName() + ":" +
		NewCellRef("", r.EndRow, r.EndColumn).CellName()
}

// RowInfo holds per-row metadata. Heights are pixels.
type RowInfo struct {
	H  float64       `json:"h"`
	HD BooleanNumber `json:"hd"`
	AH float64       `json:"ah,omitempty"`
}

// ColumnInfo holds per-column metadata. Widths are pixels.
type ColumnInfo struct {
	W  float64       `json:"w"`
	HD BooleanNumber `json:"hd"`
}

// HeaderInfo sizes the row or column header strip.
type HeaderInfo struct {
	Width  float64       `json:"width,omitempty"`
	Height float64       `json:"height,omitempty"`
	Hidden BooleanNumber `json:"hidden"`
}

// SheetProtection marks a whole sheet as protected.
type SheetProtection struct {
	Sheet     bool `json:"sheet"`
	Objects   bool `json:"objects"`
	Scenarios bool `json:"scenarios"`
}

// CellMatrix is a sparse row → column → cell map.
type CellMatrix map[int]map[int]*Cell

// Get returns the cell at row, col or nil.
func (m CellMatrix) Get(row, col int) *Cell {
	if r, ok := m[row]; ok {
		return r[col]
	}
	return nil
}

// Set stores c at row, col, creating the row when needed.
func (m CellMatrix) Set(row, col int, c *Cell) {
	r, ok := m[row]
	if !ok {
		r = make(map[int]*Cell)
		m[row] = r
	}
	r[col] = c
}

// Cell is one entry of the cell matrix.
type Cell struct {
	V any           `json:"v,omitempty"`
	T CellValueType `json:"t,omitempty"`
	F string        `json:"f,omitempty"`
	S string        `json:"s,omitempty"`
	P *DocumentData `json:"p,omitempty"`
}

// IsEmpty reports whether the cell carries no value, formula or rich text.
func (c *Cell) IsEmpty() bool {
	if c == nil {
		return true
	}
	if c.F != "" || c.P != nil {
		return false
	}
	switch v := c.V.(type) {
	case nil:
		return true
	case string:
		return v == ""
	}
	return false
}

// DisplayText returns the text the cell renders: rich text wins over the value.
func (c *Cell) DisplayText() string {
	if c == nil {
		return ""
	}
	if c.P != nil && c.P.Body != nil {
		return c.P.Body.PlainText()
	}
	return formatValue(c.V)
}

// Style is the compact style record shared by id.
type Style struct {
	FontFamily      string        `json:"ff,omitempty"`
	FontSize        float64       `json:"fs,omitempty"`
	Italic          BooleanNumber `json:"it,omitempty"`
	Bold            BooleanNumber `json:"bl,omitempty"`
	Underline       *Decoration   `json:"ul,omitempty"`
	Strike          *Decoration   `json:"st,omitempty"`
	Color           *ColorStyle   `json:"cl,omitempty"`
	Background      *ColorStyle   `json:"bg,omitempty"`
	BaselineOffset  int           `json:"va,omitempty"`
	HorizontalAlign int           `json:"ht,omitempty"`
	VerticalAlign   int           `json:"vt,omitempty"`
	WrapStrategy    int           `json:"tb,omitempty"`
	TextRotation    *TextRotation `json:"tr,omitempty"`
	Padding         *Padding      `json:"pd,omitempty"`
	Border          *BorderData   `json:"bd,omitempty"`
	NumberFormat    *NumberFormat `json:"n,omitempty"`
	Protection      *Protection   `json:"protection,omitempty"`
}

// Horizontal alignment ordinals.
const (
	AlignUnspecified = 0
	AlignLeft        = 1
	AlignCenter      = 2
	AlignRight       = 3
	AlignJustify     = 4
	AlignDistributed = 5
)

// Vertical alignment ordinals.
const (
	VAlignTop         = 1
	VAlignMiddle      = 2
	VAlignBottom      = 3
	VAlignJustify     = 4
	VAlignDistributed = 5
)

// Wrap strategies.
const (
	WrapOverflow = 1
	WrapClip     = 2
	WrapText     = 3
)

// Baseline offsets (va).
const (
	BaselineNormal      = 1
	BaselineSubscript   = 2
	BaselineSuperscript = 3
)

// Decoration is an enabled/disabled text decoration such as underline.
type Decoration struct {
	S BooleanNumber `json:"s"`
}

// ColorStyle wraps a "#RRGGBB" colour.
type ColorStyle struct {
	RGB string `json:"rgb"`
}

// TextRotation holds a rotation angle and the vertical-text flag.
type TextRotation struct {
	A int           `json:"a"`
	V BooleanNumber `json:"v"`
}

// Padding in pixels.
type Padding struct {
	T float64 `json:"t,omitempty"`
	B float64 `json:"b,omitempty"`
	L float64 `json:"l,omitempty"`
	R float64 `json:"r,omitempty"`
}

// BorderData holds the four borders of a cell.
type BorderData struct {
	T *BorderSide `json:"t,omitempty"`
	B *BorderSide `json:"b,omitempty"`
	L *BorderSide `json:"l,omitempty"`
	R *BorderSide `json:"r,omitempty"`
}

// BorderSide is one border: a style ordinal and a colour.
type BorderSide struct {
	S  int         `json:"s"`
	CL *ColorStyle `json:"cl,omitempty"`
}

// Border style ordinals.
const (
	BorderNone             = 0
	BorderThin             = 1
	BorderHair             = 2
	BorderDotted           = 3
	BorderDashed           = 4
	BorderDashDot          = 5
	BorderDashDotDot       = 6
	BorderDouble           = 7
	BorderMedium           = 8
	BorderMediumDashed     = 9
	BorderMediumDashDot    = 10
	BorderMediumDashDotDot = 11
	BorderSlantDashDot     = 12
	BorderThick            = 13
)

// NumberFormat wraps a number format pattern such as "0.00%".
type NumberFormat struct {
	Pattern string `json:"pattern"`
}

// Protection is the cell-level lock/hide pair.
type Protection struct {
	Locked bool `json:"locked"`
	Hidden bool `json:"hidden"`
}

// DocumentData is the word-processor model, also used as the rich-text payload of a cell.
type DocumentData struct {
	ID            string         `json:"id,omitempty"`
	Body          *DocumentBody  `json:"body,omitempty"`
	DocumentStyle *DocumentStyle `json:"documentStyle,omitempty"`
}

// DocumentBody is a flat text buffer with runs and paragraph markers over it.
// Offsets are rune indices into DataStream.
type DocumentBody struct {
	DataStream    string         `json:"dataStream"`
	TextRuns      []TextRun      `json:"textRuns"`
	Paragraphs    []Paragraph    `json:"paragraphs"`
	SectionBreaks []SectionBreak `json:"sectionBreaks"`
}

// TextRun styles the half-open rune range [St, Ed).
type TextRun struct {
	St int    `json:"st"`
	Ed int    `json:"ed"`
	TS *Style `json:"ts,omitempty"`
}

// Paragraph marks the delimiter that ends a paragraph.
type Paragraph struct {
	StartIndex     int             `json:"startIndex"`
	ParagraphStyle *ParagraphStyle `json:"paragraphStyle,omitempty"`
}

// ParagraphStyle carries paragraph-level formatting. Lengths are points.
type ParagraphStyle struct {
	NamedStyleType  int     `json:"namedStyleType,omitempty"`
	HorizontalAlign int     `json:"horizontalAlign,omitempty"`
	SpaceAbove      float64 `json:"spaceAbove,omitempty"`
	SpaceBelow      float64 `json:"spaceBelow,omitempty"`
	LineSpacing     float64 `json:"lineSpacing,omitempty"`
	IndentStart     float64 `json:"indentStart,omitempty"`
	IndentEnd       float64 `json:"indentEnd,omitempty"`
	IndentFirstLine float64 `json:"indentFirstLine,omitempty"`
}

// Named paragraph styles.
const (
	NamedStyleNormal   = 0
	NamedStyleTitle    = 1
	NamedStyleHeading1 = 2 // Heading N is NamedStyleHeading1 + N - 1
)

// SectionBreak marks the end of a section.
type SectionBreak struct {
	StartIndex int `json:"startIndex"`
}

// DocumentStyle holds page layout in points.
type DocumentStyle struct {
	PageSize     PageSize `json:"pageSize"`
	MarginTop    float64  `json:"marginTop"`
	MarginBottom float64  `json:"marginBottom"`
	MarginRight  float64  `json:"marginRight"`
	MarginLeft   float64  `json:"marginLeft"`
}

// PageSize in points.
type PageSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// DefaultDocumentStyle is an A4 page with the editor's default margins.
func DefaultDocumentStyle() *DocumentStyle {
	return &DocumentStyle{
		PageSize:     PageSize{Width: 595, Height: 842},
		MarginTop:    72,
		MarginBottom: 72,
		MarginRight:  90,
		MarginLeft:   90,
	}
}
