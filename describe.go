package univerconv

import (
	"fmt"
	"strings"
)

// maxDescribedCells caps the cell listing per sheet.
const maxDescribedCells = 20

// DescribeWorkbook returns a human-readable tree of a workbook: its sheets
// with their sizes, merges and freeze panes, and the first cells of each.
// Useful for debugging imports during development.
func DescribeWorkbook(wb *Workbook) (string, error) {
	if wb == nil {
		return "", ErrMissingSnapshot
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Workbook: %s (%s, %d styles)\n", wb.Name, wb.Locale, len(wb.Styles))
	for _, id := range wb.SheetOrder {
		sheet := wb.Sheets[id]
		if sheet == nil {
			fmt.Fprintf(&b, "  %s <missing>\n", id)
			continue
		}
		describeSheet(&b, wb, sheet)
	}
	names, err := DecodeDefinedNames(wb)
	if err != nil {
		return "", err
	}
	if len(names) > 0 {
		b.WriteString("  Defined names:\n")
		for _, n := range names {
			scope := n.Scope
			if scope == "" {
				scope = "workbook"
			}
			fmt.Fprintf(&b, "    %s = %s (%s)\n", n.Name, n.RefersTo, scope)
		}
	}
	return b.String(), nil
}

// describeSheet writes one sheet: header line, merges, freeze and cells.
func describeSheet(b *strings.Builder, wb *Workbook, sheet *Sheet) {
	var flags []string
	if sheet.Hidden == True {
		flags = append(flags, "hidden")
	}
	if sheet.Protection != nil {
		flags = append(flags, "protected")
	}
	suffix := ""
	if len(flags) > 0 {
		suffix = " [" + strings.Join(flags, ",") + "]"
	}
	fmt.Fprintf(b, "  %s (%dx%d)%s\n", sheet.Name, sheet.ColumnCount, sheet.RowCount, suffix)

	if len(sheet.MergeData) > 0 {
		merges := make([]string, len(sheet.MergeData))
		for i, m := range sheet.MergeData {
			merges[i] = m.String()
		}
		fmt.Fprintf(b, "    Merges: %s\n", strings.Join(merges, " "))
	}
	if fz := sheet.Freeze; fz.XSplit > 0 || fz.YSplit > 0 {
		fmt.Fprintf(b, "    Freeze: %d cols, %d rows\n", fz.XSplit, fz.YSplit)
	}

	listed := 0
	total := 0
	for _, row := range sortedKeys(sheet.CellData) {
		for _, col := range sortedKeys(sheet.CellData[row]) {
			cell := sheet.CellData[row][col]
			if cell.IsEmpty() {
				continue
			}
			total++
			if listed == maxDescribedCells {
				continue
			}
			if listed == 0 {
				b.WriteString("    Cells:\n")
			}
			listed++
			fmt.Fprintf(b, "      %s %s%s\n", NewCellRef("", row, col).CellName(), describeCell(cell), describeStyle(wb, cell.S))
		}
	}
	if total > listed {
		fmt.Fprintf(b, "      ... %d more\n", total-listed)
	}
}

// describeCell formats a cell as `String "abc"`, `Number 12 =SUM(A1:A2)` or `RichText "ab" (2 runs)`.
func describeCell(c *Cell) string {
	var s string
	if c.P != nil && c.P.Body != nil {
		s = fmt.Sprintf("RichText %q (%d runs)", c.P.Body.PlainText(), len(c.P.Body.TextRuns))
	} else {
		s = fmt.Sprintf("%s %q", c.T, formatValue(c.V))
	}
	if c.F != "" {
		s += " " + c.F
	}
	return s
}

func describeStyle(wb *Workbook, id string) string {
	if id == "" || id == DefaultStyleID {
		return ""
	}
	st := wb.Styles[id]
	if st == nil {
		return fmt.Sprintf(" style=%s<missing>", id)
	}
	var parts []string
	if st.Bold == True {
		parts = append(parts, "bold")
	}
	if st.Italic == True {
		parts = append(parts, "italic")
	}
	if st.Background != nil {
		parts = append(parts, "bg="+st.Background.RGB)
	}
	if st.NumberFormat != nil {
		parts = append(parts, fmt.Sprintf("numFmt=%q", st.NumberFormat.Pattern))
	}
	if st.Protection != nil && st.Protection.Locked {
		parts = append(parts, "locked")
	}
	if len(parts) == 0 {
		return " style=" + id
	}
	return " style=" + id + "(" + strings.Join(parts, " ") + ")"
}

// DescribeDocument returns a human-readable list of a document's paragraphs.
func DescribeDocument(doc *DocumentData) (string, error) {
	paras, err := SplitParagraphs(doc)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Document: %s (%d paragraphs)\n", doc.ID, len(paras))
	for i, p := range paras {
		label := "p"
		switch level := p.Heading(); {
		case level < 0:
			label = "title"
		case level > 0:
			label = fmt.Sprintf("h%d", level)
		}
		fmt.Fprintf(&b, "  %d %s %q", i+1, label, p.Text)
		if styled := countStyled(p.Runs); styled > 0 {
			fmt.Fprintf(&b, " (%d styled runs)", styled)
		}
		b.WriteByte('\n')
	}
	return b.String(), nil
}

func countStyled(runs []ExportRun) int {
	n := 0
	for _, r := range runs {
		if r.Style != nil {
			n++
		}
	}
	return n
}
