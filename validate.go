package univerconv

import (
	"fmt"
	"sort"
	"strings"
)

// Severity indicates the severity of a validation issue.
type Severity int

const (
	SeverityError   Severity = iota // the editing engine will reject or misrender the model
	SeverityWarning                 // the model loads but may not look as intended
)

// ValidationIssue represents a single problem found in a model.
type ValidationIssue struct {
	Severity Severity
	Ref      string // "Sheet1!A2", "Sheet1", "paragraph 3" or "" for the whole model
	Message  string
}

// String formats the issue as "[ERROR] Sheet1!A2: message" or "[WARN] ...".
func (v ValidationIssue) String() string {
	sev := "ERROR"
	if v.Severity == SeverityWarning {
		sev = "WARN"
	}
	if v.Ref == "" {
		return fmt.Sprintf("[%s] %s", sev, v.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", sev, v.Ref, v.Message)
}

// HasErrors reports whether any issue is an error.
func HasErrors(issues []ValidationIssue) bool {
	for _, i := range issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ValidateWorkbook checks the structural invariants of a workbook model:
// sheet order, style references, merged cells, counts and cell types.
// A non-nil error means there is no model to check.
func ValidateWorkbook(wb *Workbook) ([]ValidationIssue, error) {
	if wb == nil {
		return nil, ErrMissingSnapshot
	}
	var issues []ValidationIssue
	issues = append(issues, validateSheetOrder(wb)...)
	for _, id := range wb.SheetOrder {
		if sheet := wb.Sheets[id]; sheet != nil {
			issues = append(issues, validateSheet(wb, sheet)...)
		}
	}
	if _, err := DecodeDefinedNames(wb); err != nil {
		issues = append(issues, ValidationIssue{
			Severity: SeverityError,
			Message:  fmt.Sprintf("defined names: %v", err),
		})
	}
	return issues, nil
}

// validateSheetOrder checks that sheetOrder is a permutation of the sheet ids.
func validateSheetOrder(wb *Workbook) []ValidationIssue {
	var issues []ValidationIssue
	seen := make(map[string]bool, len(wb.SheetOrder))
	for _, id := range wb.SheetOrder {
		switch {
		case seen[id]:
			issues = append(issues, ValidationIssue{Severity: SeverityError, Message: fmt.Sprintf("sheet %q listed twice in sheetOrder", id)})
		case wb.Sheets[id] == nil:
			issues = append(issues, ValidationIssue{Severity: SeverityError, Message: fmt.Sprintf("sheetOrder references unknown sheet %q", id)})
		}
		seen[id] = true
	}
	for _, id := range sortedStrings(wb.Sheets) {
		if !seen[id] {
			issues = append(issues, ValidationIssue{Severity: SeverityError, Message: fmt.Sprintf("sheet %q missing from sheetOrder", id)})
		}
	}
	if len(wb.SheetOrder) == 0 {
		issues = append(issues, ValidationIssue{Severity: SeverityWarning, Message: "workbook has no sheets"})
	}
	return issues
}

func validateSheet(wb *Workbook, sheet *Sheet) []ValidationIssue {
	var issues []ValidationIssue
	issue := func(sev Severity, row, col int, format string, args ...any) {
		issues = append(issues, ValidationIssue{
			Severity: sev,
			Ref:      NewCellRef(sheet.Name, row, col).String(),
			Message:  fmt.Sprintf(format, args...),
		})
	}

	maxRow, maxCol := -1, -1
	for _, row := range sortedKeys(sheet.CellData) {
		for _, col := range sortedKeys(sheet.CellData[row]) {
			cell := sheet.CellData[row][col]
			if cell == nil {
				continue
			}
			maxRow, maxCol = max(maxRow, row), max(maxCol, col)
			if cell.S != "" && wb.Styles[cell.S] == nil {
				issue(SeverityError, row, col, "style %q is not defined", cell.S)
			}
			if cell.F != "" && !strings.HasPrefix(cell.F, "=") {
				issue(SeverityWarning, row, col, "formula %q has no leading '='", cell.F)
			}
			for _, name := range formulaSheets(cell.F) {
				if wb.SheetByName(name) == nil {
					issue(SeverityWarning, row, col, "formula refers to unknown sheet %q", name)
				}
			}
			switch cell.T {
			case CellNumber:
				if _, ok := numberValue(cell.V); !ok {
					issue(SeverityWarning, row, col, "number cell holds %T %v", cell.V, cell.V)
				}
			case CellBoolean:
				if _, ok := cell.V.(bool); !ok {
					issue(SeverityWarning, row, col, "boolean cell holds %T %v", cell.V, cell.V)
				}
			}
		}
	}

	if sheet.RowCount < max(minRowCount, maxRow+1) {
		issues = append(issues, ValidationIssue{
			Severity: SeverityWarning,
			Ref:      sheet.Name,
			Message:  fmt.Sprintf("rowCount %d is below %d", sheet.RowCount, max(minRowCount, maxRow+1)),
		})
	}
	if sheet.ColumnCount < max(minColumnCount, maxCol+1) {
		issues = append(issues, ValidationIssue{
			Severity: SeverityWarning,
			Ref:      sheet.Name,
			Message:  fmt.Sprintf("columnCount %d is below %d", sheet.ColumnCount, max(minColumnCount, maxCol+1)),
		})
	}

	merges, err := NormalizeMerges(sheet.MergeData)
	if err != nil {
		issues = append(issues, ValidationIssue{Severity: SeverityError, Ref: sheet.Name, Message: err.Error()})
		return issues
	}
	for _, m := range merges {
		for row := m.StartRow; row <= m.EndRow; row++ {
			for col := m.StartColumn; col <= m.EndColumn; col++ {
				if row == m.StartRow && col == m.StartColumn {
					continue
				}
				if c := sheet.CellData.Get(row, col); !c.IsEmpty() {
					issue(SeverityError, row, col, "member of merge %s carries content", m)
				}
			}
		}
	}
	return issues
}

// ValidateDocument checks the paragraph structure of a document model.
func ValidateDocument(doc *DocumentData) ([]ValidationIssue, error) {
	if doc == nil {
		return nil, ErrMissingSnapshot
	}
	body := doc.Body
	if body == nil {
		return []ValidationIssue{{Severity: SeverityError, Message: ErrMissingBody.Error()}}, nil
	}
	var issues []ValidationIssue
	stream := []rune(body.DataStream)

	if !strings.HasSuffix(body.DataStream, TerminalBreak) {
		issues = append(issues, ValidationIssue{Severity: SeverityWarning, Message: "dataStream does not end with \\r\\n"})
	}
	if len(body.Paragraphs) == 0 {
		issues = append(issues, ValidationIssue{Severity: SeverityError, Message: "document has no paragraphs"})
	}
	if !sort.SliceIsSorted(body.Paragraphs, func(i, j int) bool {
		return body.Paragraphs[i].StartIndex < body.Paragraphs[j].StartIndex
	}) {
		issues = append(issues, ValidationIssue{Severity: SeverityError, Message: "paragraphs are not sorted by startIndex"})
	}
	for i, p := range body.Paragraphs {
		ref := fmt.Sprintf("paragraph %d", i+1)
		if p.StartIndex < 0 || p.StartIndex >= len(stream) {
			issues = append(issues, ValidationIssue{Severity: SeverityError, Ref: ref, Message: fmt.Sprintf("startIndex %d outside dataStream", p.StartIndex)})
			continue
		}
		if stream[p.StartIndex] != '\r' {
			issues = append(issues, ValidationIssue{Severity: SeverityError, Ref: ref, Message: fmt.Sprintf("startIndex %d does not point at a paragraph delimiter", p.StartIndex)})
		}
	}
	for i, r := range body.TextRuns {
		if r.St < 0 || r.Ed > len(stream) || r.St >= r.Ed {
			issues = append(issues, ValidationIssue{
				Severity: SeverityError,
				Ref:      fmt.Sprintf("run %d", i+1),
				Message:  fmt.Sprintf("range [%d,%d) invalid for a %d-character stream", r.St, r.Ed, len(stream)),
			})
		}
	}
	return issues, nil
}
