package univerconv

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// formulaRefPattern matches cell references in formulas (e.g. A1, $A$1,
// Sheet1!A1, 'My Sheet'!B2). Each end of a range A1:B5 matches separately.
var formulaRefPattern = regexp.MustCompile(`(?:(?:'((?:[^']|'')+)'|([\p{L}_][\p{L}\p{N}_.]*))!)?\$?([A-Za-z]{1,3})\$?(\d+)`)

// formulaStringPattern matches string literals, whose content is never a reference.
var formulaStringPattern = regexp.MustCompile(`"(?:[^"]|"")*"`)

// FormulaRefs returns the cell references of a formula in order of
// appearance. Unqualified references get defaultSheet. Function names that
// look like cells, such as LOG10(, are not references.
func FormulaRefs(formula, defaultSheet string) []CellRef {
	src := formulaStringPattern.ReplaceAllStringFunc(formula, func(s string) string {
		return strings.Repeat(" ", len(s))
	})

	var refs []CellRef
	for _, m := range formulaRefPattern.FindAllStringSubmatchIndex(src, -1) {
		start, end := m[0], m[1]
		if r, _ := utf8.DecodeLastRuneInString(src[:start]); start > 0 && isIdentRune(r) {
			continue
		}
		if r, _ := utf8.DecodeRuneInString(src[end:]); end < len(src) && (r == '(' || isIdentRune(r)) {
			continue
		}

		sheet := defaultSheet
		switch {
		case m[2] >= 0:
			sheet = strings.ReplaceAll(src[m[2]:m[3]], "''", "'")
		case m[4] >= 0:
			sheet = src[m[4]:m[5]]
		}
		col, err := NameToCol(src[m[6]:m[7]])
		if err != nil {
			continue
		}
		row, err := strconv.Atoi(src[m[8]:m[9]])
		if err != nil || row < 1 {
			continue
		}
		refs = append(refs, NewCellRef(sheet, row-1, col))
	}
	return refs
}

func isIdentRune(r rune) bool {
	return r == '_' || r == '.' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// formulaSheets returns the distinct sheet names a formula refers to explicitly.
func formulaSheets(formula string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, ref := range FormulaRefs(formula, "") {
		if ref.Sheet != "" && !seen[ref.Sheet] {
			seen[ref.Sheet] = true
			names = append(names, ref.Sheet)
		}
	}
	return names
}
