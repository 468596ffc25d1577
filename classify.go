package univerconv

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ClassifyValue determines the model value and type of a raw cell value.
//
//	nil, ""                 → "" (string)
//	"12", "1.5", "1e3"      → number
//	"0012"                  → "0012" (force-string: leading zero, no decimal point)
//	"TRUE", "false"         → boolean
//	native numbers / bools  → passed through
//	anything else           → its string form
func ClassifyValue(v any) (any, CellValueType) {
	switch val := v.(type) {
	case nil:
		return "", CellString
	case string:
		return classifyString(val)
	case bool:
		return val, CellBoolean
	case float64:
		return val, CellNumber
	case float32:
		return float64(val), CellNumber
	case int:
		return float64(val), CellNumber
	case int64:
		return float64(val), CellNumber
	case int32:
		return float64(val), CellNumber
	case uint:
		return float64(val), CellNumber
	case uint64:
		return float64(val), CellNumber
	case uint32:
		return float64(val), CellNumber
	case fmt.Stringer:
		return val.String(), CellString
	default:
		return fmt.Sprint(val), CellString
	}
}

func classifyString(s string) (any, CellValueType) {
	if s == "" {
		return "", CellString
	}
	if n, ok := parseNumber(s); ok {
		if strings.HasPrefix(s, "0") && len(s) > 1 && !strings.Contains(s, ".") {
			return s, CellForceString
		}
		return n, CellNumber
	}
	switch strings.ToLower(s) {
	case "true":
		return true, CellBoolean
	case "false":
		return false, CellBoolean
	}
	return s, CellString
}

// parseNumber accepts decimal numbers with optional surrounding whitespace.
// Infinities, NaN and Go-only syntaxes (hex floats, underscores) are rejected.
func parseNumber(s string) (float64, bool) {
	t := strings.TrimSpace(s)
	if t == "" || strings.ContainsAny(t, "_xXpP") {
		return 0, false
	}
	n, err := strconv.ParseFloat(t, 64)
	if err != nil || math.IsInf(n, 0) || math.IsNaN(n) {
		return 0, false
	}
	return n, true
}

// NormalizeFormula returns f with exactly one leading "=", or "" for an empty formula.
func NormalizeFormula(f string) string {
	f = strings.TrimSpace(f)
	if f == "" {
		return ""
	}
	if strings.HasPrefix(f, "=") {
		return f
	}
	return "=" + f
}

// formulaBody strips the leading "=" for writers that store formulas without it.
func formulaBody(f string) string {
	return strings.TrimPrefix(strings.TrimSpace(f), "=")
}

// formatValue renders a cell value as display text.
func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}
