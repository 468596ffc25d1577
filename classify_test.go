package univerconv

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyValue(t *testing.T) {
	tests := []struct {
		name  string
		in    any
		value any
		typ   CellValueType
	}{
		{"nil", nil, "", CellString},
		{"empty", "", "", CellString},
		{"integer text", "12", 12.0, CellNumber},
		{"decimal text", "1.5", 1.5, CellNumber},
		{"exponent text", "1e3", 1000.0, CellNumber},
		{"leading zero", "0012", "0012", CellForceString},
		{"leading zero decimal", "0.5", 0.5, CellNumber},
		{"single zero", "0", 0.0, CellNumber},
		{"true upper", "TRUE", true, CellBoolean},
		{"false mixed", "False", false, CellBoolean},
		{"plain text", "hello", "hello", CellString},
		{"hex is text", "0x1F", "0x1F", CellString},
		{"inf is text", "Inf", "Inf", CellString},
		{"native int", 7, 7.0, CellNumber},
		{"native float", 2.25, 2.25, CellNumber},
		{"native bool", true, true, CellBoolean},
		{"other", []int{1}, "[1]", CellString},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, typ := ClassifyValue(tt.in)
			assert.Equal(t, tt.value, v)
			assert.Equal(t, tt.typ, typ)
		})
	}
}

func TestClassifyValue_ForceStringKeepsDigits(t *testing.T) {
	v, typ := ClassifyValue("0012")
	assert.Equal(t, CellForceString, typ)
	assert.Equal(t, "0012", v)
	assert.Equal(t, "ForceString", typ.String())
}

func TestNormalizeFormula(t *testing.T) {
	assert.Equal(t, "", NormalizeFormula("  "))
	assert.Equal(t, "=SUM(A1:A3)", NormalizeFormula("SUM(A1:A3)"))
	assert.Equal(t, "=A1+1", NormalizeFormula(" =A1+1 "))
	assert.Equal(t, "A1+1", formulaBody("=A1+1"))
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "", formatValue(nil))
	assert.Equal(t, "3", formatValue(3.0))
	assert.Equal(t, "0.25", formatValue(0.25))
	assert.Equal(t, "true", formatValue(true))
	assert.Equal(t, "x", formatValue("x"))
}
