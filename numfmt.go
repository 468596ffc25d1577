package univerconv

// builtInNumFmts are the spreadsheet number formats addressed by id only.
var builtInNumFmts = map[int]string{
	0:  "General",
	1:  "0",
	2:  "0.00",
	3:  "#,##0",
	4:  "#,##0.00",
	9:  "0%",
	10: "0.00%",
	11: "0.00E+00",
	12: "# ?/?",
	13: "# ??/??",
	14: "mm-dd-yy",
	15: "d-mmm-yy",
	16: "d-mmm",
	17: "mmm-yy",
	18: "h:mm AM/PM",
	19: "h:mm:ss AM/PM",
	20: "hh:mm",
	21: "hh:mm:ss",
	22: "m/d/yy hh:mm",
	37: "#,##0 ;(#,##0)",
	38: "#,##0 ;[Red](#,##0)",
	39: "#,##0.00 ;(#,##0.00)",
	40: "#,##0.00 ;[Red](#,##0.00)",
	45: "mm:ss",
	46: "[h]:mm:ss",
	47: "mm:ss.0",
	48: "##0.0E+0",
	49: "@",
}

// TextNumFmt is the number format that keeps a cell's content as text.
const TextNumFmt = "@"

// builtInNumFmtID returns the id of a built-in pattern.
func builtInNumFmtID(pattern string) (int, bool) {
	for id, p := range builtInNumFmts {
		if p == pattern {
			return id, true
		}
	}
	return 0, false
}
