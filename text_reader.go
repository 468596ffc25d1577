package univerconv

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

// UTF8BOM is the utf-8 byte-order marker.
var UTF8BOM = []byte{'\xef', '\xbb', '\xbf'}

// DecodeText converts file content to UTF-8. Valid UTF-8 passes through
// without its BOM; otherwise a charset named in the content (HTML meta) is
// used, then GB18030, then Windows-1252.
func DecodeText(data []byte) string {
	if utf8.Valid(data) {
		return string(bytes.TrimPrefix(data, UTF8BOM))
	}
	candidates := []encoding.Encoding{simplifiedchinese.GB18030, charmap.Windows1252}
	if enc, name, certain := charset.DetermineEncoding(data, ""); certain && name != "utf-8" {
		candidates = append([]encoding.Encoding{enc}, candidates...)
	}
	for _, enc := range candidates {
		out, _, err := transform.Bytes(enc.NewDecoder(), data)
		if err == nil && !bytes.ContainsRune(out, utf8.RuneError) {
			return string(out)
		}
	}
	return strings.ToValidUTF8(string(data), string(utf8.RuneError))
}

// ReadCSV reads comma-separated text into a single-sheet RawWorkbook.
// Blank lines are skipped and every cell is trimmed; quoted fields may
// contain commas and newlines.
func ReadCSV(data []byte, opts ...Option) (*RawWorkbook, error) {
	o := applyOptions(opts)
	r := csv.NewReader(strings.NewReader(DecodeText(data)))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	sheet := RawSheet{Name: sheetNamePrefix + "1"}
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		row := make([]RawCell, len(record))
		blank := true
		for i, field := range record {
			field = strings.TrimSpace(field)
			blank = blank && field == ""
			row[i] = RawCell{Value: field}
		}
		if blank {
			continue
		}
		sheet.Cells = append(sheet.Cells, row)
	}
	return &RawWorkbook{FileName: o.fileName, Sheets: []RawSheet{sheet}}, nil
}

// ReadText places the whole content in cell A1 of a single-sheet RawWorkbook.
func ReadText(data []byte, opts ...Option) (*RawWorkbook, error) {
	o := applyOptions(opts)
	sheet := RawSheet{
		Name:  sheetNamePrefix + "1",
		Cells: [][]RawCell{{{Value: DecodeText(data)}}},
	}
	return &RawWorkbook{FileName: o.fileName, Sheets: []RawSheet{sheet}}, nil
}
