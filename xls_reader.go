package univerconv

import (
	"bytes"
	"fmt"

	"github.com/shakinm/xlsReader/xls"
	"go.uber.org/zap"
)

// ReadXLS reads a legacy .xls (BIFF) file. Only cell values are recovered;
// they are classified by the builder like any other text input.
func ReadXLS(data []byte, opts ...Option) (raw *RawWorkbook, err error) {
	o := applyOptions(opts)
	defer func() {
		if r := recover(); r != nil {
			raw = nil
			err = fmt.Errorf("read xls: %v", r)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("read xls: %w", err)
	}

	raw = &RawWorkbook{FileName: o.fileName}
	for i := 0; i < wb.GetNumberSheets(); i++ {
		sheet, err := wb.GetSheet(i)
		if err != nil {
			return nil, fmt.Errorf("read xls sheet %d: %w", i, err)
		}
		rs := RawSheet{Name: sheet.GetName()}
		for r := 0; r < sheet.GetNumberRows(); r++ {
			var cells []RawCell
			if row, err := sheet.GetRow(r); err == nil && row != nil {
				for _, cell := range row.GetCols() {
					cells = append(cells, RawCell{Value: cell.GetString()})
				}
			}
			rs.Cells = append(rs.Cells, cells)
		}
		o.logger.Debug("read xls sheet",
			zap.String("sheet", rs.Name),
			zap.Int("rows", len(rs.Cells)))
		raw.Sheets = append(raw.Sheets, rs)
	}
	return raw, nil
}
