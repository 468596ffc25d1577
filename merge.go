package univerconv

import (
	"fmt"
	"sort"
)

// normalizeRange swaps reversed corners so that Start ≤ End on both axes.
func normalizeRange(r Range) Range {
	return Range{
		StartRow:    min(r.StartRow, r.EndRow),
		EndRow:      max(r.StartRow, r.EndRow),
		StartColumn: min(r.StartColumn, r.EndColumn),
		EndColumn:   max(r.StartColumn, r.EndColumn),
	}
}

// NormalizeMerges normalizes the corners of every range and rejects
// negative or mutually overlapping ranges. Single-cell ranges are dropped.
// The result is sorted by anchor position.
func NormalizeMerges(merges []Range) ([]Range, error) {
	out := make([]Range, 0, len(merges))
	for _, m := range merges {
		r := normalizeRange(m)
		if r.StartRow < 0 || r.StartColumn < 0 {
			return nil, fmt.Errorf("merge %+v: %w", m, ErrInvalidMerge)
		}
		if r.StartRow == r.EndRow && r.StartColumn == r.EndColumn {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartRow != out[j].StartRow {
			return out[i].StartRow < out[j].StartRow
		}
		return out[i].StartColumn < out[j].StartColumn
	})
	for i := range out {
		for j := i + 1; j < len(out) && out[j].StartRow <= out[i].EndRow; j++ {
			if out[i].Overlaps(out[j]) {
				return nil, fmt.Errorf("merges %s and %s overlap: %w", out[i], out[j], ErrInvalidMerge)
			}
		}
	}
	return out, nil
}

// CleanMergedCells enforces the merged-cell invariant on a sheet: within every
// merged range only the top-left anchor keeps a value, formula or rich text.
// Member cells keep their own style; members that do not exist are created
// empty with the anchor's style. The sheet's merge list is replaced by its
// normalized form.
func CleanMergedCells(sheet *Sheet) error {
	return cleanMergedCells(sheet, "")
}

// cleanMergedCells is CleanMergedCells where a missing anchor is created with
// style fallback, which its members then share. An empty fallback leaves a
// missing anchor absent.
func cleanMergedCells(sheet *Sheet, fallback string) error {
	merges, err := NormalizeMerges(sheet.MergeData)
	if err != nil {
		return fmt.Errorf("clean merges of sheet %q: %w", sheet.Name, err)
	}
	sheet.MergeData = merges
	if sheet.CellData == nil {
		sheet.CellData = make(CellMatrix)
	}

	for _, m := range merges {
		anchorStyle := fallback
		if anchor := sheet.CellData.Get(m.StartRow, m.StartColumn); anchor != nil {
			anchorStyle = anchor.S
		} else if fallback != "" {
			sheet.CellData.Set(m.StartRow, m.StartColumn, &Cell{S: fallback})
		}
		for row := m.StartRow; row <= m.EndRow; row++ {
			for col := m.StartColumn; col <= m.EndColumn; col++ {
				if row == m.StartRow && col == m.StartColumn {
					continue
				}
				member := sheet.CellData.Get(row, col)
				if member == nil {
					sheet.CellData.Set(row, col, &Cell{S: anchorStyle})
					continue
				}
				sheet.CellData.Set(row, col, &Cell{S: member.S})
			}
		}
		sheet.RowCount = max(sheet.RowCount, m.EndRow+1)
		sheet.ColumnCount = max(sheet.ColumnCount, m.EndColumn+1)
	}
	return nil
}
