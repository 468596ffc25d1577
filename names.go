package univerconv

import (
	"fmt"
	"sort"
	"strings"
)

// WorkbookScope is the localSheetId of a defined name visible in every sheet.
const WorkbookScope = "AllDefaultWorkbook"

// definedNameEntry is one entry of the defined-name resource payload.
type definedNameEntry struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	FormulaOrRefString string `json:"formulaOrRefString"`
	LocalSheetID       string `json:"localSheetId"`
	Comment            string `json:"comment,omitempty"`
	Hidden             bool   `json:"hidden,omitempty"`
}

// EncodeDefinedNames serializes names into the defined-name resource payload.
// Sheet scopes are resolved against wb by sheet name. An empty list encodes as "".
func EncodeDefinedNames(names []DefinedName, wb *Workbook, ids IDGenerator) (string, error) {
	if len(names) == 0 {
		return "", nil
	}
	entries := make(map[string]definedNameEntry, len(names))
	for _, n := range names {
		if n.Name == "" || n.RefersTo == "" {
			continue
		}
		scope := WorkbookScope
		if n.Scope != "" {
			sheet := wb.SheetByName(n.Scope)
			if sheet == nil {
				return "", fmt.Errorf("defined name %q scope %q: %w", n.Name, n.Scope, ErrUnknownSheet)
			}
			scope = sheet.ID
		}
		id := ids("name")
		entries[id] = definedNameEntry{
			ID:                 id,
			Name:               n.Name,
			FormulaOrRefString: NormalizeFormula(n.RefersTo),
			LocalSheetID:       scope,
		}
	}
	if len(entries) == 0 {
		return "", nil
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("encode defined names: %w", err)
	}
	return string(data), nil
}

// DecodeDefinedNames reads the defined names carried by wb's resource.
// Sheet-scoped names whose sheet no longer exists are skipped.
func DecodeDefinedNames(wb *Workbook) ([]DefinedName, error) {
	res, ok := wb.Resource(DefinedNameResource)
	if !ok || strings.TrimSpace(res.Data) == "" {
		return nil, nil
	}
	var entries map[string]definedNameEntry
	if err := json.Unmarshal([]byte(res.Data), &entries); err != nil {
		return nil, fmt.Errorf("decode defined names: %w", err)
	}

	out := make([]DefinedName, 0, len(entries))
	for _, e := range entries {
		if e.Name == "" || e.FormulaOrRefString == "" {
			continue
		}
		n := DefinedName{Name: e.Name, RefersTo: e.FormulaOrRefString}
		if e.LocalSheetID != "" && e.LocalSheetID != WorkbookScope {
			sheet, ok := wb.Sheets[e.LocalSheetID]
			if !ok {
				continue
			}
			n.Scope = sheet.Name
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Scope < out[j].Scope
	})
	return out, nil
}
