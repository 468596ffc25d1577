package univerconv

import (
	"bytes"
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"
)

// json is the codec used for every model (de)serialization.
var json = jsoniter.ConfigCompatibleWithStandardLibrary

// MarshalWorkbook encodes a workbook snapshot as indented JSON.
func MarshalWorkbook(wb *Workbook) ([]byte, error) {
	if wb == nil {
		return nil, ErrMissingSnapshot
	}
	return json.MarshalIndent(wb, "", "  ")
}

// UnmarshalWorkbook decodes a workbook snapshot.
func UnmarshalWorkbook(data []byte) (*Workbook, error) {
	var wb Workbook
	if err := json.Unmarshal(data, &wb); err != nil {
		return nil, fmt.Errorf("decode workbook: %w", err)
	}
	return &wb, nil
}

// ReadWorkbookJSON decodes a workbook snapshot from r.
func ReadWorkbookJSON(r io.Reader) (*Workbook, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read workbook json: %w", err)
	}
	return UnmarshalWorkbook(data)
}

// MarshalDocument encodes a document snapshot as indented JSON.
func MarshalDocument(doc *DocumentData) ([]byte, error) {
	if doc == nil {
		return nil, ErrMissingSnapshot
	}
	return json.MarshalIndent(doc, "", "  ")
}

// UnmarshalDocument decodes a document snapshot.
func UnmarshalDocument(data []byte) (*DocumentData, error) {
	var doc DocumentData
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return &doc, nil
}

// cloneJSON deep-copies v through its JSON encoding and returns the encoding too.
func cloneJSON[T any](v T) (T, []byte, error) {
	var out T
	data, err := json.Marshal(v)
	if err != nil {
		return out, nil, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, nil, err
	}
	return out, data, nil
}

// looksLikeJSON reports whether data starts with an object.
func looksLikeJSON(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && trimmed[0] == '{'
}
