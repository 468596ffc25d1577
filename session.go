package univerconv

import (
	"bytes"
	"fmt"
	"sync"
)

// Session holds the current state of an editing session. Readers get deep
// copies; listeners fire after each committed change whose snapshot differs
// from the previous one.
type Session[T any] struct {
	mu        sync.Mutex
	current   T
	snapshot  []byte
	listeners map[int]func(T)
	nextID    int
}

// NewSession starts a session at initial.
func NewSession[T any](initial T) (*Session[T], error) {
	_, data, err := cloneJSON(initial)
	if err != nil {
		return nil, fmt.Errorf("snapshot session: %w", err)
	}
	return &Session[T]{current: initial, snapshot: data, listeners: make(map[int]func(T))}, nil
}

// Get returns a copy of the current state.
func (s *Session[T]) Get() (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, _, err := cloneJSON(s.current)
	return v, err
}

// Listen registers fn for committed changes and returns a function that removes it.
func (s *Session[T]) Listen(fn func(T)) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// Replace swaps the whole state.
func (s *Session[T]) Replace(v T) error {
	return s.Update(func(cur *T) error {
		*cur = v
		return nil
	})
}

// ReplaceJSON swaps the whole state for the decoded JSON text.
func (s *Session[T]) ReplaceJSON(data []byte) error {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("decode session state: %w", err)
	}
	return s.Replace(v)
}

// Update mutates the state in place and commits it. When fn fails nothing is committed.
func (s *Session[T]) Update(fn func(cur *T) error) error {
	s.mu.Lock()
	next, _, err := cloneJSON(s.current)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if err := fn(&next); err != nil {
		s.mu.Unlock()
		return err
	}
	copied, data, err := cloneJSON(next)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.current = next
	if bytes.Equal(data, s.snapshot) {
		s.mu.Unlock()
		return nil
	}
	s.snapshot = data
	listeners := make([]func(T), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(copied)
	}
	return nil
}

// RangePatch writes a block of cells whose top-left corner is StartRow, StartColumn.
// A nil cell clears its position.
type RangePatch struct {
	SheetID     string    `json:"sheetId"`
	StartRow    int       `json:"startRow"`
	StartColumn int       `json:"startColumn"`
	Cells       [][]*Cell `json:"cells"`
}

// WorkbookSession is a Session over a workbook with range updates.
type WorkbookSession struct {
	*Session[*Workbook]
}

// NewWorkbookSession starts a workbook session.
func NewWorkbookSession(wb *Workbook) (*WorkbookSession, error) {
	s, err := NewSession(wb)
	if err != nil {
		return nil, err
	}
	return &WorkbookSession{Session: s}, nil
}

// PatchRange applies p to its sheet and re-applies merge cleanup.
func (s *WorkbookSession) PatchRange(p RangePatch) error {
	if p.StartRow < 0 || p.StartColumn < 0 {
		return fmt.Errorf("patch %s at %d,%d: negative origin", p.SheetID, p.StartRow, p.StartColumn)
	}
	return s.Update(func(wb **Workbook) error {
		if *wb == nil {
			return fmt.Errorf("patch %q: %w", p.SheetID, ErrMissingSnapshot)
		}
		sheet := (*wb).Sheets[p.SheetID]
		if sheet == nil {
			return fmt.Errorf("patch %q: %w", p.SheetID, ErrUnknownSheet)
		}
		if sheet.CellData == nil {
			sheet.CellData = make(CellMatrix)
		}
		for i, row := range p.Cells {
			r := p.StartRow + i
			for j, cell := range row {
				c := p.StartColumn + j
				if cell == nil {
					delete(sheet.CellData[r], c)
					continue
				}
				sheet.CellData.Set(r, c, cell)
				sheet.RowCount = max(sheet.RowCount, r+1)
				sheet.ColumnCount = max(sheet.ColumnCount, c+1)
			}
		}
		return CleanMergedCells(sheet)
	})
}

// DocumentSession is a Session over a document.
type DocumentSession = Session[*DocumentData]

// NewDocumentSession starts a document session.
func NewDocumentSession(doc *DocumentData) (*DocumentSession, error) {
	return NewSession(doc)
}
