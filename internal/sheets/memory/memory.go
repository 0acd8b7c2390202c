package memory

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	ports "lifedash/internal/sheets"
)

// Store keeps every sheet in process memory. It assigns serials the same
// way the scripted endpoint does, so it can stand in for it in development.
type Store struct {
	mu     sync.Mutex
	loc    *time.Location
	sheets map[string][][]any
}

var _ ports.Store = (*Store)(nil)

// New returns a store seeded with the given sheets. Each seed includes its
// header row.
func New(seed map[string][][]any) *Store {
	s := &Store{loc: time.Local, sheets: make(map[string][][]any, len(seed))}
	for name, rows := range seed {
		s.sheets[name] = copyRows(rows)
	}
	return s
}

// WithLocation sets the zone used to format dates of new finance rows.
func (s *Store) WithLocation(loc *time.Location) *Store {
	if loc != nil {
		s.loc = loc
	}
	return s
}

// NewFromFiles seeds the store from tab separated files named after each
// sheet (e.g. "Daily.tsv") in base. Missing files yield a header-only sheet.
func NewFromFiles(base string, sheetNames ...string) *Store {
	seed := make(map[string][][]any, len(sheetNames))
	for _, name := range sheetNames {
		rows := readRows(filepath.Join(base, name+".tsv"))
		if len(rows) == 0 {
			rows = [][]any{{}}
		}
		seed[name] = rows
	}
	return New(seed)
}

// FetchRows returns a copy of the sheet, header included.
func (s *Store) FetchRows(_ context.Context, sheet string) ([][]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, ok := s.sheets[sheet]
	if !ok {
		return nil, &ports.StoreError{Kind: ports.KindLogical, Sheet: sheet, Action: ports.ActionFetch, Err: ports.ErrUnknownSheet}
	}
	return copyRows(rows), nil
}

// InsertRow appends the row after assigning server fields.
func (s *Store) InsertRow(_ context.Context, sheet string, req ports.InsertRequest) (ports.InsertResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, ok := s.sheets[sheet]
	if !ok {
		return ports.InsertResult{}, &ports.StoreError{Kind: ports.KindLogical, Sheet: sheet, Action: req.Action, Err: ports.ErrUnknownSheet}
	}
	row, res, err := ports.AssignServerFields(rows, req, s.loc)
	if err != nil {
		return ports.InsertResult{}, &ports.StoreError{Kind: ports.KindLogical, Sheet: sheet, Action: req.Action, Message: err.Error(), Err: ports.ErrStoreFailure}
	}
	s.sheets[sheet] = append(rows, row)
	return res, nil
}

func copyRows(in [][]any) [][]any {
	out := make([][]any, len(in))
	for i, row := range in {
		out[i] = append([]any(nil), row...)
	}
	return out
}

func readRows(path string) [][]any {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out [][]any
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		cells := strings.Split(line, "\t")
		row := make([]any, len(cells))
		for i, c := range cells {
			row[i] = strings.TrimSpace(c)
		}
		out = append(out, row)
	}
	return out
}
