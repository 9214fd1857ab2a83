// Package tsv provides a streaming reader for tab-separated sample tables.
//
// The first non-comment line is a header naming the columns Label,
// FattyAcid, sn123, exactly one partial pool column (sn2, sn13 or sn12_23)
// and optionally Filter. Column order is free and names are matched
// without regard to case. Lines starting with '#' are skipped.
package tsv

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ChrisMcGann/TAGKey/pkg/core"
	"github.com/ChrisMcGann/TAGKey/pkg/frame"
)

// Reader provides streaming access to the rows of a sample table.
type Reader struct {
	scanner *bufio.Scanner
	lineNum int

	label, fattyAcid, sn123, partial int
	filter                           int // -1 when absent
	width                            int
	pool                             frame.Pool

	row frame.RawRow
	err error
}

// NewReader reads the header from r and returns a reader positioned before
// the first row.
func NewReader(r io.Reader) (*Reader, error) {
	rd := &Reader{
		scanner:   bufio.NewScanner(r),
		label:     -1,
		fattyAcid: -1,
		sn123:     -1,
		partial:   -1,
		filter:    -1,
	}
	line, ok := rd.nextLine()
	if !ok {
		if err := rd.scanner.Err(); err != nil {
			return nil, err
		}
		return nil, errors.New("missing header")
	}
	if err := rd.parseHeader(line); err != nil {
		return nil, fmt.Errorf("line %d: %w", rd.lineNum, err)
	}
	return rd, nil
}

func (r *Reader) parseHeader(line string) error {
	fields := strings.Split(line, "\t")
	r.width = len(fields)
	partials := 0
	for i, field := range fields {
		name := strings.TrimSpace(field)
		switch strings.ToLower(name) {
		case "label":
			r.label = i
		case "fattyacid", "fatty_acid":
			r.fattyAcid = i
		case "sn123", "sn-1,2,3":
			r.sn123 = i
		case "filter":
			r.filter = i
		default:
			pool, err := frame.ParsePool(name)
			if err != nil {
				return fmt.Errorf("unknown column %q", name)
			}
			r.partial = i
			r.pool = pool
			partials++
		}
	}
	var missing []string
	for _, c := range []struct {
		name  string
		index int
	}{{"Label", r.label}, {"FattyAcid", r.fattyAcid}, {"sn123", r.sn123}} {
		if c.index < 0 {
			missing = append(missing, c.name)
		}
	}
	if len(missing) > 0 {
		return &core.SchemaMismatchError{
			Expected: frame.RawSchema(frame.PoolSN2).String(),
			Got:      strings.Join(fields, ","),
			Fields:   missing,
		}
	}
	if partials != 1 {
		return &core.SchemaMismatchError{
			Expected: frame.RawSchema(frame.PoolSN2).String(),
			Got:      strings.Join(fields, ","),
			Fields:   []string{"exactly one of sn2, sn13, sn12_23 is required"},
		}
	}
	return nil
}

// nextLine returns the next line that is neither blank nor a comment.
func (r *Reader) nextLine() (string, bool) {
	for r.scanner.Scan() {
		r.lineNum++
		line := strings.TrimRight(r.scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		return line, true
	}
	return "", false
}

// Pool returns the partial pool named in the header.
func (r *Reader) Pool() frame.Pool {
	return r.pool
}

// HasFilter reports whether the table carries a Filter column.
func (r *Reader) HasFilter() bool {
	return r.filter >= 0
}

// Next advances to the next row. Returns false at the end of input or on error.
func (r *Reader) Next() bool {
	r.row = frame.RawRow{}
	if r.err != nil {
		return false
	}
	line, ok := r.nextLine()
	if !ok {
		r.err = r.scanner.Err()
		return false
	}
	row, err := r.parseRow(line)
	if err != nil {
		r.err = fmt.Errorf("line %d: %w", r.lineNum, err)
		return false
	}
	r.row = row
	return true
}

// Row returns the current row.
func (r *Reader) Row() frame.RawRow {
	return r.row
}

// Err returns any error encountered during reading
func (r *Reader) Err() error {
	return r.err
}

func (r *Reader) parseRow(line string) (frame.RawRow, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < r.width {
		// Trailing empty cells may be trimmed by editors.
		fields = append(fields, make([]string, r.width-len(fields))...)
	}

	row := frame.RawRow{Label: strings.TrimSpace(fields[r.label])}
	if row.Label == "" {
		return row, errors.New("empty label")
	}
	fa, err := core.ParseFattyAcid(fields[r.fattyAcid])
	if err != nil {
		return row, err
	}
	row.FattyAcid = fa

	if row.SN123, err = parseValue(fields[r.sn123]); err != nil {
		return row, fmt.Errorf("sn123: %w", err)
	}
	if row.Partial, err = parseValue(fields[r.partial]); err != nil {
		return row, fmt.Errorf("%s: %w", r.pool, err)
	}
	if r.filter >= 0 {
		if row.Filter, err = parseFilter(fields[r.filter]); err != nil {
			return row, fmt.Errorf("filter: %w", err)
		}
	}
	return row, nil
}

func parseValue(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("missing value")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value %q", s)
	}
	return v, nil
}

// parseFilter maps an empty cell to no override.
func parseFilter(s string) (*bool, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return nil, fmt.Errorf("invalid boolean %q", s)
	}
	return &v, nil
}

// ReadFrame reads every row of r into a frame named name.
func ReadFrame(r io.Reader, name string) (*frame.RawFrame, error) {
	rd, err := NewReader(r)
	if err != nil {
		return nil, err
	}
	f := &frame.RawFrame{Name: name, Pool: rd.Pool()}
	for rd.Next() {
		f.Rows = append(f.Rows, rd.Row())
	}
	if err := rd.Err(); err != nil {
		return nil, err
	}
	return f, nil
}

// ReadFile reads a sample table from path. The frame is named after the
// file without its extension.
func ReadFile(path string) (*frame.RawFrame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	f, err := ReadFrame(file, name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	f.SourceFile = path
	return f, nil
}
