// Package sheet decodes uploaded spreadsheets into header-keyed rows and
// classifies them as order or product exports.
package sheet

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

var (
	ErrUnsupportedFormat = errors.New("file must be an Excel file (.xlsx or .xls)")
	ErrNoWorksheet       = errors.New("no worksheet found")
)

// Row maps a header label to the cell value. Values are string, float64 or
// bool; empty cells are absent.
type Row map[string]any

type Sheet struct {
	Name    string
	Headers []string
	Rows    []Row
}

// AllowedExtension reports whether name ends in a supported spreadsheet
// extension, ignoring case.
func AllowedExtension(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xls":
		return true
	}
	return false
}

// Decode reads the first worksheet of an .xlsx or .xls file. The first
// non-empty row is the header row.
func Decode(name string, r io.Reader) (*Sheet, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx":
		return decodeXLSX(data)
	case ".xls":
		return decodeXLS(data)
	default:
		return nil, ErrUnsupportedFormat
	}
}

func decodeXLSX(data []byte) (*Sheet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, ErrNoWorksheet
	}

	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheetName, err)
	}

	cell := func(rowIdx, colIdx int, raw string) any {
		axis, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
		if err != nil {
			return raw
		}
		typ, err := f.GetCellType(sheetName, axis)
		if err != nil {
			return raw
		}
		return typedValue(typ, raw)
	}

	return build(sheetName, rows, cell), nil
}

func decodeXLS(data []byte) (*Sheet, error) {
	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open xls: %w", err)
	}
	if wb.NumSheets() == 0 {
		return nil, ErrNoWorksheet
	}
	ws := wb.GetSheet(0)
	if ws == nil {
		return nil, ErrNoWorksheet
	}

	var rows [][]string
	for i := 0; i <= int(ws.MaxRow); i++ {
		row := ws.Row(i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		cols := make([]string, 0, row.LastCol()+1)
		for j := 0; j <= row.LastCol(); j++ {
			cols = append(cols, row.Col(j))
		}
		rows = append(rows, cols)
	}

	return build(ws.Name, rows, func(_, _ int, raw string) any { return xlsValue(raw) }), nil
}

// xlsValue reduces date cells, which the xls reader renders as RFC 3339
// timestamps, to their day. xlsx serial dates are floored the same way.
func xlsValue(raw string) any {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC().Format(time.DateOnly)
	}
	return raw
}

// build turns a raw grid into keyed rows. Blank header cells drop their
// column; repeated labels get a _1, _2 suffix.
func build(name string, grid [][]string, cell func(rowIdx, colIdx int, raw string) any) *Sheet {
	s := &Sheet{Name: name}

	headerIdx := -1
	for i, r := range grid {
		if !blank(r) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return s
	}

	labels := make([]string, len(grid[headerIdx]))
	seen := make(map[string]int)
	for i, raw := range grid[headerIdx] {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		label := raw
		if n, dup := seen[raw]; dup {
			label = raw + "_" + strconv.Itoa(n)
		}
		seen[raw]++
		labels[i] = label
		s.Headers = append(s.Headers, label)
	}

	for i := headerIdx + 1; i < len(grid); i++ {
		row := make(Row)
		for j, raw := range grid[i] {
			if j >= len(labels) || labels[j] == "" || raw == "" {
				continue
			}
			row[labels[j]] = cell(i, j, raw)
		}
		if len(row) > 0 {
			s.Rows = append(s.Rows, row)
		}
	}
	return s
}

func typedValue(typ excelize.CellType, raw string) any {
	switch typ {
	case excelize.CellTypeBool:
		return raw == "1" || strings.EqualFold(raw, "true")
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return f
		}
	}
	return raw
}

func blank(r []string) bool {
	for _, c := range r {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
