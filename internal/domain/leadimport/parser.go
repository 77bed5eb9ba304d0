package leadimport

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DetectFormat picks the parser from the file extension, case-insensitively.
func DetectFormat(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(strings.TrimSpace(filename))) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	}
	return "", ErrUnsupportedFormat
}

// Parse reads a .csv or .xlsx upload into a Table. The extension is checked
// before r is touched.
func Parse(filename string, r io.Reader) (*Table, error) {
	format, err := DetectFormat(filename)
	if err != nil {
		return nil, err
	}

	var records [][]string
	switch format {
	case FormatCSV:
		records, err = readCSV(r)
	case FormatXLSX:
		records, err = readXLSX(r)
	}
	if err != nil {
		return nil, err
	}

	t, err := buildTable(records)
	if err != nil {
		return nil, err
	}
	t.Source = filepath.Base(filename)
	return t, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableFile, err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: not valid UTF-8", ErrUnreadableFile)
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableFile, err)
	}
	return records, nil
}

// readXLSX returns the cells of the first worksheet.
func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableFile, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrUnreadableFile)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableFile, err)
	}
	return rows, nil
}

func buildTable(records [][]string) (*Table, error) {
	start := 0
	for start < len(records) && isBlank(records[start]) {
		start++
	}
	if start == len(records) {
		return nil, fmt.Errorf("%w: no header row", ErrUnreadableFile)
	}

	header := records[start]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	t := &Table{Columns: normalizeColumns(header)}
	width := len(t.Columns)

	for i, rec := range records[start+1:] {
		if isBlank(rec) {
			continue
		}
		row, err := fitRow(rec, width)
		if err != nil {
			line := start + i + 2
			return nil, fmt.Errorf("%w: line %d: %v", ErrUnreadableFile, line, err)
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// normalizeColumns trims header cells, names empty ones "Unnamed: <i>" and
// de-duplicates repeats with ".1", ".2" suffixes.
func normalizeColumns(header []string) []string {
	cols := make([]string, len(header))
	seen := make(map[string]bool, len(header))
	counts := make(map[string]int, len(header))

	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		candidate := name
		for seen[candidate] {
			counts[name]++
			candidate = name + "." + strconv.Itoa(counts[name])
		}
		seen[candidate] = true
		cols[i] = candidate
	}
	return cols
}

// fitRow pads short rows. Extra cells are tolerated only when empty.
func fitRow(rec []string, width int) ([]string, error) {
	if len(rec) > width {
		for _, extra := range rec[width:] {
			if strings.TrimSpace(extra) != "" {
				return nil, errors.New("expected " + strconv.Itoa(width) + " fields, saw " + strconv.Itoa(len(rec)))
			}
		}
		rec = rec[:width]
	}
	row := make([]string, width)
	copy(row, rec)
	return row, nil
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
