package clients

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Orientation selects whether names are read down a column or across a row.
type Orientation int

const (
	Column Orientation = iota
	Row
)

func (o Orientation) String() string {
	if o == Row {
		return "row"
	}
	return "column"
}

// ImportOptions describes where the names live in the source table.
type ImportOptions struct {
	Orientation Orientation
	// Index is the 0-based column or row holding the names.
	Index int
	// SkipHeader drops the first cell of the selected column or row.
	SkipHeader bool
	// Sheet names the XLSX worksheet; empty selects the first one.
	Sheet string
	// Delimiter overrides the field separator for delimited text files.
	Delimiter rune
}

// InvalidCell records a cell whose value could not be parsed as a name.
type InvalidCell struct {
	Position int
	Value    string
	Err      error
}

// ImportReport summarises one import.
type ImportReport struct {
	Added      []Client
	Duplicates int
	Invalid    []InvalidCell
}

// Import reads names from the table at path and adds each one to reg.
// Clients already registered are skipped silently; cells that are not two or
// three tokens are collected in the report.
func Import(reg *Registry, path string, opts ImportOptions) (ImportReport, error) {
	if opts.Index < 0 {
		return ImportReport{}, fmt.Errorf("import: %s index must be >= 0", opts.Orientation)
	}
	table, err := readTable(path, opts)
	if err != nil {
		return ImportReport{}, err
	}

	cells := selectCells(table, opts)
	var report ImportReport
	for i, cell := range cells {
		value := strings.TrimSpace(cell)
		if value == "" {
			continue
		}
		c, err := reg.Add(value)
		switch {
		case errors.Is(err, ErrDuplicate):
			report.Duplicates++
		case err != nil:
			report.Invalid = append(report.Invalid, InvalidCell{Position: i, Value: value, Err: err})
		default:
			report.Added = append(report.Added, c)
		}
	}
	return report, nil
}

// selectCells returns the chosen column or row; positions are 0-based within
// the table and the header, when skipped, is still counted.
func selectCells(table [][]string, opts ImportOptions) []string {
	var cells []string
	switch opts.Orientation {
	case Row:
		if opts.Index < len(table) {
			cells = table[opts.Index]
		}
	default:
		cells = make([]string, len(table))
		for i, row := range table {
			if opts.Index < len(row) {
				cells[i] = row[opts.Index]
			}
		}
	}
	if opts.SkipHeader && len(cells) > 0 {
		cells = append([]string{""}, cells[1:]...)
	}
	return cells
}

func readTable(path string, opts ImportOptions) ([][]string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx", ".xlsm":
		return readWorkbook(path, opts.Sheet)
	case ".csv", ".tsv", ".txt":
		delimiter := opts.Delimiter
		if delimiter == 0 {
			delimiter = ','
			if ext == ".tsv" {
				delimiter = '\t'
			}
		}
		return readDelimited(path, delimiter)
	default:
		return nil, fmt.Errorf("import: unsupported file type %q (want .csv, .tsv, .txt or .xlsx)", ext)
	}
}

func readDelimited(path string, delimiter rune) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open import file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	var rows [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
		}
		rows = append(rows, record)
	}
	return rows, nil
}

func readWorkbook(path, sheet string) ([][]string, error) {
	book, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer book.Close()

	if sheet == "" {
		sheet = book.GetSheetName(0)
	}
	if sheet == "" {
		return nil, fmt.Errorf("workbook %s has no sheets", filepath.Base(path))
	}
	rows, err := book.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return rows, nil
}
