package dataset

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"rms-dashboard-go/internal/logger"
	"rms-dashboard-go/internal/types"
)

var (
	// ErrUnsupportedFile is returned for anything but .xlsx and .xls.
	ErrUnsupportedFile = errors.New("please select a valid Excel file (.xlsx or .xls)")
	// ErrUnreadable wraps parser failures.
	ErrUnreadable = errors.New("error reading Excel file")
	// ErrEmptySheet is returned when the first sheet has no rows.
	ErrEmptySheet = errors.New("the Excel file appears to be empty")
)

// Supported reports whether name carries a spreadsheet extension.
func Supported(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xls":
		return true
	}
	return false
}

// Read parses the first sheet of an .xlsx or .xls payload into a grid.
// Cells keep the type the file gives them: text stays a string even when it
// looks like a number.
func Read(name string, data []byte) (types.Grid, error) {
	log := logger.Component("dataset.loader").WithField("file", name)
	if !Supported(name) {
		return nil, ErrUnsupportedFile
	}

	var (
		grid types.Grid
		err  error
	)
	if strings.EqualFold(filepath.Ext(name), ".xls") {
		grid, err = readXLS(data)
	} else {
		grid, err = readXLSX(data)
	}
	if err != nil {
		log.WithError(err).Warn("parse failed")
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	// drop trailing blank rows like excelize does
	for len(grid) > 0 && len(grid[len(grid)-1]) == 0 {
		grid = grid[:len(grid)-1]
	}
	if len(grid) == 0 {
		return nil, ErrEmptySheet
	}

	log.WithField("rows", len(grid)).Debug("sheet read")
	return grid, nil
}

// ReadFile reads a spreadsheet from disk.
func ReadFile(path string) (types.Grid, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	return Read(filepath.Base(path), data)
}

func readXLSX(data []byte) (types.Grid, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets")
	}
	sheet := sheets[0]
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}

	grid := make(types.Grid, len(rows))
	for i, r := range rows {
		row := make(types.Row, len(r))
		for j, v := range r {
			if blank(v) {
				continue
			}
			ref, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return nil, err
			}
			ct, err := f.GetCellType(sheet, ref)
			if err != nil {
				return nil, fmt.Errorf("cell %s: %w", ref, err)
			}
			row[j] = xlsxValue(v, ct)
		}
		grid[i] = trimTrailing(row)
	}
	return grid, nil
}

// xlsxValue types a raw cell value by its stored cell type. Cells without a
// type attribute are numbers.
func xlsxValue(v string, ct excelize.CellType) any {
	switch ct {
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		if f, ok := number(v); ok {
			return f
		}
	case excelize.CellTypeBool:
		return v == "1"
	}
	return v
}

func readXLS(data []byte) (grid types.Grid, err error) {
	// the BIFF reader panics on some truncated files
	defer func() {
		if r := recover(); r != nil {
			grid, err = nil, fmt.Errorf("xls: %v", r)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	if wb == nil || wb.NumSheets() == 0 {
		return nil, fmt.Errorf("no sheets")
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, fmt.Errorf("no sheets")
	}

	// MaxRow is the last row index, not a count
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := rowAt(sheet, i)
		if row == nil {
			grid = append(grid, types.Row{})
			continue
		}
		cells := make(types.Row, row.LastCol())
		for c := range cells {
			cells[c] = xlsValue(row.Col(c))
		}
		grid = append(grid, trimTrailing(cells))
	}
	return grid, nil
}

// rowAt returns nil for a row the sheet never defined. WorkSheet.Row
// dereferences the missing row and panics.
func rowAt(sheet *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return sheet.Row(i)
}

// xlsValue types a BIFF cell. The reader only exposes text, and prints
// numeric records with strconv's shortest 'f' format, so a cell is a number
// exactly when its text round-trips through that format. Text such as "007"
// or "1e3" never does and stays a string.
func xlsValue(v string) any {
	if blank(v) {
		return nil
	}
	if f, ok := number(v); ok && strconv.FormatFloat(f, 'f', -1, 64) == v {
		return f
	}
	return v
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func number(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func trimTrailing(row types.Row) types.Row {
	n := len(row)
	for n > 0 && row[n-1] == nil {
		n--
	}
	return row[:n]
}
