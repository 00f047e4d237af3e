// Package export writes collected records as CSV or Excel files.
package export

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Ethan4582/linkedin-extractor/pkg/profile"
)

// Supported formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// SheetName is the worksheet holding the records in Excel exports.
const SheetName = "Profiles"

var (
	headers      = []string{"#", "Name", "Company", "URL"}
	columnWidths = []float64{6, 30, 25, 60}
)

// FileName returns the default export file name for format on the day of now.
func FileName(format string, now time.Time) string {
	return fmt.Sprintf("linkedin_profiles_%s.%s", now.Format(time.DateOnly), format)
}

// Write writes recs to w in format.
func Write(w io.Writer, format string, recs []profile.Record) error {
	switch strings.ToLower(format) {
	case FormatCSV:
		return WriteCSV(w, recs)
	case FormatXLSX:
		return WriteXLSX(w, recs)
	default:
		return fmt.Errorf("%w: unknown export format %q", profile.ErrInvalidArgument, format)
	}
}

func row(i int, r profile.Record) []string {
	return []string{strconv.Itoa(i + 1), r.Name, r.Company, r.URL()}
}

// WriteCSV writes a header and one line per record. Every field is quoted.
func WriteCSV(w io.Writer, recs []profile.Record) error {
	bw := bufio.NewWriter(w)
	writeLine := func(fields []string) {
		for i, f := range fields {
			if i > 0 {
				bw.WriteByte(',') //nolint:errcheck // surfaced by Flush
			}
			bw.WriteString(`"` + strings.ReplaceAll(f, `"`, `""`) + `"`) //nolint:errcheck // surfaced by Flush
		}
		bw.WriteByte('\n') //nolint:errcheck // surfaced by Flush
	}

	writeLine(headers)
	for i, r := range recs {
		writeLine(row(i, r))
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// WriteXLSX writes the records to a single-sheet workbook.
func WriteXLSX(w io.Writer, recs []profile.Record) error {
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck // in-memory workbook

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(SheetName, cell, h); err != nil {
			return fmt.Errorf("set header: %w", err)
		}
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(SheetName, col, col, columnWidths[i]); err != nil {
			return fmt.Errorf("set column width: %w", err)
		}
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetName, "A1", last, bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, r := range recs {
		for j, v := range row(i, r) {
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return err
			}
			var value any = v
			if j == 0 {
				value = i + 1
			}
			if err := f.SetCellValue(SheetName, cell, value); err != nil {
				return fmt.Errorf("set cell %s: %w", cell, err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}
