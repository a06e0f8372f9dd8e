package render

import (
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/lightning-report-etl/internal/analysis"
)

// Sheet names of the summary workbook.
const (
	SheetCounts = "counts"
	SheetHours  = "hours"
	SheetMonths = "months"
)

// YearSeries is a per-year row of bucket counts.
type YearSeries struct {
	Year   int
	Values []int
}

// Summary is the tabular content of the summary workbook.
type Summary struct {
	SubRegions []string
	Counts     []analysis.YearCounts

	// InBoundary holds, per year, the strikes inside the boundary outline.
	// Nil when no boundary is configured; the column is then omitted.
	InBoundary map[int]int

	Hours  []YearSeries
	Months []YearSeries
}

// WriteSummary renders s as an xlsx workbook.
func WriteSummary(w io.Writer, s Summary) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetCounts); err != nil {
		return fmt.Errorf("summary: %w", err)
	}
	for _, name := range []string{SheetHours, SheetMonths} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("summary: %w", err)
		}
	}

	header := []any{"year", "region"}
	for _, name := range s.SubRegions {
		header = append(header, name)
	}
	if s.InBoundary != nil {
		header = append(header, "boundary")
	}
	rows := [][]any{header}
	for _, c := range s.Counts {
		row := []any{c.Year, c.Region}
		for _, n := range c.SubRegions {
			row = append(row, n)
		}
		if s.InBoundary != nil {
			row = append(row, s.InBoundary[c.Year])
		}
		rows = append(rows, row)
	}
	if err := writeRows(f, SheetCounts, rows); err != nil {
		return err
	}

	hourHeader := []any{"year"}
	for h := range 24 {
		hourHeader = append(hourHeader, h)
	}
	if err := writeRows(f, SheetHours, seriesRows(hourHeader, s.Hours)); err != nil {
		return err
	}

	monthHeader := []any{"year"}
	for _, m := range analysis.MonthLabels {
		monthHeader = append(monthHeader, m)
	}
	if err := writeRows(f, SheetMonths, seriesRows(monthHeader, s.Months)); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("summary: write workbook: %w", err)
	}
	return nil
}

func seriesRows(header []any, series []YearSeries) [][]any {
	rows := [][]any{header}
	for _, s := range series {
		row := []any{s.Year}
		for _, v := range s.Values {
			row = append(row, v)
		}
		rows = append(rows, row)
	}
	return rows
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell := "A" + strconv.Itoa(i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("summary: sheet %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
