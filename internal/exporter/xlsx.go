package exporter

import (
	"github.com/xuri/excelize/v2"

	apperrors "cordexplorer/internal/errors"
	"cordexplorer/pkg/contracts/domain"
)

const (
	sheetOverview = "Overview"
	sheetYears    = "Years"
	sheetJournals = "Journals"
	sheetSources  = "Sources"
	sheetColumns  = "Columns"
)

// WriteSummaryXLSX saves the report as a workbook with one sheet per table.
func WriteSummaryXLSX(path string, report *Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetOverview); err != nil {
		return apperrors.NewStorageError("rename sheet", err)
	}

	overview := [][]any{
		{"Property", "Value"},
		{"Input", report.Input},
		{"Cleaned rows", report.CleanRows},
		{"Cleaned columns", report.CleanCols},
		{"Dropped (missing title)", report.Dropped.MissingTitle},
		{"Dropped (missing date)", report.Dropped.MissingDate},
	}
	if report.Dataset != nil {
		overview = append(overview,
			[]any{"Raw rows", report.Dataset.Rows},
			[]any{"Raw columns", report.Dataset.Cols})
	}

	sheets := []struct {
		name string
		rows [][]any
	}{
		{sheetOverview, overview},
		{sheetYears, yearRows(report)},
		{sheetJournals, valueRows("Journal", report.Aggregates.TopJournals)},
		{sheetSources, valueRows("Source", report.Aggregates.TopSources)},
		{sheetColumns, columnRows(report)},
	}

	for _, s := range sheets {
		if s.name != sheetOverview {
			if _, err := f.NewSheet(s.name); err != nil {
				return apperrors.NewStorageError("create sheet", err).WithContext("sheet", s.name)
			}
		}
		for i, row := range s.rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			if err != nil {
				return apperrors.NewStorageError("cell name", err)
			}
			if err := f.SetSheetRow(s.name, cell, &row); err != nil {
				return apperrors.NewStorageError("write sheet row", err).WithContext("sheet", s.name)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return apperrors.NewStorageError("save workbook", err).WithContext("path", path)
	}
	return nil
}

func yearRows(report *Report) [][]any {
	rows := [][]any{{"Year", "Publications"}}
	for _, h := range report.Aggregates.Years {
		rows = append(rows, []any{h.Year, h.Count})
	}
	return rows
}

func valueRows(label string, counts []domain.ValueCount) [][]any {
	rows := [][]any{{label, "Count"}}
	for _, c := range counts {
		rows = append(rows, []any{c.Value, c.Count})
	}
	return rows
}

func columnRows(report *Report) [][]any {
	rows := [][]any{{"Column", "Type", "Missing"}}
	if report.Dataset == nil {
		return rows
	}
	for _, c := range report.Dataset.Columns {
		rows = append(rows, []any{c.Name, string(c.DType), c.Nulls})
	}
	return rows
}
