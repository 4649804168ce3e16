// Package export renders proposals as Excel workbooks.
package export

import (
	"bytes"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/YaswanthVanama123/enviromaster-sub004/internal/quote"
)

const (
	SummarySheet = "Summary"
	DetailsSheet = "Details"
)

var moneyFormat = "$#,##0.00"

// Proposal renders p as an xlsx workbook with a summary sheet and a per-service details sheet.
func Proposal(p quote.Proposal, title string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SummarySheet); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}
	if _, err := f.NewSheet(DetailsSheet); err != nil {
		return nil, fmt.Errorf("create details sheet: %w", err)
	}

	st, err := newStyles(f)
	if err != nil {
		return nil, err
	}
	if err := writeSummary(f, st, p, title); err != nil {
		return nil, err
	}
	if err := writeDetails(f, st, p); err != nil {
		return nil, err
	}
	f.SetActiveSheet(0)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

type styles struct {
	title, header, money, bold, boldMoney int
}

func newStyles(f *excelize.File) (styles, error) {
	var st styles
	var err error

	if st.title, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 16}}); err != nil {
		return st, fmt.Errorf("create title style: %w", err)
	}
	if st.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#333333"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	}); err != nil {
		return st, fmt.Errorf("create header style: %w", err)
	}
	if st.money, err = f.NewStyle(&excelize.Style{CustomNumFmt: &moneyFormat}); err != nil {
		return st, fmt.Errorf("create money style: %w", err)
	}
	if st.bold, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err != nil {
		return st, fmt.Errorf("create bold style: %w", err)
	}
	if st.boldMoney, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}, CustomNumFmt: &moneyFormat}); err != nil {
		return st, fmt.Errorf("create total style: %w", err)
	}
	return st, nil
}

var summaryHeaders = []string{"Service", "Frequency", "Months", "Per Visit", "Monthly", "Contract Total"}

func writeSummary(f *excelize.File, st styles, p quote.Proposal, title string) error {
	sheet := SummarySheet
	if title == "" {
		title = "Service Agreement Proposal"
	}

	widths := []float64{30, 14, 10, 14, 14, 16}
	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			return fmt.Errorf("set col width %s: %w", col, err)
		}
	}

	if err := f.SetCellValue(sheet, "A1", title); err != nil {
		return fmt.Errorf("write title: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", "A1", st.title); err != nil {
		return fmt.Errorf("style title: %w", err)
	}
	if err := f.SetCellValue(sheet, "A2", "Generated "+p.GeneratedAt.Format("2006-01-02")); err != nil {
		return fmt.Errorf("write date: %w", err)
	}

	const headerRow = 4
	for i, h := range summaryHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, headerRow)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("write header %s: %w", h, err)
		}
	}
	if err := f.SetCellStyle(sheet, "A4", "F4", st.header); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	row := headerRow + 1
	for _, s := range p.Services {
		values := []any{s.DisplayName, string(s.Frequency), s.ContractMonths,
			money(s.PerVisitPrice), money(s.MonthlyRecurring), money(s.ContractTotal)}
		if err := setRow(f, sheet, row, values); err != nil {
			return err
		}
		if err := styleMoney(f, sheet, row, st.money); err != nil {
			return err
		}
		row++
	}

	totals := []any{"Total", "", p.ContractMonths, money(p.PerVisitTotal), money(p.MonthlyRecurring), money(p.ContractTotal)}
	if err := setRow(f, sheet, row, totals); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, cellName(1, row), cellName(3, row), st.bold); err != nil {
		return fmt.Errorf("style totals: %w", err)
	}
	if err := styleMoney(f, sheet, row, st.boldMoney); err != nil {
		return err
	}

	if len(p.UsingDefaults) > 0 {
		row += 2
		note := fmt.Sprintf("Priced from default rates: %v", p.UsingDefaults)
		if err := f.SetCellValue(sheet, cellName(1, row), note); err != nil {
			return fmt.Errorf("write defaults note: %w", err)
		}
	}
	return nil
}

func writeDetails(f *excelize.File, st styles, p quote.Proposal) error {
	sheet := DetailsSheet
	if err := f.SetColWidth(sheet, "A", "A", 80); err != nil {
		return fmt.Errorf("set details width: %w", err)
	}

	row := 1
	for _, s := range p.Services {
		cell := cellName(1, row)
		if err := f.SetCellValue(sheet, cell, s.DisplayName); err != nil {
			return fmt.Errorf("write service heading: %w", err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, st.bold); err != nil {
			return fmt.Errorf("style service heading: %w", err)
		}
		row++
		for _, line := range s.DetailsBreakdown {
			if err := f.SetCellValue(sheet, cellName(1, row), line); err != nil {
				return fmt.Errorf("write detail: %w", err)
			}
			row++
		}
		row++
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	if err := f.SetSheetRow(sheet, cellName(1, row), &values); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}

func styleMoney(f *excelize.File, sheet string, row, style int) error {
	if err := f.SetCellStyle(sheet, cellName(4, row), cellName(6, row), style); err != nil {
		return fmt.Errorf("style row %d: %w", row, err)
	}
	return nil
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
