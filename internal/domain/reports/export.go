package reports

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
)

const dateLayout = "2006-01-02"

const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatPDF  = "pdf"
)

// File is an exported report ready to be streamed as a download.
type File struct {
	Name        string
	ContentType string
	Body        []byte
}

func Export(report Report, format string) (File, error) {
	base := fmt.Sprintf("%s-%s", report.Type, report.GeneratedAt.Format("20060102"))
	switch strings.ToLower(format) {
	case FormatCSV:
		body, err := writeCSV(report)
		return File{Name: base + ".csv", ContentType: "text/csv; charset=utf-8", Body: body}, err
	case FormatXLSX:
		body, err := writeXLSX(report)
		return File{Name: base + ".xlsx", ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", Body: body}, err
	case FormatPDF:
		body, err := writePDF(report)
		return File{Name: base + ".pdf", ContentType: "application/pdf", Body: body}, err
	default:
		return File{}, ErrUnknownFormat
	}
}

func cellText(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

func writeCSV(report Report) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(report.Columns); err != nil {
		return nil, err
	}
	for _, row := range report.Cells {
		record := make([]string, len(row))
		for i, v := range row {
			record[i] = cellText(v)
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func writeXLSX(report Report) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := "Report"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, err
	}

	if err := f.SetCellValue(sheet, "A1", report.Title); err != nil {
		return nil, err
	}
	for i, col := range report.Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 3)
		if err := f.SetCellValue(sheet, cell, col); err != nil {
			return nil, err
		}
	}
	if len(report.Columns) > 0 {
		first, _ := excelize.CoordinatesToCellName(1, 3)
		last, _ := excelize.CoordinatesToCellName(len(report.Columns), 3)
		if err := f.SetCellStyle(sheet, first, last, headerStyle); err != nil {
			return nil, err
		}
		lastCol, _ := excelize.ColumnNumberToName(len(report.Columns))
		if err := f.SetColWidth(sheet, "A", lastCol, 18); err != nil {
			return nil, err
		}
	}
	for r, row := range report.Cells {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+4)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writePDF(report Report) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, report.Title)
	pdf.Ln(9)
	pdf.SetFont("Helvetica", "", 9)
	pdf.Cell(0, 6, fmt.Sprintf("Period: %s to %s    Generated: %s",
		report.Filter.From.Format(dateLayout), report.Filter.To.Format(dateLayout), report.GeneratedAt.Format("2006-01-02 15:04")))
	pdf.Ln(9)

	if len(report.Columns) > 0 {
		pageWidth, _ := pdf.GetPageSize()
		left, _, right, _ := pdf.GetMargins()
		width := (pageWidth - left - right) / float64(len(report.Columns))

		pdf.SetFont("Helvetica", "B", 8)
		pdf.SetFillColor(68, 114, 196)
		pdf.SetTextColor(255, 255, 255)
		for _, col := range report.Columns {
			pdf.CellFormat(width, 7, col, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Helvetica", "", 8)
		pdf.SetTextColor(0, 0, 0)
		for _, row := range report.Cells {
			for _, v := range row {
				pdf.CellFormat(width, 6, cellText(v), "1", 0, "L", false, 0, "")
			}
			pdf.Ln(-1)
		}
	}
	if len(report.Cells) == 0 {
		pdf.Ln(4)
		pdf.Cell(0, 6, "No data for the selected filters.")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
