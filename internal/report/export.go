// Package report формирует выгрузки списка бронирований в XLSX и PDF.
package report

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"github.com/vladislavdragonenkov/roombooking/internal/domain"
)

// Format задаёт формат выгрузки.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

const (
	reservationsSheet = "reservations"
	timeLayout        = "2006-01-02 15:04"
)

var columns = []string{"ID", "Room", "Capacity", "Start", "End", "Duration", "Students"}

// ParseFormat разбирает формат из строки запроса; пустое значение означает XLSX.
func ParseFormat(raw string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case "", FormatXLSX:
		return FormatXLSX, nil
	case FormatPDF:
		return FormatPDF, nil
	default:
		return "", domain.InvalidArgument("unsupported export format %q", raw)
	}
}

// ContentType возвращает MIME-тип формата.
func (f Format) ContentType() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Build формирует выгрузку в выбранном формате.
func Build(format Format, reservations []domain.Reservation, generatedAt time.Time) ([]byte, error) {
	switch format {
	case FormatPDF:
		return BuildReservationsPDF(reservations, generatedAt)
	case FormatXLSX:
		return BuildReservationsXLSX(reservations, generatedAt)
	default:
		return nil, domain.InvalidArgument("unsupported export format %q", format)
	}
}

// BuildReservationsXLSX выгружает бронирования на лист reservations, по строке на бронирование.
func BuildReservationsXLSX(reservations []domain.Reservation, generatedAt time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", reservationsSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	for i, title := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(reservationsSheet, cell, title)
	}

	for i, res := range reservations {
		row := i + 2
		values := []any{
			res.ID,
			res.Room.Name,
			res.Room.Capacity,
			res.StartTime.UTC().Format(timeLayout),
			res.EndTime.UTC().Format(timeLayout),
			res.Duration().String(),
			studentNames(res),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(reservationsSheet, cell, value)
		}
	}

	footer, _ := excelize.CoordinatesToCellName(1, len(reservations)+3)
	_ = f.SetCellValue(reservationsSheet, footer, "Generated: "+generatedAt.UTC().Format(time.RFC3339))

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

// BuildReservationsPDF рисует таблицу бронирований на альбомном A4.
func BuildReservationsPDF(reservations []domain.Reservation, generatedAt time.Time) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Room Reservations")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", generatedAt.UTC().Format(time.RFC3339)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Total: %d", len(reservations)))
	pdf.Ln(8)

	widths := []float64{40, 40, 20, 35, 35, 25, 80}
	pdf.SetFont("Arial", "B", 9)
	for i, title := range columns {
		pdf.CellFormat(widths[i], 6, title, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, res := range reservations {
		cells := []string{
			res.ID,
			res.Room.Name,
			fmt.Sprintf("%d", res.Room.Capacity),
			res.StartTime.UTC().Format(timeLayout),
			res.EndTime.UTC().Format(timeLayout),
			res.Duration().String(),
			studentNames(res),
		}
		for i, text := range cells {
			align := "L"
			if i == 2 {
				align = "R"
			}
			pdf.CellFormat(widths[i], 6, text, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func studentNames(res domain.Reservation) string {
	names := make([]string, 0, len(res.Students))
	for _, student := range res.Students {
		names = append(names, student.FullName())
	}
	return strings.Join(names, ", ")
}
